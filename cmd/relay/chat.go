package main

import (
	"github.com/aretw0/relay/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Reads messages from stdin, one per line, and prints each reply.
An empty line or "exit" ends the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("assistant") {
			cfg.Assistant.ID, _ = cmd.Flags().GetString("assistant")
		}
		if cmd.Flags().Changed("parallel") {
			cfg.Orchestrator.Parallel, _ = cmd.Flags().GetBool("parallel")
		}

		threadID, _ := cmd.Flags().GetString("thread")
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		render, _ := cmd.Flags().GetBool("render")
		confirm, _ := cmd.Flags().GetBool("confirm")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunChat(sigCtx, cfg, logger, cli.ChatOptions{
			ThreadID:  threadID,
			SessionID: sessionID,
			JSON:      jsonMode,
			Render:    render,
			Confirm:   confirm,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	chatCmd.Flags().String("assistant", "", "Assistant ID to reuse (default: create one)")
	chatCmd.Flags().String("thread", "", "Thread ID to continue (default: start a new one)")
	chatCmd.Flags().String("session", "", "Session bookmark to resume and update")
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines instead of text")
	chatCmd.Flags().Bool("render", false, "Render replies as markdown")
	chatCmd.Flags().Bool("confirm", false, "Ask before running each tool call")
	chatCmd.Flags().Bool("parallel", false, "Run the tool calls of one batch concurrently")
	rootCmd.AddCommand(chatCmd)
}
