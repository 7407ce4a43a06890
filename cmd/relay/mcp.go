package main

import (
	"github.com/aretw0/relay/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Exposes the "ask" tool and the relay://tools resource over the Model Context Protocol.
Uses stdio unless --port is given, in which case it serves SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("port")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.Build(sigCtx, cfg, logger, cli.Options{})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.ServeMCP(sigCtx, app, port)
	},
}

func init() {
	mcpCmd.Flags().Int("port", 0, "Serve SSE on this port instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}
