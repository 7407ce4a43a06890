package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/relay/internal/cli"
	"github.com/aretw0/relay/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay drives remote assistant runs and answers their tool calls locally",
	Long: `Relay talks to a hosted assistant: it appends your messages to a thread, polls the
run, executes the tools the assistant asks for and prints the reply.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the relay config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("dir", config.DefaultStateDir, "Directory holding local state (sessions)")
	rootCmd.PersistentFlags().String("store", "", "Session store (memory, file, redis)")
	rootCmd.PersistentFlags().String("tools", "", "Path to the process tools declaration (tools.yaml)")
}

// loadConfig builds the configuration and the logger, flags overriding file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	if cmd.Flags().Changed("dir") {
		cfg.StateDir, _ = cmd.Flags().GetString("dir")
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store.Kind = store
	}
	if tools, _ := cmd.Flags().GetString("tools"); tools != "" {
		cfg.ToolsPath = tools
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
