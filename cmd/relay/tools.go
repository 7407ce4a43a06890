package main

import (
	"github.com/aretw0/relay/internal/cli"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tools advertised to the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := cli.NewTools(cfg, logger)
		if err != nil {
			return err
		}
		return cli.PrintTools(cmd.OutOrStdout(), reg.Tools())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
