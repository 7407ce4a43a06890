package main

import (
	"io"

	"github.com/aretw0/relay/internal/cli"
	"github.com/aretw0/relay/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage session bookmarks",
	Long:  `List, inspect, and remove the session bookmarks used by "relay chat --session".`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			return cli.ListSessions(cmd.Context(), mgr, cmd.OutOrStdout())
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print a session bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			return cli.InspectSession(cmd.Context(), mgr, args[0], cmd.OutOrStdout())
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove session bookmarks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(mgr *session.Manager) error {
			return cli.RemoveSessions(cmd.Context(), mgr, args, cmd.OutOrStdout())
		})
	},
}

func withSessions(cmd *cobra.Command, fn func(*session.Manager) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, _, closer, err := cli.NewSessions(cfg, logger)
	if err != nil {
		return err
	}
	defer func(c io.Closer) { _ = c.Close() }(closer)
	return fn(mgr)
}

func init() {
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	rootCmd.AddCommand(sessionCmd)
}
