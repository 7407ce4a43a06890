package main

import (
	"github.com/aretw0/relay/internal/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes conversations over HTTP:

  POST /threads                      start a thread
  POST /threads/{threadID}/messages  send a message and wait for the reply
  GET  /tools                        list the tools
  GET  /healthz                      liveness
  GET  /metrics                      Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.Build(sigCtx, cfg, logger, cli.Options{Registerer: prometheus.DefaultRegisterer})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.Serve(sigCtx, app, cfg.HTTP.Port)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
