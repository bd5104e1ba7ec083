package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spboyer/simarchive/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var port int
	var host string
	var dir string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation history over HTTP",
		Long: `Serve the simulation history as a read-only JSON API.

Endpoints:
  GET /api/health
  GET /api/builds?sort=id|updated|records&order=asc|desc
  GET /api/builds/{id}
  GET /api/trend?simulation=<name>

The server binds to 127.0.0.1 unless --host is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel}))
			srv, err := webserver.New(webserver.Config{
				Port:           port,
				Host:           host,
				HistoryDir:     historyDir(dir, cfg),
				AllowedOrigins: origins,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "simarchive history API: http://%s\n", srv.Addr())
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", webserver.DefaultPort, "Port to listen on (default: server.port)")
	cmd.Flags().StringVar(&host, "host", "", "Address to bind (default 127.0.0.1)")
	cmd.Flags().StringVar(&dir, "history-dir", "", "History directory (default: paths.history)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "Origins allowed to call the API from a browser")

	return cmd
}
