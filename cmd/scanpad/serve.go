package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scanpad/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve an editing session over MCP on stdin/stdout",
		Long: `Serve an editing session over MCP (JSON-RPC 2.0, one message per line)
on stdin/stdout. Configure it in your MCP client as a stdio server.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			opts, style, err := editorOptions(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			opts.Context = ctx

			logger.WithField("commit", GitCommit).Debugf("scanpad %s (built %s)", Version, BuildTime)

			srv := server.New(server.Options{
				Editor:  opts,
				Overlay: style,
				Logger:  logger,
				Version: Version,
			})
			return srv.Run(ctx)
		},
	}
}
