package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrea9293/mcp-documentation-server/internal/mcp"
	"github.com/andrea9293/mcp-documentation-server/internal/watcher"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var watchUploads bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server. The protocol runs over stdin/stdout, so logs go
to a rotating file under the data directory instead of the console.

With --watch-uploads, files dropped into the uploads folder are ingested
automatically while the server runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(true)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server, err := mcp.NewServer(app.store, app.engine, app.processor, app.cache, app.logger)
			if err != nil {
				return err
			}

			if watchUploads {
				w := watcher.New(app.processor.UploadsDir(), 0, func(ctx context.Context) error {
					_, err := app.processor.Process(ctx)
					return err
				}, app.logger)
				go func() {
					if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						app.logger.Warn("uploads watcher stopped", "error", err.Error())
					}
				}()
			}

			err = server.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&watchUploads, "watch-uploads", false, "Automatically ingest files dropped into the uploads folder")
	return cmd
}
