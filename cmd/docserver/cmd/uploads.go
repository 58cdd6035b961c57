package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrea9293/mcp-documentation-server/internal/watcher"
)

// newUploadsCmd creates the uploads command group.
func newUploadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uploads",
		Short: "Manage the uploads inbox",
	}
	cmd.AddCommand(newUploadsProcessCmd())
	cmd.AddCommand(newUploadsWatchCmd())
	cmd.AddCommand(newUploadsInfoCmd())
	return cmd
}

func newUploadsProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Ingest every supported file in the uploads inbox",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.processor.Process(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d file(s)\n", report.Processed)
			for _, msg := range report.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", msg)
			}
			return nil
		},
	}
}

func newUploadsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and ingest files as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n",
				app.processor.UploadsDir())

			w := watcher.New(app.processor.UploadsDir(), 0, func(ctx context.Context) error {
				report, err := app.processor.Process(ctx)
				if err != nil {
					return err
				}
				if report.Processed > 0 || len(report.Errors) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Processed %d file(s), %d error(s)\n",
						report.Processed, len(report.Errors))
				}
				return nil
			}, app.logger)

			err = w.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newUploadsInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the uploads inbox path and supported file types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Uploads inbox: %s\n", app.processor.UploadsDir())
			fmt.Fprintf(cmd.OutOrStdout(), "Supported types: %s\n",
				strings.Join(app.processor.Supported(), ", "))
			return nil
		},
	}
}
