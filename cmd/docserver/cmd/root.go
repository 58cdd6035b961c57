// Package cmd provides the CLI commands for the documentation server.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrea9293/mcp-documentation-server/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the docserver CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docserver",
		Short: "Local-first semantic document search over MCP",
		Long: `docserver stores documents locally, chunks and embeds them, and serves
semantic search to AI assistants over the Model Context Protocol.

Run 'docserver serve' to start the MCP server on stdio, or use the
add/search/list commands to manage documents directly.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("docserver version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: <data dir>/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUploadsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
