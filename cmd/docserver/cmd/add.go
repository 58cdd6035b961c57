package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// newAddCmd creates the add command.
func newAddCmd() *cobra.Command {
	var title string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a document from an argument, a file, or stdin",
		Long: `Add a document to the store. Content comes from the first argument,
from --file, or from stdin when neither is given.

The text is chunked, embedded, and indexed; identical content is
deduplicated against existing documents.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, derivedTitle, err := readContent(args, fromFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if title == "" {
				title = derivedTitle
			}
			if title == "" {
				return fmt.Errorf("--title is required when reading from an argument or stdin")
			}

			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, created, err := app.store.Create(cmd.Context(), title, content, nil)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %s, %d chunks)\n",
					doc.Title, doc.ID, len(doc.Chunks))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Identical content already stored as %q (id %s)\n",
					doc.Title, doc.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Document title (defaults to the file name with --file)")
	cmd.Flags().StringVar(&fromFile, "file", "", "Read content from a file")
	return cmd
}

// readContent resolves the content source: argument, file, or stdin.
func readContent(args []string, fromFile string, stdin io.Reader) (content, derivedTitle string, err error) {
	switch {
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", fromFile, err)
		}
		base := filepath.Base(fromFile)
		return string(data), strings.TrimSuffix(base, filepath.Ext(base)), nil
	case len(args) == 1:
		return args[0], "", nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}
}
