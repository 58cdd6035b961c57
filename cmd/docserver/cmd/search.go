package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrea9293/mcp-documentation-server/internal/mcp"
)

// newSearchCmd creates the search command.
func newSearchCmd() *cobra.Command {
	var limit int
	var docID string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search document chunks semantically",
		Long: `Search within one document by semantic similarity. With --document, the
query is scored against that document's chunks. Without it, the query is
matched against document titles and content by keyword to help you find
the right document id first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			if docID == "" {
				infos, err := app.store.KeywordSearch(query)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No documents match those keywords.")
					return nil
				}
				for _, info := range infos {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%d chunks)\n",
						info.ID, info.Title, info.ChunkCount)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "\nRe-run with --document <id> for semantic search inside a document.")
				return nil
			}

			doc, err := app.store.Get(docID)
			if err != nil {
				return err
			}
			results, err := app.engine.Search(cmd.Context(), doc.Chunks, query, limit)
			if err != nil {
				return err
			}

			out := make([]mcp.SearchResultOutput, 0, len(results))
			for _, r := range results {
				out = append(out, mcp.SearchResultOutput{
					DocumentID: r.Chunk.DocumentID,
					ChunkIndex: r.Chunk.Index,
					Score:      r.Score,
					Content:    r.Chunk.Content,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), mcp.FormatSearchResults(query, out))
			return nil
		},
	}

	cmd.Flags().StringVar(&docID, "document", "", "Document id to search within")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	return cmd
}
