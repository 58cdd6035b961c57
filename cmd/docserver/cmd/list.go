package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(false)
			if err != nil {
				return err
			}
			defer app.Close()

			infos, err := app.store.List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No documents stored yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSIZE\tCHUNKS\tCREATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					info.ID, info.Title, info.Size, info.ChunkCount,
					info.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
