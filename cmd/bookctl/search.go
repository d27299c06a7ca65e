package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newSearchCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Manage the full-text index",
		Long:  "Manage the full-text index. The server holds the index while it runs, so stop it first.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runSearch(cmd, func(ctx context.Context, a *app) error {
				n, err := a.books.Reindex(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d books\n", n)
				return nil
			})
		},
	})

	var genreLabel string
	var limit int
	query := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a search against the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runSearch(cmd, func(ctx context.Context, a *app) error {
				hits, err := a.books.Search(ctx, strings.Join(args, " "), genreLabel, limit)
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.SetHeader([]string{"Score", "ID", "Title", "Author", "Genre"})
				for _, h := range hits {
					table.Append([]string{fmt.Sprintf("%.3f", h.Score), h.ID, h.Title, h.Author, h.Genre})
				}
				table.Render()
				return nil
			})
		},
	}
	query.Flags().StringVar(&genreLabel, "genre", "", "Only books of this genre")
	query.Flags().IntVar(&limit, "limit", 0, "Maximum hits (default 20)")
	cmd.AddCommand(query)

	return cmd
}
