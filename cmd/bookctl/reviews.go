package main

import (
	"context"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

func newReviewsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Inspect reviews",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every review with its book and reviewer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, a *app) error {
				reviews, err := a.reviews.List(ctx)
				if err != nil {
					return err
				}
				renderReviews(cmd.OutOrStdout(), reviews)
				return nil
			})
		},
	})
	return cmd
}

// maxReviewColumn truncates long review texts in the table.
const maxReviewColumn = 60

func renderReviews(w io.Writer, reviews []domain.ReviewWithRefs) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Book", "Reviewer", "Rating", "Review", "Created"})
	for _, r := range reviews {
		text := []rune(r.ReviewText)
		if len(text) > maxReviewColumn {
			text = append(text[:maxReviewColumn-1], '…')
		}
		table.Append([]string{
			r.Book.Title,
			r.User.Name,
			strconv.Itoa(r.Rating),
			string(text),
			r.CreatedAt.Format("2006-01-02"),
		})
	}
	table.Render()
}
