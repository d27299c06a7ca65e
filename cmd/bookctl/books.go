package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/textutil"
)

func newBooksCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect the catalogue",
	}
	cmd.AddCommand(newBooksListCmd(g), newBooksShowCmd(g))
	return cmd
}

func newBooksListCmd(g *globalFlags) *cobra.Command {
	var params store.ListBooksParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books with their ratings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(ctx context.Context, a *app) error {
				books, total, err := a.books.ListWithRating(ctx, params)
				if err != nil {
					return err
				}
				renderBooks(cmd.OutOrStdout(), books)
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d books\n", len(books), total)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&params.GenreSlug, "genre", "", "Only books of this genre")
	f.StringVar(&params.Sort, "sort", "", "Sort key: year, rating or title")
	f.StringVar(&params.Order, "order", "", "asc or desc")
	f.IntVar(&params.Page, "page", 1, "1-based page number")
	f.IntVar(&params.Limit, "limit", 0, "Page size; 0 lists every book")
	return cmd
}

func newBooksShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one book with its description and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, a *app) error {
				details, err := a.books.GetWithRating(ctx, args[0])
				if err != nil {
					return err
				}
				renderBookDetails(cmd.OutOrStdout(), details)
				return nil
			})
		},
	}
}

func renderBookDetails(w io.Writer, d *domain.BookDetails) {
	fmt.Fprintf(w, "%s by %s (%d)\n", d.Title, d.Author, d.Year)
	fmt.Fprintf(w, "Genre: %s\n", d.Genre)
	fmt.Fprintf(w, "Rating: %.2f from %d reviews\n\n", d.AverageRating, d.ReviewsCount)
	fmt.Fprintln(w, textutil.Markdown(d.Description))

	if len(d.Reviews) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Reviewer", "Rating", "Review"})
	for _, r := range d.Reviews {
		table.Append([]string{r.User.Name, strconv.Itoa(r.Rating), r.ReviewText})
	}
	table.Render()
}

func renderBooks(w io.Writer, books []domain.BookWithRating) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Author", "Year", "Genre", "Rating", "Reviews"})
	table.SetAutoWrapText(false)
	for _, b := range books {
		table.Append([]string{
			b.ID,
			b.Title,
			b.Author,
			strconv.Itoa(b.Year),
			b.Genre,
			strconv.FormatFloat(b.AverageRating, 'f', 2, 64),
			strconv.Itoa(b.ReviewsCount),
		})
	}
	table.Render()
}
