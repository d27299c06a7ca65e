package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func testBooks() []*BookDocument {
	return []*BookDocument{
		BookToDocument(&domain.Book{
			Base:  domain.Base{ID: "book-dune"},
			Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", GenreSlug: "science-fiction",
			Year: 1965, Description: "<p>A desert planet and its <b>spice</b>.</p>",
		}),
		BookToDocument(&domain.Book{
			Base:  domain.Base{ID: "book-hyperion"},
			Title: "Hyperion", Author: "Dan Simmons", Genre: "Science Fiction", GenreSlug: "science-fiction",
			Year: 1989, Description: domain.DefaultDescription,
		}),
		BookToDocument(&domain.Book{
			Base:  domain.Base{ID: "book-emma"},
			Title: "Emma", Author: "Jane Austen", Genre: "Romance", GenreSlug: "romance",
			Year: 1815, Description: "Matchmaking in Highbury.",
		}),
	}
}

func hitIDs(res *Result) []string {
	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestOpen_Empty(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestOpen_OnDiskReopen(t *testing.T) {
	dir := t.TempDir()

	index, err := Open(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexBooks(testBooks()))
	require.NoError(t, index.Close())

	index, err = Open(Options{DataPath: dir})
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestOpen_LockedByAnotherHandle(t *testing.T) {
	dir := t.TempDir()

	held, err := Open(Options{DataPath: dir})
	require.NoError(t, err)
	defer held.Close()
	require.NoError(t, held.IndexBooks(testBooks()))

	_, err = Open(Options{DataPath: dir, LockTimeout: 100 * time.Millisecond})
	require.ErrorIs(t, err, ErrIndexLocked)

	// The held index is untouched.
	count, err := held.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestBookToDocument_StripsMarkup(t *testing.T) {
	docs := testBooks()
	assert.Equal(t, "A desert planet and its spice.", docs[0].Description)
	assert.Empty(t, docs[1].Description)
}

func TestSearch_ByTitleAndAuthor(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexBooks(testBooks()))
	ctx := context.Background()

	res, err := index.Search(ctx, Params{Query: "dune"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "book-dune", res.Hits[0].ID)

	res, err = index.Search(ctx, Params{Query: "austen"})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-emma"}, hitIDs(res))

	res, err = index.Search(ctx, Params{Query: "spice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-dune"}, hitIDs(res))
}

func TestSearch_FuzzyAndPrefix(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexBooks(testBooks()))
	ctx := context.Background()

	res, err := index.Search(ctx, Params{Query: "dume"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "book-dune")

	res, err = index.Search(ctx, Params{Query: "hyp"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "book-hyperion")
}

func TestSearch_GenreFilter(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexBooks(testBooks()))

	res, err := index.Search(context.Background(), Params{GenreSlug: "science-fiction"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-dune", "book-hyperion"}, hitIDs(res))
	assert.Equal(t, uint64(2), res.Total)
}

func TestSearch_Limit(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexBooks(testBooks()))

	res, err := index.Search(context.Background(), Params{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)
	assert.Equal(t, uint64(3), res.Total)
}

func TestIndexBook_ReplacesAndDeletes(t *testing.T) {
	index := setupTestIndex(t)
	docs := testBooks()
	require.NoError(t, index.IndexBook(docs[0]))

	docs[0].Author = "Brian Herbert"
	require.NoError(t, index.IndexBook(docs[0]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := index.Search(context.Background(), Params{Query: "brian"})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-dune"}, hitIDs(res))

	require.NoError(t, index.DeleteBook("book-dune"))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexBooks(testBooks()))

	require.NoError(t, index.Rebuild(testBooks()[:1]))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
