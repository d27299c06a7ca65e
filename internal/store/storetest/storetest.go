// Package storetest is a conformance suite that every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/id"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// Factory returns an empty store. It is called once per subtest and the
// suite closes the returned store.
type Factory func(t *testing.T) store.Store

// Run exercises s against the store contract.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Users/CreateAndGet", testUsersCreateAndGet},
		{"Users/DuplicateEmail", testUsersDuplicateEmail},
		{"Users/NotFound", testUsersNotFound},
		{"Users/UpdatePasswordHash", testUsersUpdatePasswordHash},
		{"Books/CreateAndGet", testBooksCreateAndGet},
		{"Books/Update", testBooksUpdate},
		{"Books/NotFound", testBooksNotFound},
		{"Books/InsertionOrder", testBooksInsertionOrder},
		{"Books/ListByOwner", testBooksListByOwner},
		{"Books/ConcurrentCreate", testBooksConcurrentCreate},
		{"Rating/NoReviews", testRatingNoReviews},
		{"Rating/Aggregates", testRatingAggregates},
		{"Rating/ListParams", testRatingListParams},
		{"Reviews/ListWithRefs", testReviewsListWithRefs},
		{"Reviews/ByBook", testReviewsByBook},
		{"Reviews/Concurrent", testReviewsConcurrent},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := factory(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func newUser(t *testing.T, s store.Store, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		Base:         domain.Base{ID: id.MustGenerate(id.PrefixUser)},
		Name:         name,
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
	}
	u.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newBook(t *testing.T, s store.Store, owner *domain.User, title, genreSlug string, year int) *domain.Book {
	t.Helper()
	b := &domain.Book{
		Base:        domain.Base{ID: id.MustGenerate(id.PrefixBook)},
		Title:       title,
		Author:      "Author of " + title,
		Description: domain.DefaultDescription,
		Genre:       genreSlug,
		GenreSlug:   genreSlug,
		Year:        year,
		AddedBy:     owner.ID,
	}
	b.InitTimestamps()
	require.NoError(t, s.CreateBook(context.Background(), b))
	return b
}

func newReview(t *testing.T, s store.Store, book *domain.Book, user *domain.User, rating int) *domain.Review {
	t.Helper()
	r := &domain.Review{
		Base:       domain.Base{ID: id.MustGenerate(id.PrefixReview)},
		BookID:     book.ID,
		UserID:     user.ID,
		Rating:     rating,
		ReviewText: fmt.Sprintf("%d stars", rating),
	}
	r.InitTimestamps()
	require.NoError(t, s.CreateReview(context.Background(), r))
	return r
}

func testUsersCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "Ada", "Ada@Example.com")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "Ada@Example.com", got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Millisecond)

	byEmail, err := s.GetUserByEmail(ctx, "  ada@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func testUsersDuplicateEmail(t *testing.T, s store.Store) {
	newUser(t, s, "Ada", "ada@example.com")

	dup := &domain.User{
		Base:         domain.Base{ID: id.MustGenerate(id.PrefixUser)},
		Name:         "Other Ada",
		Email:        "ADA@example.com",
		PasswordHash: "x",
	}
	dup.InitTimestamps()
	err := s.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testUsersNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetUser(ctx, id.MustGenerate(id.PrefixUser))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.UpdatePasswordHash(ctx, id.MustGenerate(id.PrefixUser), "hash")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUsersUpdatePasswordHash(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s, "Ada", "ada@example.com")

	require.NoError(t, s.UpdatePasswordHash(ctx, u.ID, "$argon2id$new"))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$new", got.PasswordHash)
}

func testBooksCreateAndGet(t *testing.T, s store.Store) {
	owner := newUser(t, s, "Ada", "ada@example.com")
	b := newBook(t, s, owner, "Dune", "science-fiction", 1965)

	got, err := s.GetBook(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, b.Author, got.Author)
	assert.Equal(t, "N/A", got.Description)
	assert.Equal(t, "science-fiction", got.GenreSlug)
	assert.Equal(t, 1965, got.Year)
	assert.Equal(t, owner.ID, got.AddedBy)
}

func testBooksUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	b := newBook(t, s, owner, "Dune", "science-fiction", 1965)

	b.Author = "Frank Herbert"
	b.Year = 1966
	b.Description = "Spice."
	b.Genre = "Fantasy"
	b.GenreSlug = "fantasy"
	b.Touch()
	require.NoError(t, s.UpdateBook(ctx, b))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, 1966, got.Year)
	assert.Equal(t, "Spice.", got.Description)
	assert.Equal(t, "fantasy", got.GenreSlug)
	assert.Equal(t, owner.ID, got.AddedBy)

	// Rewriting identical values still succeeds.
	require.NoError(t, s.UpdateBook(ctx, b))

	missing := *b
	missing.ID = id.MustGenerate(id.PrefixBook)
	assert.ErrorIs(t, s.UpdateBook(ctx, &missing), store.ErrNotFound)
}

func testBooksNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetBook(ctx, id.MustGenerate(id.PrefixBook))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetBookWithRating(ctx, id.MustGenerate(id.PrefixBook))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testBooksInsertionOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)

	var want []string
	for _, title := range []string{"Zeta", "Alpha", "Mu", "Beta"} {
		want = append(want, newBook(t, s, owner, title, "fiction", 2000).ID)
	}

	books, err = s.ListBooks(ctx)
	require.NoError(t, err)
	var got []string
	for _, b := range books {
		got = append(got, b.ID)
	}
	assert.Equal(t, want, got)

	rated, total, err := s.ListBooksWithRating(ctx, store.ListBooksParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	got = got[:0]
	for _, b := range rated {
		got = append(got, b.ID)
	}
	assert.Equal(t, want, got)
}

func testBooksListByOwner(t *testing.T, s store.Store) {
	ctx := context.Background()
	ada := newUser(t, s, "Ada", "ada@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")

	first := newBook(t, s, ada, "First", "fiction", 2001)
	newBook(t, s, bob, "Other", "fiction", 2002)
	second := newBook(t, s, ada, "Second", "fiction", 2003)

	mine, err := s.ListBooksByOwner(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)

	none, err := s.ListBooksByOwner(ctx, id.MustGenerate(id.PrefixUser))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testRatingNoReviews(t *testing.T, s store.Store) {
	owner := newUser(t, s, "Ada", "ada@example.com")
	b := newBook(t, s, owner, "Dune", "science-fiction", 1965)

	got, err := s.GetBookWithRating(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.ReviewsCount)
}

func testRatingAggregates(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	r1 := newUser(t, s, "Bob", "bob@example.com")
	r2 := newUser(t, s, "Cy", "cy@example.com")

	dune := newBook(t, s, owner, "Dune", "science-fiction", 1965)
	emma := newBook(t, s, owner, "Emma", "romance", 1815)

	newReview(t, s, dune, r1, 4)
	newReview(t, s, dune, r2, 5)
	newReview(t, s, dune, r1, 3)
	newReview(t, s, emma, r2, 2)

	got, err := s.GetBookWithRating(ctx, dune.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.AverageRating, 1e-9)
	assert.Equal(t, 3, got.ReviewsCount)

	all, total, err := s.ListBooksWithRating(ctx, store.ListBooksParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 2)
	assert.InDelta(t, 4.0, all[0].AverageRating, 1e-9)
	assert.Equal(t, 3, all[0].ReviewsCount)
	assert.InDelta(t, 2.0, all[1].AverageRating, 1e-9)
	assert.Equal(t, 1, all[1].ReviewsCount)
}

func testRatingListParams(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	reviewer := newUser(t, s, "Bob", "bob@example.com")

	dune := newBook(t, s, owner, "dune", "science-fiction", 1965)
	emma := newBook(t, s, owner, "Emma", "romance", 1815)
	hyperion := newBook(t, s, owner, "Hyperion", "science-fiction", 1989)
	beloved := newBook(t, s, owner, "Beloved", "fiction", 1987)

	newReview(t, s, dune, reviewer, 4)
	newReview(t, s, hyperion, reviewer, 5)
	newReview(t, s, beloved, reviewer, 3)

	ids := func(books []domain.BookWithRating) []string {
		out := make([]string, len(books))
		for i, b := range books {
			out[i] = b.ID
		}
		return out
	}

	tests := []struct {
		name   string
		params store.ListBooksParams
		want   []string
		total  int
	}{
		{"genre", store.ListBooksParams{GenreSlug: "science-fiction"},
			[]string{dune.ID, hyperion.ID}, 2},
		{"year asc", store.ListBooksParams{Sort: store.SortYear},
			[]string{emma.ID, dune.ID, beloved.ID, hyperion.ID}, 4},
		{"year desc", store.ListBooksParams{Sort: store.SortYear, Order: store.OrderDesc},
			[]string{hyperion.ID, beloved.ID, dune.ID, emma.ID}, 4},
		{"rating desc", store.ListBooksParams{Sort: store.SortRating, Order: store.OrderDesc},
			[]string{hyperion.ID, dune.ID, beloved.ID, emma.ID}, 4},
		{"title asc ignores case", store.ListBooksParams{Sort: store.SortTitle},
			[]string{beloved.ID, dune.ID, emma.ID, hyperion.ID}, 4},
		{"page 2", store.ListBooksParams{Page: 2, Limit: 3},
			[]string{beloved.ID}, 4},
		{"genre sorted paged", store.ListBooksParams{
			GenreSlug: "science-fiction", Sort: store.SortYear, Order: store.OrderDesc, Page: 1, Limit: 1},
			[]string{hyperion.ID}, 2},
		{"past the end", store.ListBooksParams{Page: 9, Limit: 10}, []string{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.ListBooksWithRating(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, _, err := s.ListBooksWithRating(ctx, store.ListBooksParams{Sort: "price"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func testReviewsListWithRefs(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	dune := newBook(t, s, owner, "Dune", "science-fiction", 1965)
	emma := newBook(t, s, owner, "Emma", "romance", 1815)

	empty, err := s.ListReviews(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := newReview(t, s, dune, bob, 5)
	second := newReview(t, s, emma, bob, 2)

	reviews, err := s.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	assert.Equal(t, first.ID, reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, "5 stars", reviews[0].ReviewText)
	assert.Equal(t, domain.BookRef{ID: dune.ID, Title: "Dune"}, reviews[0].Book)
	assert.Equal(t, domain.UserRef{ID: bob.ID, Name: "Bob", Email: "bob@example.com"}, reviews[0].User)

	assert.Equal(t, second.ID, reviews[1].ID)
	assert.Equal(t, "Emma", reviews[1].Book.Title)
}

func testReviewsByBook(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	cy := newUser(t, s, "Cy", "cy@example.com")
	dune := newBook(t, s, owner, "Dune", "science-fiction", 1965)
	emma := newBook(t, s, owner, "Emma", "romance", 1815)

	first := newReview(t, s, dune, bob, 4)
	newReview(t, s, emma, cy, 1)
	second := newReview(t, s, dune, cy, 5)

	reviews, err := s.ListReviewsByBook(ctx, dune.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, first.ID, reviews[0].ID)
	assert.Equal(t, domain.UserRef{ID: bob.ID, Name: "Bob"}, reviews[0].User)
	assert.Equal(t, second.ID, reviews[1].ID)
	assert.Equal(t, "Cy", reviews[1].User.Name)

	none, err := s.ListReviewsByBook(ctx, id.MustGenerate(id.PrefixBook))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testReviewsConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "Ada", "ada@example.com")
	bob := newUser(t, s, "Bob", "bob@example.com")
	dune := newBook(t, s, owner, "Dune", "science-fiction", 1965)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			r := &domain.Review{
				Base:       domain.Base{ID: id.MustGenerate(id.PrefixReview)},
				BookID:     dune.ID,
				UserID:     bob.ID,
				Rating:     rating,
				ReviewText: "concurrent",
			}
			r.InitTimestamps()
			errs <- s.CreateReview(ctx, r)
		}(i%5 + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetBookWithRating(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.ReviewsCount)
}

func testBooksConcurrentCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	owners := []*domain.User{
		newUser(t, s, "Ada", "ada@example.com"),
		newUser(t, s, "Bob", "bob@example.com"),
	}

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := &domain.Book{
				Base:        domain.Base{ID: id.MustGenerate(id.PrefixBook)},
				Title:       fmt.Sprintf("Volume %d", i),
				Author:      "Anon",
				Description: domain.DefaultDescription,
				Genre:       "fantasy",
				GenreSlug:   "fantasy",
				Year:        1900 + i,
				AddedBy:     owners[i%2].ID,
			}
			b.InitTimestamps()
			errs <- s.CreateBook(ctx, b)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, total, err := s.ListBooksWithRating(ctx, store.ListBooksParams{})
	require.NoError(t, err)
	assert.Equal(t, n, total)
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
