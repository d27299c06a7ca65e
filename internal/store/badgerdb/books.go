package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// bookDoc is the stored form of a book.
type bookDoc struct {
	domain.Book
	Seq uint64 `json:"seq"`
}

// CreateBook saves a book with its order and owner indexes.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	seq, err := s.bookSeq.Next()
	if err != nil {
		return fmt.Errorf("next book sequence: %w", err)
	}

	key := bookKey(book.ID)
	err = s.update(func(txn *badger.Txn) error {
		taken, err := exists(txn, key)
		if err != nil {
			return fmt.Errorf("check book exists: %w", err)
		}
		if taken {
			return store.ErrAlreadyExists
		}

		if err := setJSON(txn, key, bookDoc{Book: *book, Seq: seq}); err != nil {
			return err
		}
		if err := txn.Set(bookSeqIndexKey(seq), []byte(book.ID)); err != nil {
			return err
		}
		return txn.Set(ownerIndexKey(book.AddedBy, seq), []byte(book.ID))
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	s.logger.DebugContext(ctx, "book created", "id", book.ID, "title", book.Title)
	return nil
}

func getBook(txn *badger.Txn, id string) (*bookDoc, error) {
	var doc bookDoc
	if err := getJSON(txn, bookKey(id), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(_ context.Context, id string) (*domain.Book, error) {
	var doc *bookDoc
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getBook(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc.Book, nil
}

// UpdateBook overwrites the editable fields. Title and owner are immutable,
// so the indexes never move.
func (s *Store) UpdateBook(_ context.Context, book *domain.Book) error {
	return s.update(func(txn *badger.Txn) error {
		doc, err := getBook(txn, book.ID)
		if err != nil {
			return err
		}
		doc.Author = book.Author
		doc.Description = book.Description
		doc.Genre = book.Genre
		doc.GenreSlug = book.GenreSlug
		doc.Year = book.Year
		doc.UpdatedAt = book.UpdatedAt
		return setJSON(txn, bookKey(book.ID), doc)
	})
}

// booksByIndex loads the books referenced under an index prefix, in key order.
func booksByIndex(txn *badger.Txn, prefix []byte) ([]*domain.Book, error) {
	ids, err := indexValues(txn, prefix)
	if err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(ids))
	for _, bookID := range ids {
		doc, err := getBook(txn, bookID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		books = append(books, &doc.Book)
	}
	return books, nil
}

// ListBooks returns every book in insertion order.
func (s *Store) ListBooks(_ context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		books, err = booksByIndex(txn, []byte(bookBySeqPrefix))
		return err
	})
	return books, err
}

// ListBooksByOwner returns a user's books in insertion order.
func (s *Store) ListBooksByOwner(_ context.Context, userID string) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		books, err = booksByIndex(txn, ownerIndexPrefix(userID))
		return err
	})
	return books, err
}

// ListBooksWithRating folds every review into per-book summaries, then
// filters, sorts and pages in memory.
func (s *Store) ListBooksWithRating(_ context.Context, params store.ListBooksParams) ([]domain.BookWithRating, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	var rated []domain.BookWithRating
	err := s.db.View(func(txn *badger.Txn) error {
		books, err := booksByIndex(txn, []byte(bookBySeqPrefix))
		if err != nil {
			return err
		}
		summaries, err := ratingSummaries(txn)
		if err != nil {
			return err
		}

		rated = make([]domain.BookWithRating, 0, len(books))
		for _, b := range books {
			rated = append(rated, summaries[b.ID].WithRating(*b))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	page, total := store.ApplyListParams(rated, params)
	return page, total, nil
}

// GetBookWithRating returns one book with the rating view computed from
// its review index.
func (s *Store) GetBookWithRating(_ context.Context, id string) (*domain.BookWithRating, error) {
	var rated domain.BookWithRating
	err := s.db.View(func(txn *badger.Txn) error {
		doc, err := getBook(txn, id)
		if err != nil {
			return err
		}
		reviews, err := reviewsByIndex(txn, bookReviewsPrefix(id))
		if err != nil {
			return err
		}

		var summary domain.RatingSummary
		for _, r := range reviews {
			summary.Add(r.Rating)
		}
		rated = summary.WithRating(doc.Book)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rated, nil
}
