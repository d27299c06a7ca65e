package badgerdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// reviewDoc is the stored form of a review.
type reviewDoc struct {
	domain.Review
	Seq uint64 `json:"seq"`
}

// CreateReview saves a review with its order and per-book indexes.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	seq, err := s.reviewSeq.Next()
	if err != nil {
		return fmt.Errorf("next review sequence: %w", err)
	}

	key := reviewKey(review.ID)
	err = s.update(func(txn *badger.Txn) error {
		taken, err := exists(txn, key)
		if err != nil {
			return fmt.Errorf("check review exists: %w", err)
		}
		if taken {
			return store.ErrAlreadyExists
		}

		if err := setJSON(txn, key, reviewDoc{Review: *review, Seq: seq}); err != nil {
			return err
		}
		if err := txn.Set(reviewSeqIndexKey(seq), []byte(review.ID)); err != nil {
			return err
		}
		return txn.Set(bookReviewKey(review.BookID, seq), []byte(review.ID))
	})
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	s.logger.DebugContext(ctx, "review created", "id", review.ID, "book_id", review.BookID)
	return nil
}

// reviewsByIndex loads the reviews referenced under an index prefix, in key order.
func reviewsByIndex(txn *badger.Txn, prefix []byte) ([]*domain.Review, error) {
	ids, err := indexValues(txn, prefix)
	if err != nil {
		return nil, err
	}

	reviews := make([]*domain.Review, 0, len(ids))
	for _, reviewID := range ids {
		var doc reviewDoc
		err := getJSON(txn, reviewKey(reviewID), &doc)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &doc.Review)
	}
	return reviews, nil
}

// ratingSummaries returns the rating summary of every reviewed book.
func ratingSummaries(txn *badger.Txn) (map[string]domain.RatingSummary, error) {
	reviews, err := reviewsByIndex(txn, []byte(reviewBySeqPrefix))
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]domain.RatingSummary)
	for _, r := range reviews {
		sum := summaries[r.BookID]
		sum.Add(r.Rating)
		summaries[r.BookID] = sum
	}
	return summaries, nil
}

// ListReviews returns every review in insertion order with its book and
// reviewer attached.
func (s *Store) ListReviews(_ context.Context) ([]domain.ReviewWithRefs, error) {
	var out []domain.ReviewWithRefs
	err := s.db.View(func(txn *badger.Txn) error {
		reviews, err := reviewsByIndex(txn, []byte(reviewBySeqPrefix))
		if err != nil {
			return err
		}

		userIDs := make(map[string]struct{})
		titles := make(map[string]string)
		for _, r := range reviews {
			userIDs[r.UserID] = struct{}{}
			if _, ok := titles[r.BookID]; ok {
				continue
			}
			doc, err := getBook(txn, r.BookID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				titles[r.BookID] = ""
			case err != nil:
				return err
			default:
				titles[r.BookID] = doc.Title
			}
		}
		users, err := usersByID(txn, userIDs)
		if err != nil {
			return err
		}

		out = make([]domain.ReviewWithRefs, 0, len(reviews))
		for _, r := range reviews {
			ref := domain.UserRef{ID: r.UserID}
			if u, ok := users[r.UserID]; ok {
				ref = u.Ref()
			}
			out = append(out, domain.ReviewWithRefs{
				Review: *r,
				Book:   domain.BookRef{ID: r.BookID, Title: titles[r.BookID]},
				User:   ref,
			})
		}
		return nil
	})
	return out, err
}

// ListReviewsByBook returns a book's reviews in insertion order with the
// reviewer's name attached.
func (s *Store) ListReviewsByBook(_ context.Context, bookID string) ([]domain.ReviewWithUser, error) {
	var out []domain.ReviewWithUser
	err := s.db.View(func(txn *badger.Txn) error {
		reviews, err := reviewsByIndex(txn, bookReviewsPrefix(bookID))
		if err != nil {
			return err
		}

		userIDs := make(map[string]struct{}, len(reviews))
		for _, r := range reviews {
			userIDs[r.UserID] = struct{}{}
		}
		users, err := usersByID(txn, userIDs)
		if err != nil {
			return err
		}

		out = make([]domain.ReviewWithUser, 0, len(reviews))
		for _, r := range reviews {
			ref := domain.UserRef{ID: r.UserID}
			if u, ok := users[r.UserID]; ok {
				ref = domain.UserRef{ID: u.ID, Name: u.Name}
			}
			out = append(out, domain.ReviewWithUser{Review: *r, User: ref})
		}
		return nil
	})
	return out, err
}
