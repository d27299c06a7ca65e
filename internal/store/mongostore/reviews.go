package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MohammadRstm/BookApp/internal/domain"
)

// CreateReview inserts a review with the next insertion-order number.
func (s *Store) CreateReview(ctx context.Context, review *domain.Review) error {
	seq, err := s.nextSeq(ctx, reviewsCollection)
	if err != nil {
		return err
	}
	_, err = s.reviews.InsertOne(ctx, newReviewDoc(review, seq))
	return mapErr(err)
}

// lookupOne joins a single document from coll onto field as.
func lookupOne(coll, localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         coll,
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
	}
}

func (s *Store) aggregateReviews(ctx context.Context, pipeline mongo.Pipeline) ([]reviewRefsDoc, error) {
	cur, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[reviewRefsDoc](ctx, cur)
}

// ListReviews returns every review in insertion order with its book and
// reviewer attached.
func (s *Store) ListReviews(ctx context.Context) ([]domain.ReviewWithRefs, error) {
	pipeline := mongo.Pipeline{{{Key: "$sort", Value: bson.D{{Key: "seq", Value: 1}}}}}
	pipeline = append(pipeline, lookupOne(booksCollection, "bookId", "book")...)
	pipeline = append(pipeline, lookupOne(usersCollection, "userId", "user")...)
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{
		"book.description": 0, "book.author": 0, "book.genre": 0, "book.genreSlug": 0,
		"book.year": 0, "book.addedBy": 0, "book.seq": 0, "book.createdAt": 0, "book.updatedAt": 0,
		"user.passwordHash": 0, "user.emailLower": 0, "user.createdAt": 0, "user.updatedAt": 0,
	}}})

	docs, err := s.aggregateReviews(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReviewWithRefs, len(docs))
	for i, d := range docs {
		out[i] = domain.ReviewWithRefs{
			Review: d.Review.toDomain(),
			Book:   domain.BookRef{ID: d.Review.BookID, Title: d.Book.Title},
			User:   domain.UserRef{ID: d.Review.UserID, Name: d.User.Name, Email: d.User.Email},
		}
	}
	return out, nil
}

// ListReviewsByBook returns a book's reviews in insertion order with the
// reviewer's name attached.
func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]domain.ReviewWithUser, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookId": bookID}}},
		{{Key: "$sort", Value: bson.D{{Key: "seq", Value: 1}}}},
	}
	pipeline = append(pipeline, lookupOne(usersCollection, "userId", "user")...)
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{
		"user.passwordHash": 0, "user.emailLower": 0, "user.email": 0, "user.createdAt": 0, "user.updatedAt": 0,
	}}})

	docs, err := s.aggregateReviews(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReviewWithUser, len(docs))
	for i, d := range docs {
		out[i] = domain.ReviewWithUser{
			Review: d.Review.toDomain(),
			User:   domain.UserRef{ID: d.Review.UserID, Name: d.User.Name},
		}
	}
	return out, nil
}
