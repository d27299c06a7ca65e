package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MohammadRstm/BookApp/internal/domain"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// CreateBook inserts a book with the next insertion-order number.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	seq, err := s.nextSeq(ctx, booksCollection)
	if err != nil {
		return err
	}
	_, err = s.books.InsertOne(ctx, newBookDoc(book, seq))
	return mapErr(err)
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var doc bookDoc
	if err := s.books.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toDomain(), nil
}

// UpdateBook overwrites the editable fields. Title and owner are immutable.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.books.UpdateOne(ctx,
		bson.M{"_id": book.ID},
		bson.M{"$set": bson.M{
			"author":      book.Author,
			"description": book.Description,
			"genre":       book.Genre,
			"genreSlug":   book.GenreSlug,
			"year":        book.Year,
			"updatedAt":   book.UpdatedAt,
		}},
	)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) findBooks(ctx context.Context, filter bson.M) ([]*domain.Book, error) {
	cur, err := s.books.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[bookDoc](ctx, cur)
	if err != nil {
		return nil, err
	}

	books := make([]*domain.Book, len(docs))
	for i, d := range docs {
		books[i] = d.toDomain()
	}
	return books, nil
}

// ListBooks returns every book in insertion order.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.findBooks(ctx, bson.M{})
}

// ListBooksByOwner returns a user's books in insertion order.
func (s *Store) ListBooksByOwner(ctx context.Context, userID string) ([]*domain.Book, error) {
	return s.findBooks(ctx, bson.M{"addedBy": userID})
}

// ratingStages joins each book with its reviews and replaces them with the
// average and count. An empty review list averages to null, hence $ifNull.
func ratingStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         reviewsCollection,
			"localField":   "_id",
			"foreignField": "bookId",
			"as":           "reviews",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"averageRating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0.0}},
			"reviewsCount":  bson.M{"$size": "$reviews"},
			"titleLower":    bson.M{"$toLower": "$title"},
		}}},
		{{Key: "$project", Value: bson.M{"reviews": 0}}},
	}
}

var sortFields = map[string]string{
	store.SortYear:   "year",
	store.SortRating: "averageRating",
	store.SortTitle:  "titleLower",
}

// ListBooksWithRating runs the rating pipeline with filter, sort and paging
// pushed down to the server.
func (s *Store) ListBooksWithRating(ctx context.Context, params store.ListBooksParams) ([]domain.BookWithRating, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if params.GenreSlug != "" {
		filter["genreSlug"] = params.GenreSlug
	}

	total, err := s.books.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	sort := bson.D{}
	if field, ok := sortFields[params.Sort]; ok {
		dir := 1
		if params.Descending() {
			dir = -1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	sort = append(sort, bson.E{Key: "seq", Value: 1})

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	pipeline = append(pipeline, ratingStages()...)
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	if params.Limit > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: params.Offset()}},
			bson.D{{Key: "$limit", Value: params.Limit}},
		)
	}

	books, err := s.aggregateRated(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	return books, int(total), nil
}

// GetBookWithRating runs the rating pipeline for a single book.
func (s *Store) GetBookWithRating(ctx context.Context, id string) (*domain.BookWithRating, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, ratingStages()...)

	books, err := s.aggregateRated(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, store.ErrNotFound
	}
	return &books[0], nil
}

func (s *Store) aggregateRated(ctx context.Context, pipeline mongo.Pipeline) ([]domain.BookWithRating, error) {
	cur, err := s.books.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	docs, err := decodeAll[ratedBookDoc](ctx, cur)
	if err != nil {
		return nil, err
	}

	books := make([]domain.BookWithRating, len(docs))
	for i, d := range docs {
		books[i] = d.toDomain()
	}
	return books, nil
}
