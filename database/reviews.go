package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewsLimit = 100

func (s *Store) InsertReview(ctx context.Context, r *Review) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.reviews.InsertOne(ctx, r)
	return wrap("Store.InsertReview", err)
}

// ListReviews returns the most recent reviews, newest first.
func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.reviews.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(reviewsLimit))
	if err != nil {
		return nil, wrap("Store.ListReviews", err)
	}
	defer cursor.Close(ctx)

	out := []Review{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap("Store.ListReviews", err)
	}
	return out, nil
}
