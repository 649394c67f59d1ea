package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) InsertHotelBooking(ctx context.Context, b *HotelBooking) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.hotelBookings.InsertOne(ctx, b)
	return wrap("Store.InsertHotelBooking", err)
}

// ListHotelBookings returns a user's hotel bookings, latest check-in first.
func (s *Store) ListHotelBookings(ctx context.Context, userID string) ([]HotelBooking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.hotelBookings.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "check_in_date", Value: -1}}))
	if err != nil {
		return nil, wrap("Store.ListHotelBookings", err)
	}
	defer cursor.Close(ctx)

	out := []HotelBooking{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap("Store.ListHotelBookings", err)
	}
	return out, nil
}
