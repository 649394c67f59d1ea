package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const opTimeout = 5 * time.Second

// ErrDuplicate is returned when an insert collides with a unique index.
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// Store owns the MongoDB client and one handle per collection.
type Store struct {
	client        *mongo.Client
	log           *zap.Logger
	users         *mongo.Collection
	itineraries   *mongo.Collection
	bookings      *mongo.Collection
	hotelBookings *mongo.Collection
	reviews       *mongo.Collection
	airports      *mongo.Collection
	cities        *mongo.Collection
	flights       *mongo.Collection
	seats         *mongo.Collection
}

// ─── Init ────────────────────────────────────────────────────────────────────

// Connect dials MongoDB, pings it and ensures indexes.
func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:        client,
		log:           log,
		users:         db.Collection("users"),
		itineraries:   db.Collection("itineraries"),
		bookings:      db.Collection("bookings"),
		hotelBookings: db.Collection("hotel_bookings"),
		reviews:       db.Collection("reviews"),
		airports:      db.Collection("airports"),
		cities:        db.Collection("cities"),
		flights:       db.Collection("flights"),
		seats:         db.Collection("seats"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("✅ MongoDB connected", zap.String("database", dbName))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "phone", Value: 1}}},
		}},
		{s.itineraries, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			// temporary itineraries carry expires_at; permanent ones omit it
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		}},
		{s.bookings, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "booking_reference", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		}},
		{s.hotelBookings, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "check_in_date", Value: -1}}},
			{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.reviews, []mongo.IndexModel{
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		}},
		{s.airports, []mongo.IndexModel{
			{Keys: bson.D{{Key: "iata", Value: 1}}},
		}},
		{s.seats, []mongo.IndexModel{
			{Keys: bson.D{{Key: "flight_number", Value: 1}, {Key: "seat", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "booking_id", Value: 1}}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
