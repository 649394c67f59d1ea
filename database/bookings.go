package database

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCabinSeats seeds inventory the first time a flight number is booked.
var DefaultCabinSeats = map[string]int{
	"economy":         150,
	"premium_economy": 24,
	"business":        30,
	"first":           8,
}

// ─── Inventory ───────────────────────────────────────────────────────────────

// ReserveSeats decrements a cabin's available seats in one conditional update.
// It returns false when fewer than n seats remain.
func (s *Store) ReserveSeats(ctx context.Context, flightNumber, class string, n int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	seed := bson.M{}
	for k, v := range DefaultCabinSeats {
		seed["available_seats."+k] = v
	}
	if _, err := s.flights.UpdateOne(ctx,
		bson.M{"_id": flightNumber},
		bson.M{"$setOnInsert": seed},
		options.Update().SetUpsert(true)); err != nil {
		return false, wrap("Store.ReserveSeats", err)
	}

	field := "available_seats." + class
	res, err := s.flights.UpdateOne(ctx,
		bson.M{"_id": flightNumber, field: bson.M{"$gte": n}},
		bson.M{"$inc": bson.M{field: -n}})
	if err != nil {
		return false, wrap("Store.ReserveSeats", err)
	}
	return res.ModifiedCount == 1, nil
}

// ReleaseSeats returns n seats to a cabin.
func (s *Store) ReleaseSeats(ctx context.Context, flightNumber, class string, n int) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.flights.UpdateOne(ctx,
		bson.M{"_id": flightNumber},
		bson.M{"$inc": bson.M{"available_seats." + class: n}})
	return wrap("Store.ReleaseSeats", err)
}

// ─── Bookings ────────────────────────────────────────────────────────────────

// InsertBooking returns ErrDuplicate when the idempotency key was used before.
func (s *Store) InsertBooking(ctx context.Context, b *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.bookings.InsertOne(ctx, b)
	return wrap("Store.InsertBooking", err)
}

func (s *Store) GetBooking(ctx context.Context, id string) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, wrap("Store.GetBooking", err)
	}
	return &b, nil
}

func (s *Store) FindBookingByIdempotencyKey(ctx context.Context, key string) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var b Booking
	if err := s.bookings.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&b); err != nil {
		return nil, wrap("Store.FindBookingByIdempotencyKey", err)
	}
	return &b, nil
}

func (s *Store) ListBookings(ctx context.Context, userID string) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.bookings.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrap("Store.ListBookings", err)
	}
	defer cursor.Close(ctx)

	out := []Booking{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap("Store.ListBookings", err)
	}
	return out, nil
}

// ConfirmPayment marks a pending booking paid and confirmed.
func (s *Store) ConfirmPayment(ctx context.Context, id, transactionID, method string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.bookings.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{
			"status":                 StatusConfirmed,
			"payment.status":         PaymentCompleted,
			"payment.transaction_id": transactionID,
			"payment.method":         method,
			"payment.paid_at":        now,
			"updated_at":             now,
		}})
	if err != nil {
		return wrap("Store.ConfirmPayment", err)
	}
	if res.MatchedCount == 0 {
		return wrap("Store.ConfirmPayment", ErrNotFound)
	}
	return nil
}

// CancelBooking flips a non-cancelled booking to cancelled. It reports false
// when the booking was already cancelled so seats are not released twice.
func (s *Store) CancelBooking(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.bookings.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": StatusCancelled}},
		bson.M{"$set": bson.M{"status": StatusCancelled, "updated_at": now}})
	if err != nil {
		return false, wrap("Store.CancelBooking", err)
	}
	return res.ModifiedCount == 1, nil
}

// SetPassengerSeats stores seat numbers in passenger order.
func (s *Store) SetPassengerSeats(ctx context.Context, id string, seats []string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": now}
	for i, seat := range seats {
		set["passengers."+strconv.Itoa(i)+".seat_number"] = seat
	}
	_, err := s.bookings.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return wrap("Store.SetPassengerSeats", err)
}

// ─── Seats ───────────────────────────────────────────────────────────────────

// ClaimSeat inserts a seat assignment; ErrDuplicate means the seat is taken.
func (s *Store) ClaimSeat(ctx context.Context, flightNumber, seat, bookingID string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.seats.InsertOne(ctx, SeatAssignment{
		ID:           uuid.NewString(),
		FlightNumber: flightNumber,
		Seat:         seat,
		BookingID:    bookingID,
		Status:       "booked",
		UpdatedAt:    now,
	})
	return wrap("Store.ClaimSeat", err)
}

// ReleaseBookingSeats removes seat claims held by a booking, optionally
// limited to specific seats.
func (s *Store) ReleaseBookingSeats(ctx context.Context, bookingID string, seats ...string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"booking_id": bookingID}
	if len(seats) > 0 {
		filter["seat"] = bson.M{"$in": seats}
	}
	_, err := s.seats.DeleteMany(ctx, filter)
	return wrap("Store.ReleaseBookingSeats", err)
}

// BookedSeats lists claimed seat labels for a flight, sorted.
func (s *Store) BookedSeats(ctx context.Context, flightNumber string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := s.seats.Find(ctx, bson.M{"flight_number": flightNumber},
		options.Find().SetSort(bson.D{{Key: "seat", Value: 1}}).SetProjection(bson.M{"seat": 1}))
	if err != nil {
		return nil, wrap("Store.BookedSeats", err)
	}
	defer cursor.Close(ctx)

	var rows []SeatAssignment
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, wrap("Store.BookedSeats", err)
	}
	seats := make([]string, 0, len(rows))
	for _, r := range rows {
		seats = append(seats, r.Seat)
	}
	return seats, nil
}
