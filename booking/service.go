// Package booking creates and manages flight and hotel bookings, including
// seat inventory and per-seat claims.
package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"globetrail/apperr"
	"globetrail/database"
	"globetrail/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GuestUser owns bookings made without a session.
const GuestUser = "guest"

const defaultCurrency = "INR"

// Store is the persistence the booking service needs.
type Store interface {
	ReserveSeats(ctx context.Context, flightNumber, class string, n int) (bool, error)
	ReleaseSeats(ctx context.Context, flightNumber, class string, n int) error
	InsertBooking(ctx context.Context, b *database.Booking) error
	GetBooking(ctx context.Context, id string) (*database.Booking, error)
	FindBookingByIdempotencyKey(ctx context.Context, key string) (*database.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]database.Booking, error)
	ConfirmPayment(ctx context.Context, id, transactionID, method string, now time.Time) error
	CancelBooking(ctx context.Context, id string, now time.Time) (bool, error)
	SetPassengerSeats(ctx context.Context, id string, seats []string, now time.Time) error
	ClaimSeat(ctx context.Context, flightNumber, seat, bookingID string, now time.Time) error
	ReleaseBookingSeats(ctx context.Context, bookingID string, seats ...string) error
	BookedSeats(ctx context.Context, flightNumber string) ([]string, error)
	InsertHotelBooking(ctx context.Context, b *database.HotelBooking) error
	ListHotelBookings(ctx context.Context, userID string) ([]database.HotelBooking, error)
}

// EventPublisher receives booking lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

// SeatNotifier fans a flight's booked-seat list out to live subscribers.
type SeatNotifier interface {
	Notify(ctx context.Context, flightNumber string, bookedSeats []string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, []string) {}

// FlightRequest is the create-flight-booking input.
type FlightRequest struct {
	Flight     *database.FlightDetails `json:"flight"`
	Passengers []database.Passenger    `json:"passengers"`
	Contact    *database.Contact       `json:"contact"`
	SeatClass  string                  `json:"seatClass"`
}

// PaymentRequest confirms a pending booking.
type PaymentRequest struct {
	TransactionID string `json:"transactionId"`
	Method        string `json:"method"`
}

type Service struct {
	store  Store
	events EventPublisher
	seats  SeatNotifier
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store Store, events EventPublisher, seats SeatNotifier, log *zap.Logger) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	if seats == nil {
		seats = nopNotifier{}
	}
	return &Service{store: store, events: events, seats: seats, log: log, now: time.Now}
}

// ─── Flight bookings ─────────────────────────────────────────────────────────

func validateFlight(req *FlightRequest) error {
	if req.Flight == nil || req.Passengers == nil || req.Contact == nil {
		var fields []string
		if req.Flight == nil {
			fields = append(fields, "flight")
		}
		if req.Passengers == nil {
			fields = append(fields, "passengers")
		}
		if req.Contact == nil {
			fields = append(fields, "contact")
		}
		return apperr.Validation("missing required booking information", fields...)
	}
	if req.Flight.Price.Amount <= 0 {
		return apperr.Validation("flight price information is missing", "flight.price.amount")
	}
	if req.Flight.FlightNumber() == "" {
		return apperr.Validation("flight segments are missing", "flight.segments")
	}
	if len(req.Passengers) == 0 {
		return apperr.Validation("at least one passenger is required", "passengers")
	}
	for i, p := range req.Passengers {
		if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
			return apperr.Validation("first name and last name are required for all passengers",
				"passengers."+strconv.Itoa(i))
		}
	}
	if strings.TrimSpace(req.Contact.Email) == "" || strings.TrimSpace(req.Contact.Phone) == "" {
		return apperr.Validation("email and phone number are required", "contact.email", "contact.phone")
	}

	req.SeatClass = strings.ToLower(strings.TrimSpace(req.SeatClass))
	if req.SeatClass == "" {
		req.SeatClass = "economy"
	}
	if _, ok := database.DefaultCabinSeats[req.SeatClass]; !ok {
		return apperr.Validation("unknown seat class "+req.SeatClass, "seatClass")
	}
	return nil
}

// bookingReference is BK, the unix time in milliseconds and a number below 1000.
func bookingReference(now time.Time) string {
	return "BK" + strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(rand.IntN(1000))
}

// CreateFlightBooking reserves inventory and stores a pending booking. A
// repeated idempotency key returns the original booking with replayed=true.
func (s *Service) CreateFlightBooking(ctx context.Context, req FlightRequest, userID, idempotencyKey string) (b *database.Booking, replayed bool, err error) {
	if err := validateFlight(&req); err != nil {
		return nil, false, err
	}
	if userID == "" {
		userID = GuestUser
	}

	if idempotencyKey != "" {
		existing, err := s.replay(ctx, idempotencyKey, userID)
		if err != nil || existing != nil {
			return existing, existing != nil, err
		}
	}

	flightNumber := req.Flight.FlightNumber()
	n := len(req.Passengers)

	ok, err := s.store.ReserveSeats(ctx, flightNumber, req.SeatClass, n)
	if err != nil {
		return nil, false, fmt.Errorf("reserve seats: %w", err)
	}
	if !ok {
		return nil, false, apperr.Conflict(fmt.Sprintf("not enough %s seats left on %s", req.SeatClass, flightNumber))
	}

	now := s.now().UTC()
	total := req.Flight.Price.Amount * float64(n)
	currency := req.Flight.Price.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	passengers := make([]database.Passenger, n)
	for i, p := range req.Passengers {
		p.SeatNumber = ""
		passengers[i] = p
	}

	b = &database.Booking{
		ID:               uuid.NewString(),
		BookingReference: bookingReference(now),
		UserID:           userID,
		FlightDetails:    *req.Flight,
		Passengers:       passengers,
		Contact:          *req.Contact,
		Status:           database.StatusPending,
		Payment: database.Payment{
			Amount:   total,
			Currency: currency,
			Status:   database.PaymentPending,
		},
		SeatClass:      req.SeatClass,
		SeatCount:      n,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
	}

	if err := s.store.InsertBooking(ctx, b); err != nil {
		if rerr := s.store.ReleaseSeats(ctx, flightNumber, req.SeatClass, n); rerr != nil {
			s.log.Error("❌ seat compensation failed",
				zap.String("flight", flightNumber), zap.Int("seats", n), zap.Error(rerr))
		}
		if errors.Is(err, database.ErrDuplicate) && idempotencyKey != "" {
			existing, rerr := s.replay(ctx, idempotencyKey, userID)
			if rerr == nil && existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, fmt.Errorf("insert booking: %w", err)
	}

	s.log.Info("✅ booking created",
		zap.String("id", b.ID),
		zap.String("reference", b.BookingReference),
		zap.Float64("amount", total))
	s.publish(ctx, services.EventBookingCreated, b)
	return b, false, nil
}

func (s *Service) replay(ctx context.Context, key, userID string) (*database.Booking, error) {
	existing, err := s.store.FindBookingByIdempotencyKey(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing.UserID != userID {
		return nil, apperr.Conflict("idempotency key already used")
	}
	return existing, nil
}

// Get returns a booking visible to the caller.
func (s *Service) Get(ctx context.Context, id, sessionUser string) (*database.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("booking")
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if b.UserID != GuestUser && b.UserID != sessionUser {
		return nil, apperr.Forbidden("not authorized to access this booking")
	}
	return b, nil
}

// List returns the user's bookings, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]database.Booking, error) {
	bookings, err := s.store.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ConfirmPayment marks a pending booking paid and confirmed.
func (s *Service) ConfirmPayment(ctx context.Context, id string, req PaymentRequest, sessionUser string) (*database.Booking, error) {
	if strings.TrimSpace(req.TransactionID) == "" || strings.TrimSpace(req.Method) == "" {
		return nil, apperr.Validation("transaction id and payment method are required", "transactionId", "method")
	}
	b, err := s.Get(ctx, id, sessionUser)
	if err != nil {
		return nil, err
	}
	if b.Status != database.StatusPending {
		return nil, apperr.Conflict("booking is " + b.Status)
	}

	if err := s.store.ConfirmPayment(ctx, id, req.TransactionID, req.Method, s.now().UTC()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.Conflict("booking is no longer pending")
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	b, err = s.Get(ctx, id, sessionUser)
	if err != nil {
		return nil, err
	}
	s.log.Info("✅ payment confirmed", zap.String("id", id), zap.String("transaction_id", req.TransactionID))
	s.publish(ctx, services.EventBookingConfirmed, b)
	return b, nil
}

// Cancel cancels a booking and returns its seats to inventory.
func (s *Service) Cancel(ctx context.Context, id, sessionUser string) error {
	b, err := s.Get(ctx, id, sessionUser)
	if err != nil {
		return err
	}

	changed, err := s.store.CancelBooking(ctx, id, s.now().UTC())
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if !changed {
		return apperr.Conflict("booking already cancelled")
	}

	flightNumber := b.FlightDetails.FlightNumber()
	if err := s.store.ReleaseSeats(ctx, flightNumber, b.SeatClass, b.SeatCount); err != nil {
		s.log.Error("❌ inventory release failed", zap.String("booking_id", id), zap.Error(err))
	}
	if err := s.store.ReleaseBookingSeats(ctx, id); err != nil {
		s.log.Error("❌ seat release failed", zap.String("booking_id", id), zap.Error(err))
	}
	s.notifySeats(ctx, flightNumber)

	s.log.Info("booking cancelled", zap.String("id", id))
	s.publish(ctx, services.EventBookingCancelled, map[string]any{
		"bookingId":        id,
		"bookingReference": b.BookingReference,
		"userId":           b.UserID,
	})
	return nil
}

// ─── Seats ───────────────────────────────────────────────────────────────────

// AssignSeats claims one seat per passenger, in passenger order. A taken
// seat fails the whole request and releases the claims made so far.
func (s *Service) AssignSeats(ctx context.Context, id string, seats []string, sessionUser string) (*database.Booking, error) {
	if strings.TrimSpace(id) == "" || len(seats) == 0 {
		return nil, apperr.Validation("booking id and seat selections are required", "bookingId", "seats")
	}
	b, err := s.Get(ctx, id, sessionUser)
	if err != nil {
		return nil, err
	}
	if b.Status == database.StatusCancelled {
		return nil, apperr.Conflict("booking is cancelled")
	}
	if len(seats) != len(b.Passengers) {
		return nil, apperr.Validation("number of seats must match number of passengers", "seats")
	}

	wanted := make([]string, len(seats))
	seen := make(map[string]bool, len(seats))
	for i, seat := range seats {
		seat = strings.ToUpper(strings.TrimSpace(seat))
		if seat == "" || seen[seat] {
			return nil, apperr.Validation("seat selections must be distinct", "seats")
		}
		seen[seat] = true
		wanted[i] = seat
	}

	held := make(map[string]bool, len(b.Passengers))
	for _, p := range b.Passengers {
		if p.SeatNumber != "" {
			held[p.SeatNumber] = true
		}
	}

	flightNumber := b.FlightDetails.FlightNumber()
	now := s.now().UTC()
	var claimed []string
	for _, seat := range wanted {
		if held[seat] {
			continue
		}
		err := s.store.ClaimSeat(ctx, flightNumber, seat, id, now)
		if err == nil {
			claimed = append(claimed, seat)
			continue
		}
		s.rollbackClaims(ctx, id, claimed)
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperr.Conflict("seat " + seat + " is already taken")
		}
		return nil, fmt.Errorf("claim seat %s: %w", seat, err)
	}

	if err := s.store.SetPassengerSeats(ctx, id, wanted, now); err != nil {
		s.rollbackClaims(ctx, id, claimed)
		return nil, fmt.Errorf("update passenger seats: %w", err)
	}

	var dropped []string
	for seat := range held {
		if !seen[seat] {
			dropped = append(dropped, seat)
		}
	}
	if len(dropped) > 0 {
		if err := s.store.ReleaseBookingSeats(ctx, id, dropped...); err != nil {
			s.log.Error("❌ old seat release failed", zap.String("booking_id", id), zap.Error(err))
		}
	}

	for i := range b.Passengers {
		b.Passengers[i].SeatNumber = wanted[i]
	}
	s.log.Info("seats assigned", zap.String("booking_id", id), zap.Strings("seats", wanted))
	s.notifySeats(ctx, flightNumber)
	return b, nil
}

func (s *Service) rollbackClaims(ctx context.Context, id string, seats []string) {
	if len(seats) == 0 {
		return
	}
	if err := s.store.ReleaseBookingSeats(ctx, id, seats...); err != nil {
		s.log.Error("❌ seat rollback failed", zap.String("booking_id", id), zap.Strings("seats", seats), zap.Error(err))
	}
}

// BookedSeats lists the claimed seats on a flight.
func (s *Service) BookedSeats(ctx context.Context, flightNumber string) ([]string, error) {
	seats, err := s.store.BookedSeats(ctx, flightNumber)
	if err != nil {
		return nil, fmt.Errorf("booked seats: %w", err)
	}
	return seats, nil
}

func (s *Service) notifySeats(ctx context.Context, flightNumber string) {
	seats, err := s.store.BookedSeats(ctx, flightNumber)
	if err != nil {
		s.log.Warn("⚠️  seat map not refreshed", zap.String("flight", flightNumber), zap.Error(err))
		return
	}
	s.seats.Notify(ctx, flightNumber, seats)
}

func (s *Service) publish(ctx context.Context, key string, data any) {
	if err := s.events.Publish(ctx, key, data); err != nil {
		s.log.Warn("⚠️  event not published", zap.String("routing_key", key), zap.Error(err))
	}
}
