// Package handlers exposes the HTTP JSON API over gin.
package handlers

import (
	"context"
	"io"
	"time"

	"globetrail/booking"
	"globetrail/database"
	"globetrail/itinerary"
	"globetrail/services"
	"globetrail/session"

	"go.uber.org/zap"
)

// ─── Dependencies ────────────────────────────────────────────────────────────

type ItineraryGenerator interface {
	Generate(ctx context.Context, req itinerary.Request) (*itinerary.Plan, itinerary.Metadata, error)
}

type ItineraryService interface {
	Save(ctx context.Context, req itinerary.SaveRequest, sessionUser string) (*database.Itinerary, error)
	List(ctx context.Context, userID string) ([]itinerary.View, error)
	Get(ctx context.Context, userID, id string) (*itinerary.View, error)
	Record(ctx context.Context, userID, id string) (*database.Itinerary, error)
	Delete(ctx context.Context, userID, id, sessionUser string) error
}

type BookingService interface {
	CreateFlightBooking(ctx context.Context, req booking.FlightRequest, userID, idempotencyKey string) (*database.Booking, bool, error)
	Get(ctx context.Context, id, sessionUser string) (*database.Booking, error)
	List(ctx context.Context, userID string) ([]database.Booking, error)
	ConfirmPayment(ctx context.Context, id string, req booking.PaymentRequest, sessionUser string) (*database.Booking, error)
	Cancel(ctx context.Context, id, sessionUser string) error
	AssignSeats(ctx context.Context, id string, seats []string, sessionUser string) (*database.Booking, error)
	BookedSeats(ctx context.Context, flightNumber string) ([]string, error)
	CreateHotelBooking(ctx context.Context, req booking.HotelRequest, userID string) (*database.HotelBooking, error)
	ListHotelBookings(ctx context.Context, userID string) ([]database.HotelBooking, error)
}

// SeatFeed hands out live seat-map subscriptions.
type SeatFeed interface {
	Subscribe(flightNumber string) (<-chan []byte, func())
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q services.FlightQuery) ([]database.FlightDetails, error)
}

// PlacesHotelSearcher searches hotels around a location.
type PlacesHotelSearcher interface {
	SearchHotels(ctx context.Context, q services.HotelQuery) ([]services.Hotel, error)
}

// PhotoSource streams provider photos by reference.
type PhotoSource interface {
	Photo(ctx context.Context, ref string, maxWidth uint) (string, io.ReadCloser, error)
}

// CityHotelSearcher searches hotels by IATA city code.
type CityHotelSearcher interface {
	SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, adults int) ([]services.Hotel, error)
}

type SearchHistory interface {
	Record(ctx context.Context, r *database.SearchRecord) error
	Recent(ctx context.Context, userID string, limit int) ([]database.SearchRecord, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*database.User, error)
	EnsureUser(ctx context.Context, u *database.User) (bool, error)
	FieldTakenByOther(ctx context.Context, field, value, userID string) (bool, error)
	UpdateUser(ctx context.Context, id string, fields map[string]string, now time.Time) error
}

type ReviewStore interface {
	InsertReview(ctx context.Context, r *database.Review) error
	ListReviews(ctx context.Context) ([]database.Review, error)
}

type ReferenceStore interface {
	SearchAirports(ctx context.Context, keyword string) ([]database.Airport, error)
	SearchCities(ctx context.Context, q string) ([]database.City, error)
}

type IdentityVerifier interface {
	Verify(tokenString, uid string) (*session.IdentityClaims, error)
}

// Pinger is a backing service the health check reports on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires the handlers. Optional fields may be left nil.
type Deps struct {
	Generator    ItineraryGenerator
	Itineraries  ItineraryService
	Bookings     BookingService
	Seats        SeatFeed
	Flights      FlightSearcher
	PlacesHotels PlacesHotelSearcher
	CityHotels   CityHotelSearcher
	Photos       PhotoSource
	History      SearchHistory
	Users        UserStore
	Reviews      ReviewStore
	Reference    ReferenceStore
	Identity     IdentityVerifier
	Sessions     *session.Manager
	Health       map[string]Pinger
	MapsKey      string
	Log          *zap.Logger
}

// Handler holds the injected clients every route uses.
type Handler struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Handler{Deps: d, now: time.Now}
}
