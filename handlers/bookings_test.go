package handlers

import (
	"context"
	"net/http"
	"testing"

	"globetrail/apperr"
	"globetrail/booking"
	"globetrail/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookings implements BookingService; unset functions panic.
type fakeBookings struct {
	createFn      func(req booking.FlightRequest, userID, key string) (*database.Booking, bool, error)
	getFn         func(id, user string) (*database.Booking, error)
	listFn        func(userID string) ([]database.Booking, error)
	confirmFn     func(id string, req booking.PaymentRequest, user string) (*database.Booking, error)
	cancelFn      func(id, user string) error
	assignFn      func(id string, seats []string, user string) (*database.Booking, error)
	bookedSeatsFn func(flight string) ([]string, error)
	createHotelFn func(req booking.HotelRequest, userID string) (*database.HotelBooking, error)
	listHotelFn   func(userID string) ([]database.HotelBooking, error)
}

func (f *fakeBookings) CreateFlightBooking(_ context.Context, req booking.FlightRequest, userID, key string) (*database.Booking, bool, error) {
	return f.createFn(req, userID, key)
}

func (f *fakeBookings) Get(_ context.Context, id, user string) (*database.Booking, error) {
	return f.getFn(id, user)
}

func (f *fakeBookings) List(_ context.Context, userID string) ([]database.Booking, error) {
	return f.listFn(userID)
}

func (f *fakeBookings) ConfirmPayment(_ context.Context, id string, req booking.PaymentRequest, user string) (*database.Booking, error) {
	return f.confirmFn(id, req, user)
}

func (f *fakeBookings) Cancel(_ context.Context, id, user string) error {
	return f.cancelFn(id, user)
}

func (f *fakeBookings) AssignSeats(_ context.Context, id string, seats []string, user string) (*database.Booking, error) {
	return f.assignFn(id, seats, user)
}

func (f *fakeBookings) BookedSeats(_ context.Context, flight string) ([]string, error) {
	return f.bookedSeatsFn(flight)
}

func (f *fakeBookings) CreateHotelBooking(_ context.Context, req booking.HotelRequest, userID string) (*database.HotelBooking, error) {
	return f.createHotelFn(req, userID)
}

func (f *fakeBookings) ListHotelBookings(_ context.Context, userID string) ([]database.HotelBooking, error) {
	return f.listHotelFn(userID)
}

func TestBookFlight(t *testing.T) {
	var gotUser, gotKey string
	fake := &fakeBookings{
		createFn: func(req booking.FlightRequest, userID, key string) (*database.Booking, bool, error) {
			gotUser, gotKey = userID, key
			return &database.Booking{
				ID:               "b1",
				BookingReference: "BK1748770200000042",
				Payment:          database.Payment{Amount: 241, Currency: "USD"},
			}, key == "replay", nil
		},
	}
	srv := newTestServer(t, Deps{Bookings: fake})
	srv.login("u1")

	w := srv.do(http.MethodPost, "/api/flights/book", gin.H{"flight": gin.H{}}, IdempotencyHeader, "k-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "BK1748770200000042", body["bookingReference"])
	assert.Equal(t, float64(241), body["totalAmount"])
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "k-1", gotKey)

	w = srv.do(http.MethodPost, "/api/flights/book", gin.H{}, IdempotencyHeader, "replay")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["replayed"])
}

func TestBookFlight_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation("at least one passenger is required", "passengers"), http.StatusBadRequest},
		{"sold out", apperr.Conflict("not enough economy seats left on AI101"), http.StatusConflict},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, Deps{Bookings: &fakeBookings{
				createFn: func(booking.FlightRequest, string, string) (*database.Booking, bool, error) {
					return nil, false, tt.err
				},
			}})
			w := srv.do(http.MethodPost, "/api/flights/book", gin.H{})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func TestBookFlight_InternalErrorHidesDetails(t *testing.T) {
	srv := newTestServer(t, Deps{Bookings: &fakeBookings{
		createFn: func(booking.FlightRequest, string, string) (*database.Booking, bool, error) {
			return nil, false, assert.AnError
		},
	}})
	w := srv.do(http.MethodPost, "/api/flights/book", gin.H{})
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestAssignSeatsAndAvailability(t *testing.T) {
	fake := &fakeBookings{
		assignFn: func(id string, seats []string, user string) (*database.Booking, error) {
			assert.Equal(t, "b1", id)
			if seats[0] == "3C" {
				return nil, apperr.Conflict("seat 3C is already taken")
			}
			return &database.Booking{Passengers: []database.Passenger{{FirstName: "Asha", SeatNumber: seats[0]}}}, nil
		},
		bookedSeatsFn: func(flight string) ([]string, error) {
			assert.Equal(t, "AI101", flight)
			return nil, nil
		},
	}
	srv := newTestServer(t, Deps{Bookings: fake})

	w := srv.do(http.MethodPost, "/api/flights/seats", SeatRequest{BookingID: "b1", Seats: []string{"12A"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Seats assigned successfully", decode(t, w)["message"])

	w = srv.do(http.MethodPost, "/api/flights/seats", SeatRequest{BookingID: "b1", Seats: []string{"3C"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(http.MethodGet, "/api/flights/AI101/seats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["bookedSeats"])
}

func TestListBookings_RequiresSession(t *testing.T) {
	srv := newTestServer(t, Deps{Bookings: &fakeBookings{
		listFn: func(userID string) ([]database.Booking, error) {
			return []database.Booking{{ID: "b1", UserID: userID}}, nil
		},
	}})

	w := srv.do(http.MethodGet, "/api/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	srv.login("u1")
	w = srv.do(http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bookings"], 1)
}

func TestPaymentAndCancel(t *testing.T) {
	fake := &fakeBookings{
		confirmFn: func(id string, req booking.PaymentRequest, user string) (*database.Booking, error) {
			if id == "missing" {
				return nil, apperr.NotFound("booking")
			}
			return &database.Booking{ID: id, Status: database.StatusConfirmed}, nil
		},
		cancelFn: func(id, user string) error {
			if user != "u1" {
				return apperr.Forbidden("not authorized to access this booking")
			}
			return nil
		},
	}
	srv := newTestServer(t, Deps{Bookings: fake})

	w := srv.do(http.MethodPost, "/api/bookings/b1/payment", booking.PaymentRequest{TransactionID: "tx", Method: "card"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode(t, w)["booking"].(map[string]any)["status"])

	w = srv.do(http.MethodPost, "/api/bookings/missing/payment", booking.PaymentRequest{TransactionID: "tx", Method: "card"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(http.MethodPost, "/api/bookings/b1/cancel", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	srv.login("u1")
	w = srv.do(http.MethodPost, "/api/bookings/b1/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownloadTicket(t *testing.T) {
	srv := newTestServer(t, Deps{Bookings: &fakeBookings{
		getFn: func(id, user string) (*database.Booking, error) {
			return &database.Booking{
				ID:               id,
				BookingReference: "BK1748770200000042",
				FlightDetails: database.FlightDetails{
					Airline:  database.Airline{Code: "AI", Name: "Air India"},
					Origin:   "DEL",
					Segments: []database.Segment{{FlightNumber: "AI101"}},
				},
				Passengers: []database.Passenger{{FirstName: "Asha", LastName: "Rao"}},
				Payment:    database.Payment{Amount: 241, Currency: "USD"},
			}, nil
		},
	}})

	w := srv.do(http.MethodGet, "/api/bookings/b1/ticket", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "BK1748770200000042")
}

func TestHotelBookingRoutes(t *testing.T) {
	fake := &fakeBookings{
		createHotelFn: func(req booking.HotelRequest, userID string) (*database.HotelBooking, error) {
			if req.HotelName == "" {
				return nil, apperr.Validation("missing required fields", "hotelName")
			}
			return &database.HotelBooking{BookingID: "BK70200000AB12", HotelName: req.HotelName, UserID: userID}, nil
		},
		listHotelFn: func(userID string) ([]database.HotelBooking, error) {
			return nil, nil
		},
	}
	srv := newTestServer(t, Deps{Bookings: fake})
	srv.login("u1")

	w := srv.do(http.MethodPost, "/api/hotels/booking/create", booking.HotelRequest{HotelName: "Taj Palace"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "BK70200000AB12", body["bookingId"])
	assert.Equal(t, "Booking confirmed successfully", body["message"])

	w = srv.do(http.MethodPost, "/api/hotels/booking/create", booking.HotelRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"hotelName"}, decode(t, w)["fields"])

	w = srv.do(http.MethodGet, "/api/hotels/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["bookings"])
}
