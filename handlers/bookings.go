package handlers

import (
	"net/http"
	"strings"

	"globetrail/booking"
	"globetrail/database"

	"github.com/gin-gonic/gin"
)

// IdempotencyHeader makes flight booking creation safe to retry.
const IdempotencyHeader = "Idempotency-Key"

type SeatRequest struct {
	BookingID string   `json:"bookingId"`
	Seats     []string `json:"seats"`
}

func (h *Handler) BookFlight(c *gin.Context) {
	var req booking.FlightRequest
	if !h.bindJSON(c, &req) {
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	b, replayed, err := h.Bookings.CreateFlightBooking(c.Request.Context(), req, sessionUser(c), key)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":          true,
		"bookingId":        b.ID,
		"bookingReference": b.BookingReference,
		"totalAmount":      b.Payment.Amount,
		"currency":         b.Payment.Currency,
		"replayed":         replayed,
	})
}

func (h *Handler) AssignSeats(c *gin.Context) {
	var req SeatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	b, err := h.Bookings.AssignSeats(c.Request.Context(), req.BookingID, req.Seats, sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Seats assigned successfully",
		"passengers": b.Passengers,
	})
}

func (h *Handler) SeatAvailability(c *gin.Context) {
	flightNumber := c.Param("flightNumber")
	seats, err := h.Bookings.BookedSeats(c.Request.Context(), flightNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if seats == nil {
		seats = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"flightNumber": flightNumber,
		"bookedSeats":  seats,
	})
}

func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.Bookings.List(c.Request.Context(), sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []database.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req booking.PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	b, err := h.Bookings.ConfirmPayment(c.Request.Context(), c.Param("bookingId"), req, sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	if err := h.Bookings.Cancel(c.Request.Context(), c.Param("bookingId"), sessionUser(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking cancelled"})
}

// ─── Hotel bookings ──────────────────────────────────────────────────────────

func (h *Handler) CreateHotelBooking(c *gin.Context) {
	var req booking.HotelRequest
	if !h.bindJSON(c, &req) {
		return
	}

	hb, err := h.Bookings.CreateHotelBooking(c.Request.Context(), req, sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"bookingId": hb.BookingID,
		"message":   "Booking confirmed successfully",
		"details":   hb,
	})
}

func (h *Handler) ListHotelBookings(c *gin.Context) {
	list, err := h.Bookings.ListHotelBookings(c.Request.Context(), sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []database.HotelBooking{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": list})
}
