package booking

import (
	"context"
	"fmt"
	"math"
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

const (
	dateLayout     = "2006-01-02"
	base36Upper    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	statusBooked   = "confirmed"
	hotelRefSuffix = 4
)

// HotelRequest is the create-hotel-booking input.
type HotelRequest struct {
	HotelID         string  `json:"hotelId"`
	HotelName       string  `json:"hotelName"`
	RoomType        string  `json:"roomType"`
	CheckIn         string  `json:"checkIn"`
	CheckOut        string  `json:"checkOut"`
	Rooms           int     `json:"rooms"`
	Adults          int     `json:"adults"`
	Children        int     `json:"children"`
	PricePerNight   float64 `json:"pricePerNight"`
	PaymentMethod   string  `json:"paymentMethod"`
	GuestName       string  `json:"guestName"`
	GuestEmail      string  `json:"guestEmail"`
	GuestPhone      string  `json:"guestPhone"`
	SpecialRequests string  `json:"specialRequests"`
}

func (r HotelRequest) missing() []string {
	var fields []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			fields = append(fields, name)
		}
	}
	check("hotelId", r.HotelID)
	check("hotelName", r.HotelName)
	check("roomType", r.RoomType)
	check("checkIn", r.CheckIn)
	check("checkOut", r.CheckOut)
	if r.Rooms <= 0 {
		fields = append(fields, "rooms")
	}
	if r.Adults <= 0 {
		fields = append(fields, "adults")
	}
	if r.PricePerNight <= 0 {
		fields = append(fields, "pricePerNight")
	}
	check("paymentMethod", r.PaymentMethod)
	check("guestName", r.GuestName)
	check("guestEmail", r.GuestEmail)
	check("guestPhone", r.GuestPhone)
	return fields
}

// hotelBookingID is BK, the last 8 digits of the unix millis and 4 random
// upper-case base36 characters.
func hotelBookingID(now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	var b strings.Builder
	b.WriteString("BK")
	b.WriteString(millis)
	for range hotelRefSuffix {
		b.WriteByte(base36Upper[rand.IntN(len(base36Upper))])
	}
	return b.String()
}

// Nights is ceil((checkOut-checkIn) / 1 day).
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// CreateHotelBooking validates and stores a confirmed hotel booking.
func (s *Service) CreateHotelBooking(ctx context.Context, req HotelRequest, userID string) (*database.HotelBooking, error) {
	if fields := req.missing(); len(fields) > 0 {
		return nil, apperr.Validation("missing required fields", fields...)
	}
	in, errIn := time.Parse(dateLayout, req.CheckIn)
	out, errOut := time.Parse(dateLayout, req.CheckOut)
	if errIn != nil || errOut != nil {
		return nil, apperr.Validation("dates must be YYYY-MM-DD", "checkIn", "checkOut")
	}
	nights := Nights(in, out)
	if nights < 1 {
		return nil, apperr.Validation("checkOut must be after checkIn", "checkOut")
	}
	if userID == "" {
		userID = GuestUser
	}

	now := s.now().UTC()
	hb := &database.HotelBooking{
		ID:            uuid.NewString(),
		BookingID:     hotelBookingID(now),
		UserID:        userID,
		HotelID:       req.HotelID,
		HotelName:     req.HotelName,
		RoomType:      req.RoomType,
		CheckInDate:   req.CheckIn,
		CheckOutDate:  req.CheckOut,
		Nights:        nights,
		Rooms:         req.Rooms,
		Adults:        req.Adults,
		Children:      req.Children,
		PricePerNight: req.PricePerNight,
		TotalPrice:    req.PricePerNight * float64(nights) * float64(req.Rooms),
		Guest: database.Guest{
			Name:  req.GuestName,
			Email: req.GuestEmail,
			Phone: req.GuestPhone,
		},
		PaymentMethod:   req.PaymentMethod,
		SpecialRequests: req.SpecialRequests,
		BookingStatus:   statusBooked,
		CreatedAt:       now,
	}

	if err := s.store.InsertHotelBooking(ctx, hb); err != nil {
		return nil, fmt.Errorf("insert hotel booking: %w", err)
	}

	s.log.Info("✅ hotel booking created",
		zap.String("booking_id", hb.BookingID),
		zap.String("hotel", hb.HotelName),
		zap.Int("nights", nights))
	s.publish(ctx, services.EventHotelBookingCreated, hb)
	return hb, nil
}

// ListHotelBookings returns the user's hotel bookings, latest check-in first.
func (s *Service) ListHotelBookings(ctx context.Context, userID string) ([]database.HotelBooking, error) {
	out, err := s.store.ListHotelBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list hotel bookings: %w", err)
	}
	return out, nil
}
