package database

import "time"

// ─── Users ───────────────────────────────────────────────────────────────────

type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Country   string    `bson:"country,omitempty" json:"country,omitempty"`
	State     string    `bson:"state,omitempty" json:"state,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// ─── Itineraries ─────────────────────────────────────────────────────────────

type Place struct {
	ID          string `bson:"id" json:"id"`
	Day         string `bson:"day" json:"day"`
	Name        string `bson:"name" json:"name"`
	ImageURL    string `bson:"image_url" json:"imageUrl"`
	VisitTime   string `bson:"visit_time" json:"visitTime"`
	EntryFee    int    `bson:"entry_fee" json:"entryFee"`
	Description string `bson:"description" json:"description"`
	Facts       string `bson:"facts" json:"facts"`
	VisitOrder  int    `bson:"visit_order" json:"visitOrder"`
}

type Itinerary struct {
	ID           string           `bson:"_id" json:"id"`
	UserID       string           `bson:"user_id" json:"userId"`
	Destination  string           `bson:"destination" json:"destination"`
	StartDate    string           `bson:"start_date" json:"startDate"`
	EndDate      string           `bson:"end_date" json:"endDate"`
	NumberOfDays int              `bson:"number_of_days" json:"numberOfDays"`
	Travelers    string           `bson:"travelers" json:"travelers"`
	Budget       string           `bson:"budget" json:"budget"`
	Places       map[string]Place `bson:"places,omitempty" json:"places,omitempty"`
	Status       string           `bson:"status" json:"status"`
	IsTemporary  bool             `bson:"is_temporary" json:"isTemporary"`
	ExpiresAt    *time.Time       `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	Deleted      bool             `bson:"deleted,omitempty" json:"-"`
	CreatedAt    time.Time        `bson:"created_at" json:"createdAt"`
}

// ─── Flight bookings ─────────────────────────────────────────────────────────

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"

	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentRefunded  = "refunded"
)

type Money struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency" json:"currency"`
}

type Airline struct {
	Code string `bson:"code" json:"code"`
	Name string `bson:"name" json:"name"`
	Logo string `bson:"logo" json:"logo"`
}

type Segment struct {
	FlightNumber  string `bson:"flight_number" json:"flightNumber"`
	CarrierCode   string `bson:"carrier_code" json:"carrierCode"`
	From          string `bson:"from" json:"from"`
	To            string `bson:"to" json:"to"`
	DepartureTime string `bson:"departure_time" json:"departureTime"`
	ArrivalTime   string `bson:"arrival_time" json:"arrivalTime"`
	Duration      string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// FlightDetails is the display-schema offer the client picked and booked.
type FlightDetails struct {
	ID            string    `bson:"id" json:"id"`
	Price         Money     `bson:"price" json:"price"`
	DisplayPrice  Money     `bson:"display_price" json:"displayPrice"`
	Airline       Airline   `bson:"airline" json:"airline"`
	Origin        string    `bson:"origin" json:"origin"`
	Destination   string    `bson:"destination" json:"destination"`
	DepartureTime string    `bson:"departure_time" json:"departureTime"`
	ArrivalTime   string    `bson:"arrival_time" json:"arrivalTime"`
	Duration      string    `bson:"duration" json:"duration"`
	Stops         int       `bson:"stops" json:"stops"`
	Segments      []Segment `bson:"segments" json:"segments"`
}

// FlightNumber is the first segment's flight number, the key for seat maps.
func (f FlightDetails) FlightNumber() string {
	if len(f.Segments) == 0 {
		return ""
	}
	return f.Segments[0].FlightNumber
}

type Passenger struct {
	FirstName   string `bson:"first_name" json:"firstName"`
	LastName    string `bson:"last_name" json:"lastName"`
	DateOfBirth string `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	Gender      string `bson:"gender,omitempty" json:"gender,omitempty"`
	SeatNumber  string `bson:"seat_number,omitempty" json:"seatNumber,omitempty"`
}

type Contact struct {
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

type Payment struct {
	Amount        float64    `bson:"amount" json:"amount"`
	Currency      string     `bson:"currency" json:"currency"`
	Status        string     `bson:"status" json:"status"`
	TransactionID string     `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Method        string     `bson:"method,omitempty" json:"method,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
}

type Booking struct {
	ID               string        `bson:"_id" json:"id"`
	BookingReference string        `bson:"booking_reference" json:"bookingReference"`
	UserID           string        `bson:"user_id" json:"userId"`
	FlightDetails    FlightDetails `bson:"flight_details" json:"flightDetails"`
	Passengers       []Passenger   `bson:"passengers" json:"passengers"`
	Contact          Contact       `bson:"contact" json:"contact"`
	Status           string        `bson:"status" json:"status"`
	Payment          Payment       `bson:"payment" json:"payment"`
	SeatClass        string        `bson:"seat_class" json:"seatClass"`
	SeatCount        int           `bson:"seat_count" json:"seatCount"`
	IdempotencyKey   string        `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt        time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// FlightInventory tracks remaining seats per cabin class for one flight number.
type FlightInventory struct {
	FlightNumber   string         `bson:"_id" json:"flightNumber"`
	AvailableSeats map[string]int `bson:"available_seats" json:"availableSeats"`
}

// SeatAssignment is one claimed seat; (flight_number, seat) is unique.
type SeatAssignment struct {
	ID           string    `bson:"_id" json:"id"`
	FlightNumber string    `bson:"flight_number" json:"flightNumber"`
	Seat         string    `bson:"seat" json:"seat"`
	BookingID    string    `bson:"booking_id" json:"bookingId"`
	Status       string    `bson:"status" json:"status"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

// ─── Hotel bookings ──────────────────────────────────────────────────────────

type Guest struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

type HotelBooking struct {
	ID              string    `bson:"_id" json:"id"`
	BookingID       string    `bson:"booking_id" json:"bookingId"`
	UserID          string    `bson:"user_id" json:"userId"`
	HotelID         string    `bson:"hotel_id" json:"hotelId"`
	HotelName       string    `bson:"hotel_name" json:"hotelName"`
	RoomType        string    `bson:"room_type" json:"roomType"`
	CheckInDate     string    `bson:"check_in_date" json:"checkInDate"`
	CheckOutDate    string    `bson:"check_out_date" json:"checkOutDate"`
	Nights          int       `bson:"nights" json:"nights"`
	Rooms           int       `bson:"rooms" json:"rooms"`
	Adults          int       `bson:"adults" json:"adults"`
	Children        int       `bson:"children" json:"children"`
	PricePerNight   float64   `bson:"price_per_night" json:"pricePerNight"`
	TotalPrice      float64   `bson:"total_price" json:"totalPrice"`
	Guest           Guest     `bson:"guest" json:"guest"`
	PaymentMethod   string    `bson:"payment_method" json:"paymentMethod"`
	SpecialRequests string    `bson:"special_requests,omitempty" json:"specialRequests,omitempty"`
	BookingStatus   string    `bson:"booking_status" json:"bookingStatus"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}

// ─── Reviews & reference data ────────────────────────────────────────────────

type Review struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Message   string    `bson:"message" json:"message"`
	UserID    string    `bson:"user_id" json:"userId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type Airport struct {
	ID      string `bson:"_id" json:"id"`
	IATA    string `bson:"iata" json:"iata"`
	Name    string `bson:"name" json:"name"`
	City    string `bson:"city" json:"city"`
	Country string `bson:"country" json:"country"`
}

type City struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	State   string `bson:"state" json:"state"`
	Country string `bson:"country" json:"country"`
}
