package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"globetrail/database"
)

// memStore mirrors the Mongo store's semantics in memory.
type memStore struct {
	mu        sync.Mutex
	inventory map[string]map[string]int
	bookings  map[string]*database.Booking
	seats     map[string]string // flight/seat -> booking id
	hotels    []database.HotelBooking

	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		inventory: make(map[string]map[string]int),
		bookings:  make(map[string]*database.Booking),
		seats:     make(map[string]string),
	}
}

func (m *memStore) available(flight, class string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.inventory[flight]; ok {
		return inv[class]
	}
	return database.DefaultCabinSeats[class]
}

func (m *memStore) ReserveSeats(_ context.Context, flight, class string, n int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventory[flight]
	if !ok {
		inv = make(map[string]int)
		for k, v := range database.DefaultCabinSeats {
			inv[k] = v
		}
		m.inventory[flight] = inv
	}
	if inv[class] < n {
		return false, nil
	}
	inv[class] -= n
	return true, nil
}

func (m *memStore) ReleaseSeats(_ context.Context, flight, class string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.inventory[flight]; ok {
		inv[class] += n
	}
	return nil
}

func (m *memStore) InsertBooking(_ context.Context, b *database.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, existing := range m.bookings {
		if b.IdempotencyKey != "" && existing.IdempotencyKey == b.IdempotencyKey {
			return database.ErrDuplicate
		}
	}
	cp := *b
	cp.Passengers = append([]database.Passenger(nil), b.Passengers...)
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*database.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *b
	cp.Passengers = append([]database.Passenger(nil), b.Passengers...)
	return &cp, nil
}

func (m *memStore) FindBookingByIdempotencyKey(_ context.Context, key string) (*database.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.IdempotencyKey == key {
			cp := *b
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) ListBookings(_ context.Context, userID string) ([]database.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ConfirmPayment(_ context.Context, id, txID, method string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != database.StatusPending {
		return database.ErrNotFound
	}
	b.Status = database.StatusConfirmed
	b.Payment.Status = database.PaymentCompleted
	b.Payment.TransactionID = txID
	b.Payment.Method = method
	b.Payment.PaidAt = &now
	return nil
}

func (m *memStore) CancelBooking(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status == database.StatusCancelled {
		return false, nil
	}
	b.Status = database.StatusCancelled
	b.UpdatedAt = now
	return true, nil
}

func (m *memStore) SetPassengerSeats(_ context.Context, id string, seats []string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	for i, s := range seats {
		b.Passengers[i].SeatNumber = s
	}
	return nil
}

func (m *memStore) ClaimSeat(_ context.Context, flight, seat, bookingID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := flight + "/" + seat
	if _, taken := m.seats[k]; taken {
		return database.ErrDuplicate
	}
	m.seats[k] = bookingID
	return nil
}

func (m *memStore) ReleaseBookingSeats(_ context.Context, bookingID string, seats ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	only := make(map[string]bool, len(seats))
	for _, s := range seats {
		only[s] = true
	}
	for k, owner := range m.seats {
		if owner != bookingID {
			continue
		}
		_, seat, _ := strings.Cut(k, "/")
		if len(seats) == 0 || only[seat] {
			delete(m.seats, k)
		}
	}
	return nil
}

func (m *memStore) BookedSeats(_ context.Context, flight string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for k := range m.seats {
		if seat, ok := strings.CutPrefix(k, flight+"/"); ok {
			out = append(out, seat)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) InsertHotelBooking(_ context.Context, b *database.HotelBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels = append(m.hotels, *b)
	return nil
}

func (m *memStore) ListHotelBookings(_ context.Context, userID string) ([]database.HotelBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.HotelBooking
	for _, h := range m.hotels {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInDate > out[j].CheckInDate })
	return out, nil
}
