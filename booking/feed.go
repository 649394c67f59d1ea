package booking

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const seatChannelPrefix = "seats:"

// SeatUpdate is the message pushed to live seat-map subscribers.
type SeatUpdate struct {
	FlightNumber string   `json:"flightNumber"`
	BookedSeats  []string `json:"bookedSeats"`
}

// SeatHub delivers seat-map changes to local subscribers. With a Redis
// client, updates go through pub/sub so every instance sees them.
type SeatHub struct {
	rdb *redis.Client
	log *zap.Logger

	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewSeatHub(rdb *redis.Client, log *zap.Logger) *SeatHub {
	return &SeatHub{rdb: rdb, log: log, subs: make(map[string]map[chan []byte]struct{})}
}

// Subscribe registers for a flight's updates. The returned func must be
// called to unsubscribe.
func (h *SeatHub) Subscribe(flightNumber string) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	if h.subs[flightNumber] == nil {
		h.subs[flightNumber] = make(map[chan []byte]struct{})
	}
	h.subs[flightNumber][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[flightNumber], ch)
			if len(h.subs[flightNumber]) == 0 {
				delete(h.subs, flightNumber)
			}
			h.mu.Unlock()
		})
	}
}

// Notify publishes the flight's booked seats.
func (h *SeatHub) Notify(ctx context.Context, flightNumber string, bookedSeats []string) {
	if bookedSeats == nil {
		bookedSeats = []string{}
	}
	payload, err := json.Marshal(SeatUpdate{FlightNumber: flightNumber, BookedSeats: bookedSeats})
	if err != nil {
		h.log.Error("❌ seat update marshal failed", zap.Error(err))
		return
	}

	if h.rdb == nil {
		h.deliver(flightNumber, payload)
		return
	}
	if err := h.rdb.Publish(ctx, seatChannelPrefix+flightNumber, payload).Err(); err != nil {
		h.log.Warn("⚠️  seat update not published, delivering locally", zap.Error(err))
		h.deliver(flightNumber, payload)
	}
}

// Run relays Redis seat updates to local subscribers until ctx is done.
// It returns immediately when the hub has no Redis client.
func (h *SeatHub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	pubsub := h.rdb.PSubscribe(ctx, seatChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			flightNumber := strings.TrimPrefix(msg.Channel, seatChannelPrefix)
			h.deliver(flightNumber, []byte(msg.Payload))
		}
	}
}

// deliver drops the message for subscribers whose buffer is full.
func (h *SeatHub) deliver(flightNumber string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[flightNumber] {
		select {
		case ch <- payload:
		default:
			h.log.Debug("seat subscriber lagging", zap.String("flight", flightNumber))
		}
	}
}
