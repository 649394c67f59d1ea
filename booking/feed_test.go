package booking

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeatHub_LocalDelivery(t *testing.T) {
	hub := NewSeatHub(nil, zap.NewNop())

	ch, unsubscribe := hub.Subscribe("AI101")
	other, unsubscribeOther := hub.Subscribe("6E202")
	defer unsubscribeOther()

	hub.Notify(context.Background(), "AI101", []string{"1A"})

	var got SeatUpdate
	require.NoError(t, json.Unmarshal(<-ch, &got))
	assert.Equal(t, SeatUpdate{FlightNumber: "AI101", BookedSeats: []string{"1A"}}, got)
	assert.Empty(t, other)

	unsubscribe()
	unsubscribe()
	hub.Notify(context.Background(), "AI101", nil)
	assert.Empty(t, ch)
}

func TestSeatHub_NilSeatsEncodeAsEmptyList(t *testing.T) {
	hub := NewSeatHub(nil, zap.NewNop())
	ch, unsubscribe := hub.Subscribe("AI101")
	defer unsubscribe()

	hub.Notify(context.Background(), "AI101", nil)
	assert.JSONEq(t, `{"flightNumber":"AI101","bookedSeats":[]}`, string(<-ch))
}

func TestSeatHub_DropsForSlowSubscribers(t *testing.T) {
	hub := NewSeatHub(nil, zap.NewNop())
	ch, unsubscribe := hub.Subscribe("AI101")
	defer unsubscribe()

	for range cap(ch) + 3 {
		hub.Notify(context.Background(), "AI101", []string{"1A"})
	}
	assert.Len(t, ch, cap(ch))
}
