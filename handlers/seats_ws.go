package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SeatFeedWS streams a flight's booked seats: the current list on connect,
// then every change.
func (h *Handler) SeatFeedWS(c *gin.Context) {
	flightNumber := c.Param("flightNumber")
	if h.Seats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "live seat feed unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("⚠️  websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.Seats.Subscribe(flightNumber)
	defer unsubscribe()

	seats, err := h.Bookings.BookedSeats(c.Request.Context(), flightNumber)
	if err != nil {
		h.Log.Warn("⚠️  initial seat map failed", zap.String("flight", flightNumber), zap.Error(err))
		return
	}
	if seats == nil {
		seats = []string{}
	}
	initial, _ := json.Marshal(gin.H{"flightNumber": flightNumber, "bookedSeats": seats})
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		return
	}

	// Reader: only pongs and close frames are expected.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case msg := <-updates:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
