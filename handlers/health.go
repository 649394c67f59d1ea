package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Healthcheck pings every configured backing service.
func (h *Handler) Healthcheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Health))
	for name := range h.Health {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	checks := gin.H{}
	for _, name := range names {
		if err := h.Health[name].Ping(ctx); err != nil {
			checks[name] = "error: " + err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "GlobeTrail API",
		"checks":  checks,
	})
}

// ClientConfig exposes the browser maps key.
func (h *Handler) ClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"googleMapsApiKey": h.MapsKey})
}
