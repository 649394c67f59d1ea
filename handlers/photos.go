package handlers

import (
	"net/http"
	"strconv"

	"globetrail/apperr"

	"github.com/gin-gonic/gin"
)

// PlacePhoto streams a Places photo so the maps key stays server-side.
func (h *Handler) PlacePhoto(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		h.respondError(c, apperr.Validation("photo reference is required", "ref"))
		return
	}
	if h.Photos == nil {
		c.Status(http.StatusNotFound)
		return
	}
	width, _ := strconv.ParseUint(c.Query("maxwidth"), 10, 32)

	contentType, body, err := h.Photos.Photo(c.Request.Context(), ref, uint(width))
	if err != nil {
		h.respondError(c, apperr.Upstream("places", err))
		return
	}
	defer body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}
