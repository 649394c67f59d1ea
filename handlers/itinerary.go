package handlers

import (
	"net/http"

	"globetrail/itinerary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateItinerary calls the text provider once and returns the parsed plan.
func (h *Handler) GenerateItinerary(c *gin.Context) {
	var req itinerary.Request
	if !h.bindJSON(c, &req) {
		return
	}

	plan, meta, err := h.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("✅ itinerary generated",
		zap.String("destination", meta.Destination),
		zap.Int("places", len(plan.Places)))

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"itinerary": plan,
		"metadata":  meta,
	})
}

func (h *Handler) SaveItinerary(c *gin.Context) {
	var req itinerary.SaveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	it, err := h.Itineraries.Save(c.Request.Context(), req, sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Itinerary saved successfully"
	if it.IsTemporary {
		message = "Itinerary saved temporarily"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"itineraryId": it.ID,
		"isTemporary": it.IsTemporary,
	})
}

func (h *Handler) ListItineraries(c *gin.Context) {
	views, err := h.Itineraries.List(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": views})
}

func (h *Handler) GetItinerary(c *gin.Context) {
	view, err := h.Itineraries.Get(c.Request.Context(), c.Param("userId"), c.Param("itineraryId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itinerary": view})
}

func (h *Handler) DeleteItinerary(c *gin.Context) {
	err := h.Itineraries.Delete(c.Request.Context(), c.Param("userId"), c.Param("itineraryId"), sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
