package handlers

import (
	"net/http"

	"globetrail/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func sendPDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", data)
}

// DownloadItineraryPDF renders a saved itinerary on demand.
func (h *Handler) DownloadItineraryPDF(c *gin.Context) {
	it, err := h.Itineraries.Record(c.Request.Context(), c.Param("userId"), c.Param("itineraryId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := services.ItineraryPDF(it)
	if err != nil {
		h.Log.Error("❌ PDF generation failed", zap.String("itinerary_id", it.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate PDF"})
		return
	}

	h.Log.Info("✅ itinerary PDF rendered", zap.String("itinerary_id", it.ID), zap.Int("bytes", len(data)))
	sendPDF(c, "globetrail-itinerary.pdf", data)
}

// DownloadTicket renders an e-ticket with the booking reference as a QR code.
func (h *Handler) DownloadTicket(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("bookingId"), sessionUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := services.TicketPDF(b)
	if err != nil {
		h.Log.Error("❌ ticket generation failed", zap.String("booking_id", b.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate ticket"})
		return
	}
	sendPDF(c, "globetrail-ticket-"+b.BookingReference+".pdf", data)
}
