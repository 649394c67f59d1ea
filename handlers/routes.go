package handlers

import (
	"globetrail/session"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api. generateLimit guards the
// generation endpoint and may be nil.
func (h *Handler) RegisterRoutes(r *gin.Engine, generateLimit gin.HandlerFunc) {
	api := r.Group("/api")
	auth := session.Require()

	api.GET("/health", h.Healthcheck)
	api.GET("/config", h.ClientConfig)

	// ─── Session ─────────────────────────────────────────────────────────
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/check-session", h.CheckSession)

	// ─── Itineraries ─────────────────────────────────────────────────────
	gen := []gin.HandlerFunc{h.GenerateItinerary}
	if generateLimit != nil {
		gen = append([]gin.HandlerFunc{generateLimit}, gen...)
	}
	api.POST("/generate-itinerary", gen...)
	api.POST("/save-itinerary", h.SaveItinerary)
	api.GET("/itineraries/:userId", h.ListItineraries)
	api.GET("/itineraries/:userId/:itineraryId", h.GetItinerary)
	api.GET("/itineraries/:userId/:itineraryId/pdf", h.DownloadItineraryPDF)
	api.DELETE("/itineraries/:userId/:itineraryId", h.DeleteItinerary)

	// ─── Search ──────────────────────────────────────────────────────────
	api.POST("/flights/search", h.SearchFlights)
	api.POST("/hotels/search", auth, h.SearchHotels)
	api.GET("/airports/search", h.SearchAirports)
	api.GET("/cities/search", h.SearchCities)
	api.GET("/places/photo", h.PlacePhoto)
	api.GET("/searches", auth, h.RecentSearches)

	// ─── Bookings ────────────────────────────────────────────────────────
	api.POST("/flights/book", h.BookFlight)
	api.POST("/flights/seats", h.AssignSeats)
	api.GET("/flights/:flightNumber/seats", h.SeatAvailability)
	api.GET("/flights/:flightNumber/seats/live", h.SeatFeedWS)
	api.GET("/bookings", auth, h.ListBookings)
	api.POST("/bookings/:bookingId/payment", h.ConfirmPayment)
	api.POST("/bookings/:bookingId/cancel", h.CancelBooking)
	api.GET("/bookings/:bookingId/ticket", h.DownloadTicket)
	api.POST("/hotels/booking/create", h.CreateHotelBooking)
	api.GET("/hotels/bookings", auth, h.ListHotelBookings)

	// ─── Profile & reviews ───────────────────────────────────────────────
	api.GET("/users/me", auth, h.GetProfile)
	api.PUT("/users/me", auth, h.UpdateProfile)
	api.GET("/reviews", h.ListReviews)
	api.POST("/reviews", auth, h.CreateReview)
}
