package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"globetrail/apperr"
	"globetrail/database"
	"globetrail/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentSearchLimit = 20

type FlightSearchRequest struct {
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	ReturnDate    string      `json:"returnDate"`
	Adults        json.Number `json:"adults"`
}

type HotelSearchRequest struct {
	Destination string           `json:"destination"`
	Location    *services.LatLng `json:"location"`
	CityCode    string           `json:"cityCode"`
	CheckIn     string           `json:"checkIn"`
	CheckOut    string           `json:"checkOut"`
	Rooms       int              `json:"rooms"`
	Adults      int              `json:"adults"`
	Children    int              `json:"children"`
	PriceRange  string           `json:"priceRange"`
	Ratings     []json.Number    `json:"ratings"`
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (r *FlightSearchRequest) query() (services.FlightQuery, error) {
	q := services.FlightQuery{
		Origin:        strings.ToUpper(strings.TrimSpace(r.Origin)),
		Destination:   strings.ToUpper(strings.TrimSpace(r.Destination)),
		DepartureDate: strings.TrimSpace(r.DepartureDate),
		ReturnDate:    strings.TrimSpace(r.ReturnDate),
		Adults:        1,
	}

	var fields []string
	if len(q.Origin) != 3 {
		fields = append(fields, "origin")
	}
	if len(q.Destination) != 3 {
		fields = append(fields, "destination")
	}
	if !validDate(q.DepartureDate) {
		fields = append(fields, "departureDate")
	}
	if q.ReturnDate != "" && (!validDate(q.ReturnDate) || q.ReturnDate < q.DepartureDate) {
		fields = append(fields, "returnDate")
	}
	if r.Adults != "" {
		n, err := strconv.Atoi(r.Adults.String())
		if err != nil || n < 1 {
			fields = append(fields, "adults")
		}
		q.Adults = n
	}
	if len(fields) > 0 {
		return q, apperr.Validation("invalid flight search", fields...)
	}
	return q, nil
}

// SearchFlights proxies Amadeus flight offers in the display schema.
func (h *Handler) SearchFlights(c *gin.Context) {
	var req FlightSearchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	q, err := req.query()
	if err != nil {
		h.respondError(c, err)
		return
	}

	flights, err := h.Flights.SearchFlights(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, apperr.Upstream("amadeus", err))
		return
	}
	h.Log.Info("✅ flights found",
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.Int("count", len(flights)))

	h.recordSearch(c, &database.SearchRecord{
		Kind:          database.SearchFlight,
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartureDate,
		ReturnDate:    q.ReturnDate,
		Passengers:    q.Adults,
		ResultCount:   len(flights),
	})

	c.JSON(http.StatusOK, gin.H{"flights": flights})
}

// SearchHotels uses Amadeus when a city code is given, otherwise Places.
func (h *Handler) SearchHotels(c *gin.Context) {
	var req HotelSearchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ratings, err := parseRatings(req.Ratings)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var hotels []services.Hotel
	cityCode := strings.ToUpper(strings.TrimSpace(req.CityCode))
	switch {
	case cityCode != "":
		if h.CityHotels == nil {
			h.respondError(c, apperr.Validation("hotel search by city code is not configured", "cityCode"))
			return
		}
		if !validDate(req.CheckIn) || !validDate(req.CheckOut) {
			h.respondError(c, apperr.Validation("invalid hotel search", "checkIn", "checkOut"))
			return
		}
		hotels, err = h.CityHotels.SearchHotels(c.Request.Context(), cityCode, req.CheckIn, req.CheckOut, max(req.Adults, 1))
		if err != nil {
			h.respondError(c, apperr.Upstream("amadeus", err))
			return
		}
	default:
		if req.Location == nil || req.Location.Lat == 0 || req.Location.Lng == 0 {
			h.respondError(c, apperr.Validation("invalid location data", "location"))
			return
		}
		hotels, err = h.PlacesHotels.SearchHotels(c.Request.Context(), services.HotelQuery{
			Destination: req.Destination,
			Location:    req.Location,
			PriceRange:  req.PriceRange,
			Ratings:     ratings,
		})
		if err != nil {
			h.respondError(c, apperr.Upstream("places", err))
			return
		}
	}

	dest := req.Destination
	if cityCode != "" {
		dest = cityCode
	}
	h.recordSearch(c, &database.SearchRecord{
		Kind:          database.SearchHotel,
		Destination:   dest,
		DepartureDate: req.CheckIn,
		ReturnDate:    req.CheckOut,
		Passengers:    req.Adults + req.Children,
		ResultCount:   len(hotels),
	})

	if hotels == nil {
		hotels = []services.Hotel{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hotels": hotels})
}

// parseRatings accepts ratings sent as numbers or numeric strings.
func parseRatings(in []json.Number) ([]int, error) {
	out := make([]int, 0, len(in))
	for _, r := range in {
		n, err := strconv.Atoi(r.String())
		if err != nil || n < 0 || n > 5 {
			return nil, apperr.Validation("ratings must be whole numbers from 0 to 5", "ratings")
		}
		out = append(out, n)
	}
	return out, nil
}

// recordSearch stores a search for signed-in callers. Failures are logged only.
func (h *Handler) recordSearch(c *gin.Context, rec *database.SearchRecord) {
	user := sessionUser(c)
	if h.History == nil || user == "" {
		return
	}
	rec.ID = uuid.NewString()
	rec.UserID = user
	rec.CreatedAt = h.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 5*time.Second)
	defer cancel()
	if err := h.History.Record(ctx, rec); err != nil {
		h.Log.Warn("⚠️  search not recorded", zap.String("kind", rec.Kind), zap.Error(err))
	}
}

// RecentSearches lists the caller's latest searches.
func (h *Handler) RecentSearches(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusOK, gin.H{"searches": []database.SearchRecord{}})
		return
	}
	recs, err := h.History.Recent(c.Request.Context(), sessionUser(c), recentSearchLimit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recs == nil {
		recs = []database.SearchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"searches": recs})
}

// ─── Reference data ──────────────────────────────────────────────────────────

func (h *Handler) SearchAirports(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		h.respondError(c, apperr.Validation("search keyword is required", "keyword"))
		return
	}
	airports, err := h.Reference.SearchAirports(c.Request.Context(), keyword)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if airports == nil {
		airports = []database.Airport{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "airports": airports})
}

func (h *Handler) SearchCities(c *gin.Context) {
	cities, err := h.Reference.SearchCities(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if cities == nil {
		cities = []database.City{}
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
