package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"googlemaps.github.io/maps"
)

const (
	hotelSearchRadius  = 5000
	detailsConcurrency = 5
	photoMaxWidth      = 400

	// PhotoPath is the API route that proxies Places photos.
	PhotoPath = "/api/places/photo"
)

// HotelQuery is the hotel search input after handler validation.
type HotelQuery struct {
	Destination string
	Location    *LatLng
	PriceRange  string
	Ratings     []int
}

// ─── Places Client ───────────────────────────────────────────────────────────

type PlacesClient struct {
	maps      *maps.Client
	photoBase string
	log       *zap.Logger
}

// NewPlacesClient builds a Places API client. An empty baseURL selects the
// public Google endpoint. Photo links are built on photoBase, the public
// address of this service, so the key never reaches a browser.
func NewPlacesClient(apiKey, baseURL, photoBase string, log *zap.Logger) *PlacesClient {
	c := &PlacesClient{photoBase: strings.TrimRight(photoBase, "/"), log: log}
	if apiKey == "" {
		log.Warn("⚠️  GOOGLE_MAPS_API_KEY not set, hotel search and photos disabled")
		return c
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		log.Error("❌ Places client init failed", zap.Error(err))
		return c
	}
	c.maps = client
	return c
}

// redactKey strips the query string, and with it the API key, from a
// transport error.
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		} else {
			urlErr.URL = "(redacted)"
		}
	}
	return err
}

func (c *PlacesClient) ready() error {
	if c.maps == nil {
		return fmt.Errorf("places: %w", ErrNotConfigured)
	}
	return nil
}

// ─── Hotel Search ────────────────────────────────────────────────────────────

// SearchHotels runs a lodging text search around the destination and then
// fetches details for each hit. A failed details lookup drops that hotel.
func (c *PlacesClient) SearchHotels(ctx context.Context, q HotelQuery) ([]Hotel, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	req := &maps.TextSearchRequest{
		Query:  "hotels in " + q.Destination,
		Radius: hotelSearchRadius,
		Type:   maps.PlaceTypeLodging,
	}
	if q.Location != nil {
		req.Location = &maps.LatLng{Lat: q.Location.Lat, Lng: q.Location.Lng}
	}

	search, err := c.maps.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("hotel text search failed: %w", redactKey(err))
	}

	details := make([]*maps.PlaceDetailsResult, len(search.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, r := range search.Results {
		g.Go(func() error {
			d, err := c.maps.PlaceDetails(gctx, &maps.PlaceDetailsRequest{PlaceID: r.PlaceID})
			if err != nil {
				c.log.Warn("⚠️  hotel details lookup failed", zap.String("place_id", r.PlaceID), zap.Error(redactKey(err)))
				return nil
			}
			details[i] = &d
			return nil
		})
	}
	_ = g.Wait()

	base := basePrice(q.PriceRange)
	hotels := make([]Hotel, 0, len(details))
	for i, d := range details {
		if d == nil {
			continue
		}
		rating := float64(d.Rating)
		if !ratingAllowed(rating, q.Ratings) {
			continue
		}
		photos := make([]string, 0, len(d.Photos))
		for _, p := range d.Photos {
			photos = append(photos, c.PhotoURL(p.PhotoReference))
		}
		hotels = append(hotels, Hotel{
			ID:            search.Results[i].PlaceID,
			Name:          d.Name,
			Address:       d.FormattedAddress,
			Location:      LatLng{Lat: d.Geometry.Location.Lat, Lng: d.Geometry.Location.Lng},
			Rating:        rating,
			PriceLevel:    d.PriceLevel,
			PricePerNight: base * float64(max(d.PriceLevel, 1)),
			Currency:      "INR",
			Phone:         d.FormattedPhoneNumber,
			Website:       d.Website,
			Photos:        photos,
		})
	}
	return hotels, nil
}

// ─── Photos ──────────────────────────────────────────────────────────────────

// PhotoURL builds the proxied photo link for a photo reference.
func (c *PlacesClient) PhotoURL(ref string) string {
	params := url.Values{}
	params.Set("ref", ref)
	params.Set("maxwidth", fmt.Sprint(photoMaxWidth))
	return c.photoBase + PhotoPath + "?" + params.Encode()
}

// FindPhoto returns a photo link for the best match of a free-text query, or
// "" when no match has photos.
func (c *PlacesClient) FindPhoto(ctx context.Context, query string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}

	resp, err := c.maps.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil {
		return "", redactKey(err)
	}
	for _, r := range resp.Results {
		if len(r.Photos) > 0 {
			return c.PhotoURL(r.Photos[0].PhotoReference), nil
		}
	}
	return "", nil
}

// Photo fetches the image bytes for a photo reference. The caller closes
// the returned reader.
func (c *PlacesClient) Photo(ctx context.Context, ref string, maxWidth uint) (string, io.ReadCloser, error) {
	if err := c.ready(); err != nil {
		return "", nil, err
	}
	if maxWidth == 0 || maxWidth > 1600 {
		maxWidth = photoMaxWidth
	}

	resp, err := c.maps.PlacePhoto(ctx, &maps.PlacePhotoRequest{PhotoReference: ref, MaxWidth: maxWidth})
	if err != nil {
		return "", nil, fmt.Errorf("place photo failed: %w", redactKey(err))
	}
	return resp.ContentType, resp.Data, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func basePrice(priceRange string) float64 {
	switch strings.ToLower(priceRange) {
	case "economy":
		return 2000
	case "moderate":
		return 5000
	default:
		return 10000
	}
}

func ratingAllowed(rating float64, ratings []int) bool {
	if len(ratings) == 0 {
		return true
	}
	floor := int(math.Floor(rating))
	for _, r := range ratings {
		if r == floor {
			return true
		}
	}
	return false
}
