package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"globetrail/database"

	"go.uber.org/zap"
)

// USDToINR is the fixed rate used for display prices.
const USDToINR = 83.5

// ErrNotConfigured is returned by provider clients that lack credentials.
var ErrNotConfigured = errors.New("provider not configured")

// ─── Types ───────────────────────────────────────────────────────────────────

// FlightQuery is the flight search input after handler validation.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
}

// Hotel is the display schema shared by both hotel search providers.
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Location      LatLng   `json:"location"`
	Rating        float64  `json:"rating"`
	PriceLevel    int      `json:"priceLevel"`
	PricePerNight float64  `json:"pricePerNight"`
	Currency      string   `json:"currency"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	Photos        []string `json:"photos"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ─── Amadeus Client ──────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
	log          *zap.Logger
}

func NewAmadeusClient(clientID, clientSecret, baseURL string, log *zap.Logger) *AmadeusClient {
	c := &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log,
	}
	if !c.Configured() {
		log.Warn("⚠️  AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set, flight search disabled")
	}
	return c
}

func (c *AmadeusClient) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return result.AccessToken, nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.accessToken
	expired := time.Now().After(c.tokenExpiry)
	c.mu.Unlock()

	if token != "" && !expired {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *AmadeusClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("amadeus token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// ─── Flight Search ───────────────────────────────────────────────────────────

// SearchFlights calls Flight Offers Search and reshapes each offer into the
// display schema, with display prices converted to INR.
func (c *AmadeusClient) SearchFlights(ctx context.Context, q FlightQuery) ([]database.FlightDetails, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("max", "20")
	params.Set("currencyCode", "USD")

	body, err := c.doRequest(ctx, http.MethodGet, "/v2/shopping/flight-offers?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("flight offers: %w", err)
	}

	return parseFlightOffers(body)
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
	Duration    string `json:"duration"`
}

type amadeusFlightOffer struct {
	ID    string `json:"id"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string           `json:"duration"`
		Segments []amadeusSegment `json:"segments"`
	} `json:"itineraries"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

func parseFlightOffers(data []byte) ([]database.FlightDetails, error) {
	var resp struct {
		Data []amadeusFlightOffer `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode flight offers: %w", err)
	}

	flights := make([]database.FlightDetails, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		price := parsePrice(offer.Price.GrandTotal)
		if price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		code := first.CarrierCode
		if code == "" && len(offer.ValidatingAirlineCodes) > 0 {
			code = offer.ValidatingAirlineCodes[0]
		}

		segments := make([]database.Segment, 0, len(outbound.Segments))
		for _, s := range outbound.Segments {
			segments = append(segments, database.Segment{
				FlightNumber:  s.CarrierCode + s.Number,
				CarrierCode:   s.CarrierCode,
				From:          s.Departure.IataCode,
				To:            s.Arrival.IataCode,
				DepartureTime: s.Departure.At,
				ArrivalTime:   s.Arrival.At,
				Duration:      parseDuration(s.Duration),
			})
		}

		flights = append(flights, database.FlightDetails{
			ID:            offer.ID,
			Price:         database.Money{Amount: price, Currency: offer.Price.Currency},
			DisplayPrice:  database.Money{Amount: ToINR(price, offer.Price.Currency), Currency: "INR"},
			Airline:       LookupAirline(code),
			Origin:        first.Departure.IataCode,
			Destination:   last.Arrival.IataCode,
			DepartureTime: first.Departure.At,
			ArrivalTime:   last.Arrival.At,
			Duration:      parseDuration(outbound.Duration),
			Stops:         len(outbound.Segments) - 1,
			Segments:      segments,
		})
	}

	return flights, nil
}

// ToINR converts a USD amount to whole rupees; other currencies pass through.
func ToINR(amount float64, currency string) float64 {
	if currency != "" && currency != "USD" {
		return amount
	}
	return math.Round(amount * USDToINR)
}

// ─── Hotel Search ────────────────────────────────────────────────────────────

// SearchHotels looks up hotels for an IATA city code via Hotel List and
// Hotel Offers.
func (c *AmadeusClient) SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, adults int) ([]Hotel, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	hotelIDs, err := c.getHotelIDsByCity(ctx, cityCode)
	if err != nil {
		return nil, fmt.Errorf("hotels by city: %w", err)
	}
	if len(hotelIDs) == 0 {
		return []Hotel{}, nil
	}

	// Hotel Offers rejects long id lists
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}

	return c.getHotelOffers(ctx, hotelIDs, checkIn, checkOut, adults)
}

func (c *AmadeusClient) getHotelIDsByCity(ctx context.Context, cityCode string) ([]string, error) {
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=5&radiusUnit=KM&hotelSource=ALL",
		url.QueryEscape(airportToCity(cityCode)))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			HotelID string `json:"hotelId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode hotels by city: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID   string  `json:"hotelId"`
			Name      string  `json:"name"`
			CityCode  string  `json:"cityCode"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Address   struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) getHotelOffers(ctx context.Context, hotelIDs []string, checkIn, checkOut string, adults int) ([]Hotel, error) {
	path := fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=%d&roomQuantity=1&currency=USD&bestRateOnly=true",
		url.QueryEscape(strings.Join(hotelIDs, ",")),
		url.QueryEscape(checkIn),
		url.QueryEscape(checkOut),
		adults,
	)

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("hotel offers: %w", err)
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode hotel offers: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}

		address := strings.Join(item.Hotel.Address.Lines, ", ")
		if item.Hotel.Address.CityName != "" {
			if address != "" {
				address += ", "
			}
			address += item.Hotel.Address.CityName
		}
		if address == "" {
			address = item.Hotel.CityCode
		}

		hotels = append(hotels, Hotel{
			ID:            item.Hotel.HotelID,
			Name:          item.Hotel.Name,
			Address:       address,
			Location:      LatLng{Lat: item.Hotel.Latitude, Lng: item.Hotel.Longitude},
			Rating:        parseRating(item.Hotel.Rating),
			PricePerNight: ToINR(price, item.Offers[0].Price.Currency),
			Currency:      "INR",
			Photos:        []string{},
		})
	}

	return hotels, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// parseDuration renders PT5H30M as "5h 30m".
func parseDuration(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.TrimPrefix(iso, "PT")
	var parts []string
	if i := strings.Index(iso, "H"); i >= 0 {
		parts = append(parts, iso[:i]+"h")
		iso = iso[i+1:]
	}
	if i := strings.Index(iso, "M"); i >= 0 {
		parts = append(parts, iso[:i]+"m")
	}
	return strings.Join(parts, " ")
}

func parsePrice(s string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return price
}

func parseRating(s string) float64 {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 {
		return 0
	}
	return math.Min(r, 5)
}

// airportToCity returns the metro city code hotel search expects.
func airportToCity(airport string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON", "LTN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"FCO": "ROM", "CIA": "ROM",
		"NRT": "TYO", "HND": "TYO",
		"SXF": "BER",
	}
	if city, ok := mapping[strings.ToUpper(airport)]; ok {
		return city
	}
	return strings.ToUpper(airport)
}
