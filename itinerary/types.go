// Package itinerary generates day-by-day trip plans through a text provider
// and stores them per owner.
package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"globetrail/database"
)

const dateLayout = "2006-01-02"

// Request is the generate-itinerary input.
type Request struct {
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Budget      string    `json:"budget"`
	Travelers   Travelers `json:"travelers"`
}

// Travelers accepts a JSON string or number and keeps its text form, so a
// client that sends "2" reads back "2".
type Travelers string

func (t *Travelers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Travelers(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("travelers must be a string or number")
	}
	*t = Travelers(n.String())
	return nil
}

// Count parses the traveler count; ok is false unless it is an integer >= 1.
func (t Travelers) Count() (int, bool) {
	n, err := strconv.Atoi(string(t))
	return n, err == nil && n >= 1
}

// Metadata describes the trip an itinerary was generated for.
type Metadata struct {
	Destination  string    `json:"destination"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	NumberOfDays int       `json:"numberOfDays"`
	Budget       string    `json:"budget"`
	Travelers    Travelers `json:"travelers"`
}

// Plan is the generator output: places ordered by day, then visit order.
type Plan struct {
	Places []GeneratedPlace `json:"places"`
}

// GeneratedPlace is one place as the provider described it. EntryFee is
// still display text here.
type GeneratedPlace struct {
	Day         string  `json:"day"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"imageUrl"`
	VisitTime   string  `json:"visitTime"`
	EntryFee    FeeText `json:"entryFee"`
	Description string  `json:"description"`
	Facts       string  `json:"facts"`
	VisitOrder  int     `json:"visitOrder"`
}

// FeeText holds an entry fee as display text. Numbers are accepted and kept
// in their decimal form.
type FeeText string

func (f *FeeText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FeeText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("entryFee must be a string or number")
		}
		*f = FeeText(n.String())
	}
	return nil
}

// View is an itinerary as returned to clients.
type View struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Destination string           `json:"destination"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Travelers   string           `json:"travelers"`
	Budget      string           `json:"budget"`
	Places      []database.Place `json:"places"`
	Status      string           `json:"status"`
	IsTemporary bool             `json:"isTemporary"`
	ExpiresAt   *time.Time       `json:"expiresAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	Metadata    Metadata         `json:"metadata"`
}

func newView(it *database.Itinerary) View {
	return View{
		ID:          it.ID,
		UserID:      it.UserID,
		Destination: it.Destination,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
		Travelers:   it.Travelers,
		Budget:      it.Budget,
		Places:      it.OrderedPlaces(),
		Status:      it.Status,
		IsTemporary: it.IsTemporary,
		ExpiresAt:   it.ExpiresAt,
		CreatedAt:   it.CreatedAt,
		Metadata: Metadata{
			Destination:  it.Destination,
			StartDate:    it.StartDate,
			EndDate:      it.EndDate,
			NumberOfDays: it.NumberOfDays,
			Budget:       it.Budget,
			Travelers:    Travelers(it.Travelers),
		},
	}
}
