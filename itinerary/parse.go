package itinerary

import (
	"encoding/json"
	"sort"
	"strings"

	"globetrail/apperr"
	"globetrail/database"
)

// stripFences removes markdown code fences and any prose around the JSON
// object.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			lang := strings.TrimSpace(text[:nl])
			if lang == "" || !strings.ContainsAny(lang, "{[") {
				text = text[nl+1:]
			}
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// ParsePlan decodes provider output and validates its shape. plannedDays is
// the upper bound for "Day N" labels.
func ParsePlan(text string, plannedDays int) (*Plan, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.EmptyItinerary()
	}

	var plan Plan
	if err := json.Unmarshal([]byte(stripFences(text)), &plan); err != nil {
		return nil, apperr.Malformed("itinerary is not valid JSON: %v", err)
	}
	if err := validatePlan(&plan, plannedDays); err != nil {
		return nil, err
	}

	sortPlaces(plan.Places)
	return &plan, nil
}

func validatePlan(plan *Plan, plannedDays int) error {
	if len(plan.Places) == 0 {
		return apperr.Malformed("itinerary has no places")
	}

	seen := make(map[int]bool)
	highest := 0
	for i := range plan.Places {
		p := &plan.Places[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Day = strings.TrimSpace(p.Day)

		if p.Name == "" {
			return apperr.Malformed("place %d has no name", i+1)
		}
		n := database.DayNumber(p.Day)
		if n == 0 {
			return apperr.Malformed("place %q has invalid day label %q", p.Name, p.Day)
		}
		p.Day = dayLabel(n)
		seen[n] = true
		highest = max(highest, n)
	}

	for d := 1; d <= highest; d++ {
		if !seen[d] {
			return apperr.Malformed("day labels skip Day %d", d)
		}
	}
	if highest > plannedDays {
		return apperr.Malformed("itinerary covers %d days, trip has %d", highest, plannedDays)
	}
	return nil
}

// sortPlaces orders by day number, then visitOrder. Within a day, places
// with a visitOrder come before those without; the rest keep input order.
func sortPlaces(places []GeneratedPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		di, dj := database.DayNumber(places[i].Day), database.DayNumber(places[j].Day)
		if di != dj {
			return di < dj
		}
		oi, oj := places[i].VisitOrder, places[j].VisitOrder
		if oi > 0 && oj > 0 {
			return oi < oj
		}
		return oi > 0 && oj <= 0
	})
}
