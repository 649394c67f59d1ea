package itinerary

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"globetrail/database"

	"github.com/google/uuid"
)

// EntryFeeValue converts display text to whole units. "Free" is 0, "$1,200"
// is 1200; other currencies, exponents and anything unparsable or above
// math.MaxInt32 are 0.
func EntryFeeValue(fee string) int {
	fee = strings.TrimSpace(fee)
	if fee == "" || strings.EqualFold(fee, "free") {
		return 0
	}
	fee = strings.TrimPrefix(fee, "$")
	fee = strings.ReplaceAll(fee, ",", "")
	fee = strings.TrimSpace(fee)

	whole, frac, _ := strings.Cut(fee, ".")
	if whole == "" || !allDigits(whole) || !allDigits(frac) {
		return 0
	}
	n, err := strconv.Atoi(whole)
	if err != nil || n > math.MaxInt32 {
		return 0
	}
	return n
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func dayLabel(n int) string {
	return "Day " + strconv.Itoa(n)
}

// toPlaces converts generated places into stored ones keyed by a fresh id,
// normalizing fees and visit orders.
func toPlaces(generated []GeneratedPlace) map[string]database.Place {
	places := make([]database.Place, 0, len(generated))
	for _, g := range generated {
		day := g.Day
		if n := database.DayNumber(day); n > 0 {
			day = dayLabel(n)
		}
		places = append(places, database.Place{
			ID:          uuid.NewString(),
			Day:         day,
			Name:        strings.TrimSpace(g.Name),
			ImageURL:    g.ImageURL,
			VisitTime:   g.VisitTime,
			EntryFee:    EntryFeeValue(string(g.EntryFee)),
			Description: g.Description,
			Facts:       g.Facts,
			VisitOrder:  g.VisitOrder,
		})
	}
	assignVisitOrder(places)

	out := make(map[string]database.Place, len(places))
	for _, p := range places {
		out[p.ID] = p
	}
	return out
}

// assignVisitOrder keeps each day's visit orders when they are present and
// distinct. Otherwise the day is renumbered 1..n, preserving any existing
// relative order and then input position.
func assignVisitOrder(places []database.Place) {
	groups := make(map[string][]int)
	var days []string
	for i, p := range places {
		if _, ok := groups[p.Day]; !ok {
			days = append(days, p.Day)
		}
		groups[p.Day] = append(groups[p.Day], i)
	}

	for _, day := range days {
		idx := groups[day]
		if validOrders(places, idx) {
			continue
		}
		sort.SliceStable(idx, func(a, b int) bool {
			oa, ob := places[idx[a]].VisitOrder, places[idx[b]].VisitOrder
			if oa > 0 && ob > 0 {
				return oa < ob
			}
			return oa > 0 && ob <= 0
		})
		for pos, i := range idx {
			places[i].VisitOrder = pos + 1
		}
	}
}

func validOrders(places []database.Place, idx []int) bool {
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		o := places[i].VisitOrder
		if o <= 0 || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
