package database

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const referenceLimit = 10

// SearchAirports matches keyword against IATA code, name and city. Exact
// IATA hits come first, then city matches, then the rest.
func (s *Store) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []Airport{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pattern := bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	cursor, err := s.airports.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"iata": pattern},
		bson.M{"name": pattern},
		bson.M{"city": pattern},
	}}, options.Find().SetLimit(100))
	if err != nil {
		return nil, wrap("Store.SearchAirports", err)
	}
	defer cursor.Close(ctx)

	var airports []Airport
	if err := cursor.All(ctx, &airports); err != nil {
		return nil, wrap("Store.SearchAirports", err)
	}
	return rankAirports(airports, keyword), nil
}

func rankAirports(airports []Airport, keyword string) []Airport {
	kw := strings.ToLower(keyword)
	rank := func(a Airport) int {
		switch {
		case strings.ToLower(a.IATA) == kw:
			return 0
		case strings.Contains(strings.ToLower(a.IATA), kw):
			return 1
		case strings.Contains(strings.ToLower(a.City), kw):
			return 2
		default:
			return 3
		}
	}

	out := make([]Airport, 0, len(airports))
	for _, a := range airports {
		if rank(a) < 3 || strings.Contains(strings.ToLower(a.Name), kw) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })

	if len(out) > referenceLimit {
		out = out[:referenceLimit]
	}
	return out
}

// SearchCities matches q against city name, state and country.
func (s *Store) SearchCities(ctx context.Context, q string) ([]City, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []City{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pattern := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	cursor, err := s.cities.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"state": pattern},
		bson.M{"country": pattern},
	}}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(referenceLimit))
	if err != nil {
		return nil, wrap("Store.SearchCities", err)
	}
	defer cursor.Close(ctx)

	out := []City{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap("Store.SearchCities", err)
	}
	return out, nil
}
