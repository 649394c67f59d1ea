package database

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnonymousPrefix marks owner ids minted for visitors without an account.
const AnonymousPrefix = "anon_"

func (s *Store) InsertItinerary(ctx context.Context, it *Itinerary) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.itineraries.InsertOne(ctx, it)
	return wrap("Store.InsertItinerary", err)
}

// ListItineraries returns the owner's live itineraries, newest first. Expired
// temporary records of anonymous owners are skipped even before the TTL
// monitor reaps them.
func (s *Store) ListItineraries(ctx context.Context, userID string, now time.Time) ([]Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"user_id": userID, "deleted": bson.M{"$ne": true}}
	if strings.HasPrefix(userID, AnonymousPrefix) {
		filter["$or"] = bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": now}},
		}
	}

	cursor, err := s.itineraries.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, wrap("Store.ListItineraries", err)
	}
	defer cursor.Close(ctx)

	out := []Itinerary{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, wrap("Store.ListItineraries", err)
	}
	return out, nil
}

// GetItinerary loads one record regardless of its deleted flag.
func (s *Store) GetItinerary(ctx context.Context, userID, id string) (*Itinerary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var it Itinerary
	err := s.itineraries.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&it)
	if err != nil {
		return nil, wrap("Store.GetItinerary", err)
	}
	return &it, nil
}

// SoftDeleteItinerary flags the record deleted and drops its places.
func (s *Store) SoftDeleteItinerary(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.itineraries.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{
			"$set":   bson.M{"deleted": true, "status": "deleted"},
			"$unset": bson.M{"places": ""},
		})
	if err != nil {
		return wrap("Store.SoftDeleteItinerary", err)
	}
	if res.MatchedCount == 0 {
		return wrap("Store.SoftDeleteItinerary", ErrNotFound)
	}
	return nil
}

// OrderedPlaces returns the places sorted by day number, then visit order.
func (it *Itinerary) OrderedPlaces() []Place {
	out := make([]Place, 0, len(it.Places))
	for _, p := range it.Places {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := DayNumber(out[i].Day), DayNumber(out[j].Day)
		if di != dj {
			return di < dj
		}
		if out[i].VisitOrder != out[j].VisitOrder {
			return out[i].VisitOrder < out[j].VisitOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DayNumber extracts N from a "Day N" label, or 0 when the label is malformed.
func DayNumber(label string) int {
	rest, ok := strings.CutPrefix(strings.TrimSpace(label), "Day ")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
