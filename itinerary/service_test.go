package itinerary

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"globetrail/apperr"
	"globetrail/database"
	"globetrail/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu    sync.Mutex
	items map[string]database.Itinerary
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]database.Itinerary)}
}

func (m *memStore) InsertItinerary(_ context.Context, it *database.Itinerary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = *it
	return nil
}

func (m *memStore) ListItineraries(_ context.Context, userID string, now time.Time) ([]database.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Itinerary
	for _, it := range m.items {
		if it.UserID != userID || it.Deleted {
			continue
		}
		if it.ExpiresAt != nil && !it.ExpiresAt.After(now) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetItinerary(_ context.Context, userID, id string) (*database.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return nil, database.ErrNotFound
	}
	return &it, nil
}

func (m *memStore) SoftDeleteItinerary(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID || it.Deleted {
		return database.ErrNotFound
	}
	it.Deleted = true
	it.Status = "deleted"
	it.Places = nil
	m.items[id] = it
	return nil
}

type recordedEvent struct {
	key  string
	data any
}

type fakeEvents struct {
	events []recordedEvent
}

func (f *fakeEvents) Publish(_ context.Context, key string, data any) error {
	f.events = append(f.events, recordedEvent{key: key, data: data})
	return nil
}

func parisSave(userID string) SaveRequest {
	plan, err := ParsePlan(parisPlan, 2)
	if err != nil {
		panic(err)
	}
	return SaveRequest{
		ItineraryData: plan,
		Metadata: &Metadata{
			Destination:  "Paris",
			StartDate:    "2025-06-01",
			EndDate:      "2025-06-03",
			NumberOfDays: 2,
			Budget:       "moderate",
			Travelers:    "2",
		},
		UserID: userID,
	}
}

func newTestService(store Store) (*Service, *fakeEvents) {
	events := &fakeEvents{}
	svc := NewService(store, events, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return svc, events
}

func TestService_SaveListDelete(t *testing.T) {
	ctx := context.Background()
	svc, events := newTestService(newMemStore())

	saved, err := svc.Save(ctx, parisSave("u1"), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Nil(t, saved.ExpiresAt)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Paris", list[0].Metadata.Destination)
	assert.Equal(t, Travelers("2"), list[0].Metadata.Travelers)
	assert.Equal(t, 2, list[0].Metadata.NumberOfDays)

	places := list[0].Places
	require.Len(t, places, 3)
	assert.Equal(t, "Eiffel Tower", places[0].Name)
	assert.Equal(t, 30, places[0].EntryFee)
	assert.Equal(t, "Montmartre", places[2].Name)
	assert.Equal(t, 0, places[2].EntryFee)

	require.Len(t, events.events, 1)
	assert.Equal(t, services.EventItinerarySaved, events.events[0].key)

	require.NoError(t, svc.Delete(ctx, "u1", saved.ID, "u1"))

	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, "u1", saved.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_SaveUsesSessionUser(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	saved, err := svc.Save(context.Background(), parisSave(""), "u7")
	require.NoError(t, err)
	assert.Equal(t, "u7", saved.UserID)
}

func TestService_SaveRejects(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	ctx := context.Background()

	_, err := svc.Save(ctx, parisSave(""), "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	req := parisSave("u1")
	req.ItineraryData = &Plan{}
	_, err = svc.Save(ctx, req, "u1")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Save(ctx, parisSave("u2"), "u1")
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))
}

func TestService_SaveRejectsInvalidPlaces(t *testing.T) {
	tests := []struct {
		name   string
		places []GeneratedPlace
	}{
		{"bad day label", []GeneratedPlace{{Day: "Day 1", Name: "A"}, {Day: "banana", Name: "B"}}},
		{"empty name", []GeneratedPlace{{Day: "Day 1", Name: "  "}}},
		{"day gap", []GeneratedPlace{{Day: "Day 1", Name: "A"}, {Day: "Day 3", Name: "B"}}},
		{"beyond trip length", []GeneratedPlace{{Day: "Day 1", Name: "A"}, {Day: "Day 2", Name: "B"}, {Day: "Day 3", Name: "C"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc, _ := newTestService(store)
			req := parisSave("u1")
			req.ItineraryData = &Plan{Places: tt.places}

			_, err := svc.Save(context.Background(), req, "u1")

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, []string{"itineraryData"}, appErr.Fields)

			list, err := svc.List(context.Background(), "u1")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestService_SaveNormalizesDayLabels(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	req := parisSave("u1")
	req.ItineraryData = &Plan{Places: []GeneratedPlace{
		{Day: " Day 1 ", Name: " Louvre ", EntryFee: "$22", VisitOrder: 1},
		{Day: "Day 2", Name: "Montmartre", EntryFee: "Free", VisitOrder: 1},
	}}

	saved, err := svc.Save(context.Background(), req, "u1")
	require.NoError(t, err)

	days := map[string]string{}
	for _, p := range saved.Places {
		days[p.Name] = p.Day
	}
	assert.Equal(t, map[string]string{"Louvre": "Day 1", "Montmartre": "Day 2"}, days)
}

func TestService_TemporaryExpires(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemStore())

	req := parisSave("anon_42")
	req.IsTemporary = true
	saved, err := svc.Save(ctx, req, "")
	require.NoError(t, err)
	require.NotNil(t, saved.ExpiresAt)
	assert.True(t, saved.ExpiresAt.Equal(svc.now().Add(TemporaryTTL)))

	_, err = svc.Get(ctx, "anon_42", saved.ID)
	require.NoError(t, err)

	later := svc.now().Add(TemporaryTTL + time.Minute)
	svc.now = func() time.Time { return later }

	_, err = svc.Get(ctx, "anon_42", saved.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, err := svc.List(ctx, "anon_42")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_DeleteNotOwned(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemStore())

	saved, err := svc.Save(ctx, parisSave("u1"), "u1")
	require.NoError(t, err)

	err = svc.Delete(ctx, "u1", saved.ID, "u2")
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_DeleteMissing(t *testing.T) {
	svc, _ := newTestService(newMemStore())

	err := svc.Delete(context.Background(), "u1", "does-not-exist", "u1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_ListKeepsOtherOwnersApart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemStore())

	_, err := svc.Save(ctx, parisSave("u1"), "")
	require.NoError(t, err)

	list, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, list)
}
