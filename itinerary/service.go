package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"globetrail/apperr"
	"globetrail/database"
	"globetrail/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemporaryTTL is how long a temporary itinerary survives.
const TemporaryTTL = 7 * 24 * time.Hour

// Store is the persistence the service needs.
type Store interface {
	InsertItinerary(ctx context.Context, it *database.Itinerary) error
	ListItineraries(ctx context.Context, userID string, now time.Time) ([]database.Itinerary, error)
	GetItinerary(ctx context.Context, userID, id string) (*database.Itinerary, error)
	SoftDeleteItinerary(ctx context.Context, userID, id string) error
}

// EventPublisher receives itinerary.saved events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

// SaveRequest is the save-itinerary input.
type SaveRequest struct {
	ItineraryData *Plan     `json:"itineraryData"`
	Metadata      *Metadata `json:"metadata"`
	UserID        string    `json:"userId"`
	IsTemporary   bool      `json:"isTemporary"`
}

// Service saves, lists, reads and deletes itineraries.
type Service struct {
	store  Store
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store Store, events EventPublisher, log *zap.Logger) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{store: store, events: events, log: log, now: time.Now}
}

// Save stores a generated plan for its owner. sessionUser is the caller's
// session user id, or "" when there is no session.
func (s *Service) Save(ctx context.Context, req SaveRequest, sessionUser string) (*database.Itinerary, error) {
	owner := strings.TrimSpace(req.UserID)
	if owner == "" {
		owner = sessionUser
	}

	var fields []string
	if owner == "" {
		fields = append(fields, "userId")
	}
	if req.ItineraryData == nil || len(req.ItineraryData.Places) == 0 {
		fields = append(fields, "itineraryData")
	}
	if req.Metadata == nil || strings.TrimSpace(req.Metadata.Destination) == "" {
		fields = append(fields, "metadata")
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("missing required data", fields...)
	}
	if sessionUser != "" && owner != sessionUser {
		return nil, apperr.Forbidden("not authorized to save for this user")
	}

	meta := req.Metadata
	if err := validatePlan(req.ItineraryData, max(meta.NumberOfDays, 1)); err != nil {
		msg := err.Error()
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Details != "" {
			msg = appErr.Details
		}
		return nil, apperr.Validation("invalid itinerary data: "+msg, "itineraryData")
	}

	now := s.now().UTC()
	it := &database.Itinerary{
		ID:           uuid.NewString(),
		UserID:       owner,
		Destination:  meta.Destination,
		StartDate:    meta.StartDate,
		EndDate:      meta.EndDate,
		NumberOfDays: meta.NumberOfDays,
		Travelers:    string(meta.Travelers),
		Budget:       meta.Budget,
		Places:       toPlaces(req.ItineraryData.Places),
		Status:       "active",
		IsTemporary:  req.IsTemporary,
		CreatedAt:    now,
	}
	if req.IsTemporary {
		expires := now.Add(TemporaryTTL)
		it.ExpiresAt = &expires
	}

	if err := s.store.InsertItinerary(ctx, it); err != nil {
		return nil, fmt.Errorf("save itinerary: %w", err)
	}

	s.log.Info("✅ itinerary saved",
		zap.String("id", it.ID),
		zap.String("user_id", owner),
		zap.Bool("temporary", it.IsTemporary))

	if err := s.events.Publish(ctx, services.EventItinerarySaved, map[string]any{
		"itineraryId": it.ID,
		"userId":      owner,
		"destination": it.Destination,
		"isTemporary": it.IsTemporary,
	}); err != nil {
		s.log.Warn("⚠️  itinerary.saved not published", zap.Error(err))
	}
	return it, nil
}

// List returns the owner's itineraries, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]View, error) {
	items, err := s.store.ListItineraries(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}

	views := make([]View, 0, len(items))
	for i := range items {
		views = append(views, newView(&items[i]))
	}
	return views, nil
}

// Get returns one live itinerary.
func (s *Service) Get(ctx context.Context, userID, id string) (*View, error) {
	it, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	v := newView(it)
	return &v, nil
}

// Record returns the stored document, for renderers that need it whole.
func (s *Service) Record(ctx context.Context, userID, id string) (*database.Itinerary, error) {
	return s.load(ctx, userID, id)
}

// Delete soft-deletes an itinerary. The record must exist and, when the
// caller has a session, belong to the session user.
func (s *Service) Delete(ctx context.Context, userID, id, sessionUser string) error {
	it, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if sessionUser != "" && it.UserID != sessionUser {
		return apperr.Forbidden("not authorized to delete this itinerary")
	}

	if err := s.store.SoftDeleteItinerary(ctx, userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("itinerary")
		}
		return fmt.Errorf("delete itinerary: %w", err)
	}
	s.log.Info("itinerary deleted", zap.String("id", id), zap.String("user_id", userID))
	return nil
}

func (s *Service) load(ctx context.Context, userID, id string) (*database.Itinerary, error) {
	it, err := s.store.GetItinerary(ctx, userID, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperr.NotFound("itinerary")
	}
	if err != nil {
		return nil, fmt.Errorf("load itinerary: %w", err)
	}
	if it.Deleted {
		return nil, apperr.NotFound("itinerary")
	}
	if it.ExpiresAt != nil && !it.ExpiresAt.After(s.now()) {
		return nil, apperr.NotFound("itinerary")
	}
	return it, nil
}
