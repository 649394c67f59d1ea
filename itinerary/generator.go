package itinerary

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"globetrail/apperr"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	generateTimeout = 60 * time.Second
	enrichTimeout   = 15 * time.Second
	enrichWorkers   = 4
)

// TextGenerator is a generative-text provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PhotoFinder resolves a photo URL for a free-text place query.
type PhotoFinder interface {
	FindPhoto(ctx context.Context, query string) (string, error)
}

// Generator turns trip parameters into a validated Plan.
type Generator struct {
	provider     TextGenerator
	providerName string
	photos       PhotoFinder
	log          *zap.Logger
}

// NewGenerator builds a Generator. photos may be nil to skip image lookup.
func NewGenerator(provider TextGenerator, providerName string, photos PhotoFinder, log *zap.Logger) *Generator {
	return &Generator{provider: provider, providerName: providerName, photos: photos, log: log}
}

// NumberOfDays is ceil((end-start)/1 day). Same-day trips give 0.
func NumberOfDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// Validate checks the request and returns the computed trip metadata.
func Validate(req Request) (Metadata, error) {
	var fields []string

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		fields = append(fields, "destination")
	}
	if strings.TrimSpace(req.Budget) == "" {
		fields = append(fields, "budget")
	}
	start, errStart := time.Parse(dateLayout, req.StartDate)
	if errStart != nil {
		fields = append(fields, "startDate")
	}
	end, errEnd := time.Parse(dateLayout, req.EndDate)
	if errEnd != nil {
		fields = append(fields, "endDate")
	}
	if _, ok := req.Travelers.Count(); !ok {
		fields = append(fields, "travelers")
	}
	if len(fields) > 0 {
		return Metadata{}, apperr.Validation("invalid itinerary request", fields...)
	}
	if end.Before(start) {
		return Metadata{}, apperr.Validation("startDate must not be after endDate", "startDate", "endDate")
	}

	return Metadata{
		Destination:  req.Destination,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		NumberOfDays: NumberOfDays(start, end),
		Budget:       req.Budget,
		Travelers:    req.Travelers,
	}, nil
}

// BuildPrompt embeds the trip parameters and the exact output shape.
func BuildPrompt(meta Metadata) string {
	days := max(meta.NumberOfDays, 1)
	return fmt.Sprintf(`You are a travel planner. Plan a %d-day trip to %s from %s to %s for %s traveler(s) with a %s budget.

Return ONLY a JSON object, with no markdown and no commentary, of exactly this shape:
{"places":[{"day":"Day 1","name":"...","imageUrl":"","visitTime":"9:00 AM - 11:00 AM","entryFee":"Free","description":"...","facts":"...","visitOrder":1}]}

Rules:
- "day" is "Day N" with N from 1 to %d; every day in that range has at least one place.
- "visitOrder" starts at 1 within each day and is unique within that day.
- "entryFee" is "Free" or a US dollar amount such as "$25".
- Use 3 places per day, ordered so they can be visited in sequence.
- Leave "imageUrl" empty if you do not know a real image URL.`,
		days, meta.Destination, meta.StartDate, meta.EndDate, meta.Travelers, meta.Budget, days)
}

// Generate validates req, calls the provider once and parses its output.
func (g *Generator) Generate(ctx context.Context, req Request) (*Plan, Metadata, error) {
	meta, err := Validate(req)
	if err != nil {
		return nil, Metadata{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	g.log.Info("generating itinerary",
		zap.String("destination", meta.Destination),
		zap.Int("days", meta.NumberOfDays),
		zap.String("provider", g.providerName))

	text, err := g.provider.Generate(ctx, BuildPrompt(meta))
	if err != nil {
		g.log.Error("❌ itinerary generation failed", zap.Error(err))
		return nil, Metadata{}, apperr.Upstream(g.providerName, fmt.Errorf("generation failed: %w", err))
	}

	plan, err := ParsePlan(text, max(meta.NumberOfDays, 1))
	if err != nil {
		g.log.Warn("⚠️  rejected generator output", zap.Error(err))
		return nil, Metadata{}, err
	}

	g.enrichImages(ctx, plan, meta.Destination)
	return plan, meta, nil
}

// enrichImages fills missing image URLs from the photo provider. Lookups are
// best-effort; a failure leaves the field empty.
func (g *Generator) enrichImages(ctx context.Context, plan *Plan, destination string) {
	if g.photos == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(enrichWorkers)
	for i := range plan.Places {
		p := &plan.Places[i]
		if p.ImageURL != "" {
			continue
		}
		eg.Go(func() error {
			u, err := g.photos.FindPhoto(ectx, p.Name+", "+destination)
			if err != nil {
				g.log.Debug("photo lookup failed", zap.String("place", p.Name), zap.Error(err))
				return nil
			}
			p.ImageURL = u
			return nil
		})
	}
	_ = eg.Wait()
}
