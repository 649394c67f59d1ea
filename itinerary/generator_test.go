package itinerary

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"globetrail/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.text, f.err
}

type fakePhotos struct {
	mu      sync.Mutex
	queries []string
	fail    bool
}

func (f *fakePhotos) FindPhoto(_ context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.fail {
		return "", errors.New("no photo")
	}
	return "https://img.example/" + strings.ReplaceAll(query, " ", "_"), nil
}

func parisRequest() Request {
	return Request{
		Destination: "Paris",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-03",
		Budget:      "moderate",
		Travelers:   "2",
	}
}

const parisPlan = `{"places":[
 {"day":"Day 1","name":"Eiffel Tower","imageUrl":"https://img.example/eiffel.jpg","entryFee":"$30","visitOrder":1},
 {"day":"Day 1","name":"Louvre","entryFee":"$22","visitOrder":2},
 {"day":"Day 2","name":"Montmartre","entryFee":"Free","visitOrder":1}
]}`

func TestNumberOfDays(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse(dateLayout, s)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, 2, NumberOfDays(day("2025-06-01"), day("2025-06-03")))
	assert.Equal(t, 0, NumberOfDays(day("2025-06-01"), day("2025-06-01")))
	assert.Equal(t, 30, NumberOfDays(day("2025-06-01"), day("2025-07-01")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		fields []string
	}{
		{"missing destination", func(r *Request) { r.Destination = " " }, []string{"destination"}},
		{"missing budget", func(r *Request) { r.Budget = "" }, []string{"budget"}},
		{"bad start date", func(r *Request) { r.StartDate = "06/01/2025" }, []string{"startDate"}},
		{"zero travelers", func(r *Request) { r.Travelers = "0" }, []string{"travelers"}},
		{"text travelers", func(r *Request) { r.Travelers = "two" }, []string{"travelers"}},
		{"start after end", func(r *Request) { r.StartDate = "2025-06-05" }, []string{"startDate", "endDate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parisRequest()
			tt.mutate(&req)

			_, err := Validate(req)
			require.Error(t, err)

			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.fields, appErr.Fields)
		})
	}
}

func TestValidate_Metadata(t *testing.T) {
	meta, err := Validate(parisRequest())
	require.NoError(t, err)
	assert.Equal(t, Metadata{
		Destination:  "Paris",
		StartDate:    "2025-06-01",
		EndDate:      "2025-06-03",
		NumberOfDays: 2,
		Budget:       "moderate",
		Travelers:    "2",
	}, meta)
}

func TestGenerator_Generate(t *testing.T) {
	provider := &fakeProvider{text: "```json\n" + parisPlan + "\n```"}
	photos := &fakePhotos{}
	g := NewGenerator(provider, "gemini", photos, zap.NewNop())

	plan, meta, err := g.Generate(context.Background(), parisRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, provider.prompt, "2-day trip to Paris")
	assert.Contains(t, provider.prompt, "2 traveler(s)")
	assert.Equal(t, 2, meta.NumberOfDays)

	require.Len(t, plan.Places, 3)
	assert.Equal(t, "https://img.example/eiffel.jpg", plan.Places[0].ImageURL)
	assert.Equal(t, "https://img.example/Louvre,_Paris", plan.Places[1].ImageURL)
	assert.ElementsMatch(t, []string{"Louvre, Paris", "Montmartre, Paris"}, photos.queries)
}

func TestGenerator_PhotoFailureIsIgnored(t *testing.T) {
	g := NewGenerator(&fakeProvider{text: parisPlan}, "gemini", &fakePhotos{fail: true}, zap.NewNop())

	plan, _, err := g.Generate(context.Background(), parisRequest())
	require.NoError(t, err)
	assert.Empty(t, plan.Places[1].ImageURL)
}

func TestGenerator_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	g := NewGenerator(provider, "gemini", nil, zap.NewNop())

	_, _, err := g.Generate(context.Background(), parisRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, apperr.Status(err))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "quota exceeded")
}

func TestGenerator_InvalidRequestSkipsProvider(t *testing.T) {
	provider := &fakeProvider{text: parisPlan}
	g := NewGenerator(provider, "gemini", nil, zap.NewNop())

	req := parisRequest()
	req.Destination = ""
	_, _, err := g.Generate(context.Background(), req)

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Zero(t, provider.calls)
}

func TestGenerator_EmptyOutput(t *testing.T) {
	g := NewGenerator(&fakeProvider{text: ""}, "huggingface", nil, zap.NewNop())

	_, _, err := g.Generate(context.Background(), parisRequest())
	assert.True(t, errors.Is(err, apperr.ErrEmptyItinerary))
}
