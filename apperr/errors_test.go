package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		description string
		err         error
		expected    int
	}{
		{"validation", Validation("bad input", "destination"), http.StatusBadRequest},
		{"upstream", Upstream("gemini", errors.New("503")), http.StatusBadGateway},
		{"malformed", Malformed("no places"), http.StatusBadGateway},
		{"empty", EmptyItinerary(), http.StatusBadGateway},
		{"not found", NotFound("itinerary"), http.StatusNotFound},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden},
		{"unauthenticated", Unauthenticated("login first"), http.StatusUnauthorized},
		{"conflict", Conflict("seat taken"), http.StatusConflict},
		{"wrapped", fmt.Errorf("save: %w", NotFound("itinerary")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		assert.Equalf(t, test.expected, Status(test.err), test.description)
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("delete: %w", Forbidden("not yours"))

	assert.True(t, errors.Is(err, ErrAuthorization))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestError_MessageIncludesFields(t *testing.T) {
	err := Validation("missing required fields", "userId", "metadata")

	assert.Equal(t, "missing required fields (userId, metadata)", err.Error())
}

func TestUpstream_KeepsProviderDetail(t *testing.T) {
	err := Upstream("amadeus", errors.New("amadeus error (429): too many requests"))

	assert.Equal(t, "amadeus request failed", err.Message)
	assert.Contains(t, err.Details, "429")
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestUpstream_HidesTransportURL(t *testing.T) {
	cause := &url.Error{
		Op:  "Post",
		URL: "http://127.0.0.1:1/v1beta/models/m:generateContent?key=SUPERSECRETKEY",
		Err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused"),
	}
	err := Upstream("gemini", fmt.Errorf("generation failed: %w", cause))

	assert.Equal(t, "gemini unreachable", err.Details)
	assert.NotContains(t, err.Details, "SUPERSECRETKEY")
	assert.Equal(t, http.StatusBadGateway, Status(err))
}
