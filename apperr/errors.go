// Package apperr defines the error taxonomy shared by every request path.
package apperr

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUpstream
	KindMalformedResponse
	KindEmptyItinerary
	KindNotFound
	KindAuthorization
	KindUnauthenticated
	KindConflict
)

// Error carries a kind, a caller-facing message and optional detail text.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUpstream          = &Error{Kind: KindUpstream}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrEmptyItinerary    = &Error{Kind: KindEmptyItinerary}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrConflict          = &Error{Kind: KindConflict}
)

// Validation reports missing or malformed request fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Upstream wraps a provider failure. The provider's text goes into Details,
// except for transport failures whose text carries the request URL.
func Upstream(provider string, err error) *Error {
	details := err.Error()
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		details = provider + " unreachable"
	}
	return &Error{
		Kind:    KindUpstream,
		Message: provider + " request failed",
		Details: details,
		Err:     err,
	}
}

// Malformed reports provider output that failed parsing or shape validation.
func Malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "malformed provider response", Details: fmt.Sprintf(format, args...)}
}

// EmptyItinerary reports a generation call that returned no text.
func EmptyItinerary() *Error {
	return &Error{Kind: KindEmptyItinerary, Message: "empty itinerary received from generator"}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstream, KindMalformedResponse, KindEmptyItinerary:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
