package xenocanto

import (
	"errors"
	"fmt"
)

// AuthError means the API key was missing or rejected. No retry or
// other page can succeed, so searches abort on it.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: check your API key"
	}
	return "authentication failed: " + e.Message
}

// QueryError means the server rejected the query syntax. The request
// URL is included because the failing tag is usually obvious from it.
type QueryError struct {
	Message string
	URL     string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("server rejected query: %s (%s)", e.Message, e.URL)
}

// RateLimitError means the server throttled the request. It fails the
// page it hit, not the whole search.
type RateLimitError struct {
	URL string
}

func (e *RateLimitError) Error() string {
	return "rate limited by server: " + e.URL
}

// StatusError is any other non-success HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.URL)
}

// isFatal reports whether an error invalidates the whole search rather
// than one page. Auth and query-syntax failures would fail every page
// the same way; everything else is worth continuing past.
func isFatal(err error) bool {
	var authErr *AuthError
	var queryErr *QueryError
	return errors.As(err, &authErr) || errors.As(err, &queryErr)
}
