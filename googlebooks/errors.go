package googlebooks

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrNoGovernor indicates the client was built without a request governor
	ErrNoGovernor = errors.New("google books client requires a request governor")
)

// ProviderError is a non-2xx, non-429 answer from the Google Books API. It is
// never retried.
type ProviderError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("google books API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("google books API error: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound checks if the error indicates a not found response
func (e *ProviderError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the provider rejected the API key
func (e *ProviderError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsServerError checks if the provider failed on its side
func (e *ProviderError) IsServerError() bool {
	return e.StatusCode >= 500
}
