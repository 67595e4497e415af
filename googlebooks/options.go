package googlebooks

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL    string
	apiKey     string
	language   string
	maxResults int
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at another volumes API root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithAPIKey sets the API key sent as the key query parameter.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) {
		o.apiKey = key
	}
}

// WithLanguage restricts results to one content language. An empty value
// lifts the restriction.
func WithLanguage(lang string) Option {
	return func(o *clientOptions) {
		o.language = lang
	}
}

// WithMaxResults bounds the number of results of a text search. The API
// accepts 1 to 40.
func WithMaxResults(n int) Option {
	return func(o *clientOptions) {
		if n > 0 && n <= 40 {
			o.maxResults = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client. It takes precedence over WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}
