package googlebooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/s0up4200/bdshelf/governor"
	"github.com/s0up4200/bdshelf/isbn"
)

const (
	// DefaultBaseURL is the public volumes API root
	DefaultBaseURL    = "https://www.googleapis.com/books/v1"
	DefaultLanguage   = "fr"
	DefaultMaxResults = 20

	searchFields = "items(id,volumeInfo)"
	coverFields  = "items(volumeInfo/imageLinks)"

	// maxErrorBody caps how much of an error body ends up in a ProviderError
	maxErrorBody = 512
)

// Client queries the Google Books volumes API. Every HTTP call goes through
// the shared request governor.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	maxResults int
	httpClient *http.Client
	governor   *governor.Governor
	logger     zerolog.Logger
}

// NewClient creates a new Google Books client
func NewClient(gov *governor.Governor, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if gov == nil {
		return nil, ErrNoGovernor
	}

	o := clientOptions{
		baseURL:    DefaultBaseURL,
		language:   DefaultLanguage,
		maxResults: DefaultMaxResults,
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(o.baseURL, "/"),
		apiKey:     o.apiKey,
		language:   o.language,
		maxResults: o.maxResults,
		httpClient: httpClient,
		governor:   gov,
		logger:     logger,
	}, nil
}

// SearchByText runs a free text search. Colons are removed from the query
// because the provider reads them as field qualifiers. Only results with a
// title and at least one author are returned; no match is an empty slice.
func (c *Client) SearchByText(ctx context.Context, query string) ([]SearchResult, error) {
	return c.search(ctx, cleanQuery(query))
}

// SearchByIdentifier searches for an ISBN or EAN. The identifier is reduced to
// its digits and trailing check character. An EAN that matches nothing is not
// retried as an ISBN-10 here; see isbn.ConvertEANToISBN.
func (c *Client) SearchByIdentifier(ctx context.Context, identifier string) ([]SearchResult, error) {
	return c.search(ctx, "isbn:"+isbn.Sanitize(identifier))
}

// SearchCoverImage looks up a single volume by title and author and returns
// its best cover link. It returns an empty string when the volume has no
// image links.
func (c *Client) SearchCoverImage(ctx context.Context, title, author string) (string, error) {
	q := fmt.Sprintf(`intitle:"%s"`, cleanPhrase(title))
	if a := cleanPhrase(author); a != "" {
		q += " " + a
	}

	resp, err := c.doRequest(ctx, c.params(q, 1, coverFields))
	if err != nil {
		return "", fmt.Errorf("failed to search cover: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].VolumeInfo.ImageLinks == nil {
		return "", nil
	}

	link, _ := resp.Items[0].VolumeInfo.ImageLinks.Best()
	return link, nil
}

// SearchCovers runs a text search for a series volume and returns up to limit
// thumbnail links.
func (c *Client) SearchCovers(ctx context.Context, series string, volume int, author string, limit int) ([]string, error) {
	parts := []string{series}
	if volume > 0 {
		parts = append(parts, fmt.Sprintf("tome %d", volume))
	}
	parts = append(parts, author)

	results, err := c.SearchByText(ctx, strings.Join(parts, " "))
	if err != nil {
		return nil, err
	}

	covers := make([]string, 0, limit)
	for _, r := range results {
		if len(covers) >= limit {
			break
		}
		if r.ImageLinks.Thumbnail != "" {
			covers = append(covers, r.ImageLinks.Thumbnail)
		}
	}
	return covers, nil
}

func (c *Client) search(ctx context.Context, q string) ([]SearchResult, error) {
	resp, err := c.doRequest(ctx, c.params(q, c.maxResults, searchFields))
	if err != nil {
		return nil, fmt.Errorf("failed to search volumes: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		r := toSearchResult(item)
		if !r.hasMinimumInfo() {
			continue
		}
		results = append(results, r)
	}

	c.logger.Debug().
		Str("query", q).
		Int("received", len(resp.Items)).
		Int("kept", len(results)).
		Msg("Google Books search completed")

	return results, nil
}

func (c *Client) params(q string, maxResults int, fields string) url.Values {
	params := url.Values{}
	params.Set("q", q)
	if c.language != "" {
		params.Set("langRestrict", c.language)
	}
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	params.Set("fields", fields)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return params
}

// doRequest submits one GET /volumes call to the governor and waits for it.
func (c *Client) doRequest(ctx context.Context, params url.Values) (*volumesResponse, error) {
	requestURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	return governor.Do(c.governor, ctx, func(ctx context.Context) (*volumesResponse, error) {
		return c.get(ctx, requestURL)
	})
}

func (c *Client) get(ctx context.Context, requestURL string) (*volumesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &governor.ThrottledError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var out volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unreadable.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// cleanQuery removes colons and collapses whitespace.
func cleanQuery(q string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(q, ":", " ")), " ")
}

// cleanPhrase is cleanQuery for a value embedded inside a quoted qualifier.
func cleanPhrase(s string) string {
	return cleanQuery(strings.ReplaceAll(s, `"`, " "))
}
