package catalog

import (
	"fmt"
	"strings"

	"github.com/s0up4200/bdshelf/googlebooks"
)

const (
	// PlaceholderCover marks a comic whose cover still has to be found
	PlaceholderCover = "/placeholder.svg"
	// UnknownAuthor is used when a provider record lists no author
	UnknownAuthor = "Auteur inconnu"
	// MaxVolume is the highest volume number a comic may carry
	MaxVolume = 9999
)

// Comic is one catalog entry. Zero Volume and Year mean unknown.
type Comic struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Series      string `yaml:"series,omitempty" json:"series,omitempty"`
	Volume      int    `yaml:"volume,omitempty" json:"volume,omitempty"`
	Author      string `yaml:"author" json:"author"`
	Year        int    `yaml:"year,omitempty" json:"year,omitempty"`
	CoverURL    string `yaml:"cover_url" json:"coverUrl"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Missing     bool   `yaml:"missing,omitempty" json:"missing,omitempty"`
	IsRead      bool   `yaml:"is_read,omitempty" json:"isRead,omitempty"`
}

// SeriesName returns the name the comic is grouped under: its series, or its
// title for one-shots.
func (c Comic) SeriesName() string {
	if s := strings.TrimSpace(c.Series); s != "" {
		return s
	}
	return strings.TrimSpace(c.Title)
}

// HasCover reports whether a real cover is set.
func (c Comic) HasCover() bool {
	return c.CoverURL != "" && c.CoverURL != PlaceholderCover
}

// Validate checks the fields a comic cannot do without.
func (c Comic) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if strings.TrimSpace(c.Author) == "" {
		return &ValidationError{Field: "author", Reason: "is required"}
	}
	if c.Volume < 0 {
		return &ValidationError{Field: "volume", Reason: fmt.Sprintf("must be positive, got %d", c.Volume)}
	}
	if c.Volume > MaxVolume {
		return &ValidationError{Field: "volume", Reason: fmt.Sprintf("must be at most %d, got %d", MaxVolume, c.Volume)}
	}
	if c.Year < 0 {
		return &ValidationError{Field: "year", Reason: fmt.Sprintf("must be positive, got %d", c.Year)}
	}
	return nil
}

// FromSearchResult builds a catalog entry from a provider record.
func FromSearchResult(r googlebooks.SearchResult) Comic {
	c := Comic{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.FirstAuthor(),
		Year:        r.Year(),
		CoverURL:    r.ImageLinks.Thumbnail,
		Description: r.Description,
	}
	if c.Author == "" {
		c.Author = UnknownAuthor
	}
	if c.CoverURL == "" {
		c.CoverURL = PlaceholderCover
	}
	return c
}

// MatchText reports whether query appears, case-insensitively, in the
// title, author or series. An empty query matches everything.
func MatchText(c Comic, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.Author), q) ||
		strings.Contains(strings.ToLower(c.Series), q)
}
