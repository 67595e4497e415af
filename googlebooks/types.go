package googlebooks

import (
	"strconv"
	"strings"
)

// volumesResponse is the body of GET /volumes.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	Publisher           string       `json:"publisher"`
	PublishedDate       string       `json:"publishedDate"`
	Description         string       `json:"description"`
	IndustryIdentifiers []industryID `json:"industryIdentifiers"`
	ImageLinks          *ImageLinks  `json:"imageLinks"`
	Language            string       `json:"language"`
}

type industryID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks lists the cover renditions the provider knows for a volume.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Small          string `json:"small,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Large          string `json:"large,omitempty"`
	ExtraLarge     string `json:"extraLarge,omitempty"`
}

// Best returns the highest resolution link among extra-large, large, medium
// and thumbnail, in that order.
func (l ImageLinks) Best() (string, bool) {
	for _, link := range []string{l.ExtraLarge, l.Large, l.Medium, l.Thumbnail} {
		if link != "" {
			return link, true
		}
	}
	return "", false
}

// SearchResult is one candidate volume returned by a search.
type SearchResult struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	Description   string     `json:"description,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
	ImageLinks    ImageLinks `json:"imageLinks"`
}

// Year parses the year out of PublishedDate ("2019", "2019-03" or
// "2019-03-14"). It returns 0 when the date is missing or malformed.
func (r SearchResult) Year() int {
	if len(r.PublishedDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(r.PublishedDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// FirstAuthor returns the first listed author, or an empty string.
func (r SearchResult) FirstAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}

// hasMinimumInfo reports whether the record is worth surfacing: a title and
// at least one non-blank author.
func (r SearchResult) hasMinimumInfo() bool {
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	for _, a := range r.Authors {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

func toSearchResult(v volume) SearchResult {
	vi := v.VolumeInfo
	r := SearchResult{
		ID:            v.ID,
		Title:         vi.Title,
		Authors:       append([]string(nil), vi.Authors...),
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			r.ISBN = id.Identifier
		} else if id.Type == "ISBN_10" && r.ISBN == "" {
			r.ISBN = id.Identifier
		}
	}
	if vi.ImageLinks != nil {
		r.ImageLinks = *vi.ImageLinks
	}
	return r
}
