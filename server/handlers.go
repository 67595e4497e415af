package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/filter"
	"github.com/s0up4200/bdshelf/googlebooks"
)

type searchResponse struct {
	Query   string                     `json:"query"`
	Results []googlebooks.SearchResult `json:"results"`
}

type isbnResponse struct {
	Code    string                     `json:"code"`
	Matched string                     `json:"matched"`
	Results []googlebooks.SearchResult `json:"results"`
}

type coverResponse struct {
	CoverURL string `json:"coverUrl"`
	Found    bool   `json:"found"`
}

type seriesView struct {
	Series         string          `json:"series"`
	Letter         string          `json:"letter"`
	Comics         []catalog.Comic `json:"comics"`
	MissingVolumes []int           `json:"missingVolumes,omitempty"`
}

// comicPatch holds the fields a PATCH may change. Nil fields are left alone.
type comicPatch struct {
	Title       *string `json:"title"`
	Series      *string `json:"series"`
	Volume      *int    `json:"volume"`
	Author      *string `json:"author"`
	Year        *int    `json:"year"`
	CoverURL    *string `json:"coverUrl"`
	Description *string `json:"description"`
	Missing     *bool   `json:"missing"`
	IsRead      *bool   `json:"isRead"`
}

func (p comicPatch) apply(c *catalog.Comic) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Series != nil {
		c.Series = *p.Series
	}
	if p.Volume != nil {
		c.Volume = *p.Volume
	}
	if p.Author != nil {
		c.Author = *p.Author
	}
	if p.Year != nil {
		c.Year = *p.Year
	}
	if p.CoverURL != nil {
		c.CoverURL = *p.CoverURL
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Missing != nil {
		c.Missing = *p.Missing
	}
	if p.IsRead != nil {
		c.IsRead = *p.IsRead
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.pending != nil {
		body["pending"] = s.pending()
	}
	respondJSON(w, s.logger, http.StatusOK, body)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, s.logger, http.StatusBadRequest, CodeBadRequest, "query parameter q is required")
		return
	}

	results, err := s.books.SearchByText(r.Context(), q)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, searchResponse{Query: q, Results: results})
}

func (s *Server) handleSearchISBN(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "id")

	results, matched, err := catalog.LookupCode(r.Context(), s.books, code)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, isbnResponse{Code: code, Matched: matched, Results: results})
}

func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		respondError(w, s.logger, http.StatusBadRequest, CodeBadRequest, "query parameter title is required")
		return
	}

	link, err := s.books.SearchCoverImage(r.Context(), title, r.URL.Query().Get("author"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, coverResponse{CoverURL: link, Found: link != ""})
}

// selectComics applies the filter and q query parameters.
func (s *Server) selectComics(r *http.Request) ([]catalog.Comic, error) {
	comics, err := s.store.List(r.Context())
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	if expr := strings.TrimSpace(query.Get("filter")); expr != "" {
		comics, err = s.filters.Select(expr, comics)
		if err != nil {
			return nil, err
		}
	}

	if q := query.Get("q"); q != "" {
		comics = filter.Apply(textFilter(q), comics)
	}

	return comics, nil
}

type textFilter string

func (q textFilter) Matches(c catalog.Comic) bool {
	return catalog.MatchText(c, string(q))
}

func (s *Server) handleListComics(w http.ResponseWriter, r *http.Request) {
	comics, err := s.selectComics(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	if missing, _ := strconv.ParseBool(r.URL.Query().Get("missing")); missing {
		kept := make([]catalog.Comic, 0, len(comics))
		for _, c := range comics {
			if c.Missing {
				kept = append(kept, c)
			}
		}
		comics = kept
	}

	respondJSON(w, s.logger, http.StatusOK, comics)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	comics, err := s.selectComics(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	missing, _ := strconv.ParseBool(r.URL.Query().Get("missing"))
	sections := catalog.GroupBySeries(comics, missing)
	if letter := r.URL.Query().Get("letter"); letter != "" {
		sections = catalog.SectionsForLetter(sections, letter)
	}

	views := make([]seriesView, 0, len(sections))
	for _, section := range sections {
		views = append(views, seriesView{
			Series:         section.Series,
			Letter:         section.Letter,
			Comics:         section.Comics,
			MissingVolumes: section.MissingVolumes(),
		})
	}
	respondJSON(w, s.logger, http.StatusOK, views)
}

func (s *Server) handleGetComic(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, c)
}

func (s *Server) handleCreateComic(w http.ResponseWriter, r *http.Request) {
	var c catalog.Comic
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, s.logger, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.create(w, r, c)
}

func (s *Server) handleCreateFromResult(w http.ResponseWriter, r *http.Request) {
	var result googlebooks.SearchResult
	if err := decodeJSON(w, r, &result); err != nil {
		respondError(w, s.logger, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.create(w, r, catalog.FromSearchResult(result))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, c catalog.Comic) {
	added, err := s.store.Add(r.Context(), c)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.logger.Info().Str("id", added.ID).Str("title", added.Title).Msg("Added comic")
	respondJSON(w, s.logger, http.StatusCreated, added)
}

func (s *Server) handleUpdateComic(w http.ResponseWriter, r *http.Request) {
	var patch comicPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, s.logger, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), func(c *catalog.Comic) error {
		patch.apply(c)
		return nil
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, updated)
}

func (s *Server) handleDeleteComic(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}

	s.logger.Info().Str("id", id).Msg("Deleted comic")
	w.WriteHeader(http.StatusNoContent)
}
