package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/filter"
	"github.com/s0up4200/bdshelf/googlebooks"
)

const shutdownTimeout = 10 * time.Second

// Books is the part of the metadata client the API uses.
type Books interface {
	SearchByText(ctx context.Context, query string) ([]googlebooks.SearchResult, error)
	SearchByIdentifier(ctx context.Context, identifier string) ([]googlebooks.SearchResult, error)
	SearchCoverImage(ctx context.Context, title, author string) (string, error)
}

// Server serves the catalog and search HTTP API.
type Server struct {
	books   Books
	store   catalog.Store
	filters *filter.Manager
	logger  zerolog.Logger

	corsOrigins []string
	rateLimit   int
	pending     func() int
}

// Option configures a Server
type Option func(*Server)

// WithFilters sets the manager resolving the filter query parameter
func WithFilters(m *filter.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.filters = m
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithRateLimit limits each client IP to n API requests per minute. Zero
// disables the limit.
func WithRateLimit(n int) Option {
	return func(s *Server) {
		s.rateLimit = n
	}
}

// WithPending exposes the governor queue depth on /healthz
func WithPending(fn func() int) Option {
	return func(s *Server) {
		s.pending = fn
	}
}

// New creates a new API server
func New(books Books, store catalog.Store, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		books:       books,
		store:       store,
		filters:     filter.NewManager(),
		logger:      logger,
		corsOrigins: []string{"*"},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
		}
		r.Use(recordMetrics)

		r.Get("/search", s.handleSearch)
		r.Get("/search/isbn/{id}", s.handleSearchISBN)
		r.Get("/cover", s.handleCover)

		r.Get("/series", s.handleSeries)

		r.Route("/comics", func(r chi.Router) {
			r.Get("/", s.handleListComics)
			r.Post("/", s.handleCreateComic)
			r.Post("/from-result", s.handleCreateFromResult)
			r.Get("/{id}", s.handleGetComic)
			r.Patch("/{id}", s.handleUpdateComic)
			r.Delete("/{id}", s.handleDeleteComic)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info().Str("addr", addr).Msg("API server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		s.logger.Info().Msg("API server stopped")
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
