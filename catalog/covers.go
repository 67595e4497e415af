package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultCoverConcurrency bounds how many cover lookups are queued at once.
// The governor still sends them one by one.
const DefaultCoverConcurrency = 4

// errCoverSet aborts an update when a real cover was set after the pass
// started.
var errCoverSet = errors.New("cover already set")

// CoverSearcher finds cover links for a series volume.
type CoverSearcher interface {
	SearchCovers(ctx context.Context, series string, volume int, author string, limit int) ([]string, error)
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Checked int
	Updated []string
	Failed  []CoverError
}

// CoverError records a comic whose lookup failed.
type CoverError struct {
	ComicID string
	Title   string
	Err     error
}

// Error implements the error interface
func (e CoverError) Error() string {
	return fmt.Sprintf("failed to find cover for %s (ID: %s): %v", e.Title, e.ComicID, e.Err)
}

// CoverRefresher looks up covers for comics still showing the placeholder.
type CoverRefresher struct {
	store       Store
	searcher    CoverSearcher
	logger      zerolog.Logger
	concurrency int
	onResult    func(RefreshResult)
}

// NewCoverRefresher creates a refresher. A concurrency below 1 uses
// DefaultCoverConcurrency.
func NewCoverRefresher(store Store, searcher CoverSearcher, logger zerolog.Logger, concurrency int) *CoverRefresher {
	if concurrency < 1 {
		concurrency = DefaultCoverConcurrency
	}
	return &CoverRefresher{
		store:       store,
		searcher:    searcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// OnResult registers fn to receive the result of every pass made by Run.
func (r *CoverRefresher) OnResult(fn func(RefreshResult)) {
	r.onResult = fn
}

// Refresh runs one pass. Individual lookup failures are collected, not
// returned; the error is only set when the catalog cannot be listed.
func (r *CoverRefresher) Refresh(ctx context.Context) (RefreshResult, error) {
	comics, err := r.store.List(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to list comics: %w", err)
	}

	var result RefreshResult
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, comic := range comics {
		if comic.HasCover() || comic.Missing {
			continue
		}
		result.Checked++

		g.Go(func() error {
			updated, err := r.refreshOne(ctx, comic)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, CoverError{ComicID: comic.ID, Title: comic.Title, Err: err})
				r.logger.Warn().Err(err).Str("comic", comic.Title).Msg("Failed to refresh cover")
				return nil
			}
			if updated {
				result.Updated = append(result.Updated, comic.ID)
			}
			return nil
		})
	}

	_ = g.Wait()

	r.logger.Info().
		Int("checked", result.Checked).
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Failed)).
		Msg("Cover refresh completed")

	return result, nil
}

func (r *CoverRefresher) refreshOne(ctx context.Context, comic Comic) (bool, error) {
	covers, err := r.searcher.SearchCovers(ctx, comic.SeriesName(), comic.Volume, comic.Author, 3)
	if err != nil {
		return false, err
	}
	if len(covers) == 0 {
		return false, nil
	}

	_, err = r.store.Update(ctx, comic.ID, func(c *Comic) error {
		if c.HasCover() {
			return errCoverSet
		}
		c.CoverURL = covers[0]
		return nil
	})
	if errors.Is(err, errCoverSet) {
		r.logger.Debug().Str("comic", comic.Title).Msg("Cover set during refresh, keeping it")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save cover: %w", err)
	}

	r.logger.Info().Str("comic", comic.Title).Str("cover", covers[0]).Msg("Updated cover")
	return true, nil
}

// Run refreshes covers every interval until ctx is done.
func (r *CoverRefresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := r.Refresh(ctx)
			if err != nil {
				r.logger.Error().Err(err).Msg("Cover refresh failed")
				continue
			}
			if r.onResult != nil {
				r.onResult(result)
			}
		}
	}
}
