package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoverSearcher struct {
	mu     sync.Mutex
	covers map[string][]string
	errs   map[string]error
	calls  []string
}

func (f *fakeCoverSearcher) SearchCovers(_ context.Context, series string, _ int, _ string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, series)
	if err := f.errs[series]; err != nil {
		return nil, err
	}
	covers := f.covers[series]
	if len(covers) > limit {
		covers = covers[:limit]
	}
	return covers, nil
}

func TestCoverRefresher_Refresh(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, c := range []Comic{
		{ID: "1", Title: "T1", Series: "Found", Volume: 1, Author: "A"},
		{ID: "2", Title: "T1", Series: "Nothing", Volume: 1, Author: "A"},
		{ID: "3", Title: "T1", Series: "Broken", Volume: 1, Author: "A"},
		{ID: "4", Title: "T1", Series: "HasCover", Volume: 1, Author: "A", CoverURL: "http://img/existing"},
		{ID: "5", Title: "T2", Series: "Found", Volume: 2, Author: "A", Missing: true},
	} {
		_, err := store.Add(ctx, c)
		require.NoError(t, err)
	}

	searcher := &fakeCoverSearcher{
		covers: map[string][]string{"Found": {"http://img/first", "http://img/second"}},
		errs:   map[string]error{"Broken": errors.New("provider down")},
	}

	result, err := NewCoverRefresher(store, searcher, zerolog.Nop(), 2).Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, []string{"1"}, result.Updated)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "3", result.Failed[0].ComicID)
	assert.ErrorContains(t, result.Failed[0], "provider down")

	assert.ElementsMatch(t, []string{"Found", "Nothing", "Broken"}, searcher.calls)

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "http://img/first", got.CoverURL)

	got, err = store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderCover, got.CoverURL)
}

func TestCoverRefresher_DefaultConcurrency(t *testing.T) {
	r := NewCoverRefresher(NewMemoryStore(), &fakeCoverSearcher{}, zerolog.Nop(), 0)
	assert.Equal(t, DefaultCoverConcurrency, r.concurrency)
}

func TestCoverRefresher_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	_, err := store.Add(ctx, Comic{ID: "1", Title: "T1", Series: "Found", Volume: 1, Author: "A"})
	require.NoError(t, err)

	searcher := &fakeCoverSearcher{covers: map[string][]string{"Found": {"http://img/run"}}}
	r := NewCoverRefresher(store, searcher, zerolog.Nop(), 1)

	results := make(chan RefreshResult, 4)
	r.OnResult(func(res RefreshResult) {
		select {
		case results <- res:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case res := <-results:
		assert.Equal(t, []string{"1"}, res.Updated)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh pass reported")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	got, err := store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "http://img/run", got.CoverURL)
}

// racingCoverSearcher sets a real cover on the comic while its lookup is in
// flight.
type racingCoverSearcher struct {
	store Store
	id    string
}

func (s *racingCoverSearcher) SearchCovers(ctx context.Context, _ string, _ int, _ string, _ int) ([]string, error) {
	_, err := s.store.Update(ctx, s.id, func(c *Comic) error {
		c.CoverURL = "http://img/user-choice"
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []string{"http://img/found"}, nil
}

func TestCoverRefresher_KeepsCoverSetDuringRefresh(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Add(ctx, Comic{ID: "1", Title: "T1", Series: "Spirou", Volume: 1, Author: "Franquin"})
	require.NoError(t, err)

	result, err := NewCoverRefresher(store, &racingCoverSearcher{store: store, id: "1"}, zerolog.Nop(), 1).Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Empty(t, result.Updated)
	assert.Empty(t, result.Failed)

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "http://img/user-choice", got.CoverURL)
}
