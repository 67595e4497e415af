package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store persists the comic collection.
type Store interface {
	List(ctx context.Context) ([]Comic, error)
	Get(ctx context.Context, id string) (Comic, error)
	Add(ctx context.Context, c Comic) (Comic, error)
	Update(ctx context.Context, id string, mutate func(*Comic) error) (Comic, error)
	Delete(ctx context.Context, id string) error
}

// catalogFile is the on-disk layout.
type catalogFile struct {
	Comics []Comic `yaml:"comics"`
}

// FileStore keeps the collection in memory and mirrors every change to a
// YAML file. An empty path keeps it in memory only.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu     sync.RWMutex
	comics map[string]Comic
	now    func() time.Time
}

// NewMemoryStore creates a store that is never written to disk.
func NewMemoryStore() *FileStore {
	return &FileStore{
		logger: zerolog.Nop(),
		comics: make(map[string]Comic),
		now:    time.Now,
	}
}

// OpenFileStore loads the catalog at path. A missing file is an empty
// catalog; it is created on the first write.
func OpenFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		comics: make(map[string]Comic),
		now:    time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("path", path).Msg("Catalog file not found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for _, c := range file.Comics {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog %s: comic %q has no id", path, c.Title)
		}
		s.comics[c.ID] = c
	}

	logger.Debug().Str("path", path).Int("comics", len(s.comics)).Msg("Loaded catalog")
	return s, nil
}

// List returns every comic sorted by series, volume and title.
func (s *FileStore) List(_ context.Context) ([]Comic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(), nil
}

// Get returns the comic with the given ID.
func (s *FileStore) Get(_ context.Context, id string) (Comic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comics[id]
	if !ok {
		return Comic{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// Add validates and stores a comic. A comic without ID gets a time based one;
// an empty cover becomes the placeholder.
func (s *FileStore) Add(_ context.Context, c Comic) (Comic, error) {
	if err := c.Validate(); err != nil {
		return Comic{}, err
	}
	if c.CoverURL == "" {
		c.CoverURL = PlaceholderCover
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.newIDLocked()
	} else if _, exists := s.comics[c.ID]; exists {
		return Comic{}, fmt.Errorf("%w: %s", ErrDuplicate, c.ID)
	}

	s.comics[c.ID] = c
	if err := s.persistLocked(); err != nil {
		delete(s.comics, c.ID)
		return Comic{}, err
	}
	return c, nil
}

// Update applies mutate to a copy of the comic and stores the result if it
// is still valid. The ID cannot change.
func (s *FileStore) Update(_ context.Context, id string, mutate func(*Comic) error) (Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.comics[id]
	if !ok {
		return Comic{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := prev
	if err := mutate(&next); err != nil {
		return Comic{}, err
	}
	next.ID = id
	if err := next.Validate(); err != nil {
		return Comic{}, err
	}

	s.comics[id] = next
	if err := s.persistLocked(); err != nil {
		s.comics[id] = prev
		return Comic{}, err
	}
	return next, nil
}

// Delete removes a comic.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.comics[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.comics, id)
	if err := s.persistLocked(); err != nil {
		s.comics[id] = prev
		return err
	}
	return nil
}

func (s *FileStore) newIDLocked() string {
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, taken := s.comics[id]; !taken {
			return id
		}
		ms++
	}
}

func (s *FileStore) sortedLocked() []Comic {
	out := make([]Comic, 0, len(s.comics))
	for _, c := range s.comics {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// persistLocked replaces the catalog file atomically through a temp file and
// rename.
func (s *FileStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(catalogFile{Comics: s.sortedLocked()})
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("comics", len(s.comics)).Msg("Saved catalog")
	return nil
}
