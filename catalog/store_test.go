package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMemoryStore_AddAssignsIDAndPlaceholder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.now = fixedClock(time.UnixMilli(1700000000000))

	first, err := s.Add(ctx, Comic{Title: "Blacksad", Author: "Juan Díaz Canales"})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", first.ID)
	assert.Equal(t, PlaceholderCover, first.CoverURL)

	second, err := s.Add(ctx, Comic{Title: "Blacksad 2", Author: "Juan Díaz Canales"})
	require.NoError(t, err)
	assert.Equal(t, "1700000000001", second.ID, "same millisecond must not reuse an ID")
}

func TestMemoryStore_AddRejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Add(ctx, Comic{Title: "", Author: "Hergé"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = s.Add(ctx, Comic{Title: "Tintin", Author: " "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "author", verr.Field)

	_, err = s.Add(ctx, Comic{ID: "a", Title: "Tintin", Author: "Hergé"})
	require.NoError(t, err)
	_, err = s.Add(ctx, Comic{ID: "a", Title: "Tintin", Author: "Hergé"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c, err := s.Add(ctx, Comic{ID: "1", Title: "Astérix le Gaulois", Series: "Astérix", Volume: 1, Author: "Goscinny"})
	require.NoError(t, err)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	updated, err := s.Update(ctx, c.ID, func(c *Comic) error {
		c.IsRead = true
		c.ID = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.IsRead)
	assert.Equal(t, "1", updated.ID, "ID is immutable")

	require.NoError(t, s.Delete(ctx, c.ID))
	_, err = s.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, c.ID), ErrNotFound)
}

func TestMemoryStore_UpdateKeepsPreviousOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Add(ctx, Comic{ID: "1", Title: "Gaston", Author: "Franquin"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Update(ctx, "1", func(c *Comic) error {
		c.Title = "Other"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Update(ctx, "1", func(c *Comic) error {
		c.Author = ""
		return nil
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Gaston", got.Title)
	assert.Equal(t, "Franquin", got.Author)

	_, err = s.Update(ctx, "missing", func(*Comic) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListIsSorted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, c := range []Comic{
		{ID: "3", Title: "Tome 2", Series: "Lanfeust", Volume: 2, Author: "Arleston"},
		{ID: "1", Title: "Tome 1", Series: "Élfes", Volume: 1, Author: "Jarry"},
		{ID: "2", Title: "Tome 1", Series: "Lanfeust", Volume: 1, Author: "Arleston"},
	} {
		_, err := s.Add(ctx, c)
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")

	s, err := OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Add(ctx, Comic{ID: "42", Title: "Le Photographe", Author: "Guibert", Year: 2003, IsRead: true})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "is_read: true")
	assert.Contains(t, string(data), "cover_url: /placeholder.svg")

	reopened, err := OpenFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Le Photographe", got.Title)
	assert.Equal(t, 2003, got.Year)
	assert.True(t, got.IsRead)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}

func TestOpenFileStore_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("comics: [::"), 0o644))
	_, err := OpenFileStore(bad, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to parse catalog")

	noID := filepath.Join(dir, "noid.yaml")
	require.NoError(t, os.WriteFile(noID, []byte("comics:\n  - title: Spirou\n    author: Franquin\n"), 0o644))
	_, err = OpenFileStore(noID, zerolog.Nop())
	assert.ErrorContains(t, err, "has no id")
}
