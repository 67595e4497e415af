package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/bdshelf/googlebooks"
)

type fakeIdentifierSearcher struct {
	results map[string][]googlebooks.SearchResult
	err     error
	queries []string
}

func (f *fakeIdentifierSearcher) SearchByIdentifier(_ context.Context, id string) ([]googlebooks.SearchResult, error) {
	f.queries = append(f.queries, id)
	return f.results[id], f.err
}

func TestLookupCode_DirectHit(t *testing.T) {
	s := &fakeIdentifierSearcher{results: map[string][]googlebooks.SearchResult{
		"9782505066099": {{ID: "a", Title: "Hit"}},
	}}

	results, matched, err := LookupCode(context.Background(), s, "978-2-505-06609-9")
	require.NoError(t, err)
	assert.Equal(t, "9782505066099", matched)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"9782505066099"}, s.queries)
}

func TestLookupCode_FallsBackToISBN10(t *testing.T) {
	s := &fakeIdentifierSearcher{results: map[string][]googlebooks.SearchResult{
		"2505066094": {{ID: "b", Title: "Fallback"}},
	}}

	results, matched, err := LookupCode(context.Background(), s, "9782505066099")
	require.NoError(t, err)
	assert.Equal(t, "2505066094", matched)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, []string{"9782505066099", "2505066094"}, s.queries)
}

func TestLookupCode_NoFallbackForShortCodes(t *testing.T) {
	s := &fakeIdentifierSearcher{}

	results, matched, err := LookupCode(context.Background(), s, "2505066094")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "2505066094", matched)
	assert.Len(t, s.queries, 1)
}

func TestLookupCode_ErrorStopsFallback(t *testing.T) {
	s := &fakeIdentifierSearcher{err: errors.New("boom")}

	_, _, err := LookupCode(context.Background(), s, "9782505066099")
	assert.ErrorContains(t, err, "boom")
	assert.Len(t, s.queries, 1)
}
