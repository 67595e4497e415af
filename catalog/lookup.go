package catalog

import (
	"context"

	"github.com/s0up4200/bdshelf/googlebooks"
	"github.com/s0up4200/bdshelf/isbn"
)

// IdentifierSearcher searches the provider by ISBN or EAN.
type IdentifierSearcher interface {
	SearchByIdentifier(ctx context.Context, identifier string) ([]googlebooks.SearchResult, error)
}

// LookupCode searches for a scanned or typed code. When a 13 digit EAN finds
// nothing, it retries once with the converted ISBN-10, under which many older
// albums are indexed. The returned string is the identifier that matched, or
// the last one tried.
func LookupCode(ctx context.Context, s IdentifierSearcher, code string) ([]googlebooks.SearchResult, string, error) {
	id := isbn.Sanitize(code)

	results, err := s.SearchByIdentifier(ctx, id)
	if err != nil || len(results) > 0 {
		return results, id, err
	}

	isbn10, ok := isbn.ConvertEANToISBN(id)
	if !ok {
		return results, id, nil
	}

	results, err = s.SearchByIdentifier(ctx, isbn10)
	return results, isbn10, err
}
