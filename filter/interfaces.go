package filter

import (
	"github.com/s0up4200/bdshelf/catalog"
)

// Filter decides whether a comic is kept
type Filter interface {
	// Matches reports whether the comic satisfies the filter
	Matches(c catalog.Comic) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Evaluate is Matches with the runtime error exposed
	Evaluate(c catalog.Comic) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Apply returns the comics matched by f, in order.
func Apply(f Filter, comics []catalog.Comic) []catalog.Comic {
	out := make([]catalog.Comic, 0, len(comics))
	for _, c := range comics {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
