package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/bdshelf/catalog"
)

// DefaultCacheSize is the number of compiled expressions CompileFilter keeps
const DefaultCacheSize = 64

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

var defaultCompiler = NewExprCompiler(WithCache(DefaultCacheSize))

// CompileFilter compiles expression with the shared, cached compiler.
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Compile compiles an expression into an executable filter. Unknown
// identifiers and non boolean results are rejected here rather than at
// evaluation time.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(createRuntimeEnvironment(catalog.Comic{}, c.helperFuncs)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Matches evaluates the filter; a comic that fails evaluation does not match
func (f *exprFilter) Matches(c catalog.Comic) bool {
	ok, err := f.Evaluate(c)
	return err == nil && ok
}

// Evaluate runs the program against the comic
func (f *exprFilter) Evaluate(c catalog.Comic) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(c, f.helpers))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ComicTitle: c.Title,
			Err:        err,
		}
	}
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions returns the helpers that do not depend on the comic.
// expr already provides lower, upper and the contains/startsWith/endsWith
// operators, which are case sensitive.
func createHelperFunctions() map[string]any {
	return map[string]any{
		// like is a case and accent insensitive substring test
		"like": func(str, substr string) bool {
			return strings.Contains(catalog.Fold(str), catalog.Fold(substr))
		},
		"same": func(a, b string) bool {
			return catalog.Fold(a) == catalog.Fold(b)
		},
	}
}

// createRuntimeEnvironment builds the variables an expression sees for one comic
func createRuntimeEnvironment(c catalog.Comic, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	env["Comic"] = c
	env["ID"] = c.ID
	env["Title"] = c.Title
	env["Series"] = c.SeriesName()
	env["Volume"] = c.Volume
	env["Author"] = c.Author
	env["Year"] = c.Year
	env["Description"] = c.Description
	env["CoverURL"] = c.CoverURL
	env["Missing"] = c.Missing
	env["IsRead"] = c.IsRead

	env["hasCover"] = c.HasCover
	env["letter"] = func() string {
		return catalog.SectionLetter(c.SeriesName())
	}
	env["search"] = func(query string) bool {
		return catalog.MatchText(c, query)
	}

	return env
}
