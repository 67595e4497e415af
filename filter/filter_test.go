package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/bdshelf/catalog"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `Volume > 2`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `like(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Rating > 3`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Year + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `like(Author, "herge") and Year >= 1930 and not IsRead and hasCover()`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsCompilationError(err))
				if tt.errContains != "" {
					assert.ErrorContains(t, err, tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	comic := catalog.Comic{
		ID:       "1",
		Title:    "Le Lotus bleu",
		Series:   "Tintin",
		Volume:   5,
		Author:   "Hergé",
		Year:     1936,
		CoverURL: "http://img/lotus",
		IsRead:   true,
	}

	tests := []struct {
		name       string
		expression string
		comic      catalog.Comic
		expected   bool
	}{
		{"volume comparison", `Volume == 5`, comic, true},
		{"year range", `Year >= 1930 and Year < 1940`, comic, true},
		{"read flag", `not IsRead`, comic, false},
		{"missing flag", `Missing`, comic, false},
		{"accent insensitive like", `like(Author, "herge")`, comic, true},
		{"case sensitive operator", `Title contains "lotus"`, comic, false},
		{"same series", `same(Series, "TINTIN")`, comic, true},
		{"letter", `letter() == "T"`, comic, true},
		{"has cover", `hasCover()`, comic, true},
		{"placeholder cover", `hasCover()`, catalog.Comic{Title: "X", CoverURL: catalog.PlaceholderCover}, false},
		{"search helper", `search("lotus")`, comic, true},
		{"one-shot series is title", `Series == "Maus"`, catalog.Comic{Title: "Maus"}, true},
		{"comic struct access", `Comic.Series == "Tintin"`, comic, true},
		{"builtin lower", `lower(Title) startsWith "le "`, comic, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, filter.Matches(tt.comic))
		})
	}
}

func TestEvaluationError(t *testing.T) {
	filter, err := NewExprCompiler().Compile(`Volume / 0 > 1`)
	require.NoError(t, err)

	ok, err := filter.Evaluate(catalog.Comic{Title: "Zero", Volume: 0})
	if err != nil {
		var evalErr *EvaluationError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, "Zero", evalErr.ComicTitle)
		assert.False(t, filter.Matches(catalog.Comic{Title: "Zero"}))
	} else {
		assert.False(t, ok)
	}
}

func TestCompilerCache(t *testing.T) {
	c := NewExprCompiler(WithCache(2))

	first, err := c.Compile("Volume > 1")
	require.NoError(t, err)
	again, err := c.Compile("  Volume > 1 ")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, c.Size())

	_, err = c.Compile("Volume > 2")
	require.NoError(t, err)
	_, err = c.Compile("Volume > 3")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Size())

	evicted, err := c.Compile("Volume > 1")
	require.NoError(t, err)
	assert.NotSame(t, first, evicted)

	c.Clear()
	assert.Zero(t, c.Size())

	assert.Zero(t, NewExprCompiler().Size())
}

func TestCustomFunctions(t *testing.T) {
	c := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isLongRunning": func(volume int) bool { return volume >= 20 },
	}))

	filter, err := c.Compile(`isLongRunning(Volume)`)
	require.NoError(t, err)
	assert.True(t, filter.Matches(catalog.Comic{Title: "Astérix", Volume: 24}))
	assert.False(t, filter.Matches(catalog.Comic{Title: "Astérix", Volume: 3}))
}

func TestManager(t *testing.T) {
	m := NewManager(WithCompiler(NewExprCompiler()))

	require.NoError(t, m.RegisterFilters(map[string]string{
		"unread":  `not IsRead and not Missing`,
		"missing": `Missing`,
	}))
	assert.Equal(t, []string{"missing", "unread"}, m.ListFilters())

	err := m.RegisterFilters(map[string]string{"broken": `Volume >`})
	require.Error(t, err)
	assert.ErrorContains(t, err, "broken")
	assert.Len(t, m.ListFilters(), 2)

	comics := []catalog.Comic{
		{ID: "1", Title: "A", Volume: 1},
		{ID: "2", Title: "B", Volume: 2, IsRead: true},
		{ID: "3", Title: "C", Volume: 3, Missing: true},
	}

	unread, err := m.Select("unread", comics)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "1", unread[0].ID)

	adhoc, err := m.Select("Volume >= 2", comics)
	require.NoError(t, err)
	assert.Len(t, adhoc, 2)

	_, err = m.Select("nonsense(", comics)
	assert.True(t, IsCompilationError(err))
}

func TestLRUCache(t *testing.T) {
	c := newLRUCache[int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Size())
}
