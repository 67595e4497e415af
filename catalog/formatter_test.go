package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/bdshelf/googlebooks"
)

func TestConsoleFormatter_FormatSections(t *testing.T) {
	sections := GroupBySeries([]Comic{
		{ID: "1", Title: "Tome 1", Series: "Thorgal", Volume: 1, Author: "Rosinski", Year: 1980, IsRead: true},
		{ID: "2", Title: "Tome 3", Series: "Thorgal", Volume: 3, Author: "Rosinski", Missing: true},
	}, false)

	out := NewConsoleFormatter(true).FormatSections(sections)

	assert.Contains(t, out, "[T]")
	assert.Contains(t, out, "Thorgal (2)")
	assert.Contains(t, out, "├── T1 Tome 1 (1980) [READ]")
	assert.Contains(t, out, "╰── T3 Tome 3 [MISSING]")
	assert.Contains(t, out, "│   ID: 1 | Author: Rosinski")
	assert.Contains(t, out, "Missing: 2, 3")

	assert.Equal(t, "No comics found", NewConsoleFormatter(false).FormatSections(nil))
}

func TestConsoleFormatter_FormatSearchResults(t *testing.T) {
	out := NewConsoleFormatter(true).FormatSearchResults([]googlebooks.SearchResult{
		{ID: "a", Title: "Blacksad", Authors: []string{"Canales", "Guarnido"}, PublishedDate: "2000", ISBN: "9782205049538",
			ImageLinks: googlebooks.ImageLinks{Thumbnail: "http://img/t", Large: "http://img/l"}},
	})

	assert.Contains(t, out, "Result (1):")
	assert.Contains(t, out, "╰── [1] Blacksad (2000)")
	assert.Contains(t, out, "Authors: Canales, Guarnido")
	assert.Contains(t, out, "ID: a | ISBN: 9782205049538")
	assert.Contains(t, out, "Cover: http://img/l")

	assert.Equal(t, "No results found", NewConsoleFormatter(false).FormatSearchResults(nil))
}
