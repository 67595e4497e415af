package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBySeries(t *testing.T) {
	comics := []Comic{
		{ID: "1", Title: "La Zizanie", Series: "Astérix", Volume: 15, Author: "Goscinny"},
		{ID: "2", Title: "Astérix le Gaulois", Series: "asterix", Volume: 1, Author: "Goscinny"},
		{ID: "3", Title: "Maus", Author: "Spiegelman"},
		{ID: "4", Title: "Blake et Mortimer 3", Series: "Blake et Mortimer", Volume: 3, Author: "Jacobs", Missing: true},
		{ID: "5", Title: "100 Bullets", Author: "Azzarello"},
	}

	sections := GroupBySeries(comics, false)
	require.Len(t, sections, 4)

	assert.Equal(t, "100 Bullets", sections[0].Series)
	assert.Equal(t, "#", sections[0].Letter)

	assert.Equal(t, "asterix", sections[1].Series, "accents and case fold into one section")
	assert.Equal(t, "A", sections[1].Letter)
	require.Len(t, sections[1].Comics, 2)
	assert.Equal(t, 1, sections[1].Comics[0].Volume)
	assert.Equal(t, 15, sections[1].Comics[1].Volume)

	assert.Equal(t, "Blake et Mortimer", sections[2].Series)
	assert.Equal(t, "Maus", sections[3].Series)
	assert.Equal(t, "M", sections[3].Letter)

	letterA := SectionsForLetter(sections, "a")
	require.Len(t, letterA, 1)
	assert.Equal(t, "asterix", letterA[0].Series)
}

func TestGroupBySeries_MissingOnly(t *testing.T) {
	comics := []Comic{
		{ID: "1", Title: "T1", Series: "Thorgal", Volume: 1, Author: "Rosinski"},
		{ID: "2", Title: "T2", Series: "Thorgal", Volume: 2, Author: "Rosinski", Missing: true},
		{ID: "3", Title: "Persepolis", Author: "Satrapi"},
	}

	sections := GroupBySeries(comics, true)
	require.Len(t, sections, 1)
	assert.Equal(t, "Thorgal", sections[0].Series)
	require.Len(t, sections[0].Comics, 1)
	assert.Equal(t, "2", sections[0].Comics[0].ID)
}

func TestGroupBySeries_MissingOnlyKeepsOwnedVolumesForGaps(t *testing.T) {
	comics := []Comic{
		{ID: "1", Title: "Astérix le Gaulois", Series: "Astérix", Volume: 1, Author: "Goscinny"},
		{ID: "2", Title: "La Serpe d'or", Series: "Astérix", Volume: 2, Author: "Goscinny"},
		{ID: "3", Title: "Astérix et les Goths", Series: "Astérix", Volume: 3, Author: "Goscinny"},
		{ID: "4", Title: "Astérix gladiateur", Series: "Astérix", Volume: 4, Author: "Goscinny", Missing: true},
	}

	sections := GroupBySeries(comics, true)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Comics, 1)
	assert.Equal(t, "4", sections[0].Comics[0].ID)
	assert.Empty(t, sections[0].Gaps())
	assert.Equal(t, []int{4}, sections[0].MissingVolumes())
	assert.Nil(t, sections[0].GapEntries())

	assert.Equal(t, GroupBySeries(comics, false)[0].MissingVolumes(), sections[0].MissingVolumes())
}

func TestGroupBySeries_MissingOnlyKeepsSeriesWithGaps(t *testing.T) {
	comics := []Comic{
		{ID: "1", Title: "Blake et Mortimer 1", Series: "Blake et Mortimer", Volume: 1, Author: "Jacobs"},
		{ID: "2", Title: "Blake et Mortimer 3", Series: "Blake et Mortimer", Volume: 3, Author: "Jacobs"},
		{ID: "3", Title: "Complete 1", Series: "Complete", Volume: 1, Author: "X"},
	}

	sections := GroupBySeries(comics, true)
	require.Len(t, sections, 1)
	assert.Equal(t, "Blake et Mortimer", sections[0].Series)
	assert.NotNil(t, sections[0].Comics)
	assert.Empty(t, sections[0].Comics)
	assert.Equal(t, []int{2}, sections[0].Gaps())

	entries := sections[0].GapEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Jacobs", entries[0].Author)
}

func TestSection_GapsIgnoreOutOfRangeVolumes(t *testing.T) {
	s := Section{Series: "X", Comics: []Comic{{Volume: 2}, {Volume: 2_000_000_000}}}
	assert.Equal(t, []int{1}, s.Gaps())
}

func TestSectionLetter(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Élfes", "E"},
		{"lanfeust", "L"},
		{"  Ça", "C"},
		{"3 Secondes", "#"},
		{"", "#"},
		{"¡Hola!", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionLetter(tt.name))
		})
	}
}

func TestSection_GapsAndMissing(t *testing.T) {
	s := Section{
		Series: "Les Tuniques Bleues",
		Comics: []Comic{
			{Volume: 0, Title: "Hors-série", Author: ""},
			{Volume: 1, Author: "Cauvin"},
			{Volume: 4, Author: "Cauvin", Missing: true},
			{Volume: 6, Author: "Cauvin"},
		},
	}

	assert.Equal(t, []int{2, 3, 5}, s.Gaps())
	assert.Equal(t, []int{2, 3, 4, 5}, s.MissingVolumes())

	entries := s.GapEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Les Tuniques Bleues - Tome 2", entries[0].Title)
	assert.Equal(t, "Les Tuniques Bleues", entries[0].Series)
	assert.Equal(t, 2, entries[0].Volume)
	assert.Equal(t, "Cauvin", entries[0].Author)
	assert.Equal(t, PlaceholderCover, entries[0].CoverURL)
	assert.True(t, entries[0].Missing)
	assert.Empty(t, entries[0].ID)
}

func TestSection_NoGaps(t *testing.T) {
	s := Section{Series: "Maus", Comics: []Comic{{Title: "Maus"}}}
	assert.Empty(t, s.Gaps())
	assert.Empty(t, s.MissingVolumes())
	assert.Nil(t, s.GapEntries())

	s = Section{Series: "X", Comics: []Comic{{Volume: 3}}}
	entries := s.GapEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, UnknownAuthor, entries[0].Author)
}
