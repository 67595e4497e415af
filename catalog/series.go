package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Alphabet is the letter index shown above the series list. '#' collects
// series that do not start with a letter.
const Alphabet = "#ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Section is one series and the comics filed under it, ordered by volume.
type Section struct {
	Series string
	Letter string
	Comics []Comic

	// volumes holds every comic of the series when Comics is a filtered
	// view. Nil means Comics is the whole series.
	volumes []Comic
}

// GroupBySeries files comics into series sections sorted by name, ignoring
// case and accents. With missingOnly, Comics only lists the comics flagged
// missing and sections with nothing missing are dropped; gaps are still
// computed from the whole series.
func GroupBySeries(comics []Comic, missingOnly bool) []Section {
	sorted := append([]Comic(nil), comics...)
	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	var sections []Section
	index := make(map[string]int)

	for _, c := range sorted {
		key := Fold(c.SeriesName())
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, Section{
				Series: c.SeriesName(),
				Letter: SectionLetter(c.SeriesName()),
			})
		}
		sections[i].Comics = append(sections[i].Comics, c)
	}

	if !missingOnly {
		return sections
	}

	out := sections[:0]
	for _, section := range sections {
		if len(section.MissingVolumes()) == 0 && !hasMissing(section.Comics) {
			continue
		}
		section.volumes = section.Comics
		section.Comics = make([]Comic, 0, len(section.volumes))
		for _, c := range section.volumes {
			if c.Missing {
				section.Comics = append(section.Comics, c)
			}
		}
		out = append(out, section)
	}
	return out
}

func hasMissing(comics []Comic) bool {
	for _, c := range comics {
		if c.Missing {
			return true
		}
	}
	return false
}

// all returns every comic of the series, including the ones a missing-only
// view leaves out of Comics.
func (s Section) all() []Comic {
	if s.volumes != nil {
		return s.volumes
	}
	return s.Comics
}

// SectionsForLetter returns the sections filed under letter.
func SectionsForLetter(sections []Section, letter string) []Section {
	letter = strings.ToUpper(letter)
	var out []Section
	for _, s := range sections {
		if s.Letter == letter {
			out = append(out, s)
		}
	}
	return out
}

// SectionLetter returns the index letter of a series name: its first letter
// with accents removed, or "#".
func SectionLetter(name string) string {
	for _, r := range Fold(name) {
		if r >= 'a' && r <= 'z' {
			return string(unicode.ToUpper(r))
		}
		return "#"
	}
	return "#"
}

// Gaps returns the volume numbers between 1 and the highest known volume that
// have no entry at all. Volumes above MaxVolume are ignored.
func (s Section) Gaps() []int {
	present := make(map[int]bool)
	highest := 0
	for _, c := range s.all() {
		if c.Volume <= 0 || c.Volume > MaxVolume {
			continue
		}
		present[c.Volume] = true
		highest = max(highest, c.Volume)
	}

	var gaps []int
	for v := 1; v < highest; v++ {
		if !present[v] {
			gaps = append(gaps, v)
		}
	}
	return gaps
}

// MissingVolumes returns the volumes flagged missing together with the gaps,
// in ascending order.
func (s Section) MissingVolumes() []int {
	seen := make(map[int]bool)
	var missing []int
	for _, c := range s.all() {
		if c.Missing && c.Volume > 0 && !seen[c.Volume] {
			seen[c.Volume] = true
			missing = append(missing, c.Volume)
		}
	}
	for _, v := range s.Gaps() {
		if !seen[v] {
			missing = append(missing, v)
		}
	}
	sort.Ints(missing)
	return missing
}

// GapEntries builds a missing placeholder comic for every gap of the section.
// The author is taken from the section's first volume.
func (s Section) GapEntries() []Comic {
	gaps := s.Gaps()
	if len(gaps) == 0 {
		return nil
	}

	author := UnknownAuthor
	for _, c := range s.all() {
		if strings.TrimSpace(c.Author) != "" {
			author = c.Author
			break
		}
	}

	entries := make([]Comic, 0, len(gaps))
	for _, v := range gaps {
		entries = append(entries, Comic{
			Title:    fmt.Sprintf("%s - Tome %d", s.Series, v),
			Series:   s.Series,
			Volume:   v,
			Author:   author,
			CoverURL: PlaceholderCover,
			Missing:  true,
		})
	}
	return entries
}

// less orders comics by series name, volume, title and ID.
func less(a, b Comic) bool {
	sa, sb := Fold(a.SeriesName()), Fold(b.SeriesName())
	if sa != sb {
		return sa < sb
	}
	if a.Volume != b.Volume {
		return a.Volume < b.Volume
	}
	ta, tb := Fold(a.Title), Fold(b.Title)
	if ta != tb {
		return ta < tb
	}
	return a.ID < b.ID
}

// Fold lowercases s and strips diacritics so "Élise" sorts with "elise".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
