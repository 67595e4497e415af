package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s0up4200/bdshelf/googlebooks"
)

// ConsoleFormatter renders catalog data as a tree for the terminal.
type ConsoleFormatter struct {
	ShowDetails bool
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(showDetails bool) *ConsoleFormatter {
	return &ConsoleFormatter{ShowDetails: showDetails}
}

// FormatSections renders series sections with their volumes and gaps.
func (f *ConsoleFormatter) FormatSections(sections []Section) string {
	if len(sections) == 0 {
		return "No comics found"
	}

	var sb strings.Builder
	letter := ""

	for _, section := range sections {
		if section.Letter != letter {
			letter = section.Letter
			fmt.Fprintf(&sb, "\n[%s]\n", letter)
		}

		fmt.Fprintf(&sb, "\n%s (%d)\n", section.Series, len(section.Comics))

		for i, comic := range section.Comics {
			isLast := i == len(section.Comics)-1
			prefix := "├"
			indent := "│   "
			if isLast {
				prefix = "╰"
				indent = "    "
			}

			fmt.Fprintf(&sb, "%s── %s\n", prefix, f.comicLine(comic))
			if f.ShowDetails {
				f.writeDetails(&sb, indent, comic)
			}
		}

		if missing := section.MissingVolumes(); len(missing) > 0 {
			fmt.Fprintf(&sb, "    Missing: %s\n", joinInts(missing))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatSearchResults renders provider results, numbered for selection.
func (f *ConsoleFormatter) FormatSearchResults(results []googlebooks.SearchResult) string {
	if len(results) == 0 {
		return "No results found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nResult")
	if len(results) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(results))

	for i, r := range results {
		isLast := i == len(results)-1
		prefix := "├"
		indent := "│   "
		if isLast {
			prefix = "╰"
			indent = "    "
		}

		title := r.Title
		if year := r.Year(); year > 0 {
			title += fmt.Sprintf(" (%d)", year)
		}
		fmt.Fprintf(&sb, "%s── [%d] %s\n", prefix, i+1, title)
		fmt.Fprintf(&sb, "%sAuthors: %s\n", indent, strings.Join(r.Authors, ", "))
		fmt.Fprintf(&sb, "%sID: %s", indent, r.ID)
		if r.ISBN != "" {
			fmt.Fprintf(&sb, " | ISBN: %s", r.ISBN)
		}
		sb.WriteString("\n")
		if f.ShowDetails {
			if link, ok := r.ImageLinks.Best(); ok {
				fmt.Fprintf(&sb, "%sCover: %s\n", indent, link)
			}
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) comicLine(c Comic) string {
	var sb strings.Builder
	if c.Volume > 0 {
		fmt.Fprintf(&sb, "T%d ", c.Volume)
	}
	sb.WriteString(c.Title)
	if c.Year > 0 {
		fmt.Fprintf(&sb, " (%d)", c.Year)
	}

	var flags []string
	if c.Missing {
		flags = append(flags, "MISSING")
	}
	if c.IsRead {
		flags = append(flags, "READ")
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(flags, ", "))
	}
	return sb.String()
}

func (f *ConsoleFormatter) writeDetails(sb *strings.Builder, indent string, c Comic) {
	fmt.Fprintf(sb, "%sID: %s | Author: %s\n", indent, c.ID, c.Author)
	if c.HasCover() {
		fmt.Fprintf(sb, "%sCover: %s\n", indent, c.CoverURL)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
