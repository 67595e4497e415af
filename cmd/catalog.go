package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bdshelf/catalog"
)

var (
	// add flags
	addCode   string
	addPick   int
	addTitle  string
	addSeries string
	addVolume int
	addAuthor string
	addYear   int
	addCover  string
	addMiss   bool

	// list flags
	filterExpr  string
	missingOnly bool
	letter      string

	markUnread bool
	noConfirm  bool
	fillGaps   bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a comic to the catalog",
	Long: `Add a comic, either from a barcode lookup (--isbn) or from the given fields.
Fields given alongside --isbn override the values found by the lookup.`,
	RunE: runAdd,
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog grouped by series",
	Long: `List the catalog grouped by series. --filter takes a filter name from the
config or an expression such as 'not IsRead and Year >= 2000'.`,
	RunE: runList,
}

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a comic as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a comic from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// missingCmd represents the missing command
var missingCmd = &cobra.Command{
	Use:   "missing [series]",
	Short: "Show missing volumes per series",
	Long: `Show the volumes flagged missing and the gaps between volume 1 and the
highest owned volume. With --fill, a missing placeholder is added for
every gap.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMissing,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(missingCmd)

	addCmd.Flags().StringVar(&addCode, "isbn", "", "ISBN or EAN-13 to look up")
	addCmd.Flags().IntVar(&addPick, "pick", 1, "which lookup result to add")
	addCmd.Flags().StringVar(&addTitle, "title", "", "title")
	addCmd.Flags().StringVar(&addSeries, "series", "", "series name")
	addCmd.Flags().IntVar(&addVolume, "volume", 0, "volume number in the series")
	addCmd.Flags().StringVar(&addAuthor, "author", "", "author")
	addCmd.Flags().IntVar(&addYear, "year", 0, "publication year")
	addCmd.Flags().StringVar(&addCover, "cover", "", "cover image URL")
	addCmd.Flags().BoolVar(&addMiss, "missing", false, "record the volume as missing from the shelf")

	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter name or expression")
	listCmd.Flags().BoolVar(&missingOnly, "missing", false, "only show missing volumes")
	listCmd.Flags().StringVar(&letter, "letter", "", "only show series filed under this letter")

	readCmd.Flags().BoolVar(&markUnread, "unread", false, "mark as unread instead")

	deleteCmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "skip confirmation prompt")

	missingCmd.Flags().BoolVar(&fillGaps, "fill", false, "add a missing placeholder for every gap")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var comic catalog.Comic
	if addCode != "" {
		found, err := lookupForAdd(ctx, addCode, addPick)
		if err != nil {
			return err
		}
		comic = found
	}

	if addTitle != "" {
		comic.Title = addTitle
	}
	if addSeries != "" {
		comic.Series = addSeries
	}
	if addVolume > 0 {
		comic.Volume = addVolume
	}
	if addAuthor != "" {
		comic.Author = addAuthor
	}
	if addYear > 0 {
		comic.Year = addYear
	}
	if addCover != "" {
		comic.CoverURL = addCover
	}
	comic.Missing = addMiss

	added, err := store.Add(ctx, comic)
	if err != nil {
		return fmt.Errorf("failed to add comic: %w", err)
	}

	logger.Info().Str("id", added.ID).Str("title", added.Title).Msg("Added comic")
	fmt.Printf("Added %s (ID: %s)\n", added.Title, added.ID)
	return nil
}

func lookupForAdd(ctx context.Context, code string, pick int) (catalog.Comic, error) {
	results, matched, err := catalog.LookupCode(ctx, books, code)
	if err != nil {
		return catalog.Comic{}, err
	}
	if len(results) == 0 {
		return catalog.Comic{}, fmt.Errorf("no results for %s", matched)
	}
	if pick < 1 || pick > len(results) {
		fmt.Print(formatter.FormatSearchResults(results))
		return catalog.Comic{}, fmt.Errorf("--pick must be between 1 and %d", len(results))
	}

	return catalog.FromSearchResult(results[pick-1]), nil
}

func runList(cmd *cobra.Command, args []string) error {
	comics, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	if filterExpr != "" {
		logger.Debug().Str("filter", filterExpr).Msg("Filtering catalog")
		comics, err = filters.Select(filterExpr, comics)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	sections := catalog.GroupBySeries(comics, missingOnly)
	if letter != "" {
		sections = catalog.SectionsForLetter(sections, letter)
	}

	fmt.Print(formatter.FormatSections(sections))
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	updated, err := store.Update(cmd.Context(), args[0], func(c *catalog.Comic) error {
		c.IsRead = !markUnread
		return nil
	})
	if err != nil {
		return err
	}

	state := "read"
	if !updated.IsRead {
		state = "unread"
	}
	fmt.Printf("Marked %s as %s\n", updated.Title, state)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	comic, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}

	if !noConfirm {
		fmt.Printf("Delete %s (ID: %s)? [y/N]: ", comic.Title, comic.ID)
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
	}

	if err := store.Delete(ctx, comic.ID); err != nil {
		return err
	}

	logger.Info().Str("id", comic.ID).Str("title", comic.Title).Msg("Deleted comic")
	return nil
}

func runMissing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	comics, err := store.List(ctx)
	if err != nil {
		return err
	}

	sections := catalog.GroupBySeries(comics, false)
	if len(args) == 1 {
		sections = sectionsNamed(sections, args[0])
		if len(sections) == 0 {
			return fmt.Errorf("series %q not found", args[0])
		}
	}

	total := 0
	for _, section := range sections {
		missing := section.MissingVolumes()
		if len(missing) == 0 {
			continue
		}
		total += len(missing)
		fmt.Printf("%s: %s\n", section.Series, joinVolumes(missing))

		if !fillGaps {
			continue
		}
		for _, entry := range section.GapEntries() {
			if _, err := store.Add(ctx, entry); err != nil && !errors.Is(err, catalog.ErrDuplicate) {
				return fmt.Errorf("failed to add placeholder for %s: %w", entry.Title, err)
			}
			logger.Info().Str("series", section.Series).Int("volume", entry.Volume).Msg("Added missing placeholder")
		}
	}

	if total == 0 {
		fmt.Println("No missing volumes")
	}
	return nil
}

func sectionsNamed(sections []catalog.Section, name string) []catalog.Section {
	key := catalog.Fold(name)
	for _, s := range sections {
		if catalog.Fold(s.Series) == key {
			return []catalog.Section{s}
		}
	}
	return nil
}

func joinVolumes(volumes []int) string {
	parts := make([]string, len(volumes))
	for i, v := range volumes {
		parts[i] = fmt.Sprintf("T%d", v)
	}
	return strings.Join(parts, ", ")
}
