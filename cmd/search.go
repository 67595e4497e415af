package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bdshelf/catalog"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Google Books by title, author or series",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// isbnCmd represents the isbn command
var isbnCmd = &cobra.Command{
	Use:   "isbn <code>",
	Short: "Look up an ISBN or a scanned EAN-13 barcode",
	Long: `Look up an ISBN-10, ISBN-13 or EAN-13 barcode. When a 13 digit code finds
nothing, the equivalent ISBN-10 is tried once.`,
	Args: cobra.ExactArgs(1),
	RunE: runISBN,
}

// coverCmd represents the cover command
var coverCmd = &cobra.Command{
	Use:   "cover <title> [author]",
	Short: "Find the best cover image for a title",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCover,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(isbnCmd)
	rootCmd.AddCommand(coverCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	logger.Debug().Str("query", query).Msg("Searching volumes")

	results, err := books.SearchByText(cmd.Context(), query)
	if err != nil {
		return err
	}

	fmt.Print(formatter.FormatSearchResults(results))
	return nil
}

func runISBN(cmd *cobra.Command, args []string) error {
	results, matched, err := catalog.LookupCode(cmd.Context(), books, args[0])
	if err != nil {
		return err
	}

	if len(results) > 0 && matched != args[0] {
		logger.Info().Str("code", args[0]).Str("matched", matched).Msg("Found results under converted identifier")
	}

	fmt.Print(formatter.FormatSearchResults(results))
	return nil
}

func runCover(cmd *cobra.Command, args []string) error {
	author := ""
	if len(args) > 1 {
		author = args[1]
	}

	link, err := books.SearchCoverImage(cmd.Context(), args[0], author)
	if err != nil {
		return err
	}
	if link == "" {
		fmt.Println("No cover found")
		return nil
	}

	fmt.Println(link)
	return nil
}
