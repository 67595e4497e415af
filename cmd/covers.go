package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/metrics"
)

// coversCmd groups cover maintenance commands
var coversCmd = &cobra.Command{
	Use:   "covers",
	Short: "Maintain cover images",
}

// coversRefreshCmd represents the covers refresh command
var coversRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Look up covers for comics still showing the placeholder",
	RunE:  runCoversRefresh,
}

func init() {
	rootCmd.AddCommand(coversCmd)
	coversCmd.AddCommand(coversRefreshCmd)
}

func newCoverRefresher() *catalog.CoverRefresher {
	return catalog.NewCoverRefresher(store, books, logger.With().Str("component", "covers").Logger(), cfg.Catalog.CoverConcurrency)
}

func runCoversRefresh(cmd *cobra.Command, args []string) error {
	result, err := newCoverRefresher().Refresh(cmd.Context())
	if err != nil {
		return err
	}
	metrics.RecordCoverRefresh(result.Checked, len(result.Updated), len(result.Failed))

	fmt.Printf("\nChecked %d comics, updated %d covers\n", result.Checked, len(result.Updated))
	if len(result.Failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  • %s\n", f.Error())
		}
	}
	return nil
}
