package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/metrics"
	"github.com/s0up4200/bdshelf/server"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and search HTTP API",
	Long: `Serve the JSON API used by the web interface. When
catalog.cover_refresh_interval is set, placeholder covers are looked up in
the background at that interval.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides server.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	api := server.New(books, store, logger.With().Str("component", "server").Logger(),
		server.WithFilters(filters),
		server.WithCORSOrigins(cfg.Server.CORSOrigins),
		server.WithRateLimit(cfg.Server.RateLimit),
		server.WithPending(gov.Pending),
	)

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		return api.ListenAndServe(ctx, addr)
	})

	if interval := cfg.Catalog.CoverRefreshInterval; interval > 0 {
		refresher := newCoverRefresher()
		refresher.OnResult(func(r catalog.RefreshResult) {
			metrics.RecordCoverRefresh(r.Checked, len(r.Updated), len(r.Failed))
		})

		logger.Info().Dur("interval", interval).Msg("Background cover refresh enabled")
		g.Go(func() error {
			refresher.Run(ctx, interval)
			return nil
		})
	}

	return g.Wait()
}
