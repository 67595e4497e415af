package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/config"
	"github.com/s0up4200/bdshelf/filter"
	"github.com/s0up4200/bdshelf/googlebooks"
	"github.com/s0up4200/bdshelf/governor"
	"github.com/s0up4200/bdshelf/metrics"
)

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	gov       *governor.Governor
	books     *googlebooks.Client
	store     *catalog.FileStore
	filters   *filter.Manager
	formatter *catalog.ConsoleFormatter

	// Command flags
	showDetails bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bdshelf",
	Short: "Catalog a comic collection with Google Books metadata",
	Long: `bdshelf keeps track of a comic book collection. It searches Google Books
by text or barcode, files albums by series, tracks missing volumes and
fills in covers, while keeping outbound requests under the provider's
rate limit.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&showDetails, "details", false, "show IDs, authors and cover links")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	if cmd.Flags().Changed("details") {
		cfg.Display.ShowDetails = showDetails
	}
	formatter = catalog.NewConsoleFormatter(cfg.Display.ShowDetails)

	observer := metrics.NewGovernorObserver()
	gov = governor.New(
		governor.WithMinInterval(cfg.Governor.MinInterval),
		governor.WithCooldown(cfg.Governor.Cooldown),
		governor.WithMaxAttempts(cfg.Governor.MaxAttempts),
		governor.WithAttemptTimeout(cfg.Governor.AttemptTimeout),
		governor.WithLogger(logger.With().Str("component", "governor").Logger()),
		governor.WithObserver(observer),
	)
	observer.TrackDepth(gov.Pending)

	books, err = googlebooks.NewClient(gov, logger.With().Str("component", "googlebooks").Logger(),
		googlebooks.WithBaseURL(cfg.GoogleBooks.BaseURL),
		googlebooks.WithAPIKey(cfg.GoogleBooks.APIKey),
		googlebooks.WithLanguage(cfg.GoogleBooks.Language),
		googlebooks.WithMaxResults(cfg.GoogleBooks.MaxResults),
		googlebooks.WithTimeout(cfg.GoogleBooks.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Google Books client: %w", err)
	}

	store, err = catalog.OpenFileStore(cfg.Catalog.Path, logger.With().Str("component", "catalog").Logger())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	return nil
}

// closeApp settles anything still queued in the governor
func closeApp(cmd *cobra.Command, args []string) error {
	if gov != nil {
		gov.Close()
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, no colors when stderr is redirected
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
