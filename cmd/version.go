package cmd

import (
	"errors"
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/bdshelf/config"
)

const releaseRepository = "s0up4200/bdshelf"

var (
	version   = "dev"
	buildTime = "unknown"

	checkUpdate bool
	applyUpdate bool
)

// SetVersion records the build information injected by main
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for updates",
	// The version command does not need a config, a catalog or the governor.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:               runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&checkUpdate, "check", false, "check GitHub for a newer release")
	versionCmd.Flags().BoolVar(&applyUpdate, "apply", false, "download and install the newer release (implies --check)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	fmt.Printf("bdshelf %s (built %s)\n", version, buildTime)

	if !checkUpdate && !applyUpdate {
		return nil
	}

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot check for updates on development build %q: %w", version, err)
	}

	latest, found, err := selfupdate.DetectLatest(cmd.Context(), selfupdate.ParseSlug(releaseRepository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found || latest.LessOrEqual(current.String()) {
		fmt.Println("You are running the latest version")
		return nil
	}

	fmt.Printf("A newer version is available: %s\n", latest.Version())
	if !applyUpdate {
		fmt.Println("Run 'bdshelf version --apply' to install it")
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(cmd.Context(), latest.AssetURL, latest.AssetName, exe); err != nil {
		if errors.Is(err, selfupdate.ErrExecutableNotFoundInArchive) {
			return fmt.Errorf("release %s has no binary for this platform: %w", latest.Version(), err)
		}
		return fmt.Errorf("failed to update: %w", err)
	}

	logger.Info().Str("version", latest.Version()).Msg("Updated bdshelf")
	return nil
}
