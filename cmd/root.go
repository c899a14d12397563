// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"lulu/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagOutputDir string
	flagInfo      bool
	flagNoMerge   bool
	flagPlaylist  bool
	flagPlayer    string
	flagJSON      bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is configured by loadConfig; debug output only with --debug.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "lulu", Level: log.WarnLevel})

var rootCmd = &cobra.Command{
	Use:   "lulu [flags] URL...",
	Short: "Download the media behind any web page",
	Long: `lulu finds the videos, audio and images behind a URL and downloads them.
Pages are scanned for HLS playlists, DASH manifests, embedded players and
direct media links; a URL pointing straight at a file is downloaded as is.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              extractRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutputDir, "output-dir", "o", "", "Directory to save files in (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagInfo, "info", "i", false, "Print information only, download nothing")
	rootCmd.PersistentFlags().BoolVarP(&flagNoMerge, "no-merge", "n", false, "Keep multi-part downloads as separate files")
	rootCmd.PersistentFlags().BoolVarP(&flagPlaylist, "playlist", "l", false, "Treat URLs as playlists")
	rootCmd.PersistentFlags().StringVarP(&flagPlayer, "player", "p", "", "Play with: mpv | vlc | iina | celluloid instead of downloading")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print media information as JSON lines")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagNoMerge {
		cfg.Merge = false
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lulu %s\n", Version)
	},
}
