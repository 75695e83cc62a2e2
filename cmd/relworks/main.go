// Package main provides the relworks CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/scholex/relworks/internal/config"
	"github.com/scholex/relworks/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relworks",
	Short: "Related-work section and citation extractor for arXiv papers",
	Long: `relworks mines the related-work section of arXiv papers.

For each paper it downloads the LaTeX source bundle and the rendered PDF,
locates the related-work section on both paths, extracts the citations
from the markup, and resolves them against the bundled bibliography and
the arXiv search API. Records are stored in a local SQLite database.
All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for RELWORKS_* overrides)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/relworks/config.yml)")
	rootCmd.Version = Version
}

// loadConfig loads the configuration, exiting on failure.
func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// openStore opens the record database, exiting on failure.
func openStore(cfg *config.Config) *storage.DB {
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}
