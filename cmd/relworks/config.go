package main

import (
	"time"

	"github.com/scholex/relworks/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if humanOutput {
		outputHuman("sections:      %v\n", cfg.SectionNames)
		outputHuman("cache dir:     %s\n", cfg.CacheDir)
		outputHuman("database:      %s\n", cfg.DBPath)
		outputHuman("request delay: %s\n", time.Duration(cfg.RequestDelay))
		outputHuman("max pdf size:  %d bytes\n", cfg.MaxPDFBytes)
		outputHuman("min citations: %d\n", cfg.MinCitations)
		return nil
	}
	return outputJSON(cfg)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	if path == "" {
		exitWithError(ExitConfigError, "cannot determine config path")
	}

	if err := config.Default().Save(path); err != nil {
		exitWithError(ExitConfigError, "writing config: %v", err)
	}

	if humanOutput {
		outputHuman("wrote %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
