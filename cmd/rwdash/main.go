// Package main provides the rwdash CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is an explicit config file; empty means the user config file.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rwdash",
	Short: "Retraction dashboard data generator",
	Long: `rwdash turns a retraction-notice export into the JSON documents behind
the retraction dashboard.

Each retraction is classified into one severity category, credited to its
countries and bucketed by year, both by original publication date and by
retraction notice date. Rates per 1000 publications use a reference table of
publication counts per country and year.

Output:
  years/dashboard_table.json          countries by original publication year
  notice_years/dashboard_table.json   countries by retraction notice year
  */dashboard_table_<N>.json          the same, limited to the last N years
  country_data/<Country>_CountryPageData.json
  manifest.json                       run metadata

All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/rwdash/config.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig resolves configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newLogger returns a stderr logger at the configured level. Log entries are
// JSON unless --human is set.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if !humanOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
