package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after the config file, .env and RWDASH_*
environment variables have been applied.

Usage:
  rwdash config          # Show effective config
  rwdash config path     # Show the user config file location
  rwdash config init     # Write the defaults to the user config file`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()
		if !humanOutput {
			outputJSON(cfg)
			return
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		os.Stdout.Write(data)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the user config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := config.GlobalConfigPath()
		if humanOutput {
			outputHuman("%s\n", path)
			return
		}
		outputJSON(map[string]string{"path": path})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the user config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := config.GlobalConfigPath()
		if _, err := os.Stat(path); err == nil {
			exitWithError(ExitConfigError, "config file already exists: %s", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			exitWithError(ExitConfigError, "checking %s: %v", path, err)
		}
		if err := config.Default().Save(path); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("Wrote %s\n", path)
			return
		}
		outputJSON(map[string]string{"status": "created", "path": path})
	},
}
