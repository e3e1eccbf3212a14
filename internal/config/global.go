package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "rwdash"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RWDASH_"
)

// globalConfigCache caches the resolved configuration.
var globalConfigCache *Config

// GlobalConfigPath returns the path to the user config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rwdash/config.yml.
func GlobalConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
	}
	return filepath.Join(xdg.ConfigHome, GlobalConfigDir, GlobalConfigFile)
}

// Resolve builds the effective configuration: defaults, then the YAML file
// (explicit path, or the user config file when present), then a .env file
// in the working directory, then RWDASH_* environment variables.
func Resolve(explicit string) (*Config, error) {
	if explicit == "" && globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := explicit
	if path == "" {
		if p := GlobalConfigPath(); fileExists(p) {
			path = p
		}
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if explicit == "" {
		globalConfigCache = cfg
	}
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached configuration.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// LoadDotEnv loads variables from the given files without overriding ones
// already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from RWDASH_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATA_DIR":      &c.DataDir,
		"INPUT_FILE":    &c.InputFile,
		"OUTPUT_DIR":    &c.OutputDir,
		"KEYWORDS_DIR":  &c.KeywordsDir,
		"REFERENCE_CSV": &c.ReferenceCSV,
		"MATCHES_LOG":   &c.MatchesLog,
		"LOG_LEVEL":     &c.LogLevel,
		"ADDR":          &c.Server.Addr,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = ExpandPath(v)
		}
	}

	ints := map[string]*int{
		"WINDOWS":            &c.Windows,
		"MAX_UPLOAD_MB":      &c.Server.MaxUploadMB,
		"UPLOADS_PER_MINUTE": &c.Server.UploadsPerMinute,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, EnvPrefix, name, v)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "MATCH_THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMATCH_THRESHOLD=%q is not a number", ErrInvalid, EnvPrefix, v)
		}
		c.MatchThreshold = f
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
