// Package config handles pipeline and server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the pipeline and the HTTP front end read.
type Config struct {
	DataDir        string       `yaml:"data_dir" json:"data_dir"`               // Where uploads and inputs live
	InputFile      string       `yaml:"input_file" json:"input_file"`           // File name of the export inside DataDir
	OutputDir      string       `yaml:"output_dir" json:"output_dir"`           // Root of years/, notice_years/, country_data/
	KeywordsDir    string       `yaml:"keywords_dir" json:"keywords_dir"`       // Directory holding <Category>.txt files
	ReferenceCSV   string       `yaml:"reference_csv" json:"reference_csv"`     // Publications per country per year
	MatchesLog     string       `yaml:"matches_log" json:"matches_log"`         // Country match audit file; empty means <output_dir>/country_matches.txt
	MatchThreshold float64      `yaml:"match_threshold" json:"match_threshold"` // Minimum fuzzy score for a country match
	Windows        int          `yaml:"windows" json:"windows"`                 // Number of trailing-year tables per basis
	LogLevel       string       `yaml:"log_level" json:"log_level"`
	Server         ServerConfig `yaml:"server" json:"server"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr             string `yaml:"addr" json:"addr"`
	MaxUploadMB      int    `yaml:"max_upload_mb" json:"max_upload_mb"`
	UploadsPerMinute int    `yaml:"uploads_per_minute" json:"uploads_per_minute"`
}

const (
	DefaultInputFile = "retraction_watch.csv"
	DefaultWindows   = 10
	MaxWindows       = 50
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		DataDir:        "data",
		InputFile:      DefaultInputFile,
		OutputDir:      ".",
		KeywordsDir:    "classification",
		ReferenceCSV:   filepath.Join("data", "scimago_combined.csv"),
		MatchThreshold: 0.7,
		Windows:        DefaultWindows,
		LogLevel:       "info",
		Server: ServerConfig{
			Addr:             ":5000",
			MaxUploadMB:      100,
			UploadsPerMinute: 6,
		},
	}
}

// InputPath returns the export path inside DataDir.
func (c *Config) InputPath() string {
	return filepath.Join(c.DataDir, c.InputFile)
}

// MatchesLogPath returns the audit file location.
func (c *Config) MatchesLogPath() string {
	if c.MatchesLog != "" {
		return c.MatchesLog
	}
	return filepath.Join(c.OutputDir, "country_matches.txt")
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) * 1024 * 1024
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("%w: match_threshold must be in (0, 1], got %v", ErrInvalid, c.MatchThreshold)
	}
	if c.Windows < 0 || c.Windows > MaxWindows {
		return fmt.Errorf("%w: windows must be between 0 and %d, got %d", ErrInvalid, MaxWindows, c.Windows)
	}
	if c.InputFile == "" {
		return fmt.Errorf("%w: input_file must not be empty", ErrInvalid)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: server.max_upload_mb must be positive, got %d", ErrInvalid, c.Server.MaxUploadMB)
	}
	if c.Server.UploadsPerMinute <= 0 {
		return fmt.Errorf("%w: server.uploads_per_minute must be positive, got %d", ErrInvalid, c.Server.UploadsPerMinute)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.DataDir = ExpandPath(c.DataDir)
	c.OutputDir = ExpandPath(c.OutputDir)
	c.KeywordsDir = ExpandPath(c.KeywordsDir)
	c.ReferenceCSV = ExpandPath(c.ReferenceCSV)
	c.MatchesLog = ExpandPath(c.MatchesLog)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
