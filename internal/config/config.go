package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for docsweep
type Config struct {
	// Directory for the embedded document and report store
	DataDir string `mapstructure:"data_dir"`

	// Optional rules file overriding or extending the built-in rule sets
	RulesFile string `mapstructure:"rules_file"`

	// Output format (text, json)
	Format string `mapstructure:"format"`

	// Address the HTTP API listens on
	HTTPAddr string `mapstructure:"http_addr"`

	// Interval between scheduled scans in serve mode (0 disables the scheduler)
	ScanInterval time.Duration `mapstructure:"scan_interval"`

	// Reports older than this many days are removed by cleanup
	RetentionDays int `mapstructure:"retention_days"`

	// Number of sample documents the seeder generates
	SeedCount int `mapstructure:"seed_count"`

	// Fraction of seeded documents that get an injected defect (0..1)
	SeedDefectRate float64 `mapstructure:"seed_defect_rate"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DataDir:        ".docsweep",
		Format:         "text",
		HTTPAddr:       ":8080",
		ScanInterval:   0,
		RetentionDays:  30,
		SeedCount:      50,
		SeedDefectRate: 0.3,
		Verbose:        false,
		Debug:          false,
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/docsweep.yaml or ./docsweep.yaml)
// 3. Environment variables (DOCSWEEP_*)
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("rules_file", "")
	v.SetDefault("format", defaults.Format)
	v.SetDefault("http_addr", defaults.HTTPAddr)
	v.SetDefault("scan_interval", defaults.ScanInterval)
	v.SetDefault("retention_days", defaults.RetentionDays)
	v.SetDefault("seed_count", defaults.SeedCount)
	v.SetDefault("seed_defect_rate", defaults.SeedDefectRate)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("debug", defaults.Debug)

	// Set config file settings
	v.SetConfigName("docsweep")
	v.SetConfigType("yaml")

	if configPath != "" {
		// Use explicit config file path
		v.SetConfigFile(configPath)
	} else {
		// Search for config in standard locations
		// 1. Current directory
		v.AddConfigPath(".")

		// 2. Home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}

		// 3. XDG config directory
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "docsweep"))
		}
	}

	// Enable environment variable support
	v.SetEnvPrefix("DOCSWEEP")
	v.AutomaticEnv()

	// Try to read config file (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		// Only return error if it's not a "file not found" error
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate format
	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be text or json)", c.Format)
	}

	// Validate data_dir is not empty
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative")
	}

	if c.ScanInterval < 0 {
		return fmt.Errorf("scan_interval cannot be negative")
	}

	if c.SeedCount < 0 {
		return fmt.Errorf("seed_count cannot be negative")
	}

	if c.SeedDefectRate < 0 || c.SeedDefectRate > 1 {
		return fmt.Errorf("seed_defect_rate must be between 0 and 1")
	}

	return nil
}

// DataPath returns the absolute path to the data directory
func (c *Config) DataPath() (string, error) {
	// Expand ~ to home directory
	if len(c.DataDir) >= 2 && c.DataDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.DataDir[2:]), nil
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(c.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# docsweep configuration
# Save this file as ~/docsweep.yaml or ./docsweep.yaml

# Directory for the embedded document and report store
data_dir: .docsweep

# Rules file overriding or extending the built-in rule sets
# rules_file: ./docsweep-rules.yaml

# Output format: text or json
format: text

# Address for 'docsweep serve'
http_addr: ":8080"

# Interval between scheduled scans in serve mode; 0 disables the scheduler
scan_interval: 0

# Reports older than this many days are removed by 'docsweep cleanup'
retention_days: 30

# Sample data generation
seed_count: 50
seed_defect_rate: 0.3

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}
