package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/conclist/internal/errors"
	"github.com/Iron-Ham/conclist/internal/logging"
	"github.com/adrg/xdg"
	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Config represents the complete conclist configuration
type Config struct {
	Stress  StressConfig  `mapstructure:"stress" yaml:"stress"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// StressConfig controls the concurrent writer/reader scenario run by
// `conclist stress`
type StressConfig struct {
	// Writers is the number of goroutines appending to the list (default: 100)
	Writers int `mapstructure:"writers" yaml:"writers"`
	// Readers is the number of goroutines traversing the list with a cursor (default: 50)
	Readers int `mapstructure:"readers" yaml:"readers"`
	// ItemsPerWriter is how many tagged items each writer appends (default: 5)
	ItemsPerWriter int `mapstructure:"items_per_writer" yaml:"items_per_writer"`
	// Observable runs the scenario against the observable list and counts its events
	Observable bool `mapstructure:"observable" yaml:"observable"`
	// Rounds repeats the scenario on a fresh list (default: 1)
	Rounds int `mapstructure:"rounds" yaml:"rounds"`
	// TimeoutSeconds bounds a whole run (0 = no limit)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for conclist.log. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated backups
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// OutputConfig controls how reports are rendered
type OutputConfig struct {
	// Format is "text", "json" or "yaml" (default: "text")
	Format string `mapstructure:"format" yaml:"format"`
	// Color is "auto", "always" or "never" (default: "auto")
	Color string `mapstructure:"color" yaml:"color"`
}

// Timeout returns the run timeout as a time.Duration (0 means disabled)
func (c *StressConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExpectedItems returns the number of items a round should end with.
func (c *StressConfig) ExpectedItems() int {
	return c.Writers * c.ItemsPerWriter
}

// ResolveDir expands a leading ~ in the logging directory.
func (c *LoggingConfig) ResolveDir() string {
	dir := c.Dir
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// Default returns a Config with sensible default values
func Default() *Config {
	rotation := logging.DefaultRotationConfig()
	return &Config{
		Stress: StressConfig{
			Writers:        100,
			Readers:        50,
			ItemsPerWriter: 5,
			Observable:     false,
			Rounds:         1,
			TimeoutSeconds: 0, // No limit by default
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "", // Empty means stderr
			MaxSizeMB:  rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			Compress:   rotation.Compress,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Stress defaults
	viper.SetDefault("stress.writers", defaults.Stress.Writers)
	viper.SetDefault("stress.readers", defaults.Stress.Readers)
	viper.SetDefault("stress.items_per_writer", defaults.Stress.ItemsPerWriter)
	viper.SetDefault("stress.observable", defaults.Stress.Observable)
	viper.SetDefault("stress.rounds", defaults.Stress.Rounds)
	viper.SetDefault("stress.timeout_seconds", defaults.Stress.TimeoutSeconds)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Output defaults
	viper.SetDefault("output.format", defaults.Output.Format)
	viper.SetDefault("output.color", defaults.Output.Color)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.NewValidationError("invalid configuration").WithCause(ValidationErrors(errs))
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Watch reloads the configuration whenever the file viper read is written
// or recreated. onChange receives the new, validated Config; onError
// receives load or validation failures, after which the previous Config
// stays in effect. Watch has no effect when no config file was read.
func Watch(onChange func(*Config), onError func(error)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	debounced := debounce.New(reloadDelay)
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		debounced(func() {
			cfg, err := Load()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			onChange(cfg)
		})
	})
	viper.WatchConfig()
}

// ConfigDir returns the path to the user's config directory,
// $XDG_CONFIG_HOME/conclist or the platform default config home.
func ConfigDir() string {
	// The environment is re-read so a changed XDG_CONFIG_HOME takes effect.
	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, "conclist")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
