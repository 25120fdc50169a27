package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/conclist/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "stress.writers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Upper bounds keep a misconfigured run from exhausting the machine.
const (
	maxWorkers        = 10000
	maxItemsPerWriter = 1_000_000
	maxRounds         = 1000
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, level := range levels {
		levels[i] = strings.ToLower(level)
	}
	return levels
}

// ValidOutputFormats returns the list of valid report formats
func ValidOutputFormats() []string {
	return []string{"text", "json", "yaml"}
}

// ValidColorModes returns the list of valid color modes
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateStress()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)

	return errors
}

// validateStress validates the StressConfig
func (c *Config) validateStress() []ValidationError {
	var errors []ValidationError

	if c.Stress.Writers < 1 || c.Stress.Writers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "stress.writers",
			Value:   c.Stress.Writers,
			Message: fmt.Sprintf("must be between 1 and %d", maxWorkers),
		})
	}

	// Zero readers is allowed and measures writer contention alone
	if c.Stress.Readers < 0 || c.Stress.Readers > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "stress.readers",
			Value:   c.Stress.Readers,
			Message: fmt.Sprintf("must be between 0 and %d", maxWorkers),
		})
	}

	if c.Stress.ItemsPerWriter < 1 || c.Stress.ItemsPerWriter > maxItemsPerWriter {
		errors = append(errors, ValidationError{
			Field:   "stress.items_per_writer",
			Value:   c.Stress.ItemsPerWriter,
			Message: fmt.Sprintf("must be between 1 and %d", maxItemsPerWriter),
		})
	}

	if c.Stress.Rounds < 1 || c.Stress.Rounds > maxRounds {
		errors = append(errors, ValidationError{
			Field:   "stress.rounds",
			Value:   c.Stress.Rounds,
			Message: fmt.Sprintf("must be between 1 and %d", maxRounds),
		})
	}

	if c.Stress.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "stress.timeout_seconds",
			Value:   c.Stress.TimeoutSeconds,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	if c.Output.Color != "" && !slices.Contains(ValidColorModes(), c.Output.Color) {
		errors = append(errors, ValidationError{
			Field:   "output.color",
			Value:   c.Output.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}
