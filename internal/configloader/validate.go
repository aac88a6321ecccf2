package configloader

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the config key of the invalid value (e.g., "overscan").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a resolved configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if !positiveFinite(cfg.EstimatedItemHeight) {
		result.fail("estimated_item_height", cfg.EstimatedItemHeight, "must be a positive number")
	}
	if v := cfg.OverscanOrDefault(); v < 0 {
		result.fail("overscan", v, "must be >= 0")
	}
	if v := cfg.NoiseThresholdOrDefault(); v < 0 || math.IsNaN(v) {
		result.fail("noise_threshold", v, "must be >= 0")
	}
	if v := cfg.CacheCapacityOrDefault(); v < 0 {
		result.fail("cache_capacity", v, "must be >= 0 (0 disables the memo)")
	} else if v == 0 {
		result.warn("cache_capacity", v, "visible-range memo is disabled")
	}
	if !positiveFinite(cfg.ContainerHeight) {
		result.fail("container_height", cfg.ContainerHeight, "must be a positive number")
	}
	if !positiveFinite(cfg.LineHeight) {
		result.fail("line_height", cfg.LineHeight, "must be a positive number")
	}
	if cfg.Width < 0 {
		result.fail("width", cfg.Width, "must be >= 0 (0 disables wrapping)")
	}
	if cfg.MaxPasses < 1 {
		result.fail("max_passes", cfg.MaxPasses, "must be >= 1")
	}
	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, table, json", cfg.Format)
	}
	if _, err := virtual.ParseAlign(cfg.Align); err != nil {
		result.fail("align", cfg.Align, "invalid alignment %q; must be one of: start, center, end", cfg.Align)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			result.fail(fmt.Sprintf("extensions[%d]", i), ext, "extension %q must start with a dot", ext)
		}
	}

	validateIgnorePatterns(cfg, result)

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
