package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/govlist/pkg/config"
)

// envVarPrefix is the prefix for all govlist environment variables.
const envVarPrefix = "GOVLIST_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeInt
	envTypeFloat
	envTypeSlice
)

// envMapping defines an environment variable to config field mapping.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"ESTIMATED_ITEM_HEIGHT": {"estimated_item_height", envTypeFloat, "Initial height of every row"},
	"OVERSCAN":              {"overscan", envTypeInt, "Rows rendered beyond each viewport edge"},
	"NOISE_THRESHOLD":       {"noise_threshold", envTypeFloat, "Height changes at or below this are ignored"},
	"CACHE_CAPACITY":        {"cache_capacity", envTypeInt, "Visible ranges memoized per list (0 = off)"},
	"CONTAINER_HEIGHT":      {"container_height", envTypeFloat, "Viewport height for range and simulate"},
	"LINE_HEIGHT":           {"line_height", envTypeFloat, "Height of one wrapped display line"},
	"WIDTH":                 {"width", envTypeInt, "Wrap width in cells (0 = no wrapping)"},
	"MAX_PASSES":            {"max_passes", envTypeInt, "Maximum simulation passes"},
	"JOBS":                  {"jobs", envTypeInt, "Number of parallel workers (0 = auto)"},
	"FORMAT":                {"format", envTypeString, "Output format: text, table, or json"},
	"ALIGN":                 {"align", envTypeString, "Default alignment for target: start, center, or end"},
	"EXTENSIONS":            {"extensions", envTypeSlice, "Comma-separated file extensions for simulate"},
	"IGNORE":                {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOVLIST_ (e.g., GOVLIST_OVERSCAN).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", envVar, value)
		}
		return setFloatField(cfg, mapping.field, f)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "align":
		cfg.Align = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "overscan":
		cfg.Overscan = config.Ptr(value)
	case "cache_capacity":
		cfg.CacheCapacity = config.Ptr(value)
	case "width":
		cfg.Width = value
	case "max_passes":
		cfg.MaxPasses = value
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setFloatField(cfg *config.Config, field string, value float64) error {
	switch field {
	case "estimated_item_height":
		cfg.EstimatedItemHeight = value
	case "noise_threshold":
		cfg.NoiseThreshold = config.Ptr(value)
	case "container_height":
		cfg.ContainerHeight = value
	case "line_height":
		cfg.LineHeight = value
	default:
		return fmt.Errorf("unknown float field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "extensions":
		cfg.Extensions = value
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns every supported environment variable, sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
