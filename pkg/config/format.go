package config

import (
	"fmt"
	"strings"
)

// ParseOutputFormat converts a flag value to an OutputFormat.
// The empty string selects FormatText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format == "" {
		return FormatText, nil
	}
	if !format.IsValid() {
		return "", fmt.Errorf("invalid format %q: must be one of text, table, json", s)
	}
	return format, nil
}
