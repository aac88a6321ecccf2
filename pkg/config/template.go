package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every key with its default value.
	// If false, generates a minimal template with everything commented out.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// FieldInfo documents one configuration key.
type FieldInfo struct {
	Key         string
	Description string
	Example     string
}

// Fields returns documentation for every persisted configuration key, in file order.
func Fields() []FieldInfo {
	return []FieldInfo{
		{
			Key:         "estimated_item_height",
			Description: "Height every row starts with before it has been measured.",
			Example:     fmt.Sprint(DefaultEstimatedItemHeight),
		},
		{
			Key:         "overscan",
			Description: "Rows rendered beyond each edge of the viewport to hide blank flashes while scrolling fast.",
			Example:     fmt.Sprint(DefaultOverscan),
		},
		{
			Key:         "noise_threshold",
			Description: "Measured height differences at or below this value are treated as rounding and ignored.",
			Example:     fmt.Sprint(DefaultNoiseThreshold),
		},
		{
			Key:         "cache_capacity",
			Description: "Visible ranges memoized per list (0 disables the memo).",
			Example:     fmt.Sprint(DefaultCacheCapacity),
		},
		{
			Key:         "container_height",
			Description: "Viewport height used by range and simulate.",
			Example:     fmt.Sprint(DefaultContainerHeight),
		},
		{
			Key:         "line_height",
			Description: "Height of one wrapped display line when measuring rows.",
			Example:     fmt.Sprint(DefaultLineHeight),
		},
		{
			Key:         "width",
			Description: "Wrap width in terminal cells (0 disables wrapping).",
			Example:     fmt.Sprint(DefaultWidth),
		},
		{
			Key:         "max_passes",
			Description: "Upper bound on full scroll passes before a simulation is reported as unconverged.",
			Example:     fmt.Sprint(DefaultMaxPasses),
		},
	}
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n")

	for _, field := range Fields() {
		buf.WriteString("\n# ")
		buf.WriteString(wrapComment(field.Description, commentWrapWidth))
		buf.WriteString("\n")
		if opts.Full {
			fmt.Fprintf(&buf, "%s: %s\n", field.Key, field.Example)
		} else {
			fmt.Fprintf(&buf, "# %s: %s\n", field.Key, field.Example)
		}
	}

	buf.WriteString(`
# File extensions picked up when simulate walks a directory
# extensions: [".txt", ".log", ".md", ".markdown"]

# File patterns to ignore (glob patterns)
# ignore:
#   - "vendor/**"
#   - "node_modules/**"
`)

	return buf.Bytes(), nil
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n# ")
}

// templateToJSON renders the default configuration as JSON. JSON has no
// comments, so the full and minimal templates are identical.
func templateToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(NewConfig(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# govlist configuration
# See: https://github.com/yaklabco/govlist`
}
