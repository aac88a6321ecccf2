// Package config defines core configuration types for govlist.
// These types are pure data structures with no dependency on the loader.
package config

// Default values for the list engine and the simulated viewport.
const (
	DefaultEstimatedItemHeight = 36.0
	DefaultOverscan            = 5
	DefaultNoiseThreshold      = 0.5
	DefaultCacheCapacity       = 100
	DefaultContainerHeight     = 400.0
	DefaultLineHeight          = 18.0
	DefaultWidth               = 80
	DefaultMaxPasses           = 10
)

// OutputFormat specifies how command results are printed.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for govlist.
//
// Fields where zero is a meaningful setting are pointers so that a layer
// which omits them does not override a lower layer.
type Config struct {
	// EstimatedItemHeight is the height every row starts with before it is measured.
	EstimatedItemHeight float64 `json:"estimated_item_height" yaml:"estimated_item_height"`

	// Overscan is the number of rows rendered beyond each edge of the viewport.
	Overscan *int `json:"overscan,omitempty" yaml:"overscan,omitempty"`

	// NoiseThreshold is the height difference at or below which a measurement is ignored.
	NoiseThreshold *float64 `json:"noise_threshold,omitempty" yaml:"noise_threshold,omitempty"`

	// CacheCapacity is the number of memoized visible ranges per list. Zero disables the memo.
	CacheCapacity *int `json:"cache_capacity,omitempty" yaml:"cache_capacity,omitempty"`

	// ContainerHeight is the viewport height used by simulate and range.
	ContainerHeight float64 `json:"container_height" yaml:"container_height"`

	// LineHeight is the height of one wrapped display line.
	LineHeight float64 `json:"line_height" yaml:"line_height"`

	// Width is the wrap width in display cells. Zero disables wrapping.
	Width int `json:"width" yaml:"width"`

	// MaxPasses bounds the number of full scroll passes of a simulation.
	MaxPasses int `json:"max_passes" yaml:"max_passes"`

	// Extensions lists the file extensions simulate picks up when walking directories.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `json:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `json:"-" yaml:"-"`

	// Align is the default scroll alignment for the target command.
	Align string `json:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		EstimatedItemHeight: DefaultEstimatedItemHeight,
		Overscan:            Ptr(DefaultOverscan),
		NoiseThreshold:      Ptr(DefaultNoiseThreshold),
		CacheCapacity:       Ptr(DefaultCacheCapacity),
		ContainerHeight:     DefaultContainerHeight,
		LineHeight:          DefaultLineHeight,
		Width:               DefaultWidth,
		MaxPasses:           DefaultMaxPasses,
		Format:              FormatText,
		Jobs:                0, // 0 means use GOMAXPROCS
		Align:               "start",
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// OverscanOrDefault returns Overscan, or DefaultOverscan when unset.
func (c *Config) OverscanOrDefault() int {
	if c == nil || c.Overscan == nil {
		return DefaultOverscan
	}
	return *c.Overscan
}

// NoiseThresholdOrDefault returns NoiseThreshold, or DefaultNoiseThreshold when unset.
func (c *Config) NoiseThresholdOrDefault() float64 {
	if c == nil || c.NoiseThreshold == nil {
		return DefaultNoiseThreshold
	}
	return *c.NoiseThreshold
}

// CacheCapacityOrDefault returns CacheCapacity, or DefaultCacheCapacity when unset.
func (c *Config) CacheCapacityOrDefault() int {
	if c == nil || c.CacheCapacity == nil {
		return DefaultCacheCapacity
	}
	return *c.CacheCapacity
}
