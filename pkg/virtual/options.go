package virtual

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/govlist/pkg/rangecache"
)

// DefaultNoiseThreshold is the largest height difference, in pixels, treated
// as layout rounding rather than a real change.
const DefaultNoiseThreshold = 0.5

// DefaultCacheCapacity is the number of memoized visible ranges per calculator.
const DefaultCacheCapacity = rangecache.DefaultCapacity

// settings holds the optional engine parameters.
type settings struct {
	noiseThreshold float64
	cacheCapacity  int
	logger         *log.Logger
}

func defaultSettings() settings {
	return settings{
		noiseThreshold: DefaultNoiseThreshold,
		cacheCapacity:  DefaultCacheCapacity,
	}
}

// Option configures an Engine.
type Option func(*settings)

// WithNoiseThreshold sets the height-change threshold. Negative values are
// treated as zero, so every difference counts.
func WithNoiseThreshold(px float64) Option {
	return func(s *settings) {
		if px < 0 {
			px = 0
		}
		s.noiseThreshold = px
	}
}

// WithCacheCapacity sets how many visible ranges each calculator memoizes.
// Zero disables memoization.
func WithCacheCapacity(n int) Option {
	return func(s *settings) {
		if n < 0 {
			n = 0
		}
		s.cacheCapacity = n
	}
}

// WithLogger attaches a logger for debug events (resize, cache clears).
// Scroll queries never log.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}
