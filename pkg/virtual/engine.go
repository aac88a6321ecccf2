package virtual

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidEstimate is returned for a non-positive or non-finite estimated item height.
	ErrInvalidEstimate = errors.New("virtual: estimated item height must be positive and finite")

	// ErrNegativeOverscan is returned for an overscan below zero.
	ErrNegativeOverscan = errors.New("virtual: overscan must not be negative")

	// ErrNegativeItemCount is returned when a calculator is requested for fewer than zero items.
	ErrNegativeItemCount = errors.New("virtual: item count must not be negative")

	// ErrInvalidAlign is returned for an unknown scroll alignment.
	ErrInvalidAlign = errors.New("virtual: invalid alignment")
)

// Engine is a validated configuration that produces calculators.
// One Engine can serve any number of lists.
type Engine struct {
	estimate float64
	overscan int
	settings settings
}

// Factory builds a calculator for a list of itemCount items.
type Factory func(itemCount int) (*Calculator, error)

// Configure validates the shared parameters of every list built from the
// returned Engine.
func Configure(estimatedItemHeight float64, overscan int, opts ...Option) (*Engine, error) {
	if estimatedItemHeight <= 0 || math.IsNaN(estimatedItemHeight) || math.IsInf(estimatedItemHeight, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEstimate, estimatedItemHeight)
	}
	if overscan < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeOverscan, overscan)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	return &Engine{
		estimate: estimatedItemHeight,
		overscan: overscan,
		settings: s,
	}, nil
}

// New builds an independent calculator for itemCount items, every item
// starting at the estimated height.
func (e *Engine) New(itemCount int) (*Calculator, error) {
	if itemCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeItemCount, itemCount)
	}
	return newCalculator(e, itemCount), nil
}

// Factory returns e.New as a curried constructor.
func (e *Engine) Factory() Factory {
	return e.New
}

// EstimatedItemHeight returns the initial height of every item.
func (e *Engine) EstimatedItemHeight() float64 {
	return e.estimate
}

// Overscan returns the number of extra items rendered on each side of the viewport.
func (e *Engine) Overscan() int {
	return e.overscan
}

// NoiseThreshold returns the height-change threshold in pixels.
func (e *Engine) NoiseThreshold() float64 {
	return e.settings.noiseThreshold
}

// CacheCapacity returns the per-calculator memo size.
func (e *Engine) CacheCapacity() int {
	return e.settings.cacheCapacity
}
