package configloader

import "github.com/yaklabco/govlist/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer values: override overwrites base if override is non-nil, so an
//     explicit zero (overscan: 0) wins over a lower layer
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.EstimatedItemHeight != 0 {
		result.EstimatedItemHeight = override.EstimatedItemHeight
	}
	if override.ContainerHeight != 0 {
		result.ContainerHeight = override.ContainerHeight
	}
	if override.LineHeight != 0 {
		result.LineHeight = override.LineHeight
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.MaxPasses != 0 {
		result.MaxPasses = override.MaxPasses
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Align != "" {
		result.Align = override.Align
	}

	if override.Overscan != nil {
		result.Overscan = config.Ptr(*override.Overscan)
	}
	if override.NoiseThreshold != nil {
		result.NoiseThreshold = config.Ptr(*override.NoiseThreshold)
	}
	if override.CacheCapacity != nil {
		result.CacheCapacity = config.Ptr(*override.CacheCapacity)
	}

	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
