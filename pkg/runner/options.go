// Package runner drives virtualized lists built from files through the
// render, measure, and report cycle until their heights converge.
package runner

import "github.com/yaklabco/govlist/pkg/config"

// Options controls a multi-file simulation.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// picked up when walking directories. Defaults to DefaultExtensions().
	// Files named explicitly in Paths must match as well.
	Extensions []string

	// IncludeGlobs are additional glob patterns to include, relative to WorkingDir.
	// Empty means "include everything that matches Extensions".
	IncludeGlobs []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	// These merge ignore rules from config and CLI (e.g. --ignore).
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Config is the resolved configuration for this run. It supplies the
	// viewport height and pass limit; nil means config.NewConfig().
	Config *config.Config
}

// DefaultExtensions returns the default set of row-file extensions.
func DefaultExtensions() []string {
	return []string{".txt", ".log", ".md", ".markdown"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	if o.Config != nil && len(o.Config.Extensions) > 0 {
		return o.Config.Extensions
	}
	return DefaultExtensions()
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// effectiveConfig returns the run configuration, defaulting if nil.
func (o Options) effectiveConfig() *config.Config {
	if o.Config == nil {
		return config.NewConfig()
	}
	return o.Config
}
