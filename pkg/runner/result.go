package runner

import (
	"encoding/json"

	"github.com/yaklabco/govlist/pkg/rangecache"
	"github.com/yaklabco/govlist/pkg/rowsource"
)

// FileOutcome is the simulation of one discovered file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string `json:"path"`

	// Kind is how the file was split into rows.
	Kind rowsource.Kind `json:"kind"`

	// Simulation is nil when the file was skipped or errored.
	Simulation *Simulation `json:"simulation,omitempty"`

	// Skipped is set for files that produced no rows.
	Skipped bool `json:"skipped,omitempty"`

	// Error is set if the file could not be processed.
	Error error `json:"-"`
}

// MarshalJSON includes the error message, which error values do not carry
// through encoding/json on their own.
func (o FileOutcome) MarshalJSON() ([]byte, error) {
	type plain FileOutcome
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(o)}
	if o.Error != nil {
		out.Error = o.Error.Error()
	}
	return json.Marshal(out)
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int `json:"files_discovered"`
	FilesProcessed  int `json:"files_processed"`
	FilesSkipped    int `json:"files_skipped"`
	FilesErrored    int `json:"files_errored"`

	// FilesUnconverged counts files still changing after the pass limit.
	FilesUnconverged int `json:"files_unconverged"`

	ItemsTotal   int `json:"items_total"`
	UpdatesTotal int `json:"updates_total"`
	PassesTotal  int `json:"passes_total"`

	// Cache sums the visible-range memo counters of every file.
	Cache rangecache.Stats `json:"cache"`
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered as discovered (sorted by path).
	Files []FileOutcome `json:"files"`

	Stats Stats `json:"stats"`
}

// HasFailures reports whether any file could not be processed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// AllConverged reports whether every processed file settled within the pass limit.
func (r *Result) AllConverged() bool {
	if r == nil {
		return true
	}
	return r.Stats.FilesUnconverged == 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	case outcome.Skipped:
		r.Stats.FilesSkipped++
		return
	case outcome.Simulation == nil:
		return
	}

	sim := outcome.Simulation
	r.Stats.FilesProcessed++
	r.Stats.ItemsTotal += sim.Items
	r.Stats.UpdatesTotal += sim.Updates()
	r.Stats.PassesTotal += sim.Passes
	r.Stats.Cache.Hits += sim.Cache.Hits
	r.Stats.Cache.Misses += sim.Cache.Misses
	r.Stats.Cache.Evictions += sim.Cache.Evictions

	if !sim.Converged {
		r.Stats.FilesUnconverged++
	}
}
