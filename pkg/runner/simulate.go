package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/govlist/pkg/rangecache"
	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// ErrInvalidViewport is returned when a simulator has no positive container height.
var ErrInvalidViewport = errors.New("runner: container height must be positive")

// Simulation is the outcome of driving one list until its heights settle.
type Simulation struct {
	// Items is the number of rows in the list.
	Items int `json:"items"`

	// Passes is the number of full top-to-bottom scroll passes performed,
	// including the final pass that changed nothing.
	Passes int `json:"passes"`

	// PassUpdates holds the number of real height changes made in each pass.
	PassUpdates []int `json:"pass_updates"`

	// Steps is the number of viewport positions visited over all passes.
	Steps int `json:"steps"`

	// Version is the calculator's mutation counter at the end.
	Version uint64 `json:"version"`

	// EstimatedHeight is the list height before any measurement.
	EstimatedHeight float64 `json:"estimated_height"`

	// TotalHeight is the list height after the last pass.
	TotalHeight float64 `json:"total_height"`

	// ExplicitCount is the number of rows whose height differs from the estimate.
	ExplicitCount int `json:"explicit_count"`

	// Cache holds the visible-range memo counters.
	Cache rangecache.Stats `json:"cache"`

	// Converged is true when the last pass produced no height change.
	Converged bool `json:"converged"`
}

// Updates returns the total number of real height changes.
func (s *Simulation) Updates() int {
	total := 0
	for _, n := range s.PassUpdates {
		total += n
	}
	return total
}

// Simulator plays the part of a renderer for one list at a time: it scrolls
// through the list a viewport at a time, measures every row it is handed,
// and reports the measurements back to the calculator.
type Simulator struct {
	// Factory builds the calculator for each list.
	Factory virtual.Factory

	// Measurer reports the rendered height of a row.
	Measurer rowsource.Measurer

	// ContainerHeight is the viewport height.
	ContainerHeight float64

	// MaxPasses bounds the number of passes; values below 1 mean 1.
	MaxPasses int

	// Logger receives a debug line per pass. May be nil.
	Logger *log.Logger
}

// Run simulates src until a pass changes nothing or MaxPasses is reached.
// An unconverged result is not an error.
func (s *Simulator) Run(ctx context.Context, src rowsource.Source) (*Simulation, error) {
	if s.ContainerHeight <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidViewport, s.ContainerHeight)
	}

	calc, err := s.Factory(src.Len())
	if err != nil {
		return nil, fmt.Errorf("build calculator: %w", err)
	}

	sim := &Simulation{
		Items:           src.Len(),
		EstimatedHeight: calc.TotalHeight(),
	}

	maxPasses := max(1, s.MaxPasses)
	for pass := 1; pass <= maxPasses; pass++ {
		changed, steps, err := s.pass(ctx, calc, src)
		if err != nil {
			return nil, err
		}

		sim.Passes = pass
		sim.Steps += steps
		sim.PassUpdates = append(sim.PassUpdates, changed)

		if s.Logger != nil {
			s.Logger.Debug("pass complete",
				"pass", pass,
				"updates", changed,
				"total_height", calc.TotalHeight(),
			)
		}

		if changed == 0 {
			sim.Converged = true
			break
		}
	}

	sim.Version = calc.Version()
	sim.TotalHeight = calc.TotalHeight()
	sim.ExplicitCount = calc.ExplicitCount()
	sim.Cache = calc.CacheStats()

	return sim, nil
}

// pass scrolls from the top to the bottom of the list once.
func (s *Simulator) pass(ctx context.Context, calc *virtual.Calculator, src rowsource.Source) (int, int, error) {
	changed := 0
	steps := 0

	for offset := 0.0; ; offset += s.ContainerHeight {
		if err := ctx.Err(); err != nil {
			return 0, 0, fmt.Errorf("simulation cancelled: %w", err)
		}

		visible := calc.VisibleRange(offset, s.ContainerHeight)
		steps++

		updates := make([]virtual.HeightUpdate, 0, visible.Len())
		for item := range visible.All() {
			measured := s.Measurer.Measure(src.Row(item.Index))
			if measured != item.Size {
				updates = append(updates, virtual.HeightUpdate{Index: item.Index, Height: measured})
			}
		}

		n, err := calc.UpdateHeights(updates)
		if err != nil {
			return 0, 0, fmt.Errorf("report measurements at offset %v: %w", offset, err)
		}
		changed += n
		calc.ConsumeDirtyRange()

		if offset+s.ContainerHeight >= calc.TotalHeight() {
			break
		}
	}

	return changed, steps, nil
}
