package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// Runner simulates every discovered file against one calculator engine.
type Runner struct {
	// Engine builds a fresh calculator per file.
	Engine *virtual.Engine

	// Measurer reports row heights; shared read-only by all workers.
	Measurer rowsource.Measurer

	// Logger is handed to each Simulator. May be nil.
	Logger *log.Logger
}

// New creates a Runner for the given engine and measurer.
func New(engine *virtual.Engine, measurer rowsource.Measurer) *Runner {
	return &Runner{Engine: engine, Measurer: measurer}
}

// Run discovers files under opts.Paths and simulates them concurrently.
// Outcomes are returned in discovery order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	cfg := opts.effectiveConfig()
	sim := &Simulator{
		Factory:         r.Engine.Factory(),
		Measurer:        r.Measurer,
		ContainerHeight: cfg.ContainerHeight,
		MaxPasses:       cfg.MaxPasses,
		Logger:          r.Logger,
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, sim, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker simulates files from workCh and sends outcomes to outCh.
func (r *Runner) worker(ctx context.Context, sim *Simulator, workCh <-chan string, outCh chan<- FileOutcome) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- simulateFile(ctx, sim, path):
		}
	}
}

// simulateFile loads one file and runs it through sim.
func simulateFile(ctx context.Context, sim *Simulator, path string) FileOutcome {
	outcome := FileOutcome{Path: path, Kind: rowsource.KindForPath(path)}

	src, err := rowsource.Load(path)
	if err != nil {
		if errors.Is(err, rowsource.ErrEmptySource) {
			outcome.Skipped = true
			return outcome
		}
		outcome.Error = err
		return outcome
	}

	result, err := sim.Run(ctx, src)
	if err != nil {
		outcome.Error = fmt.Errorf("%s: %w", path, err)
		return outcome
	}
	outcome.Simulation = result

	return outcome
}
