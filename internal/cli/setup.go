package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/govlist/internal/configloader"
	"github.com/yaklabco/govlist/internal/logging"
	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// listFlags are the layout flags shared by every command that builds a list.
type listFlags struct {
	estimate        float64
	overscan        int
	noiseThreshold  float64
	cacheCapacity   int
	containerHeight float64
	lineHeight      float64
	width           int
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.estimate, "estimate", config.DefaultEstimatedItemHeight,
		"estimated height of an unmeasured item")
	cmd.Flags().IntVar(&f.overscan, "overscan", config.DefaultOverscan,
		"items rendered beyond each edge of the viewport")
	cmd.Flags().Float64Var(&f.noiseThreshold, "noise-threshold", config.DefaultNoiseThreshold,
		"height differences at or below this are ignored")
	cmd.Flags().IntVar(&f.cacheCapacity, "cache-capacity", config.DefaultCacheCapacity,
		"visible ranges memoized per list (0 disables)")
	cmd.Flags().Float64Var(&f.containerHeight, "height", config.DefaultContainerHeight,
		"viewport height")
	cmd.Flags().Float64Var(&f.lineHeight, "line-height", config.DefaultLineHeight,
		"height of one wrapped display line")
	cmd.Flags().IntVar(&f.width, "width", config.DefaultWidth,
		"wrap width in terminal cells (0 disables wrapping)")
}

// apply copies only the flags the user set into cfg, so unset flags never
// shadow values from config files or the environment.
func (f *listFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("estimate") {
		cfg.EstimatedItemHeight = f.estimate
	}
	if changed("overscan") {
		cfg.Overscan = config.Ptr(f.overscan)
	}
	if changed("noise-threshold") {
		cfg.NoiseThreshold = config.Ptr(f.noiseThreshold)
	}
	if changed("cache-capacity") {
		cfg.CacheCapacity = config.Ptr(f.cacheCapacity)
	}
	if changed("height") {
		cfg.ContainerHeight = f.containerHeight
	}
	if changed("line-height") {
		cfg.LineHeight = f.lineHeight
	}
	if changed("width") {
		cfg.Width = f.width
	}
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// commandLogger returns the logger the root command attached to the
// command's context, or the package default.
func commandLogger(cmd *cobra.Command) *log.Logger {
	return logging.FromContext(commandContext(cmd))
}

// loadConfig resolves the layered configuration with cliCfg on top.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*configloader.LoadResult, error) {
	logger := commandLogger(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	finalCfg := loadResult.Config
	logger.Debug("configuration loaded",
		logging.FieldEstimate, finalCfg.EstimatedItemHeight,
		logging.FieldOverscan, finalCfg.OverscanOrDefault(),
		logging.FieldContainerHeight, finalCfg.ContainerHeight,
		logging.FieldWidth, finalCfg.Width,
	)

	return loadResult, nil
}

// newEngine builds the calculator engine described by cfg.
func newEngine(cfg *config.Config, logger *log.Logger) (*virtual.Engine, error) {
	engine, err := virtual.Configure(
		cfg.EstimatedItemHeight,
		cfg.OverscanOrDefault(),
		virtual.WithNoiseThreshold(cfg.NoiseThresholdOrDefault()),
		virtual.WithCacheCapacity(cfg.CacheCapacityOrDefault()),
		virtual.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return engine, nil
}

// newMeasurer builds the row measurer described by cfg.
func newMeasurer(cfg *config.Config) rowsource.WrapMeasurer {
	return rowsource.WrapMeasurer{
		Width:      cfg.Width,
		LineHeight: cfg.LineHeight,
	}
}

// terminalWidth returns the column count of w when it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// colorMode returns the --color persistent flag, defaulting to auto.
func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}

// usageArgs marks positional argument failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}
