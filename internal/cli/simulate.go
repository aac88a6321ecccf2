package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/logging"
	"github.com/yaklabco/govlist/internal/ui/pretty"
	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/runner"
)

type simulateFlags struct {
	list           listFlags
	format         string
	ignore         []string
	extensions     []string
	maxPasses      int
	followSymlinks bool
	quiet          bool
}

func newSimulateCommand() *cobra.Command {
	var cfg config.Config
	flags := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate [paths...]",
		Short: "Scroll through files until every row height has settled",
		Long:  simulateLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args, &cfg, flags)
		},
	}

	addSimulateFlags(cmd, &cfg, flags)

	return cmd
}

const simulateLongDescription = `Drive a virtualized list through the render, measure, report cycle.

Every file becomes a list: one row per line for text files, one row per
top-level block for Markdown. Rows start at the estimated height. The list is
scrolled from top to bottom one viewport at a time; each rendered row is
measured as it would wrap in a terminal of --width cells and the measured
heights are reported back. Passes repeat until one changes nothing.

By default, simulates all .txt, .log, .md and .markdown files in the current
directory and subdirectories.

Exit status is 1 when a file is still changing after --max-passes.

Examples:
  govlist simulate                       # Simulate current directory
  govlist simulate docs/ --width 60      # Narrower terminal
  govlist simulate CHANGELOG.md --format table
  govlist simulate --format json         # Machine-readable output`

func runSimulate(cmd *cobra.Command, args []string, cfg *config.Config, flags *simulateFlags) error {
	logger := commandLogger(cmd)
	started := time.Now()

	flags.list.apply(cmd, cfg)
	if cmd.Flags().Changed("format") {
		format, err := config.ParseOutputFormat(flags.format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		cfg.Format = format
	}
	if cmd.Flags().Changed("max-passes") {
		cfg.MaxPasses = flags.maxPasses
	}
	cfg.Ignore = flags.ignore
	cfg.Extensions = flags.extensions

	loadResult, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}
	finalCfg := loadResult.Config

	engine, err := newEngine(finalCfg, logger)
	if err != nil {
		return err
	}

	simRunner := runner.New(engine, newMeasurer(finalCfg))
	simRunner.Logger = logger

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		ExcludeGlobs:   finalCfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           finalCfg.Jobs,
		Config:         finalCfg,
	}

	logger.Debug("starting simulation",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := simRunner.Run(commandContext(cmd), runOpts)
	if err != nil {
		return errors.Join(errors.New("simulation failed"), err)
	}

	logger.Debug("simulation finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
		logging.FieldUnconverged, result.Stats.FilesUnconverged,
		logging.FieldHitRate, result.Stats.Cache.HitRate(),
	)

	if err := reportSimulation(cmd, cmd.OutOrStdout(), finalCfg.Format, flags.quiet, result, time.Since(started)); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	switch ExitCodeFromResult(result) {
	case ExitIOError:
		return ErrFilesFailed
	case ExitUnconverged:
		return ErrUnconverged
	default:
		return nil
	}
}

func reportSimulation(
	cmd *cobra.Command, out io.Writer, format config.OutputFormat, quiet bool,
	result *runner.Result, elapsed time.Duration,
) error {
	if format == config.FormatJSON {
		return writeJSON(out, result)
	}

	colorEnabled := pretty.IsColorEnabled(colorMode(cmd), out)
	styles := pretty.NewStyles(colorEnabled)

	if quiet {
		_, err := io.WriteString(out, styles.FormatSummaryOneLine(result.Stats))
		return err
	}

	if format == config.FormatTable {
		table := pretty.NewTableFormatter(styles, colorEnabled, terminalWidth(out))
		_, err := io.WriteString(out, table.FormatSimulations(result))
		return err
	}

	for _, file := range result.Files {
		if _, err := io.WriteString(out, styles.FormatOutcome(file)); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(out, styles.FormatSummary(result.Stats)); err != nil {
		return err
	}
	_, err := io.WriteString(out, styles.Dim.Render(fmt.Sprintf("Finished in %s", elapsed.Round(time.Millisecond)))+"\n")
	return err
}

func addSimulateFlags(cmd *cobra.Command, cfg *config.Config, flags *simulateFlags) {
	flags.list.register(cmd)
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&flags.maxPasses, "max-passes", config.DefaultMaxPasses, "maximum scroll passes per file")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file extensions to pick up (e.g. .txt,.md)")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "walk symlinked directories")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print only a one-line summary (text and table formats)")
}
