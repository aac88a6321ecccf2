package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/logging"
	"github.com/yaklabco/govlist/internal/viewer"
	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/rowsource"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// viewEstimatedLines is the height, in terminal lines, an unmeasured row
// starts with in the viewer.
const viewEstimatedLines = 1

type viewFlags struct {
	overscan      int
	cacheCapacity int
	tabWidth      int
}

func newViewCommand() *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Page through a file as a virtualized list",
		Long: `Open a file in a full-screen pager backed by the calculator.

Each line of a text file, or each top-level block of a Markdown file, is one
row. Rows are wrapped to the terminal width and measured as they are drawn;
the status line shows the row at the top, the scroll offset against the
total height, and the calculator version.

Keys:
  up/down, j/k        scroll one line
  pgup/pgdn, b/space  scroll one page
  home/end            jump to the top or bottom
  g/G                 first or last row
  n/p                 next or previous row
  r                   reload the file
  q, esc              quit`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.overscan, "overscan", config.DefaultOverscan,
		"rows drawn beyond each edge of the screen")
	cmd.Flags().IntVar(&flags.cacheCapacity, "cache-capacity", config.DefaultCacheCapacity,
		"visible ranges memoized (0 disables)")
	cmd.Flags().IntVar(&flags.tabWidth, "tab-width", rowsource.DefaultTabWidth, "tab stop interval")

	return cmd
}

func runView(cmd *cobra.Command, path string, flags *viewFlags) error {
	logger := commandLogger(cmd)

	cliCfg := &config.Config{}
	if cmd.Flags().Changed("overscan") {
		cliCfg.Overscan = config.Ptr(flags.overscan)
	}
	if cmd.Flags().Changed("cache-capacity") {
		cliCfg.CacheCapacity = config.Ptr(flags.cacheCapacity)
	}

	loadResult, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}
	cfg := loadResult.Config

	load := func() (rowsource.Source, error) {
		src, err := rowsource.Load(path)
		if errors.Is(err, rowsource.ErrEmptySource) {
			return rowsource.Lines{}, nil
		}
		return src, err
	}

	src, err := load()
	if err != nil {
		return err
	}

	engine, err := virtual.Configure(
		viewEstimatedLines,
		cfg.OverscanOrDefault(),
		virtual.WithNoiseThreshold(cfg.NoiseThresholdOrDefault()),
		virtual.WithCacheCapacity(cfg.CacheCapacityOrDefault()),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialize terminal: %w", err)
	}

	v, err := viewer.New(screen, engine.Factory(), src, viewer.Options{
		Title:    filepath.Base(path),
		TabWidth: flags.tabWidth,
		Reload:   load,
	})
	if err != nil {
		screen.Fini()
		return err
	}

	runErr := v.Run(commandContext(cmd))
	screen.Fini()

	calc := v.Calculator()
	logger.Debug("viewer closed",
		logging.FieldPath, path,
		logging.FieldItems, calc.ItemCount(),
		logging.FieldTotalHeight, calc.TotalHeight(),
		logging.FieldHitRate, calc.CacheStats().HitRate(),
	)

	return runErr
}
