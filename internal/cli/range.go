package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/logging"
	"github.com/yaklabco/govlist/internal/ui/pretty"
	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// calcFlags describe an ad-hoc list: its length plus heights already measured.
type calcFlags struct {
	list   listFlags
	items  int
	sets   []string
	format string
}

func (f *calcFlags) register(cmd *cobra.Command) {
	f.list.register(cmd)
	cmd.Flags().IntVar(&f.items, "items", 1000, "number of items in the list")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil,
		"measured height as index=height (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text, table, json")
}

// calculator loads configuration and builds a calculator with every --set
// height applied in one batch.
func (f *calcFlags) calculator(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, *virtual.Calculator, error) {
	f.list.apply(cmd, cliCfg)
	if cmd.Flags().Changed("format") {
		format, err := config.ParseOutputFormat(f.format)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		cliCfg.Format = format
	}

	loadResult, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return nil, nil, err
	}
	cfg := loadResult.Config

	updates, err := parseHeightSets(f.sets)
	if err != nil {
		return nil, nil, err
	}

	engine, err := newEngine(cfg, commandLogger(cmd))
	if err != nil {
		return nil, nil, err
	}

	calc, err := engine.New(f.items)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if _, err := calc.UpdateHeights(updates); err != nil {
		return nil, nil, fmt.Errorf("%w: --set: %w", ErrUsage, err)
	}

	commandLogger(cmd).Debug("calculator ready",
		logging.FieldItems, calc.ItemCount(),
		logging.FieldUpdates, len(updates),
		logging.FieldTotalHeight, calc.TotalHeight(),
	)

	return cfg, calc, nil
}

// parseHeightSets parses "index=height" pairs.
func parseHeightSets(values []string) ([]virtual.HeightUpdate, error) {
	updates := make([]virtual.HeightUpdate, 0, len(values))
	for _, value := range values {
		indexText, heightText, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("%w: --set %q: expected index=height", ErrUsage, value)
		}

		index, err := strconv.Atoi(strings.TrimSpace(indexText))
		if err != nil {
			return nil, fmt.Errorf("%w: --set %q: bad index: %w", ErrUsage, value, err)
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(heightText), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: --set %q: bad height: %w", ErrUsage, value, err)
		}

		updates = append(updates, virtual.HeightUpdate{Index: index, Height: height})
	}
	return updates, nil
}

// rangeReport is the JSON form of a visible range query.
type rangeReport struct {
	Offset      float64               `json:"offset"`
	Height      float64               `json:"height"`
	StartIndex  int                   `json:"start_index"`
	EndIndex    int                   `json:"end_index"`
	ItemCount   int                   `json:"item_count"`
	TotalHeight float64               `json:"total_height"`
	Version     uint64                `json:"version"`
	Dirty       *virtual.DirtyRange   `json:"dirty,omitempty"`
	Items       []virtual.VirtualItem `json:"items"`
}

func newRangeCommand() *cobra.Command {
	flags := &calcFlags{}
	var offset float64

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Compute the items to render for a scroll position",
		Long: `Compute the visible range of a virtualized list: the items that
intersect the viewport plus the overscan on each side, with their pixel
positions.

Items start at the estimated height. Use --set to report measured heights
before the range is computed.

Examples:
  govlist range --items 1000 --offset 3600
  govlist range --items 50 --set 3=120 --set 4=12 --format table
  govlist range --items 1000 --offset 0 --height 800 --format json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRange(cmd, flags, offset)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&offset, "offset", 0, "scroll offset from the top of the list")

	return cmd
}

func runRange(cmd *cobra.Command, flags *calcFlags, offset float64) error {
	cfg, calc, err := flags.calculator(cmd, &config.Config{})
	if err != nil {
		return err
	}

	dirty, hasDirty := calc.ConsumeDirtyRange()
	visible := calc.VisibleRange(offset, cfg.ContainerHeight)

	commandLogger(cmd).Debug("visible range computed",
		logging.FieldScrollOffset, offset,
		logging.FieldContainerHeight, cfg.ContainerHeight,
		logging.FieldStart, visible.StartIndex(),
		logging.FieldEnd, visible.EndIndex(),
	)

	out := cmd.OutOrStdout()

	switch cfg.Format {
	case config.FormatJSON:
		report := rangeReport{
			Offset:      offset,
			Height:      cfg.ContainerHeight,
			StartIndex:  visible.StartIndex(),
			EndIndex:    visible.EndIndex(),
			ItemCount:   calc.ItemCount(),
			TotalHeight: calc.TotalHeight(),
			Version:     calc.Version(),
			Items:       visible.Items(),
		}
		if hasDirty {
			report.Dirty = &dirty
		}
		return writeJSON(out, report)

	case config.FormatTable:
		colorEnabled := pretty.IsColorEnabled(colorMode(cmd), out)
		table := pretty.NewTableFormatter(pretty.NewStyles(colorEnabled), colorEnabled, terminalWidth(out))
		_, err := io.WriteString(out, table.FormatRange(visible, pretty.Viewport{Offset: offset, Height: cfg.ContainerHeight}))
		return err

	default:
		fmt.Fprintf(out, "%s of %d, total height %s\n",
			visible.String(), calc.ItemCount(), pretty.FormatPixels(calc.TotalHeight()))
		for item := range visible.All() {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", item.Index,
				pretty.FormatPixels(item.Start), pretty.FormatPixels(item.Size), pretty.FormatPixels(item.End))
		}
		return nil
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
