package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/ui/pretty"
	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/virtual"
)

// targetReport is the JSON form of a scroll target query.
type targetReport struct {
	Index       int           `json:"index"`
	Align       virtual.Align `json:"align"`
	Offset      float64       `json:"offset"`
	Position    float64       `json:"position"`
	Size        float64       `json:"size"`
	TotalHeight float64       `json:"total_height"`
}

func newTargetCommand() *cobra.Command {
	flags := &calcFlags{}
	var index int
	var align string

	cmd := &cobra.Command{
		Use:   "target",
		Short: "Compute the scroll offset that brings an item into view",
		Long: `Compute the scroll offset that places an item at the start, center,
or end of the viewport. The offset is clamped to the scrollable extent of
the list.

Examples:
  govlist target --items 1000 --index 500
  govlist target --items 1000 --index 500 --align center
  govlist target --items 20 --index 19 --align end --set 19=200 --format json`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTarget(cmd, flags, index, align)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&index, "index", 0, "item to scroll to")
	cmd.Flags().StringVar(&align, "align", string(virtual.AlignStart), "alignment: start, center, end")

	return cmd
}

func runTarget(cmd *cobra.Command, flags *calcFlags, index int, alignText string) error {
	cliCfg := &config.Config{}
	if cmd.Flags().Changed("align") {
		if _, err := virtual.ParseAlign(alignText); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		cliCfg.Align = alignText
	}

	cfg, calc, err := flags.calculator(cmd, cliCfg)
	if err != nil {
		return err
	}

	align, err := virtual.ParseAlign(cfg.Align)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	offset, err := calc.ScrollTarget(index, cfg.ContainerHeight, align)
	if err != nil {
		return fmt.Errorf("%w: --index: %w", ErrUsage, err)
	}
	position, err := calc.ScrollPosition(index)
	if err != nil {
		return fmt.Errorf("%w: --index: %w", ErrUsage, err)
	}
	size, err := calc.GetHeight(index)
	if err != nil {
		return fmt.Errorf("%w: --index: %w", ErrUsage, err)
	}

	out := cmd.OutOrStdout()

	if cfg.Format == config.FormatJSON {
		return writeJSON(out, targetReport{
			Index:       index,
			Align:       align,
			Offset:      offset,
			Position:    position,
			Size:        size,
			TotalHeight: calc.TotalHeight(),
		})
	}

	fmt.Fprintln(out, pretty.FormatPixels(offset))
	return nil
}
