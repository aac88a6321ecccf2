// Package cli provides the Cobra command structure for govlist.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root govlist command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "govlist",
		Short: "Visible-range math for virtualized lists with measured row heights",
		Long: `govlist computes which rows of a very large list are on screen.

Rows start at an estimated height and are corrected once they have been
measured. A segment tree keeps offsets and lookups logarithmic, so a list of
tens of thousands of rows can be scrolled, re-measured and queried without
rescanning it. The range and target commands answer one-off layout questions;
simulate and view drive real files through the render, measure, report cycle.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if debug {
				level = "debug"
				logging.SetLevel(level)
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newRangeCommand())
	rootCmd.AddCommand(newTargetCommand())
	rootCmd.AddCommand(newSimulateCommand())
	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
