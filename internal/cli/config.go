package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yaklabco/govlist/internal/configloader"
	"github.com/yaklabco/govlist/internal/ui/pretty"
	"github.com/yaklabco/govlist/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
		Long: `Inspect the configuration govlist resolves from its layers.

Precedence, highest first: command-line flags, GOVLIST_* environment
variables, --config, the nearest .govlist.yml, the user config, the system
config, and the built-in defaults.`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigEnvCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadResult, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, loadResult.Config)
			case "yaml":
				data, err := loadResult.Config.ToYAML()
				if err != nil {
					return fmt.Errorf("render config: %w", err)
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration file or the resolved configuration",
		Long: `Validate a configuration file on its own, layered over the defaults.
Without a file, the full set of configuration layers is resolved and checked.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return validateFile(cmd.OutOrStdout(), args[0])
			}

			loadResult, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, warning := range loadResult.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if len(loadResult.LoadedFrom) == 0 {
				fmt.Fprintln(out, "configuration is valid (defaults only)")
				return nil
			}
			for _, path := range loadResult.LoadedFrom {
				fmt.Fprintf(out, "loaded %s\n", path)
			}
			fmt.Fprintln(out, "configuration is valid")
			return nil
		},
	}
}

func validateFile(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	fileCfg, err := config.FromYAML(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfig, path, err)
	}

	result := configloader.ValidateWithFile(configloader.MergeAll(config.NewConfig(), fileCfg), path)
	for _, message := range result.AllMessages() {
		fmt.Fprintln(out, message)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: %d invalid %s in %s", ErrConfig,
			len(result.Errors), pretty.Plural(len(result.Errors), "value", "values"), path)
	}

	fmt.Fprintf(out, "%s is valid\n", path)
	return nil
}

func newConfigEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables govlist reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, envVar := range configloader.ListEnvVars() {
				value := "-"
				if v, ok := os.LookupEnv(envVar.Name); ok {
					value = v
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", envVar.Name, value, envVar.Description)
			}
			return tw.Flush()
		},
	}
}
