package cli_test

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/govlist/internal/cli"
	"github.com/yaklabco/govlist/internal/configloader"
	"github.com/yaklabco/govlist/pkg/runner"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)

	assert.Equal(t, "govlist", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"range", "target", "simulate", "view", "init", "config", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if !assert.NoError(t, err, "subcommand %q", name) {
			continue
		}
		assert.Equal(t, name, subCmd.Name())
	}

	for _, path := range [][]string{{"config", "show"}, {"config", "validate"}, {"config", "env"}} {
		subCmd, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[1], subCmd.Name())
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	listFlags := []string{
		"estimate", "overscan", "noise-threshold", "cache-capacity",
		"height", "line-height", "width",
	}

	tests := []struct {
		command string
		flags   []string
	}{
		{command: "range", flags: append([]string{"items", "set", "format", "offset"}, listFlags...)},
		{command: "target", flags: append([]string{"items", "set", "format", "index", "align"}, listFlags...)},
		{
			command: "simulate",
			flags:   append([]string{"format", "jobs", "max-passes", "ignore", "ext", "follow-symlinks"}, listFlags...),
		},
		{command: "view", flags: []string{"overscan", "cache-capacity", "tab-width"}},
		{command: "init", flags: []string{"force", "full", "format", "output"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.command, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			subCmd, _, err := cmd.Find([]string{testCase.command})
			require.NoError(t, err)

			for _, flagName := range testCase.flags {
				assert.NotNil(t, subCmd.Flags().Lookup(flagName), "flag --%s", flagName)
			}
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, flagName := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flagName), "global flag --%s", flagName)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	})
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestSimulateAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	simulateCmd, _, err := cmd.Find([]string{"simulate"})
	require.NoError(t, err)

	assert.NoError(t, simulateCmd.Args(simulateCmd, []string{"a.txt", "b.md", "docs/"}))
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *runner.Result
		want   int
	}{
		{name: "nil", result: nil, want: cli.ExitSuccess},
		{name: "clean", result: &runner.Result{}, want: cli.ExitSuccess},
		{
			name:   "unconverged",
			result: &runner.Result{Stats: runner.Stats{FilesUnconverged: 1}},
			want:   cli.ExitUnconverged,
		},
		{
			name:   "failures win",
			result: &runner.Result{Stats: runner.Stats{FilesErrored: 1, FilesUnconverged: 1}},
			want:   cli.ExitIOError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, cli.ExitCodeFromResult(testCase.result))
		})
	}
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: cli.ExitSuccess},
		{name: "unconverged", err: cli.ErrUnconverged, want: cli.ExitUnconverged},
		{name: "usage", err: errors.Join(cli.ErrUsage, errors.New("bad flag")), want: cli.ExitInvalidUsage},
		{name: "config", err: cli.ErrConfig, want: cli.ExitConfigError},
		{
			name: "validation",
			err:  &configloader.ValidationError{Field: "overscan", Message: "must be >= 0"},
			want: cli.ExitConfigError,
		},
		{name: "files failed", err: cli.ErrFilesFailed, want: cli.ExitIOError},
		{name: "missing file", err: fs.ErrNotExist, want: cli.ExitIOError},
		{name: "permission", err: fs.ErrPermission, want: cli.ExitIOError},
		{name: "other", err: errors.New("boom"), want: cli.ExitInternalError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, cli.ExitCodeFromError(testCase.err))
		})
	}
}
