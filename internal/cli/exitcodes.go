package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/govlist/internal/configloader"
	"github.com/yaklabco/govlist/pkg/runner"
)

// Exit codes for govlist.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitUnconverged indicates a simulation stopped before every height settled.
	ExitUnconverged = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrUnconverged is returned when a simulation hit its pass limit.
	ErrUnconverged = errors.New("heights did not converge")

	// ErrUsage marks invalid flags or arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig marks configuration that could not be loaded or validated.
	ErrConfig = errors.New("invalid configuration")

	// ErrFilesFailed is returned when at least one file could not be simulated.
	ErrFilesFailed = errors.New("some files could not be simulated")
)

// ExitCodeFromResult determines the exit code of a simulation run.
func ExitCodeFromResult(result *runner.Result) int {
	switch {
	case result == nil:
		return ExitSuccess
	case result.HasFailures():
		return ExitIOError
	case !result.AllConverged():
		return ExitUnconverged
	default:
		return ExitSuccess
	}
}

// ExitCodeFromError maps an error returned by a command to its exit code.
func ExitCodeFromError(err error) int {
	var validationErr *configloader.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUnconverged):
		return ExitUnconverged
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, ErrFilesFailed), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
