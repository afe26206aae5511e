// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEnvironment is the root of every error reported by this package.
var ErrInvalidEnvironment = errors.New("invalid python environment")

var (
	// ErrProcessLaunchFailure is returned when an interpreter cannot be started.
	ErrProcessLaunchFailure = fmt.Errorf("%w: process launch failed", ErrInvalidEnvironment)
	// ErrNonZeroExit is returned when an interpreter exits with a non-zero status.
	ErrNonZeroExit = fmt.Errorf("%w: non-zero exit", ErrInvalidEnvironment)
	// ErrUnparsableVersion is returned when version output does not match "Python X.Y.Z".
	ErrUnparsableVersion = fmt.Errorf("%w: unparsable version", ErrInvalidEnvironment)
	// ErrUnparsableSearchPath is returned when the sys.path report cannot be decoded.
	ErrUnparsableSearchPath = fmt.Errorf("%w: unparsable search path", ErrInvalidEnvironment)
	// ErrNotAnEnvironment is returned when a directory lacks the virtualenv layout.
	ErrNotAnEnvironment = fmt.Errorf("%w: not a virtual environment", ErrInvalidEnvironment)
	// ErrExecutableNotFound is returned when a bare name does not resolve on PATH.
	ErrExecutableNotFound = fmt.Errorf("%w: executable not found", ErrInvalidEnvironment)
	// ErrNoWorkerFactory is returned when a discovered environment is asked for an
	// execution channel but no worker factory was configured.
	ErrNoWorkerFactory = errors.New("no worker factory configured")
)

type (
	// ProcessLaunchError reports that the executable could not be started.
	ProcessLaunchError struct {
		Executable string
		Err        error
	}

	// NonZeroExitError reports that the executable ran but exited unsuccessfully.
	NonZeroExitError struct {
		Executable string
		ExitCode   int
		Output     string
	}

	// UnparsableVersionError reports version output that matched no version pattern.
	UnparsableVersionError struct {
		Executable string
		Output     string
	}

	// UnparsableSearchPathError reports a sys.path report that could not be decoded.
	UnparsableSearchPathError struct {
		Executable string
		Err        error
	}

	// NotAnEnvironmentError reports a directory missing one or more virtualenv entries.
	NotAnEnvironmentError struct {
		Path    string
		Missing []string
	}

	// ExecutableNotFoundError reports a name that did not resolve on PATH.
	ExecutableNotFoundError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Executable, e.Err)
}

// Unwrap exposes both the sentinel and the underlying OS error.
func (e *ProcessLaunchError) Unwrap() []error { return []error{ErrProcessLaunchFailure, e.Err} }

// Error implements the error interface.
func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Executable, e.ExitCode)
}

// Unwrap returns ErrNonZeroExit for errors.Is() compatibility.
func (e *NonZeroExitError) Unwrap() error { return ErrNonZeroExit }

// Error implements the error interface.
func (e *UnparsableVersionError) Error() string {
	return fmt.Sprintf("%s: unrecognized version output %q", e.Executable, truncate(e.Output, 80))
}

// Unwrap returns ErrUnparsableVersion for errors.Is() compatibility.
func (e *UnparsableVersionError) Unwrap() error { return ErrUnparsableVersion }

// Error implements the error interface.
func (e *UnparsableSearchPathError) Error() string {
	return fmt.Sprintf("%s: cannot decode sys.path report: %v", e.Executable, e.Err)
}

// Unwrap exposes both the sentinel and the decode error.
func (e *UnparsableSearchPathError) Unwrap() []error {
	return []error{ErrUnparsableSearchPath, e.Err}
}

// Error implements the error interface.
func (e *NotAnEnvironmentError) Error() string {
	return fmt.Sprintf("%s is not a virtual environment (missing %s)", e.Path, strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrNotAnEnvironment for errors.Is() compatibility.
func (e *NotAnEnvironmentError) Unwrap() error { return ErrNotAnEnvironment }

// Error implements the error interface.
func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable %q not found in PATH", e.Name)
}

// Unwrap exposes both the sentinel and the lookup error.
func (e *ExecutableNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecutableNotFound}
	}
	return []error{ErrExecutableNotFound, e.Err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
