// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
)

// waitDelay bounds how long Wait blocks on output pipes held open by a
// killed interpreter's children.
const waitDelay = 500 * time.Millisecond

// VersionFlag is the single argument passed to an interpreter to ask for its version.
const VersionFlag = "--version"

// versionPattern is anchored at the start of the combined output.
var versionPattern = regexp.MustCompile(`^Python (\d+)\.(\d+)\.(\d+)`)

// VersionInfo is a Python version triple. It is a value type and never mutated.
type VersionInfo struct {
	Major int `json:"major" yaml:"major" toml:"major"`
	Minor int `json:"minor" yaml:"minor" toml:"minor"`
	Micro int `json:"micro" yaml:"micro" toml:"micro"`
}

// String returns the dotted form, e.g. "3.6.5".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// Tag returns the "major.minor" form used for supported-version lists and grammars.
func (v VersionInfo) Tag() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare orders versions component-wise. It returns -1, 0 or +1.
func (v VersionInfo) Compare(o VersionInfo) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	return cmp.Compare(v.Micro, o.Micro)
}

// Less reports whether v orders before o.
func (v VersionInfo) Less(o VersionInfo) bool { return v.Compare(o) < 0 }

// Semver converts the triple for use with semver constraints.
func (v VersionInfo) Semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Micro), "", "")
}

// ParseVersionString parses a dotted version such as "3.11" or "3.6.5".
// Missing components default to zero; pre-release suffixes are rejected.
func ParseVersionString(s string) (VersionInfo, error) {
	sv, err := semver.NewVersion(s)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("parse version %q: %w", s, err)
	}
	if sv.Prerelease() != "" {
		return VersionInfo{}, fmt.Errorf("parse version %q: pre-release versions are not supported", s)
	}
	return VersionInfo{Major: int(sv.Major()), Minor: int(sv.Minor()), Micro: int(sv.Patch())}, nil
}

// ParseVersion extracts the version from interpreter output of the form
// "Python <major>.<minor>.<micro>". The match must start at the first byte.
func ParseVersion(output []byte) (VersionInfo, bool) {
	m := versionPattern.FindSubmatch(output)
	if m == nil {
		return VersionInfo{}, false
	}
	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(string(m[i+1]))
		if err != nil {
			// only reachable on overflow
			return VersionInfo{}, false
		}
		parts[i] = n
	}
	return VersionInfo{Major: parts[0], Minor: parts[1], Micro: parts[2]}, true
}

// ProbeVersion starts executable with VersionFlag, waits for it to exit and
// parses the reported version. Python 2 and early Python 3 print the version on
// stderr, later releases on stdout, so both streams are captured and stdout is
// matched first followed by stderr.
//
// Exactly one child process is spawned per call and failures are not retried.
func ProbeVersion(ctx context.Context, executable string) (VersionInfo, error) {
	stdout, stderr, err := runInterpreter(ctx, executable, VersionFlag)
	if err != nil {
		return VersionInfo{}, err
	}

	combined := append(stdout, stderr...)
	v, ok := ParseVersion(combined)
	if !ok {
		return VersionInfo{}, &UnparsableVersionError{Executable: executable, Output: string(combined)}
	}

	slog.Debug("probed python version", "executable", executable, "version", v.String())
	return v, nil
}

// runInterpreter runs executable to completion and returns its captured output.
// Start failures map to ProcessLaunchError, unsuccessful exits to
// NonZeroExitError. Once ctx is done its error is returned as is.
func runInterpreter(ctx context.Context, executable string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.WaitDelay = waitDelay

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil, &NonZeroExitError{
				Executable: executable,
				ExitCode:   exitErr.ExitCode(),
				Output:     truncate(outBuf.String()+errBuf.String(), 512),
			}
		}
		return nil, nil, &ProcessLaunchError{Executable: executable, Err: err}
	}

	return outBuf.Bytes(), errBuf.Bytes(), nil
}
