// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/syntax"
)

type (
	// FakePython describes the behavior of a fake interpreter script.
	FakePython struct {
		// VersionOutput is printed in response to --version.
		VersionOutput string
		// VersionOnStderr prints VersionOutput on stderr, as Python < 3.4 does.
		VersionOnStderr bool
		// ExitCode is the status returned for --version and the sys.path query.
		ExitCode int
		// SearchPathOutput is printed in response to the "-S -c" sys.path query.
		SearchPathOutput string
		// Delegate, when set, is exec'd with the original arguments for any
		// other invocation (e.g. a worker bootstrap).
		Delegate string
	}

	// SpawnCounter reads the invocation log a fake interpreter appends to.
	SpawnCounter struct {
		path string
	}

	// VirtualenvOptions selects which entries MakeVirtualenv creates.
	VirtualenvOptions struct {
		Activate bool
		Python   *FakePython
	}
)

// Write installs the fake interpreter at path and returns its spawn counter.
func (f FakePython) Write(t testing.TB, path string) *SpawnCounter {
	t.Helper()

	counter := &SpawnCounter{path: path + ".calls"}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "echo \"$*\" >> %s\n", quote(t, counter.path))
	b.WriteString("case \"$1\" in\n")

	versionRedirect := ""
	if f.VersionOnStderr {
		versionRedirect = " >&2"
	}
	fmt.Fprintf(&b, "--version)\n  printf '%%s\\n' %s%s\n  exit %d\n  ;;\n",
		quote(t, f.VersionOutput), versionRedirect, f.ExitCode)
	fmt.Fprintf(&b, "-S)\n  printf '%%s' %s\n  exit %d\n  ;;\n",
		quote(t, f.SearchPathOutput), f.ExitCode)
	b.WriteString("esac\n")
	if f.Delegate != "" {
		fmt.Fprintf(&b, "exec %s \"$@\"\n", quote(t, f.Delegate))
	}
	b.WriteString("exit 2\n")

	MustWriteFile(t, path, []byte(b.String()), 0o755)
	return counter
}

// Count returns how many times the fake interpreter has been started.
func (c *SpawnCounter) Count(t testing.TB) int {
	t.Helper()
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("failed to read spawn log %s: %v", c.path, err)
	}
	return bytes.Count(data, []byte("\n"))
}

// MakeVirtualenv creates bin/activate and/or bin/python under root according
// to opts and returns the interpreter path and its counter (nil when no
// interpreter was requested).
func MakeVirtualenv(t testing.TB, root string, opts VirtualenvOptions) (string, *SpawnCounter) {
	t.Helper()

	bin := filepath.Join(root, "bin")
	MustMkdirAll(t, bin, 0o755)

	if opts.Activate {
		MustWriteFile(t, filepath.Join(bin, "activate"), []byte("# activate\n"), 0o644)
	}

	python := filepath.Join(bin, "python")
	if opts.Python == nil {
		return python, nil
	}
	return python, opts.Python.Write(t, python)
}

func quote(t testing.TB, s string) string {
	t.Helper()
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		t.Fatalf("cannot quote %q for sh: %v", s, err)
	}
	return q
}
