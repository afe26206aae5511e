// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/envscout/internal/config"
	"github.com/invowk/envscout/internal/pyenv"
	"github.com/invowk/envscout/internal/testutil"
)

// runRoot executes the command tree with args and returns stdout.
func runRoot(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return app.stdout.(interface{ String() string }).String(), err
}

func TestList_JSON(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	base := t.TempDir()
	makeVenv(t, filepath.Join(base, "a"), "3.8.10")
	makeVenv(t, filepath.Join(base, "b"), "3.11.2")
	testutil.MustMkdirAll(t, filepath.Join(base, "not-a-venv"), 0o755)

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "list", "--supported=false", "--skipped", "-f", "json", base)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}

	var report listReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decoding list output: %v\n%s", err, out)
	}

	versions := make([]string, len(report.Environments))
	for i, e := range report.Environments {
		versions[i] = e.Version
	}
	if want := []string{"3.12.4", "3.8.10", "3.11.2"}; !slices.Equal(versions, want) {
		t.Errorf("versions = %v, want %v", versions, want)
	}
	if report.Environments[0].Kind != "in-process" {
		t.Errorf("first environment kind = %q, want in-process", report.Environments[0].Kind)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Code != "not_an_environment" {
		t.Errorf("skipped = %+v, want one not_an_environment", report.Skipped)
	}
}

func TestList_Require(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	base := t.TempDir()
	makeVenv(t, filepath.Join(base, "old"), "2.7.18")
	makeVenv(t, filepath.Join(base, "new"), "3.11.2")

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "list", "--supported=false", "-f", "json", "--require", ">=3.8, <3.12", base)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	var report listReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decoding list output: %v", err)
	}
	if len(report.Environments) != 1 || report.Environments[0].Version != "3.11.2" {
		t.Errorf("environments = %+v, want only 3.11.2", report.Environments)
	}
}

func TestList_RequireNoMatch(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	_, err := runRoot(t, app, "list", "--supported=false", "--require", ">=4")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != ExitNoMatch {
		t.Errorf("list error = %v, want ExitError{%d}", err, ExitNoMatch)
	}
}

func TestList_InvalidRequire(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	if _, err := runRoot(t, app, "list", "--require", "not a constraint"); err == nil {
		t.Error("list with an invalid constraint should fail")
	}
}

func TestList_ScanDirsFromConfig(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	venv := makeVenv(t, t.TempDir(), "3.9.1")
	cfg := config.DefaultConfig()
	cfg.ScanDirs = []string{venv}
	cfg.Output.Format = config.FormatJSON

	app, _, _ := testApp(t, cfg)
	out, err := runRoot(t, app, "list", "--supported=false")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if !strings.Contains(out, `"version": "3.9.1"`) {
		t.Errorf("list output does not include the configured scan dir:\n%s", out)
	}
}

func TestProbe(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	venv := makeVenv(t, t.TempDir(), "3.8.10")

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "probe", venv)
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
	if out != "3.8.10\n" {
		t.Errorf("probe output = %q, want %q", out, "3.8.10\n")
	}
}

func TestProbe_Host(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "probe")
	if err != nil {
		t.Fatalf("probe error: %v", err)
	}
	if out != "3.12.4\n" {
		t.Errorf("probe output = %q, want %q", out, "3.12.4\n")
	}
}

func TestProbe_Failure(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	root := t.TempDir()
	testutil.MakeVirtualenv(t, root, testutil.VirtualenvOptions{
		Activate: true,
		Python:   &testutil.FakePython{VersionOutput: "not a version"},
	})

	app, _, _ := testApp(t, nil)
	_, err := runRoot(t, app, "probe", root)
	if !errors.Is(err, pyenv.ErrUnparsableVersion) {
		t.Errorf("probe error = %v, want ErrUnparsableVersion", err)
	}
}

func TestSyspath(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	venv := makeVenv(t, t.TempDir(), "3.8.10")

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "syspath", venv)
	if err != nil {
		t.Fatalf("syspath error: %v", err)
	}
	if want := filepath.Join(venv, "lib") + "\n"; out != want {
		t.Errorf("syspath output = %q, want %q", out, want)
	}
}

func TestSyspath_HostJSON(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "syspath", "host", "-f", "json")
	if err != nil {
		t.Fatalf("syspath error: %v", err)
	}
	var rec envRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decoding syspath output: %v", err)
	}
	if !slices.Equal(rec.SearchPath, []string{"/host/lib/python3.12"}) {
		t.Errorf("search path = %v", rec.SearchPath)
	}
}

func TestActivationLine(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	root := filepath.Join(t.TempDir(), "my venv")
	testutil.MakeVirtualenv(t, root, testutil.VirtualenvOptions{Activate: true})
	testutil.MustWriteFile(t, pyenv.HostLayout().InterpreterPath(root), nil, 0o755)

	line, err := activationLine(root)
	if err != nil {
		t.Fatalf("activationLine() error: %v", err)
	}
	want := ". '" + pyenv.HostLayout().ActivatePath(root) + "'"
	if line != want {
		t.Errorf("activationLine() = %q, want %q", line, want)
	}

	if _, err := activationLine(t.TempDir()); !errors.Is(err, pyenv.ErrNotAnEnvironment) {
		t.Errorf("activationLine(empty dir) error = %v, want ErrNotAnEnvironment", err)
	}
}

func TestEval_Host(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "eval", "host", "{'a': (1,)}")
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if out != "{'a': (1,)}\n" {
		t.Errorf("eval output = %q", out)
	}
}

func TestEval_HostRejectsNonLiteral(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	if _, err := runRoot(t, app, "eval", "host", "__import__('os')"); !errors.Is(err, pyenv.ErrNotLiteral) {
		t.Errorf("eval error = %v, want ErrNotLiteral", err)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "explain")
	if err != nil {
		t.Fatalf("explain error: %v", err)
	}
	for _, name := range []string{"process_launch_failed", "not_an_environment", "config_invalid"} {
		if !strings.Contains(out, name+"\n") {
			t.Errorf("explain list missing %q:\n%s", name, out)
		}
	}
}

func TestExplain_One(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	out, err := runRoot(t, app, "explain", "--style", "notty", "not-an-environment")
	if err != nil {
		t.Fatalf("explain error: %v", err)
	}
	if !strings.Contains(out, "activate") {
		t.Errorf("explain output does not describe the virtualenv layout:\n%s", out)
	}
}

func TestExplain_Unknown(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t, nil)
	if _, err := runRoot(t, app, "explain", "no_such_issue"); err == nil {
		t.Error("explain with an unknown name should fail")
	}
}

func TestGetVersionString(t *testing.T) {
	if got := getVersionString(); got != "dev (built from source)" {
		t.Errorf("getVersionString() = %q", got)
	}
}
