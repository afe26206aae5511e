// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/invowk/envscout/internal/pyenv"
	"github.com/invowk/envscout/internal/testutil"
)

func testHost(version pyenv.VersionInfo) pyenv.Host {
	return pyenv.Host{
		Prefix:     "/host/prefix",
		Executable: "/host/prefix/bin/python",
		Version:    version,
	}
}

func TestFindInDirectories_SkipsInvalid(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	base := t.TempDir()
	noActivate := filepath.Join(base, "no-activate")
	valid := filepath.Join(base, "valid")
	noPython := filepath.Join(base, "no-python")

	testutil.MakeVirtualenv(t, noActivate, testutil.VirtualenvOptions{Python: &testutil.FakePython{}})
	testutil.MakeVirtualenv(t, valid, testutil.VirtualenvOptions{Activate: true, Python: &testutil.FakePython{}})
	testutil.MakeVirtualenv(t, noPython, testutil.VirtualenvOptions{Activate: true})

	d := New(Options{Host: testHost(pyenv.VersionInfo{Major: 3, Minor: 6, Micro: 5})})
	envs := slices.Collect(d.FindInDirectories([]string{noActivate, valid, noPython}))

	if len(envs) != 1 {
		t.Fatalf("FindInDirectories() yielded %d environments, want 1", len(envs))
	}
	if envs[0].BasePath() != valid {
		t.Errorf("BasePath() = %q, want %q", envs[0].BasePath(), valid)
	}
	if envs[0].Executable() != filepath.Join(valid, "bin", "python") {
		t.Errorf("Executable() = %q", envs[0].Executable())
	}

	diags := d.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("Diagnostics() = %d entries, want 2", len(diags))
	}
	for i, want := range []string{noActivate, noPython} {
		if diags[i].Path != want || diags[i].Code != CodeNotAnEnvironment || diags[i].Severity != SeverityWarning {
			t.Errorf("diagnostic %d = %+v", i, diags[i])
		}
		if !errors.Is(diags[i].Cause, pyenv.ErrNotAnEnvironment) {
			t.Errorf("diagnostic %d cause = %v", i, diags[i].Cause)
		}
	}

	d.ResetDiagnostics()
	if len(d.Diagnostics()) != 0 {
		t.Error("ResetDiagnostics() left entries behind")
	}
}

func TestFindInDirectories_EndToEnd(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	root := t.TempDir()
	testutil.MakeVirtualenv(t, root, testutil.VirtualenvOptions{
		Activate: true,
		Python:   &testutil.FakePython{VersionOutput: "Python 3.6.5", VersionOnStderr: true},
	})

	d := New(Options{Host: testHost(pyenv.VersionInfo{Major: 3, Minor: 11})})
	envs := slices.Collect(d.FindInDirectories([]string{root}))
	if len(envs) != 1 {
		t.Fatalf("yielded %d environments, want 1", len(envs))
	}

	v, err := envs[0].Version(context.Background())
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != (pyenv.VersionInfo{Major: 3, Minor: 6, Micro: 5}) {
		t.Errorf("Version() = %v, want 3.6.5", v)
	}
}

func TestFindInDirectories_StopsEarly(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	base := t.TempDir()
	var paths []string
	for _, name := range []string{"a", "b", "c"} {
		p := filepath.Join(base, name)
		testutil.MakeVirtualenv(t, p, testutil.VirtualenvOptions{Activate: true, Python: &testutil.FakePython{}})
		paths = append(paths, p)
	}

	d := New(Options{})
	var seen []string
	for env := range d.FindInDirectories(paths) {
		seen = append(seen, env.BasePath())
		break
	}
	if !slices.Equal(seen, paths[:1]) {
		t.Errorf("seen = %v", seen)
	}
}

func TestFindBySupportedVersions(t *testing.T) {
	testutil.SkipOnWindows(t)

	prefix := t.TempDir()
	bin := filepath.Join(prefix, "bin")
	c27 := testutil.FakePython{VersionOutput: "Python 2.7.18", VersionOnStderr: true}.Write(t, filepath.Join(bin, "python2.7"))
	c35 := testutil.FakePython{VersionOutput: "Python 3.5.9"}.Write(t, filepath.Join(bin, "python3.5"))
	t.Setenv("PATH", bin)

	d := New(Options{
		Host:              testHost(pyenv.VersionInfo{Major: 3, Minor: 6, Micro: 5}),
		SupportedVersions: []string{"2.7", "3.4", "3.5", "3.6"},
	})

	envs := slices.Collect(d.FindBySupportedVersions())
	if len(envs) != 3 {
		t.Fatalf("yielded %d environments, want 3", len(envs))
	}

	wantExe := []string{filepath.Join(bin, "python2.7"), filepath.Join(bin, "python3.5"), "/host/prefix/bin/python"}
	for i, env := range envs {
		if env.Executable() != wantExe[i] {
			t.Errorf("env %d executable = %q, want %q", i, env.Executable(), wantExe[i])
		}
		if env.Kind() != pyenv.KindDiscovered {
			t.Errorf("env %d kind = %v", i, env.Kind())
		}
	}
	if envs[0].BasePath() != prefix {
		t.Errorf("BasePath() = %q, want %q", envs[0].BasePath(), prefix)
	}
	if envs[2].BasePath() != "/host/prefix" {
		t.Errorf("host default BasePath() = %q", envs[2].BasePath())
	}

	if c27.Count(t) != 0 || c35.Count(t) != 0 {
		t.Error("enumeration must not probe versions")
	}

	diags := d.Diagnostics()
	if len(diags) != 1 || diags[0].Code != CodeExecutableNotFound || diags[0].Path != "python3.4" {
		t.Errorf("Diagnostics() = %+v", diags)
	}

	// Re-iterating repeats the lookups.
	if again := slices.Collect(d.FindBySupportedVersions()); len(again) != 3 {
		t.Errorf("second pass yielded %d environments", len(again))
	}
	if n := len(d.Diagnostics()); n != 2 {
		t.Errorf("second pass recorded %d diagnostics total, want 2", n)
	}
}

func TestDefaultAndInterpreter(t *testing.T) {
	t.Parallel()

	host := testHost(pyenv.VersionInfo{Major: 3, Minor: 6, Micro: 5})
	d := New(Options{Host: host})

	def := d.Default()
	if def.Kind() != pyenv.KindDiscovered || def.BasePath() != host.Prefix || def.Executable() != host.Executable {
		t.Errorf("Default() = %v (%v, %q)", def, def.Kind(), def.Executable())
	}
	if def.VersionState() != pyenv.StateUnset {
		t.Error("Default() must not probe")
	}

	in := d.Interpreter()
	if in.Kind() != pyenv.KindInProcess {
		t.Errorf("Interpreter().Kind() = %v", in.Kind())
	}
	if d.Interpreter() != in {
		t.Error("Interpreter() must return the same instance")
	}
	v, err := in.Version(context.Background())
	if err != nil || v != host.Version {
		t.Errorf("Interpreter().Version() = %v, %v", v, err)
	}
}

func TestNew_DefaultSupportedVersions(t *testing.T) {
	t.Parallel()

	d := New(Options{})
	if !slices.Equal(d.SupportedVersions(), DefaultSupportedVersions) {
		t.Errorf("SupportedVersions() = %v", d.SupportedVersions())
	}
}

func TestCreate_PropagatesErrors(t *testing.T) {
	t.Parallel()

	d := New(Options{})
	if _, err := d.Create(t.TempDir()); !errors.Is(err, pyenv.ErrNotAnEnvironment) {
		t.Errorf("Create() error = %v", err)
	}
	if _, err := d.ForName("python-missing-0.0"); !errors.Is(err, pyenv.ErrExecutableNotFound) {
		t.Errorf("ForName() error = %v", err)
	}
	if len(d.Diagnostics()) != 0 {
		t.Error("explicit construction must not record diagnostics")
	}
}

func TestWarmUp(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	bad := filepath.Join(dir, "bad")
	cGood := testutil.FakePython{VersionOutput: "Python 3.6.5"}.Write(t, good)
	testutil.FakePython{VersionOutput: "Python 3.6.5", ExitCode: 1}.Write(t, bad)

	goodEnv := pyenv.NewEnvironment("", good)
	envs := []*pyenv.Environment{goodEnv, pyenv.NewEnvironment("", bad), goodEnv}

	d := New(Options{})
	usable := d.WarmUp(context.Background(), envs, 2)

	if len(usable) != 2 || usable[0] != goodEnv || usable[1] != goodEnv {
		t.Errorf("WarmUp() = %v", usable)
	}
	if n := cGood.Count(t); n != 1 {
		t.Errorf("good interpreter spawned %d times, want 1", n)
	}
	diags := d.Diagnostics()
	if len(diags) != 1 || diags[0].Code != CodeProbeFailed || !errors.Is(diags[0].Cause, pyenv.ErrNonZeroExit) {
		t.Errorf("Diagnostics() = %+v", diags)
	}
}

func TestWarmUp_NoPathInEnv(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("expected missing interpreter")
	}

	d := New(Options{})
	if usable := d.WarmUp(context.Background(), []*pyenv.Environment{pyenv.NewEnvironment("", missing)}, 0); len(usable) != 0 {
		t.Errorf("WarmUp() = %v, want none", usable)
	}
	if diags := d.Diagnostics(); len(diags) != 1 || !errors.Is(diags[0].Cause, pyenv.ErrProcessLaunchFailure) {
		t.Errorf("Diagnostics() = %+v", diags)
	}
}

func TestWarmUp_CancelledIsNotAWarning(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	exe := filepath.Join(t.TempDir(), "python")
	counter := testutil.FakePython{VersionOutput: "Python 3.6.5"}.Write(t, exe)
	env := pyenv.NewEnvironment("", exe)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(Options{})
	if usable := d.WarmUp(ctx, []*pyenv.Environment{env}, 1); len(usable) != 0 {
		t.Errorf("WarmUp() = %v, want none", usable)
	}
	diags := d.Diagnostics()
	if len(diags) != 1 || diags[0].Severity != SeverityError || !errors.Is(diags[0].Cause, context.Canceled) {
		t.Fatalf("Diagnostics() = %+v", diags)
	}
	if env.VersionState() != pyenv.StateUnset {
		t.Errorf("VersionState() = %v, want unset", env.VersionState())
	}

	if v, err := env.Version(context.Background()); err != nil || v.Minor != 6 {
		t.Errorf("Version() = %v, %v after the cancelled warm-up", v, err)
	}
	if n := counter.Count(t); n != 1 {
		t.Errorf("interpreter spawned %d times, want 1", n)
	}
}

func TestFindInDirectories_BrokenScanDir(t *testing.T) {
	testutil.SkipOnWindows(t)
	t.Parallel()

	broken := filepath.Join(t.TempDir(), "venv")
	testutil.MakeVirtualenv(t, broken, testutil.VirtualenvOptions{Python: &testutil.FakePython{}})

	d := New(Options{})
	envs := slices.Collect(d.FindInDirectories(ExpandCandidates([]string{broken})))
	if len(envs) != 0 {
		t.Fatalf("FindInDirectories() = %v, want none", envs)
	}
	diags := d.Diagnostics()
	if len(diags) != 1 || diags[0].Path != broken || diags[0].Code != CodeNotAnEnvironment {
		t.Errorf("Diagnostics() = %+v, want one not_an_environment for %s", diags, broken)
	}
}
