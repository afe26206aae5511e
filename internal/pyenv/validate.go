// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/invowk/envscout/pkg/platform"
)

// Layout names the entries a virtualenv directory must contain, relative to its root.
type Layout struct {
	// BinDir is the scripts directory ("bin" on POSIX, "Scripts" on Windows).
	BinDir string
	// Activate is the activation marker inside BinDir.
	Activate string
	// Interpreter is the interpreter binary inside BinDir.
	Interpreter string
}

// HostLayout returns the virtualenv layout for the current platform.
func HostLayout() Layout {
	return LayoutFor(runtime.GOOS)
}

// LayoutFor returns the virtualenv layout used on goos.
func LayoutFor(goos string) Layout {
	activate := "activate"
	if goos == platform.Windows {
		activate = "activate.bat"
	}
	return Layout{
		BinDir:      platform.ScriptsDir(goos),
		Activate:    activate,
		Interpreter: platform.ExecutableName("python", goos),
	}
}

// ActivatePath returns the activation marker path under root.
func (l Layout) ActivatePath(root string) string {
	return filepath.Join(root, l.BinDir, l.Activate)
}

// InterpreterPath returns the interpreter path under root.
func (l Layout) InterpreterPath(root string) string {
	return filepath.Join(root, l.BinDir, l.Interpreter)
}

// ValidateDirectory checks that path has the minimum shape of a virtualenv,
// an activation marker and an interpreter, and returns the interpreter path.
// Both must exist; otherwise a NotAnEnvironmentError naming every missing
// entry is returned and no path.
func ValidateDirectory(path string) (string, error) {
	return HostLayout().Validate(path)
}

// Validate is ValidateDirectory for an explicit layout.
func (l Layout) Validate(path string) (string, error) {
	activate := l.ActivatePath(path)
	python := l.InterpreterPath(path)

	var missing []string
	for _, p := range []string{activate, python} {
		if !exists(p) {
			missing = append(missing, filepath.Join(l.BinDir, filepath.Base(p)))
		}
	}
	if len(missing) > 0 {
		return "", &NotAnEnvironmentError{Path: path, Missing: missing}
	}
	return python, nil
}

// ResolveByName looks name up on PATH. No further validation is done: a bare
// name has no directory layout to check.
func ResolveByName(name string) (string, error) {
	exe, err := exec.LookPath(name)
	if err != nil {
		return "", &ExecutableNotFoundError{Name: name, Err: err}
	}
	return exe, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
