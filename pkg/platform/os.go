// SPDX-License-Identifier: MPL-2.0

package platform

import "strings"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// ExecutableName returns name with the executable suffix used on goos.
// Names that already carry the suffix are returned unchanged.
func ExecutableName(name, goos string) string {
	if goos != Windows || strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name
	}
	return name + ".exe"
}

// ScriptsDir returns the directory name holding a virtualenv's scripts on goos.
func ScriptsDir(goos string) string {
	if goos == Windows {
		return "Scripts"
	}
	return "bin"
}
