// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/invowk/envscout/internal/pyenv"
)

// ExpandCandidates turns scan directories into candidate paths for
// FindInDirectories. A directory that is itself an environment is kept as is;
// so is one that has a scripts directory but fails validation, so that the
// broken environment is reported rather than its bin directory. Any other
// readable directory is replaced by its immediate subdirectories in name
// order. Unreadable paths are kept so that validating them records a
// diagnostic instead of dropping them silently.
func ExpandCandidates(dirs []string) []string {
	layout := pyenv.HostLayout()
	var out []string
	for _, dir := range dirs {
		if _, err := layout.Validate(dir); err == nil {
			out = append(out, dir)
			continue
		}
		if fi, err := os.Stat(filepath.Join(dir, layout.BinDir)); err == nil && fi.IsDir() {
			out = append(out, dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.Debug("cannot read scan directory", "path", dir, "error", err)
			out = append(out, dir)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
	}
	return out
}
