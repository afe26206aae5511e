// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// searchPathScript prints sys.path as a JSON array. It must stay valid on
// Python 2.7 as well as 3.x.
const searchPathScript = "import json, sys; sys.stdout.write(json.dumps(sys.path))"

// SearchPathArgs are the interpreter arguments used to query sys.path. The
// search path depends on compile-time defaults, PYTHON* variables and site
// customization, so it cannot be derived without running the interpreter. -S
// keeps site.py from running.
var SearchPathArgs = []string{"-S", "-c", searchPathScript}

// QuerySearchPath runs executable and returns its reported sys.path.
func QuerySearchPath(ctx context.Context, executable string) ([]string, error) {
	stdout, _, err := runInterpreter(ctx, executable, SearchPathArgs...)
	if err != nil {
		return nil, err
	}

	paths, err := ParseSearchPath(stdout)
	if err != nil {
		return nil, &UnparsableSearchPathError{Executable: executable, Err: err}
	}

	slog.Debug("queried python search path", "executable", executable, "entries", len(paths))
	return paths, nil
}

// ParseSearchPath decodes a JSON array of path strings.
func ParseSearchPath(report []byte) ([]string, error) {
	report = bytes.TrimSpace(report)
	if len(report) == 0 {
		return nil, errors.New("empty report")
	}
	var paths []string
	if err := json.Unmarshal(report, &paths); err != nil {
		return nil, err
	}
	if paths == nil {
		return nil, errors.New("report is not a list")
	}
	return paths, nil
}
