// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeNotAnEnvironment marks a scanned directory without the virtualenv layout.
	CodeNotAnEnvironment = "not_an_environment"
	// CodeExecutableNotFound marks a supported version tag with no executable on PATH.
	CodeExecutableNotFound = "executable_not_found"
	// CodeProbeFailed marks an environment whose version probe failed during warm-up.
	CodeProbeFailed = "probe_failed"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity `json:"severity" yaml:"severity" toml:"severity"`
		// Code is a machine-readable identifier (e.g., "not_an_environment").
		Code string `json:"code" yaml:"code" toml:"code"`
		// Message is the human-readable description.
		Message string `json:"message" yaml:"message" toml:"message"`
		// Path is the directory or executable associated with this diagnostic (optional).
		Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error `json:"-" yaml:"-" toml:"-"`
	}
)
