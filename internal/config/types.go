// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// LogLevelDebug enables debug logging.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// FormatTable renders a styled table.
	FormatTable OutputFormat = "table"
	// FormatJSON renders JSON.
	FormatJSON OutputFormat = "json"
	// FormatYAML renders YAML.
	FormatYAML OutputFormat = "yaml"
	// FormatTOML renders TOML.
	FormatTOML OutputFormat = "toml"

	// DefaultParallelism bounds concurrent version probes when unset.
	DefaultParallelism = 4
	// maxParallelism mirrors the upper bound in config_schema.cue.
	maxParallelism = 64
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidVersionTag is returned when a VersionTag is not "major.minor".
	ErrInvalidVersionTag = errors.New("invalid version tag")
	// ErrInvalidParallelism is returned when probe parallelism is out of range.
	ErrInvalidParallelism = errors.New("invalid probe parallelism")
	// ErrInvalidHostConfig is the sentinel error wrapped by InvalidHostConfigError.
	ErrInvalidHostConfig = errors.New("invalid host config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel selects the minimum level of emitted log records.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// OutputFormat selects how command results are rendered.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	// It wraps ErrInvalidOutputFormat for errors.Is() compatibility.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// VersionTag is a "major.minor" runtime version such as "3.6".
	VersionTag string

	// InvalidVersionTagError is returned when a VersionTag cannot be parsed.
	InvalidVersionTagError struct {
		Value VersionTag
		Err   error
	}

	// InvalidParallelismError is returned when ProbeConfig.Parallelism is out of range.
	InvalidParallelismError struct {
		Value int
	}

	// InvalidHostConfigError is returned when a HostConfig has invalid fields.
	InvalidHostConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ScanDirs are searched for virtualenvs.
		ScanDirs []string `json:"scan_dirs" mapstructure:"scan_dirs"`
		// SupportedVersions are resolved as python<tag> on PATH.
		SupportedVersions []VersionTag `json:"supported_versions" mapstructure:"supported_versions"`
		// Host describes the in-process runtime.
		Host HostConfig `json:"host" mapstructure:"host"`
		// Probe configures version probing.
		Probe ProbeConfig `json:"probe" mapstructure:"probe"`
		// LogLevel is the default log level; --verbose forces debug.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Output configures result rendering.
		Output OutputConfig `json:"output" mapstructure:"output"`
	}

	// HostConfig describes the runtime envscout treats as its own interpreter.
	// Empty fields are filled in at startup by resolving and probing the executable.
	HostConfig struct {
		Executable string `json:"executable" mapstructure:"executable"`
		Prefix     string `json:"prefix" mapstructure:"prefix"`
		Version    string `json:"version" mapstructure:"version"`
		// SearchPath, when set, is reported as the host's module search path
		// instead of asking the interpreter.
		SearchPath []string `json:"search_path,omitempty" mapstructure:"search_path"`
	}

	// ProbeConfig configures version probing.
	ProbeConfig struct {
		// Parallelism bounds concurrent probes during warm-up.
		Parallelism int `json:"parallelism" mapstructure:"parallelism"`
	}

	// OutputConfig configures result rendering.
	OutputConfig struct {
		Format OutputFormat `json:"format" mapstructure:"format"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case FormatTable, FormatJSON, FormatYAML, FormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: table, json, yaml, toml)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the VersionTag.
func (v VersionTag) String() string { return string(v) }

// IsValid returns whether the VersionTag has exactly two numeric components.
func (v VersionTag) IsValid() (bool, []error) {
	s := string(v)
	if strings.Count(s, ".") != 1 {
		return false, []error{&InvalidVersionTagError{Value: v, Err: errors.New(`want "major.minor"`)}}
	}
	if _, err := semver.StrictNewVersion(s + ".0"); err != nil {
		return false, []error{&InvalidVersionTagError{Value: v, Err: err}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidVersionTagError) Error() string {
	return fmt.Sprintf("invalid version tag %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidVersionTag for errors.Is() compatibility.
func (e *InvalidVersionTagError) Unwrap() error { return ErrInvalidVersionTag }

// Error implements the error interface.
func (e *InvalidParallelismError) Error() string {
	return fmt.Sprintf("invalid probe parallelism %d (must be between 1 and %d)", e.Value, maxParallelism)
}

// Unwrap returns ErrInvalidParallelism for errors.Is() compatibility.
func (e *InvalidParallelismError) Unwrap() error { return ErrInvalidParallelism }

// IsValid returns whether the HostConfig is usable. Executable, Prefix and
// SearchPath entries must not be whitespace-only (an empty search path entry
// is the current directory); Version, when set, must parse as a semantic
// version.
func (c HostConfig) IsValid() (bool, []error) {
	var errs []error
	if c.Executable != "" && strings.TrimSpace(c.Executable) == "" {
		errs = append(errs, errors.New("host.executable must not be whitespace-only"))
	}
	if c.Prefix != "" && strings.TrimSpace(c.Prefix) == "" {
		errs = append(errs, errors.New("host.prefix must not be whitespace-only"))
	}
	for i, p := range c.SearchPath {
		if p != "" && strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("host.search_path[%d] must not be whitespace-only", i))
		}
	}
	if c.Version != "" {
		sv, err := semver.NewVersion(c.Version)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("host.version %q: %w", c.Version, err))
		case sv.Prerelease() != "":
			errs = append(errs, fmt.Errorf("host.version %q: pre-release versions are not supported", c.Version))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHostConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHostConfigError.
func (e *InvalidHostConfigError) Error() string {
	return fmt.Sprintf("invalid host config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidHostConfig for errors.Is() compatibility.
func (e *InvalidHostConfigError) Unwrap() error { return ErrInvalidHostConfig }

// IsValid returns whether the ProbeConfig has an in-range parallelism.
func (c ProbeConfig) IsValid() (bool, []error) {
	if c.Parallelism < 1 || c.Parallelism > maxParallelism {
		return false, []error{&InvalidParallelismError{Value: c.Parallelism}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
// It delegates to each sub-component and collects every failure.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, tag := range c.SupportedVersions {
		if valid, fieldErrs := tag.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Host.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Probe.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by every field error, so
// errors.Is matches both the config sentinel and the field sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// VersionTags returns the supported versions as plain strings.
func (c *Config) VersionTags() []string {
	tags := make([]string, len(c.SupportedVersions))
	for i, t := range c.SupportedVersions {
		tags[i] = string(t)
	}
	return tags
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ScanDirs:          []string{},
		SupportedVersions: []VersionTag{"2.7", "3.3", "3.4", "3.5", "3.6"},
		Host:              HostConfig{},
		Probe:             ProbeConfig{Parallelism: DefaultParallelism},
		LogLevel:          LogLevelInfo,
		Output:            OutputConfig{Format: FormatTable},
	}
}
