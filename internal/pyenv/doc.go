// SPDX-License-Identifier: MPL-2.0

// Package pyenv models Python runtime environments and how the host talks to them.
//
// An Environment is either discovered on disk (a system installation or a
// virtualenv) or the single in-process environment describing the host itself.
// Identity fields (base path, executable) are fixed at construction; derived
// facts are computed lazily and at most once per instance:
//   - version: probed by running `<exe> --version` (see ProbeVersion)
//   - search path: queried by running the interpreter with site disabled
//   - grammar: derived from the version
//   - execution channel: in-process or delegated to a worker subprocess
//
// All failures are specializations of ErrInvalidEnvironment so callers can
// treat any of them as "this environment is unusable".
//
// File organization:
//   - errors.go: error taxonomy
//   - version.go: VersionInfo and the version probe
//   - validate.go: virtualenv layout checks and PATH lookup
//   - lazy.go: at-most-once state cells
//   - environment.go: Environment and its constructors
//   - searchpath.go: sys.path query
//   - channel.go: execution channels
//   - grammar.go: grammar descriptor
package pyenv
