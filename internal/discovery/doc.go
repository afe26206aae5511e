// SPDX-License-Identifier: MPL-2.0

// Package discovery enumerates Python environments the host can analyze code under.
//
// Sources, in the order callers usually consult them:
//   - Default: the host's own installation, built but not probed
//   - Interpreter: the in-process environment describing the host itself
//   - FindInDirectories: virtualenvs at explicit paths
//   - FindBySupportedVersions: "python<tag>" executables on PATH for each
//     configured version tag
//
// Enumeration never fails. A candidate that does not validate is skipped and
// recorded as a Diagnostic that callers may render or ignore.
//
// File organization:
//   - diagnostic.go: Diagnostic types and codes
//   - discovery.go: Discovery and the enumeration methods
//   - warmup.go: concurrent version probing across environments
package discovery
