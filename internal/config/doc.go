// SPDX-License-Identifier: MPL-2.0

// Package config handles envscout configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/envscout/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/envscout/config.cue on macOS,
// %APPDATA%\envscout\config.cue on Windows). It selects the directories scanned for
// virtualenvs, the version tags looked up on PATH, the description of the host runtime,
// probe parallelism and output preferences.
//
// Files are validated against the embedded CUE schema (config_schema.cue) before they
// reach Viper, and the decoded Config is validated again in Go for constraints CUE
// cannot express, such as version tags that must parse as semantic versions.
package config
