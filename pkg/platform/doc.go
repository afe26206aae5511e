// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes GOOS names and per-platform file naming.
package platform
