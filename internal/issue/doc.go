// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the envscout CLI.
//
// ActionableError carries the failed operation, the environment or file involved,
// and one-line suggestions. The catalog in this package maps each environment
// failure class to Markdown guidance rendered with glamour by "envscout explain".
package issue
