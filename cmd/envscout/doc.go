// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the envscout command-line interface.
//
// App is the composition root: it loads configuration, describes the host
// runtime, and builds one discovery.Discovery and one worker.Pool per
// invocation. Cobra handlers only parse flags and render results.
package cmd
