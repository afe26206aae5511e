// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-supplied CUE data against an embedded schema
// definition and formats CUE errors with JSON-path field locations.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	value, err := cueutil.Unify(schema, "#Config", data, "config.cue")
//	if err != nil {
//	    return err // "config.cue: probe.parallelism: invalid value 0 (out of bound >=1)"
//	}
package cueutil
