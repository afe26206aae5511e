// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name?:    string
	workers?: int & >=1
	tags?: [...string]
}
`

func TestUnify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "empty file", data: ""},
		{name: "partial", data: `name: "x"`},
		{name: "full", data: `name: "x", workers: 2, tags: ["a"]`},
		{name: "out of bound", data: `workers: 0`, wantErr: "settings.cue: workers"},
		{name: "wrong type in list", data: `tags: [1]`, wantErr: "tags[0]"},
		{name: "unknown field", data: `color: "red"`, wantErr: "color"},
		{name: "syntax error", data: `name: `, wantErr: "settings.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Unify(testSchema, "#Settings", []byte(tt.data), "settings.cue")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unify() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Unify() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Unify() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestUnify_DecodesValue(t *testing.T) {
	t.Parallel()

	v, err := Unify(testSchema, "#Settings", []byte(`name: "scout", workers: 3`), "settings.cue")
	if err != nil {
		t.Fatalf("Unify() error: %v", err)
	}

	var out map[string]any
	if err := v.Decode(&out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if out["name"] != "scout" {
		t.Errorf("name = %v, want scout", out["name"])
	}
}

func TestUnify_MissingDefinition(t *testing.T) {
	t.Parallel()

	_, err := Unify(testSchema, "#Nope", nil, "settings.cue")
	if err == nil || !strings.Contains(err.Error(), "#Nope") {
		t.Errorf("Unify() error = %v, want missing definition error", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "test.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}

	orig := errors.New("some error")
	err := FormatError(orig, "test.cue")
	if !errors.Is(err, orig) {
		t.Errorf("non-CUE error should be wrapped, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "test.cue: ") {
		t.Errorf("error should start with the file path, got %q", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"log_level"}, "log_level"},
		{[]string{"host", "version"}, "host.version"},
		{[]string{"scan_dirs", "0"}, "scan_dirs[0]"},
		{[]string{"a", "2", "b", "10"}, "a[2].b[10]"},
		{[]string{"0"}, "0"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "test.cue"); err != nil {
		t.Errorf("at limit: unexpected error %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "test.cue")
	if err == nil {
		t.Fatal("over limit: expected error")
	}
	for _, want := range []string{"test.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err, want)
		}
	}
}
