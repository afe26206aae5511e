// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/envscout/internal/config"
	"github.com/invowk/envscout/internal/discovery"
	"github.com/invowk/envscout/internal/pyenv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type (
	// envRecord is the rendered form of one environment.
	envRecord struct {
		Path       string   `json:"path" yaml:"path" toml:"path"`
		Executable string   `json:"executable" yaml:"executable" toml:"executable"`
		Version    string   `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
		Kind       string   `json:"kind" yaml:"kind" toml:"kind"`
		SearchPath []string `json:"search_path,omitempty" yaml:"search_path,omitempty" toml:"search_path,omitempty"`
	}

	// listReport is the document rendered by "envscout list". TOML has no
	// top-level arrays, so every format shares this wrapper.
	listReport struct {
		Environments []envRecord              `json:"environments" yaml:"environments" toml:"environments"`
		Skipped      []discovery.Diagnostic `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	}

	// tabular is implemented by documents that also render as a table.
	tabular interface {
		headers() []string
		rows() [][]string
	}
)

// newEnvRecord describes env. Version is filled in only if already known or
// if probe is set, in which case a failed probe is returned as an error.
func newEnvRecord(ctx context.Context, env *pyenv.Environment, probe bool) (envRecord, error) {
	rec := envRecord{Path: env.BasePath(), Executable: env.Executable(), Kind: env.Kind().String()}
	if probe || env.VersionState() == pyenv.StateValue {
		v, err := env.Version(ctx)
		if err != nil {
			return rec, err
		}
		rec.Version = v.String()
	}
	return rec, nil
}

func (r listReport) headers() []string { return []string{"VERSION", "KIND", "PATH", "EXECUTABLE"} }

func (r listReport) rows() [][]string {
	out := make([][]string, len(r.Environments))
	for i, e := range r.Environments {
		out[i] = []string{e.Version, e.Kind, e.Path, e.Executable}
	}
	return out
}

func (r envRecord) headers() []string { return []string{"FIELD", "VALUE"} }

func (r envRecord) rows() [][]string {
	rows := [][]string{
		{"path", r.Path},
		{"executable", r.Executable},
		{"version", r.Version},
		{"kind", r.Kind},
	}
	for _, p := range r.SearchPath {
		rows = append(rows, []string{"search_path", p})
	}
	return rows
}

// resolveFormat picks the --format flag value, falling back to the config.
func resolveFormat(flag string, cfg *config.Config) (config.OutputFormat, error) {
	f := config.OutputFormat(flag)
	if flag == "" {
		f = cfg.Output.Format
	}
	if valid, errs := f.IsValid(); !valid {
		return "", errs[0]
	}
	return f, nil
}

// render writes doc to w in the requested format.
func render(w io.Writer, format config.OutputFormat, doc tabular) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		_, err := fmt.Fprintln(w, renderTable(doc))
		return err
	}
}

func renderTable(doc tabular) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtitleStyle).
		Headers(doc.headers()...).
		Rows(doc.rows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Render()
}

// renderDiagnostics writes one line per skipped candidate.
func renderDiagnostics(w io.Writer, diags []discovery.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s: %s\n",
			WarningStyle.Render(strings.ToUpper(string(d.Severity))),
			d.Code, d.Message)
	}
}
