// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Grammar pairs the language version of an environment with the parser grammar
// used to read source written for it.
type Grammar struct {
	// Version is the "major.minor" tag the grammar was selected for.
	Version string
	// Language is the tree-sitter grammar.
	Language *sitter.Language
}

// LoadGrammar returns the grammar for v. The tree-sitter Python grammar covers
// every supported release, so only the version tag varies.
func LoadGrammar(v VersionInfo) *Grammar {
	return &Grammar{Version: v.Tag(), Language: python.GetLanguage()}
}

// Parse parses src with this grammar. The caller owns the returned tree and
// must Close it.
func (g *Grammar) Parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.Language)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse with python %s grammar: %w", g.Version, err)
	}
	return tree, nil
}
