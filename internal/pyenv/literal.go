// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrNotLiteral is returned by LiteralEvaluator for code that is not a single
// literal expression.
var ErrNotLiteral = errors.New("not a literal expression")

// LiteralEvaluator is the host's in-process evaluator. It evaluates literal
// expressions (numbers, strings, booleans, None and containers of them) by
// parsing them, so no interpreter is ever started. The result is rendered the
// way repr would render it, except that numbers and strings keep their source
// spelling.
type LiteralEvaluator struct {
	grammar *Grammar
}

// NewLiteralEvaluator returns an evaluator parsing with g.
func NewLiteralEvaluator(g *Grammar) *LiteralEvaluator {
	return &LiteralEvaluator{grammar: g}
}

// Evaluate parses w.Code and renders its value.
func (l *LiteralEvaluator) Evaluate(ctx context.Context, w Work) (Result, error) {
	src := []byte(w.Code)
	tree, err := l.grammar.Parse(ctx, src)
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return Result{}, fmt.Errorf("%w: syntax error in %q", ErrNotLiteral, w.Code)
	}

	var stmts []*sitter.Node
	for i := range int(root.NamedChildCount()) {
		if c := root.NamedChild(i); c.Type() != "comment" {
			stmts = append(stmts, c)
		}
	}
	if len(stmts) != 1 || stmts[0].Type() != "expression_statement" || stmts[0].NamedChildCount() != 1 {
		return Result{}, fmt.Errorf("%w: want exactly one expression", ErrNotLiteral)
	}

	v, err := literalRepr(stmts[0].NamedChild(0), src)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v}, nil
}

func literalRepr(n *sitter.Node, src []byte) (string, error) {
	switch n.Type() {
	case "integer", "float":
		return n.Content(src), nil
	case "string", "concatenated_string":
		if hasDescendant(n, "interpolation") {
			return "", fmt.Errorf("%w: f-string", ErrNotLiteral)
		}
		return n.Content(src), nil
	case "true":
		return "True", nil
	case "false":
		return "False", nil
	case "none":
		return "None", nil
	case "parenthesized_expression":
		if n.NamedChildCount() != 1 {
			return "", fmt.Errorf("%w: %s", ErrNotLiteral, n.Type())
		}
		return literalRepr(n.NamedChild(0), src)
	case "unary_operator":
		op, arg := n.ChildByFieldName("operator"), n.ChildByFieldName("argument")
		if op == nil || arg == nil || (arg.Type() != "integer" && arg.Type() != "float") {
			return "", fmt.Errorf("%w: unary %s", ErrNotLiteral, n.Content(src))
		}
		if sym := op.Content(src); sym == "-" || sym == "+" {
			return sym + arg.Content(src), nil
		}
		return "", fmt.Errorf("%w: unary %s", ErrNotLiteral, n.Content(src))
	case "list":
		items, err := literalItems(n, src)
		return "[" + strings.Join(items, ", ") + "]", err
	case "set":
		items, err := literalItems(n, src)
		return "{" + strings.Join(items, ", ") + "}", err
	case "tuple":
		items, err := literalItems(n, src)
		if len(items) == 1 {
			return "(" + items[0] + ",)", err
		}
		return "(" + strings.Join(items, ", ") + ")", err
	case "dictionary":
		var pairs []string
		for i := range int(n.NamedChildCount()) {
			p := n.NamedChild(i)
			if p.Type() == "comment" {
				continue
			}
			if p.Type() != "pair" {
				return "", fmt.Errorf("%w: %s in dict", ErrNotLiteral, p.Type())
			}
			k, err := literalRepr(p.ChildByFieldName("key"), src)
			if err != nil {
				return "", err
			}
			v, err := literalRepr(p.ChildByFieldName("value"), src)
			if err != nil {
				return "", err
			}
			pairs = append(pairs, k+": "+v)
		}
		return "{" + strings.Join(pairs, ", ") + "}", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotLiteral, n.Type())
	}
}

func literalItems(n *sitter.Node, src []byte) ([]string, error) {
	items := make([]string, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		s, err := literalRepr(c, src)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

func hasDescendant(n *sitter.Node, typ string) bool {
	for i := range int(n.NamedChildCount()) {
		c := n.NamedChild(i)
		if c.Type() == typ || hasDescendant(c, typ) {
			return true
		}
	}
	return false
}
