// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a failure as the user sees it: what envscout was
	// doing, which environment or file it was looking at, why that failed and
	// what to try next.
	//
	// Environment failures are usually built with ForEnvironment, which
	// classifies the cause against the catalog:
	//
	//	env, err := pyenv.CreateEnvironment(dir)
	//	if err != nil {
	//		return issue.ForEnvironment(err, "open environment", dir)
	//	}
	ActionableError struct {
		// Operation is a verb phrase such as "probe environment" or "load configuration".
		Operation string

		// Resource is the virtualenv, interpreter or config file involved (optional).
		Resource string

		// Suggestions are one-line hints printed under the message (optional).
		Suggestions []string

		// Class is the catalog entry the cause was classified as (optional).
		// Format points the user at "envscout explain <name>" for it.
		Class *Issue

		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext builds an ActionableError step by step. A context may be
	// prepared before the failing call and reused for several causes:
	//
	//	ectx := issue.NewErrorContext().
	//		WithOperation("read search path").
	//		WithResource(env.Executable())
	//	paths, err := env.SearchPath(ctx)
	//	if err != nil {
	//		return ectx.WithIssue(issue.Classify(err)).Wrap(err).BuildError()
	//	}
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		class       *Issue
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// ForEnvironment wraps an environment failure with operation and resource
// context. When the cause belongs to a catalog failure class, the class and
// its suggestions are attached.
func ForEnvironment(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	return NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(Classify(err)).
		Wrap(err).
		BuildError()
}

// WrapWithContext wraps err with operation and resource context and no
// suggestions, e.g. for malformed command-line input.
func WrapWithContext(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{
		Operation: operation,
		Resource:  resource,
		Cause:     err,
	}
}

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the cause for errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for the terminal:
//
//	failed to <operation>: <resource>: <cause>
//
//	  • <suggestion>
//	  • Run 'envscout explain <class>' for details
//
// verbose appends every error in the cause tree, one per line, indented by
// depth. pyenv errors join a sentinel with the underlying failure, so the
// tree may branch.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	hints := e.Suggestions
	if e.Class != nil {
		hints = append(hints[:len(hints):len(hints)], explainHint(e.Class))
	}
	if len(hints) > 0 {
		msg.WriteString("\n")
		for _, h := range hints {
			msg.WriteString("\n  • ")
			msg.WriteString(h)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		writeCauseTree(&msg, e.Cause, 1)
	}
	return msg.String()
}

// HasSuggestions reports whether Format prints any hint.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0 || e.Class != nil
}

func explainHint(i *Issue) string {
	return "Run 'envscout explain " + i.name + "' for details"
}

func writeCauseTree(w *strings.Builder, err error, depth int) {
	for err != nil {
		fmt.Fprintf(w, "\n%s- %s", strings.Repeat("  ", depth), err.Error())
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range multi.Unwrap() {
				writeCauseTree(w, inner, depth+1)
			}
			return
		}
		err = errors.Unwrap(err)
		depth++
	}
}

// WithOperation sets the operation, a verb phrase like "probe environment".
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the virtualenv, interpreter or file involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds one hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// WithSuggestions adds several hints.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

// WithIssue attaches a catalog failure class and its suggestions. A nil
// issue is ignored, so the result of Classify can be passed directly.
func (c *ErrorContext) WithIssue(i *Issue) *ErrorContext {
	if i == nil {
		return c
	}
	c.class = i
	c.suggestions = append(c.suggestions, i.suggestions...)
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Class:       c.class,
		Cause:       c.cause,
	}
}

// BuildError is Build typed as error, so that a missing operation yields a
// nil interface rather than a typed nil.
func (c *ErrorContext) BuildError() error {
	ae := c.Build()
	if ae == nil {
		return nil
	}
	return ae
}
