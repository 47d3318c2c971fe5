// Package failure defines the build-fatal error kinds reported by the
// pipeline. Every stage returns a *Error (possibly wrapped) so the CLI can
// print the message together with any captured tool diagnostics.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a build failure.
type Kind string

const (
	// MissingInput indicates the schema file or queries directory is absent.
	MissingInput Kind = "missing-input"
	// EmptyManifest indicates the queries directory holds no operation files.
	EmptyManifest Kind = "empty-manifest"
	// IdentifierCollision indicates two files derived the same identifier.
	IdentifierCollision Kind = "identifier-collision"
	// Parse indicates malformed operation source.
	Parse Kind = "parse"
	// Codegen indicates the schema-to-type generator failed.
	Codegen Kind = "codegen"
	// TypeCheck indicates the generated modules failed to type-check,
	// including a manifest/type-binding key-set mismatch.
	TypeCheck Kind = "type-check"
	// Bundle indicates the bundler failed.
	Bundle Kind = "bundle"
	// Config indicates an invalid configuration file or flag combination.
	Config Kind = "config"
	// IO indicates a filesystem failure outside the input checks.
	IO Kind = "io"
)

// Error is a build failure with optional path and captured diagnostics.
type Error struct {
	Kind        Kind
	Path        string
	Message     string
	Diagnostics string
	Err         error
}

func (e *Error) Error() string {
	if e == nil {
		return "failure <nil>"
	}
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithPath sets the offending path and returns e for chaining.
func (e *Error) WithPath(p string) *Error {
	e.Path = p
	return e
}

// WithDiagnostics attaches captured tool output and returns e for chaining.
func (e *Error) WithDiagnostics(d string) *Error {
	e.Diagnostics = strings.TrimRight(d, "\n")
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// DiagnosticsOf returns the captured diagnostics of the first *Error in
// err's chain.
func DiagnosticsOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe.Diagnostics
	}
	return ""
}
