// Package diag defines the diagnostic types shared by every compiler stage.
//
// Diagnostics are accumulated rather than raised as the first error seen:
// a stage keeps checking independent fields/groups so a single build run
// surfaces as many problems as possible (spec.md §7).
package diag

import (
	"fmt"
	"go/token"
)

// Kind enumerates the compile-time error kinds from spec.md §7.
type Kind string

const (
	SyntaxError          Kind = "SyntaxError"
	UnknownAttribute     Kind = "UnknownAttribute"
	BadAttributeValue    Kind = "BadAttributeValue"
	MissingReportKind    Kind = "MissingReportKind"
	ConflictingAttrs     Kind = "ConflictingAttributes"
	UsagePageOutOfScope  Kind = "UsagePageOutOfScope"
	CollectionMisnesting Kind = "CollectionMisnesting"
	LogicalBoundsInvert  Kind = "LogicalBoundsInverted"
	ValueOverflowsSize   Kind = "ValueOverflowsSize"
)

// Span locates a diagnostic in the source DSL. It wraps go/token.Position
// because the DSL parser walks Go source with go/ast; a field's span is the
// position of the struct field that carries its hid tag.
type Span struct {
	Pos  token.Position
	Field string // field identifier the diagnostic concerns, if any
}

func (s Span) String() string {
	if s.Field != "" {
		return fmt.Sprintf("%s: field %q", s.Pos, s.Field)
	}
	return s.Pos.String()
}

// Diagnostic is a single compile-time error with a precise source span.
type Diagnostic struct {
	Kind    Kind
	Span    Span
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Message)
}

// New builds a Diagnostic for the given kind, span and formatted message.
func New(kind Kind, span Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// List accumulates diagnostics across a compile pass. The zero value is
// ready to use. A List is never nil-checked by callers — Add is safe on
// a nil *List receiver only insofar as Go allows; callers should always
// construct one with &List{}.
type List struct {
	items []*Diagnostic
}

// Add appends a diagnostic to the list.
func (l *List) Add(d *Diagnostic) {
	l.items = append(l.items, d)
}

// Addf builds and appends a diagnostic in one call.
func (l *List) Addf(kind Kind, span Span, format string, args ...any) {
	l.Add(New(kind, span, format, args...))
}

// HasErrors reports whether any diagnostic has been recorded.
func (l *List) HasErrors() bool {
	return len(l.items) > 0
}

// All returns the accumulated diagnostics in the order they were recorded.
func (l *List) All() []*Diagnostic {
	return l.items
}

// Err returns a non-nil error aggregating every diagnostic, or nil if the
// list is empty.
func (l *List) Err() error {
	if len(l.items) == 0 {
		return nil
	}
	return &Error{Diagnostics: l.items}
}

// Error aggregates multiple diagnostics into a single error value.
type Error struct {
	Diagnostics []*Diagnostic
}

func (e *Error) Error() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].Error()
	}
	msg := fmt.Sprintf("%d diagnostics:", len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		msg += "\n  " + d.Error()
	}
	return msg
}
