// Package errors holds the diagnostic taxonomy of the resolution engine and the
// aggregator that collects diagnostics across independent units of work.
package errors

import (
	"fmt"

	"github.com/toyz/splice/internal/models"
)

// Kind classifies a diagnostic
type Kind int

const (
	// IncompleteSpecification means a required provider, builder or link target
	// does not exist anywhere reachable.
	IncompleteSpecification Kind = iota
	// InvalidSpecification means a structural rule is violated.
	InvalidSpecification
	// InternalError means the engine broke one of its own invariants.
	InternalError
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case IncompleteSpecification:
		return "IncompleteSpecification"
	case InvalidSpecification:
		return "InvalidSpecification"
	case InternalError:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Diagnostic is one (kind, message, location) triple plus optional context
type Diagnostic struct {
	Kind        Kind
	Message     string
	Loc         models.SourceLocation
	Cause       error
	ContextData map[string]interface{}
	Hints       []string
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Loc.IsEmpty() {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Kind, d.Message)
}

// Location returns the source location the diagnostic is attributed to
func (d *Diagnostic) Location() models.SourceLocation {
	return d.Loc
}

// Context returns the diagnostic context data
func (d *Diagnostic) Context() map[string]interface{} {
	if d.ContextData == nil {
		return make(map[string]interface{})
	}
	return d.ContextData
}

// Suggestions returns helpful suggestions for fixing the problem
func (d *Diagnostic) Suggestions() []string {
	return d.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Is matches another diagnostic of the same kind, message and location
func (d *Diagnostic) Is(target error) bool {
	t, ok := target.(*Diagnostic)
	if !ok {
		return false
	}
	return d.Kind == t.Kind && d.Message == t.Message && d.Loc == t.Loc
}

// WithLocation adds location information to the diagnostic
func (d *Diagnostic) WithLocation(loc models.SourceLocation) *Diagnostic {
	d.Loc = loc
	return d
}

// WithCause adds an underlying error cause
func (d *Diagnostic) WithCause(cause error) *Diagnostic {
	d.Cause = cause
	return d
}

// WithContext adds context data to the diagnostic
func (d *Diagnostic) WithContext(key string, value interface{}) *Diagnostic {
	if d.ContextData == nil {
		d.ContextData = make(map[string]interface{})
	}
	d.ContextData[key] = value
	return d
}

// WithSuggestion adds a helpful suggestion
func (d *Diagnostic) WithSuggestion(suggestion string) *Diagnostic {
	d.Hints = append(d.Hints, suggestion)
	return d
}

// WithSuggestions adds multiple helpful suggestions
func (d *Diagnostic) WithSuggestions(suggestions ...string) *Diagnostic {
	d.Hints = append(d.Hints, suggestions...)
	return d
}

// New creates a new diagnostic with the specified kind and message
func New(kind Kind, message string) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new diagnostic with formatted message
func Newf(kind Kind, format string, args ...interface{}) *Diagnostic {
	return New(kind, fmt.Sprintf(format, args...))
}

// Incompletef creates an IncompleteSpecification diagnostic
func Incompletef(loc models.SourceLocation, format string, args ...interface{}) *Diagnostic {
	return Newf(IncompleteSpecification, format, args...).WithLocation(loc)
}

// Invalidf creates an InvalidSpecification diagnostic
func Invalidf(loc models.SourceLocation, format string, args ...interface{}) *Diagnostic {
	return Newf(InvalidSpecification, format, args...).WithLocation(loc)
}

// Internalf creates an InternalError diagnostic
func Internalf(format string, args ...interface{}) *Diagnostic {
	return Newf(InternalError, format, args...).
		WithSuggestion("This is a defect in splice; please report it with the descriptor that triggered it")
}
