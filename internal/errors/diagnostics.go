package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostics is the aggregate failure carrying every captured diagnostic
type Diagnostics struct {
	Items []*Diagnostic
}

// Error implements the error interface
func (e *Diagnostics) Error() string {
	if len(e.Items) == 0 {
		return "no diagnostics"
	}

	if len(e.Items) == 1 {
		return e.Items[0].Error()
	}

	var messages []string
	for i, d := range e.Items {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, d.Error()))
	}

	return fmt.Sprintf("%d diagnostics:\n%s", len(e.Items), strings.Join(messages, "\n"))
}

// Unwrap exposes every diagnostic to errors.Is and errors.As
func (e *Diagnostics) Unwrap() []error {
	result := make([]error, len(e.Items))
	for i, d := range e.Items {
		result[i] = d
	}
	return result
}

// Count returns the number of diagnostics
func (e *Diagnostics) Count() int {
	return len(e.Items)
}

// ByKind returns all diagnostics of a specific kind
func (e *Diagnostics) ByKind(kind Kind) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range e.Items {
		if d.Kind == kind {
			result = append(result, d)
		}
	}
	return result
}

// HasKind returns true if any diagnostic of the kind exists
func (e *Diagnostics) HasKind(kind Kind) bool {
	for _, d := range e.Items {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Flatten returns the diagnostics carried by err. Plain errors are reported as
// InternalError because every expected failure is already a diagnostic.
func Flatten(err error) []*Diagnostic {
	if err == nil {
		return nil
	}

	var aggregate *Diagnostics
	if errors.As(err, &aggregate) {
		return aggregate.Items
	}

	var single *Diagnostic
	if errors.As(err, &single) {
		return []*Diagnostic{single}
	}

	return []*Diagnostic{Internalf("unexpected failure: %v", err).WithCause(err)}
}

// Extract returns the diagnostics carried by err without wrapping plain
// errors. ok is false when err carries none.
func Extract(err error) (items []*Diagnostic, ok bool) {
	var aggregate *Diagnostics
	if errors.As(err, &aggregate) {
		return aggregate.Items, true
	}

	var single *Diagnostic
	if errors.As(err, &single) {
		return []*Diagnostic{single}, true
	}
	return nil, false
}

// KindsOf returns the kinds of every diagnostic carried by err, in order
func KindsOf(err error) []Kind {
	items := Flatten(err)
	kinds := make([]Kind, len(items))
	for i, d := range items {
		kinds[i] = d.Kind
	}
	return kinds
}
