package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/splice/internal/models"
)

var specLoc = models.SourceLocation{File: "specs.yaml", Line: 12}

func TestDiagnosticError(t *testing.T) {
	d := Incompletef(specLoc, "no factory for %s", "app.Widget")
	assert.Equal(t, "specs.yaml:12: IncompleteSpecification: no factory for app.Widget", d.Error())

	bare := New(InvalidSpecification, "duplicate builder")
	assert.Equal(t, "InvalidSpecification: duplicate builder", bare.Error())
}

func TestDiagnosticBuilders(t *testing.T) {
	cause := fmt.Errorf("boom")
	d := Invalidf(specLoc, "bad").
		WithCause(cause).
		WithContext("key", "app.Widget").
		WithSuggestion("first").
		WithSuggestions("second", "third")

	assert.Same(t, cause, stderrors.Unwrap(d))
	assert.Equal(t, "app.Widget", d.Context()["key"])
	assert.Equal(t, []string{"first", "second", "third"}, d.Suggestions())
	assert.Equal(t, specLoc, d.Location())
	assert.NotNil(t, New(InternalError, "x").Context())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "IncompleteSpecification", IncompleteSpecification.String())
	assert.Equal(t, "InvalidSpecification", InvalidSpecification.String())
	assert.Equal(t, "InternalError", InternalError.String())
	assert.Equal(t, "UnknownError", Kind(42).String())
}

func TestCollectorKeepsGoing(t *testing.T) {
	c := NewCollector()
	ran := 0

	c.Try(func() error { ran++; return Incompletef(specLoc, "missing a") })
	c.Try(func() error { ran++; return nil })
	c.Try(func() error { ran++; return Invalidf(specLoc, "duplicate b") })

	assert.Equal(t, 3, ran)
	assert.Equal(t, 2, c.Len())

	err := c.Err()
	require.Error(t, err)
	assert.Equal(t, []Kind{IncompleteSpecification, InvalidSpecification}, KindsOf(err))
	assert.Contains(t, err.Error(), "2 diagnostics:")
	assert.Contains(t, err.Error(), "1. specs.yaml:12: IncompleteSpecification: missing a")
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector()
	assert.True(t, c.Try(func() error { return nil }))
	assert.NoError(t, c.Err())
	assert.Empty(t, c.Diagnostics())
}

func TestCollectorFlattensAndDeduplicates(t *testing.T) {
	inner := NewCollector()
	inner.Add(Incompletef(specLoc, "missing a"))
	inner.Add(Incompletef(specLoc, "missing b"))

	outer := NewCollector()
	outer.Add(inner.Err())
	outer.Add(Incompletef(specLoc, "missing a"))
	outer.Add(nil)

	assert.Equal(t, 2, outer.Len())
}

func TestCollectorWrapsForeignErrorsAsInternal(t *testing.T) {
	c := NewCollector()
	c.Add(fmt.Errorf("disk on fire"))

	items := c.Diagnostics()
	require.Len(t, items, 1)
	assert.Equal(t, InternalError, items[0].Kind)
	assert.Contains(t, items[0].Message, "disk on fire")
}

func TestCollectorRecoversPanics(t *testing.T) {
	c := NewCollector()
	ok := c.Try(func() error { panic("nil map") })

	assert.False(t, ok)
	assert.Equal(t, []Kind{InternalError}, KindsOf(c.Err()))
}

func TestGather(t *testing.T) {
	results, err := Gather([]int{1, 2, 3}, func(i int) (string, error) {
		return fmt.Sprint(i * 2), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "6"}, results)

	results, err = Gather([]int{1, 2, 3}, func(i int) (string, error) {
		if i%2 == 1 {
			return "", Incompletef(specLoc, "odd %d", i)
		}
		return "even", nil
	})
	assert.Nil(t, results)
	require.Error(t, err)

	var aggregate *Diagnostics
	require.ErrorAs(t, err, &aggregate)
	assert.Equal(t, 2, aggregate.Count())
	assert.Len(t, aggregate.ByKind(IncompleteSpecification), 2)
	assert.False(t, aggregate.HasKind(InternalError))
}

func TestDiagnosticsIs(t *testing.T) {
	c := NewCollector()
	c.Add(Incompletef(specLoc, "missing a"))
	c.Add(Invalidf(specLoc, "cycle"))

	assert.ErrorIs(t, c.Err(), Invalidf(specLoc, "cycle"))
	assert.NotErrorIs(t, c.Err(), Invalidf(specLoc, "other"))
}

func TestExtract(t *testing.T) {
	_, ok := Extract(fmt.Errorf("plain"))
	assert.False(t, ok)

	single := Invalidf(models.SourceLocation{}, "bad")
	items, ok := Extract(fmt.Errorf("wrapped: %w", single))
	require.True(t, ok)
	assert.Equal(t, []*Diagnostic{single}, items)

	c := NewCollector()
	c.Add(single)
	c.Add(Incompletef(models.SourceLocation{}, "missing"))
	items, ok = Extract(c.Err())
	require.True(t, ok)
	assert.Len(t, items, 2)
}
