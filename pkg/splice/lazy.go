package splice

import "fmt"

// Lazy defers producing a T until Get is called. Every Get calls the underlying
// function again; caching is decided by the producing factory, not the wrapper.
type Lazy[T any] struct {
	fn func() (T, error)
}

// NewLazy wraps fn
func NewLazy[T any](fn func() (T, error)) Lazy[T] {
	return Lazy[T]{fn: fn}
}

// Value wraps an already known value
func Value[T any](v T) Lazy[T] {
	return Lazy[T]{fn: func() (T, error) { return v, nil }}
}

// Get produces the value
func (l Lazy[T]) Get() (T, error) {
	if l.fn == nil {
		var zero T
		return zero, fmt.Errorf("splice: Lazy[%T] has no producer", zero)
	}
	return l.fn()
}

// MustGet produces the value and panics on failure
func (l Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Scoped is the typed form of Arena.Scoped used by generated code
func Scoped[T any](a *Arena, id FrameID, field string, build func() (T, error)) (T, error) {
	return typed[T](a.Scoped(id, field, func() (any, error) { return build() }))
}

// ContainerScoped is the typed form of Arena.ContainerScoped used by generated code
func ContainerScoped[T any](a *Arena, id FrameID, field string, build func() (T, error)) (T, error) {
	return typed[T](a.ContainerScoped(id, field, func() (any, error) { return build() }))
}

func typed[T any](value any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if value == nil {
		return zero, nil
	}
	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("splice: cached value is %T, not %T", value, zero)
	}
	return v, nil
}
