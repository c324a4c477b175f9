package errors

import "github.com/toyz/splice/internal/models"

type diagnosticKey struct {
	kind    Kind
	message string
	loc     models.SourceLocation
}

// Collector captures failures from sibling units of work instead of stopping at
// the first one. A build fails only when the collector holds at least one
// diagnostic, and then it fails with all of them.
type Collector struct {
	items []*Diagnostic
	seen  map[diagnosticKey]bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{seen: make(map[diagnosticKey]bool)}
}

// Add records the diagnostics carried by err. Identical diagnostics reached
// through different paths are kept once.
func (c *Collector) Add(err error) {
	for _, d := range Flatten(err) {
		key := diagnosticKey{kind: d.Kind, message: d.Message, loc: d.Loc}
		if c.seen[key] {
			continue
		}
		c.seen[key] = true
		c.items = append(c.items, d)
	}
}

// Try runs one unit of work and captures its failure. A panic inside fn is
// captured as an InternalError.
func (c *Collector) Try(fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.Add(Internalf("panic during resolution: %v", r))
			ok = false
		}
	}()

	if err := fn(); err != nil {
		c.Add(err)
		return false
	}
	return true
}

// Len returns the number of captured diagnostics
func (c *Collector) Len() int {
	return len(c.items)
}

// Diagnostics returns the captured diagnostics in capture order
func (c *Collector) Diagnostics() []*Diagnostic {
	result := make([]*Diagnostic, len(c.items))
	copy(result, c.items)
	return result
}

// Err returns nil when nothing was captured, otherwise the aggregate
func (c *Collector) Err() error {
	if len(c.items) == 0 {
		return nil
	}
	return &Diagnostics{Items: c.Diagnostics()}
}

// Collect runs fn for every item inside c and returns the successful results in
// input order. Failed items are skipped.
func Collect[T, R any](c *Collector, items []T, fn func(T) (R, error)) []R {
	results := make([]R, 0, len(items))
	for _, item := range items {
		var result R
		if c.Try(func() error {
			var err error
			result, err = fn(item)
			return err
		}) {
			results = append(results, result)
		}
	}
	return results
}

// Gather runs fn for every item and returns either every result, in input order,
// or a single aggregate failure carrying every diagnostic.
func Gather[T, R any](items []T, fn func(T) (R, error)) ([]R, error) {
	c := NewCollector()
	results := Collect(c, items, fn)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
