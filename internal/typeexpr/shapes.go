package typeexpr

import "github.com/toyz/splice/internal/models"

// CollectionKind is the merge strategy a collection type asks for
type CollectionKind int

const (
	NotCollection CollectionKind = iota
	Sequence                     // []T
	Set                          // map[T]struct{}
	Mapping                      // map[K]V
)

// String returns the string representation of the collection kind
func (k CollectionKind) String() string {
	switch k {
	case Sequence:
		return "sequence"
	case Set:
		return "set"
	case Mapping:
		return "mapping"
	default:
		return "none"
	}
}

// Collection describes a collection type. Key is empty for sequences and
// Element is the set member type for sets.
type Collection struct {
	Kind    CollectionKind
	Key     models.TypeIdentity
	Element models.TypeIdentity
}

// ElementSignature identifies the element type shared by merged collections
func (c Collection) ElementSignature() string {
	if c.Kind == Mapping {
		return string(c.Key) + " => " + string(c.Element)
	}
	return string(c.Element)
}

// CollectionOf classifies a type identity. Identities that do not parse are not
// collections.
func CollectionOf(identity models.TypeIdentity) (Collection, bool) {
	expr, err := Parse(string(identity))
	if err != nil {
		return Collection{}, false
	}

	switch {
	case expr.Slice != nil:
		return Collection{
			Kind:    Sequence,
			Element: models.TypeIdentity(expr.Slice.String()),
		}, true
	case expr.Map != nil && expr.Map.Value.IsEmptyStruct():
		return Collection{
			Kind:    Set,
			Element: models.TypeIdentity(expr.Map.Key.String()),
		}, true
	case expr.Map != nil:
		return Collection{
			Kind:    Mapping,
			Key:     models.TypeIdentity(expr.Map.Key.String()),
			Element: models.TypeIdentity(expr.Map.Value.String()),
		}, true
	}
	return Collection{}, false
}

// DeferredOf recognises the lazy wrapper shapes: a nullary func returning one
// value, or a single-argument generic whose name is one of wrappers. It returns
// the wrapped identity.
func DeferredOf(identity models.TypeIdentity, wrappers []string) (models.TypeIdentity, bool) {
	expr, err := Parse(string(identity))
	if err != nil {
		return "", false
	}

	if expr.Func != nil {
		return models.TypeIdentity(expr.Func.Result.String()), true
	}

	if expr.Named != nil && len(expr.Named.Args) == 1 {
		for _, wrapper := range wrappers {
			if expr.Named.Name == wrapper {
				return models.TypeIdentity(expr.Named.Args[0].String()), true
			}
		}
	}
	return "", false
}
