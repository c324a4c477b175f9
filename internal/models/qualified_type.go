package models

import "fmt"

// TypeIdentity is the canonical rendering of a Go type expression, for example
// "[]example.com/app.Plugin" or "func() example.com/app.Config".
// Canonical forms are produced by the typeexpr package, so two identities are
// structurally equal exactly when their strings are equal.
type TypeIdentity string

// String returns the canonical type expression
func (t TypeIdentity) String() string {
	return string(t)
}

// IsZero reports whether the identity is empty
func (t TypeIdentity) IsZero() bool {
	return t == ""
}

// QualifierKind discriminates the qualifier variants
type QualifierKind int

const (
	QualifierNone QualifierKind = iota
	QualifierLabel
	QualifierAttribute
)

// String returns the string representation of the qualifier kind
func (k QualifierKind) String() string {
	switch k {
	case QualifierNone:
		return "none"
	case QualifierLabel:
		return "label"
	case QualifierAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Qualifier disambiguates several providers of the same type.
// Value holds the label for QualifierLabel and the attribute type identity for
// QualifierAttribute; it is empty for QualifierNone.
type Qualifier struct {
	Kind  QualifierKind
	Value string
}

// NoQualifier returns the empty qualifier
func NoQualifier() Qualifier {
	return Qualifier{}
}

// Label returns a named qualifier
func Label(label string) Qualifier {
	return Qualifier{Kind: QualifierLabel, Value: label}
}

// Attribute returns a qualifier keyed by an attribute type
func Attribute(attribute TypeIdentity) Qualifier {
	return Qualifier{Kind: QualifierAttribute, Value: string(attribute)}
}

// IsNone reports whether this is the empty qualifier
func (q Qualifier) IsNone() bool {
	return q.Kind == QualifierNone
}

// Validate checks the variant carries a usable value
func (q Qualifier) Validate() error {
	switch q.Kind {
	case QualifierNone:
		if q.Value != "" {
			return fmt.Errorf("unqualified key carries value %q", q.Value)
		}
	case QualifierLabel:
		if q.Value == "" {
			return fmt.Errorf("label qualifier must not be empty")
		}
	case QualifierAttribute:
		if q.Value == "" {
			return fmt.Errorf("attribute qualifier must name an attribute type")
		}
	default:
		return fmt.Errorf("unknown qualifier kind %d", int(q.Kind))
	}
	return nil
}

// String renders the qualifier in type-expression syntax
func (q Qualifier) String() string {
	switch q.Kind {
	case QualifierLabel:
		return fmt.Sprintf("@label(%q)", q.Value)
	case QualifierAttribute:
		return fmt.Sprintf("@attr(%s)", q.Value)
	default:
		return ""
	}
}

// QualifiedType is the universal lookup key: a type plus its qualifier.
// A bare type and the same type under any qualifier are distinct keys.
type QualifiedType struct {
	Type      TypeIdentity
	Qualifier Qualifier
}

// Of builds an unqualified key
func Of(t TypeIdentity) QualifiedType {
	return QualifiedType{Type: t}
}

// Qualified builds a key with the given qualifier
func Qualified(t TypeIdentity, q Qualifier) QualifiedType {
	return QualifiedType{Type: t, Qualifier: q}
}

// WithType returns the same qualifier applied to another type
func (k QualifiedType) WithType(t TypeIdentity) QualifiedType {
	return QualifiedType{Type: t, Qualifier: k.Qualifier}
}

// String renders the key as "@label(\"x\") T" or "T"
func (k QualifiedType) String() string {
	if k.Qualifier.IsNone() {
		return string(k.Type)
	}
	return k.Qualifier.String() + " " + string(k.Type)
}
