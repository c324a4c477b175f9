// Package typeexpr parses the Go type expressions used as type identities in
// descriptor documents, optionally prefixed by a qualifier:
//
//	[]example.com/app.Plugin
//	[4]example.com/app.Shard
//	map[string]example.com/app.Handler
//	<-chan example.com/app.Event
//	func() example.com/app.Config
//	@label("primary") *example.com/app.Conn
//	@attr(example.com/app.Replica) *example.com/app.Conn
//
// Parsed expressions render back to one canonical string, which is what the
// engine compares. Function types other than func() T, interface literals and
// non-empty struct literals are not type identities and do not parse.
package typeexpr

import (
	"strconv"
	"strings"
)

// QualifiedExpr is a type expression with an optional qualifier prefix
type QualifiedExpr struct {
	Qualifier *QualifierExpr `parser:"@@?"`
	Type      *Expr          `parser:"@@"`
}

// QualifierExpr is either @label("name") or @attr(Type)
type QualifierExpr struct {
	Label *string `parser:"  '@' 'label' '(' @String ')'"`
	Attr  *Expr   `parser:"| '@' 'attr' '(' @@ ')'"`
}

// Expr is one Go type expression
type Expr struct {
	Pointer *Expr      `parser:"  '*' @@"`
	Slice   *Expr      `parser:"| '[' ']' @@"`
	Array   *ArrayExpr `parser:"| @@"`
	Recv    *Expr      `parser:"| '<-' 'chan' @@"`
	Chan    *ChanExpr  `parser:"| @@"`
	Map     *MapExpr   `parser:"| @@"`
	Func    *FuncExpr  `parser:"| @@"`
	Struct  bool       `parser:"| @( 'struct' '{' '}' )"`
	Named   *NamedExpr `parser:"| @@"`
}

// ArrayExpr is [Len]Elem with a literal length
type ArrayExpr struct {
	Len  int   `parser:"'[' @Int ']'"`
	Elem *Expr `parser:"@@"`
}

// ChanExpr is chan Elem, or chan<- Elem when Send is set
type ChanExpr struct {
	Send bool  `parser:"'chan' @'<-'?"`
	Elem *Expr `parser:"@@"`
}

// MapExpr is map[Key]Value
type MapExpr struct {
	Key   *Expr `parser:"'map' '[' @@ ']'"`
	Value *Expr `parser:"@@"`
}

// FuncExpr is a nullary function returning one value, the deferred-factory shape
type FuncExpr struct {
	Result *Expr `parser:"'func' '(' ')' @@"`
}

// NamedExpr is a possibly package-qualified, possibly generic named type
type NamedExpr struct {
	Name string  `parser:"@Ident"`
	Args []*Expr `parser:"( '[' @@ ( ',' @@ )* ']' )?"`
}

// String renders the canonical form of the expression
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch {
	case e == nil:
		return
	case e.Pointer != nil:
		b.WriteString("*")
		e.Pointer.write(b)
	case e.Slice != nil:
		b.WriteString("[]")
		e.Slice.write(b)
	case e.Array != nil:
		b.WriteString("[")
		b.WriteString(strconv.Itoa(e.Array.Len))
		b.WriteString("]")
		e.Array.Elem.write(b)
	case e.Recv != nil:
		b.WriteString("<-chan ")
		e.Recv.write(b)
	case e.Chan != nil:
		if e.Chan.Send {
			b.WriteString("chan<- ")
		} else {
			b.WriteString("chan ")
		}
		e.Chan.Elem.write(b)
	case e.Map != nil:
		b.WriteString("map[")
		e.Map.Key.write(b)
		b.WriteString("]")
		e.Map.Value.write(b)
	case e.Func != nil:
		b.WriteString("func() ")
		e.Func.Result.write(b)
	case e.Struct:
		b.WriteString("struct{}")
	case e.Named != nil:
		b.WriteString(e.Named.Name)
		if len(e.Named.Args) > 0 {
			b.WriteString("[")
			for i, arg := range e.Named.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				arg.write(b)
			}
			b.WriteString("]")
		}
	}
}

// IsEmptyStruct reports whether the expression is struct{}
func (e *Expr) IsEmptyStruct() bool {
	return e != nil && e.Struct
}
