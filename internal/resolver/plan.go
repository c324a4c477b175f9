package resolver

import (
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/typeexpr"
)

// Node is one step of an invocation plan. The set of node types is closed:
// *DirectNode, *CombineNode and *DeferredNode.
type Node interface {
	// Key returns the qualified type this node answers
	Key() models.QualifiedType
	node()
}

// CacheStrategy is how a direct invocation caches its result. It is filled in by
// the scope planner; the zero value means no caching.
type CacheStrategy struct {
	Mode  models.FabricationMode
	Field string // cache slot name, empty for Recurrent and Container
}

// Cached reports whether the strategy stores the produced value
func (c CacheStrategy) Cached() bool {
	return c.Mode == models.Scoped || c.Mode == models.ContainerScoped
}

// OpensFrame reports whether invoking the node creates a new frame
func (c CacheStrategy) OpensFrame() bool {
	return c.Mode == models.Container
}

// PropertyNode fills one required property after construction
type PropertyNode struct {
	Name  string
	Value Node
}

// DirectNode invokes exactly one member on a specification's container. Exactly
// one of Factory and Builder is set.
type DirectNode struct {
	Requested     models.QualifiedType
	Factory       *models.Factory
	Builder       *models.Builder
	Specification *models.Specification
	Via           *models.Link // link the request was answered through, if any
	Arguments     []Node
	Properties    []PropertyNode
	Cache         CacheStrategy
}

// Key returns the requested key
func (n *DirectNode) Key() models.QualifiedType { return n.Requested }

func (n *DirectNode) node() {}

// Container returns the name of the specification container that owns the member
func (n *DirectNode) Container() string {
	return n.Specification.Name
}

// Member returns the invoked member name
func (n *DirectNode) Member() string {
	if n.Builder != nil {
		return n.Builder.Member
	}
	return n.Factory.Member
}

// Fabrication returns the fabrication mode of the invoked factory. Builders are
// always Recurrent.
func (n *DirectNode) Fabrication() models.FabricationMode {
	if n.Factory == nil {
		return models.Recurrent
	}
	return n.Factory.Fabrication
}

// Location returns where the invoked member was declared
func (n *DirectNode) Location() models.SourceLocation {
	if n.Builder != nil {
		return n.Builder.Location
	}
	return n.Factory.Location
}

// CombineNode merges the results of several partial factories into one
// collection of the requested shape. Elements follow declaration order.
type CombineNode struct {
	Requested models.QualifiedType
	Shape     typeexpr.CollectionKind
	Element   string // element signature shared by every entry
	Via       *models.Link
	Elements  []*DirectNode
}

// Key returns the requested key
func (n *CombineNode) Key() models.QualifiedType { return n.Requested }

func (n *CombineNode) node() {}

// DeferredNode defers evaluation of Inner to call time
type DeferredNode struct {
	Requested models.QualifiedType
	Inner     Node
}

// Key returns the requested wrapper key
func (n *DeferredNode) Key() models.QualifiedType { return n.Requested }

func (n *DeferredNode) node() {}

// Walk visits node and every node beneath it depth-first, parents before
// children. Returning false from fn skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *DirectNode:
		for _, arg := range n.Arguments {
			Walk(arg, fn)
		}
		for _, prop := range n.Properties {
			Walk(prop.Value, fn)
		}
	case *CombineNode:
		for _, element := range n.Elements {
			Walk(element, fn)
		}
	case *DeferredNode:
		Walk(n.Inner, fn)
	}
}

// Specifications returns every specification invoked beneath the given nodes, in
// first-use order.
func Specifications(nodes ...Node) []*models.Specification {
	seen := make(map[*models.Specification]bool)
	var specs []*models.Specification
	for _, root := range nodes {
		Walk(root, func(n Node) bool {
			if direct, ok := n.(*DirectNode); ok && !seen[direct.Specification] {
				seen[direct.Specification] = true
				specs = append(specs, direct.Specification)
			}
			return true
		})
	}
	return specs
}
