package scope

import (
	"fmt"

	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/resolver"
	"github.com/toyz/splice/internal/typeexpr"
	"github.com/toyz/splice/pkg/splice"
)

// Invoker calls the member behind a direct node with already produced
// arguments and properties. Collection-producing members return []any,
// map[any]struct{} or map[any]any according to the collection shape.
type Invoker func(node *resolver.DirectNode, args []any, props map[string]any) (any, error)

// Deferred is the value a DeferredNode evaluates to
type Deferred func() (any, error)

// Evaluator runs planned nodes against a frame arena. It is the reference
// semantics generated injectors follow, and it backs the plan checks in tests
// and the CLI's dry runs.
type Evaluator struct {
	arena  *splice.Arena
	invoke Invoker
}

// NewEvaluator creates an evaluator over arena
func NewEvaluator(arena *splice.Arena, invoke Invoker) *Evaluator {
	return &Evaluator{arena: arena, invoke: invoke}
}

// Arena returns the frame arena
func (e *Evaluator) Arena() *splice.Arena {
	return e.arena
}

// Evaluate produces the value of node inside frame
func (e *Evaluator) Evaluate(node resolver.Node, frame splice.FrameID) (any, error) {
	switch n := node.(type) {
	case *resolver.DirectNode:
		return e.direct(n, frame)
	case *resolver.CombineNode:
		return e.combine(n, frame)
	case *resolver.DeferredNode:
		return Deferred(func() (any, error) { return e.Evaluate(n.Inner, frame) }), nil
	default:
		return nil, fmt.Errorf("unknown plan node %T", node)
	}
}

func (e *Evaluator) direct(n *resolver.DirectNode, frame splice.FrameID) (any, error) {
	build := func(in splice.FrameID) func() (any, error) {
		return func() (any, error) {
			args := make([]any, 0, len(n.Arguments))
			for _, arg := range n.Arguments {
				value, err := e.Evaluate(arg, in)
				if err != nil {
					return nil, err
				}
				args = append(args, value)
			}

			props := make(map[string]any, len(n.Properties))
			for _, prop := range n.Properties {
				value, err := e.Evaluate(prop.Value, in)
				if err != nil {
					return nil, err
				}
				props[prop.Name] = value
			}
			return e.invoke(n, args, props)
		}
	}

	strategy := n.Cache
	if strategy == (resolver.CacheStrategy{}) {
		strategy = Strategy(n)
	}

	switch {
	case strategy.OpensFrame():
		return build(e.arena.Open(frame))()
	case strategy.Mode == models.Scoped:
		return e.arena.Scoped(frame, strategy.Field, build(frame))
	case strategy.Mode == models.ContainerScoped:
		return e.arena.ContainerScoped(frame, strategy.Field, build(frame))
	default:
		return build(frame)()
	}
}

func (e *Evaluator) combine(n *resolver.CombineNode, frame splice.FrameID) (any, error) {
	parts := make([]any, 0, len(n.Elements))
	for _, element := range n.Elements {
		value, err := e.Evaluate(element, frame)
		if err != nil {
			return nil, err
		}
		parts = append(parts, value)
	}
	return Merge(n.Shape, parts)
}

// Merge combines partial collections in order. Sequences are concatenated, sets
// are unioned and mappings are unioned with duplicate keys rejected.
func Merge(shape typeexpr.CollectionKind, parts []any) (any, error) {
	switch shape {
	case typeexpr.Sequence:
		var result []any
		for i, part := range parts {
			items, ok := part.([]any)
			if !ok {
				return nil, fmt.Errorf("partial %d is %T, expected []any", i, part)
			}
			result = append(result, items...)
		}
		return result, nil

	case typeexpr.Set:
		result := make(map[any]struct{})
		for i, part := range parts {
			items, ok := part.(map[any]struct{})
			if !ok {
				return nil, fmt.Errorf("partial %d is %T, expected map[any]struct{}", i, part)
			}
			for item := range items {
				result[item] = struct{}{}
			}
		}
		return result, nil

	case typeexpr.Mapping:
		result := make(map[any]any)
		for i, part := range parts {
			items, ok := part.(map[any]any)
			if !ok {
				return nil, fmt.Errorf("partial %d is %T, expected map[any]any", i, part)
			}
			for key, value := range items {
				if _, exists := result[key]; exists {
					return nil, fmt.Errorf("duplicate key %v in partial %d", key, i)
				}
				result[key] = value
			}
		}
		return result, nil

	default:
		return nil, fmt.Errorf("cannot merge into %s", shape)
	}
}
