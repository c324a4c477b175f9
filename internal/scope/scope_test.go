package scope

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/registry"
	"github.com/toyz/splice/internal/resolver"
	"github.com/toyz/splice/internal/typeexpr"
	"github.com/toyz/splice/pkg/splice"
)

type callCounter struct {
	calls map[string]int
}

func newCallCounter() *callCounter {
	return &callCounter{calls: make(map[string]int)}
}

func (c *callCounter) invoke(node *resolver.DirectNode, args []any, props map[string]any) (any, error) {
	c.calls[node.Member()]++
	if _, ok := typeexpr.CollectionOf(node.Requested.Type); ok {
		return []any{node.Member()}, nil
	}
	return fmt.Sprintf("%s#%d", node.Member(), c.calls[node.Member()]), nil
}

func resolveAll(t *testing.T, spec *models.Specification, keys ...models.QualifiedType) []resolver.Node {
	t.Helper()
	index, err := registry.NewRegistrar(nil).Build([]*models.Specification{spec})
	require.NoError(t, err)

	r := resolver.New(index)
	nodes := make([]resolver.Node, 0, len(keys))
	for _, key := range keys {
		node, err := r.Resolve(resolver.Request{Key: key, Context: "test"})
		require.NoError(t, err)
		nodes = append(nodes, node)
	}
	return nodes
}

func sessionSpec() *models.Specification {
	return models.NewSpecificationBuilder("app.Specs").
		WithFactory(models.NewFactory("Config", models.Of("app.Config")).Fabrication(models.ContainerScoped).Build()).
		WithFactory(models.NewFactory("Conversation", models.Of("app.Conversation")).Fabrication(models.Scoped).Build()).
		WithFactory(models.NewFactory("Clock", models.Of("app.Clock")).Build()).
		WithFactory(models.NewFactory("NewSession", models.Of("app.Session")).
			Fabrication(models.Container).
			Params(models.Of("app.Conversation"), models.Of("app.Config"), models.Of("app.Conversation")).
			Build()).
		Build()
}

func TestPlanner_Frames(t *testing.T) {
	nodes := resolveAll(t, sessionSpec(),
		models.Of("app.Session"),
		models.Of("app.Conversation"),
		models.Of("app.Clock"))

	plan := NewPlanner(nil).Plan(nodes...)
	require.Len(t, plan.Frames, 2)

	root := plan.Frame(RootFrame)
	assert.Equal(t, NoParent, root.Parent)
	assert.Nil(t, root.Opener)
	require.Len(t, root.ScopedFields, 1)
	assert.Equal(t, "app_Specs_Conversation", root.ScopedFields[0].Name)
	assert.Empty(t, root.SharedFields)

	session := plan.Frame(1)
	assert.Equal(t, RootFrame, session.Parent)
	assert.Equal(t, "NewSession", session.Opener.Member())
	require.Len(t, session.ScopedFields, 1, "repeated parameters share one field")
	require.Len(t, session.SharedFields, 1)
	assert.Equal(t, "app_Specs_Config", session.SharedFields[0].Name)
	assert.Equal(t, models.Of("app.Config"), session.SharedFields[0].Key)

	assert.Nil(t, plan.Frame(7))

	direct := nodes[0].(*resolver.DirectNode)
	assert.True(t, direct.Cache.OpensFrame())
	assert.False(t, direct.Cache.Cached())
	assert.True(t, nodes[1].(*resolver.DirectNode).Cache.Cached())
	assert.Equal(t, resolver.CacheStrategy{Mode: models.Recurrent}, nodes[2].(*resolver.DirectNode).Cache)
}

func TestFieldName(t *testing.T) {
	spec := models.NewSpecificationBuilder("example.com/app.Specs").
		WithFactory(models.NewFactory("Primary", models.Qualified("*app.DB", models.Label("primary"))).Build()).
		WithFactory(models.NewFactory("", models.Of("*app.Cache")).Kind(models.MemberConstructor).Build()).
		Build()

	assert.Equal(t, "example_com_app_Specs_Primary_primary", FieldName(spec.Factories[0]))
	assert.Equal(t, "example_com_app_Specs_new__app_Cache", FieldName(spec.Factories[1]))
}

func TestEvaluator_FabricationModes(t *testing.T) {
	nodes := resolveAll(t, sessionSpec(),
		models.Of("app.Session"),
		models.Of("app.Conversation"),
		models.Of("app.Clock"))
	NewPlanner(nil).Plan(nodes...)

	calls := newCallCounter()
	arena := splice.NewArena()
	e := NewEvaluator(arena, calls.invoke)

	for i := 0; i < 2; i++ {
		_, err := e.Evaluate(nodes[2], arena.Root())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls.calls["Clock"], "recurrent factories run on every request")

	first, err := e.Evaluate(nodes[1], arena.Root())
	require.NoError(t, err)
	second, err := e.Evaluate(nodes[1], arena.Root())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls.calls["Conversation"])

	_, err = e.Evaluate(nodes[0], arena.Root())
	require.NoError(t, err)
	_, err = e.Evaluate(nodes[0], arena.Root())
	require.NoError(t, err)

	assert.Equal(t, 2, calls.calls["NewSession"])
	assert.Equal(t, 3, calls.calls["Conversation"], "each session frame caches its own conversation")
	assert.Equal(t, 1, calls.calls["Config"], "container scoped values propagate to the root")
	assert.Equal(t, 3, arena.Len())
	assert.Equal(t, splice.Superseded, arena.State(arena.Root()))
}

func TestEvaluator_Combine(t *testing.T) {
	spec := models.NewSpecificationBuilder("app.S").
		WithFactory(models.NewFactory("Core", models.Of("[]app.Plugin")).Partial().Build()).
		WithFactory(models.NewFactory("Extra", models.Of("[]app.Plugin")).Partial().Build()).
		Build()
	nodes := resolveAll(t, spec, models.Of("[]app.Plugin"))

	e := NewEvaluator(splice.NewArena(), newCallCounter().invoke)
	value, err := e.Evaluate(nodes[0], e.Arena().Root())
	require.NoError(t, err)
	assert.Equal(t, []any{"Core", "Extra"}, value)
}

func TestEvaluator_Deferred(t *testing.T) {
	spec := models.NewSpecificationBuilder("app.S").
		WithFactory(models.NewFactory("Config", models.Of("app.Config")).Build()).
		WithFactory(models.NewFactory("NewServer", models.Of("app.Server")).Params(models.Of("func() app.Config")).Build()).
		Build()
	nodes := resolveAll(t, spec, models.Of("app.Server"))

	calls := newCallCounter()
	var received []any
	e := NewEvaluator(splice.NewArena(), func(node *resolver.DirectNode, args []any, props map[string]any) (any, error) {
		if node.Member() == "NewServer" {
			received = args
		}
		return calls.invoke(node, args, props)
	})

	_, err := e.Evaluate(nodes[0], e.Arena().Root())
	require.NoError(t, err)
	assert.Zero(t, calls.calls["Config"], "deferred parameters are not evaluated eagerly")

	require.Len(t, received, 1)
	deferred, ok := received[0].(Deferred)
	require.True(t, ok)
	value, err := deferred()
	require.NoError(t, err)
	assert.Equal(t, "Config#1", value)
}

func TestEvaluator_Properties(t *testing.T) {
	spec := models.NewSpecificationBuilder("app.S").
		WithFactory(models.NewFactory("Logger", models.Of("app.Logger")).Build()).
		WithFactory(models.NewFactory("NewServer", models.Of("app.Server")).Property("Log", models.Of("app.Logger")).Build()).
		Build()
	nodes := resolveAll(t, spec, models.Of("app.Server"))

	var props map[string]any
	e := NewEvaluator(splice.NewArena(), func(node *resolver.DirectNode, args []any, p map[string]any) (any, error) {
		if node.Member() == "NewServer" {
			props = p
		}
		return node.Member(), nil
	})
	_, err := e.Evaluate(nodes[0], e.Arena().Root())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Log": "Logger"}, props)
}

func TestEvaluator_InvokeErrorPropagates(t *testing.T) {
	nodes := resolveAll(t, sessionSpec(), models.Of("app.Session"))
	e := NewEvaluator(splice.NewArena(), func(node *resolver.DirectNode, args []any, props map[string]any) (any, error) {
		if node.Member() == "Config" {
			return nil, fmt.Errorf("config unavailable")
		}
		return node.Member(), nil
	})

	_, err := e.Evaluate(nodes[0], e.Arena().Root())
	assert.EqualError(t, err, "config unavailable")
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		shape   typeexpr.CollectionKind
		parts   []any
		want    any
		wantErr string
	}{
		{
			name:  "sequence keeps order",
			shape: typeexpr.Sequence,
			parts: []any{[]any{1, 2}, []any{3}},
			want:  []any{1, 2, 3},
		},
		{
			name:  "set union",
			shape: typeexpr.Set,
			parts: []any{map[any]struct{}{"a": {}}, map[any]struct{}{"a": {}, "b": {}}},
			want:  map[any]struct{}{"a": {}, "b": {}},
		},
		{
			name:  "mapping union",
			shape: typeexpr.Mapping,
			parts: []any{map[any]any{"a": 1}, map[any]any{"b": 2}},
			want:  map[any]any{"a": 1, "b": 2},
		},
		{
			name:    "mapping duplicate key",
			shape:   typeexpr.Mapping,
			parts:   []any{map[any]any{"a": 1}, map[any]any{"a": 2}},
			wantErr: "duplicate key a in partial 1",
		},
		{
			name:    "wrong part type",
			shape:   typeexpr.Sequence,
			parts:   []any{"nope"},
			wantErr: "partial 0 is string, expected []any",
		},
		{
			name:    "not a collection",
			shape:   typeexpr.NotCollection,
			wantErr: "cannot merge into none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.shape, tt.parts)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeCachingProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mode := rapid.SampledFrom([]models.FabricationMode{
			models.Recurrent, models.Scoped, models.ContainerScoped,
		}).Draw(rt, "mode")
		requests := rapid.IntRange(1, 6).Draw(rt, "requests")

		spec := models.NewSpecificationBuilder("app.S").
			WithFactory(models.NewFactory("Value", models.Of("app.Value")).Fabrication(mode).Build()).
			Build()
		index, err := registry.NewRegistrar(nil).Build([]*models.Specification{spec})
		if err != nil {
			rt.Fatalf("registration failed: %v", err)
		}
		node, err := resolver.New(index).Resolve(resolver.Request{Key: models.Of("app.Value"), Context: "test"})
		if err != nil {
			rt.Fatalf("resolution failed: %v", err)
		}
		NewPlanner(nil).Plan(node)

		calls := newCallCounter()
		e := NewEvaluator(splice.NewArena(), calls.invoke)
		for i := 0; i < requests; i++ {
			if _, err := e.Evaluate(node, e.Arena().Root()); err != nil {
				rt.Fatalf("evaluation failed: %v", err)
			}
		}

		want := 1
		if mode == models.Recurrent {
			want = requests
		}
		if calls.calls["Value"] != want {
			rt.Fatalf("%s factory invoked %d times for %d requests, want %d", mode, calls.calls["Value"], requests, want)
		}
	})
}
