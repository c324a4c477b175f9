package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifiedTypeEquality(t *testing.T) {
	bare := Of("example.com/app.Widget")
	labeled := Qualified("example.com/app.Widget", Label("primary"))
	attributed := Qualified("example.com/app.Widget", Attribute("example.com/app.Primary"))

	assert.Equal(t, bare, Of("example.com/app.Widget"))
	assert.NotEqual(t, bare, labeled)
	assert.NotEqual(t, labeled, attributed)
	assert.NotEqual(t, labeled, Qualified("example.com/app.Widget", Label("secondary")))

	index := map[QualifiedType]int{bare: 1, labeled: 2, attributed: 3}
	assert.Len(t, index, 3)
	assert.Equal(t, 2, index[Qualified("example.com/app.Widget", Label("primary"))])
}

func TestQualifiedTypeString(t *testing.T) {
	assert.Equal(t, "example.com/app.Widget", Of("example.com/app.Widget").String())
	assert.Equal(t, `@label("db") example.com/app.Conn`, Qualified("example.com/app.Conn", Label("db")).String())
	assert.Equal(t, "@attr(example.com/app.Primary) example.com/app.Conn",
		Qualified("example.com/app.Conn", Attribute("example.com/app.Primary")).String())
}

func TestQualifierValidate(t *testing.T) {
	tests := []struct {
		name      string
		qualifier Qualifier
		wantErr   string
	}{
		{name: "none", qualifier: NoQualifier()},
		{name: "label", qualifier: Label("primary")},
		{name: "attribute", qualifier: Attribute("example.com/app.Primary")},
		{name: "empty label", qualifier: Label(""), wantErr: "label qualifier must not be empty"},
		{name: "empty attribute", qualifier: Attribute(""), wantErr: "attribute qualifier must name"},
		{name: "none with value", qualifier: Qualifier{Value: "x"}, wantErr: "unqualified key carries value"},
		{name: "unknown kind", qualifier: Qualifier{Kind: QualifierKind(9), Value: "x"}, wantErr: "unknown qualifier kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.qualifier.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnumParsing(t *testing.T) {
	mode, err := ParseFabricationMode("container_scoped")
	require.NoError(t, err)
	assert.Equal(t, ContainerScoped, mode)
	assert.Equal(t, "container_scoped", mode.String())

	mode, err = ParseFabricationMode("")
	require.NoError(t, err)
	assert.Equal(t, Recurrent, mode)

	_, err = ParseFabricationMode("singleton")
	assert.Error(t, err)

	kind, err := ParseMemberKind("reference")
	require.NoError(t, err)
	assert.Equal(t, MemberReferenceDelegate, kind)

	builderKind, err := ParseBuilderKind("direct")
	require.NoError(t, err)
	assert.Equal(t, BuilderDirect, builderKind)

	inst, err := ParseInstantiationMode("instantiated")
	require.NoError(t, err)
	assert.Equal(t, Instantiated, inst)
}

func TestSpecificationBuilderAttachesOwner(t *testing.T) {
	factory := NewFactory("NewWidget", Of("app.Widget")).Build()
	builder := &Builder{Type: Of("app.Widget"), Member: "Init"}

	spec := NewSpecificationBuilder("app.Specs").
		WithFactory(factory).
		WithBuilder(builder).
		WithLink(Of("app.Widget"), Of("app.Gadget")).
		Build()

	assert.Same(t, spec, factory.Specification)
	assert.Same(t, spec, builder.Specification)
	require.Len(t, spec.Links, 1)
	assert.Same(t, spec, spec.Links[0].Specification)
	assert.Equal(t, "app.Specs.NewWidget", factory.DisplayName())
	assert.Equal(t, "app.Widget -> app.Gadget", spec.Links[0].String())
}

func TestExpandDependencies(t *testing.T) {
	base := &Dependency{Name: "Base"}
	mid := &Dependency{Name: "Mid", Extends: []*Dependency{base}}
	top := &Dependency{Name: "Top", Extends: []*Dependency{mid, base}}
	other := &Dependency{Name: "Other", Extends: []*Dependency{top}}

	expanded := ExpandDependencies([]*Dependency{top, other, nil})
	names := make([]string, 0, len(expanded))
	for _, dep := range expanded {
		names = append(names, dep.Name)
	}
	assert.Equal(t, []string{"Top", "Mid", "Base", "Other"}, names)
}

func TestDependencySpecification(t *testing.T) {
	dep := &Dependency{
		Name: "app.SessionDeps",
		Providers: []*ProviderRequest{
			{Member: "Config", Type: Of("app.Config")},
			{Member: "Primary", Type: Qualified("app.Conn", Label("primary"))},
		},
	}

	spec := dep.Specification()
	assert.True(t, spec.Synthetic)
	assert.Equal(t, Instantiated, spec.Instantiation)
	require.Len(t, spec.Factories, 2)
	assert.Equal(t, Of("app.Config"), spec.Factories[0].Type)
	assert.Equal(t, "Primary", spec.Factories[1].Member)
	assert.Same(t, spec, spec.Factories[1].Specification)
	assert.Equal(t, Recurrent, spec.Factories[1].Fabrication)
}

func TestInjectorRegisteredSpecifications(t *testing.T) {
	specs := NewSpecificationBuilder("app.Specs").Build()
	base := &Dependency{Name: "Base", Providers: []*ProviderRequest{{Member: "Config", Type: Of("app.Config")}}}
	session := &Dependency{Name: "Session", Extends: []*Dependency{base}}

	injector := NewInjectorBuilder("app.Child").
		Uses(specs).
		Requires(session).
		Parameters(Of("app.Request")).
		Build()

	registered := injector.RegisteredSpecifications()
	require.Len(t, registered, 4)
	assert.Same(t, specs, registered[0])
	assert.Equal(t, "Session", registered[1].Name)
	assert.Equal(t, "Base", registered[2].Name)
	assert.Equal(t, "app.ChildParameters", registered[3].Name)
	require.Len(t, registered[3].Factories, 1)
	assert.Equal(t, MemberProperty, registered[3].Factories[0].Kind)
	assert.Equal(t, "Arg0", registered[3].Factories[0].Member)

	assert.Nil(t, NewInjectorBuilder("app.Root").Build().ParameterSpecification())
}

func TestSourceLocationString(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "specs.yaml", SourceLocation{File: "specs.yaml"}.String())
	assert.Equal(t, "specs.yaml:4", SourceLocation{File: "specs.yaml", Line: 4}.String())
	assert.Equal(t, "specs.yaml:4:2", SourceLocation{File: "specs.yaml", Line: 4, Column: 2}.String())
}
