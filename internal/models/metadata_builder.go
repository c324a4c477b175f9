package models

// SpecificationBuilder provides a fluent interface for assembling specifications.
// Every factory, builder and link added through it is attached to the
// specification it builds.
type SpecificationBuilder struct {
	spec *Specification
}

// NewSpecificationBuilder creates a new specification builder
func NewSpecificationBuilder(name string) *SpecificationBuilder {
	return &SpecificationBuilder{
		spec: &Specification{Name: name},
	}
}

// Instantiated marks the specification as requiring an instance
func (b *SpecificationBuilder) Instantiated() *SpecificationBuilder {
	b.spec.Instantiation = Instantiated
	return b
}

// At sets the declaration location
func (b *SpecificationBuilder) At(loc SourceLocation) *SpecificationBuilder {
	b.spec.Location = loc
	return b
}

// WithFactory attaches a factory
func (b *SpecificationBuilder) WithFactory(f *Factory) *SpecificationBuilder {
	f.Specification = b.spec
	b.spec.Factories = append(b.spec.Factories, f)
	return b
}

// WithBuilder attaches a builder
func (b *SpecificationBuilder) WithBuilder(builder *Builder) *SpecificationBuilder {
	builder.Specification = b.spec
	b.spec.Builders = append(b.spec.Builders, builder)
	return b
}

// WithLink attaches a link
func (b *SpecificationBuilder) WithLink(input, output QualifiedType) *SpecificationBuilder {
	b.spec.Links = append(b.spec.Links, &Link{
		Input:         input,
		Output:        output,
		Specification: b.spec,
		Location:      b.spec.Location,
	})
	return b
}

// Build returns the assembled specification
func (b *SpecificationBuilder) Build() *Specification {
	return b.spec
}

// FactoryBuilder provides a fluent interface for factories
type FactoryBuilder struct {
	factory *Factory
}

// NewFactory starts a recurrent method factory for the given key
func NewFactory(member string, key QualifiedType) *FactoryBuilder {
	return &FactoryBuilder{
		factory: &Factory{Type: key, Member: member},
	}
}

// Kind sets the member kind
func (b *FactoryBuilder) Kind(kind MemberKind) *FactoryBuilder {
	b.factory.Kind = kind
	return b
}

// Fabrication sets the fabrication mode
func (b *FactoryBuilder) Fabrication(mode FabricationMode) *FactoryBuilder {
	b.factory.Fabrication = mode
	return b
}

// Params appends parameters
func (b *FactoryBuilder) Params(params ...QualifiedType) *FactoryBuilder {
	b.factory.Parameters = append(b.factory.Parameters, params...)
	return b
}

// Property appends a required property
func (b *FactoryBuilder) Property(name string, key QualifiedType) *FactoryBuilder {
	b.factory.Properties = append(b.factory.Properties, Property{Name: name, Type: key})
	return b
}

// Partial marks the factory as partial
func (b *FactoryBuilder) Partial() *FactoryBuilder {
	b.factory.Partial = true
	return b
}

// At sets the declaration location
func (b *FactoryBuilder) At(loc SourceLocation) *FactoryBuilder {
	b.factory.Location = loc
	return b
}

// Build returns the factory
func (b *FactoryBuilder) Build() *Factory {
	return b.factory
}

// InjectorBuilder provides a fluent interface for injectors
type InjectorBuilder struct {
	injector *Injector
}

// NewInjectorBuilder creates a new injector builder
func NewInjectorBuilder(name string) *InjectorBuilder {
	return &InjectorBuilder{injector: &Injector{Name: name}}
}

// Uses adds specifications
func (b *InjectorBuilder) Uses(specs ...*Specification) *InjectorBuilder {
	b.injector.Specifications = append(b.injector.Specifications, specs...)
	return b
}

// Requires adds dependency contracts satisfied by the parent
func (b *InjectorBuilder) Requires(deps ...*Dependency) *InjectorBuilder {
	b.injector.Dependencies = append(b.injector.Dependencies, deps...)
	return b
}

// Parameters adds runtime parameters
func (b *InjectorBuilder) Parameters(params ...QualifiedType) *InjectorBuilder {
	b.injector.Parameters = append(b.injector.Parameters, params...)
	return b
}

// Provides adds a provider request
func (b *InjectorBuilder) Provides(member string, key QualifiedType) *InjectorBuilder {
	b.injector.Providers = append(b.injector.Providers, &ProviderRequest{
		Member:   member,
		Type:     key,
		Location: b.injector.Location,
	})
	return b
}

// Populates adds a builder request
func (b *InjectorBuilder) Populates(member string, key QualifiedType) *InjectorBuilder {
	b.injector.Builders = append(b.injector.Builders, &BuilderRequest{
		Member:   member,
		Type:     key,
		Location: b.injector.Location,
	})
	return b
}

// Creates adds a child injector factory
func (b *InjectorBuilder) Creates(member string, child *Injector, params ...QualifiedType) *InjectorBuilder {
	b.injector.ChildFactories = append(b.injector.ChildFactories, &ChildInjectorFactory{
		Member:     member,
		Injector:   child,
		Parameters: params,
		Location:   b.injector.Location,
	})
	return b
}

// At sets the declaration location; requests added afterwards inherit it
func (b *InjectorBuilder) At(loc SourceLocation) *InjectorBuilder {
	b.injector.Location = loc
	return b
}

// Build returns the injector
func (b *InjectorBuilder) Build() *Injector {
	return b.injector
}
