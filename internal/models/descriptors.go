package models

import "fmt"

// Property is a named required-property slot filled after construction
type Property struct {
	Name string        // property name on the produced type
	Type QualifiedType // key resolved to fill it
}

// Factory is a declared provider of one qualified type
type Factory struct {
	Type          QualifiedType   // key this factory answers
	Member        string          // member name on the owning specification
	Kind          MemberKind      // how the member is invoked
	Fabrication   FabricationMode // caching policy of the produced value
	Parameters    []QualifiedType // ordered parameters
	Properties    []Property      // required properties
	Partial       bool            // merged with other partial factories of the same key
	Specification *Specification  // owning specification
	Location      SourceLocation  // where the factory was declared
}

// DisplayName returns "Specification.Member" for messages
func (f *Factory) DisplayName() string {
	if f.Specification == nil {
		return f.Member
	}
	return f.Specification.Name + "." + f.Member
}

// Builder populates an existing instance of the built type
type Builder struct {
	Type          QualifiedType   // built type
	Member        string          // member name on the owning specification
	Kind          BuilderKind     // how the member is invoked
	Parameters    []QualifiedType // additional parameters after the instance
	Specification *Specification  // owning specification
	Location      SourceLocation  // where the builder was declared
}

// DisplayName returns "Specification.Member" for messages
func (b *Builder) DisplayName() string {
	if b.Specification == nil {
		return b.Member
	}
	return b.Specification.Name + "." + b.Member
}

// Link declares that whatever answers Input also answers Output
type Link struct {
	Input         QualifiedType
	Output        QualifiedType
	Specification *Specification
	Location      SourceLocation
}

// String renders the link as "Input -> Output"
func (l *Link) String() string {
	return fmt.Sprintf("%s -> %s", l.Input, l.Output)
}

// Specification groups factories, builders and links declared together
type Specification struct {
	Name          string
	Instantiation InstantiationMode
	Factories     []*Factory
	Builders      []*Builder
	Links         []*Link
	Synthetic     bool // produced by the engine rather than declared by the user
	Location      SourceLocation
}

// ProviderRequest is a value the caller wants handed out by an injector or dependency
type ProviderRequest struct {
	Member   string
	Type     QualifiedType
	Location SourceLocation
}

// BuilderRequest is an instance the caller wants populated by an injector
type BuilderRequest struct {
	Member   string
	Type     QualifiedType
	Location SourceLocation
}

// ChildInjectorFactory produces a child injector, optionally with runtime parameters
type ChildInjectorFactory struct {
	Member     string
	Injector   *Injector
	Parameters []QualifiedType
	Location   SourceLocation
}

// Injector is the requested public surface of one generated container
type Injector struct {
	Name           string
	Specifications []*Specification
	Dependencies   []*Dependency   // contracts required from the parent that creates this injector
	Parameters     []QualifiedType // runtime arguments supplied on creation
	Providers      []*ProviderRequest
	Builders       []*BuilderRequest
	ChildFactories []*ChildInjectorFactory
	Location       SourceLocation
}

// Dependency is a contract of provider requests a descendant needs satisfied by an ancestor
type Dependency struct {
	Name      string
	Providers []*ProviderRequest
	Extends   []*Dependency
	Location  SourceLocation
}

// Specification models the contract as a synthetic specification whose factories
// are the contract's own provider requests. Extended contracts are modelled
// separately, see ExpandDependencies.
func (d *Dependency) Specification() *Specification {
	spec := &Specification{
		Name:          d.Name,
		Instantiation: Instantiated,
		Synthetic:     true,
		Location:      d.Location,
	}
	for _, provider := range d.Providers {
		spec.Factories = append(spec.Factories, &Factory{
			Type:          provider.Type,
			Member:        provider.Member,
			Kind:          MemberMethod,
			Fabrication:   Recurrent,
			Specification: spec,
			Location:      provider.Location,
		})
	}
	return spec
}

// ExpandDependencies returns the given contracts and everything they extend,
// each contract once, in depth-first declaration order.
func ExpandDependencies(deps []*Dependency) []*Dependency {
	seen := make(map[*Dependency]bool)
	var result []*Dependency

	var visit func(d *Dependency)
	visit = func(d *Dependency) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		result = append(result, d)
		for _, parent := range d.Extends {
			visit(parent)
		}
	}

	for _, d := range deps {
		visit(d)
	}
	return result
}

// ParameterSpecification exposes the injector's runtime parameters as property
// factories. It returns nil when the injector takes no parameters.
func (i *Injector) ParameterSpecification() *Specification {
	if len(i.Parameters) == 0 {
		return nil
	}
	spec := &Specification{
		Name:          i.Name + "Parameters",
		Instantiation: Instantiated,
		Synthetic:     true,
		Location:      i.Location,
	}
	for idx, param := range i.Parameters {
		spec.Factories = append(spec.Factories, &Factory{
			Type:          param,
			Member:        fmt.Sprintf("Arg%d", idx),
			Kind:          MemberProperty,
			Fabrication:   Recurrent,
			Specification: spec,
			Location:      i.Location,
		})
	}
	return spec
}

// RegisteredSpecifications returns everything the injector's registrar indexes:
// its own specifications, one synthetic specification per required contract and
// the runtime parameter specification.
func (i *Injector) RegisteredSpecifications() []*Specification {
	specs := make([]*Specification, 0, len(i.Specifications)+len(i.Dependencies)+1)
	specs = append(specs, i.Specifications...)
	for _, dep := range ExpandDependencies(i.Dependencies) {
		specs = append(specs, dep.Specification())
	}
	if params := i.ParameterSpecification(); params != nil {
		specs = append(specs, params)
	}
	return specs
}
