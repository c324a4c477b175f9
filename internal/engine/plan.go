package engine

import (
	"github.com/toyz/splice/internal/binder"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/resolver"
	"github.com/toyz/splice/internal/scope"
)

// ContainerPlan is one specification container the injector must hold
type ContainerPlan struct {
	Specification *models.Specification
	Name          string
	Instantiated  bool // an instance must be constructed to call its members
}

// ProviderPlan answers one provider request
type ProviderPlan struct {
	Request *models.ProviderRequest
	Node    resolver.Node
}

// BuilderPlan answers one builder request
type BuilderPlan struct {
	Request *models.BuilderRequest
	Node    *resolver.DirectNode
}

// ChildFactoryPlan creates a child injector
type ChildFactoryPlan struct {
	Request *models.ChildInjectorFactory
	Child   *InjectorPlan
}

// InjectorPlan is everything emission needs for one injector
type InjectorPlan struct {
	Injector                  *models.Injector
	Containers                []ContainerPlan
	Providers                 []ProviderPlan
	Builders                  []BuilderPlan
	ChildFactories            []ChildFactoryPlan
	DependencyImplementations []*binder.DependencyImplementation // forwarding for the children this injector creates
	Frames                    *scope.Plan
	Fingerprint               Fingerprint
}

// Name returns the injector name
func (p *InjectorPlan) Name() string {
	return p.Injector.Name
}

// Roots returns every top-level node of the plan: providers, builders and
// dependency implementations, in that order
func (p *InjectorPlan) Roots() []resolver.Node {
	var nodes []resolver.Node
	for _, provider := range p.Providers {
		nodes = append(nodes, provider.Node)
	}
	for _, builder := range p.Builders {
		nodes = append(nodes, builder.Node)
	}
	for _, impl := range p.DependencyImplementations {
		nodes = append(nodes, impl.Node)
	}
	return nodes
}

// Provider returns the plan answering the provider member
func (p *InjectorPlan) Provider(member string) (ProviderPlan, bool) {
	for _, provider := range p.Providers {
		if provider.Request.Member == member {
			return provider, true
		}
	}
	return ProviderPlan{}, false
}

// ImplementationsFor returns the forwarding plans for one child injector
func (p *InjectorPlan) ImplementationsFor(child *models.Injector) []*binder.DependencyImplementation {
	var result []*binder.DependencyImplementation
	for _, impl := range p.DependencyImplementations {
		if impl.Child == child {
			result = append(result, impl)
		}
	}
	return result
}

// Result is the outcome of one build
type Result struct {
	Injectors []*InjectorPlan
	Cached    int // plans served from the plan cache
}

// Lookup returns the plan of the named injector
func (r *Result) Lookup(name string) (*InjectorPlan, bool) {
	for _, plan := range r.Injectors {
		if plan.Injector.Name == name {
			return plan, true
		}
	}
	return nil, false
}

func containersOf(nodes []resolver.Node) []ContainerPlan {
	specs := resolver.Specifications(nodes...)
	containers := make([]ContainerPlan, 0, len(specs))
	for _, spec := range specs {
		containers = append(containers, ContainerPlan{
			Specification: spec,
			Name:          spec.Name,
			Instantiated:  spec.Instantiation == models.Instantiated,
		})
	}
	return containers
}
