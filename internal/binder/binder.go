// Package binder wires the dependency contracts of child injectors to the
// registrations of the injector that creates them.
package binder

import (
	"go.uber.org/zap"

	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/resolver"
)

// DependencyImplementation forwards one provider of a dependency contract to
// the parent's container
type DependencyImplementation struct {
	Dependency *models.Dependency
	Provider   *models.ProviderRequest
	Child      *models.Injector
	Parent     *models.Injector
	Node       resolver.Node // plan evaluated in the parent
}

// Binder resolves dependency contracts against a parent resolver
type Binder struct {
	logger *zap.Logger
}

// New creates a binder. A nil logger disables tracing.
func New(logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{logger: logger}
}

// Bind resolves every provider request of every contract child requires,
// extended contracts included, against the parent's resolver. Failures are
// reported at the contract's declaration, not inside the child.
func (b *Binder) Bind(child *models.Injector, parent *models.Injector, parentResolver *resolver.Resolver) ([]*DependencyImplementation, error) {
	c := errors.NewCollector()
	var result []*DependencyImplementation

	for _, dep := range models.ExpandDependencies(child.Dependencies) {
		impls := errors.Collect(c, dep.Providers, func(provider *models.ProviderRequest) (*DependencyImplementation, error) {
			return b.bindProvider(dep, provider, parent, parentResolver)
		})
		for _, impl := range impls {
			impl.Child = child
		}
		result = append(result, impls...)
	}

	if err := c.Err(); err != nil {
		return nil, err
	}

	b.logger.Debug("dependencies bound",
		zap.String("child", child.Name),
		zap.String("parent", parent.Name),
		zap.Int("implementations", len(result)))
	return result, nil
}

func (b *Binder) bindProvider(dep *models.Dependency, provider *models.ProviderRequest, parent *models.Injector, parentResolver *resolver.Resolver) (*DependencyImplementation, error) {
	loc := provider.Location
	if loc.IsEmpty() {
		loc = dep.Location
	}
	context := "dependency " + dep.Name + "." + provider.Member

	node, err := parentResolver.Resolve(resolver.Request{Key: provider.Type, Context: context, Location: loc})
	if err != nil {
		return nil, attribute(err, context, dep, parent, loc)
	}

	return &DependencyImplementation{
		Dependency: dep,
		Provider:   provider,
		Parent:     parent,
		Node:       node,
	}, nil
}

// attribute rewrites the failures that stem from the contract's own request so
// they point at the fix: a registration reachable from the parent. Failures
// deeper inside the parent's graph are the parent's own and pass through.
func attribute(err error, context string, dep *models.Dependency, parent *models.Injector, loc models.SourceLocation) error {
	c := errors.NewCollector()
	for _, d := range errors.Flatten(err) {
		if d.Kind != errors.IncompleteSpecification || d.Context()["requested_by"] != context {
			c.Add(d)
			continue
		}

		key, _ := d.Context()["key"].(string)
		c.Add(errors.Incompletef(loc, "dependency %s requires %s, which parent injector %s cannot provide",
			dep.Name, key, parent.Name).
			WithContext("dependency", dep.Name).
			WithContext("parent", parent.Name).
			WithContext("key", key).
			WithCause(d).
			WithSuggestion("Add a factory for " + key + " reachable from parent injector " + parent.Name))
	}
	return c.Err()
}
