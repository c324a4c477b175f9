// Package registry indexes every declared provider and builder by qualified
// type, merges partial providers and applies links.
package registry

import (
	"go.uber.org/zap"

	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/typeexpr"
)

// Registrar builds factory and builder indexes from specifications
type Registrar struct {
	logger *zap.Logger
}

// NewRegistrar creates a registrar. A nil logger disables tracing.
func NewRegistrar(logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{logger: logger}
}

// Build indexes every factory and builder of specs, then applies links in
// specification order. Every failure is collected; the index is returned only
// when there are none.
func (r *Registrar) Build(specs []*models.Specification) (*Index, error) {
	index := &Index{
		Factories:      newFactoryIndex(),
		Builders:       newBuilderIndex(),
		Specifications: specs,
	}
	c := errors.NewCollector()

	for _, spec := range specs {
		for _, factory := range spec.Factories {
			c.Try(func() error { return r.registerFactory(index.Factories, factory) })
		}
		for _, builder := range spec.Builders {
			c.Try(func() error { return r.registerBuilder(index.Builders, builder) })
		}
	}

	// Links run after every factory is indexed. Link outputs are known up front
	// so a chained link is reported the same way regardless of declaration order.
	outputs := make(map[models.QualifiedType]*models.Link)
	for _, spec := range specs {
		for _, link := range spec.Links {
			if _, exists := outputs[link.Output]; !exists {
				outputs[link.Output] = link
			}
		}
	}
	declared := make(map[models.QualifiedType]bool, index.Factories.Size())
	for _, key := range index.Factories.Keys() {
		declared[key] = true
	}

	for _, spec := range specs {
		for _, link := range spec.Links {
			c.Try(func() error { return r.applyLink(index.Factories, link, declared, outputs) })
		}
	}

	if err := c.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("registration complete",
		zap.Int("specifications", len(specs)),
		zap.Int("factory_keys", index.Factories.Size()),
		zap.Int("builders", index.Builders.Size()))
	return index, nil
}

func (r *Registrar) registerFactory(index *FactoryIndex, factory *models.Factory) error {
	if err := validateFactory(factory); err != nil {
		return err
	}

	existing, exists := index.Lookup(factory.Type)
	if !exists {
		index.put(factory.Type, &Group{Key: factory.Type, Factories: []*models.Factory{factory}})
		return nil
	}

	if !existing.Partial() || !factory.Partial {
		first := existing.Factories[0]
		return errors.Invalidf(factory.Location, "duplicate provider for %s: %s conflicts with %s",
			factory.Type, factory.DisplayName(), first.DisplayName()).
			WithContext("key", factory.Type.String()).
			WithContext("existing_location", first.Location.String()).
			WithContext("duplicate_location", factory.Location.String()).
			WithSuggestions(
				"Remove one of the factories",
				"Qualify one of them with a label or attribute",
				"Mark every factory of this type as partial to merge them into one collection",
			)
	}

	existing.Factories = append(existing.Factories, factory)
	return nil
}

func (r *Registrar) registerBuilder(index *BuilderIndex, builder *models.Builder) error {
	if err := validateBuilder(builder); err != nil {
		return err
	}

	if existing, exists := index.builders[builder.Type]; exists {
		return errors.Invalidf(builder.Location, "duplicate builder for %s: %s conflicts with %s",
			builder.Type, builder.DisplayName(), existing.DisplayName()).
			WithContext("key", builder.Type.String()).
			WithContext("existing_location", existing.Location.String()).
			WithSuggestion("Builders cannot be merged; keep exactly one builder per type")
	}

	index.builders[builder.Type] = builder
	index.ordered = append(index.ordered, builder.Type)
	return nil
}

func (r *Registrar) applyLink(index *FactoryIndex, link *models.Link, declared map[models.QualifiedType]bool, outputs map[models.QualifiedType]*models.Link) error {
	if err := validateKey(link.Input, link.Location); err != nil {
		return err
	}
	if err := validateKey(link.Output, link.Location); err != nil {
		return err
	}
	if link.Input == link.Output {
		return errors.Invalidf(link.Location, "link %s maps a type onto itself", link)
	}

	if !declared[link.Input] {
		if via, chained := outputs[link.Input]; chained {
			return errors.Invalidf(link.Location, "chained link %s: %s is only provided by link %s",
				link, link.Input, via).
				WithContext("via_location", via.Location.String()).
				WithSuggestion("Link directly from " + via.Input.String())
		}
		return errors.Incompletef(link.Location, "link %s: no factory registered for %s", link, link.Input).
			WithSuggestion("Add a factory for " + link.Input.String() + " to a specification used by this injector")
	}

	group, _ := index.Lookup(link.Input)
	if existing, exists := index.Lookup(link.Output); exists {
		owner := existing.Factories[0].DisplayName()
		if prior, isLink := index.LinkFor(link.Output); isLink {
			owner = "link " + prior.String()
		}
		return errors.Invalidf(link.Location, "duplicate provider for %s: link %s collides with %s",
			link.Output, link, owner).
			WithContext("key", link.Output.String())
	}

	index.put(link.Output, group)
	index.links[link.Output] = link
	r.logger.Debug("link applied", zap.Stringer("input", link.Input), zap.Stringer("output", link.Output))
	return nil
}

func validateKey(key models.QualifiedType, loc models.SourceLocation) error {
	if key.Type.IsZero() {
		return errors.Invalidf(loc, "missing type identity")
	}
	if err := key.Qualifier.Validate(); err != nil {
		return errors.Invalidf(loc, "invalid qualifier on %s: %v", key.Type, err)
	}
	return nil
}

func validateFactory(factory *models.Factory) error {
	if factory.Specification == nil {
		return errors.Internalf("factory %s has no owning specification", factory.Member).
			WithLocation(factory.Location)
	}

	c := errors.NewCollector()
	c.Add(validateKey(factory.Type, factory.Location))
	for _, param := range factory.Parameters {
		c.Add(validateKey(param, factory.Location))
	}
	for _, prop := range factory.Properties {
		c.Add(validateKey(prop.Type, factory.Location))
	}

	if factory.Member == "" && factory.Kind != models.MemberConstructor {
		c.Add(errors.Invalidf(factory.Location, "%s factory for %s must name a member", factory.Kind, factory.Type))
	}
	if factory.Kind == models.MemberProperty && len(factory.Parameters) > 0 {
		c.Add(errors.Invalidf(factory.Location, "property factory %s cannot take parameters", factory.DisplayName()))
	}
	if factory.Partial {
		if _, ok := typeexpr.CollectionOf(factory.Type.Type); !ok {
			c.Add(errors.Invalidf(factory.Location, "partial factory %s must produce a slice, set or map, not %s",
				factory.DisplayName(), factory.Type.Type))
		}
	}
	return c.Err()
}

func validateBuilder(builder *models.Builder) error {
	if builder.Specification == nil {
		return errors.Internalf("builder %s has no owning specification", builder.Member).
			WithLocation(builder.Location)
	}

	c := errors.NewCollector()
	c.Add(validateKey(builder.Type, builder.Location))
	for _, param := range builder.Parameters {
		c.Add(validateKey(param, builder.Location))
	}
	if builder.Member == "" && builder.Kind != models.BuilderDirect {
		c.Add(errors.Invalidf(builder.Location, "%s builder for %s must name a member", builder.Kind, builder.Type))
	}
	return c.Err()
}
