package registry

import "github.com/toyz/splice/internal/models"

// Group is the registration unit stored per key: one factory, or several when
// every one of them is partial. Links register their output key against the
// same *Group, so a group can be reachable from several keys.
type Group struct {
	Key       models.QualifiedType // key the factories were declared under
	Factories []*models.Factory    // in declaration order
}

// Partial reports whether every factory in the group is partial
func (g *Group) Partial() bool {
	for _, f := range g.Factories {
		if !f.Partial {
			return false
		}
	}
	return len(g.Factories) > 0
}

// FactoryIndex maps keys to registration groups
type FactoryIndex struct {
	groups  map[models.QualifiedType]*Group
	links   map[models.QualifiedType]*models.Link
	ordered []models.QualifiedType
}

func newFactoryIndex() *FactoryIndex {
	return &FactoryIndex{
		groups: make(map[models.QualifiedType]*Group),
		links:  make(map[models.QualifiedType]*models.Link),
	}
}

// Lookup returns the group answering key
func (i *FactoryIndex) Lookup(key models.QualifiedType) (*Group, bool) {
	group, exists := i.groups[key]
	return group, exists
}

// Has checks if a key is answered
func (i *FactoryIndex) Has(key models.QualifiedType) bool {
	_, exists := i.groups[key]
	return exists
}

// LinkFor returns the link that registered key, if key is a link output
func (i *FactoryIndex) LinkFor(key models.QualifiedType) (*models.Link, bool) {
	link, exists := i.links[key]
	return link, exists
}

// Keys returns every answered key in registration order, link outputs last
func (i *FactoryIndex) Keys() []models.QualifiedType {
	keys := make([]models.QualifiedType, len(i.ordered))
	copy(keys, i.ordered)
	return keys
}

// Size returns the number of answered keys
func (i *FactoryIndex) Size() int {
	return len(i.groups)
}

func (i *FactoryIndex) put(key models.QualifiedType, group *Group) {
	if _, exists := i.groups[key]; !exists {
		i.ordered = append(i.ordered, key)
	}
	i.groups[key] = group
}

// BuilderIndex maps built types to their single builder
type BuilderIndex struct {
	builders map[models.QualifiedType]*models.Builder
	ordered  []models.QualifiedType
}

func newBuilderIndex() *BuilderIndex {
	return &BuilderIndex{builders: make(map[models.QualifiedType]*models.Builder)}
}

// Lookup returns the builder for key
func (i *BuilderIndex) Lookup(key models.QualifiedType) (*models.Builder, bool) {
	builder, exists := i.builders[key]
	return builder, exists
}

// Keys returns every built type in registration order
func (i *BuilderIndex) Keys() []models.QualifiedType {
	keys := make([]models.QualifiedType, len(i.ordered))
	copy(keys, i.ordered)
	return keys
}

// Size returns the number of builders
func (i *BuilderIndex) Size() int {
	return len(i.builders)
}

// Index is the finished, read-only result of registration
type Index struct {
	Factories      *FactoryIndex
	Builders       *BuilderIndex
	Specifications []*models.Specification
}
