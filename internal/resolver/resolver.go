// Package resolver turns requested qualified types into invocation plans over a
// finished registry index.
package resolver

import (
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/registry"
	"github.com/toyz/splice/internal/typeexpr"
)

// DefaultLazyWrapper is the runtime wrapper recognised as a deferred request
const DefaultLazyWrapper = "github.com/toyz/splice/pkg/splice.Lazy"

// Request is one type to resolve together with who asked for it
type Request struct {
	Key      models.QualifiedType
	Context  string // requester, e.g. "provider App.Widget" or "app.Specs.NewServer"
	Location models.SourceLocation
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLazyWrappers replaces the generic wrapper names treated as deferred requests
func WithLazyWrappers(wrappers ...string) Option {
	return func(r *Resolver) {
		r.wrappers = append([]string(nil), wrappers...)
	}
}

// WithLogger sets the trace logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver resolves requests against one index. Plans are memoized per key,
// so resolving the same key twice returns the same node. Failures below a
// registered key are memoized too unless they involve a cycle, whose outcome
// depends on the path that reached the key.
type Resolver struct {
	index    *registry.Index
	wrappers []string
	logger   *zap.Logger
	memo     map[models.QualifiedType]Node
	failed   map[models.QualifiedType]error
}

// New creates a resolver over index
func New(index *registry.Index, opts ...Option) *Resolver {
	r := &Resolver{
		index:    index,
		wrappers: []string{DefaultLazyWrapper},
		logger:   zap.NewNop(),
		memo:     make(map[models.QualifiedType]Node),
		failed:   make(map[models.QualifiedType]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index returns the index the resolver reads
func (r *Resolver) Index() *registry.Index {
	return r.index
}

// Resolve produces the invocation plan for a requested type
func (r *Resolver) Resolve(req Request) (Node, error) {
	var p path
	node, err := r.resolve(req, &p)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolved", zap.Stringer("key", req.Key), zap.String("context", req.Context))
	return node, nil
}

// ResolveBuilder produces the plan that populates an existing instance of the
// requested type. The plan is always a single DirectNode.
func (r *Resolver) ResolveBuilder(req Request) (*DirectNode, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	builder, exists := r.index.Builders.Lookup(req.Key)
	if !exists {
		return nil, errors.Incompletef(req.Location, "no builder registered for %s required by %s", req.Key, req.Context).
			WithContext("key", req.Key.String()).
			WithSuggestion("Add a builder for " + req.Key.String() + " to a specification used by this injector")
	}

	var p path
	args, err := errors.Gather(builder.Parameters, func(param models.QualifiedType) (Node, error) {
		return r.resolve(Request{Key: param, Context: builder.DisplayName(), Location: builder.Location}, &p)
	})
	if err != nil {
		return nil, err
	}

	return &DirectNode{
		Requested:     req.Key,
		Builder:       builder,
		Specification: builder.Specification,
		Arguments:     args,
	}, nil
}

func (r *Resolver) resolve(req Request, p *path) (Node, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if inner, ok := typeexpr.DeferredOf(req.Key.Type, r.wrappers); ok {
		innerReq := req
		innerReq.Key = req.Key.WithType(inner)
		resolved, err := r.resolve(innerReq, p)
		if err != nil {
			return nil, err
		}
		return &DeferredNode{Requested: req.Key, Inner: resolved}, nil
	}

	if p.contains(req.Key) {
		p.cycles++
		return nil, errors.Invalidf(req.Location, "dependency cycle: %s", p.render(req.Key)).
			WithContext("key", req.Key.String()).
			WithContext("requested_by", req.Context).
			WithSuggestion("Break the cycle with a lazy parameter or by restructuring the factories")
	}

	if node, ok := r.memo[req.Key]; ok {
		return node, nil
	}
	if err, ok := r.failed[req.Key]; ok {
		return nil, err
	}

	group, exists := r.index.Factories.Lookup(req.Key)
	if !exists {
		return nil, errors.Incompletef(req.Location, "no provider for %s required by %s", req.Key, req.Context).
			WithContext("key", req.Key.String()).
			WithContext("requested_by", req.Context).
			WithSuggestion("Add a factory for " + req.Key.String() + " to a specification used by this injector")
	}
	via, _ := r.index.Factories.LinkFor(req.Key)

	p.push(req.Key)
	defer p.pop()
	cycles := p.cycles

	var node Node
	var err error
	if len(group.Factories) == 1 {
		var direct *DirectNode
		direct, err = r.direct(req.Key, group.Factories[0], p)
		if direct != nil {
			direct.Via = via
			node = direct
		}
	} else {
		var combine *CombineNode
		combine, err = r.combine(req, group, p)
		if combine != nil {
			combine.Via = via
			node = combine
		}
	}
	if err != nil {
		if p.cycles == cycles {
			r.failed[req.Key] = err
		}
		return nil, err
	}

	r.memo[req.Key] = node
	return node, nil
}

func (r *Resolver) direct(key models.QualifiedType, factory *models.Factory, p *path) (*DirectNode, error) {
	c := errors.NewCollector()

	args := errors.Collect(c, factory.Parameters, func(param models.QualifiedType) (Node, error) {
		return r.resolve(Request{Key: param, Context: factory.DisplayName(), Location: factory.Location}, p)
	})
	props := errors.Collect(c, factory.Properties, func(prop models.Property) (PropertyNode, error) {
		value, err := r.resolve(Request{
			Key:      prop.Type,
			Context:  factory.DisplayName() + "." + prop.Name,
			Location: factory.Location,
		}, p)
		if err != nil {
			return PropertyNode{}, err
		}
		return PropertyNode{Name: prop.Name, Value: value}, nil
	})

	if err := c.Err(); err != nil {
		return nil, err
	}

	return &DirectNode{
		Requested:     key,
		Factory:       factory,
		Specification: factory.Specification,
		Arguments:     args,
		Properties:    props,
	}, nil
}

func (r *Resolver) combine(req Request, group *registry.Group, p *path) (*CombineNode, error) {
	requested, ok := typeexpr.CollectionOf(req.Key.Type)
	if !ok {
		return nil, errors.Invalidf(req.Location, "%s has %d partial providers but is not a slice, set or map",
			req.Key, len(group.Factories)).
			WithContext("requested_by", req.Context)
	}

	first, _ := typeexpr.CollectionOf(group.Factories[0].Type.Type)
	c := errors.NewCollector()
	for _, factory := range group.Factories {
		entry, _ := typeexpr.CollectionOf(factory.Type.Type)
		if entry.Kind != requested.Kind {
			c.Add(errors.Invalidf(factory.Location, "partial provider %s produces a %s but %s is a %s",
				factory.DisplayName(), entry.Kind, req.Key, requested.Kind))
			continue
		}
		// Entries share one key, so only a link output can disagree on elements
		if entry.ElementSignature() != requested.ElementSignature() {
			c.Add(errors.Invalidf(factory.Location, "partial provider %s has element type %s but %s collects %s",
				factory.DisplayName(), entry.ElementSignature(), req.Key, requested.ElementSignature()).
				WithContext("key", req.Key.String()).
				WithContext("requested_by", req.Context))
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	elements, err := errors.Gather(group.Factories, func(factory *models.Factory) (*DirectNode, error) {
		return r.direct(factory.Type, factory, p)
	})
	if err != nil {
		return nil, err
	}

	return &CombineNode{
		Requested: req.Key,
		Shape:     requested.Kind,
		Element:   first.ElementSignature(),
		Elements:  elements,
	}, nil
}

func validateRequest(req Request) error {
	if req.Key.Type.IsZero() {
		return errors.Invalidf(req.Location, "%s requests an empty type", req.Context)
	}
	if err := req.Key.Qualifier.Validate(); err != nil {
		return errors.Invalidf(req.Location, "invalid qualifier on %s requested by %s: %v", req.Key.Type, req.Context, err)
	}
	return nil
}

// path is the chain of keys currently under construction. cycles counts the
// cycles detected along it so far.
type path struct {
	keys   []models.QualifiedType
	cycles int
}

func (p *path) push(key models.QualifiedType) {
	p.keys = append(p.keys, key)
}

func (p *path) pop() {
	p.keys = p.keys[:len(p.keys)-1]
}

func (p *path) contains(key models.QualifiedType) bool {
	for _, k := range p.keys {
		if k == key {
			return true
		}
	}
	return false
}

// render prints the cycle closed by key, starting at its first occurrence
func (p *path) render(key models.QualifiedType) string {
	start := 0
	for i, k := range p.keys {
		if k == key {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(p.keys)-start+1)
	for _, k := range p.keys[start:] {
		parts = append(parts, k.String())
	}
	parts = append(parts, key.String())
	return strings.Join(parts, " -> ")
}
