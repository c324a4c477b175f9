// Package engine runs a complete build: registration, resolution and scope
// planning for every injector, then cross-scope binding once every parent
// index exists.
package engine

import (
	"slices"

	"go.uber.org/zap"

	"github.com/toyz/splice/internal/binder"
	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/registry"
	"github.com/toyz/splice/internal/resolver"
	"github.com/toyz/splice/internal/scope"
)

// Options configures an Engine
type Options struct {
	// Logger receives trace output; nil disables it
	Logger *zap.Logger

	// LazyWrappers replaces the generic wrapper names treated as deferred
	// requests; nil keeps the default
	LazyWrappers []string

	// Cache memoizes plans across builds; nil disables memoization
	Cache *PlanCache
}

// Engine builds injector plans
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// New creates an engine
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts, logger: logger}
}

// unit is the per-injector working state shared by both passes
type unit struct {
	plan     *InjectorPlan
	resolver *resolver.Resolver
	planner  *scope.Planner
	cached   bool
}

// Build plans every root injector and every child injector reachable from
// them. All diagnostics from every injector are reported together.
func (e *Engine) Build(roots ...*models.Injector) (*Result, error) {
	injectors := Discover(roots...)
	units := make(map[*models.Injector]*unit, len(injectors))
	c := errors.NewCollector()

	// Pass 1: local registration, resolution and planning
	for _, inj := range injectors {
		c.Try(func() error {
			u, err := e.local(inj)
			if u != nil {
				units[inj] = u
			}
			return err
		})
	}

	// Pass 2: every parent index now exists
	for _, inj := range injectors {
		u := units[inj]
		if u == nil || u.cached {
			continue
		}
		c.Try(func() error { return e.bind(u) })
	}

	if err := c.Err(); err != nil {
		e.logger.Debug("build failed", zap.Int("diagnostics", c.Len()))
		return nil, err
	}

	return e.finish(injectors, units), nil
}

func (e *Engine) local(inj *models.Injector) (*unit, error) {
	fp := FingerprintOf(inj, e.opts.LazyWrappers)
	if e.opts.Cache != nil {
		if plan, ok := e.opts.Cache.Get(fp); ok {
			e.logger.Debug("plan cache hit", zap.String("injector", inj.Name))
			return &unit{plan: plan, cached: true}, nil
		}
	}

	index, err := registry.NewRegistrar(e.logger).Build(inj.RegisteredSpecifications())
	if err != nil {
		return nil, err
	}

	opts := []resolver.Option{resolver.WithLogger(e.logger)}
	if e.opts.LazyWrappers != nil {
		opts = append(opts, resolver.WithLazyWrappers(e.opts.LazyWrappers...))
	}
	u := &unit{
		plan:     &InjectorPlan{Injector: inj, Fingerprint: fp},
		resolver: resolver.New(index, opts...),
		planner:  scope.NewPlanner(e.logger),
	}

	c := errors.NewCollector()
	u.plan.Providers = errors.Collect(c, inj.Providers, func(req *models.ProviderRequest) (ProviderPlan, error) {
		node, err := u.resolver.Resolve(resolver.Request{
			Key:      req.Type,
			Context:  "provider " + inj.Name + "." + req.Member,
			Location: req.Location,
		})
		return ProviderPlan{Request: req, Node: node}, err
	})
	u.plan.Builders = errors.Collect(c, inj.Builders, func(req *models.BuilderRequest) (BuilderPlan, error) {
		node, err := u.resolver.ResolveBuilder(resolver.Request{
			Key:      req.Type,
			Context:  "builder " + inj.Name + "." + req.Member,
			Location: req.Location,
		})
		return BuilderPlan{Request: req, Node: node}, err
	})
	for _, child := range inj.ChildFactories {
		c.Add(validateChildFactory(inj, child))
	}

	u.planner.Plan(u.plan.Roots()...)
	return u, c.Err()
}

func (e *Engine) bind(u *unit) error {
	b := binder.New(e.logger)
	c := errors.NewCollector()
	var bound []*models.Injector

	for _, child := range u.plan.Injector.ChildFactories {
		if child.Injector == nil || slices.Contains(bound, child.Injector) {
			continue
		}
		bound = append(bound, child.Injector)

		impls, err := b.Bind(child.Injector, u.plan.Injector, u.resolver)
		if err != nil {
			c.Add(err)
			continue
		}
		u.plan.DependencyImplementations = append(u.plan.DependencyImplementations, impls...)
		for _, impl := range impls {
			u.planner.Plan(impl.Node)
		}
	}
	return c.Err()
}

func (e *Engine) finish(injectors []*models.Injector, units map[*models.Injector]*unit) *Result {
	result := &Result{}
	plans := make(map[*models.Injector]*InjectorPlan, len(injectors))

	for _, inj := range injectors {
		u := units[inj]
		plan := u.plan
		if u.cached {
			plan = rebase(plan, inj)
			result.Cached++
		} else {
			plan.Frames = u.planner.Result()
			plan.Containers = containersOf(plan.Roots())
		}
		plans[inj] = plan
		result.Injectors = append(result.Injectors, plan)
	}

	for _, plan := range result.Injectors {
		children := make([]ChildFactoryPlan, 0, len(plan.Injector.ChildFactories))
		for _, child := range plan.Injector.ChildFactories {
			children = append(children, ChildFactoryPlan{Request: child, Child: plans[child.Injector]})
		}
		plan.ChildFactories = children

		if e.opts.Cache != nil && !units[plan.Injector].cached {
			e.opts.Cache.Put(plan)
		}
	}

	e.logger.Info("build complete",
		zap.Int("injectors", len(result.Injectors)),
		zap.Int("cached", result.Cached))
	return result
}

// rebase copies a cached plan onto the descriptors of the current build. The
// cached entry itself is never modified. Everything the plan exposes at its top
// level is re-pointed: the injector, its requests, containers and forwarding.
// Resolved nodes stay a structural snapshot of the build that produced them, so
// their Factory and Specification pointers refer to equal descriptors of that
// build rather than to the current ones.
func rebase(cached *InjectorPlan, inj *models.Injector) *InjectorPlan {
	clone := *cached
	clone.Injector = inj

	// Equal fingerprints mean the same requests in the same order.
	clone.Providers = make([]ProviderPlan, len(cached.Providers))
	for i, provider := range cached.Providers {
		if i < len(inj.Providers) {
			provider.Request = inj.Providers[i]
		}
		clone.Providers[i] = provider
	}
	clone.Builders = make([]BuilderPlan, len(cached.Builders))
	for i, builder := range cached.Builders {
		if i < len(inj.Builders) {
			builder.Request = inj.Builders[i]
		}
		clone.Builders[i] = builder
	}

	specs := make(map[string]*models.Specification)
	for _, spec := range inj.RegisteredSpecifications() {
		specs[spec.Name] = spec
	}
	clone.Containers = make([]ContainerPlan, len(cached.Containers))
	for i, container := range cached.Containers {
		if spec, ok := specs[container.Name]; ok {
			container.Specification = spec
		}
		clone.Containers[i] = container
	}

	children := make(map[string]*models.Injector, len(inj.ChildFactories))
	for _, child := range inj.ChildFactories {
		if child.Injector != nil {
			children[child.Injector.Name] = child.Injector
		}
	}

	clone.DependencyImplementations = make([]*binder.DependencyImplementation, 0, len(cached.DependencyImplementations))
	for _, impl := range cached.DependencyImplementations {
		moved := *impl
		moved.Parent = inj
		if child, ok := children[impl.Child.Name]; ok {
			moved.Child = child
		}
		clone.DependencyImplementations = append(clone.DependencyImplementations, &moved)
	}
	return &clone
}

func validateChildFactory(parent *models.Injector, child *models.ChildInjectorFactory) error {
	if child.Injector == nil {
		return errors.Incompletef(child.Location, "child factory %s.%s does not reference an injector",
			parent.Name, child.Member)
	}

	if !slices.Equal(child.Parameters, child.Injector.Parameters) {
		return errors.Invalidf(child.Location, "child factory %s.%s passes %s but injector %s takes %s",
			parent.Name, child.Member, formatKeys(child.Parameters), child.Injector.Name, formatKeys(child.Injector.Parameters)).
			WithSuggestion("Declare the factory parameters in the same order as the child injector's parameters")
	}
	return nil
}

func formatKeys(keys []models.QualifiedType) string {
	if len(keys) == 0 {
		return "no parameters"
	}
	out := "("
	for i, key := range keys {
		if i > 0 {
			out += ", "
		}
		out += key.String()
	}
	return out + ")"
}

// Discover returns the roots and every injector reachable from them through
// child factories, each once, in depth-first preorder.
func Discover(roots ...*models.Injector) []*models.Injector {
	seen := make(map[*models.Injector]bool)
	var result []*models.Injector

	var visit func(inj *models.Injector)
	visit = func(inj *models.Injector) {
		if inj == nil || seen[inj] {
			return
		}
		seen[inj] = true
		result = append(result, inj)
		for _, child := range inj.ChildFactories {
			visit(child.Injector)
		}
	}

	for _, root := range roots {
		visit(root)
	}
	return result
}
