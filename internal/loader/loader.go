// Package loader reads YAML descriptor documents and turns them into the
// descriptor model the engine plans from. Names are resolved across every
// document added to a Loader, so a specification may live in one file and the
// injector using it in another.
package loader

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/toyz/splice/internal/errors"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/typeexpr"
	"github.com/toyz/splice/internal/utils"
)

// Graph is the descriptor model assembled from every loaded document
type Graph struct {
	Specifications []*models.Specification
	Dependencies   []*models.Dependency
	Injectors      []*models.Injector
}

// Roots returns the injectors no other injector creates through a child
// factory, in declaration order
func (g *Graph) Roots() []*models.Injector {
	created := make(map[*models.Injector]bool)
	for _, inj := range g.Injectors {
		for _, child := range inj.ChildFactories {
			if child.Injector != nil {
				created[child.Injector] = true
			}
		}
	}

	var roots []*models.Injector
	for _, inj := range g.Injectors {
		if !created[inj] {
			roots = append(roots, inj)
		}
	}
	return roots
}

// Injector returns the named injector
func (g *Graph) Injector(name string) (*models.Injector, bool) {
	for _, inj := range g.Injectors {
		if inj.Name == name {
			return inj, true
		}
	}
	return nil, false
}

type source struct {
	file string
	doc  document
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger sets the trace logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFileReader shares a content cache with other components
func WithFileReader(reader *utils.FileReader) Option {
	return func(l *Loader) {
		if reader != nil {
			l.reader = reader
		}
	}
}

// Loader accumulates descriptor documents
type Loader struct {
	reader  *utils.FileReader
	parser  *typeexpr.Parser
	logger  *zap.Logger
	sources []source
}

// New creates an empty loader
func New(opts ...Option) *Loader {
	l := &Loader{
		reader: utils.NewFileReader(),
		parser: typeexpr.NewParser(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and adds one descriptor file
func (l *Loader) LoadFile(path string) error {
	content, err := l.reader.ReadFile(path)
	if err != nil {
		return utils.WrapLoadError("descriptor file "+path, err)
	}
	return l.Add(path, []byte(content))
}

// Add parses a descriptor document. Syntax errors are reported immediately;
// everything else is checked by Graph.
func (l *Loader) Add(file string, data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return utils.WrapParseError("descriptor file "+file, err)
	}
	l.sources = append(l.sources, source{file: file, doc: doc})
	l.logger.Debug("descriptor document added",
		zap.String("file", file),
		zap.Int("specifications", len(doc.Specifications)),
		zap.Int("dependencies", len(doc.Dependencies)),
		zap.Int("injectors", len(doc.Injectors)))
	return nil
}

// Graph resolves every added document into one descriptor graph. Every
// problem found is reported together as *errors.Diagnostics.
func (l *Loader) Graph() (*Graph, error) {
	a := &assembler{
		parser:    l.parser,
		c:         errors.NewCollector(),
		specs:     make(map[string]*models.Specification),
		deps:      make(map[string]*models.Dependency),
		injectors: make(map[string]*models.Injector),
		graph:     &Graph{},
	}

	// Declarations first so references may point forward or across files
	for _, src := range l.sources {
		a.unknownKeys(src.file, "document", "", src.doc.pos)
		for i := range src.doc.Specifications {
			a.specification(src.file, &src.doc.Specifications[i])
		}
		for i := range src.doc.Dependencies {
			a.declareDependency(src.file, &src.doc.Dependencies[i])
		}
		for i := range src.doc.Injectors {
			a.declareInjector(src.file, &src.doc.Injectors[i])
		}
	}

	for _, src := range l.sources {
		for i := range src.doc.Dependencies {
			a.fillDependency(src.file, &src.doc.Dependencies[i])
		}
		for i := range src.doc.Injectors {
			a.fillInjector(src.file, &src.doc.Injectors[i])
		}
	}

	if err := a.c.Err(); err != nil {
		return nil, err
	}

	l.logger.Debug("descriptor graph assembled",
		zap.Int("files", len(l.sources)),
		zap.Int("specifications", len(a.graph.Specifications)),
		zap.Int("injectors", len(a.graph.Injectors)))
	return a.graph, nil
}

// Load reads every file and assembles the graph
func Load(paths []string, opts ...Option) (*Graph, error) {
	l := New(opts...)
	for _, path := range paths {
		if err := l.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return l.Graph()
}

type assembler struct {
	parser *typeexpr.Parser
	c      *errors.Collector

	specs     map[string]*models.Specification
	deps      map[string]*models.Dependency
	injectors map[string]*models.Injector
	graph     *Graph
}

func at(file string, pos position) models.SourceLocation {
	return models.SourceLocation{File: file, Line: pos.line, Column: pos.column}
}

func (a *assembler) unknownKeys(file, what, name string, pos position) {
	for _, key := range pos.unknown {
		subject := what
		if name != "" {
			subject += " " + name
		}
		a.c.Add(errors.Invalidf(at(file, pos), "unknown field %q in %s", key, subject))
	}
}

func (a *assembler) key(loc models.SourceLocation, what, source string) (models.QualifiedType, bool) {
	key, err := a.parser.ParseQualified(source)
	if err != nil {
		a.c.Add(errors.Invalidf(loc, "%s has invalid type %q", what, source).WithCause(err))
		return models.QualifiedType{}, false
	}
	return key, true
}

func (a *assembler) keys(loc models.SourceLocation, what string, sources []string) []models.QualifiedType {
	keys := make([]models.QualifiedType, 0, len(sources))
	for i, src := range sources {
		if key, ok := a.key(loc, fmt.Sprintf("%s parameter %d", what, i), src); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (a *assembler) named(loc models.SourceLocation, what, name string) bool {
	if strings.TrimSpace(name) == "" {
		a.c.Add(errors.Invalidf(loc, "%s has no name", what))
		return false
	}
	return true
}

func (a *assembler) specification(file string, doc *specificationDoc) {
	loc := at(file, doc.pos)
	if !a.named(loc, "specification", doc.Name) {
		return
	}
	a.unknownKeys(file, "specification", doc.Name, doc.pos)

	if existing, ok := a.specs[doc.Name]; ok {
		a.c.Add(errors.Invalidf(loc, "specification %s is already declared at %s", doc.Name, existing.Location).
			WithContext("existing_location", existing.Location.String()))
		return
	}

	mode, err := models.ParseInstantiationMode(doc.Instantiation)
	if err != nil {
		a.c.Add(errors.Invalidf(loc, "specification %s: %v", doc.Name, err).
			WithSuggestion("Use instantiation: static or instantiated"))
	}

	spec := &models.Specification{Name: doc.Name, Instantiation: mode, Location: loc}
	a.specs[doc.Name] = spec
	a.graph.Specifications = append(a.graph.Specifications, spec)

	for i := range doc.Factories {
		if f := a.factory(file, spec, &doc.Factories[i]); f != nil {
			spec.Factories = append(spec.Factories, f)
		}
	}
	for i := range doc.Builders {
		if b := a.builder(file, spec, &doc.Builders[i]); b != nil {
			spec.Builders = append(spec.Builders, b)
		}
	}
	for i := range doc.Links {
		if l := a.link(file, spec, &doc.Links[i]); l != nil {
			spec.Links = append(spec.Links, l)
		}
	}
}

func (a *assembler) factory(file string, spec *models.Specification, doc *factoryDoc) *models.Factory {
	loc := at(file, doc.pos)
	what := "factory " + spec.Name + "." + doc.Member
	a.unknownKeys(file, "factory", spec.Name+"."+doc.Member, doc.pos)

	key, ok := a.key(loc, what, doc.Type)
	kind, err := models.ParseMemberKind(doc.Kind)
	if err != nil {
		a.c.Add(errors.Invalidf(loc, "%s: %v", what, err))
		ok = false
	}
	mode, err := models.ParseFabricationMode(doc.Fabrication)
	if err != nil {
		a.c.Add(errors.Invalidf(loc, "%s: %v", what, err).
			WithSuggestion("Use fabrication: recurrent, scoped, container or container_scoped"))
		ok = false
	}

	params := a.keys(loc, what, doc.Params)
	properties := make([]models.Property, 0, len(doc.Properties))
	for i := range doc.Properties {
		prop := &doc.Properties[i]
		propLoc := at(file, prop.pos)
		a.unknownKeys(file, "property", prop.Name, prop.pos)
		if !a.named(propLoc, what+" property", prop.Name) {
			ok = false
			continue
		}
		if propKey, valid := a.key(propLoc, what+" property "+prop.Name, prop.Type); valid {
			properties = append(properties, models.Property{Name: prop.Name, Type: propKey})
		}
	}
	if !ok || len(params) != len(doc.Params) || len(properties) != len(doc.Properties) {
		return nil
	}

	return &models.Factory{
		Type:          key,
		Member:        doc.Member,
		Kind:          kind,
		Fabrication:   mode,
		Parameters:    params,
		Properties:    properties,
		Partial:       doc.Partial,
		Specification: spec,
		Location:      loc,
	}
}

func (a *assembler) builder(file string, spec *models.Specification, doc *builderDoc) *models.Builder {
	loc := at(file, doc.pos)
	what := "builder " + spec.Name + "." + doc.Member
	a.unknownKeys(file, "builder", spec.Name+"."+doc.Member, doc.pos)

	key, ok := a.key(loc, what, doc.Type)
	kind, err := models.ParseBuilderKind(doc.Kind)
	if err != nil {
		a.c.Add(errors.Invalidf(loc, "%s: %v", what, err))
		ok = false
	}
	params := a.keys(loc, what, doc.Params)
	if !ok || len(params) != len(doc.Params) {
		return nil
	}

	return &models.Builder{
		Type:          key,
		Member:        doc.Member,
		Kind:          kind,
		Parameters:    params,
		Specification: spec,
		Location:      loc,
	}
}

func (a *assembler) link(file string, spec *models.Specification, doc *linkDoc) *models.Link {
	loc := at(file, doc.pos)
	a.unknownKeys(file, "link", "", doc.pos)

	input, okIn := a.key(loc, "link source", doc.From)
	output, okOut := a.key(loc, "link target", doc.To)
	if !okIn || !okOut {
		return nil
	}
	return &models.Link{Input: input, Output: output, Specification: spec, Location: loc}
}

func (a *assembler) declareDependency(file string, doc *dependencyDoc) {
	loc := at(file, doc.pos)
	if !a.named(loc, "dependency", doc.Name) {
		return
	}
	a.unknownKeys(file, "dependency", doc.Name, doc.pos)

	if existing, ok := a.deps[doc.Name]; ok {
		a.c.Add(errors.Invalidf(loc, "dependency %s is already declared at %s", doc.Name, existing.Location).
			WithContext("existing_location", existing.Location.String()))
		return
	}

	dep := &models.Dependency{Name: doc.Name, Location: loc}
	a.deps[doc.Name] = dep
	a.graph.Dependencies = append(a.graph.Dependencies, dep)
}

func (a *assembler) fillDependency(file string, doc *dependencyDoc) {
	dep := a.deps[doc.Name]
	if dep == nil || dep.Location != at(file, doc.pos) {
		return
	}

	dep.Providers = a.requests(file, "dependency "+doc.Name, doc.Providers)
	for _, name := range doc.Extends {
		parent, ok := a.deps[name]
		if !ok {
			a.c.Add(errors.Incompletef(dep.Location, "dependency %s extends unknown dependency %s", doc.Name, name).
				WithContext("missing", name))
			continue
		}
		dep.Extends = append(dep.Extends, parent)
	}
}

func (a *assembler) requests(file, owner string, docs []requestDoc) []*models.ProviderRequest {
	requests := make([]*models.ProviderRequest, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		loc := at(file, doc.pos)
		a.unknownKeys(file, owner+" request", doc.Member, doc.pos)
		if !a.named(loc, owner+" request", doc.Member) {
			continue
		}
		if key, ok := a.key(loc, owner+"."+doc.Member, doc.Type); ok {
			requests = append(requests, &models.ProviderRequest{Member: doc.Member, Type: key, Location: loc})
		}
	}
	return requests
}

func (a *assembler) declareInjector(file string, doc *injectorDoc) {
	loc := at(file, doc.pos)
	if !a.named(loc, "injector", doc.Name) {
		return
	}
	a.unknownKeys(file, "injector", doc.Name, doc.pos)

	if existing, ok := a.injectors[doc.Name]; ok {
		a.c.Add(errors.Invalidf(loc, "injector %s is already declared at %s", doc.Name, existing.Location).
			WithContext("existing_location", existing.Location.String()))
		return
	}

	inj := &models.Injector{Name: doc.Name, Location: loc}
	a.injectors[doc.Name] = inj
	a.graph.Injectors = append(a.graph.Injectors, inj)
}

func (a *assembler) fillInjector(file string, doc *injectorDoc) {
	inj := a.injectors[doc.Name]
	if inj == nil || inj.Location != at(file, doc.pos) {
		return
	}

	for _, name := range doc.Specifications {
		spec, ok := a.specs[name]
		if !ok {
			a.c.Add(errors.Incompletef(inj.Location, "injector %s uses unknown specification %s", inj.Name, name).
				WithContext("missing", name))
			continue
		}
		inj.Specifications = append(inj.Specifications, spec)
	}
	for _, name := range doc.Dependencies {
		dep, ok := a.deps[name]
		if !ok {
			a.c.Add(errors.Incompletef(inj.Location, "injector %s requires unknown dependency %s", inj.Name, name).
				WithContext("missing", name))
			continue
		}
		inj.Dependencies = append(inj.Dependencies, dep)
	}

	inj.Parameters = a.keys(inj.Location, "injector "+inj.Name, doc.Parameters)
	inj.Providers = a.requests(file, "injector "+inj.Name, doc.Providers)
	for _, req := range a.requests(file, "injector "+inj.Name, doc.Builders) {
		inj.Builders = append(inj.Builders, &models.BuilderRequest{Member: req.Member, Type: req.Type, Location: req.Location})
	}

	for i := range doc.Children {
		child := &doc.Children[i]
		loc := at(file, child.pos)
		a.unknownKeys(file, "child factory", child.Member, child.pos)
		if !a.named(loc, "child factory of injector "+inj.Name, child.Member) {
			continue
		}

		target, ok := a.injectors[child.Injector]
		if !ok {
			a.c.Add(errors.Incompletef(loc, "child factory %s.%s creates unknown injector %q", inj.Name, child.Member, child.Injector).
				WithContext("missing", child.Injector))
			continue
		}
		inj.ChildFactories = append(inj.ChildFactories, &models.ChildInjectorFactory{
			Member:     child.Member,
			Injector:   target,
			Parameters: a.keys(loc, "child factory "+inj.Name+"."+child.Member, child.Params),
			Location:   loc,
		})
	}
}
