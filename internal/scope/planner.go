// Package scope assigns caching strategies to invocation plans and derives the
// construction frames an injector needs at runtime.
package scope

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/resolver"
)

// RootFrame is the frame created with the injector itself
const RootFrame = 0

// NoParent is the parent of the root frame
const NoParent = -1

// Field is one cache slot owned by a frame
type Field struct {
	Name    string
	Key     models.QualifiedType
	Factory *models.Factory
}

// FramePlan describes one kind of frame. The root frame has no opener; every
// other frame is opened by invoking a Container factory from its parent.
type FramePlan struct {
	ID           int
	Parent       int
	Opener       *resolver.DirectNode
	ScopedFields []Field // Scoped caches owned by this frame
	SharedFields []Field // ContainerScoped caches, shared along the chain
}

// Plan is the frame layout of one injector
type Plan struct {
	Frames []*FramePlan
}

// Frame returns the frame with the given id
func (p *Plan) Frame(id int) *FramePlan {
	if id < 0 || id >= len(p.Frames) {
		return nil
	}
	return p.Frames[id]
}

type openerKey struct {
	factory *models.Factory
	parent  int
}

type visitKey struct {
	node  resolver.Node
	frame int
}

// Planner annotates nodes with cache strategies and collects frames
type Planner struct {
	logger  *zap.Logger
	plan    *Plan
	openers map[openerKey]int
	fields  map[int]map[string]bool
	visited map[visitKey]bool
}

// NewPlanner creates a planner with only the root frame
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		logger:  logger,
		plan:    &Plan{Frames: []*FramePlan{{ID: RootFrame, Parent: NoParent}}},
		openers: make(map[openerKey]int),
		fields:  make(map[int]map[string]bool),
		visited: make(map[visitKey]bool),
	}
}

// Plan annotates every node beneath roots, evaluated from the root frame
func (p *Planner) Plan(roots ...resolver.Node) *Plan {
	for _, root := range roots {
		p.visit(root, RootFrame)
	}
	p.logger.Debug("scope plan complete", zap.Int("frames", len(p.plan.Frames)))
	return p.plan
}

// Result returns the plan built so far
func (p *Planner) Result() *Plan {
	return p.plan
}

func (p *Planner) visit(node resolver.Node, frame int) {
	key := visitKey{node: node, frame: frame}
	if node == nil || p.visited[key] {
		return
	}
	p.visited[key] = true

	switch n := node.(type) {
	case *resolver.DirectNode:
		p.visitDirect(n, frame)
	case *resolver.CombineNode:
		for _, element := range n.Elements {
			p.visit(element, frame)
		}
	case *resolver.DeferredNode:
		p.visit(n.Inner, frame)
	}
}

func (p *Planner) visitDirect(n *resolver.DirectNode, frame int) {
	n.Cache = Strategy(n)

	inner := frame
	switch n.Cache.Mode {
	case models.Scoped:
		p.addField(frame, n, false)
	case models.ContainerScoped:
		p.addField(frame, n, true)
	case models.Container:
		inner = p.open(n, frame)
	}

	for _, arg := range n.Arguments {
		p.visit(arg, inner)
	}
	for _, prop := range n.Properties {
		p.visit(prop.Value, inner)
	}
}

func (p *Planner) open(n *resolver.DirectNode, parent int) int {
	key := openerKey{factory: n.Factory, parent: parent}
	if id, ok := p.openers[key]; ok {
		return id
	}

	id := len(p.plan.Frames)
	p.plan.Frames = append(p.plan.Frames, &FramePlan{ID: id, Parent: parent, Opener: n})
	p.openers[key] = id
	p.logger.Debug("frame opened",
		zap.Int("frame", id),
		zap.Int("parent", parent),
		zap.String("opener", n.Factory.DisplayName()))
	return id
}

func (p *Planner) addField(frame int, n *resolver.DirectNode, shared bool) {
	names, ok := p.fields[frame]
	if !ok {
		names = make(map[string]bool)
		p.fields[frame] = names
	}
	if names[n.Cache.Field] {
		return
	}
	names[n.Cache.Field] = true

	field := Field{Name: n.Cache.Field, Key: n.Factory.Type, Factory: n.Factory}
	target := p.plan.Frames[frame]
	if shared {
		target.SharedFields = append(target.SharedFields, field)
	} else {
		target.ScopedFields = append(target.ScopedFields, field)
	}
}

// Strategy derives the cache strategy of a direct invocation from its
// factory's fabrication mode.
func Strategy(n *resolver.DirectNode) resolver.CacheStrategy {
	mode := n.Fabrication()
	strategy := resolver.CacheStrategy{Mode: mode}
	if n.Factory != nil && (mode == models.Scoped || mode == models.ContainerScoped) {
		strategy.Field = FieldName(n.Factory)
	}
	return strategy
}

// FieldName returns the cache slot name of a factory: the owning specification
// and member with every non identifier rune replaced.
func FieldName(f *models.Factory) string {
	member := f.Member
	if member == "" {
		member = "new_" + string(f.Type.Type)
	}
	owner := ""
	if f.Specification != nil {
		owner = f.Specification.Name
	}
	name := sanitize(owner) + "_" + sanitize(member)
	if !f.Type.Qualifier.IsNone() {
		name += "_" + sanitize(f.Type.Qualifier.Value)
	}
	return name
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
