package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/toyz/splice/internal/engine"
	"github.com/toyz/splice/internal/models"
	"github.com/toyz/splice/internal/resolver"
	"github.com/toyz/splice/internal/scope"
	"github.com/toyz/splice/internal/utils"
)

// PlanDocument is the serialised form of a build handed to emission
type PlanDocument struct {
	BuildID   string        `yaml:"build_id"`
	Module    string        `yaml:"module"`
	Sources   []string      `yaml:"sources,omitempty"`
	Injectors []InjectorDoc `yaml:"injectors"`
}

// InjectorDoc is one injector plan
type InjectorDoc struct {
	Name                      string              `yaml:"name"`
	Location                  string              `yaml:"location,omitempty"`
	Fingerprint               string              `yaml:"fingerprint"`
	Parameters                []string            `yaml:"parameters,omitempty"`
	Containers                []ContainerDoc      `yaml:"containers,omitempty"`
	Providers                 []RequestDoc        `yaml:"providers,omitempty"`
	Builders                  []RequestDoc        `yaml:"builders,omitempty"`
	Children                  []ChildDoc          `yaml:"children,omitempty"`
	DependencyImplementations []ImplementationDoc `yaml:"dependency_implementations,omitempty"`
	Frames                    []FrameDoc          `yaml:"frames"`
}

// ContainerDoc is one specification container
type ContainerDoc struct {
	Name         string `yaml:"name"`
	Instantiated bool   `yaml:"instantiated"`
}

// RequestDoc answers one provider or builder request
type RequestDoc struct {
	Member string  `yaml:"member"`
	Type   string  `yaml:"type"`
	Plan   NodeDoc `yaml:"plan"`
}

// ChildDoc is one child injector factory
type ChildDoc struct {
	Member     string   `yaml:"member"`
	Injector   string   `yaml:"injector"`
	Parameters []string `yaml:"parameters,omitempty"`
}

// ImplementationDoc forwards one contract provider to the parent container
type ImplementationDoc struct {
	Child      string  `yaml:"child"`
	Dependency string  `yaml:"dependency"`
	Member     string  `yaml:"member"`
	Type       string  `yaml:"type"`
	Plan       NodeDoc `yaml:"plan"`
}

// FrameDoc is one frame record
type FrameDoc struct {
	ID     int        `yaml:"id"`
	Parent int        `yaml:"parent"`
	Opener string     `yaml:"opener,omitempty"`
	Scoped []FieldDoc `yaml:"scoped,omitempty"`
	Shared []FieldDoc `yaml:"shared,omitempty"`
}

// FieldDoc is one cache slot
type FieldDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Factory string `yaml:"factory"`
}

// NodeDoc is one plan node. Kind is direct, combine or deferred.
type NodeDoc struct {
	Kind        string        `yaml:"kind"`
	Type        string        `yaml:"type"`
	Factory     string        `yaml:"factory,omitempty"`
	Builder     string        `yaml:"builder,omitempty"`
	Via         string        `yaml:"via,omitempty"`
	Fabrication string        `yaml:"fabrication,omitempty"`
	Field       string        `yaml:"field,omitempty"`
	Shape       string        `yaml:"shape,omitempty"`
	Arguments   []NodeDoc     `yaml:"arguments,omitempty"`
	Properties  []PropertyDoc `yaml:"properties,omitempty"`
	Elements    []NodeDoc     `yaml:"elements,omitempty"`
	Inner       *NodeDoc      `yaml:"inner,omitempty"`
}

// PropertyDoc fills one required property
type PropertyDoc struct {
	Name  string  `yaml:"name"`
	Value NodeDoc `yaml:"value"`
}

// PlanWriter serialises build results
type PlanWriter struct {
	newID func() string
}

// NewPlanWriter creates a writer that tags every document with a random build id
func NewPlanWriter() *PlanWriter {
	return &PlanWriter{newID: func() string { return uuid.NewString() }}
}

// Document converts a build result
func (w *PlanWriter) Document(module string, sources []string, result *engine.Result) *PlanDocument {
	doc := &PlanDocument{
		BuildID: w.newID(),
		Module:  module,
		Sources: sources,
	}
	for _, plan := range result.Injectors {
		doc.Injectors = append(doc.Injectors, injectorDoc(plan))
	}
	return doc
}

// Marshal renders a document as YAML
func (w *PlanWriter) Marshal(doc *PlanDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, utils.WrapGenerateError("plan document", err)
	}
	if err := enc.Close(); err != nil {
		return nil, utils.WrapGenerateError("plan document", err)
	}
	return buf.Bytes(), nil
}

// Write renders a document to path, creating its directory
func (w *PlanWriter) Write(path string, doc *PlanDocument) error {
	data, err := w.Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.WrapCreateError(fmt.Sprintf("directory %s", dir), err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return utils.WrapCreateError(fmt.Sprintf("plan file %s", path), err)
	}
	return nil
}

func injectorDoc(plan *engine.InjectorPlan) InjectorDoc {
	inj := plan.Injector
	doc := InjectorDoc{
		Name:        inj.Name,
		Fingerprint: string(plan.Fingerprint),
		Parameters:  keyStrings(inj.Parameters),
	}
	if !inj.Location.IsEmpty() {
		doc.Location = inj.Location.String()
	}

	for _, container := range plan.Containers {
		doc.Containers = append(doc.Containers, ContainerDoc{Name: container.Name, Instantiated: container.Instantiated})
	}
	for _, provider := range plan.Providers {
		doc.Providers = append(doc.Providers, RequestDoc{
			Member: provider.Request.Member,
			Type:   provider.Request.Type.String(),
			Plan:   nodeDoc(provider.Node),
		})
	}
	for _, builder := range plan.Builders {
		doc.Builders = append(doc.Builders, RequestDoc{
			Member: builder.Request.Member,
			Type:   builder.Request.Type.String(),
			Plan:   nodeDoc(builder.Node),
		})
	}
	for _, child := range plan.ChildFactories {
		entry := ChildDoc{Member: child.Request.Member, Parameters: keyStrings(child.Request.Parameters)}
		if child.Request.Injector != nil {
			entry.Injector = child.Request.Injector.Name
		}
		doc.Children = append(doc.Children, entry)
	}
	for _, impl := range plan.DependencyImplementations {
		doc.DependencyImplementations = append(doc.DependencyImplementations, ImplementationDoc{
			Child:      impl.Child.Name,
			Dependency: impl.Dependency.Name,
			Member:     impl.Provider.Member,
			Type:       impl.Provider.Type.String(),
			Plan:       nodeDoc(impl.Node),
		})
	}
	if plan.Frames != nil {
		for _, frame := range plan.Frames.Frames {
			doc.Frames = append(doc.Frames, frameDoc(frame))
		}
	}
	return doc
}

func frameDoc(frame *scope.FramePlan) FrameDoc {
	doc := FrameDoc{ID: frame.ID, Parent: frame.Parent}
	if frame.Opener != nil {
		doc.Opener = frame.Opener.Factory.DisplayName()
	}
	for _, field := range frame.ScopedFields {
		doc.Scoped = append(doc.Scoped, fieldDoc(field))
	}
	for _, field := range frame.SharedFields {
		doc.Shared = append(doc.Shared, fieldDoc(field))
	}
	return doc
}

func fieldDoc(field scope.Field) FieldDoc {
	return FieldDoc{Name: field.Name, Type: field.Key.String(), Factory: field.Factory.DisplayName()}
}

func nodeDoc(node resolver.Node) NodeDoc {
	switch n := node.(type) {
	case *resolver.DirectNode:
		doc := NodeDoc{Kind: "direct", Type: n.Requested.String()}
		if n.Builder != nil {
			doc.Builder = n.Builder.DisplayName()
		} else {
			doc.Factory = n.Factory.DisplayName()
			doc.Fabrication = n.Cache.Mode.String()
			doc.Field = n.Cache.Field
		}
		if n.Via != nil {
			doc.Via = n.Via.String()
		}
		for _, arg := range n.Arguments {
			doc.Arguments = append(doc.Arguments, nodeDoc(arg))
		}
		for _, prop := range n.Properties {
			doc.Properties = append(doc.Properties, PropertyDoc{Name: prop.Name, Value: nodeDoc(prop.Value)})
		}
		return doc

	case *resolver.CombineNode:
		doc := NodeDoc{Kind: "combine", Type: n.Requested.String(), Shape: n.Shape.String()}
		if n.Via != nil {
			doc.Via = n.Via.String()
		}
		for _, element := range n.Elements {
			doc.Elements = append(doc.Elements, nodeDoc(element))
		}
		return doc

	case *resolver.DeferredNode:
		inner := nodeDoc(n.Inner)
		return NodeDoc{Kind: "deferred", Type: n.Requested.String(), Inner: &inner}
	}
	return NodeDoc{Kind: "unknown"}
}

func keyStrings(keys []models.QualifiedType) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key.String()
	}
	return out
}
