package loader

import (
	"slices"

	"gopkg.in/yaml.v3"
)

// position records where a document entry starts and which keys it carried
// that the loader does not understand
type position struct {
	line    int
	column  int
	unknown []string
}

func (p *position) capture(n *yaml.Node, known ...string) {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	p.line, p.column = n.Line, n.Column
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if key := n.Content[i].Value; !slices.Contains(known, key) {
			p.unknown = append(p.unknown, key)
		}
	}
}

// document is one descriptor file
type document struct {
	Specifications []specificationDoc `yaml:"specifications"`
	Dependencies   []dependencyDoc    `yaml:"dependencies"`
	Injectors      []injectorDoc      `yaml:"injectors"`
	pos            position
}

func (d *document) UnmarshalYAML(n *yaml.Node) error {
	type plain document
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.pos.capture(n, "specifications", "dependencies", "injectors")
	return nil
}

type specificationDoc struct {
	Name          string       `yaml:"name"`
	Instantiation string       `yaml:"instantiation"`
	Factories     []factoryDoc `yaml:"factories"`
	Builders      []builderDoc `yaml:"builders"`
	Links         []linkDoc    `yaml:"links"`
	pos           position
}

func (s *specificationDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain specificationDoc
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.pos.capture(n, "name", "instantiation", "factories", "builders", "links")
	return nil
}

type propertyDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	pos  position
}

func (p *propertyDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain propertyDoc
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.pos.capture(n, "name", "type")
	return nil
}

type factoryDoc struct {
	Member      string        `yaml:"member"`
	Type        string        `yaml:"type"`
	Kind        string        `yaml:"kind"`
	Fabrication string        `yaml:"fabrication"`
	Params      []string      `yaml:"params"`
	Properties  []propertyDoc `yaml:"properties"`
	Partial     bool          `yaml:"partial"`
	pos         position
}

func (f *factoryDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain factoryDoc
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	f.pos.capture(n, "member", "type", "kind", "fabrication", "params", "properties", "partial")
	return nil
}

type builderDoc struct {
	Member string   `yaml:"member"`
	Type   string   `yaml:"type"`
	Kind   string   `yaml:"kind"`
	Params []string `yaml:"params"`
	pos    position
}

func (b *builderDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain builderDoc
	if err := n.Decode((*plain)(b)); err != nil {
		return err
	}
	b.pos.capture(n, "member", "type", "kind", "params")
	return nil
}

type linkDoc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	pos  position
}

func (l *linkDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain linkDoc
	if err := n.Decode((*plain)(l)); err != nil {
		return err
	}
	l.pos.capture(n, "from", "to")
	return nil
}

// requestDoc is a provider or builder request on an injector or contract
type requestDoc struct {
	Member string `yaml:"member"`
	Type   string `yaml:"type"`
	pos    position
}

func (r *requestDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain requestDoc
	if err := n.Decode((*plain)(r)); err != nil {
		return err
	}
	r.pos.capture(n, "member", "type")
	return nil
}

type dependencyDoc struct {
	Name      string       `yaml:"name"`
	Extends   []string     `yaml:"extends"`
	Providers []requestDoc `yaml:"providers"`
	pos       position
}

func (d *dependencyDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain dependencyDoc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.pos.capture(n, "name", "extends", "providers")
	return nil
}

type childDoc struct {
	Member   string   `yaml:"member"`
	Injector string   `yaml:"injector"`
	Params   []string `yaml:"params"`
	pos      position
}

func (c *childDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain childDoc
	if err := n.Decode((*plain)(c)); err != nil {
		return err
	}
	c.pos.capture(n, "member", "injector", "params")
	return nil
}

type injectorDoc struct {
	Name           string       `yaml:"name"`
	Specifications []string     `yaml:"specifications"`
	Dependencies   []string     `yaml:"dependencies"`
	Parameters     []string     `yaml:"parameters"`
	Providers      []requestDoc `yaml:"providers"`
	Builders       []requestDoc `yaml:"builders"`
	Children       []childDoc   `yaml:"children"`
	pos            position
}

func (i *injectorDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain injectorDoc
	if err := n.Decode((*plain)(i)); err != nil {
		return err
	}
	i.pos.capture(n, "name", "specifications", "dependencies", "parameters", "providers", "builders", "children")
	return nil
}
