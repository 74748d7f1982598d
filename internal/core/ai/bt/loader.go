package bt

import (
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config describes one tree. Nodes are keyed by name; a composite lists its
// children by name, a decorator names its single child.
type Config struct {
	Root  string                `yaml:"root"`
	Nodes map[string]ConfigNode `yaml:"nodes"`
}

type ConfigNode struct {
	Type     string         `yaml:"type"`
	Children []string       `yaml:"children,omitempty"`
	Child    string         `yaml:"child,omitempty"`
	Leaf     string         `yaml:"leaf,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// LoadYAML decodes a Config from r.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decode tree")
	}
	return &c, nil
}

// Build adds the nodes reachable from Root to tree and returns the root ID.
// A node may be referenced only once, so shared subtrees must be declared
// twice under different names.
func (c *Config) Build(tree *Tree, reg *Registry) (NodeID, error) {
	if c.Root == "" {
		return NoNode, nil
	}
	b := builder{cfg: c, tree: tree, reg: reg, ids: make(map[string]NodeID), visiting: make(map[string]bool)}
	return b.build(c.Root)
}

type builder struct {
	cfg      *Config
	tree     *Tree
	reg      *Registry
	ids      map[string]NodeID
	visiting map[string]bool
}

func (b *builder) build(name string) (NodeID, error) {
	if b.visiting[name] {
		return NoNode, errors.Wrapf(ErrCycle, "node %q", name)
	}
	if _, ok := b.ids[name]; ok {
		return NoNode, errors.Wrapf(ErrAlreadyParented, "node %q referenced twice", name)
	}
	nc, ok := b.cfg.Nodes[name]
	if !ok {
		return NoNode, errors.Wrapf(ErrUnknownNode, "node %q", name)
	}
	kind, ok := ParseKind(nc.Type)
	if !ok {
		return NoNode, errors.Wrapf(ErrUnknownKind, "node %q has type %q", name, nc.Type)
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	var id NodeID
	switch kind {
	case KindLeaf:
		l, err := b.reg.New(nc.Leaf, nc.Params)
		if err != nil {
			return NoNode, errors.Wrapf(err, "node %q", name)
		}
		id = b.tree.Leaf(name, l)
	case KindSelector, KindSequence:
		id = b.tree.add(kind, name)
		for _, childName := range nc.Children {
			if err := b.attach(id, childName); err != nil {
				return NoNode, err
			}
		}
	default:
		if nc.Child == "" {
			return NoNode, errors.Newf("bt: decorator %q needs a child", name)
		}
		id = b.tree.add(kind, name)
		switch kind {
		case KindRepeat:
			n, err := ParamInt(nc.Params, "times", 0)
			if err != nil {
				return NoNode, errors.Wrapf(err, "node %q", name)
			}
			b.tree.nodes[id].limit = n
		case KindCooldown:
			n, err := ParamInt(nc.Params, "frames", 0)
			if err != nil {
				return NoNode, errors.Wrapf(err, "node %q", name)
			}
			b.tree.nodes[id].limit = n
		}
		if err := b.attach(id, nc.Child); err != nil {
			return NoNode, err
		}
	}
	b.ids[name] = id
	return id, nil
}

func (b *builder) attach(parent NodeID, childName string) error {
	child, err := b.build(childName)
	if err != nil {
		return err
	}
	return b.tree.AddChild(parent, child)
}
