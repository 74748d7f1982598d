// Package bt implements a tick-based behavior tree.
//
// Nodes live in a Tree arena and are addressed by NodeID. A composite keeps
// its children as an ordered list of IDs plus a cursor; each child keeps the
// ID of its parent. The structure is built once at setup and must not change
// while a Tick is in progress.
//
// Every node follows the same lifecycle. Tick enters the node when its last
// state was not Running, executes it, and exits it when the result is not
// Running. A node that returned Running is resumed, not restarted, on the
// next Tick. Reset forces a subtree back to fresh entry.
package bt

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrUnknownNode     = errors.New("bt: unknown node")
	ErrNotComposite    = errors.New("bt: node cannot have children")
	ErrAlreadyParented = errors.New("bt: node already has a parent")
	ErrCycle           = errors.New("bt: node would become its own ancestor")
	ErrChildLimit      = errors.New("bt: decorator already has a child")
	ErrUnknownLeaf     = errors.New("bt: unknown leaf")
	ErrUnknownKind     = errors.New("bt: unknown node kind")
	ErrNilLeaf         = errors.New("bt: nil leaf")
)

// NodeID addresses a node inside its Tree.
type NodeID int

// NoNode is the parent of a root and the root of an empty executor.
const NoNode NodeID = -1

// Kind tags the behavior of a node.
type Kind int

const (
	KindLeaf Kind = iota
	KindSelector
	KindSequence
	KindInverter
	KindSucceeder
	KindRepeat
	KindCooldown
)

var kindNames = map[Kind]string{
	KindLeaf:      "leaf",
	KindSelector:  "selector",
	KindSequence:  "sequence",
	KindInverter:  "inverter",
	KindSucceeder: "succeeder",
	KindRepeat:    "repeat",
	KindCooldown:  "cooldown",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) isComposite() bool { return k == KindSelector || k == KindSequence }

func (k Kind) isDecorator() bool {
	return k == KindInverter || k == KindSucceeder || k == KindRepeat || k == KindCooldown
}

type node struct {
	kind     Kind
	name     string
	leaf     Leaf
	parent   NodeID
	children []NodeID
	state    Status

	// cursor is the child being run by a composite, -1 before the first entry.
	cursor int

	// limit is the repeat count or the cooldown length in frames.
	limit   int
	count   int
	readyAt uint64
}

// Tree is an arena of behavior nodes. Node constructors that take children
// record the first wiring error; check Err once the tree is built.
type Tree struct {
	nodes []node
	err   error
}

func NewTree() *Tree {
	return &Tree{}
}

// Err returns the first error recorded by a constructor.
func (t *Tree) Err() error { return t.err }

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) add(kind Kind, name string) NodeID {
	t.nodes = append(t.nodes, node{kind: kind, name: name, parent: NoNode, cursor: -1})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) addWith(kind Kind, name string, children []NodeID) NodeID {
	id := t.add(kind, name)
	for _, c := range children {
		if err := t.AddChild(id, c); err != nil && t.err == nil {
			t.err = errors.Wrapf(err, "build %s %q", kind, name)
		}
	}
	return id
}

// Leaf adds a leaf node.
func (t *Tree) Leaf(name string, l Leaf) NodeID {
	id := t.add(KindLeaf, name)
	if l == nil && t.err == nil {
		t.err = errors.Wrapf(ErrNilLeaf, "build leaf %q", name)
	}
	t.nodes[id].leaf = l
	return id
}

// Selector adds an OR composite over children.
func (t *Tree) Selector(name string, children ...NodeID) NodeID {
	return t.addWith(KindSelector, name, children)
}

// Sequence adds an AND composite over children.
func (t *Tree) Sequence(name string, children ...NodeID) NodeID {
	return t.addWith(KindSequence, name, children)
}

// Inverter swaps Success and Failure of its child.
func (t *Tree) Inverter(name string, child NodeID) NodeID {
	return t.addWith(KindInverter, name, []NodeID{child})
}

// Succeeder turns a finished child into Success.
func (t *Tree) Succeeder(name string, child NodeID) NodeID {
	return t.addWith(KindSucceeder, name, []NodeID{child})
}

// Repeat runs its child to Success times times, one run per tick, and fails
// as soon as the child fails. A non-positive times repeats forever.
func (t *Tree) Repeat(name string, times int, child NodeID) NodeID {
	id := t.addWith(KindRepeat, name, []NodeID{child})
	t.nodes[id].limit = times
	return id
}

// Cooldown fails without ticking its child for frames frames after each
// finished child episode.
func (t *Tree) Cooldown(name string, frames int, child NodeID) NodeID {
	id := t.addWith(KindCooldown, name, []NodeID{child})
	t.nodes[id].limit = frames
	return id
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// AddChild appends child to parent.
func (t *Tree) AddChild(parent, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return errors.Wrapf(ErrUnknownNode, "add %d to %d", child, parent)
	}
	p := &t.nodes[parent]
	switch {
	case p.kind.isComposite():
	case p.kind.isDecorator():
		if len(p.children) > 0 {
			return errors.Wrapf(ErrChildLimit, "add %q to %q", t.nodes[child].name, p.name)
		}
	default:
		return errors.Wrapf(ErrNotComposite, "add %q to %q", t.nodes[child].name, p.name)
	}
	for a := parent; a != NoNode; a = t.nodes[a].parent {
		if a == child {
			return errors.Wrapf(ErrCycle, "add %q to %q", t.nodes[child].name, p.name)
		}
	}
	if t.nodes[child].parent != NoNode {
		return errors.Wrapf(ErrAlreadyParented, "add %q to %q", t.nodes[child].name, p.name)
	}
	p.children = append(p.children, child)
	t.nodes[child].parent = parent
	return nil
}

// RemoveChild detaches child from parent and resets the detached subtree.
// Removing at or before the cursor moves the cursor back by one. Removing a
// child before the cursor keeps resumption at the same child; removing the
// child at the cursor resumes at the one before it, which runs a fresh
// episode.
func (t *Tree) RemoveChild(parent, child NodeID) error {
	if !t.valid(parent) || !t.valid(child) {
		return errors.Wrapf(ErrUnknownNode, "remove %d from %d", child, parent)
	}
	p := &t.nodes[parent]
	for i, c := range p.children {
		if c != child {
			continue
		}
		p.children = append(p.children[:i:i], p.children[i+1:]...)
		if i <= p.cursor {
			p.cursor--
		}
		t.nodes[child].parent = NoNode
		t.Reset(child)
		return nil
	}
	return errors.Wrapf(ErrUnknownNode, "%q is not a child of %q", t.nodes[child].name, p.name)
}

// Children returns a copy of the ordered child list.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[id].children...)
}

func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// State returns the last result recorded for the node.
func (t *Tree) State(id NodeID) Status {
	if !t.valid(id) {
		return Failure
	}
	return t.nodes[id].state
}

// Cursor returns the composite child index, -1 when not started.
func (t *Tree) Cursor(id NodeID) int {
	if !t.valid(id) {
		return -1
	}
	return t.nodes[id].cursor
}

func (t *Tree) Name(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].name
}

func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return KindLeaf
	}
	return t.nodes[id].kind
}

// Tick runs one lifecycle step of the node.
func (t *Tree) Tick(id NodeID, ctx *Context) Status {
	if !t.valid(id) {
		return Failure
	}
	if t.nodes[id].state != Running {
		t.enter(id, ctx)
	}
	st := t.execute(id, ctx)
	t.nodes[id].state = st
	if st != Running {
		t.exit(id, ctx)
	}
	return st
}

// Reset forces the subtree back to Failure with cursors at -1, so the next
// Tick enters every node fresh. Exit hooks are not called.
func (t *Tree) Reset(id NodeID) {
	if !t.valid(id) {
		return
	}
	n := &t.nodes[id]
	n.state = Failure
	n.cursor = -1
	n.count = 0
	n.readyAt = 0
	for _, c := range n.children {
		t.Reset(c)
	}
}

func (t *Tree) enter(id NodeID, ctx *Context) {
	n := &t.nodes[id]
	switch n.kind {
	case KindLeaf:
		if e, ok := n.leaf.(Enterer); ok {
			e.OnEnter(ctx)
		}
	case KindSelector, KindSequence:
		n.cursor = 0
	case KindRepeat:
		n.count = 0
	}
}

func (t *Tree) exit(id NodeID, ctx *Context) {
	n := &t.nodes[id]
	if n.kind != KindLeaf {
		return
	}
	if e, ok := n.leaf.(Exiter); ok {
		e.OnExit(ctx)
	}
}

func (t *Tree) execute(id NodeID, ctx *Context) Status {
	switch t.nodes[id].kind {
	case KindLeaf:
		return t.nodes[id].leaf.Execute(ctx)
	case KindSelector:
		return t.selector(id, ctx)
	case KindSequence:
		return t.sequence(id, ctx)
	case KindInverter:
		return t.inverter(id, ctx)
	case KindSucceeder:
		return t.succeeder(id, ctx)
	case KindRepeat:
		return t.repeat(id, ctx)
	case KindCooldown:
		return t.cooldown(id, ctx)
	default:
		return Failure
	}
}
