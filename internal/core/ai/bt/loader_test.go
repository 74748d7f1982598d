package bt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/ai/blackboard"
)

const patrolYAML = `
root: main
nodes:
  main:
    type: selector
    children: [attack, rest]
  attack:
    type: sequence
    children: [forced, mark]
  forced:
    type: leaf
    leaf: flag
    params: {key: force_attack}
  mark:
    type: leaf
    leaf: set_flag
    params: {key: attacked, value: true}
  rest:
    type: repeat
    child: idle
    params: {times: 2}
  idle:
    type: leaf
    leaf: succeed
`

func build(t *testing.T, doc string) (*Tree, NodeID, error) {
	t.Helper()
	cfg, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	tree := NewTree()
	root, err := cfg.Build(tree, NewRegistry())
	return tree, root, err
}

func TestLoadYAMLBuildsTree(t *testing.T) {
	tree, root, err := build(t, patrolYAML)
	require.NoError(t, err)
	assert.Equal(t, "main", tree.Name(root))
	assert.Equal(t, KindSelector, tree.Kind(root))
	require.Len(t, tree.Children(root), 2)
	rest := tree.Children(root)[1]
	assert.Equal(t, KindRepeat, tree.Kind(rest))

	bb := blackboard.New()
	ctx := &Context{BB: bb}
	assert.Equal(t, Running, tree.Tick(root, ctx))
	assert.Equal(t, Success, tree.Tick(root, ctx))
	assert.False(t, blackboard.GetOr(bb, "attacked", false))

	blackboard.Set(bb, "force_attack", true)
	assert.Equal(t, Success, tree.Tick(root, ctx))
	assert.True(t, blackboard.Get[bool](bb, "attacked"))
}

func TestLoadYAMLConfigurationErrors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown leaf": {
			doc:  "root: a\nnodes:\n  a: {type: leaf, leaf: teleport}\n",
			want: ErrUnknownLeaf,
		},
		"unknown child": {
			doc:  "root: a\nnodes:\n  a: {type: sequence, children: [ghost]}\n",
			want: ErrUnknownNode,
		},
		"shared child": {
			doc:  "root: a\nnodes:\n  a: {type: sequence, children: [b, b]}\n  b: {type: leaf, leaf: succeed}\n",
			want: ErrAlreadyParented,
		},
		"cycle": {
			doc:  "root: a\nnodes:\n  a: {type: sequence, children: [b]}\n  b: {type: inverter, child: a}\n",
			want: ErrCycle,
		},
		"unknown kind": {
			doc:  "root: a\nnodes:\n  a: {type: parallel}\n",
			want: ErrUnknownKind,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := build(t, tc.doc)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadYAMLDecoratorNeedsChild(t *testing.T) {
	_, _, err := build(t, "root: a\nnodes:\n  a: {type: cooldown, params: {frames: 3}}\n")
	assert.Error(t, err)
}

func TestEmptyRoot(t *testing.T) {
	_, root, err := build(t, "nodes: {}\n")
	require.NoError(t, err)
	assert.Equal(t, NoNode, root)
}

func TestRegistryNamesAndParams(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"fail", "flag", "running", "set_flag", "succeed"}, reg.Names())

	_, err := reg.New("flag", nil)
	assert.Error(t, err)

	n, err := ParamInt(map[string]any{"n": 2.0}, "n", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = ParamInt(map[string]any{"n": "two"}, "n", 0)
	assert.Error(t, err)
	v, err := ParamFloat(map[string]any{}, "v", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}
