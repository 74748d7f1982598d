package arena

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/arena/internal/core/ai/bt"
	"github.com/zeusync/arena/internal/core/ai/fsm"
)

func TestDefaultDefinitionsValidate(t *testing.T) {
	defs, err := DefaultDefinitions()
	require.NoError(t, err)
	require.NoError(t, defs.Validate())

	trees, machines, utility := defs.Names()
	assert.Equal(t, []string{DefaultName}, trees)
	assert.Equal(t, []string{DefaultName}, machines)
	assert.Equal(t, []string{DefaultName}, utility)

	table, err := defs.UtilityTable(DefaultName)
	require.NoError(t, err)
	var order []string
	for _, e := range table.Actions {
		order = append(order, e.Action)
	}
	assert.Equal(t, []string{"idle", "evade", "attack", "collect", "advance", "defend", "rest"}, order)
}

func TestDefinitionErrors(t *testing.T) {
	cases := map[string]struct {
		mutate func(d *Definitions)
		want   error
	}{
		"unknown leaf": {func(d *Definitions) {
			d.Trees[DefaultName].Nodes["guard"] = bt.ConfigNode{Type: "leaf", Leaf: "teleport"}
		}, bt.ErrUnknownLeaf},
		"unknown state": {func(d *Definitions) {
			d.Machines[DefaultName].States["dead"] = fsm.TableState{Transitions: []fsm.TableTransition{{On: "spawned", To: "limbo"}}}
		}, fsm.ErrUnknownState},
		"unknown action": {func(d *Definitions) {
			d.Utility[DefaultName].Actions = append(d.Utility[DefaultName].Actions, UtilityEntry{Action: "dance"})
		}, ErrUnknownAction},
		"missing tree": {func(d *Definitions) {
			delete(d.Trees, DefaultName)
		}, ErrUnknownDefinition},
		"unknown initial": {func(d *Definitions) {
			d.Utility[DefaultName].Initial = "nap"
		}, fsm.ErrUnknownState},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := DefaultDefinitions()
			require.NoError(t, err)
			tc.mutate(d)
			assert.ErrorIs(t, d.Validate(), tc.want)
		})
	}
}

func TestLoadDefinitionsRejectsBadYAML(t *testing.T) {
	_, err := LoadDefinitions(strings.NewReader("trees: [1, 2"))
	assert.Error(t, err)

	d, err := LoadDefinitions(strings.NewReader("{}"))
	require.NoError(t, err)
	_, err = d.Tree(DefaultName)
	assert.ErrorIs(t, err, ErrUnknownDefinition)
	_, err = d.Machine(DefaultName)
	assert.ErrorIs(t, err, ErrUnknownDefinition)
}

func TestActionNames(t *testing.T) {
	for a := ActionIdle; a <= ActionRest; a++ {
		got, ok := ParseAction(a.String())
		require.True(t, ok)
		assert.Equal(t, a, got)
	}
	_, ok := ParseAction("dance")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Action(42).String())
}
