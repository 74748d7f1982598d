package fsm

import (
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Table is the declarative form of a transition table:
//
//	initial: idle
//	states:
//	  idle:
//	    transitions:
//	      - {on: sees_enemy, to: combat}
type Table struct {
	Initial string                `yaml:"initial"`
	States  map[string]TableState `yaml:"states"`
}

type TableState struct {
	Transitions []TableTransition `yaml:"transitions"`
}

type TableTransition struct {
	On string `yaml:"on"`
	To string `yaml:"to"`
}

// LoadTable decodes a Table from r.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode transition table")
	}
	return &t, nil
}

// ApplyTable resolves every name in t against states and adds the
// transitions. It returns the initial state, nil when t names none. Nothing
// is added when any name fails to resolve.
func (m *Machine) ApplyTable(t *Table, states ...*State) (*State, error) {
	byName := make(map[string]*State, len(states))
	for _, s := range states {
		if s == nil {
			return nil, ErrNilState
		}
		byName[s.Name()] = s
	}
	resolve := func(name string) (*State, error) {
		s, ok := byName[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownState, "%q", name)
		}
		return s, nil
	}

	names := make([]string, 0, len(t.States))
	for name := range t.States {
		names = append(names, name)
	}
	sort.Strings(names)

	type edge struct {
		from, to *State
		on       Condition
	}
	var edges []edge
	for _, name := range names {
		from, err := resolve(name)
		if err != nil {
			return nil, err
		}
		for _, tr := range t.States[name].Transitions {
			on, ok := ParseCondition(tr.On)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownCondition, "%q in state %q", tr.On, name)
			}
			if on == None {
				return nil, errors.Wrapf(ErrNoneCondition, "state %q", name)
			}
			to, err := resolve(tr.To)
			if err != nil {
				return nil, errors.Wrapf(err, "transition %s from %q", tr.On, name)
			}
			edges = append(edges, edge{from: from, to: to, on: on})
		}
	}

	var initial *State
	if t.Initial != "" {
		s, err := resolve(t.Initial)
		if err != nil {
			return nil, errors.Wrap(err, "initial state")
		}
		initial = s
	}
	for _, e := range edges {
		if err := m.AddTransition(e.from, e.on, e.to); err != nil {
			return nil, err
		}
	}
	return initial, nil
}
