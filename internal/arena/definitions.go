package arena

import (
	"bytes"
	_ "embed"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/arena/internal/core/ai/bt"
	"github.com/zeusync/arena/internal/core/ai/fsm"
)

//go:embed definitions.yaml
var embeddedDefinitions []byte

// DefaultName is the definition every policy uses.
const DefaultName = "default"

var ErrUnknownDefinition = errors.New("arena: unknown definition")

// Definitions hold the data-driven half of the policies: tree shapes,
// transition tables and utility action tables, each keyed by name.
type Definitions struct {
	Trees    map[string]*bt.Config    `yaml:"trees"`
	Machines map[string]*fsm.Table    `yaml:"machines"`
	Utility  map[string]*UtilityTable `yaml:"utility"`
}

// UtilityTable lists utility actions in tie-break order. Initial names the
// state the machine starts in before the first decision.
type UtilityTable struct {
	Initial string         `yaml:"initial"`
	Actions []UtilityEntry `yaml:"actions"`
}

type UtilityEntry struct {
	Action string   `yaml:"action"`
	Weight *float64 `yaml:"weight,omitempty"`
}

func (e UtilityEntry) weight() float64 {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

func LoadDefinitions(r io.Reader) (*Definitions, error) {
	var d Definitions
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "decode definitions")
	}
	return &d, nil
}

// DefaultDefinitions parses the definitions compiled into the binary.
func DefaultDefinitions() (*Definitions, error) {
	return LoadDefinitions(bytes.NewReader(embeddedDefinitions))
}

func (d *Definitions) Tree(name string) (*bt.Config, error) {
	if c, ok := d.Trees[name]; ok && c != nil {
		return c, nil
	}
	return nil, errors.Wrapf(ErrUnknownDefinition, "tree %q", name)
}

func (d *Definitions) Machine(name string) (*fsm.Table, error) {
	if t, ok := d.Machines[name]; ok && t != nil {
		return t, nil
	}
	return nil, errors.Wrapf(ErrUnknownDefinition, "machine %q", name)
}

func (d *Definitions) UtilityTable(name string) (*UtilityTable, error) {
	if t, ok := d.Utility[name]; ok && t != nil {
		return t, nil
	}
	return nil, errors.Wrapf(ErrUnknownDefinition, "utility table %q", name)
}

// Validate builds every policy for a throwaway agent and returns all the
// configuration errors found.
func (d *Definitions) Validate() error {
	w, err := NewWorld(DefaultSettings(), nil)
	if err != nil {
		return err
	}
	body := w.Spawn(Blue)
	var errs error
	for _, p := range Policies() {
		c, err := Build(p, body, RoleFor(body.Index()), WithDefinitions(d), WithClock(w.Frame))
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "policy %s", p))
			continue
		}
		errs = errors.CombineErrors(errs, c.Close())
	}
	return errs
}

// Names lists the defined trees, machines and utility tables, sorted.
func (d *Definitions) Names() (trees, machines, utility []string) {
	return sortedKeys(d.Trees), sortedKeys(d.Machines), sortedKeys(d.Utility)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
