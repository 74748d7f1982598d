package bt

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/zeusync/arena/internal/core/ai/blackboard"
)

// LeafFactory builds a leaf from loader params.
type LeafFactory func(params map[string]any) (Leaf, error)

// Registry maps leaf names used in definitions to factories.
type Registry struct {
	leaves map[string]LeafFactory
}

// NewRegistry returns a registry holding the builtin leaves.
func NewRegistry() *Registry {
	r := &Registry{leaves: make(map[string]LeafFactory)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f LeafFactory) {
	r.leaves[name] = f
}

// New builds the named leaf.
func (r *Registry) New(name string, params map[string]any) (Leaf, error) {
	f, ok := r.leaves[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLeaf, "%q", name)
	}
	l, err := f(params)
	if err != nil {
		return nil, errors.Wrapf(err, "leaf %q", name)
	}
	return l, nil
}

// Names returns registered leaf names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.leaves))
	for name := range r.leaves {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func registerBuiltins(r *Registry) {
	r.Register("succeed", func(map[string]any) (Leaf, error) {
		return Action(func(*Context) Status { return Success }), nil
	})
	r.Register("fail", func(map[string]any) (Leaf, error) {
		return Action(func(*Context) Status { return Failure }), nil
	})
	r.Register("running", func(map[string]any) (Leaf, error) {
		return Action(func(*Context) Status { return Running }), nil
	})
	// flag succeeds when the bool under key is true.
	r.Register("flag", func(params map[string]any) (Leaf, error) {
		key, err := paramString(params, "key")
		if err != nil {
			return nil, err
		}
		return Condition(func(ctx *Context) bool {
			return blackboard.GetOr(ctx.BB, key, false)
		}), nil
	})
	r.Register("set_flag", func(params map[string]any) (Leaf, error) {
		key, err := paramString(params, "key")
		if err != nil {
			return nil, err
		}
		value, _ := params["value"].(bool)
		return Action(func(ctx *Context) Status {
			blackboard.Set(ctx.BB, key, value)
			return Success
		}), nil
	})
}

func paramString(params map[string]any, key string) (string, error) {
	s, _ := params[key].(string)
	if s == "" {
		return "", errors.Newf("missing string param %q", key)
	}
	return s, nil
}

// ParamInt reads an integer param, accepting the float form JSON produces.
func ParamInt(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, errors.Newf("param %q: want int, got %T", key, v)
	}
}

// ParamFloat reads a float param, accepting integers.
func ParamFloat(params map[string]any, key string, def float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, errors.Newf("param %q: want number, got %T", key, v)
	}
}
