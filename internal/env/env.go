// Package env holds the global environment: the flat map from qualified name
// to canonical object type, and the flattening pass that builds it.
package env

import (
	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/types"
)

// Environment maps qualified names to their canonical object types in
// registration order. Root is the anonymous top-level container; it is
// reachable under the empty name but never registered as an entry.
type Environment struct {
	Root *types.ObjectType

	names   []string
	entries map[string]*types.ObjectType
}

// New creates an empty environment.
func New() *Environment {
	return &Environment{
		entries: make(map[string]*types.ObjectType),
	}
}

// Register adds a nominal object type under its qualified name.
func (e *Environment) Register(o *types.ObjectType) error {
	if _, ok := e.entries[o.QName]; ok {
		return binderr.NewDuplicateEntry(o.QName)
	}
	e.names = append(e.names, o.QName)
	e.entries[o.QName] = o
	return nil
}

// Lookup returns the entry for qname. The empty name denotes Root.
func (e *Environment) Lookup(qname string) (*types.ObjectType, bool) {
	if qname == "" {
		return e.Root, e.Root != nil
	}
	o, ok := e.entries[qname]
	return o, ok
}

// Names returns the registered qualified names in registration order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of registered entries.
func (e *Environment) Len() int {
	return len(e.names)
}

// Range calls fn for every entry in registration order until fn returns false.
func (e *Environment) Range(fn func(qname string, o *types.ObjectType) bool) {
	for _, n := range e.names {
		if !fn(n, e.entries[n]) {
			return
		}
	}
}

// Build flattens a merged binder tree. Every nominal type found under a
// container's types is registered once and replaced in place by a qualified
// reference. root becomes the environment's Root.
func Build(root *types.ObjectType) (*Environment, error) {
	e := New()
	e.Root = root
	if _, err := e.flatten(root); err != nil {
		return nil, err
	}
	return e, nil
}

// flatten returns a reference to o if it is nominal, or o itself if anonymous.
func (e *Environment) flatten(o *types.ObjectType) (types.Expr, error) {
	if o.Named() {
		if err := e.Register(o); err != nil {
			return nil, err
		}
	}

	err := o.Types.Update(func(_ string, x types.Expr) (types.Expr, error) {
		return e.flattenExpr(x)
	})
	if err != nil {
		return nil, err
	}
	err = o.Properties.Update(func(_ string, x types.Expr) (types.Expr, error) {
		return e.flattenExpr(x)
	})
	if err != nil {
		return nil, err
	}

	if o.Named() {
		return types.Ref(o.QName), nil
	}
	return o, nil
}

func (e *Environment) flattenExpr(x types.Expr) (types.Expr, error) {
	if o, ok := x.(*types.ObjectType); ok {
		return e.flatten(o)
	}
	return x, nil
}
