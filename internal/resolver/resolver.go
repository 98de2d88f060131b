// Package resolver rewrites every unresolved reference and member access in
// the environment into its canonical form.
//
// Resolution is lazy and memoized by node identity. A node that is reached
// again while its own resolution is still in progress is a cyclic reference.
package resolver

import (
	"fmt"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/scope"
	"martianoff/declbind/internal/types"
)

// Resolver resolves expressions against one environment.
type Resolver struct {
	env  *env.Environment
	opts scope.Options

	resolved  map[types.NodeID]types.Expr
	resolving map[types.NodeID]bool
	objects   map[*types.ObjectType]bool

	// path is the chain of references currently being resolved, for cycle reports.
	path []frame
}

type frame struct {
	id    types.NodeID
	label string
}

// New creates a Resolver over e.
func New(e *env.Environment, opts scope.Options) *Resolver {
	return &Resolver{
		env:       e,
		opts:      opts,
		resolved:  make(map[types.NodeID]types.Expr),
		resolving: make(map[types.NodeID]bool),
		objects:   make(map[*types.ObjectType]bool),
	}
}

// Resolved returns the number of reference nodes resolved so far.
func (r *Resolver) Resolved() int {
	return len(r.resolved)
}

// ResolveEnvironment resolves every entry in registration order, then the
// root container.
func (r *Resolver) ResolveEnvironment() error {
	var err error
	r.env.Range(func(qname string, o *types.ObjectType) bool {
		_, err = r.ResolveObject(o)
		return err == nil
	})
	if err != nil {
		return err
	}
	if r.env.Root != nil {
		_, err = r.ResolveObject(r.env.Root)
	}
	return err
}

// ResolveType returns the canonical form of x. References resolve to what
// their target resolves to, nominal objects to a qualified reference and
// anonymous objects to themselves after their members are resolved in place.
func (r *Resolver) ResolveType(x types.Expr) (types.Expr, error) {
	switch x := x.(type) {
	case types.QualifiedRef:
		return x, nil
	case *types.UnresolvedRef:
		return r.memo(x.ID, x.Name, func() (types.Expr, error) {
			target, err := scope.Lookup(r.env, x.Scope, x.Name, r.opts)
			if err != nil {
				return nil, err
			}
			return r.ResolveType(target)
		})
	case *types.MemberAccess:
		return r.memo(x.ID, x.String(), func() (types.Expr, error) {
			base, err := r.ResolveType(x.Base)
			if err != nil {
				return nil, err
			}
			nested, err := r.nestedType(base, x.Name)
			if err != nil {
				return nil, err
			}
			return r.ResolveType(nested)
		})
	case *types.ObjectType:
		if x.Named() {
			return types.Ref(x.QName), nil
		}
		return r.ResolveObject(x)
	case *types.Generic:
		base, err := r.ResolveType(x.Base)
		if err != nil {
			return nil, err
		}
		args := make([]types.Expr, len(x.Args))
		for i, a := range x.Args {
			if args[i], err = r.ResolveType(a); err != nil {
				return nil, err
			}
		}
		return &types.Generic{Base: base, Args: args}, nil
	case types.TypeParamRef:
		return x, nil
	default:
		if types.IsAny(x) {
			return x, nil
		}
		return nil, fmt.Errorf("unknown type expression %T", x)
	}
}

// memo runs resolve once per node identity and guards against re-entry.
func (r *Resolver) memo(id types.NodeID, label string, resolve func() (types.Expr, error)) (types.Expr, error) {
	if res, ok := r.resolved[id]; ok {
		return res, nil
	}
	if r.resolving[id] {
		return nil, binderr.NewCyclicReference(label, r.cycle(id, label))
	}
	r.resolving[id] = true
	r.path = append(r.path, frame{id: id, label: label})

	res, err := resolve()
	r.path = r.path[:len(r.path)-1]
	delete(r.resolving, id)
	if err != nil {
		return nil, err
	}
	r.resolved[id] = res
	return res, nil
}

func (r *Resolver) cycle(id types.NodeID, label string) []string {
	for i, f := range r.path {
		if f.id == id {
			cycle := make([]string, 0, len(r.path)-i+1)
			for _, g := range r.path[i:] {
				cycle = append(cycle, g.label)
			}
			return append(cycle, label)
		}
	}
	return []string{label}
}

// nestedType looks name up among the nested types of a resolved base.
func (r *Resolver) nestedType(base types.Expr, name string) (types.Expr, error) {
	switch b := base.(type) {
	case types.QualifiedRef:
		obj, ok := r.env.Lookup(b.Name)
		if !ok {
			// The base was already admitted as external; so are its members.
			return types.Ref(b.Name + "." + name), nil
		}
		nested, ok := obj.Types.Get(name)
		if !ok {
			return nil, binderr.NewMissingNestedType(b.Name, name)
		}
		return nested, nil
	case *types.ObjectType:
		nested, ok := b.Types.Get(name)
		if !ok {
			return nil, binderr.NewMissingNestedType(b.String(), name)
		}
		return nested, nil
	default:
		return nil, binderr.NewNotAnObjectType(base.String(), name)
	}
}

// ResolveObject resolves the members of o in place and returns o. Each object
// is processed once.
func (r *Resolver) ResolveObject(o *types.ObjectType) (*types.ObjectType, error) {
	if r.objects[o] {
		return o, nil
	}
	r.objects[o] = true

	update := func(_ string, x types.Expr) (types.Expr, error) {
		return r.ResolveType(x)
	}
	if err := o.Properties.Update(update); err != nil {
		return nil, err
	}
	if err := o.Types.Update(update); err != nil {
		return nil, err
	}
	for i, s := range o.Supers {
		res, err := r.ResolveType(s)
		if err != nil {
			return nil, err
		}
		o.Supers[i] = res
	}
	if err := r.resolveTypeParams(o.TypeParams); err != nil {
		return nil, err
	}
	for _, c := range o.Calls {
		if err := r.resolveSignature(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (r *Resolver) resolveSignature(c *types.CallSignature) error {
	if err := r.resolveTypeParams(c.TypeParams); err != nil {
		return err
	}
	for i := range c.Params {
		res, err := r.ResolveType(c.Params[i].Type)
		if err != nil {
			return err
		}
		c.Params[i].Type = res
	}
	res, err := r.ResolveType(c.Returns)
	if err != nil {
		return err
	}
	c.Returns = res
	return nil
}

func (r *Resolver) resolveTypeParams(tps []types.TypeParam) error {
	for i := range tps {
		if tps[i].Constraint == nil {
			continue
		}
		res, err := r.ResolveType(tps[i].Constraint)
		if err != nil {
			return err
		}
		tps[i].Constraint = res
	}
	return nil
}
