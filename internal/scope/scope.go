// Package scope implements the lexical scope chain used for name lookup.
//
// There are two kinds of scope. A Module scope sees the nested types of the
// environment entry for its qualified name, so it only works once the
// environment has been built. A Fixed scope holds local bindings such as the
// type parameters of a generic declaration.
package scope

import (
	"fmt"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/types"
)

// Module resolves names among the nested types of an environment entry.
type Module struct {
	QName  string // "" for the top-level container
	parent types.Scope
}

// NewModule creates a module scope for qname.
func NewModule(qname string, parent types.Scope) *Module {
	return &Module{QName: qname, parent: parent}
}

// Parent returns the enclosing scope, nil for the outermost one.
func (m *Module) Parent() types.Scope { return m.parent }

// Fixed resolves names from a fixed set of bindings.
type Fixed struct {
	Bindings map[string]types.Expr
	parent   types.Scope
}

// NewFixed creates a fixed scope over bindings.
func NewFixed(parent types.Scope, bindings map[string]types.Expr) *Fixed {
	return &Fixed{Bindings: bindings, parent: parent}
}

// ForTypeParams creates a fixed scope binding each parameter name to a
// TypeParamRef.
func ForTypeParams(parent types.Scope, names []string) *Fixed {
	bindings := make(map[string]types.Expr, len(names))
	for _, n := range names {
		bindings[n] = types.TypeParamRef{Name: n}
	}
	return NewFixed(parent, bindings)
}

// Parent returns the scope the bindings shadow.
func (f *Fixed) Parent() types.Scope { return f.parent }

// Options controls what happens to names no scope defines.
type Options struct {
	// Strict rejects undefined names instead of treating them as external.
	Strict bool
	// Globals are names accepted as external even in strict mode.
	Globals map[string]bool
}

// NewOptions builds Options from a list of global names.
func NewOptions(strict bool, globals []string) Options {
	g := make(map[string]bool, len(globals))
	for _, n := range globals {
		g[n] = true
	}
	return Options{Strict: strict, Globals: g}
}

// External returns the reference for a name that lies outside the analyzed
// declarations, or an UnresolvedName error in strict mode.
func (o Options) External(name string) (types.Expr, error) {
	if o.Strict && !o.Globals[name] {
		return nil, binderr.NewUnresolvedName(name)
	}
	return types.Ref(name), nil
}

// Lookup walks the chain outward from s and returns the expression bound to
// name by the innermost scope that defines it. The returned expression is not
// resolved.
func Lookup(e *env.Environment, s types.Scope, name string, opts Options) (types.Expr, error) {
	for cur := s; cur != nil; cur = cur.Parent() {
		switch sc := cur.(type) {
		case *Module:
			obj, ok := e.Lookup(sc.QName)
			if !ok {
				return nil, binderr.NewMissingModuleScope(sc.QName)
			}
			if x, ok := obj.Types.Get(name); ok {
				return x, nil
			}
		case *Fixed:
			if x, ok := sc.Bindings[name]; ok {
				return x, nil
			}
		default:
			return nil, fmt.Errorf("unknown scope kind %T", cur)
		}
	}
	return opts.External(name)
}
