// Package binder turns the declaration tree into nested, unresolved object
// types.
//
// Every binder function receives its current scope explicitly. Generic
// declarations bind their members in a child scope holding the type
// parameters; that scope is only reachable from the references created while
// binding those members.
package binder

import (
	"fmt"
	"strings"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/ast"
	"martianoff/declbind/internal/merge"
	"martianoff/declbind/internal/scope"
	"martianoff/declbind/internal/types"
)

// Binder binds declaration trees. A Binder allocates all reference nodes
// from one arena and reuses one module scope per qualified name.
type Binder struct {
	arena   *types.Arena
	modules map[string]*scope.Module
	decls   int
}

// New creates a Binder that allocates reference nodes from arena.
func New(arena *types.Arena) *Binder {
	return &Binder{
		arena:   arena,
		modules: make(map[string]*scope.Module),
	}
}

// Declarations returns how many declarations have been bound so far.
func (b *Binder) Declarations() int {
	return b.decls
}

// BindProgram binds the top-level declarations into the anonymous root
// container.
func (b *Binder) BindProgram(p *ast.Program) (*types.ObjectType, error) {
	return b.Bind(p.Decls, "", b.moduleScope("", nil))
}

// Bind binds the immediate members of one container. qname is the
// container's qualified name ("" for the root) and s the scope its members
// are bound in.
func (b *Binder) Bind(decls []ast.Decl, qname string, s types.Scope) (*types.ObjectType, error) {
	obj := types.NewObject(qname)
	c := &container{qname: qname}
	for _, d := range decls {
		if err := b.bindDecl(c, d, s); err != nil {
			return nil, err
		}
	}
	if err := c.fold(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// container collects the fragments declared in one container body.
type container struct {
	qname string
	props merge.Fragments
	types merge.Fragments
}

func (c *container) fold(obj *types.ObjectType) error {
	if err := merge.Contents(&obj.Properties, &c.props, c.qname); err != nil {
		return err
	}
	return merge.Contents(&obj.Types, &c.types, c.qname)
}

func (b *Binder) bindDecl(c *container, d ast.Decl, s types.Scope) error {
	b.decls++
	switch d := d.(type) {
	case *ast.ModuleDecl:
		return b.bindModule(c, d, s)
	case *ast.ClassDecl:
		return b.bindClass(c, d, s)
	case *ast.InterfaceDecl:
		return b.bindInterface(c, d, s)
	case *ast.FunctionDecl:
		sig, err := b.signature(&d.Signature, s, false)
		if err != nil {
			return err
		}
		fn := types.NewObject("")
		fn.Calls = []*types.CallSignature{sig}
		c.props.Add(d.Name, fn)
		return nil
	case *ast.VariableDecl:
		t, err := b.typeExpr(d.Type, s, qualify(c.qname, d.Name))
		if err != nil {
			return err
		}
		c.props.Add(d.Name, t)
		return nil
	case *ast.ImportDecl:
		if d.Target == "" {
			return binderr.NewUnsupportedDeclaration(c.qname, "import", fmt.Sprintf("import `%s` has no target", d.Name))
		}
		target := b.arena.Path(strings.Split(d.Target, "."), s)
		c.types.Add(d.Name, target)
		if d.Exported {
			c.props.Add(d.Name, target)
		}
		return nil
	case *ast.AliasDecl:
		_, ts, err := b.typeParams(d.TypeParams, s, qualify(c.qname, d.Name))
		if err != nil {
			return err
		}
		t, err := b.typeExpr(d.Type, ts, qualify(c.qname, d.Name))
		if err != nil {
			return err
		}
		c.types.Add(d.Name, t)
		return nil
	case *ast.UnknownDecl:
		return binderr.NewUnsupportedDeclaration(c.qname, d.Kind,
			fmt.Sprintf("unexpected declaration `%s` of kind `%s`", d.Name, d.Kind))
	default:
		return binderr.NewUnsupportedDeclaration(c.qname, fmt.Sprintf("%T", d),
			fmt.Sprintf("unexpected declaration node %T", d))
	}
}

func (b *Binder) bindModule(c *container, d *ast.ModuleDecl, s types.Scope) error {
	name, rest, dotted := strings.Cut(d.Name, ".")
	members := d.Members
	if dotted {
		// module A.B.C { ... } is module A { module B.C { ... } }
		members = []ast.Decl{&ast.ModuleDecl{Name: rest, Exported: true, Members: d.Members}}
	}

	qn := qualify(c.qname, name)
	sub, err := b.Bind(members, qn, b.moduleScope(qn, s))
	if err != nil {
		return err
	}
	c.types.Add(name, sub)
	if valueLike(sub) {
		c.props.Add(name, types.Ref(qn))
	}
	return nil
}

// valueLike reports whether a bound module holds values, in which case the
// module name is also a value of the enclosing container.
func valueLike(o *types.ObjectType) bool {
	return o.Properties.Len() > 0
}

func (b *Binder) moduleScope(qname string, parent types.Scope) *scope.Module {
	if m, ok := b.modules[qname]; ok {
		return m
	}
	m := scope.NewModule(qname, parent)
	b.modules[qname] = m
	return m
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
