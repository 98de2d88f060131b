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

// bindClass produces the nominal instance type, registered under types, and
// the anonymous constructor type, registered under properties.
func (b *Binder) bindClass(c *container, d *ast.ClassDecl, s types.Scope) error {
	qn := qualify(c.qname, d.Name)
	tps, ts, err := b.typeParams(d.TypeParams, s, qn)
	if err != nil {
		return err
	}

	instance := types.NewObject(qn)
	instance.TypeParams = tps
	if d.Extends != nil {
		super, err := b.typeExpr(d.Extends, ts, qn)
		if err != nil {
			return err
		}
		instance.Supers = append(instance.Supers, super)
	}
	for _, impl := range d.Implements {
		super, err := b.typeExpr(impl, ts, qn)
		if err != nil {
			return err
		}
		instance.Supers = append(instance.Supers, super)
	}

	self := types.SelfRef(qn, tps)
	ctor := types.NewObject("")
	var instanceMembers, staticMembers merge.Fragments

	for _, m := range d.Members {
		switch m := m.(type) {
		case *ast.PropertyMember:
			if m.Static {
				t, err := b.typeExpr(m.Type, s, qn)
				if err != nil {
					return err
				}
				staticMembers.Add(m.Name, t)
				continue
			}
			t, err := b.typeExpr(m.Type, ts, qn)
			if err != nil {
				return err
			}
			instanceMembers.Add(m.Name, t)
		case *ast.MethodMember:
			if m.Static {
				fn, err := b.method(&m.Signature, s)
				if err != nil {
					return err
				}
				staticMembers.Add(m.Name, fn)
				continue
			}
			fn, err := b.method(&m.Signature, ts)
			if err != nil {
				return err
			}
			instanceMembers.Add(m.Name, fn)
		case *ast.ConstructorMember:
			params, err := b.params(m.Params, ts)
			if err != nil {
				return err
			}
			ctor.Calls = append(ctor.Calls, &types.CallSignature{
				Constructor: true,
				Variadic:    len(m.Params) > 0 && m.Params[len(m.Params)-1].Rest,
				TypeParams:  tps,
				Params:      params,
				Returns:     self,
			})
		case *ast.AccessorMember:
			return unsupportedAccessor(qn, m)
		case *ast.CallMember, *ast.ConstructMember:
			return binderr.NewUnsupportedDeclaration(qn, "call",
				fmt.Sprintf("class `%s` cannot declare call or construct signatures", d.Name))
		case *ast.UnknownMember:
			return unsupportedMember(qn, m)
		default:
			return binderr.NewUnsupportedDeclaration(qn, fmt.Sprintf("%T", m),
				fmt.Sprintf("unexpected class member node %T", m))
		}
	}

	if len(ctor.Calls) == 0 {
		ctor.Calls = []*types.CallSignature{{
			Constructor: true,
			TypeParams:  tps,
			Returns:     self,
		}}
	}
	if err := merge.Contents(&instance.Properties, &instanceMembers, qn); err != nil {
		return err
	}
	if err := merge.Contents(&ctor.Properties, &staticMembers, qn); err != nil {
		return err
	}

	c.types.Add(d.Name, instance)
	c.props.Add(d.Name, ctor)
	return nil
}

func (b *Binder) bindInterface(c *container, d *ast.InterfaceDecl, s types.Scope) error {
	qn := qualify(c.qname, d.Name)
	tps, ts, err := b.typeParams(d.TypeParams, s, qn)
	if err != nil {
		return err
	}

	obj := types.NewObject(qn)
	obj.TypeParams = tps
	for _, ext := range d.Extends {
		super, err := b.typeExpr(ext, ts, qn)
		if err != nil {
			return err
		}
		obj.Supers = append(obj.Supers, super)
	}
	if err := b.members(obj, d.Members, ts, qn); err != nil {
		return err
	}
	c.types.Add(d.Name, obj)
	return nil
}

// members binds interface and object literal members into obj. Methods with
// the same name collect their overloads into one callable object.
func (b *Binder) members(obj *types.ObjectType, members []ast.Member, s types.Scope, path string) error {
	var props merge.Fragments
	for _, m := range members {
		switch m := m.(type) {
		case *ast.PropertyMember:
			if m.Static {
				return binderr.NewUnsupportedDeclaration(path, "static",
					fmt.Sprintf("static member `%s` outside a class", m.Name))
			}
			t, err := b.typeExpr(m.Type, s, path)
			if err != nil {
				return err
			}
			props.Add(m.Name, t)
		case *ast.MethodMember:
			if m.Static {
				return binderr.NewUnsupportedDeclaration(path, "static",
					fmt.Sprintf("static member `%s` outside a class", m.Name))
			}
			fn, err := b.method(&m.Signature, s)
			if err != nil {
				return err
			}
			props.Add(m.Name, fn)
		case *ast.CallMember:
			sig, err := b.signature(&m.Signature, s, false)
			if err != nil {
				return err
			}
			obj.Calls = append(obj.Calls, sig)
		case *ast.ConstructMember:
			sig, err := b.signature(&m.Signature, s, true)
			if err != nil {
				return err
			}
			obj.Calls = append(obj.Calls, sig)
		case *ast.ConstructorMember:
			return binderr.NewUnsupportedDeclaration(path, "constructor",
				"constructor declarations are only allowed in classes")
		case *ast.AccessorMember:
			return unsupportedAccessor(path, m)
		case *ast.UnknownMember:
			return unsupportedMember(path, m)
		default:
			return binderr.NewUnsupportedDeclaration(path, fmt.Sprintf("%T", m),
				fmt.Sprintf("unexpected member node %T", m))
		}
	}
	return merge.Contents(&obj.Properties, &props, path)
}

// method binds one method overload as an anonymous callable object.
func (b *Binder) method(sig *ast.Signature, s types.Scope) (*types.ObjectType, error) {
	cs, err := b.signature(sig, s, false)
	if err != nil {
		return nil, err
	}
	fn := types.NewObject("")
	fn.Calls = []*types.CallSignature{cs}
	return fn, nil
}

func (b *Binder) signature(sig *ast.Signature, s types.Scope, constructor bool) (*types.CallSignature, error) {
	tps, ss, err := b.typeParams(sig.TypeParams, s, "")
	if err != nil {
		return nil, err
	}
	params, err := b.params(sig.Params, ss)
	if err != nil {
		return nil, err
	}
	ret, err := b.typeExpr(sig.Returns, ss, "")
	if err != nil {
		return nil, err
	}
	return &types.CallSignature{
		Constructor: constructor,
		Variadic:    sig.Variadic(),
		TypeParams:  tps,
		Params:      params,
		Returns:     ret,
	}, nil
}

func (b *Binder) params(ps []ast.Param, s types.Scope) ([]types.Parameter, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]types.Parameter, len(ps))
	for i, p := range ps {
		t, err := b.typeExpr(p.Type, s, "")
		if err != nil {
			return nil, err
		}
		out[i] = types.Parameter{Name: p.Name, Optional: p.Optional, Type: t}
	}
	return out, nil
}

// typeParams returns the bound type parameters and the scope the
// declaration's members are bound in. Without parameters the scope is s.
// Constraints are bound in the new scope so they can refer to each other.
func (b *Binder) typeParams(tps []ast.TypeParam, s types.Scope, path string) ([]types.TypeParam, types.Scope, error) {
	if len(tps) == 0 {
		return nil, s, nil
	}
	names := make([]string, len(tps))
	for i, tp := range tps {
		names[i] = tp.Name
	}
	fixed := scope.ForTypeParams(s, names)

	out := make([]types.TypeParam, len(tps))
	for i, tp := range tps {
		out[i] = types.TypeParam{Name: tp.Name}
		if tp.Constraint != nil {
			c, err := b.typeExpr(tp.Constraint, fixed, path)
			if err != nil {
				return nil, nil, err
			}
			out[i].Constraint = c
		}
	}
	return out, fixed, nil
}

// typeExpr converts a syntactic annotation into an unresolved expression
// bound in s. A missing annotation is any.
func (b *Binder) typeExpr(n ast.TypeNode, s types.Scope, path string) (types.Expr, error) {
	switch n := n.(type) {
	case nil:
		return types.Any, nil
	case *ast.AnyType:
		return types.Any, nil
	case *ast.TypeRef:
		base := b.arena.Path(strings.Split(n.Name, "."), s)
		if len(n.Args) == 0 {
			return base, nil
		}
		args, err := b.typeExprs(n.Args, s, path)
		if err != nil {
			return nil, err
		}
		return &types.Generic{Base: base, Args: args}, nil
	case *ast.ArrayType:
		elem, err := b.typeExpr(n.Elem, s, path)
		if err != nil {
			return nil, err
		}
		return &types.Generic{Base: b.arena.Unresolved("Array", s), Args: []types.Expr{elem}}, nil
	case *ast.ObjectLiteral:
		obj := types.NewObject("")
		if err := b.members(obj, n.Members, s, path); err != nil {
			return nil, err
		}
		return obj, nil
	case *ast.FunctionType:
		sig, err := b.signature(&n.Signature, s, n.Constructor)
		if err != nil {
			return nil, err
		}
		fn := types.NewObject("")
		fn.Calls = []*types.CallSignature{sig}
		return fn, nil
	default:
		return nil, binderr.NewUnsupportedDeclaration(path, fmt.Sprintf("%T", n),
			fmt.Sprintf("unexpected type node %T", n))
	}
}

func (b *Binder) typeExprs(ns []ast.TypeNode, s types.Scope, path string) ([]types.Expr, error) {
	out := make([]types.Expr, len(ns))
	for i, n := range ns {
		t, err := b.typeExpr(n, s, path)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func unsupportedAccessor(path string, m *ast.AccessorMember) error {
	kind := "get"
	if m.Setter {
		kind = "set"
	}
	return binderr.NewUnsupportedDeclaration(path, kind,
		fmt.Sprintf("accessor `%s %s` is not supported", kind, m.Name))
}

func unsupportedMember(path string, m *ast.UnknownMember) error {
	return binderr.NewUnsupportedDeclaration(path, m.Kind,
		fmt.Sprintf("unexpected member `%s` of kind `%s`", m.Name, m.Kind))
}
