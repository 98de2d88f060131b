// Package merge implements declaration merging: combining the fragments that
// share one qualified name into a single object type.
package merge

import (
	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/types"
)

// Into mutates target to absorb other. Members present in both are merged
// recursively with Expr; the rest are copied. Call signatures and supertypes
// are appended.
func Into(target, other *types.ObjectType) error {
	return into(target.QName, target, other)
}

func into(path string, target, other *types.ObjectType) error {
	if target == other {
		return nil
	}
	if target.QName != other.QName {
		return binderr.NewIncompatibleMerge(path)
	}
	if err := mergeTypeParams(path, target, other); err != nil {
		return err
	}
	if err := mergeMembers(path, &target.Properties, &other.Properties); err != nil {
		return err
	}
	if err := mergeMembers(path, &target.Types, &other.Types); err != nil {
		return err
	}
	target.Calls = append(target.Calls, other.Calls...)
	for _, s := range other.Supers {
		if !hasSuper(target.Supers, s) {
			target.Supers = append(target.Supers, s)
		}
	}
	return nil
}

func mergeMembers(path string, dst, src *types.Members) error {
	var err error
	src.Range(func(name string, x types.Expr) bool {
		existing, ok := dst.Get(name)
		if !ok {
			dst.Set(name, x)
			return true
		}
		var merged types.Expr
		merged, err = Expr(join(path, name), existing, x)
		if err != nil {
			return false
		}
		dst.Set(name, merged)
		return true
	})
	return err
}

// Expr merges two expressions found under the same name. Only two object
// types, or two references to the same qualified name, are compatible.
// Member accesses and generic instantiations are compatible when they have
// the same shape and their parts are. Identical nodes (the Any singleton,
// equal type parameters, the same reference node) merge to a no-op.
func Expr(name string, a, b types.Expr) (types.Expr, error) {
	switch x := a.(type) {
	case *types.ObjectType:
		y, ok := b.(*types.ObjectType)
		if !ok || x.QName != y.QName {
			return nil, binderr.NewIncompatibleMerge(name)
		}
		if err := into(objectPath(name, x), x, y); err != nil {
			return nil, err
		}
		return x, nil
	case types.QualifiedRef:
		if y, ok := b.(types.QualifiedRef); ok && x.Name == y.Name {
			return x, nil
		}
		return nil, binderr.NewIncompatibleMerge(name)
	case *types.UnresolvedRef:
		if y, ok := b.(*types.UnresolvedRef); ok && (x == y || (x.Name == y.Name && x.Scope == y.Scope)) {
			return x, nil
		}
		return nil, binderr.NewIncompatibleMerge(name)
	case *types.MemberAccess:
		y, ok := b.(*types.MemberAccess)
		if !ok || x.Name != y.Name {
			return nil, binderr.NewIncompatibleMerge(name)
		}
		if x == y {
			return x, nil
		}
		if _, err := Expr(name, x.Base, y.Base); err != nil {
			return nil, err
		}
		return x, nil
	case *types.Generic:
		y, ok := b.(*types.Generic)
		if !ok || len(x.Args) != len(y.Args) {
			return nil, binderr.NewIncompatibleMerge(name)
		}
		if x == y {
			return x, nil
		}
		if _, err := Expr(name, x.Base, y.Base); err != nil {
			return nil, err
		}
		for i := range x.Args {
			if _, err := Expr(name, x.Args[i], y.Args[i]); err != nil {
				return nil, err
			}
		}
		return x, nil
	default:
		if a == b {
			return a, nil
		}
		return nil, binderr.NewIncompatibleMerge(name)
	}
}

func mergeTypeParams(path string, target, other *types.ObjectType) error {
	if len(other.TypeParams) == 0 {
		return nil
	}
	if len(target.TypeParams) == 0 {
		target.TypeParams = other.TypeParams
		return nil
	}
	if len(target.TypeParams) != len(other.TypeParams) {
		return binderr.NewIncompatibleMerge(path)
	}
	for i := range target.TypeParams {
		if target.TypeParams[i].Name != other.TypeParams[i].Name {
			return binderr.NewIncompatibleMerge(path)
		}
	}
	return nil
}

func hasSuper(supers []types.Expr, s types.Expr) bool {
	for _, existing := range supers {
		if existing == s {
			return true
		}
	}
	return false
}

func objectPath(name string, o *types.ObjectType) string {
	if o.Named() {
		return o.QName
	}
	return name
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
