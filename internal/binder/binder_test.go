package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/ast"
	"martianoff/declbind/internal/scope"
	"martianoff/declbind/internal/types"
)

func bindProgram(t *testing.T, decls ...ast.Decl) (*types.ObjectType, *Binder) {
	t.Helper()
	b := New(types.NewArena())
	root, err := b.BindProgram(&ast.Program{Decls: decls})
	require.NoError(t, err)
	return root, b
}

func bindError(t *testing.T, decls ...ast.Decl) error {
	t.Helper()
	_, err := New(types.NewArena()).BindProgram(&ast.Program{Decls: decls})
	require.Error(t, err)
	return err
}

func ref(name string) *ast.TypeRef { return &ast.TypeRef{Name: name} }

func get(t *testing.T, m *types.Members, name string) types.Expr {
	t.Helper()
	x, ok := m.Get(name)
	require.True(t, ok, "missing member %s", name)
	return x
}

func object(t *testing.T, x types.Expr) *types.ObjectType {
	t.Helper()
	o, ok := x.(*types.ObjectType)
	require.True(t, ok, "expected object type, got %T", x)
	return o
}

func TestBindFunctionAndVariable(t *testing.T) {
	root, b := bindProgram(t,
		&ast.FunctionDecl{Name: "f", Signature: ast.Signature{
			Params:  []ast.Param{{Name: "a", Type: ref("string")}, {Name: "rest", Rest: true, Type: &ast.ArrayType{Elem: ref("number")}}},
			Returns: ref("void"),
		}},
		&ast.VariableDecl{Name: "v", Type: ref("A.B")},
		&ast.VariableDecl{Name: "w"},
	)

	assert.Equal(t, "", root.QName)
	assert.Equal(t, []string{"f", "v", "w"}, root.Properties.Keys())
	assert.Equal(t, 0, root.Types.Len())
	assert.Equal(t, 3, b.Declarations())

	f := object(t, get(t, &root.Properties, "f"))
	assert.False(t, f.Named())
	require.Len(t, f.Calls, 1)
	assert.Equal(t, "(a: string, ...rest: Array<number>) => void", f.Calls[0].String())
	assert.True(t, f.Calls[0].Variadic)

	v, ok := get(t, &root.Properties, "v").(*types.MemberAccess)
	require.True(t, ok)
	assert.Equal(t, "B", v.Name)
	base, ok := v.Base.(*types.UnresolvedRef)
	require.True(t, ok)
	assert.Equal(t, "A", base.Name)
	assert.Equal(t, b.modules[""], base.Scope)

	assert.True(t, types.IsAny(get(t, &root.Properties, "w")))
}

func TestBindImport(t *testing.T) {
	root, _ := bindProgram(t,
		&ast.ImportDecl{Name: "X", Target: "A.B"},
		&ast.ImportDecl{Name: "Y", Target: "C", Exported: true},
	)

	assert.Equal(t, []string{"X", "Y"}, root.Types.Keys())
	assert.Equal(t, []string{"Y"}, root.Properties.Keys())
	assert.Equal(t, "A.B", get(t, &root.Types, "X").String())
	assert.Same(t, get(t, &root.Types, "Y"), get(t, &root.Properties, "Y"))
}

func TestBindModule(t *testing.T) {
	root, b := bindProgram(t,
		&ast.ModuleDecl{Name: "A", Members: []ast.Decl{
			&ast.InterfaceDecl{Name: "I"},
			&ast.VariableDecl{Name: "v", Type: ref("I")},
		}},
		&ast.ModuleDecl{Name: "Types", Members: []ast.Decl{
			&ast.InterfaceDecl{Name: "J"},
		}},
	)

	a := object(t, get(t, &root.Types, "A"))
	assert.Equal(t, "A", a.QName)
	assert.Equal(t, []string{"I"}, a.Types.Keys())
	assert.Equal(t, "A.I", object(t, get(t, &a.Types, "I")).QName)

	// A holds a value, so it is a value of the root too; Types does not.
	assert.Equal(t, types.Ref("A"), get(t, &root.Properties, "A"))
	assert.False(t, root.Properties.Has("Types"))

	v := get(t, &a.Properties, "v").(*types.UnresolvedRef)
	s, ok := v.Scope.(*scope.Module)
	require.True(t, ok)
	assert.Equal(t, "A", s.QName)
	assert.Same(t, b.modules[""], s.Parent())
}

func TestBindDottedModule(t *testing.T) {
	root, b := bindProgram(t,
		&ast.ModuleDecl{Name: "A.B.C", Members: []ast.Decl{&ast.VariableDecl{Name: "v"}}},
	)

	a := object(t, get(t, &root.Types, "A"))
	ab := object(t, get(t, &a.Types, "B"))
	abc := object(t, get(t, &ab.Types, "C"))
	assert.Equal(t, "A.B.C", abc.QName)
	assert.True(t, abc.Properties.Has("v"))
	assert.Equal(t, types.Ref("A.B.C"), get(t, &ab.Properties, "C"))
	assert.Equal(t, types.Ref("A.B"), get(t, &a.Properties, "B"))
	assert.Contains(t, b.modules, "A.B.C")
}

func TestBindModuleScopeIsShared(t *testing.T) {
	_, b := bindProgram(t,
		&ast.ModuleDecl{Name: "A", Members: []ast.Decl{&ast.VariableDecl{Name: "x", Type: ref("T")}}},
		&ast.ModuleDecl{Name: "A", Members: []ast.Decl{&ast.VariableDecl{Name: "y", Type: ref("T")}}},
	)
	assert.Len(t, b.modules, 2)
}

func TestBindMergesFragments(t *testing.T) {
	root, _ := bindProgram(t,
		&ast.ModuleDecl{Name: "A", Members: []ast.Decl{
			&ast.InterfaceDecl{Name: "I", Members: []ast.Member{&ast.PropertyMember{Name: "x", Type: ref("number")}}},
		}},
		&ast.ModuleDecl{Name: "A", Members: []ast.Decl{
			&ast.InterfaceDecl{Name: "I", Members: []ast.Member{&ast.PropertyMember{Name: "y", Type: ref("string")}}},
		}},
	)

	a := object(t, get(t, &root.Types, "A"))
	i := object(t, get(t, &a.Types, "I"))
	assert.Equal(t, []string{"x", "y"}, i.Properties.Keys())
}

func TestBindInterface(t *testing.T) {
	root, _ := bindProgram(t, &ast.InterfaceDecl{
		Name:       "I",
		TypeParams: []ast.TypeParam{{Name: "T", Constraint: ref("Base")}},
		Extends:    []ast.TypeNode{&ast.TypeRef{Name: "Base", Args: []ast.TypeNode{ref("T")}}},
		Members: []ast.Member{
			&ast.PropertyMember{Name: "x", Optional: true, Type: ref("T")},
			&ast.MethodMember{Name: "f", Signature: ast.Signature{Returns: ref("T")}},
			&ast.MethodMember{Name: "f", Signature: ast.Signature{
				Params:  []ast.Param{{Name: "a", Type: ref("string")}},
				Returns: ref("T"),
			}},
			&ast.CallMember{Signature: ast.Signature{Returns: ref("number")}},
			&ast.ConstructMember{Signature: ast.Signature{Returns: ref("I")}},
		},
	})

	i := object(t, get(t, &root.Types, "I"))
	assert.Equal(t, "I", i.QName)
	require.Len(t, i.TypeParams, 1)
	assert.Equal(t, "T", i.TypeParams[0].Name)
	assert.Equal(t, "Base", i.TypeParams[0].Constraint.String())
	require.Len(t, i.Supers, 1)
	assert.Equal(t, "Base<T>", i.Supers[0].String())

	// T inside the interface is looked up in the type parameter scope.
	x := get(t, &i.Properties, "x").(*types.UnresolvedRef)
	fixed, ok := x.Scope.(*scope.Fixed)
	require.True(t, ok)
	assert.Equal(t, types.TypeParamRef{Name: "T"}, fixed.Bindings["T"])

	f := object(t, get(t, &i.Properties, "f"))
	require.Len(t, f.Calls, 2)
	assert.Equal(t, "() => T", f.Calls[0].String())
	assert.Equal(t, "(a: string) => T", f.Calls[1].String())

	require.Len(t, i.Calls, 2)
	assert.False(t, i.Calls[0].Constructor)
	assert.True(t, i.Calls[1].Constructor)
	assert.False(t, root.Properties.Has("I"))
}

func TestBindTypeParamScopeIsConfined(t *testing.T) {
	root, b := bindProgram(t,
		&ast.InterfaceDecl{
			Name:       "Box",
			TypeParams: []ast.TypeParam{{Name: "T"}},
			Members:    []ast.Member{&ast.PropertyMember{Name: "value", Type: ref("T")}},
		},
		&ast.VariableDecl{Name: "v", Type: ref("T")},
	)

	v := get(t, &root.Properties, "v").(*types.UnresolvedRef)
	assert.Same(t, b.modules[""], v.Scope)

	box := object(t, get(t, &root.Types, "Box"))
	inner := get(t, &box.Properties, "value").(*types.UnresolvedRef)
	assert.NotSame(t, b.modules[""], inner.Scope)
	assert.Same(t, b.modules[""], inner.Scope.Parent())
}

func TestBindClass(t *testing.T) {
	root, _ := bindProgram(t, &ast.ClassDecl{
		Name:       "C",
		TypeParams: []ast.TypeParam{{Name: "T"}},
		Extends:    ref("Base"),
		Implements: []ast.TypeNode{ref("I")},
		Members: []ast.Member{
			&ast.PropertyMember{Name: "value", Type: ref("T")},
			&ast.MethodMember{Name: "get", Signature: ast.Signature{Returns: ref("T")}},
			&ast.PropertyMember{Name: "count", Static: true, Type: ref("number")},
			&ast.MethodMember{Name: "create", Static: true, Signature: ast.Signature{Returns: ref("C")}},
			&ast.ConstructorMember{Params: []ast.Param{{Name: "value", Type: ref("T")}}},
		},
	})

	instance := object(t, get(t, &root.Types, "C"))
	assert.Equal(t, "C", instance.QName)
	assert.Equal(t, []string{"value", "get"}, instance.Properties.Keys())
	require.Len(t, instance.Supers, 2)
	assert.Equal(t, "Base", instance.Supers[0].String())
	assert.Equal(t, "I", instance.Supers[1].String())

	ctor := object(t, get(t, &root.Properties, "C"))
	assert.False(t, ctor.Named())
	assert.Equal(t, []string{"count", "create"}, ctor.Properties.Keys())
	require.Len(t, ctor.Calls, 1)
	sig := ctor.Calls[0]
	assert.True(t, sig.Constructor)
	assert.Equal(t, "new <T>(value: T) => C<T>", sig.String())
	assert.Equal(t, &types.Generic{Base: types.Ref("C"), Args: []types.Expr{types.TypeParamRef{Name: "T"}}}, sig.Returns)

	// Static members do not see the class type parameters.
	count := get(t, &ctor.Properties, "count").(*types.UnresolvedRef)
	_, isModule := count.Scope.(*scope.Module)
	assert.True(t, isModule)
}

func TestBindClassImplicitConstructor(t *testing.T) {
	root, _ := bindProgram(t, &ast.ClassDecl{Name: "C"})

	ctor := object(t, get(t, &root.Properties, "C"))
	require.Len(t, ctor.Calls, 1)
	assert.Equal(t, "new () => C", ctor.Calls[0].String())
	assert.Equal(t, types.Ref("C"), ctor.Calls[0].Returns)
}

func TestBindClassConstructorOverloads(t *testing.T) {
	root, _ := bindProgram(t, &ast.ClassDecl{Name: "C", Members: []ast.Member{
		&ast.ConstructorMember{},
		&ast.ConstructorMember{Params: []ast.Param{{Name: "xs", Rest: true}}},
	}})

	ctor := object(t, get(t, &root.Properties, "C"))
	require.Len(t, ctor.Calls, 2)
	assert.False(t, ctor.Calls[0].Variadic)
	assert.True(t, ctor.Calls[1].Variadic)
}

func TestBindAlias(t *testing.T) {
	root, _ := bindProgram(t, &ast.AliasDecl{
		Name:       "Pair",
		TypeParams: []ast.TypeParam{{Name: "T"}},
		Type: &ast.ObjectLiteral{Members: []ast.Member{
			&ast.PropertyMember{Name: "first", Type: ref("T")},
			&ast.PropertyMember{Name: "second", Type: ref("T")},
		}},
	})

	pair := object(t, get(t, &root.Types, "Pair"))
	assert.False(t, pair.Named())
	assert.Equal(t, "{ first: T; second: T }", pair.Structure())
	first := get(t, &pair.Properties, "first").(*types.UnresolvedRef)
	_, isFixed := first.Scope.(*scope.Fixed)
	assert.True(t, isFixed)
}

func TestBindTypeNodes(t *testing.T) {
	root, _ := bindProgram(t,
		&ast.VariableDecl{Name: "a", Type: &ast.AnyType{}},
		&ast.VariableDecl{Name: "g", Type: &ast.TypeRef{Name: "Map", Args: []ast.TypeNode{ref("string"), ref("number")}}},
		&ast.VariableDecl{Name: "arr", Type: &ast.ArrayType{Elem: ref("string")}},
		&ast.VariableDecl{Name: "fn", Type: &ast.FunctionType{Constructor: true, Signature: ast.Signature{Returns: ref("C")}}},
	)

	assert.True(t, types.IsAny(get(t, &root.Properties, "a")))
	assert.Equal(t, "Map<string, number>", get(t, &root.Properties, "g").String())
	assert.Equal(t, "Array<string>", get(t, &root.Properties, "arr").String())
	fn := object(t, get(t, &root.Properties, "fn"))
	assert.Equal(t, "{ new () => C }", fn.Structure())
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name    string
		decls   []ast.Decl
		errType binderr.ErrorType
		wantMsg string
	}{
		{
			name:    "unknown declaration",
			decls:   []ast.Decl{&ast.UnknownDecl{Kind: "enum", Name: "E"}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "unexpected declaration `E` of kind `enum`",
		},
		{
			name: "getter",
			decls: []ast.Decl{&ast.ClassDecl{Name: "C", Members: []ast.Member{
				&ast.AccessorMember{Name: "size", Type: ref("number")},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "accessor `get size` is not supported",
		},
		{
			name: "setter in interface",
			decls: []ast.Decl{&ast.InterfaceDecl{Name: "I", Members: []ast.Member{
				&ast.AccessorMember{Name: "size", Setter: true},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "accessor `set size` is not supported",
		},
		{
			name: "unknown member",
			decls: []ast.Decl{&ast.InterfaceDecl{Name: "I", Members: []ast.Member{
				&ast.UnknownMember{Kind: "index", Name: "k"},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "unexpected member `k` of kind `index`",
		},
		{
			name: "static member in interface",
			decls: []ast.Decl{&ast.InterfaceDecl{Name: "I", Members: []ast.Member{
				&ast.PropertyMember{Name: "x", Static: true},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "static member `x` outside a class",
		},
		{
			name: "constructor in interface",
			decls: []ast.Decl{&ast.InterfaceDecl{Name: "I", Members: []ast.Member{
				&ast.ConstructorMember{},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "only allowed in classes",
		},
		{
			name: "call signature in class",
			decls: []ast.Decl{&ast.ClassDecl{Name: "C", Members: []ast.Member{
				&ast.CallMember{},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "class `C` cannot declare call or construct signatures",
		},
		{
			name: "accessor inside nested module",
			decls: []ast.Decl{&ast.ModuleDecl{Name: "A", Members: []ast.Decl{
				&ast.VariableDecl{Name: "v", Type: &ast.ObjectLiteral{Members: []ast.Member{
					&ast.AccessorMember{Name: "n"},
				}}},
			}}},
			errType: binderr.TypeUnsupportedDeclaration,
			wantMsg: "A.v",
		},
		{
			name: "variable and function with one name",
			decls: []ast.Decl{
				&ast.VariableDecl{Name: "x", Type: ref("number")},
				&ast.FunctionDecl{Name: "x"},
			},
			errType: binderr.TypeIncompatibleMerge,
			wantMsg: "incompatible types for `x`",
		},
		{
			name: "interface and alias with one name",
			decls: []ast.Decl{&ast.ModuleDecl{Name: "A", Members: []ast.Decl{
				&ast.InterfaceDecl{Name: "I"},
				&ast.AliasDecl{Name: "I", Type: ref("number")},
			}}},
			errType: binderr.TypeIncompatibleMerge,
			wantMsg: "incompatible types for `A.I`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bindError(t, tt.decls...)
			assert.True(t, binderr.Is(err, tt.errType), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
