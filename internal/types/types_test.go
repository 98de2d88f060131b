package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScope struct{}

func (testScope) Parent() Scope { return nil }

func TestExprString(t *testing.T) {
	arena := NewArena()
	s := testScope{}

	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"qualified reference", Ref("A.B"), "A.B"},
		{"unresolved reference", arena.Unresolved("Foo", s), "Foo"},
		{"member access", arena.Path([]string{"A", "B", "C"}, s), "A.B.C"},
		{"type parameter", TypeParamRef{Name: "T"}, "T"},
		{"any", Any, "any"},
		{
			"generic",
			&Generic{Base: Ref("Map"), Args: []Expr{Ref("string"), TypeParamRef{Name: "V"}}},
			"Map<string, V>",
		},
		{
			"nested generic",
			&Generic{Base: Ref("Array"), Args: []Expr{&Generic{Base: Ref("Box"), Args: []Expr{Ref("number")}}}},
			"Array<Box<number>>",
		},
		{"named object", NewObject("A.I"), "A.I"},
		{"empty anonymous object", NewObject(""), "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr.String())
		})
	}
}

func TestObjectStructure(t *testing.T) {
	o := NewObject("")
	o.Properties.Set("x", Ref("number"))
	o.Properties.Set("f", Any)
	o.Calls = append(o.Calls, &CallSignature{
		Params:  []Parameter{{Name: "a", Type: Ref("string")}, {Name: "b", Optional: true, Type: Any}},
		Returns: Ref("void"),
	})
	o.Calls = append(o.Calls, &CallSignature{
		Constructor: true,
		Variadic:    true,
		TypeParams:  []TypeParam{{Name: "T", Constraint: Ref("Base")}},
		Params:      []Parameter{{Name: "rest", Type: Ref("Array")}},
		Returns:     TypeParamRef{Name: "T"},
	})

	assert.Equal(t, "{ x: number; f: any; (a: string, b?: any) => void; new <T extends Base>(...rest: Array) => T }", o.String())

	o.QName = "Named"
	assert.Equal(t, "Named", o.String())
	assert.True(t, o.Named())
	assert.True(t, o.Callable())
}

func TestObjectStructureSelfContaining(t *testing.T) {
	list := NewObject("")
	list.Properties.Set("value", Ref("number"))
	list.Properties.Set("next", list)
	list.Properties.Set("all", &Generic{Base: Ref("Array"), Args: []Expr{list}})
	list.Calls = append(list.Calls, &CallSignature{Returns: list})

	assert.Equal(t, "{ value: number; next: {...}; all: Array<{...}>; () => {...} }", list.String())

	shared := NewObject("")
	shared.Properties.Set("x", Ref("number"))
	pair := NewObject("")
	pair.Properties.Set("a", shared)
	pair.Properties.Set("b", shared)
	assert.Equal(t, "{ a: { x: number }; b: { x: number } }", pair.String())
}

func TestMembersOrder(t *testing.T) {
	var m Members
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Set("b", Ref("B"))
	m.Set("a", Ref("A"))
	m.Set("c", Ref("C"))
	m.Set("b", Ref("B2"))

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	got, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, Ref("B2"), got)
	assert.True(t, m.Has("c"))

	var seen []string
	m.Range(func(name string, _ Expr) bool {
		seen = append(seen, name)
		return name != "a"
	})
	assert.Equal(t, []string{"b", "a"}, seen)
}

func TestMembersUpdate(t *testing.T) {
	var m Members
	m.Set("x", Any)
	m.Set("y", Any)

	err := m.Update(func(name string, _ Expr) (Expr, error) {
		return Ref(name + "T"), nil
	})
	require.NoError(t, err)

	x, _ := m.Get("x")
	y, _ := m.Get("y")
	assert.Equal(t, Ref("xT"), x)
	assert.Equal(t, Ref("yT"), y)
	assert.Equal(t, []string{"x", "y"}, m.Keys())
}

func TestArenaIdentity(t *testing.T) {
	arena := NewArena()
	s := testScope{}

	a := arena.Unresolved("A", s)
	b := arena.Unresolved("A", s)
	assert.NotEqual(t, a.ID, b.ID)

	path := arena.Path([]string{"A", "B"}, s)
	member, ok := path.(*MemberAccess)
	require.True(t, ok)
	assert.Equal(t, "B", member.Name)

	assert.Equal(t, 4, arena.Len())
	assert.Same(t, a, arena.Node(a.ID))
	assert.Same(t, member, arena.Node(member.ID))
}

func TestSelfRef(t *testing.T) {
	assert.Equal(t, Ref("A.C"), SelfRef("A.C", nil))

	self := SelfRef("Box", []TypeParam{{Name: "T"}, {Name: "U"}})
	assert.Equal(t, "Box<T, U>", self.String())
}

func TestAnySingleton(t *testing.T) {
	assert.True(t, IsAny(Any))
	assert.False(t, IsAny(Ref("any")))
	assert.Equal(t, Any, Any)
}
