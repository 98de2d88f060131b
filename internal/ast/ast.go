// Package ast defines the declaration tree produced by the external parser.
//
// The tree is the only input of the binder. Declarations, class/interface
// members and type annotations are closed sets: each is a sealed interface
// implemented only by the node types in this package, so consumers can switch
// over them exhaustively.
package ast

// Program is the top-level declaration set. Declarations from several source
// documents are concatenated in load order.
type Program struct {
	Decls []Decl
}

// Decl is a declaration that can appear at top level or inside a module body.
type Decl interface {
	declNode()
	// DeclName returns the declared local name ("" for unnamed nodes).
	DeclName() string
}

// ModuleDecl is a module or namespace. Name may be dotted ("A.B.C"), which is
// shorthand for nested modules.
type ModuleDecl struct {
	Name     string
	Exported bool
	Members  []Decl
}

// ClassDecl declares a class: an instance type plus a constructible value.
type ClassDecl struct {
	Name       string
	TypeParams []TypeParam
	Extends    TypeNode // nil when the class has no base class
	Implements []TypeNode
	Members    []Member
}

// InterfaceDecl declares an interface. Interfaces with the same name in the
// same container are merged.
type InterfaceDecl struct {
	Name       string
	TypeParams []TypeParam
	Extends    []TypeNode
	Members    []Member
}

// FunctionDecl declares one overload of a function.
type FunctionDecl struct {
	Name string
	Signature
}

// VariableDecl declares a variable. Type is nil for untyped declarations.
type VariableDecl struct {
	Name string
	Type TypeNode
}

// ImportDecl is an import alias: `import Name = Target`.
type ImportDecl struct {
	Name     string
	Target   string // dotted qualified path
	Exported bool
}

// AliasDecl is a type alias: `type Name<TypeParams> = Type`.
type AliasDecl struct {
	Name       string
	TypeParams []TypeParam
	Type       TypeNode
}

// UnknownDecl carries a declaration form the parser produced but the binder
// does not model.
type UnknownDecl struct {
	Kind string
	Name string
}

func (*ModuleDecl) declNode()    {}
func (*ClassDecl) declNode()     {}
func (*InterfaceDecl) declNode() {}
func (*FunctionDecl) declNode()  {}
func (*VariableDecl) declNode()  {}
func (*ImportDecl) declNode()    {}
func (*AliasDecl) declNode()     {}
func (*UnknownDecl) declNode()   {}

func (d *ModuleDecl) DeclName() string    { return d.Name }
func (d *ClassDecl) DeclName() string     { return d.Name }
func (d *InterfaceDecl) DeclName() string { return d.Name }
func (d *FunctionDecl) DeclName() string  { return d.Name }
func (d *VariableDecl) DeclName() string  { return d.Name }
func (d *ImportDecl) DeclName() string    { return d.Name }
func (d *AliasDecl) DeclName() string     { return d.Name }
func (d *UnknownDecl) DeclName() string   { return d.Name }

// Signature is shared by functions, methods, call and construct signatures.
type Signature struct {
	TypeParams []TypeParam
	Params     []Param
	Returns    TypeNode // nil means any
}

// Variadic reports whether the last parameter is a rest parameter.
func (s *Signature) Variadic() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].Rest
}

// Param is a function parameter.
type Param struct {
	Name     string
	Optional bool
	Rest     bool
	Type     TypeNode // nil means any
}

// TypeParam is a generic parameter with an optional constraint.
type TypeParam struct {
	Name       string
	Constraint TypeNode
}

// Member is a member of a class body, interface body or object literal type.
type Member interface {
	memberNode()
	MemberName() string
}

// PropertyMember is a data member.
type PropertyMember struct {
	Name     string
	Optional bool
	Static   bool
	Type     TypeNode
}

// MethodMember is one overload of a named method.
type MethodMember struct {
	Name     string
	Optional bool
	Static   bool
	Signature
}

// CallMember is an anonymous call signature: the enclosing type is callable.
type CallMember struct {
	Signature
}

// ConstructMember is an anonymous construct signature (`new (...)`).
type ConstructMember struct {
	Signature
}

// ConstructorMember is a class constructor overload.
type ConstructorMember struct {
	Params []Param
}

// AccessorMember is a getter or setter. The binder rejects accessors.
type AccessorMember struct {
	Name   string
	Setter bool
	Static bool
	Type   TypeNode
}

// UnknownMember carries a member form the binder does not model.
type UnknownMember struct {
	Kind string
	Name string
}

func (*PropertyMember) memberNode()    {}
func (*MethodMember) memberNode()      {}
func (*CallMember) memberNode()        {}
func (*ConstructMember) memberNode()   {}
func (*ConstructorMember) memberNode() {}
func (*AccessorMember) memberNode()    {}
func (*UnknownMember) memberNode()     {}

func (m *PropertyMember) MemberName() string  { return m.Name }
func (m *MethodMember) MemberName() string    { return m.Name }
func (*CallMember) MemberName() string        { return "" }
func (*ConstructMember) MemberName() string   { return "" }
func (*ConstructorMember) MemberName() string { return "constructor" }
func (m *AccessorMember) MemberName() string  { return m.Name }
func (m *UnknownMember) MemberName() string   { return m.Name }

// TypeNode is a syntactic type annotation.
type TypeNode interface {
	typeNode()
}

// TypeRef names a type, possibly dotted and possibly instantiated.
type TypeRef struct {
	Name string
	Args []TypeNode
}

// AnyType is the `any` keyword.
type AnyType struct{}

// ObjectLiteral is an inline object type `{ ... }`.
type ObjectLiteral struct {
	Members []Member
}

// FunctionType is an inline function or constructor type.
type FunctionType struct {
	Constructor bool
	Signature
}

// ArrayType is the `T[]` shorthand.
type ArrayType struct {
	Elem TypeNode
}

func (*TypeRef) typeNode()       {}
func (*AnyType) typeNode()       {}
func (*ObjectLiteral) typeNode() {}
func (*FunctionType) typeNode()  {}
func (*ArrayType) typeNode()     {}
