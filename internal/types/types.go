// Package types is the type expression model shared by the binder, the
// merger, the environment and the resolver.
//
// Expressions form a closed set: QualifiedRef, *UnresolvedRef, *MemberAccess,
// TypeParamRef, *Generic, *ObjectType and Any. Nominal object types are only
// ever embedded at their definition site; every other use goes through a
// QualifiedRef.
package types

// Expr is a type expression.
type Expr interface {
	exprNode()
	String() string
}

// Scope is a lexical scope attached to an unresolved reference. The concrete
// scope kinds live in package scope.
type Scope interface {
	Parent() Scope
}

// QualifiedRef is a canonical pointer to an entry of the global environment.
type QualifiedRef struct {
	Name string
}

// UnresolvedRef is an identifier awaiting lookup in Scope.
type UnresolvedRef struct {
	ID    NodeID
	Name  string
	Scope Scope
}

// MemberAccess is `Base.Name`, a nested type looked up on Base.
type MemberAccess struct {
	ID   NodeID
	Base Expr
	Name string
}

// TypeParamRef refers to a type parameter bound by an enclosing generic declaration.
type TypeParamRef struct {
	Name string
}

// Generic is the instantiation of Base with Args.
type Generic struct {
	Base Expr
	Args []Expr
}

type anyType struct{}

// Any is the top type. It is a singleton value and is never mutated.
var Any Expr = anyType{}

func (QualifiedRef) exprNode()   {}
func (*UnresolvedRef) exprNode() {}
func (*MemberAccess) exprNode()  {}
func (TypeParamRef) exprNode()   {}
func (*Generic) exprNode()       {}
func (*ObjectType) exprNode()    {}
func (anyType) exprNode()        {}

// Ref returns a qualified reference to name.
func Ref(name string) QualifiedRef {
	return QualifiedRef{Name: name}
}

func (r QualifiedRef) String() string   { return r.Name }
func (r *UnresolvedRef) String() string { return r.Name }
func (p TypeParamRef) String() string   { return p.Name }
func (anyType) String() string          { return "any" }

func (m *MemberAccess) String() string { return render(m) }
func (g *Generic) String() string      { return render(g) }

// IsAny reports whether e is the Any singleton.
func IsAny(e Expr) bool {
	_, ok := e.(anyType)
	return ok
}

// TypeParam is a generic parameter declared on a type or signature.
type TypeParam struct {
	Name       string
	Constraint Expr // nil when unconstrained
}

// Parameter is a call signature parameter.
type Parameter struct {
	Name     string
	Optional bool
	Type     Expr
}

// CallSignature is one call or construct overload.
type CallSignature struct {
	Constructor bool
	Variadic    bool
	TypeParams  []TypeParam
	Params      []Parameter
	Returns     Expr
}

func (c *CallSignature) String() string {
	p := newPrinter()
	p.call(c)
	return p.sb.String()
}

// SelfRef is the type a declaration denotes when used inside itself: the bare
// reference, or the reference applied to its own type parameters.
func SelfRef(qname string, tps []TypeParam) Expr {
	if len(tps) == 0 {
		return Ref(qname)
	}
	args := make([]Expr, len(tps))
	for i, tp := range tps {
		args[i] = TypeParamRef{Name: tp.Name}
	}
	return &Generic{Base: Ref(qname), Args: args}
}
