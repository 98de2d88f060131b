package types

// NodeID is the stable identity of a reference node. The resolver memoizes
// by NodeID, so a node keeps its identity however many containers share it.
type NodeID int

// Arena allocates reference nodes and their identities.
type Arena struct {
	nodes []Expr
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Unresolved allocates an unresolved reference to name in scope s.
func (a *Arena) Unresolved(name string, s Scope) *UnresolvedRef {
	r := &UnresolvedRef{ID: NodeID(len(a.nodes)), Name: name, Scope: s}
	a.nodes = append(a.nodes, r)
	return r
}

// Member allocates the member access base.name.
func (a *Arena) Member(base Expr, name string) *MemberAccess {
	m := &MemberAccess{ID: NodeID(len(a.nodes)), Base: base, Name: name}
	a.nodes = append(a.nodes, m)
	return m
}

// Path allocates the reference chain for a dotted path: the first segment is
// looked up in s and the rest are member accesses.
func (a *Arena) Path(path []string, s Scope) Expr {
	var e Expr = a.Unresolved(path[0], s)
	for _, seg := range path[1:] {
		e = a.Member(e, seg)
	}
	return e
}

// Node returns the node with the given identity.
func (a *Arena) Node(id NodeID) Expr {
	return a.nodes[id]
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}
