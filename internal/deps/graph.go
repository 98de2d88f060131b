// Package deps builds the reference graph of a resolved environment: which
// entries mention which other entries.
package deps

import (
	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/types"
)

// Node is an environment entry, or an external name when the graph was built
// with externals.
type Node struct {
	QName    string
	External bool    // true for names with no environment entry
	Children []*Edge // entries this one references
	Parents  []*Edge // entries referencing this one
}

// Edge is one reference from From to To. Via names the first member through
// which the reference was found, such as "x", "type I" or "extends".
type Edge struct {
	From *Node
	To   *Node
	Via  string
}

// Graph is the reference graph. Nodes keep the environment's registration
// order; externals follow in discovery order.
type Graph struct {
	Nodes map[string]*Node
	order []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode returns the node for qname, creating it if needed.
func (g *Graph) AddNode(qname string, external bool) *Node {
	if existing, ok := g.Nodes[qname]; ok {
		return existing
	}
	node := &Node{QName: qname, External: external}
	g.Nodes[qname] = node
	g.order = append(g.order, qname)
	return node
}

// AddEdge links from to to unless they are already linked.
func (g *Graph) AddEdge(from, to *Node, via string) *Edge {
	for _, e := range from.Children {
		if e.To == to {
			return e
		}
	}
	edge := &Edge{From: from, To: to, Via: via}
	from.Children = append(from.Children, edge)
	to.Parents = append(to.Parents, edge)
	return edge
}

// GetNode returns the node for qname, or nil.
func (g *Graph) GetNode(qname string) *Node {
	return g.Nodes[qname]
}

// All returns every node in insertion order.
func (g *Graph) All() []*Node {
	out := make([]*Node, len(g.order))
	for i, n := range g.order {
		out[i] = g.Nodes[n]
	}
	return out
}

// Build collects the references of every entry of e. References to names
// without an entry are dropped unless externals is set.
func Build(e *env.Environment, externals bool) *Graph {
	g := NewGraph()
	e.Range(func(qname string, _ *types.ObjectType) bool {
		g.AddNode(qname, false)
		return true
	})

	e.Range(func(qname string, o *types.ObjectType) bool {
		from := g.Nodes[qname]
		visitObject(o, "", func(target, via string) {
			to := g.Nodes[target]
			if to == nil {
				if !externals {
					return
				}
				to = g.AddNode(target, true)
			}
			g.AddEdge(from, to, via)
		})
		return true
	})
	return g
}

// walker reports every qualified reference reachable from an entry without
// crossing into another entry. seen stops structural types that contain
// themselves.
type walker struct {
	report func(target, via string)
	seen   map[*types.ObjectType]bool
}

func visitObject(o *types.ObjectType, via string, report func(target, via string)) {
	w := &walker{report: report, seen: make(map[*types.ObjectType]bool)}
	w.object(o, via)
}

// object walks the members of o. via is the member path so far.
func (w *walker) object(o *types.ObjectType, via string) {
	if w.seen[o] {
		return
	}
	w.seen[o] = true
	for _, s := range o.Supers {
		w.expr(s, orVia(via, "extends"))
	}
	for _, tp := range o.TypeParams {
		if tp.Constraint != nil {
			w.expr(tp.Constraint, orVia(via, tp.Name))
		}
	}
	o.Types.Range(func(name string, x types.Expr) bool {
		w.expr(x, orVia(via, "type "+name))
		return true
	})
	o.Properties.Range(func(name string, x types.Expr) bool {
		w.expr(x, orVia(via, name))
		return true
	})
	for _, c := range o.Calls {
		for _, tp := range c.TypeParams {
			if tp.Constraint != nil {
				w.expr(tp.Constraint, orVia(via, "()"))
			}
		}
		for _, p := range c.Params {
			w.expr(p.Type, orVia(via, "()"))
		}
		w.expr(c.Returns, orVia(via, "()"))
	}
}

func (w *walker) expr(x types.Expr, via string) {
	switch x := x.(type) {
	case types.QualifiedRef:
		w.report(x.Name, via)
	case *types.Generic:
		w.expr(x.Base, via)
		for _, a := range x.Args {
			w.expr(a, via)
		}
	case *types.ObjectType:
		if x.Named() {
			w.report(x.QName, via)
			return
		}
		w.object(x, via)
	}
}

func orVia(via, name string) string {
	if via != "" {
		return via
	}
	return name
}
