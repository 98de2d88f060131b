package render

import (
	"io"

	"gopkg.in/yaml.v3"

	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/types"
)

// YAML writes the environment as a YAML document with an `entries` mapping
// in registration order and a `root` mapping. Expressions are rendered as
// strings.
func YAML(w io.Writer, e *env.Environment) error {
	entries := mapping()
	e.Range(func(qname string, o *types.ObjectType) bool {
		addPair(entries, qname, objectNode(o))
		return true
	})

	doc := mapping()
	addPair(doc, "entries", entries)
	if e.Root != nil {
		addPair(doc, "root", objectNode(e.Root))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func objectNode(o *types.ObjectType) *yaml.Node {
	n := mapping()
	if len(o.TypeParams) > 0 {
		tps := sequence()
		for _, tp := range o.TypeParams {
			m := mapping()
			addPair(m, "name", scalar(tp.Name))
			if tp.Constraint != nil {
				addPair(m, "constraint", scalar(tp.Constraint.String()))
			}
			tps.Content = append(tps.Content, m)
		}
		addPair(n, "typeParameters", tps)
	}
	if len(o.Supers) > 0 {
		supers := sequence()
		for _, s := range o.Supers {
			supers.Content = append(supers.Content, scalar(s.String()))
		}
		addPair(n, "supers", supers)
	}
	if o.Types.Len() > 0 {
		addPair(n, "types", membersNode(&o.Types))
	}
	if o.Properties.Len() > 0 {
		addPair(n, "properties", membersNode(&o.Properties))
	}
	if len(o.Calls) > 0 {
		calls := sequence()
		for _, c := range o.Calls {
			calls.Content = append(calls.Content, scalar(c.String()))
		}
		addPair(n, "calls", calls)
	}
	if len(n.Content) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func membersNode(m *types.Members) *yaml.Node {
	n := mapping()
	m.Range(func(name string, x types.Expr) bool {
		addPair(n, name, scalar(x.String()))
		return true
	})
	return n
}

func mapping() *yaml.Node  { return &yaml.Node{Kind: yaml.MappingNode} }
func sequence() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode} }

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}
