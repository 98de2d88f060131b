// Package render prints resolved environments.
package render

import (
	"io"
	"strings"

	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/types"
)

// RootLabel is the header printed for the anonymous top-level container.
const RootLabel = "(root)"

// Text writes every environment entry in registration order, then the root
// container. Each entry is a header line followed by its nested types,
// properties and call signatures, one per line.
func Text(w io.Writer, e *env.Environment, color bool) error {
	p := palette{enabled: color}
	var sb strings.Builder

	e.Range(func(qname string, o *types.ObjectType) bool {
		writeObject(&sb, p, p.name(qname), o)
		return true
	})
	if e.Root != nil {
		writeObject(&sb, p, p.muted(RootLabel), e.Root)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeObject(sb *strings.Builder, p palette, header string, o *types.ObjectType) {
	sb.WriteString(header)
	if len(o.TypeParams) > 0 {
		sb.WriteString(typeParams(o.TypeParams))
	}
	if len(o.Supers) > 0 {
		sb.WriteString(" ")
		sb.WriteString(p.keyword("extends"))
		sb.WriteString(" ")
		sb.WriteString(exprList(o.Supers))
	}
	sb.WriteByte('\n')

	o.Types.Range(func(name string, x types.Expr) bool {
		sb.WriteString("  ")
		sb.WriteString(p.keyword("type"))
		sb.WriteString(" " + name + " = " + x.String() + "\n")
		return true
	})
	o.Properties.Range(func(name string, x types.Expr) bool {
		sb.WriteString("  " + name + ": " + x.String() + "\n")
		return true
	})
	for _, c := range o.Calls {
		sb.WriteString("  " + c.String() + "\n")
	}
}

func typeParams(tps []types.TypeParam) string {
	parts := make([]string, len(tps))
	for i, tp := range tps {
		parts[i] = tp.Name
		if tp.Constraint != nil {
			parts[i] += " extends " + tp.Constraint.String()
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func exprList(xs []types.Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, ", ")
}
