package types

import "strings"

// printer renders expressions. open holds the anonymous objects on the
// current rendering path, so a structural type that contains itself ends in
// a {...} marker instead of recursing.
type printer struct {
	sb   strings.Builder
	open map[*ObjectType]bool
}

func newPrinter() *printer {
	return &printer{open: make(map[*ObjectType]bool)}
}

func render(e Expr) string {
	p := newPrinter()
	p.expr(e)
	return p.sb.String()
}

func (p *printer) expr(e Expr) {
	switch x := e.(type) {
	case *MemberAccess:
		p.expr(x.Base)
		p.sb.WriteByte('.')
		p.sb.WriteString(x.Name)
	case *Generic:
		p.expr(x.Base)
		p.sb.WriteByte('<')
		for i, a := range x.Args {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.expr(a)
		}
		p.sb.WriteByte('>')
	case *ObjectType:
		if x.Named() {
			p.sb.WriteString(x.QName)
			return
		}
		p.structure(x)
	default:
		p.sb.WriteString(e.String())
	}
}

func (p *printer) structure(o *ObjectType) {
	if p.open[o] {
		p.sb.WriteString("{...}")
		return
	}
	p.open[o] = true
	defer delete(p.open, o)

	n := 0
	sep := func() {
		if n == 0 {
			p.sb.WriteString("{ ")
		} else {
			p.sb.WriteString("; ")
		}
		n++
	}
	o.Properties.Range(func(name string, e Expr) bool {
		sep()
		p.sb.WriteString(name)
		p.sb.WriteString(": ")
		p.expr(e)
		return true
	})
	for _, c := range o.Calls {
		sep()
		p.call(c)
	}
	if n == 0 {
		p.sb.WriteString("{}")
		return
	}
	p.sb.WriteString(" }")
}

func (p *printer) call(c *CallSignature) {
	if c.Constructor {
		p.sb.WriteString("new ")
	}
	p.typeParams(c.TypeParams)
	p.sb.WriteByte('(')
	for i, prm := range c.Params {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		if c.Variadic && i == len(c.Params)-1 {
			p.sb.WriteString("...")
		}
		p.sb.WriteString(prm.Name)
		if prm.Optional {
			p.sb.WriteByte('?')
		}
		p.sb.WriteString(": ")
		p.expr(prm.Type)
	}
	p.sb.WriteString(") => ")
	p.expr(c.Returns)
}

func (p *printer) typeParams(tps []TypeParam) {
	if len(tps) == 0 {
		return
	}
	p.sb.WriteByte('<')
	for i, tp := range tps {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(tp.Name)
		if tp.Constraint != nil {
			p.sb.WriteString(" extends ")
			p.expr(tp.Constraint)
		}
	}
	p.sb.WriteByte('>')
}
