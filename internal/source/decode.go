// Package source loads declaration trees produced by the external parser.
//
// The parser emits YAML (JSON is accepted as a subset). A stream may hold
// several documents; each has a top-level `declarations` list. Declarations
// from every document are concatenated in load order, so fragments of one
// qualified name may live in different documents.
package source

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"martianoff/declbind/binderr"
	"martianoff/declbind/internal/ast"
)

type rawDocument struct {
	Declarations []yaml.Node `yaml:"declarations"`
}

type rawDecl struct {
	Kind           string         `yaml:"kind"`
	Name           string         `yaml:"name"`
	Exported       bool           `yaml:"exported"`
	Members        []yaml.Node    `yaml:"members"`
	TypeParameters []rawTypeParam `yaml:"typeParameters"`
	Extends        []*rawType     `yaml:"extends"`
	Implements     []*rawType     `yaml:"implements"`
	Parameters     []rawParam     `yaml:"parameters"`
	Returns        *rawType       `yaml:"returns"`
	Type           *rawType       `yaml:"type"`
	Target         string         `yaml:"target"`
}

type rawMember struct {
	Kind           string         `yaml:"kind"`
	Name           string         `yaml:"name"`
	Optional       bool           `yaml:"optional"`
	Static         bool           `yaml:"static"`
	Type           *rawType       `yaml:"type"`
	TypeParameters []rawTypeParam `yaml:"typeParameters"`
	Parameters     []rawParam     `yaml:"parameters"`
	Returns        *rawType       `yaml:"returns"`
}

type rawParam struct {
	Name     string   `yaml:"name"`
	Optional bool     `yaml:"optional"`
	Rest     bool     `yaml:"rest"`
	Type     *rawType `yaml:"type"`
}

type rawTypeParam struct {
	Name       string   `yaml:"name"`
	Constraint *rawType `yaml:"constraint"`
}

type rawSignature struct {
	TypeParameters []rawTypeParam `yaml:"typeParameters"`
	Parameters     []rawParam     `yaml:"parameters"`
	Returns        *rawType       `yaml:"returns"`
}

type rawType struct {
	Ref      string        `yaml:"ref"`
	Args     []*rawType    `yaml:"args"`
	Any      bool          `yaml:"any"`
	Object   *[]yaml.Node  `yaml:"object"`
	Function *rawSignature `yaml:"function"`
	New      bool          `yaml:"new"`
	Array    *rawType      `yaml:"array"`

	line int
}

// UnmarshalYAML accepts the scalar shorthands `any`, `Name` and `Name[]`
// besides the mapping form.
func (t *rawType) UnmarshalYAML(n *yaml.Node) error {
	t.line = n.Line
	if n.Kind == yaml.ScalarNode {
		t.fromScalar(strings.TrimSpace(n.Value))
		return nil
	}
	type plain rawType
	return decodeStrict(n, (*plain)(t))
}

func (p *rawParam) UnmarshalYAML(n *yaml.Node) error {
	type plain rawParam
	return decodeStrict(n, (*plain)(p))
}

func (tp *rawTypeParam) UnmarshalYAML(n *yaml.Node) error {
	type plain rawTypeParam
	return decodeStrict(n, (*plain)(tp))
}

func (s *rawSignature) UnmarshalYAML(n *yaml.Node) error {
	type plain rawSignature
	return decodeStrict(n, (*plain)(s))
}

// fieldError is an unknown mapping key. It keeps the key's own line, which
// is more precise than the line of the enclosing declaration.
type fieldError struct {
	line int
	name string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("unknown field `%s`", e.name)
}

// decodeStrict decodes n into v, a pointer to a struct, after checking that
// every key of a mapping node names one of v's yaml fields.
func decodeStrict(n *yaml.Node, v any) error {
	if n.Kind == yaml.MappingNode {
		known := yamlFields(reflect.TypeOf(v).Elem())
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if !known[k.Value] {
				return &fieldError{line: k.Line, name: k.Value}
			}
		}
	}
	return n.Decode(v)
}

func yamlFields(t reflect.Type) map[string]bool {
	out := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		out[name] = true
	}
	return out
}

func (t *rawType) fromScalar(s string) {
	if elem, ok := strings.CutSuffix(s, "[]"); ok {
		t.Array = &rawType{line: t.line}
		t.Array.fromScalar(elem)
		return
	}
	if s == "any" {
		t.Any = true
		return
	}
	t.Ref = s
}

// Decode reads every document of a YAML stream into one program. path is
// only used in error messages.
func Decode(r io.Reader, path string) (*ast.Program, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	program := &ast.Program{}
	for {
		var doc rawDocument
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(path, 0, err)
		}
		c := &converter{path: path}
		for i := range doc.Declarations {
			d, err := c.decl(&doc.Declarations[i])
			if err == nil {
				err = c.err
			}
			if err != nil {
				return nil, err
			}
			program.Decls = append(program.Decls, d)
		}
	}
	return program, nil
}

// DecodeString is Decode over an in-memory document.
func DecodeString(s, path string) (*ast.Program, error) {
	return Decode(strings.NewReader(s), path)
}

func decodeError(path string, line int, err error) error {
	var fe *fieldError
	if errors.As(err, &fe) {
		return binderr.NewLoadError(path, fe.line, fe.Error())
	}
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return binderr.NewLoadError(path, line, strings.Join(te.Errors, "; "))
	}
	return binderr.NewLoadError(path, line, err.Error())
}

type converter struct {
	path string
	// err holds the first error raised inside a type node; typeNode itself
	// cannot return one.
	err error
}

func (c *converter) errorf(line int, format string, args ...any) error {
	return binderr.NewLoadError(c.path, line, fmt.Sprintf(format, args...))
}

func (c *converter) decl(n *yaml.Node) (ast.Decl, error) {
	var raw rawDecl
	if err := decodeStrict(n, &raw); err != nil {
		return nil, decodeError(c.path, n.Line, err)
	}
	if raw.Name == "" {
		return nil, c.errorf(n.Line, "%s declaration without a name", kindOrUnknown(raw.Kind))
	}

	switch raw.Kind {
	case "module", "namespace":
		members := make([]ast.Decl, 0, len(raw.Members))
		for i := range raw.Members {
			d, err := c.decl(&raw.Members[i])
			if err != nil {
				return nil, err
			}
			members = append(members, d)
		}
		return &ast.ModuleDecl{Name: raw.Name, Exported: raw.Exported, Members: members}, nil
	case "class":
		if len(raw.Extends) > 1 {
			return nil, c.errorf(n.Line, "class `%s` extends more than one class", raw.Name)
		}
		d := &ast.ClassDecl{Name: raw.Name, TypeParams: c.typeParams(raw.TypeParameters)}
		if len(raw.Extends) == 1 {
			d.Extends = c.typeNode(raw.Extends[0])
		}
		d.Implements = c.typeNodes(raw.Implements)
		members, err := c.members(raw.Members)
		if err != nil {
			return nil, err
		}
		d.Members = members
		return d, nil
	case "interface":
		members, err := c.members(raw.Members)
		if err != nil {
			return nil, err
		}
		return &ast.InterfaceDecl{
			Name:       raw.Name,
			TypeParams: c.typeParams(raw.TypeParameters),
			Extends:    c.typeNodes(raw.Extends),
			Members:    members,
		}, nil
	case "function":
		return &ast.FunctionDecl{
			Name: raw.Name,
			Signature: ast.Signature{
				TypeParams: c.typeParams(raw.TypeParameters),
				Params:     c.params(raw.Parameters),
				Returns:    c.typeNode(raw.Returns),
			},
		}, nil
	case "variable", "var":
		return &ast.VariableDecl{Name: raw.Name, Type: c.typeNode(raw.Type)}, nil
	case "import":
		if raw.Target == "" {
			return nil, c.errorf(n.Line, "import `%s` without a target", raw.Name)
		}
		return &ast.ImportDecl{Name: raw.Name, Target: raw.Target, Exported: raw.Exported}, nil
	case "alias", "type":
		if raw.Type == nil {
			return nil, c.errorf(n.Line, "type alias `%s` without a type", raw.Name)
		}
		return &ast.AliasDecl{
			Name:       raw.Name,
			TypeParams: c.typeParams(raw.TypeParameters),
			Type:       c.typeNode(raw.Type),
		}, nil
	default:
		return &ast.UnknownDecl{Kind: kindOrUnknown(raw.Kind), Name: raw.Name}, nil
	}
}

func (c *converter) members(nodes []yaml.Node) ([]ast.Member, error) {
	out := make([]ast.Member, 0, len(nodes))
	for i := range nodes {
		m, err := c.member(&nodes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *converter) member(n *yaml.Node) (ast.Member, error) {
	var raw rawMember
	if err := decodeStrict(n, &raw); err != nil {
		return nil, decodeError(c.path, n.Line, err)
	}
	sig := ast.Signature{
		TypeParams: c.typeParams(raw.TypeParameters),
		Params:     c.params(raw.Parameters),
		Returns:    c.typeNode(raw.Returns),
	}

	switch raw.Kind {
	case "property", "field":
		if raw.Name == "" {
			return nil, c.errorf(n.Line, "property without a name")
		}
		return &ast.PropertyMember{Name: raw.Name, Optional: raw.Optional, Static: raw.Static, Type: c.typeNode(raw.Type)}, nil
	case "method":
		if raw.Name == "" {
			return nil, c.errorf(n.Line, "method without a name")
		}
		return &ast.MethodMember{Name: raw.Name, Optional: raw.Optional, Static: raw.Static, Signature: sig}, nil
	case "call":
		return &ast.CallMember{Signature: sig}, nil
	case "construct":
		return &ast.ConstructMember{Signature: sig}, nil
	case "constructor":
		return &ast.ConstructorMember{Params: sig.Params}, nil
	case "get", "set":
		return &ast.AccessorMember{Name: raw.Name, Setter: raw.Kind == "set", Static: raw.Static, Type: c.typeNode(raw.Type)}, nil
	default:
		return &ast.UnknownMember{Kind: kindOrUnknown(raw.Kind), Name: raw.Name}, nil
	}
}

func (c *converter) params(ps []rawParam) []ast.Param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]ast.Param, len(ps))
	for i, p := range ps {
		out[i] = ast.Param{Name: p.Name, Optional: p.Optional, Rest: p.Rest, Type: c.typeNode(p.Type)}
	}
	return out
}

func (c *converter) typeParams(tps []rawTypeParam) []ast.TypeParam {
	if len(tps) == 0 {
		return nil
	}
	out := make([]ast.TypeParam, len(tps))
	for i, tp := range tps {
		out[i] = ast.TypeParam{Name: tp.Name, Constraint: c.typeNode(tp.Constraint)}
	}
	return out
}

func (c *converter) typeNodes(ts []*rawType) []ast.TypeNode {
	if len(ts) == 0 {
		return nil
	}
	out := make([]ast.TypeNode, len(ts))
	for i, t := range ts {
		out[i] = c.typeNode(t)
	}
	return out
}

// typeNode converts a raw type. A nil raw type yields a nil node, which the
// binder reads as any. A mapping with none of the type keys is an error.
func (c *converter) typeNode(t *rawType) ast.TypeNode {
	switch {
	case t == nil:
		return nil
	case t.Any:
		return &ast.AnyType{}
	case t.Array != nil:
		return &ast.ArrayType{Elem: c.typeNode(t.Array)}
	case t.Function != nil:
		return &ast.FunctionType{
			Constructor: t.New,
			Signature: ast.Signature{
				TypeParams: c.typeParams(t.Function.TypeParameters),
				Params:     c.params(t.Function.Parameters),
				Returns:    c.typeNode(t.Function.Returns),
			},
		}
	case t.Object != nil:
		members, err := c.members(*t.Object)
		if err != nil {
			c.fail(err)
		}
		return &ast.ObjectLiteral{Members: members}
	case t.Ref != "":
		return &ast.TypeRef{Name: t.Ref, Args: c.typeNodes(t.Args)}
	default:
		c.fail(c.errorf(t.line, "type without ref, any, object, function or array"))
		return nil
	}
}

// fail records the first error raised inside a type node.
func (c *converter) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func kindOrUnknown(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
