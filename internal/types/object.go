package types

// ObjectType is the structure of a module, namespace, class instance,
// interface or anonymous object type.
type ObjectType struct {
	QName      string // empty for structural (anonymous) types
	Properties Members
	Calls      []*CallSignature
	Types      Members
	Supers     []Expr
	TypeParams []TypeParam
}

// NewObject creates an empty object type. An empty qname makes it anonymous.
func NewObject(qname string) *ObjectType {
	return &ObjectType{QName: qname}
}

// Named reports whether o is a nominal type.
func (o *ObjectType) Named() bool {
	return o.QName != ""
}

// Callable reports whether o has call or construct signatures.
func (o *ObjectType) Callable() bool {
	return len(o.Calls) > 0
}

// String renders nominal types by name and anonymous types structurally.
func (o *ObjectType) String() string {
	if o.Named() {
		return o.QName
	}
	return o.Structure()
}

// Structure renders the members of o regardless of its name. An anonymous
// object reached again while it is being rendered prints as {...}.
func (o *ObjectType) Structure() string {
	p := newPrinter()
	p.structure(o)
	return p.sb.String()
}

// Members is a map from name to expression that iterates in first-insertion
// order. The zero value is ready to use.
type Members struct {
	keys   []string
	values map[string]Expr
}

// Len returns the number of entries.
func (m *Members) Len() int {
	return len(m.keys)
}

// Keys returns the names in insertion order.
func (m *Members) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the expression stored under name.
func (m *Members) Get(name string) (Expr, bool) {
	e, ok := m.values[name]
	return e, ok
}

// Has reports whether name is present.
func (m *Members) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Set stores e under name. Replacing an existing entry keeps its position.
func (m *Members) Set(name string, e Expr) {
	if m.values == nil {
		m.values = make(map[string]Expr)
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = e
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Members) Range(fn func(name string, e Expr) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Update replaces every value with fn's result, in insertion order. It stops
// at the first error.
func (m *Members) Update(fn func(name string, e Expr) (Expr, error)) error {
	for _, k := range m.keys {
		e, err := fn(k, m.values[k])
		if err != nil {
			return err
		}
		m.values[k] = e
	}
	return nil
}
