package merge

import (
	"martianoff/declbind/internal/types"
)

// Fragments collects, per name, every expression declared for it in one
// container, in declaration order. The binder fills it; Contents folds it.
type Fragments struct {
	names []string
	lists map[string][]types.Expr
}

// Add records another fragment for name.
func (f *Fragments) Add(name string, x types.Expr) {
	if f.lists == nil {
		f.lists = make(map[string][]types.Expr)
	}
	if _, ok := f.lists[name]; !ok {
		f.names = append(f.names, name)
	}
	f.lists[name] = append(f.lists[name], x)
}

// Len returns the number of distinct names.
func (f *Fragments) Len() int {
	return len(f.names)
}

// Count returns how many fragments were recorded for name.
func (f *Fragments) Count(name string) int {
	return len(f.lists[name])
}

// Contents folds every fragment list into its first element and stores the
// result in dst under the same name. path is the qualified name of the
// container, used in error messages.
func Contents(dst *types.Members, f *Fragments, path string) error {
	for _, name := range f.names {
		list := f.lists[name]
		acc := list[0]
		for _, next := range list[1:] {
			merged, err := Expr(join(path, name), acc, next)
			if err != nil {
				return err
			}
			acc = merged
		}
		if existing, ok := dst.Get(name); ok {
			merged, err := Expr(join(path, name), existing, acc)
			if err != nil {
				return err
			}
			acc = merged
		}
		dst.Set(name, acc)
	}
	return nil
}
