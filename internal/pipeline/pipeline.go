// Package pipeline runs the bind, merge, flatten and resolve phases in order.
package pipeline

import (
	"fmt"

	"martianoff/declbind/internal/ast"
	"martianoff/declbind/internal/binder"
	"martianoff/declbind/internal/env"
	"martianoff/declbind/internal/resolver"
	"martianoff/declbind/internal/scope"
	"martianoff/declbind/internal/types"
)

// Options configures a run.
type Options struct {
	// Strict turns names that no scope defines into errors.
	Strict bool
	// Globals are external names accepted in strict mode.
	Globals []string
}

// Stats counts what a run produced.
type Stats struct {
	Declarations int // declarations bound
	Entries      int // qualified names registered in the environment
	References   int // reference nodes resolved
}

// Result is a fully resolved environment.
type Result struct {
	Env   *env.Environment
	Stats Stats
}

// Root returns the resolved top-level container.
func (r *Result) Root() *types.ObjectType {
	return r.Env.Root
}

// Analyzer builds an environment from a declaration tree.
type Analyzer interface {
	Analyze(program *ast.Program) (*Result, error)
}

// Pipeline is the Analyzer implementation.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Analyze binds the program, merges duplicate declarations, flattens the
// result into an environment and resolves every reference in it. Any error
// aborts the run; there is no partial result.
func (p *Pipeline) Analyze(program *ast.Program) (*Result, error) {
	arena := types.NewArena()
	b := binder.New(arena)

	// Binding folds each container's fragments as it completes, so the tree
	// is fully merged when BindProgram returns.
	root, err := b.BindProgram(program)
	if err != nil {
		return nil, fmt.Errorf("binding: %w", err)
	}

	e, err := env.Build(root)
	if err != nil {
		return nil, fmt.Errorf("building environment: %w", err)
	}

	r := resolver.New(e, scope.NewOptions(p.opts.Strict, p.opts.Globals))
	if err := r.ResolveEnvironment(); err != nil {
		return nil, fmt.Errorf("resolving: %w", err)
	}

	return &Result{
		Env: e,
		Stats: Stats{
			Declarations: b.Declarations(),
			Entries:      e.Len(),
			References:   r.Resolved(),
		},
	}, nil
}

var _ Analyzer = (*Pipeline)(nil)
