// Package stdlib provides the built-in functions of the shape DSL.
package stdlib

import (
	"sort"

	"github.com/dmitrycvs/C-DSL/pkg/evaluator"
)

// Fn represents a built-in function.
type Fn struct {
	Name    string
	Arity   int
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered built-in functions.
type Registry struct {
	fns map[string]*Fn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Fn),
	}
}

// Register adds a function to the registry, replacing any previous one of
// the same name.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtins converts the registry into the table the evaluator dispatches on.
func (r *Registry) Builtins() map[string]*evaluator.BuiltinFn {
	out := make(map[string]*evaluator.BuiltinFn, len(r.fns))
	for name, fn := range r.fns {
		out[name] = &evaluator.BuiltinFn{
			Name:    fn.Name,
			Arity:   fn.Arity,
			Execute: fn.Execute,
		}
	}
	return out
}

// Defaults returns the built-in table with every default function.
func Defaults() map[string]*evaluator.BuiltinFn {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Builtins()
}
