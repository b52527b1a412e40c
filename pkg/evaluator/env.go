package evaluator

import "sort"

// Env holds the variable bindings of one scope. A function call gets a fresh
// Env holding only its parameters; there is no parent chain.
type Env struct {
	bindings map[string]Value
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Lookup reads a variable for an expression: unbound names read as 0.
func (e *Env) Lookup(name string) Value {
	if val, ok := e.bindings[name]; ok {
		return val
	}
	return NewNumber(0)
}

// Set creates or overwrites a binding.
func (e *Env) Set(name string, val Value) {
	e.bindings[name] = val
}

// Delete removes a binding.
func (e *Env) Delete(name string) {
	delete(e.bindings, name)
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binding is the saved state of one name.
type Binding struct {
	name  string
	value Value
	bound bool
}

// Save captures the current binding of name.
func (e *Env) Save(name string) Binding {
	val, ok := e.bindings[name]
	return Binding{name: name, value: val, bound: ok}
}

// Restore puts a saved binding back, removing the name if it was unbound.
func (e *Env) Restore(b Binding) {
	if b.bound {
		e.Set(b.name, b.value)
		return
	}
	e.Delete(b.name)
}
