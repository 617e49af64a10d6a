package shikigami

import (
	"maps"
	"slices"
)

// Function is a user-defined function registered by a definition.
type Function struct {
	Name   string
	Params []string
	Body   Node
	Pos    Position
}

// Env holds variable bindings and function definitions for one evaluation.
//
// Calls use copy-in semantics rather than closures: the callee starts from a
// snapshot of the caller's variables with its parameters bound on top, so
// assignments inside a function body never reach the caller. The function
// table is shared by every scope derived from the same root.
type Env struct {
	values    map[string]Value
	functions map[string]*Function
}

func NewEnv() *Env {
	return &Env{values: make(map[string]Value), functions: make(map[string]*Function)}
}

func (e *Env) Get(name string) (Value, bool) {
	val, ok := e.values[name]
	return val, ok
}

func (e *Env) Set(name string, val Value) {
	e.values[name] = val
}

func (e *Env) Function(name string) (*Function, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

// Define registers fn, replacing any earlier definition with the same name.
func (e *Env) Define(fn *Function) {
	e.functions[fn.Name] = fn
}

func (e *Env) callScope() *Env {
	return &Env{values: maps.Clone(e.values), functions: e.functions}
}

// Variables returns a copy of the variable bindings.
func (e *Env) Variables() map[string]Value {
	return maps.Clone(e.values)
}

// Functions returns the defined functions sorted by name.
func (e *Env) Functions() []*Function {
	names := slices.Sorted(maps.Keys(e.functions))
	out := make([]*Function, 0, len(names))
	for _, name := range names {
		out = append(out, e.functions[name])
	}
	return out
}

func (e *Env) arities() map[string]int {
	out := make(map[string]int, len(e.functions))
	for name, fn := range e.functions {
		out[name] = len(fn.Params)
	}
	return out
}
