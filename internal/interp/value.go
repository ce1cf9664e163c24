// Package interp is the tree-walking evaluator: it walks an *ast.Program
// against a chain of Environments and produces Values, propagating
// control-flow Signals (return/break/continue/exit) instead of using Go
// exceptions/panics.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nox-lang/nox/internal/ast"
)

// Value is any runtime value the evaluator can produce: Number, String,
// Bool, Null, Array, Object, Closure, or Builtin.
type Value interface {
	Type() string
	String() string
	Truthy() bool
}

// Number is either an exact int64 or a float64; IsInt distinguishes them so
// integer literals survive arithmetic without being coerced to float where
// the operation stays exact.
type Number struct {
	Int   int64
	Float float64
	IsInt bool
}

func IntValue(v int64) Number     { return Number{Int: v, IsInt: true} }
func FloatValue(v float64) Number { return Number{Float: v} }

func (n Number) Type() string { return "number" }
func (n Number) String() string {
	if n.IsInt {
		return strconv.FormatInt(n.Int, 10)
	}
	return strconv.FormatFloat(n.Float, 'g', -1, 64)
}
func (n Number) Truthy() bool {
	if n.IsInt {
		return n.Int != 0
	}
	return n.Float != 0
}

// AsFloat widens to float64 regardless of IsInt, for mixed int/float
// arithmetic.
func (n Number) AsFloat() float64 {
	if n.IsInt {
		return float64(n.Int)
	}
	return n.Float
}

type String struct {
	Value string
}

func (s String) Type() string   { return "string" }
func (s String) String() string { return s.Value }
func (s String) Truthy() bool   { return s.Value != "" }

type Bool struct {
	Value bool
}

func (b Bool) Type() string   { return "boolean" }
func (b Bool) String() string { return strconv.FormatBool(b.Value) }
func (b Bool) Truthy() bool   { return b.Value }

type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }
func (Null) Truthy() bool   { return false }

// Array is a mutable, order-preserving list value. Values share the
// backing slice across assignments that alias the same Array, matching the
// source language's reference-value-for-compound-types behavior.
type Array struct {
	Items *[]Value
}

func NewArray(items []Value) Array {
	return Array{Items: &items}
}

func (a Array) Type() string { return "array" }
func (a Array) String() string {
	parts := make([]string, len(*a.Items))
	for i, v := range *a.Items {
		parts[i] = elementString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a Array) Truthy() bool { return len(*a.Items) != 0 }

// elementString renders a Value as it appears nested inside an array or
// object: like String(), except a string element is quoted so it reads
// back unambiguously against numbers and other scalars.
func elementString(v Value) string {
	if s, ok := v.(String); ok {
		return strconv.Quote(s.Value)
	}
	return v.String()
}

// Object is an insertion-ordered string-keyed map. order records key
// insertion sequence since a plain Go map does not preserve it.
type Object struct {
	entries *map[string]Value
	order   *[]string
}

func NewObject() Object {
	m := make(map[string]Value)
	order := []string{}
	return Object{entries: &m, order: &order}
}

func (o Object) Type() string { return "object" }
func (o Object) String() string {
	parts := make([]string, 0, len(*o.order))
	for _, k := range *o.order {
		parts = append(parts, strconv.Quote(k)+": "+elementString((*o.entries)[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o Object) Truthy() bool { return len(*o.order) != 0 }

func (o Object) Get(key string) (Value, bool) {
	v, ok := (*o.entries)[key]
	return v, ok
}

// Set inserts or overwrites key, appending to the key order only the first
// time key is seen.
func (o Object) Set(key string, v Value) {
	if _, exists := (*o.entries)[key]; !exists {
		*o.order = append(*o.order, key)
	}
	(*o.entries)[key] = v
}

func (o Object) Keys() []string {
	keys := make([]string, len(*o.order))
	copy(keys, *o.order)
	return keys
}

// Closure is a function value: the defining FunctionLiteral plus nothing
// else. No captured environment is stored — call sites bind the new call
// frame's parent to the caller's environment at call time (dynamic
// scoping), not to any environment recorded here.
type Closure struct {
	Literal *ast.FunctionLiteral
}

func (c Closure) Type() string   { return "function" }
func (c Closure) String() string { return "function(" + strings.Join(paramNames(c.Literal), ", ") + ")" }
func (c Closure) Truthy() bool   { return true }

func paramNames(f *ast.FunctionLiteral) []string {
	names := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		names[i] = p.Value
	}
	return names
}

// Builtin is a native function implemented in Go, resolved by name when an
// identifier is bound in no environment frame (head, tail, length, keys,
// and the domain-stack additions in builtins.go).
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (b Builtin) Type() string   { return "builtin" }
func (b Builtin) String() string { return fmt.Sprintf("builtin(%s)", b.Name) }
func (b Builtin) Truthy() bool   { return true }
