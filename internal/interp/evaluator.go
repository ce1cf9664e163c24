package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nox-lang/nox/internal/ast"
)

// signal is the small int enum a statement evaluation returns alongside its
// Value, replacing exceptions as the control-flow unwinding mechanism for
// return/break/continue/exit.
type signal int

const (
	signalNone signal = iota
	signalReturn
	signalBreak
	signalContinue
	signalExit
)

// ctx threads per-call evaluation state that isn't a variable binding and so
// doesn't belong in Environment: the print destination and the loop nesting
// depth, the latter reset to zero on every function call since
// break/continue never cross a call boundary even when the call occurs
// lexically inside a loop.
type ctx struct {
	loopDepth int
	out       io.Writer
}

// Eval runs a parsed program against env and returns its last statement's
// value. Built-ins are not stored in env; they are resolved by name when an
// identifier is bound in no frame. signalExit and a top-level return unwind
// here and are reported as a normal result, not an error.
// print writes to os.Stdout; use EvalTo to redirect it, e.g. for tests.
func Eval(prog *ast.Program, env *Environment) (Value, error) {
	return EvalTo(prog, env, os.Stdout)
}

// EvalTo is Eval with print output directed at out instead of os.Stdout.
func EvalTo(prog *ast.Program, env *Environment, out io.Writer) (Value, error) {
	v, sig, err := evalStatements(prog.Statements, env, ctx{out: out})
	if err != nil {
		if exitErr, ok := err.(*exitSignalError); ok {
			return exitErr.value, nil
		}
		return nil, err
	}
	switch sig {
	case signalNone, signalExit:
		return v, nil
	case signalReturn:
		return v, nil
	default:
		return nil, fmt.Errorf("break/continue outside loop")
	}
}

func evalStatements(stmts []ast.Statement, env *Environment, c ctx) (Value, signal, error) {
	var result Value = Null{}
	for _, s := range stmts {
		v, sig, err := evalStatement(s, env, c)
		if err != nil {
			return nil, signalNone, err
		}
		result = v
		if sig != signalNone {
			return result, sig, nil
		}
	}
	return result, signalNone, nil
}

func evalBlock(list *ast.StatementList, env *Environment, c ctx) (Value, signal, error) {
	return evalStatements(list.Statements, env, c)
}

func evalStatement(s ast.Statement, env *Environment, c ctx) (Value, signal, error) {
	switch st := s.(type) {
	case *ast.ExpressionStatement:
		v, err := evalExpr(st.Value, env, c)
		return v, signalNone, err
	case *ast.AssignStatement:
		v, err := evalAssign(st, env, c)
		return v, signalNone, err
	case *ast.IfStatement:
		return evalIf(st, env, c)
	case *ast.WhileStatement:
		return evalWhile(st, env, c)
	case *ast.ReturnStatement:
		if st.Value == nil {
			return Null{}, signalReturn, nil
		}
		v, err := evalExpr(st.Value, env, c)
		if err != nil {
			return nil, signalNone, err
		}
		return v, signalReturn, nil
	case *ast.PrintStatement:
		return evalPrint(st, env, c)
	case *ast.ExitStatement:
		if st.Value == nil {
			return Null{}, signalExit, nil
		}
		v, err := evalExpr(st.Value, env, c)
		if err != nil {
			return nil, signalNone, err
		}
		return v, signalExit, nil
	case *ast.AssertStatement:
		return evalAssert(st, env, c)
	case *ast.ImportStatement:
		if _, err := evalExpr(st.Value, env, c); err != nil {
			return nil, signalNone, err
		}
		return Null{}, signalNone, nil
	case *ast.BreakStatement:
		if c.loopDepth == 0 {
			return nil, signalNone, fmt.Errorf("break outside loop")
		}
		return Null{}, signalBreak, nil
	case *ast.ContinueStatement:
		if c.loopDepth == 0 {
			return nil, signalNone, fmt.Errorf("continue outside loop")
		}
		return Null{}, signalContinue, nil
	case *ast.StatementList:
		return evalBlock(st, env, c)
	default:
		return nil, signalNone, fmt.Errorf("internal error: unhandled statement type %T", s)
	}
}

func evalIf(st *ast.IfStatement, env *Environment, c ctx) (Value, signal, error) {
	cond, err := evalExpr(st.Condition, env, c)
	if err != nil {
		return nil, signalNone, err
	}
	if cond.Truthy() {
		return evalBlock(st.Then, env, c)
	}
	if st.Else != nil {
		return evalBlock(st.Else, env, c)
	}
	return Null{}, signalNone, nil
}

func evalWhile(st *ast.WhileStatement, env *Environment, c ctx) (Value, signal, error) {
	inner := c
	inner.loopDepth++
	result := Value(Null{})
	for {
		cond, err := evalExpr(st.Condition, env, c)
		if err != nil {
			return nil, signalNone, err
		}
		if !cond.Truthy() {
			return result, signalNone, nil
		}
		v, sig, err := evalBlock(st.Do, env, inner)
		if err != nil {
			return nil, signalNone, err
		}
		switch sig {
		case signalNone:
			result = v
		case signalBreak:
			return v, signalNone, nil
		case signalContinue:
			result = v
		case signalReturn, signalExit:
			return v, sig, nil
		}
	}
}

func evalPrint(st *ast.PrintStatement, env *Environment, c ctx) (Value, signal, error) {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if st.Value == nil {
		fmt.Fprintln(out)
		return String{Value: ""}, signalNone, nil
	}
	v, err := evalExpr(st.Value, env, c)
	if err != nil {
		return nil, signalNone, err
	}
	text := toDisplayString(v)
	fmt.Fprintln(out, text)
	return String{Value: text}, signalNone, nil
}

func evalAssert(st *ast.AssertStatement, env *Environment, c ctx) (Value, signal, error) {
	cond, err := evalExpr(st.Condition, env, c)
	if err != nil {
		return nil, signalNone, err
	}
	if cond.Truthy() {
		return Null{}, signalNone, nil
	}
	msg := fmt.Sprintf("assertion failed: %s", st.Condition.String())
	if st.Explanation != nil {
		explanation, err := evalExpr(st.Explanation, env, c)
		if err != nil {
			return nil, signalNone, err
		}
		msg = fmt.Sprintf("%s (%s)", msg, toDisplayString(explanation))
	}
	return nil, signalNone, fmt.Errorf("%s", msg)
}

// toDisplayString renders a value the way print and assertion explanations
// want it: booleans lowercase, null literal, numbers without spurious
// trailing zeros, aggregates bracket/brace-delimited.
func toDisplayString(v Value) string {
	return v.String()
}

func evalExpr(e ast.Expression, env *Environment, c ctx) (Value, error) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		if n.IsInt {
			return IntValue(n.IntValue), nil
		}
		return FloatValue(n.FloatValue), nil
	case *ast.StringLiteral:
		return String{Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return Bool{Value: n.Value}, nil
	case *ast.NullLiteral:
		return Null{}, nil
	case *ast.Identifier:
		if v, ok := env.Lookup(n.Value); ok {
			return v, nil
		}
		if v, ok := Builtins[n.Value]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("unknown identifier: %q", n.Value)
	case *ast.ListLiteral:
		items := make([]Value, len(n.Items))
		for i, item := range n.Items {
			v, err := evalExpr(item, env, c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return NewArray(items), nil
	case *ast.ObjectLiteral:
		obj := NewObject()
		for _, entry := range n.Items {
			keyVal, err := evalExpr(entry.Key, env, c)
			if err != nil {
				return nil, err
			}
			keyStr, ok := keyVal.(String)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %s", keyVal.Type())
			}
			val, err := evalExpr(entry.Value, env, c)
			if err != nil {
				return nil, err
			}
			obj.Set(keyStr.Value, val)
		}
		return obj, nil
	case *ast.FunctionLiteral:
		return Closure{Literal: n}, nil
	case *ast.UnaryExpression:
		return evalUnary(n, env, c)
	case *ast.BinaryExpression:
		return evalBinary(n, env, c)
	case *ast.ComplexExpression:
		return evalComplexRead(n, env, c)
	case *ast.CallExpression:
		return evalCall(n, env, c)
	case *ast.AssignStatement:
		return evalAssign(n, env, c)
	default:
		return nil, fmt.Errorf("internal error: unhandled expression type %T", e)
	}
}

func evalUnary(n *ast.UnaryExpression, env *Environment, c ctx) (Value, error) {
	v, err := evalExpr(n.Value, env, c)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "negate":
		num, ok := v.(Number)
		if !ok {
			return nil, fmt.Errorf("illegal type for unary '-': %s", v.Type())
		}
		if num.IsInt {
			return IntValue(-num.Int), nil
		}
		return FloatValue(-num.Float), nil
	case "not":
		return Bool{Value: !v.Truthy()}, nil
	default:
		return nil, fmt.Errorf("internal error: unhandled unary operator %q", n.Op)
	}
}

func evalBinary(n *ast.BinaryExpression, env *Environment, c ctx) (Value, error) {
	left, err := evalExpr(n.Left, env, c)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(n.Right, env, c)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+", "-", "*", "/":
		return evalArithmetic(n.Op, left, right)
	case "<", ">", "<=", ">=":
		return evalComparison(n.Op, left, right)
	case "==":
		return Bool{Value: valuesEqual(left, right)}, nil
	case "!=":
		return Bool{Value: !valuesEqual(left, right)}, nil
	case "&&":
		return Bool{Value: left.Truthy() && right.Truthy()}, nil
	case "||":
		return Bool{Value: left.Truthy() || right.Truthy()}, nil
	default:
		return nil, fmt.Errorf("internal error: unhandled binary operator %q", n.Op)
	}
}

func illegalTypes(op string, left, right Value) error {
	return fmt.Errorf("illegal types for operator %q: %s, %s", op, left.Type(), right.Type())
}

func evalArithmetic(op string, left, right Value) (Value, error) {
	if lNum, ok := left.(Number); ok {
		if rNum, ok := right.(Number); ok {
			return numberArithmetic(op, lNum, rNum)
		}
	}
	if lStr, ok := left.(String); ok {
		if rStr, ok := right.(String); ok {
			if op == "+" {
				return String{Value: lStr.Value + rStr.Value}, nil
			}
			return nil, illegalTypes(op, left, right)
		}
		if rNum, ok := right.(Number); ok && op == "*" {
			return String{Value: strings.Repeat(lStr.Value, repeatCount(rNum))}, nil
		}
	}
	if lArr, ok := left.(Array); ok {
		if rArr, ok := right.(Array); ok {
			if op == "+" {
				merged := make([]Value, 0, len(*lArr.Items)+len(*rArr.Items))
				merged = append(merged, *lArr.Items...)
				merged = append(merged, *rArr.Items...)
				return NewArray(merged), nil
			}
			return nil, illegalTypes(op, left, right)
		}
	}
	if lObj, ok := left.(Object); ok {
		if rObj, ok := right.(Object); ok {
			if op == "+" {
				merged := NewObject()
				for _, k := range lObj.Keys() {
					v, _ := lObj.Get(k)
					merged.Set(k, v)
				}
				for _, k := range rObj.Keys() {
					v, _ := rObj.Get(k)
					merged.Set(k, v)
				}
				return merged, nil
			}
			return nil, illegalTypes(op, left, right)
		}
	}
	if lNum, ok := left.(Number); ok {
		if rStr, ok := right.(String); ok && op == "*" {
			return String{Value: strings.Repeat(rStr.Value, repeatCount(lNum))}, nil
		}
	}
	return nil, illegalTypes(op, left, right)
}

// repeatCount truncates n toward zero and floors negative counts at zero,
// matching Python's "str * int" semantics the reference evaluator inherits.
func repeatCount(n Number) int {
	var count int64
	if n.IsInt {
		count = n.Int
	} else {
		count = int64(n.Float)
	}
	if count < 0 {
		return 0
	}
	return int(count)
}

func numberArithmetic(op string, left, right Number) (Value, error) {
	switch op {
	case "+":
		if left.IsInt && right.IsInt {
			return IntValue(left.Int + right.Int), nil
		}
		return FloatValue(left.AsFloat() + right.AsFloat()), nil
	case "-":
		if left.IsInt && right.IsInt {
			return IntValue(left.Int - right.Int), nil
		}
		return FloatValue(left.AsFloat() - right.AsFloat()), nil
	case "*":
		if left.IsInt && right.IsInt {
			return IntValue(left.Int * right.Int), nil
		}
		return FloatValue(left.AsFloat() * right.AsFloat()), nil
	case "/":
		if right.AsFloat() == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return FloatValue(left.AsFloat() / right.AsFloat()), nil
	default:
		return nil, fmt.Errorf("internal error: unhandled arithmetic operator %q", op)
	}
}

func evalComparison(op string, left, right Value) (Value, error) {
	if lNum, ok := left.(Number); ok {
		if rNum, ok := right.(Number); ok {
			return Bool{Value: compareNumbers(op, lNum, rNum)}, nil
		}
		return nil, illegalTypes(op, left, right)
	}
	if lStr, ok := left.(String); ok {
		if rStr, ok := right.(String); ok {
			return Bool{Value: compareStrings(op, lStr.Value, rStr.Value)}, nil
		}
		return nil, illegalTypes(op, left, right)
	}
	return nil, illegalTypes(op, left, right)
}

func compareNumbers(op string, a, b Number) bool {
	if a.IsInt && b.IsInt {
		switch op {
		case "<":
			return a.Int < b.Int
		case ">":
			return a.Int > b.Int
		case "<=":
			return a.Int <= b.Int
		case ">=":
			return a.Int >= b.Int
		}
	}
	af, bf := a.AsFloat(), b.AsFloat()
	switch op {
	case "<":
		return af < bf
	case ">":
		return af > bf
	case "<=":
		return af <= bf
	case ">=":
		return af >= bf
	}
	return false
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

// valuesEqual implements structural equality across every value kind;
// mismatched types compare unequal rather than failing.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if av.IsInt && bv.IsInt {
			return av.Int == bv.Int
		}
		return av.AsFloat() == bv.AsFloat()
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Null:
		_, ok := b.(Null)
		return ok
	case Array:
		bv, ok := b.(Array)
		if !ok || len(*av.Items) != len(*bv.Items) {
			return false
		}
		for i := range *av.Items {
			if !valuesEqual((*av.Items)[i], (*bv.Items)[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av.Keys()) != len(bv.Keys()) {
			return false
		}
		for _, k := range av.Keys() {
			av2, _ := av.Get(k)
			bv2, ok := bv.Get(k)
			if !ok || !valuesEqual(av2, bv2) {
				return false
			}
		}
		return true
	case Closure:
		bv, ok := b.(Closure)
		return ok && av.Literal == bv.Literal
	case Builtin:
		bv, ok := b.(Builtin)
		return ok && av.Name == bv.Name
	default:
		return false
	}
}

// evalComplexRead reads base[index] for either a bracketed or dotted access.
func evalComplexRead(n *ast.ComplexExpression, env *Environment, c ctx) (Value, error) {
	base, err := evalExpr(n.Base, env, c)
	if err != nil {
		return nil, err
	}
	index, err := resolveIndex(n, env, c)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case Array:
		idx, ok := indexAsInt(index)
		if !ok {
			return nil, fmt.Errorf("array index must be an integer, got %s", index.Type())
		}
		if idx < 0 || idx >= len(*b.Items) {
			return nil, fmt.Errorf("array index out of range: %d", idx)
		}
		return (*b.Items)[idx], nil
	case Object:
		key, ok := index.(String)
		if !ok {
			return nil, fmt.Errorf("object index must be a string, got %s", index.Type())
		}
		v, ok := b.Get(key.Value)
		if !ok {
			return Null{}, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("cannot index into a %s", base.Type())
	}
}

// resolveIndex decides the index value without re-quoting: a dotted
// access's synthesized string literal is used directly as the literal
// index, while a bracketed index expression is fully evaluated.
func resolveIndex(n *ast.ComplexExpression, env *Environment, c ctx) (Value, error) {
	if n.DotForm {
		lit := n.Index.(*ast.StringLiteral)
		return String{Value: lit.Value}, nil
	}
	return evalExpr(n.Index, env, c)
}

func indexAsInt(v Value) (int, bool) {
	num, ok := v.(Number)
	if !ok {
		return 0, false
	}
	if num.IsInt {
		return int(num.Int), true
	}
	if num.Float != float64(int64(num.Float)) {
		return 0, false
	}
	return int(num.Float), true
}

// evalCall evaluates the callee and arguments left-to-right, dispatches
// builtins by name, and otherwise binds a fresh call frame whose parent is
// the caller's environment (dynamic scoping), positionally binding declared
// parameters and discarding or leaving unbound any mismatched arity.
func evalCall(n *ast.CallExpression, env *Environment, c ctx) (Value, error) {
	fn, err := evalExpr(n.Function, env, c)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := evalExpr(a, env, c)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch callee := fn.(type) {
	case Builtin:
		return callee.Fn(args)
	case Closure:
		callEnv := NewChildEnvironment(env)
		for i, param := range callee.Literal.Parameters {
			if i >= len(args) {
				break
			}
			callEnv.Set(param.Value, args[i])
		}
		v, sig, err := evalBlock(callee.Literal.Body, callEnv, ctx{out: c.out})
		if err != nil {
			return nil, err
		}
		switch sig {
		case signalReturn:
			return v, nil
		case signalExit:
			return nil, &exitSignalError{value: v}
		default:
			return Null{}, nil
		}
	default:
		return nil, fmt.Errorf("cannot call a %s", fn.Type())
	}
}

// exitSignalError carries an in-flight exit signal back up through the
// plain-error-returning evalExpr chain until it reaches Eval, which is the
// only place signals are otherwise threaded explicitly; exit is the one
// signal that must cross a function-call return boundary.
type exitSignalError struct {
	value Value
}

func (e *exitSignalError) Error() string { return "exit" }

// evalAssign implements both the top-level assignment statement and nested
// assignment-as-expression ("a = b = 4").
func evalAssign(n *ast.AssignStatement, env *Environment, c ctx) (Value, error) {
	value, err := evalExpr(n.Value, env, c)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *ast.Identifier:
		env.Set(target.Value, value)
		return value, nil
	case *ast.ComplexExpression:
		base, err := evalExpr(target.Base, env, c)
		if err != nil {
			return nil, err
		}
		index, err := resolveIndex(target, env, c)
		if err != nil {
			return nil, err
		}
		switch b := base.(type) {
		case Array:
			idx, ok := indexAsInt(index)
			if !ok {
				return nil, fmt.Errorf("array index must be an integer, got %s", index.Type())
			}
			if idx < 0 || idx >= len(*b.Items) {
				return nil, fmt.Errorf("array index out of range: %d", idx)
			}
			(*b.Items)[idx] = value
			return value, nil
		case Object:
			key, ok := index.(String)
			if !ok {
				return nil, fmt.Errorf("object index must be a string, got %s", index.Type())
			}
			b.Set(key.Value, value)
			return value, nil
		default:
			return nil, fmt.Errorf("cannot assign into a %s", base.Type())
		}
	default:
		return nil, fmt.Errorf("invalid assignment target: %T", n.Target)
	}
}

