package shikigami

import (
	"context"
	"fmt"
)

// Execution carries the bookkeeping of one evaluation run: limits, the call
// stack used for recursion checks and error traces, and the source text for
// code frames.
type Execution struct {
	ctx          context.Context
	source       string
	quota        int
	recursionCap int
	steps        int
	callStack    []callFrame
}

type callFrame struct {
	Function string
	Pos      Position
}

func (e *Engine) newExecution(ctx context.Context, program *Program) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Execution{
		ctx:          ctx,
		source:       program.source,
		quota:        e.config.StepQuota,
		recursionCap: e.config.RecursionLimit,
	}
}

func (exec *Execution) eval(node Node, env *Env) (Value, error) {
	if node == nil {
		return NewNil(), exec.errorAt(ErrUnknownNodeType, Position{}, "unknown node type <nil>")
	}
	if err := exec.step(node.Pos()); err != nil {
		return NewNil(), err
	}

	switch n := node.(type) {
	case *NumberLit:
		return NewNumber(n.Value), nil
	case *StringLit:
		return NewString(n.Value), nil
	case *VarRef:
		val, ok := env.Get(n.Name)
		if !ok {
			return NewNil(), exec.errorAt(ErrUndefinedVariable, n.Pos(), "undefined variable %s", n.Name)
		}
		return val, nil
	case *BinaryExpr:
		return exec.evalBinary(n, env)
	case *Assignment:
		val, err := exec.eval(n.Value, env)
		if err != nil {
			return NewNil(), err
		}
		env.Set(n.Name, val)
		return val, nil
	case *FunctionDef:
		env.Define(&Function{Name: n.Name, Params: n.Params, Body: n.Body, Pos: n.Pos()})
		return NewString(fmt.Sprintf("Function %s defined", n.Name)), nil
	case *FunctionCall:
		return exec.evalCall(n, env)
	default:
		return NewNil(), exec.errorAt(ErrUnknownNodeType, node.Pos(), "unknown node type %T", node)
	}
}

func (exec *Execution) evalBinary(n *BinaryExpr, env *Env) (Value, error) {
	left, err := exec.eval(n.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := exec.eval(n.Right, env)
	if err != nil {
		return NewNil(), err
	}

	if left.Kind() == KindString || right.Kind() == KindString {
		if n.Op != "+" {
			return NewNil(), exec.errorAt(ErrInvalidStringOperator, n.Pos(), "operator %s cannot be applied to strings", n.Op)
		}
		return NewString(left.String() + right.String()), nil
	}
	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return NewNil(), exec.errorAt(ErrTypeMismatch, n.Pos(), "operator %s expects numbers, got %s and %s", n.Op, left.Kind(), right.Kind())
	}

	// + and - always reduce; * keeps a raw operand's form and / is raw.
	a, b := left.Number(), right.Number()
	switch n.Op {
	case "+":
		return NewNumber(a.Add(b, false).Reduced()), nil
	case "-":
		return NewNumber(a.Sub(b, false).Reduced()), nil
	case "*":
		return NewNumber(a.Mul(b, false)), nil
	case "/":
		q, err := a.Div(b, true)
		if err != nil {
			return NewNil(), exec.wrapError(err, n.Pos())
		}
		return NewNumber(q), nil
	case ">":
		return NewBool(a.Greater(b)), nil
	case ">=":
		return NewBool(a.GreaterOrEqual(b)), nil
	case "==":
		return NewBool(a.Equal(b)), nil
	default:
		return NewNil(), exec.errorAt(ErrUnknownOperator, n.Pos(), "unknown operator %s", n.Op)
	}
}

func (exec *Execution) evalCall(n *FunctionCall, env *Env) (Value, error) {
	fn, ok := env.Function(n.Name)
	if !ok {
		return NewNil(), exec.errorAt(ErrUndefinedFunction, n.Pos(), "undefined function %s", n.Name)
	}
	if len(n.Args) != len(fn.Params) {
		return NewNil(), exec.errorAt(ErrArityMismatch, n.Pos(), "%s expects %d argument(s), got %d", n.Name, len(fn.Params), len(n.Args))
	}

	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		val, err := exec.eval(arg, env)
		if err != nil {
			return NewNil(), err
		}
		args[i] = val
	}

	if err := exec.pushFrame(fn.Name, n.Pos()); err != nil {
		return NewNil(), err
	}
	defer exec.popFrame()

	scope := env.callScope()
	for i, param := range fn.Params {
		scope.Set(param, args[i])
	}
	return exec.eval(fn.Body, scope)
}
