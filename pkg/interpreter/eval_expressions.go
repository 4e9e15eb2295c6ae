package interpreter

import (
	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(state *evalState, node ast.Expression) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.Identifier:
		val, ok := i.scopes.Lookup(n.Name)
		if !ok {
			return nil, runtimeErrorAt(n, "unknown variable", n.Name)
		}
		return val, nil
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(state, n)
	case *ast.FunctionCall:
		return i.evaluateCall(state, n)
	case nil:
		return nil, &RuntimeError{Message: "unsupported node: nil expression"}
	default:
		return nil, runtimeErrorAt(n, "unsupported node", string(n.NodeType()))
	}
}

// evaluateCall evaluates arguments left to right in the caller's scope
// before entering the function.
func (i *Interpreter) evaluateCall(state *evalState, call *ast.FunctionCall) (runtime.Value, error) {
	if _, ok := i.functions[call.Name]; !ok {
		return nil, runtimeErrorAt(call, "unknown function", call.Name)
	}
	args := make([]runtime.Value, 0, len(call.Args))
	for _, argExpr := range call.Args {
		val, err := i.evaluateExpression(state, argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.callFunction(state, call, call.Name, args)
}

func (i *Interpreter) evaluateBinaryExpression(state *evalState, expr *ast.BinaryExpression) (runtime.Value, error) {
	left, err := i.evaluateExpression(state, expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(state, expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case "+":
		if left.Kind() == runtime.KindString || right.Kind() == runtime.KindString {
			return runtime.StringValue{Val: runtime.FormatValue(left) + runtime.FormatValue(right)}, nil
		}
		return arithmetic(expr, left, right, func(a, b float64) float64 { return a + b })
	case "-":
		return arithmetic(expr, left, right, func(a, b float64) float64 { return a - b })
	case "*":
		return arithmetic(expr, left, right, func(a, b float64) float64 { return a * b })
	case "/":
		if r, ok := runtime.ToNumber(right); ok && r == 0 {
			if _, lok := runtime.ToNumber(left); lok {
				return nil, runtimeErrorAt(expr, "division by zero", "")
			}
		}
		return arithmetic(expr, left, right, func(a, b float64) float64 { return a / b })
	case "<", ">", "<=", ">=":
		return compare(expr, left, right)
	case "==":
		return runtime.BoolValue{Val: runtime.LooseEqual(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.LooseEqual(left, right)}, nil
	default:
		return nil, runtimeErrorAt(expr, "unsupported operator", expr.Operator)
	}
}

func arithmetic(expr *ast.BinaryExpression, left, right runtime.Value, op func(a, b float64) float64) (runtime.Value, error) {
	a, ok := runtime.ToNumber(left)
	if !ok {
		return nil, runtimeErrorAt(expr, "not a number", runtime.FormatValue(left))
	}
	b, ok := runtime.ToNumber(right)
	if !ok {
		return nil, runtimeErrorAt(expr, "not a number", runtime.FormatValue(right))
	}
	return runtime.NumberValue{Val: op(a, b)}, nil
}

// compare orders two strings lexicographically and everything else
// numerically.
func compare(expr *ast.BinaryExpression, left, right runtime.Value) (runtime.Value, error) {
	var cmp int
	ls, lok := left.(runtime.StringValue)
	rs, rok := right.(runtime.StringValue)
	if lok && rok {
		switch {
		case ls.Val < rs.Val:
			cmp = -1
		case ls.Val > rs.Val:
			cmp = 1
		}
	} else {
		a, ok := runtime.ToNumber(left)
		if !ok {
			return nil, runtimeErrorAt(expr, "not a number", runtime.FormatValue(left))
		}
		b, ok := runtime.ToNumber(right)
		if !ok {
			return nil, runtimeErrorAt(expr, "not a number", runtime.FormatValue(right))
		}
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	}

	var result bool
	switch expr.Operator {
	case "<":
		result = cmp < 0
	case ">":
		result = cmp > 0
	case "<=":
		result = cmp <= 0
	case ">=":
		result = cmp >= 0
	}
	return runtime.BoolValue{Val: result}, nil
}
