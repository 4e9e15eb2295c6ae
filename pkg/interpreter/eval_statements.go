package interpreter

import (
	"fmt"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/runtime"
)

func (i *Interpreter) execStatement(state *evalState, node ast.Statement) (flow, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return normal, i.execAssignment(state, n)
	case *ast.PrintStatement:
		val, err := i.evaluateExpression(state, n.Expression)
		if err != nil {
			return normal, err
		}
		state.emit(runtime.FormatValue(val))
		return normal, nil
	case *ast.InputStatement:
		return normal, i.execInput(state, n)
	case *ast.IfStatement:
		return i.execIf(state, n)
	case *ast.WhileStatement:
		return i.execWhile(state, n)
	case *ast.ForStatement:
		return i.execFor(state, n)
	case *ast.FunctionDeclaration:
		i.functions[n.Name] = n
		return normal, nil
	case *ast.FunctionCall:
		_, err := i.evaluateCall(state, n)
		return normal, err
	case *ast.ReturnStatement:
		if n.Value == nil {
			return flow{returning: true, value: runtime.UndefinedValue{}}, nil
		}
		val, err := i.evaluateExpression(state, n.Value)
		if err != nil {
			return normal, err
		}
		return flow{returning: true, value: val}, nil
	case nil:
		return normal, &RuntimeError{Message: "unsupported node: nil statement"}
	default:
		return normal, runtimeErrorAt(n, "unsupported node", string(n.NodeType()))
	}
}

// execBlock runs statements in order and stops at the first return.
func (i *Interpreter) execBlock(state *evalState, body []ast.Statement) (flow, error) {
	for _, stmt := range body {
		result, err := i.execStatement(state, stmt)
		if err != nil || result.returning {
			return result, err
		}
	}
	return normal, nil
}

// execAssignment binds in the innermost scope only, so assigning to an outer
// name from inside a call creates a local binding.
func (i *Interpreter) execAssignment(state *evalState, decl *ast.VariableDeclaration) error {
	if decl == nil {
		return &RuntimeError{Message: "unsupported node: nil declaration"}
	}
	val, err := i.evaluateExpression(state, decl.Value)
	if err != nil {
		return err
	}
	i.scopes.Define(decl.Identifier, val)
	return nil
}

func (i *Interpreter) execInput(state *evalState, stmt *ast.InputStatement) error {
	prompt := fmt.Sprintf("Enter value for %s:", stmt.Identifier)
	text, err := state.input(state.ctx, prompt)
	if err != nil {
		return fmt.Errorf("input for %s: %w", stmt.Identifier, err)
	}
	if err := state.ctx.Err(); err != nil {
		return err
	}
	i.scopes.Define(stmt.Identifier, runtime.StringValue{Val: text})
	return nil
}

func (i *Interpreter) execIf(state *evalState, stmt *ast.IfStatement) (flow, error) {
	for _, branch := range stmt.Branches {
		if branch == nil {
			continue
		}
		if branch.Condition != nil {
			cond, err := i.evaluateExpression(state, branch.Condition)
			if err != nil {
				return normal, err
			}
			if !runtime.Truthy(cond) {
				continue
			}
		}
		return i.execBlock(state, branch.Body)
	}
	return normal, nil
}

func (i *Interpreter) execWhile(state *evalState, loop *ast.WhileStatement) (flow, error) {
	for {
		if err := state.ctx.Err(); err != nil {
			return normal, err
		}
		cond, err := i.evaluateExpression(state, loop.Condition)
		if err != nil {
			return normal, err
		}
		if !runtime.Truthy(cond) {
			return normal, nil
		}
		result, err := i.execBlock(state, loop.Body)
		if err != nil || result.returning {
			return result, err
		}
	}
}

func (i *Interpreter) execFor(state *evalState, loop *ast.ForStatement) (flow, error) {
	if err := i.execAssignment(state, loop.Init); err != nil {
		return normal, err
	}
	for {
		if err := state.ctx.Err(); err != nil {
			return normal, err
		}
		cond, err := i.evaluateExpression(state, loop.Condition)
		if err != nil {
			return normal, err
		}
		if !runtime.Truthy(cond) {
			return normal, nil
		}
		result, err := i.execBlock(state, loop.Body)
		if err != nil || result.returning {
			return result, err
		}
		if err := i.execAssignment(state, loop.Increment); err != nil {
			return normal, err
		}
	}
}

// callFunction pushes a scope holding only the parameters, runs the body and
// always pops the scope again. Extra arguments are dropped and missing ones
// are bound to undefined.
func (i *Interpreter) callFunction(state *evalState, site ast.Node, name string, args []runtime.Value) (runtime.Value, error) {
	fn, ok := i.functions[name]
	if !ok {
		return nil, runtimeErrorAt(site, "unknown function", name)
	}
	if state.depth >= i.maxCallDepth {
		return nil, runtimeErrorAt(site, "call depth exceeded", name)
	}
	if err := state.ctx.Err(); err != nil {
		return nil, err
	}

	params := make(map[string]runtime.Value, len(fn.Params))
	for idx, param := range fn.Params {
		if idx < len(args) {
			params[param] = args[idx]
		} else {
			params[param] = runtime.UndefinedValue{}
		}
	}

	i.scopes.Push(params)
	state.depth++
	result, err := i.execBlock(state, fn.Body)
	state.depth--
	if popErr := i.scopes.Pop(); popErr != nil && err == nil {
		err = popErr
	}
	if err != nil {
		return nil, err
	}
	if result.returning {
		return result.value, nil
	}
	return runtime.UndefinedValue{}, nil
}
