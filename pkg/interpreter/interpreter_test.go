package interpreter

import (
	"context"
	"errors"
	"testing"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/runtime"
)

type outputCollector struct {
	lines []string
}

func (c *outputCollector) emit(text string) {
	c.lines = append(c.lines, text)
}

func runTree(t *testing.T, interp *Interpreter, program *ast.Program) []string {
	t.Helper()
	out := &outputCollector{}
	if err := interp.Run(context.Background(), program, out.emit, nil); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out.lines
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines %q, got %d lines %q", len(want), want, len(got), got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("line %d: expected %q, got %q (all output %q)", idx, want[idx], got[idx], got)
		}
	}
}

func TestPrintStringLiteral(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(ast.Print(ast.Str("Hello, world!"))))
	expectLines(t, lines, "Hello, world!")
}

func TestDeclarationAndArithmetic(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Decl("a", ast.Num(7)),
		ast.Decl("b", ast.Num(-3)),
		ast.Decl("x", ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		ast.Print(ast.ID("x")),
		ast.Print(ast.Bin("*", ast.ID("a"), ast.ID("b"))),
		ast.Print(ast.Bin("/", ast.ID("a"), ast.Num(2))),
	))
	expectLines(t, lines, "4", "-21", "3.5")
	if v, ok := interp.Scopes().Lookup("x"); !ok || v.(runtime.NumberValue).Val != 4 {
		t.Fatalf("expected global x=4, got %#v", v)
	}
}

func TestPlusConcatenatesWhenEitherSideIsString(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Print(ast.Bin("+", ast.Str("n="), ast.Num(5))),
		ast.Print(ast.Bin("+", ast.Num(1), ast.Str("2"))),
	))
	expectLines(t, lines, "n=5", "12")
}

func TestComparisonAndEquality(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Print(ast.Bin("<", ast.Num(2), ast.Num(10))),
		ast.Print(ast.Bin("<", ast.Str("2"), ast.Str("10"))),
		ast.Print(ast.Bin(">=", ast.Str("10"), ast.Num(9))),
		ast.Print(ast.Bin("==", ast.Num(5), ast.Str("5"))),
		ast.Print(ast.Bin("!=", ast.Num(5), ast.Num(5))),
	))
	expectLines(t, lines, "true", "false", "true", "true", "false")
}

func TestIfChainTakesFirstTruthyBranch(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Decl("x", ast.Num(2)),
		ast.If(
			ast.Branch(ast.Bin("==", ast.ID("x"), ast.Num(1)), ast.Print(ast.Str("one"))),
			ast.Branch(ast.Bin("==", ast.ID("x"), ast.Num(2)), ast.Print(ast.Str("two"))),
			ast.Branch(ast.Bin(">", ast.ID("x"), ast.Num(0)), ast.Print(ast.Str("positive"))),
			ast.Branch(nil, ast.Print(ast.Str("other"))),
		),
		ast.If(
			ast.Branch(ast.Bin(">", ast.ID("x"), ast.Num(5)), ast.Print(ast.Str("big"))),
			ast.Branch(nil, ast.Print(ast.Str("small"))),
		),
	))
	expectLines(t, lines, "two", "small")
}

func TestWhileLoopStopsWhenConditionFails(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Decl("x", ast.Num(0)),
		ast.While(ast.Bin("<", ast.ID("x"), ast.Num(5)),
			ast.Print(ast.ID("x")),
			ast.Assign("x", ast.Bin("+", ast.ID("x"), ast.Num(1))),
		),
	))
	expectLines(t, lines, "0", "1", "2", "3", "4")
}

func TestForLoopRunsIncrementAfterBody(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.For(
			ast.Decl("i", ast.Num(0)),
			ast.Bin("<", ast.ID("i"), ast.Num(3)),
			ast.Assign("i", ast.Bin("+", ast.ID("i"), ast.Num(1))),
			ast.Print(ast.ID("i")),
		),
		ast.Print(ast.ID("i")),
	))
	expectLines(t, lines, "0", "1", "2", "3")
}

func TestFunctionLocalsDoNotLeak(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Decl("x", ast.Num(10)),
		ast.Fn("shadow", nil,
			ast.Decl("x", ast.Num(99)),
			ast.Print(ast.ID("x")),
		),
		ast.Fn("reassign", nil,
			ast.Assign("x", ast.Num(5)),
		),
		ast.Call("shadow"),
		ast.Call("reassign"),
		ast.Print(ast.ID("x")),
	))
	expectLines(t, lines, "99", "10")
	if interp.Scopes().Depth() != 1 {
		t.Fatalf("expected only the global scope after calls, got depth %d", interp.Scopes().Depth())
	}
}

func TestFunctionReadsGlobals(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Decl("greeting", ast.Str("hi")),
		ast.Fn("say", []string{"who"},
			ast.Print(ast.Bin("+", ast.Bin("+", ast.ID("greeting"), ast.Str(" ")), ast.ID("who"))),
		),
		ast.Call("say", ast.Str("dada")),
	))
	expectLines(t, lines, "hi dada")
}

func TestReturnUnwindsNestedBlocks(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Fn("firstOver", []string{"limit"},
			ast.Decl("i", ast.Num(0)),
			ast.While(ast.Num(1),
				ast.If(ast.Branch(ast.Bin(">", ast.ID("i"), ast.ID("limit")), ast.Ret(ast.ID("i")))),
				ast.Assign("i", ast.Bin("+", ast.ID("i"), ast.Num(1))),
			),
			ast.Print(ast.Str("unreachable")),
		),
		ast.Print(ast.Call("firstOver", ast.Num(3))),
	))
	expectLines(t, lines, "4")
}

func TestMissingArgumentsAreUndefinedAndExtrasDropped(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Fn("pair", []string{"a", "b"},
			ast.Print(ast.ID("a")),
			ast.Print(ast.ID("b")),
		),
		ast.Call("pair", ast.Num(1)),
		ast.Call("pair", ast.Num(1), ast.Num(2), ast.Num(3)),
		ast.Print(ast.Call("pair", ast.Num(0), ast.Num(0))),
	))
	expectLines(t, lines, "1", "undefined", "1", "2", "0", "0", "undefined")
}

func TestTopLevelReturnStopsProgram(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Print(ast.Num(1)),
		ast.Ret(ast.Num(0)),
		ast.Print(ast.Num(2)),
	))
	expectLines(t, lines, "1")
}

func TestRedeclaredFunctionReplacesEarlier(t *testing.T) {
	interp := New()
	lines := runTree(t, interp, ast.Prog(
		ast.Fn("f", nil, ast.Ret(ast.Num(1))),
		ast.Print(ast.Call("f")),
		ast.Fn("f", nil, ast.Ret(ast.Num(2))),
		ast.Print(ast.Call("f")),
	))
	expectLines(t, lines, "1", "2")
}

func expectRuntimeError(t *testing.T, err error, message, name string) *RuntimeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected runtime error %q", message)
	}
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if rtErr.Message != message || rtErr.Name != name {
		t.Fatalf("expected %q %q, got %q %q", message, name, rtErr.Message, rtErr.Name)
	}
	return rtErr
}

func TestUnknownVariable(t *testing.T) {
	interp := New()
	out := &outputCollector{}
	err := interp.Run(context.Background(), ast.Prog(
		ast.Print(ast.Str("before")),
		ast.Print(ast.ID("z")),
		ast.Print(ast.Str("after")),
	), out.emit, nil)
	expectRuntimeError(t, err, "unknown variable", "z")
	expectLines(t, out.lines, "before")
}

func TestUnknownFunction(t *testing.T) {
	err := New().Run(context.Background(), ast.Prog(ast.Call("missing")), nil, nil)
	expectRuntimeError(t, err, "unknown function", "missing")
}

func TestArgumentsOfUnknownFunctionAreNotEvaluated(t *testing.T) {
	err := New().Run(context.Background(), ast.Prog(ast.Call("missing", ast.ID("nope"))), nil, nil)
	expectRuntimeError(t, err, "unknown function", "missing")
}

func TestArithmeticErrors(t *testing.T) {
	err := New().Run(context.Background(), ast.Prog(ast.Print(ast.Bin("/", ast.Num(1), ast.Num(0)))), nil, nil)
	expectRuntimeError(t, err, "division by zero", "")

	err = New().Run(context.Background(), ast.Prog(ast.Print(ast.Bin("-", ast.Str("abc"), ast.Num(1)))), nil, nil)
	expectRuntimeError(t, err, "not a number", "abc")

	err = New().Run(context.Background(), ast.Prog(ast.Print(ast.Bin("%", ast.Num(1), ast.Num(1)))), nil, nil)
	expectRuntimeError(t, err, "unsupported operator", "%")
}

func TestRuntimeErrorCarriesPosition(t *testing.T) {
	ident := ast.ID("z")
	ast.SetSpan(ident, ast.Span{Start: ast.Position{Line: 3, Column: 11}})
	err := New().Run(context.Background(), ast.Prog(ast.Print(ident)), nil, nil)
	rtErr := expectRuntimeError(t, err, "unknown variable", "z")
	if got := rtErr.Error(); got != `3:11: unknown variable "z"` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCallDepthExceeded(t *testing.T) {
	interp := New(WithMaxCallDepth(25))
	err := interp.Run(context.Background(), ast.Prog(
		ast.Fn("down", []string{"n"}, ast.Ret(ast.Call("down", ast.Bin("+", ast.ID("n"), ast.Num(1))))),
		ast.Call("down", ast.Num(0)),
	), nil, nil)
	expectRuntimeError(t, err, "call depth exceeded", "down")
	if interp.Scopes().Depth() != 1 {
		t.Fatalf("expected scopes to unwind after failure, got depth %d", interp.Scopes().Depth())
	}
}

func TestInputBindsStringAndUsesPrompt(t *testing.T) {
	var prompts []string
	input := func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "42", nil
	}
	out := &outputCollector{}
	err := New().Run(context.Background(), ast.Prog(
		ast.Input("age"),
		ast.Print(ast.Bin("+", ast.ID("age"), ast.Num(1))),
		ast.Print(ast.Bin("-", ast.ID("age"), ast.Num(1))),
	), out.emit, input)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(prompts) != 1 || prompts[0] != "Enter value for age:" {
		t.Fatalf("unexpected prompts %q", prompts)
	}
	expectLines(t, out.lines, "421", "41")
}

func TestInputErrorIsWrapped(t *testing.T) {
	sentinel := errors.New("host closed")
	input := func(context.Context, string) (string, error) { return "", sentinel }
	err := New().Run(context.Background(), ast.Prog(ast.Input("x")), nil, input)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestQueueInputFallsBackToEmpty(t *testing.T) {
	out := &outputCollector{}
	err := New().Run(context.Background(), ast.Prog(
		ast.Input("a"),
		ast.Input("b"),
		ast.Print(ast.Bin("+", ast.Bin("+", ast.ID("a"), ast.Str("|")), ast.ID("b"))),
	), out.emit, QueueInput("first"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	expectLines(t, out.lines, "first|")
}

func TestCancelledContextStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	emit := func(string) {
		count++
		if count == 3 {
			cancel()
		}
	}
	err := New().Run(ctx, ast.Prog(
		ast.While(ast.Num(1), ast.Print(ast.Str("tick"))),
	), emit, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if count != 3 {
		t.Fatalf("expected loop to stop after 3 ticks, got %d", count)
	}
}

func TestRunResetsStateBetweenRuns(t *testing.T) {
	interp := New()
	runTree(t, interp, ast.Prog(ast.Decl("x", ast.Num(1)), ast.Fn("f", nil)))
	if _, ok := interp.Function("f"); !ok {
		t.Fatalf("expected f to be declared")
	}
	err := interp.Run(context.Background(), ast.Prog(ast.Print(ast.ID("x"))), nil, nil)
	expectRuntimeError(t, err, "unknown variable", "x")
	if _, ok := interp.Function("f"); ok {
		t.Fatalf("expected function table to be reset")
	}
}

func TestCallFunctionAfterRun(t *testing.T) {
	interp := New()
	runTree(t, interp, ast.Prog(
		ast.Fn("jog", []string{"x", "y"}, ast.Ret(ast.Bin("+", ast.ID("x"), ast.ID("y")))),
	))
	val, err := interp.CallFunction(context.Background(), "jog", []runtime.Value{
		runtime.NumberValue{Val: 2},
		runtime.NumberValue{Val: 3},
	}, nil, nil)
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if got := runtime.FormatValue(val); got != "5" {
		t.Fatalf("expected 5, got %q", got)
	}
}

func TestNilProgram(t *testing.T) {
	err := New().Run(context.Background(), nil, nil, nil)
	expectRuntimeError(t, err, "invalid program: nil tree", "")
}
