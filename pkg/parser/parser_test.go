package parser_test

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/lexer"
	"dadalang/interpreter-go/pkg/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}
	return prog
}

func program(body string) string {
	return "nomoshkar dada\n" + body + "\njachchhi dada"
}

func expectParseError(t *testing.T, src string) *parser.Error {
	t.Helper()
	_, err := parser.ParseSource(src)
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %v", err)
	}
	return perr
}

func TestParseHelloWorld(t *testing.T) {
	prog := mustParse(t, program(`bolo dada "Hello, world!";`))
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	print, ok := prog.Body[0].(*ast.PrintStatement)
	if !ok {
		t.Fatalf("expected PrintStatement, got %T", prog.Body[0])
	}
	lit, ok := print.Expression.(*ast.StringLiteral)
	if !ok || lit.Value != "Hello, world!" {
		t.Fatalf("unexpected expression %#v", print.Expression)
	}
	if got := print.Span().Start; got.Line != 2 || got.Column != 1 {
		t.Fatalf("unexpected span %+v", got)
	}
}

func TestParseTopLevelStatementsInOrder(t *testing.T) {
	prog := mustParse(t, program(`
dada ei je x = 1;
x = x + 1;
porashona dada name;
jog(1, 2);
dada kaj jog(a, b) { phiriye dao a + b; }
jodi dada (x > 1) { bolo dada x; }
jotokhon dada (x < 3) { x = x + 1; }
joto bar dada (dada ei je i = 0; i < 2; i = i + 1;) { bolo dada i; }
phiriye dao 0;
`))
	want := []ast.NodeType{
		ast.NodeVariableDeclaration,
		ast.NodeVariableDeclaration,
		ast.NodeInputStatement,
		ast.NodeFunctionCall,
		ast.NodeFunctionDeclaration,
		ast.NodeIfStatement,
		ast.NodeWhileStatement,
		ast.NodeForStatement,
		ast.NodeReturnStatement,
	}
	if len(prog.Body) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(prog.Body))
	}
	for i, stmt := range prog.Body {
		if stmt.NodeType() != want[i] {
			t.Fatalf("statement %d: got %s, want %s", i, stmt.NodeType(), want[i])
		}
	}
	decl := prog.Body[0].(*ast.VariableDeclaration)
	assign := prog.Body[1].(*ast.VariableDeclaration)
	if !decl.Declared || assign.Declared {
		t.Fatalf("declared flags wrong: %v %v", decl.Declared, assign.Declared)
	}
	fn := prog.Body[4].(*ast.FunctionDeclaration)
	if fn.Name != "jog" || !reflect.DeepEqual(fn.Params, []string{"a", "b"}) || len(fn.Body) != 1 {
		t.Fatalf("unexpected function %#v", fn)
	}
}

func TestParseElseIfChain(t *testing.T) {
	prog := mustParse(t, program(`
jodi dada (x > 10) {
  bolo dada "Big!";
} nahole jodi dada (x > 5) {
  bolo dada "Medium!";
} nahole jodi dada (x > 1) {
  bolo dada "Small!";
}
`))
	stmt, ok := prog.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", prog.Body[0])
	}
	if len(stmt.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(stmt.Branches))
	}
	for i, br := range stmt.Branches {
		if br.Condition == nil {
			t.Fatalf("branch %d has no condition", i)
		}
	}
}

func TestParseElseBranchHasNoCondition(t *testing.T) {
	prog := mustParse(t, program(`jodi dada (x) { bolo dada 1; } nahole dada { bolo dada 2; }`))
	stmt := prog.Body[0].(*ast.IfStatement)
	if len(stmt.Branches) != 2 || stmt.Branches[1].Condition != nil {
		t.Fatalf("unexpected branches %#v", stmt.Branches)
	}
}

func TestParseElseWithoutIf(t *testing.T) {
	perr := expectParseError(t, program(`nahole dada { bolo dada 1; }`))
	if perr.Expected != "statement" || perr.Found.Kind != lexer.Else {
		t.Fatalf("unexpected error %+v", perr)
	}
	if !strings.Contains(perr.Error(), "else without if") {
		t.Fatalf("unexpected message %q", perr.Error())
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, program(`bolo dada 1 + 2 * 3 == 7;`))
	expr := prog.Body[0].(*ast.PrintStatement).Expression
	want := ast.Bin("==",
		ast.Bin("+", ast.Num(1), ast.Bin("*", ast.Num(2), ast.Num(3))),
		ast.Num(7),
	)
	if got := shape(expr); got != shape(want) {
		t.Fatalf("got %s, want %s", got, shape(want))
	}
}

func TestParseLeftAssociative(t *testing.T) {
	prog := mustParse(t, program(`bolo dada 10 - 4 - 3;`))
	expr := prog.Body[0].(*ast.PrintStatement).Expression
	if got, want := shape(expr), "((10 - 4) - 3)"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseUnaryMinusDesugars(t *testing.T) {
	prog := mustParse(t, program(`bolo dada -x * 2;`))
	expr := prog.Body[0].(*ast.PrintStatement).Expression
	if got, want := shape(expr), "((0 - x) * 2)"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseParenthesesAndCalls(t *testing.T) {
	prog := mustParse(t, program(`bolo dada (1 + jog(2, x)) * 3;`))
	expr := prog.Body[0].(*ast.PrintStatement).Expression
	if got, want := shape(expr), "((1 + jog(2, x)) * 3)"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseForLoopIncrementSemicolonOptional(t *testing.T) {
	with := mustParse(t, program(`joto bar dada (dada ei je i = 0; i < 5; i = i + 1;) { bolo dada i; }`))
	without := mustParse(t, program(`joto bar dada (dada ei je i = 0; i < 5; i = i + 1) { bolo dada i; }`))
	for _, prog := range []*ast.Program{with, without} {
		loop, ok := prog.Body[0].(*ast.ForStatement)
		if !ok {
			t.Fatalf("expected ForStatement, got %T", prog.Body[0])
		}
		if loop.Init.Identifier != "i" || loop.Increment.Identifier != "i" {
			t.Fatalf("unexpected loop header %#v", loop)
		}
		if shape(loop.Condition) != "(i < 5)" {
			t.Fatalf("unexpected condition %s", shape(loop.Condition))
		}
	}
}

func TestParseEmptyFunctionParams(t *testing.T) {
	prog := mustParse(t, program(`dada kaj hello() { bolo dada "hi"; } hello();`))
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	if len(fn.Params) != 0 {
		t.Fatalf("expected no params, got %v", fn.Params)
	}
	call := prog.Body[1].(*ast.FunctionCall)
	if call.Name != "hello" || len(call.Args) != 0 {
		t.Fatalf("unexpected call %#v", call)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	tokens, err := lexer.Tokenize(program(`
dada kaj jog(x, y) { phiriye dao x + y; }
bolo dada jog(2, 3);
`))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	first, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing the same tokens twice produced different trees")
	}
}

func TestParseRequiresProgramBrackets(t *testing.T) {
	perr := expectParseError(t, `bolo dada 1; jachchhi dada`)
	if perr.Expected != "NOMOSHKAR_DADA" || perr.Found.Kind != lexer.Print {
		t.Fatalf("unexpected error %+v", perr)
	}

	perr = expectParseError(t, "nomoshkar dada\nbolo dada 1;")
	if perr.Expected != "JACHCHHI_DADA" || perr.Found.Kind != lexer.EOF {
		t.Fatalf("unexpected error %+v", perr)
	}
	if !strings.Contains(perr.Error(), "found end of input") {
		t.Fatalf("unexpected message %q", perr.Error())
	}

	perr = expectParseError(t, "nomoshkar dada jachchhi dada bolo dada 1;")
	if perr.Expected != "EOF" {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	perr := expectParseError(t, program("bolo dada 1\nbolo dada 2;"))
	if perr.Expected != "SEMICOLON" || perr.Found.Kind != lexer.Print {
		t.Fatalf("unexpected error %+v", perr)
	}
	if got, want := perr.Error(), "3:1: expected SEMICOLON, found BOLO_DADA"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestParseUnparenthesizedCondition(t *testing.T) {
	perr := expectParseError(t, program(`jodi dada x > 1 { bolo dada x; }`))
	if perr.Expected != "LPAREN" {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestParseBadStatementStart(t *testing.T) {
	perr := expectParseError(t, program(`42;`))
	if perr.Expected != "statement" || perr.Found.Kind != lexer.Number {
		t.Fatalf("unexpected error %+v", perr)
	}

	perr = expectParseError(t, program(`x + 1;`))
	if perr.Expected != "EQUAL or LPAREN" || perr.Found.Kind != lexer.Plus {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestParseMissingExpression(t *testing.T) {
	perr := expectParseError(t, program(`dada ei je x = ;`))
	if perr.Expected != "expression" || perr.Found.Kind != lexer.Semicolon {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	perr := expectParseError(t, "nomoshkar dada jotokhon dada (1) { bolo dada 1;")
	if perr.Expected != "RBRACE" || perr.Found.Kind != lexer.EOF {
		t.Fatalf("unexpected error %+v", perr)
	}
}

func TestParseSourcePropagatesLexErrors(t *testing.T) {
	_, err := parser.ParseSource(program(`bolo dada "open;`))
	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected lexer error, got %v", err)
	}
}

func shape(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return strconv.FormatFloat(e.Value, 'f', -1, 64)
	case *ast.StringLiteral:
		return `"` + e.Value + `"`
	case *ast.Identifier:
		return e.Name
	case *ast.BinaryExpression:
		return "(" + shape(e.Left) + " " + e.Operator + " " + shape(e.Right) + ")"
	case *ast.FunctionCall:
		parts := make([]string, len(e.Args))
		for i, arg := range e.Args {
			parts[i] = shape(arg)
		}
		return e.Name + "(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}
