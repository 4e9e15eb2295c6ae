// Package parser builds a DadaLang program tree from a token sequence using
// recursive descent with one function per grammar rule.
package parser

import (
	"fmt"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/lexer"
)

// Error reports the first structural mismatch. Expected is a token kind name
// or a grammar rule ("statement", "expression").
type Error struct {
	Expected string
	Found    lexer.Token
	Pos      lexer.Pos
	Detail   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("expected %s, found %s", e.Expected, e.Found.Describe())
	if e.Detail != "" {
		msg = e.Detail + ": " + msg
	}
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

// ParseSource tokenizes and parses src.
func ParseSource(src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse consumes tokens and returns the program. A missing trailing EOF
// token is tolerated.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) peekAt(offset int) lexer.Token {
	i := p.pos + offset
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	var last lexer.Pos
	if n := len(p.tokens); n > 0 {
		last = p.tokens[n-1].Pos
	}
	return lexer.Token{Kind: lexer.EOF, Pos: last}
}

func (p *parser) peek() lexer.Token {
	return p.peekAt(0)
}

func (p *parser) at(kind lexer.Kind) bool {
	return p.peek().Kind == kind
}

func (p *parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorf(kind.String(), "")
	}
	return p.advance(), nil
}

func (p *parser) errorf(expected, detail string) *Error {
	tok := p.peek()
	return &Error{Expected: expected, Found: tok, Pos: tok.Pos, Detail: detail}
}

func spanOf(tok lexer.Token) ast.Span {
	return ast.Span{Start: ast.Position{Line: tok.Pos.Line, Column: tok.Pos.Column}}
}

func withSpan[T ast.Node](node T, tok lexer.Token) T {
	ast.SetSpan(node, spanOf(tok))
	return node
}

// Program := START Statement* END
func (p *parser) parseProgram() (*ast.Program, error) {
	start, err := p.expect(lexer.ProgramStart)
	if err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.at(lexer.ProgramEnd) {
		if p.at(lexer.EOF) {
			return nil, p.errorf(lexer.ProgramEnd.String(), "")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	if !p.at(lexer.EOF) {
		return nil, p.errorf(lexer.EOF.String(), "unexpected input after program end")
	}
	return withSpan(ast.NewProgram(body), start), nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Declare:
		p.advance()
		return p.parseAssignment(tok, true)
	case lexer.Print:
		return p.parsePrint()
	case lexer.Input:
		return p.parseInput()
	case lexer.If:
		return p.parseIf()
	case lexer.ElseIf, lexer.Else:
		return nil, p.errorf("statement", "else without if")
	case lexer.While:
		return p.parseWhile()
	case lexer.For:
		return p.parseFor()
	case lexer.Function:
		return p.parseFunctionDeclaration()
	case lexer.Return:
		return p.parseReturn()
	case lexer.Identifier:
		switch p.peekAt(1).Kind {
		case lexer.Assign:
			return p.parseAssignment(tok, false)
		case lexer.LParen:
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Semicolon); err != nil {
				return nil, err
			}
			return call, nil
		}
		p.advance()
		return nil, p.errorf("EQUAL or LPAREN", fmt.Sprintf("identifier %q starts a statement", tok.Text))
	default:
		return nil, p.errorf("statement", "")
	}
}

// parseAssignment parses `name = expr ;`. For declarations the keyword has
// already been consumed and start points at it.
func (p *parser) parseAssignment(start lexer.Token, declared bool) (*ast.VariableDeclaration, error) {
	name, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return withSpan(ast.NewVariableDeclaration(name.Text, value, declared), start), nil
}

func (p *parser) parsePrint() (ast.Statement, error) {
	start := p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return withSpan(ast.NewPrintStatement(expr), start), nil
}

func (p *parser) parseInput() (ast.Statement, error) {
	start := p.advance()
	name, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return withSpan(ast.NewInputStatement(name.Text), start), nil
}

func (p *parser) parseReturn() (ast.Statement, error) {
	start := p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	return withSpan(ast.NewReturnStatement(value), start), nil
}

// parseCondition parses `( expr )`.
func (p *parser) parseCondition() (ast.Expression, error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseBlock parses `{ Statement* }`.
func (p *parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBrace); err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.at(lexer.RBrace) {
		if p.at(lexer.EOF) {
			return nil, p.errorf(lexer.RBrace.String(), "")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	return body, nil
}

func (p *parser) parseIf() (ast.Statement, error) {
	start := p.peek()
	var branches []*ast.IfBranch
	for len(branches) == 0 || p.at(lexer.ElseIf) {
		head := p.advance()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		branches = append(branches, withSpan(ast.NewIfBranch(cond, body), head))
	}
	if p.at(lexer.Else) {
		head := p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		branches = append(branches, withSpan(ast.NewIfBranch(nil, body), head))
	}
	return withSpan(ast.NewIfStatement(branches), start), nil
}

func (p *parser) parseWhile() (ast.Statement, error) {
	start := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return withSpan(ast.NewWhileStatement(cond, body), start), nil
}

// For := FOR ( Declaration Expression ; Assignment [;] ) Block
func (p *parser) parseFor() (ast.Statement, error) {
	start := p.advance()
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	declTok, err := p.expect(lexer.Declare)
	if err != nil {
		return nil, err
	}
	init, err := p.parseAssignment(declTok, true)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}
	incTok, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return nil, err
	}
	incValue, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Semicolon) {
		p.advance()
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	increment := withSpan(ast.NewVariableDeclaration(incTok.Text, incValue, false), incTok)
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return withSpan(ast.NewForStatement(init, cond, increment, body), start), nil
}

func (p *parser) parseFunctionDeclaration() (ast.Statement, error) {
	start := p.advance()
	name, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	params := make([]string, 0)
	if !p.at(lexer.RParen) {
		for {
			param, err := p.expect(lexer.Identifier)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Text)
			if !p.at(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return withSpan(ast.NewFunctionDeclaration(name.Text, params, body), start), nil
}

// parseCall parses `name ( args )` without a terminator.
func (p *parser) parseCall() (*ast.FunctionCall, error) {
	name, err := p.expect(lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	if !p.at(lexer.RParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.at(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return withSpan(ast.NewFunctionCall(name.Text, args), name), nil
}
