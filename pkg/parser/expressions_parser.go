package parser

import (
	"slices"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/lexer"
)

// Binary precedence levels, lowest first. Every level is left-associative.
var binaryLevels = [][]lexer.Kind{
	{lexer.Equal, lexer.NotEqual},
	{lexer.Less, lexer.Greater, lexer.LessEq, lexer.GreaterEq},
	{lexer.Plus, lexer.Minus},
	{lexer.Star, lexer.Slash},
}

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0)
}

func (p *parser) parseBinary(level int) (ast.Expression, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for slices.Contains(binaryLevels[level], p.peek().Kind) {
		op := p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = withSpan(ast.NewBinaryExpression(op.Text, left, right), op)
	}
	return left, nil
}

// parseUnary desugars `-x` into `0 - x`.
func (p *parser) parseUnary() (ast.Expression, error) {
	if !p.at(lexer.Minus) {
		return p.parsePrimary()
	}
	op := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	zero := withSpan(ast.NewNumberLiteral(0), op)
	return withSpan(ast.NewBinaryExpression("-", zero, operand), op), nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		return withSpan(ast.NewNumberLiteral(tok.Number), tok), nil
	case lexer.String:
		p.advance()
		return withSpan(ast.NewStringLiteral(tok.Text), tok), nil
	case lexer.Identifier:
		if p.peekAt(1).Kind == lexer.LParen {
			return p.parseCall()
		}
		p.advance()
		return withSpan(ast.NewIdentifier(tok.Text), tok), nil
	case lexer.LParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("expression", "")
	}
}
