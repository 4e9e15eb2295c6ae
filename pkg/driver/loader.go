package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/lexer"
	"dadalang/interpreter-go/pkg/parser"
)

// Program is a source file carried through tokenizing and parsing.
type Program struct {
	Path   string
	Source string
	Tokens []lexer.Token
	Tree   *ast.Program
}

// SourceError attaches the file path to a lexer or parser error.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s:%s", e.Path, e.Err.Error())
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReadSource reads and tokenizes path without parsing it.
func ReadSource(path string) (*Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	prog := &Program{Path: path, Source: string(data)}
	tokens, err := lexer.Tokenize(prog.Source)
	if err != nil {
		return prog, &SourceError{Path: path, Err: err}
	}
	prog.Tokens = tokens
	return prog, nil
}

// LoadProgram reads, tokenizes and parses path.
func LoadProgram(path string) (*Program, error) {
	prog, err := ReadSource(path)
	if err != nil {
		return prog, err
	}
	tree, err := parser.Parse(prog.Tokens)
	if err != nil {
		return prog, &SourceError{Path: path, Err: err}
	}
	prog.Tree = tree
	return prog, nil
}
