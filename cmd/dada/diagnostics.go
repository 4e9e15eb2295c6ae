package main

import (
	"errors"
	"fmt"
	"os"

	"dadalang/interpreter-go/pkg/interpreter"
	"dadalang/interpreter-go/pkg/lexer"
	"dadalang/interpreter-go/pkg/parser"
)

// describeError prefixes err with the stage that produced it. path is used
// for runtime errors, which do not know their file.
func describeError(path string, err error) string {
	var lexErr *lexer.Error
	var parseErr *parser.Error
	var rtErr *interpreter.RuntimeError
	switch {
	case errors.As(err, &lexErr):
		return "lex error: " + err.Error()
	case errors.As(err, &parseErr):
		return "parse error: " + err.Error()
	case errors.As(err, &rtErr):
		if path != "" && rtErr.Pos.Line > 0 {
			return fmt.Sprintf("runtime error: %s:%s", path, rtErr.Error())
		}
		return "runtime error: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func reportError(path string, err error) {
	fmt.Fprintln(os.Stderr, describeError(path, err))
}
