package main

import (
	"encoding/json"
	"fmt"
	"os"

	"dadalang/interpreter-go/pkg/driver"
)

func singlePathArg(command string, args []string) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "dada %s expects exactly one source file\n", command)
		return "", false
	}
	return args[0], true
}

// runTokens prints one token per line as `line:col KIND payload`.
func runTokens(args []string) int {
	path, ok := singlePathArg("tokens", args)
	if !ok {
		return 1
	}
	prog, err := driver.ReadSource(path)
	if err != nil {
		reportError(path, err)
		return 1
	}
	for _, tok := range prog.Tokens {
		fmt.Fprintf(os.Stdout, "%s %s\n", tok.Pos, tok)
	}
	return 0
}

// runAST prints the parsed tree as indented JSON.
func runAST(args []string) int {
	path, ok := singlePathArg("ast", args)
	if !ok {
		return 1
	}
	prog, err := driver.LoadProgram(path)
	if err != nil {
		reportError(path, err)
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(prog.Tree); err != nil {
		fmt.Fprintf(os.Stderr, "encode ast: %v\n", err)
		return 1
	}
	return 0
}
