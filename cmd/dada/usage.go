package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  dada run [target] [--input value]... [--max-depth n]")
	fmt.Fprintln(os.Stderr, "  dada run <file.dada> [--input value]... [--max-depth n]")
	fmt.Fprintln(os.Stderr, "  dada <file.dada>")
	fmt.Fprintln(os.Stderr, "  dada tokens <file.dada>")
	fmt.Fprintln(os.Stderr, "  dada ast <file.dada>")
	fmt.Fprintln(os.Stderr, "  dada fetch [lesson ...]")
	fmt.Fprintln(os.Stderr, "  dada --version")
}
