package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"dadalang/interpreter-go/pkg/driver"
	"dadalang/interpreter-go/pkg/interpreter"
)

// stdin answers prompts when no preset inputs are given.
var stdin io.Reader = os.Stdin

type runOptions struct {
	entry     string
	inputs    []string
	hasInputs bool
	maxDepth  int
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		switch {
		case arg == "--input":
			if idx+1 >= len(args) {
				return opts, fmt.Errorf("--input requires a value")
			}
			idx++
			opts.inputs = append(opts.inputs, args[idx])
			opts.hasInputs = true
		case strings.HasPrefix(arg, "--input="):
			opts.inputs = append(opts.inputs, strings.TrimPrefix(arg, "--input="))
			opts.hasInputs = true
		case arg == "--max-depth" || strings.HasPrefix(arg, "--max-depth="):
			raw := strings.TrimPrefix(arg, "--max-depth=")
			if arg == "--max-depth" {
				if idx+1 >= len(args) {
					return opts, fmt.Errorf("--max-depth requires a value")
				}
				idx++
				raw = args[idx]
			}
			depth, err := strconv.Atoi(raw)
			if err != nil || depth < 1 {
				return opts, fmt.Errorf("--max-depth expects a positive integer (got %q)", raw)
			}
			opts.maxDepth = depth
		case strings.HasPrefix(arg, "--"):
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			if opts.entry != "" {
				return opts, fmt.Errorf("unexpected arguments: %s", arg)
			}
			opts.entry = arg
		}
	}
	return opts, nil
}

func runEntry(args []string) int {
	opts, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, errManifestNotFound) {
		if opts.entry == "" || !looksLikePathCandidate(opts.entry) {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		manifest = nil
	}

	var entryPath string
	var target *driver.TargetSpec
	switch {
	case opts.entry == "" && manifest == nil:
		fmt.Fprintln(os.Stderr, "dada run requires a manifest target or source file (dada.yml not found)")
		return 1
	case opts.entry == "":
		target, err = manifest.DefaultTarget()
		if err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return 1
		}
	case manifest != nil && !looksLikePathCandidate(opts.entry):
		var ok bool
		target, ok = manifest.FindTarget(opts.entry)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown target %q\n", opts.entry)
			return 1
		}
	default:
		entryPath = opts.entry
	}

	if target != nil {
		entryPath, err = resolveTargetMain(manifest, target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve target %q: %v\n", target.OriginalName, err)
			return 1
		}
		if !opts.hasInputs && len(target.Inputs) > 0 {
			opts.inputs = target.Inputs
			opts.hasInputs = true
		}
	}

	return executeEntry(entryPath, opts)
}

func executeEntry(path string, opts runOptions) int {
	prog, err := driver.LoadProgram(path)
	if err != nil {
		reportError(path, err)
		return 1
	}

	var interpOpts []interpreter.Option
	if opts.maxDepth > 0 {
		interpOpts = append(interpOpts, interpreter.WithMaxCallDepth(opts.maxDepth))
	}
	interp := interpreter.New(interpOpts...)

	input := stdinInput(stdin)
	if opts.hasInputs {
		input = interpreter.QueueInput(opts.inputs...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	emit := func(text string) {
		fmt.Fprintln(os.Stdout, text)
	}
	if err := interp.Run(ctx, prog.Tree, emit, input); err != nil {
		reportError(path, err)
		return 1
	}
	return 0
}

// stdinInput prints each prompt without a newline and reads one line. End of
// input answers "". Cancelling ctx abandons a blocked read.
func stdinInput(r io.Reader) interpreter.InputFunc {
	reader := bufio.NewReader(r)
	type readResult struct {
		line string
		err  error
	}
	return func(ctx context.Context, prompt string) (string, error) {
		fmt.Fprint(os.Stdout, prompt+" ")
		result := make(chan readResult, 1)
		go func() {
			line, err := reader.ReadString('\n')
			result <- readResult{line: line, err: err}
		}()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res := <-result:
			if res.err != nil && !errors.Is(res.err, io.EOF) {
				return "", res.err
			}
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return strings.TrimRight(res.line, "\r\n"), nil
		}
	}
}

func loadManifestFrom(dir string) (*driver.Manifest, error) {
	path, ok := driver.FindManifest(dir)
	if !ok {
		return nil, errManifestNotFound
	}
	return driver.LoadManifest(path)
}

func resolveTargetMain(manifest *driver.Manifest, target *driver.TargetSpec) (string, error) {
	if target.Lesson == "" {
		return manifest.ResolveMain(target, nil, "")
	}
	lock, err := driver.LoadLockfile(filepath.Join(manifest.Dir, driver.LockfileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	home, err := driver.HomeDir()
	if err != nil {
		return "", err
	}
	return manifest.ResolveMain(target, lock, home)
}

func looksLikePathCandidate(arg string) bool {
	if strings.HasSuffix(arg, ".dada") || strings.ContainsRune(arg, filepath.Separator) || strings.Contains(arg, "/") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}
