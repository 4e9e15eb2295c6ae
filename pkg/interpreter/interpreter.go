package interpreter

import (
	"context"
	"fmt"
	"sync"

	"dadalang/interpreter-go/pkg/ast"
	"dadalang/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested function calls so runaway recursion
// surfaces as a RuntimeError instead of exhausting the Go stack.
const DefaultMaxCallDepth = 2000

// EmitFunc receives the text of every bolo dada statement.
type EmitFunc func(text string)

// InputFunc answers a porashona dada prompt. It may block until the host has
// a value; ctx is cancelled when the run is abandoned.
type InputFunc func(ctx context.Context, prompt string) (string, error)

// Interpreter walks DadaLang program trees. One instance runs one program at
// a time; the scope stack and function table belong to the instance and are
// reset at the start of every Run.
type Interpreter struct {
	mu           sync.Mutex
	maxCallDepth int

	scopes    *runtime.Scopes
	functions map[string]*ast.FunctionDeclaration
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxCallDepth overrides DefaultMaxCallDepth. Values below 1 are ignored.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

// New returns an interpreter with an empty global scope.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		maxCallDepth: DefaultMaxCallDepth,
		scopes:       runtime.NewScopes(),
		functions:    make(map[string]*ast.FunctionDeclaration),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Scopes exposes the scope stack left behind by the last Run.
func (i *Interpreter) Scopes() *runtime.Scopes {
	return i.scopes
}

// Function returns a declared function by name.
func (i *Interpreter) Function(name string) (*ast.FunctionDeclaration, bool) {
	fn, ok := i.functions[name]
	return fn, ok
}

// RuntimeError reports a failure while executing the tree.
type RuntimeError struct {
	Message string
	Name    string
	Pos     ast.Position
}

func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg = fmt.Sprintf("%s %q", e.Message, e.Name)
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return msg
}

func runtimeErrorAt(node ast.Node, message, name string) *RuntimeError {
	err := &RuntimeError{Message: message, Name: name}
	if node != nil {
		err.Pos = node.Span().Start
	}
	return err
}

// evalState carries the per-run effect channels.
type evalState struct {
	ctx   context.Context
	emit  EmitFunc
	input InputFunc
	depth int
}

// flow is the completion of a statement: either normal, or a phiriye dao
// carrying its value up to the nearest function call.
type flow struct {
	returning bool
	value     runtime.Value
}

var normal = flow{}

// Run executes program, sending output to emit and prompting through input.
// A nil emit discards output; a nil input answers every prompt with "".
// Output already emitted stays emitted when Run fails.
func (i *Interpreter) Run(ctx context.Context, program *ast.Program, emit EmitFunc, input InputFunc) error {
	if program == nil {
		return &RuntimeError{Message: "invalid program: nil tree"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if emit == nil {
		emit = func(string) {}
	}
	if input == nil {
		input = QueueInput()
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.scopes = runtime.NewScopes()
	i.functions = make(map[string]*ast.FunctionDeclaration)

	state := &evalState{ctx: ctx, emit: emit, input: input}
	for _, stmt := range program.Body {
		result, err := i.execStatement(state, stmt)
		if err != nil {
			return err
		}
		if result.returning {
			// phiriye dao outside a function ends the program quietly.
			return nil
		}
	}
	return nil
}

// CallFunction invokes a declared function with already evaluated arguments.
func (i *Interpreter) CallFunction(ctx context.Context, name string, args []runtime.Value, emit EmitFunc, input InputFunc) (runtime.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if emit == nil {
		emit = func(string) {}
	}
	if input == nil {
		input = QueueInput()
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	state := &evalState{ctx: ctx, emit: emit, input: input}
	return i.callFunction(state, nil, name, args)
}
