package interpreter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dadalang/interpreter-go/pkg/ast"
)

// EventKind distinguishes what a running session is reporting.
type EventKind int

const (
	// EventOutput carries the text of a bolo dada statement.
	EventOutput EventKind = iota
	// EventPrompt means the program is suspended until Provide is called.
	EventPrompt
)

func (k EventKind) String() string {
	switch k {
	case EventOutput:
		return "output"
	case EventPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one observable step of a session.
type Event struct {
	Kind EventKind
	Text string
}

// ErrNoPendingPrompt is returned by Provide when the program is not waiting
// for input.
var ErrNoPendingPrompt = errors.New("no pending prompt")

// Session runs a program on its own goroutine and suspends it at every input
// statement until the host answers through Provide.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	events  chan Event
	answers chan string
	done    chan struct{}

	mu      sync.Mutex
	waiting bool
	err     error
}

// Start launches program on interp. Events must be drained for the program
// to make progress.
func Start(ctx context.Context, interp *Interpreter, program *ast.Program) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:     runCtx,
		cancel:  cancel,
		events:  make(chan Event, 16),
		answers: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go s.run(interp, program)
	return s
}

func (s *Session) run(interp *Interpreter, program *ast.Program) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		s.mu.Lock()
		s.err = err
		s.waiting = false
		s.mu.Unlock()
		s.cancel()
		close(s.events)
		close(s.done)
	}()
	err = interp.Run(s.ctx, program, s.emit, s.prompt)
}

func (s *Session) send(ev Event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *Session) emit(text string) {
	_ = s.send(Event{Kind: EventOutput, Text: text})
}

func (s *Session) prompt(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.waiting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.waiting = false
		s.mu.Unlock()
	}()

	if err := s.send(Event{Kind: EventPrompt, Text: prompt}); err != nil {
		return "", err
	}
	select {
	case text := <-s.answers:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Events yields output and prompts in program order. The channel is closed
// when the run ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Provide answers the pending prompt and resumes the program.
func (s *Session) Provide(text string) error {
	s.mu.Lock()
	if !s.waiting {
		s.mu.Unlock()
		return ErrNoPendingPrompt
	}
	// Each prompt takes exactly one answer.
	s.waiting = false
	s.mu.Unlock()
	select {
	case s.answers <- text:
		return nil
	case <-s.done:
		return ErrNoPendingPrompt
	}
}

// Cancel abandons the run. A program suspended at a prompt unwinds with
// context.Canceled.
func (s *Session) Cancel() {
	s.cancel()
}

// Wait blocks until the run ends and returns its error.
func (s *Session) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the run has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
