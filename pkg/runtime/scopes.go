package runtime

import (
	"fmt"
	"sort"
)

// Scopes is the evaluator's variable store: a stack of flat scopes with the
// innermost scope last. Writes always land in the innermost scope; reads
// search outward.
type Scopes struct {
	frames []map[string]Value
}

// NewScopes returns a stack holding one empty global scope.
func NewScopes() *Scopes {
	return &Scopes{frames: []map[string]Value{make(map[string]Value)}}
}

// Depth is the number of scopes on the stack.
func (s *Scopes) Depth() int {
	return len(s.frames)
}

// Push adds a new innermost scope seeded with bindings.
func (s *Scopes) Push(bindings map[string]Value) {
	frame := make(map[string]Value, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	s.frames = append(s.frames, frame)
}

// Pop discards the innermost scope. The global scope is never popped.
func (s *Scopes) Pop() error {
	if len(s.frames) <= 1 {
		return fmt.Errorf("cannot pop the global scope")
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Define inserts or shadows a binding in the innermost scope.
func (s *Scopes) Define(name string, value Value) {
	s.frames[len(s.frames)-1][name] = value
}

// Lookup retrieves a binding, searching from the innermost scope outward.
func (s *Scopes) Lookup(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Keys returns the names bound in the innermost scope in sorted order.
func (s *Scopes) Keys() []string {
	frame := s.frames[len(s.frames)-1]
	keys := make([]string, 0, len(frame))
	for k := range frame {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
