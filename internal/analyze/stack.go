package analyze

import (
	"fmt"

	"nesc/internal/binding"
	"nesc/internal/diag"
	"nesc/internal/source"
	"nesc/internal/types"
)

// scope is one level of the variable scope stack.
type scope struct {
	kind  binding.ScopeKind
	names map[string]binding.BindingID
}

// Stack is the context of one resolution pass. It is not safe for
// concurrent use and must not outlive the pass.
type Stack struct {
	flags    []*Flag
	scopes   []scope
	expected []types.TypeID

	reporter diag.Reporter
	resolver binding.Resolver
	types    *types.Interner
}

// Options configure a Stack; zero values select no-op collaborators.
type Options struct {
	Reporter diag.Reporter
	Resolver binding.Resolver
	Types    *types.Interner
}

func NewStack(opts Options) *Stack {
	s := &Stack{
		reporter: opts.Reporter,
		resolver: opts.Resolver,
		types:    opts.Types,
	}
	if s.reporter == nil {
		s.reporter = diag.NopReporter{}
	}
	if s.types == nil {
		s.types = types.NewInterner()
	}
	return s
}

// Push activates f.
func (s *Stack) Push(f *Flag) {
	s.flags = append(s.flags, f)
}

// Pop deactivates f, which must be the most recently pushed flag.
func (s *Stack) Pop(f *Flag) {
	n := len(s.flags)
	if n == 0 {
		panic(&StackError{Op: "pop", Want: f})
	}
	if top := s.flags[n-1]; top != f {
		panic(&StackError{Op: "pop", Want: f, Got: top, Depth: n})
	}
	s.flags = s.flags[:n-1]
}

// With runs fn with f active. The flag is removed on every exit path; a
// normal return with a different top of stack is a fault.
func (s *Stack) With(f *Flag, fn func()) {
	s.Push(f)
	depth := len(s.flags)
	done := false
	defer func() {
		if !done {
			if len(s.flags) >= depth {
				s.flags = s.flags[:depth-1]
			}
			return
		}
		s.Pop(f)
		if len(s.flags) != depth-1 {
			panic(&StackError{Op: "with", Want: f, Got: s.Top(), Depth: len(s.flags)})
		}
	}()
	fn()
	done = true
}

// Active reports whether f is anywhere on the stack.
func (s *Stack) Active(f *Flag) bool {
	for i := len(s.flags) - 1; i >= 0; i-- {
		if s.flags[i] == f {
			return true
		}
	}
	return false
}

// Top returns the innermost flag or nil.
func (s *Stack) Top() *Flag {
	if len(s.flags) == 0 {
		return nil
	}
	return s.flags[len(s.flags)-1]
}

func (s *Stack) Depth() int { return len(s.flags) }

// Flags returns a snapshot, outermost first.
func (s *Stack) Flags() []*Flag {
	return append([]*Flag(nil), s.flags...)
}

// Finish checks that every push was matched and every scope closed.
func (s *Stack) Finish() {
	if len(s.flags) != 0 {
		panic(&StackError{Op: "finish", Got: s.Top(), Depth: len(s.flags)})
	}
	if len(s.scopes) != 0 {
		panic(&StackError{Op: "finish", Got: NewFlag(fmt.Sprintf("scope:%s", s.scopes[len(s.scopes)-1].kind)), Depth: len(s.scopes)})
	}
	if len(s.expected) != 0 {
		panic(&StackError{Op: "finish", Got: NewFlag("expected-type"), Depth: len(s.expected)})
	}
}

func (s *Stack) Reporter() diag.Reporter { return s.reporter }

func (s *Stack) Resolver() binding.Resolver { return s.resolver }

// SetResolver swaps the resolver, e.g. once the pass has built one.
func (s *Stack) SetResolver(r binding.Resolver) { s.resolver = r }

func (s *Stack) Types() *types.Interner { return s.types }

// Errorf reports an error diagnostic; resolution continues.
func (s *Stack) Errorf(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(s.reporter, code, sp, fmt.Sprintf(format, args...))
}

// Warnf reports a warning diagnostic.
func (s *Stack) Warnf(code diag.Code, sp source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportWarning(s.reporter, code, sp, fmt.Sprintf(format, args...))
}
