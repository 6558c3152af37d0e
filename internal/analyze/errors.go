package analyze

import "fmt"

// StackError reports unbalanced flag handling. It is always a bug in the
// resolution code, never a property of the input.
type StackError struct {
	Op    string
	Want  *Flag
	Got   *Flag
	Depth int
}

func (e *StackError) Error() string {
	switch {
	case e.Got == nil && e.Op == "pop":
		return fmt.Sprintf("analyze: pop %s on empty flag stack", e.Want)
	case e.Op == "finish":
		return fmt.Sprintf("analyze: pass finished with %d active flags, top %s", e.Depth, e.Got)
	default:
		return fmt.Sprintf("analyze: %s %s but top of stack is %s (depth %d)", e.Op, e.Want, e.Got, e.Depth)
	}
}
