package engine

import (
	"errors"
	"fmt"
)

// ErrAborted is returned by Run/RunToCompletion when Options.ShouldAbort
// reports true (§5's cancellation predicate). It is not a Fatal: the
// program and configuration are both fine, the caller just asked to stop
// early. Everything the sink recorded up to the abort point remains
// valid.
var ErrAborted = errors.New("symex: aborted")

// Fatal reports a condition the execution loop cannot make forward
// progress past — an ill-typed term escaping into the engine, a
// multi-target goto, a misconfigured Options, a store through a pointer
// operand that is not a plain symbol (§7). It is always a defect in the caller's
// input (the program, or the Options), never a property of the program
// under analysis: a real overflow, a real assertion failure, or a real
// invalid dereference is a Claim recorded in the equation sink, not a
// Fatal. Run returns *Fatal as a plain Go error; callers that want to
// distinguish it from "the program itself has an assertion violation"
// (which Run does NOT report as an error — that's what the sink's
// RecordAssertion entries are for) should type-assert on it.
type Fatal struct {
	Reason   string
	Function string
	PC       int
}

func (e *Fatal) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("symex: fatal: %s", e.Reason)
	}
	return fmt.Sprintf("symex: fatal: %s (in %s at pc %d)", e.Reason, e.Function, e.PC)
}

func fatalf(function string, pc int, format string, args ...any) *Fatal {
	return &Fatal{Reason: fmt.Sprintf(format, args...), Function: function, PC: pc}
}
