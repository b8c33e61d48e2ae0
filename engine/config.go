package engine

import "github.com/gotosym/symex/ir"

// Options configures one Run of the execution loop (§6). It follows the
// same flat, zero-value-safe-but-DefaultOptions()-preferred shape as
// schemaexec's SchemaExecOptions: callers either take DefaultOptions()
// and override individual fields, or build one from scratch and call
// Validate before use.
type Options struct {
	// DefaultUnwind bounds every loop that has no per-loop override.
	DefaultUnwind int
	// PerLoopUnwind overrides DefaultUnwind for specific ir.Location.LoopID
	// values, for programs that need a tighter or looser bound on one loop.
	PerLoopUnwind map[int]int

	// Loop-bound treatment on reaching the unwind limit. At most one of
	// these three may be set (Validate enforces it) — they are different
	// strategies for the same event, not independent switches. Leaving
	// all three false is "full model": the loop-bound instrument is
	// asserted, turning "unwound past the bound" into a claim the
	// verifier must discharge, per original_source/util/guard.cpp's
	// neighbourhood (unwinding assertions) and symex_goto.cpp's handling
	// of the same event.
	BaseCase         bool // drop the looping branch outright: assume the negated condition and add it to the guard; the path that reached the bound continues as if the loop exited there
	ForwardCondition bool // the reverse of BaseCase: assert the negated loop condition instead of assuming it
	AssumeAllStates  bool // assume the loop condition true unconditionally, exploring only the fully-unwound path

	// NoUnwindingAssertions turns the full-model treatment's unwinding
	// claim into an assumption instead, per §6's configuration table —
	// useful when the caller only wants the bound enforced, not
	// discharged as a claim.
	NoUnwindingAssertions bool

	// PartialLoops leaves the path guard unconstrained by the negated
	// loop condition in the full-model treatment, letting the path
	// continue as if the loop might still have more iterations left
	// beyond the bound (§4.5). Off by default: the continuing path is
	// explicitly under "the loop didn't need another iteration."
	PartialLoops bool

	// TupleNodeFlattener/TupleSymFlattener select how struct/array-typed
	// terms and their renamed symbols are flattened for the equation
	// sink (§6); nil keeps the engine's own default flattening.
	TupleNodeFlattener func(*ir.Term) *ir.Term
	TupleSymFlattener  func(*ir.Term) *ir.Term

	// MaxDepth bounds total path-state depth (function-call and
	// loop-iteration nesting combined) as a blunt runaway guard,
	// independent of any single loop's own bound.
	MaxDepth int

	// LogLevel controls the Logger threshold when the caller doesn't
	// supply its own pre-configured Logger.
	LogLevel LogLevel

	// LogPhiSkips: when a phi-merge candidate identifier is missing its
	// activation on one side of a fork (§4.5's "recovered locally by
	// skipping that identifier"), log it at Warn instead of staying
	// silent. Off by default because well-formed goto-programs never
	// trigger this path; turning it on is a debugging aid.
	LogPhiSkips bool

	// ShouldAbort is checked before every instruction dispatch (§5's
	// cancellation predicate); when it returns true, Run/RunToCompletion
	// stop and return ErrAborted, leaving everything already written to
	// the sink intact. nil means never abort.
	ShouldAbort func() bool
}

// DefaultOptions returns the baseline configuration: full-model loop
// treatment, an unwind bound of 1 (unwind once, then assert the bound
// wasn't exceeded), and warn-level logging.
func DefaultOptions() Options {
	return Options{
		DefaultUnwind: 1,
		PerLoopUnwind: map[int]int{},
		MaxDepth:      10000,
		LogLevel:      LevelWarn,
		LogPhiSkips:   false,
	}
}

// UnwindLimitFor returns the unwind bound in effect for the given loop.
func (o Options) UnwindLimitFor(loopID int) int {
	if n, ok := o.PerLoopUnwind[loopID]; ok {
		return n
	}
	return o.DefaultUnwind
}

// Validate enforces the mutual exclusivity of the three loop-bound
// treatments named above. There is no principled way to combine, say,
// base-case with assume-all-states — they disagree about which paths to
// keep — so a caller setting more than one is almost certainly a
// misconfiguration rather than an intentional combination, and Validate
// rejects it as a Fatal rather than silently picking one.
func (o Options) Validate() error {
	n := 0
	if o.BaseCase {
		n++
	}
	if o.ForwardCondition {
		n++
	}
	if o.AssumeAllStates {
		n++
	}
	if n > 1 {
		return &Fatal{Reason: "at most one of BaseCase, ForwardCondition, AssumeAllStates may be set"}
	}
	if o.DefaultUnwind < 0 {
		return &Fatal{Reason: "DefaultUnwind must be >= 0"}
	}
	return nil
}
