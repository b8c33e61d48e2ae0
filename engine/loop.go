package engine

import "github.com/gotosym/symex/ir"

// handleLoopBound is invoked once a backward goto's unwind counter has
// reached its configured limit (§4.4). cRenamed is the already-renamed,
// simplified branch condition. It decides what happens to the path
// instead of taking the back-edge one more time, per Options' loop-bound
// treatment (§6).
func (e *Engine) handleLoopBound(state *PathState, instr *ir.Instruction, cRenamed *ir.Term, loc ir.Location, stack []string) {
	guardExpr := state.Guard.AsExpression(e.Ctx)
	e.Log.With(map[string]any{
		"function":          state.Function,
		"pc":                state.PC,
		"loop_id":           instr.Loc.LoopID,
		"base_case":         e.Opts.BaseCase,
		"forward_condition": e.Opts.ForwardCondition,
		"assume_all_states": e.Opts.AssumeAllStates,
	}).Infof("loop unwind bound reached")
	switch {
	case e.Opts.AssumeAllStates:
		// Keep unwinding past the configured bound: assume the loop
		// condition holds and take the back-edge again. MaxDepth is the
		// actual backstop against nontermination in this mode.
		e.Sink.Assumption(guardExpr, cRenamed, loc, stack)
		state.PC = instr.Target
	case e.Opts.BaseCase:
		// Drop the looping branch outright: the path that reached the
		// bound continues past the loop, under an assumption that the
		// loop condition no longer holds.
		notC := ir.Simplify(e.Ctx, ir.Not(e.Ctx, cRenamed))
		e.Sink.Assumption(guardExpr, notC, loc, stack)
		state.Guard = state.Guard.Add(e.Ctx, notC)
		state.PC++
	case e.Opts.ForwardCondition:
		// The reverse of base-case: the negated condition is asserted
		// rather than assumed, turning "the loop still wants to iterate
		// past the bound" into a claim the verifier must discharge.
		notC := ir.Simplify(e.Ctx, ir.Not(e.Ctx, cRenamed))
		e.Sink.Assertion(guardExpr, notC, "unwinding assertion", loc, stack)
		state.Guard = state.Guard.Add(e.Ctx, notC)
		state.PC++
	default:
		// Full model: assert the loop-bound instrument (or assume it,
		// under NoUnwindingAssertions) and add the negated condition to
		// the path guard so the continuing path is explicitly under
		// "the loop didn't need another iteration" — matching the
		// PartialLoops-off default; PartialLoops leaves the guard
		// unchanged and lets the path continue unconstrained.
		notC := ir.Simplify(e.Ctx, ir.Not(e.Ctx, cRenamed))
		if e.Opts.NoUnwindingAssertions {
			e.Sink.Assumption(guardExpr, notC, loc, stack)
		} else {
			e.Sink.Assertion(guardExpr, notC, "unwinding assertion", loc, stack)
		}
		if !e.Opts.PartialLoops {
			state.Guard = state.Guard.Add(e.Ctx, notC)
		}
		state.PC++
	}
}
