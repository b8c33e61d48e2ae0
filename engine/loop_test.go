package engine

import (
	"testing"

	"github.com/gotosym/symex/ir"
)

func loopProgram(ctx *ir.Context, i32 *ir.Type) *ir.Program {
	// i = 0; while (i < 3) { i = i + 1; }
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "i", i32)},                                                                            // 0
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "i", i32), Rhs: ir.ConstInt(ctx, 0, i32)},                                           // 1
			{Kind: ir.KindGoto, Args: []*ir.Term{ir.Not(ctx, ir.Lt(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 3, i32)))}, Target: 5}, // 2
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "i", i32), Rhs: ir.Add(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 1, i32))},    // 3
			{Kind: ir.KindGoto, Args: []*ir.Term{ir.Lt(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 3, i32))}, Target: 2},              // 4
			{Kind: ir.KindEndFunction}, // 5
		},
	}
	return mkProgram("main", main)
}

// TestBoundedLoopBaseCase covers S4: at the unwind bound, base-case mode
// emits an unwinding assumption (not a claim) and adds the negated loop
// condition to the path guard, so the path that reached the bound
// continues as if the loop had exited there.
func TestBoundedLoopBaseCase(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	prog := loopProgram(ctx, i32)

	opts := DefaultOptions()
	opts.DefaultUnwind = 2
	opts.BaseCase = true
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	final, err := eng.RunToCompletion()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var unwindingAssertions, unwindingAssumptions int
	for _, r := range sink.Records() {
		if r.Kind == RecordAssertion && r.Message == "unwinding assertion" {
			unwindingAssertions++
		}
		if r.Kind == RecordAssumption && r.Rhs.Tag() == ir.TagNot {
			unwindingAssumptions++
		}
	}
	if unwindingAssertions != 0 {
		t.Fatalf("base-case must not emit an unwinding claim, got %d", unwindingAssertions)
	}
	if unwindingAssumptions != 1 {
		t.Fatalf("expected exactly one unwinding assumption, got %d", unwindingAssumptions)
	}
	if len(final.Guard.conjuncts) == 0 {
		t.Fatalf("expected the negated loop condition to have been added to the path guard")
	}
}

// TestBoundedLoopForwardCondition covers the reverse of S4: at the
// unwind bound, forward-condition mode emits an unwinding claim (the
// negated condition asserted, not assumed) and still adds the negated
// condition to the guard.
func TestBoundedLoopForwardCondition(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	prog := loopProgram(ctx, i32)

	opts := DefaultOptions()
	opts.DefaultUnwind = 2
	opts.ForwardCondition = true
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	final, err := eng.RunToCompletion()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var unwindingAssertions int
	for _, r := range sink.Records() {
		if r.Kind == RecordAssertion && r.Message == "unwinding assertion" {
			unwindingAssertions++
		}
	}
	if unwindingAssertions != 1 {
		t.Fatalf("forward-condition must emit exactly one unwinding claim, got %d", unwindingAssertions)
	}
	if len(final.Guard.conjuncts) == 0 {
		t.Fatalf("expected the negated loop condition to have been added to the path guard")
	}
}

// TestBoundedLoopPartialLoopsLeavesGuardUnconstrained covers the
// PartialLoops option: the full-model treatment still emits the
// unwinding claim, but leaves the path guard untouched.
func TestBoundedLoopPartialLoopsLeavesGuardUnconstrained(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	prog := loopProgram(ctx, i32)

	opts := DefaultOptions()
	opts.DefaultUnwind = 2
	opts.PartialLoops = true
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	final, err := eng.RunToCompletion()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var unwindingAssertions int
	for _, r := range sink.Records() {
		if r.Kind == RecordAssertion && r.Message == "unwinding assertion" {
			unwindingAssertions++
		}
	}
	if unwindingAssertions != 1 {
		t.Fatalf("expected exactly one unwinding claim, got %d", unwindingAssertions)
	}
	if len(final.Guard.conjuncts) != 0 {
		t.Fatalf("PartialLoops should leave the guard unconstrained, got %v", final.Guard.conjuncts)
	}
}

// TestBoundedLoopNoUnwindingAssertions covers the NoUnwindingAssertions
// option: the full-model treatment emits an assumption instead of a
// claim at the bound.
func TestBoundedLoopNoUnwindingAssertions(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	prog := loopProgram(ctx, i32)

	opts := DefaultOptions()
	opts.DefaultUnwind = 2
	opts.NoUnwindingAssertions = true
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var unwindingAssertions, unwindingAssumptions int
	for _, r := range sink.Records() {
		if r.Kind == RecordAssertion && r.Message == "unwinding assertion" {
			unwindingAssertions++
		}
		if r.Kind == RecordAssumption && r.Rhs.Tag() == ir.TagNot {
			unwindingAssumptions++
		}
	}
	if unwindingAssertions != 0 {
		t.Fatalf("NoUnwindingAssertions must suppress the claim, got %d", unwindingAssertions)
	}
	if unwindingAssumptions != 1 {
		t.Fatalf("expected exactly one unwinding assumption, got %d", unwindingAssumptions)
	}
}
