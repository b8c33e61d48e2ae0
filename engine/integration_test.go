package engine

import (
	"testing"

	"github.com/gotosym/symex/ir"
)

func mkProgram(entry string, fns ...*ir.Function) *ir.Program {
	m := map[string]*ir.Function{}
	for _, f := range fns {
		m[f.Name] = f
	}
	return &ir.Program{Functions: m, Entry: entry}
}

// TestStraightLineAssignment covers S1: a straight run of declarations
// and assignments with no branching, checking the sink's final
// assignment records reference the right SSA-renamed operands.
func TestStraightLineAssignment(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)

	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "x", i32)},
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "y", i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 5, i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "y", i32), Rhs: ir.Add(ctx, ir.Symbol(ctx, "x", i32), ir.ConstInt(ctx, 1, i32))},
			{Kind: ir.KindEndFunction},
		},
	}
	prog := mkProgram("main", main)

	sink := NewSliceTarget()
	eng, err := New(prog, ctx, DefaultOptions(), sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var assigns []Record
	for _, r := range sink.Records() {
		if r.Kind == RecordAssignment {
			assigns = append(assigns, r)
		}
	}
	if len(assigns) != 2 {
		t.Fatalf("expected 2 assignment records, got %d", len(assigns))
	}
	if assigns[0].Lhs.Ident() != "x" || assigns[1].Lhs.Ident() != "y" {
		t.Fatalf("unexpected assignment order: %s, %s", assigns[0].Lhs.Ident(), assigns[1].Lhs.Ident())
	}
	if assigns[1].Rhs.Tag() != ir.TagAdd {
		t.Fatalf("expected y's rhs to remain a symbolic add, got tag %v", assigns[1].Rhs.Tag())
	}
	xRead := assigns[1].Rhs.Child(0)
	_, _, l2, _, _, ok := xRead.SymbolInfo()
	if !ok || l2 != 1 {
		t.Fatalf("expected y's rhs to read x at l2=1 (after its one write), got l2=%d ok=%v", l2, ok)
	}
}

// TestIfElseMerge covers S2: two assignments to the same variable on
// either side of a conditional, rejoined at a label, checking the merges
// produce two hidden assignments to x, exactly one of them an
// if-then-else phi, and that the guard returns to true (merge
// completeness, §4.5/§8).
func TestIfElseMerge(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	boolT := ir.BoolType()

	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "c", boolT)},           // 0
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "x", i32)},             // 1
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "y", i32)},             // 2
			{Kind: ir.KindGoto, Args: []*ir.Term{ir.Not(ctx, ir.Symbol(ctx, "c", boolT))}, Target: 6}, // 3: if !c goto else
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 1, i32)},        // 4: x=1
			{Kind: ir.KindGoto, Target: 7},                                                             // 5: goto end
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 2, i32)},        // 6: else: x=2
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "y", i32), Rhs: ir.Symbol(ctx, "x", i32)},        // 7: end: y=x
			{Kind: ir.KindEndFunction},                                                                  // 8
		},
	}
	prog := mkProgram("main", main)

	sink := NewSliceTarget()
	eng, err := New(prog, ctx, DefaultOptions(), sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	final, err := eng.RunToCompletion()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Guard.IsFalse() {
		t.Fatalf("final guard should not be false after a fully-merged branch")
	}
	if len(final.Guard.conjuncts) != 0 {
		t.Fatalf("expected merge to restore the guard to true (empty conjuncts), got %v", final.Guard.conjuncts)
	}

	var hiddenX, itePhi, visible int
	for _, r := range sink.Records() {
		if r.Kind != RecordAssignment {
			continue
		}
		if r.Visibility == Hidden && r.Lhs.Ident() == "x" {
			hiddenX++
			if r.Rhs.Tag() == ir.TagIfThenElse {
				itePhi++
			}
		}
		if r.Visibility == Visible {
			visible++
		}
	}
	// One hidden record folds the still-parked else-branch's untouched x
	// in when the (dead, jumped-over) then-continuation reaches the
	// else's own location; the other is the real join at the label,
	// where both sides' x actually differ and get an if-then-else.
	if hiddenX != 2 {
		t.Fatalf("expected 2 hidden assignments to x across the two merge points, got %d", hiddenX)
	}
	if itePhi != 1 {
		t.Fatalf("expected exactly one hidden phi assignment for x to be an if-then-else, got %d", itePhi)
	}
	// visible: x=1, x=2, y=x -> 3
	if visible != 3 {
		t.Fatalf("expected 3 visible assignments (x=1, x=2, y=x), got %d", visible)
	}
}

// TestBoundedLoopFullModel covers S3: a backward goto hitting its
// unwind bound under the default (full-model) treatment records an
// unwinding assertion instead of looping further (unwind monotonicity:
// the counter only grows along one path, and the bound is enforced
// exactly once per back-edge instance).
func TestBoundedLoopFullModel(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)

	// i = 0; while (i < 3) { i = i + 1; }
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "i", i32)},                                                    // 0
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "i", i32), Rhs: ir.ConstInt(ctx, 0, i32)},                   // 1
			{Kind: ir.KindGoto, Args: []*ir.Term{ir.Not(ctx, ir.Lt(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 3, i32)))}, Target: 5}, // 2: if !(i<3) goto end
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "i", i32), Rhs: ir.Add(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 1, i32))},     // 3
			{Kind: ir.KindGoto, Args: []*ir.Term{ir.Lt(ctx, ir.Symbol(ctx, "i", i32), ir.ConstInt(ctx, 3, i32))}, Target: 2},              // 4: backward: if i<3 goto loop head
			{Kind: ir.KindEndFunction}, // 5
		},
	}
	prog := mkProgram("main", main)

	opts := DefaultOptions()
	opts.DefaultUnwind = 2
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var unwindingAssertions int
	for _, r := range sink.Records() {
		if r.Kind == RecordAssertion && r.Message == "unwinding assertion" {
			unwindingAssertions++
		}
	}
	if unwindingAssertions != 1 {
		t.Fatalf("expected exactly one unwinding assertion at the configured bound, got %d", unwindingAssertions)
	}
}

// TestFunctionCallAndReturn covers S6: a call passes an argument in and
// a return value back out, both as ordinary renamed assignments.
func TestFunctionCallAndReturn(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)

	inc := &ir.Function{
		Name:   "inc",
		Params: []*ir.Term{ir.Symbol(ctx, "n", i32)},
		Instructions: []*ir.Instruction{
			{Kind: ir.KindFunctionReturn, Args: []*ir.Term{ir.Add(ctx, ir.Symbol(ctx, "n", i32), ir.ConstInt(ctx, 1, i32))}},
		},
	}
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "a", i32)},
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "b", i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "a", i32), Rhs: ir.ConstInt(ctx, 41, i32)},
			{Kind: ir.KindFunctionCall, Callee: "inc", Args: []*ir.Term{ir.Symbol(ctx, "a", i32)}, ReturnLhs: ir.Symbol(ctx, "b", i32)},
			{Kind: ir.KindEndFunction},
		},
	}
	prog := mkProgram("main", main, inc)

	sink := NewSliceTarget()
	eng, err := New(prog, ctx, DefaultOptions(), sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	final, err := eng.RunToCompletion()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if final.Function != "main" {
		t.Fatalf("expected execution to end back in main, got %s", final.Function)
	}

	var sawParamBind, sawReturnAssign bool
	for _, r := range sink.Records() {
		if r.Kind != RecordAssignment {
			continue
		}
		if r.Lhs.Ident() == "n" {
			sawParamBind = true
		}
		if r.Lhs.Ident() == "b" {
			sawReturnAssign = true
			if r.Rhs.Tag() != ir.TagAdd {
				t.Fatalf("expected b's assignment to carry the callee's add expression, got tag %v", r.Rhs.Tag())
			}
		}
	}
	if !sawParamBind {
		t.Fatalf("expected a parameter-binding assignment for n")
	}
	if !sawReturnAssign {
		t.Fatalf("expected a return-value assignment for b")
	}
}
