package engine

import (
	"testing"

	"github.com/gotosym/symex/ir"
)

// TestOverflowNegatePredicate covers S7: int x = INT_MIN; int y = -x;
// assert(y >= 0); with the negate preceded by an overflow-negate
// predicate check. Both the overflow claim and the user assertion's
// claim land in the sink, visible, guarded by true.
func TestOverflowNegatePredicate(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)

	x := ir.Symbol(ctx, "x", i32)
	y := ir.Symbol(ctx, "y", i32)
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: x},
			{Kind: ir.KindDecl, Lhs: y},
			{Kind: ir.KindAssign, Lhs: x, Rhs: ir.ConstInt(ctx, -2147483648, i32)},
			{Kind: ir.KindAssert, Args: []*ir.Term{ir.Not(ctx, ir.OverflowNeg(ctx, x))}, Message: "overflow-negate"},
			{Kind: ir.KindAssign, Lhs: y, Rhs: ir.Neg(ctx, x)},
			{Kind: ir.KindAssert, Args: []*ir.Term{ir.Ge(ctx, y, ir.ConstInt(ctx, 0, i32))}, Message: "y >= 0"},
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

	var overflowClaim, userClaim int
	for _, r := range sink.Records() {
		if r.Kind != RecordAssertion {
			continue
		}
		if r.Visibility != Visible {
			t.Fatalf("expected every claim to be visible, got %v for %q", r.Visibility, r.Message)
		}
		if v, ok := r.Guard.BoolValue(); !ok || !v {
			t.Fatalf("expected claim %q to be guarded by true, got %v", r.Message, r.Guard)
		}
		switch r.Message {
		case "overflow-negate":
			overflowClaim++
		case "y >= 0":
			userClaim++
		}
	}
	if overflowClaim != 1 {
		t.Fatalf("expected exactly one overflow-negate claim, got %d", overflowClaim)
	}
	if userClaim != 1 {
		t.Fatalf("expected exactly one user assertion claim, got %d", userClaim)
	}
}
