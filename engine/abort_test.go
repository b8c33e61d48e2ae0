package engine

import (
	"errors"
	"testing"

	"github.com/gotosym/symex/ir"
)

// TestShouldAbortStopsEarlyWithoutLosingSinkContents covers §5's
// cancellation predicate: an abort mid-run returns ErrAborted and
// leaves whatever the sink already recorded intact.
func TestShouldAbortStopsEarlyWithoutLosingSinkContents(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "x", i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 1, i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 2, i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "x", i32), Rhs: ir.ConstInt(ctx, 3, i32)},
			{Kind: ir.KindEndFunction},
		},
	}
	prog := mkProgram("main", main)

	opts := DefaultOptions()
	steps := 0
	opts.ShouldAbort = func() bool {
		steps++
		return steps > 2
	}
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = eng.Run()
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(sink.Records()) == 0 {
		t.Fatalf("expected the sink to keep whatever it recorded before the abort")
	}
	if len(sink.Records()) >= 3 {
		t.Fatalf("expected the abort to actually cut the run short, got %d records", len(sink.Records()))
	}
}
