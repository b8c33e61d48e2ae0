package engine

import (
	"testing"

	"github.com/gotosym/symex/ir"
)

// TestStructAssignmentFlattensToLeafRecords covers §6's
// tuple-node-flattener/tuple-sym-flattener row: a struct-typed
// assignment lands in the sink as one record per field, not one
// composite record.
func TestStructAssignmentFlattensToLeafRecords(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	pointT := ir.StructType([]ir.StructField{{Name: "x", Type: i32}, {Name: "y", Type: i32}})

	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "p", pointT)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "p", pointT), Rhs: ir.ConstStruct(ctx, pointT, []*ir.Term{
				ir.ConstInt(ctx, 1, i32), ir.ConstInt(ctx, 2, i32),
			})},
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

	var gotX, gotY int
	for _, r := range sink.Records() {
		if r.Kind != RecordAssignment || r.Lhs.Tag() != ir.TagMember {
			continue
		}
		switch r.Lhs.Ident() {
		case "x":
			gotX++
			if v, ok := r.Rhs.IntValue(); !ok || v != 1 {
				t.Fatalf("expected p.x's value to be 1, got %v", r.Rhs)
			}
		case "y":
			gotY++
			if v, ok := r.Rhs.IntValue(); !ok || v != 2 {
				t.Fatalf("expected p.y's value to be 2, got %v", r.Rhs)
			}
		}
	}
	if gotX != 1 || gotY != 1 {
		t.Fatalf("expected exactly one flattened record per field, got x=%d y=%d", gotX, gotY)
	}
	for _, r := range sink.Records() {
		if r.Kind == RecordAssignment && r.Lhs.Type().Tag() == ir.TyStruct {
			t.Fatalf("expected no composite struct-typed record, got %v", r.Lhs)
		}
	}
}

// TestTupleFlattenerHooksSeeEachLeaf covers the same scenario but with
// TupleNodeFlattener/TupleSymFlattener set, confirming they run on every
// decomposed leaf rather than being skipped once flattening recurses.
func TestTupleFlattenerHooksSeeEachLeaf(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	pointT := ir.StructType([]ir.StructField{{Name: "x", Type: i32}, {Name: "y", Type: i32}})

	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, "p", pointT)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, "p", pointT), Rhs: ir.ConstStruct(ctx, pointT, []*ir.Term{
				ir.ConstInt(ctx, 1, i32), ir.ConstInt(ctx, 2, i32),
			})},
			{Kind: ir.KindEndFunction},
		},
	}
	prog := mkProgram("main", main)

	opts := DefaultOptions()
	var symHits, nodeHits int
	opts.TupleSymFlattener = func(t *ir.Term) *ir.Term {
		symHits++
		return t
	}
	opts.TupleNodeFlattener = func(t *ir.Term) *ir.Term {
		nodeHits++
		return t
	}
	sink := NewSliceTarget()
	eng, err := New(prog, ctx, opts, sink, NewNoopLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Two leaves (x, y); TupleSymFlattener runs on both newLhs and oldLhs
	// per leaf, TupleNodeFlattener runs once per leaf's value.
	if symHits != 4 {
		t.Fatalf("expected TupleSymFlattener to run 4 times (2 leaves x newLhs/oldLhs), got %d", symHits)
	}
	if nodeHits != 2 {
		t.Fatalf("expected TupleNodeFlattener to run once per leaf, got %d", nodeHits)
	}
}
