package engine

import (
	"testing"

	"github.com/gotosym/symex/ir"
)

func TestGuardCanonicalForm(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	x := ir.Symbol(ctx, "x", i32)
	c1 := ir.Lt(ctx, x, ir.ConstInt(ctx, 3, i32))
	c2 := ir.Gt(ctx, x, ir.ConstInt(ctx, 0, i32))

	g := Guard{}.Add(ctx, ctx.True()).Add(ctx, c1).Add(ctx, ir.And(ctx, c2, ctx.True()))
	if len(g.conjuncts) != 2 {
		t.Fatalf("expected true conjuncts dropped and and-nodes flattened, got %d conjuncts", len(g.conjuncts))
	}
	if !g.conjuncts[0].Equal(c1) || !g.conjuncts[1].Equal(c2) {
		t.Fatalf("unexpected conjunct order/content: %v", g.conjuncts)
	}
}

func TestGuardIsFalse(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	x := ir.Symbol(ctx, "x", i32)

	g := Guard{}.Add(ctx, ir.Lt(ctx, x, ir.ConstInt(ctx, 3, i32)))
	if g.IsFalse() {
		t.Fatalf("guard with no false conjunct reported false")
	}
	g2 := g.Add(ctx, ctx.False())
	if !g2.IsFalse() {
		t.Fatalf("guard with a false conjunct did not report false")
	}
}

func TestGuardDifferenceStripsCommonPrefix(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	x := ir.Symbol(ctx, "x", i32)
	a := ir.Lt(ctx, x, ir.ConstInt(ctx, 3, i32))
	b := ir.Gt(ctx, x, ir.ConstInt(ctx, 0, i32))
	c := ir.Eq(ctx, x, ir.ConstInt(ctx, 1, i32))

	g1 := Guard{}.Add(ctx, a).Add(ctx, b)
	g2 := Guard{}.Add(ctx, a).Add(ctx, c)

	diff := g2.Difference(g1)
	if len(diff.conjuncts) != 1 || !diff.conjuncts[0].Equal(c) {
		t.Fatalf("expected difference to be [c], got %v", diff.conjuncts)
	}
}

func TestGuardJoinLaws(t *testing.T) {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	x := ir.Symbol(ctx, "x", i32)
	a := ir.Lt(ctx, x, ir.ConstInt(ctx, 3, i32))
	b := ir.Gt(ctx, x, ir.ConstInt(ctx, 0, i32))
	c := ir.Eq(ctx, x, ir.ConstInt(ctx, 1, i32))

	base := Guard{}.Add(ctx, a)
	g1 := base.Add(ctx, b)
	g2 := base.Add(ctx, c)

	// join(g, g) == g
	self := g1.Join(ctx, g1)
	if len(self.conjuncts) != len(g1.conjuncts) {
		t.Fatalf("join(g,g) changed conjunct count: %v vs %v", self.conjuncts, g1.conjuncts)
	}

	// join(g1, g2) keeps the common prefix and drops nothing from it.
	joined := g1.Join(ctx, g2)
	if len(joined.conjuncts) != 2 || !joined.conjuncts[0].Equal(a) {
		t.Fatalf("expected join to keep common prefix [a, b||c], got %v", joined.conjuncts)
	}

	// join with an empty tail (true) on one side drops the tail entirely.
	joinTrue := base.Join(ctx, g1)
	if len(joinTrue.conjuncts) != 1 || !joinTrue.conjuncts[0].Equal(a) {
		t.Fatalf("expected join(base, base+b) == base, got %v", joinTrue.conjuncts)
	}
}
