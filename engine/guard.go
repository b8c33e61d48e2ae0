package engine

import "github.com/gotosym/symex/ir"

// Guard is an ordered list of conjuncts, interpreted as their conjunction
// (an empty list means true). It never shares its interior slice across
// states: every mutating operation returns a new Guard backed by a fresh
// slice, so cloning a PathState is a cheap, aliasing-free copy of a slice
// header (§4.2, §5). The literal flatten-on-add / prefix-strip-on-diff
// algebra below is grounded on original_source/util/guard.cpp's
// guardt::add and operator-=.
type Guard struct {
	conjuncts []*ir.Term
}

// Add appends e to the guard. A true conjunct is a no-op; a conjunction
// is flattened into its parts (mirrors guardt::add's recursive handling
// of is_and()); anything else is appended.
func (g Guard) Add(ctx *ir.Context, e *ir.Term) Guard {
	if v, ok := e.BoolValue(); ok && v {
		return g
	}
	if e.Tag() == ir.TagAnd {
		return g.Add(ctx, e.Child(0)).Add(ctx, e.Child(1))
	}
	next := make([]*ir.Term, len(g.conjuncts)+1)
	copy(next, g.conjuncts)
	next[len(g.conjuncts)] = e
	return Guard{conjuncts: next}
}

// IsFalse reports whether some conjunct is the constant false (a
// conjunction of constants reducing to false is caught because callers
// are expected to Simplify before Add, per §4.1's constant folding).
func (g Guard) IsFalse() bool {
	for _, c := range g.conjuncts {
		if v, ok := c.BoolValue(); ok && !v {
			return true
		}
	}
	return false
}

// AsExpression folds the conjunct list into a single boolean term.
func (g Guard) AsExpression(ctx *ir.Context) *ir.Term {
	if len(g.conjuncts) == 0 {
		return ctx.True()
	}
	e := g.conjuncts[0]
	for _, c := range g.conjuncts[1:] {
		e = ir.And(ctx, e, c)
	}
	return e
}

// Assumption returns guard ∧ e, the form used when embedding an
// assumption's condition into a single combined expression.
func (g Guard) Assumption(ctx *ir.Context, e *ir.Term) *ir.Term {
	return ir.And(ctx, g.AsExpression(ctx), e)
}

// Claim returns guard ⇒ e, the form used when embedding a claim's
// condition into a single combined expression.
func (g Guard) Claim(ctx *ir.Context, e *ir.Term) *ir.Term {
	return ir.Implies(ctx, g.AsExpression(ctx), e)
}

// Difference strips the common prefix this guard shares with o, and
// returns the tail expressing what this guard adds over o.
func (g Guard) Difference(o Guard) Guard {
	i := commonPrefixLen(g.conjuncts, o.conjuncts)
	tail := make([]*ir.Term, len(g.conjuncts)-i)
	copy(tail, g.conjuncts[i:])
	return Guard{conjuncts: tail}
}

// Join computes the "or" update: the common prefix of the two guards is
// kept, and the two tails t1/t2 are combined as t1 ∨ t2 and appended,
// unless either tail is empty (already true), in which case the tail is
// dropped entirely — join(g, g)==g falls out of this directly. A false
// guard carries a constant-false conjunct; when it sits in a tail, the
// Simplify call below folds that tail's conjunction to false and the OR
// to the other tail, so join(g, false)==g holds without callers
// special-casing IsFalse (mergeInto in merge.go calls Join as is).
func (g Guard) Join(ctx *ir.Context, o Guard) Guard {
	i := commonPrefixLen(g.conjuncts, o.conjuncts)
	prefix := g.conjuncts[:i]
	t1 := g.conjuncts[i:]
	t2 := o.conjuncts[i:]
	if len(t1) == 0 || len(t2) == 0 {
		out := make([]*ir.Term, len(prefix))
		copy(out, prefix)
		return Guard{conjuncts: out}
	}
	e1 := conjunctsExpr(ctx, t1)
	e2 := conjunctsExpr(ctx, t2)
	orExpr := ir.Simplify(ctx, ir.Or(ctx, e1, e2))
	out := make([]*ir.Term, 0, len(prefix)+1)
	out = append(out, prefix...)
	out = Guard{conjuncts: out}.Add(ctx, orExpr).conjuncts
	return Guard{conjuncts: out}
}

func conjunctsExpr(ctx *ir.Context, conjuncts []*ir.Term) *ir.Term {
	if len(conjuncts) == 0 {
		return ctx.True()
	}
	e := conjuncts[0]
	for _, c := range conjuncts[1:] {
		e = ir.And(ctx, e, c)
	}
	return e
}

func commonPrefixLen(a, b []*ir.Term) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i].Equal(b[i]) {
		i++
	}
	return i
}

// Clone returns a Guard usable independently of g: since the backing
// slice is never mutated after construction (Add/Join always allocate a
// fresh slice), sharing the slice header is safe and this is just here
// for readability at call sites that clone a whole PathState.
func (g Guard) Clone() Guard { return g }
