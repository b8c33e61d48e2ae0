package ir

// Simplify rewrites e bottom-up, applying algebraic identities and
// constant folding (§4.1). It is idempotent: Simplify(Simplify(e)) ==
// Simplify(e), because every rule either leaves a term alone or produces
// a strictly "simpler" term (fewer nodes, or a constant) that no further
// rule in this function fires on again — verified by the idempotence
// property test in simplify_test.go.
func Simplify(ctx *Context, e *Term) *Term {
	if e == nil {
		return nil
	}
	if len(e.children) == 0 {
		return e
	}

	children := make([]*Term, len(e.children))
	changed := false
	for i, c := range e.children {
		sc := Simplify(ctx, c)
		children[i] = sc
		if sc != c {
			changed = true
		}
	}
	cur := e
	if changed {
		cur = newTerm(e.tag, e.typ, children, e.types, e.data)
	}

	return simplifyTop(ctx, cur)
}

// simplifyTop applies the tag-specific rewrite to a term whose children
// are already simplified.
func simplifyTop(ctx *Context, e *Term) *Term {
	switch e.tag {
	case TagAdd:
		return simplifyAdd(ctx, e)
	case TagSub:
		return simplifySub(ctx, e)
	case TagMul:
		return simplifyMul(ctx, e)
	case TagDiv:
		return simplifyDivMod(ctx, e, true)
	case TagMod:
		return simplifyDivMod(ctx, e, false)
	case TagBitAnd, TagBitOr, TagBitXor, TagShl, TagShr:
		return simplifyBitwise(ctx, e)
	case TagNeg:
		return simplifyNeg(ctx, e)
	case TagBitNot:
		return simplifyBitNot(ctx, e)
	case TagEq, TagNotEq, TagLt, TagLe, TagGt, TagGe:
		return simplifyRelational(ctx, e)
	case TagAnd:
		return simplifyAnd(ctx, e)
	case TagOr:
		return simplifyOr(ctx, e)
	case TagNot:
		return simplifyNot(ctx, e)
	case TagImplies:
		return simplifyImplies(ctx, e)
	case TagTypecast:
		return simplifyTypecast(ctx, e)
	case TagIfThenElse:
		return simplifyIfThenElse(ctx, e)
	case TagByteExtract:
		return simplifyByteExtract(ctx, e)
	case TagWith:
		return e // With folds only when consumed by Member/Index; see simplifyMember/simplifyIndex.
	case TagMember:
		return simplifyMember(ctx, e)
	case TagIndex:
		return simplifyIndex(ctx, e)
	default:
		return e
	}
}

func asInt(e *Term) (int64, bool) { return e.IntValue() }
func asBool(e *Term) (bool, bool) { return e.BoolValue() }

// wrap applies modular arithmetic for bounded integer types, per §8
// property 3 ("modular arithmetic for bounded integers").
func wrap(v int64, typ *Type) int64 {
	width := typ.Width()
	if width <= 0 || width >= 64 {
		return v
	}
	mask := int64(1)<<uint(width) - 1
	v &= mask
	if typ.Tag() == TySignedBV {
		signBit := int64(1) << uint(width-1)
		if v&signBit != 0 {
			v -= mask + 1
		}
	}
	return v
}

func simplifyAdd(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asInt(a); ok {
		if av == 0 {
			return b
		}
		if bv, ok := asInt(b); ok {
			return ConstInt(ctx, wrap(av+bv, e.typ), e.typ)
		}
	}
	if bv, ok := asInt(b); ok && bv == 0 {
		return a
	}
	return e
}

func simplifySub(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asInt(a); ok {
		if bv, ok := asInt(b); ok {
			return ConstInt(ctx, wrap(av-bv, e.typ), e.typ)
		}
	}
	if bv, ok := asInt(b); ok && bv == 0 {
		return a
	}
	return e
}

func simplifyMul(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asInt(a); ok {
		if av == 0 {
			return ConstInt(ctx, 0, e.typ)
		}
		if av == 1 {
			return b
		}
		if bv, ok := asInt(b); ok {
			return ConstInt(ctx, wrap(av*bv, e.typ), e.typ)
		}
	}
	if bv, ok := asInt(b); ok {
		if bv == 0 {
			return ConstInt(ctx, 0, e.typ)
		}
		if bv == 1 {
			return a
		}
	}
	return e
}

func simplifyDivMod(ctx *Context, e *Term, isDiv bool) *Term {
	a, b := e.children[0], e.children[1]
	av, aok := asInt(a)
	bv, bok := asInt(b)
	if !aok || !bok || bv == 0 {
		if bok && bv == 1 && isDiv {
			return a
		}
		return e
	}
	if isDiv {
		return ConstInt(ctx, wrap(av/bv, e.typ), e.typ)
	}
	return ConstInt(ctx, wrap(av%bv, e.typ), e.typ)
}

func simplifyBitwise(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	av, aok := asInt(a)
	bv, bok := asInt(b)
	if !aok || !bok {
		return e
	}
	var r int64
	switch e.tag {
	case TagBitAnd:
		r = av & bv
	case TagBitOr:
		r = av | bv
	case TagBitXor:
		r = av ^ bv
	case TagShl:
		r = av << uint(bv)
	case TagShr:
		r = av >> uint(bv)
	}
	return ConstInt(ctx, wrap(r, e.typ), e.typ)
}

func simplifyNeg(ctx *Context, e *Term) *Term {
	a := e.children[0]
	if av, ok := asInt(a); ok {
		return ConstInt(ctx, wrap(-av, e.typ), e.typ)
	}
	return e
}

func simplifyBitNot(ctx *Context, e *Term) *Term {
	a := e.children[0]
	if av, ok := asInt(a); ok {
		return ConstInt(ctx, wrap(^av, e.typ), e.typ)
	}
	return e
}

func simplifyRelational(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asInt(a); ok {
		if bv, ok := asInt(b); ok {
			return ctx.BoolConst(evalIntRelational(e.tag, av, bv))
		}
	}
	if av, ok := asBool(a); ok {
		if bv, ok := asBool(b); ok {
			switch e.tag {
			case TagEq:
				return ctx.BoolConst(av == bv)
			case TagNotEq:
				return ctx.BoolConst(av != bv)
			}
		}
	}
	if av, ok := a.StringValue(); ok {
		if bv, ok := b.StringValue(); ok {
			switch e.tag {
			case TagEq:
				return ctx.BoolConst(av == bv)
			case TagNotEq:
				return ctx.BoolConst(av != bv)
			}
		}
	}
	// x == x / x != x, structural shortcut.
	if e.tag == TagEq && a.Equal(b) {
		return ctx.True()
	}
	if e.tag == TagNotEq && a.Equal(b) {
		return ctx.False()
	}
	return e
}

func evalIntRelational(tag Tag, a, b int64) bool {
	switch tag {
	case TagEq:
		return a == b
	case TagNotEq:
		return a != b
	case TagLt:
		return a < b
	case TagLe:
		return a <= b
	case TagGt:
		return a > b
	case TagGe:
		return a >= b
	}
	return false
}

func simplifyAnd(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asBool(a); ok {
		if !av {
			return ctx.False()
		}
		return b
	}
	if bv, ok := asBool(b); ok {
		if !bv {
			return ctx.False()
		}
		return a
	}
	if a.Equal(b) {
		return a
	}
	if isNegationOf(a, b) {
		return ctx.False()
	}
	return e
}

func simplifyOr(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asBool(a); ok {
		if av {
			return ctx.True()
		}
		return b
	}
	if bv, ok := asBool(b); ok {
		if bv {
			return ctx.True()
		}
		return a
	}
	if a.Equal(b) {
		return a
	}
	if isNegationOf(a, b) {
		return ctx.True()
	}
	return e
}

// isNegationOf reports whether a and b are literally Not of each other
// (either direction) — the two guard tails synthesized at a fork's join
// point commonly take this exact shape (gamma vs Not(gamma)).
func isNegationOf(a, b *Term) bool {
	if a.tag == TagNot && a.children[0].Equal(b) {
		return true
	}
	if b.tag == TagNot && b.children[0].Equal(a) {
		return true
	}
	return false
}

func simplifyNot(ctx *Context, e *Term) *Term {
	a := e.children[0]
	if av, ok := asBool(a); ok {
		return ctx.BoolConst(!av)
	}
	if a.tag == TagNot {
		return a.children[0]
	}
	return e
}

func simplifyImplies(ctx *Context, e *Term) *Term {
	a, b := e.children[0], e.children[1]
	if av, ok := asBool(a); ok {
		if !av {
			return ctx.True()
		}
		return b
	}
	if bv, ok := asBool(b); ok && bv {
		return ctx.True()
	}
	return e
}

func simplifyTypecast(ctx *Context, e *Term) *Term {
	inner := e.children[0]
	if inner.typ.Equal(e.typ) {
		return inner
	}
	if inner.tag == TagTypecast {
		return Simplify(ctx, Typecast(ctx, inner.children[0], e.typ))
	}
	switch e.typ.Tag() {
	case TyUnsignedBV, TySignedBV:
		if v, ok := asInt(inner); ok {
			return ConstInt(ctx, wrap(v, e.typ), e.typ)
		}
		if v, ok := asBool(inner); ok {
			if v {
				return ConstInt(ctx, 1, e.typ)
			}
			return ConstInt(ctx, 0, e.typ)
		}
	case TyBool:
		if v, ok := asInt(inner); ok {
			return ctx.BoolConst(v != 0)
		}
	}
	return e
}

func simplifyIfThenElse(ctx *Context, e *Term) *Term {
	cond, t, f := e.children[0], e.children[1], e.children[2]
	if cv, ok := asBool(cond); ok {
		if cv {
			return t
		}
		return f
	}
	if t.Equal(f) {
		return t
	}
	return e
}

// simplifyByteExtract folds extraction from a constant composite (§4.1).
// Only the array-of-bytes shape is folded; struct/union byte layouts are
// left to the (out-of-scope) backend.
func simplifyByteExtract(ctx *Context, e *Term) *Term {
	composite, offset := e.children[0], e.children[1]
	off, ok := asInt(offset)
	if !ok {
		return e
	}
	if composite.tag != TagConstArray {
		return e
	}
	idx := off
	if e.Endianness() == BigEndian {
		idx = int64(len(composite.children)) - 1 - off
	}
	if idx < 0 || idx >= int64(len(composite.children)) {
		return e
	}
	elem := composite.children[idx]
	if elem.typ.Equal(e.typ) {
		return elem
	}
	return e
}

// simplifyMember folds "with(base, field, v).field" to v, and otherwise
// projects a constant struct's field.
func simplifyMember(ctx *Context, e *Term) *Term {
	base := e.children[0]
	field := e.Ident()
	if base.tag == TagWith {
		selector := base.children[1]
		if name, ok := selector.data.(memberData); ok && name.name == field {
			return base.children[2]
		}
		// Different field: the with is irrelevant to this projection,
		// recurse into its base (still sound and strictly simpler).
		return Simplify(ctx, Member(ctx, base.children[0], field))
	}
	if base.tag == TagConstStruct {
		for i, f := range base.typ.Fields() {
			if f.Name == field && i < len(base.children) {
				return base.children[i]
			}
		}
	}
	return e
}

// simplifyIndex folds "with(base, i, v)[j]" to v when i==j is known
// statically, and otherwise projects a constant array.
func simplifyIndex(ctx *Context, e *Term) *Term {
	base, index := e.children[0], e.children[1]
	if base.tag == TagWith {
		selector := base.children[1]
		if iv, ok := asInt(index); ok {
			if sv, ok := asInt(selector); ok {
				if iv == sv {
					return base.children[2]
				}
				return Simplify(ctx, Index(ctx, base.children[0], index))
			}
		}
		if selector.Equal(index) {
			return base.children[2]
		}
	}
	if base.tag == TagConstArray {
		if iv, ok := asInt(index); ok && iv >= 0 && iv < int64(len(base.children)) {
			return base.children[iv]
		}
	}
	if base.tag == TagConstArrayOf {
		return base.children[0]
	}
	return e
}
