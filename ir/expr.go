package ir

// This file collects the expression constructors. Every constructor
// enforces the §3 invariant "every expression carries a type" and, where
// the invariant says operand types must agree, panics on a mismatch: a
// mismatched type here means the producer (goto-conversion, out of
// scope) built an ill-typed term, which is exactly the "ill-typed term"
// fatal condition of §7 — it is a programming error in this repository's
// caller, not a runtime condition to recover from.

func mustSameType(kind string, a, b *Term) *Type {
	if !a.typ.Equal(b.typ) {
		panic("ir: " + kind + ": operand type mismatch")
	}
	return a.typ
}

// ConstInt builds an integer constant of the given bitvector type.
func ConstInt(ctx *Context, v int64, typ *Type) *Term {
	return ctx.SmallInt(v, typ)
}

// ConstFixed builds a fixed-point bitvector constant from its raw bit
// pattern (interpreted against typ's integer-bit count).
func ConstFixed(ctx *Context, raw int64, typ *Type) *Term {
	return ctx.Intern(newTerm(TagConstFixed, typ, nil, nil, intData{raw}))
}

func ConstBool(ctx *Context, v bool) *Term { return ctx.BoolConst(v) }

func ConstString(ctx *Context, s string, typ *Type) *Term {
	return ctx.Intern(newTerm(TagConstString, typ, nil, nil, stringData{s}))
}

// ConstStruct/ConstUnion build aggregate literals from field values, in
// declaration order.
func ConstStruct(ctx *Context, typ *Type, fields []*Term) *Term {
	return ctx.Intern(newTerm(TagConstStruct, typ, fields, nil, nil))
}

func ConstUnion(ctx *Context, typ *Type, active *Term) *Term {
	return ctx.Intern(newTerm(TagConstUnion, typ, []*Term{active}, nil, nil))
}

func ConstArray(ctx *Context, typ *Type, elems []*Term) *Term {
	return ctx.Intern(newTerm(TagConstArray, typ, elems, nil, nil))
}

// ConstArrayOf builds an array-of-constant term: an array where every
// element equals fill, of the given logical size.
func ConstArrayOf(ctx *Context, typ *Type, fill *Term, size int64) *Term {
	return ctx.Intern(newTerm(TagConstArrayOf, typ, []*Term{fill}, nil, constArrayOfData{size}))
}

// Symbol builds an L0 symbol: the source identifier alone, no renaming
// numbers meaningful yet.
func Symbol(ctx *Context, name string, typ *Type) *Term {
	return ctx.Intern(newTerm(TagSymbol, typ, nil, nil, symbolData{name: name, level: L0}))
}

// SymbolL1 attaches an activation number to a symbol (§4.3 L1 renaming).
func SymbolL1(ctx *Context, name string, typ *Type, l1 int) *Term {
	return ctx.Intern(newTerm(TagSymbol, typ, nil, nil, symbolData{name: name, level: L1, l1: l1}))
}

// SymbolL2 attaches both an activation and an SSA number (§4.3 L2
// renaming); threadID/nodeID default to 0 for single-threaded paths.
func SymbolL2(ctx *Context, name string, typ *Type, l1, l2, threadID, nodeID int) *Term {
	return ctx.Intern(newTerm(TagSymbol, typ, nil, nil, symbolData{
		name: name, level: L2, l1: l1, l2: l2, threadID: threadID, nodeID: nodeID,
	}))
}

func binArith(ctx *Context, tag Tag, kind string, a, b *Term) *Term {
	typ := mustSameType(kind, a, b)
	return ctx.Intern(newTerm(tag, typ, []*Term{a, b}, nil, nil))
}

func Add(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagAdd, "add", a, b) }
func Sub(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagSub, "sub", a, b) }
func Mul(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagMul, "mul", a, b) }
func Div(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagDiv, "div", a, b) }
func Mod(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagMod, "mod", a, b) }

func BitAnd(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagBitAnd, "bitand", a, b) }
func BitOr(ctx *Context, a, b *Term) *Term  { return binArith(ctx, TagBitOr, "bitor", a, b) }
func BitXor(ctx *Context, a, b *Term) *Term { return binArith(ctx, TagBitXor, "bitxor", a, b) }
func Shl(ctx *Context, a, b *Term) *Term    { return binArith(ctx, TagShl, "shl", a, b) }
func Shr(ctx *Context, a, b *Term) *Term    { return binArith(ctx, TagShr, "shr", a, b) }

func Neg(ctx *Context, a *Term) *Term {
	return ctx.Intern(newTerm(TagNeg, a.typ, []*Term{a}, nil, nil))
}

func BitNot(ctx *Context, a *Term) *Term {
	return ctx.Intern(newTerm(TagBitNot, a.typ, []*Term{a}, nil, nil))
}

func relational(ctx *Context, tag Tag, kind string, a, b *Term) *Term {
	mustSameType(kind, a, b)
	return ctx.Intern(newTerm(tag, ctx.boolT, []*Term{a, b}, nil, nil))
}

func Eq(ctx *Context, a, b *Term) *Term    { return relational(ctx, TagEq, "eq", a, b) }
func NotEq(ctx *Context, a, b *Term) *Term { return relational(ctx, TagNotEq, "notequal", a, b) }
func Lt(ctx *Context, a, b *Term) *Term    { return relational(ctx, TagLt, "lt", a, b) }
func Le(ctx *Context, a, b *Term) *Term    { return relational(ctx, TagLe, "le", a, b) }
func Gt(ctx *Context, a, b *Term) *Term    { return relational(ctx, TagGt, "gt", a, b) }
func Ge(ctx *Context, a, b *Term) *Term    { return relational(ctx, TagGe, "ge", a, b) }

// And/Or/Not are the boolean connectives; operands and result are all
// TyBool.
func And(ctx *Context, a, b *Term) *Term {
	return ctx.Intern(newTerm(TagAnd, ctx.boolT, []*Term{a, b}, nil, nil))
}

func Or(ctx *Context, a, b *Term) *Term {
	return ctx.Intern(newTerm(TagOr, ctx.boolT, []*Term{a, b}, nil, nil))
}

func Not(ctx *Context, a *Term) *Term {
	return ctx.Intern(newTerm(TagNot, ctx.boolT, []*Term{a}, nil, nil))
}

func Implies(ctx *Context, a, b *Term) *Term {
	return ctx.Intern(newTerm(TagImplies, ctx.boolT, []*Term{a, b}, nil, nil))
}

// Typecast reinterprets/converts e to target.
func Typecast(ctx *Context, e *Term, target *Type) *Term {
	return ctx.Intern(newTerm(TagTypecast, target, []*Term{e}, []*Type{e.typ}, nil))
}

// IfThenElse requires cond to be boolean and the two branches to share a
// type, which becomes the result type.
func IfThenElse(ctx *Context, cond, t, f *Term) *Term {
	if !cond.typ.Equal(ctx.boolT) {
		panic("ir: if-then-else: condition must be boolean")
	}
	typ := mustSameType("if-then-else", t, f)
	return ctx.Intern(newTerm(TagIfThenElse, typ, []*Term{cond, t, f}, nil, nil))
}

func AddressOf(ctx *Context, operand *Term) *Term {
	return ctx.Intern(newTerm(TagAddressOf, PointerType(operand.typ), []*Term{operand}, nil, nil))
}

func PointerOffset(ctx *Context, ptr *Term, offsetType *Type) *Term {
	return ctx.Intern(newTerm(TagPointerOffset, offsetType, []*Term{ptr}, nil, nil))
}

func PointerObject(ctx *Context, ptr *Term, objType *Type) *Term {
	return ctx.Intern(newTerm(TagPointerObject, objType, []*Term{ptr}, nil, nil))
}

func SameObject(ctx *Context, a, b *Term) *Term {
	return ctx.Intern(newTerm(TagSameObject, ctx.boolT, []*Term{a, b}, nil, nil))
}

// Dereference yields elem's type for a pointer to elem.
func Dereference(ctx *Context, ptr *Term) *Term {
	if ptr.typ.Tag() != TyPointer {
		panic("ir: dereference of non-pointer type")
	}
	return ctx.Intern(newTerm(TagDereference, ptr.typ.Elem(), []*Term{ptr}, nil, nil))
}

func DynamicObject(ctx *Context, ptr *Term) *Term {
	return ctx.Intern(newTerm(TagDynamicObject, ctx.boolT, []*Term{ptr}, nil, nil))
}

func InvalidPointer(ctx *Context, ptr *Term) *Term {
	return ctx.Intern(newTerm(TagInvalidPointer, ctx.boolT, []*Term{ptr}, nil, nil))
}

func NullObject(ctx *Context, typ *Type) *Term {
	return ctx.Intern(newTerm(TagNullObject, typ, nil, nil, nil))
}

// ByteExtract reads width(resultType) bytes out of composite starting at
// offset, honoring endian.
func ByteExtract(ctx *Context, composite, offset *Term, resultType *Type, endian Endianness) *Term {
	return ctx.Intern(newTerm(TagByteExtract, resultType, []*Term{composite, offset}, nil, byteData{endian}))
}

func ByteUpdate(ctx *Context, composite, offset, value *Term, endian Endianness) *Term {
	return ctx.Intern(newTerm(TagByteUpdate, composite.typ, []*Term{composite, offset, value}, nil, byteData{endian}))
}

// With performs a functional update: "with base[selector] := value", used
// to expand struct/array/index/member stores into a new whole-object
// value (§4.4 assignment expansion).
func With(ctx *Context, base, selector, value *Term) *Term {
	return ctx.Intern(newTerm(TagWith, base.typ, []*Term{base, selector, value}, nil, nil))
}

func Member(ctx *Context, base *Term, field string) *Term {
	typ, ok := base.typ.Field(field)
	if !ok {
		panic("ir: member: no such field " + field)
	}
	return ctx.Intern(newTerm(TagMember, typ, []*Term{base}, nil, memberData{field}))
}

// MemberSelector builds the bare selector term With expects as its second
// argument when expanding a struct-field store into a functional update
// (§4.4 assignment expansion). It carries no children and an empty type:
// it is never evaluated on its own, only pattern-matched by
// simplifyMember/simplifyIndex.
func MemberSelector(ctx *Context, field string) *Term {
	return ctx.Intern(newTerm(TagMember, EmptyType(), nil, nil, memberData{field}))
}

func Index(ctx *Context, base, index *Term) *Term {
	if base.typ.Tag() != TyArray {
		panic("ir: index: base is not an array")
	}
	return ctx.Intern(newTerm(TagIndex, base.typ.Elem(), []*Term{base, index}, nil, nil))
}

func overflow(ctx *Context, tag Tag, operands []*Term) *Term {
	return ctx.Intern(newTerm(tag, ctx.boolT, operands, nil, nil))
}

func OverflowAdd(ctx *Context, a, b *Term) *Term  { return overflow(ctx, TagOverflowAdd, []*Term{a, b}) }
func OverflowSub(ctx *Context, a, b *Term) *Term  { return overflow(ctx, TagOverflowSub, []*Term{a, b}) }
func OverflowMul(ctx *Context, a, b *Term) *Term  { return overflow(ctx, TagOverflowMul, []*Term{a, b}) }
func OverflowNeg(ctx *Context, a *Term) *Term     { return overflow(ctx, TagOverflowNeg, []*Term{a}) }

// OverflowCast checks whether e overflows when cast to target's width.
func OverflowCast(ctx *Context, e *Term, target *Type) *Term {
	return ctx.Intern(newTerm(TagOverflowCast, ctx.boolT, []*Term{e}, []*Type{target}, nil))
}

func IsNan(ctx *Context, e *Term) *Term    { return overflow(ctx, TagIsNan, []*Term{e}) }
func IsInf(ctx *Context, e *Term) *Term    { return overflow(ctx, TagIsInf, []*Term{e}) }
func IsNormal(ctx *Context, e *Term) *Term { return overflow(ctx, TagIsNormal, []*Term{e}) }

func Concat(ctx *Context, typ *Type, parts []*Term) *Term {
	return ctx.Intern(newTerm(TagConcat, typ, parts, nil, nil))
}

// SideEffect models allocation-producing expressions: malloc/new/new[]
// (heap), a stack-local temporary, or a nondeterministic value.
func SideEffect(ctx *Context, typ *Type, kind SideEffectKind, operands []*Term) *Term {
	return ctx.Intern(newTerm(TagSideEffect, typ, operands, nil, sideEffectData{kind}))
}

// --- statement-level sub-language ---
//
// These are IR-level structured-statement terms (§3): the goto-program
// Instruction stream the engine actually walks (ir/program.go) is a
// lowering of code like this, produced by goto-conversion (out of
// scope). They exist here for data-model completeness and are consumed
// only incidentally by the engine (e.g. a TagFunctionCall term can be an
// Instruction operand carrying the call's target and arguments).

func Block(ctx *Context, stmts []*Term) *Term {
	return ctx.Intern(newTerm(TagBlock, CodeType(), stmts, nil, nil))
}

func StmtAssign(ctx *Context, lhs, rhs *Term) *Term {
	return ctx.Intern(newTerm(TagAssign, CodeType(), []*Term{lhs, rhs}, nil, nil))
}

func StmtInit(ctx *Context, lhs, rhs *Term) *Term {
	return ctx.Intern(newTerm(TagInit, CodeType(), []*Term{lhs, rhs}, nil, nil))
}

func StmtDecl(ctx *Context, symbol *Term) *Term {
	return ctx.Intern(newTerm(TagDecl, CodeType(), []*Term{symbol}, nil, nil))
}

func StmtPrintf(ctx *Context, format *Term, args []*Term) *Term {
	return ctx.Intern(newTerm(TagPrintf, CodeType(), append([]*Term{format}, args...), nil, nil))
}

func StmtReturn(ctx *Context, value *Term) *Term {
	if value == nil {
		return ctx.Intern(newTerm(TagReturn, CodeType(), nil, nil, nil))
	}
	return ctx.Intern(newTerm(TagReturn, CodeType(), []*Term{value}, nil, nil))
}

func StmtSkip(ctx *Context) *Term {
	return ctx.Intern(newTerm(TagSkip, CodeType(), nil, nil, nil))
}

func StmtFree(ctx *Context, ptr *Term) *Term {
	return ctx.Intern(newTerm(TagFree, CodeType(), []*Term{ptr}, nil, nil))
}

func StmtGoto(ctx *Context, cond *Term) *Term {
	if cond == nil {
		return ctx.Intern(newTerm(TagGoto, CodeType(), nil, nil, nil))
	}
	return ctx.Intern(newTerm(TagGoto, CodeType(), []*Term{cond}, nil, nil))
}

func StmtFunctionCall(ctx *Context, lhs, function *Term, args []*Term) *Term {
	operands := []*Term{function}
	if lhs != nil {
		operands = append([]*Term{lhs}, operands...)
	}
	operands = append(operands, args...)
	return ctx.Intern(newTerm(TagFunctionCall, CodeType(), operands, nil, nil))
}

func StmtThrowDecl(ctx *Context, types []*Type) *Term {
	return ctx.Intern(newTerm(TagThrowDecl, CodeType(), nil, types, nil))
}

func StmtCatchDecl(ctx *Context, types []*Type) *Term {
	return ctx.Intern(newTerm(TagCatchDecl, CodeType(), nil, types, nil))
}
