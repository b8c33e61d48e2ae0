package engine

import "github.com/gotosym/symex/ir"

// emitAssignment is the single path every Assignment record goes through
// (§6's tuple-node-flattener / tuple-sym-flattener row): a struct or
// fixed-size array typed write is decomposed into one record per leaf
// field/element rather than recorded as a single composite value,
// because a downstream consumer walking the sink (such as pkg/report)
// wants scalar equations, not nested ones. TupleNodeFlattener/TupleSymFlattener, when set, get a last look at
// each leaf's value/symbol term before it is recorded; nil keeps the
// leaf term as-is.
func (e *Engine) emitAssignment(guard, newLhs, oldLhs, rhs *ir.Term, loc ir.Location, stack []string, vis Visibility) {
	typ := newLhs.Type()
	switch typ.Tag() {
	case ir.TyStruct, ir.TyUnion:
		for _, f := range typ.Fields() {
			fNewLhs := ir.Member(e.Ctx, newLhs, f.Name)
			fOldLhs := ir.Member(e.Ctx, oldLhs, f.Name)
			fRhs := ir.Simplify(e.Ctx, ir.Member(e.Ctx, rhs, f.Name))
			e.emitAssignment(guard, fNewLhs, fOldLhs, fRhs, loc, stack, vis)
		}
		return

	case ir.TyArray:
		if n, ok := arrayLen(typ); ok {
			for i := int64(0); i < n; i++ {
				idx := ir.ConstInt(e.Ctx, i, ir.SignedBVType(64))
				iNewLhs := ir.Index(e.Ctx, newLhs, idx)
				iOldLhs := ir.Index(e.Ctx, oldLhs, idx)
				iRhs := ir.Simplify(e.Ctx, ir.Index(e.Ctx, rhs, idx))
				e.emitAssignment(guard, iNewLhs, iOldLhs, iRhs, loc, stack, vis)
			}
			return
		}
		// Unknown-size array: no per-element decomposition possible, fall
		// through and record it as a single leaf.
	}

	if f := e.Opts.TupleSymFlattener; f != nil {
		newLhs, oldLhs = f(newLhs), f(oldLhs)
	}
	if f := e.Opts.TupleNodeFlattener; f != nil {
		rhs = f(rhs)
	}
	e.Sink.Assignment(guard, newLhs, oldLhs, rhs, loc, stack, vis)
}

func arrayLen(t *ir.Type) (int64, bool) {
	if t.Infinite() {
		return 0, false
	}
	size := t.SizeExpr()
	if size == nil {
		return 0, false
	}
	return size.IntValue()
}
