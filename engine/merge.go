package engine

import "github.com/gotosym/symex/ir"

// mergeInto folds a parked GotoState into the currently-executing state
// at a join point (§4.5 Merge). It mutates cur in place: cur is always
// the sole owner of its own fields (nothing else holds a reference to
// them), so there is nothing to protect by returning a new value.
func (e *Engine) mergeInto(cur *PathState, pending *GotoState, loc ir.Location, stack []string) {
	names := cur.Renaming.DiffNames(pending.Renaming)
	curFalse := cur.Guard.IsFalse()
	pendFalse := pending.Guard.IsFalse()

	e.Log.With(map[string]any{
		"function": cur.Function,
		"pc":       cur.PC,
		"phi_vars": len(names),
	}).Debugf("merging parked goto state")

	for _, name := range names {
		l1c, okc := cur.Renaming.CurrentL1(name)
		l1p, okp := pending.Renaming.CurrentL1(name)
		if !okc || !okp || l1c != l1p {
			if e.Opts.LogPhiSkips {
				e.Log.Warnf("phi: skipping %s: missing activation or activation mismatch (cur=%d/%v pending=%d/%v)", name, l1c, okc, l1p, okp)
			}
			continue
		}
		typ, ok := cur.Renaming.typeOf(name)
		if !ok {
			typ, ok = pending.Renaming.typeOf(name)
		}
		if !ok {
			continue
		}

		curVal := ir.SymbolL2(e.Ctx, name, typ, l1c, cur.Renaming.l2[name], 0, 0)
		pendVal := ir.SymbolL2(e.Ctx, name, typ, l1p, pending.Renaming.l2[name], 0, 0)
		if curVal.Equal(pendVal) {
			continue
		}

		// Either dead side of the fork contributes nothing: the joined
		// value is just the other side's, mathematically ite(_, dead,
		// live) == live. Still mint a fresh L2 for cur rather than
		// aliasing pending's number directly — cur's L2 counter must
		// stay monotonic, or a later write on cur's own line of
		// execution could collide with a value a sibling branch wrote
		// under the same (l1, l2) pair.
		var value *ir.Term
		switch {
		case curFalse:
			value = pendVal
		case pendFalse:
			value = curVal
		default:
			delta := pending.Guard.Difference(cur.Guard)
			value = ir.Simplify(e.Ctx, ir.IfThenElse(e.Ctx, delta.AsExpression(e.Ctx), pendVal, curVal))
		}
		newLhs, oldLhs := cur.Renaming.RenameWrite(e.Ctx, name, typ)
		e.emitAssignment(e.Ctx.True(), newLhs, oldLhs, value, loc, stack, Hidden)
	}

	if curFalse {
		cur.ValueSet = pending.ValueSet.Clone()
	} else if !pendFalse {
		cur.ValueSet = cur.ValueSet.Join(pending.ValueSet)
	}

	cur.Guard = cur.Guard.Join(e.Ctx, pending.Guard)
	if pending.Depth < cur.Depth {
		cur.Depth = pending.Depth
	}
}

// drainMerges folds every pending GotoState parked at cur's current pc
// (within its current frame) into cur, in reverse insertion order, and
// clears the entry.
func (e *Engine) drainMerges(cur *PathState, loc ir.Location, stack []string) {
	frame := cur.topFrame()
	pending, ok := frame.GotoStateMap[cur.PC]
	if !ok {
		return
	}
	for i := len(pending) - 1; i >= 0; i-- {
		e.mergeInto(cur, pending[i], loc, stack)
	}
	delete(frame.GotoStateMap, cur.PC)
}
