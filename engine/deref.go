package engine

import "github.com/gotosym/symex/ir"

// execDereferenceAssign implements S5's expansion: a store through a
// pointer whose value-set names more than one possible object turns
// into one assignment per candidate, each additionally guarded by a
// same-object discriminator built the same way goto forking builds its
// branch discriminators (§4.5) — reusing that mechanism rather than
// inventing a second one for pointers. It also records the store's
// validity claim (§7's "invalid dereference" surfaces here, as a claim,
// never as a Fatal).
func (e *Engine) execDereferenceAssign(state *PathState, ptrRenamed, valueRenamed *ir.Term, loc ir.Location, stack []string) error {
	name, ok := pointerIdentifier(ptrRenamed)
	if !ok {
		return fatalf(state.Function, state.PC, "dereference target is not a resolvable lvalue")
	}

	notInvalid := ir.Simplify(e.Ctx, ir.Not(e.Ctx, ir.InvalidPointer(e.Ctx, ptrRenamed)))
	e.Sink.Assertion(state.Guard.AsExpression(e.Ctx), notInvalid, "dereference validity", loc, stack)

	targets := state.ValueSet.Get(name)
	if len(targets) == 0 {
		e.Log.Warnf("dereference of %s: empty value-set, no assignment target known", name)
		return nil
	}

	elemType := ptrRenamed.Type().Elem()
	for _, target := range targets {
		targetType, ok := state.Renaming.typeOf(target)
		if !ok {
			targetType = elemType
		}
		curTargetVal := state.Renaming.RenameRead(e.Ctx, ir.Symbol(e.Ctx, target, targetType))
		addr := ir.AddressOf(e.Ctx, curTargetVal)
		discriminator := ir.Simplify(e.Ctx, ir.SameObject(e.Ctx, ptrRenamed, addr))
		branchGuard := state.Guard.Add(e.Ctx, discriminator)
		if branchGuard.IsFalse() {
			continue
		}
		newLhs, oldLhs := state.Renaming.RenameWrite(e.Ctx, target, targetType)
		e.emitAssignment(branchGuard.AsExpression(e.Ctx), newLhs, oldLhs, valueRenamed, loc, stack, Visible)
	}
	return nil
}

func pointerIdentifier(t *ir.Term) (string, bool) {
	if t.Tag() == ir.TagSymbol {
		return t.Ident(), true
	}
	return "", false
}
