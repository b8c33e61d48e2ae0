package engine

import (
	"strconv"

	"github.com/gotosym/symex/ir"
)

// step dispatches on instr.Kind (§4.4's "the loop repeatedly reads *pc
// and dispatches"). It returns done=true once execution of the whole
// program is complete (the outermost frame has ended).
func (e *Engine) step(state *PathState, instr *ir.Instruction, loc ir.Location, stack []string) (bool, error) {
	switch instr.Kind {
	case ir.KindSkip:
		state.PC++

	case ir.KindDecl:
		frame := state.topFrame()
		state.Renaming.BindActivation(instr.Lhs.Ident(), instr.Lhs.Type(), frame.L1)
		state.PC++

	case ir.KindAssign:
		if err := e.execAssign(state, instr, loc, stack); err != nil {
			return false, err
		}
		state.PC++

	case ir.KindFunctionCall:
		if err := e.execCall(state, instr, loc, stack); err != nil {
			return false, err
		}

	case ir.KindFunctionReturn:
		var retExpr *ir.Term
		if len(instr.Args) > 0 {
			retExpr = instr.Args[0]
		}
		return e.execReturnValue(state, retExpr, loc, stack)

	case ir.KindGoto:
		if err := e.execGoto(state, instr, loc, stack); err != nil {
			return false, err
		}

	case ir.KindAssume:
		cond := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, instr.Args[0]))
		e.Sink.Assumption(state.Guard.AsExpression(e.Ctx), cond, loc, stack)
		if v, ok := cond.BoolValue(); ok && !v {
			state.Guard = state.Guard.Add(e.Ctx, e.Ctx.False())
		}
		state.PC++

	case ir.KindAssert:
		cond := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, instr.Args[0]))
		e.Sink.Assertion(state.Guard.AsExpression(e.Ctx), cond, instr.Message, loc, stack)
		state.PC++

	case ir.KindAtomicBegin:
		e.Sink.AtomicBegin(state.Guard.AsExpression(e.Ctx), loc, stack)
		state.PC++

	case ir.KindAtomicEnd:
		e.Sink.AtomicEnd(state.Guard.AsExpression(e.Ctx), loc, stack)
		state.PC++

	case ir.KindThrow:
		// No cross-frame exception unwinding: propagate to the current
		// function's end and let its caller's own control flow continue
		// from there. A full exception model would walk enclosing
		// KindCatch markers across frames; nothing in this repository's
		// scenarios exercises that, so it is not built.
		state.PC = state.topFrame().EndPC

	case ir.KindCatch:
		state.PC++

	case ir.KindEndFunction:
		return e.execEndFunction(state, loc, stack)

	default:
		return false, fatalf(state.Function, state.PC, "unknown instruction kind %v", instr.Kind)
	}
	return false, nil
}

func (e *Engine) execAssign(state *PathState, instr *ir.Instruction, loc ir.Location, stack []string) error {
	rhs := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, instr.Rhs))
	lhs := instr.Lhs

	if lhs.Tag() == ir.TagDereference {
		ptr := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, lhs.Child(0)))
		return e.execDereferenceAssign(state, ptr, rhs, loc, stack)
	}

	rootName, rootType, expanded, err := e.expandLHS(state, lhs, rhs)
	if err != nil {
		return err
	}
	if lhs.Tag() == ir.TagSymbol && rootType.Tag() == ir.TyPointer {
		e.updatePointerValueSet(state, rootName, rhs)
	}
	newLhs, oldLhs := state.Renaming.RenameWrite(e.Ctx, rootName, rootType)
	e.emitAssignment(state.Guard.AsExpression(e.Ctx), newLhs, oldLhs, expanded, loc, stack, Visible)
	return nil
}

// updatePointerValueSet keeps state.ValueSet in sync with a direct
// assignment to a pointer-typed variable (§3's "consulted and updated
// during dereference and assignment"): "p = &a" records p -> {a}; "p = q"
// (copying another pointer) records p -> q's current points-to set,
// since p may now denote anything q might.
func (e *Engine) updatePointerValueSet(state *PathState, ptrName string, rhs *ir.Term) {
	switch rhs.Tag() {
	case ir.TagAddressOf:
		if name, ok := pointerIdentifier(rhs.Child(0)); ok {
			state.ValueSet.Assign(ptrName, name)
		}
	case ir.TagSymbol:
		state.ValueSet.Assign(ptrName, state.ValueSet.Get(rhs.Ident())...)
	}
}

// expandLHS rewrites a possibly-nested lvalue (member/index/byte_extract
// composed with a plain symbol at the root) into a functional update of
// the whole root variable (§4.4 assignment expansion), returning the
// root's identifier, its type, and the fully-expanded new value.
func (e *Engine) expandLHS(state *PathState, lhs, value *ir.Term) (string, *ir.Type, *ir.Term, error) {
	switch lhs.Tag() {
	case ir.TagSymbol:
		return lhs.Ident(), lhs.Type(), value, nil

	case ir.TagMember:
		base := lhs.Child(0)
		curBase := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, base))
		selector := ir.MemberSelector(e.Ctx, lhs.Ident())
		newBase := ir.With(e.Ctx, curBase, selector, value)
		return e.expandLHS(state, base, newBase)

	case ir.TagIndex:
		base := lhs.Child(0)
		idx := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, lhs.Child(1)))
		curBase := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, base))
		newBase := ir.With(e.Ctx, curBase, idx, value)
		return e.expandLHS(state, base, newBase)

	case ir.TagByteExtract:
		base := lhs.Child(0)
		offset := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, lhs.Child(1)))
		curBase := ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, base))
		newBase := ir.ByteUpdate(e.Ctx, curBase, offset, value, lhs.Endianness())
		return e.expandLHS(state, base, newBase)

	default:
		return "", nil, nil, fatalf(state.Function, state.PC, "unsupported lvalue shape %v", lhs.Tag())
	}
}

// execCall pushes a fresh frame and jumps into the callee (§4.4 function
// call). Parameters are bound as fresh-activation assignments, exactly
// as if the callee's own KindDecl had run for each of them.
func (e *Engine) execCall(state *PathState, instr *ir.Instruction, loc ir.Location, stack []string) error {
	callee := e.Program.Functions[instr.Callee]
	if callee == nil {
		return fatalf(state.Function, state.PC, "call to unknown function %s", instr.Callee)
	}

	l1 := e.freshL1()
	newFrame := newFrame(callee.Name, l1, len(callee.Instructions))
	newFrame.ReturnPC = state.PC + 1
	newFrame.CallerFunction = state.Function
	newFrame.CallerReceptacle = instr.ReturnLhs
	newFrame.SavedRenaming = state.Renaming.Clone()

	for i, param := range callee.Params {
		var argValue *ir.Term
		if i < len(instr.Args) {
			argValue = ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, instr.Args[i]))
		} else {
			argValue = ir.Symbol(e.Ctx, param.Ident(), param.Type())
		}
		state.Renaming.BindActivation(param.Ident(), param.Type(), l1)
		newLhs, oldLhs := state.Renaming.RenameWrite(e.Ctx, param.Ident(), param.Type())
		e.emitAssignment(state.Guard.AsExpression(e.Ctx), newLhs, oldLhs, argValue, loc, stack, Visible)
	}

	state.CallStack = append(state.CallStack, newFrame)
	state.Function = callee.Name
	state.PC = 0
	state.Depth++
	return nil
}

// execReturnValue implements an explicit KindFunctionReturn.
func (e *Engine) execReturnValue(state *PathState, retExpr *ir.Term, loc ir.Location, stack []string) (bool, error) {
	return e.popFrame(state, retExpr, loc, stack)
}

// execEndFunction implements falling off the end of a function without
// an explicit return expression.
func (e *Engine) execEndFunction(state *PathState, loc ir.Location, stack []string) (bool, error) {
	return e.popFrame(state, nil, loc, stack)
}

func (e *Engine) popFrame(state *PathState, retExpr *ir.Term, loc ir.Location, stack []string) (bool, error) {
	frame := state.topFrame()
	if len(state.CallStack) == 1 {
		return true, nil // outermost frame: execution complete
	}

	var retValue *ir.Term
	if retExpr != nil {
		retValue = ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, retExpr))
	}

	state.CallStack = state.CallStack[:len(state.CallStack)-1]
	state.Function = frame.CallerFunction
	state.PC = frame.ReturnPC
	state.Renaming = frame.SavedRenaming

	if frame.CallerReceptacle != nil && retValue != nil {
		rootName, rootType, expanded, err := e.expandLHS(state, frame.CallerReceptacle, retValue)
		if err != nil {
			return false, err
		}
		newLhs, oldLhs := state.Renaming.RenameWrite(e.Ctx, rootName, rootType)
		e.emitAssignment(state.Guard.AsExpression(e.Ctx), newLhs, oldLhs, expanded, loc, stack, Visible)
	}
	return false, nil
}

// execGoto implements the fork/branch algorithm of §4.5.
func (e *Engine) execGoto(state *PathState, instr *ir.Instruction, loc ir.Location, stack []string) error {
	var cRenamed *ir.Term
	if len(instr.Args) > 0 && instr.Args[0] != nil {
		cRenamed = ir.Simplify(e.Ctx, state.Renaming.RenameRead(e.Ctx, instr.Args[0]))
	} else {
		cRenamed = e.Ctx.True()
	}

	if isFalseConst(cRenamed) || state.Guard.IsFalse() {
		e.clearUnwind(state, instr)
		state.PC++
		return nil
	}

	forward := instr.Target > state.PC
	key := UnwindKey{LoopID: instr.Loc.LoopID, PC: state.PC}

	if !forward {
		cnt := state.UnwindMap[key] + 1
		state.UnwindMap[key] = cnt
		// Every back-edge reached counts toward Options.MaxDepth.
		state.Depth++
		if cnt >= e.Opts.UnwindLimitFor(instr.Loc.LoopID) {
			e.handleLoopBound(state, instr, cRenamed, loc, stack)
			return nil
		}
		// A backward edge that is unconditionally taken just loops again;
		// the not-taken (exit) side is dead and contributes nothing to
		// any future merge at pc+1, so there is nothing to park.
		if isTrueConst(cRenamed) {
			state.PC = instr.Target
			return nil
		}
	}

	// Fork: one side continues at state_pc, the other is parked at
	// new_state_pc in the current frame's goto_state_map. For a forward
	// branch, state_pc is always the fallthrough pc, even when the
	// condition is a known constant true — state must still walk through
	// every instruction between here and the target so it picks up
	// whatever else is already parked along the way (§4.5); jumping cur
	// straight to the target would silently orphan any such branch.
	var statePC, newStatePC int
	if forward {
		statePC, newStatePC = state.PC+1, instr.Target
	} else {
		statePC, newStatePC = instr.Target, state.PC+1
	}

	notC := ir.Simplify(e.Ctx, ir.Not(e.Ctx, cRenamed))
	var gamma *ir.Term
	if _, ok := notC.BoolValue(); ok {
		// Constant: no fresh guard symbol needed, the two sides' guard
		// additions are already known booleans.
		gamma = notC
	} else {
		gammaName := guardHelperName(loc, state.PC)
		boolT := cRenamed.Type()
		state.Renaming.BindActivation(gammaName, boolT, state.topFrame().L1)
		newLhs, oldLhs := state.Renaming.RenameWrite(e.Ctx, gammaName, boolT)
		e.emitAssignment(state.Guard.AsExpression(e.Ctx), newLhs, oldLhs, notC, loc, stack, Hidden)
		gamma = newLhs
	}
	notGamma := ir.Simplify(e.Ctx, ir.Not(e.Ctx, gamma))

	parked := &GotoState{
		PC:       newStatePC,
		Renaming: state.Renaming.Clone(),
		ValueSet: state.ValueSet.Clone(),
		Guard:    state.Guard,
		Depth:    state.Depth,
	}

	if forward {
		state.Guard = state.Guard.Add(e.Ctx, gamma)
		parked.Guard = parked.Guard.Add(e.Ctx, notGamma)
	} else {
		state.Guard = state.Guard.Add(e.Ctx, notGamma)
		parked.Guard = parked.Guard.Add(e.Ctx, gamma)
	}

	frame := state.topFrame()
	frame.GotoStateMap[newStatePC] = append(frame.GotoStateMap[newStatePC], parked)
	e.Log.With(map[string]any{
		"function": state.Function,
		"pc":       state.PC,
		"take_pc":  statePC,
		"park_pc":  newStatePC,
	}).Debugf("forked goto state")
	state.PC = statePC
	return nil
}

func (e *Engine) clearUnwind(state *PathState, instr *ir.Instruction) {
	key := UnwindKey{LoopID: instr.Loc.LoopID, PC: state.PC}
	delete(state.UnwindMap, key)
}

func guardHelperName(loc ir.Location, pc int) string {
	return guardHelperPrefix + "$" + loc.Function + "$" + strconv.Itoa(pc)
}

func isFalseConst(t *ir.Term) bool {
	v, ok := t.BoolValue()
	return ok && !v
}

func isTrueConst(t *ir.Term) bool {
	v, ok := t.BoolValue()
	return ok && v
}
