package engine

// UnwindKey identifies one loop back-edge instance for the unwind
// counter (§4.4: "unwind_map: (source location, pc) -> iteration
// count"). LoopID disambiguates loops that share a source line (e.g.
// after inlining); PC is the back-edge goto's own instruction index.
type UnwindKey struct {
	LoopID int
	PC     int
}

// PathState is one branch of the symbolic execution (§4.4). Every field
// here is owned exclusively by this state; Clone is the only way another
// state comes to share (part of) it, and Clone always allocates fresh
// containers for anything Clone's caller might later mutate — the term
// graph itself is the only thing actually shared, via *ir.Term/*ir.Type
// handles, which is safe because terms are immutable once interned.
type PathState struct {
	Function  string
	PC        int
	CallStack []*Frame
	Renaming  *Renaming
	ValueSet  *ValueSet
	Guard     Guard
	UnwindMap map[UnwindKey]int
	Depth     int
	ID        int
}

func newPathState(id int, entryFunction string, entryFrame *Frame) *PathState {
	return &PathState{
		Function:  entryFunction,
		PC:        0,
		CallStack: []*Frame{entryFrame},
		Renaming:  NewRenaming(),
		ValueSet:  NewValueSet(),
		Guard:     Guard{},
		UnwindMap: map[UnwindKey]int{},
		ID:        id,
	}
}

func (s *PathState) topFrame() *Frame {
	return s.CallStack[len(s.CallStack)-1]
}

// Clone produces an independent path-state at a fork point. Every
// mutable field is deep-copied at the granularity it can later be
// mutated at; the frames below the top are never mutated by their
// (now-suspended) caller while this callee runs, so cloning their
// GotoStateMap on every fork inside a nested call would be wasted work —
// but correctness requires it too, because a fork deep in a callee must
// not let the clone alias the original's still-live outer frames'
// GotoStateMap entries once *that* frame later forks a sibling branch of
// its own. Cloning every frame is the simple, obviously-correct choice.
func (s *PathState) Clone() *PathState {
	frames := make([]*Frame, len(s.CallStack))
	for i, f := range s.CallStack {
		frames[i] = f.clone()
	}
	unwind := make(map[UnwindKey]int, len(s.UnwindMap))
	for k, v := range s.UnwindMap {
		unwind[k] = v
	}
	return &PathState{
		Function:  s.Function,
		PC:        s.PC,
		CallStack: frames,
		Renaming:  s.Renaming.Clone(),
		ValueSet:  s.ValueSet.Clone(),
		Guard:     s.Guard.Clone(),
		UnwindMap: unwind,
		Depth:     s.Depth,
		ID:        s.ID,
	}
}

