package engine

import "github.com/gotosym/symex/ir"

// Frame is one call-stack activation record (§4.4 function call/return).
// GotoStateMap holds, per pending join target pc within this function's
// instruction list, the parked branch snapshots waiting to be folded
// back into whichever path-state next reaches that pc (§4.5).
type Frame struct {
	Function string
	L1       int // this activation's L1 number; shared by every local declared within it

	ReturnPC         int      // pc to resume at in the caller after this call returns; -1 for the outermost frame
	CallerFunction   string   // name of the caller's function, "" for the outermost frame
	CallerReceptacle *ir.Term // L0 lhs symbol in the caller to receive the return value, nil if none
	SavedRenaming    *Renaming
	EndPC            int // one past the callee's last instruction; used by "throw" to unwind to function end

	GotoStateMap map[int][]*GotoState
}

func newFrame(function string, l1 int, endPC int) *Frame {
	return &Frame{
		Function:     function,
		L1:           l1,
		ReturnPC:     -1,
		EndPC:        endPC,
		GotoStateMap: map[int][]*GotoState{},
	}
}

// clone deep-copies everything a fork on this frame could later mutate
// independently: the goto_state_map lists themselves (each entry is a
// GotoState snapshot, immutable once parked, so its slice header can be
// copied while sharing the *GotoState pointers).
func (f *Frame) clone() *Frame {
	nf := *f
	nf.GotoStateMap = make(map[int][]*GotoState, len(f.GotoStateMap))
	for pc, list := range f.GotoStateMap {
		cp := make([]*GotoState, len(list))
		copy(cp, list)
		nf.GotoStateMap[pc] = cp
	}
	return &nf
}

// GotoState is an immutable snapshot of a path parked at a fork point,
// waiting for the primary path to reach the same pc so the two can be
// merged (§4.5). It carries everything mergeInto needs and nothing more.
type GotoState struct {
	PC       int
	Renaming *Renaming
	ValueSet *ValueSet
	Guard    Guard
	Depth    int
}
