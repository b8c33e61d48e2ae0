package engine

import "github.com/gotosym/symex/ir"

// Visibility marks whether a sink record was produced directly by the
// input program (Visible) or synthesized by the execution loop itself —
// goto-fork discriminators and phi assignments (Hidden, §4.5).
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

// RecordKind is the tag of an equation-sink entry (§4.6).
type RecordKind int

const (
	RecordAssignment RecordKind = iota
	RecordAssumption
	RecordAssertion
	RecordOutput
	RecordAtomicBegin
	RecordAtomicEnd
)

func (k RecordKind) String() string {
	switch k {
	case RecordAssignment:
		return "assignment"
	case RecordAssumption:
		return "assumption"
	case RecordAssertion:
		return "assertion"
	case RecordOutput:
		return "output"
	case RecordAtomicBegin:
		return "atomic_begin"
	case RecordAtomicEnd:
		return "atomic_end"
	default:
		return "record(unknown)"
	}
}

// Record is one append-only entry of the equation sink (§4.6). Guard is
// stored as its expression form (already renamed and simplified) rather
// than the structured Guard value: the sink is a flat, replayable trace,
// not a live symbolic-execution structure.
type Record struct {
	Kind       RecordKind
	Guard      *ir.Term
	Lhs        *ir.Term // RecordAssignment
	OldLhs     *ir.Term // RecordAssignment
	Rhs        *ir.Term // RecordAssignment, RecordAssumption (condition), RecordAssertion (condition)
	Args       []*ir.Term
	Message    string
	Loc        ir.Location
	StackTrace []string
	Visibility Visibility
	Seq        int
}

// Target is the equation sink: an append-only, ordered record stream
// (§4.6). Every path-state, including forked and merged ones, writes
// into the same Target so that the resulting trace is a total order
// consistent with program order along each path.
type Target interface {
	Assignment(guard, lhs, oldLhs, rhs *ir.Term, loc ir.Location, stack []string, vis Visibility)
	Assumption(guard, cond *ir.Term, loc ir.Location, stack []string)
	Assertion(guard, cond *ir.Term, message string, loc ir.Location, stack []string)
	Output(guard *ir.Term, args []*ir.Term, message string, loc ir.Location, stack []string)
	AtomicBegin(guard *ir.Term, loc ir.Location, stack []string)
	AtomicEnd(guard *ir.Term, loc ir.Location, stack []string)
	Records() []Record
}

// SliceTarget is the default in-memory Target implementation, grounded
// on the append-only history buffer pattern of schemaexec's execution
// trace bookkeeping.
type SliceTarget struct {
	records []Record
}

func NewSliceTarget() *SliceTarget {
	return &SliceTarget{}
}

func (t *SliceTarget) append(r Record) {
	r.Seq = len(t.records)
	t.records = append(t.records, r)
}

func (t *SliceTarget) Assignment(guard, lhs, oldLhs, rhs *ir.Term, loc ir.Location, stack []string, vis Visibility) {
	t.append(Record{Kind: RecordAssignment, Guard: guard, Lhs: lhs, OldLhs: oldLhs, Rhs: rhs, Loc: loc, StackTrace: stack, Visibility: vis})
}

func (t *SliceTarget) Assumption(guard, cond *ir.Term, loc ir.Location, stack []string) {
	t.append(Record{Kind: RecordAssumption, Guard: guard, Rhs: cond, Loc: loc, StackTrace: stack, Visibility: Visible})
}

func (t *SliceTarget) Assertion(guard, cond *ir.Term, message string, loc ir.Location, stack []string) {
	t.append(Record{Kind: RecordAssertion, Guard: guard, Rhs: cond, Message: message, Loc: loc, StackTrace: stack, Visibility: Visible})
}

func (t *SliceTarget) Output(guard *ir.Term, args []*ir.Term, message string, loc ir.Location, stack []string) {
	t.append(Record{Kind: RecordOutput, Guard: guard, Args: args, Message: message, Loc: loc, StackTrace: stack, Visibility: Visible})
}

func (t *SliceTarget) AtomicBegin(guard *ir.Term, loc ir.Location, stack []string) {
	t.append(Record{Kind: RecordAtomicBegin, Guard: guard, Loc: loc, StackTrace: stack, Visibility: Visible})
}

func (t *SliceTarget) AtomicEnd(guard *ir.Term, loc ir.Location, stack []string) {
	t.append(Record{Kind: RecordAtomicEnd, Guard: guard, Loc: loc, StackTrace: stack, Visibility: Visible})
}

func (t *SliceTarget) Records() []Record {
	return t.records
}
