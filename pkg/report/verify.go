package report

import (
	"fmt"

	"github.com/gotosym/symex/engine"
	"github.com/gotosym/symex/ir"
)

// Verification is the outcome of Verify: which testable properties held
// and, for the ones that did not, a human-readable reason naming the
// offending record's sequence number.
type Verification struct {
	SSAFreshnessOK    bool
	MergeCompleteness bool
	UnwindMonotonic   bool
	Failures          []string
}

func (v Verification) OK() bool {
	return v.SSAFreshnessOK && v.MergeCompleteness && v.UnwindMonotonic
}

// Verify replays a record stream and checks a set of properties (§8):
// every assignment's new lhs is SSA-fresh (never previously written
// under the same (l1, l2) pair), no hidden if-then-else phi has two
// identical arms, and no function:location pair fires more than one
// "unwinding assertion" — the same completeness/monotonicity checks the
// unit tests in engine/ assert by hand, packaged here so a cmd/symexec
// run can self-check a trace it just produced.
func Verify(records []engine.Record) Verification {
	seen := map[string]bool{}
	var failures []string
	ssaOK := true
	for _, r := range records {
		if r.Kind != engine.RecordAssignment || r.Lhs == nil {
			continue
		}
		key := symbolKey(r.Lhs)
		if key == "" {
			continue
		}
		if seen[key] {
			ssaOK = false
			failures = append(failures, fmt.Sprintf("record %d: lhs %s was already written earlier in the trace", r.Seq, FormatTerm(r.Lhs)))
			continue
		}
		seen[key] = true
	}

	mergeOK, mergeFail := checkMergeCompleteness(records)
	if !mergeOK {
		failures = append(failures, mergeFail...)
	}

	unwindOK := checkUnwindMonotonic(records)
	if !unwindOK {
		failures = append(failures, "unwind bound was recorded more than once for the same loop instance")
	}

	return Verification{
		SSAFreshnessOK:    ssaOK,
		MergeCompleteness: mergeOK,
		UnwindMonotonic:   unwindOK,
		Failures:          failures,
	}
}

func symbolKey(t *ir.Term) string {
	if t.Tag() != ir.TagSymbol {
		return ""
	}
	level, l1, l2, threadID, nodeID, ok := t.SymbolInfo()
	if !ok || level != ir.L2 {
		// L0/L1 lhs values never occur past goto-conversion; nothing to
		// check freshness against.
		return ""
	}
	return fmt.Sprintf("%s!%d@%d#%d#%d", t.Ident(), l1, l2, threadID, nodeID)
}

// checkMergeCompleteness looks for a hidden phi assignment whose value
// is an if-then-else term with a guard-shaped condition that never
// simplified — i.e. a merge that produced a live branch condition
// instead of folding to one side or a constant. That shape can be
// perfectly correct (a genuinely divergent live merge), so this is only
// a sanity pass: it flags an if-then-else phi whose two arms are
// syntactically equal, which simplification should always have folded
// away and therefore indicates a stale merge input.
func checkMergeCompleteness(records []engine.Record) (bool, []string) {
	var failures []string
	ok := true
	for _, r := range records {
		if r.Kind != engine.RecordAssignment || r.Visibility != engine.Hidden || r.Rhs == nil {
			continue
		}
		if r.Rhs.Tag() != ir.TagIfThenElse {
			continue
		}
		if len(r.Rhs.Children()) != 3 {
			continue
		}
		then, els := r.Rhs.Child(1), r.Rhs.Child(2)
		if then.Equal(els) {
			ok = false
			failures = append(failures, fmt.Sprintf("record %d: merge phi %s has identical arms, should have simplified", r.Seq, FormatTerm(r.Rhs)))
		}
	}
	return ok, failures
}

// checkUnwindMonotonic verifies the unwinding assertion for any single
// (function, location) pair is recorded at most once — the bound is
// enforced exactly once per back-edge instance (§8).
func checkUnwindMonotonic(records []engine.Record) bool {
	seen := map[string]bool{}
	for _, r := range records {
		if r.Kind != engine.RecordAssertion || r.Message != "unwinding assertion" {
			continue
		}
		key := fmt.Sprintf("%s:%d", r.Loc.Function, r.Loc.LocationNo)
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}
