package engine

import (
	"strings"
	"testing"

	"github.com/gotosym/symex/ir"
)

func straightLineProgram(varName string, val int64) *ir.Program {
	ctx := ir.NewContext()
	i32 := ir.SignedBVType(32)
	main := &ir.Function{
		Name: "main",
		Instructions: []*ir.Instruction{
			{Kind: ir.KindDecl, Lhs: ir.Symbol(ctx, varName, i32)},
			{Kind: ir.KindAssign, Lhs: ir.Symbol(ctx, varName, i32), Rhs: ir.ConstInt(ctx, val, i32)},
			{Kind: ir.KindEndFunction},
		},
	}
	return mkProgram("main", main)
}

func TestRunAllRunsIndependentJobsToCompletion(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	jobs := make([]Job, len(names))
	for i, name := range names {
		jobs[i] = Job{
			Program: straightLineProgram(name, int64(i)),
			Ctx:     ir.NewContext(),
			Opts:    DefaultOptions(),
			Sink:    NewSliceTarget(),
			Log:     NewNoopLogger(),
		}
	}

	if err := RunAll(jobs, 2); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	for i, job := range jobs {
		records := job.Sink.(*SliceTarget).Records()
		found := false
		for _, r := range records {
			if r.Kind == RecordAssignment && strings.HasPrefix(job.Program.Entry, "main") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("job %d: expected at least one assignment record, got %d records", i, len(records))
		}
	}
}

func TestRunAllPropagatesFatalFromOneJob(t *testing.T) {
	bad := mkProgram("missing")
	jobs := []Job{
		{Program: straightLineProgram("x", 1), Ctx: ir.NewContext(), Opts: DefaultOptions(), Sink: NewSliceTarget(), Log: NewNoopLogger()},
		{Program: bad, Ctx: ir.NewContext(), Opts: DefaultOptions(), Sink: NewSliceTarget(), Log: NewNoopLogger()},
	}
	if err := RunAll(jobs, 0); err == nil {
		t.Fatalf("expected RunAll to surface the missing-entry-function error")
	}
}
