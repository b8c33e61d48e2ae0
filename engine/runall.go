package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/gotosym/symex/ir"
)

// Job is one goto-program to run as part of a RunAll batch, paired with
// its own sink so concurrent runs never interleave records.
type Job struct {
	Program *ir.Program
	Ctx     *ir.Context
	Opts    Options
	Sink    Target
	Log     Logger
}

// RunAll runs a batch of independent goto-programs concurrently, up to
// limit at a time (limit <= 0 means unbounded). Each job keeps its own
// term context and equation sink; nothing is shared across jobs, which
// is what makes them independent in the first place (§5: "the engine
// itself is reentrant over independent goto-programs; nothing in its
// state is process-global"). RunAll waits for every job and returns the
// first non-nil error any of them reported; a failing job does not cancel
// the others, and every job keeps whatever it wrote to its own Sink.
func RunAll(jobs []Job, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			eng, err := New(job.Program, job.Ctx, job.Opts, job.Sink, job.Log)
			if err != nil {
				return err
			}
			return eng.Run()
		})
	}
	return g.Wait()
}
