package engine

import "github.com/gotosym/symex/ir"

// Engine drives the execution loop over one goto-program (§4.4). It owns
// the term context (so every rewrite goes through the same intern
// table), the equation sink, the logger and the configuration — the same
// grouping schemaexec's schemaEnv threads through a single execution,
// generalized from "one JSON value" to "one goto-program".
type Engine struct {
	Program *ir.Program
	Ctx     *ir.Context
	Opts    Options
	Sink    Target
	Log     Logger

	nextL1 int
}

// New builds an Engine ready to Run. sink/log may be nil, in which case
// a fresh SliceTarget and a level-appropriate Logger are created.
func New(program *ir.Program, ctx *ir.Context, opts Options, sink Target, log Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = ir.NewContext()
	}
	if sink == nil {
		sink = NewSliceTarget()
	}
	if log == nil {
		log = NewLogger(opts.LogLevel, nil)
	}
	return &Engine{Program: program, Ctx: ctx, Opts: opts, Sink: sink, Log: log}, nil
}

func (e *Engine) freshL1() int {
	e.nextL1++
	return e.nextL1
}

// Run executes the program's entry function to completion and discards
// the final path-state; callers that only care about the equation sink
// (the common case) use this. It returns a *Fatal if the program or
// configuration is malformed; a discharged assertion failure in the
// program under analysis is not an error, it is a RecordAssertion entry
// in the sink.
func (e *Engine) Run() error {
	_, err := e.RunToCompletion()
	return err
}

// RunToCompletion is Run but also returns the final path-state, mainly
// useful for tests asserting on the merged renaming/guard/value-set
// directly rather than only on the sink's trace.
func (e *Engine) RunToCompletion() (*PathState, error) {
	entry := e.Program.EntryFunction()
	if entry == nil {
		return nil, &Fatal{Reason: "program has no entry function " + e.Program.Entry}
	}

	l1 := e.freshL1()
	frame := newFrame(entry.Name, l1, len(entry.Instructions))
	state := newPathState(0, entry.Name, frame)
	for _, p := range entry.Params {
		state.Renaming.BindActivation(p.Ident(), p.Type(), l1)
	}

	e.Log.With(map[string]any{"entry": entry.Name}).Infof("starting symbolic execution")
	steps := 0
	defer func() {
		e.Log.With(map[string]any{"entry": entry.Name, "steps": steps}).Infof("execution completed")
	}()

	for {
		if e.Opts.ShouldAbort != nil && e.Opts.ShouldAbort() {
			return nil, ErrAborted
		}

		fn := e.Program.Functions[state.Function]
		if fn == nil {
			return nil, fatalf(state.Function, state.PC, "unknown function")
		}
		if state.Depth > e.Opts.MaxDepth {
			return nil, fatalf(state.Function, state.PC, "max depth exceeded")
		}

		loc := ir.Location{File: fn.Name, Function: fn.Name, LocationNo: state.PC}
		stack := e.stackTrace(state)
		e.drainMerges(state, loc, stack)

		instr := fn.At(state.PC)
		if instr == nil {
			// Fell off the end of the instruction list without an
			// explicit KindEndFunction: treat it as one.
			done, err := e.execEndFunction(state, loc, stack)
			if err != nil {
				return nil, err
			}
			if done {
				return state, nil
			}
			continue
		}

		loc = instr.Loc
		if loc.Function == "" {
			loc.Function = fn.Name
		}
		stack = e.stackTrace(state)

		steps++
		e.Log.With(map[string]any{
			"function": state.Function,
			"pc":       state.PC,
			"kind":     instr.Kind.String(),
			"depth":    state.Depth,
		}).Debugf("executing %s", instr.Kind)

		done, err := e.step(state, instr, loc, stack)
		if err != nil {
			return nil, err
		}
		if done {
			return state, nil
		}
	}
}

func (e *Engine) stackTrace(state *PathState) []string {
	out := make([]string, len(state.CallStack))
	for i, f := range state.CallStack {
		out[i] = f.Function
	}
	return out
}
