// cmd/symexec loads a goto-program from a YAML document, runs it
// through the engine, and prints the resulting equation-sink trace. It
// plays the role cmd/test_production plays for schemaexec: a thin
// driver over a fixed input format, not a general-purpose frontend —
// turning source code into a goto-program (parsing, elaboration, CFG
// flattening) is out of scope for this repository, same as it is for
// the engine itself.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/gotosym/symex/engine"
	"github.com/gotosym/symex/ir"
	"github.com/gotosym/symex/pkg/gotoyaml"
	"github.com/gotosym/symex/pkg/report"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "symexec:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	fs := flag.NewFlagSet("symexec", flag.ExitOnError)
	format := fs.String("format", "text", "trace output format: text, json, yaml")
	showHidden := fs.Bool("show-hidden", false, "include synthetic goto-fork/phi records in the trace")
	width := fs.Int("width", 100, "wrap width for the text trace, 0 to disable")
	unwind := fs.Int("unwind", 0, "override DefaultUnwind (0 keeps the engine default)")
	baseCase := fs.Bool("base-case", false, "loop bound treatment: drop the looping branch")
	forwardCondition := fs.Bool("forward-condition", false, "loop bound treatment: assert the negated condition")
	assumeAllStates := fs.Bool("assume-all-states", false, "loop bound treatment: assume the condition true")
	verify := fs.Bool("verify", false, "self-check the produced trace's testable properties before printing it")
	logLevel := fs.String("log-level", "warn", "engine log level: error, warn, info, debug")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: symexec [flags] <goto-program.yaml>")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	ctx := ir.NewContext()
	prog, err := gotoyaml.Load(ctx, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}

	opts := engine.DefaultOptions()
	if *unwind > 0 {
		opts.DefaultUnwind = *unwind
	}
	opts.BaseCase = *baseCase
	opts.ForwardCondition = *forwardCondition
	opts.AssumeAllStates = *assumeAllStates
	opts.LogLevel = engine.ParseLogLevel(*logLevel)

	sink := engine.NewSliceTarget()
	eng, err := engine.New(prog, ctx, opts, sink, engine.NewLogger(opts.LogLevel, os.Stderr))
	if err != nil {
		return err
	}
	if err := eng.Run(); err != nil {
		return fmt.Errorf("running %s: %w", fs.Arg(0), err)
	}

	if *verify {
		v := report.Verify(sink.Records())
		if !v.OK() {
			for _, f := range v.Failures {
				fmt.Fprintln(os.Stderr, "symexec: verify:", f)
			}
			return fmt.Errorf("trace failed self-verification")
		}
	}

	rOpts := report.Options{ShowHidden: *showHidden, Width: *width}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		// Piped output doesn't benefit from column wrapping tuned for an
		// interactive terminal; keep records on one line each.
		rOpts.Width = 0
	}

	switch *format {
	case "text":
		return report.WriteText(os.Stdout, sink.Records(), rOpts)
	case "json":
		out, err := report.MarshalJSON(sink.Records(), rOpts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(out, '\n'))
		return err
	case "yaml":
		out, err := report.MarshalYAML(sink.Records(), rOpts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	default:
		return fmt.Errorf("unknown -format %q (want text, json, or yaml)", *format)
	}
}
