// cmd/dumpir loads a goto-program document and prints its instruction
// stream without executing it — a structural dump for eyeballing that a
// document parsed the way its author intended, the same role
// cmd/inspect-slice plays for a compiled jq program's raw opcode stream.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gotosym/symex/ir"
	"github.com/gotosym/symex/pkg/gotoyaml"
	"github.com/gotosym/symex/pkg/report"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "dumpir:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	fs := flag.NewFlagSet("dumpir", flag.ExitOnError)
	skipSchema := fs.Bool("skip-schema", false, "skip JSON Schema validation, dump whatever parses")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: dumpir [flags] <goto-program.yaml>")
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %s: %w", fs.Arg(0), err)
	}

	ctx := ir.NewContext()
	var prog *ir.Program
	if *skipSchema {
		var doc gotoyaml.ProgramDoc
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", fs.Arg(0), err)
		}
		prog, err = gotoyaml.BuildProgram(ctx, &doc)
	} else {
		prog, err = gotoyaml.Load(ctx, raw)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}

	for _, name := range sortedFunctionNames(prog) {
		fn := prog.Functions[name]
		marker := "  "
		if name == prog.Entry {
			marker = "->"
		}
		fmt.Printf("%s function %s(%s)\n", marker, name, formatParams(fn.Params))
		for i, instr := range fn.Instructions {
			fmt.Printf("  %4d: %s\n", i, formatInstruction(instr))
		}
	}
	return nil
}

func sortedFunctionNames(prog *ir.Program) []string {
	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}
	// Entry first, then everything else alphabetically: a reader wants
	// to start where execution starts.
	for i, name := range names {
		if name == prog.Entry {
			names[0], names[i] = names[i], names[0]
			break
		}
	}
	if len(names) > 1 {
		rest := names[1:]
		for i := 0; i < len(rest); i++ {
			for j := i + 1; j < len(rest); j++ {
				if rest[j] < rest[i] {
					rest[i], rest[j] = rest[j], rest[i]
				}
			}
		}
	}
	return names
}

func formatParams(params []*ir.Term) string {
	if len(params) == 0 {
		return ""
	}
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += report.FormatTerm(p) + " " + report.FormatType(p.Type())
	}
	return s
}

func formatInstruction(instr *ir.Instruction) string {
	s := instr.Kind.String()
	if instr.Lhs != nil {
		s += " lhs=" + report.FormatTerm(instr.Lhs)
	}
	if instr.Rhs != nil {
		s += " rhs=" + report.FormatTerm(instr.Rhs)
	}
	for _, a := range instr.Args {
		s += " arg=" + report.FormatTerm(a)
	}
	if instr.Kind == ir.KindGoto {
		s += fmt.Sprintf(" target=%d", instr.Target)
	}
	if instr.Callee != "" {
		s += " callee=" + instr.Callee
	}
	if instr.ReturnLhs != nil {
		s += " return_lhs=" + report.FormatTerm(instr.ReturnLhs)
	}
	if instr.Message != "" {
		s += fmt.Sprintf(" message=%q", instr.Message)
	}
	return s
}
