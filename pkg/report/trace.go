package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kr/text"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"

	"github.com/gotosym/symex/engine"
)

// Options controls trace rendering. ShowHidden mirrors the same
// distinction the sink itself carries (§4.6 Visibility): most human
// readers of a counterexample want only the input program's own
// assignments, not the goto-fork/phi bookkeeping the engine synthesized
// to make the trace replayable.
type Options struct {
	ShowHidden bool
	// Width bounds line wrapping: a rendered record line longer than
	// Width is wrapped; 0 disables wrapping.
	Width int
}

// DefaultOptions hides synthetic records and wraps at a terminal-ish
// width, the same default a first-time reader of a trace expects.
func DefaultOptions() Options {
	return Options{ShowHidden: false, Width: 100}
}

// WriteText renders records as an aligned, one-line-per-record trace:
//
//	   42 assignment   x!3@1 := (+ x!3@0 1)  main:7
//	   43 assertion    assert (< x!3@1 10)  "bound check"  main:8
//
// Column widths are computed from the actual kind names so the table
// stays tight regardless of ShowHidden; go-runewidth accounts for the
// (rare, but the input program's identifiers are not required to be
// ASCII) display width of each cell rather than its byte length.
func WriteText(w io.Writer, records []engine.Record, opts Options) error {
	kindW := 0
	for _, r := range records {
		if !opts.ShowHidden && r.Visibility == engine.Hidden {
			continue
		}
		if n := stringWidth(r.Kind.String()); n > kindW {
			kindW = n
		}
	}

	for _, r := range records {
		if !opts.ShowHidden && r.Visibility == engine.Hidden {
			continue
		}
		if err := writeRecordLine(w, r, kindW, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordLine(w io.Writer, r engine.Record, kindW int, opts Options) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%5d ", r.Seq)
	b.WriteString(padRight(r.Kind.String(), kindW))
	b.WriteByte(' ')
	if r.Visibility == engine.Hidden {
		b.WriteString("~ ")
	} else {
		b.WriteString("  ")
	}

	switch r.Kind {
	case engine.RecordAssignment:
		fmt.Fprintf(&b, "%s := %s", FormatTerm(r.Lhs), FormatTerm(r.Rhs))
	case engine.RecordAssumption:
		fmt.Fprintf(&b, "assume %s", FormatTerm(r.Rhs))
	case engine.RecordAssertion:
		fmt.Fprintf(&b, "assert %s", FormatTerm(r.Rhs))
		if r.Message != "" {
			fmt.Fprintf(&b, "  %q", r.Message)
		}
	case engine.RecordOutput:
		parts := make([]string, len(r.Args))
		for i, a := range r.Args {
			parts[i] = FormatTerm(a)
		}
		fmt.Fprintf(&b, "output(%s)", strings.Join(parts, ", "))
		if r.Message != "" {
			fmt.Fprintf(&b, "  %q", r.Message)
		}
	case engine.RecordAtomicBegin:
		b.WriteString("{")
	case engine.RecordAtomicEnd:
		b.WriteString("}")
	}

	if v, ok := r.Guard.BoolValue(); !ok || !v {
		fmt.Fprintf(&b, "  [%s]", FormatTerm(r.Guard))
	}
	fmt.Fprintf(&b, "  %s:%d", r.Loc.Function, r.Loc.LocationNo)

	line := b.String()
	if opts.Width > 0 && stringWidth(line) > opts.Width {
		line = text.Wrap(line, opts.Width)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func padRight(s string, n int) string {
	w := stringWidth(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

// stringWidth measures a cell's display width for column alignment.
// go-runewidth handles the common case cheaply; for runes it reports as
// ambiguous-width (the East Asian legacy encodings jq's own terminal
// output has to account for), x/text/width's Unicode-standard
// classification breaks the tie between narrow and wide.
func stringWidth(s string) int {
	total := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 1 && runewidth.IsAmbiguousWidth(r) {
			if p := width.LookupRune(r); p.Kind() == width.EastAsianWide || p.Kind() == width.EastAsianFullwidth {
				w = 2
			}
		}
		total += w
	}
	return total
}
