// Package report renders an engine equation-record stream (§4.6 of the
// symbolic execution engine this repository implements) into
// human-readable trace text and a structured dump, and provides a small
// replay helper used by tests to check the testable properties of §8.
// It plays the role pkg/playground and pkg/jqfmt play relative to the
// execution core: a presentation layer that never mutates what it reads.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotosym/symex/ir"
)

// FormatTerm renders a term as an s-expression-flavored, one-line
// expression: constants and symbols print as literals/identifiers,
// everything else prints as "(tag child child ...)". It is not meant to
// round-trip; it is meant to be read at a terminal or in a log line.
func FormatTerm(t *ir.Term) string {
	var b strings.Builder
	writeTerm(&b, t)
	return b.String()
}

func writeTerm(b *strings.Builder, t *ir.Term) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Tag() {
	case ir.TagConstInt, ir.TagConstFixed:
		v, _ := t.IntValue()
		b.WriteString(strconv.FormatInt(v, 10))
		return
	case ir.TagConstBool:
		v, _ := t.BoolValue()
		b.WriteString(strconv.FormatBool(v))
		return
	case ir.TagConstString:
		v, _ := t.StringValue()
		b.WriteString(strconv.Quote(v))
		return
	case ir.TagSymbol:
		writeSymbol(b, t)
		return
	case ir.TagMember:
		if len(t.Children()) > 0 {
			writeTerm(b, t.Child(0))
			b.WriteByte('.')
		}
		b.WriteString(t.Ident())
		return
	}

	b.WriteByte('(')
	b.WriteString(t.Tag().String())
	for _, c := range t.Children() {
		b.WriteByte(' ')
		writeTerm(b, c)
	}
	b.WriteByte(')')
}

// writeSymbol renders a symbol at its renaming level: bare "name" at L0,
// "name!l1" at L1, "name!l1@l2" at L2 (§4.3). Thread/node suffixes, when
// nonzero, are appended so a multithreaded trace stays disambiguated.
func writeSymbol(b *strings.Builder, t *ir.Term) {
	level, l1, l2, threadID, nodeID, ok := t.SymbolInfo()
	name := t.Ident()
	if !ok {
		b.WriteString(name)
		return
	}
	b.WriteString(name)
	if level >= ir.L1 {
		b.WriteByte('!')
		b.WriteString(strconv.Itoa(l1))
	}
	if level >= ir.L2 {
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(l2))
	}
	if threadID != 0 {
		fmt.Fprintf(b, "#t%d", threadID)
	}
	if nodeID != 0 {
		fmt.Fprintf(b, "#n%d", nodeID)
	}
}

// FormatType renders a type the way FormatTerm renders the terms that
// carry it: compact, not meant to round-trip.
func FormatType(t *ir.Type) string {
	if t == nil {
		return "<none>"
	}
	switch t.Tag() {
	case ir.TyUnsignedBV:
		return fmt.Sprintf("u%d", t.Width())
	case ir.TySignedBV:
		return fmt.Sprintf("i%d", t.Width())
	case ir.TyFixedBV:
		return fmt.Sprintf("fixed%d.%d", t.Width(), t.IntBits())
	case ir.TyPointer:
		return "*" + FormatType(t.Elem())
	case ir.TyArray:
		if t.Infinite() {
			return "[]" + FormatType(t.Elem())
		}
		return "[N]" + FormatType(t.Elem())
	case ir.TyStruct:
		return "struct " + t.Name()
	case ir.TyUnion:
		return "union " + t.Name()
	default:
		return t.Tag().String()
	}
}
