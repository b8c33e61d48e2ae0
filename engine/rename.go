package engine

import (
	"maps"
	"sort"

	"github.com/gotosym/symex/ir"
)

// guardHelperPrefix marks synthetic boolean symbols introduced by the
// execution loop itself (goto forking, §4.5 step 4) rather than by the
// input program. Phi synthesis during merge skips these (§4.5 Merge).
const guardHelperPrefix = "$guard"

// Renaming holds the L1/L2 renaming state private to one path (§4.3). It
// is the mutable half of a PathState that fork/merge actually touches on
// every step, so Clone is a real (cheap, small) map copy rather than a
// shared-then-copy-on-write structure: the maps hold only ints and a
// handful of entries per live local, not term graphs.
type Renaming struct {
	l1    map[string]int
	l2    map[string]int
	types map[string]*ir.Type
	live  map[string]bool
}

func NewRenaming() *Renaming {
	return &Renaming{
		l1:    map[string]int{},
		l2:    map[string]int{},
		types: map[string]*ir.Type{},
		live:  map[string]bool{},
	}
}

func (r *Renaming) Clone() *Renaming {
	return &Renaming{
		l1:    maps.Clone(r.l1),
		l2:    maps.Clone(r.l2),
		types: maps.Clone(r.types),
		live:  maps.Clone(r.live),
	}
}

// BindActivation gives name a fresh L1 activation number (function entry
// or local declaration, §4.3) and resets its L2 counter, so the first
// write within this activation produces L2==1.
func (r *Renaming) BindActivation(name string, typ *ir.Type, l1 int) {
	r.l1[name] = l1
	r.l2[name] = 0
	r.types[name] = typ
	r.live[name] = true
}

// CurrentL1 reports the identifier's current activation number, or
// (0, false) if it has never been bound on this path.
func (r *Renaming) CurrentL1(name string) (int, bool) {
	v, ok := r.l1[name]
	return v, ok
}

// RenameRead rewrites every free L0 symbol in e to its current L1/L2
// name (§4.3's rename_read). Symbols never bound on this path fall back
// to (l1=0, l2=0) — the "read before any write" case, which for a
// well-formed goto-program only occurs for globals initialized outside
// the fragment under analysis.
func (r *Renaming) RenameRead(ctx *ir.Context, e *ir.Term) *ir.Term {
	if e == nil {
		return nil
	}
	if e.Tag() == ir.TagSymbol {
		level, _, _, _, _, _ := e.SymbolInfo()
		if level != ir.L0 {
			return e
		}
		name := e.Ident()
		l1 := r.l1[name]
		l2 := r.l2[name]
		return ir.SymbolL2(ctx, name, e.Type(), l1, l2, 0, 0)
	}
	children := e.Children()
	if len(children) == 0 {
		return e
	}
	out := e
	for i, c := range children {
		rc := r.RenameRead(ctx, c)
		if rc != c {
			out = out.WithChild(i, rc)
		}
	}
	return out
}

// RenameWrite bumps name's L2 counter and returns the new lhs symbol
// together with old_lhs — the symbol carrying name's value immediately
// before this write, recorded as provenance on the sink record (§4.6).
// Lvalue expansion reads the current value through RenameRead instead.
func (r *Renaming) RenameWrite(ctx *ir.Context, name string, typ *ir.Type) (newLhs, oldLhs *ir.Term) {
	l1 := r.l1[name]
	oldL2 := r.l2[name]
	oldLhs = ir.SymbolL2(ctx, name, typ, l1, oldL2, 0, 0)
	r.l2[name] = oldL2 + 1
	r.types[name] = typ
	r.live[name] = true
	newLhs = ir.SymbolL2(ctx, name, typ, l1, r.l2[name], 0, 0)
	return newLhs, oldLhs
}

// DiffNames returns identifiers whose current L1/L2 pair differs between
// r and o, excluding synthetic guard-helper symbols (§4.5 Merge:
// "excluding the guard helper variable").
func (r *Renaming) DiffNames(o *Renaming) []string {
	seen := map[string]bool{}
	var out []string
	consider := func(name string) {
		if seen[name] || len(name) >= len(guardHelperPrefix) && name[:len(guardHelperPrefix)] == guardHelperPrefix {
			return
		}
		seen[name] = true
		if r.l1[name] != o.l1[name] || r.l2[name] != o.l2[name] {
			out = append(out, name)
		}
	}
	for name := range r.live {
		consider(name)
	}
	for name := range o.live {
		consider(name)
	}
	// Map iteration order is randomized; sort so phi-assignment emission
	// order into the sink is stable across runs.
	sort.Strings(out)
	return out
}

func (r *Renaming) typeOf(name string) (*ir.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}
