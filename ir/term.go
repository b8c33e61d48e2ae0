package ir

import "fmt"

// termData holds the scalar payload specific to a handful of tags
// (constants, symbols, byte-order flags, allocation kind...). Every other
// tag carries no scalar payload and leaves Term.data nil. Keeping this as
// a small tagged union of plain structs, rather than one Term struct with
// a field per possible tag, is the port of the "tagged union of plain
// records" design note: traversal (Equal/Hash/Compare) is derived once
// from Children/Types/data.key(), never duplicated per tag.
type termData interface {
	key() string
}

type intData struct{ value int64 }

func (d intData) key() string { return fmt.Sprintf("i:%d", d.value) }

type boolData struct{ value bool }

func (d boolData) key() string { return fmt.Sprintf("b:%v", d.value) }

type stringData struct{ value string }

func (d stringData) key() string { return "s:" + d.value }

type symbolData struct {
	name     string
	level    RenameLevel
	l1, l2   int
	threadID int
	nodeID   int
}

func (d symbolData) key() string {
	return fmt.Sprintf("sym:%s:%d:%d:%d:%d:%d", d.name, d.level, d.l1, d.l2, d.threadID, d.nodeID)
}

type memberData struct{ name string }

func (d memberData) key() string { return "m:" + d.name }

type byteData struct{ endian Endianness }

func (d byteData) key() string { return fmt.Sprintf("e:%d", d.endian) }

type sideEffectData struct{ kind SideEffectKind }

func (d sideEffectData) key() string { return fmt.Sprintf("se:%d", d.kind) }

type constArrayOfData struct{ size int64 }

func (d constArrayOfData) key() string { return fmt.Sprintf("cao:%d", d.size) }

func dataKey(d termData) string {
	if d == nil {
		return ""
	}
	return d.key()
}

// Term is an immutable, hash-consed node of the expression/type graph. A
// Term IS its own handle: Go's garbage collector plays the role a
// reference-counted handle would play in a systems-language port, so
// there is no separate refcount field (see DESIGN.md). Copy-on-write is
// enforced by never mutating a Term in place: every rewrite (simplify,
// functional update folding) builds a new Term via newTerm/WithChild
// and lets the old one become garbage if unreferenced.
type Term struct {
	tag      Tag
	typ      *Type
	children []*Term
	types    []*Type // secondary type operands, e.g. typecast's target type
	data     termData

	hash    uint32
	hashSet bool
}

func (t *Term) Tag() Tag         { return t.tag }
func (t *Term) Type() *Type      { return t.typ }
func (t *Term) Children() []*Term { return t.children }
func (t *Term) Types() []*Type   { return t.types }

func (t *Term) Child(i int) *Term {
	if i < 0 || i >= len(t.children) {
		return nil
	}
	return t.children[i]
}

// Ident returns the identifier carried by symbol/member terms, or "".
func (t *Term) Ident() string {
	switch d := t.data.(type) {
	case symbolData:
		return d.name
	case memberData:
		return d.name
	default:
		return ""
	}
}

// SymbolInfo returns the full renaming-relevant payload of a TagSymbol
// term. ok is false for non-symbol terms.
func (t *Term) SymbolInfo() (level RenameLevel, l1, l2, threadID, nodeID int, ok bool) {
	d, ok := t.data.(symbolData)
	if !ok {
		return 0, 0, 0, 0, 0, false
	}
	return d.level, d.l1, d.l2, d.threadID, d.nodeID, true
}

func (t *Term) IntValue() (int64, bool) {
	d, ok := t.data.(intData)
	if !ok {
		return 0, false
	}
	return d.value, true
}

func (t *Term) BoolValue() (bool, bool) {
	d, ok := t.data.(boolData)
	if !ok {
		return false, false
	}
	return d.value, true
}

func (t *Term) StringValue() (string, bool) {
	d, ok := t.data.(stringData)
	if !ok {
		return "", false
	}
	return d.value, true
}

func (t *Term) Endianness() Endianness {
	if d, ok := t.data.(byteData); ok {
		return d.endian
	}
	return LittleEndian
}

func (t *Term) SideEffectKind() SideEffectKind {
	if d, ok := t.data.(sideEffectData); ok {
		return d.kind
	}
	return SideEffectHeap
}

// newTerm is the single unexported constructor every exported builder
// funnels through, so hashing/equality always see the same shape.
func newTerm(tag Tag, typ *Type, children []*Term, types []*Type, data termData) *Term {
	return &Term{tag: tag, typ: typ, children: children, types: types, data: data}
}

// Equal reports structural equality: same tag, same type, same children
// (recursively, in order), same secondary types, same scalar payload.
func (t *Term) Equal(o *Term) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.tag != o.tag {
		return false
	}
	if !t.typ.Equal(o.typ) {
		return false
	}
	if len(t.children) != len(o.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(o.children[i]) {
			return false
		}
	}
	if len(t.types) != len(o.types) {
		return false
	}
	for i := range t.types {
		if !t.types[i].Equal(o.types[i]) {
			return false
		}
	}
	return dataKey(t.data) == dataKey(o.data)
}

func exprEqual(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// Hash returns a cached structural hash. It is a pure function of the
// child tuple (tag, type, children, secondary types, scalar payload),
// computed lazily and never invalidated in place: a mutation always
// produces a fresh Term with hashSet==false.
func (t *Term) Hash() uint32 {
	if t.hashSet {
		return t.hash
	}
	h := hashCombine(0, uint32(t.tag))
	if t.typ != nil {
		h = hashCombine(h, t.typ.Hash())
	}
	for _, c := range t.children {
		h = hashCombine(h, c.Hash())
	}
	for _, ty := range t.types {
		h = hashCombine(h, ty.Hash())
	}
	h = hashCombine(h, hashString(dataKey(t.data)))
	t.hash = h
	t.hashSet = true
	return h
}

// Compare defines a total order over terms, comparing tag, then type
// hash, then children pairwise in their fixed construction order, then
// secondary types, then scalar payload. It is consistent with Equal:
// Compare(a, b) == 0 iff a.Equal(b) (modulo type-hash collisions, which
// Type.Equal is still consulted to break).
func Compare(a, b *Term) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.tag != b.tag {
		if a.tag < b.tag {
			return -1
		}
		return 1
	}
	if c := compareTypes(a.typ, b.typ); c != 0 {
		return c
	}
	n := len(a.children)
	if len(b.children) < n {
		n = len(b.children)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.children[i], b.children[i]); c != 0 {
			return c
		}
	}
	if len(a.children) != len(b.children) {
		if len(a.children) < len(b.children) {
			return -1
		}
		return 1
	}
	n = len(a.types)
	if len(b.types) < n {
		n = len(b.types)
	}
	for i := 0; i < n; i++ {
		if c := compareTypes(a.types[i], b.types[i]); c != 0 {
			return c
		}
	}
	if len(a.types) != len(b.types) {
		if len(a.types) < len(b.types) {
			return -1
		}
		return 1
	}
	ak, bk := dataKey(a.data), dataKey(b.data)
	if ak != bk {
		if ak < bk {
			return -1
		}
		return 1
	}
	return 0
}

func compareTypes(a, b *Type) int {
	if a.Equal(b) {
		return 0
	}
	ah, bh := a.Hash(), b.Hash()
	if ah < bh {
		return -1
	}
	if ah > bh {
		return 1
	}
	// Hash collision between structurally distinct types: fall back to a
	// stable but arbitrary tie-break so Compare remains a total order.
	if a.tag != b.tag {
		if a.tag < b.tag {
			return -1
		}
		return 1
	}
	return 0
}

// WithChild returns a copy of t with child i replaced by v. Used by the
// simplifier and by "with"-folding to rewrite one operand without
// touching the others; the original Term is left untouched.
func (t *Term) WithChild(i int, v *Term) *Term {
	children := make([]*Term, len(t.children))
	copy(children, t.children)
	children[i] = v
	return newTerm(t.tag, t.typ, children, t.types, t.data)
}

// WithType returns a copy of t retyped to typ.
func (t *Term) WithType(typ *Type) *Term {
	return newTerm(t.tag, typ, t.children, t.types, t.data)
}
