package ir

// Context is the explicit replacement for the source's process-wide type
// pool and handful of canonical constants (Design Notes, "Global state").
// It owns an intern table so equal terms constructed through it become
// the same pointer; unlike a systems-language global, nothing here is
// package-level mutable state, so the engine can be reentrant over
// independent goto-programs (§5) simply by giving each run its own
// Context, or sharing one across runs that should share structure.
//
// Interning is a refinement, not a requirement: two Contexts, or even two
// calls against the same Context using raw constructors instead of
// Intern, may hold equal-but-distinct Terms. Nothing downstream depends
// on physical identity, only on Equal/Hash/Compare.
type Context struct {
	terms map[uint32][]*Term
	types map[uint32][]*Type

	boolT   *Type
	trueT   *Term
	falseT  *Term
	smallIn map[smallIntKey]*Term // small integer constants, cached like the source's canonical constants
}

type smallIntKey struct {
	value   int64
	typeTag TypeTag
	width   int
}

func NewContext() *Context {
	c := &Context{
		terms:   make(map[uint32][]*Term, 256),
		types:   make(map[uint32][]*Type, 64),
		smallIn: make(map[smallIntKey]*Term, 256),
	}
	c.boolT = c.InternType(BoolType())
	c.trueT = c.Intern(newTerm(TagConstBool, c.boolT, nil, nil, boolData{true}))
	c.falseT = c.Intern(newTerm(TagConstBool, c.boolT, nil, nil, boolData{false}))
	return c
}

// True and False are the canonical boolean constants, always the same
// pointer for a given Context.
func (c *Context) True() *Term  { return c.trueT }
func (c *Context) False() *Term { return c.falseT }

// BoolConst returns True() or False() depending on v.
func (c *Context) BoolConst(v bool) *Term {
	if v {
		return c.trueT
	}
	return c.falseT
}

// Intern returns a canonical handle for t: if an equal term was already
// interned through this Context, that shared handle is returned instead
// of t.
func (c *Context) Intern(t *Term) *Term {
	h := t.Hash()
	bucket := c.terms[h]
	for _, existing := range bucket {
		if existing.Equal(t) {
			return existing
		}
	}
	c.terms[h] = append(bucket, t)
	return t
}

func (c *Context) InternType(t *Type) *Type {
	h := t.Hash()
	bucket := c.types[h]
	for _, existing := range bucket {
		if existing.Equal(t) {
			return existing
		}
	}
	c.types[h] = append(bucket, t)
	return t
}

// SmallInt returns a cached canonical handle for small integer constants
// of the given bitvector type, mirroring the source's cache of small
// integer constants. Values outside a modest range are still built and
// interned normally, just not cached in this fast path.
func (c *Context) SmallInt(v int64, typ *Type) *Term {
	key := smallIntKey{value: v, typeTag: typ.tag, width: typ.width}
	cacheable := v >= -256 && v <= 256
	if cacheable {
		if t, ok := c.smallIn[key]; ok {
			return t
		}
	}
	t := c.Intern(newTerm(TagConstInt, typ, nil, nil, intData{v}))
	if cacheable {
		c.smallIn[key] = t
	}
	return t
}
