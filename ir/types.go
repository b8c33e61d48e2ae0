package ir

// TypeTag identifies the shape of a Type node.
type TypeTag uint8

const (
	TyInvalid TypeTag = iota
	TyBool
	TyEmpty
	TySymbolic // forward reference by name; nothing in this package resolves it to a definition
	TyStruct
	TyUnion
	TyCode
	TyArray
	TyPointer
	TyUnsignedBV
	TySignedBV
	TyFixedBV
	TyString
	TyCppName
)

func (t TypeTag) String() string {
	switch t {
	case TyBool:
		return "bool"
	case TyEmpty:
		return "empty"
	case TySymbolic:
		return "symbolic"
	case TyStruct:
		return "struct"
	case TyUnion:
		return "union"
	case TyCode:
		return "code"
	case TyArray:
		return "array"
	case TyPointer:
		return "pointer"
	case TyUnsignedBV:
		return "unsignedbv"
	case TySignedBV:
		return "signedbv"
	case TyFixedBV:
		return "fixedbv"
	case TyString:
		return "string"
	case TyCppName:
		return "cpp-name"
	default:
		return "type(unknown)"
	}
}

// StructField is a named, typed member of a struct or union type.
type StructField struct {
	Name string
	Type *Type
}

// Type is an immutable, structurally-shared type node. Equal types may or
// may not be the same pointer: sharing is per-construction-site (via a
// Context's intern table), never enforced globally.
type Type struct {
	tag TypeTag

	width    int  // bit-vector width, or string element count
	intBits  int  // fixed-point: integer-bit count of Width
	infinite bool // array: no fixed size known

	elem   *Type // pointer/array element type
	sizeE  *Term // array size expression (may simplify to a constant)
	fields []StructField
	name   string // symbolic forward-reference name, or cpp-name

	hash    uint32
	hashSet bool
}

func (t *Type) Tag() TypeTag { return t.tag }
func (t *Type) Width() int   { return t.width }
func (t *Type) IntBits() int { return t.intBits }
func (t *Type) Infinite() bool {
	return t.tag == TyArray && t.infinite
}
func (t *Type) Elem() *Type   { return t.elem }
func (t *Type) SizeExpr() *Term { return t.sizeE }
func (t *Type) Fields() []StructField {
	return t.fields
}
func (t *Type) Name() string { return t.name }

func (t *Type) Field(name string) (*Type, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Equal reports structural equality between two types.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.tag != o.tag {
		return false
	}
	switch t.tag {
	case TyUnsignedBV, TySignedBV:
		return t.width == o.width
	case TyFixedBV:
		return t.width == o.width && t.intBits == o.intBits
	case TyString:
		return t.width == o.width
	case TyPointer:
		return t.elem.Equal(o.elem)
	case TyArray:
		if t.infinite != o.infinite {
			return false
		}
		if !t.infinite && !exprEqual(t.sizeE, o.sizeE) {
			return false
		}
		return t.elem.Equal(o.elem)
	case TyStruct, TyUnion:
		if len(t.fields) != len(o.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != o.fields[i].Name {
				return false
			}
			if !t.fields[i].Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case TySymbolic, TyCppName:
		return t.name == o.name
	default:
		return true // bool, empty, code: tag alone is discriminating enough here
	}
}

// Hash returns a cached structural hash, computed lazily.
func (t *Type) Hash() uint32 {
	if t.hashSet {
		return t.hash
	}
	h := hashCombine(0, uint32(t.tag))
	switch t.tag {
	case TyUnsignedBV, TySignedBV:
		h = hashCombine(h, uint32(t.width))
	case TyFixedBV:
		h = hashCombine(h, uint32(t.width))
		h = hashCombine(h, uint32(t.intBits))
	case TyString:
		h = hashCombine(h, uint32(t.width))
	case TyPointer:
		h = hashCombine(h, t.elem.Hash())
	case TyArray:
		h = hashCombine(h, t.elem.Hash())
		if t.infinite {
			h = hashCombine(h, 1)
		} else if t.sizeE != nil {
			h = hashCombine(h, t.sizeE.Hash())
		}
	case TyStruct, TyUnion:
		for _, f := range t.fields {
			h = hashCombine(h, hashString(f.Name))
			h = hashCombine(h, f.Type.Hash())
		}
	case TySymbolic, TyCppName:
		h = hashCombine(h, hashString(t.name))
	}
	t.hash = h
	t.hashSet = true
	return h
}

func BoolType() *Type  { return &Type{tag: TyBool} }
func EmptyType() *Type { return &Type{tag: TyEmpty} }
func CodeType() *Type  { return &Type{tag: TyCode} }

func SymbolicType(name string) *Type {
	return &Type{tag: TySymbolic, name: name}
}

func CppNameType(name string) *Type {
	return &Type{tag: TyCppName, name: name}
}

func UnsignedBVType(width int) *Type {
	return &Type{tag: TyUnsignedBV, width: width}
}

func SignedBVType(width int) *Type {
	return &Type{tag: TySignedBV, width: width}
}

func FixedBVType(width, intBits int) *Type {
	return &Type{tag: TyFixedBV, width: width, intBits: intBits}
}

func StringType(elements int) *Type {
	return &Type{tag: TyString, width: elements}
}

func PointerType(elem *Type) *Type {
	return &Type{tag: TyPointer, elem: elem}
}

// ArrayType builds a fixed-size array type. If size simplifies to a
// constant at construction (per §3's invariant), the caller is expected to
// have already simplified it; ArrayType stores whatever Term it is given.
func ArrayType(elem *Type, size *Term) *Type {
	return &Type{tag: TyArray, elem: elem, sizeE: size}
}

// InfiniteArrayType builds an array type of unknown/unbounded size.
func InfiniteArrayType(elem *Type) *Type {
	return &Type{tag: TyArray, elem: elem, infinite: true}
}

func StructType(fields []StructField) *Type {
	return &Type{tag: TyStruct, fields: fields}
}

func UnionType(fields []StructField) *Type {
	return &Type{tag: TyUnion, fields: fields}
}
