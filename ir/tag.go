// Package ir defines the term graph (types and expressions) and the
// goto-program instruction stream that the symbolic execution engine
// consumes. It has no dependency on the engine package: frontends and
// goto-conversion, both out of scope for this repository, are the
// producers of ir.Program values.
package ir

// Tag identifies the shape of a Term. The enumeration is closed: every
// Term's Children, Types and scalar fields are interpreted according to
// its Tag, and structural equality, ordering and hashing walk exactly the
// fields a Tag says are meaningful.
type Tag uint8

const (
	TagInvalid Tag = iota

	// Constants.
	TagConstInt
	TagConstFixed
	TagConstBool
	TagConstString
	TagConstStruct
	TagConstUnion
	TagConstArray
	TagConstArrayOf

	// Symbols.
	TagSymbol

	// Arithmetic / bitwise / shift.
	TagAdd
	TagSub
	TagMul
	TagDiv
	TagMod
	TagNeg
	TagBitAnd
	TagBitOr
	TagBitXor
	TagBitNot
	TagShl
	TagShr

	// Relational.
	TagEq
	TagNotEq
	TagLt
	TagLe
	TagGt
	TagGe

	// Boolean connectives.
	TagAnd
	TagOr
	TagNot
	TagImplies

	// Casts and selection.
	TagTypecast
	TagIfThenElse

	// Pointers.
	TagAddressOf
	TagPointerOffset
	TagPointerObject
	TagSameObject
	TagDereference
	TagDynamicObject
	TagInvalidPointer
	TagNullObject

	// Byte-level and functional update.
	TagByteExtract
	TagByteUpdate
	TagWith
	TagMember
	TagIndex

	// Overflow predicates.
	TagOverflowAdd
	TagOverflowSub
	TagOverflowMul
	TagOverflowCast
	TagOverflowNeg

	// Floating point predicates.
	TagIsNan
	TagIsInf
	TagIsNormal

	TagConcat

	// Side effects (allocation).
	TagSideEffect

	// Statement-level sub-language.
	TagBlock
	TagAssign
	TagInit
	TagDecl
	TagPrintf
	TagReturn
	TagSkip
	TagFree
	TagGoto
	TagFunctionCall
	TagThrowDecl
	TagCatchDecl
)

// SideEffectKind distinguishes the allocation kinds of TagSideEffect terms.
type SideEffectKind uint8

const (
	SideEffectHeap SideEffectKind = iota
	SideEffectStack
	SideEffectNew
	SideEffectNewArray
	SideEffectNondet
	SideEffectCall
)

// Endianness controls TagByteExtract / TagByteUpdate interpretation.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// RenameLevel is the renaming level a TagSymbol term currently carries.
// L0 symbols have neither L1 nor L2 numbers meaningful; L1 symbols have
// only L1; L2 symbols have both (§4.3).
type RenameLevel uint8

const (
	L0 RenameLevel = iota
	L1
	L2
)

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "tag(unknown)"
}

var tagNames = map[Tag]string{
	TagInvalid:        "invalid",
	TagConstInt:       "constant_int",
	TagConstFixed:     "constant_fixed",
	TagConstBool:      "constant_bool",
	TagConstString:    "constant_string",
	TagConstStruct:    "constant_struct",
	TagConstUnion:     "constant_union",
	TagConstArray:     "constant_array",
	TagConstArrayOf:   "constant_array_of",
	TagSymbol:         "symbol",
	TagAdd:            "+",
	TagSub:            "-",
	TagMul:            "*",
	TagDiv:            "/",
	TagMod:            "%",
	TagNeg:            "unary-",
	TagBitAnd:         "bitand",
	TagBitOr:          "bitor",
	TagBitXor:         "bitxor",
	TagBitNot:         "bitnot",
	TagShl:            "shl",
	TagShr:            "shr",
	TagEq:             "=",
	TagNotEq:          "notequal",
	TagLt:             "<",
	TagLe:             "<=",
	TagGt:             ">",
	TagGe:             ">=",
	TagAnd:            "and",
	TagOr:             "or",
	TagNot:            "not",
	TagImplies:        "=>",
	TagTypecast:       "typecast",
	TagIfThenElse:     "if",
	TagAddressOf:      "address_of",
	TagPointerOffset:  "pointer_offset",
	TagPointerObject:  "pointer_object",
	TagSameObject:     "same-object",
	TagDereference:    "dereference",
	TagDynamicObject:  "dynamic_object",
	TagInvalidPointer: "invalid-pointer",
	TagNullObject:     "NULL-object",
	TagByteExtract:    "byte_extract",
	TagByteUpdate:     "byte_update",
	TagWith:           "with",
	TagMember:         "member",
	TagIndex:          "index",
	TagOverflowAdd:    "overflow-+",
	TagOverflowSub:    "overflow--",
	TagOverflowMul:    "overflow-*",
	TagOverflowCast:   "overflow-typecast",
	TagOverflowNeg:    "overflow-unary-",
	TagIsNan:          "isnan",
	TagIsInf:          "isinf",
	TagIsNormal:       "isnormal",
	TagConcat:         "concat",
	TagSideEffect:     "sideeffect",
	TagBlock:          "code_block",
	TagAssign:         "code_assign",
	TagInit:           "code_init",
	TagDecl:           "code_decl",
	TagPrintf:         "code_printf",
	TagReturn:         "code_return",
	TagSkip:           "code_skip",
	TagFree:           "code_free",
	TagGoto:           "code_goto",
	TagFunctionCall:   "code_function_call",
	TagThrowDecl:      "code_throw_decl",
	TagCatchDecl:      "code_catch_decl",
}
