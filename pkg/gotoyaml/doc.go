// Package gotoyaml defines the YAML document format cmd/symexec and
// cmd/dumpir read goto-programs from (ir.Program has no wire format of
// its own, by design — see ir/program.go). It plays the role
// cmd/test_production's ad-hoc YAML load/marshal calls play for
// schemaexec, generalized into a shared, schema-validated document shape
// both CLI tools decode the same way.
package gotoyaml

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/gotosym/symex/ir"
)

// typeDoc is the YAML shape of an ir.Type. Kind matches ir.TypeTag's
// String() names, so a dumped type round-trips through the same names a
// human reading a trace already sees.
type typeDoc struct {
	Kind     string     `yaml:"kind"`
	Width    int        `yaml:"width,omitempty"`
	IntBits  int        `yaml:"int_bits,omitempty"`
	Elem     *typeDoc   `yaml:"elem,omitempty"`
	Infinite bool       `yaml:"infinite,omitempty"`
	Name     string     `yaml:"name,omitempty"`
	Fields   []fieldDoc `yaml:"fields,omitempty"`
}

type fieldDoc struct {
	Name string   `yaml:"name"`
	Type *typeDoc `yaml:"type"`
}

func buildType(d *typeDoc) (*ir.Type, error) {
	if d == nil {
		return ir.EmptyType(), nil
	}
	switch d.Kind {
	case "bool":
		return ir.BoolType(), nil
	case "empty":
		return ir.EmptyType(), nil
	case "code":
		return ir.CodeType(), nil
	case "symbolic":
		return ir.SymbolicType(d.Name), nil
	case "cpp-name":
		return ir.CppNameType(d.Name), nil
	case "unsignedbv":
		return ir.UnsignedBVType(d.Width), nil
	case "signedbv":
		return ir.SignedBVType(d.Width), nil
	case "fixedbv":
		return ir.FixedBVType(d.Width, d.IntBits), nil
	case "string":
		return ir.StringType(d.Width), nil
	case "pointer":
		elem, err := buildType(d.Elem)
		if err != nil {
			return nil, err
		}
		return ir.PointerType(elem), nil
	case "array":
		elem, err := buildType(d.Elem)
		if err != nil {
			return nil, err
		}
		if d.Infinite {
			return ir.InfiniteArrayType(elem), nil
		}
		// A fixed-size array's size is itself an ir.Term (possibly
		// symbolic), which this document format has no slot for yet;
		// callers that need one build it with a symbolic size and
		// constrain it via an assumption instruction instead.
		return nil, fmt.Errorf("type: fixed-size array requires infinite: true in this document format")
	case "struct", "union":
		fields := make([]ir.StructField, len(d.Fields))
		for i, f := range d.Fields {
			ft, err := buildType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("type: field %s: %w", f.Name, err)
			}
			fields[i] = ir.StructField{Name: f.Name, Type: ft}
		}
		if d.Kind == "struct" {
			return ir.StructType(fields), nil
		}
		return ir.UnionType(fields), nil
	default:
		return nil, fmt.Errorf("type: unknown kind %q", d.Kind)
	}
}

// exprDoc is the YAML shape of an ir.Term. Op matches ir.Tag's String()
// names for everything except the leaves (symbol/the three constant
// kinds), which take a value field instead of children.
type exprDoc struct {
	Op      string     `yaml:"op"`
	Sym     string     `yaml:"sym,omitempty"`
	Int     *int64     `yaml:"int,omitempty"`
	Bool    *bool      `yaml:"bool,omitempty"`
	Str     *string    `yaml:"str,omitempty"`
	Field   string     `yaml:"field,omitempty"`
	Type    *typeDoc   `yaml:"type,omitempty"`
	Args    []*exprDoc `yaml:"args,omitempty"`
}

func buildExpr(ctx *ir.Context, d *exprDoc) (*ir.Term, error) {
	if d == nil {
		return nil, nil
	}
	typ, err := buildType(d.Type)
	if err != nil {
		return nil, err
	}

	arg := func(i int) (*ir.Term, error) {
		if i >= len(d.Args) {
			return nil, fmt.Errorf("expr %q: expected at least %d argument(s)", d.Op, i+1)
		}
		return buildExpr(ctx, d.Args[i])
	}
	args := func() ([]*ir.Term, error) {
		out := make([]*ir.Term, len(d.Args))
		for i, a := range d.Args {
			t, err := buildExpr(ctx, a)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	switch d.Op {
	case "symbol":
		if d.Type == nil {
			return nil, fmt.Errorf("expr symbol %q: missing type", d.Sym)
		}
		return ir.Symbol(ctx, d.Sym, typ), nil
	case "constant_int":
		if d.Int == nil {
			return nil, fmt.Errorf("expr constant_int: missing int value")
		}
		return ir.ConstInt(ctx, *d.Int, typ), nil
	case "constant_bool":
		if d.Bool == nil {
			return nil, fmt.Errorf("expr constant_bool: missing bool value")
		}
		return ir.ConstBool(ctx, *d.Bool), nil
	case "constant_string":
		if d.Str == nil {
			return nil, fmt.Errorf("expr constant_string: missing str value")
		}
		return ir.ConstString(ctx, *d.Str, typ), nil
	}

	a, err := arg(0)
	if err != nil {
		return nil, err
	}

	switch d.Op {
	case "unary-":
		return ir.Neg(ctx, a), nil
	case "bitnot":
		return ir.BitNot(ctx, a), nil
	case "not":
		return ir.Not(ctx, a), nil
	case "typecast":
		return ir.Typecast(ctx, a, typ), nil
	case "dereference":
		return ir.Dereference(ctx, a), nil
	case "address_of":
		return ir.AddressOf(ctx, a), nil
	case "member":
		return ir.Member(ctx, a, d.Field), nil
	case "overflow-unary-":
		return ir.OverflowNeg(ctx, a), nil
	case "isnan":
		return ir.IsNan(ctx, a), nil
	case "isinf":
		return ir.IsInf(ctx, a), nil
	case "isnormal":
		return ir.IsNormal(ctx, a), nil
	case "overflow-typecast":
		return ir.OverflowCast(ctx, a, typ), nil
	}

	b, err := arg(1)
	if err != nil {
		return nil, err
	}

	switch d.Op {
	case "+":
		return ir.Add(ctx, a, b), nil
	case "-":
		return ir.Sub(ctx, a, b), nil
	case "*":
		return ir.Mul(ctx, a, b), nil
	case "/":
		return ir.Div(ctx, a, b), nil
	case "%":
		return ir.Mod(ctx, a, b), nil
	case "bitand":
		return ir.BitAnd(ctx, a, b), nil
	case "bitor":
		return ir.BitOr(ctx, a, b), nil
	case "bitxor":
		return ir.BitXor(ctx, a, b), nil
	case "shl":
		return ir.Shl(ctx, a, b), nil
	case "shr":
		return ir.Shr(ctx, a, b), nil
	case "=":
		return ir.Eq(ctx, a, b), nil
	case "notequal":
		return ir.NotEq(ctx, a, b), nil
	case "<":
		return ir.Lt(ctx, a, b), nil
	case "<=":
		return ir.Le(ctx, a, b), nil
	case ">":
		return ir.Gt(ctx, a, b), nil
	case ">=":
		return ir.Ge(ctx, a, b), nil
	case "and":
		return ir.And(ctx, a, b), nil
	case "or":
		return ir.Or(ctx, a, b), nil
	case "=>":
		return ir.Implies(ctx, a, b), nil
	case "index":
		return ir.Index(ctx, a, b), nil
	case "same-object":
		return ir.SameObject(ctx, a, b), nil
	case "overflow-+":
		return ir.OverflowAdd(ctx, a, b), nil
	case "overflow--":
		return ir.OverflowSub(ctx, a, b), nil
	case "overflow-*":
		return ir.OverflowMul(ctx, a, b), nil
	}

	if d.Op == "if" {
		c, err := args()
		if err != nil {
			return nil, err
		}
		if len(c) != 3 {
			return nil, fmt.Errorf("expr if: expected 3 arguments (cond, then, else), got %d", len(c))
		}
		return ir.IfThenElse(ctx, c[0], c[1], c[2]), nil
	}

	return nil, fmt.Errorf("expr: unsupported op %q", d.Op)
}

// instrDoc is the YAML shape of one ir.Instruction. Kind matches
// ir.InstructionKind's String() names.
type instrDoc struct {
	Kind      string     `yaml:"kind"`
	Lhs       *exprDoc   `yaml:"lhs,omitempty"`
	Rhs       *exprDoc   `yaml:"rhs,omitempty"`
	Args      []*exprDoc `yaml:"args,omitempty"`
	Target    int        `yaml:"target,omitempty"`
	Message   string     `yaml:"message,omitempty"`
	Callee    string     `yaml:"callee,omitempty"`
	ReturnLhs *exprDoc   `yaml:"return_lhs,omitempty"`
	Loc       *locDoc    `yaml:"loc,omitempty"`
}

type locDoc struct {
	File   string `yaml:"file,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	LoopID int    `yaml:"loop_id,omitempty"`
}

var kindByName = map[string]ir.InstructionKind{
	"skip":            ir.KindSkip,
	"decl":            ir.KindDecl,
	"assign":          ir.KindAssign,
	"function_call":   ir.KindFunctionCall,
	"function_return": ir.KindFunctionReturn,
	"goto":            ir.KindGoto,
	"assume":          ir.KindAssume,
	"assert":          ir.KindAssert,
	"atomic_begin":    ir.KindAtomicBegin,
	"atomic_end":      ir.KindAtomicEnd,
	"throw":           ir.KindThrow,
	"catch":           ir.KindCatch,
	"end_function":    ir.KindEndFunction,
}

func buildInstruction(ctx *ir.Context, d *instrDoc) (*ir.Instruction, error) {
	kind, ok := kindByName[d.Kind]
	if !ok {
		return nil, fmt.Errorf("instruction: unknown kind %q", d.Kind)
	}
	lhs, err := buildExpr(ctx, d.Lhs)
	if err != nil {
		return nil, fmt.Errorf("instruction %s: lhs: %w", d.Kind, err)
	}
	rhs, err := buildExpr(ctx, d.Rhs)
	if err != nil {
		return nil, fmt.Errorf("instruction %s: rhs: %w", d.Kind, err)
	}
	returnLhs, err := buildExpr(ctx, d.ReturnLhs)
	if err != nil {
		return nil, fmt.Errorf("instruction %s: return_lhs: %w", d.Kind, err)
	}
	args := make([]*ir.Term, len(d.Args))
	for i, a := range d.Args {
		t, err := buildExpr(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("instruction %s: args[%d]: %w", d.Kind, i, err)
		}
		args[i] = t
	}

	instr := &ir.Instruction{
		Kind:      kind,
		Lhs:       lhs,
		Rhs:       rhs,
		Args:      args,
		Target:    d.Target,
		Message:   d.Message,
		Callee:    d.Callee,
		ReturnLhs: returnLhs,
	}
	if d.Loc != nil {
		instr.Loc = ir.Location{File: d.Loc.File, Line: d.Loc.Line, LoopID: d.Loc.LoopID}
	}
	return instr, nil
}

type funcDoc struct {
	Params       []*exprDoc  `yaml:"params,omitempty"`
	Instructions []*instrDoc `yaml:"instructions"`
}

// ProgramDoc is the top-level YAML document cmd/symexec reads: a map of
// function name to body plus the entry function's name.
type ProgramDoc struct {
	Entry     string              `yaml:"entry"`
	Functions map[string]*funcDoc `yaml:"functions"`
}

func BuildProgram(ctx *ir.Context, doc *ProgramDoc) (*ir.Program, error) {
	if doc.Entry == "" {
		return nil, fmt.Errorf("program: missing entry")
	}
	functions := make(map[string]*ir.Function, len(doc.Functions))
	for name, fd := range doc.Functions {
		params := make([]*ir.Term, len(fd.Params))
		for i, p := range fd.Params {
			t, err := buildExpr(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("function %s: params[%d]: %w", name, i, err)
			}
			params[i] = t
		}
		instrs := make([]*ir.Instruction, len(fd.Instructions))
		for i, id := range fd.Instructions {
			instr, err := buildInstruction(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("function %s: instructions[%d]: %w", name, i, err)
			}
			instrs[i] = instr
		}
		functions[name] = &ir.Function{Name: name, Params: params, Instructions: instrs}
	}
	if _, ok := functions[doc.Entry]; !ok {
		return nil, fmt.Errorf("program: entry function %q not defined", doc.Entry)
	}
	return &ir.Program{Functions: functions, Entry: doc.Entry}, nil
}

// Load validates raw against the bundled JSON Schema, decodes it as a
// ProgramDoc, and builds the resulting *ir.Program against ctx — the one
// call cmd/symexec and cmd/dumpir both make to go from a file's bytes to
// something the engine can run.
func Load(ctx *ir.Context, raw []byte) (*ir.Program, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var doc ProgramDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return BuildProgram(ctx, &doc)
}

// Validate checks raw's outer shape against Schema without building an
// ir.Program from it, so a malformed document fails with a
// JSON-Schema-precise error before expression construction ever runs.
func Validate(raw []byte) error {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(Schema)))
	if err != nil {
		return fmt.Errorf("internal: parsing schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("goto-program.json", schemaDoc); err != nil {
		return fmt.Errorf("internal: compiling schema: %w", err)
	}
	schema, err := compiler.Compile("goto-program.json")
	if err != nil {
		return fmt.Errorf("internal: compiling schema: %w", err)
	}

	// yaml.Unmarshal into `any` produces map[string]any/[]any/int/etc,
	// which is close to but not exactly what jsonschema expects (it wants
	// json.Number-compatible numerics); round-tripping through
	// jsonschema's own decoder is the documented way to normalize an
	// instance decoded by anything other than encoding/json.
	jsonBytes, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("internal: converting document for schema validation: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("internal: normalizing document: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		// Name an unrecognized instruction kind in the error itself.
		top, _ := generic.(map[string]any)
		fns, _ := top["functions"].(map[string]any)
		for _, fn := range fns {
			f, _ := fn.(map[string]any)
			instrs, _ := f["instructions"].([]any)
			for _, in := range instrs {
				i, _ := in.(map[string]any)
				if k, ok := i["kind"].(string); ok {
					if _, known := kindByName[k]; !known {
						return fmt.Errorf("schema validation: unknown instruction kind %q: %w", k, err)
					}
				}
			}
		}
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
