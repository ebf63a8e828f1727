package ast

// BuiltinOp tags a primitive operation. The same tag set serves the
// surface tree, the unrolled tree and the lowered tree; only the later
// stages use the control-flow and heap tags.
type BuiltinOp uint8

const (
	// Arithmetic
	Add BuiltinOp = iota + 1
	Sub
	Mul
	Div
	Rem
	// Logical (bitwise)
	Not
	And
	Or
	Xor
	// Vectors
	Vempty
	Vlen
	Vref
	Vpush
	Vappend
	Vslice
	// Control flow, lowered stage only
	Bez
	Bnz
	Jmp
	// Heap access, lowered stage only
	Load
	Store
)

// Builtin is the generic shape of a primitive application, instantiated
// once per pipeline stage with that stage's child type. N carries the
// operand of the lowered control-flow and heap tags: a heap slot for
// Load/Store, a relative offset for Bez/Bnz/Jmp. Earlier stages leave
// it zero.
type Builtin[E any] struct {
	Op   BuiltinOp
	Args []E
	N    uint16
}

var builtinNames = map[BuiltinOp]string{
	Add:     "+",
	Sub:     "-",
	Mul:     "*",
	Div:     "/",
	Rem:     "%",
	Not:     "not",
	And:     "and",
	Or:      "or",
	Xor:     "xor",
	Vempty:  "v-empty",
	Vlen:    "v-len",
	Vref:    "v-ref",
	Vpush:   "v-push",
	Vappend: "v-append",
	Vslice:  "v-slice",
	Bez:     "bez",
	Bnz:     "bnz",
	Jmp:     "jmp",
	Load:    "load",
	Store:   "store",
}

func (op BuiltinOp) String() string {
	return builtinNames[op]
}

// surfaceArity lists the builtins callable from source, with the number
// of arguments each expects.
var surfaceArity = map[BuiltinOp]int{
	Add:     2,
	Sub:     2,
	Mul:     2,
	Div:     2,
	Rem:     2,
	Not:     1,
	And:     2,
	Or:      2,
	Xor:     2,
	Vempty:  0,
	Vlen:    1,
	Vref:    2,
	Vpush:   2,
	Vappend: 2,
	Vslice:  3,
}

// Arity returns the argument count op expects in source programs, and
// whether op may appear there at all.
func (op BuiltinOp) Arity() (int, bool) {
	n, ok := surfaceArity[op]
	return n, ok
}

var builtinsByName map[string]BuiltinOp

func init() {
	builtinsByName = make(map[string]BuiltinOp)
	for op := range surfaceArity {
		builtinsByName[builtinNames[op]] = op
	}
}

// BuiltinByName resolves a source token to its operation tag.
func BuiltinByName(name string) (BuiltinOp, bool) {
	op, ok := builtinsByName[name]
	return op, ok
}
