package lower

// The instruction counter and the flattener below are the two halves of
// one structural recursion and must stay in lockstep: Count sizes the
// jump offsets the lowerer bakes into the tree, and Flatten emits the
// instructions those offsets index. A node shape whose count disagrees
// with its emission makes every later jump land wrong.

import (
	"github.com/themeliolabs/mil/ast"
	"github.com/themeliolabs/mil/errors"
	"github.com/themeliolabs/mil/math/checked"
	"github.com/themeliolabs/mil/vm"
)

// builtinOps maps a builtin tag to its machine opcode. Every builtin
// contributes exactly one instruction beyond its arguments.
var builtinOps = map[ast.BuiltinOp]vm.Op{
	ast.Add:     vm.OP_ADD,
	ast.Sub:     vm.OP_SUB,
	ast.Mul:     vm.OP_MUL,
	ast.Div:     vm.OP_DIV,
	ast.Rem:     vm.OP_REM,
	ast.Not:     vm.OP_NOT,
	ast.And:     vm.OP_AND,
	ast.Or:      vm.OP_OR,
	ast.Xor:     vm.OP_XOR,
	ast.Vempty:  vm.OP_VEMPTY,
	ast.Vlen:    vm.OP_VLEN,
	ast.Vref:    vm.OP_VREF,
	ast.Vpush:   vm.OP_VPUSH,
	ast.Vappend: vm.OP_VAPPEND,
	ast.Vslice:  vm.OP_VSLICE,
	ast.Bez:     vm.OP_BEZ,
	ast.Bnz:     vm.OP_BNZ,
	ast.Jmp:     vm.OP_JMP,
	ast.Load:    vm.OP_LOAD,
	ast.Store:   vm.OP_STORE,
}

// Count returns exactly the number of machine instructions x flattens
// to. It is pure and total: every leaf contributes 1, every wrapper 1
// plus its children.
func Count(x Expr) int {
	switch x := x.(type) {
	case *Lit:
		return 1
	case *Builtin:
		n := 1
		for _, a := range x.Args {
			n += Count(a)
		}
		return n
	case Seq:
		n := 0
		for _, e := range x {
			n += Count(e)
		}
		return n
	case *Loop:
		return 1 + Count(x.Body)
	case *Hash:
		return 1 + Count(x.Body)
	case *Sigeok:
		return 1 + Count(x.Msg) + Count(x.Key) + Count(x.Sig)
	}
	return 0
}

// Flatten emits the instruction sequence of x. LOOP precedes its body
// (the interpreter tracks iterations); HASH and SIGEOK follow the code
// that computes their inputs.
func Flatten(x Expr) ([]vm.Instruction, error) {
	return flatten(nil, x)
}

func flatten(out []vm.Instruction, x Expr) ([]vm.Instruction, error) {
	var err error
	switch x := x.(type) {
	case *Lit:
		switch v := x.Value.(type) {
		case ast.Int:
			b := v.U256().Bytes32()
			out = append(out, vm.Instruction{Op: vm.OP_PUSHI, Data: b[:]})
		case ast.Bytes:
			out = append(out, vm.Instruction{Op: vm.OP_PUSHB, Data: v})
		default:
			return nil, errors.WithDetailf(errMalformedTree, "literal with no value %T", x.Value)
		}

	case *Builtin:
		for _, a := range x.Args {
			out, err = flatten(out, a)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, vm.Instruction{Op: builtinOps[x.Op], N: x.N})

	case Seq:
		for _, e := range x {
			out, err = flatten(out, e)
			if err != nil {
				return nil, err
			}
		}

	case *Loop:
		m, ok := checked.Uint16(Count(x.Body))
		if !ok {
			return nil, errors.WithDetail(ErrProgramTooLarge, "loop body exceeds u16 instruction count")
		}
		out = append(out, vm.Instruction{Op: vm.OP_LOOP, N: x.N, M: m})
		out, err = flatten(out, x.Body)
		if err != nil {
			return nil, err
		}

	case *Hash:
		out, err = flatten(out, x.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, vm.Instruction{Op: vm.OP_HASH, N: x.Fn})

	case *Sigeok:
		for _, e := range []Expr{x.Msg, x.Key, x.Sig} {
			out, err = flatten(out, e)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, vm.Instruction{Op: vm.OP_SIGEOK, N: x.Fn})
	}
	return out, nil
}

// Encode serializes x to the binary program format.
func Encode(x Expr) ([]byte, error) {
	insts, err := Flatten(x)
	if err != nil {
		return nil, err
	}
	var buf []byte
	for _, inst := range insts {
		buf, err = vm.AppendInstruction(buf, inst)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}
