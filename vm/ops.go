package vm

import (
	"encoding/binary"

	"github.com/themeliolabs/mil/errors"
	"github.com/themeliolabs/mil/math/checked"
)

type Op uint8

func (op Op) String() string {
	return ops[op].name
}

// Instruction is one decoded machine operation. N carries the u16
// operand where the opcode has one: a heap slot for LOAD/STORE, a
// relative offset for JMP/BEZ/BNZ, the iteration count for LOOP and the
// function parameter for HASH/SIGEOK. M is the LOOP body length in
// instructions. Data is the literal payload of PUSHI (32 bytes,
// big-endian) and PUSHB.
type Instruction struct {
	Op   Op
	N    uint16
	M    uint16
	Data []byte
}

const (
	OP_ADD Op = 0x10
	OP_SUB Op = 0x11
	OP_MUL Op = 0x12
	OP_DIV Op = 0x13
	OP_REM Op = 0x14

	OP_AND Op = 0x20
	OP_OR  Op = 0x21
	OP_XOR Op = 0x22
	OP_NOT Op = 0x23

	OP_HASH   Op = 0x30
	OP_SIGEOK Op = 0x32

	OP_LOAD  Op = 0x40
	OP_STORE Op = 0x41

	OP_VREF    Op = 0x50
	OP_VAPPEND Op = 0x51
	OP_VEMPTY  Op = 0x52
	OP_VLEN    Op = 0x53
	OP_VSLICE  Op = 0x54
	OP_VPUSH   Op = 0x55

	OP_JMP  Op = 0xa0
	OP_BEZ  Op = 0xa1
	OP_BNZ  Op = 0xa2
	OP_LOOP Op = 0xa3

	OP_PUSHI Op = 0xf0
	OP_PUSHB Op = 0xf1
)

// operand shapes
const (
	operandNone  = iota // opcode only
	operandU16          // one u16: slot, offset or crypto parameter
	operandLoop         // two u16: iterations, body length
	operandInt          // 32-byte big-endian integer
	operandBytes        // u16 length prefix + payload
)

type opInfo struct {
	op      Op
	name    string
	operand int
	fn      func(*virtualMachine) error
}

var (
	ops = [256]opInfo{
		OP_ADD: {OP_ADD, "ADD", operandNone, opAdd},
		OP_SUB: {OP_SUB, "SUB", operandNone, opSub},
		OP_MUL: {OP_MUL, "MUL", operandNone, opMul},
		OP_DIV: {OP_DIV, "DIV", operandNone, opDiv},
		OP_REM: {OP_REM, "REM", operandNone, opRem},

		OP_AND: {OP_AND, "AND", operandNone, opAnd},
		OP_OR:  {OP_OR, "OR", operandNone, opOr},
		OP_XOR: {OP_XOR, "XOR", operandNone, opXor},
		OP_NOT: {OP_NOT, "NOT", operandNone, opNot},

		OP_HASH:   {OP_HASH, "HASH", operandU16, opHash},
		OP_SIGEOK: {OP_SIGEOK, "SIGEOK", operandU16, opSigeok},

		OP_LOAD:  {OP_LOAD, "LOAD", operandU16, opLoad},
		OP_STORE: {OP_STORE, "STORE", operandU16, opStore},

		OP_VREF:    {OP_VREF, "VREF", operandNone, opVref},
		OP_VAPPEND: {OP_VAPPEND, "VAPPEND", operandNone, opVappend},
		OP_VEMPTY:  {OP_VEMPTY, "VEMPTY", operandNone, opVempty},
		OP_VLEN:    {OP_VLEN, "VLEN", operandNone, opVlen},
		OP_VSLICE:  {OP_VSLICE, "VSLICE", operandNone, opVslice},
		OP_VPUSH:   {OP_VPUSH, "VPUSH", operandNone, opVpush},

		OP_JMP:  {OP_JMP, "JMP", operandU16, opJump},
		OP_BEZ:  {OP_BEZ, "BEZ", operandU16, opBranchZero},
		OP_BNZ:  {OP_BNZ, "BNZ", operandU16, opBranchNonzero},
		OP_LOOP: {OP_LOOP, "LOOP", operandLoop, opLoop},

		OP_PUSHI: {OP_PUSHI, "PUSHI", operandInt, opPushInt},
		OP_PUSHB: {OP_PUSHB, "PUSHB", operandBytes, opPushBytes},
	}

	opsByName map[string]opInfo
)

func init() {
	opsByName = make(map[string]opInfo)
	for _, info := range ops {
		if info.name != "" {
			opsByName[info.name] = info
		}
	}
}

// ParseOp decodes the instruction starting at offset off in prog,
// returning the instruction and the number of bytes it occupies.
// It never guesses: truncated operands, unknown opcode tags and
// malformed literal payloads are errors.
func ParseOp(prog []byte, off int) (inst Instruction, n int, err error) {
	if off >= len(prog) {
		return inst, 0, ErrShortProgram
	}
	opcode := Op(prog[off])
	info := &ops[opcode]
	if info.name == "" {
		return inst, 0, errors.WithDetailf(ErrUnknownOpcode, "opcode 0x%02x at offset %d", byte(opcode), off)
	}
	inst.Op = opcode
	n = 1

	switch info.operand {
	case operandNone:

	case operandU16:
		if off+3 > len(prog) {
			return inst, 0, ErrShortProgram
		}
		inst.N = binary.BigEndian.Uint16(prog[off+1 : off+3])
		n = 3

	case operandLoop:
		if off+5 > len(prog) {
			return inst, 0, ErrShortProgram
		}
		inst.N = binary.BigEndian.Uint16(prog[off+1 : off+3])
		inst.M = binary.BigEndian.Uint16(prog[off+3 : off+5])
		n = 5

	case operandInt:
		if off+1+32 > len(prog) {
			return inst, 0, errors.WithDetailf(ErrMalformedLiteral, "integer literal truncated at offset %d", off)
		}
		inst.Data = prog[off+1 : off+1+32]
		n = 33

	case operandBytes:
		if off+3 > len(prog) {
			return inst, 0, ErrShortProgram
		}
		l := int(binary.BigEndian.Uint16(prog[off+1 : off+3]))
		if off+3+l > len(prog) {
			return inst, 0, errors.WithDetailf(ErrMalformedLiteral, "byte literal of length %d truncated at offset %d", l, off)
		}
		inst.Data = prog[off+3 : off+3+l]
		n = 3 + l
	}
	return inst, n, nil
}

// ParseProgram decodes a whole program. The result is either the full
// instruction sequence or an error, never a partial list.
func ParseProgram(prog []byte) ([]Instruction, error) {
	var result []Instruction
	for off := 0; off < len(prog); {
		inst, n, err := ParseOp(prog, off)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
		off += n
	}
	return result, nil
}

// AppendInstruction appends the byte encoding of inst to buf. It is the
// exact inverse of ParseOp.
func AppendInstruction(buf []byte, inst Instruction) ([]byte, error) {
	info := &ops[inst.Op]
	if info.name == "" {
		return nil, errors.WithDetailf(ErrUnknownOpcode, "opcode 0x%02x", byte(inst.Op))
	}
	buf = append(buf, byte(inst.Op))
	switch info.operand {
	case operandU16:
		buf = binary.BigEndian.AppendUint16(buf, inst.N)
	case operandLoop:
		buf = binary.BigEndian.AppendUint16(buf, inst.N)
		buf = binary.BigEndian.AppendUint16(buf, inst.M)
	case operandInt:
		if len(inst.Data) != 32 {
			return nil, errors.WithDetailf(ErrMalformedLiteral, "integer payload is %d bytes, want 32", len(inst.Data))
		}
		buf = append(buf, inst.Data...)
	case operandBytes:
		l, ok := checked.Uint16(len(inst.Data))
		if !ok {
			return nil, errors.WithDetailf(ErrMalformedLiteral, "byte literal of length %d exceeds u16 prefix", len(inst.Data))
		}
		buf = binary.BigEndian.AppendUint16(buf, l)
		buf = append(buf, inst.Data...)
	}
	return buf, nil
}
