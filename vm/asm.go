package vm

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/themeliolabs/mil/errors"
)

// Assemble converts a string like "PUSHI:2 PUSHI:3 ADD" into bytecode.
// Tokens are opcode names; opcodes with operands append them after
// colons (LOAD:5, LOOP:3:2). PUSHI takes a decimal integer, PUSHB a
// 0x-prefixed hex payload.
func Assemble(s string) ([]byte, error) {
	var res []byte
	for _, token := range strings.Fields(s) {
		parts := strings.Split(token, ":")
		info, ok := opsByName[parts[0]]
		if !ok {
			return nil, errors.Wrap(ErrToken, token)
		}
		inst := Instruction{Op: info.op}
		var err error
		switch info.operand {
		case operandNone:
			if len(parts) != 1 {
				return nil, errors.Wrap(ErrToken, token)
			}
		case operandU16:
			if len(parts) != 2 {
				return nil, errors.Wrap(ErrToken, token)
			}
			inst.N, err = parseU16(parts[1])
			if err != nil {
				return nil, errors.Wrap(ErrToken, token)
			}
		case operandLoop:
			if len(parts) != 3 {
				return nil, errors.Wrap(ErrToken, token)
			}
			if inst.N, err = parseU16(parts[1]); err != nil {
				return nil, errors.Wrap(ErrToken, token)
			}
			if inst.M, err = parseU16(parts[2]); err != nil {
				return nil, errors.Wrap(ErrToken, token)
			}
		case operandInt:
			if len(parts) != 2 {
				return nil, errors.Wrap(ErrToken, token)
			}
			n, err := uint256.FromDecimal(parts[1])
			if err != nil {
				return nil, errors.Wrap(ErrToken, token)
			}
			b := n.Bytes32()
			inst.Data = b[:]
		case operandBytes:
			if len(parts) != 2 || !strings.HasPrefix(parts[1], "0x") {
				return nil, errors.Wrap(ErrToken, token)
			}
			inst.Data, err = hex.DecodeString(strings.TrimPrefix(parts[1], "0x"))
			if err != nil {
				return nil, errors.Wrap(ErrToken, token)
			}
		}
		res, err = AppendInstruction(res, inst)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Disassemble renders bytecode in the form Assemble accepts.
func Disassemble(prog []byte) (string, error) {
	insts, err := ParseProgram(prog)
	if err != nil {
		return "", err
	}
	strs := make([]string, 0, len(insts))
	for _, inst := range insts {
		strs = append(strs, disassembleInst(inst))
	}
	return strings.Join(strs, " "), nil
}

func disassembleInst(inst Instruction) string {
	switch ops[inst.Op].operand {
	case operandU16:
		return fmt.Sprintf("%s:%d", inst.Op, inst.N)
	case operandLoop:
		return fmt.Sprintf("%s:%d:%d", inst.Op, inst.N, inst.M)
	case operandInt:
		var n uint256.Int
		n.SetBytes(inst.Data)
		return fmt.Sprintf("%s:%s", inst.Op, n.Dec())
	case operandBytes:
		return fmt.Sprintf("%s:0x%s", inst.Op, hex.EncodeToString(inst.Data))
	}
	return inst.Op.String()
}

func parseU16(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	return uint16(n), err
}
