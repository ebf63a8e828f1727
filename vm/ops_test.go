package vm_test

import (
	"bytes"
	"testing"

	"github.com/themeliolabs/mil/errors"
	"github.com/themeliolabs/mil/testutil"
	"github.com/themeliolabs/mil/vm"
)

func TestParseOp(t *testing.T) {
	pushi := append([]byte{byte(vm.OP_PUSHI)}, bytes.Repeat([]byte{0}, 32)...)
	pushi[32] = 7

	cases := []struct {
		name    string
		prog    []byte
		want    vm.Instruction
		wantN   int
		wantErr error
	}{
		{
			name:  "no operand",
			prog:  []byte{byte(vm.OP_ADD)},
			want:  vm.Instruction{Op: vm.OP_ADD},
			wantN: 1,
		},
		{
			name:  "u16 operand",
			prog:  []byte{byte(vm.OP_LOAD), 0x01, 0x02},
			want:  vm.Instruction{Op: vm.OP_LOAD, N: 0x0102},
			wantN: 3,
		},
		{
			name:  "loop operands",
			prog:  []byte{byte(vm.OP_LOOP), 0x00, 0x03, 0x00, 0x04},
			want:  vm.Instruction{Op: vm.OP_LOOP, N: 3, M: 4},
			wantN: 5,
		},
		{
			name:  "int literal",
			prog:  pushi,
			want:  vm.Instruction{Op: vm.OP_PUSHI, Data: pushi[1:]},
			wantN: 33,
		},
		{
			name:  "byte literal",
			prog:  []byte{byte(vm.OP_PUSHB), 0x00, 0x02, 0xde, 0xad},
			want:  vm.Instruction{Op: vm.OP_PUSHB, Data: []byte{0xde, 0xad}},
			wantN: 5,
		},
		{
			name:    "empty program",
			prog:    nil,
			wantErr: vm.ErrShortProgram,
		},
		{
			name:    "unknown opcode",
			prog:    []byte{0x00},
			wantErr: vm.ErrUnknownOpcode,
		},
		{
			name:    "truncated u16",
			prog:    []byte{byte(vm.OP_JMP), 0x01},
			wantErr: vm.ErrShortProgram,
		},
		{
			name:    "truncated loop",
			prog:    []byte{byte(vm.OP_LOOP), 0x00, 0x03, 0x00},
			wantErr: vm.ErrShortProgram,
		},
		{
			name:    "truncated int literal",
			prog:    pushi[:20],
			wantErr: vm.ErrMalformedLiteral,
		},
		{
			name:    "truncated byte literal",
			prog:    []byte{byte(vm.OP_PUSHB), 0x00, 0x05, 0xde, 0xad},
			wantErr: vm.ErrMalformedLiteral,
		},
	}
	for _, c := range cases {
		inst, n, err := vm.ParseOp(c.prog, 0)
		if errors.Root(err) != c.wantErr {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		testutil.ExpectEqual(t, inst, c.want, c.name)
		testutil.ExpectEqual(t, n, c.wantN, c.name+" size")
	}
}

func TestParseProgramAtomic(t *testing.T) {
	// A decode fault anywhere yields no instructions at all.
	prog := []byte{byte(vm.OP_ADD), byte(vm.OP_SUB), byte(vm.OP_LOAD), 0x01}
	insts, err := vm.ParseProgram(prog)
	if errors.Root(err) != vm.ErrShortProgram {
		t.Fatalf("err = %v, want %v", err, vm.ErrShortProgram)
	}
	if insts != nil {
		t.Errorf("got partial result %v", insts)
	}
}

func TestAppendInstructionRoundTrip(t *testing.T) {
	want := []vm.Instruction{
		{Op: vm.OP_PUSHI, Data: bytes.Repeat([]byte{0x11}, 32)},
		{Op: vm.OP_PUSHB, Data: []byte{0xde, 0xad}},
		{Op: vm.OP_PUSHB},
		{Op: vm.OP_LOOP, N: 3, M: 2},
		{Op: vm.OP_LOAD, N: 2},
		{Op: vm.OP_STORE, N: 65535},
		{Op: vm.OP_HASH, N: 32},
		{Op: vm.OP_ADD},
	}
	var prog []byte
	var err error
	for _, inst := range want {
		prog, err = vm.AppendInstruction(prog, inst)
		if err != nil {
			testutil.FatalErr(t, err)
		}
	}
	got, err := vm.ParseProgram(prog)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, got, want, "round trip")
}

func TestAppendInstructionErrors(t *testing.T) {
	testutil.ExpectError(t, vm.ErrUnknownOpcode, "unknown opcode", func() error {
		_, err := vm.AppendInstruction(nil, vm.Instruction{Op: 0x99})
		return err
	})
	testutil.ExpectError(t, vm.ErrMalformedLiteral, "short int payload", func() error {
		_, err := vm.AppendInstruction(nil, vm.Instruction{Op: vm.OP_PUSHI, Data: []byte{1}})
		return err
	})
}
