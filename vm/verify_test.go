package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/themeliolabs/mil/errors"
	"github.com/themeliolabs/mil/testutil"
	"github.com/themeliolabs/mil/vm"
)

func mustAssemble(t *testing.T, asm string) []byte {
	t.Helper()
	prog, err := vm.Assemble(asm)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return prog
}

func TestVerify(t *testing.T) {
	cases := []struct {
		prog string
		want bool
	}{
		{"PUSHI:1", true},
		{"PUSHI:0", false},
		{"PUSHB:0x0001", true},
		{"PUSHB:0x0000", false},
		{"VEMPTY", false},
		{"PUSHI:0 PUSHI:1", true},
		{"PUSHI:1 PUSHI:0", false},
	}
	for _, c := range cases {
		prog := mustAssemble(t, c.prog)
		got, err := vm.Verify(prog, vm.NewContext(prog, nil))
		if err != nil {
			t.Errorf("[%s]: %s", c.prog, err)
			continue
		}
		testutil.ExpectEqual(t, got, c.want, c.prog)
	}

	// An empty program leaves an empty stack: denial, not a fault.
	ok, err := vm.Verify(nil, nil)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, ok, false, "empty program")

	// A fault is an error, not a verdict.
	_, err = vm.Verify(mustAssemble(t, "PUSHI:1 PUSHI:0 DIV"), nil)
	testutil.ExpectEqual(t, errors.Root(err), vm.ErrDivZero, "fault")
}

func TestVerifyBatch(t *testing.T) {
	// The second byte of the sighash decides each transaction's fate;
	// a one-byte sighash faults on the out-of-range read.
	prog := mustAssemble(t, "LOAD:1 PUSHI:1 VREF")
	contexts := []*vm.Context{
		vm.NewContext(prog, []byte{0x00, 0xab}),
		vm.NewContext(prog, []byte{0x00, 0x00}),
		vm.NewContext(prog, []byte{0x00}),
		vm.NewContext(prog, []byte{0x00, 0xcd}),
	}
	results, err := vm.VerifyBatch(prog, contexts)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if len(results) != len(contexts) {
		t.Fatalf("got %d results, want %d", len(results), len(contexts))
	}
	testutil.ExpectEqual(t, results[0].Authorized, true, "tx 0")
	testutil.ExpectEqual(t, results[1].Authorized, false, "tx 1")
	testutil.ExpectEqual(t, errors.Root(results[2].Err), vm.ErrRange, "tx 2 faults")
	testutil.ExpectEqual(t, results[3].Authorized, true, "tx 3 unaffected by tx 2")

	// A decode fault fails the whole batch.
	_, err = vm.VerifyBatch([]byte{0x00}, contexts)
	testutil.ExpectEqual(t, errors.Root(err), vm.ErrUnknownOpcode, "bad program")
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	vm.TraceOut = &buf
	defer func() { vm.TraceOut = nil }()

	_, err := runAsm(t, "PUSHI:2 PUSHI:3 ADD")
	if err != nil {
		testutil.FatalErr(t, err)
	}
	out := buf.String()
	for _, want := range []string{"PUSHI", "ADD", "stack 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}
