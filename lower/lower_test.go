package lower

import (
	"testing"

	"github.com/themeliolabs/mil/ast"
	"github.com/themeliolabs/mil/expand"
	"github.com/themeliolabs/mil/parser"
	"github.com/themeliolabs/mil/testutil"
	"github.com/themeliolabs/mil/vm"
)

func mustLower(t *testing.T, src string) Expr {
	t.Helper()
	defs, body, err := parser.Parse([]byte(src))
	if err != nil {
		testutil.FatalErr(t, err)
	}
	env, err := expand.NewEnv(defs)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	unrolled, err := env.Expand(body)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	x, err := NewMemoryMap().Lower(unrolled)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return x
}

func mustFlatten(t *testing.T, src string) []vm.Instruction {
	t.Helper()
	insts, err := Flatten(mustLower(t, src))
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return insts
}

// opN strips operand payloads, keeping opcode and N for comparison.
func opN(insts []vm.Instruction) []vm.Instruction {
	out := make([]vm.Instruction, len(insts))
	for i, inst := range insts {
		out[i] = vm.Instruction{Op: inst.Op, N: inst.N, M: inst.M}
	}
	return out
}

func TestLowerSlotAllocation(t *testing.T) {
	// User bindings start above the reserved context slots.
	insts := mustFlatten(t, "(let ((x 1) (y 2)) (+ x y))")
	want := []vm.Instruction{
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_STORE, N: 2},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_STORE, N: 3},
		{Op: vm.OP_LOAD, N: 2},
		{Op: vm.OP_LOAD, N: 3},
		{Op: vm.OP_ADD},
	}
	testutil.ExpectEqual(t, opN(insts), want, "let allocation")
}

func TestLowerContextSlots(t *testing.T) {
	insts := mustFlatten(t, "self-hash")
	testutil.ExpectEqual(t, opN(insts), []vm.Instruction{{Op: vm.OP_LOAD, N: vm.CovHashSlot}}, "self-hash")

	insts = mustFlatten(t, "tx-sighash")
	testutil.ExpectEqual(t, opN(insts), []vm.Instruction{{Op: vm.OP_LOAD, N: vm.TxSigHashSlot}}, "tx-sighash")
}

func TestLowerIfOffsets(t *testing.T) {
	insts := mustFlatten(t, "(if 1 2 3)")
	want := []vm.Instruction{
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_BEZ, N: 2},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_JMP, N: 1},
		{Op: vm.OP_PUSHI},
	}
	testutil.ExpectEqual(t, opN(insts), want, "if pattern")

	// Multi-instruction arms move both offsets.
	insts = mustFlatten(t, "(if 1 (+ 2 3) (* 4 (+ 5 6)))")
	want = []vm.Instruction{
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_BEZ, N: 4},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_ADD},
		{Op: vm.OP_JMP, N: 5},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_ADD},
		{Op: vm.OP_MUL},
	}
	testutil.ExpectEqual(t, opN(insts), want, "if pattern, long arms")
}

func TestLowerSet(t *testing.T) {
	insts := mustFlatten(t, "(let ((x 1)) (set! x 2) x)")
	want := []vm.Instruction{
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_STORE, N: 2},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_STORE, N: 2},
		{Op: vm.OP_LOAD, N: 2},
	}
	testutil.ExpectEqual(t, opN(insts), want, "set! reuses the slot")
}

func TestLowerLoop(t *testing.T) {
	insts := mustFlatten(t, "(loop 3 (+ 1 2))")
	want := []vm.Instruction{
		{Op: vm.OP_LOOP, N: 3, M: 3},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_PUSHI},
		{Op: vm.OP_ADD},
	}
	testutil.ExpectEqual(t, opN(insts), want, "loop prefixes its body")
}

func TestLowerCrypto(t *testing.T) {
	insts := mustFlatten(t, "(hash 32 0xff)")
	want := []vm.Instruction{
		{Op: vm.OP_PUSHB},
		{Op: vm.OP_HASH, N: 32},
	}
	testutil.ExpectEqual(t, opN(insts), want, "hash follows its input")

	insts = mustFlatten(t, "(sigeok 32 0x01 0x02 0x03)")
	want = []vm.Instruction{
		{Op: vm.OP_PUSHB},
		{Op: vm.OP_PUSHB},
		{Op: vm.OP_PUSHB},
		{Op: vm.OP_SIGEOK, N: 32},
	}
	testutil.ExpectEqual(t, opN(insts), want, "sigeok follows its inputs")
}

func TestLowerUnbound(t *testing.T) {
	testutil.ExpectError(t, ErrUnboundVariable, "unbound id", func() error {
		_, err := NewMemoryMap().Lower(&expand.Var{ID: 99})
		return err
	})
}

func TestLowerRebound(t *testing.T) {
	one := &expand.Lit{Value: ast.NewInt(1)}
	dup := &expand.Let{
		Binds: []expand.Bind{{ID: 5, Expr: one}, {ID: 5, Expr: one}},
		Body:  []expand.Expr{&expand.Var{ID: 5}},
	}
	testutil.ExpectError(t, ErrRebound, "duplicate id", func() error {
		_, err := NewMemoryMap().Lower(dup)
		return err
	})
}
