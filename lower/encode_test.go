package lower

import (
	"testing"

	"github.com/themeliolabs/mil/testutil"
	"github.com/themeliolabs/mil/vm"
)

// Sources chosen to visit every lowered node shape: literals of both
// kinds, every builtin family, sequences, both branch arms, loops and
// the crypto wrappers.
var parityPrograms = []string{
	"1",
	"115792089237316195423570985008687907853269984665640564039457584007913129639935",
	"0xdeadbeef",
	"(+ 1 2)",
	"(not (xor 1 2))",
	"(v-slice (v-append (v-push (v-empty) 1) 0x02) 0 (v-len 0x0102))",
	"(let ((x 1) (y (+ x 1))) (set! x y) x)",
	"(if (if 1 2 3) (+ 1 2) (* 3 4))",
	"(loop 3 (loop 2 (+ 1 2)))",
	"(hash 32 (sigeok 32 tx-sighash 0x01 0x02))",
	"(fn f (x) (+ x 1)) (f (f 5))",
}

func TestCountFlattenParity(t *testing.T) {
	for _, src := range parityPrograms {
		x := mustLower(t, src)
		insts, err := Flatten(x)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		if got, want := Count(x), len(insts); got != want {
			t.Errorf("%s: Count = %d, Flatten emits %d", src, got, want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, src := range parityPrograms {
		x := mustLower(t, src)
		want, err := Flatten(x)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		prog, err := Encode(x)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		got, err := vm.ParseProgram(prog)
		if err != nil {
			testutil.FatalErr(t, err)
		}
		testutil.ExpectEqual(t, got, want, src)
	}
}
