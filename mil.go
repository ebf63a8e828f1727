/*
Package mil compiles the mil covenant language to programs for the
stack machine in package vm.

mil is a small Lisp-flavored language for spending covenants. A source
program is a set of function definitions and one body expression; the
compiler inlines every call, assigns each variable a heap slot and
linearizes the result into the machine's instruction set. The stages
live in their own packages (parser, expand, lower) and Compile wires
them in order.
*/
package mil

import (
	"github.com/themeliolabs/mil/expand"
	"github.com/themeliolabs/mil/lower"
	"github.com/themeliolabs/mil/parser"
)

// Compile turns source text into a serialized program.
func Compile(src []byte) ([]byte, error) {
	defs, body, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	env, err := expand.NewEnv(defs)
	if err != nil {
		return nil, err
	}
	unrolled, err := env.Expand(body)
	if err != nil {
		return nil, err
	}
	lowered, err := lower.NewMemoryMap().Lower(unrolled)
	if err != nil {
		return nil, err
	}
	return lower.Encode(lowered)
}
