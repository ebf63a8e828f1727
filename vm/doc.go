/*
Package vm implements the stack machine that covenant programs compile
to, together with the binary instruction codec.

A program is a flat byte string: one opcode tag per instruction followed
by a fixed-shape operand (none, a 16-bit heap slot, a 16-bit relative
offset, or a length-prefixed literal payload). ParseProgram decodes the
byte string into an instruction sequence; Execute runs a decoded
sequence against a transaction context and yields the final data stack,
or a typed fault. Verify combines the two and reports the covenant
verdict.

Execution is deterministic and self-contained. Every run owns its stack
and heap, the program counter is measured in instructions, jump offsets
are forward-only, and loop bodies are encoded once with the iteration
tracked by the interpreter, so the instruction count of any program is
statically known.
*/
package vm
