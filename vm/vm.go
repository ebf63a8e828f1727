package vm

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/themeliolabs/mil/errors"
)

type virtualMachine struct {
	prog       []Instruction
	pc, nextPC int

	// Operand of the instruction being stepped, for the dispatch
	// functions.
	inst *Instruction

	// stack[len(stack)-1] is the top element.
	stack []Value
	heap  map[uint16]Value

	// Active LOOP iterations, innermost last.
	loops []loopFrame

	context *Context
}

type loopFrame struct {
	start, end int
	remaining  uint16
}

// TraceOut - if non-nil - will receive trace output during execution.
var TraceOut io.Writer

// Execute runs a decoded instruction sequence against a transaction
// context and returns the final data stack. A fault terminates the run
// with a typed error and no result; the machine state is discarded
// either way.
func Execute(prog []Instruction, context *Context) (final []Value, err error) {
	defer func() {
		if panErr := recover(); panErr != nil {
			final = nil
			err = errors.Wrapf(ErrUnexpected, "%v", panErr)
		}
	}()

	vm := &virtualMachine{
		prog:    prog,
		heap:    make(map[uint16]Value),
		context: context,
	}
	if context != nil {
		vm.heap[CovHashSlot] = Bytes(context.CovHash)
		vm.heap[TxSigHashSlot] = Bytes(context.TxSigHash)
	}
	if err := vm.run(); err != nil {
		return nil, err
	}
	return vm.stack, nil
}

func (vm *virtualMachine) run() error {
	for vm.pc = 0; vm.pc != len(vm.prog); { // pc updates happen in step
		if vm.pc < 0 || vm.pc > len(vm.prog) {
			return errors.WithDetailf(ErrMalformedProgram, "program counter %d outside %d instructions", vm.pc, len(vm.prog))
		}
		err := vm.step()
		if err != nil {
			return errors.Wrapf(err, "pc %d", vm.pc)
		}
	}
	return nil
}

func (vm *virtualMachine) step() error {
	inst := &vm.prog[vm.pc]
	info := &ops[inst.Op]
	if info.fn == nil {
		return errors.WithDetailf(ErrUnknownOpcode, "opcode 0x%02x", byte(inst.Op))
	}

	if TraceOut != nil {
		fmt.Fprintf(TraceOut, "pc %d %s", vm.pc, info.name)
		if len(inst.Data) > 0 {
			fmt.Fprintf(TraceOut, " %x", inst.Data)
		}
		fmt.Fprint(TraceOut, "\n")
	}

	vm.nextPC = vm.pc + 1
	vm.inst = inst
	err := info.fn(vm)
	if err != nil {
		return err
	}
	vm.pc = vm.nextPC
	vm.wind()

	if TraceOut != nil {
		for i := len(vm.stack) - 1; i >= 0; i-- {
			fmt.Fprintf(TraceOut, "  stack %d: %x\n", len(vm.stack)-1-i, valueBytes(vm.stack[i]))
		}
	}
	return nil
}

// wind retires loop iterations whose body the program counter has just
// left. Nested loops may share an end position; the innermost frame
// always sits on top.
func (vm *virtualMachine) wind() {
	for len(vm.loops) > 0 {
		top := &vm.loops[len(vm.loops)-1]
		if vm.pc != top.end {
			return
		}
		top.remaining--
		if top.remaining > 0 {
			vm.pc = top.start
			return
		}
		vm.loops = vm.loops[:len(vm.loops)-1]
	}
}

func (vm *virtualMachine) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *virtualMachine) pushInt(n uint256.Int) {
	vm.push(Int(n))
}

func (vm *virtualMachine) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return nil, errors.WithDetail(ErrMalformedProgram, "data stack underflow")
	}
	res := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return res, nil
}

func (vm *virtualMachine) popInt() (*uint256.Int, error) {
	v, err := vm.pop()
	if err != nil {
		return nil, err
	}
	n, ok := v.(Int)
	if !ok {
		return nil, errors.WithDetail(ErrBadValue, "integer operand required")
	}
	return n.U256(), nil
}

func (vm *virtualMachine) popBytes() (Bytes, error) {
	v, err := vm.pop()
	if err != nil {
		return nil, err
	}
	b, ok := v.(Bytes)
	if !ok {
		return nil, errors.WithDetail(ErrBadValue, "byte-string operand required")
	}
	return b, nil
}
