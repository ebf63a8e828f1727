package vm

import "github.com/themeliolabs/mil/errors"

// Relative offsets are measured in instructions from the instruction
// following the jump, so a taken branch advances the program counter by
// 1+n. Offsets are forward-only; the encoder never emits anything else.

func opJump(vm *virtualMachine) error {
	vm.nextPC = vm.pc + 1 + int(vm.inst.N)
	return nil
}

func opBranchZero(vm *virtualMachine) error {
	p, err := vm.popInt()
	if err != nil {
		return err
	}
	if p.IsZero() {
		vm.nextPC = vm.pc + 1 + int(vm.inst.N)
	}
	return nil
}

func opBranchNonzero(vm *virtualMachine) error {
	p, err := vm.popInt()
	if err != nil {
		return err
	}
	if !p.IsZero() {
		vm.nextPC = vm.pc + 1 + int(vm.inst.N)
	}
	return nil
}

func opLoop(vm *virtualMachine) error {
	end := vm.pc + 1 + int(vm.inst.M)
	if end > len(vm.prog) {
		return errors.WithDetailf(ErrMalformedProgram, "loop body of %d instructions exceeds program end", vm.inst.M)
	}
	if vm.inst.N == 0 || vm.inst.M == 0 {
		vm.nextPC = end
		return nil
	}
	vm.loops = append(vm.loops, loopFrame{
		start:     vm.pc + 1,
		end:       end,
		remaining: vm.inst.N,
	})
	return nil
}

func opLoad(vm *virtualMachine) error {
	v, ok := vm.heap[vm.inst.N]
	if !ok {
		v = Int{}
	}
	vm.push(v)
	return nil
}

func opStore(vm *virtualMachine) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	vm.heap[vm.inst.N] = v
	return nil
}

func opPushInt(vm *virtualMachine) error {
	if len(vm.inst.Data) != 32 {
		return errors.WithDetailf(ErrMalformedLiteral, "integer payload is %d bytes, want 32", len(vm.inst.Data))
	}
	var n Int
	n.U256().SetBytes32(vm.inst.Data)
	vm.push(n)
	return nil
}

func opPushBytes(vm *virtualMachine) error {
	vm.push(Bytes(vm.inst.Data))
	return nil
}
