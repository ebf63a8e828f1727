package vm

import "github.com/holiman/uint256"

// binop pops the right then the left operand, applies f into a fresh
// integer and pushes the result. All arithmetic is modulo 2^256.
func (vm *virtualMachine) binop(f func(z, x, y *uint256.Int) *uint256.Int) error {
	y, err := vm.popInt()
	if err != nil {
		return err
	}
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	var z uint256.Int
	f(&z, x, y)
	vm.pushInt(z)
	return nil
}

func opAdd(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).Add)
}

func opSub(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).Sub)
}

func opMul(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).Mul)
}

func opDiv(vm *virtualMachine) error {
	y, err := vm.popInt()
	if err != nil {
		return err
	}
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	if y.IsZero() {
		return ErrDivZero
	}
	var z uint256.Int
	z.Div(x, y)
	vm.pushInt(z)
	return nil
}

func opRem(vm *virtualMachine) error {
	y, err := vm.popInt()
	if err != nil {
		return err
	}
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	if y.IsZero() {
		return ErrDivZero
	}
	var z uint256.Int
	z.Mod(x, y)
	vm.pushInt(z)
	return nil
}

func opAnd(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).And)
}

func opOr(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).Or)
}

func opXor(vm *virtualMachine) error {
	return vm.binop((*uint256.Int).Xor)
}

func opNot(vm *virtualMachine) error {
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	var z uint256.Int
	z.Not(x)
	vm.pushInt(z)
	return nil
}
