package vm

import (
	"math"

	"github.com/themeliolabs/mil/errors"
)

func opVempty(vm *virtualMachine) error {
	vm.push(Bytes{})
	return nil
}

func opVlen(vm *virtualMachine) error {
	v, err := vm.popBytes()
	if err != nil {
		return err
	}
	vm.push(NewInt(uint64(len(v))))
	return nil
}

func opVref(vm *virtualMachine) error {
	i, err := vm.popInt()
	if err != nil {
		return err
	}
	v, err := vm.popBytes()
	if err != nil {
		return err
	}
	idx, overflow := i.Uint64WithOverflow()
	if overflow || idx >= uint64(len(v)) {
		return errors.WithDetailf(ErrRange, "index %s of %d bytes", i.Dec(), len(v))
	}
	vm.push(NewInt(uint64(v[idx])))
	return nil
}

func opVpush(vm *virtualMachine) error {
	x, err := vm.popInt()
	if err != nil {
		return err
	}
	v, err := vm.popBytes()
	if err != nil {
		return err
	}
	if x.GtUint64(math.MaxUint8) {
		return errors.WithDetailf(ErrRange, "%s does not fit in a byte", x.Dec())
	}
	out := make(Bytes, 0, len(v)+1)
	out = append(out, v...)
	out = append(out, byte(x.Uint64()))
	vm.push(out)
	return nil
}

func opVappend(vm *virtualMachine) error {
	b, err := vm.popBytes()
	if err != nil {
		return err
	}
	a, err := vm.popBytes()
	if err != nil {
		return err
	}
	out := make(Bytes, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	vm.push(out)
	return nil
}

func opVslice(vm *virtualMachine) error {
	j, err := vm.popInt()
	if err != nil {
		return err
	}
	i, err := vm.popInt()
	if err != nil {
		return err
	}
	v, err := vm.popBytes()
	if err != nil {
		return err
	}
	lo, overflowLo := i.Uint64WithOverflow()
	hi, overflowHi := j.Uint64WithOverflow()
	if overflowLo || overflowHi || lo > hi || hi > uint64(len(v)) {
		return errors.WithDetailf(ErrRange, "slice [%s:%s] of %d bytes", i.Dec(), j.Dec(), len(v))
	}
	out := make(Bytes, hi-lo)
	copy(out, v[lo:hi])
	vm.push(out)
	return nil
}
