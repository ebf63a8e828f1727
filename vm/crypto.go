package vm

import (
	"crypto/ed25519"

	"golang.org/x/crypto/sha3"
)

func opHash(vm *virtualMachine) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	d := sha3.Sum256(valueBytes(v))
	n := int(vm.inst.N)
	if n == 0 || n > len(d) {
		n = len(d)
	}
	vm.push(Bytes(d[:n]))
	return nil
}

// opSigeok pops signature, public key and message (in that order) and
// pushes 1 when the signature verifies, 0 when it does not. A failed
// verification - including a malformed key or signature, or a message
// longer than the instruction's length bound - is a normal falsy
// result, never a fault: a covenant that rejects a spend is not a
// broken covenant.
func opSigeok(vm *virtualMachine) error {
	sig, err := vm.pop()
	if err != nil {
		return err
	}
	key, err := vm.pop()
	if err != nil {
		return err
	}
	msg, err := vm.pop()
	if err != nil {
		return err
	}

	sigB := valueBytes(sig)
	keyB := valueBytes(key)
	msgB := valueBytes(msg)

	ok := len(keyB) == ed25519.PublicKeySize &&
		len(sigB) == ed25519.SignatureSize &&
		(vm.inst.N == 0 || len(msgB) <= int(vm.inst.N)) &&
		ed25519.Verify(ed25519.PublicKey(keyB), msgB, sigB)

	if ok {
		vm.push(NewInt(1))
	} else {
		vm.push(NewInt(0))
	}
	return nil
}
