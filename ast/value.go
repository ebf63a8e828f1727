package ast

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Value is a literal carried by the source tree: a 256-bit unsigned
// integer or a byte string. These are compiler-side values; the VM has
// its own runtime representation.
type Value interface {
	isValue()
	String() string
}

type Int uint256.Int

type Bytes []byte

func (Int) isValue()   {}
func (Bytes) isValue() {}

// NewInt returns an Int holding n.
func NewInt(n uint64) Int {
	return Int(*uint256.NewInt(n))
}

// U256 returns the value as a *uint256.Int sharing i's storage.
func (i *Int) U256() *uint256.Int {
	return (*uint256.Int)(i)
}

func (i Int) String() string {
	u := uint256.Int(i)
	return u.Dec()
}

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}
