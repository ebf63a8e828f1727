package vm

import (
	"encoding/hex"

	"github.com/holiman/uint256"
)

// Value is the only runtime data type: a 256-bit unsigned integer or a
// byte string. Stack slots and heap slots hold Values.
type Value interface {
	value()
}

type Int uint256.Int

type Bytes []byte

func (Int) value()   {}
func (Bytes) value() {}

// NewInt returns an Int holding n.
func NewInt(n uint64) Int {
	return Int(*uint256.NewInt(n))
}

// U256 returns the integer as a *uint256.Int sharing i's storage.
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

// AsBool interprets a Value as a verdict: an integer is true when
// nonzero, a byte string when it contains any nonzero byte.
func AsBool(v Value) bool {
	switch v := v.(type) {
	case Int:
		return !v.U256().IsZero()
	case Bytes:
		for _, b := range v {
			if b != 0 {
				return true
			}
		}
	}
	return false
}

// valueBytes is the canonical byte form of a Value, used by the crypto
// instructions: byte strings hash as-is, integers as their 32-byte
// big-endian encoding.
func valueBytes(v Value) []byte {
	switch v := v.(type) {
	case Int:
		b := v.U256().Bytes32()
		return b[:]
	case Bytes:
		return v
	}
	return nil
}
