package vm

import "golang.org/x/crypto/sha3"

// Context is the transaction-validation state a covenant can observe.
// The engine treats it as read-only; it is seeded into the reserved
// heap slots before the first instruction runs and never touched again.
//
// By convention, variables of this type have the name context, _not_
// ctx (to avoid confusion with context.Context).
type Context struct {
	// CovHash is the content hash of the executing program's byte
	// string - the covenant's identity.
	CovHash []byte

	// TxSigHash is the hash of the proposed transaction's signing
	// data, the message covenant signatures are checked against.
	TxSigHash []byte
}

// Reserved heap slots seeded from the Context. The compiler allocates
// user bindings starting above these.
const (
	CovHashSlot   uint16 = 0
	TxSigHashSlot uint16 = 1
)

// CovenantHash is the content hash identifying a compiled program.
func CovenantHash(prog []byte) []byte {
	d := sha3.Sum256(prog)
	return d[:]
}

// NewContext builds the context for running prog against a transaction
// with the given signing hash.
func NewContext(prog []byte, txSigHash []byte) *Context {
	return &Context{
		CovHash:   CovenantHash(prog),
		TxSigHash: txSigHash,
	}
}
