package vm

import "errors"

var (
	ErrBadValue         = errors.New("bad value")
	ErrDivZero          = errors.New("division by zero")
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrMalformedProgram = errors.New("malformed program")
	ErrRange            = errors.New("index out of range")
	ErrShortProgram     = errors.New("unexpected end of program")
	ErrToken            = errors.New("unrecognized token")
	ErrUnexpected       = errors.New("unexpected error")
	ErrUnknownOpcode    = errors.New("unknown opcode")
)
