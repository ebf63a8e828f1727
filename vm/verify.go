package vm

// Verify decodes and executes a covenant program and reports its
// verdict: true iff execution halted and left a truthy value on top of
// the stack. The error distinguishes a broken program (decode or
// execution fault) from an authorization denial, which is (false, nil).
func Verify(prog []byte, context *Context) (bool, error) {
	insts, err := ParseProgram(prog)
	if err != nil {
		return false, err
	}
	final, err := Execute(insts, context)
	if err != nil {
		return false, err
	}
	return len(final) > 0 && AsBool(final[len(final)-1]), nil
}

// BatchResult is the outcome of one transaction's run in VerifyBatch.
type BatchResult struct {
	Authorized bool
	Err        error
}

// VerifyBatch runs one program against each context independently. The
// program is decoded once; every run gets a fresh machine, so one
// transaction's fault never affects another's result.
func VerifyBatch(prog []byte, contexts []*Context) ([]BatchResult, error) {
	insts, err := ParseProgram(prog)
	if err != nil {
		return nil, err
	}
	results := make([]BatchResult, len(contexts))
	for i, context := range contexts {
		final, err := Execute(insts, context)
		if err != nil {
			results[i] = BatchResult{Err: err}
			continue
		}
		results[i] = BatchResult{Authorized: len(final) > 0 && AsBool(final[len(final)-1])}
	}
	return results, nil
}
