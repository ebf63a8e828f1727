// Package lower turns the unrolled tree into the flat machine shape:
// variable ids become fixed heap slots, control flow becomes sequences
// of primitive operations with statically computed relative offsets,
// and the result encodes to bytecode.
package lower

import (
	stderrors "errors"

	"github.com/themeliolabs/mil/ast"
	"github.com/themeliolabs/mil/errors"
	"github.com/themeliolabs/mil/expand"
	"github.com/themeliolabs/mil/math/checked"
	"github.com/themeliolabs/mil/vm"
)

var (
	// ErrUnboundVariable means an id reached the allocator without a
	// binding. The expander never emits such a tree; this fault marks
	// an upstream bug, surfaced as a typed error so a validating
	// process reports it instead of crashing.
	ErrUnboundVariable = stderrors.New("unbound variable id")

	// ErrRebound means the same id was bound twice, which would let
	// two live bindings alias one heap slot.
	ErrRebound = stderrors.New("variable id bound twice")

	ErrProgramTooLarge = stderrors.New("program too large")

	// errMalformedTree marks a lowered-tree shape no pipeline stage
	// produces; reaching it is an internal bug.
	errMalformedTree = stderrors.New("malformed tree")
)

// HeapPos is a fixed address in the machine's random-access memory.
type HeapPos = uint16

// MemoryMap assigns each variable id its heap slot. Slots grow
// monotonically and are never reassigned, so two live bindings can
// never alias. One MemoryMap serves one top-level compilation.
type MemoryMap struct {
	slots map[expand.VarID]HeapPos
	next  HeapPos
}

func NewMemoryMap() *MemoryMap {
	return &MemoryMap{
		slots: map[expand.VarID]HeapPos{
			expand.SelfHashID:  vm.CovHashSlot,
			expand.TxSigHashID: vm.TxSigHashSlot,
		},
		next: vm.TxSigHashSlot + 1,
	}
}

func (m *MemoryMap) alloc(id expand.VarID) (HeapPos, error) {
	if _, ok := m.slots[id]; ok {
		return 0, errors.WithDetailf(ErrRebound, "id %d", id)
	}
	slot := m.next
	next, ok := checked.AddUint16(m.next, 1)
	if !ok {
		return 0, errors.WithDetail(ErrProgramTooLarge, "heap slots exhausted")
	}
	m.slots[id] = slot
	m.next = next
	return slot, nil
}

func (m *MemoryMap) lookup(id expand.VarID) (HeapPos, error) {
	slot, ok := m.slots[id]
	if !ok {
		return 0, errors.WithDetailf(ErrUnboundVariable, "id %d", id)
	}
	return slot, nil
}

// Lower rewrites an unrolled expression into the lowered form,
// recording slot assignments in m as it meets each binding.
func (m *MemoryMap) Lower(x expand.Expr) (Expr, error) {
	switch x := x.(type) {
	case *expand.Lit:
		return &Lit{Value: x.Value}, nil

	case *expand.Var:
		// A variable by itself is the value of its slot.
		slot, err := m.lookup(x.ID)
		if err != nil {
			return nil, err
		}
		return &Builtin{ast.Builtin[Expr]{Op: ast.Load, N: slot}}, nil

	case *expand.Builtin:
		args := make([]Expr, 0, len(x.Args))
		for _, a := range x.Args {
			la, err := m.Lower(a)
			if err != nil {
				return nil, err
			}
			args = append(args, la)
		}
		return &Builtin{ast.Builtin[Expr]{Op: x.Op, Args: args}}, nil

	case *expand.Set:
		slot, err := m.lookup(x.ID)
		if err != nil {
			return nil, err
		}
		body, err := m.Lower(x.Body)
		if err != nil {
			return nil, err
		}
		// Evaluate the body, then store the result at the variable's slot.
		return Seq{body, store(slot)}, nil

	case *expand.Let:
		return m.lowerLet(x)

	case *expand.If:
		return m.lowerIf(x)

	case *expand.Loop:
		body, err := m.Lower(x.Body)
		if err != nil {
			return nil, err
		}
		return &Loop{N: x.N, Body: body}, nil

	case *expand.Hash:
		body, err := m.Lower(x.Body)
		if err != nil {
			return nil, err
		}
		return &Hash{Fn: x.Fn, Body: body}, nil

	case *expand.Sigeok:
		msg, err := m.Lower(x.Msg)
		if err != nil {
			return nil, err
		}
		key, err := m.Lower(x.Key)
		if err != nil {
			return nil, err
		}
		sig, err := m.Lower(x.Sig)
		if err != nil {
			return nil, err
		}
		return &Sigeok{Fn: x.Fn, Msg: msg, Key: key, Sig: sig}, nil
	}
	return nil, errors.WithDetailf(errMalformedTree, "unknown expression %T", x)
}

// lowerLet allocates a slot per binding in order, stores each bound
// expression's result, then sequences the body expressions.
func (m *MemoryMap) lowerLet(x *expand.Let) (Expr, error) {
	seq := make(Seq, 0, 2*len(x.Binds)+len(x.Body))
	for _, b := range x.Binds {
		init, err := m.Lower(b.Expr)
		if err != nil {
			return nil, err
		}
		slot, err := m.alloc(b.ID)
		if err != nil {
			return nil, err
		}
		seq = append(seq, init, store(slot))
	}
	for _, b := range x.Body {
		body, err := m.Lower(b)
		if err != nil {
			return nil, err
		}
		seq = append(seq, body)
	}
	return seq, nil
}

// lowerIf linearizes the two-armed conditional into the canonical
// two-offset pattern:
//
//	[pred] BEZ:(count(then)+1) [then] JMP:count(else) [else]
//
// The +1 skips the trailing JMP along with the then-arm when the
// predicate is zero. Offsets count instructions, not bytes.
func (m *MemoryMap) lowerIf(x *expand.If) (Expr, error) {
	pred, err := m.Lower(x.Pred)
	if err != nil {
		return nil, err
	}
	then, err := m.Lower(x.Then)
	if err != nil {
		return nil, err
	}
	els, err := m.Lower(x.Else)
	if err != nil {
		return nil, err
	}

	skipThen, ok := checked.Uint16(Count(then) + 1)
	if !ok {
		return nil, errors.WithDetail(ErrProgramTooLarge, "branch offset exceeds u16")
	}
	skipElse, ok := checked.Uint16(Count(els))
	if !ok {
		return nil, errors.WithDetail(ErrProgramTooLarge, "branch offset exceeds u16")
	}

	return Seq{
		pred,
		&Builtin{ast.Builtin[Expr]{Op: ast.Bez, N: skipThen}},
		then,
		&Builtin{ast.Builtin[Expr]{Op: ast.Jmp, N: skipElse}},
		els,
	}, nil
}

func store(slot HeapPos) Expr {
	return &Builtin{ast.Builtin[Expr]{Op: ast.Store, N: slot}}
}
