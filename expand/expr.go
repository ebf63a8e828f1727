package expand

import "github.com/themeliolabs/mil/ast"

// VarID is a globally unique identifier minted for one binding
// occurrence. No two bindings ever share an id, no matter how many
// times the same function body is inlined.
type VarID int32

// Identifiers pre-bound to the execution context. The allocator maps
// them to the matching reserved heap slots.
const (
	SelfHashID  VarID = 0
	TxSigHashID VarID = 1

	firstFreeID VarID = 2
)

// Expr is a node of the unrolled tree: the surface shapes minus
// function calls, with names replaced by variable ids.
type Expr interface {
	isExpr()
}

type Lit struct {
	Value ast.Value
}

type Builtin struct {
	ast.Builtin[Expr]
}

type Var struct {
	ID VarID
}

type Set struct {
	ID   VarID
	Body Expr
}

type Bind struct {
	ID   VarID
	Expr Expr
}

type Let struct {
	Binds []Bind
	Body  []Expr
}

type If struct {
	Pred, Then, Else Expr
}

type Loop struct {
	N    uint16
	Body Expr
}

type Hash struct {
	Fn   uint16
	Body Expr
}

type Sigeok struct {
	Fn            uint16
	Msg, Key, Sig Expr
}

func (*Lit) isExpr()     {}
func (*Builtin) isExpr() {}
func (*Var) isExpr()     {}
func (*Set) isExpr()     {}
func (*Let) isExpr()     {}
func (*If) isExpr()      {}
func (*Loop) isExpr()    {}
func (*Hash) isExpr()    {}
func (*Sigeok) isExpr()  {}
