package lower

import "github.com/themeliolabs/mil/ast"

// Expr is a node of the lowered tree: the machine-shaped form whose
// builtin operands are concrete - literal values, heap slots, or
// instruction-count relative offsets - and whose control flow is a flat
// sequence.
type Expr interface {
	isExpr()
}

type Lit struct {
	Value ast.Value
}

type Builtin struct {
	ast.Builtin[Expr]
}

// Seq concatenates the instructions of its children in order.
type Seq []Expr

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
func (Seq) isExpr()      {}
func (*Loop) isExpr()    {}
func (*Hash) isExpr()    {}
func (*Sigeok) isExpr()  {}
