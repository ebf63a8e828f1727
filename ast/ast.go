// Package ast defines the surface syntax tree of the mil language: the
// shape the parser produces and the function expander consumes.
package ast

// Expr is a node of the surface tree.
type Expr interface {
	isExpr()
}

// Lit is a literal value.
type Lit struct {
	Value Value
}

// App applies a builtin operator to its arguments.
type App struct {
	Builtin[Expr]
}

// Call applies a user-defined function by name.
type Call struct {
	Name string
	Args []Expr
}

// Var reads the variable bound to a name.
type Var struct {
	Name string
}

// Set assigns the result of Body to an already-bound name.
type Set struct {
	Name string
	Body Expr
}

// Bind is one name/expression pair of a Let.
type Bind struct {
	Name string
	Expr Expr
}

// Let binds names in order, each visible to the binds and body
// expressions that follow it, then evaluates the body in sequence.
type Let struct {
	Binds []Bind
	Body  []Expr
}

// If evaluates Then when Pred is nonzero, Else when it is zero.
type If struct {
	Pred, Then, Else Expr
}

// Loop evaluates Body N times.
type Loop struct {
	N    uint16
	Body Expr
}

// Hash hashes the result of Body. Fn selects digest truncation.
type Hash struct {
	Fn   uint16
	Body Expr
}

// Sigeok verifies that Sig is Key's signature over Msg. Fn bounds the
// message length.
type Sigeok struct {
	Fn            uint16
	Msg, Key, Sig Expr
}

func (*Lit) isExpr()    {}
func (*App) isExpr()    {}
func (*Call) isExpr()   {}
func (*Var) isExpr()    {}
func (*Set) isExpr()    {}
func (*Let) isExpr()    {}
func (*If) isExpr()     {}
func (*Loop) isExpr()   {}
func (*Hash) isExpr()   {}
func (*Sigeok) isExpr() {}

// FnDef is a named, parameterized template inlined at every call site.
type FnDef struct {
	Name   string
	Params []string
	Body   Expr
}
