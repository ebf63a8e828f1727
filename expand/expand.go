// Package expand inlines user-defined functions, producing a
// function-free tree in which every binding carries a globally unique
// variable id. Minting a fresh id for every binding occurrence,
// including each call-site instantiation of a function parameter, is
// what makes repeated and nested inlining of the same function safe.
package expand

import (
	stderrors "errors"

	"github.com/themeliolabs/mil/ast"
	"github.com/themeliolabs/mil/errors"
)

var (
	ErrUndefinedFunction = stderrors.New("undefined function")
	ErrArityMismatch     = stderrors.New("wrong number of arguments")
	ErrUnboundVariable   = stderrors.New("unbound variable")
	ErrRedefinedFunction = stderrors.New("function defined twice")
	ErrInlineDepth       = stderrors.New("function inlining too deep")

	// errUnknownExpr marks a surface-tree shape the parser never
	// produces; reaching it is an internal bug.
	errUnknownExpr = stderrors.New("unknown expression")
)

// maxInlineDepth bounds call-structure nesting so that a self-recursive
// definition surfaces as a typed fault instead of exhausting the goroutine
// stack of a validating process.
const maxInlineDepth = 512

// Env holds the function definitions of one compilation together with
// the monotonic id counter threaded through expansion.
type Env struct {
	fns     map[string]*ast.FnDef
	counter VarID
}

// NewEnv builds an expansion environment from the program's function
// definitions.
func NewEnv(fns []*ast.FnDef) (*Env, error) {
	e := &Env{
		fns:     make(map[string]*ast.FnDef, len(fns)),
		counter: firstFreeID,
	}
	for _, fn := range fns {
		if _, ok := e.fns[fn.Name]; ok {
			return nil, errors.WithDetail(ErrRedefinedFunction, fn.Name)
		}
		e.fns[fn.Name] = fn
	}
	return e, nil
}

// scope is one frame of the lexical chain from a name to its id.
type scope struct {
	parent *scope
	vars   map[string]VarID
}

func (s *scope) child() *scope {
	return &scope{parent: s, vars: make(map[string]VarID)}
}

func (s *scope) lookup(name string) (VarID, bool) {
	for ; s != nil; s = s.parent {
		if id, ok := s.vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// globals returns the outermost scope, pre-binding the names that read
// the transaction context.
func globals() *scope {
	return &scope{vars: map[string]VarID{
		"self-hash":  SelfHashID,
		"tx-sighash": TxSigHashID,
	}}
}

func (e *Env) fresh() VarID {
	id := e.counter
	e.counter++
	return id
}

// Expand unrolls every function call in x.
func (e *Env) Expand(x ast.Expr) (Expr, error) {
	return e.expand(x, globals(), 0)
}

func (e *Env) expand(x ast.Expr, sc *scope, depth int) (Expr, error) {
	switch x := x.(type) {
	case *ast.Lit:
		return &Lit{Value: x.Value}, nil

	case *ast.App:
		want, ok := x.Op.Arity()
		if !ok || want != len(x.Args) {
			return nil, errors.WithDetailf(ErrArityMismatch, "builtin %s applied to %d arguments", x.Op, len(x.Args))
		}
		args, err := e.expandAll(x.Args, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Builtin{ast.Builtin[Expr]{Op: x.Op, Args: args}}, nil

	case *ast.Call:
		return e.call(x, sc, depth)

	case *ast.Var:
		id, ok := sc.lookup(x.Name)
		if !ok {
			return nil, errors.WithDetail(ErrUnboundVariable, x.Name)
		}
		return &Var{ID: id}, nil

	case *ast.Set:
		id, ok := sc.lookup(x.Name)
		if !ok {
			return nil, errors.WithDetail(ErrUnboundVariable, x.Name)
		}
		body, err := e.expand(x.Body, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Set{ID: id, Body: body}, nil

	case *ast.Let:
		sc = sc.child()
		binds := make([]Bind, 0, len(x.Binds))
		for _, b := range x.Binds {
			// The bound expression sees earlier binds but not its own name.
			init, err := e.expand(b.Expr, sc, depth)
			if err != nil {
				return nil, err
			}
			id := e.fresh()
			sc.vars[b.Name] = id
			binds = append(binds, Bind{ID: id, Expr: init})
		}
		body, err := e.expandAll(x.Body, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Let{Binds: binds, Body: body}, nil

	case *ast.If:
		pred, err := e.expand(x.Pred, sc, depth)
		if err != nil {
			return nil, err
		}
		then, err := e.expand(x.Then, sc, depth)
		if err != nil {
			return nil, err
		}
		els, err := e.expand(x.Else, sc, depth)
		if err != nil {
			return nil, err
		}
		return &If{Pred: pred, Then: then, Else: els}, nil

	case *ast.Loop:
		body, err := e.expand(x.Body, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Loop{N: x.N, Body: body}, nil

	case *ast.Hash:
		body, err := e.expand(x.Body, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Hash{Fn: x.Fn, Body: body}, nil

	case *ast.Sigeok:
		msg, err := e.expand(x.Msg, sc, depth)
		if err != nil {
			return nil, err
		}
		key, err := e.expand(x.Key, sc, depth)
		if err != nil {
			return nil, err
		}
		sig, err := e.expand(x.Sig, sc, depth)
		if err != nil {
			return nil, err
		}
		return &Sigeok{Fn: x.Fn, Msg: msg, Key: key, Sig: sig}, nil
	}
	return nil, errors.WithDetailf(errUnknownExpr, "%T", x)
}

// call inlines one function application. The actual arguments are
// expanded in the caller's scope, then let-bound to fresh ids; the body
// resolves its parameters to those ids and nothing else from the call
// site, so distinct instantiations can never alias.
func (e *Env) call(x *ast.Call, sc *scope, depth int) (Expr, error) {
	if depth >= maxInlineDepth {
		return nil, errors.WithDetail(ErrInlineDepth, x.Name)
	}
	fn, ok := e.fns[x.Name]
	if !ok {
		return nil, errors.WithDetail(ErrUndefinedFunction, x.Name)
	}
	if len(fn.Params) != len(x.Args) {
		return nil, errors.WithDetailf(ErrArityMismatch, "%s expects %d arguments, got %d", x.Name, len(fn.Params), len(x.Args))
	}

	binds := make([]Bind, 0, len(x.Args))
	fnScope := globals().child()
	for i, arg := range x.Args {
		init, err := e.expand(arg, sc, depth)
		if err != nil {
			return nil, err
		}
		id := e.fresh()
		fnScope.vars[fn.Params[i]] = id
		binds = append(binds, Bind{ID: id, Expr: init})
	}

	body, err := e.expand(fn.Body, fnScope, depth+1)
	if err != nil {
		return nil, err
	}
	return &Let{Binds: binds, Body: []Expr{body}}, nil
}

func (e *Env) expandAll(xs []ast.Expr, sc *scope, depth int) ([]Expr, error) {
	out := make([]Expr, 0, len(xs))
	for _, x := range xs {
		ex, err := e.expand(x, sc, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}
