package parser

import (
	"reflect"
	"testing"

	"github.com/themeliolabs/mil/ast"
)

func lit(n uint64) *ast.Lit {
	return &ast.Lit{Value: ast.NewInt(n)}
}

func app(op ast.BuiltinOp, args ...ast.Expr) *ast.App {
	return &ast.App{Builtin: ast.Builtin[ast.Expr]{Op: op, Args: args}}
}

func TestParseExpr(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Expr
	}{
		{"10", lit(10)},
		{"  10\t", lit(10)},
		{"0xdeadbeef", &ast.Lit{Value: ast.Bytes{0xde, 0xad, 0xbe, 0xef}}},
		{"tx-sighash", &ast.Var{Name: "tx-sighash"}},
		{"(+ 1 2)", app(ast.Add, lit(1), lit(2))},
		{"(+ 1 (- 5 8))", app(ast.Add, lit(1), app(ast.Sub, lit(5), lit(8)))},
		{"(v-empty)", app(ast.Vempty)},
		{"(v-push (v-empty) 255)", app(ast.Vpush, app(ast.Vempty), lit(255))},
		{"(v-slice x 1 3)", app(ast.Vslice, &ast.Var{Name: "x"}, lit(1), lit(3))},
		{"(set! x (+ x 1))", &ast.Set{Name: "x", Body: app(ast.Add, &ast.Var{Name: "x"}, lit(1))}},
		{"(if 1 2 3)", &ast.If{Pred: lit(1), Then: lit(2), Else: lit(3)}},
		{"(loop 3 (set! x 1))", &ast.Loop{N: 3, Body: &ast.Set{Name: "x", Body: lit(1)}}},
		{"(hash 32 0xff)", &ast.Hash{Fn: 32, Body: &ast.Lit{Value: ast.Bytes{0xff}}}},
		{
			"(sigeok 32 tx-sighash k s)",
			&ast.Sigeok{Fn: 32, Msg: &ast.Var{Name: "tx-sighash"}, Key: &ast.Var{Name: "k"}, Sig: &ast.Var{Name: "s"}},
		},
		{
			"(let ((x 1) (y (+ x 1))) (set! x y) x)",
			&ast.Let{
				Binds: []ast.Bind{
					{Name: "x", Expr: lit(1)},
					{Name: "y", Expr: app(ast.Add, &ast.Var{Name: "x"}, lit(1))},
				},
				Body: []ast.Expr{
					&ast.Set{Name: "x", Body: &ast.Var{Name: "y"}},
					&ast.Var{Name: "x"},
				},
			},
		},
		{"(check 1 0xff)", &ast.Call{Name: "check", Args: []ast.Expr{lit(1), &ast.Lit{Value: ast.Bytes{0xff}}}}},
		{"; preamble\n(+ 1 ; inline\n 2)", app(ast.Add, lit(1), lit(2))},
	}
	for _, c := range cases {
		defs, got, err := Parse([]byte(c.src))
		if err != nil {
			t.Errorf("Parse(%q): %s", c.src, err)
			continue
		}
		if len(defs) != 0 {
			t.Errorf("Parse(%q): unexpected definitions", c.src)
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Parse(%q) = %#v, want %#v", c.src, got, c.want)
		}
	}
}

func TestParseFnDefs(t *testing.T) {
	src := `
; doubles its argument
(fn double (x) (* x 2))
(fn pass () 1)
(double 21)
`
	defs, body, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	wantDefs := []*ast.FnDef{
		{Name: "double", Params: []string{"x"}, Body: app(ast.Mul, &ast.Var{Name: "x"}, lit(2))},
		{Name: "pass", Body: lit(1)},
	}
	if !reflect.DeepEqual(defs, wantDefs) {
		t.Errorf("defs = %#v, want %#v", defs, wantDefs)
	}
	wantBody := &ast.Call{Name: "double", Args: []ast.Expr{lit(21)}}
	if !reflect.DeepEqual(body, wantBody) {
		t.Errorf("body = %#v, want %#v", body, wantBody)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"(+ 1",
		"(+ 1 2) 3",
		"(fn f (x) x)",
		"(f 1) (fn f (x) x)",
		"0x123",
		"0x",
		"(loop 70000 1)",
		"(hash x 1)",
		"(let () )",
		"(set! 1 2)",
	}
	for _, src := range cases {
		if _, _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q): no error", src)
		}
	}
}

func TestParseErrPosition(t *testing.T) {
	_, _, err := Parse([]byte("(+ 1\n   @)"))
	if err == nil {
		t.Fatal("no error")
	}
	if want := "line 2, col 3"; len(err.Error()) < len(want) || err.Error()[:len(want)] != want {
		t.Errorf("err = %q, want prefix %q", err, want)
	}
}
