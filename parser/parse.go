// Package parser turns mil source text into the surface tree consumed
// by the function expander.
//
// A program is zero or more function definitions followed by exactly
// one covenant body expression:
//
//	(fn check (key) (sigeok 32 tx-sighash key 0x00))
//	(check 0xdeadbeef)
//
// Comments run from ; to the end of the line.
package parser

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"unicode"

	"github.com/holiman/uint256"

	"github.com/themeliolabs/mil/ast"
)

// We have some function naming conventions.
//
// For terminals:
//   scanX     takes buf and position, returns new position (and maybe a value)
//   peekX     takes *parser, returns bool or string
//   consumeX  takes *parser and maybe a required literal, maybe returns value
//             also updates the parser position
//
// For nonterminals:
//   parseX    takes *parser, returns a tree node, updates parser position

type parser struct {
	buf []byte
	pos int
}

func (p *parser) errorf(format string, args ...interface{}) {
	panic(parserErr{buf: p.buf, offset: p.pos, format: format, args: args})
}

// Parse is the main entry point to the parser.
func Parse(buf []byte) (defs []*ast.FnDef, body ast.Expr, err error) {
	defer func() {
		if val := recover(); val != nil {
			if e, ok := val.(parserErr); ok {
				err = e
			} else {
				panic(val)
			}
		}
	}()
	p := &parser{buf: buf}
	for peekListHead(p) == "fn" {
		defs = append(defs, parseFnDef(p))
	}
	body = parseExpr(p)
	if pos := skipWsAndComments(p.buf, p.pos); pos != len(p.buf) {
		p.pos = pos
		p.errorf("trailing input after covenant body")
	}
	return defs, body, nil
}

// parse functions

// (fn name (p1 p2 ...) body)
func parseFnDef(p *parser) *ast.FnDef {
	consumeTok(p, "(")
	consumeKeyword(p, "fn")
	name := consumeSymbol(p)
	consumeTok(p, "(")
	var params []string
	for !peekTok(p, ")") {
		params = append(params, consumeSymbol(p))
	}
	consumeTok(p, ")")
	body := parseExpr(p)
	consumeTok(p, ")")
	return &ast.FnDef{Name: name, Params: params, Body: body}
}

func parseExpr(p *parser) ast.Expr {
	if v, pos := scanIntLiteral(p.buf, p.pos); pos >= 0 {
		p.pos = pos
		return &ast.Lit{Value: v}
	}
	if v, pos := scanBytesLiteral(p.buf, p.pos); pos >= 0 {
		p.pos = pos
		return &ast.Lit{Value: v}
	}
	if peekTok(p, "(") {
		return parseForm(p)
	}
	return &ast.Var{Name: consumeSymbol(p)}
}

// parseForm parses any parenthesized expression. The head symbol picks
// the shape; anything that is neither a special form nor a builtin is a
// call of a user-defined function.
func parseForm(p *parser) ast.Expr {
	consumeTok(p, "(")
	head := consumeSymbol(p)
	var e ast.Expr
	switch head {
	case "fn":
		p.errorf("function definitions must precede the covenant body")
	case "let":
		e = parseLet(p)
	case "set!":
		name := consumeSymbol(p)
		body := parseExpr(p)
		e = &ast.Set{Name: name, Body: body}
	case "if":
		pred := parseExpr(p)
		then := parseExpr(p)
		els := parseExpr(p)
		e = &ast.If{Pred: pred, Then: then, Else: els}
	case "loop":
		n := consumeU16(p)
		body := parseExpr(p)
		e = &ast.Loop{N: n, Body: body}
	case "hash":
		fn := consumeU16(p)
		body := parseExpr(p)
		e = &ast.Hash{Fn: fn, Body: body}
	case "sigeok":
		fn := consumeU16(p)
		msg := parseExpr(p)
		key := parseExpr(p)
		sig := parseExpr(p)
		e = &ast.Sigeok{Fn: fn, Msg: msg, Key: key, Sig: sig}
	default:
		args := parseArgs(p)
		if op, ok := ast.BuiltinByName(head); ok {
			e = &ast.App{Builtin: ast.Builtin[ast.Expr]{Op: op, Args: args}}
		} else {
			e = &ast.Call{Name: head, Args: args}
		}
	}
	consumeTok(p, ")")
	return e
}

// ((name expr) ...) body...
func parseLet(p *parser) ast.Expr {
	consumeTok(p, "(")
	var binds []ast.Bind
	for !peekTok(p, ")") {
		consumeTok(p, "(")
		name := consumeSymbol(p)
		expr := parseExpr(p)
		consumeTok(p, ")")
		binds = append(binds, ast.Bind{Name: name, Expr: expr})
	}
	consumeTok(p, ")")
	body := []ast.Expr{parseExpr(p)}
	for !peekTok(p, ")") {
		body = append(body, parseExpr(p))
	}
	return &ast.Let{Binds: binds, Body: body}
}

func parseArgs(p *parser) []ast.Expr {
	var exprs []ast.Expr
	for !peekTok(p, ")") {
		exprs = append(exprs, parseExpr(p))
	}
	return exprs
}

// peek functions

func peekTok(p *parser, token string) bool {
	pos := scanTok(p.buf, p.pos, token)
	return pos >= 0
}

// peekListHead reports the head symbol of the list at the current
// position, or "" when no list starts here. The position is unchanged.
func peekListHead(p *parser) string {
	pos := scanTok(p.buf, p.pos, "(")
	if pos < 0 {
		return ""
	}
	head, _ := scanSymbol(p.buf, pos)
	return head
}

// consume functions

func consumeTok(p *parser, token string) {
	pos := scanTok(p.buf, p.pos, token)
	if pos < 0 {
		p.errorf("expected %s token", token)
	}
	p.pos = pos
}

func consumeKeyword(p *parser, keyword string) {
	name, pos := scanSymbol(p.buf, p.pos)
	if pos < 0 || name != keyword {
		p.errorf("expected keyword %s", keyword)
	}
	p.pos = pos
}

func consumeSymbol(p *parser) string {
	name, pos := scanSymbol(p.buf, p.pos)
	if pos < 0 {
		p.pos = skipWsAndComments(p.buf, p.pos)
		p.errorf("expected symbol")
	}
	p.pos = pos
	return name
}

func consumeU16(p *parser) uint16 {
	v, pos := scanIntLiteral(p.buf, p.pos)
	if pos < 0 {
		p.errorf("expected integer")
	}
	u := uint256.Int(v)
	if !u.IsUint64() || u.Uint64() > math.MaxUint16 {
		p.errorf("integer %s does not fit in 16 bits", u.Dec())
	}
	p.pos = pos
	return uint16(u.Uint64())
}

// scan functions

func scanIntLiteral(buf []byte, offset int) (ast.Int, int) {
	offset = skipWsAndComments(buf, offset)
	i := offset
	for ; i < len(buf) && buf[i] >= '0' && buf[i] <= '9'; i++ {
	}
	if i == offset {
		return ast.Int{}, -1
	}
	// Maximum munch. Make sure "0x6c" and "12abc" are not claimed as
	// the integers 0 and 12.
	if i < len(buf) && isSymbolChar(buf[i], false) {
		return ast.Int{}, -1
	}
	n, err := uint256.FromDecimal(string(buf[offset:i]))
	if err != nil {
		panic(parseErr(buf, offset, "integer literal out of range"))
	}
	return ast.Int(*n), i
}

// 0x6c249a...
func scanBytesLiteral(buf []byte, offset int) (ast.Bytes, int) {
	offset = skipWsAndComments(buf, offset)
	if offset+2 >= len(buf) || buf[offset] != '0' || buf[offset+1] != 'x' {
		return nil, -1
	}
	i := offset + 2
	for ; i < len(buf) && isHexDigit(buf[i]); i++ {
	}
	digits := i - (offset + 2)
	if digits == 0 || digits%2 != 0 {
		panic(parseErr(buf, offset, "malformed hex literal"))
	}
	decoded := make([]byte, hex.DecodedLen(digits))
	if _, err := hex.Decode(decoded, buf[offset+2:i]); err != nil {
		return nil, -1
	}
	return ast.Bytes(decoded), i
}

func scanSymbol(buf []byte, offset int) (string, int) {
	offset = skipWsAndComments(buf, offset)
	i := offset
	for ; i < len(buf) && isSymbolChar(buf[i], i == offset); i++ {
	}
	if i == offset {
		return "", -1
	}
	return string(buf[offset:i]), i
}

func scanTok(buf []byte, offset int, s string) int {
	offset = skipWsAndComments(buf, offset)
	prefix := []byte(s)
	if bytes.HasPrefix(buf[offset:], prefix) {
		return offset + len(prefix)
	}
	return -1
}

func skipWsAndComments(buf []byte, offset int) int {
	var inComment bool
	for ; offset < len(buf); offset++ {
		c := buf[offset]
		if inComment {
			if c == '\n' {
				inComment = false
			}
		} else {
			if c == ';' {
				inComment = true
			} else if !unicode.IsSpace(rune(c)) {
				break
			}
		}
	}
	return offset
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isSymbolChar(c byte, initial bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		// Symbols may contain digits but never start with one; a
		// leading digit always begins a literal.
		return !initial
	}
	switch c {
	case '+', '-', '*', '/', '%', '!', '?', '_', '<', '>', '=':
		return true
	}
	return false
}

type parserErr struct {
	buf    []byte
	offset int
	format string
	args   []interface{}
}

func parseErr(buf []byte, offset int, format string, args ...interface{}) error {
	return parserErr{buf: buf, offset: offset, format: format, args: args}
}

func (p parserErr) Error() string {
	// Lines start at 1, columns start at 0, like nature intended.
	line := 1
	col := 0
	for i := 0; i < p.offset; i++ {
		if p.buf[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	args := []interface{}{line, col}
	args = append(args, p.args...)
	return fmt.Sprintf("line %d, col %d: "+p.format, args...)
}
