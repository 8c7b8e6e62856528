// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"fmt"

	"github.com/db47h/cirsim/internal/lex"
)

// Error is a syntax or semantic error at a given position in the input.
//
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Errorf returns an *Error for the given position in input.
//
func Errorf(input string, pos lex.Pos, format string, args ...interface{}) error {
	line, col := lex.Position(input, pos)
	return &Error{line, col, fmt.Sprintf(format, args...)}
}

type bailout struct {
	err error
}

// Parse parses circuit definitions.
//
func Parse(input string) (f *File, err error) {
	p := &parser{input: input, l: Lexer(input)}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()
	p.next()
	f = new(File)
	for p.i.Type != EOF {
		f.Funcs = append(f.Funcs, p.funcDef())
	}
	return f, nil
}

type parser struct {
	input string
	l     lex.Interface
	i     lex.Item
}

func (p *parser) errorf(pos lex.Pos, format string, args ...interface{}) {
	panic(bailout{Errorf(p.input, pos, format, args...)})
}

func (p *parser) next() {
	p.i = p.l.Lex()
	switch p.i.Type {
	case Raw:
		p.errorf(p.i.Pos, "invalid character %s", p.i)
	case Int:
		if _, ok := p.i.Value.(int); !ok {
			p.errorf(p.i.Pos, "number %s out of range (max %d)", p.i, maxInt)
		}
	}
}

func (p *parser) expect(t lex.Type, what string) lex.Item {
	if p.i.Type != t {
		p.errorf(p.i.Pos, "expected %s, got %s", what, p.i)
	}
	i := p.i
	p.next()
	return i
}

func (p *parser) accept(t lex.Type) bool {
	if p.i.Type == t {
		p.next()
		return true
	}
	return false
}

func (p *parser) ident(what string) (string, lex.Pos) {
	i := p.expect(Ident, what)
	return i.Value.(string), i.Pos
}

func (p *parser) bit() bool {
	i := p.expect(Int, "0 or 1")
	switch i.Value.(int) {
	case 0:
		return false
	case 1:
		return true
	}
	p.errorf(i.Pos, "expected 0 or 1, got %s", i)
	return false
}

func (p *parser) funcDef() *Func {
	name, pos := p.ident("function name")
	f := &Func{Name: name, Pos: pos}
	if p.accept(BracketOpen) && !p.accept(BracketClose) {
		for {
			n, pos := p.ident("state name")
			p.expect(Equal, "'='")
			f.State = append(f.State, StateDef{n, p.bit(), pos})
			if p.accept(BracketClose) {
				break
			}
			p.expect(Comma, "',' or ']'")
		}
	}
	f.In = p.pins()
	p.expect(Arrow, "'->'")
	f.Out = p.pins()
	p.expect(BraceOpen, "'{'")
	for !p.accept(BraceClose) {
		f.Stmts = append(f.Stmts, p.stmt())
	}
	return f
}

func (p *parser) pins() []Pin {
	p.expect(ParenOpen, "'('")
	var pins []Pin
	if p.accept(ParenClose) {
		return pins
	}
	for {
		pins = append(pins, p.decl(false))
		if p.accept(ParenClose) {
			return pins
		}
		p.expect(Comma, "',' or ')'")
	}
}

// decl parses a pin or wire declaration: name or name[size].
//
func (p *parser) decl(discard bool) Pin {
	name, pos := p.ident("pin name")
	if name == "_" && !discard {
		p.errorf(pos, "invalid pin name %q", name)
	}
	pin := Pin{Name: name, Pos: pos}
	if p.accept(BracketOpen) {
		if name == "_" {
			p.errorf(pos, "anonymous wire cannot be a bus")
		}
		i := p.expect(Int, "bus size")
		if pin.Size = i.Value.(int); pin.Size == 0 {
			p.errorf(i.Pos, "invalid bus size 0")
		}
		p.expect(BracketClose, "']'")
	}
	return pin
}

func (p *parser) stmt() Stmt {
	pos := p.i.Pos
	if p.i.Type == Ident && p.i.Value == "let" {
		p.next()
		var decls []Pin
		if p.accept(ParenOpen) {
			if !p.accept(ParenClose) {
				for {
					decls = append(decls, p.decl(true))
					if p.accept(ParenClose) {
						break
					}
					p.expect(Comma, "',' or ')'")
				}
			}
		} else {
			decls = []Pin{p.decl(true)}
		}
		if p.accept(Semicolon) {
			for _, d := range decls {
				if d.Name == "_" {
					p.errorf(d.Pos, "anonymous wire in floating declaration")
				}
			}
			return &Float{decls, pos}
		}
		p.expect(Equal, "'=' or ';'")
		x := p.expr()
		p.expect(Semicolon, "';'")
		return &Let{decls, x, pos}
	}

	if p.accept(ParenOpen) {
		var targets []*Ref
		if !p.accept(ParenClose) {
			for {
				targets = append(targets, p.ref())
				if p.accept(ParenClose) {
					break
				}
				p.expect(Comma, "',' or ')'")
			}
		}
		p.expect(Equal, "'='")
		x := p.expr()
		p.expect(Semicolon, "';'")
		return &Set{targets, x, pos}
	}

	x := p.expr()
	if p.accept(Equal) {
		r, ok := x.(*Ref)
		if !ok {
			p.errorf(pos, "invalid assignment target")
		}
		y := p.expr()
		p.expect(Semicolon, "';'")
		return &Set{[]*Ref{r}, y, pos}
	}
	p.expect(Semicolon, "';' or '='")
	return &ExprStmt{x, pos}
}

func (p *parser) ref() *Ref {
	name, pos := p.ident("wire name")
	r := &Ref{Name: name, Index: -1, End: -1, Pos: pos}
	if p.accept(BracketOpen) {
		i := p.expect(Int, "index")
		r.Index = i.Value.(int)
		if p.accept(Range) {
			r.End = p.expect(Int, "range end").Value.(int)
			if r.End < r.Index {
				p.errorf(i.Pos, "invalid range %d..%d", r.Index, r.End)
			}
		}
		p.expect(BracketClose, "']'")
	}
	return r
}

func (p *parser) expr() Expr {
	switch p.i.Type {
	case Int:
		pos := p.i.Pos
		return &Literal{p.bit(), pos}
	case Ident:
	default:
		p.errorf(p.i.Pos, "expected expression, got %s", p.i)
	}

	name, pos := p.ident("name")
	var items []bracketItem
	bracket := p.accept(BracketOpen)
	if bracket {
		items = p.bracketItems()
	}

	if p.accept(ParenOpen) {
		c := &Call{Name: name, Pos: pos}
		if bracket {
			c.State = make([]StateExpr, 0, len(items))
			for _, it := range items {
				c.State = append(c.State, p.stateExpr(it))
			}
		}
		if !p.accept(ParenClose) {
			for {
				c.Args = append(c.Args, p.expr())
				if p.accept(ParenClose) {
					break
				}
				p.expect(Comma, "',' or ')'")
			}
		}
		return c
	}

	r := &Ref{Name: name, Index: -1, End: -1, Pos: pos}
	if bracket {
		if len(items) != 1 || !items[0].isInt || items[0].neg > 0 {
			p.errorf(pos, "invalid index for wire %s", name)
		}
		r.Index, r.End = items[0].lo, items[0].hi
	}
	return r
}

// bracketItem is an element of a bracketed list following an identifier. It
// is either a state expression or a wire index/range, depending on what
// follows the closing bracket.
//
type bracketItem struct {
	pos    lex.Pos
	neg    int
	ident  string
	isInt  bool
	lo, hi int
}

func (p *parser) bracketItems() []bracketItem {
	var items []bracketItem
	if p.accept(BracketClose) {
		return items
	}
	for {
		it := bracketItem{pos: p.i.Pos, hi: -1}
		for p.accept(Bang) {
			it.neg++
		}
		switch p.i.Type {
		case Int:
			it.isInt = true
			it.lo = p.i.Value.(int)
			p.next()
			if it.neg == 0 && p.accept(Range) {
				it.hi = p.expect(Int, "range end").Value.(int)
				if it.hi < it.lo {
					p.errorf(it.pos, "invalid range %d..%d", it.lo, it.hi)
				}
			}
		case Ident:
			it.ident = p.i.Value.(string)
			p.next()
		default:
			p.errorf(p.i.Pos, "expected state or index, got %s", p.i)
		}
		items = append(items, it)
		if p.accept(BracketClose) {
			return items
		}
		p.expect(Comma, "',' or ']'")
	}
}

func (p *parser) stateExpr(it bracketItem) StateExpr {
	var x StateExpr
	switch {
	case it.ident != "":
		x = &StateIdent{it.ident, it.pos}
	case it.hi >= 0 || it.lo > 1:
		p.errorf(it.pos, "invalid state value")
	default:
		x = &StateConst{it.lo == 1, it.pos}
	}
	for i := 0; i < it.neg; i++ {
		x = &StateNot{x, it.pos}
	}
	return x
}
