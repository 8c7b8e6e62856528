// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"strconv"

	"github.com/db47h/cirsim/internal/lex"
)

// BusPinName returns the name of the i-th pin of a bus.
//
func BusPinName(bus string, i int) string {
	return bus + "[" + strconv.Itoa(i) + "]"
}

// File is a parsed source file. Functions appear in declaration order.
//
type File struct {
	Funcs []*Func
}

// Func is a circuit definition:
//
//	name[state=0, ...](inputs...) -> (outputs...) { statements... }
//
type Func struct {
	Name  string
	Pos   lex.Pos
	State []StateDef
	In    []Pin
	Out   []Pin
	Stmts []Stmt
}

// StateDef is a state parameter with its default value.
//
type StateDef struct {
	Name  string
	Value bool
	Pos   lex.Pos
}

// Pin declares a single pin or wire. If Size is not 0, it declares a bus of
// Size pins named Name[0] to Name[Size-1].
//
type Pin struct {
	Name string
	Size int
	Pos  lex.Pos
}

// Names returns the expanded pin names.
//
func (p Pin) Names() []string {
	if p.Size == 0 {
		return []string{p.Name}
	}
	r := make([]string, p.Size)
	for i := range r {
		r[i] = BusPinName(p.Name, i)
	}
	return r
}

// StateExpr is a state expression: *StateConst, *StateIdent or *StateNot.
//
type StateExpr interface {
	stateExpr()
}

// StateConst is a constant state value.
//
type StateConst struct {
	Value bool
	Pos   lex.Pos
}

// StateIdent references a state parameter of the enclosing function.
//
type StateIdent struct {
	Name string
	Pos  lex.Pos
}

// StateNot negates a state expression.
//
type StateNot struct {
	X   StateExpr
	Pos lex.Pos
}

func (*StateConst) stateExpr() {}
func (*StateIdent) stateExpr() {}
func (*StateNot) stateExpr()   {}

// Expr is an expression: *Literal, *Ref or *Call.
//
type Expr interface {
	Position() lex.Pos
}

// Literal is a constant signal (0 or 1).
//
type Literal struct {
	Value bool
	Pos   lex.Pos
}

// Ref references a wire (Index < 0), a single bus pin (End < 0) or an
// inclusive range of bus pins.
//
// A reference to a bare bus name expands to all of its pins.
//
type Ref struct {
	Name  string
	Index int
	End   int
	Pos   lex.Pos
}

// Call is a function call. A nil State means that the callee's default state
// is used.
//
type Call struct {
	Name  string
	State []StateExpr
	Args  []Expr
	Pos   lex.Pos
}

func (x *Literal) Position() lex.Pos { return x.Pos }
func (x *Ref) Position() lex.Pos     { return x.Pos }
func (x *Call) Position() lex.Pos    { return x.Pos }

// Stmt is a statement: *Float, *Let, *Set or *ExprStmt.
//
type Stmt interface {
	Position() lex.Pos
}

// Float declares wires without driving them: let (a, b);
//
type Float struct {
	Decls []Pin
	Pos   lex.Pos
}

// Let declares new wires driven by X: let (a, _) = f(x);
// A declaration named "_" allocates an anonymous wire.
//
type Let struct {
	Decls []Pin
	X     Expr
	Pos   lex.Pos
}

// Set drives existing wires with X: (a, _) = f(x);
// A target named "_" allocates an anonymous wire.
//
type Set struct {
	Targets []*Ref
	X       Expr
	Pos     lex.Pos
}

// ExprStmt is an expression evaluated for its side effects: bus_input(b, h, l);
//
type ExprStmt struct {
	X   Expr
	Pos lex.Pos
}

func (s *Float) Position() lex.Pos    { return s.Pos }
func (s *Let) Position() lex.Pos      { return s.Pos }
func (s *Set) Position() lex.Pos      { return s.Pos }
func (s *ExprStmt) Position() lex.Pos { return s.Pos }
