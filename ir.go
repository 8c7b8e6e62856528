// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// A FuncID identifies a function in a Table. Primitives occupy the lowest ids.
//
type FuncID int

// Primitive function ids.
//
const (
	FuncSource FuncID = iota
	FuncBuffer
	FuncNot
	FuncOr
	FuncAnd
	FuncNor
	FuncNand
	FuncBus
	FuncBusInput
	numPrimitives
)

// StateExpr is a state expression. It is either a constant or a reference to a
// state parameter of the calling function, optionally negated.
//
type StateExpr struct {
	Negate bool
	// Param is the index of the referenced state parameter or -1 for a
	// constant.
	Param int
	Value bool
}

// Const returns a constant state expression.
//
func Const(v bool) StateExpr { return StateExpr{Param: -1, Value: v} }

// Param returns a state expression referencing parameter i.
//
func Param(i int) StateExpr { return StateExpr{Param: i} }

// Not returns the negation of e.
//
func (e StateExpr) Not() StateExpr {
	e.Negate = !e.Negate
	return e
}

func (e StateExpr) String() string {
	var s string
	if e.Negate {
		s = "!"
	}
	if e.Param < 0 {
		if e.Value {
			return s + "1"
		}
		return s + "0"
	}
	return s + "$" + strconv.Itoa(e.Param)
}

// A Stmt is a statement in a function body. Wire operands are positions in the
// function's wire space: inputs, then outputs, then locals.
//
type Stmt interface {
	stmt()
}

// CallStmt instantiates a function. Wires lists the callee's inputs then
// outputs. A nil State selects the callee's default state.
//
type CallStmt struct {
	Func  FuncID
	State []StateExpr
	Wires []int
}

// SourceStmt places a Source holding State in Out.
//
type SourceStmt struct {
	State StateExpr
	Out   int
}

// GateStmt places a Buffer, Not, Or, And, Nor or Nand gate in Out. State is
// the initial value of Out.
//
type GateStmt struct {
	Kind  Kind
	State StateExpr
	In    []int
	Out   int
}

// BusStmt places a Bus with no drivers in Out.
//
type BusStmt struct {
	State StateExpr
	Out   int
}

// BusInputStmt adds a driver to the bus in slot Bus.
//
type BusInputStmt struct {
	Bus  int
	High int
	Low  int
}

func (CallStmt) stmt()     {}
func (SourceStmt) stmt()   {}
func (GateStmt) stmt()     {}
func (BusStmt) stmt()      {}
func (BusInputStmt) stmt() {}

// A Func is a function definition.
//
type Func struct {
	Name string
	// Default state.
	State []bool
	// Input and output counts.
	In  int
	Out int
	// Number of local wires.
	Locals int
	Stmts  []Stmt

	prim bool
	kind Kind
}

// Primitive reports whether f is a built-in primitive.
//
func (f *Func) Primitive() bool { return f.prim }

// Wires returns the size of the function's wire space.
//
func (f *Func) Wires() int { return f.In + f.Out + f.Locals }

func primitive(name string, k Kind, state []bool, in, out int) *Func {
	return &Func{Name: name, State: state, In: in, Out: out, prim: true, kind: k}
}

// busInput is a pseudo kind for bus_input.
const busInput Kind = 0xff

func primitives() []*Func {
	return []*Func{
		FuncSource:   primitive("source", Source, []bool{false}, 0, 1),
		FuncBuffer:   primitive("buffer", Buffer, []bool{false}, 1, 1),
		FuncNot:      primitive("not", Not, []bool{true}, 1, 1),
		FuncOr:       primitive("or", Or, []bool{false}, 2, 1),
		FuncAnd:      primitive("and", And, []bool{false}, 2, 1),
		FuncNor:      primitive("nor", Nor, []bool{true}, 2, 1),
		FuncNand:     primitive("nand", Nand, []bool{true}, 2, 1),
		FuncBus:      primitive("bus", Bus, []bool{false}, 0, 1),
		FuncBusInput: primitive("bus_input", busInput, nil, 3, 0),
	}
}

// A Table is a function table. Once built, a table is only read from and can
// be used to build any number of networks.
//
type Table struct {
	funcs []*Func
	ids   map[string]FuncID
}

// NewTable returns a table holding only the primitives.
//
func NewTable() *Table {
	t := &Table{funcs: primitives(), ids: make(map[string]FuncID)}
	for i, f := range t.funcs {
		t.ids[f.Name] = FuncID(i)
	}
	return t
}

// Define adds f to the table and returns its id. The function body is not
// checked; malformed bodies are reported when building a network.
//
func (t *Table) Define(f *Func) (FuncID, error) {
	if f.Name == "" {
		return -1, errors.New("empty function name")
	}
	if id, ok := t.ids[f.Name]; ok {
		if t.funcs[id].prim {
			return -1, errors.Errorf("%s is a reserved primitive name", f.Name)
		}
		return -1, errors.Errorf("function %s already defined", f.Name)
	}
	if f.prim {
		return -1, errors.Errorf("%s: cannot define a primitive", f.Name)
	}
	id := FuncID(len(t.funcs))
	t.funcs = append(t.funcs, f)
	t.ids[f.Name] = id
	return id, nil
}

// Lookup returns the id of the named function.
//
func (t *Table) Lookup(name string) (FuncID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Func returns the function with the given id or nil if no such function
// exists.
//
func (t *Table) Func(id FuncID) *Func {
	if id < 0 || int(id) >= len(t.funcs) {
		return nil
	}
	return t.funcs[id]
}

// Signature returns the default state and input/output counts of a function.
//
func (t *Table) Signature(id FuncID) (state []bool, in, out int) {
	f := t.Func(id)
	if f == nil {
		return nil, 0, 0
	}
	return f.State, f.In, f.Out
}

// Len returns the number of functions in the table, primitives included.
//
func (t *Table) Len() int { return len(t.funcs) }
