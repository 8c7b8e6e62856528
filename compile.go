// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

import (
	"os"

	"github.com/db47h/cirsim/internal/hdl"
	"github.com/db47h/cirsim/internal/lex"
	"github.com/pkg/errors"
)

// Compile parses circuit definitions and returns a new table holding them.
//
// A definition can only call primitives and functions defined before it.
//
//	// xor gate
//	xor(a, b) -> (out) {
//		out = and(nand(a, b), or(a, b));
//	}
//
func Compile(src string) (*Table, error) {
	t := NewTable()
	if err := t.Compile(src); err != nil {
		return nil, err
	}
	return t, nil
}

// CompileFile is like Compile but reads definitions from the named file.
//
func CompileFile(name string) (*Table, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	t, err := Compile(string(src))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return t, nil
}

// Compile adds the definitions in src to t. Either all definitions are added
// or, on error, none is.
//
func (t *Table) Compile(src string) error {
	file, err := hdl.Parse(src)
	if err != nil {
		return errors.WithStack(err)
	}
	nt := t.clone()
	for _, hf := range file.Funcs {
		f, err := nt.lower(src, hf)
		if err != nil {
			return err
		}
		if _, err = nt.Define(f); err != nil {
			return errors.WithStack(hdl.Errorf(src, hf.Pos, "%v", err))
		}
	}
	*t = *nt
	return nil
}

func (t *Table) clone() *Table {
	nt := &Table{
		funcs: make([]*Func, len(t.funcs)),
		ids:   make(map[string]FuncID, len(t.ids)),
	}
	copy(nt.funcs, t.funcs)
	for k, v := range t.ids {
		nt.ids[k] = v
	}
	return nt
}

// lowerer resolves names in a parsed function to wire positions and state
// parameter indices.
//
type lowerer struct {
	t      *Table
	src    string
	f      *Func
	states map[string]int
	wires  map[string]int
	count  int
}

func (t *Table) lower(src string, hf *hdl.Func) (*Func, error) {
	l := &lowerer{
		t:      t,
		src:    src,
		f:      &Func{Name: hf.Name, State: []bool{}},
		states: make(map[string]int),
		wires:  make(map[string]int),
	}
	if id, ok := t.Lookup(hf.Name); ok {
		if t.Func(id).Primitive() {
			return nil, l.errorf(hf.Pos, "%s is a reserved primitive name", hf.Name)
		}
		return nil, l.errorf(hf.Pos, "function %s already defined", hf.Name)
	}
	for i, s := range hf.State {
		if _, ok := l.states[s.Name]; ok {
			return nil, l.errorf(s.Pos, "duplicate state parameter %s", s.Name)
		}
		l.states[s.Name] = i
		l.f.State = append(l.f.State, s.Value)
	}
	// inputs and outputs come first in the wire space.
	for _, p := range hf.In {
		for _, n := range p.Names() {
			if _, err := l.declare(n, p.Pos); err != nil {
				return nil, err
			}
			l.f.In++
		}
	}
	for _, p := range hf.Out {
		for _, n := range p.Names() {
			if _, err := l.declare(n, p.Pos); err != nil {
				return nil, err
			}
			l.f.Out++
		}
	}
	for _, s := range hf.Stmts {
		if err := l.stmt(s); err != nil {
			return nil, err
		}
	}
	l.f.Locals = l.count - l.f.In - l.f.Out
	return l.f, nil
}

func (l *lowerer) errorf(pos lex.Pos, format string, args ...interface{}) error {
	return errors.WithStack(hdl.Errorf(l.src, pos, format, args...))
}

func (l *lowerer) emit(s Stmt) {
	l.f.Stmts = append(l.f.Stmts, s)
}

func (l *lowerer) alloc() int {
	n := l.count
	l.count++
	return n
}

func (l *lowerer) declare(name string, pos lex.Pos) (int, error) {
	if _, ok := l.wires[name]; ok {
		return -1, l.errorf(pos, "wire %s already declared", name)
	}
	n := l.alloc()
	l.wires[name] = n
	return n, nil
}

// decls allocates the wires of a let declaration.
//
func (l *lowerer) decls(ds []hdl.Pin) ([]int, error) {
	var r []int
	for _, d := range ds {
		if d.Name == "_" {
			r = append(r, l.alloc())
			continue
		}
		for _, n := range d.Names() {
			w, err := l.declare(n, d.Pos)
			if err != nil {
				return nil, err
			}
			r = append(r, w)
		}
	}
	return r, nil
}

func (l *lowerer) lookup(name string, pos lex.Pos) (int, error) {
	w, ok := l.wires[name]
	if !ok {
		return -1, l.errorf(pos, "unknown wire %s", name)
	}
	return w, nil
}

func (l *lowerer) ref(r *hdl.Ref) ([]int, error) {
	if r.Index < 0 {
		if w, ok := l.wires[r.Name]; ok {
			return []int{w}, nil
		}
		// bare bus name
		var ws []int
		for i := 0; ; i++ {
			w, ok := l.wires[hdl.BusPinName(r.Name, i)]
			if !ok {
				break
			}
			ws = append(ws, w)
		}
		if len(ws) == 0 {
			return nil, l.errorf(r.Pos, "unknown wire %s", r.Name)
		}
		return ws, nil
	}
	end := r.End
	if end < 0 {
		end = r.Index
	}
	ws := make([]int, 0, end-r.Index+1)
	for i := r.Index; i <= end; i++ {
		w, err := l.lookup(hdl.BusPinName(r.Name, i), r.Pos)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

func (l *lowerer) stmt(s hdl.Stmt) error {
	switch s := s.(type) {
	case *hdl.Float:
		_, err := l.decls(s.Decls)
		return err
	case *hdl.Let:
		out, err := l.decls(s.Decls)
		if err != nil {
			return err
		}
		return l.lowerTo(s.X, out)
	case *hdl.Set:
		var out []int
		for _, r := range s.Targets {
			if r.Name == "_" && r.Index < 0 {
				out = append(out, l.alloc())
				continue
			}
			ws, err := l.ref(r)
			if err != nil {
				return err
			}
			out = append(out, ws...)
		}
		return l.lowerTo(s.X, out)
	case *hdl.ExprStmt:
		return l.lowerTo(s.X, nil)
	}
	return l.errorf(s.Position(), "unsupported statement %T", s)
}

// lowerTo lowers x so that its outputs drive the wires in out.
//
func (l *lowerer) lowerTo(x hdl.Expr, out []int) error {
	switch x := x.(type) {
	case *hdl.Literal:
		if len(out) != 1 {
			return l.errorf(x.Pos, "constant gives 1 output, %d expected", len(out))
		}
		l.emit(SourceStmt{Const(x.Value), out[0]})
		return nil
	case *hdl.Ref:
		return l.errorf(x.Pos, "cannot connect wire %s to another wire, use a buffer", x.Name)
	case *hdl.Call:
		return l.call(x, out)
	}
	return l.errorf(x.Position(), "unsupported expression %T", x)
}

// value lowers x as an argument and returns the wires holding its outputs.
//
func (l *lowerer) value(x hdl.Expr) ([]int, error) {
	switch x := x.(type) {
	case *hdl.Literal:
		w := l.alloc()
		l.emit(SourceStmt{Const(x.Value), w})
		return []int{w}, nil
	case *hdl.Ref:
		return l.ref(x)
	case *hdl.Call:
		id, ok := l.t.Lookup(x.Name)
		if !ok {
			return nil, l.errorf(x.Pos, "unknown function %s", x.Name)
		}
		out := make([]int, l.t.Func(id).Out)
		for i := range out {
			out[i] = l.alloc()
		}
		return out, l.call(x, out)
	}
	return nil, l.errorf(x.Position(), "unsupported expression %T", x)
}

func (l *lowerer) call(x *hdl.Call, out []int) error {
	id, ok := l.t.Lookup(x.Name)
	if !ok {
		return l.errorf(x.Pos, "unknown function %s", x.Name)
	}
	f := l.t.Func(id)

	var in []int
	for _, a := range x.Args {
		ws, err := l.value(a)
		if err != nil {
			return err
		}
		in = append(in, ws...)
	}
	if len(in) != f.In {
		return l.errorf(x.Pos, "%s takes %d inputs, got %d", f.Name, f.In, len(in))
	}
	if len(out) != f.Out {
		return l.errorf(x.Pos, "%s gives %d outputs, %d expected", f.Name, f.Out, len(out))
	}

	var state []StateExpr
	if x.State != nil {
		if len(x.State) != len(f.State) {
			return l.errorf(x.Pos, "%s takes %d state values, got %d", f.Name, len(f.State), len(x.State))
		}
		state = make([]StateExpr, len(x.State))
		for i, e := range x.State {
			s, err := l.state(e)
			if err != nil {
				return err
			}
			state[i] = s
		}
	}

	if !f.prim {
		l.emit(CallStmt{id, state, append(in, out...)})
		return nil
	}

	var st StateExpr
	switch {
	case len(state) > 0:
		st = state[0]
	case len(f.State) > 0:
		st = Const(f.State[0])
	}
	switch f.kind {
	case Source:
		l.emit(SourceStmt{st, out[0]})
	case Bus:
		l.emit(BusStmt{st, out[0]})
	case busInput:
		l.emit(BusInputStmt{in[0], in[1], in[2]})
	default:
		l.emit(GateStmt{f.kind, st, in, out[0]})
	}
	return nil
}

func (l *lowerer) state(e hdl.StateExpr) (StateExpr, error) {
	switch e := e.(type) {
	case *hdl.StateConst:
		return Const(e.Value), nil
	case *hdl.StateIdent:
		i, ok := l.states[e.Name]
		if !ok {
			return StateExpr{}, errors.WithStack(hdl.Errorf(l.src, e.Pos, "unknown state parameter %s", e.Name))
		}
		return Param(i), nil
	case *hdl.StateNot:
		s, err := l.state(e.X)
		return s.Not(), err
	}
	return StateExpr{}, errors.Errorf("unsupported state expression %T", e)
}
