// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

import (
	"fmt"

	"github.com/db47h/cirsim/internal/slot"
	"github.com/pkg/errors"
)

// ElabError reports a malformed function table. It is raised while building a
// network and aborts the build.
//
type ElabError struct {
	Func string
	Msg  string
}

func (e *ElabError) Error() string {
	return e.Func + ": " + e.Msg
}

func fatalf(f *Func, format string, args ...interface{}) {
	panic(&ElabError{f.Name, fmt.Sprintf(format, args...)})
}

// part is the content of a network slot.
type part struct {
	c    Component
	init bool
}

type builder struct {
	t      *Table
	slots  slot.Vec[part]
	active map[FuncID]bool
}

// Build elaborates the named function into a Network. See Table.Build.
//
func Build(t *Table, name string, state []bool) (*Network, error) {
	id, ok := t.Lookup(name)
	if !ok {
		return nil, errors.Errorf("unknown function %s", name)
	}
	return t.Build(id, state)
}

// MustBuild is like Build but panics on error.
//
func MustBuild(t *Table, name string, state []bool) *Network {
	n, err := Build(t, name, state)
	if err != nil {
		panic(err)
	}
	return n
}

// Build elaborates function id into a Network by recursively inlining all the
// functions it calls.
//
// The network's external inputs are sources initialized to false, followed by
// the function's outputs. If state is nil, the function's default state is
// used.
//
func (t *Table) Build(id FuncID, state []bool) (n *Network, err error) {
	f := t.Func(id)
	if f == nil {
		return nil, errors.Errorf("invalid function id %d", id)
	}
	if f.prim {
		return nil, errors.Errorf("%s: cannot build a primitive", f.Name)
	}
	if state == nil {
		state = f.State
	} else if len(state) != len(f.State) {
		return nil, errors.Errorf("%s: takes %d state values, got %d", f.Name, len(f.State), len(state))
	}

	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *ElabError:
				err = errors.Wrap(e, "build "+f.Name)
			case *slot.Error:
				err = errors.Wrap(e, "build "+f.Name)
			default:
				panic(r)
			}
			n = nil
		}
	}()

	b := &builder{t: t, active: make(map[FuncID]bool)}
	wires := make([]int, 0, f.In+f.Out)
	n = new(Network)
	for i := 0; i < f.In; i++ {
		w := b.slots.Push(part{c: Component{Kind: Source}})
		wires = append(wires, w)
		n.Inputs = append(n.Inputs, w)
	}
	for i := 0; i < f.Out; i++ {
		w := b.slots.Reserve()
		wires = append(wires, w)
		n.Outputs = append(n.Outputs, w)
	}

	b.call(id, state, wires)

	parts := b.slots.Finalize()
	n.Components = make([]Component, len(parts))
	n.Init = make([]bool, len(parts))
	for i := range parts {
		n.Components[i] = parts[i].c
		n.Init[i] = parts[i].init
	}
	return n, nil
}

// call instantiates function id. wires holds the slots for the callee's
// inputs then outputs.
//
func (b *builder) call(id FuncID, state []bool, wires []int) {
	f := b.t.Func(id)
	if len(state) != len(f.State) {
		fatalf(f, "takes %d state values, got %d", len(f.State), len(state))
	}
	if len(wires) != f.In+f.Out {
		fatalf(f, "takes %d inputs and %d outputs, got %d wires", f.In, f.Out, len(wires))
	}

	if f.prim {
		in, out := wires[:f.In], wires[f.In:]
		switch f.kind {
		case busInput:
			b.busInput(f, in[0], in[1], in[2])
		case Source:
			b.place(f, out[0], Component{Kind: Source, Value: state[0]}, state[0])
		case Bus:
			b.place(f, out[0], Component{Kind: Bus}, state[0])
		default:
			c := Component{Kind: f.kind}
			copy(c.In[:], in)
			b.place(f, out[0], c, state[0])
		}
		return
	}

	if b.active[id] {
		fatalf(f, "recursive instantiation")
	}
	b.active[id] = true
	defer delete(b.active, id)

	space := make([]int, len(wires), f.Wires())
	copy(space, wires)
	for i := 0; i < f.Locals; i++ {
		space = append(space, b.slots.Reserve())
	}
	for _, s := range f.Stmts {
		b.stmt(f, state, space, s)
	}
}

func (b *builder) stmt(f *Func, state []bool, space []int, s Stmt) {
	switch s := s.(type) {
	case CallStmt:
		callee := b.t.Func(s.Func)
		if callee == nil {
			fatalf(f, "call to unknown function id %d", s.Func)
		}
		var st []bool
		if s.State == nil {
			st = callee.State
		} else {
			st = make([]bool, len(s.State))
			for i, e := range s.State {
				st[i] = b.eval(f, state, e)
			}
		}
		wires := make([]int, len(s.Wires))
		for i, w := range s.Wires {
			wires[i] = b.wire(f, space, w)
		}
		b.call(s.Func, st, wires)
	case SourceStmt:
		v := b.eval(f, state, s.State)
		b.place(f, b.wire(f, space, s.Out), Component{Kind: Source, Value: v}, v)
	case GateStmt:
		n := s.Kind.Operands()
		if n == 0 {
			fatalf(f, "%s is not a gate", s.Kind)
		}
		if len(s.In) != n {
			fatalf(f, "%s takes %d inputs, got %d", s.Kind, n, len(s.In))
		}
		c := Component{Kind: s.Kind}
		for i, w := range s.In {
			c.In[i] = b.wire(f, space, w)
		}
		b.place(f, b.wire(f, space, s.Out), c, b.eval(f, state, s.State))
	case BusStmt:
		b.place(f, b.wire(f, space, s.Out), Component{Kind: Bus}, b.eval(f, state, s.State))
	case BusInputStmt:
		b.busInput(f, b.wire(f, space, s.Bus), b.wire(f, space, s.High), b.wire(f, space, s.Low))
	default:
		fatalf(f, "unsupported statement type %T", s)
	}
}

func (b *builder) eval(f *Func, state []bool, e StateExpr) bool {
	var v bool
	if e.Param < 0 {
		v = e.Value
	} else if e.Param < len(state) {
		v = state[e.Param]
	} else {
		fatalf(f, "state parameter %d out of range (%d parameters)", e.Param, len(state))
	}
	return v != e.Negate
}

func (b *builder) wire(f *Func, space []int, pos int) int {
	if pos < 0 || pos >= len(space) {
		fatalf(f, "wire %d out of range (%d wires)", pos, len(space))
	}
	return space[pos]
}

func (b *builder) place(f *Func, n int, c Component, init bool) {
	if b.slots.Filled(n) {
		fatalf(f, "slot %d driven by more than one component", n)
	}
	b.slots.Fill(n, part{c, init})
}

func (b *builder) busInput(f *Func, n, high, low int) {
	if !b.slots.Filled(n) {
		fatalf(f, "slot %d is not a bus", n)
	}
	p := b.slots.At(n)
	if p.c.Kind != Bus {
		fatalf(f, "slot %d is not a bus", n)
	}
	p.c.Drivers = append(p.c.Drivers, Driver{high, low})
}
