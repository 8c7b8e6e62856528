package cirsim_test

import (
	"reflect"
	"testing"

	"github.com/db47h/cirsim"
)

const ffSrc = `
flip_flop[init=0](r, s) -> (q, qn) {
	q = nor[init](r, qn);
	qn = nor[!init](s, q);
}

ff_hi(r, s) -> (q) {
	(q, _) = flip_flop[1](r, s);
}

pair(r, s) -> (q0, q1) {
	q0 = ff_hi(r, s);
	(q1, _) = flip_flop(r, s);
}
`

func TestBuild_layout(t *testing.T) {
	tbl, err := cirsim.Compile(latchSrc)
	if err != nil {
		t.Fatal(err)
	}
	n, err := cirsim.Build(tbl, "latch", nil)
	if err != nil {
		t.Fatal(err)
	}
	exp := &cirsim.Network{
		Components: []cirsim.Component{
			{Kind: cirsim.Source},
			{Kind: cirsim.Source},
			{Kind: cirsim.Nor, In: [2]int{0, 3}},
			{Kind: cirsim.Nor, In: [2]int{1, 2}},
		},
		Init:    []bool{false, false, true, true},
		Inputs:  []int{0, 1},
		Outputs: []int{2, 3},
	}
	if !reflect.DeepEqual(n, exp) {
		t.Fatalf("expected %+v\ngot %+v", exp, n)
	}
}

func TestBuild_deterministic(t *testing.T) {
	tbl, err := cirsim.Compile(ffSrc)
	if err != nil {
		t.Fatal(err)
	}
	n1 := cirsim.MustBuild(tbl, "pair", nil)
	n2 := cirsim.MustBuild(tbl, "pair", nil)
	if !reflect.DeepEqual(n1, n2) {
		t.Fatal("two builds of the same function differ")
	}
	if n1.Size() != len(n1.Init) {
		t.Fatalf("network size %d, %d initial values", n1.Size(), len(n1.Init))
	}
	// inputs, outputs and the two unused qn outputs.
	if n1.Size() != 2+2+2 {
		t.Fatalf("expected 6 slots, got %d", n1.Size())
	}
}

func TestBuild_state(t *testing.T) {
	tbl, err := cirsim.Compile(ffSrc)
	if err != nil {
		t.Fatal(err)
	}
	td := []struct {
		name  string
		state []bool
		init  string
	}{
		{"flip_flop", nil, "01"},
		{"flip_flop", []bool{true}, "10"},
		{"flip_flop", []bool{false}, "01"},
		{"ff_hi", nil, "1"},
		{"pair", nil, "10"},
	}
	for _, d := range td {
		n, err := cirsim.Build(tbl, d.name, d.state)
		if err != nil {
			t.Fatal(err)
		}
		c := cirsim.NewCircuit(n)
		if got := cirsim.FormatBits(c.Outputs()); got != d.init {
			t.Errorf("%s%v: expected initial outputs %s, got %s", d.name, d.state, d.init, got)
		}
	}
}

func define(t *testing.T, tbl *cirsim.Table, f *cirsim.Func) {
	t.Helper()
	if _, err := tbl.Define(f); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_errors(t *testing.T) {
	tbl, err := cirsim.Compile(latchSrc)
	if err != nil {
		t.Fatal(err)
	}
	define(t, tbl, &cirsim.Func{Name: "unfilled", In: 1, Out: 1})
	define(t, tbl, &cirsim.Func{Name: "twice", Out: 1, Stmts: []cirsim.Stmt{
		cirsim.SourceStmt{State: cirsim.Const(true), Out: 0},
		cirsim.SourceStmt{State: cirsim.Const(false), Out: 0},
	}})
	define(t, tbl, &cirsim.Func{Name: "notbus", In: 1, Stmts: []cirsim.Stmt{
		cirsim.BusInputStmt{Bus: 0, High: 0, Low: 0},
	}})
	define(t, tbl, &cirsim.Func{Name: "emptybus", In: 1, Locals: 1, Stmts: []cirsim.Stmt{
		cirsim.BusInputStmt{Bus: 1, High: 0, Low: 0},
		cirsim.BusStmt{State: cirsim.Const(false), Out: 1},
	}})
	define(t, tbl, &cirsim.Func{Name: "arity", In: 1, Out: 1, Stmts: []cirsim.Stmt{
		cirsim.CallStmt{Func: cirsim.FuncNot, Wires: []int{0, 1, 1}},
	}})
	define(t, tbl, &cirsim.Func{Name: "gate", In: 1, Out: 1, Stmts: []cirsim.Stmt{
		cirsim.GateStmt{Kind: cirsim.And, State: cirsim.Const(false), In: []int{0}, Out: 1},
	}})
	define(t, tbl, &cirsim.Func{Name: "callstate", In: 2, Out: 2, Stmts: []cirsim.Stmt{
		cirsim.CallStmt{Func: mustLookup(t, tbl, "latch"), State: []cirsim.StateExpr{cirsim.Const(true)}, Wires: []int{0, 1, 2, 3}},
	}})
	rec := cirsim.FuncID(tbl.Len())
	define(t, tbl, &cirsim.Func{Name: "rec", In: 1, Out: 1, Stmts: []cirsim.Stmt{
		cirsim.CallStmt{Func: rec, Wires: []int{0, 1}},
	}})
	define(t, tbl, &cirsim.Func{Name: "param", Out: 1, Stmts: []cirsim.Stmt{
		cirsim.SourceStmt{State: cirsim.Param(3), Out: 0},
	}})
	define(t, tbl, &cirsim.Func{Name: "range", In: 1, Out: 1, Stmts: []cirsim.Stmt{
		cirsim.SourceStmt{State: cirsim.Const(true), Out: 5},
	}})

	td := []struct {
		name  string
		state []bool
		err   string
	}{
		{"unfilled", nil, "build unfilled: slot 1: reserved but never filled"},
		{"twice", nil, "build twice: twice: slot 0 driven by more than one component"},
		{"notbus", nil, "build notbus: notbus: slot 0 is not a bus"},
		{"emptybus", nil, "build emptybus: emptybus: slot 1 is not a bus"},
		{"arity", nil, "build arity: not: takes 1 inputs and 1 outputs, got 3 wires"},
		{"gate", nil, "build gate: gate: and takes 2 inputs, got 1"},
		{"callstate", nil, "build callstate: latch: takes 0 state values, got 1"},
		{"rec", nil, "build rec: rec: recursive instantiation"},
		{"param", nil, "build param: param: state parameter 3 out of range (0 parameters)"},
		{"range", nil, "build range: range: wire 5 out of range (2 wires)"},
		{"latch", []bool{true}, "latch: takes 0 state values, got 1"},
		{"nor", nil, "nor: cannot build a primitive"},
		{"nope", nil, "unknown function nope"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			n, err := cirsim.Build(tbl, d.name, d.state)
			if err == nil {
				t.Fatal("no error")
			}
			if n != nil {
				t.Fatal("got a network along with an error")
			}
			if err.Error() != d.err {
				trace(t, err)
				t.Fatalf("expected error %q, got %q", d.err, err.Error())
			}
		})
	}
}

func TestBuild_recursiveDepth(t *testing.T) {
	// the same function can appear several times in a call path, as long as
	// it does not call itself.
	tbl, err := cirsim.Compile(`
		inv(a) -> (out) { out = not(a); }
		inv2(a) -> (out) { out = inv(inv(a)); }
		inv4(a) -> (out) { out = inv2(inv2(a)); }
	`)
	if err != nil {
		t.Fatal(err)
	}
	n := cirsim.MustBuild(tbl, "inv4", nil)
	if n.Size() != 1+4 {
		t.Fatalf("expected 5 slots, got %d", n.Size())
	}
	c := cirsim.NewCircuit(n)
	if err = c.SetInputs([]bool{true}); err != nil {
		t.Fatal(err)
	}
	c.Run(4)
	if !c.Outputs()[0] {
		t.Fatal("expected true output")
	}
}

func mustLookup(t *testing.T, tbl *cirsim.Table, name string) cirsim.FuncID {
	t.Helper()
	id, ok := tbl.Lookup(name)
	if !ok {
		t.Fatalf("%s not defined", name)
	}
	return id
}
