package cirsim_test

import (
	"math/rand"
	"testing"

	"github.com/db47h/cirsim"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

// constSource is a rand.Source that always returns the same value.
type constSource int64

func (s constSource) Int63() int64 { return int64(s) }
func (constSource) Seed(int64)     {}

const (
	randHigh constSource = 1 << 62
	randLow  constSource = 0
)

func build(t *testing.T, src, name string, opts ...cirsim.Option) *cirsim.Circuit {
	t.Helper()
	tbl, err := cirsim.Compile(src)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	n, err := cirsim.Build(tbl, name, nil)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	if len(opts) == 0 {
		opts = []cirsim.Option{cirsim.WithSource(rand.NewSource(1))}
	}
	return cirsim.NewCircuit(n, opts...)
}

func setInputs(t *testing.T, c *cirsim.Circuit, bits string) {
	t.Helper()
	v, err := cirsim.ParseBits(bits)
	if err != nil {
		t.Fatal(err)
	}
	if err = c.SetInputs(v); err != nil {
		trace(t, err)
		t.Fatal(err)
	}
}

func expect(t *testing.T, c *cirsim.Circuit, bits string) {
	t.Helper()
	if got := cirsim.FormatBits(c.Outputs()); got != bits {
		t.Fatalf("step %d: expected outputs %s, got %s", c.Steps(), bits, got)
	}
}

const latchSrc = `
latch(r, s) -> (q, qn) {
	q = nor(r, qn);
	qn = nor(s, q);
}
`

func TestLatch(t *testing.T) {
	c := build(t, latchSrc, "latch")
	// nor gates start high
	expect(t, c, "11")

	setInputs(t, c, "10")
	c.Tick()
	c.Tick()
	expect(t, c, "01")
	c.Run(10)
	expect(t, c, "01")

	setInputs(t, c, "01")
	c.Run(2)
	expect(t, c, "10")

	setInputs(t, c, "00")
	c.Run(10)
	expect(t, c, "10")

	if c.Steps() != 24 {
		t.Fatalf("expected 24 steps, got %d", c.Steps())
	}
}

const busSrc = `
drive(h, l) -> (out) {
	out = bus();
	bus_input(out, h, l);
}
`

func TestBus(t *testing.T) {
	for _, src := range []constSource{randHigh, randLow} {
		c := build(t, busSrc, "drive", cirsim.WithSource(src))
		// driven lines ignore the random source
		for i := 0; i < 4; i++ {
			setInputs(t, c, "10")
			c.Tick()
			expect(t, c, "1")
			setInputs(t, c, "01")
			c.Tick()
			expect(t, c, "0")
		}
		exp := "0"
		if src == randHigh {
			exp = "1"
		}
		// floating
		setInputs(t, c, "00")
		c.Tick()
		expect(t, c, exp)
		// contention
		setInputs(t, c, "11")
		c.Tick()
		expect(t, c, exp)
	}
}

func TestBus_random(t *testing.T) {
	c := build(t, busSrc, "drive", cirsim.WithRand(rand.New(rand.NewSource(7))))
	for _, in := range []string{"00", "11"} {
		setInputs(t, c, in)
		var hi, lo int
		for i := 0; i < 1000; i++ {
			c.Tick()
			if c.Outputs()[0] {
				hi++
			} else {
				lo++
			}
		}
		if hi < 400 || lo < 400 {
			t.Fatalf("inputs %s: got %d high and %d low values", in, hi, lo)
		}
	}
}

func TestCircuit_SetInputs(t *testing.T) {
	c := build(t, latchSrc, "latch")
	setInputs(t, c, "01")
	c.Run(2)
	expect(t, c, "10")

	err := c.SetInputs([]bool{true, false, true})
	if errors.Cause(err) != cirsim.ErrInputCount {
		t.Fatalf("expected ErrInputCount, got %v", err)
	}
	expect(t, c, "10")
	c.Run(4)
	// previous inputs still hold
	expect(t, c, "10")

	// sources can be read back right away
	setInputs(t, c, "10")
	if c.Inputs() != 2 || !c.Get(0) || c.Get(1) {
		t.Fatalf("bad input state after SetInputs")
	}
}

func TestCircuit_SetInputs_notSource(t *testing.T) {
	// hand assembled network whose first input is a not gate.
	n := &cirsim.Network{
		Components: []cirsim.Component{
			{Kind: cirsim.Not, In: [2]int{1, 0}},
			{Kind: cirsim.Source},
		},
		Init:    []bool{true, false},
		Inputs:  []int{0, 1},
		Outputs: []int{0},
	}
	c := cirsim.NewCircuit(n)
	err := c.SetInputs([]bool{true, true})
	if errors.Cause(err) != cirsim.ErrNotSource {
		t.Fatalf("expected ErrNotSource, got %v", err)
	}
	if err.Error() != "slot 0 holds a not: input is not a source" {
		t.Fatalf("unexpected error %q", err.Error())
	}
	if c.Get(1) {
		t.Fatal("input set after failed SetInputs")
	}
}

func TestNewCircuit_copy(t *testing.T) {
	tbl, err := cirsim.Compile(latchSrc)
	if err != nil {
		t.Fatal(err)
	}
	n := cirsim.MustBuild(tbl, "latch", nil)
	c := cirsim.NewCircuit(n)
	n.Inputs[0], n.Outputs[0] = n.Outputs[0], n.Inputs[0]
	n.Init[2] = false
	if err = c.SetInputs([]bool{false, true}); err != nil {
		t.Fatal(err)
	}
	expect(t, c, "11")
	c.Run(2)
	expect(t, c, "10")
}

func TestNewCircuit_shared(t *testing.T) {
	tbl, err := cirsim.Compile(latchSrc)
	if err != nil {
		t.Fatal(err)
	}
	n := cirsim.MustBuild(tbl, "latch", nil)
	c1 := cirsim.NewCircuit(n)
	c2 := cirsim.NewCircuit(n)
	if err = c1.SetInputs([]bool{false, true}); err != nil {
		t.Fatal(err)
	}
	c1.Run(2)
	c2.Run(2)
	expect(t, c1, "10")
	// undriven latch oscillates
	expect(t, c2, "11")
	for i, c := range n.Components {
		if c.Kind == cirsim.Source && c.Value {
			t.Fatalf("network source %d modified by circuit", i)
		}
	}
}
