// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// Errors returned by Circuit methods. Use errors.Cause to test for them.
//
var (
	ErrInputCount = errors.New("input count mismatch")
	ErrNotSource  = errors.New("input is not a source")
	ErrStateSize  = errors.New("state size mismatch")
)

// An Option configures a Circuit.
//
type Option func(c *Circuit)

// WithRand sets the random number generator used to resolve floating or
// contended buses.
//
func WithRand(r *rand.Rand) Option {
	return func(c *Circuit) { c.rnd = r }
}

// WithSource is like WithRand but wraps src into a *rand.Rand.
//
func WithSource(src rand.Source) Option {
	return WithRand(rand.New(src))
}

// Circuit is a runnable circuit simulation.
//
// Every step of the simulation, all components are updated from the values
// they had during the previous step: each component adds exactly one step of
// delay, and feedback loops never need to be ordered.
//
type Circuit struct {
	s0    []bool // wire states, current frame
	s1    []bool // wire states, previous frame
	cs    []Component
	ins   []int
	outs  []int
	rnd   *rand.Rand
	steps uint
}

// NewCircuit returns a new circuit simulating network n. The network is not
// modified.
//
func NewCircuit(n *Network, opts ...Option) *Circuit {
	c := &Circuit{
		s0:   make([]bool, len(n.Components)),
		s1:   make([]bool, len(n.Components)),
		cs:   make([]Component, len(n.Components)),
		ins:  append([]int(nil), n.Inputs...),
		outs: append([]int(nil), n.Outputs...),
	}
	// sources are mutable, everything else is shared.
	copy(c.cs, n.Components)
	copy(c.s0, n.Init)
	copy(c.s1, n.Init)
	for _, o := range opts {
		o(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

func (c *Circuit) randBool() bool {
	return c.rnd.Int63()&(1<<62) != 0
}

// Tick advances the simulation by one step.
//
func (c *Circuit) Tick() {
	c.s0, c.s1 = c.s1, c.s0
	prev := c.s1
	for i := range c.cs {
		c.s0[i] = c.cs[i].eval(prev, c.randBool)
	}
	c.steps++
}

// Run runs the simulation for n steps.
//
func (c *Circuit) Run(n int) {
	for ; n > 0; n-- {
		c.Tick()
	}
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint {
	return c.steps
}

// Size returns the slot count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Get returns the current state of slot n.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// SetInputs sets the values of the external inputs. The new values are visible
// on the input wires right away and reach the components they feed on the next
// step.
//
// Either all inputs are set or, on error, none is.
//
func (c *Circuit) SetInputs(vals []bool) error {
	if len(vals) != len(c.ins) {
		return errors.Wrapf(ErrInputCount, "expected %d inputs, got %d", len(c.ins), len(vals))
	}
	for _, n := range c.ins {
		if c.cs[n].Kind != Source {
			return errors.Wrapf(ErrNotSource, "slot %d holds a %s", n, c.cs[n].Kind)
		}
	}
	for i, n := range c.ins {
		c.cs[n].Value = vals[i]
		c.s0[n] = vals[i]
	}
	return nil
}

// Outputs returns the current values of the external outputs.
//
func (c *Circuit) Outputs() []bool {
	r := make([]bool, len(c.outs))
	for i, n := range c.outs {
		r[i] = c.s0[n]
	}
	return r
}

// Inputs returns the number of external inputs.
//
func (c *Circuit) Inputs() int { return len(c.ins) }
