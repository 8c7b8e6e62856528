// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cirsim

// Kind is the kind of a primitive component.
//
type Kind uint8

// Primitive component kinds.
//
const (
	Source Kind = iota
	Buffer
	Not
	Or
	And
	Nor
	Nand
	Bus
)

var kindNames = [...]string{
	Source: "source",
	Buffer: "buffer",
	Not:    "not",
	Or:     "or",
	And:    "and",
	Nor:    "nor",
	Nand:   "nand",
	Bus:    "bus",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Operands returns the number of operand slots used by components of kind k.
//
func (k Kind) Operands() int {
	switch k {
	case Buffer, Not:
		return 1
	case Or, And, Nor, Nand:
		return 2
	}
	return 0
}

// Driver is a bus driver. The bus is pulled high when High is set and pulled
// low when Low is set.
//
type Driver struct {
	High int
	Low  int
}

// A Component is a primitive component. Its output is the slot it occupies in a
// Network.
//
type Component struct {
	Kind Kind
	// Operand slots. Only the first Kind.Operands() are used.
	In [2]int
	// Held value of a Source.
	Value bool
	// Bus drivers.
	Drivers []Driver
}

func (c *Component) eval(prev []bool, rnd func() bool) bool {
	switch c.Kind {
	case Source:
		return c.Value
	case Buffer:
		return prev[c.In[0]]
	case Not:
		return !prev[c.In[0]]
	case Or:
		return prev[c.In[0]] || prev[c.In[1]]
	case And:
		return prev[c.In[0]] && prev[c.In[1]]
	case Nor:
		return !(prev[c.In[0]] || prev[c.In[1]])
	case Nand:
		return !(prev[c.In[0]] && prev[c.In[1]])
	case Bus:
		var up, down bool
		for _, d := range c.Drivers {
			up = up || prev[d.High]
			down = down || prev[d.Low]
		}
		switch {
		case up && !down:
			return true
		case down && !up:
			return false
		}
		// floating or contention
		return rnd()
	}
	panic("invalid component kind " + c.Kind.String())
}

// A Network is a flat array of primitive components indexed by slot. It is
// usually the result of elaborating a function, but can be assembled by hand.
//
// Callers must not modify a network while circuits built from it are
// running: NewCircuit copies the component list, slot lists and initial values,
// but bus driver lists are shared.
//
type Network struct {
	Components []Component
	// Initial value of each slot.
	Init []bool
	// External input slots. They always hold a Source.
	Inputs []int
	// External output slots.
	Outputs []int
}

// Size returns the slot count.
//
func (n *Network) Size() int { return len(n.Components) }
