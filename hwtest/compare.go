// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/cirsim"
)

func newCircuit(t *testing.T, tbl *cirsim.Table, name string, seed int64) *cirsim.Circuit {
	t.Helper()
	n, err := cirsim.Build(tbl, name, nil)
	if err != nil {
		t.Fatal(err)
	}
	return cirsim.NewCircuit(n, cirsim.WithSource(rand.NewSource(seed)))
}

// CompareFuncs builds functions f1 and f2 from table tbl and compares their
// outputs given the same inputs. Both functions must have the same number of
// inputs and outputs.
//
// Each input set is held for ticks simulation steps before outputs are
// compared, so ticks should be at least the depth of the deepest function.
//
func CompareFuncs(t *testing.T, tbl *cirsim.Table, f1, f2 string, ticks int) {
	t.Helper()

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))
	c1 := newCircuit(t, tbl, f1, seed)
	c2 := newCircuit(t, tbl, f2, seed)

	if c1.Inputs() != c2.Inputs() {
		t.Fatalf("%s has %d inputs, %s has %d", f1, c1.Inputs(), f2, c2.Inputs())
	}
	if o1, o2 := len(c1.Outputs()), len(c2.Outputs()); o1 != o2 {
		t.Fatalf("%s has %d outputs, %s has %d", f1, o1, f2, o2)
	}

	inputs := make([]bool, c1.Inputs())
	check := func() {
		t.Helper()
		for _, c := range [...]*cirsim.Circuit{c1, c2} {
			if err := c.SetInputs(inputs); err != nil {
				t.Fatal(err)
			}
			c.Run(ticks)
		}
		out1, out2 := c1.Outputs(), c2.Outputs()
		for i := range out1 {
			if out1[i] != out2[i] {
				t.Fatal(errString(f1, f2, inputs, i, out1[i], out2[i]))
			}
		}
	}

	start := time.Now()

	// try all 0, then all 1
	check()
	for i := range inputs {
		inputs[i] = true
	}
	check()

	// random testing
	iter := len(inputs)
	if iter > 12 {
		iter = 12
	}
	iter = 1 << uint(iter)
	for i := 0; i < iter; i++ {
		for in := range inputs {
			inputs[in] = rnd.Int63()&(1<<62) != 0
		}
		check()
	}

	elapsed := time.Since(start)
	steps := c1.Steps() + c2.Steps()
	t.Logf("%d + %d components. %d steps in %v => %.2f steps/s (seed %d)", c1.Size(), c2.Size(), steps, elapsed,
		float64(steps)/(float64(elapsed)/float64(time.Second)), seed)
}

func errString(f1, f2 string, inputs []bool, o int, v1, v2 bool) string {
	var b strings.Builder
	for i, v := range inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "in[%d]=%v", i, v)
	}
	return fmt.Sprintf("\nInputs %s\n%s => out[%d]=%v\n%s => out[%d]=%v", b.String(), f1, o, v1, f2, o, v2)
}
