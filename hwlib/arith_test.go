package hwlib_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/cirsim"
)

// adder8 has a 16 gates carry chain.
const adderTicks = 40

func TestAdder8(t *testing.T) {
	c := newCircuit(t, stdlib(t), "adder8", nil)
	in := make([]bool, 17)

	add := func(a, b uint8, cin bool) (sum uint8, cout bool) {
		cirsim.SetInt64(in[:8], int64(a))
		cirsim.SetInt64(in[8:16], int64(b))
		in[16] = cin
		if err := c.SetInputs(in); err != nil {
			t.Fatal(err)
		}
		c.Run(adderTicks)
		out := c.Outputs()
		return uint8(cirsim.Int64(out[:8])), out[8]
	}

	if s, cout := add(3, 1, false); s != 4 || cout {
		t.Fatalf("3 + 1 = %d, carry %v", s, cout)
	}
	if s, cout := add(255, 0, true); s != 0 || !cout {
		t.Fatalf("255 + 0 + 1 = %d, carry %v", s, cout)
	}

	f := func(a, b uint8, cin bool) bool {
		exp := int(a) + int(b)
		if cin {
			exp++
		}
		s, cout := add(a, b, cin)
		return int(s) == exp&0xff && cout == (exp > 0xff)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}
