// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for cirsim.
//
// The parts are written in the cirsim description language; see Source for
// the full listing. Provided parts:
//
//	xor(a, b) -> (out)
//	xnor(a, b) -> (out)
//	mux(a, b, sel) -> (out)
//	dmux(in, sel) -> (a, b)
//	flip_flop[init](r, s) -> (q, qn)
//	d_latch[init](d, en) -> (q, qn)
//	bit_register[init](in, load) -> (out)
//	half_adder(a, b) -> (s, c)
//	full_adder(a, b, cin) -> (s, cout)
//	adder8(a[8], b[8], cin) -> (s[8], cout)
//	tri_state(i, e, line) -> ()
//	shared_line(a, ea, b, eb) -> (out)
//
package hwlib

import (
	_ "embed"

	"github.com/db47h/cirsim"
	"github.com/pkg/errors"
)

// Source is the source code of the library.
//
//go:embed std.cir
var Source string

// Table returns a new table holding the library parts.
//
func Table() (*cirsim.Table, error) {
	t, err := cirsim.Compile(Source)
	return t, errors.Wrap(err, "hwlib")
}

// Compile returns a new table holding the library parts followed by the
// definitions in src. Definitions in src can use any library part.
//
func Compile(src string) (*cirsim.Table, error) {
	t, err := Table()
	if err != nil {
		return nil, err
	}
	if err = t.Compile(src); err != nil {
		return nil, err
	}
	return t, nil
}
