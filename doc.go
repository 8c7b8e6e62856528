// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package cirsim provides a gate-level digital logic simulator driven by a small
hierarchical hardware description language.

Circuits are described as functions built from simpler functions, down to a
handful of primitives (source, buffer, not, or, and, nor, nand, bus and
bus_input):

	// set/reset latch
	flip_flop[init=0](r, s) -> (q, qn) {
		q = nor[init](r, qn);
		qn = nor[!init](s, q);
	}

Compile turns definitions into a Table. Building a function from a table
recursively inlines every call into a flat Network of primitive components,
one per slot. A Circuit then simulates a network step by step: every component
is recomputed from the values of the previous step, so each component adds
one step of delay and feedback loops such as latches need no special care.

Buses are driven by any number of (high, low) driver pairs. A bus that is
neither pulled high nor pulled low, or that is pulled both ways at once, reads
as a random value.

*/
package cirsim
