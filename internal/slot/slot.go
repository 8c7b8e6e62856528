// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package slot implements a two-phase append-only arena.
//
// Slots are reserved before their content is known and filled exactly once
// later on. This lets a caller hand out the identity of a wire to nested
// builders that will only produce its driving component afterwards.
//
package slot

import "strconv"

// Error is the value passed to panic when a Vec is misused. Misuse is always a
// programming error in the caller.
//
type Error struct {
	Slot int
	Msg  string
}

func (e *Error) Error() string {
	return "slot " + strconv.Itoa(e.Slot) + ": " + e.Msg
}

// Vec is a slot vector. The zero value is an empty Vec ready to use.
//
type Vec[T any] struct {
	vals   []T
	filled []bool
}

// Reserve returns a new empty slot.
//
func (v *Vec[T]) Reserve() int {
	var zero T
	n := len(v.vals)
	v.vals = append(v.vals, zero)
	v.filled = append(v.filled, false)
	return n
}

// Push appends a filled slot and returns its index.
//
func (v *Vec[T]) Push(val T) int {
	n := len(v.vals)
	v.vals = append(v.vals, val)
	v.filled = append(v.filled, true)
	return n
}

// Fill binds val to slot n. It panics if n was never reserved or if it is
// already filled.
//
func (v *Vec[T]) Fill(n int, val T) {
	v.check(n)
	if v.filled[n] {
		panic(&Error{n, "already filled"})
	}
	v.vals[n] = val
	v.filled[n] = true
}

// At returns a pointer to the content of slot n. The pointer is valid until the
// next call to Reserve or Push. It panics if the slot is empty.
//
func (v *Vec[T]) At(n int) *T {
	v.check(n)
	if !v.filled[n] {
		panic(&Error{n, "not filled"})
	}
	return &v.vals[n]
}

// Filled reports whether slot n holds a value.
//
func (v *Vec[T]) Filled(n int) bool {
	return n >= 0 && n < len(v.vals) && v.filled[n]
}

// Len returns the number of slots, filled or not.
//
func (v *Vec[T]) Len() int { return len(v.vals) }

// Finalize returns the dense backing array. It panics if any slot is still
// empty. v must not be used afterwards.
//
func (v *Vec[T]) Finalize() []T {
	for i, ok := range v.filled {
		if !ok {
			panic(&Error{i, "reserved but never filled"})
		}
	}
	vals := v.vals
	v.vals, v.filled = nil, nil
	return vals
}

func (v *Vec[T]) check(n int) {
	if n < 0 || n >= len(v.vals) {
		panic(&Error{n, "out of range (len " + strconv.Itoa(len(v.vals)) + ")"})
	}
}
