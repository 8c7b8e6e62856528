// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a small state function based lexer.
//
// A lexer is driven by StateFn's: each state function consumes input runes,
// emits zero or more items and returns the next state. A nil return value
// resets the lexer to its initial state.
//
package lex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EOF is returned by Next at the end of input. It is also the item type
// emitted at the end of input.
//
const EOF = -1

// Type is the type of a lexed item.
//
type Type int

// Pos is a byte offset in the input.
//
type Pos int

// Item is a lexed item.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	if i.Type == EOF {
		return "end of input"
	}
	return "'" + fmt.Sprint(i.Value) + "'"
}

// StateFn is a state function.
//
type StateFn func(l *Lexer) StateFn

// Interface is implemented by lexers.
//
type Interface interface {
	// Lex returns the next item in the input stream.
	Lex() Item
}

// Lexer is a state function driven lexer.
//
type Lexer struct {
	input string
	init  StateFn
	state StateFn
	items []Item
	start int  // start of the current item
	pos   int  // current position
	w     int  // width of the last rune read
	cur   rune // last rune read
}

// New returns a new lexer for input. init is the initial state.
//
func New(input string, init StateFn) *Lexer {
	return &Lexer{input: input, init: init}
}

// Lex implements Interface.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.start = l.pos
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input or EOF.
//
func (l *Lexer) Next() rune {
	if l.pos >= len(l.input) {
		l.w = 0
		l.cur = EOF
		return EOF
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	l.w = w
	l.cur = r
	return r
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup steps back one rune. It can be called only once per call of Next.
//
func (l *Lexer) Backup() {
	l.pos -= l.w
	l.w = 0
}

// Peek returns the next rune without consuming it.
//
func (l *Lexer) Peek() rune {
	r := l.Next()
	l.Backup()
	return r
}

// AcceptWhile consumes runes while f returns true.
//
func (l *Lexer) AcceptWhile(f func(rune) bool) {
	for r := l.Next(); r != EOF && f(r); r = l.Next() {
	}
	l.Backup()
}

// Emit emits an item of type t starting at the start of the current item.
//
func (l *Lexer) Emit(t Type, value interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: Pos(l.start), Value: value})
	l.start = l.pos
}

// Ignore skips the input consumed so far for the current item.
//
func (l *Lexer) Ignore() {
	l.start = l.pos
}

// Position returns the 1-based line and column of pos in input.
//
func Position(input string, pos Pos) (line, col int) {
	p := int(pos)
	if p > len(input) {
		p = len(input)
	}
	before := input[:p]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	return line, utf8.RuneCountInString(before) + 1
}
