// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/db47h/cirsim/internal/lex"
)

// Tokens
const (
	EOF lex.Type = lex.EOF
	Raw lex.Type = iota
	Ident
	BracketOpen
	BracketClose
	ParenOpen
	ParenClose
	BraceOpen
	BraceClose
	Comma
	Semicolon
	Int
	Range
	Equal
	Arrow
	Bang
)

// Lexer returns a new lexer for circuit definitions.
//
func Lexer(input string) lex.Interface {
	return lex.New(input, lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '[':
		l.Emit(BracketOpen, "[")
	case r == ']':
		l.Emit(BracketClose, "]")
	case r == '(':
		l.Emit(ParenOpen, "(")
	case r == ')':
		l.Emit(ParenClose, ")")
	case r == '{':
		l.Emit(BraceOpen, "{")
	case r == '}':
		l.Emit(BraceClose, "}")
	case r == ',':
		l.Emit(Comma, ",")
	case r == ';':
		l.Emit(Semicolon, ";")
	case r == '=':
		l.Emit(Equal, "=")
	case r == '!':
		l.Emit(Bang, "!")
	case r == '/':
		if l.Peek() == '/' {
			l.AcceptWhile(func(r rune) bool { return r != '\n' })
			break
		}
		l.Emit(Raw, string(r))
	case r == '-':
		if l.Peek() == '>' {
			l.Next()
			l.Emit(Arrow, "->")
			break
		}
		l.Emit(Raw, string(r))
	case r == '.':
		if l.Peek() == '.' {
			l.Next()
			l.Emit(Range, "..")
			break
		}
		fallthrough
	default:
		l.Emit(Raw, string(r))
	}
	return nil
}

// maxInt bounds numbers in the input, and with them bus sizes and index
// ranges.
const maxInt = 1<<16 - 1

// lexNumber emits an Int item. Its value is an int, or the number text if it
// is larger than maxInt.
//
func lexNumber(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	for r := l.Next(); '0' <= r && r <= '9'; r = l.Next() {
		buf.WriteRune(r)
	}
	l.Backup()
	s := buf.String()
	if i, err := strconv.Atoi(s); err == nil && i <= maxInt {
		l.Emit(Int, i)
	} else {
		l.Emit(Int, s)
	}
	return nil
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteRune(l.Current())
	r := l.Next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Ident, buf.String())
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}
