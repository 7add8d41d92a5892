// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aalyth/chalcedony/lang/token"
)

// TokenAndValue combines the token type with the token value type in the same
// struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles is a helper function that tokenizes the source files and returns
// the list of tokens, grouped by the file at the same index, along with any
// error encountered. The error, if non-nil, is an ErrorList.
func ScanFiles(ctx context.Context, files ...string) ([][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, "%s", err)
			continue
		}

		f := token.NewFile(file)
		s.Init(f, b, func(pos token.Position, msg string) { el.Add(pos, "%s", msg) })
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{Token: tok, Value: tokVal})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return tokensByFile, el.Err()
}

// Scanner tokenizes Chalcedony source into a token stream. The surface
// syntax is indentation-structured rather than brace-delimited, so the
// scanner itself synthesizes NEWLINE/INDENT/DEDENT pseudo-tokens from the
// source's layout; the parser never looks at raw whitespace.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	sb               strings.Builder // writes to Builder never fail, so errors are ignored
	pendingSurrogate rune            // in a short string literal, the first half of a pending surrogate pair
	invalidByte      byte            // when cur==RuneError due to failed utf8 decode, this is the invalid byte
	cur              rune            // current character
	off              int             // byte offset of cur
	roff             int             // byte offset right after cur
	line, col        int             // 1-based position of cur

	// indentation bookkeeping
	indents         []int // stack of open indentation widths, always starting with 0
	bracketDepth    int   // unmatched '(' / '[' currently open; newlines are insignificant inside
	needIndentCheck bool  // true right after Init or a NEWLINE: the next Scan call must resolve INDENT/DEDENT first
	pendingDedents  int   // further DEDENT tokens still owed before resuming normal scanning
}

var (
	// byte order mark, only permitted as very first characters
	bom = [2]byte{0xFE, 0xFF}
	// hashbang line, only permitted as very first line (or immediately after bom)
	hashBang = [2]byte{'#', '!'}
)

// Init initializes the scanner to tokenize a new file.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	s.file = file
	s.src = src
	s.err = errHandler

	s.sb.Reset()
	s.pendingSurrogate = 0
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0
	s.line = 1
	s.col = 0

	s.indents = []int{0}
	s.bracketDepth = 0
	s.needIndentCheck = true
	s.pendingDedents = 0

	// skip initial BOM if present
	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	// skip initial hashbang line if present
	if len(src)-s.roff >= len(hashBang) && bytes.Equal(src[s.roff:s.roff+len(hashBang)], hashBang[:]) {
		for s.cur != '\n' && s.cur != -1 {
			s.advance()
		}
	}
	s.advance()
}

// peek returns the byte following the most recently read character without
// advancing the scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// advance reads the next Unicode char into s.cur; s.cur < 0 means EOF.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	if s.cur == '\n' {
		s.line++
		s.col = 0
	}

	s.off = s.roff
	s.invalidByte = 0
	// fast path if the rune is an ASCII char, no decoding necessary
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, s.line, s.col+1, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) error(off, line, col int, msg string) {
	if s.err != nil {
		s.err(token.Position{Filename: s.file.Name, Line: line, Column: col}, msg)
	}
}

func (s *Scanner) errorf(off, line, col int, format string, args ...any) {
	s.error(off, line, col, fmt.Sprintf(format, args...))
}

// advanceIf advances only if the current char matches any of the specified ones.
func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// skipSpacesAndComments consumes spaces, tabs, carriage returns and
// '#'-to-end-of-line comments, but never crosses a '\n': the caller decides
// what a line boundary means, since that differs inside brackets.
func (s *Scanner) skipSpacesAndComments() {
	for {
		for s.cur == ' ' || s.cur == '\t' || s.cur == '\r' {
			s.advance()
		}
		if s.cur == '#' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			continue
		}
		break
	}
}

// skipWhitespaceInBrackets is used while bracketDepth > 0, where newlines
// are insignificant: a list literal or call's argument list may freely span
// several physical lines without any explicit continuation syntax.
func (s *Scanner) skipWhitespaceInBrackets() {
	for {
		s.skipSpacesAndComments()
		if s.cur == '\n' {
			s.advance()
			continue
		}
		break
	}
}

// resolveIndentation is called once per logical-line boundary (right after
// Init, or right after a NEWLINE was returned). It skips any number of blank
// or comment-only lines, then compares the next real line's leading
// whitespace width against the indentation stack, producing at most one
// INDENT or DEDENT token now; a multi-level dedent's remaining tokens are
// drained one per call via pendingDedents. ok is false when the width is
// unchanged, in which case the scanner is simply left positioned at the
// line's first real character for ordinary tokenizing.
func (s *Scanner) resolveIndentation(tokVal *token.Value) (tok token.Token, ok bool) {
	for {
		for s.cur == ' ' || s.cur == '\t' || s.cur == '\r' {
			s.advance()
		}
		if s.cur == '#' {
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		}
		if s.cur == '\n' {
			s.advance()
			continue
		}
		break
	}
	s.needIndentCheck = false
	pos := token.MakePos(s.line, s.col)

	if s.cur == -1 {
		if len(s.indents) > 1 {
			s.pendingDedents = len(s.indents) - 2
			s.indents = s.indents[:1]
			*tokVal = token.Value{Pos: pos}
			return token.DEDENT, true
		}
		return token.ILLEGAL, false
	}

	width := s.col - 1
	top := s.indents[len(s.indents)-1]
	switch {
	case width > top:
		s.indents = append(s.indents, width)
		*tokVal = token.Value{Pos: pos}
		return token.INDENT, true
	case width < top:
		depth := 0
		for len(s.indents) > 1 && s.indents[len(s.indents)-1] > width {
			s.indents = s.indents[:len(s.indents)-1]
			depth++
		}
		if s.indents[len(s.indents)-1] != width {
			s.errorf(s.off, s.line, s.col, "inconsistent dedent: no enclosing block starts at column %d", width+1)
			s.indents = append(s.indents, width)
		}
		s.pendingDedents = depth - 1
		*tokVal = token.Value{Pos: pos}
		return token.DEDENT, true
	default:
		return token.ILLEGAL, false
	}
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	if s.pendingDedents > 0 {
		s.pendingDedents--
		*tokVal = token.Value{Pos: token.MakePos(s.line, s.col)}
		return token.DEDENT
	}
	if s.needIndentCheck && s.bracketDepth == 0 {
		if tok, ok := s.resolveIndentation(tokVal); ok {
			return tok
		}
	}

	if s.bracketDepth > 0 {
		s.skipWhitespaceInBrackets()
	} else {
		s.skipSpacesAndComments()
		if s.cur == '\n' {
			pos := token.MakePos(s.line, s.col)
			s.advance()
			s.needIndentCheck = true
			*tokVal = token.Value{Pos: pos}
			return token.NEWLINE
		}
	}

	// current token start
	pos := token.MakePos(s.line, s.col)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		// keywords and identifiers
		lit := s.ident()
		tok = token.IDENT
		if len(lit) > 1 {
			// keywords are longer than one letter - avoid lookup otherwise
			tok = token.LookupKw(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur) || cur == '.' && isDecimal(rune(s.peek())):
		// integer, uint and float
		var base int
		var lit string
		tok, base, lit = s.number()
		if tok == token.INT && (s.cur == 'u' || s.cur == 'U') {
			s.advance()
			tok = token.UINT
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}
		switch tok {
		case token.INT:
			v, err := numberToInt(lit, base)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, s.line, s.col, "integer literal value out of range")
			}
			tokVal.Int = v
		case token.UINT:
			v, err := numberToUint(lit, base)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, s.line, s.col, "uint literal value out of range")
			}
			tokVal.Uint = v
		case token.FLOAT:
			v, err := numberToFloat(lit)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, s.line, s.col, "float literal value out of range")
			}
			tokVal.Float = v
		}

	default:
		// keywords, identifiers and numbers are done

		s.advance() // always make progress
		switch cur {
		case '=':
			tok = token.EQ
			if s.advanceIf('=') {
				tok = token.EQEQ
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '"', '\'':
			// short string
			tok = token.STRING
			lit, val := s.shortString(cur)
			*tokVal = token.Value{Raw: lit, Pos: pos, String: val}

		case '(':
			tok = token.LPAREN
			s.bracketDepth++
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}
		case ')':
			tok = token.RPAREN
			if s.bracketDepth > 0 {
				s.bracketDepth--
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}
		case '[':
			tok = token.LBRACK
			s.bracketDepth++
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}
		case ']':
			tok = token.RBRACK
			if s.bracketDepth > 0 {
				s.bracketDepth--
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}
		case ',':
			tok = token.COMMA
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '+', '*', '%':
			// single-char operators that can be followed by '=' and nothing else
			if s.advanceIf('=') {
				tok = token.LookupPunct(string(s.src[start:s.off]))
			} else {
				tok = token.LookupPunct(string(cur))
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			tok = token.BANG
			if s.advanceIf('=') {
				tok = token.NEQ
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '&':
			tok = token.ILLEGAL
			if s.advanceIf('&') {
				tok = token.ANDAND
			} else {
				s.errorf(start, s.line, s.col, "illegal character %#U: single '&' is not a valid operator", cur)
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}
		case '|':
			tok = token.ILLEGAL
			if s.advanceIf('|') {
				tok = token.OROR
			} else {
				s.errorf(start, s.line, s.col, "illegal character %#U: single '|' is not a valid operator", cur)
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '-':
			tok = token.MINUS
			if s.advanceIf('=') {
				tok = token.MINUS_EQ
			} else if s.advanceIf('>') {
				tok = token.ARROW
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '<', '>', '/':
			// all can be followed by '='
			s.advanceIf('=')
			tok = token.LookupPunct(string(s.src[start:s.off]))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case ':':
			tok = token.COLON
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '.':
			tok = token.DOT
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case -1:
			tok = token.EOF
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			if cur == utf8.RuneError && s.invalidByte > 0 {
				cur = rune(s.invalidByte)
				s.invalidByte = 0
			}
			s.errorf(start, s.line, s.col, "illegal character %#U", cur)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(cur), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
