// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// IsColumn reports whether s is non-empty and consists only of A-Z.
func IsColumn(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// ColumnToNumber converts column letters to their 1-based number:
// "A"→1, "Z"→26, "AA"→27.
//
// The letters are a bijective base-26 numeral: there is no zero digit.
func ColumnToNumber(column string) (int, error) {
	if !IsColumn(column) {
		return 0, fmt.Errorf("column %q: %w", column, ErrInvalidFormat)
	}
	var n int
	for i := 0; i < len(column); i++ {
		if n > (math.MaxInt-26)/26 {
			return 0, fmt.Errorf("column %q: %w", column, ErrOutOfRange)
		}
		n = n*26 + int(column[i]-'A') + 1
	}
	return n, nil
}

// NumberToColumn is the inverse of ColumnToNumber. n must be at least 1.
func NumberToColumn(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("column number %d: %w", n, ErrOutOfRange)
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:]), nil
}

// IncrementColumn shifts column by delta columns; delta may be negative
// as long as the result stays at or after "A".
func IncrementColumn(column string, delta int) (string, error) {
	n, err := ColumnToNumber(column)
	if err != nil {
		return "", err
	}
	return ColumnAt(n, delta)
}

// ColumnAt returns the column offset columns after the anchor column number.
func ColumnAt(anchor, offset int) (string, error) {
	if offset > 0 && anchor > math.MaxInt-offset {
		return "", fmt.Errorf("column number %d + %d: %w", anchor, offset, ErrOutOfRange)
	}
	return NumberToColumn(anchor + offset)
}

// Columns returns the infinite sequence start, start+1, start+2, ...
//
// Every range over the returned sequence restarts at start.
func Columns(start string) (iter.Seq[string], error) {
	n, err := ColumnToNumber(start)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		for i := n; i > 0; i++ {
			s, _ := NumberToColumn(i)
			if !yield(s) {
				return
			}
		}
	}, nil
}

// Position is a cell address.
type Position struct {
	Column string
	Row    int
}

// String returns the address, e.g. "C3".
func (p Position) String() string { return fmt.Sprintf("%s%d", p.Column, p.Row) }

// ParseAddress parses "<letters><digits>" like "C3" (or "$C$3").
func ParseAddress(s string) (Position, error) {
	orig := s
	s = strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	i := 0
	for i < len(s) && 'A' <= s[i] && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return Position{}, fmt.Errorf("address %q: %w", orig, ErrInvalidFormat)
	}
	var row int
	for _, c := range s[i:] {
		if c < '0' || c > '9' {
			return Position{}, fmt.Errorf("address %q: %w", orig, ErrInvalidFormat)
		}
		row = row*10 + int(c-'0')
		if row > 1<<30 {
			return Position{}, fmt.Errorf("address %q: row %w", orig, ErrOutOfRange)
		}
	}
	if row < 1 {
		return Position{}, fmt.Errorf("address %q: row %w", orig, ErrOutOfRange)
	}
	return Position{Column: s[:i], Row: row}, nil
}

// ParseRange parses a range like "A1:C3" into its two corners, as written.
func ParseRange(s string) (Position, Position, error) {
	first, last, ok := strings.Cut(s, ":")
	if !ok {
		return Position{}, Position{}, fmt.Errorf("range %q: missing ':': %w", s, ErrInvalidFormat)
	}
	a, err := ParseAddress(first)
	if err != nil {
		return Position{}, Position{}, fmt.Errorf("range %q: %w", s, err)
	}
	b, err := ParseAddress(last)
	if err != nil {
		return Position{}, Position{}, fmt.Errorf("range %q: %w", s, err)
	}
	return a, b, nil
}
