// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor

import "fmt"

// BorderBox sets the "border" style of every cell in the rectangle between
// start and end (inclusive). Each side of a cell gets the outer style when
// it lies on the rectangle's edge, the inner style otherwise.
//
// Zero start/end default to A1 and C3, empty styles to "thin" and "dotted".
func BorderBox(g Grid, start, end Position, outer, inner string) error {
	if g == nil {
		return fmt.Errorf("border box: %w", ErrInvalidArgument)
	}
	if start == (Position{}) {
		start = Position{Column: "A", Row: 1}
	}
	if end == (Position{}) {
		end = Position{Column: "C", Row: 3}
	}
	if outer == "" {
		outer = "thin"
	}
	if inner == "" {
		inner = "dotted"
	}
	c0, err := ColumnToNumber(start.Column)
	if err != nil {
		return fmt.Errorf("border box start: %w", err)
	}
	c1, err := ColumnToNumber(end.Column)
	if err != nil {
		return fmt.Errorf("border box end: %w", err)
	}
	r0, r1 := start.Row, end.Row
	if r0 < 1 || r1 < 1 {
		return fmt.Errorf("border box %s:%s: %w", start, end, ErrOutOfRange)
	}
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	side := func(edge bool) Props {
		if edge {
			return Props{"style": outer}
		}
		return Props{"style": inner}
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			name, _ := NumberToColumn(col)
			addr := Position{Column: name, Row: row}.String()
			cell, err := g.Cell(addr)
			if err != nil {
				return fmt.Errorf("border box %s: %w", addr, err)
			}
			if err := cell.SetStyle("border", Props{
				"top":    side(row == r0),
				"left":   side(col == c0),
				"bottom": side(row == r1),
				"right":  side(col == c1),
			}); err != nil {
				return fmt.Errorf("border box %s: %w", addr, err)
			}
		}
	}
	return nil
}
