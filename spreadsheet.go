// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sheetcursor writes rows, columns, tables and decorated regions
// into a spreadsheet grid through a stateful Cursor.
//
// The grid itself is an external collaborator: anything that can resolve
// an address like "C3" to a Cell and merge a range like "A1:C1" can be
// written through a Cursor. See the memgrid and xlsx packages.
package sheetcursor

import (
	"errors"
	"io"
	"maps"
)

// Writer writes the spreadsheet consisting of the sheets created
// with NewSheet. The write finishes when Close is called.
//
// The writer SHOULD allow writing to separate sheets concurrently,
// and document if it does not provide this functionality.
type Writer interface {
	io.Closer
	NewSheet(name string, cols []Column) (Sheet, error)
}

// Sheet should be Closed when finished.
type Sheet interface {
	io.Closer
	AppendRow(values ...any) error
}

// Cell is one mutable cell record of a Grid.
type Cell interface {
	Value() (any, error)
	SetValue(v any) error
	// SetStyle replaces the named style property ("font", "fill", "border", ...).
	SetStyle(name string, props Props) error
}

// Grid is the backend a Cursor writes through.
type Grid interface {
	// Cell resolves an address like "C3".
	Cell(address string) (Cell, error)
	// MergeCells merges the rectangle given as "<address>:<address>".
	MergeCells(rangeRef string) error
}

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// Formatting returns the style as a Cursor formatting.
func (s Style) Formatting() Format {
	f := make(Format, 2)
	if s.FontBold {
		f["font"] = Props{"bold": true}
	}
	if s.Format != "" {
		f["numFmt"] = Props{"format": s.Format}
	}
	return f
}

// Column contains the Name of the column and header's style and column's style.
type Column struct {
	Name           string
	Header, Column Style
}

var (
	ErrTooManyRows = errors.New("too many rows")

	// ErrInvalidFormat is returned for malformed column letters or addresses.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidArgument is returned for a missing grid or a negative step count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned when a row would go below 1 or a column before A.
	ErrOutOfRange = errors.New("out of range")
	// ErrDetached is returned when the cursor has no grid, or has been released.
	ErrDetached = errors.New("no grid attached")
)

// Number is a string that contains a number.
type Number string

// Props is one style value, e.g. {"bold": true, "size": 12} for "font".
type Props map[string]any

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Format maps style names to style values.
type Format map[string]Props

// Merge returns a new Format holding f's keys overridden by over's keys.
// Values are replaced per key, not merged.
func (f Format) Merge(over Format) Format {
	m := make(Format, len(f)+len(over))
	for k, v := range f {
		m[k] = v.Clone()
	}
	for k, v := range over {
		m[k] = v.Clone()
	}
	return m
}
