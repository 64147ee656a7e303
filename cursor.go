// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// Cursor tracks a current cell of a Grid and writes through to it.
//
// The column is the anchor column plus the number of columns stepped
// since the anchor was set. Setting the column (SetColumn, SetPosition,
// SetAddress, PreviousColumn, MergeCells) re-anchors; NextRow returns to
// the anchor; setting the row directly never touches the column.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	grid     Grid
	format   Format
	logger   *slog.Logger
	anchor   int
	offset   int
	row      int
	released bool
}

// Entry is a key-value pair of an ordered mapping.
type Entry struct {
	Key   string
	Value any
}

// New returns a Cursor at column and row of g.
func New(g Grid, column string, row int, opts ...Option) (*Cursor, error) {
	anchor, err := ColumnToNumber(column)
	if err != nil {
		return nil, err
	}
	if row < 1 {
		return nil, fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	if g == nil {
		return nil, fmt.Errorf("grid: %w", ErrInvalidArgument)
	}
	o := options{format: Format{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Cursor{grid: g, format: o.format, logger: o.logger, anchor: anchor, row: row}, nil
}

func (c *Cursor) check() error {
	if c.released {
		return fmt.Errorf("cursor released: %w", ErrDetached)
	}
	return nil
}

func (c *Cursor) column() string {
	s, _ := ColumnAt(c.anchor, c.offset)
	return s
}

// Grid returns the grid the cursor writes to, nil if detached.
func (c *Cursor) Grid() Grid { return c.grid }

// SetGrid replaces the grid; nil detaches the cursor.
func (c *Cursor) SetGrid(g Grid) { c.grid = g }

// Cell returns the cell at the current address.
func (c *Cursor) Cell() (Cell, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.grid == nil {
		return nil, fmt.Errorf("%s: %w", c.Address(), ErrDetached)
	}
	return c.grid.Cell(c.Address())
}

// Position returns the current position.
func (c *Cursor) Position() Position {
	if c.released {
		return Position{}
	}
	return Position{Column: c.column(), Row: c.row}
}

// Address returns the current address, e.g. "C3".
func (c *Cursor) Address() string {
	if c.released {
		return ""
	}
	return Position{Column: c.column(), Row: c.row}.String()
}

// SetAddress moves to the address, re-anchoring at its column.
func (c *Cursor) SetAddress(address string) error {
	p, err := ParseAddress(address)
	if err != nil {
		return err
	}
	return c.SetPosition(p)
}

// SetPosition moves to p. An empty Column or zero Row leaves that part as is.
// A given column re-anchors, a given row does not reset the column.
func (c *Cursor) SetPosition(p Position) error {
	if err := c.check(); err != nil {
		return err
	}
	anchor := c.anchor
	if p.Column != "" {
		var err error
		if anchor, err = ColumnToNumber(p.Column); err != nil {
			return err
		}
	}
	if p.Row < 0 {
		return fmt.Errorf("row %d: %w", p.Row, ErrOutOfRange)
	}
	if p.Column != "" {
		c.anchor, c.offset = anchor, 0
	}
	if p.Row != 0 {
		c.row = p.Row
	}
	return nil
}

// SetColumn re-anchors at column. Same as SetInitialColumn.
func (c *Cursor) SetColumn(column string) error { return c.SetInitialColumn(column) }

// SetRow sets the row, leaving the column alone.
func (c *Cursor) SetRow(row int) error {
	if err := c.check(); err != nil {
		return err
	}
	if row < 1 {
		return fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	c.row = row
	return nil
}

// SetInitialColumn sets the anchor column and moves there.
func (c *Cursor) SetInitialColumn(column string) error {
	if err := c.check(); err != nil {
		return err
	}
	n, err := ColumnToNumber(column)
	if err != nil {
		return err
	}
	c.anchor, c.offset = n, 0
	return nil
}

func checkTimes(times int) error {
	if times < 0 {
		return fmt.Errorf("times %d: %w", times, ErrInvalidArgument)
	}
	return nil
}

// NextColumn steps times columns to the right. The anchor stays.
func (c *Cursor) NextColumn(times int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkTimes(times); err != nil {
		return err
	}
	if c.anchor+c.offset > math.MaxInt-times {
		return fmt.Errorf("no column after %s + %d: %w", c.column(), times, ErrOutOfRange)
	}
	c.offset += times
	return nil
}

// PreviousColumn steps times columns to the left and re-anchors there.
func (c *Cursor) PreviousColumn(times int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkTimes(times); err != nil {
		return err
	}
	n := c.anchor + c.offset - times
	if n < 1 {
		return fmt.Errorf("no column before A (%s - %d): %w", c.column(), times, ErrOutOfRange)
	}
	c.anchor, c.offset = n, 0
	return nil
}

// NextRow steps times rows down and returns to the anchor column.
func (c *Cursor) NextRow(times int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkTimes(times); err != nil {
		return err
	}
	if c.row > math.MaxInt-times {
		return fmt.Errorf("row %d + %d: %w", c.row, times, ErrOutOfRange)
	}
	c.row += times
	c.offset = 0
	return nil
}

// PreviousRow steps times rows up. The column stays.
func (c *Cursor) PreviousRow(times int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkTimes(times); err != nil {
		return err
	}
	if c.row-times < 1 {
		return fmt.Errorf("row %d - %d: %w", c.row, times, ErrOutOfRange)
	}
	c.row -= times
	return nil
}

// MoveTo moves by columns then rows; negative values move left/up.
// Zero deltas are skipped instead of being passed to NextColumn(0) or
// NextRow(0), so MoveTo(2, 0) stays on the row and does not return to the anchor.
func (c *Cursor) MoveTo(columns, rows int) error {
	if err := c.check(); err != nil {
		return err
	}
	if columns < 0 && c.anchor+c.offset+columns < 1 {
		return fmt.Errorf("no column before A (%s %d): %w", c.column(), columns, ErrOutOfRange)
	}
	if columns > 0 && c.anchor+c.offset > math.MaxInt-columns {
		return fmt.Errorf("no column after %s + %d: %w", c.column(), columns, ErrOutOfRange)
	}
	if rows < 0 && c.row+rows < 1 || rows > 0 && c.row > math.MaxInt-rows {
		return fmt.Errorf("row %d %+d: %w", c.row, rows, ErrOutOfRange)
	}
	var err error
	switch {
	case columns < 0:
		err = c.PreviousColumn(-columns)
	case columns > 0:
		err = c.NextColumn(columns)
	}
	if err != nil {
		return err
	}
	switch {
	case rows < 0:
		err = c.PreviousRow(-rows)
	case rows > 0:
		err = c.NextRow(rows)
	}
	return err
}

// IncrementColumnValue returns column (the current one if empty) shifted by value.
// The cursor does not move.
func (c *Cursor) IncrementColumnValue(value int, column string) (string, error) {
	if err := c.check(); err != nil {
		return "", err
	}
	if column == "" {
		column = c.column()
	}
	return IncrementColumn(column, value)
}

// Formatting returns the formatting overlay.
func (c *Cursor) Formatting() Format { return c.format }

// SetFormatting replaces the formatting overlay.
func (c *Cursor) SetFormatting(f Format) {
	if f == nil {
		f = Format{}
	}
	c.format = f
}

// UnsetFormatting clears the formatting overlay.
func (c *Cursor) UnsetFormatting() { c.format = Format{} }

// AddFormatting merges f into the overlay, f's keys winning.
func (c *Cursor) AddFormatting(f Format) { c.format = c.format.Merge(f) }

// ApplyFormatting writes f merged with the overlay onto the current cell.
// The overlay wins on key collision.
func (c *Cursor) ApplyFormatting(f Format) error {
	return c.OverwriteFormatting(f.Merge(c.format))
}

// OverwriteFormatting writes f onto the current cell, ignoring the overlay.
func (c *Cursor) OverwriteFormatting(f Format) error {
	if len(f) == 0 {
		return nil
	}
	cell, err := c.Cell()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := cell.SetStyle(k, f[k].Clone()); err != nil {
			return fmt.Errorf("%s[%s]: %w", c.Address(), k, err)
		}
	}
	return nil
}

// Value returns the value of the current cell.
func (c *Cursor) Value() (any, error) {
	cell, err := c.Cell()
	if err != nil {
		return nil, err
	}
	return cell.Value()
}

// SetValue sets the value of the current cell.
func (c *Cursor) SetValue(v any) error {
	cell, err := c.Cell()
	if err != nil {
		return err
	}
	if err := cell.SetValue(v); err != nil {
		return fmt.Errorf("%s: %w", c.Address(), err)
	}
	return nil
}

// SetAndApplyFormat applies the formatting then sets the value.
func (c *Cursor) SetAndApplyFormat(v any, f Format) error {
	if err := c.ApplyFormatting(f); err != nil {
		return err
	}
	return c.SetValue(v)
}

// SetAndNextColumn writes v and steps one column right.
func (c *Cursor) SetAndNextColumn(v any, f Format) error {
	if err := c.SetAndApplyFormat(v, f); err != nil {
		return err
	}
	return c.NextColumn(1)
}

// SetAndNextRow writes v and steps one row down, back to the anchor column.
func (c *Cursor) SetAndNextRow(v any, f Format) error {
	if err := c.SetAndApplyFormat(v, f); err != nil {
		return err
	}
	return c.NextRow(1)
}

// SetAndPreviousColumn writes v and steps one column left.
// Writing column A fails with ErrOutOfRange before anything is written.
func (c *Cursor) SetAndPreviousColumn(v any, f Format) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.anchor+c.offset <= 1 {
		return fmt.Errorf("no column before A: %w", ErrOutOfRange)
	}
	if err := c.SetAndApplyFormat(v, f); err != nil {
		return err
	}
	return c.PreviousColumn(1)
}

// SetAndPreviousRow writes v and steps one row up.
// Writing row 1 fails with ErrOutOfRange before anything is written.
func (c *Cursor) SetAndPreviousRow(v any, f Format) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.row <= 1 {
		return fmt.Errorf("row %d - 1: %w", c.row, ErrOutOfRange)
	}
	if err := c.SetAndApplyFormat(v, f); err != nil {
		return err
	}
	return c.PreviousRow(1)
}

// MergeCells merges the rectangle from the current cell to the cell
// columns right and rows down, then moves to that cell and re-anchors there,
// so a following NextRow returns to the merge's last column, not to the
// column the row was started at.
func (c *Cursor) MergeCells(columns, rows int) error {
	if err := c.check(); err != nil {
		return err
	}
	if c.grid == nil {
		return fmt.Errorf("%s: %w", c.Address(), ErrDetached)
	}
	from := c.Position()
	col, err := IncrementColumn(from.Column, columns)
	if err != nil {
		return fmt.Errorf("merge %s +%d columns: %w", from, columns, err)
	}
	if rows > 0 && from.Row > math.MaxInt-rows {
		return fmt.Errorf("merge %s +%d rows: %w", from, rows, ErrOutOfRange)
	}
	to := Position{Column: col, Row: from.Row + rows}
	if to.Row < 1 {
		return fmt.Errorf("merge %s +%d rows: %w", from, rows, ErrOutOfRange)
	}
	rng := from.String() + ":" + to.String()
	if err := c.grid.MergeCells(rng); err != nil {
		return fmt.Errorf("merge %s: %w", rng, err)
	}
	c.logger.Debug("merged", "range", rng)
	c.anchor, _ = ColumnToNumber(to.Column)
	c.offset, c.row = 0, to.Row
	return nil
}

// FillRow writes values left to right from the current cell,
// leaving the cursor after the last one.
func (c *Cursor) FillRow(values []any, f Format) error {
	for _, v := range values {
		if err := c.SetAndNextColumn(v, f); err != nil {
			return err
		}
	}
	return nil
}

// FillRowFromMapping writes the values of entries whose key is not excluded,
// in order, like FillRow.
func (c *Cursor) FillRowFromMapping(entries []Entry, f Format, exclude ...string) error {
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		if !slices.Contains(exclude, e.Key) {
			values = append(values, e.Value)
		}
	}
	return c.FillRow(values, f)
}

// FillColumn writes values top to bottom.
// Each step returns to the anchor column, so this fills the anchor column.
func (c *Cursor) FillColumn(values []any, f Format) error {
	for _, v := range values {
		if err := c.SetAndNextRow(v, f); err != nil {
			return err
		}
	}
	return nil
}

// FillTable writes each row with FillRow, each starting at the anchor
// column of a new row. The cursor ends at the anchor below the last row.
func (c *Cursor) FillTable(rows [][]any, f Format) error {
	for _, row := range rows {
		if err := c.FillRow(row, f); err != nil {
			return err
		}
		if err := c.NextRow(1); err != nil {
			return err
		}
	}
	return nil
}

// FillTableFromMappings is FillTable with rows given as ordered mappings.
func (c *Cursor) FillTableFromMappings(rows [][]Entry, f Format, exclude ...string) error {
	for _, row := range rows {
		if err := c.FillRowFromMapping(row, f, exclude...); err != nil {
			return err
		}
		if err := c.NextRow(1); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a new Cursor at the current position, anchored there,
// sharing the grid and with an empty overlay.
func (c *Cursor) Clone() (*Cursor, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.grid == nil {
		return nil, fmt.Errorf("clone: %w", ErrDetached)
	}
	return New(c.grid, c.column(), c.row, WithLogger(c.logger))
}

// Release drops the grid and all state. The cursor is unusable afterwards.
func (c *Cursor) Release() {
	*c = Cursor{released: true, logger: c.logger}
}
