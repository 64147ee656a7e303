// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx writes cursors and sheets into excelize files.
package xlsx

import (
	"fmt"
	"io"
	"sync"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/xuri/excelize/v2"
)

var _ = (sheetcursor.Writer)((*XLSXWriter)(nil))

type XLSXWriter struct {
	w      io.Writer
	xl     *excelize.File
	sheets []string
	mu     sync.Mutex
}

// XLSXSheet appends rows through a Cursor anchored at column A.
type XLSXSheet struct {
	cur  *sheetcursor.Cursor
	grid *Grid
	Name string
	mu   sync.Mutex
}

// NewWriter returns a new sheetcursor.Writer.
//
// This writer allows concurrent writes to separate sheets.
//
// This writer collects everything in memory, so big sheets may impose problems.
func NewWriter(w io.Writer) *XLSXWriter {
	return &XLSXWriter{w: w, xl: excelize.NewFile()}
}

// File returns the underlying excelize file, for cursors writing other regions.
func (xlw *XLSXWriter) File() *excelize.File { return xlw.xl }

func (xlw *XLSXWriter) Close() error {
	if xlw == nil {
		return nil
	}
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	xl, w := xlw.xl, xlw.w
	xlw.xl, xlw.w = nil, nil
	if xl == nil || w == nil {
		return nil
	}
	defer xl.Close()
	_, err := xl.WriteTo(w)
	return err
}

// NewSheet adds a sheet; the header row is written if any column has a Name.
func (xlw *XLSXWriter) NewSheet(name string, columns []sheetcursor.Column) (sheetcursor.Sheet, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	if xlw.xl == nil {
		return nil, fmt.Errorf("%s: %w", name, sheetcursor.ErrDetached)
	}
	xlw.sheets = append(xlw.sheets, name)
	if len(xlw.sheets) == 1 { // first
		if err := xlw.xl.SetSheetName("Sheet1", name); err != nil {
			return nil, err
		}
	}
	grid, err := NewGrid(xlw.xl, name)
	if err != nil {
		return nil, err
	}
	cur, err := sheetcursor.New(grid, "A", 1)
	if err != nil {
		return nil, err
	}
	var hasHeader bool
	for i, c := range columns {
		col, err := sheetcursor.NumberToColumn(i + 1)
		if err != nil {
			return nil, err
		}
		if f := c.Column.Formatting(); len(f) != 0 {
			if err := xlw.setColStyle(name, col, f); err != nil {
				return nil, err
			}
		}
		hasHeader = hasHeader || c.Name != ""
	}
	if hasHeader {
		for _, c := range columns {
			var err error
			if c.Name == "" {
				err = cur.NextColumn(1)
			} else {
				err = cur.SetAndNextColumn(c.Name, c.Header.Formatting())
			}
			if err != nil {
				return nil, err
			}
		}
		if err := cur.NextRow(1); err != nil {
			return nil, err
		}
	}
	return &XLSXSheet{cur: cur, grid: grid, Name: name}, nil
}

func (xlw *XLSXWriter) setColStyle(sheet, col string, f sheetcursor.Format) error {
	var st excelize.Style
	for k, p := range f {
		if err := applyStyle(&st, k, p); err != nil {
			return err
		}
	}
	s, err := xlw.xl.NewStyle(&st)
	if err != nil {
		return err
	}
	return xlw.xl.SetColStyle(sheet, col, s)
}

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

func (xls *XLSXSheet) Close() error { return nil }

// Cursor returns the cursor of the sheet, at the start of the next row.
func (xls *XLSXSheet) Cursor() *sheetcursor.Cursor { return xls.cur }

// Grid returns the grid of the sheet.
func (xls *XLSXSheet) Grid() *Grid { return xls.grid }

func (xls *XLSXSheet) AppendRow(values ...any) error {
	xls.mu.Lock()
	defer xls.mu.Unlock()
	if xls.cur.Position().Row > MaxRowCount {
		return sheetcursor.ErrTooManyRows
	}
	if err := xls.cur.FillRow(values, nil); err != nil {
		return err
	}
	return xls.cur.NextRow(1)
}
