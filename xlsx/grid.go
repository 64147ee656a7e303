// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/xuri/excelize/v2"
)

var _ = (sheetcursor.Grid)((*Grid)(nil))

// Grid is one sheet of an excelize file.
type Grid struct {
	xl    *excelize.File
	Sheet string
	mu    sync.Mutex
}

// NewGrid returns a Grid over sheet of xl. The sheet is created if missing.
func NewGrid(xl *excelize.File, sheet string) (*Grid, error) {
	if xl == nil {
		return nil, fmt.Errorf("nil file: %w", sheetcursor.ErrInvalidArgument)
	}
	idx, err := xl.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := xl.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("%q: %w", sheet, err)
		}
	}
	return &Grid{xl: xl, Sheet: sheet}, nil
}

// File returns the underlying excelize file.
func (g *Grid) File() *excelize.File { return g.xl }

// Cell returns the cell at address.
func (g *Grid) Cell(address string) (sheetcursor.Cell, error) {
	p, err := sheetcursor.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &cell{grid: g, axis: p.String()}, nil
}

// MergeCells merges the range, e.g. "A1:C1".
func (g *Grid) MergeCells(rangeRef string) error {
	a, b, err := sheetcursor.ParseRange(rangeRef)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.xl.MergeCell(g.Sheet, a.String(), b.String()); err != nil {
		return fmt.Errorf("%s[%s]: %w", g.Sheet, rangeRef, err)
	}
	return nil
}

type cell struct {
	grid *Grid
	axis string
}

// Value returns the formatted value of the cell, as a string.
func (c *cell) Value() (any, error) {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	s, err := c.grid.xl.GetCellValue(c.grid.Sheet, c.axis)
	if err != nil {
		return nil, fmt.Errorf("%s[%s]: %w", c.grid.Sheet, c.axis, err)
	}
	return s, nil
}

// SetValue sets the cell value. Nil and invalid sql.Null* values clear the cell,
// times are written as dates, driver.Valuers and fmt.Stringers are resolved.
func (c *cell) SetValue(v any) error {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	if err := setValue(c.grid.xl, c.grid.Sheet, c.axis, v); err != nil {
		return fmt.Errorf("%s[%s]: %w", c.grid.Sheet, c.axis, err)
	}
	return nil
}

func setValue(xl *excelize.File, sheet, axis string, v any) error {
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	switch x := v.(type) {
	case nil:
		return xl.SetCellValue(sheet, axis, nil)
	case time.Time:
		if x.IsZero() {
			return xl.SetCellValue(sheet, axis, nil)
		}
		return xl.SetCellStr(sheet, axis, x.Format("2006-01-02"))
	case sql.NullTime:
		if !x.Valid || x.Time.IsZero() {
			return xl.SetCellValue(sheet, axis, nil)
		}
		return xl.SetCellStr(sheet, axis, x.Time.Format("2006-01-02"))
	case sql.NullFloat64:
		if !x.Valid {
			return xl.SetCellValue(sheet, axis, nil)
		}
		return xl.SetCellFloat(sheet, axis, x.Float64, -1, 64)
	case sql.NullInt64:
		if !x.Valid {
			return xl.SetCellValue(sheet, axis, nil)
		}
		return xl.SetCellValue(sheet, axis, x.Int64)
	case sql.NullString:
		if !x.Valid {
			return xl.SetCellValue(sheet, axis, nil)
		}
		return xl.SetCellStr(sheet, axis, x.String)
	case sheetcursor.Number:
		if f, err := strconv.ParseFloat(string(x), 64); err == nil {
			return xl.SetCellFloat(sheet, axis, f, -1, 64)
		}
		return xl.SetCellStr(sheet, axis, string(x))
	case string:
		return xl.SetCellStr(sheet, axis, x)
	case fmt.Stringer:
		return xl.SetCellStr(sheet, axis, x.String())
	}
	return xl.SetCellValue(sheet, axis, v)
}

// SetStyle replaces the named style property of the cell, keeping the others.
//
// Known names: font, fill, alignment, border, numFmt, protection.
func (c *cell) SetStyle(name string, props sheetcursor.Props) error {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	xl, sheet := c.grid.xl, c.grid.Sheet
	id, err := xl.GetCellStyle(sheet, c.axis)
	if err != nil {
		return fmt.Errorf("%s[%s]: %w", sheet, c.axis, err)
	}
	st := &excelize.Style{}
	if id != 0 {
		if st, err = xl.GetStyle(id); err != nil {
			return fmt.Errorf("%s[%s] style %d: %w", sheet, c.axis, id, err)
		}
	}
	if err := applyStyle(st, name, props); err != nil {
		return fmt.Errorf("%s[%s]: %w", sheet, c.axis, err)
	}
	if id, err = xl.NewStyle(st); err != nil {
		return fmt.Errorf("%s[%s]: %w", sheet, c.axis, err)
	}
	return xl.SetCellStyle(sheet, c.axis, c.axis, id)
}

var borderStyles = map[string]int{
	"none": 0, "thin": 1, "medium": 2, "dashed": 3, "dotted": 4, "thick": 5,
	"double": 6, "hair": 7, "mediumDashed": 8, "dashDot": 9, "mediumDashDot": 10,
	"dashDotDot": 11, "mediumDashDotDot": 12, "slantDashDot": 13,
}

func applyStyle(st *excelize.Style, name string, p sheetcursor.Props) error {
	switch name {
	case "font":
		if len(p) == 0 {
			st.Font = nil
			return nil
		}
		f := &excelize.Font{
			Bold:   boolProp(p, "bold"),
			Italic: boolProp(p, "italic"),
			Strike: boolProp(p, "strike"),
			Size:   floatProp(p, "size"),
			Color:  colorProp(p, "color"),
			Family: stringProp(p, "name"),
		}
		if f.Family == "" {
			f.Family = stringProp(p, "family")
		}
		switch u := p["underline"].(type) {
		case bool:
			if u {
				f.Underline = "single"
			}
		case string:
			f.Underline = u
		}
		st.Font = f
	case "fill":
		color := colorProp(p, "color")
		if color == "" {
			color = colorProp(p, "fgColor")
		}
		if color == "" {
			st.Fill = excelize.Fill{}
			return nil
		}
		pattern := int(floatProp(p, "pattern"))
		if pattern == 0 {
			pattern = 1
		}
		st.Fill = excelize.Fill{Type: "pattern", Pattern: pattern, Color: []string{color}}
	case "alignment":
		if len(p) == 0 {
			st.Alignment = nil
			return nil
		}
		st.Alignment = &excelize.Alignment{
			Horizontal:  stringProp(p, "horizontal"),
			Vertical:    stringProp(p, "vertical"),
			WrapText:    boolProp(p, "wrapText"),
			ShrinkToFit: boolProp(p, "shrinkToFit"),
			Indent:      int(floatProp(p, "indent")),
		}
	case "border":
		st.Border = st.Border[:0]
		for _, side := range []string{"left", "top", "right", "bottom"} {
			sp, ok := p[side].(sheetcursor.Props)
			if !ok {
				if m, isMap := p[side].(map[string]any); isMap {
					sp, ok = sheetcursor.Props(m), true
				}
			}
			if !ok {
				continue
			}
			name := stringProp(sp, "style")
			idx, known := borderStyles[name]
			if !known {
				return fmt.Errorf("border %s style %q: %w", side, name, sheetcursor.ErrInvalidArgument)
			}
			if idx == 0 {
				continue
			}
			color := colorProp(sp, "color")
			if color == "" {
				color = "000000"
			}
			st.Border = append(st.Border, excelize.Border{Type: side, Color: color, Style: idx})
		}
	case "numFmt":
		if s := stringProp(p, "format"); s != "" {
			st.CustomNumFmt, st.NumFmt = &s, 0
		} else {
			st.CustomNumFmt, st.NumFmt = nil, int(floatProp(p, "id"))
		}
	case "protection":
		if len(p) == 0 {
			st.Protection = nil
			return nil
		}
		st.Protection = &excelize.Protection{
			Hidden: boolProp(p, "hidden"),
			Locked: boolProp(p, "locked"),
		}
	default:
		return fmt.Errorf("unknown style %q: %w", name, sheetcursor.ErrInvalidArgument)
	}
	return nil
}

func boolProp(p sheetcursor.Props, k string) bool {
	b, _ := p[k].(bool)
	return b
}

func stringProp(p sheetcursor.Props, k string) string {
	s, _ := p[k].(string)
	return s
}

func floatProp(p sheetcursor.Props, k string) float64 {
	switch x := p[k].(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	}
	return 0
}

// colorProp accepts "FF0000", "#FF0000" and ARGB "FFFF0000".
func colorProp(p sheetcursor.Props, k string) string {
	var s string
	switch x := p[k].(type) {
	case string:
		s = x
	case sheetcursor.Props:
		s = stringProp(x, "argb")
	case map[string]any:
		s, _ = x["argb"].(string)
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) == 8 {
		s = s[2:]
	}
	return strings.ToUpper(s)
}
