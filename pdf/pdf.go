// Copyright 2021, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package pdf renders a memgrid.Grid as a PDF table.
package pdf

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontfamily"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/UNO-SOFT/sheetcursor/memgrid"
)

// Options of Render.
type Options struct {
	// AlternateColor is the background of every second row, if not nil.
	AlternateColor *props.Color
	// FontSize defaults to 8.
	FontSize float64
	// Landscape orientation instead of portrait.
	Landscape bool
}

// Render renders the grid: one PDF row per grid row, one grid column per
// sheet column. Horizontal merges widen the cell, the rest of a merged
// range is left empty. Bold/italic fonts, fill colours and horizontal
// alignment are kept.
func Render(g *memgrid.Grid, o Options) ([]byte, error) {
	cols, rows := g.Bounds()
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("empty grid: %w", sheetcursor.ErrInvalidArgument)
	}
	if o.FontSize <= 0 {
		o.FontSize = 8
	}
	orient := orientation.Vertical
	if o.Landscape {
		orient = orientation.Horizontal
	}
	m := maroto.New(config.NewBuilder().
		WithOrientation(orient).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(cols).
		Build())

	merges, err := rects(g.Merges())
	if err != nil {
		return nil, err
	}
	height := o.FontSize * 0.6
	for y := 1; y <= rows; y++ {
		r := row.New(height)
		for x := 1; x <= cols; {
			span, top := 1, true
			for _, mr := range merges {
				if mr.contains(x, y) {
					span, top = mr.x1-x+1, mr.y0 == y && mr.x0 == x
					break
				}
			}
			if top {
				c, err := cellCol(g, x, y, span, o)
				if err != nil {
					return nil, err
				}
				r.Add(c)
			} else {
				r.Add(col.New(span))
			}
			x += span
		}
		if o.AlternateColor != nil && y%2 == 0 {
			r.WithStyle(&props.Cell{BackgroundColor: o.AlternateColor})
		}
		m.AddRows(r)
	}
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func cellCol(g *memgrid.Grid, x, y, span int, o Options) (core.Col, error) {
	name, err := sheetcursor.NumberToColumn(x)
	if err != nil {
		return nil, err
	}
	c, ok := g.Get(sheetcursor.Position{Column: name, Row: y}.String())
	if !ok {
		return col.New(span), nil
	}
	tp := props.Text{Size: o.FontSize, Family: fontfamily.Courier, Style: fontstyle.Normal, Align: align.Left}
	font := c.Style("font")
	bold, _ := font["bold"].(bool)
	italic, _ := font["italic"].(bool)
	switch {
	case bold && italic:
		tp.Style = fontstyle.BoldItalic
	case bold:
		tp.Style = fontstyle.Bold
	case italic:
		tp.Style = fontstyle.Italic
	}
	if bold {
		tp.Family = fontfamily.Arial
	}
	switch h, _ := c.Style("alignment")["horizontal"].(string); h {
	case "center":
		tp.Align = align.Center
	case "right":
		tp.Align = align.Right
	}
	tc := text.NewCol(span, c.Text(), tp)
	if s, _ := c.Style("fill")["color"].(string); s != "" {
		bg, err := ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("%s fill: %w", c.Position, err)
		}
		tc.WithStyle(&props.Cell{BackgroundColor: &bg})
	}
	return tc, nil
}

type rect struct{ x0, y0, x1, y1 int }

func (r rect) contains(x, y int) bool { return r.x0 <= x && x <= r.x1 && r.y0 <= y && y <= r.y1 }

func rects(ranges []memgrid.Range) ([]rect, error) {
	rs := make([]rect, 0, len(ranges))
	for _, mr := range ranges {
		x0, err := sheetcursor.ColumnToNumber(mr.From.Column)
		if err != nil {
			return nil, err
		}
		x1, err := sheetcursor.ColumnToNumber(mr.To.Column)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rect{x0: x0, y0: mr.From.Row, x1: x1, y1: mr.To.Row})
	}
	return rs, nil
}

// ParseColor parses "e6e6e6" or "#E6E6E6".
func ParseColor(s string) (props.Color, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil {
		return props.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(b) == 4 { // ARGB
		b = b[1:]
	}
	if len(b) != 3 {
		return props.Color{}, fmt.Errorf("color %q: %w", s, sheetcursor.ErrInvalidFormat)
	}
	return props.Color{Red: int(b[0]), Green: int(b[1]), Blue: int(b[2])}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c props.Color) string {
	return fmt.Sprintf("%02x%02x%02x", c.Red, c.Green, c.Blue)
}
