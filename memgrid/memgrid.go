// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package memgrid is an in-memory sheetcursor.Grid.
package memgrid

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/valyala/quicktemplate"
)

var _ = (sheetcursor.Grid)((*Grid)(nil))

// Grid keeps cells and merged ranges in memory.
//
// Grid is safe for concurrent use, though a Cursor writing to it is not.
type Grid struct {
	cells  map[cellKey]*Cell
	merges []Range
	mu     sync.Mutex
}

type cellKey struct {
	col, row int
}

// Range is a merged rectangle, From being the top-left corner.
type Range struct {
	From, To sheetcursor.Position
}

func (r Range) String() string { return r.From.String() + ":" + r.To.String() }

// Cell is a cell record of a Grid.
type Cell struct {
	grid   *Grid
	value  any
	styles map[string]sheetcursor.Props
	sheetcursor.Position
}

// New returns an empty Grid.
func New() *Grid { return &Grid{cells: make(map[cellKey]*Cell)} }

func key(p sheetcursor.Position) (cellKey, error) {
	col, err := sheetcursor.ColumnToNumber(p.Column)
	if err != nil {
		return cellKey{}, err
	}
	return cellKey{col: col, row: p.Row}, nil
}

// Cell returns the cell at address, creating it if needed.
func (g *Grid) Cell(address string) (sheetcursor.Cell, error) {
	if g == nil {
		return nil, fmt.Errorf("nil grid: %w", sheetcursor.ErrInvalidArgument)
	}
	p, err := sheetcursor.ParseAddress(address)
	if err != nil {
		return nil, err
	}
	k, err := key(p)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cells == nil {
		g.cells = make(map[cellKey]*Cell)
	}
	c := g.cells[k]
	if c == nil {
		c = &Cell{grid: g, Position: p}
		g.cells[k] = c
	}
	return c, nil
}

// Get returns the cell at address, if it has been touched.
func (g *Grid) Get(address string) (*Cell, bool) {
	p, err := sheetcursor.ParseAddress(address)
	if err != nil {
		return nil, false
	}
	k, err := key(p)
	if err != nil {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.cells[k]
	return c, ok
}

// MergeCells records the range. The corners are normalized to top-left/bottom-right.
func (g *Grid) MergeCells(rangeRef string) error {
	if g == nil {
		return fmt.Errorf("nil grid: %w", sheetcursor.ErrInvalidArgument)
	}
	a, b, err := sheetcursor.ParseRange(rangeRef)
	if err != nil {
		return err
	}
	ka, _ := key(a)
	kb, _ := key(b)
	if ka.col > kb.col {
		ka.col, kb.col = kb.col, ka.col
	}
	if ka.row > kb.row {
		ka.row, kb.row = kb.row, ka.row
	}
	from, to := ka.position(), kb.position()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.merges = append(g.merges, Range{From: from, To: to})
	return nil
}

func (k cellKey) position() sheetcursor.Position {
	col, _ := sheetcursor.NumberToColumn(k.col)
	return sheetcursor.Position{Column: col, Row: k.row}
}

// Merges returns the merged ranges in the order they were added.
func (g *Grid) Merges() []Range {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.merges)
}

// MergeAt returns the merged range whose top-left corner is p.
func (g *Grid) MergeAt(p sheetcursor.Position) (Range, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.merges {
		if r.From == p {
			return r, true
		}
	}
	return Range{}, false
}

// Covered reports whether p is inside a merged range, but not its top-left corner.
func (g *Grid) Covered(p sheetcursor.Position) bool {
	k, err := key(p)
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.merges {
		from, _ := key(r.From)
		to, _ := key(r.To)
		if k != from && from.col <= k.col && k.col <= to.col && from.row <= k.row && k.row <= to.row {
			return true
		}
	}
	return false
}

// Bounds returns the largest column number and row touched, 0 for an empty grid.
func (g *Grid) Bounds() (cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.cells {
		cols, rows = max(cols, k.col), max(rows, k.row)
	}
	for _, r := range g.merges {
		k, _ := key(r.To)
		cols, rows = max(cols, k.col), max(rows, k.row)
	}
	return cols, rows
}

// Addresses returns the touched addresses, row by row.
func (g *Grid) Addresses() []string {
	g.mu.Lock()
	keys := make([]cellKey, 0, len(g.cells))
	for k := range g.cells {
		keys = append(keys, k)
	}
	g.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row == keys[j].row {
			return keys[i].col < keys[j].col
		}
		return keys[i].row < keys[j].row
	})
	addrs := make([]string, len(keys))
	for i, k := range keys {
		addrs[i] = k.position().String()
	}
	return addrs
}

// Value returns the value of the cell.
func (c *Cell) Value() (any, error) {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	return c.value, nil
}

// SetValue sets the value of the cell.
func (c *Cell) SetValue(v any) error {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	c.value = v
	return nil
}

// SetStyle replaces the named style property.
func (c *Cell) SetStyle(name string, props sheetcursor.Props) error {
	if name == "" {
		return fmt.Errorf("%s: empty style name: %w", c.Position, sheetcursor.ErrInvalidArgument)
	}
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	if c.styles == nil {
		c.styles = make(map[string]sheetcursor.Props)
	}
	c.styles[name] = props.Clone()
	return nil
}

// Style returns the named style property, nil if unset.
func (c *Cell) Style(name string) sheetcursor.Props {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	return c.styles[name].Clone()
}

// StyleNames returns the names of the set style properties, sorted.
func (c *Cell) StyleNames() []string {
	c.grid.mu.Lock()
	defer c.grid.mu.Unlock()
	names := make([]string, 0, len(c.styles))
	for k := range c.styles {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Text returns the value formatted for display, "" for nil.
func (c *Cell) Text() string {
	v, _ := c.Value()
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// WriteHTML writes the grid as an HTML table. Merged ranges become
// colspan/rowspan cells, bold and italic fonts become <b> and <i>.
func (g *Grid) WriteHTML(w io.Writer) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	defer quicktemplate.ReleaseWriter(qw)
	cols, rows := g.Bounds()
	qw.N().S("<table>\n")
	for row := 1; row <= rows; row++ {
		qw.N().S("<tr>")
		for col := 1; col <= cols; col++ {
			name, _ := sheetcursor.NumberToColumn(col)
			p := sheetcursor.Position{Column: name, Row: row}
			if g.Covered(p) {
				continue
			}
			qw.N().S("<td")
			if r, ok := g.MergeAt(p); ok {
				to, _ := key(r.To)
				if n := to.col - col + 1; n > 1 {
					qw.N().S(` colspan="`)
					qw.N().D(n)
					qw.N().S(`"`)
				}
				if n := to.row - row + 1; n > 1 {
					qw.N().S(` rowspan="`)
					qw.N().D(n)
					qw.N().S(`"`)
				}
			}
			qw.N().S(">")
			if c, ok := g.Get(p.String()); ok {
				font := c.Style("font")
				bold, _ := font["bold"].(bool)
				italic, _ := font["italic"].(bool)
				if bold {
					qw.N().S("<b>")
				}
				if italic {
					qw.N().S("<i>")
				}
				qw.E().S(c.Text())
				if italic {
					qw.N().S("</i>")
				}
				if bold {
					qw.N().S("</b>")
				}
			}
			qw.N().S("</td>")
		}
		qw.N().S("</tr>\n")
	}
	qw.N().S("</table>\n")
	return ew.err
}

// errWriter keeps the first write error, as QWriter drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}
