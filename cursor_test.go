// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetcursor_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/UNO-SOFT/sheetcursor/memgrid"
)

func newCursor(t *testing.T, column string, row int) (*sheetcursor.Cursor, *memgrid.Grid) {
	t.Helper()
	g := memgrid.New()
	cur, err := sheetcursor.New(g, column, row)
	require.NoError(t, err)
	return cur, g
}

func valueAt(t *testing.T, g *memgrid.Grid, address string) any {
	t.Helper()
	c, ok := g.Get(address)
	require.True(t, ok, "%s not written", address)
	v, err := c.Value()
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	assert.Equal(t, "C3", cur.Address())
	assert.Equal(t, sheetcursor.Position{Column: "C", Row: 3}, cur.Position())
	assert.Empty(t, cur.Formatting())
}

func TestNewInvalid(t *testing.T) {
	g := memgrid.New()
	_, err := sheetcursor.New(g, "c", 1)
	assert.ErrorIs(t, err, sheetcursor.ErrInvalidFormat)
	_, err = sheetcursor.New(g, "", 1)
	assert.ErrorIs(t, err, sheetcursor.ErrInvalidFormat)
	_, err = sheetcursor.New(g, "A", 0)
	assert.ErrorIs(t, err, sheetcursor.ErrOutOfRange)
	_, err = sheetcursor.New(nil, "A", 1)
	assert.ErrorIs(t, err, sheetcursor.ErrInvalidArgument)
}

func TestNextAndPreviousColumn(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	require.NoError(t, cur.NextColumn(2))
	assert.Equal(t, "E3", cur.Address())

	require.NoError(t, cur.PreviousColumn(2))
	assert.Equal(t, "C3", cur.Address())

	require.NoError(t, cur.NextColumn(1))
	assert.Equal(t, "D3", cur.Address())
}

func TestPreviousColumnReanchors(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	require.NoError(t, cur.NextColumn(3))     // F3
	require.NoError(t, cur.PreviousColumn(1)) // E3, anchored at E
	require.NoError(t, cur.NextRow(1))
	assert.Equal(t, "E4", cur.Address())
}

func TestNextRowResetsToAnchor(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	require.NoError(t, cur.NextColumn(2))
	assert.Equal(t, "E3", cur.Address())
	require.NoError(t, cur.NextRow(1))
	assert.Equal(t, "C4", cur.Address())
	require.NoError(t, cur.NextRow(3))
	assert.Equal(t, "C7", cur.Address())
}

func TestPreviousRow(t *testing.T) {
	cur, _ := newCursor(t, "B", 5)
	require.NoError(t, cur.NextColumn(2))
	require.NoError(t, cur.PreviousRow(2))
	assert.Equal(t, "D3", cur.Address(), "column stays")
}

func TestOutOfRange(t *testing.T) {
	cur, _ := newCursor(t, "A", 1)
	assert.ErrorIs(t, cur.PreviousRow(1), sheetcursor.ErrOutOfRange)
	assert.ErrorIs(t, cur.PreviousColumn(1), sheetcursor.ErrOutOfRange)
	assert.Equal(t, "A1", cur.Address(), "failed moves do not mutate")

	require.NoError(t, cur.NextColumn(2))
	assert.ErrorIs(t, cur.PreviousColumn(3), sheetcursor.ErrOutOfRange)
	assert.Equal(t, "C1", cur.Address())

	assert.ErrorIs(t, cur.NextColumn(-1), sheetcursor.ErrInvalidArgument)
	assert.ErrorIs(t, cur.NextRow(-1), sheetcursor.ErrInvalidArgument)
}

func TestColumnOverflowRejected(t *testing.T) {
	_, err := sheetcursor.New(memgrid.New(), strings.Repeat("Z", 14), 3)
	assert.ErrorIs(t, err, sheetcursor.ErrOutOfRange)

	cur, _ := newCursor(t, "C", 3)
	for name, move := range map[string]func() error{
		"NextColumn": func() error { return cur.NextColumn(math.MaxInt) },
		"MoveTo":     func() error { return cur.MoveTo(math.MaxInt, 1) },
		"NextRow":    func() error { return cur.NextRow(math.MaxInt) },
		"MoveToRows": func() error { return cur.MoveTo(0, math.MaxInt) },
		"Merge":      func() error { return cur.MergeCells(math.MaxInt, 0) },
	} {
		assert.ErrorIs(t, move(), sheetcursor.ErrOutOfRange, name)
		assert.Equal(t, "C3", cur.Address(), name)
	}
	require.NoError(t, cur.SetValue("ok"))
}

func TestMoveTo(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	require.NoError(t, cur.MoveTo(2, 0))
	assert.Equal(t, "E3", cur.Address(), "zero rows keep the column")

	require.NoError(t, cur.MoveTo(-1, 0))
	assert.Equal(t, "D3", cur.Address())

	require.NoError(t, cur.MoveTo(1, 2))
	assert.Equal(t, "D5", cur.Address(), "rows after columns return to the anchor")

	require.NoError(t, cur.MoveTo(0, -4))
	assert.Equal(t, "D1", cur.Address())

	err := cur.MoveTo(-1, -1)
	assert.ErrorIs(t, err, sheetcursor.ErrOutOfRange)
	assert.Equal(t, "D1", cur.Address(), "no partial move")

	assert.ErrorIs(t, cur.MoveTo(-4, 1), sheetcursor.ErrOutOfRange)
	assert.Equal(t, "D1", cur.Address())
}

func TestSetPosition(t *testing.T) {
	cur, _ := newCursor(t, "C", 3)
	require.NoError(t, cur.NextColumn(2))

	require.NoError(t, cur.SetPosition(sheetcursor.Position{Row: 7}))
	assert.Equal(t, "E7", cur.Address(), "row alone does not touch the column")

	require.NoError(t, cur.SetPosition(sheetcursor.Position{Column: "H"}))
	assert.Equal(t, "H7", cur.Address())
	require.NoError(t, cur.NextColumn(1))
	require.NoError(t, cur.NextRow(1))
	assert.Equal(t, "H8", cur.Address(), "column re-anchors")

	assert.ErrorIs(t, cur.SetPosition(sheetcursor.Position{Column: "x", Row: 1}), sheetcursor.ErrInvalidFormat)
	assert.ErrorIs(t, cur.SetPosition(sheetcursor.Position{Column: "A", Row: -1}), sheetcursor.ErrOutOfRange)
	assert.Equal(t, "H8", cur.Address(), "invalid positions do not mutate")

	assert.ErrorIs(t, cur.SetRow(0), sheetcursor.ErrOutOfRange)
	require.NoError(t, cur.SetRow(2))
	require.NoError(t, cur.SetColumn("B"))
	assert.Equal(t, "B2", cur.Address())
}

func TestSetAddress(t *testing.T) {
	cur, _ := newCursor(t, "A", 1)
	require.NoError(t, cur.SetAddress("AB12"))
	assert.Equal(t, "AB12", cur.Address())
	require.NoError(t, cur.NextColumn(2))
	require.NoError(t, cur.NextRow(1))
	assert.Equal(t, "AB13", cur.Address())

	assert.ErrorIs(t, cur.SetAddress("12AB"), sheetcursor.ErrInvalidFormat)
	assert.Equal(t, "AB13", cur.Address())
}

func TestSetInitialColumn(t *testing.T) {
	cur, _ := newCursor(t, "A", 1)
	require.NoError(t, cur.SetInitialColumn("D"))
	assert.Equal(t, "D1", cur.Address())
	assert.ErrorIs(t, cur.SetInitialColumn("d"), sheetcursor.ErrInvalidFormat)
	assert.Equal(t, "D1", cur.Address())
}

func TestIncrementColumnValue(t *testing.T) {
	cur, _ := newCursor(t, "Y", 1)
	got, err := cur.IncrementColumnValue(3, "")
	require.NoError(t, err)
	assert.Equal(t, "AB", got)
	got, err = cur.IncrementColumnValue(-1, "B")
	require.NoError(t, err)
	assert.Equal(t, "A", got)
	assert.Equal(t, "Y1", cur.Address(), "does not move")
	_, err = cur.IncrementColumnValue(-25, "")
	assert.ErrorIs(t, err, sheetcursor.ErrOutOfRange)
}

func TestFormattingOverlayWins(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	cur.AddFormatting(sheetcursor.Format{"font": {"bold": true}})
	require.NoError(t, cur.ApplyFormatting(sheetcursor.Format{
		"font": {"italic": true},
		"fill": {"color": "FFFF00"},
	}))
	c, ok := g.Get("A1")
	require.True(t, ok)
	assert.Equal(t, sheetcursor.Props{"bold": true}, c.Style("font"))
	assert.Equal(t, sheetcursor.Props{"color": "FFFF00"}, c.Style("fill"))
}

func TestOverwriteFormatting(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	cur.AddFormatting(sheetcursor.Format{"font": {"bold": true}})
	require.NoError(t, cur.OverwriteFormatting(sheetcursor.Format{"font": {"italic": true}}))
	c, _ := g.Get("A1")
	assert.Equal(t, sheetcursor.Props{"italic": true}, c.Style("font"))
}

func TestFormattingAccessors(t *testing.T) {
	cur, _ := newCursor(t, "A", 1)
	cur.AddFormatting(sheetcursor.Format{"font": {"bold": true}})
	cur.AddFormatting(sheetcursor.Format{"fill": {"color": "000000"}, "font": {"size": 12}})
	assert.Equal(t, sheetcursor.Format{
		"font": {"size": 12},
		"fill": {"color": "000000"},
	}, cur.Formatting())

	cur.SetFormatting(sheetcursor.Format{"alignment": {"horizontal": "center"}})
	assert.Equal(t, sheetcursor.Format{"alignment": {"horizontal": "center"}}, cur.Formatting())

	cur.UnsetFormatting()
	assert.Empty(t, cur.Formatting())

	withOpt, err := sheetcursor.New(memgrid.New(), "A", 1,
		sheetcursor.WithFormatting(sheetcursor.Format{"font": {"bold": true}}))
	require.NoError(t, err)
	assert.Equal(t, sheetcursor.Format{"font": {"bold": true}}, withOpt.Formatting())
}

func TestSetAndMove(t *testing.T) {
	cur, g := newCursor(t, "B", 2)
	bold := sheetcursor.Format{"font": {"bold": true}}
	require.NoError(t, cur.SetAndNextColumn("b2", bold))
	assert.Equal(t, "C2", cur.Address())
	require.NoError(t, cur.SetAndNextRow("c2", nil))
	assert.Equal(t, "B3", cur.Address())
	require.NoError(t, cur.SetAndPreviousRow("b3", nil))
	assert.Equal(t, "B2", cur.Address())
	require.NoError(t, cur.SetAndPreviousColumn("b2'", nil))
	assert.Equal(t, "A2", cur.Address())

	assert.Equal(t, "b2'", valueAt(t, g, "B2"))
	assert.Equal(t, "c2", valueAt(t, g, "C2"))
	assert.Equal(t, "b3", valueAt(t, g, "B3"))
	c, _ := g.Get("B2")
	assert.Equal(t, sheetcursor.Props{"bold": true}, c.Style("font"))

	assert.ErrorIs(t, cur.SetAndPreviousColumn("x", nil), sheetcursor.ErrOutOfRange)
	_, written := g.Get("A2")
	assert.False(t, written, "nothing is written when the move would fail")
}

func TestValue(t *testing.T) {
	cur, _ := newCursor(t, "A", 1)
	require.NoError(t, cur.SetValue(42))
	v, err := cur.Value()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFillRow(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	require.NoError(t, cur.FillRow([]any{10, 20, 30}, nil))
	assert.Equal(t, 10, valueAt(t, g, "A1"))
	assert.Equal(t, 20, valueAt(t, g, "B1"))
	assert.Equal(t, 30, valueAt(t, g, "C1"))
	assert.Equal(t, "D1", cur.Address())
}

func TestFillRowFromMapping(t *testing.T) {
	cur, g := newCursor(t, "B", 2)
	require.NoError(t, cur.FillRowFromMapping([]sheetcursor.Entry{
		{Key: "id", Value: 1},
		{Key: "name", Value: "Joe"},
		{Key: "secret", Value: "xxx"},
		{Key: "age", Value: 33},
	}, nil, "secret"))
	assert.Equal(t, 1, valueAt(t, g, "B2"))
	assert.Equal(t, "Joe", valueAt(t, g, "C2"))
	assert.Equal(t, 33, valueAt(t, g, "D2"))
	assert.Equal(t, "E2", cur.Address())
}

func TestFillColumn(t *testing.T) {
	cur, g := newCursor(t, "C", 1)
	require.NoError(t, cur.FillColumn([]any{"a", "b", "c"}, nil))
	assert.Equal(t, "a", valueAt(t, g, "C1"))
	assert.Equal(t, "b", valueAt(t, g, "C2"))
	assert.Equal(t, "c", valueAt(t, g, "C3"))
	assert.Equal(t, "C4", cur.Address())
}

func TestFillTable(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	require.NoError(t, cur.FillTable([][]any{{1, 2}, {3, 4}}, nil))
	assert.Equal(t, 1, valueAt(t, g, "A1"))
	assert.Equal(t, 2, valueAt(t, g, "B1"))
	assert.Equal(t, 3, valueAt(t, g, "A2"))
	assert.Equal(t, 4, valueAt(t, g, "B2"))
	assert.Equal(t, "A3", cur.Address())
}

func TestFillTableFromMappings(t *testing.T) {
	cur, g := newCursor(t, "C", 2)
	rows := [][]sheetcursor.Entry{
		{{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3}},
		{{Key: "a", Value: 4}, {Key: "b", Value: 5}, {Key: "c", Value: 6}},
	}
	bold := sheetcursor.Format{"font": {"bold": true}}
	require.NoError(t, cur.FillTableFromMappings(rows, bold, "b"))
	assert.Equal(t, 1, valueAt(t, g, "C2"))
	assert.Equal(t, 3, valueAt(t, g, "D2"))
	assert.Equal(t, 4, valueAt(t, g, "C3"))
	assert.Equal(t, 6, valueAt(t, g, "D3"))
	_, ok := g.Get("E2")
	assert.False(t, ok)
	assert.Equal(t, "C4", cur.Address())
	c, _ := g.Get("D3")
	assert.Equal(t, sheetcursor.Props{"bold": true}, c.Style("font"))
}

func TestMergeCells(t *testing.T) {
	var buf bytes.Buffer
	g := memgrid.New()
	cur, err := sheetcursor.New(g, "B", 2,
		sheetcursor.WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	require.NoError(t, err)

	require.NoError(t, cur.MergeCells(2, 1))
	require.Len(t, g.Merges(), 1)
	assert.Equal(t, "B2:D3", g.Merges()[0].String())
	assert.Equal(t, "D3", cur.Address())
	assert.Contains(t, buf.String(), "B2:D3")

	require.NoError(t, cur.NextColumn(1))
	require.NoError(t, cur.NextRow(1))
	assert.Equal(t, "D4", cur.Address(), "re-anchored at the merge target")

	assert.ErrorIs(t, cur.MergeCells(-4, 0), sheetcursor.ErrOutOfRange)
	assert.ErrorIs(t, cur.MergeCells(0, -4), sheetcursor.ErrOutOfRange)
	assert.Equal(t, "D4", cur.Address())
	assert.Len(t, g.Merges(), 1)
}

type failingGrid struct{ err error }

func (g failingGrid) Cell(string) (sheetcursor.Cell, error) { return nil, g.err }
func (g failingGrid) MergeCells(string) error              { return g.err }

func TestGridErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	cur, err := sheetcursor.New(failingGrid{err: boom}, "A", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, cur.SetValue(1), boom)
	assert.ErrorIs(t, cur.MergeCells(1, 0), boom)
	assert.Equal(t, "A1", cur.Address(), "a failed merge does not move")
	assert.ErrorIs(t, cur.FillRow([]any{1, 2}, nil), boom)
	assert.Equal(t, "A1", cur.Address())
}

func TestDetached(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	assert.Same(t, g, cur.Grid())
	cur.SetGrid(nil)
	_, err := cur.Value()
	assert.ErrorIs(t, err, sheetcursor.ErrDetached)
	_, err = cur.Cell()
	assert.ErrorIs(t, err, sheetcursor.ErrDetached)
	assert.ErrorIs(t, cur.MergeCells(1, 1), sheetcursor.ErrDetached)
	require.NoError(t, cur.NextColumn(1), "moves do not need a grid")
	assert.Equal(t, "B1", cur.Address())

	cur.SetGrid(g)
	require.NoError(t, cur.SetValue("x"))
	assert.Equal(t, "x", valueAt(t, g, "B1"))
}

func TestClone(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	cur.AddFormatting(sheetcursor.Format{"font": {"bold": true}})
	require.NoError(t, cur.NextColumn(2))

	cl, err := cur.Clone()
	require.NoError(t, err)
	assert.Equal(t, "C1", cl.Address())
	assert.Same(t, g, cl.Grid())
	assert.Empty(t, cl.Formatting())

	require.NoError(t, cl.NextColumn(1))
	assert.Equal(t, "C1", cur.Address(), "independent state")
	require.NoError(t, cl.NextRow(1))
	assert.Equal(t, "C2", cl.Address(), "the clone is anchored at its start")
}

func TestRelease(t *testing.T) {
	cur, g := newCursor(t, "A", 1)
	cur.Release()
	assert.Nil(t, cur.Grid())
	assert.Empty(t, cur.Address())
	assert.ErrorIs(t, cur.NextColumn(1), sheetcursor.ErrDetached)
	assert.ErrorIs(t, cur.NextRow(1), sheetcursor.ErrDetached)
	assert.ErrorIs(t, cur.SetAddress("B2"), sheetcursor.ErrDetached)
	_, err := cur.Clone()
	assert.ErrorIs(t, err, sheetcursor.ErrDetached)
	cur.SetGrid(g)
	assert.ErrorIs(t, cur.SetValue(1), sheetcursor.ErrDetached)
}
