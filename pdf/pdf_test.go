// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pdf

import (
	"bytes"
	"testing"

	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetcursor"
	"github.com/UNO-SOFT/sheetcursor/memgrid"
)

func TestRender(t *testing.T) {
	g := memgrid.New()
	cur, err := sheetcursor.New(g, "A", 1)
	require.NoError(t, err)
	require.NoError(t, cur.SetAndApplyFormat("Report", sheetcursor.Format{
		"font":      {"bold": true},
		"alignment": {"horizontal": "center"},
	}))
	require.NoError(t, cur.MergeCells(2, 0))
	require.NoError(t, cur.SetAddress("A2"))
	cur.AddFormatting(sheetcursor.Format{"fill": {"color": "#e6e6e6"}})
	require.NoError(t, cur.FillRow([]any{"a", "b", "c"}, nil))
	cur.UnsetFormatting()
	require.NoError(t, cur.NextRow(1))
	require.NoError(t, cur.FillTable([][]any{{1, 2, 3}, {4, nil, 6}}, nil))
	require.NoError(t, cur.SetAddress("C5"))
	require.NoError(t, cur.MergeCells(0, 1))

	b, err := Render(g, Options{AlternateColor: &props.Color{Red: 230, Green: 230, Blue: 230}, Landscape: true})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "%q", b[:min(len(b), 16)])
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(memgrid.New(), Options{})
	assert.ErrorIs(t, err, sheetcursor.ErrInvalidArgument)
}

func TestRenderBadFill(t *testing.T) {
	g := memgrid.New()
	c, err := g.Cell("A1")
	require.NoError(t, err)
	require.NoError(t, c.SetStyle("fill", sheetcursor.Props{"color": "nope"}))
	_, err = Render(g, Options{})
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	for s, want := range map[string]props.Color{
		"e6e6e6":    {Red: 230, Green: 230, Blue: 230},
		"#FF0000":   {Red: 255},
		"FF00FF00":  {Green: 255},
		"#0000ff":   {Blue: 255},
	} {
		got, err := ParseColor(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	for _, s := range []string{"", "fff", "zzzzzz", "0102030405"} {
		_, err := ParseColor(s)
		assert.Error(t, err, s)
	}
	assert.Equal(t, "e6e6e6", FormatColor(props.Color{Red: 230, Green: 230, Blue: 230}))
}
