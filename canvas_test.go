package main

import (
	"image/color"
	"net/url"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterizeBackgroundFollowsTransform(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img := solidImage(16, 32, red)

	// 40x10 cells, zoom 1, no pan: the image spans view x 152..168 and
	// y 64..96, i.e. raster x 19..21 and y 8..12.
	m := gg.Matrix{XX: 1, YY: 1, X0: 160, Y0: 80}
	raster := rasterizeBackground(img, m, 40, 10)

	require.Equal(t, 40, raster.Bounds().Dx())
	require.Equal(t, 20, raster.Bounds().Dy())
	assert.Equal(t, red, raster.RGBAAt(20, 10))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, raster.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, raster.RGBAAt(30, 10))
}

func TestRasterizeBackgroundScales(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img := solidImage(16, 32, red)

	// At zoom 4 the image spans view x 128..192.
	m := gg.Matrix{XX: 4, YY: 4, X0: 160, Y0: 80}
	raster := rasterizeBackground(img, m, 40, 10)
	assert.Equal(t, red, raster.RGBAAt(17, 10))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, raster.RGBAAt(10, 10))
}

func TestBackgroundCacheReusesRaster(t *testing.T) {
	img := solidImage(4, 4, color.Black)
	m := gg.Matrix{XX: 1, YY: 1}
	var c backgroundCache

	first := c.get(img, m, 10, 5)
	assert.Same(t, first, c.get(img, m, 10, 5))

	m.X0 = 8
	moved := c.get(img, m, 10, 5)
	assert.NotSame(t, first, moved)

	c.invalidate()
	assert.NotSame(t, moved, c.get(img, m, 10, 5))
}

func TestGridPutWideGlyphs(t *testing.T) {
	g := newGrid(6, 1)
	require.True(t, g.put(1, 0, "🍎", 2, nil))
	assert.Equal(t, " 🍎   ", g.lines()[0])

	// Landing on the continuation cell breaks the earlier glyph.
	require.True(t, g.put(2, 0, "🌏", 2, nil))
	assert.Equal(t, "  🌏  ", g.lines()[0])

	// Clipped at the edge.
	assert.False(t, g.put(5, 0, "🥨", 2, nil))
	assert.False(t, g.put(-1, 0, "🥨", 2, nil))
}

func TestRenderCanvasDrawsEmojiAtViewPosition(t *testing.T) {
	tm := newTestModel(t)
	tm.doc.AddEmoji("🍎", 0, 0, 40)
	tm.cursorX, tm.cursorY = 0, 9

	lines := tm.renderCanvas()
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[5], strings.Repeat(" ", 19)+"🍎"), "row 5: %q", lines[5])

	tm.view.EndPan(gg.Point{X: 0, Y: -32})
	lines = tm.renderCanvas()
	assert.Contains(t, lines[3], "🍎")
	assert.NotContains(t, lines[5], "🍎")
}

func TestRenderCanvasShowsBackground(t *testing.T) {
	tm := newTestModel(t)
	tm.doc.SetBackgroundURL(&url.URL{Scheme: "https", Host: "example.com", Path: "/bg.png"})
	tm.runPosted(t)

	lines := tm.renderCanvas()
	assert.Contains(t, lines[5], "▀")
}

func TestViewShowsPaletteAndStatus(t *testing.T) {
	tm := newTestModel(t)
	id := tm.doc.AddEmoji("🍎", 0, 0, 40)
	tm.doc.ToggleSelected(id)

	view := tm.View()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 12)
	for _, e := range tm.palette {
		assert.Contains(t, lines[0], e)
	}
	assert.Contains(t, lines[0], "Delete")
	assert.Contains(t, lines[11], "Mode: NORMAL")
	assert.Contains(t, lines[11], "Selected: 1")
	assert.Contains(t, lines[11], "Zoom: 1.00x")
}
