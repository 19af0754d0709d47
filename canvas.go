package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var (
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#FFD75F")).Foreground(lipgloss.Color("#000000"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	paletteStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#303030"))
	buttonStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#AF0000")).Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Background(lipgloss.Color("#5F5F5F")).Foreground(lipgloss.Color("#A8A8A8"))
)

// cell is one terminal cell of the rendered canvas. A wide glyph occupies a
// leader cell holding the text and continuation cells with width 0.
type cell struct {
	text   string
	width  int
	fg     string
	bg     string
	styled lipgloss.Style
	custom bool
}

type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range g.cells {
		g.cells[y] = make([]cell, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{text: " ", width: 1}
		}
	}
	return g
}

func (g *grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// put writes text of the given cell width at (x, y). Glyphs that would be
// clipped by the edge are skipped.
func (g *grid) put(x, y int, text string, width int, style *lipgloss.Style) bool {
	if width < 1 {
		width = 1
	}
	if y < 0 || y >= g.rows || x < 0 || x+width > g.cols {
		return false
	}
	row := g.cells[y]
	// Break any wide glyph we are landing on.
	for lead := x; lead > 0 && row[lead].width == 0; lead-- {
		if row[lead-1].width > 0 {
			row[lead-1] = cell{text: " ", width: 1, fg: row[lead-1].fg, bg: row[lead-1].bg}
			break
		}
	}
	for tail := x + width; tail < g.cols && row[tail].width == 0; tail++ {
		row[tail] = cell{text: " ", width: 1}
	}

	bg := row[x].bg
	row[x] = cell{text: text, width: width, bg: bg}
	if style != nil {
		row[x].styled = *style
		row[x].custom = true
	}
	for i := 1; i < width; i++ {
		row[x+i] = cell{width: 0}
	}
	return true
}

func (g *grid) lines() []string {
	out := make([]string, g.rows)
	for y, row := range g.cells {
		var b strings.Builder
		var run strings.Builder
		var runStyle lipgloss.Style
		runKey := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runKey == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(runStyle.Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.width == 0 {
				continue
			}
			if c.custom {
				flush()
				runKey = ""
				b.WriteString(c.styled.Render(c.text))
				continue
			}
			key, style := c.styleKey()
			if key != runKey {
				flush()
				runKey, runStyle = key, style
			}
			run.WriteString(c.text)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func (c cell) styleKey() (string, lipgloss.Style) {
	if c.fg == "" && c.bg == "" {
		return "", lipgloss.Style{}
	}
	s := lipgloss.NewStyle()
	if c.fg != "" {
		s = s.Foreground(lipgloss.Color(c.fg))
	}
	if c.bg != "" {
		s = s.Background(lipgloss.Color(c.bg))
	}
	return c.fg + "/" + c.bg, s
}

// backgroundCache holds the last background raster. It is invalidated when
// the document reports a new image or the transform changes.
type backgroundCache struct {
	img    image.Image
	matrix gg.Matrix
	cols   int
	rows   int
	raster *image.RGBA
}

func (c *backgroundCache) invalidate() {
	c.raster = nil
}

func (c *backgroundCache) get(img image.Image, m gg.Matrix, cols, rows int) *image.RGBA {
	if c.raster != nil && c.img == img && c.matrix == m && c.cols == cols && c.rows == rows {
		return c.raster
	}
	c.img, c.matrix, c.cols, c.rows = img, m, cols, rows
	c.raster = rasterizeBackground(img, m, cols, rows)
	return c.raster
}

// rasterizeBackground renders img, centered on the document origin and
// transformed by m, at two vertical samples per terminal cell.
func rasterizeBackground(img image.Image, m gg.Matrix, cols, rows int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	b := img.Bounds()
	ox := float64(b.Min.X) + float64(b.Dx())/2
	oy := float64(b.Min.Y) + float64(b.Dy())/2
	sx := 1 / cellWidth
	sy := 2 / cellHeight
	s2d := f64.Aff3{
		m.XX * sx, m.XY * sx, (m.X0 - m.XX*ox - m.XY*oy) * sx,
		m.YX * sy, m.YY * sy, (m.Y0 - m.YX*ox - m.YY*oy) * sy,
	}
	draw.ApproxBiLinear.Transform(dst, s2d, img, b, draw.Over, nil)
	return dst
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// renderCanvas draws the background, the emoji and the cursor.
func (m *model) renderCanvas() []string {
	cols, rows := m.canvasCells()
	g := newGrid(cols, rows)

	if img := m.doc.BackgroundImage(); img != nil {
		raster := m.bgCache.get(img, m.view.Matrix(m.viewSize()), cols, rows)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				g.cells[y][x] = cell{
					text:  "▀",
					width: 1,
					fg:    hexColor(raster.RGBAAt(x, 2*y)),
					bg:    hexColor(raster.RGBAAt(x, 2*y+1)),
				}
			}
		}
	}

	for _, e := range m.doc.Emojis() {
		col, row, _ := m.emojiLayout(e)
		var style *lipgloss.Style
		if m.doc.IsSelected(e.ID) {
			style = &selectedStyle
		}
		g.put(col, row, e.Text, lipgloss.Width(e.Text), style)
	}

	if m.drag.kind == dragPalette && m.drag.moved {
		g.put(m.drag.lastX, m.drag.lastY-paletteRows, m.drag.text, lipgloss.Width(m.drag.text), nil)
	}

	if g.inBounds(m.cursorX, m.cursorY) && g.cells[m.cursorY][m.cursorX].width > 0 {
		c := &g.cells[m.cursorY][m.cursorX]
		c.styled = cursorStyle
		c.custom = true
	}

	return g.lines()
}

func (m *model) paletteItems() []paletteItem {
	var items []paletteItem
	x := 0
	add := func(text, action string, label string) {
		w := lipgloss.Width(label)
		items = append(items, paletteItem{start: x, end: x + w, text: text, action: action})
		x += w
	}
	for _, e := range m.palette {
		add(e, "", " "+e+" ")
	}
	x += 2
	add("", "delete", " Delete ")
	x++
	add("", "clear", " Clear ")
	return items
}

func (m *model) paletteItemAt(col int) (paletteItem, bool) {
	for _, item := range m.paletteItems() {
		if col >= item.start && col < item.end {
			return item, true
		}
	}
	return paletteItem{}, false
}

func (m *model) renderPaletteBar() string {
	var b strings.Builder
	x := 0
	for _, item := range m.paletteItems() {
		if pad := item.start - x; pad > 0 {
			b.WriteString(paletteStyle.Render(strings.Repeat(" ", pad)))
		}
		switch item.action {
		case "delete":
			style := buttonStyle
			if m.doc.SelectionCount() == 0 {
				style = disabledStyle
			}
			b.WriteString(style.Render(" Delete "))
		case "clear":
			b.WriteString(buttonStyle.Render(" Clear "))
		default:
			b.WriteString(paletteStyle.Render(" " + item.text + " "))
		}
		x = item.end
	}
	if pad := m.width - x; pad > 0 {
		b.WriteString(paletteStyle.Render(strings.Repeat(" ", pad)))
	}
	return b.String()
}
