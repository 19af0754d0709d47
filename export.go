package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"emojiart/internal/emojiart"
	"emojiart/internal/viewport"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// exporter renders documents to PNG through a view of the given pixel size.
type exporter struct {
	width    int
	height   int
	fontPath string
	font     *truetype.Font
	faces    map[float64]font.Face
}

func newExporter(width, height int, fontPath string) (*exporter, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return &exporter{
		width:    width,
		height:   height,
		fontPath: fontPath,
		font:     ttfFont,
		faces:    make(map[float64]font.Face),
	}, nil
}

func (x *exporter) face(points float64) font.Face {
	if f, ok := x.faces[points]; ok {
		return f
	}
	var f font.Face
	if x.fontPath != "" {
		if loaded, err := gg.LoadFontFace(x.fontPath, points); err == nil {
			f = loaded
		}
	}
	if f == nil {
		f = truetype.NewFace(x.font, &truetype.Options{
			Size:    points,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	x.faces[points] = f
	return f
}

// render draws the background centered on the document origin and every
// emoji at its font size, both under the viewport transform.
func (x *exporter) render(emojis []emojiart.Emoji, bg image.Image, v *viewport.Viewport) *gg.Context {
	size := viewport.Size{Width: float64(x.width), Height: float64(x.height)}
	dc := gg.NewContext(x.width, x.height)
	dc.SetColor(color.White)
	dc.Clear()

	m := v.Matrix(size)
	z := v.ZoomScale()
	if bg != nil {
		dc.Push()
		dc.Translate(m.X0, m.Y0)
		dc.Scale(z, z)
		dc.DrawImageAnchored(bg, 0, 0, 0.5, 0.5)
		dc.Pop()
	}

	dc.SetColor(color.Black)
	for _, e := range emojis {
		points := float64(e.Size) * z
		if points < 1 {
			continue
		}
		p := v.ViewPoint(size, gg.Point{X: float64(e.X), Y: float64(e.Y)}, false)
		dc.SetFontFace(x.face(points))
		dc.DrawStringAnchored(e.Text, p.X, p.Y, 0.5, 0.5)
	}
	return dc
}

func (x *exporter) exportPNG(filename string, emojis []emojiart.Emoji, bg image.Image, v *viewport.Viewport) error {
	if len(emojis) == 0 && bg == nil {
		return fmt.Errorf("nothing to export")
	}
	return x.render(emojis, bg, v).SavePNG(filename)
}

func (m *model) exportPNG(filename string) error {
	x, err := newExporter(m.config.ExportWidth, m.config.ExportHeight, m.config.FontPath)
	if err != nil {
		return err
	}
	// Export uses the terminal's zoom and pan, scaled to the output size.
	v := viewport.New()
	v.SetZoom(m.view.ZoomScale() * exportScale(m.viewSize(), x.width, x.height))
	pan := m.view.PanOffset()
	v.SetPan(gg.Point{X: pan.X / m.view.ZoomScale(), Y: pan.Y / m.view.ZoomScale()})
	return x.exportPNG(filename, m.doc.Emojis(), m.doc.BackgroundImage(), v)
}

func exportScale(view viewport.Size, width, height int) float64 {
	if view.Width <= 0 || view.Height <= 0 {
		return 1
	}
	return min(float64(width)/view.Width, float64(height)/view.Height)
}

func (m *model) exportJSON(filename string) error {
	data, err := m.doc.Snapshot().JSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
