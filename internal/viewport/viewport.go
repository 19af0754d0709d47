// Package viewport maps between document space (origin at the canvas center,
// independent of zoom and pan) and view space (the rendered viewport).
package viewport

import (
	"math"

	"github.com/fogleman/gg"
)

// Size is a width and height in view units.
type Size struct {
	Width, Height float64
}

func (s Size) center() gg.Point {
	return gg.Point{X: s.Width / 2, Y: s.Height / 2}
}

// Viewport holds the session zoom/pan state plus the temporary offset of an
// in-progress selection drag. Zoom and pan have a steady value and a gesture
// value; the gesture value is folded into the steady one when the gesture
// ends. The selection offset only lives for one drag.
type Viewport struct {
	steadyZoom  float64
	gestureZoom float64

	// Pan and selection offsets are kept in document units.
	steadyPan  gg.Point
	gesturePan gg.Point
	selection  gg.Point
}

func New() *Viewport {
	return &Viewport{steadyZoom: 1, gestureZoom: 1}
}

// Reset restores zoom 1 and no pan.
func (v *Viewport) Reset() {
	*v = *New()
}

func (v *Viewport) ZoomScale() float64 {
	return v.steadyZoom * v.gestureZoom
}

// PanOffset is the current pan in view units.
func (v *Viewport) PanOffset() gg.Point {
	z := v.ZoomScale()
	return gg.Point{
		X: (v.steadyPan.X + v.gesturePan.X) * z,
		Y: (v.steadyPan.Y + v.gesturePan.Y) * z,
	}
}

// SelectionOffset is the temporary offset applied to selected emoji while
// they are dragged, in view units.
func (v *Viewport) SelectionOffset() gg.Point {
	z := v.ZoomScale()
	return gg.Point{
		X: v.selection.X * z,
		Y: v.selection.Y * z,
	}
}

// SetPan sets the steady pan, in document units.
func (v *Viewport) SetPan(p gg.Point) {
	v.steadyPan = p
	v.gesturePan = gg.Point{}
}

// SetZoom sets the steady zoom. Non-positive or non-finite values are ignored.
func (v *Viewport) SetZoom(z float64) {
	if !validScale(z) {
		return
	}
	v.steadyZoom = z
	v.gestureZoom = 1
}

// UpdatePinch reports the live scale of a pinch gesture.
func (v *Viewport) UpdatePinch(scale float64) {
	if !validScale(scale) {
		return
	}
	v.gestureZoom = scale
}

// EndPinch commits a pinch gesture.
func (v *Viewport) EndPinch(scale float64) {
	v.gestureZoom = 1
	if !validScale(scale) {
		return
	}
	v.steadyZoom *= scale
}

// UpdatePan reports the live translation of a pan drag, in view units.
func (v *Viewport) UpdatePan(translation gg.Point) {
	v.gesturePan = v.toDocument(translation)
}

// EndPan commits a pan drag.
func (v *Viewport) EndPan(translation gg.Point) {
	d := v.toDocument(translation)
	v.gesturePan = gg.Point{}
	v.steadyPan = gg.Point{X: v.steadyPan.X + d.X, Y: v.steadyPan.Y + d.Y}
}

// UpdateSelectionDrag reports the live translation of a drag over a selected
// emoji, in view units.
func (v *Viewport) UpdateSelectionDrag(translation gg.Point) {
	v.selection = v.toDocument(translation)
}

// EndSelectionDrag ends a selection drag and returns the offset, in document
// units, to apply to the dragged emoji. The temporary offset is reset to zero.
func (v *Viewport) EndSelectionDrag(translation gg.Point) gg.Point {
	v.selection = gg.Point{}
	return v.toDocument(translation)
}

// CancelSelectionDrag drops any temporary selection offset.
func (v *Viewport) CancelSelectionDrag() {
	v.selection = gg.Point{}
}

// ZoomToFit zooms so an image of the given size fits the view on one axis and
// clears the pan. Degenerate sizes leave the state untouched.
func (v *Viewport) ZoomToFit(view, img Size) bool {
	if img.Width <= 0 || img.Height <= 0 || view.Width <= 0 || view.Height <= 0 {
		return false
	}
	hZoom := view.Width / img.Width
	vZoom := view.Height / img.Height
	v.steadyPan = gg.Point{}
	v.gesturePan = gg.Point{}
	v.steadyZoom = math.Min(hZoom, vZoom)
	v.gestureZoom = 1
	return true
}

// DocumentPoint maps a point in view space to document space.
func (v *Viewport) DocumentPoint(view Size, p gg.Point) gg.Point {
	c := view.center()
	pan := v.PanOffset()
	z := v.ZoomScale()
	return gg.Point{
		X: (p.X - c.X - pan.X) / z,
		Y: (p.Y - c.Y - pan.Y) / z,
	}
}

// ViewPoint maps a document point to view space. Selected emoji also carry
// the selection drag offset.
func (v *Viewport) ViewPoint(view Size, p gg.Point, selected bool) gg.Point {
	x, y := v.Matrix(view).TransformPoint(p.X, p.Y)
	if selected {
		off := v.SelectionOffset()
		x += off.X
		y += off.Y
	}
	return gg.Point{X: x, Y: y}
}

// Matrix is the document-to-view transform excluding any selection offset.
func (v *Viewport) Matrix(view Size) gg.Matrix {
	c := view.center()
	pan := v.PanOffset()
	z := v.ZoomScale()
	return gg.Matrix{
		XX: z, YX: 0,
		XY: 0, YY: z,
		X0: c.X + pan.X, Y0: c.Y + pan.Y,
	}
}

func (v *Viewport) toDocument(p gg.Point) gg.Point {
	z := v.ZoomScale()
	return gg.Point{X: p.X / z, Y: p.Y / z}
}

func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}
