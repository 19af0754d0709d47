package main

import (
	"math"

	"github.com/fogleman/gg"
)

func (m *model) handleNavigation(key string, speed int) {
	switch {
	case m.zPanMode:
		m.handlePan(key, speed)
	case isShifted(key) && m.doc.SelectionCount() > 0:
		m.handleMoveSelected(key, speed)
	default:
		m.handleCursorMove(key, speed)
	}
}

func (m *model) handlePan(key string, speed int) {
	dx, dy := direction(key)
	m.view.EndPan(gg.Point{
		X: -float64(dx*speed) * cellWidth,
		Y: -float64(dy*speed) * cellHeight,
	})
}

func (m *model) handleCursorMove(key string, speed int) {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
}

// handleMoveSelected nudges every selected emoji by one cell on screen.
func (m *model) handleMoveSelected(key string, speed int) {
	dx, dy := direction(key)
	z := m.view.ZoomScale()
	ox := int(math.Round(float64(dx*speed) * cellWidth / z))
	oy := int(math.Round(float64(dy*speed) * cellHeight / z))
	if ox == 0 && oy == 0 {
		ox, oy = dx, dy
	}
	m.doc.MoveEmojis(m.doc.Selected(), ox, oy)
}

func (m *model) ensureCursorInBounds() {
	cols, rows := m.canvasCells()
	m.cursorX = clamp(m.cursorX, 0, cols-1)
	m.cursorY = clamp(m.cursorY, 0, rows-1)
}

func (m *model) getMoveSpeed(key string) int {
	if m.zPanMode && isShifted(key) {
		return 4
	}
	return 1
}

func direction(key string) (int, int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isShifted(key string) bool {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return true
	}
	return false
}
