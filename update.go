package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"emojiart/internal/viewport"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fogleman/gg"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case dispatchMsg:
		msg.fn()
		if m.notes.message != "" {
			m.successMessage = m.notes.message
			m.notes.message = ""
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.help {
		switch key {
		case "esc", "q", "?":
			m.help = false
			m.helpScroll = 0
		case "j", "down":
			m.helpScroll++
		case "k", "up":
			if m.helpScroll > 0 {
				m.helpScroll--
			}
		}
		return m, nil
	}

	switch m.mode {
	case ModeURLInput, ModeFileInput:
		return m.handleInput(msg)
	case ModeConfirm:
		return m.handleConfirm(key)
	}

	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.help = true
	case "z":
		m.zPanMode = !m.zPanMode
	case "esc":
		m.zPanMode = false
		m.cancelDrag()
		m.doc.DeselectAll()
	case "h", "j", "k", "l", "left", "down", "up", "right",
		"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right":
		m.handleNavigation(key, m.getMoveSpeed(key))
	case " ", "enter":
		m.tap(m.cursorX, m.cursorY)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(key[0] - '1')
		if idx < len(m.palette) {
			m.drop(m.palette[idx], cellCenter(m.cursorX, m.cursorY))
		}
	case "p", "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard unavailable: %v", err)
			return m, nil
		}
		if !m.drop(cleanClipboardText(text), cellCenter(m.cursorX, m.cursorY)) {
			m.errorMessage = "Clipboard is empty"
		}
	case "b":
		m.mode = ModeURLInput
		m.input = ""
		if u := m.doc.BackgroundURL(); u != nil {
			m.input = u.String()
		}
	case "+", "=":
		m.view.EndPinch(pinchStep)
	case "-", "_":
		m.view.EndPinch(1 / pinchStep)
	case "0":
		m.view.Reset()
	case "f":
		m.zoomToFit()
	case "]":
		m.scaleSelected(scaleStep)
	case "[":
		m.scaleSelected(1 / scaleStep)
	case "d", "delete", "backspace":
		if m.doc.SelectionCount() == 0 {
			m.errorMessage = "Nothing selected"
			return m, nil
		}
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmDeleteSelected
			return m, nil
		}
		m.doc.RemoveSelectedEmojis()
	case "C":
		if m.config.Confirmations {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmClear
			return m, nil
		}
		m.clearDocument()
	case "u":
		if !m.doc.Undo() {
			m.errorMessage = "Nothing to undo"
		}
	case "U", "ctrl+r":
		if !m.doc.Redo() {
			m.errorMessage = "Nothing to redo"
		}
	case "S":
		m.mode = ModeFileInput
		m.fileOp = FileOpExportPNG
		m.input = ""
	case "s":
		m.mode = ModeFileInput
		m.fileOp = FileOpExportJSON
		m.input = ""
	case "y":
		data, err := m.doc.Snapshot().JSON()
		if err == nil {
			err = clipboard.WriteAll(string(data))
		}
		if err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", err)
			return m, nil
		}
		m.successMessage = "Copied document JSON"
	}
	return m, nil
}

func (m model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input = ""
	case tea.KeyEnter:
		m.submitInput()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *model) submitInput() {
	text := strings.TrimSpace(m.input)
	mode := m.mode
	m.mode = ModeNormal
	m.input = ""

	if mode == ModeURLInput {
		if text == "" {
			m.doc.SetBackgroundURL(nil)
			m.successMessage = "Background cleared"
			return
		}
		u, ok := parseDropURL(text)
		if !ok {
			m.errorMessage = fmt.Sprintf("Not an image URL: %s", text)
			return
		}
		m.doc.SetBackgroundURL(u)
		m.successMessage = "Loading background..."
		return
	}

	if text == "" {
		m.errorMessage = "No filename given"
		return
	}
	ext := ".png"
	if m.fileOp == FileOpExportJSON {
		ext = ".json"
	}
	if filepath.Ext(text) == "" {
		text += ext
	}
	m.filename = m.config.GetSavePath(text)
	if _, err := os.Stat(m.filename); err == nil {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmOverwriteFile
		return
	}
	m.export()
}

func (m *model) export() {
	var err error
	switch m.fileOp {
	case FileOpExportPNG:
		err = m.exportPNG(m.filename)
	case FileOpExportJSON:
		err = m.exportJSON(m.filename)
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("Export failed: %v", err)
		m.logger.Error("export failed", "file", m.filename, "error", err)
		return
	}
	m.successMessage = fmt.Sprintf("Exported %s", m.filename)
	m.logger.Info("exported", "file", m.filename)
}

func (m model) handleConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmClear:
			m.clearDocument()
		case ConfirmDeleteSelected:
			m.doc.RemoveSelectedEmojis()
		case ConfirmOverwriteFile:
			m.export()
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *model) clearDocument() {
	m.doc.Clear()
	m.view.Reset()
	m.bgCache.invalidate()
	m.successMessage = "Cleared"
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.help || m.mode != ModeNormal {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		factor := pinchStep
		if msg.Type == tea.MouseWheelDown {
			factor = 1 / pinchStep
		}
		if (msg.Ctrl || msg.Alt) && m.doc.SelectionCount() > 0 {
			m.scaleSelected(factor)
		} else {
			m.view.EndPinch(factor)
		}

	case tea.MouseLeft, tea.MouseMotion:
		if m.drag.kind == dragNone {
			if msg.Type == tea.MouseLeft {
				m.press(msg.X, msg.Y)
			}
			return m, nil
		}
		m.motion(msg.X, msg.Y)

	case tea.MouseRelease:
		m.release(msg.X, msg.Y)
	}
	return m, nil
}

func (m *model) press(x, y int) {
	m.errorMessage = ""
	m.successMessage = ""
	m.drag = dragState{startX: x, startY: y, lastX: x, lastY: y}

	if y < paletteRows {
		item, ok := m.paletteItemAt(x)
		if !ok {
			return
		}
		switch item.action {
		case "delete":
			if m.doc.SelectionCount() > 0 {
				m.doc.RemoveSelectedEmojis()
			}
		case "clear":
			if m.config.Confirmations {
				m.mode = ModeConfirm
				m.confirmAction = ConfirmClear
			} else {
				m.clearDocument()
			}
		default:
			m.drag.kind = dragPalette
			m.drag.text = item.text
		}
		return
	}

	col, row := x, y-paletteRows
	m.cursorX, m.cursorY = col, row
	m.ensureCursorInBounds()
	if id, ok := m.emojiAt(col, row); ok {
		m.drag.kind = dragEmoji
		m.drag.emojiID = id
		if m.doc.IsSelected(id) {
			m.drag.selected = m.doc.Selected()
		}
		return
	}
	m.drag.kind = dragCanvas
}

func (m *model) motion(x, y int) {
	if x == m.drag.lastX && y == m.drag.lastY {
		return
	}
	m.drag.lastX, m.drag.lastY = x, y
	m.drag.moved = m.drag.moved || x != m.drag.startX || y != m.drag.startY
	dx, dy := m.drag.translation()

	switch m.drag.kind {
	case dragEmoji:
		// Only a selected emoji can be dragged.
		if len(m.drag.selected) > 0 {
			m.view.UpdateSelectionDrag(gg.Point{X: dx, Y: dy})
		}
	case dragCanvas:
		m.view.UpdatePan(gg.Point{X: dx, Y: dy})
	}
}

func (m *model) release(x, y int) {
	m.motion(x, y)
	d := m.drag
	m.drag = dragState{}
	dx, dy := d.translation()

	switch d.kind {
	case dragPalette:
		if y >= paletteRows {
			m.drop(d.text, cellCenter(x, y-paletteRows))
		}

	case dragEmoji:
		if !d.moved {
			m.doc.ToggleSelected(d.emojiID)
			return
		}
		if len(d.selected) == 0 {
			return
		}
		off := m.view.EndSelectionDrag(gg.Point{X: dx, Y: dy})
		ox, oy := roundOffset(off)
		if ox == 0 && oy == 0 {
			return
		}
		m.doc.MoveEmojis(d.selected, ox, oy)

	case dragCanvas:
		if !d.moved {
			m.tap(d.startX, d.startY-paletteRows)
			return
		}
		m.view.EndPan(gg.Point{X: dx, Y: dy})
	}
}

func (m *model) cancelDrag() {
	switch m.drag.kind {
	case dragEmoji:
		m.view.CancelSelectionDrag()
	case dragCanvas:
		m.view.UpdatePan(gg.Point{})
	}
	m.drag = dragState{}
}

// tap toggles the emoji under a canvas cell, or deselects everything when
// the cell is empty. Two empty taps within doubleTapWindow fit the background.
func (m *model) tap(col, row int) {
	if id, ok := m.emojiAt(col, row); ok {
		m.doc.ToggleSelected(id)
		m.lastTap = time.Time{}
		return
	}
	now := m.now()
	if !m.lastTap.IsZero() && now.Sub(m.lastTap) <= doubleTapWindow {
		m.lastTap = time.Time{}
		m.zoomToFit()
		return
	}
	m.lastTap = now
	m.doc.DeselectAll()
}

func (m *model) zoomToFit() {
	img := m.doc.BackgroundImage()
	if img == nil {
		m.errorMessage = "No background to fit"
		return
	}
	b := img.Bounds()
	if !m.view.ZoomToFit(m.viewSize(), viewport.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}) {
		m.errorMessage = "Background has no size"
	}
}

func (m *model) scaleSelected(factor float64) {
	selected := m.doc.Selected()
	if len(selected) == 0 {
		m.errorMessage = "Nothing selected"
		return
	}
	m.doc.ScaleEmojis(selected, factor)
}

func roundOffset(p gg.Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}
