package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	if m.width < 1 || m.height < 1 {
		return ""
	}

	var result strings.Builder
	result.WriteString(m.renderPaletteBar())
	result.WriteString("\n")
	result.WriteString(strings.Join(m.renderCanvas(), "\n"))
	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) statusLine() string {
	switch m.mode {
	case ModeURLInput:
		return "Background URL (empty clears): " + m.input + "█"
	case ModeFileInput:
		kind := "PNG"
		if m.fileOp == FileOpExportJSON {
			kind = "JSON"
		}
		return fmt.Sprintf("Export %s to: %s█", kind, m.input)
	case ModeConfirm:
		return m.confirmPrompt()
	}

	modeStr := m.modeString()
	if m.zPanMode {
		modeStr += " (PAN)"
	}
	status := fmt.Sprintf("Mode: %s | Zoom: %.2fx | Emoji: %d", modeStr, m.view.ZoomScale(), len(m.doc.Emojis()))
	if n := m.doc.SelectionCount(); n > 0 {
		status += fmt.Sprintf(" | Selected: %d", n)
	}
	if u := m.doc.BackgroundURL(); u != nil && m.doc.BackgroundImage() == nil {
		status += " | Background loading"
	}
	if err := m.doc.LastSaveError(); err != nil {
		status += " | Not saved"
	}
	if m.successMessage != "" {
		status += fmt.Sprintf(" | %s", m.successMessage)
	}
	if m.errorMessage != "" {
		return statusStyle.Render(status) + errorStyle.Render(" | ERROR: "+m.errorMessage)
	}
	if m.successMessage == "" {
		status += " | ? for help | q to quit"
	}
	return statusStyle.Render(status)
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit EmojiArt? (y/n)"
	case ConfirmClear:
		return "Clear the whole document? This cannot be undone. (y/n)"
	case ConfirmDeleteSelected:
		return fmt.Sprintf("Delete %d selected emoji? (y/n)", m.doc.SelectionCount())
	case ConfirmOverwriteFile:
		return fmt.Sprintf("%s exists. Overwrite? (y/n)", m.filename)
	}
	return "(y/n)"
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeURLInput:
		return "URL"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"EmojiArt Help",
	"=============",
	"",
	"Mouse:",
	"------",
	"  Drag palette emoji   Drop it onto the canvas",
	"  Click emoji          Toggle selection",
	"  Click empty canvas   Deselect all (double click fits the background)",
	"  Drag selected emoji  Move the whole selection",
	"  Drag empty canvas    Pan",
	"  Wheel                Zoom",
	"  Ctrl/Alt+Wheel       Resize selected emoji",
	"  Delete / Clear       Buttons at the right of the palette",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→      Move cursor",
	"  Shift+h/j/k/l        Move selected emoji one cell",
	"  z                    Toggle pan mode (direction keys pan the canvas)",
	"  +/-                  Zoom in/out",
	"  0                    Reset zoom and pan",
	"  f                    Fit background to the window",
	"",
	"Editing:",
	"--------",
	"  1-6                  Drop a palette emoji at the cursor",
	"  p                    Drop clipboard contents at the cursor",
	"                       (a URL sets the background, text becomes an emoji)",
	"  Space/Enter          Tap at the cursor",
	"  ]/[                  Grow/shrink selected emoji",
	"  d                    Delete selected emoji",
	"  b                    Set background URL",
	"  C                    Clear the document",
	"  u                    Undo",
	"  U/Ctrl+R             Redo",
	"",
	"Files:",
	"------",
	"  S                    Export PNG",
	"  s                    Export JSON",
	"  y                    Copy document JSON to the clipboard",
	"",
	"General:",
	"  Esc                  Deselect all / cancel",
	"  ?                    Toggle this help screen",
	"  q/Ctrl+C             Quit",
}

func (m model) helpView() string {
	visibleHeight := m.height - 1
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	startLine := m.helpScroll
	if maxStart := len(helpLines) - visibleHeight; startLine > maxStart {
		startLine = max(maxStart, 0)
	}
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	statusLine := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result + "\n" + statusLine
}
