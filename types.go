package main

import (
	"log/slog"
	"slices"
	"time"

	"emojiart/internal/document"
	"emojiart/internal/viewport"
)

type model struct {
	width         int
	height        int
	cursorX       int
	cursorY       int
	zPanMode      bool
	mode          Mode
	help          bool
	helpScroll    int
	doc           *document.Document
	view          *viewport.Viewport
	drag          dragState
	lastTap       time.Time
	now           func() time.Time
	input         string
	filename      string
	fileOp        FileOperation
	confirmAction ConfirmAction
	palette       []string
	config        *Config
	logger        *slog.Logger
	notes         *notes
	bgCache       *backgroundCache

	errorMessage   string
	successMessage string
}

// dragState tracks one mouse gesture from press to release. Positions are in
// terminal cells. selected is the selection at press time when a selected
// emoji was grabbed; only those emoji follow the drag.
type dragState struct {
	kind     dragKind
	startX   int
	startY   int
	lastX    int
	lastY    int
	moved    bool
	emojiID  int
	text     string
	selected []int
}

func (d dragState) carries(id int) bool {
	return slices.Contains(d.selected, id)
}

func (d dragState) translation() (dx, dy float64) {
	return float64(d.lastX-d.startX) * cellWidth, float64(d.lastY-d.startY) * cellHeight
}

// notes collects document events delivered between frames. The model is
// copied on every Update, so subscribers write here instead.
type notes struct {
	message string
}

// dispatchMsg carries work posted by the document onto the program loop.
type dispatchMsg struct {
	fn func()
}

// paletteItem is a clickable span of the palette bar.
type paletteItem struct {
	start  int
	end    int
	text   string
	action string
}
