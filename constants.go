package main

import "time"

type Mode int

const (
	ModeNormal Mode = iota
	ModeURLInput
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpExportPNG FileOperation = iota
	FileOpExportJSON
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmClear
	ConfirmDeleteSelected
	ConfirmOverwriteFile
)

type dragKind int

const (
	dragNone dragKind = iota
	dragPalette
	dragEmoji
	dragCanvas
)

// palette is split into grapheme clusters at startup.
const palette = "⭐️⛈🍎🌏🥨⚾️"

const (
	defaultEmojiSize = 40

	// View space is measured in virtual pixels; one terminal cell covers
	// cellWidth x cellHeight of them.
	cellWidth  = 8.0
	cellHeight = 16.0

	pinchStep       = 1.1
	scaleStep       = 1.1
	doubleTapWindow = 400 * time.Millisecond

	paletteRows = 1
	statusRows  = 1
)
