package main

import (
	"math"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"emojiart/internal/emojiart"
	"emojiart/internal/viewport"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/gg"
	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
)

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// canvasCells is the size of the drawing area in terminal cells.
func (m *model) canvasCells() (int, int) {
	cols := m.width
	rows := m.height - paletteRows - statusRows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m *model) viewSize() viewport.Size {
	cols, rows := m.canvasCells()
	return viewport.Size{Width: float64(cols) * cellWidth, Height: float64(rows) * cellHeight}
}

// cellCenter maps a canvas cell to the view point at its center.
func cellCenter(col, row int) gg.Point {
	return gg.Point{
		X: float64(col)*cellWidth + cellWidth/2,
		Y: float64(row)*cellHeight + cellHeight/2,
	}
}

type cellRect struct {
	left, top, right, bottom int
}

func (r cellRect) contains(col, row int) bool {
	return col >= r.left && col < r.right && row >= r.top && row < r.bottom
}

// emojiLayout places an emoji on the cell grid. glyphCol and row locate the
// rendered text; hit is the area that responds to the mouse.
func (m *model) emojiLayout(e emojiart.Emoji) (glyphCol, row int, hit cellRect) {
	p := m.view.ViewPoint(m.viewSize(), gg.Point{X: float64(e.X), Y: float64(e.Y)}, m.drag.carries(e.ID))
	w := lipgloss.Width(e.Text)
	if w < 1 {
		w = 1
	}
	glyphCol = int(math.Floor(p.X/cellWidth - float64(w)/2 + 0.5))
	row = int(math.Floor(p.Y / cellHeight))

	half := float64(e.Size) * m.view.ZoomScale() / 2
	hit = cellRect{
		left:   int(math.Floor((p.X - half) / cellWidth)),
		top:    int(math.Floor((p.Y - half) / cellHeight)),
		right:  int(math.Ceil((p.X + half) / cellWidth)),
		bottom: int(math.Ceil((p.Y + half) / cellHeight)),
	}
	hit.left = min(hit.left, glyphCol)
	hit.right = max(hit.right, glyphCol+w)
	hit.top = min(hit.top, row)
	hit.bottom = max(hit.bottom, row+1)
	return glyphCol, row, hit
}

// emojiAt returns the topmost emoji under a canvas cell.
func (m *model) emojiAt(col, row int) (int, bool) {
	emojis := m.doc.Emojis()
	for i := len(emojis) - 1; i >= 0; i-- {
		if _, _, hit := m.emojiLayout(emojis[i]); hit.contains(col, row) {
			return emojis[i].ID, true
		}
	}
	return 0, false
}

// drop accepts a payload released at a view point. A URL becomes the
// background; any other text becomes an emoji. Returns false if nothing was
// accepted.
func (m *model) drop(payload string, at gg.Point) bool {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return false
	}
	if u, ok := parseDropURL(payload); ok {
		m.doc.SetBackgroundURL(u)
		m.logger.Info("background dropped", "url", u.String())
		return true
	}
	text, _, _ := strings.Cut(payload, "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	p := m.view.DocumentPoint(m.viewSize(), at)
	m.doc.AddEmoji(text, int(math.Round(p.X)), int(math.Round(p.Y)), m.config.DefaultEmojiSize)
	return true
}

// parseDropURL recognizes absolute http(s) and file URLs, and absolute paths
// to existing files.
func parseDropURL(text string) (*url.URL, bool) {
	if strings.ContainsAny(text, " \n\t") {
		return nil, false
	}
	if u, err := url.Parse(text); err == nil && u.IsAbs() {
		switch u.Scheme {
		case "http", "https":
			return u, u.Host != ""
		case "file":
			return u, u.Path != ""
		}
		return nil, false
	}
	path := expandHome(text)
	if !filepath.IsAbs(path) {
		return nil, false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, false
	}
	return &url.URL{Scheme: "file", Path: path}, true
}

func splitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
		if output, err := exec.Command("pbpaste").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div") || strings.Contains(text, "<a "))
}

// extractFromHTML prefers the first link or image source in copied markup so
// a copied image drops as a background. Otherwise it returns the text.
func extractFromHTML(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	var href string
	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && href == "" {
			for _, a := range n.Attr {
				if (n.Data == "img" && a.Key == "src") || (n.Data == "a" && a.Key == "href") {
					href = a.Val
				}
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if href != "" {
		return href
	}
	return text.String()
}

func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	switch {
	case isRTF(text):
		text = stripRTF(text)
	case isHTML(text):
		text = extractFromHTML(text)
	}
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	normalized := result.String()
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return normalized
}

func stripRTF(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' || r == '}' {
			continue
		}
		if r != '\\' {
			result.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		switch {
		case (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z'):
			// Control word, optionally followed by one space.
			i++
			for i < len(runes) && runes[i] != ' ' && runes[i] != '\\' && runes[i] != '{' && runes[i] != '}' {
				i++
			}
			if i >= len(runes) || runes[i] != ' ' {
				i--
			}
		case next == '\\' || next == '{' || next == '}' || next == '\n' || next == '\r' || next == '\t':
			result.WriteRune(next)
			i++
		}
	}
	return result.String()
}
