// Package document is the controller between the persisted emoji art and the
// terminal UI. Every mutation goes through a named intent which updates the
// model, saves it, and then notifies subscribers.
//
// A Document is owned by a single execution context (the UI loop). Intents and
// reads must run there; background fetches hand their results back through
// the Dispatcher.
package document

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"sync"

	"emojiart/internal/emojiart"
	"emojiart/internal/fetch"
	"emojiart/internal/store"
)

// StorageKey is the slot the document snapshot lives in.
const StorageKey = "EmojiArtDocument.Untitled"

const defaultHistoryLimit = 100

// Dispatcher runs fn on the document's owning execution context.
type Dispatcher func(fn func())

// Change describes what an intent touched.
type Change int

const (
	ChangeDocument Change = 1 << iota
	ChangeSelection
	ChangeBackground
)

func (c Change) Has(o Change) bool {
	return c&o != 0
}

type subscriber struct {
	id int
	fn func(Change)
}

type Document struct {
	store        store.Store
	fetcher      fetch.Fetcher
	logger       *slog.Logger
	dispatch     Dispatcher
	historyLimit int

	art        *emojiart.EmojiArt
	selected   map[int]struct{}
	background image.Image
	undoStack  []*emojiart.EmojiArt
	redoStack  []*emojiart.EmojiArt

	subscribers []subscriber
	nextSubID   int
	lastSaveErr error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Document)

func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatcher sets how fetch results reach the owning context. The default
// runs them on the fetching goroutine, which is only safe when nothing else
// touches the Document concurrently.
func WithDispatcher(fn Dispatcher) Option {
	return func(d *Document) {
		if fn != nil {
			d.dispatch = fn
		}
	}
}

// WithHistoryLimit bounds the undo stack. Zero disables undo.
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		if n >= 0 {
			d.historyLimit = n
		}
	}
}

// New creates an empty Document. Call Initialize to load the persisted one.
func New(s store.Store, f fetch.Fetcher, opts ...Option) *Document {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Document{
		store:        s,
		fetcher:      f,
		logger:       slog.Default(),
		dispatch:     func(fn func()) { fn() },
		historyLimit: defaultHistoryLimit,
		art:          emojiart.New(),
		selected:     map[int]struct{}{},
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "document")
	return d
}

// Initialize loads the persisted snapshot, falling back to an empty document
// when it is missing or malformed, and starts fetching the background.
func (d *Document) Initialize(ctx context.Context) {
	data, err := d.store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		d.logger.Debug("no saved document")
	case err != nil:
		d.logger.Warn("failed to read saved document", "error", err)
	default:
		art, err := emojiart.Decode(data)
		if err != nil {
			d.logger.Warn("discarding malformed saved document", "error", err)
		} else {
			d.art = art
			d.logger.Info("loaded document", "emojis", art.Len())
		}
	}
	d.selected = map[int]struct{}{}
	d.undoStack = nil
	d.redoStack = nil
	d.fetchBackground()
	d.notify(ChangeDocument | ChangeSelection | ChangeBackground)
}

// Close stops in-flight fetches and waits for them to return.
func (d *Document) Close() {
	d.cancel()
	d.wg.Wait()
}

// Subscribe registers fn to run after every successful intent. The returned
// func removes it.
func (d *Document) Subscribe(fn func(Change)) func() {
	id := d.nextSubID
	d.nextSubID++
	d.subscribers = append(d.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range d.subscribers {
			if s.id == id {
				d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) notify(c Change) {
	for _, s := range append([]subscriber(nil), d.subscribers...) {
		s.fn(c)
	}
}

// Save writes the full snapshot to the store. Failures are logged and kept for
// LastSaveError.
func (d *Document) Save(ctx context.Context) error {
	data, err := d.art.JSON()
	if err == nil {
		err = d.store.Set(ctx, StorageKey, data)
	}
	d.lastSaveErr = err
	if err != nil {
		d.logger.Error("failed to save document", "error", err)
	}
	return err
}

func (d *Document) LastSaveError() error {
	return d.lastSaveErr
}

// commit finishes a document mutation.
func (d *Document) commit(c Change) {
	_ = d.Save(d.ctx)
	d.notify(ChangeDocument | c)
}

// AddEmoji places text at (x, y) in document coordinates.
func (d *Document) AddEmoji(text string, x, y, size int) int {
	d.pushHistory()
	id := d.art.AddEmoji(text, x, y, size)
	d.logger.Debug("added emoji", "id", id, "text", text, "x", x, "y", y, "size", size)
	d.commit(0)
	return id
}

// MoveEmoji offsets an emoji by (dx, dy) document units.
func (d *Document) MoveEmoji(id, dx, dy int) bool {
	e, ok := d.art.Emoji(id)
	if !ok {
		return false
	}
	d.pushHistory()
	d.art.UpdatePosition(id, e.X+dx, e.Y+dy)
	d.commit(0)
	return true
}

// MoveEmojis offsets every listed emoji as one undoable step and returns how
// many were found.
func (d *Document) MoveEmojis(ids []int, dx, dy int) int {
	var found []emojiart.Emoji
	for _, id := range ids {
		if e, ok := d.art.Emoji(id); ok {
			found = append(found, e)
		}
	}
	if len(found) == 0 {
		return 0
	}
	d.pushHistory()
	for _, e := range found {
		d.art.UpdatePosition(e.ID, e.X+dx, e.Y+dy)
	}
	d.commit(0)
	return len(found)
}

// ScaleEmoji multiplies an emoji's size by factor, rounding half to even. The
// result is never below 1. Non-finite factors are rejected.
func (d *Document) ScaleEmoji(id int, factor float64) bool {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	e, ok := d.art.Emoji(id)
	if !ok {
		return false
	}
	d.pushHistory()
	d.art.UpdateSize(id, ScaledSize(e.Size, factor))
	d.commit(0)
	return true
}

// ScaleEmojis scales every listed emoji as one undoable step and returns how
// many were found.
func (d *Document) ScaleEmojis(ids []int, factor float64) int {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 0
	}
	var found []emojiart.Emoji
	for _, id := range ids {
		if e, ok := d.art.Emoji(id); ok {
			found = append(found, e)
		}
	}
	if len(found) == 0 {
		return 0
	}
	d.pushHistory()
	for _, e := range found {
		d.art.UpdateSize(e.ID, ScaledSize(e.Size, factor))
	}
	d.commit(0)
	return len(found)
}

// ScaledSize is size*factor rounded half to even and clamped to [1, MaxInt32].
func ScaledSize(size int, factor float64) int {
	s := math.RoundToEven(float64(size) * factor)
	switch {
	case math.IsNaN(s) || s < 1:
		return 1
	case s > math.MaxInt32:
		return math.MaxInt32
	}
	return int(s)
}

// SetBackgroundURL normalizes and stores u (nil clears it), drops the current
// image and starts fetching the new one.
func (d *Document) SetBackgroundURL(u *url.URL) {
	d.pushHistory()
	d.art.BackgroundURL = emojiart.NormalizeImageURL(u)
	d.fetchBackground()
	d.commit(ChangeBackground)
}

func (d *Document) ToggleSelected(id int) {
	if _, ok := d.selected[id]; ok {
		delete(d.selected, id)
	} else {
		d.selected[id] = struct{}{}
	}
	d.notify(ChangeSelection)
}

func (d *Document) IsSelected(id int) bool {
	_, ok := d.selected[id]
	return ok
}

func (d *Document) DeselectAll() {
	if len(d.selected) == 0 {
		return
	}
	d.selected = map[int]struct{}{}
	d.notify(ChangeSelection)
}

// Selected returns the selected IDs in ascending order.
func (d *Document) Selected() []int {
	ids := make([]int, 0, len(d.selected))
	for id := range d.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d *Document) SelectionCount() int {
	return len(d.selected)
}

// RemoveSelectedEmojis deletes every selected emoji still in the document and
// empties the selection.
func (d *Document) RemoveSelectedEmojis() {
	if len(d.selected) == 0 {
		return
	}
	var ids []int
	for id := range d.selected {
		if _, ok := d.art.Emoji(id); ok {
			ids = append(ids, id)
		}
	}
	d.selected = map[int]struct{}{}
	if len(ids) == 0 {
		d.notify(ChangeSelection)
		return
	}

	d.pushHistory()
	for _, id := range ids {
		d.art.RemoveEmoji(id)
	}
	d.logger.Debug("removed selected emojis", "count", len(ids))
	d.commit(ChangeSelection)
}

// Clear empties the document, drops the background and deletes the saved
// snapshot. History is discarded.
func (d *Document) Clear() {
	d.art = emojiart.New()
	d.background = nil
	d.selected = map[int]struct{}{}
	d.undoStack = nil
	d.redoStack = nil
	err := d.store.Delete(d.ctx, StorageKey)
	d.lastSaveErr = err
	if err != nil {
		d.logger.Error("failed to delete saved document", "error", err)
	}
	d.logger.Info("cleared document")
	d.notify(ChangeDocument | ChangeSelection | ChangeBackground)
}

func (d *Document) Emojis() []emojiart.Emoji {
	return d.art.Emojis()
}

func (d *Document) Emoji(id int) (emojiart.Emoji, bool) {
	return d.art.Emoji(id)
}

// BackgroundURL returns a copy of the current background URL, or nil.
func (d *Document) BackgroundURL() *url.URL {
	if d.art.BackgroundURL == nil {
		return nil
	}
	u := *d.art.BackgroundURL
	return &u
}

// BackgroundImage is the decoded background, or nil while absent.
func (d *Document) BackgroundImage() image.Image {
	return d.background
}

// Snapshot returns a deep copy of the document.
func (d *Document) Snapshot() *emojiart.EmojiArt {
	return d.art.Clone()
}
