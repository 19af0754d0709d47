// Package emojiart holds the persisted canvas document: a background image URL
// and the emoji placed on it.
package emojiart

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Emoji is a glyph placed on the canvas. X and Y are relative to the canvas
// center, in document units.
type Emoji struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size int    `json:"size"`
}

// EmojiArt is the canvas document. The zero value is not usable; use New or
// Decode.
type EmojiArt struct {
	BackgroundURL *url.URL

	emojis []Emoji
	index  map[int]int
	nextID int
}

func New() *EmojiArt {
	return &EmojiArt{
		emojis: make([]Emoji, 0),
		index:  make(map[int]int),
	}
}

// AddEmoji appends an emoji and returns its ID. IDs are never reused. Invalid
// UTF-8 in text is replaced with U+FFFD so the document encodes losslessly.
func (e *EmojiArt) AddEmoji(text string, x, y, size int) int {
	id := e.nextID
	e.nextID++
	e.index[id] = len(e.emojis)
	e.emojis = append(e.emojis, Emoji{
		ID:   id,
		Text: strings.ToValidUTF8(text, "\uFFFD"),
		X:    x,
		Y:    y,
		Size: size,
	})
	return id
}

// RemoveEmoji removes the emoji with the given ID. Unknown IDs are ignored.
func (e *EmojiArt) RemoveEmoji(id int) {
	i, ok := e.index[id]
	if !ok {
		return
	}
	e.emojis = append(e.emojis[:i], e.emojis[i+1:]...)
	delete(e.index, id)
	for j := i; j < len(e.emojis); j++ {
		e.index[e.emojis[j].ID] = j
	}
}

func (e *EmojiArt) UpdatePosition(id, x, y int) bool {
	i, ok := e.index[id]
	if !ok {
		return false
	}
	e.emojis[i].X = x
	e.emojis[i].Y = y
	return true
}

func (e *EmojiArt) UpdateSize(id, size int) bool {
	i, ok := e.index[id]
	if !ok {
		return false
	}
	e.emojis[i].Size = size
	return true
}

// Emoji looks up an emoji by ID.
func (e *EmojiArt) Emoji(id int) (Emoji, bool) {
	i, ok := e.index[id]
	if !ok {
		return Emoji{}, false
	}
	return e.emojis[i], true
}

// Emojis returns a copy of the emoji in draw order.
func (e *EmojiArt) Emojis() []Emoji {
	out := make([]Emoji, len(e.emojis))
	copy(out, e.emojis)
	return out
}

func (e *EmojiArt) Len() int {
	return len(e.emojis)
}

// NextID is the ID the next AddEmoji call will assign.
func (e *EmojiArt) NextID() int {
	return e.nextID
}

// Clone returns a deep copy.
func (e *EmojiArt) Clone() *EmojiArt {
	c := &EmojiArt{
		emojis: e.Emojis(),
		index:  make(map[int]int, len(e.index)),
		nextID: e.nextID,
	}
	for id, i := range e.index {
		c.index[id] = i
	}
	if e.BackgroundURL != nil {
		u := *e.BackgroundURL
		c.BackgroundURL = &u
	}
	return c
}

// Equal reports whether both documents hold the same URL, emoji and ID
// counter.
func (e *EmojiArt) Equal(o *EmojiArt) bool {
	if e == nil || o == nil {
		return e == o
	}
	if backgroundString(e.BackgroundURL) != backgroundString(o.BackgroundURL) {
		return false
	}
	if e.nextID != o.nextID || len(e.emojis) != len(o.emojis) {
		return false
	}
	for i := range e.emojis {
		if e.emojis[i] != o.emojis[i] {
			return false
		}
	}
	return true
}

type document struct {
	BackgroundURL string  `json:"backgroundURL,omitempty"`
	Emojis        []Emoji `json:"emojis"`
	NextID        int     `json:"nextID"`
}

// JSON encodes the document.
func (e *EmojiArt) JSON() ([]byte, error) {
	return json.Marshal(document{
		BackgroundURL: backgroundString(e.BackgroundURL),
		Emojis:        e.emojis,
		NextID:        e.nextID,
	})
}

// Decode parses bytes produced by JSON. Any failure is a *DecodeError.
func Decode(data []byte) (*EmojiArt, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Err: err}
	}

	art := New()
	if doc.BackgroundURL != "" {
		u, err := url.Parse(doc.BackgroundURL)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		art.BackgroundURL = u
	}

	if doc.NextID < 0 {
		return nil, &DecodeError{Err: fmt.Errorf("negative next id %d", doc.NextID)}
	}
	art.nextID = doc.NextID
	for _, emoji := range doc.Emojis {
		if _, dup := art.index[emoji.ID]; dup {
			return nil, &DecodeError{Err: fmt.Errorf("duplicate emoji id %d", emoji.ID)}
		}
		if emoji.ID < 0 {
			return nil, &DecodeError{Err: fmt.Errorf("negative emoji id %d", emoji.ID)}
		}
		if emoji.ID == math.MaxInt {
			return nil, &DecodeError{Err: fmt.Errorf("emoji id %d leaves no next id", emoji.ID)}
		}
		art.index[emoji.ID] = len(art.emojis)
		art.emojis = append(art.emojis, emoji)
		if emoji.ID >= art.nextID {
			art.nextID = emoji.ID + 1
		}
	}
	return art, nil
}

// DecodeError reports malformed persisted bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode emoji art: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func backgroundString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
