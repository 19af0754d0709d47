package document

import "emojiart/internal/emojiart"

// pushHistory records the current document before a mutation and clears the
// redo stack.
func (d *Document) pushHistory() {
	d.redoStack = d.redoStack[:0]
	if d.historyLimit == 0 {
		return
	}
	d.undoStack = append(d.undoStack, d.art.Clone())
	if over := len(d.undoStack) - d.historyLimit; over > 0 {
		d.undoStack = d.undoStack[over:]
	}
}

func (d *Document) CanUndo() bool {
	return len(d.undoStack) > 0
}

func (d *Document) CanRedo() bool {
	return len(d.redoStack) > 0
}

// Undo restores the document as it was before the last mutation.
func (d *Document) Undo() bool {
	if len(d.undoStack) == 0 {
		return false
	}
	last := len(d.undoStack) - 1
	prev := d.undoStack[last]
	d.undoStack = d.undoStack[:last]
	d.redoStack = append(d.redoStack, d.art)
	d.restore(prev)
	return true
}

// Redo reapplies the last undone mutation.
func (d *Document) Redo() bool {
	if len(d.redoStack) == 0 {
		return false
	}
	last := len(d.redoStack) - 1
	next := d.redoStack[last]
	d.redoStack = d.redoStack[:last]
	d.undoStack = append(d.undoStack, d.art)
	d.restore(next)
	return true
}

func (d *Document) restore(art *emojiart.EmojiArt) {
	oldURL := urlString(d.art)
	d.art = art

	c := Change(0)
	for id := range d.selected {
		if _, ok := d.art.Emoji(id); !ok {
			delete(d.selected, id)
			c |= ChangeSelection
		}
	}
	if urlString(art) != oldURL {
		d.fetchBackground()
		c |= ChangeBackground
	}
	d.commit(c)
}

func urlString(art *emojiart.EmojiArt) string {
	if art.BackgroundURL == nil {
		return ""
	}
	return art.BackgroundURL.String()
}
