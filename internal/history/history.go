// Package history manages the undo/redo history of one image.
package history

import (
	"errors"
	"fmt"

	"hdrview/internal/hdrimage"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 100

// Command is a reversible edit. Apply must be a pure function of its input:
// it returns the edited image and a command that undoes the edit. A non-nil
// error rejects the edit and leaves the history untouched.
type Command interface {
	Name() string
	Apply(img *hdrimage.Image) (*hdrimage.Image, Command, error)
}

// EditHistory owns an image and the commands applied to it.
//
// The position in the history is len(undo). The checkpoint is the position of
// the last persisted state, or -1 once that state can no longer be reached.
type EditHistory struct {
	image      *hdrimage.Image
	undo       []entry
	redo       []entry
	capacity   int
	checkpoint int
	version    uint64
}

// entry is one history step: the command that crosses it and the name of the
// edit that created it.
type entry struct {
	name string
	cmd  Command
}

// New creates a history for img with the checkpoint at the initial state.
func New(img *hdrimage.Image, capacity int) *EditHistory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if img == nil {
		img = hdrimage.New(0, 0)
	}
	return &EditHistory{
		image:    img,
		undo:     make([]entry, 0, capacity),
		capacity: capacity,
	}
}

func (h *EditHistory) Image() *hdrimage.Image { return h.image }
func (h *EditHistory) Capacity() int          { return h.capacity }
func (h *EditHistory) HasUndo() bool          { return len(h.undo) > 0 }
func (h *EditHistory) HasRedo() bool          { return len(h.redo) > 0 }
func (h *EditHistory) UndoLen() int           { return len(h.undo) }
func (h *EditHistory) RedoLen() int           { return len(h.redo) }

// Version is bumped on every accepted apply, undo and redo.
func (h *EditHistory) Version() uint64 { return h.version }

// IsModified reports whether the image differs from the last checkpoint.
func (h *EditHistory) IsModified() bool {
	return len(h.undo) != h.checkpoint
}

// ResetCheckpoint marks the current state as persisted.
func (h *EditHistory) ResetCheckpoint() {
	h.checkpoint = len(h.undo)
}

// UndoName returns the name of the edit Undo would revert.
func (h *EditHistory) UndoName() (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	return h.undo[len(h.undo)-1].name, true
}

// RedoName returns the name of the edit Redo would reapply.
func (h *EditHistory) RedoName() (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	return h.redo[len(h.redo)-1].name, true
}

// Apply runs cmd on the current image and records its inverse.
// Any redo history is discarded.
func (h *EditHistory) Apply(cmd Command) error {
	if cmd == nil {
		return errors.New("nil command")
	}
	img, inverse, err := cmd.Apply(h.image)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	if img == nil || inverse == nil {
		return fmt.Errorf("%s: command returned no result", cmd.Name())
	}

	// A checkpoint inside the discarded redo region is gone for good.
	if h.checkpoint > len(h.undo) {
		h.checkpoint = -1
	}
	h.redo = h.redo[:0]

	h.image = img
	h.undo = append(h.undo, entry{name: cmd.Name(), cmd: inverse})
	h.version++

	// Trim from the bottom, shifting the checkpoint with it.
	if len(h.undo) > h.capacity {
		drop := len(h.undo) - h.capacity
		h.undo = append(h.undo[:0], h.undo[drop:]...)
		if h.checkpoint >= drop {
			h.checkpoint -= drop
		} else {
			h.checkpoint = -1
		}
	}
	return nil
}

// Undo reverts the most recent edit. It returns false when there is nothing
// to undo or the inverse could not be applied; the history is then unchanged.
func (h *EditHistory) Undo() bool {
	return h.step(&h.undo, &h.redo)
}

// Redo reapplies the most recently undone edit.
func (h *EditHistory) Redo() bool {
	return h.step(&h.redo, &h.undo)
}

func (h *EditHistory) step(from, to *[]entry) bool {
	n := len(*from)
	if n == 0 {
		return false
	}
	e := (*from)[n-1]
	img, inverse, err := e.cmd.Apply(h.image)
	if err != nil || img == nil || inverse == nil {
		return false
	}
	*from = (*from)[:n-1]
	*to = append(*to, entry{name: e.name, cmd: inverse})
	h.image = img
	h.version++
	return true
}

// Clear drops all undo and redo entries but keeps the image.
func (h *EditHistory) Clear() {
	modified := h.IsModified()
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
	if modified {
		h.checkpoint = -1
	} else {
		h.checkpoint = 0
	}
}
