// Package workspace keeps the list of open documents and the current and
// reference selections.
package workspace

import (
	"hdrview/internal/document"
)

// None marks an empty selection.
const None = -1

// Workspace owns every open Document. Viewers refer to documents by index.
type Workspace struct {
	docs      []*document.Document
	current   int
	reference int
}

// New returns an empty workspace.
func New() *Workspace {
	return &Workspace{current: None, reference: None}
}

func (w *Workspace) Len() int            { return len(w.docs) }
func (w *Workspace) CurrentIndex() int   { return w.current }
func (w *Workspace) ReferenceIndex() int { return w.reference }

// At returns the document at i, or nil when i is out of range.
func (w *Workspace) At(i int) *document.Document {
	if i < 0 || i >= len(w.docs) {
		return nil
	}
	return w.docs[i]
}

// Current returns the selected document or nil.
func (w *Workspace) Current() *document.Document { return w.At(w.current) }

// Reference returns the comparison document or nil.
func (w *Workspace) Reference() *document.Document { return w.At(w.reference) }

// Add appends doc, makes it current and returns its index.
func (w *Workspace) Add(doc *document.Document) int {
	w.docs = append(w.docs, doc)
	w.current = len(w.docs) - 1
	return w.current
}

// IndexOf returns the index of the document opened from filename, or None.
func (w *Workspace) IndexOf(filename string) int {
	for i, d := range w.docs {
		if d.Filename() == filename {
			return i
		}
	}
	return None
}

// Select makes document i current.
func (w *Workspace) Select(i int) bool {
	if w.At(i) == nil {
		return false
	}
	w.current = i
	return true
}

// SelectNext moves the current selection by delta, wrapping around.
func (w *Workspace) SelectNext(delta int) bool {
	n := len(w.docs)
	if n == 0 {
		return false
	}
	i := ((w.current+delta)%n + n) % n
	return w.Select(i)
}

// SetReference selects document i for comparison. None clears it.
func (w *Workspace) SetReference(i int) bool {
	if i == None {
		w.reference = None
		return true
	}
	if w.At(i) == nil {
		return false
	}
	w.reference = i
	return true
}

// Close removes document i. If it was current, the previous document becomes
// current; if it was the reference, the reference is cleared.
func (w *Workspace) Close(i int) (*document.Document, bool) {
	doc := w.At(i)
	if doc == nil {
		return nil, false
	}
	w.docs = append(w.docs[:i], w.docs[i+1:]...)

	switch {
	case w.reference == i:
		w.reference = None
	case w.reference > i:
		w.reference--
	}

	if len(w.docs) == 0 {
		w.current = None
		return doc, true
	}
	if w.current >= i {
		w.current--
	}
	if w.current < 0 {
		w.current = 0
	}
	return doc, true
}

// ModifiedCount returns the number of documents with unsaved changes.
func (w *Workspace) ModifiedCount() int {
	n := 0
	for _, d := range w.docs {
		if d.IsModified() {
			n++
		}
	}
	return n
}

// Documents returns a copy of the document list.
func (w *Workspace) Documents() []*document.Document {
	out := make([]*document.Document, len(w.docs))
	copy(out, w.docs)
	return out
}
