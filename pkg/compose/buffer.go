// Package compose holds the commit buffer: text already chosen during a
// session, kept as discrete segments until final submission.
package compose

import (
	"errors"
	"strings"
)

// ErrNothingToDelete is reported when deleteBack runs with the cursor at
// the start of the buffer. Callers treat it as a cancel-routing signal.
var ErrNothingToDelete = errors.New("compose: cursor at start of buffer")

// Buffer accumulates committed characters and phrases with an edit
// cursor between segments. Each Commit is one undo unit, so commit and
// delete-back round-trip symmetrically.
type Buffer struct {
	segments []string
	cursor   int
}

// NewBuffer returns a buffer optionally seeded with initial text. Seed
// text is split into single characters so delete-back edits it one
// character at a time.
func NewBuffer(seed string) *Buffer {
	b := &Buffer{}
	for _, r := range seed {
		b.segments = append(b.segments, string(r))
	}
	b.cursor = len(b.segments)
	return b
}

// Commit inserts text at the cursor and advances past it.
func (b *Buffer) Commit(text string) {
	if text == "" {
		return
	}
	b.segments = append(b.segments, "")
	copy(b.segments[b.cursor+1:], b.segments[b.cursor:])
	b.segments[b.cursor] = text
	b.cursor++
}

// DeleteBack removes the segment immediately before the cursor.
func (b *Buffer) DeleteBack() error {
	if b.cursor == 0 {
		return ErrNothingToDelete
	}
	b.segments = append(b.segments[:b.cursor-1], b.segments[b.cursor:]...)
	b.cursor--
	return nil
}

// CursorLeft moves the cursor one segment toward the start.
func (b *Buffer) CursorLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// CursorRight moves the cursor one segment toward the end.
func (b *Buffer) CursorRight() {
	if b.cursor < len(b.segments) {
		b.cursor++
	}
}

// Cursor reports the cursor position in segments.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Len reports the number of committed segments.
func (b *Buffer) Len() int {
	return len(b.segments)
}

// String renders the current buffer contents.
func (b *Buffer) String() string {
	return strings.Join(b.segments, "")
}

// Clear empties the buffer, for session cancel.
func (b *Buffer) Clear() {
	b.segments = b.segments[:0]
	b.cursor = 0
}

// Finalize returns the full committed text and empties the buffer. It
// is the terminal operation of a session.
func (b *Buffer) Finalize() string {
	out := b.String()
	b.Clear()
	return out
}
