package session

import "slices"

// notNavigating is the recall cursor value outside of navigation.
const notNavigating = -1

// History is the recall list of submitted commands with cursor navigation.
// Unlike the transcript it keeps every accepted submission, duplicates
// included, and never holds blank entries.
type History struct {
	entries []string
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates an empty recall history.
func NewHistory() *History {
	return &History{cursor: notNavigating}
}

// Push appends a submitted command.
func (h *History) Push(cmd string) {
	h.entries = append(h.entries, cmd)
}

// Prev moves toward the oldest entry, starting from the newest when not
// navigating. Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == notNavigating {
		h.cursor = len(h.entries) - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves toward the newest entry. Stepping past it ends navigation and
// returns ("", true) so the caller clears the input. Returns ("", false)
// when not navigating.
func (h *History) Next() (string, bool) {
	if h.cursor == notNavigating {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = notNavigating
		return "", true
	}
	return h.entries[h.cursor], true
}

// ResetCursor resets the navigation cursor to the "not navigating" state.
func (h *History) ResetCursor() {
	h.cursor = notNavigating
}

// Cursor returns the navigation index, -1 when not navigating.
func (h *History) Cursor() int {
	return h.cursor
}

// Navigating reports whether a recall is in progress.
func (h *History) Navigating() bool {
	return h.cursor != notNavigating
}

// Entries returns a copy of the recall list, oldest first.
func (h *History) Entries() []string {
	return slices.Clone(h.entries)
}

func (h *History) Len() int {
	return len(h.entries)
}
