// Package tui provides a Bubble Tea terminal UI for the game engine.
package tui

// History keeps the most recent commands for Up/Down recall.
type History struct {
	entries []string
	max     int
	back    int // steps back from the newest entry; 0 = not navigating
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a command. Repeating the previous command is not recorded
// twice; the oldest command drops off once the history is full.
func (h *History) Push(cmd string) {
	if h.max <= 0 {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, cmd)
}

// Prev steps to an older command and stays on the oldest one.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.at(), true
}

// Next steps to a newer command. Stepping past the newest returns false
// and leaves navigation.
func (h *History) Next() (string, bool) {
	if h.back == 0 {
		return "", false
	}
	h.back--
	if h.back == 0 {
		return "", false
	}
	return h.at(), true
}

// ResetCursor leaves navigation; the next Prev starts from the newest.
func (h *History) ResetCursor() {
	h.back = 0
}

func (h *History) at() string {
	return h.entries[len(h.entries)-h.back]
}
