package runner

// windowSize is how many recent output lines the live progress view shows.
const windowSize = 10

// Window is a fixed-capacity sliding view over an append-only line log.
// Older lines drop out of the view but remain in the full accumulator kept
// by the caller.
type Window struct {
	capacity int
	lines    []string
}

// NewWindow creates a window holding at most capacity lines.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = windowSize
	}
	return &Window{capacity: capacity}
}

// Append adds a line, evicting the oldest once the window is full.
func (w *Window) Append(line string) {
	if len(w.lines) == w.capacity {
		copy(w.lines, w.lines[1:])
		w.lines[len(w.lines)-1] = line
		return
	}
	w.lines = append(w.lines, line)
}

// Snapshot returns a copy of the current view, oldest first.
func (w *Window) Snapshot() []string {
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}
