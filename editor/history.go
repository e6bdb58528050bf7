package editor

import "reflect"

// DefaultHistoryDepth is the number of undo steps kept when Options leaves the
// depth unset.
const DefaultHistoryDepth = 64

// History keeps snapshots of the document for undo and redo. Both stacks are
// bounded: once full, pushing drops the oldest entry.
type History struct {
	undo, redo stack

	gestureDepth  int
	gestureName   string
	gestureBefore Document
}

// NewHistory returns a history keeping at most depth entries per direction.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{undo: newStack(depth), redo: newStack(depth)}
}

func (h *History) CanUndo() bool { return h.undo.len() > 0 }
func (h *History) CanRedo() bool { return h.redo.len() > 0 }

// InGesture reports whether a gesture is open, and its name.
func (h *History) InGesture() (string, bool) { return h.gestureName, h.gestureDepth > 0 }

// Record stores the document as it was before a change. Inside a gesture the
// snapshot taken at BeginGesture stands for the whole gesture instead. Record
// reports whether the oldest entry had to be dropped to make room.
func (h *History) Record(before Document) (dropped bool) {
	if h.gestureDepth > 0 {
		return false
	}
	h.redo.clear()
	return h.undo.push(before)
}

// Begin opens a gesture, or nests into the open one.
func (h *History) Begin(name string, current Document) {
	h.gestureDepth++
	if h.gestureDepth > 1 {
		return
	}
	h.gestureName = name
	h.gestureBefore = current.Copy()
}

// End closes one level of gesture. When the outermost level closes and the
// document differs from the one at Begin, a single entry is recorded. End
// reports whether an entry was recorded.
func (h *History) End(current Document) bool {
	if h.gestureDepth == 0 {
		return false
	}
	h.gestureDepth--
	if h.gestureDepth > 0 {
		return false
	}
	before := h.gestureBefore
	h.gestureBefore = Document{}
	h.gestureName = ""
	if reflect.DeepEqual(before, current.Copy()) {
		return false
	}
	h.undo.push(before)
	h.redo.clear()
	return true
}

// Close ends the open gesture however deeply nested, with the same result as
// the outermost End.
func (h *History) Close(current Document) bool {
	h.gestureDepth = min(h.gestureDepth, 1)
	return h.End(current)
}

// Undo returns the previous document, saving current for Redo.
func (h *History) Undo(current Document) (Document, bool) {
	prev, ok := h.undo.pop()
	if !ok {
		return current, false
	}
	h.redo.push(current)
	return prev, true
}

// Redo returns the next document, saving current for Undo.
func (h *History) Redo(current Document) (Document, bool) {
	next, ok := h.redo.pop()
	if !ok {
		return current, false
	}
	h.undo.push(current)
	return next, true
}

// Clear forgets every entry and closes any open gesture.
func (h *History) Clear() {
	h.undo.clear()
	h.redo.clear()
	h.gestureDepth = 0
	h.gestureName = ""
	h.gestureBefore = Document{}
}

// stack is a LIFO over a ring buffer that overwrites its oldest element when
// full.
type stack struct {
	buf      []Document
	start, n int
}

func newStack(size int) stack { return stack{buf: make([]Document, size)} }

func (s *stack) len() int { return s.n }

// push reports whether the oldest element was overwritten.
func (s *stack) push(d Document) bool {
	if s.n == len(s.buf) {
		s.buf[s.start] = d
		s.start = (s.start + 1) % len(s.buf)
		return true
	}
	s.buf[(s.start+s.n)%len(s.buf)] = d
	s.n++
	return false
}

func (s *stack) pop() (Document, bool) {
	if s.n == 0 {
		return Document{}, false
	}
	i := (s.start + s.n - 1) % len(s.buf)
	d := s.buf[i]
	s.buf[i] = Document{}
	s.n--
	return d, true
}

func (s *stack) clear() {
	clear(s.buf)
	s.start, s.n = 0, 0
}
