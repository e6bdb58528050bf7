package noteroll

import (
	"cmp"
	"math"
	"slices"
)

// Note is a single MIDI note. Start and Duration are in ticks; a valid note
// has Start >= 0, Duration > 0 and Pitch and Velocity within 0..127.
type Note struct {
	ID       ID    `yaml:"id"`
	Start    int64 `yaml:"start"`
	Duration int64 `yaml:"duration"`
	Pitch    int   `yaml:"pitch"`
	Velocity int   `yaml:"velocity"`
}

// End returns the tick at which the note is released.
func (n Note) End() int64 { return n.Start + n.Duration }

// Valid reports whether the note fields are within their ranges and its end
// tick fits an int64. The ID is not checked.
func (n Note) Valid() bool {
	return n.Start >= 0 && n.Duration > 0 && n.Duration <= math.MaxInt64-n.Start &&
		n.Pitch >= 0 && n.Pitch <= 127 &&
		n.Velocity >= 0 && n.Velocity <= 127
}

// Overlaps reports whether the two notes have the same pitch and their
// half-open intervals intersect.
func (n Note) Overlaps(o Note) bool {
	return n.Pitch == o.Pitch && n.Start < o.End() && o.Start < n.End()
}

// NoteMap is the authoritative set of notes keyed by their ID.
type NoteMap map[ID]Note

// Copy returns a deep copy of the map. A nil map copies to an empty one.
func (m NoteMap) Copy() NoteMap {
	ret := make(NoteMap, len(m))
	for id, n := range m {
		ret[id] = n
	}
	return ret
}

// Sorted returns the notes ordered by start, then pitch, then ID.
func (m NoteMap) Sorted() []Note {
	ret := make([]Note, 0, len(m))
	for _, n := range m {
		ret = append(ret, n)
	}
	SortNotes(ret)
	return ret
}

// End returns the end tick of the last note, or 0 for an empty map.
func (m NoteMap) End() int64 {
	var end int64
	for _, n := range m {
		end = max(end, n.End())
	}
	return end
}

// SortNotes sorts notes by start, then pitch, then ID.
func SortNotes(notes []Note) {
	slices.SortFunc(notes, func(a, b Note) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Pitch, b.Pitch); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Split cuts the note at tick at, returning the left part (keeping the ID) and
// the right part (with a zero ID). ok is false if at is not strictly inside the
// note.
func (n Note) Split(at int64) (left, right Note, ok bool) {
	if at <= n.Start || at >= n.End() {
		return n, Note{}, false
	}
	left, right = n, n
	left.Duration = at - n.Start
	right.ID = 0
	right.Start = at
	right.Duration = n.End() - at
	return left, right, true
}
