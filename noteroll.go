// Package noteroll contains the data model of the note and clip editor: notes,
// automation curves, clips, tracks, the timeline and the single-track
// MidiState, together with the time and grid arithmetic shared by the editor,
// the player and the strict import/export layer.
//
// Entities are plain values. They are only mutated through the editor's
// commands; the types here merely validate and copy themselves.
package noteroll

// ID identifies an entity (note, curve point, clip or track). IDs are
// allocated by the editor instance owning the entity and are never reused
// within that instance. The zero ID means "not assigned".
type ID uint64

// DefaultPPQ is the default resolution in ticks per quarter note.
const DefaultPPQ = 480

// DefaultBPM is the tempo of a new MidiState and Timeline.
const DefaultBPM = 120.0

// StateSource is the source key with which a clip refers to the editor's own
// MidiState instead of a shared note-set in the source pool.
const StateSource = "@state"

func clamp[T int | int64 | float32 | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
