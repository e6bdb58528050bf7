package player

import (
	"cmp"
	"slices"

	"github.com/vsariola/noteroll"
)

type (
	// NoteKey identifies a scheduled note. The same note of a shared source
	// may be scheduled by several clips, so the clip is part of the key.
	NoteKey struct {
		Track, Clip, Note noteroll.ID
	}

	// Note is a note resolved for playback: absolute ticks and the sounding
	// pitch and velocity after automation.
	Note struct {
		Key      NoteKey
		Start    int64
		End      int64
		Pitch    int
		Velocity int
	}

	// Lane is the material of one track. Notes need not be sorted.
	Lane struct {
		Track   noteroll.ID
		Audible bool
		Notes   []Note
	}

	// Arrangement is everything the player needs to schedule notes.
	Arrangement struct {
		PPQ   int
		BPM   float64
		Lanes []Lane
	}

	boundary struct {
		tick     int64
		on       bool
		pitch    uint8
		velocity uint8
		key      NoteKey
	}

	lane struct {
		audible bool
		bounds  []boundary
	}
)

func compileLane(l Lane) lane {
	ret := lane{audible: l.Audible, bounds: make([]boundary, 0, 2*len(l.Notes))}
	for _, n := range l.Notes {
		if n.End <= n.Start {
			continue
		}
		pitch := uint8(min(max(n.Pitch, 0), 127))
		vel := uint8(min(max(n.Velocity, 0), 127))
		ret.bounds = append(ret.bounds,
			boundary{tick: n.Start, on: true, pitch: pitch, velocity: vel, key: n.Key},
			boundary{tick: n.End, pitch: pitch, key: n.Key})
	}
	slices.SortStableFunc(ret.bounds, compareBoundaries)
	return ret
}

// compareBoundaries orders by tick with note-offs first at equal ticks.
func compareBoundaries(a, b boundary) int {
	if c := cmp.Compare(a.tick, b.tick); c != 0 {
		return c
	}
	if a.on != b.on {
		if a.on {
			return 1
		}
		return -1
	}
	return 0
}

type indexedNote struct {
	note    Note
	audible bool
}

func (a *Arrangement) index() map[NoteKey]indexedNote {
	ret := map[NoteKey]indexedNote{}
	for _, l := range a.Lanes {
		for _, n := range l.Notes {
			ret[n.Key] = indexedNote{note: n, audible: l.Audible}
		}
	}
	return ret
}
