package editor

import (
	"maps"
	"slices"

	"github.com/vsariola/noteroll"
)

// Document is the undoable content of the editor: the MidiState, the tracks
// with their clips and the pool of shared note-sets referred to by source
// clips. Transport and view settings live in the Timeline and are not part of
// it.
type Document struct {
	State   noteroll.MidiState            `yaml:"state"`
	Tracks  []noteroll.Track              `yaml:"tracks,omitempty"`
	Sources map[string]noteroll.MidiState `yaml:"sources,omitempty"`
}

// NewDocument returns a document with an empty state, no tracks and an empty
// source pool.
func NewDocument() Document {
	return Document{State: noteroll.NewMidiState(), Sources: map[string]noteroll.MidiState{}}
}

// Copy makes a deep copy of the document.
func (d Document) Copy() Document {
	ret := Document{State: d.State.Copy(), Sources: make(map[string]noteroll.MidiState, len(d.Sources))}
	if len(d.Tracks) > 0 {
		ret.Tracks = make([]noteroll.Track, len(d.Tracks))
		for i, t := range d.Tracks {
			ret.Tracks[i] = t.Copy()
		}
	}
	for k, s := range d.Sources {
		ret.Sources[k] = s.Copy()
	}
	return ret
}

// TrackIndex returns the index of the track with the given ID, or -1.
func (d *Document) TrackIndex(id noteroll.ID) int {
	return slices.IndexFunc(d.Tracks, func(t noteroll.Track) bool { return t.ID == id })
}

// ClipIndex finds a clip across all tracks, returning the track and clip
// indices.
func (d *Document) ClipIndex(id noteroll.ID) (track, clip int, ok bool) {
	for i := range d.Tracks {
		if j := d.Tracks[i].ClipIndex(id); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

// Source resolves a source key. StateSource resolves to the document state.
func (d *Document) Source(key string) (noteroll.MidiState, bool) {
	if key == noteroll.StateSource {
		return d.State, true
	}
	s, ok := d.Sources[key]
	return s, ok
}

// SourceKeys returns the keys of the source pool in sorted order.
func (d *Document) SourceKeys() []string {
	return slices.Sorted(maps.Keys(d.Sources))
}

// contains reports whether any entity of the document has the given ID.
func (d *Document) contains(id noteroll.ID) bool {
	if _, ok := d.State.Notes[id]; ok {
		return true
	}
	if _, ok := d.State.Curves.Velocity.Point(id); ok {
		return true
	}
	if _, ok := d.State.Curves.Pitch.Point(id); ok {
		return true
	}
	if d.TrackIndex(id) >= 0 {
		return true
	}
	_, _, ok := d.ClipIndex(id)
	return ok
}
