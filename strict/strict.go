package strict

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/vsariola/noteroll"
)

type openNote struct {
	start    int64
	velocity int
}

// FromStrict reads a payload into a MidiState. The payload must have notes on
// at most one track and one channel, and every note-on must be closed by a
// later note-off of the same pitch. Notes get IDs 1, 2, ... in the order they
// start; callers owning an ID space reassign them.
func FromStrict(p Payload) (noteroll.MidiState, error) {
	state := noteroll.NewMidiState()
	state.Name = p.Name
	if p.PPQ > 0 {
		state.PPQ = p.PPQ
	}
	if p.BPM < 0 {
		return noteroll.MidiState{}, malformed(0, 0, "negative bpm %v", p.BPM)
	} else if p.BPM > 0 {
		state.BPM = p.BPM
	}
	if p.TimeSignature != (noteroll.TimeSignature{}) {
		if !p.TimeSignature.Valid() {
			return noteroll.MidiState{}, malformed(0, 0, "invalid time signature %d/%d", p.TimeSignature.Numerator, p.TimeSignature.Denominator)
		}
		state.TimeSignature = p.TimeSignature
	}
	if p.Program >= 0 && p.Program <= 127 {
		state.Program = p.Program
	}
	noteTracks := p.NoteTracks()
	if len(noteTracks) > 1 {
		return noteroll.MidiState{}, &ValidationError{Kind: MultipleTracks, Track: noteTracks[1],
			Detail: fmt.Sprintf("%d tracks have notes", len(noteTracks))}
	}
	if len(noteTracks) == 0 {
		return state, nil
	}
	ti := noteTracks[0]
	events := slices.Clone(p.Tracks[ti].Events)
	// offs before ons at the same tick, so a note ending where the next starts
	// is closed first
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
			return c
		}
		return cmp.Compare(onOrder(isOn(a)), onOrder(isOn(b)))
	})
	channel := -1
	open := map[int]openNote{}
	var notes []noteroll.Note
	for _, e := range events {
		if e.Tick < 0 {
			return noteroll.MidiState{}, malformed(ti, e.Tick, "negative tick")
		}
		if e.Channel < 0 || e.Channel > 15 {
			return noteroll.MidiState{}, malformed(ti, e.Tick, "channel %d out of range", e.Channel)
		}
		if e.Pitch < 0 || e.Pitch > 127 || e.Velocity < 0 || e.Velocity > 127 {
			return noteroll.MidiState{}, malformed(ti, e.Tick, "pitch %d or velocity %d out of range", e.Pitch, e.Velocity)
		}
		if channel == -1 {
			channel = e.Channel
		} else if e.Channel != channel {
			return noteroll.MidiState{}, &ValidationError{Kind: MultipleChannels, Track: ti, Tick: e.Tick,
				Detail: fmt.Sprintf("channels %d and %d", channel, e.Channel)}
		}
		o, sounding := open[e.Pitch]
		if isOn(e) {
			if sounding {
				return noteroll.MidiState{}, malformed(ti, e.Tick, "pitch %d retriggered while sounding", e.Pitch)
			}
			open[e.Pitch] = openNote{start: e.Tick, velocity: e.Velocity}
			continue
		}
		if !sounding {
			return noteroll.MidiState{}, malformed(ti, e.Tick, "note-off for pitch %d without a note-on", e.Pitch)
		}
		if e.Tick == o.start {
			return noteroll.MidiState{}, malformed(ti, e.Tick, "zero-length note on pitch %d", e.Pitch)
		}
		delete(open, e.Pitch)
		notes = append(notes, noteroll.Note{Start: o.start, Duration: e.Tick - o.start, Pitch: e.Pitch, Velocity: o.velocity})
	}
	if len(open) > 0 {
		pitch := slices.Min(slices.Collect(maps.Keys(open)))
		return noteroll.MidiState{}, malformed(ti, open[pitch].start, "note on pitch %d is never released", pitch)
	}
	noteroll.SortNotes(notes)
	for i, n := range notes {
		n.ID = noteroll.ID(i + 1)
		state.Notes[n.ID] = n
	}
	state.Channel = max(channel, 0)
	return state, nil
}

func isOn(e Event) bool { return e.On && e.Velocity > 0 }

func onOrder(on bool) int {
	if on {
		return 1
	}
	return 0
}

// ToStrict writes the state as a one-track, one-channel payload. The velocity
// curve, when active, is blended into the written velocities. Where two notes
// of the same pitch overlap, the earlier note is released one tick before the
// later one starts; if that would leave the earlier note without length, the
// later note is merged into it instead. At equal ticks note-offs precede
// note-ons.
func ToStrict(state noteroll.MidiState) Payload {
	p := Payload{
		Version:       FormatVersion,
		Name:          state.Name,
		PPQ:           state.PPQ,
		BPM:           state.BPM,
		TimeSignature: state.TimeSignature,
		Program:       state.Program,
	}
	notes := strictNotes(state.Notes.Sorted())
	events := make([]Event, 0, 2*len(notes))
	for _, n := range notes {
		// a zero velocity note-on would read back as a note-off
		vel := max(state.Curves.ApplyVelocity(n.Velocity, n.Start), 1)
		events = append(events,
			Event{Tick: n.Start, On: true, Channel: state.Channel, Pitch: n.Pitch, Velocity: vel},
			Event{Tick: n.End(), On: false, Channel: state.Channel, Pitch: n.Pitch})
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
			return c
		}
		if c := cmp.Compare(onOrder(a.On), onOrder(b.On)); c != 0 {
			return c
		}
		return cmp.Compare(a.Pitch, b.Pitch)
	})
	p.Tracks = []Track{{Name: state.Name, Events: events}}
	return p
}

// strictNotes resolves same-pitch overlaps in notes sorted by start.
func strictNotes(sorted []noteroll.Note) []noteroll.Note {
	byPitch := map[int][]noteroll.Note{}
	for _, n := range sorted {
		byPitch[n.Pitch] = append(byPitch[n.Pitch], n)
	}
	ret := make([]noteroll.Note, 0, len(sorted))
	for _, list := range byPitch {
		// longer first at equal starts, so the merged note keeps the longest
		slices.SortStableFunc(list, func(a, b noteroll.Note) int {
			if c := cmp.Compare(a.Start, b.Start); c != 0 {
				return c
			}
			return cmp.Compare(b.Duration, a.Duration)
		})
		cur := list[0]
		for _, n := range list[1:] {
			if n.Start >= cur.End() {
				ret = append(ret, cur)
				cur = n
				continue
			}
			if n.Start-1 > cur.Start {
				cur.Duration = n.Start - 1 - cur.Start
				ret = append(ret, cur)
				cur = n
				continue
			}
			cur.Duration = max(cur.End(), n.End()) - cur.Start
		}
		ret = append(ret, cur)
	}
	noteroll.SortNotes(ret)
	return ret
}

// Validate reports whether the state survives a round trip through the strict
// payload unchanged: its header and notes are valid, every note has a
// non-zero velocity and no two notes of the same pitch overlap.
func Validate(state noteroll.MidiState) error {
	if err := state.Validate(); err != nil {
		return &ValidationError{Kind: MalformedEvent, Detail: err.Error()}
	}
	for _, n := range state.Notes.Sorted() {
		if n.Velocity == 0 {
			return malformed(0, n.Start, "note %d has zero velocity", n.ID)
		}
	}
	if err := state.CheckOverlaps(); err != nil {
		return &ValidationError{Kind: MalformedEvent, Detail: err.Error()}
	}
	return nil
}
