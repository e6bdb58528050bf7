package noteroll

import (
	"errors"
	"fmt"
)

// NoProgram marks a MidiState without a program change.
const NoProgram = -1

// MidiState is the authoritative content of a single logical MIDI track on a
// single channel: its notes, automation curves, tempo and meter.
type MidiState struct {
	Name          string        `yaml:"name,omitempty"`
	Channel       int           `yaml:"channel"`
	Program       int           `yaml:"program"`
	BPM           float64       `yaml:"bpm"`
	PPQ           int           `yaml:"ppq"`
	TimeSignature TimeSignature `yaml:"timesignature"`
	Notes         NoteMap       `yaml:"notes"`
	Curves        Curves        `yaml:"curves"`
}

// NewMidiState returns an empty state on channel 0 with the default tempo,
// resolution and meter.
func NewMidiState() MidiState {
	return MidiState{
		Program:       NoProgram,
		BPM:           DefaultBPM,
		PPQ:           DefaultPPQ,
		TimeSignature: FourFour,
		Notes:         NoteMap{},
		Curves:        NewCurves(),
	}
}

// Copy returns a deep copy of the state.
func (s MidiState) Copy() MidiState {
	s.Notes = s.Notes.Copy()
	s.Curves = s.Curves.Copy()
	return s
}

// Validate checks the header fields and every note of the state.
func (s *MidiState) Validate() error {
	if s.BPM <= 0 {
		return fmt.Errorf("bpm must be positive, was %v", s.BPM)
	}
	if s.PPQ <= 0 {
		return fmt.Errorf("ppq must be positive, was %v", s.PPQ)
	}
	if !s.TimeSignature.Valid() {
		return fmt.Errorf("invalid time signature %d/%d", s.TimeSignature.Numerator, s.TimeSignature.Denominator)
	}
	if s.Channel < 0 || s.Channel > 15 {
		return fmt.Errorf("channel %d out of range", s.Channel)
	}
	for id, n := range s.Notes {
		if id != n.ID {
			return fmt.Errorf("note keyed %d has id %d", id, n.ID)
		}
		if !n.Valid() {
			return fmt.Errorf("note %d is not valid", id)
		}
	}
	return nil
}

// ErrOverlap is returned by CheckOverlaps when two notes of the same pitch
// sound at the same time.
var ErrOverlap = errors.New("overlapping notes on the same pitch")

// CheckOverlaps returns ErrOverlap, wrapped with the offending note IDs, if any
// two notes of the same pitch overlap.
func (s *MidiState) CheckOverlaps() error {
	notes := s.Notes.Sorted()
	last := map[int]Note{}
	for _, n := range notes {
		if prev, ok := last[n.Pitch]; ok && prev.End() > n.Start {
			return fmt.Errorf("notes %d and %d: %w", prev.ID, n.ID, ErrOverlap)
		}
		if prev, ok := last[n.Pitch]; !ok || n.End() > prev.End() {
			last[n.Pitch] = n
		}
	}
	return nil
}
