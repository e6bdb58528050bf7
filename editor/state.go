package editor

import (
	"fmt"
	"math"

	"github.com/vsariola/noteroll"
)

// MaxBPM is the highest tempo accepted by SetBPM.
const MaxBPM = 999

func setSource(d *Document, c SetSource) error {
	if c.Key == "" || c.Key == noteroll.StateSource {
		return fmt.Errorf("%w: key %q", ErrInvalidSource, c.Key)
	}
	s := c.State.Copy()
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: source %q: %w", ErrInvalidState, c.Key, err)
	}
	s.Curves.Velocity.Kind = noteroll.VelocityCurve
	s.Curves.Pitch.Kind = noteroll.PitchCurve
	d.Sources[c.Key] = s
	return nil
}

// deleteSource removes a shared note-set. Clips referring to it stay and play
// nothing until a source with the key is set again.
func deleteSource(d *Document, c DeleteSource) error {
	if _, ok := d.Sources[c.Key]; !ok {
		return fmt.Errorf("%w: no source %q", ErrInvalidSource, c.Key)
	}
	delete(d.Sources, c.Key)
	return nil
}

// replaceState installs a new state, giving its notes and curve points IDs
// of this editor.
func (m *Model) replaceState(d *Document, c ReplaceState) error {
	s := c.State.Copy()
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if s.BPM > MaxBPM {
		return fmt.Errorf("%w: bpm %v", ErrInvalidState, s.BPM)
	}
	notes := noteroll.NoteMap{}
	for _, n := range s.Notes.Sorted() {
		n.ID = m.newID()
		notes[n.ID] = n
	}
	s.Notes = notes
	s.Curves.Velocity.Kind = noteroll.VelocityCurve
	s.Curves.Pitch.Kind = noteroll.PitchCurve
	for _, cv := range []*noteroll.Curve{&s.Curves.Velocity, &s.Curves.Pitch} {
		points := cv.Points
		cv.Points = nil
		for _, p := range points {
			if err := checkPoint(p.Tick, p.Value); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidState, err)
			}
			p.ID = m.newID()
			cv.AddPoint(p)
		}
	}
	d.State = s
	return nil
}

func setBPM(d *Document, c SetBPM) error {
	if !(c.BPM > 0) || c.BPM > MaxBPM || math.IsInf(c.BPM, 0) {
		return fmt.Errorf("%w: bpm %v", ErrInvalidValue, c.BPM)
	}
	d.State.BPM = c.BPM
	return nil
}

func setTimeSignature(d *Document, c SetTimeSignature) error {
	if !c.TimeSignature.Valid() {
		return fmt.Errorf("%w: time signature %d/%d", ErrInvalidValue, c.TimeSignature.Numerator, c.TimeSignature.Denominator)
	}
	d.State.TimeSignature = c.TimeSignature
	return nil
}
