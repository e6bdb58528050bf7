package editor

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/vsariola/noteroll"
)

// targets resolves the notes a transform acts on: the listed IDs, else the
// selected notes, else every note. The notes are ordered by start.
func (m *Model) targets(d *Document, ids []noteroll.ID) ([]noteroll.Note, error) {
	if len(ids) > 0 {
		ret := make([]noteroll.Note, 0, len(ids))
		for _, id := range ids {
			n, err := findNote(d, id)
			if err != nil {
				return nil, err
			}
			ret = append(ret, n)
		}
		noteroll.SortNotes(ret)
		return ret, nil
	}
	var ret []noteroll.Note
	for _, n := range d.State.Notes.Sorted() {
		if _, ok := m.selection[n.ID]; ok {
			ret = append(ret, n)
		}
	}
	if len(ret) == 0 {
		ret = d.State.Notes.Sorted()
	}
	if len(ret) == 0 {
		return nil, ErrNoTarget
	}
	return ret, nil
}

// transform replaces each target note with f applied to it, failing without
// changes if any result is invalid.
func (m *Model) transform(d *Document, ids []noteroll.ID, f func(n noteroll.Note) noteroll.Note) error {
	notes, err := m.targets(d, ids)
	if err != nil {
		return err
	}
	for i, n := range notes {
		notes[i] = f(n)
		if !notes[i].Valid() {
			return invalidNote(notes[i])
		}
	}
	for _, n := range notes {
		d.State.Notes[n.ID] = n
	}
	return nil
}

// humanize is reproducible: the same seed, targets and ranges always give the
// same result. Starts are clamped at zero and velocities to 1..127.
func (m *Model) humanize(d *Document, c Humanize) error {
	if c.Timing < 0 || c.Timing > (math.MaxInt64-1)/2 || c.Velocity < 0 || c.Velocity > 127 {
		return fmt.Errorf("%w: humanize timing %d velocity %d", ErrInvalidValue, c.Timing, c.Velocity)
	}
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	return m.transform(d, c.IDs, func(n noteroll.Note) noteroll.Note {
		if c.Timing > 0 {
			d := rng.Int64N(2*c.Timing+1) - c.Timing
			if d > math.MaxInt64-n.Start {
				n.Start = math.MaxInt64 // leaves an invalid note, rejecting the command
			} else {
				n.Start = max(n.Start+d, 0)
			}
		}
		if c.Velocity > 0 {
			n.Velocity = min(max(n.Velocity+rng.IntN(2*c.Velocity+1)-c.Velocity, 1), 127)
		}
		return n
	})
}

func (m *Model) quantize(d *Document, c Quantize) error {
	interval := c.Interval
	if interval == 0 {
		interval = m.timeline.Snap.Interval
	}
	if interval <= 0 || !inRange(c.Strength, 0, 1) {
		return fmt.Errorf("%w: quantize interval %d strength %v", ErrInvalidValue, interval, c.Strength)
	}
	pull := func(t int64) int64 {
		grid := noteroll.Snap(t, interval, noteroll.SnapAbsolute, 0)
		return t + int64(math.Round(float64(grid-t)*c.Strength))
	}
	return m.transform(d, c.IDs, func(n noteroll.Note) noteroll.Note {
		end := n.End()
		n.Start = pull(n.Start)
		if c.Ends {
			end = pull(end)
		}
		n.Duration = max(end-n.Start, 1)
		return n
	})
}

// swing moves the notes starting on odd grid lines later by Ratio times half
// an interval, keeping their length.
func (m *Model) swing(d *Document, c Swing) error {
	interval := c.Interval
	if interval == 0 {
		interval = m.timeline.Snap.Interval
	}
	if interval <= 0 || !inRange(c.Ratio, 0, 1) {
		return fmt.Errorf("%w: swing interval %d ratio %v", ErrInvalidValue, interval, c.Ratio)
	}
	delay := int64(math.Round(c.Ratio * float64(interval) / 2))
	return m.transform(d, c.IDs, func(n noteroll.Note) noteroll.Note {
		if n.Start%interval == 0 && (n.Start/interval)%2 == 1 {
			n.Start += delay
		}
		return n
	})
}

func (m *Model) batchTransform(d *Document, c BatchTransform) error {
	vscale, dscale := c.VelocityScale, c.DurationScale
	if vscale == 0 {
		vscale = 1
	}
	if dscale == 0 {
		dscale = 1
	}
	if !(vscale > 0) || !(dscale > 0) || math.IsInf(vscale, 0) || math.IsInf(dscale, 0) {
		return fmt.Errorf("%w: scales %v and %v", ErrInvalidValue, c.VelocityScale, c.DurationScale)
	}
	return m.transform(d, c.IDs, func(n noteroll.Note) noteroll.Note {
		n.Start += c.Shift
		n.Pitch += c.Transpose
		n.Velocity = int(math.Round(float64(n.Velocity)*vscale)) + c.VelocityOffset
		n.Duration = max(int64(math.Round(float64(n.Duration)*dscale)), 1)
		return n
	})
}
