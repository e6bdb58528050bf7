package editor

import (
	"fmt"

	"github.com/vsariola/noteroll"
)

func (m *Model) createNote(d *Document, c CreateNote) error {
	return m.addNotes(d, []noteroll.Note{c.Note})
}

// addNotes adds the notes under new IDs, all or none.
func (m *Model) addNotes(d *Document, notes []noteroll.Note) error {
	for _, n := range notes {
		if !n.Valid() {
			return invalidNote(n)
		}
	}
	for _, n := range notes {
		n.ID = m.newID()
		d.State.Notes[n.ID] = n
	}
	return nil
}

func deleteNotes(d *Document, c DeleteNotes) error {
	if len(c.IDs) == 0 {
		return ErrNoTarget
	}
	for _, id := range c.IDs {
		if _, err := findNote(d, id); err != nil {
			return err
		}
	}
	for _, id := range c.IDs {
		delete(d.State.Notes, id)
	}
	return nil
}

func moveNote(d *Document, c MoveNote) error {
	n, err := findNote(d, c.ID)
	if err != nil {
		return err
	}
	n.Start, n.Pitch = c.Start, c.Pitch
	return putNote(d, n)
}

func resizeNote(d *Document, c ResizeNote) error {
	n, err := findNote(d, c.ID)
	if err != nil {
		return err
	}
	n.Start, n.Duration = c.Start, c.Duration
	return putNote(d, n)
}

func (m *Model) splitNote(d *Document, c SplitNote) error {
	n, err := findNote(d, c.ID)
	if err != nil {
		return err
	}
	left, right, ok := n.Split(c.At)
	if !ok {
		return fmt.Errorf("%w: note %d at tick %d", ErrEmptySplit, c.ID, c.At)
	}
	right.ID = m.newID()
	d.State.Notes[left.ID] = left
	d.State.Notes[right.ID] = right
	return nil
}

func setNoteVelocity(d *Document, c SetNoteVelocity) error {
	if len(c.IDs) == 0 {
		return ErrNoTarget
	}
	if c.Velocity < 0 || c.Velocity > 127 {
		return fmt.Errorf("%w: velocity %d", ErrInvalidNote, c.Velocity)
	}
	for _, id := range c.IDs {
		if _, err := findNote(d, id); err != nil {
			return err
		}
	}
	for _, id := range c.IDs {
		n := d.State.Notes[id]
		n.Velocity = c.Velocity
		d.State.Notes[id] = n
	}
	return nil
}

func findNote(d *Document, id noteroll.ID) (noteroll.Note, error) {
	n, ok := d.State.Notes[id]
	if !ok {
		return noteroll.Note{}, fmt.Errorf("%w: note %d", ErrUnknownID, id)
	}
	return n, nil
}

func putNote(d *Document, n noteroll.Note) error {
	if !n.Valid() {
		return invalidNote(n)
	}
	d.State.Notes[n.ID] = n
	return nil
}

func invalidNote(n noteroll.Note) error {
	return fmt.Errorf("%w: start %d, duration %d, pitch %d, velocity %d", ErrInvalidNote, n.Start, n.Duration, n.Pitch, n.Velocity)
}
