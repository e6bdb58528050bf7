package editor

import (
	"fmt"
	"slices"

	"github.com/vsariola/noteroll"
)

func (m *Model) createClip(d *Document, c CreateClip) error {
	t, err := findTrack(d, c.Track)
	if err != nil {
		return err
	}
	clip := c.Clip.Copy()
	if !clip.Valid() {
		return invalidClip(clip)
	}
	clip.ID = m.newID()
	for i := range clip.Content.Notes {
		clip.Content.Notes[i].ID = m.newID()
	}
	d.Tracks[t].Clips = append(d.Tracks[t].Clips, clip)
	return nil
}

func deleteClip(d *Document, c DeleteClip) error {
	t, i, err := findClip(d, c.ID)
	if err != nil {
		return err
	}
	d.Tracks[t].Clips = slices.Delete(d.Tracks[t].Clips, i, i+1)
	return nil
}

func moveClip(d *Document, c MoveClip) error {
	t, i, err := findClip(d, c.ID)
	if err != nil {
		return err
	}
	to, err := findTrack(d, c.Track)
	if err != nil {
		return err
	}
	if c.Start < 0 {
		return fmt.Errorf("%w: clip start %d", ErrInvalidClip, c.Start)
	}
	clip := d.Tracks[t].Clips[i]
	clip.Start = c.Start
	if to == t {
		d.Tracks[t].Clips[i] = clip
		return nil
	}
	d.Tracks[t].Clips = slices.Delete(d.Tracks[t].Clips, i, i+1)
	d.Tracks[to].Clips = append(d.Tracks[to].Clips, clip)
	return nil
}

func resizeClip(d *Document, c ResizeClip) error {
	t, i, err := findClip(d, c.ID)
	if err != nil {
		return err
	}
	clip := d.Tracks[t].Clips[i]
	if c.FromStart {
		start := clip.End() - c.Duration
		clip.Offset += start - clip.Start
		clip.Start = start
	}
	clip.Duration = c.Duration
	if !clip.Valid() {
		return invalidClip(clip)
	}
	d.Tracks[t].Clips[i] = clip
	return nil
}

func (m *Model) splitClip(d *Document, c SplitClip) error {
	t, i, err := findClip(d, c.ID)
	if err != nil {
		return err
	}
	left, right, ok := d.Tracks[t].Clips[i].Split(c.At, m.newID())
	if !ok {
		return fmt.Errorf("%w: clip %d at tick %d", ErrEmptySplit, c.ID, c.At)
	}
	d.Tracks[t].Clips[i] = left
	d.Tracks[t].Clips = slices.Insert(d.Tracks[t].Clips, i+1, right)
	return nil
}

func renameClip(d *Document, c RenameClip) error {
	t, i, err := findClip(d, c.ID)
	if err != nil {
		return err
	}
	d.Tracks[t].Clips[i].Name = c.Name
	return nil
}

func findClip(d *Document, id noteroll.ID) (track, clip int, err error) {
	track, clip, ok := d.ClipIndex(id)
	if !ok {
		return -1, -1, fmt.Errorf("%w: clip %d", ErrUnknownID, id)
	}
	return track, clip, nil
}

func invalidClip(c noteroll.Clip) error {
	return fmt.Errorf("%w: start %d, duration %d, offset %d, %v content", ErrInvalidClip, c.Start, c.Duration, c.Offset, c.Content.Kind)
}
