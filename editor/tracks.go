package editor

import (
	"fmt"
	"slices"

	"github.com/vsariola/noteroll"
)

func (m *Model) createTrack(d *Document, c CreateTrack) error {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Track %d", len(d.Tracks)+1)
	}
	d.Tracks = append(d.Tracks, noteroll.NewTrack(m.newID(), name))
	return nil
}

// editTrack applies the commands changing a single existing track.
func editTrack(d *Document, cmd Command) error {
	var id noteroll.ID
	switch c := cmd.(type) {
	case DeleteTrack:
		id = c.ID
	case RenameTrack:
		id = c.ID
	case SetTrackMute:
		id = c.ID
	case SetTrackSolo:
		id = c.ID
	case SetTrackRecordArm:
		id = c.ID
	case SetTrackMonitor:
		id = c.ID
	case SetTrackVolume:
		id = c.ID
	case SetTrackPan:
		id = c.ID
	}
	i, err := findTrack(d, id)
	if err != nil {
		return err
	}
	t := &d.Tracks[i]
	switch c := cmd.(type) {
	case DeleteTrack:
		d.Tracks = slices.Delete(d.Tracks, i, i+1)
	case RenameTrack:
		t.Name = c.Name
	case SetTrackMute:
		t.Mute = c.Mute
	case SetTrackSolo:
		t.Solo = c.Solo
	case SetTrackRecordArm:
		t.RecordArm = c.Arm
	case SetTrackMonitor:
		t.Monitor = c.Monitor
	case SetTrackVolume:
		if !inRange(c.Volume, 0, 2) {
			return fmt.Errorf("%w: track volume %v", ErrInvalidValue, c.Volume)
		}
		t.Volume = c.Volume
	case SetTrackPan:
		if !inRange(c.Pan, -1, 1) {
			return fmt.Errorf("%w: track pan %v", ErrInvalidValue, c.Pan)
		}
		t.Pan = c.Pan
	}
	return nil
}

func findTrack(d *Document, id noteroll.ID) (int, error) {
	i := d.TrackIndex(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: track %d", ErrUnknownID, id)
	}
	return i, nil
}
