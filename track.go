package noteroll

import "slices"

// Track is a lane of the arrangement. It owns its clips; deleting a track
// deletes them. Volume ranges 0..2 and Pan -1..1.
type Track struct {
	ID        ID      `yaml:"id"`
	Name      string  `yaml:"name"`
	Mute      bool    `yaml:"mute,omitempty"`
	Solo      bool    `yaml:"solo,omitempty"`
	RecordArm bool    `yaml:"recordarm,omitempty"`
	Monitor   bool    `yaml:"monitor,omitempty"`
	Volume    float64 `yaml:"volume"`
	Pan       float64 `yaml:"pan,omitempty"`
	Clips     []Clip  `yaml:"clips,omitempty"`
}

// NewTrack returns a track with unit volume and centered pan.
func NewTrack(id ID, name string) Track {
	return Track{ID: id, Name: name, Volume: 1}
}

// Copy returns a deep copy of the track.
func (t Track) Copy() Track {
	if len(t.Clips) == 0 {
		t.Clips = nil
		return t
	}
	t.Clips = slices.Clone(t.Clips)
	for i := range t.Clips {
		t.Clips[i] = t.Clips[i].Copy()
	}
	return t
}

// ClipIndex returns the index of the clip with the given ID, or -1.
func (t *Track) ClipIndex(id ID) int {
	return slices.IndexFunc(t.Clips, func(c Clip) bool { return c.ID == id })
}

// Audible reports whether the track should be heard given whether any track
// of the arrangement is soloed.
func (t *Track) Audible(anySolo bool) bool {
	if anySolo {
		return t.Solo
	}
	return !t.Mute
}

// AnySolo reports whether any of the tracks is soloed.
func AnySolo(tracks []Track) bool {
	return slices.ContainsFunc(tracks, func(t Track) bool { return t.Solo })
}
