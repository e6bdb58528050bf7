package editor

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/vsariola/noteroll"
	"gopkg.in/yaml.v3"
)

// RecoveryFile is the default file name for recovery data.
const RecoveryFile = ".noteroll_recovery.yml"

type recovery struct {
	Document Document          `yaml:"document"`
	Timeline noteroll.Timeline `yaml:"timeline"`
}

// SaveRecovery writes the document and timeline to path, unless nothing
// changed since the last recovery save.
func (m *Model) SaveRecovery(path string) error {
	if !m.changedSinceRecovery {
		return nil
	}
	out, err := yaml.Marshal(recovery{Document: m.d, Timeline: m.timeline})
	if err != nil {
		return fault.Wrap(err, fmsg.With("could not marshal recovery data"))
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fault.Wrap(err, fmsg.With("could not create recovery directory"))
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not write recovery file", "Could not save recovery data to "+path+"."))
	}
	m.changedSinceRecovery = false
	return nil
}

// LoadRecovery replaces the document and timeline with the recovery data in
// path. The history and the selection are cleared and playback is stopped.
// No events are emitted; it is meant to be called before the host starts
// listening.
func (m *Model) LoadRecovery(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("could not read recovery file", "Could not read recovery data from "+path+"."))
	}
	var r recovery
	if err := yaml.Unmarshal(b, &r); err != nil {
		return fault.Wrap(err, fmsg.With("could not unmarshal recovery data"))
	}
	if r.Document.State.Notes == nil {
		r.Document.State.Notes = noteroll.NoteMap{}
	}
	if err := r.Document.State.Validate(); err != nil {
		return fault.Wrap(err, fmsg.With("invalid recovery state"))
	}
	if r.Timeline.PPQ <= 0 || r.Timeline.BPM <= 0 {
		r.Timeline = noteroll.NewTimeline()
	}
	r.Timeline.BPM = r.Document.State.BPM
	r.Timeline.PPQ = r.Document.State.PPQ
	r.Timeline.TimeSignature = r.Document.State.TimeSignature
	m.player.Stop()
	m.d = r.Document.Copy()
	m.timeline = r.Timeline
	m.history.Clear()
	clear(m.selection)
	m.override = nil
	m.maxID = max(m.maxID, maxID(&m.d))
	m.changedSinceRecovery = false
	m.player.SetLoop(m.timeline.Loop)
	m.player.SetVolume(float32(m.timeline.Volume))
	m.player.SetPitchShift(float32(m.timeline.PitchShift))
	m.player.SyncTo(m.timeline.Playhead)
	m.refresh()
	return nil
}

// maxID is the largest ID allocated to an entity of the document.
func maxID(d *Document) noteroll.ID {
	var ret noteroll.ID
	for id := range d.State.Notes {
		ret = max(ret, id)
	}
	for _, p := range slices.Concat(d.State.Curves.Velocity.Points, d.State.Curves.Pitch.Points) {
		ret = max(ret, p.ID)
	}
	for _, t := range d.Tracks {
		ret = max(ret, t.ID)
		for _, c := range t.Clips {
			ret = max(ret, c.ID)
			for _, n := range c.Content.Notes {
				ret = max(ret, n.ID)
			}
		}
	}
	return ret
}
