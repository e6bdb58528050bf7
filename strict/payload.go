// Package strict converts between a MidiState and the strict interchange
// payload: exactly one track on exactly one channel with tick-accurate note
// events. It also reads and writes the payload as Standard MIDI Files and as
// YAML/JSON documents.
package strict

import "github.com/vsariola/noteroll"

// FormatVersion is the version written to the header of every payload.
const FormatVersion = 1

type (
	// Event is a note-on or note-off at an absolute tick. A note-on with zero
	// velocity is read as a note-off.
	Event struct {
		Tick     int64 `yaml:"tick" json:"tick"`
		On       bool  `yaml:"on" json:"on"`
		Channel  int   `yaml:"channel" json:"channel"`
		Pitch    int   `yaml:"pitch" json:"pitch"`
		Velocity int   `yaml:"velocity" json:"velocity"`
	}

	// Track is a named list of events.
	Track struct {
		Name   string  `yaml:"name,omitempty" json:"name,omitempty"`
		Events []Event `yaml:"events,flow" json:"events"`
	}

	// Payload is the persisted form of a MidiState. The header carries the
	// format version and name; PPQ, BPM, TimeSignature and Program describe
	// the timing and instrument of the track.
	Payload struct {
		Version       int                    `yaml:"version" json:"version"`
		Name          string                 `yaml:"name,omitempty" json:"name,omitempty"`
		PPQ           int                    `yaml:"ppq" json:"ppq"`
		BPM           float64                `yaml:"bpm" json:"bpm"`
		TimeSignature noteroll.TimeSignature `yaml:"timesignature" json:"timesignature"`
		Program       int                    `yaml:"program" json:"program"`
		Tracks        []Track                `yaml:"tracks" json:"tracks"`
	}
)

// NoteTracks returns the indices of the tracks containing at least one event.
func (p *Payload) NoteTracks() []int {
	var ret []int
	for i, t := range p.Tracks {
		if len(t.Events) > 0 {
			ret = append(ret, i)
		}
	}
	return ret
}
