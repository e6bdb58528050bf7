package editor

import (
	"fmt"
	"maps"
	"math"

	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/player"
)

// transient executes the commands that do not touch the document. handled is
// false for every other command.
func (m *Model) transient(cmd Command) (events []Event, handled bool, err error) {
	switch c := cmd.(type) {
	case SetSelection:
		events, err = m.setSelection(c)
	case SetPlayhead:
		events, err = m.seek(c.Tick)
	case SeekSeconds:
		if c.Seconds < 0 || math.IsNaN(c.Seconds) {
			return nil, true, fmt.Errorf("%w: seek to %v s", ErrInvalidValue, c.Seconds)
		}
		events, err = m.seek(noteroll.SecondsToTicks(c.Seconds, m.timeline.PPQ, m.bpm()))
	case SetPlayback:
		if m.override != nil {
			return nil, true, ErrOverridden
		}
		events = m.setPlaying(c.Playing)
	case StopPlayback:
		if m.override != nil {
			return nil, true, ErrOverridden
		}
		if m.player.Stop() {
			events = []Event{PlaybackStateChanged{State: m.player.State()}, m.movePlayhead()}
		}
	case SetVolume:
		if !inRange(c.Gain, 0, 2) {
			return nil, true, fmt.Errorf("%w: gain %v", ErrInvalidValue, c.Gain)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.Volume = c.Gain })
		m.player.SetVolume(float32(c.Gain))
	case SetPitchShift:
		if !inRange(c.Semitones, -12, 12) {
			return nil, true, fmt.Errorf("%w: pitch shift %v", ErrInvalidValue, c.Semitones)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.PitchShift = c.Semitones })
		m.player.SetPitchShift(float32(c.Semitones))
	case SetLoop:
		l := noteroll.LoopRegion{Start: c.Start, End: c.End, Enabled: c.Enabled}
		if !l.Valid() {
			return nil, true, fmt.Errorf("%w: loop %d..%d", ErrInvalidValue, c.Start, c.End)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.Loop = l })
		m.player.SetLoop(l)
	case SetSnap:
		if c.Interval < 0 || (c.Mode != noteroll.SnapAbsolute && c.Mode != noteroll.SnapRelative) {
			return nil, true, fmt.Errorf("%w: snap %d %v", ErrInvalidValue, c.Interval, c.Mode)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.Snap = noteroll.SnapSettings{Interval: c.Interval, Mode: c.Mode} })
	case CenterOnPitch:
		if c.Pitch < 0 || c.Pitch > 127 {
			return nil, true, fmt.Errorf("%w: pitch %d", ErrInvalidValue, c.Pitch)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.CenterPitch = c.Pitch })
	case SetView:
		if !(c.Zoom > 0) || math.IsInf(c.Zoom, 0) || c.ScrollTick < 0 {
			return nil, true, fmt.Errorf("%w: zoom %v scroll %d", ErrInvalidValue, c.Zoom, c.ScrollTick)
		}
		events = m.setTimeline(func(t *noteroll.Timeline) { t.Zoom, t.ScrollTick = c.Zoom, c.ScrollTick })
	case OverrideTransport:
		events, err = m.overrideTransport(c.Transport)
	default:
		return nil, false, nil
	}
	return events, true, err
}

func (m *Model) setSelection(c SetSelection) ([]Event, error) {
	sel := make(map[noteroll.ID]struct{}, len(c.IDs))
	for _, id := range c.IDs {
		if !m.d.contains(id) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
		}
		sel[id] = struct{}{}
	}
	if maps.Equal(sel, m.selection) {
		return nil, nil
	}
	m.selection = sel
	return []Event{SelectionChanged{IDs: m.Selection()}}, nil
}

// pruneSelection drops selected IDs that no longer exist, reporting whether
// any did.
func (m *Model) pruneSelection() bool {
	n := len(m.selection)
	maps.DeleteFunc(m.selection, func(id noteroll.ID, _ struct{}) bool { return !m.d.contains(id) })
	return len(m.selection) != n
}

func (m *Model) seek(tick int64) ([]Event, error) {
	if tick < 0 {
		return nil, fmt.Errorf("%w: seek to tick %d", ErrInvalidValue, tick)
	}
	if m.override != nil {
		return nil, ErrOverridden
	}
	m.player.SeekTo(tick)
	return []Event{m.movePlayhead()}, nil
}

func (m *Model) setPlaying(playing bool) []Event {
	var changed bool
	if playing {
		changed = m.player.Play()
	} else {
		changed = m.player.Pause()
	}
	if !changed {
		return nil
	}
	return []Event{PlaybackStateChanged{State: m.player.State()}}
}

// movePlayhead copies the player position to the timeline.
func (m *Model) movePlayhead() Event {
	m.timeline.Playhead = m.player.Position()
	return m.transportEvent()
}

func (m *Model) transportEvent() TransportChanged {
	return TransportChanged{
		Seconds: noteroll.TicksToSeconds(m.timeline.Playhead, m.timeline.PPQ, m.bpm()),
		Tick:    m.timeline.Playhead,
		Playing: m.player.State() == player.Playing,
		Loop:    m.timeline.Loop,
	}
}

func (m *Model) setTimeline(f func(t *noteroll.Timeline)) []Event {
	before := m.timeline
	f(&m.timeline)
	if m.timeline == before {
		return nil
	}
	return []Event{TimelineChanged{Timeline: m.timeline}}
}

// overrideTransport makes the player follow the host transport, or gives the
// transport back with a nil t.
func (m *Model) overrideTransport(t *TransportState) ([]Event, error) {
	if t == nil {
		if m.override == nil {
			return nil, nil
		}
		m.override = nil
		m.refresh()
		return nil, nil
	}
	if t.Seconds < 0 || math.IsNaN(t.Seconds) || t.BPM < 0 || math.IsNaN(t.BPM) {
		return nil, fmt.Errorf("%w: transport at %v s, %v bpm", ErrInvalidValue, t.Seconds, t.BPM)
	}
	first := m.override == nil
	tempoChanged := m.override != nil && m.override.BPM != t.BPM
	m.override = &TransportState{Playing: t.Playing, Seconds: t.Seconds, BPM: t.BPM}
	if first || tempoChanged {
		m.refresh()
	}
	events := m.setPlaying(t.Playing)
	before := m.player.Position()
	m.player.SyncTo(noteroll.SecondsToTicks(t.Seconds, m.timeline.PPQ, m.bpm()))
	if m.player.Position() != before || m.timeline.Playhead != before {
		events = append(events, m.movePlayhead())
	}
	return events, nil
}

// bpm is the tempo playback runs at: the host tempo while it overrides the
// transport with one, otherwise the tempo of the state.
func (m *Model) bpm() float64 {
	if m.override != nil && m.override.BPM > 0 {
		return m.override.BPM
	}
	return m.timeline.BPM
}

func inRange(v, lo, hi float64) bool { return v >= lo && v <= hi }
