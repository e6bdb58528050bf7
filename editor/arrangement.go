package editor

import (
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/player"
)

// refresh hands the current material to the player.
func (m *Model) refresh() {
	m.player.SetArrangement(m.arrangement())
}

// arrangement resolves the document into absolute notes for the player. With
// no tracks, the state itself is previewed as a single lane; otherwise every
// track contributes a lane built from its clips.
func (m *Model) arrangement() player.Arrangement {
	a := player.Arrangement{PPQ: m.timeline.PPQ, BPM: m.bpm()}
	if len(m.d.Tracks) == 0 {
		lane := player.Lane{Audible: true}
		for _, n := range m.d.State.Notes.Sorted() {
			lane.Notes = append(lane.Notes, player.Note{
				Key:      player.NoteKey{Note: n.ID},
				Start:    n.Start,
				End:      n.End(),
				Pitch:    n.Pitch + m.d.State.Curves.PitchOffset(n.Start),
				Velocity: m.d.State.Curves.ApplyVelocity(n.Velocity, n.Start),
			})
		}
		a.Lanes = []player.Lane{lane}
		return a
	}
	anySolo := noteroll.AnySolo(m.d.Tracks)
	for _, t := range m.d.Tracks {
		lane := player.Lane{Track: t.ID, Audible: t.Audible(anySolo)}
		for _, c := range t.Clips {
			lane.Notes = m.appendClip(lane.Notes, t.ID, c)
		}
		a.Lanes = append(a.Lanes, lane)
	}
	return a
}

// appendClip appends the notes a clip plays. A note belongs to the clip when
// it starts inside the clip window; it is cut at the clip end.
func (m *Model) appendClip(notes []player.Note, track noteroll.ID, c noteroll.Clip) []player.Note {
	var (
		content []noteroll.Note
		curves  *noteroll.Curves
		ppq     = m.timeline.PPQ
	)
	switch c.Content.Kind {
	case noteroll.EmbeddedContent:
		content = c.Content.Notes
	case noteroll.SourceContent:
		s, ok := m.d.Source(c.Content.Source)
		if !ok {
			return notes
		}
		content = s.Notes.Sorted()
		curves = &s.Curves
		ppq = s.PPQ
	default:
		return notes
	}
	for _, n := range content {
		start, end := rescale(n.Start, ppq, m.timeline.PPQ), rescale(n.End(), ppq, m.timeline.PPQ)
		if start < c.Offset || start >= c.Offset+c.Duration {
			continue
		}
		pn := player.Note{
			Key:      player.NoteKey{Track: track, Clip: c.ID, Note: n.ID},
			Start:    c.Start + start - c.Offset,
			End:      min(c.Start+end-c.Offset, c.End()),
			Pitch:    n.Pitch,
			Velocity: n.Velocity,
		}
		if curves != nil {
			pn.Pitch += curves.PitchOffset(n.Start)
			pn.Velocity = curves.ApplyVelocity(n.Velocity, n.Start)
		}
		notes = append(notes, pn)
	}
	return notes
}

// rescale converts a tick between resolutions.
func rescale(tick int64, from, to int) int64 {
	if from == to || from <= 0 {
		return tick
	}
	return tick * int64(to) / int64(from)
}
