package editor

import (
	"maps"
	"reflect"
	"slices"

	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/player"
)

// Event describes a change made by a command. Events are delivered in the
// order the changes happened.
type Event interface{ event() }

type (
	// StateReplaced is sent instead of per-note events when the whole state
	// was replaced.
	StateReplaced struct{ State noteroll.MidiState }

	NoteAdded   struct{ Note noteroll.Note }
	NoteDeleted struct{ Note noteroll.Note }
	NoteUpdated struct{ Before, After noteroll.Note }

	CurvePointAdded struct {
		Kind  noteroll.CurveKind
		Point noteroll.CurvePoint
	}
	CurvePointRemoved struct {
		Kind  noteroll.CurveKind
		Point noteroll.CurvePoint
	}
	CurvePointUpdated struct {
		Kind          noteroll.CurveKind
		Before, After noteroll.CurvePoint
	}
	// CurveChanged reports a curve being enabled or disabled.
	CurveChanged struct {
		Kind    noteroll.CurveKind
		Enabled bool
	}

	// TrackAdded and TrackDeleted carry the track with its clips; no separate
	// clip events are sent for them.
	TrackAdded   struct{ Track noteroll.Track }
	TrackDeleted struct{ Track noteroll.Track }
	// TrackUpdated reports a change of the track properties. Its clips are
	// left out; clip changes have their own events.
	TrackUpdated struct{ Before, After noteroll.Track }

	ClipAdded struct {
		Track noteroll.ID
		Clip  noteroll.Clip
	}
	ClipDeleted struct {
		Track noteroll.ID
		Clip  noteroll.Clip
	}
	// ClipUpdated reports a clip that changed, possibly moving from track
	// From to track To.
	ClipUpdated struct {
		From, To      noteroll.ID
		Before, After noteroll.Clip
	}

	// SourceChanged reports a shared note-set being registered, replaced or
	// deleted.
	SourceChanged struct {
		Key     string
		Deleted bool
	}

	SelectionChanged     struct{ IDs []noteroll.ID }
	PlaybackStateChanged struct{ State player.State }
	TransportChanged     struct {
		Seconds float64
		Tick    int64
		Playing bool
		Loop    noteroll.LoopRegion
	}
	// TimelineChanged carries the whole timeline after a change of tempo,
	// meter, loop, snap, view, volume or pitch shift.
	TimelineChanged struct{ Timeline noteroll.Timeline }
)

func (StateReplaced) event()        {}
func (NoteAdded) event()            {}
func (NoteDeleted) event()          {}
func (NoteUpdated) event()          {}
func (CurvePointAdded) event()      {}
func (CurvePointRemoved) event()    {}
func (CurvePointUpdated) event()    {}
func (CurveChanged) event()         {}
func (TrackAdded) event()           {}
func (TrackDeleted) event()         {}
func (TrackUpdated) event()         {}
func (ClipAdded) event()            {}
func (ClipDeleted) event()          {}
func (ClipUpdated) event()          {}
func (SourceChanged) event()        {}
func (SelectionChanged) event()     {}
func (PlaybackStateChanged) event() {}
func (TransportChanged) event()     {}
func (TimelineChanged) event()      {}

// diff derives the events turning before into after. Within each kind of
// entity deletions come first, then updates, then additions, each in ID
// order.
func diff(before, after *Document) []Event {
	var events []Event
	events = diffNotes(events, before.State.Notes, after.State.Notes)
	for _, kind := range []noteroll.CurveKind{noteroll.VelocityCurve, noteroll.PitchCurve} {
		events = diffCurve(events, kind, before.State.Curves.Get(kind), after.State.Curves.Get(kind))
	}
	events = diffTracks(events, before.Tracks, after.Tracks)
	events = diffSources(events, before.Sources, after.Sources)
	return events
}

func diffNotes(events []Event, before, after noteroll.NoteMap) []Event {
	for _, id := range sortedKeys(before) {
		if _, ok := after[id]; !ok {
			events = append(events, NoteDeleted{Note: before[id]})
		}
	}
	for _, id := range sortedKeys(after) {
		if b, ok := before[id]; ok && b != after[id] {
			events = append(events, NoteUpdated{Before: b, After: after[id]})
		}
	}
	for _, id := range sortedKeys(after) {
		if _, ok := before[id]; !ok {
			events = append(events, NoteAdded{Note: after[id]})
		}
	}
	return events
}

func diffCurve(events []Event, kind noteroll.CurveKind, before, after *noteroll.Curve) []Event {
	if before.Enabled != after.Enabled {
		events = append(events, CurveChanged{Kind: kind, Enabled: after.Enabled})
	}
	b := pointMap(before.Points)
	a := pointMap(after.Points)
	for _, id := range sortedKeys(b) {
		if _, ok := a[id]; !ok {
			events = append(events, CurvePointRemoved{Kind: kind, Point: b[id]})
		}
	}
	for _, id := range sortedKeys(a) {
		if p, ok := b[id]; ok && p != a[id] {
			events = append(events, CurvePointUpdated{Kind: kind, Before: p, After: a[id]})
		}
	}
	for _, id := range sortedKeys(a) {
		if _, ok := b[id]; !ok {
			events = append(events, CurvePointAdded{Kind: kind, Point: a[id]})
		}
	}
	return events
}

type placedClip struct {
	track noteroll.ID
	clip  noteroll.Clip
}

func diffTracks(events []Event, before, after []noteroll.Track) []Event {
	b := trackMap(before)
	a := trackMap(after)
	for _, t := range before {
		if _, ok := a[t.ID]; !ok {
			events = append(events, TrackDeleted{Track: t.Copy()})
		}
	}
	for _, t := range after {
		if p, ok := b[t.ID]; ok && !reflect.DeepEqual(trackProps(p), trackProps(t)) {
			events = append(events, TrackUpdated{Before: trackProps(p), After: trackProps(t)})
		}
	}
	// clips of tracks that were both before and after; clips of added and
	// deleted tracks travel with the track events
	bc := clipMap(before, a)
	ac := clipMap(after, b)
	for _, id := range sortedKeys(bc) {
		if _, ok := ac[id]; !ok {
			events = append(events, ClipDeleted{Track: bc[id].track, Clip: bc[id].clip})
		}
	}
	for _, id := range sortedKeys(ac) {
		p, ok := bc[id]
		if ok && (p.track != ac[id].track || !reflect.DeepEqual(p.clip, ac[id].clip)) {
			events = append(events, ClipUpdated{From: p.track, To: ac[id].track, Before: p.clip, After: ac[id].clip})
		}
	}
	for _, id := range sortedKeys(ac) {
		if _, ok := bc[id]; !ok {
			events = append(events, ClipAdded{Track: ac[id].track, Clip: ac[id].clip})
		}
	}
	for _, t := range after {
		if _, ok := b[t.ID]; !ok {
			events = append(events, TrackAdded{Track: t.Copy()})
		}
	}
	return events
}

func diffSources(events []Event, before, after map[string]noteroll.MidiState) []Event {
	for _, k := range slices.Sorted(maps.Keys(before)) {
		if _, ok := after[k]; !ok {
			events = append(events, SourceChanged{Key: k, Deleted: true})
		}
	}
	for _, k := range slices.Sorted(maps.Keys(after)) {
		if s, ok := before[k]; !ok || !reflect.DeepEqual(s.Copy(), after[k].Copy()) {
			events = append(events, SourceChanged{Key: k})
		}
	}
	return events
}

func trackProps(t noteroll.Track) noteroll.Track {
	t.Clips = nil
	return t
}

func trackMap(tracks []noteroll.Track) map[noteroll.ID]noteroll.Track {
	ret := make(map[noteroll.ID]noteroll.Track, len(tracks))
	for _, t := range tracks {
		ret[t.ID] = t
	}
	return ret
}

// clipMap indexes the clips of the tracks that also appear in other.
func clipMap(tracks []noteroll.Track, other map[noteroll.ID]noteroll.Track) map[noteroll.ID]placedClip {
	ret := map[noteroll.ID]placedClip{}
	for _, t := range tracks {
		if _, ok := other[t.ID]; !ok {
			continue
		}
		for _, c := range t.Clips {
			ret[c.ID] = placedClip{track: t.ID, clip: c.Copy()}
		}
	}
	return ret
}

func pointMap(points []noteroll.CurvePoint) map[noteroll.ID]noteroll.CurvePoint {
	ret := make(map[noteroll.ID]noteroll.CurvePoint, len(points))
	for _, p := range points {
		ret[p.ID] = p
	}
	return ret
}

func sortedKeys[V any, M ~map[noteroll.ID]V](m M) []noteroll.ID {
	return slices.Sorted(maps.Keys(m))
}
