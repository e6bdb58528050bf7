package editor_test

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/editor"
	"github.com/vsariola/noteroll/player"
)

type recorder struct {
	calls []string
}

func (r *recorder) NoteOn(pitch, velocity uint8) {
	r.calls = append(r.calls, fmt.Sprintf("on %d %d", pitch, velocity))
}
func (r *recorder) NoteOff(pitch uint8)   { r.calls = append(r.calls, fmt.Sprintf("off %d", pitch)) }
func (r *recorder) AllNotesOff()          { r.calls = append(r.calls, "all off") }
func (r *recorder) SetVolume(float32)     {}
func (r *recorder) SetPitchShift(float32) {}

func (r *recorder) take() []string {
	ret := r.calls
	r.calls = nil
	return ret
}

func newModel(t *testing.T) (*editor.Model, *recorder) {
	t.Helper()
	r := &recorder{}
	m := editor.New(r, nil, editor.Options{})
	t.Cleanup(m.Close)
	return m, r
}

func first[E editor.Event](t *testing.T, events []editor.Event) E {
	t.Helper()
	for _, e := range events {
		if ret, ok := e.(E); ok {
			return ret
		}
	}
	var zero E
	t.Fatalf("no %T in events:\n%s", zero, spew.Sdump(events))
	return zero
}

func createNote(t *testing.T, m *editor.Model, start, duration int64, pitch int) noteroll.Note {
	t.Helper()
	events := m.Execute(editor.CreateNote{Note: noteroll.Note{Start: start, Duration: duration, Pitch: pitch, Velocity: 100}})
	return first[editor.NoteAdded](t, events).Note
}

func createTrack(t *testing.T, m *editor.Model) noteroll.ID {
	t.Helper()
	return first[editor.TrackAdded](t, m.Execute(editor.CreateTrack{})).Track.ID
}

func createClip(t *testing.T, m *editor.Model, track noteroll.ID, clip noteroll.Clip) noteroll.Clip {
	t.Helper()
	return first[editor.ClipAdded](t, m.Execute(editor.CreateClip{Track: track, Clip: clip})).Clip
}

func embedded(start, duration int64, notes ...noteroll.Note) noteroll.Clip {
	return noteroll.Clip{Start: start, Duration: duration, Content: noteroll.ClipContent{Notes: notes}}
}

func TestCreateNote(t *testing.T) {
	m, _ := newModel(t)
	n := createNote(t, m, 0, 480, 60)
	if n.ID == 0 {
		t.Fatalf("note got no ID")
	}
	if got, ok := m.Note(n.ID); !ok || got != n {
		t.Errorf("Note(%d) = %v, %v", n.ID, got, ok)
	}
	if !m.CanUndo() || !m.ChangedSinceSave() {
		t.Errorf("creating a note should be undoable and mark the document changed")
	}
}

func TestInvalidCommandsAreNoOps(t *testing.T) {
	m, _ := newModel(t)
	n := createNote(t, m, 480, 480, 60)
	track := createTrack(t, m)
	clip := createClip(t, m, track, embedded(0, 960))
	cases := []struct {
		cmd  editor.Command
		want error
	}{
		{editor.CreateNote{Note: noteroll.Note{Start: -1, Duration: 10, Pitch: 60, Velocity: 100}}, editor.ErrInvalidNote},
		{editor.CreateNote{Note: noteroll.Note{Start: 0, Duration: 0, Pitch: 60, Velocity: 100}}, editor.ErrInvalidNote},
		{editor.CreateNote{Note: noteroll.Note{Start: 0, Duration: 10, Pitch: 128, Velocity: 100}}, editor.ErrInvalidNote},
		{editor.CreateNote{Note: noteroll.Note{Start: 0, Duration: 10, Pitch: 60, Velocity: 128}}, editor.ErrInvalidNote},
		{editor.MoveNote{ID: 9999, Start: 0, Pitch: 60}, editor.ErrUnknownID},
		{editor.MoveNote{ID: n.ID, Start: -5, Pitch: 60}, editor.ErrInvalidNote},
		{editor.ResizeNote{ID: n.ID, Start: 0, Duration: 0}, editor.ErrInvalidNote},
		{editor.SplitNote{ID: n.ID, At: 480}, editor.ErrEmptySplit},
		{editor.DeleteNotes{IDs: []noteroll.ID{n.ID, 9999}}, editor.ErrUnknownID},
		{editor.SplitClip{ID: clip.ID, At: 960}, editor.ErrEmptySplit},
		{editor.ResizeClip{ID: clip.ID, Duration: 2000, FromStart: true}, editor.ErrInvalidClip},
		{editor.CreateClip{Track: 9999, Clip: embedded(0, 10)}, editor.ErrUnknownID},
		{editor.SetBPM{BPM: 0}, editor.ErrInvalidValue},
		{editor.SetTimeSignature{TimeSignature: noteroll.TimeSignature{Numerator: 3, Denominator: 5}}, editor.ErrInvalidValue},
		{editor.SetLoop{Start: 960, End: 960, Enabled: true}, editor.ErrInvalidValue},
		{editor.SetVolume{Gain: 2.5}, editor.ErrInvalidValue},
		{editor.SetSelection{IDs: []noteroll.ID{9999}}, editor.ErrUnknownID},
		{editor.AddCurvePoint{Kind: 7, Tick: 0, Value: 1}, editor.ErrInvalidCurve},
		{editor.SetSource{Key: noteroll.StateSource}, editor.ErrInvalidSource},
		{editor.BatchTransform{Transpose: 100}, editor.ErrInvalidNote},
		{editor.Humanize{Timing: math.MaxInt64/2 + 1, Seed: 1}, editor.ErrInvalidValue},
		{editor.CreateNote{Note: noteroll.Note{Start: math.MaxInt64 - 5, Duration: 10, Pitch: 60, Velocity: 100}}, editor.ErrInvalidNote},
		{editor.CreateClip{Track: track, Clip: embedded(math.MaxInt64-5, 10)}, editor.ErrInvalidClip},
		{editor.EndGesture{}, editor.ErrNoGesture},
		{editor.Redo{}, editor.ErrNothingToRedo},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%T", c.cmd), func(t *testing.T) {
			var rejected error
			m.SetRejectHook(func(_ editor.Command, err error) { rejected = err })
			before := m.Document()
			timeline := m.Timeline()
			if events := m.Execute(c.cmd); events != nil {
				t.Errorf("rejected command emitted %v", events)
			}
			if !errors.Is(rejected, c.want) {
				t.Errorf("reject hook got %v, want %v", rejected, c.want)
			}
			if !reflect.DeepEqual(before, m.Document()) || timeline != m.Timeline() {
				t.Errorf("rejected command changed the document")
			}
		})
	}
	if events := m.TakeEvents(); len(events) != 3 {
		t.Errorf("only the three setup commands should have produced events, got %d", len(events))
	}
}

func TestUndoRedoAll(t *testing.T) {
	m, _ := newModel(t)
	initial := m.Document()
	track := createTrack(t, m)
	a := createNote(t, m, 0, 480, 60)
	createNote(t, m, 480, 480, 64)
	m.Execute(editor.MoveNote{ID: a.ID, Start: 120, Pitch: 62})
	m.Execute(editor.SetBPM{BPM: 140})
	m.Execute(editor.SetTimeSignature{TimeSignature: noteroll.TimeSignature{Numerator: 6, Denominator: 8}})
	m.Execute(editor.AddCurvePoint{Kind: noteroll.VelocityCurve, Tick: 0, Value: 64})
	m.Execute(editor.SetCurveEnabled{Kind: noteroll.VelocityCurve, Enabled: true})
	c := createClip(t, m, track, embedded(0, 960, noteroll.Note{Start: 0, Duration: 600, Pitch: 50, Velocity: 90}))
	m.Execute(editor.SplitClip{ID: c.ID, At: 480})
	m.Execute(editor.Humanize{Timing: 30, Velocity: 10, Seed: 3})
	final := m.Document()
	undos := 0
	for m.CanUndo() {
		m.Execute(editor.Undo{})
		undos++
	}
	if undos != 11 {
		t.Errorf("got %d history entries, want 11", undos)
	}
	if got := m.Document(); !reflect.DeepEqual(got, initial) {
		t.Errorf("undo all did not restore the initial document:\n%s", spew.Sdump(got))
	}
	if m.Timeline().BPM != noteroll.DefaultBPM {
		t.Errorf("undo all left the timeline at %v bpm", m.Timeline().BPM)
	}
	for m.CanRedo() {
		m.Execute(editor.Redo{})
	}
	if got := m.Document(); !reflect.DeepEqual(got, final) {
		t.Errorf("redo all did not reproduce the final document:\n%s\nwant\n%s", spew.Sdump(got), spew.Sdump(final))
	}
	if tl := m.Timeline(); tl.BPM != 140 || tl.TimeSignature.Numerator != 6 {
		t.Errorf("redo all left the timeline at %v bpm, %v", tl.BPM, tl.TimeSignature)
	}
}

func TestUndoEmitsInverseEvents(t *testing.T) {
	m, _ := newModel(t)
	n := createNote(t, m, 0, 480, 60)
	events := m.Execute(editor.Undo{})
	if got := first[editor.NoteDeleted](t, events).Note; got != n {
		t.Errorf("undo deleted %v, want %v", got, n)
	}
	events = m.Execute(editor.Redo{})
	if got := first[editor.NoteAdded](t, events).Note; got != n {
		t.Errorf("redo added %v, want %v", got, n)
	}
}

func TestGestureCoalesces(t *testing.T) {
	m, _ := newModel(t)
	n := createNote(t, m, 0, 480, 60)
	m.Execute(editor.BeginGesture{Name: "drag"})
	for i := range 5 {
		m.Execute(editor.MoveNote{ID: n.ID, Start: int64(i+1) * 120, Pitch: 60 + i})
	}
	m.Execute(editor.EndGesture{})
	m.Execute(editor.Undo{})
	if got, _ := m.Note(n.ID); got != n {
		t.Errorf("one undo should revert the whole drag, note is %v", got)
	}
	m.Execute(editor.Undo{})
	if len(m.Notes()) != 0 || m.CanUndo() {
		t.Errorf("second undo should remove the note and empty the history")
	}
}

func TestGestureWithoutNetChangeRecordsNothing(t *testing.T) {
	m, _ := newModel(t)
	n := createNote(t, m, 0, 480, 60)
	m.Execute(editor.BeginGesture{Name: "wiggle"})
	m.Execute(editor.MoveNote{ID: n.ID, Start: 240, Pitch: 61})
	m.Execute(editor.BeginGesture{Name: "nested"})
	m.Execute(editor.MoveNote{ID: n.ID, Start: 0, Pitch: 60})
	m.Execute(editor.EndGesture{})
	m.Execute(editor.EndGesture{})
	m.Execute(editor.Undo{})
	if len(m.Notes()) != 0 {
		t.Errorf("the gesture recorded an entry although nothing changed")
	}
}

func TestHistoryDepthDropsOldest(t *testing.T) {
	m := editor.New(nil, nil, editor.Options{HistoryDepth: 3})
	for i := range 5 {
		m.Execute(editor.CreateNote{Note: noteroll.Note{Start: int64(i) * 480, Duration: 480, Pitch: 60, Velocity: 100}})
	}
	undos := 0
	for m.CanUndo() {
		m.Execute(editor.Undo{})
		undos++
	}
	if undos != 3 || len(m.Notes()) != 2 {
		t.Errorf("got %d undos leaving %d notes, want 3 and 2", undos, len(m.Notes()))
	}
}

func TestSelectionPruned(t *testing.T) {
	m, _ := newModel(t)
	a := createNote(t, m, 0, 480, 60)
	b := createNote(t, m, 0, 480, 64)
	m.Execute(editor.SetSelection{IDs: []noteroll.ID{b.ID, a.ID}})
	if got := m.Selection(); !slices.Equal(got, []noteroll.ID{a.ID, b.ID}) {
		t.Fatalf("selection = %v", got)
	}
	events := m.Execute(editor.DeleteNotes{IDs: []noteroll.ID{a.ID}})
	if got := first[editor.SelectionChanged](t, events).IDs; !slices.Equal(got, []noteroll.ID{b.ID}) {
		t.Errorf("selection after delete = %v", got)
	}
	events = m.Execute(editor.Undo{})
	first[editor.NoteAdded](t, events)
	m.Execute(editor.Undo{})
	if got := m.Selection(); len(got) != 0 {
		t.Errorf("undoing the creation should drop the note from the selection, got %v", got)
	}
	if !m.CanUndo() {
		t.Errorf("selection changes must not consume history")
	}
}

func TestReentrantExecuteRejected(t *testing.T) {
	m, _ := newModel(t)
	var nested []editor.Event
	var rejected error
	m.SetRejectHook(func(_ editor.Command, err error) { rejected = err })
	m.SetListener(func(editor.Event) {
		nested = m.Execute(editor.CreateNote{Note: noteroll.Note{Start: 0, Duration: 1, Pitch: 1, Velocity: 1}})
	})
	createNote(t, m, 0, 480, 60)
	if nested != nil || !errors.Is(rejected, editor.ErrReentrant) {
		t.Errorf("nested execute returned %v, rejection %v", nested, rejected)
	}
	if len(m.Notes()) != 1 {
		t.Errorf("nested command was applied")
	}
}

func TestEventsBufferedWithoutListener(t *testing.T) {
	m, _ := newModel(t)
	createNote(t, m, 0, 480, 60)
	m.Execute(editor.SetPlayhead{Tick: 240})
	events := m.TakeEvents()
	if len(events) != 2 {
		t.Fatalf("buffered %d events, want 2", len(events))
	}
	if _, ok := events[0].(editor.NoteAdded); !ok {
		t.Errorf("first event is %T", events[0])
	}
	if tc, ok := events[1].(editor.TransportChanged); !ok || tc.Tick != 240 || tc.Seconds != 0.25 {
		t.Errorf("second event is %#v", events[1])
	}
	if len(m.TakeEvents()) != 0 {
		t.Errorf("TakeEvents did not clear the buffer")
	}
}

func TestSplitClipTruncates(t *testing.T) {
	m, _ := newModel(t)
	track := createTrack(t, m)
	c := createClip(t, m, track, embedded(960, 960,
		noteroll.Note{Start: 0, Duration: 100, Pitch: 60, Velocity: 100},
		noteroll.Note{Start: 400, Duration: 200, Pitch: 62, Velocity: 100},
		noteroll.Note{Start: 480, Duration: 100, Pitch: 64, Velocity: 100},
		noteroll.Note{Start: 700, Duration: 100, Pitch: 65, Velocity: 100},
	))
	events := m.Execute(editor.SplitClip{ID: c.ID, At: 1440})
	left := first[editor.ClipUpdated](t, events).After
	right := first[editor.ClipAdded](t, events).Clip
	if left.Start != 960 || left.Duration != 480 || right.Start != 1440 || right.Duration != 480 || right.Offset != 480 {
		t.Errorf("split placement wrong:\n%s", spew.Sdump(left, right))
	}
	if n := len(left.Content.Notes) + len(right.Content.Notes); n != 4 {
		t.Errorf("split changed the note count to %d", n)
	}
	if straddling := left.Content.Notes[1]; straddling.End() != 480 {
		t.Errorf("straddling note should be truncated at the split, ends at %d", straddling.End())
	}
	tr, _ := m.Track(track)
	if len(tr.Clips) != 2 || tr.Clips[0].ID != c.ID || tr.Clips[1].ID != right.ID {
		t.Errorf("track clips after split:\n%s", spew.Sdump(tr.Clips))
	}
}

func TestResizeClipFromStart(t *testing.T) {
	m, _ := newModel(t)
	track := createTrack(t, m)
	c := createClip(t, m, track, noteroll.Clip{Start: 960, Duration: 960, Offset: 480, Content: noteroll.ClipContent{Kind: noteroll.SourceContent, Source: "riff"}})
	events := m.Execute(editor.ResizeClip{ID: c.ID, Duration: 1200, FromStart: true})
	got := first[editor.ClipUpdated](t, events).After
	if got.Start != 720 || got.Offset != 240 || got.End() != c.End() {
		t.Errorf("resized clip = %+v", got)
	}
}

func TestDeleteTrackCascadesClipsButNotSources(t *testing.T) {
	m, _ := newModel(t)
	src := noteroll.NewMidiState()
	src.Notes[1] = noteroll.Note{ID: 1, Start: 0, Duration: 100, Pitch: 60, Velocity: 100}
	m.Execute(editor.SetSource{Key: "riff", State: src})
	track := createTrack(t, m)
	c := createClip(t, m, track, noteroll.Clip{Start: 0, Duration: 480, Content: noteroll.ClipContent{Kind: noteroll.SourceContent, Source: "riff"}})
	m.Execute(editor.SetSelection{IDs: []noteroll.ID{c.ID}})
	events := m.Execute(editor.DeleteTrack{ID: track})
	if got := first[editor.TrackDeleted](t, events).Track; len(got.Clips) != 1 {
		t.Errorf("deleted track should carry its clip")
	}
	first[editor.SelectionChanged](t, events)
	if _, _, ok := m.Clip(c.ID); ok {
		t.Errorf("clip survived its track")
	}
	if _, ok := m.Source("riff"); !ok {
		t.Errorf("deleting a track removed the source")
	}
}

func TestSourceEditPropagatesToPlayback(t *testing.T) {
	m, r := newModel(t)
	src := noteroll.NewMidiState()
	src.Notes[1] = noteroll.Note{ID: 1, Start: 0, Duration: 100, Pitch: 60, Velocity: 100}
	m.Execute(editor.SetSource{Key: "riff", State: src})
	for _, start := range []int64{0, 960} {
		createClip(t, m, createTrack(t, m), noteroll.Clip{Start: start, Duration: 480, Content: noteroll.ClipContent{Kind: noteroll.SourceContent, Source: "riff"}})
	}
	src.Notes[1] = noteroll.Note{ID: 1, Start: 0, Duration: 100, Pitch: 72, Velocity: 100}
	events := m.Execute(editor.SetSource{Key: "riff", State: src})
	if got := first[editor.SourceChanged](t, events); got.Key != "riff" || got.Deleted {
		t.Errorf("got %+v", got)
	}
	r.take()
	m.Execute(editor.SetPlayback{Playing: true})
	m.Advance(1.5)
	want := []string{"on 72 100", "off 72", "on 72 100", "off 72"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSoloFiltersTracks(t *testing.T) {
	m, r := newModel(t)
	a, b := createTrack(t, m), createTrack(t, m)
	createClip(t, m, a, embedded(0, 480, noteroll.Note{Start: 0, Duration: 100, Pitch: 60, Velocity: 100}))
	createClip(t, m, b, embedded(0, 480, noteroll.Note{Start: 0, Duration: 100, Pitch: 64, Velocity: 100}))
	m.Execute(editor.SetTrackSolo{ID: b, Solo: true})
	m.Execute(editor.SetPlayback{Playing: true})
	m.Advance(0.1)
	if got := r.take(); !slices.Equal(got, []string{"on 64 100"}) {
		t.Errorf("calls = %v, want only the soloed track", got)
	}
}

func TestPlaybackEvents(t *testing.T) {
	m, r := newModel(t)
	createNote(t, m, 0, 480, 60)
	events := m.Execute(editor.SetPlayback{Playing: true})
	if got := first[editor.PlaybackStateChanged](t, events).State; got != player.Playing {
		t.Errorf("state = %v", got)
	}
	events = m.Advance(0.25)
	if got := first[editor.TransportChanged](t, events); got.Tick != 240 || !got.Playing {
		t.Errorf("transport = %+v", got)
	}
	events = m.Execute(editor.StopPlayback{})
	if got := first[editor.PlaybackStateChanged](t, events).State; got != player.Stopped {
		t.Errorf("state = %v", got)
	}
	if got := first[editor.TransportChanged](t, events).Tick; got != 0 {
		t.Errorf("stop rewound to %d", got)
	}
	want := []string{"on 60 100", "all off"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if m.Execute(editor.StopPlayback{}) != nil {
		t.Errorf("stopping twice emitted events")
	}
}

func TestAdvanceIgnoresNonFiniteSteps(t *testing.T) {
	m, r := newModel(t)
	createNote(t, m, 0, 480, 60)
	m.Execute(editor.SetLoop{Start: 0, End: 960, Enabled: true})
	m.Execute(editor.SetPlayback{Playing: true})
	m.Advance(0.25)
	r.take()
	for _, step := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), -1} {
		if events := m.Advance(step); events != nil {
			t.Errorf("Advance(%v) emitted %v", step, events)
		}
	}
	if got := m.Timeline().Playhead; got != 240 {
		t.Errorf("playhead = %d, want 240", got)
	}
	if got := r.take(); len(got) > 0 {
		t.Errorf("calls = %v, want none", got)
	}
}

func TestHumanizeIsReproducible(t *testing.T) {
	run := func(seed uint64) []noteroll.Note {
		m := editor.New(nil, nil, editor.Options{})
		for i := range 8 {
			m.Execute(editor.CreateNote{Note: noteroll.Note{Start: int64(i) * 240, Duration: 120, Pitch: 60, Velocity: 100}})
		}
		m.Execute(editor.Humanize{Timing: 20, Velocity: 15, Seed: seed})
		return m.Notes()
	}
	a, b := run(42), run(42)
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave different results:\n%s\n%s", spew.Sdump(a), spew.Sdump(b))
	}
	if slices.Equal(a, run(43)) {
		t.Errorf("different seeds gave the same result")
	}
	for _, n := range a {
		if n.Velocity < 85 || n.Velocity > 115 || n.Start < 0 {
			t.Errorf("note out of humanize range: %+v", n)
		}
	}
}

func TestQuantizeStrength(t *testing.T) {
	for _, c := range []struct {
		strength float64
		want     int64
	}{{1, 120}, {0.5, 125}, {0, 130}} {
		m := editor.New(nil, nil, editor.Options{})
		n := createNote(t, m, 130, 100, 60)
		m.Execute(editor.Quantize{Interval: 120, Strength: c.strength})
		if got, _ := m.Note(n.ID); got.Start != c.want || got.End() != n.End() {
			t.Errorf("strength %v: note = %+v, want start %d and the same end", c.strength, got, c.want)
		}
	}
}

func TestSwingDelaysOffbeats(t *testing.T) {
	m, _ := newModel(t)
	var ids []noteroll.ID
	for i := range 4 {
		ids = append(ids, createNote(t, m, int64(i)*120, 60, 60).ID)
	}
	m.Execute(editor.Swing{Interval: 120, Ratio: 0.5})
	var starts []int64
	for _, id := range ids {
		n, _ := m.Note(id)
		starts = append(starts, n.Start)
	}
	if want := []int64{0, 150, 240, 390}; !slices.Equal(starts, want) {
		t.Errorf("starts = %v, want %v", starts, want)
	}
}

func TestBatchTransformActsOnSelection(t *testing.T) {
	m, _ := newModel(t)
	a := createNote(t, m, 0, 100, 60)
	b := createNote(t, m, 0, 100, 64)
	m.Execute(editor.SetSelection{IDs: []noteroll.ID{b.ID}})
	m.Execute(editor.BatchTransform{Shift: 10, Transpose: 12, VelocityScale: 0.5, DurationScale: 2})
	if got, _ := m.Note(a.ID); got != a {
		t.Errorf("unselected note changed: %+v", got)
	}
	want := noteroll.Note{ID: b.ID, Start: 10, Duration: 200, Pitch: 76, Velocity: 50}
	if got, _ := m.Note(b.ID); got != want {
		t.Errorf("note = %+v, want %+v", got, want)
	}
}

func TestCurvePointOnSameTick(t *testing.T) {
	m, _ := newModel(t)
	events := m.Execute(editor.AddCurvePoint{Kind: noteroll.PitchCurve, Tick: 0, Value: 5})
	p := first[editor.CurvePointAdded](t, events).Point
	events = m.Execute(editor.AddCurvePoint{Kind: noteroll.PitchCurve, Tick: 0, Value: 20})
	got := first[editor.CurvePointUpdated](t, events).After
	if got.ID != p.ID || got.Value != 12 {
		t.Errorf("point = %+v, want ID %d clamped to 12", got, p.ID)
	}
	if pts := m.State().Curves.Pitch.Points; len(pts) != 1 {
		t.Errorf("curve has %d points", len(pts))
	}
}

func TestCurvesShapePlayback(t *testing.T) {
	m, r := newModel(t)
	createNote(t, m, 0, 100, 60)
	m.Execute(editor.AddCurvePoint{Kind: noteroll.VelocityCurve, Tick: 0, Value: 127})
	m.Execute(editor.AddCurvePoint{Kind: noteroll.VelocityCurve, Tick: 960, Value: 0})
	m.Execute(editor.AddCurvePoint{Kind: noteroll.PitchCurve, Tick: 0, Value: -3})
	m.Execute(editor.SetCurveEnabled{Kind: noteroll.VelocityCurve, Enabled: true})
	m.Execute(editor.SetCurveEnabled{Kind: noteroll.PitchCurve, Enabled: true})
	createNote(t, m, 480, 100, 60)
	m.Execute(editor.SetPlayback{Playing: true})
	m.Advance(1)
	want := []string{"on 57 100", "off 57", "on 57 50", "off 57"}
	if got := r.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReplaceState(t *testing.T) {
	m, _ := newModel(t)
	old := createNote(t, m, 0, 480, 60)
	s := noteroll.NewMidiState()
	s.BPM = 90
	s.Notes[old.ID] = noteroll.Note{ID: old.ID, Start: 0, Duration: 240, Pitch: 48, Velocity: 80}
	events := m.Execute(editor.ReplaceState{State: s})
	replaced := first[editor.StateReplaced](t, events).State
	if len(replaced.Notes) != 1 {
		t.Fatalf("replaced state has %d notes", len(replaced.Notes))
	}
	for id := range replaced.Notes {
		if id == old.ID {
			t.Errorf("incoming note kept an ID of this editor")
		}
	}
	if got := first[editor.TimelineChanged](t, events).Timeline.BPM; got != 90 {
		t.Errorf("timeline bpm = %v", got)
	}
	if len(events) != 2 {
		t.Errorf("unexpected events:\n%s", spew.Sdump(events))
	}
}

func TestOverrideTransport(t *testing.T) {
	m, r := newModel(t)
	createNote(t, m, 0, 960, 60)
	events := m.Execute(editor.OverrideTransport{Transport: &editor.TransportState{Playing: true, Seconds: 0.5}})
	if got := first[editor.TransportChanged](t, events).Tick; got != 480 {
		t.Errorf("playhead = %d, want 480", got)
	}
	if got := r.take(); !slices.Equal(got, []string{"on 60 100"}) {
		t.Errorf("calls = %v", got)
	}
	var rejected error
	m.SetRejectHook(func(_ editor.Command, err error) { rejected = err })
	m.Execute(editor.SetPlayback{Playing: false})
	if !errors.Is(rejected, editor.ErrOverridden) {
		t.Errorf("local transport control should be rejected while overridden, got %v", rejected)
	}
	if m.Advance(1) != nil {
		t.Errorf("Advance moved an overridden transport")
	}
	m.Execute(editor.OverrideTransport{})
	events = m.Execute(editor.SetPlayback{Playing: false})
	if got := first[editor.PlaybackStateChanged](t, events).State; got != player.Paused {
		t.Errorf("state = %v", got)
	}
}

func TestRecovery(t *testing.T) {
	m, _ := newModel(t)
	track := createTrack(t, m)
	createClip(t, m, track, embedded(0, 480, noteroll.Note{Start: 0, Duration: 100, Pitch: 60, Velocity: 100}))
	n := createNote(t, m, 120, 240, 67)
	m.Execute(editor.AddCurvePoint{Kind: noteroll.VelocityCurve, Tick: 0, Value: 90})
	m.Execute(editor.SetLoop{Start: 0, End: 960, Enabled: true})
	path := filepath.Join(t.TempDir(), "recovery", editor.RecoveryFile)
	if err := m.SaveRecovery(path); err != nil {
		t.Fatalf("SaveRecovery failed: %v", err)
	}
	m2, _ := newModel(t)
	if err := m2.LoadRecovery(path); err != nil {
		t.Fatalf("LoadRecovery failed: %v", err)
	}
	if got, want := m2.Document(), m.Document(); !reflect.DeepEqual(got, want) {
		t.Errorf("recovered document differs:\n%s\nwant\n%s", spew.Sdump(got), spew.Sdump(want))
	}
	if !m2.Timeline().Loop.Enabled || m2.CanUndo() {
		t.Errorf("recovered timeline %+v, undo %v", m2.Timeline().Loop, m2.CanUndo())
	}
	added := createNote(t, m2, 0, 10, 1)
	if added.ID <= n.ID {
		t.Errorf("recovered editor reused IDs: new note got %d", added.ID)
	}
}
