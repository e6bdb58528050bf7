// Package editor is the command/event bus of the note editor. A Model owns
// the Document, the Timeline, the undo history, the selection and the
// playback scheduler; hosts change it only by executing Commands and learn
// about the changes from the returned Events.
//
// A Model is not safe for concurrent use. It belongs to the host's control
// loop, which also calls Advance once per iteration to drive playback.
package editor

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/vsariola/noteroll"
	"github.com/vsariola/noteroll/player"
)

type (
	// Options configures a new Model.
	Options struct {
		// HistoryDepth bounds the undo and redo stacks; zero means
		// DefaultHistoryDepth.
		HistoryDepth int
		// Timeline is the initial transport and view. A zero timeline means
		// noteroll.NewTimeline().
		Timeline noteroll.Timeline
		Logger   *log.Logger
	}

	Model struct {
		d         Document
		timeline  noteroll.Timeline
		history   *History
		player    *player.Player
		selection map[noteroll.ID]struct{}
		override  *TransportState
		maxID     noteroll.ID

		changedSinceSave     bool
		changedSinceRecovery bool

		listener   func(Event)
		pending    []Event
		rejectHook func(Command, error)
		logger     *log.Logger
		busy       bool
	}

	tempo struct {
		bpm           float64
		ppq           int
		timeSignature noteroll.TimeSignature
	}
)

// New creates a model with an empty document. Playback goes to backend and
// transport changes are reported to observer; either may be nil.
func New(backend noteroll.Backend, observer noteroll.Observer, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tl := opts.Timeline
	if tl.PPQ <= 0 || tl.BPM <= 0 {
		tl = noteroll.NewTimeline()
	}
	m := &Model{
		d:         NewDocument(),
		timeline:  tl,
		history:   NewHistory(opts.HistoryDepth),
		player:    player.New(backend, observer),
		selection: map[noteroll.ID]struct{}{},
		logger:    logger,
	}
	m.d.State.BPM = tl.BPM
	m.d.State.PPQ = tl.PPQ
	m.d.State.TimeSignature = tl.TimeSignature
	m.player.SetLogger(logger)
	m.player.SetLoop(tl.Loop)
	m.player.SetVolume(float32(tl.Volume))
	m.player.SetPitchShift(float32(tl.PitchShift))
	m.player.SyncTo(tl.Playhead)
	m.refresh()
	return m
}

// SetListener sets the function receiving events as they happen. With no
// listener, events are buffered until TakeEvents.
func (m *Model) SetListener(l func(Event)) { m.listener = l }

// TakeEvents returns and clears the buffered events.
func (m *Model) TakeEvents() []Event {
	ret := m.pending
	m.pending = nil
	return ret
}

// SetRejectHook sets a function observing rejected commands.
func (m *Model) SetRejectHook(h func(Command, error)) { m.rejectHook = h }

// Execute validates and applies a command, returning the events it caused.
// A command that is invalid, or executed from within a listener, is rejected:
// it changes nothing, returns no events and is reported to the reject hook.
func (m *Model) Execute(cmd Command) []Event {
	if m.busy {
		m.reject(cmd, ErrReentrant)
		return nil
	}
	m.busy = true
	defer func() { m.busy = false }()
	events, err := m.execute(cmd)
	if err != nil {
		m.reject(cmd, err)
		return nil
	}
	m.deliver(events)
	return events
}

// Advance moves playback forward by the elapsed wall time. It is called once
// per iteration of the control loop; while the host overrides the transport
// it does nothing, as it does for a step that is not a positive finite number.
func (m *Model) Advance(elapsedSeconds float64) []Event {
	if m.busy || m.override != nil || !(elapsedSeconds > 0) || math.IsInf(elapsedSeconds, 0) {
		return nil
	}
	m.busy = true
	defer func() { m.busy = false }()
	before := m.player.Position()
	m.player.Advance(elapsedSeconds)
	if m.player.Position() == before {
		return nil
	}
	events := []Event{m.movePlayhead()}
	m.deliver(events)
	return events
}

// Close stops playback for good, silencing the backend.
func (m *Model) Close() { m.player.Close() }

func (m *Model) execute(cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case Undo:
		return m.undo()
	case Redo:
		return m.redo()
	case BeginGesture:
		m.history.Begin(c.Name, m.d)
		return nil, nil
	case EndGesture:
		if _, open := m.history.InGesture(); !open {
			return nil, ErrNoGesture
		}
		m.history.End(m.d)
		return nil, nil
	case ReplaceState:
		work := m.d.Copy()
		if err := m.replaceState(&work, c); err != nil {
			return nil, err
		}
		return m.commit(work, true), nil
	}
	if events, handled, err := m.transient(cmd); handled {
		return events, err
	}
	work := m.d.Copy()
	if err := m.apply(&work, cmd); err != nil {
		return nil, err
	}
	return m.commit(work, false), nil
}

func (m *Model) apply(d *Document, cmd Command) error {
	switch c := cmd.(type) {
	case CreateNote:
		return m.createNote(d, c)
	case DeleteNotes:
		return deleteNotes(d, c)
	case MoveNote:
		return moveNote(d, c)
	case ResizeNote:
		return resizeNote(d, c)
	case SplitNote:
		return m.splitNote(d, c)
	case SetNoteVelocity:
		return setNoteVelocity(d, c)
	case SetNotes:
		d.State.Notes = noteroll.NoteMap{}
		return m.addNotes(d, c.Notes)
	case AppendNotes:
		return m.addNotes(d, c.Notes)
	case ClearNotes:
		d.State.Notes = noteroll.NoteMap{}
		return nil
	case AddCurvePoint:
		return m.addCurvePoint(d, c)
	case UpdateCurvePoint:
		return updateCurvePoint(d, c)
	case DeleteCurvePoint:
		return deleteCurvePoint(d, c)
	case SetCurveEnabled:
		return setCurveEnabled(d, c)
	case CreateClip:
		return m.createClip(d, c)
	case DeleteClip:
		return deleteClip(d, c)
	case MoveClip:
		return moveClip(d, c)
	case ResizeClip:
		return resizeClip(d, c)
	case SplitClip:
		return m.splitClip(d, c)
	case RenameClip:
		return renameClip(d, c)
	case CreateTrack:
		return m.createTrack(d, c)
	case DeleteTrack, RenameTrack, SetTrackMute, SetTrackSolo, SetTrackRecordArm, SetTrackMonitor, SetTrackVolume, SetTrackPan:
		return editTrack(d, c)
	case SetSource:
		return setSource(d, c)
	case DeleteSource:
		return deleteSource(d, c)
	case SetBPM:
		return setBPM(d, c)
	case SetTimeSignature:
		return setTimeSignature(d, c)
	case Humanize:
		return m.humanize(d, c)
	case Quantize:
		return m.quantize(d, c)
	case Swing:
		return m.swing(d, c)
	case BatchTransform:
		return m.batchTransform(d, c)
	}
	return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

// commit makes next the current document. A command that turned out to
// change nothing leaves no trace in the history.
func (m *Model) commit(next Document, replaced bool) []Event {
	events := diff(&m.d, &next)
	if replaced {
		events = slices.DeleteFunc(events, isStateEvent)
		events = slices.Insert(events, 0, Event(StateReplaced{State: next.State.Copy()}))
	}
	if len(events) == 0 && tempoOf(&m.d.State) == tempoOf(&next.State) {
		return nil
	}
	if m.history.Record(m.d) {
		m.logger.Debug("history full, dropped the oldest entry")
	}
	m.d = next
	m.touch()
	return m.settle(events)
}

// settle brings the timeline, the selection and the player in line with the
// document after it changed.
func (m *Model) settle(events []Event) []Event {
	if t := tempoOf(&m.d.State); t != m.timelineTempo() {
		m.timeline.BPM = t.bpm
		m.timeline.PPQ = t.ppq
		m.timeline.TimeSignature = t.timeSignature
		events = append(events, TimelineChanged{Timeline: m.timeline})
	}
	if m.pruneSelection() {
		events = append(events, SelectionChanged{IDs: m.Selection()})
	}
	m.refresh()
	return events
}

func (m *Model) undo() ([]Event, error) {
	m.history.Close(m.d)
	prev, ok := m.history.Undo(m.d)
	if !ok {
		return nil, ErrNothingToUndo
	}
	return m.restore(prev), nil
}

func (m *Model) redo() ([]Event, error) {
	if _, open := m.history.InGesture(); open {
		return nil, ErrNothingToRedo
	}
	next, ok := m.history.Redo(m.d)
	if !ok {
		return nil, ErrNothingToRedo
	}
	return m.restore(next), nil
}

func (m *Model) restore(d Document) []Event {
	events := diff(&m.d, &d)
	m.d = d
	m.touch()
	return m.settle(events)
}

func (m *Model) reject(cmd Command, err error) {
	m.logger.Debug("command rejected", "command", fmt.Sprintf("%T", cmd), "err", err)
	if m.rejectHook != nil {
		m.rejectHook(cmd, err)
	}
}

func (m *Model) deliver(events []Event) {
	if m.listener == nil {
		m.pending = append(m.pending, events...)
		return
	}
	for _, e := range events {
		m.listener(e)
	}
}

func (m *Model) touch() {
	m.changedSinceSave = true
	m.changedSinceRecovery = true
}

func (m *Model) newID() noteroll.ID {
	m.maxID++
	return m.maxID
}

func (m *Model) timelineTempo() tempo {
	return tempo{bpm: m.timeline.BPM, ppq: m.timeline.PPQ, timeSignature: m.timeline.TimeSignature}
}

func tempoOf(s *noteroll.MidiState) tempo {
	return tempo{bpm: s.BPM, ppq: s.PPQ, timeSignature: s.TimeSignature}
}

func isStateEvent(e Event) bool {
	switch e.(type) {
	case StateReplaced, NoteAdded, NoteDeleted, NoteUpdated, CurvePointAdded, CurvePointRemoved, CurvePointUpdated, CurveChanged:
		return true
	}
	return false
}

// Document returns a copy of the current document.
func (m *Model) Document() Document { return m.d.Copy() }

// State returns a copy of the MidiState.
func (m *Model) State() noteroll.MidiState { return m.d.State.Copy() }

func (m *Model) Note(id noteroll.ID) (noteroll.Note, bool) {
	n, ok := m.d.State.Notes[id]
	return n, ok
}

// Notes returns the notes of the state ordered by start, pitch and ID.
func (m *Model) Notes() []noteroll.Note { return m.d.State.Notes.Sorted() }

func (m *Model) Tracks() []noteroll.Track { return m.d.Copy().Tracks }

func (m *Model) Track(id noteroll.ID) (noteroll.Track, bool) {
	i := m.d.TrackIndex(id)
	if i < 0 {
		return noteroll.Track{}, false
	}
	return m.d.Tracks[i].Copy(), true
}

// Clip returns the clip with the given ID and the ID of the track holding it.
func (m *Model) Clip(id noteroll.ID) (noteroll.Clip, noteroll.ID, bool) {
	t, c, ok := m.d.ClipIndex(id)
	if !ok {
		return noteroll.Clip{}, 0, false
	}
	return m.d.Tracks[t].Clips[c].Copy(), m.d.Tracks[t].ID, true
}

func (m *Model) Source(key string) (noteroll.MidiState, bool) {
	s, ok := m.d.Source(key)
	return s.Copy(), ok
}

func (m *Model) Timeline() noteroll.Timeline { return m.timeline }

// Selection returns the selected IDs in ascending order.
func (m *Model) Selection() []noteroll.ID { return slices.Sorted(maps.Keys(m.selection)) }

func (m *Model) PlaybackState() player.State { return m.player.State() }
func (m *Model) CanUndo() bool               { return m.history.CanUndo() }
func (m *Model) CanRedo() bool               { return m.history.CanRedo() }

// ChangedSinceSave reports whether the document changed since MarkSaved.
func (m *Model) ChangedSinceSave() bool { return m.changedSinceSave }
func (m *Model) MarkSaved()             { m.changedSinceSave = false }

// Snap snaps a tick with the timeline grid. Relative snapping keeps the
// offset of reference, the position of the dragged object before the drag.
func (m *Model) Snap(value, reference int64) int64 {
	return noteroll.Snap(value, m.timeline.Snap.Interval, m.timeline.Snap.Mode, reference)
}
