package editor

import "github.com/vsariola/noteroll"

// Command is a request to change the editor. Commands are plain values
// executed with Model.Execute; an invalid command changes nothing.
type Command interface{ command() }

// CreateNote adds a note. Its ID is assigned by the editor. Ticks in note
// commands are absolute positions in the MidiState; hosts snap them with
// Model.Snap before building the command.
type CreateNote struct{ Note noteroll.Note }

// DeleteNotes removes the notes with the given IDs.
type DeleteNotes struct{ IDs []noteroll.ID }

// MoveNote sets the start and pitch of a note.
type MoveNote struct {
	ID    noteroll.ID
	Start int64
	Pitch int
}

// ResizeNote sets the start and duration of a note.
type ResizeNote struct {
	ID       noteroll.ID
	Start    int64
	Duration int64
}

// SplitNote cuts a note in two at tick At.
type SplitNote struct {
	ID noteroll.ID
	At int64
}

type SetNoteVelocity struct {
	IDs      []noteroll.ID
	Velocity int
}

// SetNotes replaces every note of the state.
type SetNotes struct{ Notes []noteroll.Note }

type AppendNotes struct{ Notes []noteroll.Note }

type ClearNotes struct{}

type AddCurvePoint struct {
	Kind  noteroll.CurveKind
	Tick  int64
	Value float64
}

type UpdateCurvePoint struct {
	Kind  noteroll.CurveKind
	ID    noteroll.ID
	Tick  int64
	Value float64
}

type DeleteCurvePoint struct {
	Kind noteroll.CurveKind
	ID   noteroll.ID
}

type SetCurveEnabled struct {
	Kind    noteroll.CurveKind
	Enabled bool
}

// CreateClip adds a clip to a track. The clip and its embedded notes get new
// IDs.
type CreateClip struct {
	Track noteroll.ID
	Clip  noteroll.Clip
}

type DeleteClip struct{ ID noteroll.ID }

// MoveClip moves a clip to another position, possibly on another track.
type MoveClip struct {
	ID    noteroll.ID
	Track noteroll.ID
	Start int64
}

// ResizeClip changes the length of a clip. With FromStart the clip end stays
// put and the start moves, revealing or hiding content.
type ResizeClip struct {
	ID        noteroll.ID
	Duration  int64
	FromStart bool
}

// SplitClip cuts a clip in two at timeline tick At.
type SplitClip struct {
	ID noteroll.ID
	At int64
}

type RenameClip struct {
	ID   noteroll.ID
	Name string
}

// CreateTrack appends a track. An empty name gets a numbered default.
type CreateTrack struct{ Name string }

// DeleteTrack removes a track and its clips.
type DeleteTrack struct{ ID noteroll.ID }

type RenameTrack struct {
	ID   noteroll.ID
	Name string
}

type SetTrackMute struct {
	ID   noteroll.ID
	Mute bool
}

type SetTrackSolo struct {
	ID   noteroll.ID
	Solo bool
}

type SetTrackRecordArm struct {
	ID  noteroll.ID
	Arm bool
}

type SetTrackMonitor struct {
	ID      noteroll.ID
	Monitor bool
}

type SetTrackVolume struct {
	ID     noteroll.ID
	Volume float64
}

type SetTrackPan struct {
	ID  noteroll.ID
	Pan float64
}

// SetSource registers or replaces a shared note-set. Every clip referring to
// Key plays the new material.
type SetSource struct {
	Key   string
	State noteroll.MidiState
}

type DeleteSource struct{ Key string }

// ReplaceState replaces the whole MidiState; its notes and curve points get
// new IDs.
type ReplaceState struct{ State noteroll.MidiState }

type SetBPM struct{ BPM float64 }

type SetTimeSignature struct{ TimeSignature noteroll.TimeSignature }

// Humanize offsets note starts by up to Timing ticks and velocities by up to
// Velocity, randomly but reproducibly for a given Seed.
//
// Like the other transforms, it acts on the notes listed in IDs; with no IDs
// on the selected notes, and with nothing selected on every note.
type Humanize struct {
	IDs      []noteroll.ID
	Timing   int64
	Velocity int
	Seed     uint64
}

// Quantize pulls note starts (and ends with Ends) towards the grid by
// Strength, 0..1. A zero Interval uses the timeline snap interval.
type Quantize struct {
	IDs      []noteroll.ID
	Interval int64
	Strength float64
	Ends     bool
}

// Swing delays notes on odd grid lines by Ratio times half the interval.
type Swing struct {
	IDs      []noteroll.ID
	Interval int64
	Ratio    float64
}

// BatchTransform shifts, transposes and scales notes at once. Zero scales
// mean 1. If any note would become invalid, nothing changes.
type BatchTransform struct {
	IDs            []noteroll.ID
	Shift          int64
	Transpose      int
	VelocityScale  float64
	VelocityOffset int
	DurationScale  float64
}

type Undo struct{}

type Redo struct{}

// BeginGesture starts coalescing content commands into one history entry,
// e.g. for the duration of a mouse drag. Gestures nest; the outermost
// EndGesture closes the entry.
type BeginGesture struct{ Name string }

type EndGesture struct{}

// SetSelection replaces the selection. The commands below it are transient:
// they change the transport and the view and are not recorded in the history.
type SetSelection struct{ IDs []noteroll.ID }

type SetPlayhead struct{ Tick int64 }

type SeekSeconds struct{ Seconds float64 }

// SetPlayback plays or pauses.
type SetPlayback struct{ Playing bool }

type StopPlayback struct{}

type SetVolume struct{ Gain float64 }

type SetPitchShift struct{ Semitones float64 }

type SetLoop struct {
	Start, End int64
	Enabled    bool
}

type SetSnap struct {
	Interval int64
	Mode     noteroll.SnapMode
}

type CenterOnPitch struct{ Pitch int }

type SetView struct {
	Zoom       float64
	ScrollTick int64
}

// OverrideTransport hands the transport to the host: while set, the playhead,
// play state and tempo follow it instead of the internal clock. A nil
// Transport gives control back.
type OverrideTransport struct{ Transport *TransportState }

// TransportState is a host-provided transport. A zero BPM keeps the tempo of
// the state.
type TransportState struct {
	Playing bool
	Seconds float64
	BPM     float64
}

func (CreateNote) command()        {}
func (DeleteNotes) command()       {}
func (MoveNote) command()          {}
func (ResizeNote) command()        {}
func (SplitNote) command()         {}
func (SetNoteVelocity) command()   {}
func (SetNotes) command()          {}
func (AppendNotes) command()       {}
func (ClearNotes) command()        {}
func (AddCurvePoint) command()     {}
func (UpdateCurvePoint) command()  {}
func (DeleteCurvePoint) command()  {}
func (SetCurveEnabled) command()   {}
func (CreateClip) command()        {}
func (DeleteClip) command()        {}
func (MoveClip) command()          {}
func (ResizeClip) command()        {}
func (SplitClip) command()         {}
func (RenameClip) command()        {}
func (CreateTrack) command()       {}
func (DeleteTrack) command()       {}
func (RenameTrack) command()       {}
func (SetTrackMute) command()      {}
func (SetTrackSolo) command()      {}
func (SetTrackRecordArm) command() {}
func (SetTrackMonitor) command()   {}
func (SetTrackVolume) command()    {}
func (SetTrackPan) command()       {}
func (SetSource) command()         {}
func (DeleteSource) command()      {}
func (ReplaceState) command()      {}
func (SetBPM) command()            {}
func (SetTimeSignature) command()  {}
func (Humanize) command()          {}
func (Quantize) command()          {}
func (Swing) command()             {}
func (BatchTransform) command()    {}
func (Undo) command()              {}
func (Redo) command()              {}
func (BeginGesture) command()      {}
func (EndGesture) command()        {}
func (SetSelection) command()      {}
func (SetPlayhead) command()       {}
func (SeekSeconds) command()       {}
func (SetPlayback) command()       {}
func (StopPlayback) command()      {}
func (SetVolume) command()         {}
func (SetPitchShift) command()     {}
func (SetLoop) command()           {}
func (SetSnap) command()           {}
func (CenterOnPitch) command()     {}
func (SetView) command()           {}
func (OverrideTransport) command() {}
