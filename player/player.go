// Package player schedules the notes of an arrangement against a
// noteroll.Backend in real time. It is driven by a control loop calling
// Advance with the elapsed wall time; each call sweeps the half-open tick
// interval between the previous and the new position and fires every
// note-off and note-on inside it, in order.
package player

import (
	"io"
	"math"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/vsariola/noteroll"
)

// State is the transport state of the player.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Player is the playback scheduler. It is not safe for concurrent use: it
// belongs to the control loop, and only the Backend may hand work off to other
// goroutines.
type Player struct {
	backend  noteroll.Backend
	observer noteroll.Observer
	logger   *log.Logger

	state  State
	closed bool
	pos    float64 // in ticks, keeps the sub-tick remainder between steps
	ppq    int
	bpm    float64
	loop   noteroll.LoopRegion
	lanes  []lane

	// owners tracks which scheduled note sounds each pitch of the backend,
	// so a note-off only silences the note that started it.
	owners  [128]NoteKey
	owned   [128]bool
	scratch []boundary
}

// New creates a stopped player. Nil backend or observer are replaced by
// no-op implementations.
func New(backend noteroll.Backend, observer noteroll.Observer) *Player {
	if backend == nil {
		backend = noteroll.NullBackend{}
	}
	if observer == nil {
		observer = noteroll.NullObserver{}
	}
	return &Player{
		backend:  backend,
		observer: observer,
		logger:   log.New(io.Discard),
		ppq:      noteroll.DefaultPPQ,
		bpm:      noteroll.DefaultBPM,
	}
}

// SetLogger sets the logger used for transport diagnostics.
func (p *Player) SetLogger(l *log.Logger) {
	if l != nil {
		p.logger = l
	}
}

func (p *Player) State() State              { return p.state }
func (p *Player) Position() int64           { return int64(math.Floor(p.pos)) }
func (p *Player) Loop() noteroll.LoopRegion { return p.loop }

// Seconds returns the playhead position in seconds at the current tempo.
func (p *Player) Seconds() float64 { return noteroll.TicksToSeconds(p.Position(), p.ppq, p.bpm) }

// SetArrangement replaces the scheduled material. Notes that are sounding
// but vanished, moved away from the playhead or whose lane became inaudible
// are released immediately; nothing is retriggered.
func (p *Player) SetArrangement(a Arrangement) {
	if a.PPQ > 0 {
		p.ppq = a.PPQ
	}
	if a.BPM > 0 {
		p.bpm = a.BPM
	}
	p.lanes = p.lanes[:0]
	for _, l := range a.Lanes {
		p.lanes = append(p.lanes, compileLane(l))
	}
	if !slices.Contains(p.owned[:], true) {
		return
	}
	index := a.index()
	pos := p.Position()
	for pitch := range p.owners {
		if !p.owned[pitch] {
			continue
		}
		n, ok := index[p.owners[pitch]]
		if ok && n.audible && n.note.Pitch == pitch && n.note.Start <= pos && pos < n.note.End {
			continue
		}
		p.backend.NoteOff(uint8(pitch))
		p.owned[pitch] = false
	}
}

// SetLoop sets the loop region. It takes effect the next time the playhead
// crosses the loop end.
func (p *Player) SetLoop(l noteroll.LoopRegion) { p.loop = l }

// SetVolume forwards the master gain to the backend.
func (p *Player) SetVolume(gain float32) { p.backend.SetVolume(gain) }

// SetPitchShift forwards the preview transposition to the backend.
func (p *Player) SetPitchShift(semitones float32) { p.backend.SetPitchShift(semitones) }

// Play starts or resumes playback from the current position. It reports
// whether the state changed.
func (p *Player) Play() bool {
	if p.closed || p.state == Playing {
		return false
	}
	p.state = Playing
	p.logger.Debug("playback started", "tick", p.Position())
	p.observer.PlaybackStarted()
	return true
}

// Pause holds the playhead where it is and silences the backend.
func (p *Player) Pause() bool {
	if p.state != Playing {
		return false
	}
	p.state = Paused
	p.silence()
	return true
}

// Stop ends playback, silences the backend once and rewinds to the loop start
// when looping, otherwise to the beginning.
func (p *Player) Stop() bool {
	if p.state == Stopped {
		return false
	}
	p.state = Stopped
	p.silence()
	p.pos = 0
	if p.loop.Active() {
		p.pos = float64(p.loop.Start)
	}
	p.logger.Debug("playback stopped", "tick", p.Position())
	p.observer.PlaybackStopped()
	return true
}

// Close stops the player for good, leaving the backend silenced by exactly
// one final AllNotesOff. Later calls to Play are ignored.
func (p *Player) Close() {
	if p.closed {
		return
	}
	if !p.Stop() {
		p.silence()
	}
	p.closed = true
}

// SeekTo moves the playhead to tick without changing the transport state.
// Notes that started before tick are not retriggered.
func (p *Player) SeekTo(tick int64) {
	p.pos = float64(max(tick, 0))
	p.silence()
}

// Advance moves the playhead by the elapsed wall time and fires the notes
// crossed. It does nothing unless playing, or when the step is not a positive
// finite number.
func (p *Player) Advance(elapsedSeconds float64) {
	if p.state != Playing || !validStep(elapsedSeconds) {
		return
	}
	p.sweep(noteroll.SecondsToTicksFloat(elapsedSeconds, p.ppq, p.bpm))
}

// AdvanceTicks is Advance with the step given directly in ticks.
func (p *Player) AdvanceTicks(ticks float64) {
	if p.state != Playing || !validStep(ticks) {
		return
	}
	p.sweep(ticks)
}

func validStep(x float64) bool { return x > 0 && !math.IsInf(x, 0) }

// SyncTo moves the playhead to tick as dictated by an external transport:
// forward moves sweep like Advance, backward moves seek.
func (p *Player) SyncTo(tick int64) {
	if p.state != Playing {
		p.pos = float64(max(tick, 0))
		return
	}
	if tick < p.Position() {
		p.SeekTo(tick)
		return
	}
	p.AdvanceTicks(float64(tick) - p.pos)
}

// maxPasses bounds the loop passes played by a single sweep; whole passes
// beyond it are skipped.
const maxPasses = 64

// maxPosition keeps the playhead representable as an int64 tick.
const maxPosition = float64(1 << 62)

func (p *Player) sweep(delta float64) {
	to := min(p.pos+delta, maxPosition)
	if p.loop.Active() && p.pos < float64(p.loop.End) {
		length := float64(p.loop.End - p.loop.Start)
		if excess := to - float64(p.loop.End); excess >= maxPasses*length {
			to = float64(p.loop.End) + (maxPasses-1)*length + math.Mod(excess, length)
		}
	}
	for passes := 0; p.loop.Active() && p.pos < float64(p.loop.End) && to >= float64(p.loop.End); passes++ {
		p.process(p.Position(), p.loop.End)
		p.silence()
		to = float64(p.loop.Start) + to - float64(p.loop.End)
		if passes >= maxPasses {
			// rounding kept the step from shrinking
			to = float64(p.loop.Start)
		}
		p.pos = float64(p.loop.Start)
		p.logger.Debug("loop wrap", "start", p.loop.Start, "end", p.loop.End)
	}
	p.process(p.Position(), int64(math.Floor(to)))
	p.pos = to
}

// process fires every boundary in [from, to) of the audible lanes.
func (p *Player) process(from, to int64) {
	if to <= from {
		return
	}
	p.scratch = p.scratch[:0]
	for _, l := range p.lanes {
		if !l.audible {
			continue
		}
		i := sort.Search(len(l.bounds), func(i int) bool { return l.bounds[i].tick >= from })
		for ; i < len(l.bounds) && l.bounds[i].tick < to; i++ {
			p.scratch = append(p.scratch, l.bounds[i])
		}
	}
	slices.SortStableFunc(p.scratch, compareBoundaries)
	for _, b := range p.scratch {
		if b.on {
			p.trigger(b)
		} else {
			p.release(b)
		}
	}
}

func (p *Player) trigger(b boundary) {
	if p.owned[b.pitch] {
		p.backend.NoteOff(b.pitch)
	}
	p.backend.NoteOn(b.pitch, b.velocity)
	p.owners[b.pitch] = b.key
	p.owned[b.pitch] = true
}

func (p *Player) release(b boundary) {
	if !p.owned[b.pitch] || p.owners[b.pitch] != b.key {
		return
	}
	p.backend.NoteOff(b.pitch)
	p.owned[b.pitch] = false
}

func (p *Player) silence() {
	p.backend.AllNotesOff()
	p.owned = [128]bool{}
}
