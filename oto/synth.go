package oto

import (
	"io"
	"math"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/viterin/vek/vek32"
)

const (
	// MaxVoices is the polyphony of the Synth; the oldest voice is stolen
	// when more notes are held.
	MaxVoices = 32
	// QueueSize is the number of messages that can wait for the audio
	// goroutine before further messages are dropped.
	QueueSize = 1024

	attackSeconds  = 0.005
	releaseSeconds = 0.08
)

type (
	// Synth is a small polyphonic sine synthesizer implementing
	// noteroll.Backend. Its methods only enqueue messages and never block;
	// the messages are applied by the goroutine calling Read or Render.
	Synth struct {
		queue      chan message
		sampleRate float64
		logger     *log.Logger

		// releases that did not fit in the queue, applied on the next drain
		pendingAll atomic.Bool
		pendingOff [128]atomic.Bool

		// owned by the rendering goroutine
		voices     [MaxVoices]voice
		age        uint64
		volume     float32
		pitchShift float32
		mix, tmp   []float32
		frames     []float32
	}

	message struct {
		kind     messageKind
		pitch    uint8
		velocity uint8
		value    float32
	}

	messageKind int

	voice struct {
		pitch   uint8
		active  bool
		release bool
		phase   float64
		env     float32
		gain    float32
		age     uint64
	}
)

const (
	noteOn messageKind = iota
	noteOff
	allNotesOff
	setVolume
	setPitchShift
)

// NewSynth returns a synth rendering at sampleRate. A nil logger discards.
func NewSynth(sampleRate int, logger *log.Logger) *Synth {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Synth{
		queue:      make(chan message, QueueSize),
		sampleRate: float64(sampleRate),
		logger:     logger,
		volume:     1,
	}
}

func (s *Synth) NoteOn(pitch, velocity uint8) {
	s.send(message{kind: noteOn, pitch: pitch, velocity: velocity})
}

// NoteOff and AllNotesOff are never lost: when the queue is full they are
// latched and applied after the queued messages.
func (s *Synth) NoteOff(pitch uint8) {
	if !TrySend(s.queue, message{kind: noteOff, pitch: pitch}) {
		s.pendingOff[pitch%128].Store(true)
	}
}

func (s *Synth) AllNotesOff() {
	if !TrySend(s.queue, message{kind: allNotesOff}) {
		s.pendingAll.Store(true)
	}
}

func (s *Synth) SetVolume(gain float32)          { s.send(message{kind: setVolume, value: gain}) }
func (s *Synth) SetPitchShift(semitones float32) { s.send(message{kind: setPitchShift, value: semitones}) }

func (s *Synth) send(m message) {
	if !TrySend(s.queue, m) {
		s.logger.Warn("audio queue full, dropping message", "kind", m.kind, "pitch", m.pitch)
	}
}

// TrySend sends v to c if c is not full. It never blocks and reports whether
// the value was sent.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// Read renders interleaved stereo float32 little-endian frames into p. It is
// called by the audio device.
func (s *Synth) Read(p []byte) (int, error) {
	n := len(p) / 8
	if cap(s.frames) < n {
		s.frames = make([]float32, n)
	}
	mono := s.frames[:n]
	s.Render(mono)
	return len(floatBufferToStereoLE(mono, p[:0])), nil
}

// Render applies the queued messages and renders len(buf) mono samples.
func (s *Synth) Render(buf []float32) {
	s.drain()
	if cap(s.mix) < len(buf) {
		s.mix = make([]float32, len(buf))
		s.tmp = make([]float32, len(buf))
	}
	mix, tmp := vek32.Zeros_Into(s.mix[:len(buf)], len(buf)), s.tmp[:len(buf)]
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		s.renderVoice(v, tmp)
		vek32.Add_Inplace(mix, tmp)
	}
	vek32.MulNumber_Into(buf, mix, s.volume)
}

func (s *Synth) drain() {
	for done := false; !done; {
		select {
		case m := <-s.queue:
			s.handle(m)
		default:
			done = true
		}
	}
	if s.pendingAll.Swap(false) {
		s.handle(message{kind: allNotesOff})
	}
	for p := range s.pendingOff {
		if s.pendingOff[p].Swap(false) {
			s.handle(message{kind: noteOff, pitch: uint8(p)})
		}
	}
}

func (s *Synth) handle(m message) {
	switch m.kind {
	case noteOn:
		v := s.allocate(m.pitch)
		*v = voice{pitch: m.pitch, active: true, gain: float32(m.velocity) / 127 * 0.2, age: s.age, phase: v.phase, env: v.env}
		s.age++
	case noteOff:
		for i := range s.voices {
			if s.voices[i].active && s.voices[i].pitch == m.pitch {
				s.voices[i].release = true
			}
		}
	case allNotesOff:
		for i := range s.voices {
			s.voices[i].release = true
		}
	case setVolume:
		s.volume = m.value
	case setPitchShift:
		s.pitchShift = m.value
	}
}

// allocate returns the voice already playing pitch, a free voice or the
// oldest one.
func (s *Synth) allocate(pitch uint8) *voice {
	var oldest *voice
	for i := range s.voices {
		v := &s.voices[i]
		if v.active && v.pitch == pitch {
			return v
		}
	}
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			*v = voice{}
			return v
		}
		if oldest == nil || v.age < oldest.age {
			oldest = v
		}
	}
	return oldest
}

func (s *Synth) renderVoice(v *voice, out []float32) {
	freq := 440 * math.Pow(2, (float64(v.pitch)-69+float64(s.pitchShift))/12)
	step := 2 * math.Pi * freq / s.sampleRate
	attack := float32(1 / (attackSeconds * s.sampleRate))
	release := float32(1 / (releaseSeconds * s.sampleRate))
	for i := range out {
		if v.release {
			v.env = max(v.env-release, 0)
		} else {
			v.env = min(v.env+attack, 1)
		}
		out[i] = float32(math.Sin(v.phase)) * v.env
		v.phase = math.Mod(v.phase+step, 2*math.Pi)
	}
	vek32.MulNumber_Inplace(out, v.gain)
	if v.release && v.env == 0 {
		v.active = false
	}
}
