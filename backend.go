package noteroll

type (
	// Backend is the sound generator driven by the player. Every method must
	// return quickly without blocking on audio hardware; implementations that
	// render audio on another goroutine should hand the calls off through a
	// non-blocking queue. Failures are the backend's own business and are
	// never reported back.
	Backend interface {
		NoteOn(pitch, velocity uint8)
		NoteOff(pitch uint8)
		AllNotesOff()
		SetVolume(gain float32)
		SetPitchShift(semitones float32)
	}

	// Observer is notified when playback starts or stops. Each Play and Stop
	// transition fires exactly one callback.
	Observer interface {
		PlaybackStarted()
		PlaybackStopped()
	}

	// NullBackend is a Backend that ignores every call.
	NullBackend struct{}

	// NullObserver is an Observer that ignores every call.
	NullObserver struct{}
)

func (NullBackend) NoteOn(pitch, velocity uint8)    {}
func (NullBackend) NoteOff(pitch uint8)             {}
func (NullBackend) AllNotesOff()                    {}
func (NullBackend) SetVolume(gain float32)          {}
func (NullBackend) SetPitchShift(semitones float32) {}

func (NullObserver) PlaybackStarted() {}
func (NullObserver) PlaybackStopped() {}
