package noteroll

type (
	// LoopRegion is the playback loop. It is only honored when Enabled and
	// Start < End.
	LoopRegion struct {
		Start   int64 `yaml:"start"`
		End     int64 `yaml:"end"`
		Enabled bool  `yaml:"enabled"`
	}

	// SnapSettings is the grid used when dragging notes and clips.
	SnapSettings struct {
		Interval int64    `yaml:"interval"`
		Mode     SnapMode `yaml:"mode"`
	}

	// Timeline holds the transport and view settings of the editor. Playhead,
	// view and loop fields are transient: changing them is not recorded in the
	// undo history.
	Timeline struct {
		BPM           float64       `yaml:"bpm"`
		PPQ           int           `yaml:"ppq"`
		TimeSignature TimeSignature `yaml:"timesignature"`
		Zoom          float64       `yaml:"zoom"`
		ScrollTick    int64         `yaml:"scrolltick"`
		CenterPitch   int           `yaml:"centerpitch"`
		Playhead      int64         `yaml:"playhead"`
		Loop          LoopRegion    `yaml:"loop"`
		Snap          SnapSettings  `yaml:"snap"`
		Volume        float64       `yaml:"volume"`
		PitchShift    float64       `yaml:"pitchshift"`
	}
)

// Valid reports whether the loop region has a positive length.
func (l LoopRegion) Valid() bool { return l.Start >= 0 && l.Start < l.End }

// Active reports whether the loop is enabled and valid.
func (l LoopRegion) Active() bool { return l.Enabled && l.Valid() }

// NewTimeline returns a timeline with the default transport: 120 BPM, 4/4,
// 480 PPQ, a disabled one-bar loop and a sixteenth-note absolute snap grid.
func NewTimeline() Timeline {
	return Timeline{
		BPM:           DefaultBPM,
		PPQ:           DefaultPPQ,
		TimeSignature: FourFour,
		Zoom:          100,
		CenterPitch:   60,
		Loop:          LoopRegion{Start: 0, End: 4 * DefaultPPQ},
		Snap:          SnapSettings{Interval: DefaultPPQ / 4, Mode: SnapAbsolute},
		Volume:        0.5,
	}
}

// Seconds converts a tick position to seconds using the timeline tempo.
func (t *Timeline) Seconds(tick int64) float64 { return TicksToSeconds(tick, t.PPQ, t.BPM) }

// Ticks converts seconds to a tick position using the timeline tempo.
func (t *Timeline) Ticks(seconds float64) int64 { return SecondsToTicks(seconds, t.PPQ, t.BPM) }
