package noteroll

import "math"

type (
	// SnapMode tells how Snap rounds a tick position to the grid.
	SnapMode int

	// TimeSignature is a musical meter, e.g. 3/4. Denominator is the note
	// value of one beat and must be a power of two.
	TimeSignature struct {
		Numerator   int `yaml:"numerator"`
		Denominator int `yaml:"denominator"`
	}
)

const (
	// SnapAbsolute rounds to the nearest multiple of the interval, ties
	// rounding up.
	SnapAbsolute SnapMode = iota
	// SnapRelative snaps the distance travelled from a reference position,
	// preserving the sub-interval offset the object had before it was moved.
	SnapRelative
)

func (m SnapMode) String() string {
	switch m {
	case SnapAbsolute:
		return "absolute"
	case SnapRelative:
		return "relative"
	}
	return "unknown"
}

// FourFour is the default time signature.
var FourFour = TimeSignature{Numerator: 4, Denominator: 4}

// TicksToSeconds converts a tick position to seconds: ticks / ppq * 60 / bpm.
// Non-positive ppq or bpm yield 0.
func TicksToSeconds(ticks int64, ppq int, bpm float64) float64 {
	if ppq <= 0 || bpm <= 0 {
		return 0
	}
	return float64(ticks) / float64(ppq) * 60 / bpm
}

// SecondsToTicks converts seconds to a tick position, rounding down. It is the
// inverse of TicksToSeconds for tick-aligned inputs.
func SecondsToTicks(seconds float64, ppq int, bpm float64) int64 {
	return int64(math.Floor(SecondsToTicksFloat(seconds, ppq, bpm) + 1e-9))
}

// SecondsToTicksFloat is SecondsToTicks without rounding, used by the player
// to accumulate sub-tick remainders between steps.
func SecondsToTicksFloat(seconds float64, ppq int, bpm float64) float64 {
	if ppq <= 0 || bpm <= 0 {
		return 0
	}
	return seconds * bpm / 60 * float64(ppq)
}

// Snap snaps value to the grid defined by interval. In SnapRelative mode,
// reference is the position of the snapped object before it was dragged; it
// is ignored in SnapAbsolute mode. A non-positive interval disables snapping.
// The result is never negative, and snapping an already snapped value with the
// same arguments returns it unchanged.
func Snap(value, interval int64, mode SnapMode, reference int64) int64 {
	if interval <= 0 {
		return max(value, 0)
	}
	var ret int64
	switch mode {
	case SnapRelative:
		ret = reference + snapToMultiple(value-reference, interval)
		if ret < 0 {
			// stay on the relative grid so the result snaps to itself
			ret += (-ret + interval - 1) / interval * interval
		}
	default:
		ret = snapToMultiple(value, interval)
	}
	return max(ret, 0)
}

func snapToMultiple(value, interval int64) int64 {
	rem := value % interval
	if rem < 0 {
		rem += interval
	}
	base := value - rem
	if rem*2 >= interval {
		return base + interval
	}
	return base
}

// Valid reports whether the time signature has a positive numerator and a
// power-of-two denominator.
func (t TimeSignature) Valid() bool {
	d := t.Denominator
	return t.Numerator > 0 && t.Numerator <= 255 && d > 0 && d <= 128 && d&(d-1) == 0
}

// BeatTicks returns the length of one beat of the time signature in ticks.
func (t TimeSignature) BeatTicks(ppq int) int64 {
	if !t.Valid() {
		return int64(ppq)
	}
	return int64(ppq) * 4 / int64(t.Denominator)
}

// BarTicks returns the length of one bar in ticks.
func (t TimeSignature) BarTicks(ppq int) int64 {
	if !t.Valid() {
		return 4 * int64(ppq)
	}
	return t.BeatTicks(ppq) * int64(t.Numerator)
}

// BarBeat splits a tick position into zero-based bar, beat and tick-in-beat.
func (t TimeSignature) BarBeat(tick int64, ppq int) (bar, beat int, rem int64) {
	if tick < 0 || ppq <= 0 {
		return 0, 0, 0
	}
	bt := t.BeatTicks(ppq)
	beats := tick / bt
	num := int64(max(t.Numerator, 1))
	return int(beats / num), int(beats % num), tick % bt
}
