package noteroll

import (
	"math"
	"slices"
	"sort"
)

type (
	// CurveKind tells which note parameter a Curve automates.
	CurveKind int

	// CurvePoint is a breakpoint of an automation curve.
	CurvePoint struct {
		ID    ID      `yaml:"id"`
		Tick  int64   `yaml:"tick"`
		Value float64 `yaml:"value"`
	}

	// Curve is a piecewise-linear automation lane. Points are kept sorted by
	// tick with at most one point per tick. A disabled or empty curve has no
	// effect on playback or export.
	Curve struct {
		Kind    CurveKind    `yaml:"kind"`
		Enabled bool         `yaml:"enabled"`
		Points  []CurvePoint `yaml:"points,flow"`
	}

	// Curves holds the two automation lanes of a MidiState.
	Curves struct {
		Velocity Curve `yaml:"velocity"`
		Pitch    Curve `yaml:"pitch"`
	}
)

const (
	VelocityCurve CurveKind = iota
	PitchCurve
)

func (k CurveKind) String() string {
	switch k {
	case VelocityCurve:
		return "velocity"
	case PitchCurve:
		return "pitch"
	}
	return "unknown"
}

// Valid reports whether k is a known curve kind.
func (k CurveKind) Valid() bool { return k == VelocityCurve || k == PitchCurve }

// Range returns the value range of the curve kind: 0..127 for velocity and
// -12..12 semitones for pitch.
func (k CurveKind) Range() (lo, hi float64) {
	if k == PitchCurve {
		return -12, 12
	}
	return 0, 127
}

// NewCurves returns an empty, disabled pair of curves.
func NewCurves() Curves {
	return Curves{Velocity: Curve{Kind: VelocityCurve}, Pitch: Curve{Kind: PitchCurve}}
}

// Get returns a pointer to the curve of the given kind, or nil for an unknown
// kind.
func (c *Curves) Get(kind CurveKind) *Curve {
	switch kind {
	case VelocityCurve:
		return &c.Velocity
	case PitchCurve:
		return &c.Pitch
	}
	return nil
}

// Copy returns a deep copy of the curves.
func (c Curves) Copy() Curves {
	return Curves{Velocity: c.Velocity.Copy(), Pitch: c.Pitch.Copy()}
}

// Copy returns a deep copy of the curve. An empty point list copies to nil.
func (c Curve) Copy() Curve {
	if len(c.Points) == 0 {
		c.Points = nil
		return c
	}
	c.Points = slices.Clone(c.Points)
	return c
}

// Active reports whether the curve is enabled and has at least one point.
func (c *Curve) Active() bool { return c.Enabled && len(c.Points) > 0 }

// Evaluate returns the curve value at tick: the first value before the first
// point, the last value after the last point and linear interpolation in
// between. ok is false for an empty curve.
func (c *Curve) Evaluate(tick int64) (value float64, ok bool) {
	if len(c.Points) == 0 {
		return 0, false
	}
	i := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Tick > tick })
	if i == 0 {
		return c.Points[0].Value, true
	}
	if i == len(c.Points) {
		return c.Points[i-1].Value, true
	}
	a, b := c.Points[i-1], c.Points[i]
	t := float64(tick-a.Tick) / float64(b.Tick-a.Tick)
	return a.Value + (b.Value-a.Value)*t, true
}

// AddPoint inserts p keeping the points sorted. The value is clamped to the
// range of the curve kind. If a point already exists at p.Tick, its value is
// overwritten and its ID kept. The stored point is returned.
func (c *Curve) AddPoint(p CurvePoint) (stored CurvePoint, replaced bool) {
	lo, hi := c.Kind.Range()
	p.Value = clamp(p.Value, lo, hi)
	i := sort.Search(len(c.Points), func(i int) bool { return c.Points[i].Tick >= p.Tick })
	if i < len(c.Points) && c.Points[i].Tick == p.Tick {
		c.Points[i].Value = p.Value
		return c.Points[i], true
	}
	c.Points = slices.Insert(c.Points, i, p)
	return p, false
}

// DeletePoint removes the point with the given ID, reporting whether it
// existed.
func (c *Curve) DeletePoint(id ID) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.Points = slices.Delete(c.Points, i, i+1)
	return true
}

// UpdatePoint moves the point with the given ID to tick and sets its value.
// It fails if the point does not exist or another point occupies tick.
func (c *Curve) UpdatePoint(id ID, tick int64, value float64) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	for j, p := range c.Points {
		if j != i && p.Tick == tick {
			return false
		}
	}
	c.Points = slices.Delete(c.Points, i, i+1)
	c.AddPoint(CurvePoint{ID: id, Tick: tick, Value: value})
	return true
}

// Point returns the point with the given ID.
func (c *Curve) Point(id ID) (CurvePoint, bool) {
	if i := c.index(id); i >= 0 {
		return c.Points[i], true
	}
	return CurvePoint{}, false
}

func (c *Curve) index(id ID) int {
	return slices.IndexFunc(c.Points, func(p CurvePoint) bool { return p.ID == id })
}

// ApplyVelocity blends the velocity curve into a note velocity: the velocity
// is scaled by curve/127 at the note start. Inactive curves return v as is.
func (c *Curves) ApplyVelocity(v int, tick int64) int {
	if !c.Velocity.Active() {
		return v
	}
	cv, _ := c.Velocity.Evaluate(tick)
	return clamp(int(math.Round(float64(v)*cv/127)), 0, 127)
}

// PitchOffset returns the pitch curve offset in whole semitones at tick.
func (c *Curves) PitchOffset(tick int64) int {
	if !c.Pitch.Active() {
		return 0
	}
	cv, _ := c.Pitch.Evaluate(tick)
	return int(math.Round(cv))
}
