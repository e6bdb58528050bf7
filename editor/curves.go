package editor

import (
	"fmt"
	"math"

	"github.com/vsariola/noteroll"
)

func curve(d *Document, kind noteroll.CurveKind) (*noteroll.Curve, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidCurve, kind)
	}
	return d.State.Curves.Get(kind), nil
}

func checkPoint(tick int64, value float64) error {
	if tick < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: point at tick %d with value %v", ErrInvalidValue, tick, value)
	}
	return nil
}

// addCurvePoint inserts a point; on a tick that already has one, the existing
// point takes the new value and keeps its ID.
func (m *Model) addCurvePoint(d *Document, c AddCurvePoint) error {
	cv, err := curve(d, c.Kind)
	if err != nil {
		return err
	}
	if err := checkPoint(c.Tick, c.Value); err != nil {
		return err
	}
	cv.AddPoint(noteroll.CurvePoint{ID: m.newID(), Tick: c.Tick, Value: c.Value})
	return nil
}

func updateCurvePoint(d *Document, c UpdateCurvePoint) error {
	cv, err := curve(d, c.Kind)
	if err != nil {
		return err
	}
	if err := checkPoint(c.Tick, c.Value); err != nil {
		return err
	}
	if _, ok := cv.Point(c.ID); !ok {
		return fmt.Errorf("%w: %v curve point %d", ErrUnknownID, c.Kind, c.ID)
	}
	if !cv.UpdatePoint(c.ID, c.Tick, c.Value) {
		return fmt.Errorf("%w: tick %d already has a point", ErrInvalidValue, c.Tick)
	}
	return nil
}

func deleteCurvePoint(d *Document, c DeleteCurvePoint) error {
	cv, err := curve(d, c.Kind)
	if err != nil {
		return err
	}
	if !cv.DeletePoint(c.ID) {
		return fmt.Errorf("%w: %v curve point %d", ErrUnknownID, c.Kind, c.ID)
	}
	return nil
}

func setCurveEnabled(d *Document, c SetCurveEnabled) error {
	cv, err := curve(d, c.Kind)
	if err != nil {
		return err
	}
	cv.Enabled = c.Enabled
	return nil
}
