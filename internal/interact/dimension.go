package interact

import "github.com/Faultbox/hullview/pkg/math"

// DimensionMode is the progress of a line measurement.
type DimensionMode int

const (
	DimensionNotSet DimensionMode = iota
	// DimensionStarted holds the first point only.
	DimensionStarted
	// DimensionLine holds both points.
	DimensionLine
)

// Dimension is a two-point line measurement.
type Dimension struct {
	P0   math.Vec3
	P1   math.Vec3
	Mode DimensionMode
}

// NewDimension returns a cleared dimension.
func NewDimension() Dimension {
	return Dimension{P0: math.MaxVec3, P1: math.MaxVec3}
}

// AddPoint places the next point. A completed line is discarded and p starts a new one.
// It reports whether p completed a line.
func (d *Dimension) AddPoint(p math.Vec3) bool {
	if d.Mode == DimensionLine || d.Mode == DimensionNotSet {
		*d = NewDimension()
		d.P0 = p
		d.Mode = DimensionStarted
		return false
	}
	d.P1 = p
	d.Mode = DimensionLine
	return true
}

// Length returns the measured distance, 0 until the line is complete.
func (d Dimension) Length() float32 {
	if d.Mode != DimensionLine {
		return 0
	}
	return d.P0.Distance(d.P1)
}

// Clear resets the measurement.
func (d *Dimension) Clear() {
	*d = NewDimension()
}
