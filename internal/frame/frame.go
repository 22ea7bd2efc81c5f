// Package frame converts waypoint geometry between the global map frame
// and the vehicle body frame. The body frame is re-centered on the
// vehicle every control cycle: origin at the vehicle position, x-axis
// along the heading, y-axis to the left.
package frame

import (
	"errors"
	"math"
)

// ErrNoWaypoints is returned when a transform is asked for an empty
// waypoint sequence.
var ErrNoWaypoints = errors.New("frame: no waypoints")

// Point is a 2D position in meters. The frame it belongs to is
// determined by context, not by the type.
type Point struct {
	X float64
	Y float64
}

// Pose is the vehicle's global-frame position, heading and speed as
// reported by telemetry. Immutable for the duration of a cycle.
type Pose struct {
	X       float64 // meters, global frame
	Y       float64 // meters, global frame
	Heading float64 // radians, global frame
	Speed   float64 // meters per second
}

// ToLocal re-expresses global-frame points in the pose's body frame:
// translate by -position, then rotate by -heading. The transform is
// exact; no small-angle shortcuts.
func ToLocal(p Pose, pts []Point) ([]Point, error) {
	if len(pts) == 0 {
		return nil, ErrNoWaypoints
	}
	sin, cos := math.Sincos(p.Heading)
	local := make([]Point, len(pts))
	for i, pt := range pts {
		dx := pt.X - p.X
		dy := pt.Y - p.Y
		local[i] = Point{
			X: cos*dx + sin*dy,
			Y: -sin*dx + cos*dy,
		}
	}
	return local, nil
}

// ToGlobal is the inverse of ToLocal: rotate by +heading, then
// translate by +position.
func ToGlobal(p Pose, pts []Point) []Point {
	sin, cos := math.Sincos(p.Heading)
	global := make([]Point, len(pts))
	for i, pt := range pts {
		global[i] = Point{
			X: p.X + cos*pt.X - sin*pt.Y,
			Y: p.Y + sin*pt.X + cos*pt.Y,
		}
	}
	return global
}

// Zip pairs separate coordinate slices into points. Slices of unequal
// length are truncated to the shorter one.
func Zip(xs, ys []float64) []Point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pts
}

// Unzip splits points back into coordinate slices, the inverse of Zip.
func Unzip(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, pt := range pts {
		xs[i] = pt.X
		ys[i] = pt.Y
	}
	return xs, ys
}
