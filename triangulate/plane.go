package triangulate

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Plane is the supporting plane of a polygon: points p on it satisfy
// Normal·p + Offset = 0. Normal is not normalised.
type Plane struct {
	Normal r3.Vec
	Offset float64
}

// FitPlane computes the Newell normal of the closed polygon pts and the
// offset through its centroid. It reports false when the normal vanishes,
// which happens for collinear or zero-area polygons.
func FitPlane(pts []r3.Vec) (Plane, bool) {
	var n, centroid r3.Vec
	var scale float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
		centroid = r3.Add(centroid, p)
		scale = math.Max(scale, r3.Norm(r3.Sub(q, p)))
	}
	if len(pts) == 0 {
		return Plane{}, false
	}
	centroid = r3.Scale(1/float64(len(pts)), centroid)

	// The normal's length is twice the polygon area; compare against the
	// squared edge scale so the test does not depend on units.
	if r3.Norm(n) <= 1e-12*scale*scale || math.IsNaN(r3.Norm(n)) {
		return Plane{Normal: n}, false
	}
	return Plane{Normal: n, Offset: -r3.Dot(n, centroid)}, true
}

// DominantAxis returns the axis of the largest-magnitude normal component.
func (p Plane) DominantAxis() Axis {
	ax, ay, az := math.Abs(p.Normal.X), math.Abs(p.Normal.Y), math.Abs(p.Normal.Z)
	switch {
	case ax >= ay && ax >= az:
		return AxisX
	case ay >= az:
		return AxisY
	default:
		return AxisZ
	}
}

// Project drops axis from each point, keeping the remaining two in cyclic
// order so orientation about a positive normal component is preserved.
func Project(dst []r2.Vec, pts []r3.Vec, axis Axis) []r2.Vec {
	dst = dst[:0]
	for _, p := range pts {
		switch axis {
		case AxisX:
			dst = append(dst, r2.Vec{X: p.Y, Y: p.Z})
		case AxisY:
			dst = append(dst, r2.Vec{X: p.Z, Y: p.X})
		default:
			dst = append(dst, r2.Vec{X: p.X, Y: p.Y})
		}
	}
	return dst
}
