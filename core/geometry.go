package core

import "math"

// Vec3 is a position in world units on a flat local grid.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// BearingDegrees returns the planar bearing from `from` to `to` in degrees,
// normalized to [0,360). 0° points along +x, 90° along +y.
func BearingDegrees(from, to Vec3) float64 {
	return NormalizeDegrees(math.Atan2(to.Y-from.Y, to.X-from.X) * 180.0 / math.Pi)
}

// NormalizeDegrees wraps an angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngularSeparation returns the minimal absolute difference between two
// headings, always in [0,180].
func AngularSeparation(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
