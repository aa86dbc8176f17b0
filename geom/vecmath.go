// Package geom holds the small Vec3/Quat math rovmesh's motor, components,
// and control packages all build on — split into its own leaf package so
// components (which replicates Vec3/Quat-shaped state) and control (which
// computes with it) don't import each other.
//
// Grounded on original_source/robot/src/plugins/{orientation,depth}.rs and
// actuators/stabilize.rs, which lean on the Rust `glam` crate for this same
// handful of operations. No 3D math library appears anywhere in the
// retrieval pack (SPEC_FULL.md F.2), so this is a deliberately small,
// hand-rolled package rather than an import of an out-of-pack dependency
// for four functions.
package geom

import "math"

// Vec3 is a 3-component vector, used for force, torque, position, and
// orientation axes throughout the control and motor packages.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the componentwise sum.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the componentwise difference.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean norm of v.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length; the zero vector normalizes to
// itself rather than dividing by zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Quat is a unit quaternion, stored scalar-last (x, y, z, w) to match the
// original source's glam convention.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{W: 1}

// QuatFromAxisAngle builds a quaternion rotating by angle radians about a
// unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	half := angle / 2
	s := math.Sin(half)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(half)}
}

// Normalize returns q scaled to unit length.
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return IdentityQuat
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Conjugate returns q's conjugate, which is also its inverse since q is a
// unit quaternion.
func (q Quat) Conjugate() Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// Mul returns the Hamilton product q * o (apply o, then q).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// RotateVec3 rotates v by q.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	p := Quat{v.X, v.Y, v.Z, 0}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{r.X, r.Y, r.Z}
}

// FromTo returns the shortest-arc rotation taking unit vector from onto
// unit vector to. When from and to are anti-parallel, the rotation axis is
// ambiguous; an arbitrary perpendicular axis is chosen so the result is
// still a valid 180-degree rotation (spec.md §4.6's "colinear correction"
// for a 180-degree-flip request).
func FromTo(from, to Vec3) Quat {
	from = from.Normalize()
	to = to.Normalize()
	d := from.Dot(to)

	if d > 1-1e-9 {
		return IdentityQuat
	}
	if d < -1+1e-9 {
		axis := Vec3{1, 0, 0}.Cross(from)
		if axis.Length() < 1e-6 {
			axis = Vec3{0, 1, 0}.Cross(from)
		}
		return QuatFromAxisAngle(axis.Normalize(), math.Pi)
	}

	axis := from.Cross(to)
	w := 1 + d
	return Quat{axis.X, axis.Y, axis.Z, w}.Normalize()
}

// TwistAbout extracts the twist component of q about unit axis (the
// swing-twist decomposition), used by self-leveling to isolate rotation
// about the body X and Y axes independently (spec.md §4.6).
func TwistAbout(q Quat, axis Vec3) Quat {
	rotAxis := Vec3{q.X, q.Y, q.Z}
	proj := axis.Scale(rotAxis.Dot(axis))
	twist := Quat{proj.X, proj.Y, proj.Z, q.W}.Normalize()
	return twist
}

// AngleAboutAxis returns the signed rotation angle (radians) a twist
// quaternion about axis represents.
func AngleAboutAxis(twist Quat, axis Vec3) float64 {
	rotAxis := Vec3{twist.X, twist.Y, twist.Z}
	sinHalf := rotAxis.Length()
	angle := 2 * math.Atan2(sinHalf, twist.W)
	if rotAxis.Dot(axis) < 0 {
		angle = -angle
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}
