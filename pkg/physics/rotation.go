// pkg/physics/rotation.go
package physics

import "math"

// Epsilon is the float64 machine epsilon.
const Epsilon = 0x1p-52

// oneMinusEpsilon bounds the dot product beyond which two unit directions
// are treated as parallel (or antiparallel when negated).
const oneMinusEpsilon = 1.0 - 2.0*Epsilon

// Rotation is a rotation about the axis perpendicular to the simulation
// plane, stored as the unit quaternion (0, 0, Z, W). Z is the sine and W the
// cosine of half the rotation angle.
type Rotation struct {
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// Identity is the rotation that leaves every vector unchanged.
var Identity = Rotation{Z: 0, W: 1}

// HalfTurn is the rotation by π about the plane normal.
var HalfTurn = Rotation{Z: 1, W: 0}

// RotationFromAngle returns the rotation by angle radians, counter-clockwise
// for positive angles.
func RotationFromAngle(angle float64) Rotation {
	sin, cos := math.Sincos(angle * 0.5)
	return Rotation{Z: sin, W: cos}
}

// Mul composes two rotations. r.Mul(other) applies other in r's local frame,
// so the result rotates first by other and then by r.
func (r Rotation) Mul(other Rotation) Rotation {
	return Rotation{
		Z: r.W*other.Z + r.Z*other.W,
		W: r.W*other.W - r.Z*other.Z,
	}
}

// Apply rotates v by r.
func (r Rotation) Apply(v Vector2D) Vector2D {
	cos := r.W*r.W - r.Z*r.Z
	sin := 2 * r.W * r.Z
	return Vector2D{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation {
	return Rotation{Z: -r.Z, W: r.W}
}

// Angle returns the signed rotation angle in (-π, π].
func (r Rotation) Angle() float64 {
	return WrapAngle(2 * math.Atan2(r.Z, r.W))
}

// Length returns the quaternion norm; 1 for a valid rotation.
func (r Rotation) Length() float64 {
	return math.Sqrt(r.Z*r.Z + r.W*r.W)
}

// Normalize rescales r to unit length. Repeated composition drifts away
// from unit length through rounding, so poses renormalize after every tick.
func (r Rotation) Normalize() Rotation {
	n := r.Length()
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Identity
	}
	return Rotation{Z: r.Z / n, W: r.W / n}
}

// ApproxEqual reports whether r and other describe the same rotation within
// tol. q and -q are the same rotation.
func (r Rotation) ApproxEqual(other Rotation, tol float64) bool {
	same := math.Abs(r.Z-other.Z) <= tol && math.Abs(r.W-other.W) <= tol
	flipped := math.Abs(r.Z+other.Z) <= tol && math.Abs(r.W+other.W) <= tol
	return same || flipped
}

// RotationArc returns the shortest rotation about the plane normal that
// carries the unit direction from onto the unit direction to.
func RotationArc(from, to Vector2D) Rotation {
	dot := from.Dot(to)
	if dot > oneMinusEpsilon {
		// from ≈ to
		return Identity
	}
	if dot < -oneMinusEpsilon {
		// from ≈ -to: the half-angle axis is undefined, pick the plane normal
		return HalfTurn
	}

	z := from.Cross(to)
	w := 1.0 + dot
	invLen := 1.0 / math.Sqrt(z*z+w*w)
	return Rotation{Z: z * invLen, W: w * invLen}
}

// WrapAngle maps angle into (-π, π].
func WrapAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	} else if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}
