// pkg/physics/limiter.go
package physics

import "math"

// LimitAngle returns the signed angle a body facing forward should turn this
// tick to face target, never more than maxStep radians and never past the
// target. Positive results are counter-clockwise. Both directions must be
// unit length and maxStep must be non-negative.
func LimitAngle(forward, target Vector2D, maxStep float64) float64 {
	dot := forward.Dot(target)

	// left is forward rotated a quarter turn counter-clockwise
	lateral := forward.Perp().Dot(target)

	var sign float64
	switch {
	case lateral > Epsilon:
		sign = 1
	case lateral < -Epsilon:
		sign = -1
	case dot < 0:
		// target directly behind: either way is shortest, turn counter-clockwise
		sign = 1
	default:
		return 0
	}

	angle := math.Acos(math.Max(-1, math.Min(1, dot)))
	return sign * math.Min(maxStep, angle)
}
