// pkg/physics/bounds.go
package physics

import "math"

// Bounds is a rectangle centered on the origin, described by its half
// extent along each axis.
type Bounds struct {
	HalfExtent Vector2D
}

// NewBounds returns the bounds of a width × height arena centered on the origin.
func NewBounds(width, height float64) Bounds {
	return Bounds{HalfExtent: Vector2D{X: width / 2, Y: height / 2}}
}

// Clamp returns p confined to the bounds.
func (b Bounds) Clamp(p Vector2D) Vector2D {
	return ClampToArena(p, b.HalfExtent)
}

// Contains reports whether p lies inside or on the edge of the bounds.
func (b Bounds) Contains(p Vector2D) bool {
	return math.Abs(p.X) <= b.HalfExtent.X && math.Abs(p.Y) <= b.HalfExtent.Y
}

// ClampToArena clamps each component of p to [-halfExtent, +halfExtent].
func ClampToArena(p, halfExtent Vector2D) Vector2D {
	return Vector2D{
		X: math.Min(math.Max(p.X, -halfExtent.X), halfExtent.X),
		Y: math.Min(math.Max(p.Y, -halfExtent.Y), halfExtent.Y),
	}
}
