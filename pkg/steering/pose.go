package steering

import (
	"fmt"

	"github.com/opd-ai/go-arena/pkg/physics"
)

// LocalForward is the direction every body faces before its orientation is
// applied.
var LocalForward = physics.Vector2D{X: 0, Y: 1}

// BodyID identifies a body for the lifetime of a session.
type BodyID uint64

// Pose is the position and orientation of a body at one tick.
type Pose struct {
	Position    physics.Vector2D `json:"position" yaml:"position"`
	Orientation physics.Rotation `json:"orientation" yaml:"orientation"`
}

// NewPose returns a pose at position facing heading radians counter-clockwise
// from LocalForward.
func NewPose(position physics.Vector2D, heading float64) Pose {
	return Pose{
		Position:    position,
		Orientation: physics.RotationFromAngle(heading),
	}
}

// Forward returns the world-space direction the body faces.
func (p Pose) Forward() physics.Vector2D {
	return p.Orientation.Apply(LocalForward)
}

// Heading returns the orientation as a signed angle from LocalForward.
func (p Pose) Heading() float64 {
	return p.Orientation.Angle()
}

// Apply returns the pose moved by d. The rotation is composed in the body's
// local frame and renormalized.
func (p Pose) Apply(d Delta) Pose {
	return Pose{
		Position:    p.Position.Add(d.Translation),
		Orientation: p.Orientation.Mul(d.Rotation).Normalize(),
	}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f) @ %.3frad", p.Position.X, p.Position.Y, p.Heading())
}

// Delta is the change a steering policy produces for one tick.
type Delta struct {
	Translation physics.Vector2D
	Rotation    physics.Rotation
}

// NoChange is the delta that leaves a pose untouched.
var NoChange = Delta{Rotation: physics.Identity}

// Poses maps every body to its current pose.
type Poses map[BodyID]Pose

// Clone returns an independent copy of the table.
func (p Poses) Clone() Poses {
	out := make(Poses, len(p))
	for id, pose := range p {
		out[id] = pose
	}
	return out
}
