// Package steering implements the per-body steering policies: player input,
// instant snap toward a target and rate-limited rotation toward a target.
package steering

import (
	"fmt"

	"github.com/opd-ai/go-arena/pkg/physics"
)

// Context is what a policy may read besides the body's own pose.
type Context struct {
	DeltaTime float64
	Input     Input
	// Target is the pose bodies steer toward, the player's pose before
	// the current tick.
	Target Pose
}

// Steer runs the policy selected by body.Kind.
func Steer(body Body, pose Pose, ctx Context) (Delta, error) {
	switch body.Kind {
	case KindPlayer:
		return PlayerControlled(pose, ctx.Input, body.LinearSpeed, body.AngularSpeed, ctx.DeltaTime), nil
	case KindSnapTarget:
		return SnapToTarget(pose, ctx.Target)
	case KindLimitedRotateTarget:
		return LimitedRotateTarget(pose, ctx.Target, body.AngularSpeed, ctx.DeltaTime)
	case KindStatic:
		return NoChange, nil
	}
	return NoChange, fmt.Errorf("steer %q: unsupported kind %v", body.Name, body.Kind)
}

// PlayerControlled turns the body by the input's turn factor and then moves
// it along its updated forward direction while thrust is held.
func PlayerControlled(pose Pose, in Input, linearSpeed, angularSpeed, dt float64) Delta {
	rotation := physics.RotationFromAngle(in.TurnFactor() * angularSpeed * dt)

	forward := pose.Orientation.Mul(rotation).Normalize().Apply(LocalForward)
	distance := in.ThrustFactor() * linearSpeed * dt

	return Delta{
		Translation: forward.Scale(distance),
		Rotation:    rotation,
	}
}

// SnapToTarget rotates the body to face target exactly.
func SnapToTarget(pose, target Pose) (Delta, error) {
	dir, err := physics.Direction(pose.Position, target.Position)
	if err != nil {
		return NoChange, fmt.Errorf("snap to target: %w", err)
	}
	return Delta{Rotation: physics.RotationArc(pose.Forward(), dir)}, nil
}

// LimitedRotateTarget rotates the body toward target by at most
// angularSpeed*dt radians.
func LimitedRotateTarget(pose, target Pose, angularSpeed, dt float64) (Delta, error) {
	dir, err := physics.Direction(pose.Position, target.Position)
	if err != nil {
		return NoChange, fmt.Errorf("rotate to target: %w", err)
	}
	angle := physics.LimitAngle(pose.Forward(), dir, angularSpeed*dt)
	return Delta{Rotation: physics.RotationFromAngle(angle)}, nil
}
