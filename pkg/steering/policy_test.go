package steering

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/physics"
)

const dt = 1.0 / 60.0

func degrees(d float64) float64 { return d * math.Pi / 180 }

// remainingAngle is the signed angle from the body's forward to dir.
func remainingAngle(pose Pose, dir physics.Vector2D) float64 {
	f := pose.Forward()
	return math.Atan2(f.Cross(dir), f.Dot(dir))
}

func TestPlayerControlled_ThrustMovesAlongForward(t *testing.T) {
	for _, heading := range []float64{0, degrees(30), degrees(-135), math.Pi} {
		pose := NewPose(physics.Vector2D{X: 10, Y: -5}, heading)
		d := PlayerControlled(pose, Input{Thrust: true}, 500, 2*math.Pi, dt)
		next := pose.Apply(d)

		moved := next.Position.Sub(pose.Position)
		assert.InDelta(t, 500.0/60.0, moved.Length(), 1e-9)
		assert.InDelta(t, 1.0, moved.Scale(60.0/500.0).Dot(pose.Forward()), 1e-9)
		assert.True(t, next.Orientation.ApproxEqual(pose.Orientation, 1e-12),
			"orientation changed: %v -> %v", pose.Orientation, next.Orientation)
	}
}

func TestPlayerControlled_TurnLeftAdvancesHeading(t *testing.T) {
	pose := NewPose(physics.Zero, 0)
	d := PlayerControlled(pose, Input{TurnLeft: true}, 500, 2*math.Pi, dt)
	next := pose.Apply(d)

	assert.InDelta(t, 2*math.Pi/60, next.Heading(), 1e-12)
	assert.Equal(t, pose.Position, next.Position)
}

func TestPlayerControlled_TurnFactor(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected float64
	}{
		{"idle", Input{}, 0},
		{"left", Input{TurnLeft: true}, 1},
		{"right", Input{TurnRight: true}, -1},
		{"both_cancel", Input{TurnLeft: true, TurnRight: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose := NewPose(physics.Zero, degrees(50))
			next := pose.Apply(PlayerControlled(pose, tt.input, 100, math.Pi, dt))
			assert.InDelta(t, tt.expected*math.Pi*dt, next.Heading()-pose.Heading(), 1e-12)
		})
	}
}

func TestPlayerControlled_TranslationUsesUpdatedHeading(t *testing.T) {
	pose := NewPose(physics.Zero, 0)
	in := Input{TurnRight: true, Thrust: true}
	d := PlayerControlled(pose, in, 60, math.Pi/2*60, dt)

	// quarter turn clockwise first, so the thrust points along +X
	assert.InDelta(t, 1.0, d.Translation.X, 1e-9)
	assert.InDelta(t, 0.0, d.Translation.Y, 1e-9)
}

func TestPlayerControlled_RepeatedTurningAccumulates(t *testing.T) {
	pose := NewPose(physics.Zero, degrees(170))
	for i := 0; i < 60; i++ {
		pose = pose.Apply(PlayerControlled(pose, Input{TurnLeft: true}, 0, degrees(90), dt))
	}
	assert.InDelta(t, physics.WrapAngle(degrees(260)), pose.Heading(), 1e-9)
	assert.InDelta(t, 1.0, pose.Orientation.Length(), 1e-12)
}

func TestSnapToTarget_FacesTargetAfterOneTick(t *testing.T) {
	targets := []physics.Vector2D{
		{X: 100, Y: 0},
		{X: -3, Y: 4},
		{X: 0, Y: -250},
		{X: 0, Y: 10}, // already facing
	}
	for _, heading := range []float64{0, degrees(45), degrees(-170), math.Pi} {
		for _, target := range targets {
			pose := NewPose(physics.Zero, heading)
			d, err := SnapToTarget(pose, NewPose(target, 0))
			require.NoError(t, err)

			next := pose.Apply(d)
			dir, err := physics.Direction(pose.Position, target)
			require.NoError(t, err)

			assert.InDelta(t, dir.X, next.Forward().X, 1e-9)
			assert.InDelta(t, dir.Y, next.Forward().Y, 1e-9)
			assert.Equal(t, pose.Position, next.Position)
		}
	}
}

func TestLimitedRotateTarget_ConvergesWithoutOvershoot(t *testing.T) {
	target := NewPose(physics.RotationFromAngle(degrees(37)).Apply(LocalForward).Scale(100), 0)
	pose := NewPose(physics.Zero, 0)
	angularSpeed := degrees(10) / dt

	dir, err := physics.Direction(pose.Position, target.Position)
	require.NoError(t, err)

	expected := []float64{27, 17, 7, 0}
	previous := remainingAngle(pose, dir)
	for tick, want := range expected {
		d, err := LimitedRotateTarget(pose, target, angularSpeed, dt)
		require.NoError(t, err)
		pose = pose.Apply(d)

		got := remainingAngle(pose, dir)
		assert.InDelta(t, degrees(want), got, 1e-9, "tick %d", tick+1)
		assert.LessOrEqual(t, math.Abs(got), math.Abs(previous)+1e-12, "tick %d", tick+1)
		previous = got
	}

	for tick := 0; tick < 10; tick++ {
		d, err := LimitedRotateTarget(pose, target, angularSpeed, dt)
		require.NoError(t, err)
		pose = pose.Apply(d)
		assert.InDelta(t, 0.0, remainingAngle(pose, dir), 1e-9, "hold tick %d", tick+1)
	}
}

func TestLimitedRotateTarget_TurnsClockwise(t *testing.T) {
	pose := NewPose(physics.Zero, 0)
	target := NewPose(physics.Vector2D{X: 100, Y: 0}, 0)

	d, err := LimitedRotateTarget(pose, target, degrees(45), 1)
	require.NoError(t, err)
	assert.InDelta(t, -degrees(45), d.Rotation.Angle(), 1e-12)
}

func TestDegenerateDirection(t *testing.T) {
	pose := NewPose(physics.Vector2D{X: 5, Y: 5}, 0)
	same := NewPose(physics.Vector2D{X: 5, Y: 5}, degrees(90))

	_, err := SnapToTarget(pose, same)
	assert.True(t, errors.Is(err, physics.ErrDegenerateDirection), "snap error = %v", err)

	_, err = LimitedRotateTarget(pose, same, 1, dt)
	assert.True(t, errors.Is(err, physics.ErrDegenerateDirection), "rotate error = %v", err)
}

func TestSteer_Dispatch(t *testing.T) {
	pose := NewPose(physics.Zero, 0)
	ctx := Context{
		DeltaTime: dt,
		Input:     Input{Thrust: true},
		Target:    NewPose(physics.Vector2D{X: -10, Y: 0}, 0),
	}

	tests := []struct {
		name  string
		body  Body
		check func(t *testing.T, d Delta)
	}{
		{"player", Body{Kind: KindPlayer, LinearSpeed: 60}, func(t *testing.T, d Delta) {
			assert.InDelta(t, 1.0, d.Translation.Y, 1e-9)
		}},
		{"snap", Body{Kind: KindSnapTarget}, func(t *testing.T, d Delta) {
			assert.InDelta(t, math.Pi/2, d.Rotation.Angle(), 1e-9)
		}},
		{"rotate", Body{Kind: KindLimitedRotateTarget, AngularSpeed: 6}, func(t *testing.T, d Delta) {
			assert.InDelta(t, 0.1, d.Rotation.Angle(), 1e-9)
		}},
		{"static", Body{Kind: KindStatic}, func(t *testing.T, d Delta) {
			assert.Equal(t, NoChange, d)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Steer(tt.body, pose, ctx)
			require.NoError(t, err)
			tt.check(t, d)
		})
	}

	_, err := Steer(Body{Name: "ghost", Kind: Kind(42)}, pose, ctx)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"player", KindPlayer, false},
		{"Snap", KindSnapTarget, false},
		{" rotate ", KindLimitedRotateTarget, false},
		{"wall", KindStatic, false},
		{"rocket", KindStatic, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, name string) Kind {
	t.Helper()
	k, err := ParseKind(name)
	require.NoError(t, err)
	return k
}
