package config

import "time"

// Arena dimensions and timing of the stock scene
const (
	DefaultTimeStep    = 1.0 / 60.0
	DefaultArenaWidth  = 1200.0
	DefaultArenaHeight = 640.0

	// DefaultBreakerTimeout is how long an open breaker stays open.
	DefaultBreakerTimeout = 30 * time.Second
	// DefaultMaxConsecutiveFailures failed ticks in a row end a session.
	DefaultMaxConsecutiveFailures = 5
)

// DefaultConfig returns the stock scene: a player ship near the bottom wall,
// three enemies that snap to face it, two that turn toward it at a limited
// rate, and the four arena walls.
func DefaultConfig() *ArenaConfig {
	quarterX := DefaultArenaWidth / 4
	quarterY := DefaultArenaHeight / 4

	return &ArenaConfig{
		TimeStep:      DefaultTimeStep,
		MaxFrameTime:  0.1,
		ChecksumEvery: 600,
		Arena: ArenaSize{
			Width:  DefaultArenaWidth,
			Height: DefaultArenaHeight,
		},
		Breaker: BreakerConfig{
			MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
			Timeout:                DefaultBreakerTimeout,
		},
		Logging: LoggingConfig{Level: "info"},
		Bodies: []BodyConfig{
			{Name: "player", Kind: "player", X: 0, Y: 40 - DefaultArenaHeight/2, LinearSpeed: 500, AngularSpeedDeg: 360},
			{Name: "enemy", Kind: "snap"},
			{Name: "enemy-snap-1", Kind: "snap", X: -quarterX, Y: quarterY},
			{Name: "enemy-snap-2", Kind: "snap", X: quarterX, Y: quarterY},
			{Name: "enemy-rotate-1", Kind: "rotate", X: -quarterX, Y: -quarterY, AngularSpeedDeg: 45},
			{Name: "enemy-rotate-2", Kind: "rotate", X: quarterX, Y: -quarterY, AngularSpeedDeg: 90},
			{Name: "wall-left", Kind: "static", X: -DefaultArenaWidth / 2},
			{Name: "wall-right", Kind: "static", X: DefaultArenaWidth / 2},
			{Name: "wall-bottom", Kind: "static", Y: -DefaultArenaHeight / 2},
			{Name: "wall-top", Kind: "static", Y: DefaultArenaHeight / 2},
		},
	}
}
