// pkg/host/runner.go
package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/steering"
)

// ErrSessionAborted is returned once too many consecutive ticks have failed.
var ErrSessionAborted = errors.New("session aborted after repeated tick failures")

// InputSource supplies the player input for a zero-based tick.
type InputSource interface {
	Input(tick uint64) steering.Input
}

type idleSource struct{}

func (idleSource) Input(uint64) steering.Input { return steering.Input{} }

// Settings controls frame pacing and failure handling.
type Settings struct {
	// MaxFrameTime caps the wall time credited per frame, in seconds.
	MaxFrameTime float64
	// ChecksumEvery logs a pose checksum every n completed ticks; 0 disables.
	ChecksumEvery int
	// MaxConsecutiveFailures trips the breaker and aborts the session.
	MaxConsecutiveFailures int
	BreakerTimeout         time.Duration
}

// SettingsFromArena extracts the runner settings from a session configuration.
func SettingsFromArena(c *config.ArenaConfig) Settings {
	return Settings{
		MaxFrameTime:           c.MaxFrameTime,
		ChecksumEvery:          c.ChecksumEvery,
		MaxConsecutiveFailures: c.Breaker.MaxConsecutiveFailures,
		BreakerTimeout:         c.Breaker.Timeout,
	}
}

// Runner drives a simulation from variable frame times using a fixed-step
// accumulator. Every tick runs through a circuit breaker: a failed tick is
// logged and skipped, and a run of failures ends the session.
type Runner struct {
	sim      *engine.Simulation
	world    *World
	input    InputSource
	settings Settings
	breaker  *gobreaker.CircuitBreaker
	logger   *logging.Logger

	accumulator float64
	attempts    uint64
	failures    uint64
	aborted     error
}

// NewRunner creates a runner. A nil input source keeps the player idle and a
// nil logger discards output.
func NewRunner(sim *engine.Simulation, world *World, input InputSource, settings Settings, logger *logging.Logger) *Runner {
	if input == nil {
		input = idleSource{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if settings.MaxConsecutiveFailures <= 0 {
		settings.MaxConsecutiveFailures = config.DefaultMaxConsecutiveFailures
	}

	r := &Runner{
		sim:      sim,
		world:    world,
		input:    input,
		settings: settings,
		logger:   logger,
	}

	maxFailures := uint32(settings.MaxConsecutiveFailures)
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "arena-tick",
		MaxRequests: 1,
		Timeout:     settings.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return r
}

// Simulation returns the simulation being driven.
func (r *Runner) Simulation() *engine.Simulation {
	return r.sim
}

// World returns the tables being stepped.
func (r *Runner) World() *World {
	return r.world
}

// State returns the breaker state.
func (r *Runner) State() gobreaker.State {
	return r.breaker.State()
}

// Failures returns how many ticks have failed over the session.
func (r *Runner) Failures() uint64 {
	return r.failures
}

// Alpha returns how far the accumulator is into the next tick, in [0, 1),
// for interpolating between the last two poses.
func (r *Runner) Alpha() float64 {
	return r.accumulator / r.sim.Config().TimeStep
}

// Advance credits frameSeconds of wall time, capped at MaxFrameTime, and
// runs every whole tick that has accumulated. It returns the number of
// ticks that completed.
func (r *Runner) Advance(ctx context.Context, frameSeconds float64) (int, error) {
	if r.aborted != nil {
		return 0, r.aborted
	}
	if math.IsNaN(frameSeconds) || math.IsInf(frameSeconds, 0) || frameSeconds < 0 {
		return 0, fmt.Errorf("frame time %v: %w", frameSeconds, engine.ErrInvalidDeltaTime)
	}
	if r.settings.MaxFrameTime > 0 && frameSeconds > r.settings.MaxFrameTime {
		frameSeconds = r.settings.MaxFrameTime
	}

	step := r.sim.Config().TimeStep
	r.accumulator += frameSeconds

	completed := 0
	for r.accumulator >= step {
		r.accumulator -= step
		ok, err := r.tick(ctx)
		if err != nil {
			return completed, err
		}
		if ok {
			completed++
		}
	}
	return completed, nil
}

// Run executes n fixed ticks regardless of wall time, for headless sessions.
func (r *Runner) Run(ctx context.Context, n uint64) (int, error) {
	if r.aborted != nil {
		return 0, r.aborted
	}

	completed := 0
	for i := uint64(0); i < n; i++ {
		ok, err := r.tick(ctx)
		if err != nil {
			return completed, err
		}
		if ok {
			completed++
		}
	}
	return completed, nil
}

// tick runs one fixed step through the breaker. It reports whether the step
// completed; the error is non-nil only when the session must stop.
func (r *Runner) tick(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	in := r.input.Input(r.attempts)
	r.attempts++

	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.world.step(func(poses steering.Poses, bodies steering.Bodies) error {
			return r.sim.Tick(ctx, in, poses, bodies)
		})
	})
	if err == nil {
		r.logChecksum(ctx)
		return true, nil
	}

	r.failures++
	if r.breaker.State() == gobreaker.StateOpen || errors.Is(err, gobreaker.ErrOpenState) {
		return false, r.abort(ctx, err)
	}

	r.logger.Warn(ctx, "tick skipped",
		"attempt", r.attempts,
		"consecutive_failures", r.breaker.Counts().ConsecutiveFailures,
		"error", err.Error(),
	)
	return false, nil
}

func (r *Runner) abort(ctx context.Context, cause error) error {
	r.aborted = fmt.Errorf("%w: %w", ErrSessionAborted, cause)
	r.logger.Error(ctx, "session aborted", cause,
		"tick", r.sim.CurrentTick(),
		"failures", r.failures,
	)
	r.sim.EventBus().Publish(event.NewTickEvent(event.SessionAborted, r, r.sim.CurrentTick(), r.sim.Config().TimeStep, r.aborted))
	return r.aborted
}

func (r *Runner) logChecksum(ctx context.Context) {
	every := uint64(r.settings.ChecksumEvery)
	if every == 0 {
		return
	}
	tick := r.sim.CurrentTick()
	if tick%every != 0 {
		return
	}
	r.logger.Info(ctx, "pose checksum",
		"tick", tick,
		"checksum", fmt.Sprintf("%016x", engine.Checksum(r.world.Poses())),
	)
}
