// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/physics"
	"github.com/opd-ai/go-arena/pkg/steering"
	"github.com/opd-ai/go-arena/pkg/validation"
)

var (
	// ErrMissingOrMultiplePlayer is returned when the pose table does not
	// hold exactly one player body.
	ErrMissingOrMultiplePlayer = errors.New("pose table must contain exactly one player body")
	// ErrUnknownBody is returned when a steerable body has no pose.
	ErrUnknownBody = errors.New("steerable body has no pose")
	// ErrInvalidBody is returned when a steerable body has a negative or
	// non-finite speed.
	ErrInvalidBody = errors.New("invalid body parameters")
	// ErrInvalidDeltaTime is returned for a negative or non-finite dt.
	ErrInvalidDeltaTime = validation.ErrInvalidDeltaTime
)

// Config holds the constants a simulation is built with
type Config struct {
	TimeStep float64
	Bounds   physics.Bounds
	// Parallel steers non-player bodies concurrently within a step.
	Parallel bool
	// SkipDegenerate keeps a body's previous pose when its target direction
	// is undefined instead of failing the step.
	SkipDegenerate bool
}

// ConfigFromArena extracts the simulation settings from a session configuration.
func ConfigFromArena(c *config.ArenaConfig) Config {
	return Config{
		TimeStep:       c.TimeStep,
		Bounds:         c.Bounds(),
		Parallel:       c.Simulation.Parallel,
		SkipDegenerate: c.Simulation.SkipDegenerate,
	}
}

// BodyError ties a steering failure to the body that produced it
type BodyError struct {
	ID   steering.BodyID
	Name string
	Err  error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e *BodyError) Unwrap() error {
	return e.Err
}

// Simulation advances a pose table one fixed tick at a time
type Simulation struct {
	cfg    Config
	logger *logging.Logger
	bus    *event.Bus

	mu   sync.RWMutex
	tick uint64
}

// Option customizes a Simulation
type Option func(*Simulation)

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithEventBus sets the bus tick and body events are published on.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) {
		s.bus = bus
	}
}

// NewSimulation creates a simulation with fixed time step and arena bounds
func NewSimulation(cfg Config, opts ...Option) (*Simulation, error) {
	if err := validation.ValidateDeltaTime(cfg.TimeStep); err != nil {
		return nil, fmt.Errorf("time step: %w", err)
	}
	if cfg.TimeStep == 0 {
		return nil, fmt.Errorf("time step: %w: must be positive", ErrInvalidDeltaTime)
	}
	if err := validation.ValidateArenaSize(2*cfg.Bounds.HalfExtent.X, 2*cfg.Bounds.HalfExtent.Y); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:    cfg,
		logger: logging.NewNop(),
		bus:    event.NewEventBus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the settings the simulation was built with.
func (s *Simulation) Config() Config {
	return s.cfg
}

// EventBus returns the bus events are published on.
func (s *Simulation) EventBus() *event.Bus {
	return s.bus
}

// CurrentTick returns the number of completed steps.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick
}

// Tick advances the simulation by the configured time step.
func (s *Simulation) Tick(ctx context.Context, in steering.Input, poses steering.Poses, bodies steering.Bodies) error {
	return s.Step(ctx, s.cfg.TimeStep, in, poses, bodies)
}

type stepResult struct {
	pose    steering.Pose
	clamped bool
	err     error
}

// Step advances every steerable body by dt and writes the new poses back
// into poses. Target-seeking bodies steer against the player's pose from
// before the step. Either every body is updated or, on error, poses is left
// untouched. Events are published after the step releases its lock, so
// handlers may call back into the simulation.
func (s *Simulation) Step(ctx context.Context, dt float64, in steering.Input, poses steering.Poses, bodies steering.Bodies) error {
	s.mu.Lock()
	events, err := s.step(ctx, dt, in, poses, bodies)
	s.mu.Unlock()

	for _, e := range events {
		s.bus.Publish(e)
	}
	return err
}

func (s *Simulation) step(ctx context.Context, dt float64, in steering.Input, poses steering.Poses, bodies steering.Bodies) ([]event.Event, error) {
	if err := validation.ValidateDeltaTime(dt); err != nil {
		return s.fail(ctx, dt, err)
	}

	playerID, err := findPlayer(poses, bodies)
	if err != nil {
		return s.fail(ctx, dt, err)
	}

	ids := steerableIDs(bodies)
	for _, id := range ids {
		body := bodies[id]
		if _, ok := poses[id]; !ok {
			return s.fail(ctx, dt, &BodyError{ID: id, Name: body.Name, Err: ErrUnknownBody})
		}
		if err := validateBody(body); err != nil {
			return s.fail(ctx, dt, &BodyError{ID: id, Name: body.Name, Err: err})
		}
	}

	sctx := steering.Context{
		DeltaTime: dt,
		Input:     in,
		Target:    poses[playerID],
	}

	results := make([]stepResult, len(ids))
	update := func(i int) error {
		id := ids[i]
		body := bodies[id]
		pose := poses[id]

		delta, err := steering.Steer(body, pose, sctx)
		if err != nil {
			results[i].err = &BodyError{ID: id, Name: body.Name, Err: err}
			return results[i].err
		}

		next := pose.Apply(delta)
		if body.Kind == steering.KindPlayer {
			clamped := s.cfg.Bounds.Clamp(next.Position)
			results[i].clamped = clamped != next.Position
			next.Position = clamped
		}
		results[i].pose = next
		return nil
	}

	// Each body writes only its own slot, so ordering does not matter.
	// Wait reports the first failure; every slot still runs to completion.
	var g errgroup.Group
	if !s.cfg.Parallel {
		g.SetLimit(1)
	}
	for i := range ids {
		g.Go(func() error { return update(i) })
	}

	skipped := make(map[int]bool)
	if err := g.Wait(); err != nil {
		var failed []error
		for i, r := range results {
			if r.err == nil {
				continue
			}
			if s.cfg.SkipDegenerate && errors.Is(r.err, physics.ErrDegenerateDirection) {
				skipped[i] = true
				continue
			}
			failed = append(failed, r.err)
		}
		if len(failed) > 0 {
			return s.fail(ctx, dt, errors.Join(failed...))
		}
	}

	var events []event.Event
	for i, id := range ids {
		if skipped[i] {
			s.logger.Warn(ctx, "body skipped for tick", "tick", s.tick, "body_id", uint64(id), "body", bodies[id].Name, "error", results[i].err.Error())
			events = append(events, event.NewBodyEvent(event.BodySkipped, s, s.tick, uint64(id), bodies[id].Name, results[i].err))
			continue
		}
		poses[id] = results[i].pose
		if results[i].clamped {
			events = append(events, event.NewBodyEvent(event.PlayerClamped, s, s.tick, uint64(id), bodies[id].Name, nil))
		}
	}

	s.tick++
	s.logger.Debug(ctx, "tick completed", "tick", s.tick, "dt", dt, "bodies", len(ids))
	events = append(events, event.NewTickEvent(event.TickCompleted, s, s.tick, dt, nil))
	return events, nil
}

// fail logs a failed step and returns the event to publish. The tick
// counter does not advance.
func (s *Simulation) fail(ctx context.Context, dt float64, err error) ([]event.Event, error) {
	err = fmt.Errorf("step %d: %w", s.tick+1, err)
	s.logger.Error(ctx, "simulation step failed", err, "tick", s.tick+1, "dt", dt)
	return []event.Event{event.NewTickEvent(event.TickFailed, s, s.tick+1, dt, err)}, err
}

// validateBody rejects speeds a policy cannot steer with.
func validateBody(body steering.Body) error {
	if err := validation.ValidateSpeed("linear_speed", body.LinearSpeed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := validation.ValidateSpeed("angular_speed", body.AngularSpeed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// findPlayer returns the single player body that has a pose.
func findPlayer(poses steering.Poses, bodies steering.Bodies) (steering.BodyID, error) {
	var (
		playerID steering.BodyID
		count    int
	)
	for id, body := range bodies {
		if body.Kind != steering.KindPlayer {
			continue
		}
		if _, ok := poses[id]; !ok {
			continue
		}
		playerID = id
		count++
	}
	if count != 1 {
		return 0, fmt.Errorf("%w: found %d", ErrMissingOrMultiplePlayer, count)
	}
	return playerID, nil
}

// steerableIDs lists every non-static body in id order so logs, events and
// error messages are deterministic.
func steerableIDs(bodies steering.Bodies) []steering.BodyID {
	ids := make([]steering.BodyID, 0, len(bodies))
	for id, body := range bodies {
		if body.Steerable() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
