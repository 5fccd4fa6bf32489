// pkg/host/ecs_system.go
package host

import (
	"context"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/steering"
)

// ArenaSystem lets an ecs.World drive a Runner: each Update advances the
// session by the frame time and removing an entity despawns its body.
type ArenaSystem struct {
	ctx    context.Context
	runner *Runner
	err    error
}

// NewArenaSystem creates a system driving runner with ctx.
func NewArenaSystem(ctx context.Context, runner *Runner) *ArenaSystem {
	return &ArenaSystem{ctx: ctx, runner: runner}
}

// Add registers a body for an entity created elsewhere in the ecs world
func (s *ArenaSystem) Add(basic *ecs.BasicEntity, body steering.Body, pose steering.Pose) steering.BodyID {
	return s.runner.World().Add(basic, body, pose)
}

// Remove satisfies the ecs.System interface
func (s *ArenaSystem) Remove(basic ecs.BasicEntity) {
	s.runner.World().DespawnEntity(basic)
}

// Update satisfies the ecs.System interface. Once the session has stopped,
// further updates do nothing; Err reports why.
func (s *ArenaSystem) Update(dt float32) {
	if s.err != nil {
		return
	}
	if _, err := s.runner.Advance(s.ctx, float64(dt)); err != nil {
		s.err = err
	}
}

// Err returns the error that stopped the session, if any.
func (s *ArenaSystem) Err() error {
	return s.err
}
