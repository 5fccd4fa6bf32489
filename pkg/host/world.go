// pkg/host/world.go
package host

import (
	"fmt"
	"sync"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/steering"
)

// World owns the pose and body tables a session steps. Each body is tied to
// an ecs.BasicEntity so an ecs.World can refer to it, but body ids are
// assigned by the world in spawn order starting at 1. Entity ids come from a
// process-wide counter and would make two identical sessions hash differently.
type World struct {
	mu       sync.RWMutex
	nextID   steering.BodyID
	poses    steering.Poses
	bodies   steering.Bodies
	entities map[steering.BodyID]ecs.BasicEntity
	byEntity map[uint64]steering.BodyID
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		poses:    make(steering.Poses),
		bodies:   make(steering.Bodies),
		entities: make(map[steering.BodyID]ecs.BasicEntity),
		byEntity: make(map[uint64]steering.BodyID),
	}
}

// NewWorldFromConfig validates cfg and spawns every configured body.
func NewWorldFromConfig(cfg *config.ArenaConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := NewWorld()
	for i, bc := range cfg.Bodies {
		body, err := bc.Body()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		w.Spawn(body, bc.Pose())
	}
	return w, nil
}

// Spawn adds a body with a fresh identity and returns its id.
func (w *World) Spawn(body steering.Body, pose steering.Pose) steering.BodyID {
	basic := ecs.NewBasic()
	return w.Add(&basic, body, pose)
}

// Add registers a body under an existing ecs entity and returns its id.
// Adding an entity twice keeps its id and replaces its body and pose.
func (w *World) Add(basic *ecs.BasicEntity, body steering.Body, pose steering.Pose) steering.BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, ok := w.byEntity[basic.ID()]
	if !ok {
		w.nextID++
		id = w.nextID
		w.byEntity[basic.ID()] = id
	}
	w.entities[id] = *basic
	w.bodies[id] = body
	w.poses[id] = pose
	return id
}

// Despawn removes a body. It reports whether the body existed.
func (w *World) Despawn(id steering.BodyID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entities[id]
	if !ok {
		return false
	}
	delete(w.bodies, id)
	delete(w.poses, id)
	delete(w.entities, id)
	delete(w.byEntity, e.ID())
	return true
}

// DespawnEntity removes the body tied to an ecs entity.
func (w *World) DespawnEntity(basic ecs.BasicEntity) bool {
	w.mu.RLock()
	id, ok := w.byEntity[basic.ID()]
	w.mu.RUnlock()
	if !ok {
		return false
	}
	return w.Despawn(id)
}

// Entity returns the ecs identity of a body.
func (w *World) Entity(id steering.BodyID) (ecs.BasicEntity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	return e, ok
}

// Lookup finds a body id by name.
func (w *World) Lookup(name string) (steering.BodyID, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, body := range w.bodies {
		if body.Name == name {
			return id, true
		}
	}
	return 0, false
}

// Pose returns the current pose of a body.
func (w *World) Pose(id steering.BodyID) (steering.Pose, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.poses[id]
	return p, ok
}

// Body returns the steering parameters of a body.
func (w *World) Body(id steering.BodyID) (steering.Body, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bodies[id]
	return b, ok
}

// Poses returns a copy of the pose table.
func (w *World) Poses() steering.Poses {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.poses.Clone()
}

// Len returns the number of bodies.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// step runs fn on copies of the tables and commits the resulting poses.
// No lock is held while fn runs, so event handlers fired from fn may read
// the world. Bodies despawned meanwhile are not brought back.
func (w *World) step(fn func(steering.Poses, steering.Bodies) error) error {
	w.mu.RLock()
	poses := w.poses.Clone()
	bodies := make(steering.Bodies, len(w.bodies))
	for id, b := range w.bodies {
		bodies[id] = b
	}
	w.mu.RUnlock()

	if err := fn(poses, bodies); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for id, pose := range poses {
		if _, ok := w.poses[id]; ok {
			w.poses[id] = pose
		}
	}
	return nil
}
