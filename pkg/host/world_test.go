package host

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/physics"
	"github.com/opd-ai/go-arena/pkg/steering"
)

func TestWorld_SpawnAndDespawn(t *testing.T) {
	w := NewWorld()
	a := w.Spawn(steering.Body{Name: "a", Kind: steering.KindPlayer}, steering.NewPose(physics.Zero, 0))
	b := w.Spawn(steering.Body{Name: "b", Kind: steering.KindSnapTarget}, steering.NewPose(physics.Vector2D{X: 1}, 0))

	assert.Equal(t, steering.BodyID(1), a)
	assert.Equal(t, steering.BodyID(2), b)
	assert.Equal(t, 2, w.Len())

	id, ok := w.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, b, id)

	e, ok := w.Entity(a)
	require.True(t, ok)
	assert.True(t, w.DespawnEntity(e))
	assert.False(t, w.DespawnEntity(e))

	assert.True(t, w.Despawn(b))
	assert.False(t, w.Despawn(b))
	_, ok = w.Pose(b)
	assert.False(t, ok)
	_, ok = w.Lookup("b")
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestWorld_AddExistingEntity(t *testing.T) {
	w := NewWorld()
	basic := ecs.NewBasic()
	id := w.Add(&basic, steering.Body{Name: "rock", Kind: steering.KindStatic}, steering.NewPose(physics.Vector2D{X: 5, Y: 5}, 0))

	body, ok := w.Body(id)
	require.True(t, ok)
	assert.Equal(t, "rock", body.Name)

	// re-adding the same entity keeps its id
	again := w.Add(&basic, steering.Body{Name: "boulder", Kind: steering.KindStatic}, steering.NewPose(physics.Zero, 0))
	assert.Equal(t, id, again)
	assert.Equal(t, 1, w.Len())
}

func TestWorld_PosesIsACopy(t *testing.T) {
	w := NewWorld()
	id := w.Spawn(steering.Body{Name: "p", Kind: steering.KindPlayer}, steering.NewPose(physics.Zero, 0))

	poses := w.Poses()
	poses[id] = steering.NewPose(physics.Vector2D{X: 99}, 0)

	p, _ := w.Pose(id)
	assert.Equal(t, physics.Zero, p.Position)
}

func TestNewWorldFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	w, err := NewWorldFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, len(cfg.Bodies), w.Len())

	id, ok := w.Lookup("player")
	require.True(t, ok)
	body, _ := w.Body(id)
	assert.Equal(t, steering.KindPlayer, body.Kind)
}

func TestNewWorldFromConfig_Invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bodies = cfg.Bodies[1:] // drop the player

	_, err := NewWorldFromConfig(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
