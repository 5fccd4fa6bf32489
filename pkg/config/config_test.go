package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-arena/pkg/steering"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 600.0, cfg.Bounds().HalfExtent.X)
	assert.Equal(t, 320.0, cfg.Bounds().HalfExtent.Y)

	player, err := cfg.Bodies[0].Body()
	require.NoError(t, err)
	assert.Equal(t, steering.KindPlayer, player.Kind)
	assert.Equal(t, 500.0, player.LinearSpeed)
	assert.InDelta(t, 2*math.Pi, player.AngularSpeed, 1e-12)
	assert.Equal(t, -280.0, cfg.Bodies[0].Pose().Position.Y)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ArenaConfig)
	}{
		{"zero time step", func(c *ArenaConfig) { c.TimeStep = 0 }},
		{"nan time step", func(c *ArenaConfig) { c.TimeStep = math.NaN() }},
		{"frame cap below tick", func(c *ArenaConfig) { c.MaxFrameTime = c.TimeStep / 2 }},
		{"negative checksum interval", func(c *ArenaConfig) { c.ChecksumEvery = -1 }},
		{"zero arena", func(c *ArenaConfig) { c.Arena.Width = 0 }},
		{"breaker never trips", func(c *ArenaConfig) { c.Breaker.MaxConsecutiveFailures = 0 }},
		{"negative breaker timeout", func(c *ArenaConfig) { c.Breaker.Timeout = -time.Second }},
		{"no player", func(c *ArenaConfig) { c.Bodies = c.Bodies[1:] }},
		{"two players", func(c *ArenaConfig) {
			c.Bodies = append(c.Bodies, BodyConfig{Name: "player-2", Kind: "player", LinearSpeed: 1})
		}},
		{"duplicate name", func(c *ArenaConfig) { c.Bodies[2].Name = c.Bodies[1].Name }},
		{"bad name", func(c *ArenaConfig) { c.Bodies[1].Name = "enemy!" }},
		{"unknown kind", func(c *ArenaConfig) { c.Bodies[1].Kind = "comet" }},
		{"negative speed", func(c *ArenaConfig) { c.Bodies[0].LinearSpeed = -5 }},
		{"infinite coordinate", func(c *ArenaConfig) { c.Bodies[3].X = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error %v does not wrap ErrInvalidConfig", err)
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "arena.yaml")

	cfg := DefaultConfig()
	cfg.Simulation.Parallel = true
	cfg.Breaker.Timeout = 5 * time.Second
	cfg.Bodies[4].AngularSpeedDeg = 30

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	assert.Equal(t, cfg.TimeStep, loaded.TimeStep)
	assert.Equal(t, cfg.Arena, loaded.Arena)
	assert.True(t, loaded.Simulation.Parallel)
	assert.Equal(t, 5*time.Second, loaded.Breaker.Timeout)
	assert.Equal(t, cfg.Bodies, loaded.Bodies)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	content := `
time_step: 0.02
arena:
  width: 800
bodies:
  - name: ship
    kind: player
    linear_speed: 100
    angular_speed_deg: 90
  - name: turret
    kind: rotate
    x: 100
    y: 100
    angular_speed_deg: 45
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.02, cfg.TimeStep)
	assert.Equal(t, 800.0, cfg.Arena.Width)
	assert.Equal(t, DefaultArenaHeight, cfg.Arena.Height)
	assert.Equal(t, 5, cfg.Breaker.MaxConsecutiveFailures)
	require.Len(t, cfg.Bodies, 2)
	assert.Equal(t, "turret", cfg.Bodies[1].Name)
	assert.Equal(t, 45.0, cfg.Bodies[1].AngularSpeedDeg)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARENA_TIME_STEP", "0.01")
	t.Setenv("ARENA_ARENA_HEIGHT", "480")
	t.Setenv("ARENA_SIMULATION_SKIP_DEGENERATE", "true")
	t.Setenv("ARENA_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.TimeStep)
	assert.Equal(t, 480.0, cfg.Arena.Height)
	assert.Equal(t, DefaultArenaWidth, cfg.Arena.Width)
	assert.True(t, cfg.Simulation.SkipDegenerate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Len(t, cfg.Bodies, len(DefaultConfig().Bodies))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_step: [1, 2\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
