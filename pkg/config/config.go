// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-arena/pkg/physics"
	"github.com/opd-ai/go-arena/pkg/steering"
	"github.com/opd-ai/go-arena/pkg/validation"
)

// EnvPrefix prefixes every environment override, e.g. ARENA_TIME_STEP or
// ARENA_ARENA_WIDTH.
const EnvPrefix = "ARENA"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ArenaConfig contains everything needed to set up and run a session
type ArenaConfig struct {
	TimeStep      float64          `mapstructure:"time_step" yaml:"time_step"`
	MaxFrameTime  float64          `mapstructure:"max_frame_time" yaml:"max_frame_time"`
	ChecksumEvery int              `mapstructure:"checksum_every" yaml:"checksum_every"`
	Arena         ArenaSize        `mapstructure:"arena" yaml:"arena"`
	Simulation    SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	Breaker       BreakerConfig    `mapstructure:"breaker" yaml:"breaker"`
	Logging       LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Bodies        []BodyConfig     `mapstructure:"bodies" yaml:"bodies"`
}

// ArenaSize is the full width and height of the arena, centered on the origin
type ArenaSize struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// SimulationConfig tunes the step itself
type SimulationConfig struct {
	Parallel       bool `mapstructure:"parallel" yaml:"parallel"`
	SkipDegenerate bool `mapstructure:"skip_degenerate" yaml:"skip_degenerate"`
}

// BreakerConfig decides when repeated failed ticks end the session
type BreakerConfig struct {
	MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures" yaml:"max_consecutive_failures"`
	Timeout                time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// BodyConfig describes one body placed at scene setup. Angles are in degrees.
type BodyConfig struct {
	Name            string  `mapstructure:"name" yaml:"name"`
	Kind            string  `mapstructure:"kind" yaml:"kind"`
	X               float64 `mapstructure:"x" yaml:"x"`
	Y               float64 `mapstructure:"y" yaml:"y"`
	HeadingDeg      float64 `mapstructure:"heading_deg" yaml:"heading_deg"`
	LinearSpeed     float64 `mapstructure:"linear_speed" yaml:"linear_speed,omitempty"`
	AngularSpeedDeg float64 `mapstructure:"angular_speed_deg" yaml:"angular_speed_deg,omitempty"`
}

// Body converts the configuration into steering parameters.
func (b BodyConfig) Body() (steering.Body, error) {
	kind, err := steering.ParseKind(b.Kind)
	if err != nil {
		return steering.Body{}, err
	}
	return steering.Body{
		Name:         b.Name,
		Kind:         kind,
		LinearSpeed:  b.LinearSpeed,
		AngularSpeed: toRadians(b.AngularSpeedDeg),
	}, nil
}

// Pose returns the body's initial pose.
func (b BodyConfig) Pose() steering.Pose {
	return steering.NewPose(physics.Vector2D{X: b.X, Y: b.Y}, toRadians(b.HeadingDeg))
}

// Bounds returns the arena as a centered half-extent rectangle.
func (c *ArenaConfig) Bounds() physics.Bounds {
	return physics.NewBounds(c.Arena.Width, c.Arena.Height)
}

// Validate checks the configuration for values the simulation cannot run with.
func (c *ArenaConfig) Validate() error {
	if err := validation.ValidateDeltaTime(c.TimeStep); err != nil || c.TimeStep == 0 {
		return fmt.Errorf("%w: time_step must be in (0, %v], got %v", ErrInvalidConfig, validation.MaxDeltaTime, c.TimeStep)
	}
	if math.IsNaN(c.MaxFrameTime) || math.IsInf(c.MaxFrameTime, 0) || c.MaxFrameTime < c.TimeStep {
		return fmt.Errorf("%w: max_frame_time %v must be finite and at least time_step %v", ErrInvalidConfig, c.MaxFrameTime, c.TimeStep)
	}
	if c.ChecksumEvery < 0 {
		return fmt.Errorf("%w: checksum_every cannot be negative", ErrInvalidConfig)
	}
	if err := validation.ValidateArenaSize(c.Arena.Width, c.Arena.Height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Breaker.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("%w: breaker.max_consecutive_failures must be at least 1", ErrInvalidConfig)
	}
	if c.Breaker.Timeout < 0 {
		return fmt.Errorf("%w: breaker.timeout cannot be negative", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Bodies))
	players := 0
	for i, bc := range c.Bodies {
		name, err := validation.ValidateBodyName(bc.Name)
		if err != nil {
			return fmt.Errorf("%w: bodies[%d]: %v", ErrInvalidConfig, i, err)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate body name %q", ErrInvalidConfig, name)
		}
		seen[name] = true

		body, err := bc.Body()
		if err != nil {
			return fmt.Errorf("%w: body %q: %v", ErrInvalidConfig, name, err)
		}
		if body.Kind == steering.KindPlayer {
			players++
		}
		for _, check := range []error{
			validation.ValidateCoordinate("x", bc.X),
			validation.ValidateCoordinate("y", bc.Y),
			validation.ValidateCoordinate("heading_deg", bc.HeadingDeg),
			validation.ValidateSpeed("linear_speed", bc.LinearSpeed),
			validation.ValidateSpeed("angular_speed_deg", bc.AngularSpeedDeg),
		} {
			if check != nil {
				return fmt.Errorf("%w: body %q: %v", ErrInvalidConfig, name, check)
			}
		}
	}
	if players != 1 {
		return fmt.Errorf("%w: expected exactly one player body, found %d", ErrInvalidConfig, players)
	}
	return nil
}

// Load reads a YAML configuration. With an empty path it looks for
// arena.yaml in the working directory and falls back to the defaults when
// none exists. ARENA_* environment variables override file values.
func Load(path string) (*ArenaConfig, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("arena")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ArenaConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes a configuration to a YAML file
func Save(cfg *ArenaConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *ArenaConfig) {
	v.SetDefault("time_step", d.TimeStep)
	v.SetDefault("max_frame_time", d.MaxFrameTime)
	v.SetDefault("checksum_every", d.ChecksumEvery)
	v.SetDefault("arena.width", d.Arena.Width)
	v.SetDefault("arena.height", d.Arena.Height)
	v.SetDefault("simulation.parallel", d.Simulation.Parallel)
	v.SetDefault("simulation.skip_degenerate", d.Simulation.SkipDegenerate)
	v.SetDefault("breaker.max_consecutive_failures", d.Breaker.MaxConsecutiveFailures)
	v.SetDefault("breaker.timeout", d.Breaker.Timeout)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("bodies", d.Bodies)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
