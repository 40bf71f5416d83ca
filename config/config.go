// Package config loads Trellis runtime configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trellis-ecs/trellis/ecs"
)

// Config is the top-level runtime configuration.
type Config struct {
	// MaxEntities sizes the allocator's entity pool and every component
	// column.
	MaxEntities int `yaml:"max_entities"`

	// Demo tunes the demo driver.
	Demo DemoConfig `yaml:"demo"`
}

// DemoConfig tunes the spring-damper demo simulation.
type DemoConfig struct {
	// PointMasses is the number of simulated point mass entities.
	PointMasses int `yaml:"point_masses"`

	// SpringStiffness is the spring constant. Negative pulls endpoints
	// together.
	SpringStiffness float64 `yaml:"spring_stiffness"`

	// SpringDamping is the damping constant. Negative opposes relative
	// velocity.
	SpringDamping float64 `yaml:"spring_damping"`

	// Timestep is the fixed integration step in seconds.
	Timestep float64 `yaml:"timestep"`

	// Steps is the number of fixed steps a headless run performs.
	Steps int `yaml:"steps"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MaxEntities: ecs.DefaultMaxEntities,
		Demo: DemoConfig{
			PointMasses:     100,
			SpringStiffness: -2.5,
			SpringDamping:   -10.0,
			Timestep:        0.001,
			Steps:           1000,
		},
	}
}

// Load reads a YAML configuration file. Missing keys fall back to the
// defaults; invalid values are rejected.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, ecs.WrapError(err, ecs.ErrCodeInvalidConfig, "reading config")
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, ecs.WrapError(err, ecs.ErrCodeInvalidConfig, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the runtime cannot honor.
func (c Config) Validate() error {
	if c.MaxEntities < 1 {
		return ecs.NewECSError(ecs.ErrCodeInvalidConfig,
			fmt.Sprintf("max_entities must be positive, got %d", c.MaxEntities))
	}
	if c.MaxEntities > ecs.MetaMaxEntities {
		return ecs.NewECSError(ecs.ErrCodeInvalidConfig,
			fmt.Sprintf("max_entities must not exceed %d, got %d", ecs.MetaMaxEntities, c.MaxEntities))
	}
	if c.Demo.PointMasses < 0 {
		return ecs.NewECSError(ecs.ErrCodeInvalidConfig, "demo.point_masses must not be negative")
	}
	if c.Demo.Timestep <= 0 {
		return ecs.NewECSError(ecs.ErrCodeInvalidConfig, "demo.timestep must be positive")
	}
	if c.Demo.Steps < 0 {
		return ecs.NewECSError(ecs.ErrCodeInvalidConfig, "demo.steps must not be negative")
	}
	return nil
}
