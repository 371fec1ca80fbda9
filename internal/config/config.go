// Package config loads and validates run settings for the servokit CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/servokit/servokit/profile"
	"github.com/servokit/servokit/units"
)

const (
	DefaultPeriod    = 0.02
	DefaultDuration  = 5.0
	DefaultKp        = 40.0
	DefaultKi        = 0.0
	DefaultKd        = 4.0
	DefaultTolerance = 0.02
	DefaultMaxVel    = 1.5
	DefaultMaxAccel  = 4.0
	DefaultMass      = 2.0
	DefaultDamping   = 3.0
	DefaultGoal      = 1.0
)

type Config struct {
	Mechanism  string           `yaml:"mechanism"`
	Period     float64          `yaml:"period"`
	Duration   float64          `yaml:"duration"`
	Controller ControllerConfig `yaml:"controller"`
	Goal       GoalConfig       `yaml:"goal"`
	Plant      PlantConfig      `yaml:"plant"`
}

type ControllerConfig struct {
	Kp              float64 `yaml:"kp"`
	Ki              float64 `yaml:"ki"`
	Kd              float64 `yaml:"kd"`
	Tolerance       float64 `yaml:"tolerance"`
	MaxVelocity     float64 `yaml:"max_velocity"`
	MaxAcceleration float64 `yaml:"max_acceleration"`
	OutputLimit     float64 `yaml:"output_limit"`
	IntegralLimit   float64 `yaml:"integral_limit"`
}

type GoalConfig struct {
	Position float64 `yaml:"position"`
	Velocity float64 `yaml:"velocity"`
}

type PlantConfig struct {
	Mass            float64 `yaml:"mass"`
	Damping         float64 `yaml:"damping"`
	ForceLimit      float64 `yaml:"force_limit"`
	InitialPosition float64 `yaml:"initial_position"`
	InitialVelocity float64 `yaml:"initial_velocity"`
}

func DefaultConfig() *Config {
	return &Config{
		Mechanism: "carriage",
		Period:    DefaultPeriod,
		Duration:  DefaultDuration,
		Controller: ControllerConfig{
			Kp:              DefaultKp,
			Ki:              DefaultKi,
			Kd:              DefaultKd,
			Tolerance:       DefaultTolerance,
			MaxVelocity:     DefaultMaxVel,
			MaxAcceleration: DefaultMaxAccel,
		},
		Goal: GoalConfig{
			Position: DefaultGoal,
		},
		Plant: PlantConfig{
			Mass:    DefaultMass,
			Damping: DefaultDamping,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %g", c.Period)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.Controller.MaxVelocity <= 0 {
		return fmt.Errorf("max_velocity must be positive, got %g", c.Controller.MaxVelocity)
	}
	if c.Controller.MaxAcceleration <= 0 {
		return fmt.Errorf("max_acceleration must be positive, got %g", c.Controller.MaxAcceleration)
	}
	if c.Controller.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %g", c.Controller.Tolerance)
	}
	if c.Plant.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %g", c.Plant.Mass)
	}
	if c.Plant.Damping < 0 {
		return fmt.Errorf("damping must not be negative, got %g", c.Plant.Damping)
	}
	return nil
}

func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Period * float64(time.Second))
}

func (c *Config) RunDuration() time.Duration {
	return time.Duration(c.Duration * float64(time.Second))
}

func (c *Config) Constraints() profile.Constraints {
	return profile.Constraints{
		MaxVelocity:     units.MetersPerSecond(c.Controller.MaxVelocity),
		MaxAcceleration: units.MetersPerSecondSquared(c.Controller.MaxAcceleration),
	}
}

func (c *Config) GoalState() profile.State {
	return profile.State{
		Position: units.Meters(c.Goal.Position),
		Velocity: units.MetersPerSecond(c.Goal.Velocity),
	}
}
