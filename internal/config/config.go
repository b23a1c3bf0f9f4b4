package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Radical-AI/atomsim/internal/autobatch"
	"github.com/Radical-AI/atomsim/internal/potential"
)

const (
	DefaultDt          = 0.002
	DefaultSteps       = 1000
	DefaultTemperature = 0.7
	DefaultFriction    = 1.0
	DefaultForceTol    = 0.05
	DefaultMaxSteps    = 10000
	DefaultSigma       = 1.0
	DefaultEpsilon     = 1.0
	DefaultAlpha       = 5.0
)

type Config struct {
	Potential  PotentialConfig  `yaml:"potential"`
	Dynamics   DynamicsConfig   `yaml:"dynamics"`
	Relax      RelaxConfig      `yaml:"relax"`
	Batch      BatchConfig      `yaml:"batch"`
	Trajectory TrajectoryConfig `yaml:"trajectory"`
	Seed       int64            `yaml:"seed"`
}

type PotentialConfig struct {
	Kind    string  `yaml:"kind"`
	Sigma   float64 `yaml:"sigma"`
	Epsilon float64 `yaml:"epsilon"`
	Alpha   float64 `yaml:"alpha"`
	Cutoff  float64 `yaml:"cutoff"`
	Stress  bool    `yaml:"stress"`
}

type DynamicsConfig struct {
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Temperature float64 `yaml:"temperature"`
	Friction    float64 `yaml:"friction"`
	Steps       int     `yaml:"steps"`
}

type RelaxConfig struct {
	Optimizer         string  `yaml:"optimizer"`
	LearningRate      float64 `yaml:"learning_rate"`
	DtStart           float64 `yaml:"dt_start"`
	ForceTol          float64 `yaml:"force_tol"`
	MaxSteps          int     `yaml:"max_steps"`
	StepsBetweenSwaps int     `yaml:"steps_between_swaps"`
}

type BatchConfig struct {
	Metric      string  `yaml:"metric"`
	MaxMetric   float64 `yaml:"max_metric"`
	AtomCeiling int     `yaml:"atom_ceiling"`
}

type TrajectoryConfig struct {
	Path  string `yaml:"path"`
	Every int    `yaml:"every"`
}

func DefaultConfig() *Config {
	return &Config{
		Potential: PotentialConfig{
			Kind:    "lennard_jones",
			Sigma:   DefaultSigma,
			Epsilon: DefaultEpsilon,
			Alpha:   DefaultAlpha,
		},
		Dynamics: DynamicsConfig{
			Integrator:  "nve",
			Dt:          DefaultDt,
			Temperature: DefaultTemperature,
			Friction:    DefaultFriction,
			Steps:       DefaultSteps,
		},
		Relax: RelaxConfig{
			Optimizer: "fire",
			DtStart:   DefaultDt,
			ForceTol:  DefaultForceTol,
			MaxSteps:  DefaultMaxSteps,
		},
		Trajectory: TrajectoryConfig{Every: 10},
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

// BatchOptions translates the batch section into autobatcher options.
func (c *Config) BatchOptions() (autobatch.Options, error) {
	opts := autobatch.Options{
		MaxMetric:   c.Batch.MaxMetric,
		AtomCeiling: c.Batch.AtomCeiling,
	}
	switch c.Batch.Metric {
	case "":
	case string(potential.ScalesWithAtoms):
		opts.Metric = potential.ScalesWithAtoms
	case string(potential.ScalesWithAtomsDensity):
		opts.Metric = potential.ScalesWithAtomsDensity
	default:
		return autobatch.Options{}, fmt.Errorf("unknown batch metric %q", c.Batch.Metric)
	}
	return opts, nil
}
