package config

import "sort"

var Presets = map[string]*Config{
	"lj-melt": {
		Potential: PotentialConfig{Kind: "lennard_jones", Sigma: 1.0, Epsilon: 1.0},
		Dynamics:  DynamicsConfig{Integrator: "langevin", Dt: 0.002, Temperature: 1.5, Friction: 1.0, Steps: 5000},
		Relax:     RelaxConfig{Optimizer: "fire", DtStart: 0.002, ForceTol: DefaultForceTol, MaxSteps: DefaultMaxSteps},
	},
	"lj-quench": {
		Potential: PotentialConfig{Kind: "lennard_jones", Sigma: 1.0, Epsilon: 1.0},
		Dynamics:  DynamicsConfig{Integrator: "langevin", Dt: 0.002, Temperature: 0.1, Friction: 5.0, Steps: 2000},
		Relax:     RelaxConfig{Optimizer: "fire", DtStart: 0.002, ForceTol: 0.01, MaxSteps: DefaultMaxSteps},
	},
	"morse-nve": {
		Potential: PotentialConfig{Kind: "morse", Sigma: 1.0, Epsilon: 1.0, Alpha: 5.0},
		Dynamics:  DynamicsConfig{Integrator: "nve", Dt: 0.001, Temperature: 0.5, Steps: 5000},
		Relax:     RelaxConfig{Optimizer: "descent", LearningRate: 0.01, ForceTol: DefaultForceTol, MaxSteps: DefaultMaxSteps},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
