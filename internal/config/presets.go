package config

import "sort"

var Presets = map[string]map[string]*Config{
	"elevator": {
		"low": {
			Mechanism: "elevator", Period: 0.02, Duration: 4.0,
			Controller: ControllerConfig{
				Kp: 250, Kd: 40, Tolerance: 0.01,
				MaxVelocity: 1.2, MaxAcceleration: 3.0, OutputLimit: 120,
			},
			Goal:  GoalConfig{Position: 0.4},
			Plant: PlantConfig{Mass: 6.0, Damping: 12.0, ForceLimit: 120},
		},
		"high": {
			Mechanism: "elevator", Period: 0.02, Duration: 6.0,
			Controller: ControllerConfig{
				Kp: 250, Kd: 40, Tolerance: 0.01,
				MaxVelocity: 1.2, MaxAcceleration: 3.0, OutputLimit: 120,
			},
			Goal:  GoalConfig{Position: 1.3},
			Plant: PlantConfig{Mass: 6.0, Damping: 12.0, ForceLimit: 120},
		},
	},
	"slide": {
		"near": {
			Mechanism: "slide", Period: 0.01, Duration: 3.0,
			Controller: ControllerConfig{
				Kp: 90, Kd: 12, Tolerance: 0.005,
				MaxVelocity: 2.5, MaxAcceleration: 8.0, OutputLimit: 60,
			},
			Goal:  GoalConfig{Position: 0.25},
			Plant: PlantConfig{Mass: 1.5, Damping: 4.0, ForceLimit: 60},
		},
		"far": {
			Mechanism: "slide", Period: 0.01, Duration: 4.0,
			Controller: ControllerConfig{
				Kp: 90, Kd: 12, Tolerance: 0.005,
				MaxVelocity: 2.5, MaxAcceleration: 8.0, OutputLimit: 60,
			},
			Goal:  GoalConfig{Position: 0.9},
			Plant: PlantConfig{Mass: 1.5, Damping: 4.0, ForceLimit: 60},
		},
	},
	"climber": {
		"reach": {
			Mechanism: "climber", Period: 0.02, Duration: 8.0,
			Controller: ControllerConfig{
				Kp: 800, Kd: 150, Tolerance: 0.02,
				MaxVelocity: 0.35, MaxAcceleration: 1.0, OutputLimit: 400,
			},
			Goal:  GoalConfig{Position: 0.6},
			Plant: PlantConfig{Mass: 25.0, Damping: 40.0, ForceLimit: 400},
		},
	},
}

func GetPreset(mechanism, preset string) *Config {
	mechPresets, ok := Presets[mechanism]
	if !ok {
		return nil
	}
	cfg, ok := mechPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListMechanisms() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListPresets(mechanism string) []string {
	mechPresets, ok := Presets[mechanism]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(mechPresets))
	for name := range mechPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
