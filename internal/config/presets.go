package config

import "sort"

// Follower presets. The source behavior differences between leaf kinds
// collapse into this table: same machine, different thresholds.
var Presets = map[string]FollowerConfig{
	// Ordinary leaf: short dwell, moderate pull.
	"leaf": {
		Every: 3, ArmThreshold: 0.03, BreakDistance: 0.12, BreakDwell: 0.05,
		Compliance: 0.0, HoldStiffness: 40.0, SearchRadius: 0.5,
		BreakImpulse: 0.8, RecoilImpulse: 0.2, StretchRef: "anchor",
	},
	// Young bud: pops instantly once overstretched, barely any recoil.
	"bud": {
		Every: 2, ArmThreshold: 0.02, BreakDistance: 0.08, BreakDwell: 0.0,
		Compliance: 0.001, HoldStiffness: 60.0, SearchRadius: 0.3,
		BreakImpulse: 0.4, RecoilImpulse: 0.05, StretchRef: "anchor",
	},
	// Heavy fruit: long dwell, measured against the live particle.
	"heavy": {
		Every: 4, ArmThreshold: 0.05, BreakDistance: 0.18, BreakDwell: 0.25,
		Compliance: 0.002, HoldStiffness: 25.0, SearchRadius: 0.6,
		BreakImpulse: 1.5, RecoilImpulse: 0.4, StretchRef: "particle",
	},
}

// GetPreset returns the named follower preset, nil if unknown.
func GetPreset(name string) *FollowerConfig {
	fc, ok := Presets[name]
	if !ok {
		return nil
	}
	return &fc
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
