package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultParticles = 12
	DefaultSpacing   = 0.08
	DefaultGravity   = -9.81
	DefaultStiffness = 1.0
	DefaultDamping   = 0.99
)

type Config struct {
	Dt       float64        `yaml:"dt"`
	Duration float64        `yaml:"duration"`
	Stem     StemConfig     `yaml:"stem"`
	Follower FollowerConfig `yaml:"follower"`
}

type StemConfig struct {
	Particles   int     `yaml:"particles"`
	Spacing     float64 `yaml:"spacing"`
	RootX       float64 `yaml:"root_x"`
	RootY       float64 `yaml:"root_y"`
	Stiffness   float64 `yaml:"stiffness"`
	Damping     float64 `yaml:"damping"`
	RelaxPasses int     `yaml:"relax_passes"`
	Gravity     float64 `yaml:"gravity"`
	Ground      float64 `yaml:"ground"`
}

type FollowerConfig struct {
	Every         int     `yaml:"every"` // bind a follower every N actors
	ArmThreshold  float64 `yaml:"arm_threshold"`
	BreakDistance float64 `yaml:"break_distance"`
	BreakDwell    float64 `yaml:"break_dwell"`
	Compliance    float64 `yaml:"compliance"`
	HoldStiffness float64 `yaml:"hold_stiffness"`
	SearchRadius  float64 `yaml:"search_radius"`
	BreakImpulse  float64 `yaml:"break_impulse"`
	RecoilImpulse float64 `yaml:"recoil_impulse"`
	StretchRef    string  `yaml:"stretch_reference"` // anchor or particle
}

func DefaultConfig() *Config {
	p := dynamo.DefaultParams()
	return &Config{
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Stem: StemConfig{
			Particles:   DefaultParticles,
			Spacing:     DefaultSpacing,
			RootY:       0.9,
			Stiffness:   DefaultStiffness,
			Damping:     DefaultDamping,
			RelaxPasses: 6,
			Gravity:     DefaultGravity,
			Ground:      0,
		},
		Follower: FollowerConfig{
			Every:         3,
			ArmThreshold:  p.ArmThreshold,
			BreakDistance: p.BreakDistance,
			BreakDwell:    p.BreakDwell,
			Compliance:    p.Compliance,
			HoldStiffness: p.HoldStiffness,
			SearchRadius:  p.SearchRadius,
			BreakImpulse:  p.BreakImpulse,
			RecoilImpulse: p.RecoilImpulse,
			StretchRef:    "anchor",
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

// Tuning converts the stem section to solver knobs.
func (c *Config) Tuning() solver.Tuning {
	t := solver.DefaultTuning()
	t.Gravity = geom.Vec3{Y: c.Stem.Gravity}
	t.Damping = c.Stem.Damping
	t.StretchStiffness = c.Stem.Stiffness
	t.Ground = c.Stem.Ground
	if c.Stem.RelaxPasses > 0 {
		t.RelaxPasses = c.Stem.RelaxPasses
	}
	return t
}

// Params converts the follower section to the engine tuning table.
// Unknown stretch references fall back to the anchor convention.
func (fc FollowerConfig) Params() dynamo.Params {
	ref := dynamo.StretchAnchor
	if fc.StretchRef == "particle" {
		ref = dynamo.StretchParticle
	}
	return dynamo.Params{
		ArmThreshold:  fc.ArmThreshold,
		BreakDistance: fc.BreakDistance,
		BreakDwell:    fc.BreakDwell,
		Compliance:    fc.Compliance,
		HoldStiffness: fc.HoldStiffness,
		SearchRadius:  fc.SearchRadius,
		BreakImpulse:  fc.BreakImpulse,
		RecoilImpulse: fc.RecoilImpulse,
		StretchRef:    ref,
	}
}
