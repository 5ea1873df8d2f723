package dynamo

import "github.com/san-kum/tearline/internal/geom"

// InvalidIndex marks a failed actor-to-solver index resolution.
// Callers treat it as "not ready this frame", never as fatal.
const InvalidIndex = -1

// FollowerState is the lifecycle state of a follower riding a line.
type FollowerState int

const (
	// RidingIdle follows the line passively, kinematic.
	RidingIdle FollowerState = iota
	// HeldAttached is pointer-controlled while still pinned to the line.
	HeldAttached
	// HeldDetached is pointer-controlled with the pin removed; physics
	// stays suspended until release.
	HeldDetached
	// Free is full dynamics: gravity and collisions active. Terminal for
	// this subsystem.
	Free
)

func (s FollowerState) String() string {
	switch s {
	case RidingIdle:
		return "riding"
	case HeldAttached:
		return "held-attached"
	case HeldDetached:
		return "held-detached"
	case Free:
		return "free"
	default:
		return "unknown"
	}
}

// PinKind selects how an attachment pin transmits force.
type PinKind int

const (
	// StaticPin is an immovable anchor.
	StaticPin PinKind = iota
	// DynamicPin transmits force both ways.
	DynamicPin
)

// StretchReference selects which distance feeds the break test.
type StretchReference int

const (
	// StretchAnchor measures hand point against the anchor captured at
	// grab time.
	StretchAnchor StretchReference = iota
	// StretchParticle measures the follower against the live bound
	// particle position.
	StretchParticle
)

// Params is the per-follower tuning table supplied by the spawner.
type Params struct {
	ArmThreshold  float64
	BreakDistance float64
	BreakDwell    float64
	Compliance    float64
	HoldStiffness float64
	SearchRadius  float64
	BreakImpulse  float64
	RecoilImpulse float64
	StretchRef    StretchReference
}

// DefaultParams returns a leaf-like tuning: arms on close approach,
// fractures after a short continuous overstretch.
func DefaultParams() Params {
	return Params{
		ArmThreshold:  0.03,
		BreakDistance: 0.12,
		BreakDwell:    0.05,
		Compliance:    0.0,
		HoldStiffness: 40.0,
		SearchRadius:  0.5,
		BreakImpulse:  0.8,
		RecoilImpulse: 0.2,
		StretchRef:    StretchAnchor,
	}
}

// CutEvent is broadcast once per torn element.
type CutEvent struct {
	LineID         int
	TornActorIndex int
}

// FractureEvent is emitted exactly once when a follower tears away.
type FractureEvent struct {
	Position geom.Vec3
	Normal   geom.Vec3
}

// ImpactEvent is a passthrough of solver contact data for drop effects.
type ImpactEvent struct {
	Position geom.Vec3
	Normal   geom.Vec3
}

// FractureSink receives fracture events for FX playback.
type FractureSink interface {
	OnFracture(ev FractureEvent)
}

// ImpactSink receives collision impact events.
type ImpactSink interface {
	OnImpact(ev ImpactEvent)
}

// CutHandler consumes cut broadcasts. Handlers must be independent of
// delivery order across subscribers.
type CutHandler interface {
	OnCut(ev CutEvent)
}
