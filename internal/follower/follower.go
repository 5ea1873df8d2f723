// Package follower owns the per-leaf state machine of the tear engine:
// riding the line, held by the pointer, and free under dynamics, with the
// fracture hand-off between them.
package follower

import (
	"log/slog"

	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/pin"
	"github.com/san-kum/tearline/internal/rebind"
	"github.com/san-kum/tearline/internal/solver"
)

// Sinks are the capability surfaces a follower reports through, resolved
// once at construction. Either may be nil.
type Sinks struct {
	Fracture dynamo.FractureSink
	Impact   dynamo.ImpactSink
}

// Follower is one rigid prop riding a deformable line.
//
// While riding or held it is kinematic and owns exactly one enabled pin;
// once free it integrates under gravity. The kinematic flag and the
// pin's enabled flag flip together at the solver's step boundary.
type Follower struct {
	src    solver.Source
	mut    solver.Mutator
	line   *solver.Line
	actor  int
	params dynamo.Params

	state     dynamo.FollowerState
	pin       *pin.Pin
	det       *Detector
	grabbed   bool
	fractured bool

	anchorAtGrab geom.Vec3
	lastHand     geom.Vec3

	pos       geom.Vec3
	vel       geom.Vec3
	kinematic bool

	gravity     geom.Vec3
	ground      float64
	impactSpeed float64

	sinks       Sinks
	log         *slog.Logger
	lastStretch float64
	disabled    bool
	warned      bool
}

// New binds a follower to (line, actorIndex) at spawnPos. Nil
// collaborators fail fast; everything after construction is handled
// locally per tick.
func New(src solver.Source, mut solver.Mutator, line *solver.Line, actorIndex int, spawnPos geom.Vec3, params dynamo.Params, sinks Sinks, log *slog.Logger) (*Follower, error) {
	if src == nil || mut == nil {
		return nil, &dynamo.SetupError{Component: "follower", Wrapped: dynamo.ErrNilSolver}
	}
	if line == nil {
		return nil, &dynamo.SetupError{Component: "follower", Wrapped: dynamo.ErrNilLine}
	}
	if log == nil {
		log = slog.Default()
	}

	p, err := pin.New(src, mut, line, []int{actorIndex}, dynamo.DynamicPin, params.Compliance, 0)
	if err != nil {
		return nil, err
	}

	return &Follower{
		src:         src,
		mut:         mut,
		line:        line,
		actor:       actorIndex,
		params:      params,
		state:       dynamo.RidingIdle,
		pin:         p,
		det:         NewDetector(params.ArmThreshold, params.BreakDistance, params.BreakDwell),
		pos:         spawnPos,
		kinematic:   true,
		gravity:     geom.Vec3{Y: -9.81},
		ground:      0,
		impactSpeed: 0.5,
		sinks:       sinks,
		log:         log,
	}, nil
}

// SetEnvironment overrides gravity and ground for the free-fall phase.
func (f *Follower) SetEnvironment(gravity geom.Vec3, ground, impactSpeed float64) {
	f.gravity = gravity
	f.ground = ground
	f.impactSpeed = impactSpeed
}

func (f *Follower) State() dynamo.FollowerState { return f.state }
func (f *Follower) Position() geom.Vec3         { return f.pos }
func (f *Follower) Velocity() geom.Vec3         { return f.vel }
func (f *Follower) BoundActor() int             { return f.actor }
func (f *Follower) Line() *solver.Line          { return f.line }
func (f *Follower) Pin() *pin.Pin               { return f.pin }
func (f *Follower) Armed() bool                 { return f.det.Armed() }
func (f *Follower) Dwell() float64              { return f.det.Dwell() }
func (f *Follower) Kinematic() bool             { return f.kinematic }
func (f *Follower) Disabled() bool              { return f.disabled }

// Stretch is the last measured pull distance while held, zero otherwise.
func (f *Follower) Stretch() float64 { return f.lastStretch }

// Disable permanently excludes the follower from processing. Caller
// despawn policy, e.g. after an abandoned rebind.
func (f *Follower) Disable() { f.disabled = true }

// Grab captures the follower from riding. Returns false when the binding
// is not resolvable this tick; the gesture is simply dropped.
func (f *Follower) Grab(hand geom.Vec3) bool {
	if f.disabled || f.state != dynamo.RidingIdle {
		return false
	}
	anchor, ok := f.src.ParticlePosition(f.line, f.actor)
	if !ok {
		return false // not ready this tick
	}
	f.anchorAtGrab = anchor
	f.lastHand = hand
	f.grabbed = true
	f.state = dynamo.HeldAttached
	// While held the pin pulls with the hold spring, not the riding
	// compliance.
	f.pin.SetCompliance(holdCompliance(f.params.HoldStiffness))
	f.det.Arm()
	return true
}

// holdCompliance converts a spring constant to pin compliance; a
// non-positive stiffness means rigid.
func holdCompliance(k float64) float64 {
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// Drag updates the pointer target. No-op unless held.
func (f *Follower) Drag(hand geom.Vec3) {
	if f.grabbed {
		f.lastHand = hand
	}
}

// Release ends the pointer interaction: back to riding when the pin
// survived, free fall when it fractured.
func (f *Follower) Release() {
	if !f.grabbed {
		return
	}
	f.grabbed = false
	switch f.state {
	case dynamo.HeldAttached:
		f.state = dynamo.RidingIdle
		f.pin.SetCompliance(f.params.Compliance)
		f.det.dwell = 0 // slack resumes below the break distance
	case dynamo.HeldDetached:
		f.handOffToDynamics()
	}
}

// Update runs the follower's presentation-phase work for one tick.
// Must run strictly after the solver's physics phase.
func (f *Follower) Update(dt float64) {
	if f.disabled {
		return
	}
	if f.line == nil || f.pin == nil {
		f.warnOnce()
		return
	}

	switch f.state {
	case dynamo.RidingIdle:
		f.updateRiding()
	case dynamo.HeldAttached:
		f.updateHeldAttached(dt)
	case dynamo.HeldDetached:
		f.pos = f.lastHand // physics suspended until release
	case dynamo.Free:
		f.updateFree(dt)
	}
}

func (f *Follower) updateRiding() {
	p, ok := f.src.ParticlePosition(f.line, f.actor)
	if !ok {
		// Stale binding after a tear: scan all pieces for a new home.
		// Staying unbound is fine; we retry next tick.
		if b, found := rebind.Nearest(f.src, f.pos, f.params.SearchRadius); found {
			f.line = b.Line
			f.actor = b.ActorIndex
			f.pin.Rebind(b.Line, []int{b.ActorIndex})
		}
		return
	}
	f.det.ObserveProximity(geom.Dist(f.pos, p))
	f.lastStretch = 0
	f.pos = p
	f.pin.SetTarget(p) // slack: hold the particle where it is
}

func (f *Follower) updateHeldAttached(dt float64) {
	f.pos = f.lastHand
	f.pin.SetTarget(f.lastHand)

	var stretch float64
	switch f.params.StretchRef {
	case dynamo.StretchAnchor:
		stretch = geom.Dist(f.lastHand, f.anchorAtGrab)
	case dynamo.StretchParticle:
		p, ok := f.src.ParticlePosition(f.line, f.actor)
		if !ok {
			return // not ready this tick
		}
		stretch = geom.Dist(f.pos, p)
	}
	f.lastStretch = stretch

	if f.det.Observe(stretch, dt) {
		f.Fracture()
	}
}

func (f *Follower) updateFree(dt float64) {
	if f.kinematic {
		return // dynamics switch on at the next step boundary
	}
	f.vel = f.vel.Add(f.gravity.Scale(dt))
	f.pos = f.pos.Add(f.vel.Scale(dt))
	if f.pos.Y < f.ground {
		approach := -f.vel.Y
		f.pos.Y = f.ground
		f.vel = geom.Vec3{}
		if f.sinks.Impact != nil && approach >= f.impactSpeed {
			f.sinks.Impact.OnImpact(dynamo.ImpactEvent{
				Position: f.pos,
				Normal:   geom.Vec3{Y: 1},
			})
		}
	}
}

// Fracture tears the follower off its line. Idempotent: a second call is
// a no-op with no duplicate impulse or event.
func (f *Follower) Fracture() {
	if f.fractured || f.disabled || f.state == dynamo.Free || f.state == dynamo.HeldDetached {
		return
	}
	f.fractured = true

	refPoint, ok := f.src.ParticlePosition(f.line, f.actor)
	if !ok {
		refPoint = f.anchorAtGrab
	}
	normal := f.pos.Sub(refPoint).Normalized()
	if normal == (geom.Vec3{}) {
		normal = geom.Vec3{Y: 1}
	}

	f.vel = f.vel.Add(normal.Scale(f.params.BreakImpulse))
	if f.params.RecoilImpulse > 0 {
		f.mut.ApplyImpulse(f.line, f.actor, normal.Scale(-f.params.RecoilImpulse))
	}

	// Pin disable and the kinematic flip land on the same step boundary.
	f.pin.Disable()
	f.mut.Defer(func() {
		if f.state == dynamo.Free {
			f.kinematic = false
		}
	})

	if f.sinks.Fracture != nil {
		f.sinks.Fracture.OnFracture(dynamo.FractureEvent{Position: f.pos, Normal: normal})
	}

	if f.grabbed {
		f.state = dynamo.HeldDetached
	} else {
		f.state = dynamo.Free
	}
}

// OnCut implements dynamo.CutHandler: a tear at or below the bound index
// is upstream toward the root, so everything past it drops.
func (f *Follower) OnCut(ev dynamo.CutEvent) {
	if f.disabled {
		return
	}
	// Only followers still bound to the line care; a detached leaf in the
	// hand stays in the hand.
	if f.state != dynamo.RidingIdle && f.state != dynamo.HeldAttached {
		return
	}
	if f.line == nil || ev.LineID != f.line.ID() {
		return
	}
	if ev.TornActorIndex > f.actor {
		return
	}
	f.drop()
}

// drop releases the follower to free fall without a fracture event: the
// line broke, not the follower's own attachment.
func (f *Follower) drop() {
	f.grabbed = false
	f.handOffToDynamics()
}

func (f *Follower) handOffToDynamics() {
	f.state = dynamo.Free
	f.pin.Disable()
	f.mut.Defer(func() { f.kinematic = false })
}

func (f *Follower) warnOnce() {
	if f.warned {
		return
	}
	f.warned = true
	f.disabled = true
	f.log.Warn("follower missing configuration, disabling",
		"state", f.state.String(),
		"actor", f.actor)
}
