package solver

import (
	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
)

// Source is the read side of the solver consumed by the engine.
type Source interface {
	LineReady(l *Line) bool
	Lines() []*Line
	Resolve(l *Line, actorIndex int) int
	ParticlePosition(l *Line, actorIndex int) (geom.Vec3, bool)
}

// Mutator is the write side. Topology and constraint-set changes must go
// through Defer, TearElement, or RebuildConstraints so they land on the
// step boundary.
type Mutator interface {
	Defer(op func())
	TearElement(l *Line, el Element)
	RebuildConstraints(l *Line)
	ApplyImpulse(l *Line, actorIndex int, impulse geom.Vec3)
}

// Registrar accepts constraints into the physics phase. Anything that
// creates pins needs its Mutator to also be a Registrar.
type Registrar interface {
	AddConstraint(c Constraint)
}

// ParticleStore gives constraints slot-level particle access during a step.
type ParticleStore interface {
	Position(slot int) geom.Vec3
	SetPosition(slot int, p geom.Vec3)
	InvMass(slot int) float64
}

// Constraint is applied once per step between integration and relaxation.
type Constraint interface {
	Enabled() bool
	Apply(ps ParticleStore, dt float64)
}

// Tuning collects the solver's numeric knobs.
type Tuning struct {
	Gravity          geom.Vec3
	Damping          float64
	StretchStiffness float64
	RelaxPasses      int
	Ground           float64
	ImpactSpeed      float64 // minimum approach speed that reports an impact
}

func DefaultTuning() Tuning {
	return Tuning{
		Gravity:          geom.Vec3{Y: -9.81},
		Damping:          0.99,
		StretchStiffness: 1.0,
		RelaxPasses:      6,
		Ground:           0.0,
		ImpactSpeed:      0.5,
	}
}

type particle struct {
	pos     geom.Vec3
	prev    geom.Vec3
	invMass float64
}

// Solver integrates particles with position Verlet and enforces element
// distance constraints by relaxation. Single-threaded by construction.
type Solver struct {
	tuning      Tuning
	particles   []particle
	lines       []*Line
	constraints []Constraint
	deferred    []func()
	impactSink  dynamo.ImpactSink
	nextLineID  int

	rebuilds int // rebuild calls, observable for tests
}

// New creates a solver. sink may be nil; the capability is resolved here
// once, never probed at runtime.
func New(tuning Tuning, sink dynamo.ImpactSink) *Solver {
	if tuning.RelaxPasses <= 0 {
		tuning.RelaxPasses = 1
	}
	return &Solver{tuning: tuning, impactSink: sink}
}

// SpawnLine creates a stem of count particles from root along dir, with
// the root particle anchored (inverse mass zero). The line reports not
// ready until the next step boundary.
func (s *Solver) SpawnLine(root, dir geom.Vec3, count int, spacing float64) *Line {
	if count < 2 {
		count = 2
	}
	step := dir.Normalized().Scale(spacing)

	l := &Line{id: s.nextLineID}
	s.nextLineID++

	pos := root
	for i := 0; i < count; i++ {
		slot := len(s.particles)
		inv := 1.0
		if i == 0 {
			inv = 0.0 // anchored root
		}
		s.particles = append(s.particles, particle{pos: pos, prev: pos, invMass: inv})
		l.slots = append(l.slots, slot)
		pos = pos.Add(step)
	}
	for i := 0; i < count-1; i++ {
		l.elements = append(l.elements, Element{A: i, B: i + 1})
		l.rest = append(l.rest, spacing)
	}

	s.lines = append(s.lines, l)
	s.Defer(func() { l.ready = true })
	return l
}

// Tuning returns the solver's active knobs.
func (s *Solver) Tuning() Tuning { return s.tuning }

func (s *Solver) LineReady(l *Line) bool {
	return l != nil && l.ready
}

func (s *Solver) Lines() []*Line { return s.lines }

// Resolve maps an actor index to a live particle slot. Stale or not yet
// bound references resolve to dynamo.InvalidIndex; callers skip the tick.
func (s *Solver) Resolve(l *Line, actorIndex int) int {
	if l == nil || !l.ready {
		return dynamo.InvalidIndex
	}
	if actorIndex < 0 || actorIndex >= len(l.slots) {
		return dynamo.InvalidIndex
	}
	return l.slots[actorIndex]
}

func (s *Solver) ParticlePosition(l *Line, actorIndex int) (geom.Vec3, bool) {
	slot := s.Resolve(l, actorIndex)
	if slot == dynamo.InvalidIndex {
		return geom.Vec3{}, false
	}
	return s.particles[slot].pos, true
}

// InverseMass reports the actor's inverse mass, 0 for anchors. The second
// return mirrors ParticlePosition's not-ready handling.
func (s *Solver) InverseMass(l *Line, actorIndex int) (float64, bool) {
	slot := s.Resolve(l, actorIndex)
	if slot == dynamo.InvalidIndex {
		return 0, false
	}
	return s.particles[slot].invMass, true
}

// Defer queues op for the start of the next Step.
func (s *Solver) Defer(op func()) {
	s.deferred = append(s.deferred, op)
}

// AddConstraint registers c at the next step boundary.
func (s *Solver) AddConstraint(c Constraint) {
	s.Defer(func() { s.constraints = append(s.constraints, c) })
}

// TearElement removes el from l and splits the piece in two. The far
// side becomes a new Line with actors renumbered from zero; stale actor
// indices on l simply stop resolving. Unknown elements are ignored.
func (s *Solver) TearElement(l *Line, el Element) {
	idx := -1
	for i, e := range l.elements {
		if e == el {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	far := &Line{id: s.nextLineID, ready: l.ready}
	s.nextLineID++
	far.slots = append(far.slots, l.slots[el.B:]...)
	for i, e := range l.elements {
		if e.A >= el.B {
			far.elements = append(far.elements, Element{A: e.A - el.B, B: e.B - el.B})
			far.rest = append(far.rest, l.rest[i])
		}
	}

	keepEls := l.elements[:0]
	keepRest := l.rest[:0]
	for i, e := range l.elements {
		if e.B <= el.A {
			keepEls = append(keepEls, e)
			keepRest = append(keepRest, l.rest[i])
		}
	}
	l.elements = keepEls
	l.rest = keepRest
	l.slots = l.slots[:el.A+1]

	s.lines = append(s.lines, far)
}

// RebuildConstraints re-derives rest lengths for any element whose rest
// entry went missing in a tear. Called at most once per tear batch.
func (s *Solver) RebuildConstraints(l *Line) {
	s.rebuilds++
	if len(l.rest) == len(l.elements) {
		return
	}
	rest := make([]float64, len(l.elements))
	for i, e := range l.elements {
		a := s.particles[l.slots[e.A]].pos
		b := s.particles[l.slots[e.B]].pos
		rest[i] = geom.Dist(a, b)
	}
	l.rest = rest
}

// Rebuilds reports how many times RebuildConstraints ran.
func (s *Solver) Rebuilds() int { return s.rebuilds }

// ApplyImpulse kicks the particle's implied velocity. Not a topology
// mutation, so it applies immediately.
func (s *Solver) ApplyImpulse(l *Line, actorIndex int, impulse geom.Vec3) {
	slot := s.Resolve(l, actorIndex)
	if slot == dynamo.InvalidIndex {
		return
	}
	p := &s.particles[slot]
	p.prev = p.prev.Sub(impulse.Scale(p.invMass))
}

// ParticleStore implementation, used by pin constraints during Step.

func (s *Solver) Position(slot int) geom.Vec3 { return s.particles[slot].pos }

func (s *Solver) SetPosition(slot int, p geom.Vec3) { s.particles[slot].pos = p }

func (s *Solver) InvMass(slot int) float64 { return s.particles[slot].invMass }

// Step advances the solver one tick: flush deferred mutations, integrate,
// apply pin constraints, relax element distances, resolve ground contact.
func (s *Solver) Step(dt float64) {
	s.flushDeferred()

	for i := range s.particles {
		p := &s.particles[i]
		if p.invMass == 0 {
			p.prev = p.pos
			continue
		}
		vel := p.pos.Sub(p.prev).Scale(s.tuning.Damping)
		p.prev = p.pos
		p.pos = p.pos.Add(vel).Add(s.tuning.Gravity.Scale(dt * dt))
	}

	live := s.constraints[:0]
	for _, c := range s.constraints {
		if !c.Enabled() {
			continue
		}
		c.Apply(s, dt)
		live = append(live, c)
	}
	s.constraints = live

	for pass := 0; pass < s.tuning.RelaxPasses; pass++ {
		for _, l := range s.lines {
			s.relaxLine(l)
		}
	}

	s.resolveGround(dt)
}

func (s *Solver) flushDeferred() {
	ops := s.deferred
	s.deferred = nil
	for _, op := range ops {
		op()
	}
}

func (s *Solver) relaxLine(l *Line) {
	for i, e := range l.elements {
		pa := &s.particles[l.slots[e.A]]
		pb := &s.particles[l.slots[e.B]]
		wSum := pa.invMass + pb.invMass
		if wSum == 0 {
			continue
		}
		delta := pb.pos.Sub(pa.pos)
		dist := delta.Length()
		if dist < 1e-12 {
			continue
		}
		diff := (dist - l.rest[i]) / dist * s.tuning.StretchStiffness
		corr := delta.Scale(diff / wSum)
		pa.pos = pa.pos.Add(corr.Scale(pa.invMass))
		pb.pos = pb.pos.Sub(corr.Scale(pb.invMass))
	}
}

func (s *Solver) resolveGround(dt float64) {
	for i := range s.particles {
		p := &s.particles[i]
		if p.invMass == 0 || p.pos.Y >= s.tuning.Ground {
			continue
		}
		approach := (p.prev.Y - p.pos.Y) / dt
		p.pos.Y = s.tuning.Ground
		if s.impactSink != nil && approach >= s.tuning.ImpactSpeed {
			s.impactSink.OnImpact(dynamo.ImpactEvent{
				Position: p.pos,
				Normal:   geom.Vec3{Y: 1},
			})
		}
	}
}
