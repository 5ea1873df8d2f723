// Package pin implements spring-constrained attachments binding a
// follower to one or more line particles.
package pin

import (
	"sort"

	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

// Pin pulls its bound particles toward a target point. Compliance 0 is a
// rigid constraint; larger values soften it. A pin with a positive break
// threshold disables itself once the correction distance exceeds it.
//
// Pins register with the solver at the next step boundary, and Disable is
// likewise deferred: flipping the enabled flag mid-step is undefined.
type Pin struct {
	src            solver.Source
	mut            solver.Mutator
	line           *solver.Line
	actors         []int // sorted bound actor indices
	kind           dynamo.PinKind
	compliance     float64
	breakThreshold float64
	target         geom.Vec3
	targetSet      bool
	enabled        bool
}

// New creates and registers a pin. Nil collaborators and an empty index
// set fail fast; nothing here is recoverable at runtime.
func New(src solver.Source, mut solver.Mutator, line *solver.Line, actorIndices []int, kind dynamo.PinKind, compliance, breakThreshold float64) (*Pin, error) {
	if src == nil || mut == nil {
		return nil, &dynamo.SetupError{Component: "pin", Wrapped: dynamo.ErrNilSolver}
	}
	if line == nil {
		return nil, &dynamo.SetupError{Component: "pin", Wrapped: dynamo.ErrNilLine}
	}
	if len(actorIndices) == 0 {
		return nil, &dynamo.SetupError{Component: "pin", Wrapped: dynamo.ErrNoBoundIndices}
	}
	if compliance < 0 || breakThreshold < 0 {
		return nil, &dynamo.SetupError{Component: "pin", Wrapped: dynamo.ErrParameterBounds}
	}
	reg, ok := mut.(solver.Registrar)
	if !ok {
		return nil, &dynamo.SetupError{Component: "pin", Wrapped: dynamo.ErrNoRegistrar}
	}

	actors := make([]int, len(actorIndices))
	copy(actors, actorIndices)
	sort.Ints(actors)

	p := &Pin{
		src:            src,
		mut:            mut,
		line:           line,
		actors:         actors,
		kind:           kind,
		compliance:     compliance,
		breakThreshold: breakThreshold,
		enabled:        true,
	}
	reg.AddConstraint(p)
	// A pin starts slack: until the first SetTarget it holds the bound
	// particle where it already is.
	mut.Defer(func() {
		if p.targetSet {
			return
		}
		if pos, ok := src.ParticlePosition(line, p.actors[0]); ok {
			p.target = pos
		}
	})
	return p, nil
}

func (p *Pin) Enabled() bool { return p.enabled }

// SetTarget moves the pull point. Safe any time; targets are plain state,
// not constraint topology.
func (p *Pin) SetTarget(point geom.Vec3) {
	p.target = point
	p.targetSet = true
}

func (p *Pin) Target() geom.Vec3 { return p.target }

// SetCompliance changes the spring softness. Plain state like the
// target; negative values clamp to rigid.
func (p *Pin) SetCompliance(c float64) {
	if c < 0 {
		c = 0
	}
	p.compliance = c
}

func (p *Pin) Compliance() float64 { return p.compliance }

// Disable turns the pin off at the next step boundary.
func (p *Pin) Disable() {
	p.mut.Defer(func() { p.enabled = false })
}

// RemoveActor drops one bound index from a group pin, leaving the rest
// intact. An emptied group disables the whole pin.
func (p *Pin) RemoveActor(actorIndex int) {
	p.mut.Defer(func() {
		kept := p.actors[:0]
		for _, a := range p.actors {
			if a != actorIndex {
				kept = append(kept, a)
			}
		}
		p.actors = kept
		if len(p.actors) == 0 {
			p.enabled = false
		}
	})
}

// Rebind points the pin at a different line piece and index set, applied
// at the next step boundary. Used after a tear re-homes a follower.
func (p *Pin) Rebind(line *solver.Line, actorIndices []int) {
	actors := make([]int, len(actorIndices))
	copy(actors, actorIndices)
	sort.Ints(actors)
	p.mut.Defer(func() {
		p.line = line
		p.actors = actors
	})
}

// BoundActors returns the sorted bound index set.
func (p *Pin) BoundActors() []int { return p.actors }

// Apply implements solver.Constraint. Static pins place the particle at
// the target; dynamic pins apply a compliance-weighted correction.
func (p *Pin) Apply(ps solver.ParticleStore, dt float64) {
	broke := false
	for _, actor := range p.actors {
		slot := p.src.Resolve(p.line, actor)
		if slot == dynamo.InvalidIndex {
			continue // not ready this tick
		}
		pos := ps.Position(slot)
		delta := p.target.Sub(pos)

		if p.breakThreshold > 0 && delta.Length() >= p.breakThreshold {
			broke = true
			continue
		}

		switch p.kind {
		case dynamo.StaticPin:
			ps.SetPosition(slot, p.target)
		case dynamo.DynamicPin:
			w := ps.InvMass(slot)
			if w == 0 {
				continue
			}
			alpha := p.compliance / (dt * dt)
			ps.SetPosition(slot, pos.Add(delta.Scale(w/(w+alpha))))
		}
	}
	if broke {
		p.Disable()
	}
}
