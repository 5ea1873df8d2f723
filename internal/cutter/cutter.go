// Package cutter turns a user swipe into exactly one line tear.
//
// Every element of every line piece is projected to screen space and
// tested against the swipe segment; the winning element is the one whose
// swipe parameter lies closest to the swipe's end, ties going to the most
// recently swiped-over element. The world cut point is interpolated from
// the same positions used for the projection, so what was visually cut is
// what tears.
package cutter

import (
	"github.com/san-kum/tearline/internal/broker"
	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

// Projector maps world points onto the screen.
type Projector interface {
	Project(p geom.Vec3) geom.Vec2
}

// OverlapNotifier receives a direct spatial notification around the cut
// point, lower-latency than waiting on the broadcast. Optional.
type OverlapNotifier interface {
	NotifyOverlap(center geom.Vec3, radius float64)
}

// Ortho is a fixed orthographic projector for the debug view and tests.
type Ortho struct {
	Scale  geom.Vec2
	Offset geom.Vec2
}

func (o Ortho) Project(p geom.Vec3) geom.Vec2 {
	return geom.Vec2{
		X: p.X*o.Scale.X + o.Offset.X,
		Y: o.Offset.Y - p.Y*o.Scale.Y,
	}
}

// Cut describes a committed sweep-cut.
type Cut struct {
	Line       *solver.Line
	Element    solver.Element
	WorldPoint geom.Vec3
	R, S       float64
}

type Cutter struct {
	src    solver.Source
	mut    solver.Mutator
	events *broker.Broker
	proj   Projector

	overlap       OverlapNotifier
	overlapRadius float64
}

func New(src solver.Source, mut solver.Mutator, events *broker.Broker, proj Projector) (*Cutter, error) {
	if src == nil || mut == nil {
		return nil, &dynamo.SetupError{Component: "cutter", Wrapped: dynamo.ErrNilSolver}
	}
	return &Cutter{src: src, mut: mut, events: events, proj: proj}, nil
}

// SetOverlapNotifier enables the direct nearby notification.
func (c *Cutter) SetOverlapNotifier(n OverlapNotifier, radius float64) {
	c.overlap = n
	c.overlapRadius = radius
}

// Sweep tests the swipe s0->s1 against every element, tears the winner,
// and publishes one CutEvent. The tear and the single constraint rebuild
// are queued for the next step boundary; the returned Cut is the decision
// made from this tick's positions.
func (c *Cutter) Sweep(s0, s1 geom.Vec2) (Cut, bool) {
	best := Cut{}
	found := false

	for _, l := range c.src.Lines() {
		if !c.src.LineReady(l) {
			continue
		}
		for _, e := range l.Elements() {
			pa, okA := c.src.ParticlePosition(l, e.A)
			pb, okB := c.src.ParticlePosition(l, e.B)
			if !okA || !okB {
				continue
			}
			a2 := c.proj.Project(pa)
			b2 := c.proj.Project(pb)
			r, s, ok := geom.SegmentIntersect(a2, b2, s0, s1)
			if !ok {
				continue
			}
			if !found || s >= best.S {
				best = Cut{
					Line:       l,
					Element:    e,
					WorldPoint: geom.Lerp(pa, pb, r),
					R:          r,
					S:          s,
				}
				found = true
			}
		}
	}
	if !found {
		return Cut{}, false
	}

	line, el := best.Line, best.Element
	c.mut.Defer(func() {
		c.mut.TearElement(line, el)
		c.mut.RebuildConstraints(line)
	})

	if c.events != nil {
		c.events.PublishCut(dynamo.CutEvent{
			LineID:         line.ID(),
			TornActorIndex: el.A,
		})
	}
	if c.overlap != nil {
		c.overlap.NotifyOverlap(best.WorldPoint, c.overlapRadius)
	}
	return best, true
}
