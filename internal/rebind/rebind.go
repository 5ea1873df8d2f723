// Package rebind re-homes followers whose bound segment disappeared in a
// tear.
//
// The search is a linear scan over every element of every line piece
// sharing the solver: O(total elements) per orphaned follower per tick.
// Fine for tens of elements; the first place to add a spatial index if
// scenes grow.
package rebind

import (
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

// Binding is a re-resolved (line, actorIndex) pair. ActorIndex is the
// start index of the winning element; Point is the closest point found.
type Binding struct {
	Line       *solver.Line
	ActorIndex int
	Point      geom.Vec3
}

// Nearest scans all line pieces for the element closest to ref within
// radius. Ties are broken by line enumeration order, then ascending
// element index, so the result is deterministic for a fixed scene.
// Returns false when nothing lies within radius; that is not an error,
// callers simply retry on a later tick or give up.
func Nearest(src solver.Source, ref geom.Vec3, radius float64) (Binding, bool) {
	best := Binding{}
	bestDist := 0.0
	found := false

	for _, l := range src.Lines() {
		if !src.LineReady(l) {
			continue
		}
		for _, e := range l.Elements() {
			a, okA := src.ParticlePosition(l, e.A)
			b, okB := src.ParticlePosition(l, e.B)
			if !okA || !okB {
				continue
			}
			p := geom.ClosestPointOnSegment(a, b, ref)
			d := geom.Dist(p, ref)
			if d > radius {
				continue
			}
			if !found || d < bestDist {
				best = Binding{Line: l, ActorIndex: e.A, Point: p}
				bestDist = d
				found = true
			}
		}
	}
	return best, found
}
