package rebind

import (
	"testing"

	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

func newScene(t *testing.T) *solver.Solver {
	t.Helper()
	tuning := solver.DefaultTuning()
	tuning.Gravity = geom.Vec3{}
	tuning.Ground = -100
	return solver.New(tuning, nil)
}

func TestNearestPicksClosestElement(t *testing.T) {
	s := newScene(t)
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 5, 1.0) // actors at x=0..4
	s.Step(0.01)

	b, ok := Nearest(s, geom.Vec3{X: 2.4, Y: 0.2}, 1.0)
	if !ok {
		t.Fatal("expected a binding within radius")
	}
	if b.Line != l {
		t.Error("expected binding on the only line")
	}
	if b.ActorIndex != 2 {
		t.Errorf("expected element start 2, got %d", b.ActorIndex)
	}
	want := geom.Vec3{X: 2.4}
	if geom.Dist(b.Point, want) > 1e-9 {
		t.Errorf("expected closest point %v, got %v", want, b.Point)
	}
}

func TestNearestOutsideRadius(t *testing.T) {
	s := newScene(t)
	s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 3, 1.0)
	s.Step(0.01)

	if _, ok := Nearest(s, geom.Vec3{Y: 50}, 0.5); ok {
		t.Error("nothing within radius should report no binding")
	}
}

func TestNearestSkipsNotReadyLines(t *testing.T) {
	s := newScene(t)
	s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 3, 1.0)
	// No step: the line never reached its ready boundary.

	if _, ok := Nearest(s, geom.Vec3{X: 1}, 10); ok {
		t.Error("not-ready lines must be skipped")
	}
}

func TestNearestScansAllPieces(t *testing.T) {
	s := newScene(t)
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 6, 1.0) // actors at x=0..5
	s.Step(0.01)

	s.TearElement(l, solver.Element{A: 2, B: 3})
	s.RebuildConstraints(l)
	s.Step(0.01)

	// Reference near the far piece (old actors 3..5, renumbered 0..2).
	b, ok := Nearest(s, geom.Vec3{X: 4.5, Y: 0.1}, 1.0)
	if !ok {
		t.Fatal("expected a binding on the far piece")
	}
	if b.Line == l {
		t.Error("expected the far piece, got the near piece")
	}
	if b.ActorIndex != 1 {
		t.Errorf("expected far-piece element start 1, got %d", b.ActorIndex)
	}
}

func TestNearestTieBreakIsStable(t *testing.T) {
	s := newScene(t)
	// Two parallel lines equidistant from the reference point.
	first := s.SpawnLine(geom.Vec3{Y: 1}, geom.Vec3{X: 1}, 3, 1.0)
	s.SpawnLine(geom.Vec3{Y: -1}, geom.Vec3{X: 1}, 3, 1.0)
	s.Step(0.01)

	for i := 0; i < 5; i++ {
		b, ok := Nearest(s, geom.Vec3{X: 1}, 2.0)
		if !ok {
			t.Fatal("expected a binding")
		}
		if b.Line != first {
			t.Error("tie should resolve to the first enumerated line")
		}
	}
}
