package solver

import (
	"testing"

	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/geom"
)

func newTestSolver() *Solver {
	tuning := DefaultTuning()
	tuning.Gravity = geom.Vec3{} // keep geometry static for index tests
	tuning.Ground = -100
	return New(tuning, nil)
}

func TestSpawnNotReadyUntilBoundary(t *testing.T) {
	s := newTestSolver()
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 5, 0.1)

	if s.LineReady(l) {
		t.Error("line should not be ready before the first step boundary")
	}
	if got := s.Resolve(l, 0); got != dynamo.InvalidIndex {
		t.Errorf("expected InvalidIndex before boundary, got %d", got)
	}

	s.Step(0.01)

	if !s.LineReady(l) {
		t.Error("line should be ready after the step boundary")
	}
	if got := s.Resolve(l, 0); got == dynamo.InvalidIndex {
		t.Error("expected valid resolution after boundary")
	}
}

func TestResolveBounds(t *testing.T) {
	s := newTestSolver()
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 5, 0.1)
	s.Step(0.01)

	tests := []struct {
		name  string
		actor int
		valid bool
	}{
		{"first", 0, true},
		{"last", 4, true},
		{"negative", -1, false},
		{"past end", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Resolve(l, tt.actor)
			if tt.valid && got == dynamo.InvalidIndex {
				t.Error("expected valid slot")
			}
			if !tt.valid && got != dynamo.InvalidIndex {
				t.Errorf("expected InvalidIndex, got %d", got)
			}
		})
	}

	if got := s.Resolve(nil, 0); got != dynamo.InvalidIndex {
		t.Error("nil line should resolve to InvalidIndex")
	}
}

func TestTearSplitsLine(t *testing.T) {
	s := newTestSolver()
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 6, 0.1)
	s.Step(0.01)

	before2, _ := s.ParticlePosition(l, 2)
	before3, _ := s.ParticlePosition(l, 3)

	s.TearElement(l, Element{A: 2, B: 3})

	if l.ActiveParticleCount() != 3 {
		t.Errorf("near piece should keep 3 actors, got %d", l.ActiveParticleCount())
	}
	if len(l.Elements()) != 2 {
		t.Errorf("near piece should keep 2 elements, got %d", len(l.Elements()))
	}

	// Stale far-side actor on the old line no longer resolves.
	if got := s.Resolve(l, 3); got != dynamo.InvalidIndex {
		t.Errorf("stale actor should be invalid, got %d", got)
	}

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(lines))
	}
	far := lines[1]
	if far.ActiveParticleCount() != 3 {
		t.Errorf("far piece should have 3 actors, got %d", far.ActiveParticleCount())
	}
	if len(far.Elements()) != 2 {
		t.Errorf("far piece should have 2 elements, got %d", len(far.Elements()))
	}

	// Renumbered actor 0 of the far piece is the old actor 3.
	got, ok := s.ParticlePosition(far, 0)
	if !ok || got != before3 {
		t.Errorf("far actor 0 should be old actor 3 at %v, got %v", before3, got)
	}
	keep, ok := s.ParticlePosition(l, 2)
	if !ok || keep != before2 {
		t.Errorf("near actor 2 should be unchanged at %v, got %v", before2, keep)
	}
}

func TestTearUnknownElementIsNoop(t *testing.T) {
	s := newTestSolver()
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 4, 0.1)
	s.Step(0.01)

	s.TearElement(l, Element{A: 7, B: 8})

	if len(s.Lines()) != 1 {
		t.Error("unknown element must not split the line")
	}
	if l.ActiveParticleCount() != 4 {
		t.Error("unknown element must not drop actors")
	}
}

func TestRebuildCountsOnce(t *testing.T) {
	s := newTestSolver()
	l := s.SpawnLine(geom.Vec3{}, geom.Vec3{X: 1}, 4, 0.1)
	s.Step(0.01)

	s.TearElement(l, Element{A: 1, B: 2})
	s.RebuildConstraints(l)

	if s.Rebuilds() != 1 {
		t.Errorf("expected exactly 1 rebuild, got %d", s.Rebuilds())
	}
}

func TestDeferredAppliesAtStepStart(t *testing.T) {
	s := newTestSolver()
	applied := false
	s.Defer(func() { applied = true })

	if applied {
		t.Fatal("deferred op must not run before the boundary")
	}
	s.Step(0.01)
	if !applied {
		t.Error("deferred op should run at the start of Step")
	}
}

func TestAnchorDoesNotFall(t *testing.T) {
	tuning := DefaultTuning()
	tuning.Ground = -100
	s := New(tuning, nil)
	l := s.SpawnLine(geom.Vec3{Y: 2}, geom.Vec3{X: 1}, 3, 0.1)

	for i := 0; i < 50; i++ {
		s.Step(0.01)
	}

	root, ok := s.ParticlePosition(l, 0)
	if !ok {
		t.Fatal("root should resolve")
	}
	if root.Y != 2 {
		t.Errorf("anchored root should stay at y=2, got %f", root.Y)
	}
	tip, _ := s.ParticlePosition(l, 2)
	if tip.Y >= 2 {
		t.Errorf("free tip should sag under gravity, got y=%f", tip.Y)
	}

	if w, ok := s.InverseMass(l, 0); !ok || w != 0 {
		t.Errorf("root must have zero inverse mass, got %f (ok=%v)", w, ok)
	}
	if w, ok := s.InverseMass(l, 2); !ok || w <= 0 {
		t.Errorf("free particle must have positive inverse mass, got %f (ok=%v)", w, ok)
	}
}

type impactRecorder struct {
	events []dynamo.ImpactEvent
}

func (r *impactRecorder) OnImpact(ev dynamo.ImpactEvent) { r.events = append(r.events, ev) }

func TestGroundImpactPassthrough(t *testing.T) {
	rec := &impactRecorder{}
	tuning := DefaultTuning()
	tuning.ImpactSpeed = 0.01
	s := New(tuning, rec)

	// Hang point of the free particle sits below ground, so the ground
	// keeps catching it.
	l := s.SpawnLine(geom.Vec3{Y: 0.2}, geom.Vec3{Y: -1}, 2, 0.4)
	_ = l
	for i := 0; i < 200; i++ {
		s.Step(0.01)
	}

	if len(rec.events) == 0 {
		t.Fatal("expected at least one impact event")
	}
	if rec.events[0].Normal != (geom.Vec3{Y: 1}) {
		t.Errorf("ground impact normal should be +Y, got %v", rec.events[0].Normal)
	}
}
