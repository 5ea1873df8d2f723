// Package world wires the tear engine together and owns the tick.
//
// Each tick runs two ordered phases: the solver's physics phase, then
// this package's presentation phase (input, follower updates, rebind
// retries). Topology mutations queued during presentation apply at the
// start of the next physics phase, never mid-step.
package world

import (
	"log/slog"

	"github.com/san-kum/tearline/internal/broker"
	"github.com/san-kum/tearline/internal/cutter"
	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/follower"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/solver"
)

// Pointer is one tick of input state.
type Pointer struct {
	Down, Held, Up bool
	Screen         geom.Vec2
	World          geom.Vec3
}

type Options struct {
	Tuning     solver.Tuning
	Projector  cutter.Projector
	PickRadius float64
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Tuning:     solver.DefaultTuning(),
		Projector:  cutter.Ortho{Scale: geom.Vec2{X: 1000, Y: 1000}, Offset: geom.Vec2{Y: 300}},
		PickRadius: 0.08,
	}
}

// World owns one solver, one event broker, and the followers riding its
// lines. Worlds are independent; tests can run several side by side.
type World struct {
	sim       *solver.Solver
	events    *broker.Broker
	cut       *cutter.Cutter
	followers []*follower.Follower

	pickRadius float64
	log        *slog.Logger
	time       float64

	grabbed    *follower.Follower
	swiping    bool
	prevScreen geom.Vec2
}

func New(opts Options) (*World, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	events := broker.New()
	sim := solver.New(opts.Tuning, events)

	cut, err := cutter.New(sim, sim, events, opts.Projector)
	if err != nil {
		return nil, err
	}

	return &World{
		sim:        sim,
		events:     events,
		cut:        cut,
		pickRadius: opts.PickRadius,
		log:        opts.Logger,
	}, nil
}

func (w *World) Solver() *solver.Solver          { return w.sim }
func (w *World) Events() *broker.Broker          { return w.events }
func (w *World) Cutter() *cutter.Cutter          { return w.cut }
func (w *World) Followers() []*follower.Follower { return w.followers }
func (w *World) Time() float64                   { return w.time }

// SpawnStem adds a line with an anchored root.
func (w *World) SpawnStem(root, dir geom.Vec3, count int, spacing float64) *solver.Line {
	return w.sim.SpawnLine(root, dir, count, spacing)
}

// SpawnFollower binds a new follower to (line, actorIndex) and subscribes
// it to cut broadcasts.
func (w *World) SpawnFollower(line *solver.Line, actorIndex int, spawnPos geom.Vec3, params dynamo.Params) (*follower.Follower, error) {
	f, err := follower.New(w.sim, w.sim, line, actorIndex, spawnPos, params,
		follower.Sinks{Fracture: w.events, Impact: w.events}, w.log)
	if err != nil {
		return nil, err
	}
	f.SetEnvironment(w.sim.Tuning().Gravity, w.sim.Tuning().Ground, w.sim.Tuning().ImpactSpeed)
	w.events.SubscribeCut(f)
	w.followers = append(w.followers, f)
	return f, nil
}

// Step advances one tick: physics first, presentation strictly after.
func (w *World) Step(dt float64, in Pointer) {
	w.sim.Step(dt)

	w.handleInput(in)
	for _, f := range w.followers {
		f.Update(dt)
	}
	w.time += dt
}

func (w *World) handleInput(in Pointer) {
	if in.Down {
		if f := w.pickFollower(in.World); f != nil && f.Grab(in.World) {
			w.grabbed = f
		} else {
			w.swiping = true
			w.prevScreen = in.Screen
		}
	}
	if in.Held {
		switch {
		case w.grabbed != nil:
			w.grabbed.Drag(in.World)
		case w.swiping && in.Screen != w.prevScreen:
			// At most one sweep-cut mutation per tick.
			w.cut.Sweep(w.prevScreen, in.Screen)
			w.prevScreen = in.Screen
		}
	}
	if in.Up {
		if w.grabbed != nil {
			w.grabbed.Release()
			w.grabbed = nil
		}
		w.swiping = false
	}
}

func (w *World) pickFollower(at geom.Vec3) *follower.Follower {
	var best *follower.Follower
	bestDist := w.pickRadius
	for _, f := range w.followers {
		if f.Disabled() || f.State() != dynamo.RidingIdle {
			continue
		}
		d := geom.Dist(f.Position(), at)
		if d <= bestDist {
			best = f
			bestDist = d
		}
	}
	return best
}
