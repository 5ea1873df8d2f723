// Package solver is the deformable-line collaborator of the tear engine.
//
// It owns particle integration, distance-constraint relaxation, and line
// topology. The engine proper never touches the concrete [Solver]; it
// consumes the [Source] and [Mutator] interfaces so tests can substitute
// scripted fakes.
//
// # Index Resolution
//
// A [Line] maps stable actor indices to live particle slots. The map is
// only trustworthy immediately after a step boundary; [Solver.Resolve]
// returns dynamo.InvalidIndex for anything it cannot answer right now and
// callers skip work for the tick.
//
// # Deferred Mutations
//
// Anything that changes the active constraint set or line topology is
// queued with [Solver.Defer] during the presentation phase and applied at
// the start of the next [Solver.Step], so the solver never observes a
// half-mutated constraint set mid-step.
package solver
