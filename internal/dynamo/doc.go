// Package dynamo provides the shared primitives of the tear engine.
//
// The package defines the value types and interfaces every other engine
// package speaks in:
//
//   - [FollowerState]: the four-state follower lifecycle
//   - [Params]: per-follower tuning (arm, break, dwell, compliance)
//   - [CutEvent], [FractureEvent], [ImpactEvent]: observable side effects
//   - [FractureSink], [ImpactSink]: capability interfaces resolved once
//     at construction, never probed at runtime
//
// # Error Policy
//
// Failed index resolution and stale bindings are not errors; they are
// per-tick "not ready" conditions handled locally. The sentinel errors in
// this package cover construction-time programmer errors only, which fail
// fast before the tick loop starts.
package dynamo
