// Package pipeline provides data-driven orchestration of agents: a pipeline
// is described by a Spec value (an ordered list of stages, each one agent or
// a parallel group) and interpreted by a single generic executor. Concrete
// workflows are descriptors, not code.
//
// Execution model:
//   - Stages run strictly in order; the state merged after stage i is the
//     snapshot passed to stage i+1.
//   - A parallel group fans out one goroutine per member against the same
//     pre-group snapshot and joins all of them before the stage completes.
//     No member task outlives the group's run.
//   - Individual agent failures are merged as failure results and execution
//     continues; best-effort output beats a hard abort for report workflows.
//   - Cancellation aborts the run: a group in flight is dropped wholesale
//     (GroupCancelledError, no partial merge) and the state accumulated
//     before the aborted stage is returned alongside the error.
//
// Output key uniqueness across the whole pipeline is validated at
// construction time, so the write-once state contract cannot fail mid-run.
package pipeline
