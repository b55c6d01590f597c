// Package agent contains the Agent value type: a named, immutable unit of
// work that turns static instructions, a caller-supplied context and a shared
// state snapshot into exactly one model completion. The package focuses on
// two concerns:
//
//  1. Prompt assembly (BuildRequest) as a pure, unit-testable function
//  2. Execution (Run) with failure-as-data semantics
//
// Design principles:
//   - No hidden state – an Agent holds only its definition, never run data
//   - Reusability – the same Agent value is safe across concurrent runs
//   - Failure is data – a model error becomes a failed Result, not a panic
//     or returned error, so grouping constructs decide what partial failure
//     means
//
// Composition (sequential stages, parallel groups) lives in the pipeline
// package to keep this one free of concurrency concerns.
package agent
