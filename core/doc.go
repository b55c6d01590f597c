// Package core provides the foundational domain types used by SalesMesh. It
// defines the core abstractions for:
//
//   - Results (the outcome of a single agent execution, success or failure)
//   - State (write-once shared state merged as a pipeline progresses)
//   - Events (immutable progress records emitted while a run executes)
//   - CallLimiter (bounds simultaneous model calls within a run)
//   - Pluggable stores for generated artifacts (briefs, proposals)
//
// The package intentionally keeps implementation concerns (persistence,
// pipeline execution, concrete agents) out of scope, exposing small types to
// enable custom backends and extensions. All exported identifiers include
// concise documentation to aid discoverability and external consumption.
package core
