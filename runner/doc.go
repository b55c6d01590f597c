// Package runner coordinates pipeline execution end to end. It keeps a
// registry of the shipped pipeline kinds, tracks a record per run (status,
// shared state, timestamps, delivery outcomes), supports cancellation of
// in-flight runs, and fans progress events out to subscribers over buffered
// channels.
//
// A finished run is packaged for the outside world: the research state is
// compiled into a call prep brief, the proposal state yields the proposal
// document, and both are persisted through the configured artifact store and
// handed to the notification fanout. Public methods are safe for concurrent
// use.
package runner
