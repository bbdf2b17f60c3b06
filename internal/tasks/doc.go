// package tasks implements the client-side enrichment engine.
//
// The core abstraction is Enricher, which takes a track list plus any
// externally seeded tempo data, computes the remaining lookup need, and
// drives batched BPM and genre resolution with bounded concurrency.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers. Starting a new run supersedes the
// previous one: its cancellation propagates to every in-flight batch
// and late responses are discarded instead of applied.
package tasks
