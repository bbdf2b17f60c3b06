// Package providers implements the metadata lookup sources and the
// orchestration around them.
//
// # BPM Provider Chain
//
// [BpmSource] is the per-provider abstraction: a batch lookup that never
// returns an error. A source that fails a request reports an empty
// result tagged with its own name; the caller treats that as a miss.
//
// [Chain] tries sources in configured order with a process-wide bounded
// cache in front. The first source to report a BPM for a track wins;
// later sources are never consulted for that track. Tracks no source
// answered get the sentinel source "none".
//
// # Genre Resolver
//
// Genres are an artist-level property, so [Resolver] groups requests by
// normalized artist and issues one lookup per unique artist. A fast
// layer (cheap, concurrent) runs first; only artists it could not
// resolve reach the slow, rate-limited layer. Every checked artist is
// recorded in a process-lifetime cache, with the empty list as a valid
// terminal answer.
//
// # Pipeline
//
// [Pipeline] composes the chain, the resolver and an optional persistent
// [CacheStore]: cached answers short-circuit provider calls, fresh
// answers are merge-written back. A missing or failing store degrades to
// direct lookups; no failure in this package ever reaches a caller as an
// error.
//
// Each source is construction-gated on credentials: a provider without
// configured credentials is skipped, never invoked.
package providers
