// Package models defines domain entities for the djprep enrichment pipeline.
//
// The package contains two categories of types:
//
// 1. Lookup DTOs exchanged with the provider layer:
//   - [LookupRequest] : One track to resolve, identified by an opaque track ID
//   - [LookupResult] : Resolved BPM/key data, always tagged with a source
//   - [TrackGenres] : Resolved genres for one track
//
// 2. Library and persistence types:
//   - [Track] : A track as loaded from a library file or service export
//   - [EnrichedTrack] : A track merged with its resolved metadata
//   - [CacheRecord] : One row of the persistent track metadata cache
//
// Nullable metadata fields use pointers; a nil field means "no answer",
// never an error. The Source tag on results is always populated, with
// "none" as the sentinel when every source missed.
package models
