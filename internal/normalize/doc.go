// Package normalize contains the pure canonicalization functions the
// enrichment pipeline is built on.
//
//   - [Title] / [Artist] : clean up raw track metadata before lookups
//   - [CacheKey] : canonical identity for a musical work ("artist:title")
//   - [ToCamelotKey] / [FromPitchClass] : musical key → Camelot wheel code
//   - [BPM] : octave-fold a tempo into the standard display range
//   - [SimpleGenres] / [GenreTags] : raw provider tags → canonical DJ genres
//   - [DeriveVibe] : genre + BPM → a single descriptive tag
//
// Every function here is deterministic and idempotent on its own output,
// so callers may re-normalize already-normalized data freely.
package normalize
