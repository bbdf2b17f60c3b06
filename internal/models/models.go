package models

import "time"

// Track represents a music track from any library source.
type Track struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration,omitempty"` // Duration in seconds
}

// DeduplicateTracks removes tracks whose ID was already seen, preserving order.
func DeduplicateTracks(tracks []Track) []Track {
	seen := make(map[string]bool, len(tracks))
	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		result = append(result, t)
	}
	return result
}

// LookupRequest identifies one track needing metadata resolution.
//
// TrackID is an opaque identifier, unique within one enrichment run.
type LookupRequest struct {
	TrackID    string `json:"trackId"`
	TrackName  string `json:"trackName"`
	ArtistName string `json:"artistName"`
}

// LookupResult holds resolved BPM and key data for one track.
//
// Source is always populated, even when every data field is nil; the
// sentinel value for "no source had an answer" is "none".
type LookupResult struct {
	TrackID    string   `json:"trackId"`
	BPM        *float64 `json:"bpm"`
	MusicalKey *string  `json:"musicalKey"`
	CamelotKey *string  `json:"camelotKey"`
	Genres     []string `json:"genres,omitempty"`
	Source     string   `json:"source"`
}

// EmptyResult returns a LookupResult with no data, tagged with the given source.
func EmptyResult(trackID, source string) LookupResult {
	return LookupResult{TrackID: trackID, Source: source}
}

// TrackGenres holds resolved genres for one track.
//
// An empty (non-nil) Genres slice means the artist was looked up and
// genuinely has no genre data; it is a terminal answer, not a miss.
type TrackGenres struct {
	TrackID string   `json:"trackId"`
	Genres  []string `json:"genres"`
	Source  string   `json:"source,omitempty"`
}

// CacheRecord is one row of the persistent track metadata cache,
// keyed by the normalized "artist:title" lookup key.
//
// Writes merge rather than replace: a new value only overwrites a field
// when it is non-nil, so a record carrying genres but no BPM can never
// erase a previously cached BPM.
type CacheRecord struct {
	LookupKey   string
	TrackName   string
	ArtistName  string
	BPM         *float64
	MusicalKey  *string
	CamelotKey  *string
	Genres      []string
	BpmSource   *string
	GenreSource *string
	UpdatedAt   time.Time
}

// HasGenreAnswer reports whether this record settles the genre question:
// either genres are present, or a genre source already checked and found none.
func (r CacheRecord) HasGenreAnswer() bool {
	return len(r.Genres) > 0 || r.GenreSource != nil
}

// EnrichedTrack is a track merged with all resolved metadata.
type EnrichedTrack struct {
	Track
	BPM         *float64 `json:"bpm"`
	MusicalKey  *string  `json:"musicalKey"`
	CamelotKey  *string  `json:"camelotKey"`
	Genres      []string `json:"genres,omitempty"`
	Vibe        *string  `json:"vibe,omitempty"`
	BpmSource   string   `json:"bpmSource,omitempty"`
	GenreSource string   `json:"genreSource,omitempty"`
}
