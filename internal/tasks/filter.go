package tasks

import (
	"math"

	"github.com/lancebshr/djprep/internal/models"
)

// FilterStats summarizes a tempo filter pass over an enriched library.
type FilterStats struct {
	Total   int `json:"total"`   // Tracks considered
	WithBPM int `json:"withBpm"` // Tracks carrying a resolved BPM
	InRange int `json:"inRange"` // Tracks whose BPM falls in the requested range
}

// FilterByBPM returns the tracks whose folded tempo lies in [min, max].
// A max of zero or below means unbounded, so a min-only filter keeps
// everything at or above min. Tracks without a resolved BPM are
// excluded: an unknown tempo cannot satisfy a tempo constraint.
func FilterByBPM(tracks []models.EnrichedTrack, min, max float64) ([]models.EnrichedTrack, FilterStats) {
	if max <= 0 {
		max = math.MaxFloat64
	}
	stats := FilterStats{Total: len(tracks)}
	matched := make([]models.EnrichedTrack, 0, len(tracks))
	for _, track := range tracks {
		if track.BPM == nil {
			continue
		}
		stats.WithBPM++
		if *track.BPM >= min && *track.BPM <= max {
			stats.InRange++
			matched = append(matched, track)
		}
	}
	return matched, stats
}
