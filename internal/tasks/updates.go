package tasks

import "fmt"

// ProgressUpdate represents a progress event during an enrichment run.
//
// Used to send real-time updates to the CLI or UI layer for display.
// Completed and Tagged are cumulative within their phase and never
// exceed Total.
type ProgressUpdate struct {
	Phase     Phase  // Operation phase
	Completed int    // Tracks whose batch has resolved (with or without data)
	Tagged    int    // Distinct tracks that ended up with at least one genre
	Total     int    // Total tracks in this phase
	Message   string // Human-readable message for display
	Data      any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Seed Phase = iota
	LookupBPM
	LookupGenres
	Settled
)

func (p Phase) String() string {
	switch p {
	case Seed:
		return "seed"
	case LookupBPM:
		return "lookup_bpm"
	case LookupGenres:
		return "lookup_genres"
	case Settled:
		return "settled"
	default:
		return ""
	}
}

func seededUpdate(seeded, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:     Seed,
		Completed: seeded,
		Total:     total,
		Message:   fmt.Sprintf("Seeded %d of %d tracks from imported data", seeded, total),
	}
}

func bpmProgressUpdate(completed, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:     LookupBPM,
		Completed: completed,
		Total:     total,
		Message:   fmt.Sprintf("[%d/%d] Resolving BPM...", completed, total),
	}
}

func genreProgressUpdate(completed, tagged, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:     LookupGenres,
		Completed: completed,
		Tagged:    tagged,
		Total:     total,
		Message:   fmt.Sprintf("[%d/%d] Resolving genres (%d tagged)...", completed, total, tagged),
	}
}

func settledUpdate(result *EnrichResult) ProgressUpdate {
	message := fmt.Sprintf("Done: %d/%d with BPM, %d/%d with genres",
		result.WithBPM, result.Total, result.Tagged, result.Total)
	if result.Superseded {
		message = "Run superseded"
	}
	return ProgressUpdate{
		Phase:   Settled,
		Tagged:  result.Tagged,
		Total:   result.Total,
		Message: message,
		Data:    result,
	}
}
