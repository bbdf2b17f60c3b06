package normalize

import "math"

// BPM octave-folds a tempo into the standard display range [80, 160):
// values at or above 160 are repeatedly halved, values below 80 are
// repeatedly doubled, then the result is rounded to one decimal.
//
// Halving or doubling a tempo is musically equivalent, so 170 and 85
// fold to the same value. Idempotent on its own output. Non-positive
// input is returned unchanged.
func BPM(bpm float64) float64 {
	if bpm <= 0 {
		return bpm
	}
	for bpm >= 160 {
		bpm /= 2
	}
	for bpm < 80 {
		bpm *= 2
	}
	bpm = math.Round(bpm*10) / 10
	// Rounding can push a value just under 160 back onto the boundary.
	if bpm >= 160 {
		bpm = math.Round(bpm/2*10) / 10
	}
	return bpm
}
