package normalize

// DeriveVibe combines canonical genres and a BPM into a single
// descriptive tag. Rules are evaluated in fixed priority order and the
// first match wins; at most one tag is ever produced. Returns "" when no
// rule applies. A nil-BPM caller passes bpm <= 0.
func DeriveVibe(genres []string, bpm float64) string {
	g := make(map[string]bool, len(genres))
	for _, genre := range genres {
		g[genre] = true
	}
	hasBPM := bpm > 0

	switch {
	case g["techno"] && hasBPM && bpm >= 138:
		return "aggressive"
	case g["techno"] && hasBPM && bpm >= 125:
		return "dark"
	case (g["house"] || g["deep house"]) && hasBPM && bpm >= 118 && bpm <= 128:
		return "groovy"
	case g["trance"]:
		return "melodic"
	case g["drum and bass"]:
		return "high energy"
	case (g["hip hop"] || g["r&b"]) && hasBPM && bpm < 100:
		return "chill"
	case g["ambient"]:
		return "chill"
	case hasBPM && bpm >= 140:
		return "high energy"
	case hasBPM && bpm < 95:
		return "chill"
	default:
		return ""
	}
}
