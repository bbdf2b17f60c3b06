package normalize

import (
	"regexp"
	"strings"
)

// keyToCamelot maps full key notation to Camelot wheel codes.
// Sharp/flat duplicate spellings map to the same code.
var keyToCamelot = map[string]string{
	// Major keys
	"B major":  "1B",
	"F# major": "2B",
	"Gb major": "2B",
	"Db major": "3B",
	"C# major": "3B",
	"Ab major": "4B",
	"G# major": "4B",
	"Eb major": "5B",
	"D# major": "5B",
	"Bb major": "6B",
	"A# major": "6B",
	"F major":  "7B",
	"C major":  "8B",
	"G major":  "9B",
	"D major":  "10B",
	"A major":  "11B",
	"E major":  "12B",

	// Minor keys
	"Ab minor": "1A",
	"G# minor": "1A",
	"Eb minor": "2A",
	"D# minor": "2A",
	"Bb minor": "3A",
	"A# minor": "3A",
	"F minor":  "4A",
	"C minor":  "5A",
	"G minor":  "6A",
	"D minor":  "7A",
	"A minor":  "8A",
	"E minor":  "9A",
	"B minor":  "10A",
	"F# minor": "11A",
	"Gb minor": "11A",
	"Db minor": "12A",
	"C# minor": "12A",
}

// shortKeyToCamelot maps short notation: bare note name = major, note+"m" = minor.
var shortKeyToCamelot = map[string]string{
	"B":  "1B",
	"F#": "2B",
	"Gb": "2B",
	"Db": "3B",
	"C#": "3B",
	"Ab": "4B",
	"G#": "4B",
	"Eb": "5B",
	"D#": "5B",
	"Bb": "6B",
	"A#": "6B",
	"F":  "7B",
	"C":  "8B",
	"G":  "9B",
	"D":  "10B",
	"A":  "11B",
	"E":  "12B",

	"Abm": "1A",
	"G#m": "1A",
	"Ebm": "2A",
	"D#m": "2A",
	"Bbm": "3A",
	"A#m": "3A",
	"Fm":  "4A",
	"Cm":  "5A",
	"Gm":  "6A",
	"Dm":  "7A",
	"Am":  "8A",
	"Em":  "9A",
	"Bm":  "10A",
	"F#m": "11A",
	"Gbm": "11A",
	"Dbm": "12A",
	"C#m": "12A",
}

var (
	camelotPattern = regexp.MustCompile(`(?i)^\d{1,2}[AB]$`)
	minorSuffix    = regexp.MustCompile(`(?i)\s*min(or)?$`)
	majorSuffix    = regexp.MustCompile(`(?i)\s*maj(or)?$`)
)

// ToCamelotKey converts any common key notation to a Camelot wheel code.
// Handles "C major", "Cm", "C minor", "8B", "c MAJOR", "F#m" and the
// sharp/flat duplicate spellings. Returns "" when the input is empty or
// unrecognized.
//
// Idempotent: applying it to its own output is a no-op, since Camelot
// notation is returned unchanged (uppercased).
func ToCamelotKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}

	if camelotPattern.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}

	if code, ok := keyToCamelot[trimmed]; ok {
		return code
	}

	// Case-normalized retry ("c major" → "C major")
	if code, ok := keyToCamelot[titleCase(trimmed)]; ok {
		return code
	}

	if code, ok := shortKeyToCamelot[trimmed]; ok {
		return code
	}

	// Strip a trailing major/minor token and retry short notation
	if minorSuffix.MatchString(trimmed) {
		note := strings.TrimSpace(minorSuffix.ReplaceAllString(trimmed, ""))
		return shortKeyToCamelot[note+"m"]
	}
	if majorSuffix.MatchString(trimmed) {
		note := strings.TrimSpace(majorSuffix.ReplaceAllString(trimmed, ""))
		return shortKeyToCamelot[note]
	}

	return ""
}

// chromaticScale lists note names by pitch class, starting at C, using the
// spellings the key tables carry.
var chromaticScale = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// FromPitchClass converts the integer pitch-class convention used by
// streaming-service audio feature exports (0 = C .. 11 = B, plus a
// major/minor mode flag) into a Camelot code. Returns "" for a pitch
// class outside 0-11.
func FromPitchClass(pitchClass int, major bool) string {
	if pitchClass < 0 || pitchClass > 11 {
		return ""
	}
	mode := " minor"
	if major {
		mode = " major"
	}
	return ToCamelotKey(chromaticScale[pitchClass] + mode)
}

// titleCase uppercases the first character and lowercases the rest,
// matching the capitalization used by the full-notation key table.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
