package normalize

import (
	"regexp"
	"strings"
)

// patternsToStrip removes feature credits, edition/remaster annotations and
// bracketed suffixes that hurt provider match rates. All patterns are applied
// in order; overlapping matches make a second pass a no-op.
var patternsToStrip = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(feat\.[^)]*\)`),
	regexp.MustCompile(`(?i)\s*\(ft\.[^)]*\)`),
	regexp.MustCompile(`(?i)\s*feat\.\s*.*`),
	regexp.MustCompile(`(?i)\s*ft\.\s*.*`),
	regexp.MustCompile(`(?i)\s*\(with\s+[^)]*\)`),
	regexp.MustCompile(`(?i)\s*-\s*remaster(ed)?\s*(\d{4})?\s*`),
	regexp.MustCompile(`(?i)\s*\(remaster(ed)?\s*(\d{4})?\)`),
	regexp.MustCompile(`(?i)\s*\(deluxe\s*(edition)?\)`),
	regexp.MustCompile(`(?i)\s*\(bonus\s*track\s*(version)?\)`),
	regexp.MustCompile(`(?i)\s*\(expanded\s*edition\)`),
	regexp.MustCompile(`(?i)\s*\(anniversary\s*edition\)`),
	regexp.MustCompile(`(?i)\s*\(live\)`),
	regexp.MustCompile(`(?i)\s*\(acoustic\)`),
	regexp.MustCompile(`(?i)\s*\(radio\s*edit\)`),
	regexp.MustCompile(`(?i)\s*\(single\s*version\)`),
	regexp.MustCompile(`(?i)\s*\(original\s*mix\)`),
	regexp.MustCompile(`\s*\[.*?\]`),
}

// Title strips feature credits, remaster/edition/live annotations and
// bracketed suffixes from a track title.
func Title(title string) string {
	normalized := title
	for _, pattern := range patternsToStrip {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	return strings.TrimSpace(normalized)
}

// Artist reduces an artist credit to the primary artist: the substring
// before the first comma, trimmed.
func Artist(artist string) string {
	primary, _, _ := strings.Cut(artist, ",")
	return strings.TrimSpace(primary)
}

// CacheKey builds the canonical identity for a musical work from a raw
// artist credit and track title: lowercased "<primary-artist>:<title>",
// folded to printable ASCII so the key is safe as a record field name in
// any external store.
//
// Two requests producing the same key are treated as the same work
// regardless of casing, diacritics or featured-artist suffixes.
func CacheKey(artist, title string) string {
	key := strings.ToLower(Artist(artist)) + ":" + strings.ToLower(Title(title))
	return foldASCII(key)
}

// latinFold maps common accented Latin letters to their base letters.
// Covers the Latin-1 Supplement and Latin Extended-A ranges, which is
// everything the providers actually emit.
var latinFold = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'ā': "a", 'ă': "a", 'ą': "a",
	'æ': "ae",
	'ç': "c", 'ć': "c", 'ĉ': "c", 'č': "c",
	'ď': "d", 'đ': "d", 'ð': "d",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e", 'ē': "e", 'ĕ': "e", 'ė': "e", 'ę': "e", 'ě': "e",
	'ĝ': "g", 'ğ': "g", 'ġ': "g", 'ģ': "g",
	'ĥ': "h", 'ħ': "h",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i", 'ĩ': "i", 'ī': "i", 'ĭ': "i", 'į': "i", 'ı': "i",
	'ĵ': "j",
	'ķ': "k",
	'ĺ': "l", 'ļ': "l", 'ľ': "l", 'ł': "l",
	'ñ': "n", 'ń': "n", 'ņ': "n", 'ň': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o", 'ō': "o", 'ŏ': "o", 'ő': "o",
	'œ': "oe",
	'ŕ': "r", 'ŗ': "r", 'ř': "r",
	'ś': "s", 'ŝ': "s", 'ş': "s", 'š': "s", 'ß': "ss",
	'ţ': "t", 'ť': "t", 'ŧ': "t",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ũ': "u", 'ū': "u", 'ŭ': "u", 'ů': "u", 'ű': "u", 'ų': "u",
	'ŵ': "w",
	'ý': "y", 'ÿ': "y", 'ŷ': "y",
	'ź': "z", 'ż': "z", 'ž': "z",
	'þ': "th",
}

// foldASCII transliterates accented Latin letters to their base form and
// drops any remaining character outside printable ASCII (0x20-0x7E).
func foldASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
			continue
		}
		if folded, ok := latinFold[r]; ok {
			b.WriteString(folded)
		}
	}
	return b.String()
}
