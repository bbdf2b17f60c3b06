package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// maxGenres caps how many genres a single track carries.
const maxGenres = 3

// tagMap is the curated mapping from raw provider tag spellings to
// canonical DJ-facing genre names.
var tagMap = map[string]string{
	// House
	"house":             "house",
	"house music":       "house",
	"deep house":        "deep house",
	"deep-house":        "deep house",
	"tech house":        "tech house",
	"tech-house":        "tech house",
	"progressive house": "house",
	"acid house":        "house",
	"funky house":       "house",
	"electro house":     "house",
	"minimal house":     "house",

	// Techno
	"techno":            "techno",
	"minimal techno":    "techno",
	"detroit techno":    "techno",
	"acid techno":       "techno",
	"industrial techno": "techno",
	"hard techno":       "techno",
	"dub techno":        "techno",

	// Trance
	"trance":             "trance",
	"progressive trance": "trance",
	"psytrance":          "trance",
	"psy-trance":         "trance",
	"uplifting trance":   "trance",
	"vocal trance":       "trance",

	// Drum and bass
	"drum and bass": "drum and bass",
	"drum & bass":   "drum and bass",
	"dnb":           "drum and bass",
	"d&b":           "drum and bass",
	"liquid funk":   "drum and bass",
	"jungle":        "drum and bass",

	// Dubstep
	"dubstep": "dubstep",
	"brostep": "dubstep",
	"riddim":  "dubstep",

	// Hip hop
	"hip hop":     "hip hop",
	"hip-hop":     "hip hop",
	"rap":         "hip hop",
	"gangsta rap": "hip hop",
	"trap":        "hip hop",
	"grime":       "hip hop",

	// R&B
	"r&b":              "r&b",
	"rnb":              "r&b",
	"rhythm and blues": "r&b",
	"neo-soul":         "r&b",
	"neo soul":         "r&b",

	// Pop
	"pop":        "pop",
	"synth-pop":  "pop",
	"synthpop":   "pop",
	"electropop": "pop",
	"dance-pop":  "pop",
	"indie pop":  "pop",
	"dream pop":  "pop",
	"art pop":    "pop",
	"k-pop":      "pop",

	// Rock
	"rock":             "rock",
	"alternative rock": "rock",
	"indie rock":       "rock",
	"punk rock":        "rock",
	"post-punk":        "rock",
	"classic rock":     "rock",
	"hard rock":        "rock",
	"metal":            "rock",
	"heavy metal":      "rock",
	"grunge":           "rock",

	// Indie
	"indie":       "indie",
	"lo-fi":       "indie",
	"lofi":        "indie",
	"bedroom pop": "indie",
	"shoegaze":    "indie",

	// Electronic (broad)
	"electronic":  "electronic",
	"electronica": "electronic",
	"edm":         "electronic",
	"idm":         "electronic",
	"breakbeat":   "electronic",
	"uk garage":   "electronic",
	"garage":      "electronic",
	"2-step":      "electronic",
	"future bass": "electronic",

	// Disco
	"disco":       "disco",
	"nu-disco":    "disco",
	"nu disco":    "disco",
	"italo disco": "disco",

	// Funk
	"funk":         "funk",
	"p-funk":       "funk",
	"electro-funk": "funk",

	// Soul
	"soul":   "soul",
	"motown": "soul",

	// Reggae
	"reggae": "reggae",
	"dub":    "reggae",
	"ska":    "reggae",
	"roots":  "reggae",

	// Dancehall
	"dancehall": "dancehall",
	"ragga":     "dancehall",
	"soca":      "dancehall",

	// Latin
	"latin":      "latin",
	"reggaeton":  "latin",
	"latin pop":  "latin",
	"salsa":      "latin",
	"bachata":    "latin",
	"cumbia":     "latin",
	"dembow":     "latin",
	"bossa nova": "latin",

	// Ambient
	"ambient":      "ambient",
	"dark ambient": "ambient",
	"downtempo":    "ambient",
	"chillout":     "ambient",
	"chill out":    "ambient",
	"new age":      "ambient",
}

// noiseTags are community tags that are not genres: mood and social
// labels that would pollute the result.
var noiseTags = map[string]bool{
	"seen live":            true,
	"favorites":            true,
	"favourite":            true,
	"favorite":             true,
	"loved":                true,
	"spotify":              true,
	"beautiful":            true,
	"awesome":              true,
	"cool":                 true,
	"catchy":               true,
	"chill":                true,
	"party":                true,
	"summer":               true,
	"good":                 true,
	"great":                true,
	"classic":              true,
	"best":                 true,
	"under 2000 listeners": true,
	"male vocalists":       true,
	"female vocalists":     true,
	"singer-songwriter":    true,
	"all":                  true,
	"albums i own":         true,
	"check out":            true,
	"my favorite":          true,
}

var (
	yearTag    = regexp.MustCompile(`^\d{4}$`)
	decadeTag  = regexp.MustCompile(`^\d{2}s$`)
	decadeTag4 = regexp.MustCompile(`^\d{4}s$`)
)

// isNoise reports whether a tag is a non-genre tag: a bare year, a
// decade shorthand ("80s", "1990s"), or a known mood/social label.
func isNoise(tag string) bool {
	lower := strings.ToLower(tag)
	if noiseTags[lower] {
		return true
	}
	return yearTag.MatchString(lower) || decadeTag.MatchString(lower) || decadeTag4.MatchString(lower)
}

// RawTag is a provider tag with a weight (listener count, vote count, or
// a curated boost).
type RawTag struct {
	Name  string
	Count int
}

// SimpleGenres canonicalizes plain genre strings (no weights): noise tags
// are dropped, spellings are mapped through the curated taxonomy, the
// result is deduped by canonical name in first-seen order and capped at
// three entries. Unmapped non-noise tags pass through lowercased.
func SimpleGenres(genres []string) []string {
	seen := make(map[string]bool)
	result := []string{}

	for _, genre := range genres {
		lower := strings.ToLower(strings.TrimSpace(genre))
		if lower == "" || isNoise(lower) {
			continue
		}

		canonical, ok := tagMap[lower]
		if !ok {
			canonical = lower
		}
		if !seen[canonical] {
			seen[canonical] = true
			result = append(result, canonical)
		}
		if len(result) >= maxGenres {
			break
		}
	}

	return result
}

// GenreTags canonicalizes weighted provider tags. Tags are considered in
// descending weight order; otherwise the behavior matches [SimpleGenres].
func GenreTags(rawTags []RawTag) []string {
	tags := make([]RawTag, len(rawTags))
	copy(tags, rawTags)
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return SimpleGenres(names)
}
