package providers

import (
	"context"
	"strings"
	"sync"

	"github.com/hbollon/go-edlib"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
)

// BpmSource is one BPM provider in the fallback chain.
//
// LookupBatch resolves a batch of requests and returns one result per
// request. It never returns an error: a failed or unparseable lookup
// becomes an empty result tagged with the source name, which the chain
// treats as a miss.
type BpmSource interface {
	Name() string
	LookupBatch(ctx context.Context, requests []models.LookupRequest) []models.LookupResult
}

// GenreSource resolves the genres of a single artist.
//
// A source returning an error is treated by the resolver as "checked,
// no answer"; the error never propagates further. Concurrency reports
// how many lookups may safely run against this source at once.
type GenreSource interface {
	Name() string
	Concurrency() int
	ArtistGenres(ctx context.Context, artistName string) ([]string, error)
}

// artistKey is the identity a genre lookup is cached under: the
// lowercased primary artist.
func artistKey(artistName string) string {
	return strings.ToLower(normalize.Artist(artistName))
}

// bestName picks the candidate name that best matches the target:
// exact case-insensitive match first, then a prefix/superstring match
// (tolerating "The X" vs "X"), then JaroWinkler similarity above the
// threshold. Returns the index of the winner, or -1.
func bestName(names []string, target string) int {
	const simThreshold = 0.85

	lower := strings.ToLower(target)
	for i, name := range names {
		if strings.ToLower(name) == lower {
			return i
		}
	}
	for i, name := range names {
		nl := strings.ToLower(name)
		if strings.HasPrefix(nl, lower) || strings.HasPrefix(lower, nl) {
			return i
		}
	}

	best, bestSim := -1, float32(simThreshold)
	for i, name := range names {
		sim, err := edlib.StringsSimilarity(strings.ToLower(name), lower, edlib.JaroWinkler)
		if err == nil && sim > bestSim {
			best, bestSim = i, sim
		}
	}
	return best
}

// lookupCache is the process-wide BPM result cache in front of the
// chain, keyed by the normalized lookup key. Size is bounded with FIFO
// eviction so long-lived processes cannot grow it without limit.
type lookupCache struct {
	mu      sync.Mutex
	entries map[string]models.LookupResult
	order   []string
	cap     int
}

func newLookupCache(capacity int) *lookupCache {
	return &lookupCache{
		entries: make(map[string]models.LookupResult, capacity),
		cap:     capacity,
	}
}

func (c *lookupCache) get(key string) (models.LookupResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *lookupCache) set(key string, result models.LookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.cap {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = result
}

// artistCache records every artist a genre source has checked, per
// source, for the lifetime of the process. The empty list is a valid
// terminal value meaning "looked up, no genres found", not a miss.
type artistCache struct {
	mu      sync.Mutex
	entries map[string][]string
	order   []string
	cap     int
}

func newArtistCache(capacity int) *artistCache {
	return &artistCache{
		entries: make(map[string][]string, capacity),
		cap:     capacity,
	}
}

func (c *artistCache) key(source, artist string) string {
	return source + "\x00" + artist
}

func (c *artistCache) get(source, artist string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	genres, ok := c.entries[c.key(source, artist)]
	return genres, ok
}

func (c *artistCache) set(source, artist string, genres []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.key(source, artist)
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.cap {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	if genres == nil {
		genres = []string{}
	}
	c.entries[key] = genres
}
