package providers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
	"github.com/lancebshr/djprep/internal/shared"
)

// bpmCacheCap bounds the process-wide BPM cache. Keys are unique musical
// works, so FIFO eviction is as good as LRU here.
const bpmCacheCap = 4096

// SourceNone is the sentinel source tag for a track no source answered.
const SourceNone = "none"

// Chain orchestrates an ordered list of BPM sources behind a bounded
// process-wide cache. The first configured source to report a BPM for a
// track wins; later sources are never consulted for that track.
type Chain struct {
	sources []BpmSource
	cache   *lookupCache
	logger  *log.Logger
}

// NewChain builds the provider chain from configured credentials.
// Sources without credentials are skipped entirely; constructing a chain
// with zero usable sources is a fatal configuration error.
func NewChain(creds shared.CredentialsConfig, logger *log.Logger) (*Chain, error) {
	var sources []BpmSource
	if creds.GetSongBPM.APIKey != "" {
		sources = append(sources, NewGetSongBPMSource(creds.GetSongBPM.APIKey, logger))
	}
	if creds.SoundNet.RapidAPIKey != "" {
		sources = append(sources, NewSoundNetSource(creds.SoundNet.RapidAPIKey, logger))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: set a GetSongBPM or RapidAPI key", shared.ErrNoSources)
	}

	return newChain(sources, logger), nil
}

// newChain wires an explicit source list; used directly by tests.
func newChain(sources []BpmSource, logger *log.Logger) *Chain {
	return &Chain{
		sources: sources,
		cache:   newLookupCache(bpmCacheCap),
		logger:  logger.With("component", "bpm_chain"),
	}
}

// Lookup resolves a batch of requests. Cache hits bypass all sources and
// keep their original source tag, rebound to the requesting track ID.
// Uncached requests walk the source order; a hit is any result with a
// BPM and is cached under the request's normalized lookup key. Requests
// no source answered get the "none" sentinel.
func (c *Chain) Lookup(ctx context.Context, requests []models.LookupRequest) []models.LookupResult {
	results := make([]models.LookupResult, 0, len(requests))

	var remaining []models.LookupRequest
	for _, request := range requests {
		key := normalize.CacheKey(request.ArtistName, request.TrackName)
		if cached, ok := c.cache.get(key); ok {
			cached.TrackID = request.TrackID
			results = append(results, cached)
		} else {
			remaining = append(remaining, request)
		}
	}

	for _, source := range c.sources {
		if len(remaining) == 0 || ctx.Err() != nil {
			break
		}

		byID := make(map[string]models.LookupRequest, len(remaining))
		for _, request := range remaining {
			byID[request.TrackID] = request
		}

		sourceResults := source.LookupBatch(ctx, remaining)
		c.logger.Debug("source pass done", "source", source.Name(), "requested", len(remaining), "returned", len(sourceResults))

		var next []models.LookupRequest
		answered := make(map[string]bool, len(sourceResults))
		for _, result := range sourceResults {
			request, ok := byID[result.TrackID]
			if !ok {
				continue
			}
			answered[result.TrackID] = true
			if result.BPM != nil {
				c.cache.set(normalize.CacheKey(request.ArtistName, request.TrackName), result)
				results = append(results, result)
			} else {
				next = append(next, request)
			}
		}
		// A cancelled pool may drop requests without producing results;
		// carry them forward so they still get the sentinel.
		for id, request := range byID {
			if !answered[id] {
				next = append(next, request)
			}
		}

		remaining = next
	}

	for _, request := range remaining {
		results = append(results, models.EmptyResult(request.TrackID, SourceNone))
	}

	return results
}
