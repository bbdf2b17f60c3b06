package providers

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
)

// CacheStore persists resolved metadata across process runs, keyed by
// the normalized lookup key. Implementations merge on write: absent
// fields never erase previously stored values.
type CacheStore interface {
	GetBatch(ctx context.Context, keys []string) (map[string]models.CacheRecord, error)
	UpsertBatch(ctx context.Context, records []models.CacheRecord) error
}

// Pipeline fronts the BPM chain and the genre resolver with the
// persistent cache. A nil store degrades to live lookups only; a store
// that starts failing is treated the same way, per call.
type Pipeline struct {
	chain    *Chain
	resolver *Resolver
	store    CacheStore
	logger   *log.Logger
}

// NewPipeline wires the lookup layers together. The store may be nil.
func NewPipeline(chain *Chain, resolver *Resolver, store CacheStore, logger *log.Logger) *Pipeline {
	return &Pipeline{
		chain:    chain,
		resolver: resolver,
		store:    store,
		logger:   logger.With("component", "pipeline"),
	}
}

// LookupBpm resolves BPM and key data for a batch, serving persistent
// cache hits without touching any provider. Every request gets exactly
// one result. The error return is reserved for future fatal conditions;
// cache failures degrade to live lookups and are never returned.
func (p *Pipeline) LookupBpm(ctx context.Context, requests []models.LookupRequest) ([]models.LookupResult, error) {
	cached := p.fetchRecords(ctx, requests)

	results := make([]models.LookupResult, 0, len(requests))
	var misses []models.LookupRequest
	for _, request := range requests {
		record, ok := cached[cacheKeyFor(request)]
		if ok && record.BPM != nil {
			source := "cache"
			if record.BpmSource != nil {
				source = *record.BpmSource
			}
			results = append(results, models.LookupResult{
				TrackID:    request.TrackID,
				BPM:        record.BPM,
				MusicalKey: record.MusicalKey,
				CamelotKey: record.CamelotKey,
				Source:     source,
			})
		} else {
			misses = append(misses, request)
		}
	}

	if len(misses) > 0 {
		live := p.chain.Lookup(ctx, misses)
		results = append(results, live...)
		p.storeBpmResults(ctx, misses, live)
	}
	return results, nil
}

// LookupGenres resolves genres for a batch. Cache records that settle
// the genre question, including "checked, found none", are served
// without a live lookup.
func (p *Pipeline) LookupGenres(ctx context.Context, requests []models.LookupRequest) ([]models.TrackGenres, error) {
	cached := p.fetchRecords(ctx, requests)

	results := make([]models.TrackGenres, 0, len(requests))
	var misses []models.LookupRequest
	for _, request := range requests {
		record, ok := cached[cacheKeyFor(request)]
		if ok && record.HasGenreAnswer() {
			source := "cache"
			if record.GenreSource != nil {
				source = *record.GenreSource
			}
			genres := record.Genres
			if genres == nil {
				genres = []string{}
			}
			results = append(results, models.TrackGenres{TrackID: request.TrackID, Genres: genres, Source: source})
		} else {
			misses = append(misses, request)
		}
	}

	if len(misses) > 0 {
		live := p.resolver.Resolve(ctx, misses)
		results = append(results, live...)
		p.storeGenreResults(ctx, misses, live)
	}
	return results, nil
}

// CachedGenres answers from the persistent cache only, never triggering
// a live lookup. Tracks without a settled cache answer are omitted.
func (p *Pipeline) CachedGenres(ctx context.Context, requests []models.LookupRequest) []models.TrackGenres {
	cached := p.fetchRecords(ctx, requests)

	var results []models.TrackGenres
	for _, request := range requests {
		record, ok := cached[cacheKeyFor(request)]
		if !ok || !record.HasGenreAnswer() {
			continue
		}
		genres := record.Genres
		if genres == nil {
			genres = []string{}
		}
		source := "cache"
		if record.GenreSource != nil {
			source = *record.GenreSource
		}
		results = append(results, models.TrackGenres{TrackID: request.TrackID, Genres: genres, Source: source})
	}
	return results
}

func cacheKeyFor(request models.LookupRequest) string {
	return normalize.CacheKey(request.ArtistName, request.TrackName)
}

// fetchRecords reads the batch from the store, degrading to an empty
// map when no store is configured or the read fails.
func (p *Pipeline) fetchRecords(ctx context.Context, requests []models.LookupRequest) map[string]models.CacheRecord {
	if p.store == nil || len(requests) == 0 {
		return nil
	}
	keys := make([]string, 0, len(requests))
	seen := make(map[string]bool, len(requests))
	for _, request := range requests {
		key := cacheKeyFor(request)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	records, err := p.store.GetBatch(ctx, keys)
	if err != nil {
		p.logger.Warn("cache read failed, continuing without it", "err", err)
		return nil
	}
	return records
}

func (p *Pipeline) storeBpmResults(ctx context.Context, requests []models.LookupRequest, results []models.LookupResult) {
	if p.store == nil {
		return
	}
	byID := make(map[string]models.LookupRequest, len(requests))
	for _, request := range requests {
		byID[request.TrackID] = request
	}

	now := time.Now().UTC()
	var records []models.CacheRecord
	for _, result := range results {
		if result.BPM == nil {
			continue
		}
		request, ok := byID[result.TrackID]
		if !ok {
			continue
		}
		source := result.Source
		records = append(records, models.CacheRecord{
			LookupKey:  cacheKeyFor(request),
			TrackName:  normalize.Title(request.TrackName),
			ArtistName: normalize.Artist(request.ArtistName),
			BPM:        result.BPM,
			MusicalKey: result.MusicalKey,
			CamelotKey: result.CamelotKey,
			BpmSource:  &source,
			UpdatedAt:  now,
		})
	}
	p.upsert(ctx, records)
}

// storeGenreResults persists genre answers, including empty ones: a
// recorded source with no genres stops the same artist from being
// re-queried on the next run.
func (p *Pipeline) storeGenreResults(ctx context.Context, requests []models.LookupRequest, results []models.TrackGenres) {
	if p.store == nil {
		return
	}
	byID := make(map[string]models.LookupRequest, len(requests))
	for _, request := range requests {
		byID[request.TrackID] = request
	}

	now := time.Now().UTC()
	var records []models.CacheRecord
	for _, result := range results {
		request, ok := byID[result.TrackID]
		if !ok || result.Source == "" || result.Source == SourceNone {
			continue
		}
		source := result.Source
		records = append(records, models.CacheRecord{
			LookupKey:   cacheKeyFor(request),
			TrackName:   normalize.Title(request.TrackName),
			ArtistName:  normalize.Artist(request.ArtistName),
			Genres:      result.Genres,
			GenreSource: &source,
			UpdatedAt:   now,
		})
	}
	p.upsert(ctx, records)
}

func (p *Pipeline) upsert(ctx context.Context, records []models.CacheRecord) {
	if len(records) == 0 {
		return
	}
	if err := p.store.UpsertBatch(ctx, records); err != nil {
		p.logger.Warn("cache write failed", "err", err, "records", len(records))
	}
}
