package providers

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/shared"
)

// artistCacheCap bounds the process-lifetime artist genre cache.
const artistCacheCap = 4096

// Resolver resolves genres per artist through layered sources: every
// fast source in order, then every slow source, escalating only for
// artists the earlier layer left without a single genre.
//
// One canonical layering is configured per deployment. The default
// built by [NewResolver] uses the best available fast source (Spotify,
// else Last.fm, else the GetSongBPM side channel) and MusicBrainz as the
// slow authority.
type Resolver struct {
	layers []GenreSource
	cache  *artistCache
	logger *log.Logger
}

// NewResolver builds the canonical layering from configured credentials.
// MusicBrainz needs no credentials, so a resolver is always usable.
func NewResolver(creds shared.CredentialsConfig, logger *log.Logger) *Resolver {
	var layers []GenreSource
	switch {
	case creds.Spotify.ClientID != "" && creds.Spotify.ClientSecret != "":
		layers = append(layers, NewSpotifyGenreSource(creds.Spotify.ClientID, creds.Spotify.ClientSecret, logger))
	case creds.LastFM.APIKey != "":
		layers = append(layers, NewLastFMGenreSource(creds.LastFM.APIKey, logger))
	case creds.GetSongBPM.APIKey != "":
		layers = append(layers, NewGetSongBPMSource(creds.GetSongBPM.APIKey, logger))
	}
	layers = append(layers, NewMusicBrainzGenreSource(logger))
	return newResolver(layers, logger)
}

// newResolver wires an explicit layer order; used directly by tests.
func newResolver(layers []GenreSource, logger *log.Logger) *Resolver {
	return &Resolver{
		layers: layers,
		cache:  newArtistCache(artistCacheCap),
		logger: logger.With("component", "genre_resolver"),
	}
}

// artistResolution is the terminal answer for one artist within a run.
type artistResolution struct {
	genres []string
	source string
}

// Resolve groups the batch by normalized artist, resolves each unique
// artist at most once, and fans the artist's genres out to every track
// by that artist. Every checked artist is recorded, including the
// empty list meaning "checked, nothing there", and is never re-queried
// within the process lifetime.
func (r *Resolver) Resolve(ctx context.Context, requests []models.LookupRequest) []models.TrackGenres {
	// Group tracks by artist identity; one lookup serves them all.
	groups := make(map[string]string, len(requests)) // artist key → display name
	for _, request := range requests {
		key := artistKey(request.ArtistName)
		if _, ok := groups[key]; !ok {
			groups[key] = request.ArtistName
		}
	}

	resolved := make(map[string]artistResolution, len(groups))
	var pending []string
	for key := range groups {
		if res, ok := r.cachedResolution(key); ok {
			resolved[key] = res
		} else {
			pending = append(pending, key)
		}
	}

	for _, layer := range r.layers {
		if len(pending) == 0 || ctx.Err() != nil {
			break
		}
		answered := r.resolveLayer(ctx, layer, groups, pending)

		var next []string
		for _, key := range pending {
			if res, ok := answered[key]; ok && len(res.genres) > 0 {
				resolved[key] = res
			} else {
				next = append(next, key)
			}
		}
		pending = next
	}

	// Whatever the layers could not answer is settled as empty from the
	// last source that actually checked it.
	for _, key := range pending {
		if res, ok := r.cachedResolution(key); ok {
			resolved[key] = res
		} else {
			resolved[key] = artistResolution{genres: []string{}, source: SourceNone}
		}
	}

	results := make([]models.TrackGenres, 0, len(requests))
	for _, request := range requests {
		res := resolved[artistKey(request.ArtistName)]
		results = append(results, models.TrackGenres{
			TrackID: request.TrackID,
			Genres:  res.genres,
			Source:  res.source,
		})
	}
	return results
}

// cachedResolution walks the layer order looking for a recorded answer,
// preferring the first layer that found actual genres.
func (r *Resolver) cachedResolution(key string) (artistResolution, bool) {
	var emptyFrom string
	for _, layer := range r.layers {
		if genres, ok := r.cache.get(layer.Name(), key); ok {
			if len(genres) > 0 {
				return artistResolution{genres: genres, source: layer.Name()}, true
			}
			emptyFrom = layer.Name()
		}
	}
	// Only terminal if every layer has checked this artist.
	if emptyFrom != "" {
		for _, layer := range r.layers {
			if _, ok := r.cache.get(layer.Name(), key); !ok {
				return artistResolution{}, false
			}
		}
		return artistResolution{genres: []string{}, source: emptyFrom}, true
	}
	return artistResolution{}, false
}

// resolveLayer looks up the pending artists against one source with the
// source's own concurrency. Artists the source already checked this
// process are served from the cache without another call.
func (r *Resolver) resolveLayer(ctx context.Context, layer GenreSource, groups map[string]string, pending []string) map[string]artistResolution {
	answered := make(map[string]artistResolution, len(pending))
	var mu sync.Mutex

	var toLookup []string
	for _, key := range pending {
		if genres, ok := r.cache.get(layer.Name(), key); ok {
			answered[key] = artistResolution{genres: genres, source: layer.Name()}
		} else {
			toLookup = append(toLookup, key)
		}
	}
	if len(toLookup) == 0 {
		return answered
	}

	concurrency := layer.Concurrency()
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(toLookup) {
		concurrency = len(toLookup)
	}

	jobs := make(chan string, len(toLookup))
	for _, key := range toLookup {
		jobs <- key
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				genres, err := layer.ArtistGenres(ctx, groups[key])
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					r.logger.Debug("artist lookup failed", "layer", layer.Name(), "artist", groups[key], "err", err)
					genres = []string{}
				}

				r.cache.set(layer.Name(), key, genres)
				mu.Lock()
				answered[key] = artistResolution{genres: genres, source: layer.Name()}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return answered
}
