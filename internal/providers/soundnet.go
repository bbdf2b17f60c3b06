package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"context"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
	"golang.org/x/time/rate"
)

const (
	soundNetBaseURL     = "https://track-analysis.p.rapidapi.com"
	soundNetHost        = "track-analysis.p.rapidapi.com"
	soundNetConcurrency = 3
	soundNetDelay       = 200 * time.Millisecond
)

// SoundNetSource looks up tempo and key via the track-analysis RapidAPI
// endpoint. Slower and stricter than GetSongBPM, so it runs later in the
// chain with a smaller pool.
type SoundNetSource struct {
	rapidAPIKey string
	baseURL     string
	host        string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *log.Logger
}

// NewSoundNetSource creates a SoundNet source with the given RapidAPI key.
func NewSoundNetSource(rapidAPIKey string, logger *log.Logger) *SoundNetSource {
	return &SoundNetSource{
		rapidAPIKey: rapidAPIKey,
		baseURL:     soundNetBaseURL,
		host:        soundNetHost,
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Every(soundNetDelay), 1),
		logger:      logger.With("source", "soundnet"),
	}
}

func (s *SoundNetSource) Name() string { return "soundnet" }

// LookupBatch resolves each request against the search endpoint with a
// fixed three-way worker pool.
func (s *SoundNetSource) LookupBatch(ctx context.Context, requests []models.LookupRequest) []models.LookupResult {
	return runSourcePool(ctx, s.limiter, soundNetConcurrency, requests, s.lookupSingle)
}

type soundNetTrack struct {
	Tempo      *float64 `json:"tempo"`
	BPM        *float64 `json:"bpm"`
	Key        string   `json:"key"`
	Camelot    string   `json:"camelot"`
	CamelotKey string   `json:"camelot_key"`
}

func (s *SoundNetSource) lookupSingle(ctx context.Context, request models.LookupRequest) models.LookupResult {
	title := normalize.Title(request.TrackName)
	artist := normalize.Artist(request.ArtistName)

	searchURL := fmt.Sprintf("%s/search?query=%s", s.baseURL, url.QueryEscape(artist+" "+title))
	headers := map[string]string{
		"X-RapidAPI-Key":  s.rapidAPIKey,
		"X-RapidAPI-Host": s.host,
	}

	// The API may return an array of results or a single object.
	var raw json.RawMessage
	if err := getJSON(ctx, s.httpClient, searchURL, headers, &raw); err != nil {
		s.logger.Debug("search failed", "artist", artist, "title", title, "err", err)
		return models.EmptyResult(request.TrackID, s.Name())
	}

	var track soundNetTrack
	var list []soundNetTrack
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return models.EmptyResult(request.TrackID, s.Name())
		}
		track = list[0]
	} else if err := json.Unmarshal(raw, &track); err != nil {
		return models.EmptyResult(request.TrackID, s.Name())
	}

	result := models.LookupResult{TrackID: request.TrackID, Source: s.Name()}
	if track.Tempo != nil && *track.Tempo > 0 {
		result.BPM = track.Tempo
	} else if track.BPM != nil && *track.BPM > 0 {
		result.BPM = track.BPM
	}
	if track.Key != "" {
		key := track.Key
		result.MusicalKey = &key
	}
	for _, rawKey := range []string{track.Camelot, track.CamelotKey, track.Key} {
		if camelot := normalize.ToCamelotKey(rawKey); camelot != "" {
			result.CamelotKey = &camelot
			break
		}
	}
	return result
}
