package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
	"golang.org/x/time/rate"
)

const (
	getSongBPMBaseURL     = "https://api.getsongbpm.com"
	getSongBPMConcurrency = 5
	getSongBPMDelay       = 100 * time.Millisecond
)

// GetSongBPMSource looks up tempo and key via the GetSongBPM search API.
// It doubles as a fast genre layer: the artist search endpoint carries a
// genre list on each candidate.
type GetSongBPMSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewGetSongBPMSource creates a GetSongBPM source with the given API key.
func NewGetSongBPMSource(apiKey string, logger *log.Logger) *GetSongBPMSource {
	return &GetSongBPMSource{
		apiKey:     apiKey,
		baseURL:    getSongBPMBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(getSongBPMDelay), 1),
		logger:     logger.With("source", "getsongbpm"),
	}
}

func (s *GetSongBPMSource) Name() string { return "getsongbpm" }

func (s *GetSongBPMSource) Concurrency() int { return getSongBPMConcurrency }

// LookupBatch resolves each request against the song search endpoint,
// paced through the source limiter across a small worker pool.
func (s *GetSongBPMSource) LookupBatch(ctx context.Context, requests []models.LookupRequest) []models.LookupResult {
	return runSourcePool(ctx, s.limiter, getSongBPMConcurrency, requests, s.lookupSingle)
}

type gsbSong struct {
	Tempo   string `json:"tempo"`
	KeyOf   string `json:"key_of"`
	OpenKey string `json:"open_key"`
}

type gsbSearchResponse struct {
	Search []gsbSong `json:"search"`
}

func (s *GetSongBPMSource) lookupSingle(ctx context.Context, request models.LookupRequest) models.LookupResult {
	title := normalize.Title(request.TrackName)
	artist := normalize.Artist(request.ArtistName)
	lookup := fmt.Sprintf("song:%s artist:%s", title, artist)

	searchURL := fmt.Sprintf("%s/search/?api_key=%s&type=song&lookup=%s",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(lookup))

	var response gsbSearchResponse
	if err := getJSON(ctx, s.httpClient, searchURL, nil, &response); err != nil {
		s.logger.Debug("song search failed", "artist", artist, "title", title, "err", err)
		return models.EmptyResult(request.TrackID, s.Name())
	}

	if len(response.Search) == 0 {
		return models.EmptyResult(request.TrackID, s.Name())
	}

	// Use the first match
	song := response.Search[0]
	result := models.LookupResult{TrackID: request.TrackID, Source: s.Name()}

	if tempo, err := strconv.ParseFloat(song.Tempo, 64); err == nil && tempo > 0 {
		result.BPM = &tempo
	}
	if song.KeyOf != "" {
		key := song.KeyOf
		result.MusicalKey = &key
	}
	if camelot := normalize.ToCamelotKey(song.OpenKey); camelot != "" {
		result.CamelotKey = &camelot
	} else if camelot := normalize.ToCamelotKey(song.KeyOf); camelot != "" {
		result.CamelotKey = &camelot
	}
	return result
}

type gsbArtist struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type gsbArtistSearchResponse struct {
	Search []gsbArtist `json:"search"`
}

// ArtistGenres searches the artist endpoint and canonicalizes the best
// candidate's genre list. A failed or empty search is a terminal
// no-answer, not an error worth surfacing.
func (s *GetSongBPMSource) ArtistGenres(ctx context.Context, artistName string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/search/?api_key=%s&type=artist&lookup=%s",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(normalize.Artist(artistName)))

	var response gsbArtistSearchResponse
	if err := getJSON(ctx, s.httpClient, searchURL, nil, &response); err != nil {
		return nil, err
	}
	if len(response.Search) == 0 {
		return []string{}, nil
	}

	names := make([]string, len(response.Search))
	for i, candidate := range response.Search {
		names[i] = candidate.Name
	}
	best := bestName(names, normalize.Artist(artistName))
	if best < 0 {
		best = 0
	}
	return normalize.SimpleGenres(response.Search[best].Genres), nil
}

// runSourcePool fans a batch out across a fixed worker pool, pacing every
// request through the source's limiter. Workers observe cancellation
// before dequeuing; requests never dequeued simply do not appear in the
// result slice, which the chain treats as misses.
func runSourcePool(
	ctx context.Context,
	limiter *rate.Limiter,
	concurrency int,
	requests []models.LookupRequest,
	lookup func(ctx context.Context, request models.LookupRequest) models.LookupResult,
) []models.LookupResult {
	if len(requests) == 0 {
		return nil
	}
	if concurrency > len(requests) {
		concurrency = len(requests)
	}

	jobs := make(chan models.LookupRequest, len(requests))
	for _, request := range requests {
		jobs <- request
	}
	close(jobs)

	out := make(chan models.LookupResult, len(requests))
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for request := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				out <- lookup(ctx, request)
			}
		}()
	}
	wg.Wait()
	close(out)

	results := make([]models.LookupResult, 0, len(requests))
	for result := range out {
		results = append(results, result)
	}
	return results
}

// getJSON performs a GET request and decodes the JSON response body.
// Non-2xx statuses and undecodable payloads are both errors; callers
// map them to a miss.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
