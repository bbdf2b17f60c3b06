package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/normalize"
	"golang.org/x/time/rate"
)

const (
	lastFMBaseURL     = "https://ws.audioscrobbler.com/2.0"
	lastFMConcurrency = 8
	lastFMDelay       = 50 * time.Millisecond

	// Tags below this listener count are too noisy to trust.
	lastFMMinTagCount = 5
)

// LastFMGenreSource resolves artist genres from Last.fm top tags.
type LastFMGenreSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewLastFMGenreSource creates a Last.fm genre source with the given API key.
func NewLastFMGenreSource(apiKey string, logger *log.Logger) *LastFMGenreSource {
	return &LastFMGenreSource{
		apiKey:     apiKey,
		baseURL:    lastFMBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(lastFMDelay), 1),
		logger:     logger.With("source", "lastfm"),
	}
}

func (s *LastFMGenreSource) Name() string { return "lastfm" }

func (s *LastFMGenreSource) Concurrency() int { return lastFMConcurrency }

// flexInt tolerates the API emitting tag counts as either numbers or strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

type lastFMTag struct {
	Name  string  `json:"name"`
	Count flexInt `json:"count"`
}

type lastFMTopTagsResponse struct {
	TopTags struct {
		Tag []lastFMTag `json:"tag"`
	} `json:"toptags"`
}

// ArtistGenres fetches the artist's top tags, keeps the trusted ones in
// weight order and canonicalizes them.
func (s *LastFMGenreSource) ArtistGenres(ctx context.Context, artistName string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	name := normalize.Artist(artistName)
	requestURL := fmt.Sprintf("%s/?method=artist.gettoptags&artist=%s&api_key=%s&format=json",
		s.baseURL, url.QueryEscape(name), url.QueryEscape(s.apiKey))

	var response lastFMTopTagsResponse
	if err := getJSON(ctx, s.httpClient, requestURL, nil, &response); err != nil {
		return nil, err
	}

	tags := make([]normalize.RawTag, 0, len(response.TopTags.Tag))
	for _, tag := range response.TopTags.Tag {
		if int(tag.Count) > lastFMMinTagCount {
			tags = append(tags, normalize.RawTag{Name: tag.Name, Count: int(tag.Count)})
		}
	}
	if len(tags) == 0 {
		return []string{}, nil
	}
	return normalize.GenreTags(tags), nil
}
