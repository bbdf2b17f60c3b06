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
	"github.com/lancebshr/djprep/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL    = "https://accounts.spotify.com/api/token"
	spotifyAPIBaseURL  = "https://api.spotify.com/v1"
	spotifyConcurrency = 10
	spotifyDelay       = 50 * time.Millisecond
	spotifyMaxRetries  = 2
)

// SpotifyGenreSource resolves artist genres through Spotify's artist
// search. Uses the client-credentials flow, so no user authorization is
// involved; the oauth2 client caches and refreshes the app token.
type SpotifyGenreSource struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyGenreSource creates a Spotify genre source from app credentials.
func NewSpotifyGenreSource(clientID, clientSecret string, logger *log.Logger) *SpotifyGenreSource {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	return &SpotifyGenreSource{
		httpClient: config.Client(context.Background()),
		baseURL:    spotifyAPIBaseURL,
		limiter:    rate.NewLimiter(rate.Every(spotifyDelay), 1),
		logger:     logger.With("source", "spotify"),
	}
}

func (s *SpotifyGenreSource) Name() string { return "spotify" }

func (s *SpotifyGenreSource) Concurrency() int { return spotifyConcurrency }

type spotifyArtist struct {
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

type spotifyArtistSearchResponse struct {
	Artists struct {
		Items []spotifyArtist `json:"items"`
	} `json:"artists"`
}

// ArtistGenres searches for the artist and canonicalizes the best
// candidate's genre list. A 429 is retried after the server-provided
// delay, a bounded number of times, then treated as no answer.
func (s *SpotifyGenreSource) ArtistGenres(ctx context.Context, artistName string) ([]string, error) {
	name := normalize.Artist(artistName)
	searchURL := fmt.Sprintf("%s/search?q=%s&type=artist&limit=5",
		s.baseURL, url.QueryEscape("artist:"+name))

	var response spotifyArtistSearchResponse
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		retryAfter, err := s.search(ctx, searchURL, &response)
		if err == nil {
			break
		}
		if retryAfter <= 0 || attempt >= spotifyMaxRetries {
			return nil, err
		}

		s.logger.Debug("rate limited, backing off", "artist", name, "retry_after", retryAfter)
		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	best := bestArtistWithGenres(response.Artists.Items, name)
	if best == nil {
		return []string{}, nil
	}
	return normalize.SimpleGenres(best.Genres), nil
}

// search performs one search request. On a 429 it returns the
// Retry-After duration alongside the error so the caller can back off.
func (s *SpotifyGenreSource) search(ctx context.Context, searchURL string, response *spotifyArtistSearchResponse) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		seconds, convErr := strconv.Atoi(resp.Header.Get("Retry-After"))
		if convErr != nil || seconds <= 0 {
			seconds = 1
		}
		return time.Duration(seconds) * time.Second, shared.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return 0, nil
}

// bestArtistWithGenres picks the best-matching candidate that actually
// carries genres: name match first, then any candidate with genres.
func bestArtistWithGenres(artists []spotifyArtist, target string) *spotifyArtist {
	withGenres := make([]spotifyArtist, 0, len(artists))
	for _, artist := range artists {
		if len(artist.Genres) > 0 {
			withGenres = append(withGenres, artist)
		}
	}
	if len(withGenres) == 0 {
		return nil
	}

	names := make([]string, len(withGenres))
	for i, artist := range withGenres {
		names[i] = artist.Name
	}
	if best := bestName(names, target); best >= 0 {
		return &withGenres[best]
	}
	return &withGenres[0]
}
