package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/normalize"
	"golang.org/x/time/rate"
)

const (
	musicBrainzBaseURL   = "https://musicbrainz.org/ws/2"
	musicBrainzUserAgent = "djprep/0.1.0 (https://github.com/lancebshr/djprep)"

	// MusicBrainz enforces one request per second strictly; stay under it.
	musicBrainzDelay = 1100 * time.Millisecond

	// Curated genre entries outrank community tags by this weight offset.
	curatedGenreBoost = 100

	// A search result carrying this many tags skips the detail fetch.
	searchTagThreshold = 2
)

// MusicBrainzGenreSource is the slow, authoritative genre layer: a
// search-then-detail lookup against the MusicBrainz tag database,
// globally paced to respect the service's strict rate limit.
type MusicBrainzGenreSource struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewMusicBrainzGenreSource creates the MusicBrainz source. It needs no
// credentials, only the mandatory User-Agent.
func NewMusicBrainzGenreSource(logger *log.Logger) *MusicBrainzGenreSource {
	return &MusicBrainzGenreSource{
		baseURL:    musicBrainzBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(musicBrainzDelay), 1),
		logger:     logger.With("source", "musicbrainz"),
	}
}

func (s *MusicBrainzGenreSource) Name() string { return "musicbrainz" }

// Concurrency is 1: the limiter would serialize workers anyway.
func (s *MusicBrainzGenreSource) Concurrency() int { return 1 }

type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type mbArtist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Tags   []mbTag `json:"tags"`
	Genres []mbTag `json:"genres"`
}

type mbSearchResponse struct {
	Artists []mbArtist `json:"artists"`
}

type mbDetailResponse struct {
	Tags   []mbTag `json:"tags"`
	Genres []mbTag `json:"genres"`
}

// ArtistGenres searches the artist by name, picks the best candidate,
// and uses its search tags directly when there are enough; otherwise it
// issues one detail fetch and merges curated genres (boosted) with
// community tags before canonicalizing.
func (s *MusicBrainzGenreSource) ArtistGenres(ctx context.Context, artistName string) ([]string, error) {
	name := normalize.Artist(artistName)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`artist:"%s"`, escapeLucene(name))
	searchURL := fmt.Sprintf("%s/artist?query=%s&fmt=json&limit=5", s.baseURL, url.QueryEscape(query))
	headers := map[string]string{"User-Agent": musicBrainzUserAgent}

	var searchResponse mbSearchResponse
	if err := getJSON(ctx, s.httpClient, searchURL, headers, &searchResponse); err != nil {
		return nil, err
	}
	if len(searchResponse.Artists) == 0 {
		return []string{}, nil
	}

	best := bestMBArtist(searchResponse.Artists, name)
	searchTags := make([]normalize.RawTag, 0, len(best.Tags))
	for _, tag := range best.Tags {
		searchTags = append(searchTags, normalize.RawTag{Name: tag.Name, Count: tag.Count})
	}
	if len(searchTags) >= searchTagThreshold {
		return normalize.GenreTags(searchTags), nil
	}

	if best.ID == "" {
		return normalize.GenreTags(searchTags), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	detailURL := fmt.Sprintf("%s/artist/%s?inc=tags+genres&fmt=json", s.baseURL, url.PathEscape(best.ID))
	var detail mbDetailResponse
	if err := getJSON(ctx, s.httpClient, detailURL, headers, &detail); err != nil {
		// The search tags are still the best answer we have.
		return normalize.GenreTags(searchTags), nil
	}

	merged := make([]normalize.RawTag, 0, len(detail.Genres)+len(detail.Tags))
	for _, genre := range detail.Genres {
		merged = append(merged, normalize.RawTag{Name: genre.Name, Count: genre.Count + curatedGenreBoost})
	}
	for _, tag := range detail.Tags {
		merged = append(merged, normalize.RawTag{Name: tag.Name, Count: tag.Count})
	}
	return normalize.GenreTags(merged), nil
}

// bestMBArtist prefers an exact case-insensitive name match, then a
// prefix/superstring match; failing both, the first result, which
// carries the highest search relevance score.
func bestMBArtist(artists []mbArtist, target string) mbArtist {
	names := make([]string, len(artists))
	for i, artist := range artists {
		names[i] = artist.Name
	}
	if best := bestName(names, target); best >= 0 {
		return artists[best]
	}
	return artists[0]
}

var luceneSpecials = regexp.MustCompile(`([+\-&|!(){}\[\]^"~*?:\\/])`)

// escapeLucene escapes characters the MusicBrainz search syntax treats
// specially.
func escapeLucene(s string) string {
	return luceneSpecials.ReplaceAllString(s, `\$1`)
}
