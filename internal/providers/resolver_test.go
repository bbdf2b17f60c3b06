package providers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/shared"
)

// stubGenreSource answers from a fixed table keyed by artist name.
type stubGenreSource struct {
	mu          sync.Mutex
	name        string
	concurrency int
	genres      map[string][]string
	err         error
	calls       int
}

func (s *stubGenreSource) Name() string { return s.name }

func (s *stubGenreSource) Concurrency() int {
	if s.concurrency > 0 {
		return s.concurrency
	}
	return 1
}

func (s *stubGenreSource) ArtistGenres(_ context.Context, artistName string) ([]string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.genres[artistName], nil
}

func TestResolver(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	ctx := context.Background()

	t.Run("fast layer answer stops escalation", func(t *testing.T) {
		fast := &stubGenreSource{name: "fast", genres: map[string][]string{"Daft Punk": {"house"}}}
		slow := &stubGenreSource{name: "slow", genres: map[string][]string{"Daft Punk": {"techno"}}}
		resolver := newResolver([]GenreSource{fast, slow}, logger)

		results := resolver.Resolve(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Around the World", ArtistName: "Daft Punk"},
		})
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if len(results[0].Genres) != 1 || results[0].Genres[0] != "house" {
			t.Errorf("expected [house], got %v", results[0].Genres)
		}
		if results[0].Source != "fast" {
			t.Errorf("expected source fast, got %q", results[0].Source)
		}
		if slow.calls != 0 {
			t.Errorf("slow layer saw %d lookups, want 0", slow.calls)
		}
	})

	t.Run("escalates unanswered artists to the slow layer", func(t *testing.T) {
		fast := &stubGenreSource{name: "fast", genres: map[string][]string{}}
		slow := &stubGenreSource{name: "slow", genres: map[string][]string{"Aphex Twin": {"ambient", "techno"}}}
		resolver := newResolver([]GenreSource{fast, slow}, logger)

		results := resolver.Resolve(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Xtal", ArtistName: "Aphex Twin"},
		})
		if results[0].Source != "slow" {
			t.Errorf("expected source slow, got %q", results[0].Source)
		}
		if len(results[0].Genres) != 2 {
			t.Errorf("expected 2 genres, got %v", results[0].Genres)
		}
	})

	t.Run("one lookup per artist fans out to every track", func(t *testing.T) {
		fast := &stubGenreSource{name: "fast", genres: map[string][]string{"Burial": {"uk garage"}}}
		resolver := newResolver([]GenreSource{fast}, logger)

		results := resolver.Resolve(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Archangel", ArtistName: "Burial"},
			{TrackID: "t2", TrackName: "Ghost Hardware", ArtistName: "burial"},
			{TrackID: "t3", TrackName: "Near Dark", ArtistName: "Burial"},
		})
		if fast.calls != 1 {
			t.Errorf("source saw %d lookups, want 1", fast.calls)
		}
		for _, result := range results {
			if len(result.Genres) != 1 || result.Genres[0] != "uk garage" {
				t.Errorf("track %s got %v", result.TrackID, result.Genres)
			}
		}
	})

	t.Run("remembers empty answers across runs", func(t *testing.T) {
		fast := &stubGenreSource{name: "fast", genres: map[string][]string{}}
		slow := &stubGenreSource{name: "slow", genres: map[string][]string{}}
		resolver := newResolver([]GenreSource{fast, slow}, logger)

		request := models.LookupRequest{TrackID: "t1", TrackName: "Untitled", ArtistName: "Obscure Act"}
		first := resolver.Resolve(ctx, []models.LookupRequest{request})
		if first[0].Genres == nil || len(first[0].Genres) != 0 {
			t.Fatalf("expected empty non-nil genres, got %v", first[0].Genres)
		}

		resolver.Resolve(ctx, []models.LookupRequest{request})
		if fast.calls != 1 || slow.calls != 1 {
			t.Errorf("sources saw %d/%d lookups on a settled artist, want 1/1", fast.calls, slow.calls)
		}
	})

	t.Run("a failing layer is skipped, not fatal", func(t *testing.T) {
		fast := &stubGenreSource{name: "fast", err: errors.New("rate limited")}
		slow := &stubGenreSource{name: "slow", genres: map[string][]string{"Moderat": {"electronic"}}}
		resolver := newResolver([]GenreSource{fast, slow}, logger)

		results := resolver.Resolve(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "A New Error", ArtistName: "Moderat"},
		})
		if results[0].Source != "slow" || len(results[0].Genres) != 1 {
			t.Errorf("expected slow layer answer, got %v from %q", results[0].Genres, results[0].Source)
		}
	})

	t.Run("cancelled context settles remaining artists as none", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		fast := &stubGenreSource{name: "fast", genres: map[string][]string{"Daft Punk": {"house"}}}
		resolver := newResolver([]GenreSource{fast}, logger)

		results := resolver.Resolve(cancelled, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Da Funk", ArtistName: "Daft Punk"},
		})
		if results[0].Source != SourceNone {
			t.Errorf("expected source %q, got %q", SourceNone, results[0].Source)
		}
		if results[0].Genres == nil {
			t.Error("expected non-nil genres slice")
		}
	})
}
