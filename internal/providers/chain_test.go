package providers

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/shared"
)

// stubBpmSource answers from a fixed table keyed by track name and
// counts how many requests it has seen.
type stubBpmSource struct {
	mu    sync.Mutex
	name  string
	bpms  map[string]float64
	calls int
}

func (s *stubBpmSource) Name() string { return s.name }

func (s *stubBpmSource) LookupBatch(_ context.Context, requests []models.LookupRequest) []models.LookupResult {
	s.mu.Lock()
	s.calls += len(requests)
	s.mu.Unlock()

	results := make([]models.LookupResult, 0, len(requests))
	for _, request := range requests {
		result := models.EmptyResult(request.TrackID, s.name)
		if bpm, ok := s.bpms[request.TrackName]; ok {
			result.BPM = &bpm
		}
		results = append(results, result)
	}
	return results
}

func TestChain(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	ctx := context.Background()

	t.Run("falls through to the next source on a miss", func(t *testing.T) {
		primary := &stubBpmSource{name: "primary", bpms: map[string]float64{}}
		fallback := &stubBpmSource{name: "fallback", bpms: map[string]float64{"One More Time": 123}}
		chain := newChain([]BpmSource{primary, fallback}, logger)

		results := chain.Lookup(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "One More Time", ArtistName: "Daft Punk"},
		})
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].BPM == nil || *results[0].BPM != 123 {
			t.Errorf("expected bpm 123, got %v", results[0].BPM)
		}
		if results[0].Source != "fallback" {
			t.Errorf("expected source fallback, got %q", results[0].Source)
		}
	})

	t.Run("does not escalate requests the first source answered", func(t *testing.T) {
		primary := &stubBpmSource{name: "primary", bpms: map[string]float64{"Strobe": 128}}
		fallback := &stubBpmSource{name: "fallback", bpms: map[string]float64{"Strobe": 90}}
		chain := newChain([]BpmSource{primary, fallback}, logger)

		results := chain.Lookup(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Strobe", ArtistName: "deadmau5"},
		})
		if *results[0].BPM != 128 || results[0].Source != "primary" {
			t.Errorf("expected primary's answer, got %v from %q", results[0].BPM, results[0].Source)
		}
		if fallback.calls != 0 {
			t.Errorf("fallback saw %d requests, want 0", fallback.calls)
		}
	})

	t.Run("tags exhausted requests with the none sentinel", func(t *testing.T) {
		primary := &stubBpmSource{name: "primary", bpms: map[string]float64{}}
		chain := newChain([]BpmSource{primary}, logger)

		results := chain.Lookup(ctx, []models.LookupRequest{
			{TrackID: "t1", TrackName: "Unknown Dub", ArtistName: "Nobody"},
		})
		if results[0].BPM != nil {
			t.Errorf("expected nil bpm, got %v", *results[0].BPM)
		}
		if results[0].Source != SourceNone {
			t.Errorf("expected source %q, got %q", SourceNone, results[0].Source)
		}
	})

	t.Run("serves repeat lookups from the cache", func(t *testing.T) {
		source := &stubBpmSource{name: "primary", bpms: map[string]float64{"Levels": 126}}
		chain := newChain([]BpmSource{source}, logger)

		request := models.LookupRequest{TrackID: "t1", TrackName: "Levels", ArtistName: "Avicii"}
		chain.Lookup(ctx, []models.LookupRequest{request})

		// Same track, different ID and casing; still one upstream call.
		request2 := models.LookupRequest{TrackID: "t2", TrackName: "levels", ArtistName: "AVICII"}
		results := chain.Lookup(ctx, []models.LookupRequest{request2})

		if source.calls != 1 {
			t.Errorf("source saw %d requests, want 1", source.calls)
		}
		if results[0].TrackID != "t2" {
			t.Errorf("cached result kept stale track id %q", results[0].TrackID)
		}
		if results[0].BPM == nil || *results[0].BPM != 126 {
			t.Errorf("expected cached bpm 126, got %v", results[0].BPM)
		}
	})
}
