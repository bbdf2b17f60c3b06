package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
)

// LookupClient resolves metadata batches. Implemented by
// providers.Pipeline; abstracted here for testing.
type LookupClient interface {
	LookupBpm(ctx context.Context, requests []models.LookupRequest) ([]models.LookupResult, error)
	LookupGenres(ctx context.Context, requests []models.LookupRequest) ([]models.TrackGenres, error)
}

// EnrichOpts contains batching configuration for enrichment runs.
type EnrichOpts struct {
	BpmBatchSize   int // Tracks per BPM lookup batch (default: 20)
	GenreBatchSize int // Tracks per genre lookup batch (default: 50)
	GenreWorkers   int // Concurrent genre batch workers (default: 3)
}

// EnrichResult contains all data from one enrichment run.
type EnrichResult struct {
	Tracks     []models.EnrichedTrack // Input tracks merged with resolved metadata
	Total      int                    // Total tracks processed
	WithBPM    int                    // Tracks that ended up with a BPM
	Tagged     int                    // Tracks that ended up with at least one genre
	Superseded bool                   // True when a newer run cancelled this one
}

// Enricher orchestrates enrichment runs. At most one run is active per
// Enricher: starting a new run cancels the previous one, and workers of
// the cancelled run abandon their queues without applying late results.
type Enricher struct {
	client LookupClient
	logger *log.Logger
	opts   EnrichOpts

	mu     sync.Mutex
	cancel context.CancelFunc
	run    int
}

// NewEnricher creates an Enricher with the given lookup client.
func NewEnricher(client LookupClient, logger *log.Logger, opts EnrichOpts) *Enricher {
	if opts.BpmBatchSize <= 0 {
		opts.BpmBatchSize = 20
	}
	if opts.GenreBatchSize <= 0 {
		opts.GenreBatchSize = 50
	}
	if opts.GenreWorkers <= 0 {
		opts.GenreWorkers = 3
	}
	return &Enricher{
		client: client,
		logger: logger.With("component", "enricher"),
		opts:   opts,
	}
}

// Stop cancels the active run, if any.
func (e *Enricher) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// begin supersedes any active run and registers this one.
func (e *Enricher) begin(ctx context.Context) (context.Context, context.CancelFunc, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.run++
	return runCtx, cancel, e.run
}

// Run enriches the track list: seeds externally known tempos, resolves
// BPM in sequential batches, then genres across a small worker pool,
// and merges everything into per-track enriched state with Camelot keys
// and a derived vibe.
//
// Failed batches advance progress without contributing data, so a run
// always settles. A superseded run returns the partial state it had
// applied before cancellation, flagged via EnrichResult.Superseded;
// responses arriving after cancellation are discarded.
func (e *Enricher) Run(ctx context.Context, tracks []models.Track, seeds map[string]float64, progress chan<- ProgressUpdate) (*EnrichResult, error) {
	runCtx, cancel, run := e.begin(ctx)
	defer e.release(cancel, run)

	tracks = models.DeduplicateTracks(tracks)

	state := make(map[string]*models.EnrichedTrack, len(tracks))
	order := make([]string, 0, len(tracks))
	for _, track := range tracks {
		state[track.ID] = &models.EnrichedTrack{Track: track}
		order = append(order, track.ID)
	}

	seeded := e.applySeeds(state, seeds)
	sendProgress(progress, seededUpdate(seeded, len(tracks)))

	e.resolveBpm(runCtx, state, order, progress)
	tagged := e.resolveGenres(runCtx, state, order, progress)

	result := &EnrichResult{
		Tracks:     make([]models.EnrichedTrack, 0, len(order)),
		Total:      len(order),
		Tagged:     tagged,
		Superseded: runCtx.Err() != nil,
	}
	for _, id := range order {
		track := state[id]
		if track.BPM != nil {
			result.WithBPM++
		}
		if vibe := normalize.DeriveVibe(track.Genres, bpmOrZero(track.BPM)); vibe != "" {
			track.Vibe = &vibe
		}
		result.Tracks = append(result.Tracks, *track)
	}

	sendProgress(progress, settledUpdate(result))
	return result, nil
}

// release clears the registration if this run is still the active one.
func (e *Enricher) release(cancel context.CancelFunc, run int) {
	cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == run {
		e.cancel = nil
	}
}

// applySeeds merges externally known tempos (keyed by track ID) into
// state so those tracks never hit the providers.
func (e *Enricher) applySeeds(state map[string]*models.EnrichedTrack, seeds map[string]float64) int {
	seeded := 0
	for id, bpm := range seeds {
		track, ok := state[id]
		if !ok || bpm <= 0 {
			continue
		}
		folded := normalize.BPM(bpm)
		track.BPM = &folded
		track.BpmSource = "seed"
		seeded++
	}
	return seeded
}

// resolveBpm issues fixed-size batches sequentially, one round-trip per
// batch, so progress is monotonic and coarse-grained.
func (e *Enricher) resolveBpm(ctx context.Context, state map[string]*models.EnrichedTrack, order []string, progress chan<- ProgressUpdate) {
	var need []models.LookupRequest
	for _, id := range order {
		track := state[id]
		if track.BPM == nil {
			need = append(need, lookupRequest(track.Track))
		}
	}
	if len(need) == 0 {
		return
	}

	completed := 0
	for _, batch := range chunk(need, e.opts.BpmBatchSize) {
		if ctx.Err() != nil {
			return
		}

		results, err := e.client.LookupBpm(ctx, batch)
		if ctx.Err() != nil {
			// Cancelled mid-flight; discard whatever came back.
			return
		}
		if err != nil {
			e.logger.Warn("bpm batch failed", "tracks", len(batch), "err", err)
		} else {
			for _, result := range results {
				applyBpmResult(state, result)
			}
		}

		completed += len(batch)
		sendProgress(progress, bpmProgressUpdate(completed, len(need)))
	}
}

// resolveGenres distributes fixed-size batches across a small worker
// pool pulling from a shared queue. Returns how many tracks ended up
// with at least one genre.
func (e *Enricher) resolveGenres(ctx context.Context, state map[string]*models.EnrichedTrack, order []string, progress chan<- ProgressUpdate) int {
	requests := make([]models.LookupRequest, 0, len(order))
	for _, id := range order {
		requests = append(requests, lookupRequest(state[id].Track))
	}
	batches := chunk(requests, e.opts.GenreBatchSize)
	if len(batches) == 0 {
		return 0
	}

	jobs := make(chan []models.LookupRequest, len(batches))
	for _, batch := range batches {
		jobs <- batch
	}
	close(jobs)

	var mu sync.Mutex
	completed, tagged := 0, 0

	workers := e.opts.GenreWorkers
	if workers > len(batches) {
		workers = len(batches)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				results, err := e.client.LookupGenres(ctx, batch)
				if ctx.Err() != nil {
					return
				}

				mu.Lock()
				if err != nil {
					e.logger.Warn("genre batch failed", "tracks", len(batch), "err", err)
				} else {
					for _, result := range results {
						if track, ok := state[result.TrackID]; ok {
							track.Genres = result.Genres
							track.GenreSource = result.Source
							if len(result.Genres) > 0 {
								tagged++
							}
						}
					}
				}
				completed += len(batch)
				sendProgress(progress, genreProgressUpdate(completed, tagged, len(requests)))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return tagged
}

// applyBpmResult merges one provider answer into state, folding the
// tempo into display range and backfilling the Camelot key from the
// musical key when the provider did not supply one.
func applyBpmResult(state map[string]*models.EnrichedTrack, result models.LookupResult) {
	track, ok := state[result.TrackID]
	if !ok {
		return
	}
	if result.BPM != nil {
		folded := normalize.BPM(*result.BPM)
		track.BPM = &folded
		track.BpmSource = result.Source
	}
	if result.MusicalKey != nil {
		track.MusicalKey = result.MusicalKey
	}
	if result.CamelotKey != nil {
		track.CamelotKey = result.CamelotKey
	} else if result.MusicalKey != nil {
		if camelot := normalize.ToCamelotKey(*result.MusicalKey); camelot != "" {
			track.CamelotKey = &camelot
		}
	}
}

func lookupRequest(track models.Track) models.LookupRequest {
	return models.LookupRequest{TrackID: track.ID, TrackName: track.Name, ArtistName: track.Artist}
}

func bpmOrZero(bpm *float64) float64 {
	if bpm == nil {
		return 0
	}
	return *bpm
}

func chunk(requests []models.LookupRequest, size int) [][]models.LookupRequest {
	if len(requests) == 0 {
		return nil
	}
	batches := make([][]models.LookupRequest, 0, (len(requests)+size-1)/size)
	for start := 0; start < len(requests); start += size {
		end := start + size
		if end > len(requests) {
			end = len(requests)
		}
		batches = append(batches, requests[start:end])
	}
	return batches
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the run.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
