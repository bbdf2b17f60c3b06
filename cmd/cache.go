package main

import (
	"context"
	"fmt"

	"github.com/lancebshr/djprep/internal/formatter"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/normalize"
	"github.com/lancebshr/djprep/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats reports how many tracks the local cache holds.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openDatabase()
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("%w: no database path configured", shared.ErrCacheUnavailable)
	}
	defer db.Close()

	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count cached tracks: %w", err)
	}

	r.writePlainln("Cached tracks: %d", count)
	r.writePlainln("Database: %s", r.config.Database.Path)
	return nil
}

// CacheGet looks up one cached track by artist and title.
func (r *Runner) CacheGet(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.String("artist")
	title := cmd.String("title")

	db, repo, err := r.openDatabase()
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("%w: no database path configured", shared.ErrCacheUnavailable)
	}
	defer db.Close()

	key := normalize.CacheKey(artist, title)
	records, err := repo.GetBatch(ctx, []string{key})
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	record, ok := records[key]
	if !ok {
		r.writePlainln("Not cached: %s / %s", artist, title)
		return nil
	}
	return r.writeJSON(record, true)
}

// CacheGenres runs a cache-only genre pass over a track list. Tracks
// without a settled cached answer are omitted, nothing hits the network.
func (r *Runner) CacheGenres(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")

	imported, err := formatter.ReadTrackList(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read track list: %w", err)
	}

	pipeline, closer, err := r.buildPipeline()
	if err != nil {
		return fmt.Errorf("failed to build lookup pipeline: %w", err)
	}
	defer closer()

	requests := make([]models.LookupRequest, 0, len(imported.Tracks))
	for _, track := range imported.Tracks {
		requests = append(requests, models.LookupRequest{
			TrackID:    track.ID,
			TrackName:  track.Name,
			ArtistName: track.Artist,
		})
	}

	results := pipeline.CachedGenres(ctx, requests)
	r.logger.Infof("cached genres settled for %d of %d tracks", len(results), len(requests))
	return r.writeJSON(results, true)
}
