package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lancebshr/djprep/internal/formatter"
	"github.com/lancebshr/djprep/internal/shared"
	"github.com/lancebshr/djprep/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Enrich resolves BPM, key and genre metadata for an imported track list
// and writes the result as JSON or CSV.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")
	format := strings.ToLower(cmd.String("format"))
	minBpm := cmd.Float("min-bpm")
	maxBpm := cmd.Float("max-bpm")
	pretty := cmd.Bool("pretty")

	if format != "json" && format != "csv" {
		return fmt.Errorf("%w: format must be json or csv, got %q", shared.ErrInvalidFlag, format)
	}

	imported, err := formatter.ReadTrackList(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read track list: %w", err)
	}

	r.logger.Infof("imported %d tracks from %s", len(imported.Tracks), inputPath)
	if len(imported.Seeds) > 0 {
		r.logger.Info("track list carries tempo seeds", "count", len(imported.Seeds))
	}

	enricher, closer, err := r.buildEnricher()
	if err != nil {
		return fmt.Errorf("failed to build enrichment engine: %w", err)
	}
	defer closer()

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logProgress(update)
		}
	}()

	result, err := enricher.Run(ctx, imported.Tracks, imported.Seeds, progress)
	close(progress)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	r.logger.Info("enrichment finished",
		"tracks", result.Total,
		"with_bpm", result.WithBPM,
		"tagged", result.Tagged,
		"superseded", result.Superseded,
	)

	tracks := result.Tracks
	if minBpm > 0 || maxBpm > 0 {
		filtered, stats := tasks.FilterByBPM(tracks, minBpm, maxBpm)
		r.writePlainln("Tempo filter: %d of %d tracks in range (%d had a BPM)",
			stats.InRange, stats.Total, stats.WithBPM)
		tracks = filtered
	}

	if outputPath != "" {
		if err := formatter.WriteExport(tracks, format, outputPath); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writePlainln("✓ Wrote %d tracks to %s", len(tracks), outputPath)
		return nil
	}

	if format == "csv" {
		data, err := formatter.ExportToCSV(tracks)
		if err != nil {
			return fmt.Errorf("failed to render CSV: %w", err)
		}
		return r.writePlain("%s", data)
	}

	return r.writeJSON(tracks, pretty)
}

// logProgress reports one enrichment phase transition on the logger.
func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.Seed, tasks.Settled:
		r.logger.Info(update.Message, "phase", update.Phase.String())
	default:
		r.logger.Info(update.Message,
			"phase", update.Phase.String(),
			"completed", update.Completed,
			"total", update.Total,
			"tagged", update.Tagged,
		)
	}
}
