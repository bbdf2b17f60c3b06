package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lancebshr/djprep/internal/providers"
	"github.com/lancebshr/djprep/internal/repositories"
	"github.com/lancebshr/djprep/internal/shared"
	"github.com/lancebshr/djprep/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openDatabase opens the configured track cache database. An empty
// database path disables persistence; both return values are nil then.
func (r *Runner) openDatabase() (*sql.DB, *repositories.TrackCacheRepository, error) {
	if r.config.Database.Path == "" {
		return nil, nil, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, repositories.NewTrackCacheRepository(db), nil
}

// buildPipeline wires the provider chain, genre resolver and cache
// store from config. The returned closer releases the database, and is
// safe to call when persistence is disabled.
func (r *Runner) buildPipeline() (*providers.Pipeline, func(), error) {
	chain, err := providers.NewChain(r.config.Credentials, r.logger)
	if err != nil {
		return nil, nil, err
	}
	resolver := providers.NewResolver(r.config.Credentials, r.logger)

	db, repo, err := r.openDatabase()
	if err != nil {
		// Degrade to live lookups rather than refusing to run.
		r.logger.Warn("cache store unavailable, lookups will not persist", "err", err)
	}

	closer := func() {}
	var store providers.CacheStore
	if repo != nil {
		store = repo
		closer = func() { db.Close() }
	}

	return providers.NewPipeline(chain, resolver, store, r.logger), closer, nil
}

// buildEnricher assembles the enrichment engine over a fresh pipeline.
func (r *Runner) buildEnricher() (*tasks.Enricher, func(), error) {
	pipeline, closer, err := r.buildPipeline()
	if err != nil {
		return nil, nil, err
	}
	enricher := tasks.NewEnricher(pipeline, r.logger, tasks.EnrichOpts{
		BpmBatchSize:   r.config.Enrich.BpmBatchSize,
		GenreBatchSize: r.config.Enrich.GenreBatchSize,
		GenreWorkers:   r.config.Enrich.GenreWorkers,
	})
	return enricher, closer, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
