package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lancebshr/djprep/internal/models"
)

// TrackCacheRepository implements providers.CacheStore on SQLite.
//
// Writes merge rather than replace: each nullable column only takes the
// new value when it is non-NULL, so a genre-only write can never erase
// a previously cached BPM and vice versa.
type TrackCacheRepository struct {
	db *sql.DB
}

// NewTrackCacheRepository creates a TrackCacheRepository with the given database connection
func NewTrackCacheRepository(db *sql.DB) *TrackCacheRepository {
	return &TrackCacheRepository{db: db}
}

// GetBatch retrieves the cache records for the given lookup keys.
// Missing keys are simply absent from the result map.
func (r *TrackCacheRepository) GetBatch(ctx context.Context, keys []string) (map[string]models.CacheRecord, error) {
	if len(keys) == 0 {
		return map[string]models.CacheRecord{}, nil
	}

	placeholders := strings.Repeat("?,", len(keys)-1) + "?"
	query := fmt.Sprintf(`
		SELECT lookup_key, track_name, artist_name, bpm, musical_key, camelot_key, genres, bpm_source, genre_source, updated_at
		FROM track_cache
		WHERE lookup_key IN (%s)
	`, placeholders)

	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track cache: %w", err)
	}
	defer rows.Close()

	found := make(map[string]models.CacheRecord, len(keys))
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found[record.LookupKey] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read track cache rows: %w", err)
	}
	return found, nil
}

// UpsertBatch writes the records in one transaction, merging into any
// existing row per key.
func (r *TrackCacheRepository) UpsertBatch(ctx context.Context, records []models.CacheRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO track_cache (lookup_key, track_name, artist_name, bpm, musical_key, camelot_key, genres, bpm_source, genre_source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lookup_key) DO UPDATE SET
			track_name = excluded.track_name,
			artist_name = excluded.artist_name,
			bpm = COALESCE(excluded.bpm, track_cache.bpm),
			musical_key = COALESCE(excluded.musical_key, track_cache.musical_key),
			camelot_key = COALESCE(excluded.camelot_key, track_cache.camelot_key),
			genres = COALESCE(excluded.genres, track_cache.genres),
			bpm_source = COALESCE(excluded.bpm_source, track_cache.bpm_source),
			genre_source = COALESCE(excluded.genre_source, track_cache.genre_source),
			updated_at = excluded.updated_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		genres, err := encodeGenres(record)
		if err != nil {
			return err
		}

		updatedAt := record.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}

		_, err = stmt.ExecContext(ctx,
			record.LookupKey,
			record.TrackName,
			record.ArtistName,
			record.BPM,
			record.MusicalKey,
			record.CamelotKey,
			genres,
			record.BpmSource,
			record.GenreSource,
			updatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert track %q: %w", record.LookupKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}
	return nil
}

// Count returns how many tracks the cache currently holds.
func (r *TrackCacheRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM track_cache").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count track cache: %w", err)
	}
	return count, nil
}

// encodeGenres serializes the genre list as a JSON array. A record
// without a genre answer stores NULL so the column stays mergeable; a
// checked-but-empty answer stores the empty array, which is a settled
// value, not a gap.
func encodeGenres(record models.CacheRecord) (*string, error) {
	if record.Genres == nil && record.GenreSource == nil {
		return nil, nil
	}
	genres := record.Genres
	if genres == nil {
		genres = []string{}
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("failed to encode genres for %q: %w", record.LookupKey, err)
	}
	s := string(encoded)
	return &s, nil
}

func scanRecord(rows *sql.Rows) (models.CacheRecord, error) {
	var record models.CacheRecord
	var genres *string
	err := rows.Scan(
		&record.LookupKey,
		&record.TrackName,
		&record.ArtistName,
		&record.BPM,
		&record.MusicalKey,
		&record.CamelotKey,
		&genres,
		&record.BpmSource,
		&record.GenreSource,
		&record.UpdatedAt,
	)
	if err != nil {
		return record, fmt.Errorf("failed to scan track cache row: %w", err)
	}
	if genres != nil {
		if err := json.Unmarshal([]byte(*genres), &record.Genres); err != nil {
			return record, fmt.Errorf("failed to decode genres for %q: %w", record.LookupKey, err)
		}
		if record.Genres == nil {
			record.Genres = []string{}
		}
	}
	return record, nil
}
