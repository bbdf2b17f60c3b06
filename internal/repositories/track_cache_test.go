package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func ptr[T any](v T) *T { return &v }

func TestTrackCacheRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a full record", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		record := models.CacheRecord{
			LookupKey:   "aphex twin:windowlicker",
			TrackName:   "Windowlicker",
			ArtistName:  "Aphex Twin",
			BPM:         ptr(137.5),
			MusicalKey:  ptr("C#m"),
			CamelotKey:  ptr("12A"),
			Genres:      []string{"electronic"},
			BpmSource:   ptr("getsongbpm"),
			GenreSource: ptr("musicbrainz"),
			UpdatedAt:   time.Now().UTC(),
		}

		if err := repo.UpsertBatch(ctx, []models.CacheRecord{record}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		found, err := repo.GetBatch(ctx, []string{record.LookupKey, "never:stored"})
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if len(found) != 1 {
			t.Fatalf("expected 1 record, got %d", len(found))
		}

		got := found[record.LookupKey]
		if got.BPM == nil || *got.BPM != 137.5 {
			t.Errorf("bpm = %v, want 137.5", got.BPM)
		}
		if got.CamelotKey == nil || *got.CamelotKey != "12A" {
			t.Errorf("camelot = %v, want 12A", got.CamelotKey)
		}
		if len(got.Genres) != 1 || got.Genres[0] != "electronic" {
			t.Errorf("genres = %v", got.Genres)
		}
		if got.GenreSource == nil || *got.GenreSource != "musicbrainz" {
			t.Errorf("genre source = %v", got.GenreSource)
		}
	})

	t.Run("merge keeps fields the new record lacks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		key := "daft punk:one more time"

		bpmOnly := models.CacheRecord{
			LookupKey:  key,
			TrackName:  "One More Time",
			ArtistName: "Daft Punk",
			BPM:        ptr(123.0),
			BpmSource:  ptr("soundnet"),
		}
		if err := repo.UpsertBatch(ctx, []models.CacheRecord{bpmOnly}); err != nil {
			t.Fatalf("failed to upsert bpm record: %v", err)
		}

		genresOnly := models.CacheRecord{
			LookupKey:   key,
			TrackName:   "One More Time",
			ArtistName:  "Daft Punk",
			Genres:      []string{"house"},
			GenreSource: ptr("spotify"),
		}
		if err := repo.UpsertBatch(ctx, []models.CacheRecord{genresOnly}); err != nil {
			t.Fatalf("failed to upsert genre record: %v", err)
		}

		found, err := repo.GetBatch(ctx, []string{key})
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		got := found[key]
		if got.BPM == nil || *got.BPM != 123.0 {
			t.Errorf("genre write erased bpm, got %v", got.BPM)
		}
		if len(got.Genres) != 1 || got.Genres[0] != "house" {
			t.Errorf("genres = %v", got.Genres)
		}
		if got.BpmSource == nil || *got.BpmSource != "soundnet" {
			t.Errorf("bpm source = %v", got.BpmSource)
		}
	})

	t.Run("checked but empty genres is a settled answer", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		key := "obscure act:untitled"

		record := models.CacheRecord{
			LookupKey:   key,
			TrackName:   "Untitled",
			ArtistName:  "Obscure Act",
			Genres:      []string{},
			GenreSource: ptr("musicbrainz"),
		}
		if err := repo.UpsertBatch(ctx, []models.CacheRecord{record}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		found, err := repo.GetBatch(ctx, []string{key})
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		got := found[key]
		if !got.HasGenreAnswer() {
			t.Error("stored empty genre answer came back unsettled")
		}
		if got.Genres == nil || len(got.Genres) != 0 {
			t.Errorf("genres = %v, want empty non-nil", got.Genres)
		}
	})

	t.Run("bpm-only record does not settle the genre question", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		key := "avicii:levels"

		record := models.CacheRecord{
			LookupKey:  key,
			TrackName:  "Levels",
			ArtistName: "Avicii",
			BPM:        ptr(126.0),
			BpmSource:  ptr("getsongbpm"),
		}
		if err := repo.UpsertBatch(ctx, []models.CacheRecord{record}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		found, err := repo.GetBatch(ctx, []string{key})
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if found[key].HasGenreAnswer() {
			t.Error("bpm-only record should not settle genres")
		}
	})

	t.Run("Count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackCacheRepository(db)
		records := []models.CacheRecord{
			{LookupKey: "a:one", TrackName: "One", ArtistName: "A", BPM: ptr(100.0)},
			{LookupKey: "b:two", TrackName: "Two", ArtistName: "B", BPM: ptr(110.0)},
		}
		if err := repo.UpsertBatch(ctx, records); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})
}
