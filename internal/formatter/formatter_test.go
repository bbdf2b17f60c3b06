package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lancebshr/djprep/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestReadTrackList(t *testing.T) {
	t.Run("JSON with seeded tempo", func(t *testing.T) {
		path := writeTemp(t, "tracks.json", `[
			{"name": "Strobe", "artist": "deadmau5", "album": "For Lack of a Better Name", "bpm": 128},
			{"title": "Xtal", "artist": "Aphex Twin"}
		]`)

		imported, err := ReadTrackList(path)
		if err != nil {
			t.Fatalf("ReadTrackList failed: %v", err)
		}
		if len(imported.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(imported.Tracks))
		}
		if imported.Tracks[0].ID == "" || imported.Tracks[1].ID == "" {
			t.Error("imported tracks should get generated IDs")
		}
		if imported.Tracks[1].Name != "Xtal" {
			t.Errorf("title alias not honored, got %q", imported.Tracks[1].Name)
		}
		if len(imported.Seeds) != 1 {
			t.Fatalf("expected 1 seed, got %d", len(imported.Seeds))
		}
		if bpm := imported.Seeds[imported.Tracks[0].ID]; bpm != 128 {
			t.Errorf("seed = %v, want 128", bpm)
		}
	})

	t.Run("CSV with optional columns", func(t *testing.T) {
		path := writeTemp(t, "tracks.csv",
			"Title,Artist,Album,Duration,BPM\n"+
				"One More Time,Daft Punk,Discovery,320,123\n"+
				"Archangel,Burial,Untrue,238,\n")

		imported, err := ReadTrackList(path)
		if err != nil {
			t.Fatalf("ReadTrackList failed: %v", err)
		}
		if len(imported.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(imported.Tracks))
		}
		if imported.Tracks[0].Duration != 320 {
			t.Errorf("duration = %d, want 320", imported.Tracks[0].Duration)
		}
		if len(imported.Seeds) != 1 {
			t.Errorf("expected 1 seed, got %d", len(imported.Seeds))
		}
	})

	t.Run("missing artist fails", func(t *testing.T) {
		path := writeTemp(t, "tracks.json", `[{"name": "Untitled"}]`)
		if _, err := ReadTrackList(path); err == nil {
			t.Error("expected error for track without artist")
		}
	})

	t.Run("unsupported extension fails", func(t *testing.T) {
		path := writeTemp(t, "tracks.yaml", "tracks: []")
		if _, err := ReadTrackList(path); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func enrichedFixture() []models.EnrichedTrack {
	bpm := 126.0
	key := "F minor"
	camelot := "4A"
	vibe := "groovy"
	return []models.EnrichedTrack{
		{
			Track:       models.Track{ID: "t1", Name: "Levels", Artist: "Avicii", Album: "True"},
			BPM:         &bpm,
			MusicalKey:  &key,
			CamelotKey:  &camelot,
			Genres:      []string{"house", "electronic"},
			Vibe:        &vibe,
			BpmSource:   "getsongbpm",
			GenreSource: "spotify",
		},
		{
			Track: models.Track{ID: "t2", Name: "Unknown Dub", Artist: "Nobody"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(enrichedFixture())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Title,Artist,Album,BPM,Key,Camelot,Genres,Vibe") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Levels,Avicii,True,126,F minor,4A,house; electronic,groovy") {
			t.Errorf("CSV missing enriched row, got: %s", output)
		}
		if !strings.Contains(output, "Unknown Dub,Nobody,,,,,,") {
			t.Errorf("CSV missing empty-field row, got: %s", output)
		}
	})

	t.Run("ExportToJSON round trips", func(t *testing.T) {
		data, err := ExportToJSON(enrichedFixture())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.EnrichedTrack
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].Name != "Levels" {
			t.Errorf("decoded = %+v", decoded)
		}
		if decoded[1].BPM != nil {
			t.Error("missing bpm must stay null in JSON")
		}
	})

	t.Run("WriteExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		if err := WriteExport(enrichedFixture(), "csv", path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}
		if !strings.Contains(string(data), "Levels") {
			t.Error("written export missing track data")
		}
	})
}
