// package formatter provides track list import and enriched-library export (CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/shared"
)

// TrackImport is the result of reading a track list from disk: the
// tracks plus any externally known tempos found alongside them, keyed
// by generated track ID.
type TrackImport struct {
	Tracks []models.Track
	Seeds  map[string]float64
}

// ReadTrackList loads a track list from a JSON or CSV file, inferred
// from the extension. Imported tracks carry no service identifier, so
// each gets a generated ID.
func ReadTrackList(path string) (*TrackImport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track list: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseCSVTracks(data)
	case ".json":
		return parseJSONTracks(data)
	default:
		return nil, fmt.Errorf("%w: unsupported track list format %q", shared.ErrInvalidInput, filepath.Ext(path))
	}
}

type jsonTrack struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album"`
	Duration int      `json:"duration"`
	BPM      *float64 `json:"bpm"`
}

func parseJSONTracks(data []byte) (*TrackImport, error) {
	var raw []jsonTrack
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse track list JSON: %w", err)
	}

	result := &TrackImport{
		Tracks: make([]models.Track, 0, len(raw)),
		Seeds:  make(map[string]float64),
	}
	for i, entry := range raw {
		name := entry.Name
		if name == "" {
			name = entry.Title
		}
		if name == "" || entry.Artist == "" {
			return nil, fmt.Errorf("%w: track %d is missing a name or artist", shared.ErrInvalidInput, i+1)
		}

		id := entry.ID
		if id == "" {
			id = shared.GenerateID()
		}
		result.Tracks = append(result.Tracks, models.Track{
			ID:       id,
			Name:     name,
			Artist:   entry.Artist,
			Album:    entry.Album,
			Duration: entry.Duration,
		})
		if entry.BPM != nil && *entry.BPM > 0 {
			result.Seeds[id] = *entry.BPM
		}
	}
	return result, nil
}

// parseCSVTracks reads a headered CSV. Title and artist columns are
// required; album, duration and bpm are picked up when present.
func parseCSVTracks(data []byte) (*TrackImport, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse track list CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: track list CSV has no data rows", shared.ErrInvalidInput)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	titleCol, ok := columns["title"]
	if !ok {
		titleCol, ok = columns["name"]
	}
	artistCol, artistOK := columns["artist"]
	if !ok || !artistOK {
		return nil, fmt.Errorf("%w: track list CSV needs title and artist columns", shared.ErrInvalidInput)
	}

	cell := func(row []string, col int, present bool) string {
		if !present || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}
	albumCol, hasAlbum := columns["album"]
	durationCol, hasDuration := columns["duration"]
	bpmCol, hasBPM := columns["bpm"]

	result := &TrackImport{
		Tracks: make([]models.Track, 0, len(rows)-1),
		Seeds:  make(map[string]float64),
	}
	for i, row := range rows[1:] {
		title := cell(row, titleCol, true)
		artist := cell(row, artistCol, true)
		if title == "" || artist == "" {
			return nil, fmt.Errorf("%w: row %d is missing a title or artist", shared.ErrInvalidInput, i+2)
		}

		track := models.Track{
			ID:     shared.GenerateID(),
			Name:   title,
			Artist: artist,
			Album:  cell(row, albumCol, hasAlbum),
		}
		if raw := cell(row, durationCol, hasDuration); raw != "" {
			if duration, err := strconv.Atoi(raw); err == nil {
				track.Duration = duration
			}
		}
		if raw := cell(row, bpmCol, hasBPM); raw != "" {
			if bpm, err := strconv.ParseFloat(raw, 64); err == nil && bpm > 0 {
				result.Seeds[track.ID] = bpm
			}
		}
		result.Tracks = append(result.Tracks, track)
	}
	return result, nil
}

// ExportToCSV converts enriched tracks to CSV with columns: Title, Artist, Album, BPM, Key, Camelot, Genres, Vibe
func ExportToCSV(tracks []models.EnrichedTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "BPM", "Key", "Camelot", "Genres", "Vibe"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.Name,
			track.Artist,
			track.Album,
			floatCell(track.BPM),
			stringCell(track.MusicalKey),
			stringCell(track.CamelotKey),
			strings.Join(track.Genres, "; "),
			stringCell(track.Vibe),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts enriched tracks to an indented JSON array.
func ExportToJSON(tracks []models.EnrichedTrack) ([]byte, error) {
	return shared.MarshalJSON(tracks, true)
}

// WriteExport writes enriched tracks to path in the given format
// ("csv" or "json"; anything else defaults to json).
func WriteExport(tracks []models.EnrichedTrack, format, path string) error {
	var data []byte
	var err error
	switch format {
	case "csv":
		data, err = ExportToCSV(tracks)
	default:
		data, err = ExportToJSON(tracks)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
