// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/lancebshr/djprep/internal/models"
)

// MockLookupClient is a test double for tasks.LookupClient, answering
// every request with fixed data.
type MockLookupClient struct {
	BPM    float64
	Genres []string
}

func (m *MockLookupClient) LookupBpm(ctx context.Context, requests []models.LookupRequest) ([]models.LookupResult, error) {
	results := make([]models.LookupResult, 0, len(requests))
	for _, request := range requests {
		result := models.EmptyResult(request.TrackID, "mock")
		if m.BPM > 0 {
			bpm := m.BPM
			result.BPM = &bpm
		}
		results = append(results, result)
	}
	return results, nil
}

func (m *MockLookupClient) LookupGenres(ctx context.Context, requests []models.LookupRequest) ([]models.TrackGenres, error) {
	results := make([]models.TrackGenres, 0, len(requests))
	for _, request := range requests {
		genres := m.Genres
		if genres == nil {
			genres = []string{}
		}
		results = append(results, models.TrackGenres{TrackID: request.TrackID, Genres: genres, Source: "mock"})
	}
	return results, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
