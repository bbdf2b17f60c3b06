package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/lancebshr/djprep/internal/shared"
	tu "github.com/lancebshr/djprep/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "enrich", "key", "cache", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %q, got %q", i, name, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "hello world" {
				t.Errorf("expected %q, got %q", "hello world", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlainln("count: %d", 3)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "\ncount: 3\n" {
				t.Errorf("expected %q, got %q", "\ncount: 3\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			if err := runner.writePlain("hello"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})
}

func TestKeyCommand(t *testing.T) {
	run := func(t *testing.T, args ...string) (string, error) {
		t.Helper()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		cmd := keyCommand(runner)
		err := cmd.Run(context.Background(), append([]string{"key"}, args...))
		return output.String(), err
	}

	t.Run("converts full key notation", func(t *testing.T) {
		out, err := run(t, "A minor")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "8A\n" {
			t.Errorf("expected 8A, got %q", out)
		}
	})

	t.Run("converts short notation", func(t *testing.T) {
		out, err := run(t, "F#m")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "11A\n" {
			t.Errorf("expected 11A, got %q", out)
		}
	})

	t.Run("passes camelot codes through uppercased", func(t *testing.T) {
		out, err := run(t, "8b")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "8B\n" {
			t.Errorf("expected 8B, got %q", out)
		}
	})

	t.Run("converts pitch class", func(t *testing.T) {
		out, err := run(t, "--pitch-class", "9", "--minor")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out != "8A\n" {
			t.Errorf("expected 8A, got %q", out)
		}
	})

	t.Run("rejects pitch class out of range", func(t *testing.T) {
		_, err := run(t, "--pitch-class", "12")
		if err == nil {
			t.Fatal("expected error for pitch class out of range")
		}
	})

	t.Run("rejects unrecognized key", func(t *testing.T) {
		_, err := run(t, "H sharp")
		if err == nil {
			t.Fatal("expected error for unrecognized key")
		}
	})

	t.Run("requires an argument", func(t *testing.T) {
		_, err := run(t)
		if err == nil {
			t.Fatal("expected error when no key given")
		}
	})
}
