package main

import (
	"context"
	"fmt"

	"github.com/lancebshr/djprep/internal/normalize"
	"github.com/lancebshr/djprep/internal/shared"
	"github.com/urfave/cli/v3"
)

// Key converts a musical key to Camelot wheel notation.
//
// Accepts key names ("A minor", "F#m", "8B") or a numeric pitch class
// via --pitch-class, the convention streaming audio feature exports use.
func (r *Runner) Key(ctx context.Context, cmd *cli.Command) error {
	pitchClass := cmd.Int("pitch-class")
	keyName := cmd.StringArg("key")

	if pitchClass >= 0 {
		code := normalize.FromPitchClass(pitchClass, !cmd.Bool("minor"))
		if code == "" {
			return fmt.Errorf("%w: pitch class must be 0-11, got %d", shared.ErrInvalidFlag, pitchClass)
		}
		return r.writePlain("%s\n", code)
	}

	if keyName == "" {
		return fmt.Errorf("%w: a key name or --pitch-class is required", shared.ErrMissingArgument)
	}

	code := normalize.ToCamelotKey(keyName)
	if code == "" {
		return fmt.Errorf("%w: unrecognized key %q", shared.ErrInvalidInput, keyName)
	}
	return r.writePlain("%s\n", code)
}
