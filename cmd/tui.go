package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lancebshr/djprep/internal/formatter"
	"github.com/lancebshr/djprep/internal/shared"
	"github.com/lancebshr/djprep/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for track enrichment.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")

	imported, err := formatter.ReadTrackList(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read track list: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/djprep-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	enricher, closer, err := r.buildEnricher()
	if err != nil {
		return fmt.Errorf("failed to build enrichment engine: %w", err)
	}
	defer closer()

	model := ui.NewModel(ctx, enricher, imported.Tracks, imported.Seeds)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
