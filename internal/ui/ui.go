package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lancebshr/djprep/internal/models"
	"github.com/lancebshr/djprep/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EnrichView ViewState = iota
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	enricher     *tasks.Enricher
	tracks       []models.Track
	seeds        map[string]float64
	width        int
	height       int
	resultList   list.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.EnrichResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	quit  key.Binding
	abort key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		abort: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "abort"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.abort, k.quit},
	}
}

// enrichedItem wraps [models.EnrichedTrack] to implement list.Item.
type enrichedItem struct {
	track models.EnrichedTrack
}

func (i enrichedItem) FilterValue() string { return i.track.Artist + " " + i.track.Name }
func (i enrichedItem) Title() string {
	return fmt.Sprintf("%s - %s", i.track.Artist, i.track.Name)
}

func (i enrichedItem) Description() string {
	parts := make([]string, 0, 4)
	if i.track.BPM != nil {
		parts = append(parts, fmt.Sprintf("%.1f BPM", *i.track.BPM))
	}
	if i.track.CamelotKey != nil {
		parts = append(parts, *i.track.CamelotKey)
	}
	if len(i.track.Genres) > 0 {
		parts = append(parts, strings.Join(i.track.Genres, ", "))
	}
	if i.track.Vibe != nil {
		parts = append(parts, *i.track.Vibe)
	}
	if len(parts) == 0 {
		return "no metadata resolved"
	}
	return strings.Join(parts, " • ")
}

type progressUpdateMsg tasks.ProgressUpdate

type enrichCompleteMsg struct {
	result *tasks.EnrichResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, enricher *tasks.Enricher, tracks []models.Track, seeds map[string]float64) *Model {
	return &Model{
		ctx:      ctx,
		view:     EnrichView,
		enricher: enricher,
		tracks:   tracks,
		seeds:    seeds,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init kicks off the enrichment run.
func (m *Model) Init() tea.Cmd {
	return m.startEnrichment()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.resultList.Width() != 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EnrichView:
			return m.handleEnrichKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case enrichCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.progressChan = nil
		if m.result != nil {
			items := make([]list.Item, len(m.result.Tracks))
			for i, track := range m.result.Tracks {
				items[i] = enrichedItem{track: track}
			}
			m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.resultList.Title = fmt.Sprintf("Enriched Library (%d tracks)", m.result.Total)
			m.resultList.SetSize(m.width-4, m.height-8)
		}
		m.view = ResultView
		return m, nil
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EnrichView:
		return m.renderEnrich()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEnrichKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.enricher.Stop()
		return m, tea.Quit
	case "esc":
		m.enricher.Stop()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) startEnrichment() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.enricher.Run(m.ctx, m.tracks, m.seeds, progressChan)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan := m.progressChan
	return func() tea.Msg {
		if progressChan == nil {
			return enrichCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-progressChan
		if !ok {
			return enrichCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderEnrich() string {
	title := styles.title.Render("Enriching Library")

	var phase string
	switch m.progress.Phase {
	case tasks.Seed:
		phase = "Seeding imported tempo data..."
	case tasks.LookupBPM:
		phase = fmt.Sprintf("Resolving BPM (%d/%d)", m.progress.Completed, m.progress.Total)
	case tasks.LookupGenres:
		phase = fmt.Sprintf("Resolving genres (%d/%d, %d tagged)",
			m.progress.Completed, m.progress.Total, m.progress.Tagged)
	default:
		phase = "Processing..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.abort, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, helpView)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	var header string
	if m.result.Superseded {
		header = styles.warn.Render("Run aborted; showing partial results")
	} else {
		header = styles.ok.Render(fmt.Sprintf("✓ Done: %d/%d with BPM, %d/%d tagged",
			m.result.WithBPM, m.result.Total, m.result.Tagged, m.result.Total))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, m.resultList.View(), helpView)
}
