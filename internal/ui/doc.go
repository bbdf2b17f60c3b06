// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives one enrichment run end to end:
//  1. [EnrichView] : Monitor real-time lookup progress per phase
//  2. [ResultView] : Browse the enriched library with tempo, key and genre data
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the Enricher, providing non-blocking
// status reporting while batches resolve.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual
// help displayed via charmbracelet/bubbles/help.
package ui
