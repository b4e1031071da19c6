// Package ui implements an interactive terminal browser for recommendations using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [GenreListView] : Browse and filter the available genre seeds
//  2. [LookupView] : Monitor progress while recommendations are fetched
//  3. [TrackListView] : Browse the recommended tracks and open them in a browser
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the lookup engine, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, p, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
