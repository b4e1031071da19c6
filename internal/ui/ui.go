package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/desertthunder/spotlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GenreListView ViewState = iota
	LookupView
	TrackListView
)

// Opener opens a URL outside the terminal.
type Opener func(ctx context.Context, target string) error

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine tasks.Engine
	creds  models.Credentials
	artist string
	open   Opener

	width       int
	height      int
	genreList   list.Model
	trackList   list.Model
	genresReady bool
	tracksReady bool
	genre       string

	progressChan chan tasks.ProgressUpdate
	doneChan     chan lookupCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.RecommendationsResult

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model. artist, when not blank, seeds every lookup alongside the chosen genre.
func NewModel(ctx context.Context, engine tasks.Engine, creds models.Credentials, artist string) *Model {
	return &Model{
		ctx:    ctx,
		view:   GenreListView,
		engine: engine,
		creds:  creds,
		artist: artist,
		open:   shared.OpenBrowser,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// WithOpener replaces the function used to open album and preview links.
func (m *Model) WithOpener(open Opener) *Model {
	m.open = open
	return m
}

// Init initializes the TUI by fetching the genre seeds.
func (m *Model) Init() tea.Cmd {
	return m.fetchGenres()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.genresReady {
			m.genreList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.tracksReady {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GenreListView:
			return m.handleGenreListKeys(msg)
		case LookupView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TrackListView:
			return m.handleTrackListKeys(msg)
		}

	case genresFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.genres))
		for i, g := range msg.genres {
			items[i] = genreItem(g)
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		m.genreList = list.New(items, delegate, 0, 0)
		m.genreList.Title = "Genres"
		if m.width > 0 {
			m.genreList.SetSize(m.width-4, m.height-8)
		}
		m.genresReady = true
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForLookup()

	case lookupCompleteMsg:
		m.progressChan = nil
		m.doneChan = nil
		if msg.err != nil {
			m.status = styles.err.Render(shared.UserMessage(msg.err))
			m.view = GenreListView
			return m, nil
		}
		m.result = msg.result
		items := make([]list.Item, len(msg.result.Rows))
		for i, row := range msg.result.Rows {
			items[i] = trackItem{row: row}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Recommended for '%s'", m.genre)
		if m.width > 0 {
			m.trackList.SetSize(m.width-4, m.height-8)
		}
		m.tracksReady = true
		m.status = styles.ok.Render(fmt.Sprintf("Found %d tracks", len(msg.result.Rows)))
		m.view = TrackListView
		return m, nil

	case browserOpenedMsg:
		if msg.err != nil {
			m.status = styles.warn.Render(fmt.Sprintf("Could not open browser: %v", msg.err))
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %s\n\nPress q to quit", shared.UserMessage(m.err)))
	}

	switch m.view {
	case GenreListView:
		return m.renderGenreList()
	case LookupView:
		return m.renderLookup()
	case TrackListView:
		return m.renderTrackList()
	default:
		return ""
	}
}

func (m *Model) handleGenreListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.genresReady {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.genreList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.genreList, cmd = m.genreList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.genreList.SelectedItem().(genreItem); ok {
			m.genre = string(selected)
			m.view = LookupView
			m.status = ""
			return m, m.startLookup()
		}
	}

	var cmd tea.Cmd
	m.genreList, cmd = m.genreList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = GenreListView
		m.status = ""
		return m, nil
	case "enter":
		if selected, ok := m.trackList.SelectedItem().(trackItem); ok && selected.row.ExternalURL != "" {
			return m, m.openURL(selected.row.ExternalURL)
		}
		return m, nil
	case "p":
		if selected, ok := m.trackList.SelectedItem().(trackItem); ok {
			if selected.row.PreviewURL == nil {
				m.status = styles.warn.Render(formatter.NoPreviewText)
				return m, nil
			}
			return m, m.openURL(*selected.row.PreviewURL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == GenreListView && m.genresReady:
		m.genreList, cmd = m.genreList.Update(msg)
	case m.view == TrackListView && m.tracksReady:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchGenres() tea.Cmd {
	return func() tea.Msg {
		opts, err := m.engine.FormOptions(m.ctx, m.creds, nil)
		if err != nil {
			return genresFetchedMsg{err: err}
		}
		return genresFetchedMsg{genres: opts.Genres}
	}
}

func (m *Model) startLookup() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan lookupCompleteMsg, 1)
	m.progressChan, m.doneChan = progress, done
	m.progress = tasks.ProgressUpdate{}

	genre, artist := m.genre, m.artist
	go func() {
		result, err := m.engine.Recommendations(m.ctx, m.creds, artist, genre, progress)
		done <- lookupCompleteMsg{result: result, err: err}
		close(progress)
	}()

	return m.waitForLookup()
}

// waitForLookup delivers the next progress update, or the result once the lookup has finished.
func (m *Model) waitForLookup() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update, ok := <-progress:
			if ok {
				return progressUpdateMsg(update)
			}
			return <-done
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) openURL(target string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg{err: m.open(m.ctx, target)}
	}
}

func (m *Model) renderGenreList() string {
	if !m.genresReady {
		return styles.help.Render("Loading genres...")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	view := m.genreList.View()
	if m.artist != "" {
		view = styles.help.Render(fmt.Sprintf("Seeded by artist: %s", m.artist)) + "\n" + view
	}
	if m.status != "" {
		view += "\n" + m.status
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderLookup() string {
	title := styles.title.Render(fmt.Sprintf("Finding tracks for '%s'", m.genre))

	phase := "Starting..."
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("(%d/%d) %s", m.progress.Step, m.progress.Total, m.progress.Message)
	}
	return fmt.Sprintf("%s\n\n%s", title, phase)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.open, m.keys.preview, m.keys.back, m.keys.quit}
	view := m.trackList.View()
	if m.status != "" {
		view += "\n" + m.status
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(helpKeys))
}
