package ui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotlist/internal/formatter"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/services"
	"github.com/desertthunder/spotlist/internal/tasks"
	tu "github.com/desertthunder/spotlist/internal/testing"
)

var validCreds = models.Credentials{ClientID: tu.ValidClientID, ClientSecret: tu.ValidClientSecret}

func newTestModel(t *testing.T, fake *tu.FakeSpotify, creds models.Credentials, opened *[]string) *Model {
	t.Helper()
	engine := tasks.NewLookupEngine(
		services.NewClientCredentials(fake.TokenURL(), nil),
		services.NewSpotifyService(fake.APIURL(), nil),
		services.NewReferenceService(fake.ReferenceURL(), nil),
		nil,
	)
	return NewModel(context.Background(), engine, creds, "").WithOpener(func(_ context.Context, target string) error {
		*opened = append(*opened, target)
		return nil
	})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and then drains the resulting commands until the lookup settles.
func send(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	for range 20 {
		if cmd == nil || m.view != LookupView {
			return cmd
		}
		_, cmd = m.Update(cmd())
	}
	t.Fatal("lookup did not settle")
	return nil
}

func loadGenres(t *testing.T, m *Model) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m.Update(m.Init()())
	if !m.genresReady {
		t.Fatalf("expected genres to load, got error %v", m.err)
	}
}

func TestModel(t *testing.T) {
	t.Run("Genre List", func(t *testing.T) {
		var opened []string
		m := newTestModel(t, tu.NewFakeSpotify(t), validCreds, &opened)

		if !strings.Contains(m.View(), "Loading genres") {
			t.Errorf("expected loading view, got %q", m.View())
		}

		loadGenres(t, m)
		view := m.View()
		for _, g := range []string{"acoustic", "hip-hop", "rock"} {
			if !strings.Contains(view, g) {
				t.Errorf("expected %s in view", g)
			}
		}
	})

	t.Run("Recommendations", func(t *testing.T) {
		var opened []string
		fake := tu.NewFakeSpotify(t)
		m := newTestModel(t, fake, validCreds, &opened)
		loadGenres(t, m)

		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.view != TrackListView {
			t.Fatalf("expected track list, got view %d (status %q)", m.view, m.status)
		}
		if m.result == nil || m.result.Genre != "rock" || len(m.result.Rows) != 2 {
			t.Fatalf("unexpected result %+v", m.result)
		}
		if q := fake.Queries(tu.RouteRecommendations)[0]; !strings.Contains(q, "seed_genres=rock") {
			t.Errorf("unexpected query %q", q)
		}
		if view := m.View(); !strings.Contains(view, "Song") || !strings.Contains(view, "Found 2 tracks") {
			t.Errorf("unexpected view %q", view)
		}

		if cmd := send(t, m, keyRunes("p")); cmd != nil {
			m.Update(cmd())
		}
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
		if cmd := send(t, m, keyRunes("p")); cmd != nil {
			t.Error("expected no command for a track without preview")
		}
		if !strings.Contains(m.status, formatter.NoPreviewText) {
			t.Errorf("expected no preview status, got %q", m.status)
		}
		if cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			m.Update(cmd())
		}

		want := []string{"https://p.scdn.co/mp3-preview/r1", "https://open.spotify.com/album/y"}
		if len(opened) != 2 || opened[0] != want[0] || opened[1] != want[1] {
			t.Errorf("expected %v to be opened, got %v", want, opened)
		}

		send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != GenreListView {
			t.Errorf("expected genre list after esc, got %d", m.view)
		}
	})

	t.Run("Lookup Failure", func(t *testing.T) {
		var opened []string
		fake := tu.NewFakeSpotify(t)
		fake.Handle(tu.RouteRecommendations, func(w http.ResponseWriter, r *http.Request) {
			tu.JSON(w, http.StatusInternalServerError, `{"error":{"status":500,"message":"boom"}}`)
		})
		m := newTestModel(t, fake, validCreds, &opened)
		loadGenres(t, m)

		send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != GenreListView {
			t.Errorf("expected to return to the genre list, got %d", m.view)
		}
		if !strings.Contains(m.View(), "temporarily unavailable") {
			t.Errorf("expected upstream message, got %q", m.View())
		}
	})

	t.Run("Rejected Credentials", func(t *testing.T) {
		var opened []string
		m := newTestModel(t, tu.NewFakeSpotify(t), models.Credentials{ClientID: "bad", ClientSecret: "bad"}, &opened)

		m.Update(m.Init()())
		if !strings.Contains(m.View(), "client credentials") {
			t.Errorf("expected credentials error, got %q", m.View())
		}

		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
