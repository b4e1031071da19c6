// package session ties browser cookies to stored credentials
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

const (
	DefaultCookieName = "spotlist_session"

	// DefaultTouchInterval is how stale a session's UpdatedAt may get before [Manager.Load] refreshes it.
	DefaultTouchInterval = time.Minute
)

// Store persists sessions. Implemented by repositories.SessionRepository and repositories.MemoryStore.
type Store = models.Repository[*models.Session]

// Manager reads and writes the session cookie. The cookie carries only the session ID.
type Manager struct {
	store      Store
	cookieName string
	secure     bool

	// TouchInterval bounds how often a loaded session is written back to refresh its UpdatedAt.
	TouchInterval time.Duration
}

// NewManager creates a Manager. An empty cookieName means [DefaultCookieName].
func NewManager(store Store, cookieName string, secure bool) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{store: store, cookieName: cookieName, secure: secure, TouchInterval: DefaultTouchInterval}
}

// Load returns the session named by the request cookie and records it as used,
// so that pruning only removes idle sessions.
//
// A missing, malformed or unknown cookie yields an error wrapping [shared.ErrSessionNotFound].
func (m *Manager) Load(r *http.Request) (*models.Session, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: no cookie", shared.ErrSessionNotFound)
	}
	if !shared.IsID(c.Value) {
		return nil, fmt.Errorf("%w: malformed cookie", shared.ErrSessionNotFound)
	}

	s, err := m.store.Get(r.Context(), c.Value)
	if err != nil {
		return nil, err
	}
	if time.Since(s.UpdatedAt()) >= m.TouchInterval {
		s.Touch()
		if err := m.store.Update(r.Context(), s); err != nil {
			return nil, fmt.Errorf("failed to touch session: %w", err)
		}
	}
	return s, nil
}

// Start stores creds in a new session and sets its cookie, replacing any session the request already had.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, creds models.Credentials) (*models.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	if old, err := m.Load(r); err == nil {
		if err := m.store.Delete(r.Context(), old.ID()); err != nil {
			return nil, err
		}
	}

	s := models.NewSession(creds)
	if err := m.store.Create(r.Context(), s); err != nil {
		return nil, err
	}

	http.SetCookie(w, m.cookie(s.ID(), 0))
	return s, nil
}

// End deletes the request's session, if any, and expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	s, err := m.Load(r)
	switch {
	case err == nil:
		if err := m.store.Delete(r.Context(), s.ID()); err != nil {
			return err
		}
	case !errors.Is(err, shared.ErrSessionNotFound):
		return err
	}

	http.SetCookie(w, m.cookie("", -1))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by [WithSession], or nil.
func FromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(contextKey{}).(*models.Session)
	return s
}
