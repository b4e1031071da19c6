package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/repositories"
	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/shared"
)

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	header := rec.Header().Get(RequestIDHeader)
	if !shared.IsID(header) {
		t.Errorf("expected a uuid header, got %q", header)
	}
	if seen != header {
		t.Errorf("context ID %q does not match header %q", seen, header)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	out := buf.String()
	for _, want := range []string{"WARN", "path=/teapot", "status=418", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log line %q", want, out)
		}
	}
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("Limits Per Client", func(t *testing.T) {
		l := NewClientLimiter(1, 2, 0, 0)
		defer l.Stop()
		h := RateLimit(l)(ok)

		codes := make([]int, 0, 3)
		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			codes = append(codes, rec.Code)
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("unexpected status codes %v", codes)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected another client to pass, got %d", rec.Code)
		}
	})

	t.Run("Idle Clients Are Forgotten", func(t *testing.T) {
		l := NewClientLimiter(0.001, 1, 20*time.Millisecond, 0)
		defer l.Stop()

		if !l.Allow("198.51.100.7") {
			t.Fatal("expected the first request to pass")
		}
		if l.Allow("198.51.100.7") {
			t.Fatal("expected the bucket to be empty")
		}

		time.Sleep(50 * time.Millisecond)
		if !l.Allow("198.51.100.7") {
			t.Error("expected an idle client to get a fresh bucket")
		}
	})

	t.Run("Active Clients Keep Their Bucket", func(t *testing.T) {
		l := NewClientLimiter(0.001, 1, 500*time.Millisecond, 0)
		defer l.Stop()

		l.Allow("198.51.100.7")
		for range 5 {
			time.Sleep(60 * time.Millisecond)
			if l.Allow("198.51.100.7") {
				t.Fatal("expected a busy client to stay limited")
			}
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		h := RateLimit(nil)(ok)
		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		}
	})
}

func TestSessionMiddleware(t *testing.T) {
	store := repositories.NewMemoryStore()
	manager := session.NewManager(store, "", false)

	protected := LoadSession(manager, log.New(&bytes.Buffer{}))(RequireSession(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(session.FromContext(r.Context()).Credentials().ClientID))
		},
	)))

	t.Run("Redirects Without Session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("Loads Session", func(t *testing.T) {
		login := httptest.NewRecorder()
		_, err := manager.Start(login, httptest.NewRequest(http.MethodPost, "/login", nil), models.Credentials{ClientID: "id1", ClientSecret: "sec1"})
		if err != nil {
			t.Fatalf("failed to start session: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != "id1" {
			t.Errorf("expected 200 id1, got %d %q", rec.Code, rec.Body.String())
		}
	})
}
