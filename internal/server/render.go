package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/shared"
	"github.com/desertthunder/spotlist/internal/tasks"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageLogin   = "login"
	pageIndex   = "index"
	pageResults = "results"
	pageError   = "error"
)

// pageData is passed to every page template.
type pageData struct {
	Title     string
	LoggedIn  bool
	Message   string
	RequestID string
	Status    int

	Options *tasks.FormOptions

	Heading    string
	Subheading string
	Fragment   template.HTML
}

// pages holds one template set per page, each parsed together with the base layout.
type pages struct {
	sets map[string]*template.Template
}

func loadPages() (*pages, error) {
	p := &pages{sets: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageIndex, pageResults, pageError} {
		tpl, err := template.ParseFS(templateFS, "templates/base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		p.sets[name] = tpl
	}
	return p, nil
}

// render executes a page into a buffer first so a failing template never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tpl, ok := s.pages.sets[name]
	if !ok {
		s.logger.Error("unknown page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	data.LoggedIn = session.FromContext(r.Context()) != nil
	data.RequestID = RequestIDFromContext(r.Context())

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.logger.Error("template execution failed", "page", name, "error", err, "request_id", data.RequestID)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(buf.Bytes())
	}
}

// renderError maps err to a status and a message that is safe to show.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := shared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("lookup failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFromContext(r.Context()))
	} else {
		s.logger.Warn("lookup rejected", "path", r.URL.Path, "error", err, "request_id", RequestIDFromContext(r.Context()))
	}

	s.render(w, r, status, pageError, pageData{
		Title:   fmt.Sprintf("%d Error", status),
		Status:  status,
		Message: shared.UserMessage(err),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, pageError, pageData{
		Title:   "404 Error",
		Status:  http.StatusNotFound,
		Message: "The page you were looking for does not exist.",
	})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusMethodNotAllowed, pageError, pageData{
		Title:   "405 Error",
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("%s is not allowed here.", r.Method),
	})
}

// staticHandler serves the embedded stylesheet.
type staticHandler struct {
	files http.Handler
}

func newStaticHandler() *staticHandler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return &staticHandler{files: http.StripPrefix("/static/", http.FileServerFS(sub))}
}

func (h *staticHandler) Routes() []string {
	return []string{"/static/"}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.files.ServeHTTP(w, r)
}
