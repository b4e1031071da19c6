package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/session"
	"github.com/desertthunder/spotlist/internal/shared"
)

const maxFormBytes = 16 << 10

// parseForm caps the body size and parses the submitted form.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: could not read the submitted form", shared.ErrValidation)
	}
	return nil
}

// credentials returns the credentials of the session loaded by [LoadSession].
func credentials(r *http.Request) models.Credentials {
	if s := session.FromContext(r.Context()); s != nil {
		return s.Credentials()
	}
	return models.Credentials{}
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageLogin, pageData{Title: "Log in"})
}

// login stores the submitted credentials. They are not checked against Spotify until the first lookup.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.render(w, r, http.StatusBadRequest, pageLogin, pageData{Title: "Log in", Message: shared.UserMessage(err)})
		return
	}

	creds := models.Credentials{
		ClientID:     strings.TrimSpace(r.PostFormValue("client_id")),
		ClientSecret: strings.TrimSpace(r.PostFormValue("client_secret")),
	}

	if _, err := s.sessions.Start(w, r, creds); err != nil {
		if errors.Is(err, shared.ErrValidation) {
			s.render(w, r, http.StatusBadRequest, pageLogin, pageData{Title: "Log in", Message: shared.UserMessage(err)})
			return
		}
		s.logger.Error("failed to start session", "error", err, "request_id", RequestIDFromContext(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	s.logger.Info("session started", "client_id", creds.ClientID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(w, r); err != nil {
		s.logger.Error("failed to end session", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	opts, err := s.engine.FormOptions(r.Context(), credentials(r), nil)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := pageData{Title: "Home", Options: opts}
	if opts.CountriesErr != nil {
		data.Message = "The country list is unavailable right now. Enter a two letter country code instead."
	}
	s.render(w, r, http.StatusOK, pageIndex, data)
}

func (s *Server) topTracks(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}

	result, err := s.engine.TopTracks(r.Context(), credentials(r), r.PostFormValue("formArtist"), r.PostFormValue("countrycode"), nil)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, pageResults, pageData{
		Title:      "Top 10",
		Heading:    "Top 10",
		Subheading: fmt.Sprintf("The most popular tracks by %s in %s right now.", result.Artist.Name, result.Country),
		Fragment:   result.Fragment,
	})
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}

	result, err := s.engine.Recommendations(r.Context(), credentials(r), r.PostFormValue("recommendationArtist"), r.PostFormValue("formGenres"), nil)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	sub := fmt.Sprintf("Tracks recommended for the genre %s", result.Genre)
	if result.Artist != nil {
		sub += fmt.Sprintf(" and the artist %s", result.Artist.Name)
	}

	s.render(w, r, http.StatusOK, pageResults, pageData{
		Title:      "Recommendations",
		Heading:    "Recommendations",
		Subheading: sub + ".",
		Fragment:   result.Fragment,
	})
}

func (s *Server) newReleases(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.NewReleases(r.Context(), credentials(r), r.URL.Query().Get("country"), nil)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	sub := "Albums released recently in every market."
	if result.Country != "" {
		sub = fmt.Sprintf("Albums released recently in %s.", result.Country)
	}

	s.render(w, r, http.StatusOK, pageResults, pageData{
		Title:      "New releases",
		Heading:    "New releases",
		Subheading: sub,
		Fragment:   result.Fragment,
	})
}
