package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlist/internal/shared"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(ctx context.Context, model T) error
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, model T) error
	Delete(ctx context.Context, id string) error
}

// Credentials are the client ID and secret used for the client-credentials grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate checks that both fields are present. Nothing else about them is checked locally.
func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.ClientID) == "":
		return fmt.Errorf("%w: client ID is required", shared.ErrValidation)
	case strings.TrimSpace(c.ClientSecret) == "":
		return fmt.Errorf("%w: client secret is required", shared.ErrValidation)
	}
	return nil
}

// String never prints the secret.
func (c Credentials) String() string {
	if c.ClientSecret == "" {
		return fmt.Sprintf("Credentials{ClientID: %q}", c.ClientID)
	}
	return fmt.Sprintf("Credentials{ClientID: %q, ClientSecret: [redacted]}", c.ClientID)
}

// BearerToken is an access token for the catalog API.
type BearerToken struct {
	Value  string
	Expiry time.Time
}

// Valid reports whether the token has a value and, when an expiry is known, has not expired.
func (t BearerToken) Valid() bool {
	return t.Value != "" && (t.Expiry.IsZero() || time.Now().Before(t.Expiry))
}

// EntityReference identifies a catalog entity by its opaque ID and display name.
type EntityReference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is a browser session and the credentials entered on its login form.
type Session struct {
	id          string
	credentials Credentials
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSession creates a session holding creds. The ID is assigned by the store.
func NewSession(creds Credentials) *Session {
	now := time.Now().UTC()
	return &Session{credentials: creds, createdAt: now, updatedAt: now}
}

func (s *Session) ID() string { return s.id }
func (s *Session) Credentials() Credentials { return s.credentials }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }
func (s *Session) SetID(id string) { s.id = id }
func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time) { s.updatedAt = t }

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.updatedAt = time.Now().UTC()
}

// Validate requires an ID and complete credentials.
func (s *Session) Validate() error {
	if s.id == "" {
		return fmt.Errorf("%w: session ID is required", shared.ErrValidation)
	}
	return s.credentials.Validate()
}
