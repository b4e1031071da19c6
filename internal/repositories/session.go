package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session] on SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session with a generated ID
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.SetID(shared.GenerateID())

	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	creds := session.Credentials()
	query := `
		INSERT INTO sessions (id, client_id, client_secret, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, session.ID(), creds.ClientID, creds.ClientSecret, session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT client_id, client_secret, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	var (
		creds     models.Credentials
		createdAt time.Time
		updatedAt time.Time
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&creds.ClientID, &creds.ClientSecret, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session := models.NewSession(creds)
	session.SetID(id)
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	return session, nil
}

// Update replaces the stored credentials of an existing session
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	creds := session.Credentials()
	query := `
		UPDATE sessions SET client_id = ?, client_secret = ?, updated_at = ? WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, creds.ClientID, creds.ClientSecret, session.UpdatedAt(), session.ID())
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return expectRow(result, session.ID())
}

// Delete removes a session. Deleting an unknown session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PruneBefore deletes sessions not updated since cutoff and returns how many were removed.
func (r *SessionRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

func expectRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return nil
}
