package repository

import (
	"context"
	"errors"
	"time"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"

	"go.opentelemetry.io/otel"
)

//go:generate mockgen -source=session_repository.go -destination=mocks/mock_session_repository.go -package=mocks

var tracer = otel.Tracer("repository.session")

var ErrSessionNotFound = errors.New("session not found")

// Session is one page load's live match.
type Session struct {
	ID        string         `json:"id"`
	Match     match.Snapshot `json:"match"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UpdateFunc mutates a session in place. Returning an error aborts the update.
type UpdateFunc func(s *Session) error

// SessionRepository defines the interface for live session storage.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update runs fn against the stored session and writes the result back.
	// Concurrent updates of one session are serialised.
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
	Delete(ctx context.Context, id string) error
}
