package repository

import (
	"context"
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/models"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("repository.round")

// DefaultListLimit caps ListBySession when the caller passes no limit.
const DefaultListLimit = 50

// RoundRepository defines the interface for the finished-round archive.
type RoundRepository interface {
	Record(ctx context.Context, round *models.Round) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Round, error)
}

type sqliteRoundRepository struct {
	db *sqlx.DB
}

// NewRoundRepository creates a new SQLite-based RoundRepository.
func NewRoundRepository(db *sqlx.DB) RoundRepository {
	return &sqliteRoundRepository{db: db}
}

// Record inserts a finished round. Recording the same round twice keeps the first row.
func (r *sqliteRoundRepository) Record(ctx context.Context, round *models.Round) error {
	ctx, span := tracer.Start(ctx, "RoundRepository.Record")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", round.SessionID),
		attribute.Int("round", round.Round),
	)

	query := `INSERT OR IGNORE INTO rounds
		(session_id, round, outcome, winner_name, winner_mark, board, finished_at)
		VALUES (:session_id, :round, :outcome, :winner_name, :winner_mark, :board, :finished_at)`
	res, err := r.db.NamedExecContext(ctx, query, round)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record round")
		return fmt.Errorf("failed to record round: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		round.ID = id
	}
	return nil
}

// ListBySession returns the most recent rounds of a session, newest first.
func (r *sqliteRoundRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Round, error) {
	ctx, span := tracer.Start(ctx, "RoundRepository.ListBySession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	rounds := []models.Round{}
	query := `SELECT id, session_id, round, outcome, winner_name, winner_mark, board, finished_at
		FROM rounds WHERE session_id = ? ORDER BY round DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rounds, query, sessionID, limit); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rounds")
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}
