package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/models"
	apirepo "ctchen222/Hotseat-Tic-Tac-Toe/internal/api/repository"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/events"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("service.match")

// Publisher delivers an event to every view of a session.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, ev events.Event) error
}

// StartedMatch is what the page needs after pressing Start.
type StartedMatch struct {
	SessionID string
	Token     string
	Match     match.Snapshot
}

// MoveOutcome pairs the rules' verdict with the state after the move.
// Token is a fresh session token; its expiry follows the session's sliding TTL.
type MoveOutcome struct {
	Result match.Result
	Match  match.Snapshot
	Token  string
}

// MatchService defines the interface for the session-backed game flow.
type MatchService interface {
	Start(ctx context.Context, playerOne, playerTwo string) (*StartedMatch, error)
	Move(ctx context.Context, sessionID string, index int) (*MoveOutcome, error)
	Get(ctx context.Context, sessionID string) (match.Snapshot, error)
	Rounds(ctx context.Context, sessionID string, limit int) ([]models.Round, error)
	End(ctx context.Context, sessionID string) error
}

type Option func(*matchService)

// WithArchive records every finished round in rounds.
func WithArchive(rounds apirepo.RoundRepository) Option {
	return func(s *matchService) {
		s.rounds = rounds
	}
}

// WithNextRoundStarter sets the policy used by every match the service runs.
func WithNextRoundStarter(starter match.Starter) Option {
	return func(s *matchService) {
		s.starter = starter
	}
}

// WithListener adds a listener notified after each committed move.
// newListener is called per move with the request context.
func WithListener(newListener func(context.Context) match.Listener) Option {
	return func(s *matchService) {
		s.listeners = append(s.listeners, newListener)
	}
}

type matchService struct {
	sessions  repository.SessionRepository
	tokens    TokenIssuer
	publisher Publisher
	rounds    apirepo.RoundRepository
	starter   match.Starter
	listeners []func(context.Context) match.Listener
	now       func() time.Time
}

// NewMatchService creates a new MatchService.
func NewMatchService(sessions repository.SessionRepository, tokens TokenIssuer, publisher Publisher, opts ...Option) MatchService {
	s := &matchService{
		sessions:  sessions,
		tokens:    tokens,
		publisher: publisher,
		starter:   match.StarterKeep,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start seats both players and opens a new session.
func (s *matchService) Start(ctx context.Context, playerOne, playerTwo string) (*StartedMatch, error) {
	ctx, span := tracer.Start(ctx, "MatchService.Start")
	defer span.End()

	one, err := player.New(playerOne, game.PlayerX)
	if err != nil {
		return nil, fmt.Errorf("player one: %w", err)
	}
	two, err := player.New(playerTwo, game.PlayerO)
	if err != nil {
		return nil, fmt.Errorf("player two: %w", err)
	}

	m := match.New(match.WithNextRoundStarter(s.starter))
	if err := m.Start(one, two); err != nil {
		return nil, err
	}
	snap, err := m.Snapshot()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &repository.Session{
		ID:        uuid.New().String(),
		Match:     snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	span.SetAttributes(attribute.String("session.id", sess.ID))

	token, err := s.tokens.Issue(sess.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to issue token")
		return nil, err
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.InfoContext(ctx, "Match started", "session.id", sess.ID, "player_one", one.Name, "player_two", two.Name)
	s.publish(ctx, sess.ID, events.TypeMatchStarted, events.StatePayload{State: events.StateOf(snap)})

	return &StartedMatch{SessionID: sess.ID, Token: token, Match: snap}, nil
}

// Move applies index for whoever holds the turn in the session.
func (s *matchService) Move(ctx context.Context, sessionID string, index int) (*MoveOutcome, error) {
	ctx, span := tracer.Start(ctx, "MatchService.Move")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.Int("index", index))

	// fn may run more than once when the store retries, so it only computes.
	var res match.Result
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *repository.Session) error {
		m, err := match.Restore(sess.Match, match.WithNextRoundStarter(s.starter))
		if err != nil {
			return err
		}
		res, err = m.ApplyMove(index)
		if err != nil {
			return err
		}
		sess.Match, err = m.Snapshot()
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) && !errors.Is(err, game.ErrIndexOutOfRange) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to apply move")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("outcome", string(res.Outcome)))

	out := &MoveOutcome{Result: res, Match: sess.Match}
	if out.Token, err = s.tokens.Issue(sessionID); err != nil {
		slog.ErrorContext(ctx, "Failed to renew session token", "session.id", sessionID, "error", err)
	}

	if res.Outcome == match.OutcomeIgnored {
		return out, nil
	}

	for _, newListener := range s.listeners {
		newListener(ctx).OnResult(res)
	}

	if res.Terminal() {
		slog.InfoContext(ctx, "Round over", "session.id", sessionID, "round", res.Round, "message", res.Message())
		s.archive(ctx, sessionID, res)
	}

	ev, ok, err := events.FromResult(res, sess.Match)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build move event", "session.id", sessionID, "error", err)
	} else if ok {
		s.send(ctx, sessionID, ev)
	}

	return out, nil
}

// Get returns the live match of a session.
func (s *matchService) Get(ctx context.Context, sessionID string) (match.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "MatchService.Get")
	defer span.End()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return match.Snapshot{}, err
	}
	return sess.Match, nil
}

// Rounds lists the archived rounds of a live session, newest first. Without
// an archive the list is always empty.
func (s *matchService) Rounds(ctx context.Context, sessionID string, limit int) ([]models.Round, error) {
	ctx, span := tracer.Start(ctx, "MatchService.Rounds")
	defer span.End()

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if s.rounds == nil {
		return []models.Round{}, nil
	}
	rounds, err := s.rounds.ListBySession(ctx, sessionID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rounds")
		return nil, err
	}
	return rounds, nil
}

// End drops the session. Archived rounds stay.
func (s *matchService) End(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "MatchService.End")
	defer span.End()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Match ended", "session.id", sessionID)
	return nil
}

// archive is best effort: the move has already been committed.
func (s *matchService) archive(ctx context.Context, sessionID string, res match.Result) {
	if s.rounds == nil {
		return
	}

	board := game.NewBoard()
	if err := board.Load(res.Board); err != nil {
		slog.ErrorContext(ctx, "Failed to render final board", "session.id", sessionID, "error", err)
		return
	}

	round := &models.Round{
		SessionID:  sessionID,
		Round:      res.Round,
		Outcome:    string(res.Outcome),
		Board:      board.String(),
		FinishedAt: s.now().UTC(),
	}
	if res.Winner != nil {
		round.WinnerName = res.Winner.Name
		round.WinnerMark = string(res.Winner.Mark)
	}

	if err := s.rounds.Record(ctx, round); err != nil {
		slog.ErrorContext(ctx, "Failed to archive round", "session.id", sessionID, "round", res.Round, "error", err)
	}
}

func (s *matchService) publish(ctx context.Context, sessionID, eventType string, payload any) {
	ev, err := events.New(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build event", "session.id", sessionID, "event", eventType, "error", err)
		return
	}
	s.send(ctx, sessionID, ev)
}

func (s *matchService) send(ctx context.Context, sessionID string, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, sessionID, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "session.id", sessionID, "event", ev.Type, "error", err)
	}
}
