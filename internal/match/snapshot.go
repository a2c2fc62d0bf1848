package match

import (
	"errors"
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
)

var ErrInvalidSnapshot = errors.New("invalid match snapshot")

// Snapshot is the serialisable state of a started match.
type Snapshot struct {
	Board       [game.Size]game.PlayerMark `json:"board"`
	PlayerOne   player.Player              `json:"player_one"`
	PlayerTwo   player.Player              `json:"player_two"`
	CurrentTurn game.PlayerMark            `json:"current_turn"`
	Round       int                        `json:"round"`
}

// Snapshot copies the match state.
func (m *Match) Snapshot() (Snapshot, error) {
	if !m.Started() {
		return Snapshot{}, ErrNotStarted
	}
	return Snapshot{
		Board:       m.board.Cells(),
		PlayerOne:   *m.playerOne,
		PlayerTwo:   *m.playerTwo,
		CurrentTurn: m.current.Mark,
		Round:       m.round,
	}, nil
}

// Restore rebuilds a started match from s.
func Restore(s Snapshot, opts ...Option) (*Match, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	m := New(opts...)
	if err := m.board.Load(s.Board); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	one, two := s.PlayerOne, s.PlayerTwo
	m.playerOne, m.playerTwo = &one, &two
	m.current = m.playerOne
	if s.CurrentTurn == game.PlayerO {
		m.current = m.playerTwo
	}
	m.round = s.Round
	return m, nil
}

func (s Snapshot) validate() error {
	if s.PlayerOne.Mark != game.PlayerX || s.PlayerTwo.Mark != game.PlayerO {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, ErrMarksNotDistinct)
	}
	if s.PlayerOne.Name == "" || s.PlayerTwo.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, player.ErrBlankName)
	}
	if s.PlayerOne.Score < 0 || s.PlayerTwo.Score < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidSnapshot)
	}
	if !s.CurrentTurn.Valid() {
		return fmt.Errorf("%w: current turn %q", ErrInvalidSnapshot, s.CurrentTurn)
	}
	if s.Round < 1 {
		return fmt.Errorf("%w: round %d", ErrInvalidSnapshot, s.Round)
	}
	return nil
}
