package match

import (
	"errors"
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
)

var (
	ErrNotStarted       = errors.New("match has not started")
	ErrMissingPlayer    = errors.New("both players are required")
	ErrMarksNotDistinct = errors.New("player one must hold X and player two O")
	ErrUnknownStarter   = errors.New("unknown next round starter")
)

// Starter decides who opens the next round after a win or a tie.
type Starter string

const (
	// StarterKeep leaves the turn where the round ended: the winner, or the
	// player who filled the last cell, opens the next round.
	StarterKeep Starter = "keep"
	// StarterPlayerOne hands every new round to player one.
	StarterPlayerOne Starter = "player-one"
)

// ParseStarter maps a configuration value to a Starter. Empty means StarterKeep.
func ParseStarter(s string) (Starter, error) {
	switch Starter(s) {
	case "", StarterKeep:
		return StarterKeep, nil
	case StarterPlayerOne:
		return StarterPlayerOne, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStarter, s)
	}
}

type Option func(*Match)

// WithNextRoundStarter sets the policy applied after every terminal result.
func WithNextRoundStarter(s Starter) Option {
	return func(m *Match) {
		m.starter = s
	}
}

// Match owns the board, the two players and the turn order.
type Match struct {
	board     *game.Board
	playerOne *player.Player
	playerTwo *player.Player
	current   *player.Player
	round     int
	starter   Starter
	listeners []Listener
}

// New creates an idle match. Start must be called before moves are accepted.
func New(opts ...Option) *Match {
	m := &Match{
		board:   game.NewBoard(),
		starter: StarterKeep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start seats both players with a zero score, gives player one the first
// turn and clears the board.
func (m *Match) Start(one, two *player.Player) error {
	if one == nil || two == nil {
		return ErrMissingPlayer
	}
	if one.Mark != game.PlayerX || two.Mark != game.PlayerO {
		return ErrMarksNotDistinct
	}

	one.Score, two.Score = 0, 0
	m.playerOne, m.playerTwo = one, two
	m.current = one
	m.round = 1
	m.board.Reset()
	return nil
}

// ApplyMove places the current player's mark at index and resolves the round.
// A move on an occupied cell yields OutcomeIgnored and changes nothing.
func (m *Match) ApplyMove(index int) (Result, error) {
	if !m.Started() {
		return Result{}, ErrNotStarted
	}
	if !game.InRange(index) {
		return Result{}, fmt.Errorf("%w: %d", game.ErrIndexOutOfRange, index)
	}

	mover := m.current
	if !m.board.Place(index, mover.Mark) {
		return Result{Outcome: OutcomeIgnored, Index: index, Round: m.round, Next: mover}, nil
	}

	res := Result{
		Index: index,
		Mark:  mover.Mark,
		Round: m.round,
		Board: m.board.Cells(),
	}

	if line, won := game.WinningLine(res.Board, mover.Mark); won {
		mover.Score++
		res.Outcome = OutcomeWin
		res.Winner = mover
		res.Line = line
		m.endRound()
	} else if m.board.AllFilled() {
		res.Outcome = OutcomeTie
		m.endRound()
	} else {
		m.current = m.opponentOf(mover)
		res.Outcome = OutcomeContinue
	}

	res.Next = m.current
	for _, l := range m.listeners {
		l.OnResult(res)
	}
	return res, nil
}

func (m *Match) endRound() {
	m.round++
	if m.starter == StarterPlayerOne {
		m.current = m.playerOne
	}
	m.board.Reset()
}

func (m *Match) opponentOf(p *player.Player) *player.Player {
	if p == m.playerOne {
		return m.playerTwo
	}
	return m.playerOne
}

// Subscribe registers l for every applied move. Ignored moves are not delivered.
func (m *Match) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

// CurrentTurn returns the player whose mark the next move places.
func (m *Match) CurrentTurn() *player.Player {
	return m.current
}

func (m *Match) Board() *game.Board {
	return m.board
}

func (m *Match) PlayerOne() *player.Player {
	return m.playerOne
}

func (m *Match) PlayerTwo() *player.Player {
	return m.playerTwo
}

// Round is the 1-based number of the round in progress.
func (m *Match) Round() int {
	return m.round
}

func (m *Match) Started() bool {
	return m.current != nil
}
