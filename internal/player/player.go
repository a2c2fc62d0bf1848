package player

import (
	"errors"
	"strings"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
)

var (
	ErrBlankName   = errors.New("player name must not be blank")
	ErrInvalidMark = errors.New("player mark must be X or O")
)

// Player represents one of the two people sharing the board.
type Player struct {
	Name  string          `json:"name"`
	Mark  game.PlayerMark `json:"mark"`
	Score int             `json:"score"`
}

// New creates a player with a zero score. The name is trimmed and must not be blank.
func New(name string, mark game.PlayerMark) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	if !mark.Valid() {
		return nil, ErrInvalidMark
	}
	return &Player{Name: name, Mark: mark}, nil
}
