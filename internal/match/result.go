package match

import (
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
)

type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeTie      Outcome = "tie"
)

const TieMessage = "It's a tie!"

// Result describes what a single ApplyMove did.
type Result struct {
	Outcome Outcome
	Index   int
	Mark    game.PlayerMark
	// Round is the round the move was played in.
	Round int
	// Board is the grid right after the move, before any reset.
	Board [game.Size]game.PlayerMark
	// Winner and Line are set for OutcomeWin only.
	Winner *player.Player
	Line   [3]int
	// Next holds the turn after the move has been resolved.
	Next *player.Player
}

// Terminal reports whether the move ended the round.
func (r Result) Terminal() bool {
	return r.Outcome == OutcomeWin || r.Outcome == OutcomeTie
}

// Message is the end-of-round text for the view, empty while the round goes on.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeWin:
		return fmt.Sprintf("%s wins!", r.Winner.Name)
	case OutcomeTie:
		return TieMessage
	default:
		return ""
	}
}

// Listener receives every applied move.
type Listener interface {
	OnResult(Result)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Result)

func (f ListenerFunc) OnResult(r Result) {
	f(r)
}
