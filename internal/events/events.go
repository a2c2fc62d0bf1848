package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"
)

// Event types pushed to views.
const (
	TypeMatchStarted = "match_started"
	TypeState        = "state"
	TypeTurnChanged  = "turn_changed"
	TypeRoundWon     = "round_won"
	TypeRoundTied    = "round_tied"
	TypeError        = "error"
)

// SessionChannel is the Pub/Sub channel carrying the events of one session.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf("channel:session:%s", sessionID)
}

// Event represents a message delivered to every view of a session.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// State is what a view needs to draw the whole screen.
type State struct {
	Board       [game.Size]game.PlayerMark `json:"board"`
	Players     [2]player.Player           `json:"players"`
	CurrentTurn player.Player              `json:"current_turn"`
	Round       int                        `json:"round"`
}

// StateOf converts a match snapshot into its view form.
func StateOf(s match.Snapshot) State {
	current := s.PlayerOne
	if s.CurrentTurn == s.PlayerTwo.Mark {
		current = s.PlayerTwo
	}
	return State{
		Board:       s.Board,
		Players:     [2]player.Player{s.PlayerOne, s.PlayerTwo},
		CurrentTurn: current,
		Round:       s.Round,
	}
}

// StatePayload is the payload for the "state" and "match_started" events.
type StatePayload struct {
	State State `json:"state"`
}

// TurnChangedPayload is the payload for the "turn_changed" event.
type TurnChangedPayload struct {
	Index int             `json:"index"`
	Mark  game.PlayerMark `json:"mark"`
	State State           `json:"state"`
}

// RoundOverPayload is the payload for the "round_won" and "round_tied" events.
type RoundOverPayload struct {
	Round      int                        `json:"round"`
	Message    string                     `json:"message"`
	Winner     *player.Player             `json:"winner,omitempty"`
	Line       []int                      `json:"line,omitempty"`
	FinalBoard [game.Size]game.PlayerMark `json:"final_board"`
	State      State                      `json:"state"`
}

// ErrorPayload is the payload for the "error" event.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// New marshals payload into an event of the given type.
func New(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: data}, nil
}

// FromResult builds the event for an applied move. snap is the match state
// after the move. Ignored moves have no event.
func FromResult(res match.Result, snap match.Snapshot) (Event, bool, error) {
	state := StateOf(snap)

	var (
		ev  Event
		err error
	)
	switch res.Outcome {
	case match.OutcomeContinue:
		ev, err = New(TypeTurnChanged, TurnChangedPayload{Index: res.Index, Mark: res.Mark, State: state})
	case match.OutcomeWin:
		winner := *res.Winner
		ev, err = New(TypeRoundWon, RoundOverPayload{
			Round:      res.Round,
			Message:    res.Message(),
			Winner:     &winner,
			Line:       res.Line[:],
			FinalBoard: res.Board,
			State:      state,
		})
	case match.OutcomeTie:
		ev, err = New(TypeRoundTied, RoundOverPayload{
			Round:      res.Round,
			Message:    res.Message(),
			FinalBoard: res.Board,
			State:      state,
		})
	default:
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}
	return ev, true, nil
}
