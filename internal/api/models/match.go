package models

import "ctchen222/Hotseat-Tic-Tac-Toe/internal/events"

// StartMatchRequest defines the structure for starting a new match.
type StartMatchRequest struct {
	PlayerOne string `json:"player_one" binding:"required,notblank,max=32"`
	PlayerTwo string `json:"player_two" binding:"required,notblank,max=32"`
}

// StartMatchResponse is returned once the session exists.
type StartMatchResponse struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	State     events.State `json:"state"`
}

// MoveRequest carries the clicked cell. The range is checked by the rules so
// that an out-of-range index can be told apart from a malformed body.
type MoveRequest struct {
	Index *int `json:"index" binding:"required"`
}

// MoveResponse describes what the move did. Token replaces the caller's
// session token.
type MoveResponse struct {
	Outcome string       `json:"outcome"`
	Message string       `json:"message,omitempty"`
	Line    []int        `json:"line,omitempty"`
	State   events.State `json:"state"`
	Token   string       `json:"token,omitempty"`
}
