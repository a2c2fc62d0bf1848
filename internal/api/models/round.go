package models

import "time"

// Round is a finished round as stored in the archive.
type Round struct {
	ID         int64     `db:"id" json:"-"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Round      int       `db:"round" json:"round"`
	Outcome    string    `db:"outcome" json:"outcome"`
	WinnerName string    `db:"winner_name" json:"winner_name,omitempty"`
	WinnerMark string    `db:"winner_mark" json:"winner_mark,omitempty"`
	Board      string    `db:"board" json:"board"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
