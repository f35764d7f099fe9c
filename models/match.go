package models

import "time"

// Match is a recorded game result. Only the winner and loser are kept;
// draws are not part of the model.
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	WinnerID     int       `json:"winner_id" db:"winner_id"`
	LoserID      int       `json:"loser_id" db:"loser_id"`
	Round        *int      `json:"round,omitempty" db:"round"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
