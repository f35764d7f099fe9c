package models

import "time"

// TournamentStatus соответствует ENUM tournament_status в БД.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
)

// Tournament is the namespace that owns a roster and its match log.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	PlayerCount *int `json:"player_count,omitempty" db:"-"`
}

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusRegistration, StatusActive, StatusCompleted:
		return true
	}
	return false
}
