package models

// PlayerStanding is the public view of one row of the standings table.
type PlayerStanding struct {
	Rank          int    `json:"rank"`
	PlayerID      int    `json:"player_id"`
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matches"`
}

type Board struct {
	Number      int    `json:"board"`
	Player1ID   int    `json:"id1"`
	Player1Name string `json:"name1"`
	Player2ID   int    `json:"id2"`
	Player2Name string `json:"name2"`
}

// RoundPairings is the published sheet for the next round.
type RoundPairings struct {
	TournamentID int             `json:"tournament_id"`
	Round        int             `json:"round"`
	Strategy     string          `json:"strategy"`
	Seed         int64           `json:"seed"`
	Boards       []Board         `json:"boards"`
	Bye          *PlayerStanding `json:"bye,omitempty"`
	SheetURL     string          `json:"sheet_url,omitempty"`
}
