package pairing

import (
	"fmt"
	"sort"
)

type PlayerInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Standing is a read-only projection of a player's record.
type Standing struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matches"`
}

// ComputeStandings counts wins and games for every player and orders the
// result by wins descending, ties broken by ascending id.
func ComputeStandings(players []PlayerInfo, matches []MatchRecord) ([]Standing, error) {
	index := make(map[int]int, len(players))
	standings := make([]Standing, len(players))
	for i, p := range players {
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicatePlayer, p.ID)
		}
		index[p.ID] = i
		standings[i] = Standing{ID: p.ID, Name: p.Name}
	}

	for _, m := range matches {
		if m.WinnerID == m.LoserID {
			return nil, fmt.Errorf("%w: player %d recorded as playing itself", ErrInconsistentHistory, m.WinnerID)
		}
		wi, ok := index[m.WinnerID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown winner id %d", ErrInconsistentHistory, m.WinnerID)
		}
		li, ok := index[m.LoserID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown loser id %d", ErrInconsistentHistory, m.LoserID)
		}
		standings[wi].Wins++
		standings[wi].MatchesPlayed++
		standings[li].MatchesPlayed++
	}

	SortStandings(standings)
	return standings, nil
}

// SortStandings orders in place: wins descending, then id ascending.
func SortStandings(standings []Standing) {
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].ID < standings[j].ID
	})
}
