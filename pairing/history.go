package pairing

// MatchRecord is a played game. For rematch checks only the unordered pair
// of ids matters.
type MatchRecord struct {
	WinnerID int `json:"winner_id"`
	LoserID  int `json:"loser_id"`
}

type pairKey struct {
	lo, hi int
}

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// MatchHistory answers whether two players have already met. It is built
// once per pairing computation and never mutated.
type MatchHistory struct {
	played map[pairKey]struct{}
}

func NewMatchHistory(matches []MatchRecord) *MatchHistory {
	h := &MatchHistory{played: make(map[pairKey]struct{}, len(matches))}
	for _, m := range matches {
		h.played[keyOf(m.WinnerID, m.LoserID)] = struct{}{}
	}
	return h
}

// AlreadyPlayed is symmetric in its arguments.
func (h *MatchHistory) AlreadyPlayed(a, b int) bool {
	if h == nil {
		return false
	}
	_, ok := h.played[keyOf(a, b)]
	return ok
}

// Len returns the number of distinct pairs that have played.
func (h *MatchHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.played)
}
