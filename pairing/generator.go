package pairing

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

type Strategy string

const (
	StrategyBacktrack Strategy = "backtrack"
	StrategyResample  Strategy = "resample"
)

const (
	DefaultMaxAttempts    = 10_000
	DefaultMaxSearchSteps = 1_000_000
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyBacktrack:
		return StrategyBacktrack, nil
	case StrategyResample:
		return StrategyResample, nil
	default:
		return "", fmt.Errorf("unknown pairing strategy %q", s)
	}
}

type Options struct {
	Strategy Strategy
	// AllowBye gives the player left over from an odd roster a bye instead
	// of failing with ErrOddRoster.
	AllowBye       bool
	MaxAttempts    int
	MaxSearchSteps int
	// Rand drives candidate ordering (backtrack) or permutations (resample).
	// When nil, backtracking is deterministic and resampling seeds a source
	// from Seed.
	Rand *rand.Rand
	Seed int64
}

// Pairing is one board of the next round; player 1 is the higher ranked.
type Pairing struct {
	ID1   int    `json:"id1"`
	Name1 string `json:"name1"`
	ID2   int    `json:"id2"`
	Name2 string `json:"name2"`
}

func (p Pairing) Has(id int) bool {
	return p.ID1 == id || p.ID2 == id
}

type Round struct {
	Pairings []Pairing `json:"pairings"`
	Bye      *Standing `json:"bye,omitempty"`
}

// PlayerIDs lists every player placed in the round, bye included.
func (r *Round) PlayerIDs() []int {
	ids := make([]int, 0, 2*len(r.Pairings)+1)
	for _, p := range r.Pairings {
		ids = append(ids, p.ID1, p.ID2)
	}
	if r.Bye != nil {
		ids = append(ids, r.Bye.ID)
	}
	return ids
}

// Generator produces Swiss pairings. It is not safe for concurrent use when
// it owns a random source; build one per computation.
type Generator struct {
	opts    Options
	matcher matcher
}

func NewGenerator(opts Options) (*Generator, error) {
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	opts.Strategy = strategy
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxSearchSteps <= 0 {
		opts.MaxSearchSteps = DefaultMaxSearchSteps
	}

	g := &Generator{opts: opts}
	switch strategy {
	case StrategyResample:
		rnd := opts.Rand
		if rnd == nil {
			rnd = rand.New(rand.NewSource(opts.Seed))
		}
		g.matcher = &resampleMatcher{rnd: rnd, maxAttempts: opts.MaxAttempts}
	default:
		g.matcher = &backtrackMatcher{rnd: opts.Rand}
	}
	return g, nil
}

func (g *Generator) Strategy() Strategy {
	return g.opts.Strategy
}

// Generate derives standings from the two snapshots and pairs the next round.
func (g *Generator) Generate(players []PlayerInfo, matches []MatchRecord) (*Round, error) {
	standings, err := ComputeStandings(players, matches)
	if err != nil {
		return nil, err
	}
	return g.PairStandings(standings, NewMatchHistory(matches))
}

// PairStandings pairs already ordered standings bucket by bucket. A bucket
// left with an odd member carries one member down to the head of the next
// bucket, lowest ranked first; when the lower buckets cannot absorb that
// member the next candidate is tried. The member left over after the last
// bucket gets the bye. One MaxSearchSteps budget covers the whole round.
func (g *Generator) PairStandings(standings []Standing, history *MatchHistory) (*Round, error) {
	if len(standings)%2 != 0 && !g.opts.AllowBye {
		return nil, fmt.Errorf("%w: %d players", ErrOddRoster, len(standings))
	}

	budget := &searchBudget{remaining: g.opts.MaxSearchSteps}
	pairings, bye, err := g.pairFrom(PartitionByWins(standings), nil, history, budget)
	if err != nil {
		return nil, err
	}
	if pairings == nil {
		pairings = []Pairing{}
	}
	return &Round{Pairings: pairings, Bye: bye}, nil
}

// pairFrom pairs buckets[0] together with the carried member, then recurses
// into the remaining buckets. It returns the member left over at the end.
func (g *Generator) pairFrom(buckets []Bucket, carried *Standing, history *MatchHistory, budget *searchBudget) ([]Pairing, *Standing, error) {
	if len(buckets) == 0 {
		return nil, carried, nil
	}
	bucket := buckets[0]
	entries := make([]Standing, 0, bucket.Len()+1)
	if carried != nil {
		entries = append(entries, *carried)
	}
	entries = append(entries, bucket.Entries...)

	if len(entries)%2 == 0 {
		pairs, err := g.matcher.perfectMatch(entries, history, budget)
		if err != nil {
			return nil, nil, g.infeasible(bucket.Wins, entries, err)
		}
		rest, bye, err := g.pairFrom(buckets[1:], nil, history, budget)
		if err != nil {
			return nil, nil, err
		}
		return append(toPairings(pairs), rest...), bye, nil
	}

	var lower error
	rest := make([]Standing, 0, len(entries)-1)
	for i := len(entries) - 1; i >= 0; i-- {
		rest = append(rest[:0], entries[:i]...)
		rest = append(rest, entries[i+1:]...)
		pairs, err := g.matcher.perfectMatch(rest, history, budget)
		if errors.Is(err, errBudgetExhausted) {
			return nil, nil, g.infeasible(bucket.Wins, entries, err)
		}
		if err != nil {
			continue
		}

		floater := entries[i]
		next, bye, err := g.pairFrom(buckets[1:], &floater, history, budget)
		if err == nil {
			return append(toPairings(pairs), next...), bye, nil
		}
		var infeasible *InfeasibleError
		if errors.As(err, &infeasible) && infeasible.BudgetExhausted {
			return nil, nil, err
		}
		if lower == nil {
			lower = err
		}
	}
	if lower != nil {
		return nil, nil, lower
	}
	return nil, nil, g.infeasible(bucket.Wins, entries, errors.New("no member can be carried down without forcing a rematch"))
}

func (g *Generator) infeasible(wins int, entries []Standing, cause error) error {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if errors.Is(cause, errBudgetExhausted) {
		return &InfeasibleError{
			Wins:            wins,
			PlayerIDs:       ids,
			Reason:          fmt.Sprintf("search gave up after %d steps", g.opts.MaxSearchSteps),
			BudgetExhausted: true,
		}
	}
	reason := cause.Error()
	if g.opts.Strategy == StrategyResample {
		reason = fmt.Sprintf("%s after %d attempts", reason, g.opts.MaxAttempts)
	}
	return &InfeasibleError{Wins: wins, PlayerIDs: ids, Reason: reason}
}

func toPairings(pairs [][2]Standing) []Pairing {
	out := make([]Pairing, len(pairs))
	for i, p := range pairs {
		out[i] = Pairing{ID1: p[0].ID, Name1: p[0].Name, ID2: p[1].ID, Name2: p[1].Name}
	}
	return out
}
