package pairing

import (
	"errors"
	"math/rand"
)

var (
	errNoMatching      = errors.New("no arrangement avoids a rematch")
	errBudgetExhausted = errors.New("search step budget exhausted")
)

// searchBudget is shared by every matching attempted while pairing one
// round.
type searchBudget struct {
	remaining int
}

func (b *searchBudget) take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// matcher finds a perfect matching of an even set of entries that avoids
// every pair in the history. Pairs are returned higher-ranked entry first.
// It fails with errNoMatching or errBudgetExhausted.
type matcher interface {
	perfectMatch(entries []Standing, history *MatchHistory, budget *searchBudget) ([][2]Standing, error)
}

// backtrackMatcher is a depth-first search over partners of the
// highest-ranked unmatched entry. Every partner assignment tried costs one
// step of the budget.
type backtrackMatcher struct {
	rnd *rand.Rand
}

func (m *backtrackMatcher) perfectMatch(entries []Standing, history *MatchHistory, budget *searchBudget) ([][2]Standing, error) {
	n := len(entries)
	if n%2 != 0 {
		return nil, errNoMatching
	}
	if n == 0 {
		return [][2]Standing{}, nil
	}

	candidates := make([][]int, n)
	for i := range entries {
		for j := range entries {
			if i != j && !history.AlreadyPlayed(entries[i].ID, entries[j].ID) {
				candidates[i] = append(candidates[i], j)
			}
		}
		if len(candidates[i]) == 0 {
			return nil, errNoMatching
		}
		if m.rnd != nil {
			c := candidates[i]
			m.rnd.Shuffle(len(c), func(a, b int) { c[a], c[b] = c[b], c[a] })
		}
	}

	matched := make([]bool, n)
	partner := make([]int, n)
	exhausted := false

	hasFreePartner := func(i int) bool {
		for _, j := range candidates[i] {
			if !matched[j] {
				return true
			}
		}
		return false
	}

	var search func() bool
	search = func() bool {
		first := -1
		for i := 0; i < n; i++ {
			if !matched[i] {
				first = i
				break
			}
		}
		if first < 0 {
			return true
		}
		for i := first; i < n; i++ {
			if !matched[i] && !hasFreePartner(i) {
				return false
			}
		}

		matched[first] = true
		for _, j := range candidates[first] {
			if matched[j] {
				continue
			}
			if !budget.take() {
				exhausted = true
				break
			}
			matched[j] = true
			partner[first], partner[j] = j, first
			if search() {
				return true
			}
			matched[j] = false
			if exhausted {
				break
			}
		}
		matched[first] = false
		return false
	}

	if !search() {
		if exhausted {
			return nil, errBudgetExhausted
		}
		return nil, errNoMatching
	}

	pairs := make([][2]Standing, 0, n/2)
	for i := 0; i < n; i++ {
		if j := partner[i]; j > i {
			pairs = append(pairs, [2]Standing{entries[i], entries[j]})
		}
	}
	return pairs, nil
}

// resampleMatcher shuffles the entries, slices the permutation into
// consecutive pairs and accepts it only if no pair is a rematch. It gives up
// after maxAttempts permutations. Each call costs one step of the budget.
type resampleMatcher struct {
	rnd         *rand.Rand
	maxAttempts int
}

func (m *resampleMatcher) perfectMatch(entries []Standing, history *MatchHistory, budget *searchBudget) ([][2]Standing, error) {
	n := len(entries)
	if n%2 != 0 {
		return nil, errNoMatching
	}
	if n == 0 {
		return [][2]Standing{}, nil
	}
	if !budget.take() {
		return nil, errBudgetExhausted
	}

	perm := make([]int, n)
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		for i := range perm {
			perm[i] = i
		}
		m.rnd.Shuffle(n, func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		valid := true
		for k := 0; k < n; k += 2 {
			if history.AlreadyPlayed(entries[perm[k]].ID, entries[perm[k+1]].ID) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		pairs := make([][2]Standing, 0, n/2)
		for k := 0; k < n; k += 2 {
			a, b := perm[k], perm[k+1]
			if a > b {
				a, b = b, a
			}
			pairs = append(pairs, [2]Standing{entries[a], entries[b]})
		}
		return pairs, nil
	}
	return nil, errNoMatching
}
