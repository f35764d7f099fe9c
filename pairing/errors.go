package pairing

import (
	"errors"
	"fmt"
)

var (
	ErrInfeasiblePairing   = errors.New("no pairing exists without a rematch")
	ErrOddRoster           = errors.New("odd number of players and byes are disabled")
	ErrInconsistentHistory = errors.New("match history is inconsistent with the roster")
	ErrDuplicatePlayer     = errors.New("player id appears more than once in the roster")
)

// InfeasibleError reports the bucket that could not be matched. It matches
// ErrInfeasiblePairing with errors.Is. BudgetExhausted is set when the
// search stopped at MaxSearchSteps rather than proving no pairing exists.
type InfeasibleError struct {
	Wins            int
	PlayerIDs       []int
	Reason          string
	BudgetExhausted bool
}

func (e *InfeasibleError) Error() string {
	if e.BudgetExhausted {
		return fmt.Sprintf("pairing search stopped before an answer was found: bucket with %d wins, players %v: %s", e.Wins, e.PlayerIDs, e.Reason)
	}
	return fmt.Sprintf("%s: bucket with %d wins, players %v: %s", ErrInfeasiblePairing, e.Wins, e.PlayerIDs, e.Reason)
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasiblePairing
}
