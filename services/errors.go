package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-pairing/pairing"
	"github.com/Dosada05/swiss-pairing/repositories"
)

// Общие ошибки сервисного слоя, используются в маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentNameConflict  = errors.New("tournament name already exists")
	ErrTournamentInvalidStatus = errors.New("invalid tournament status provided")
	ErrTournamentCompleted     = errors.New("tournament is already completed")

	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerNameRequired    = errors.New("player name is required")
	ErrPlayerNotInTournament = errors.New("player is not registered in this tournament")
	ErrPlayersHaveMatches    = errors.New("players cannot be deleted while matches are recorded")

	ErrSelfMatch = errors.New("winner and loser must be different players")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthNotConfigured  = errors.New("director login is not configured")

	// Ошибки движка пар переиспользуются как есть.
	ErrInfeasiblePairing   = pairing.ErrInfeasiblePairing
	ErrOddRoster           = pairing.ErrOddRoster
	ErrInconsistentHistory = pairing.ErrInconsistentHistory
)

// handleRepositoryError translates repository errors into service errors,
// keeping the original error in the chain for logging.
func handleRepositoryError(err error, op string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound),
		errors.Is(err, repositories.ErrPlayerTournamentInvalid),
		errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrPlayerNotFound),
		errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayersHaveMatches):
		return ErrPlayersHaveMatches
	case errors.Is(err, repositories.ErrMatchSelfPlay):
		return ErrSelfMatch
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
