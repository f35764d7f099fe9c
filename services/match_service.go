package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/repositories"
)

type ReportMatchInput struct {
	WinnerID int  `json:"winner_id"`
	LoserID  int  `json:"loser_id"`
	Round    *int `json:"round,omitempty"`
}

type MatchService interface {
	Report(ctx context.Context, tournamentID int, input ReportMatchInput) (*models.Match, error)
	List(ctx context.Context, tournamentID int) ([]*models.Match, error)
	DeleteAll(ctx context.Context, tournamentID int) (int64, error)
}

type matchService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	events         Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	events Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		events:         events,
		logger:         logger,
	}
}

// Report records the outcome of one game between two players of the
// tournament.
func (s *matchService) Report(ctx context.Context, tournamentID int, input ReportMatchInput) (*models.Match, error) {
	if input.WinnerID <= 0 || input.LoserID <= 0 {
		return nil, ErrValidationFailed
	}
	if input.WinnerID == input.LoserID {
		return nil, ErrSelfMatch
	}
	if input.Round != nil && *input.Round <= 0 {
		return nil, ErrValidationFailed
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "report match")
	}
	if t.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	for _, id := range []int{input.WinnerID, input.LoserID} {
		p, err := s.playerRepo.GetByID(ctx, id)
		if err != nil {
			return nil, handleRepositoryError(err, "report match")
		}
		if p.TournamentID != tournamentID {
			return nil, ErrPlayerNotInTournament
		}
	}

	m := &models.Match{
		TournamentID: tournamentID,
		WinnerID:     input.WinnerID,
		LoserID:      input.LoserID,
		Round:        input.Round,
	}
	if err := s.matchRepo.Create(ctx, m); err != nil {
		return nil, handleRepositoryError(err, "report match")
	}

	s.logger.Info("match reported",
		slog.Int("tournament_id", tournamentID),
		slog.Int("winner_id", m.WinnerID),
		slog.Int("loser_id", m.LoserID))
	broadcast(s.events, tournamentID, hub.EventMatchReported, m)
	return m, nil
}

func (s *matchService) List(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	return matches, nil
}

func (s *matchService) DeleteAll(ctx context.Context, tournamentID int) (int64, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return 0, handleRepositoryError(err, "delete matches")
	}
	n, err := s.matchRepo.DeleteByTournament(ctx, nil, tournamentID)
	if err != nil {
		return 0, handleRepositoryError(err, "delete matches")
	}
	s.logger.Info("matches deleted", slog.Int("tournament_id", tournamentID), slog.Int64("count", n))
	broadcast(s.events, tournamentID, hub.EventMatchesCleared, map[string]int64{"deleted": n})
	return n, nil
}
