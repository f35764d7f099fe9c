package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/repositories"
)

type RegisterPlayerInput struct {
	Name string `json:"name"`
}

type PlayerService interface {
	Register(ctx context.Context, tournamentID int, input RegisterPlayerInput) (*models.Player, error)
	List(ctx context.Context, tournamentID int) ([]*models.Player, error)
	Count(ctx context.Context, tournamentID int) (int, error)
	DeleteAll(ctx context.Context, tournamentID int) (int64, error)
}

type playerService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	events         Broadcaster
	logger         *slog.Logger
}

func NewPlayerService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	events Broadcaster,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		events:         events,
		logger:         logger,
	}
}

// Register adds a player. Names need not be unique; the database assigns
// the id.
func (s *playerService) Register(ctx context.Context, tournamentID int, input RegisterPlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "register player")
	}
	if t.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	p := &models.Player{TournamentID: tournamentID, Name: name}
	if err := s.playerRepo.Create(ctx, p); err != nil {
		return nil, handleRepositoryError(err, "register player")
	}

	s.logger.Info("player registered", slog.Int("tournament_id", tournamentID), slog.Int("player_id", p.ID))
	broadcast(s.events, tournamentID, hub.EventPlayerRegistered, p)
	return p, nil
}

func (s *playerService) List(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	players, err := s.playerRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	return players, nil
}

func (s *playerService) Count(ctx context.Context, tournamentID int) (int, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return 0, handleRepositoryError(err, "count players")
	}
	n, err := s.playerRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return 0, handleRepositoryError(err, "count players")
	}
	return n, nil
}

// DeleteAll fails with ErrPlayersHaveMatches while matches still reference
// the roster; clear matches first or use a tournament reset.
func (s *playerService) DeleteAll(ctx context.Context, tournamentID int) (int64, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return 0, handleRepositoryError(err, "delete players")
	}
	n, err := s.playerRepo.DeleteByTournament(ctx, nil, tournamentID)
	if err != nil {
		return 0, handleRepositoryError(err, "delete players")
	}
	s.logger.Info("players deleted", slog.Int("tournament_id", tournamentID), slog.Int64("count", n))
	return n, nil
}
