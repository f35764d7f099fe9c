package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type CreateTournamentInput struct {
	Name string `json:"name"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
	// Reset removes every match and then every player of the tournament in
	// one transaction.
	Reset(ctx context.Context, id int) error
}

type tournamentService struct {
	tx             repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	events         Broadcaster
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	events Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		events:         events,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	t := &models.Tournament{Name: name, Status: models.StatusRegistration}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err, "create tournament")
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, handleRepositoryError(err, "list tournaments")
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	if !status.Valid() {
		return ErrTournamentInvalidStatus
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		return handleRepositoryError(err, "update tournament status")
	}
	return nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, "delete tournament")
	}
	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	return nil
}

func (s *tournamentService) Reset(ctx context.Context, id int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, id); err != nil {
		return handleRepositoryError(err, "reset tournament")
	}

	var matchesDeleted, playersDeleted int64
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		if matchesDeleted, err = s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		playersDeleted, err = s.playerRepo.DeleteByTournament(ctx, exec, id)
		return err
	})
	if err != nil {
		return handleRepositoryError(err, "reset tournament")
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, id, models.StatusRegistration); err != nil {
		s.logger.Warn("failed to reopen registration after reset", slog.Int("tournament_id", id), slog.Any("error", err))
	}

	s.logger.Info("tournament reset",
		slog.Int("tournament_id", id),
		slog.Int64("matches_deleted", matchesDeleted),
		slog.Int64("players_deleted", playersDeleted))
	broadcast(s.events, id, hub.EventTournamentReset, map[string]int64{
		"matches_deleted": matchesDeleted,
		"players_deleted": playersDeleted,
	})
	return nil
}
