package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/pairing"
	"github.com/Dosada05/swiss-pairing/repositories"
	"github.com/Dosada05/swiss-pairing/storage"
	"golang.org/x/sync/errgroup"
)

// PairingConfig selects how the engine matches each win bucket.
type PairingConfig struct {
	Strategy       pairing.Strategy
	AllowBye       bool
	MaxAttempts    int
	MaxSearchSteps int
}

type PairingService interface {
	Standings(ctx context.Context, tournamentID int) ([]models.PlayerStanding, error)
	// NextRound pairs the next round from the current roster and match log.
	// A nil seed draws one from the clock; the seed used is returned in the
	// sheet so the round can be reproduced.
	NextRound(ctx context.Context, tournamentID int, seed *int64) (*models.RoundPairings, error)
}

type pairingService struct {
	cfg            PairingConfig
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	events         Broadcaster
	logger         *slog.Logger
	now            func() time.Time
}

// NewPairingService builds the service; uploader may be nil, in which case
// round sheets are not exported.
func NewPairingService(
	cfg PairingConfig,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	events Broadcaster,
	logger *slog.Logger,
) PairingService {
	return &pairingService{
		cfg:            cfg,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		events:         events,
		logger:         logger,
		now:            time.Now,
	}
}

type snapshot struct {
	players []pairing.PlayerInfo
	matches []pairing.MatchRecord
}

func (s *pairingService) loadSnapshot(ctx context.Context, tournamentID int) (*snapshot, error) {
	snap := &snapshot{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := s.playerRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		snap.players = make([]pairing.PlayerInfo, len(players))
		for i, p := range players {
			snap.players[i] = pairing.PlayerInfo{ID: p.ID, Name: p.Name}
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		snap.matches = make([]pairing.MatchRecord, len(matches))
		for i, m := range matches {
			snap.matches[i] = pairing.MatchRecord{WinnerID: m.WinnerID, LoserID: m.LoserID}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, handleRepositoryError(err, "load tournament snapshot")
	}
	return snap, nil
}

func (s *pairingService) Standings(ctx context.Context, tournamentID int) ([]models.PlayerStanding, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "standings")
	}
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	standings, err := pairing.ComputeStandings(snap.players, snap.matches)
	if err != nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, err)
	}
	return toPlayerStandings(standings), nil
}

func (s *pairingService) NextRound(ctx context.Context, tournamentID int, seed *int64) (*models.RoundPairings, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "next round")
	}
	if t.Status == models.StatusCompleted {
		return nil, ErrTournamentCompleted
	}

	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	standings, err := pairing.ComputeStandings(snap.players, snap.matches)
	if err != nil {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, err)
	}

	usedSeed := s.now().UnixNano()
	if seed != nil {
		usedSeed = *seed
	}
	gen, err := pairing.NewGenerator(pairing.Options{
		Strategy:       s.cfg.Strategy,
		AllowBye:       s.cfg.AllowBye,
		MaxAttempts:    s.cfg.MaxAttempts,
		MaxSearchSteps: s.cfg.MaxSearchSteps,
		Rand:           rand.New(rand.NewSource(usedSeed)),
		Seed:           usedSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pairing generator: %w", err)
	}

	round, err := gen.PairStandings(standings, pairing.NewMatchHistory(snap.matches))
	if err != nil {
		s.logger.Warn("pairing failed",
			slog.Int("tournament_id", tournamentID),
			slog.Int("players", len(snap.players)),
			slog.Int("matches", len(snap.matches)),
			slog.Any("error", err))
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, err)
	}

	sheet := buildSheet(tournamentID, standings, round, gen.Strategy(), usedSeed)
	s.exportSheet(ctx, sheet)

	if t.Status == models.StatusRegistration {
		if err := s.tournamentRepo.UpdateStatus(ctx, tournamentID, models.StatusActive); err != nil {
			s.logger.Warn("failed to mark tournament active", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		}
	}

	s.logger.Info("round paired",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", sheet.Round),
		slog.Int("boards", len(sheet.Boards)),
		slog.Bool("bye", sheet.Bye != nil),
		slog.Int64("seed", usedSeed))
	broadcast(s.events, tournamentID, hub.EventPairingsGenerated, sheet)
	return sheet, nil
}

func (s *pairingService) exportSheet(ctx context.Context, sheet *models.RoundPairings) {
	if s.uploader == nil {
		return
	}
	body, err := json.MarshalIndent(sheet, "", "\t")
	if err != nil {
		s.logger.Error("failed to encode round sheet", slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("tournaments/%d/round-%d-%d.json", sheet.TournamentID, sheet.Round, sheet.Seed)
	res, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		// the pairing itself is still valid; only the published copy is missing
		s.logger.Warn("failed to export round sheet", slog.String("key", key), slog.Any("error", err))
		return
	}
	sheet.SheetURL = res.Location
}

func buildSheet(tournamentID int, standings []pairing.Standing, round *pairing.Round, strategy pairing.Strategy, seed int64) *models.RoundPairings {
	played := 0
	for _, st := range standings {
		if st.MatchesPlayed > played {
			played = st.MatchesPlayed
		}
	}

	sheet := &models.RoundPairings{
		TournamentID: tournamentID,
		Round:        played + 1,
		Strategy:     string(strategy),
		Seed:         seed,
		Boards:       make([]models.Board, len(round.Pairings)),
	}
	for i, p := range round.Pairings {
		sheet.Boards[i] = models.Board{
			Number:      i + 1,
			Player1ID:   p.ID1,
			Player1Name: p.Name1,
			Player2ID:   p.ID2,
			Player2Name: p.Name2,
		}
	}
	if round.Bye != nil {
		for _, ps := range toPlayerStandings(standings) {
			if ps.PlayerID == round.Bye.ID {
				bye := ps
				sheet.Bye = &bye
				break
			}
		}
	}
	return sheet
}

// toPlayerStandings assigns competition ranks: equal wins share a rank and
// the next rank skips accordingly.
func toPlayerStandings(standings []pairing.Standing) []models.PlayerStanding {
	out := make([]models.PlayerStanding, len(standings))
	for i, st := range standings {
		rank := i + 1
		if i > 0 && standings[i-1].Wins == st.Wins {
			rank = out[i-1].Rank
		}
		out[i] = models.PlayerStanding{
			Rank:          rank,
			PlayerID:      st.ID,
			Name:          st.Name,
			Wins:          st.Wins,
			MatchesPlayed: st.MatchesPlayed,
		}
	}
	return out
}
