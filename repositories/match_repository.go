package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-pairing/models"
)

var (
	ErrMatchPlayerInvalid     = errors.New("match references an unknown player")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchSelfPlay          = errors.New("winner and loser must be different players")
)

type MatchRepository interface {
	Create(ctx context.Context, m *models.Match) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

var matchConstraintErrors = map[string]map[string]error{
	pqForeignKeyViolation: {
		"matches_winner_id_fkey":     ErrMatchPlayerInvalid,
		"matches_loser_id_fkey":      ErrMatchPlayerInvalid,
		"matches_tournament_id_fkey": ErrMatchTournamentInvalid,
	},
	pqCheckViolation: {
		"chk_match_distinct_players": ErrMatchSelfPlay,
	},
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, winner_id, loser_id, round)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, m.TournamentID, m.WinnerID, m.LoserID, m.Round).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if mapped := constraintError(err, matchConstraintErrors); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT id, tournament_id, winner_id, loser_id, round, created_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches by tournament: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		var round sql.NullInt64
		if err := rows.Scan(&m.ID, &m.TournamentID, &m.WinnerID, &m.LoserID, &round, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if round.Valid {
			v := int(round.Int64)
			m.Round = &v
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	result, err := pickExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}
