package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedTournament(t *testing.T, f *fixture, names ...string) (*models.Tournament, []*models.Player) {
	t.Helper()
	ctx := context.Background()
	tour, err := f.tournaments.Create(ctx, CreateTournamentInput{Name: "Club Swiss"})
	require.NoError(t, err)

	players := make([]*models.Player, 0, len(names))
	for _, name := range names {
		p, err := f.players.Register(ctx, tour.ID, RegisterPlayerInput{Name: name})
		require.NoError(t, err)
		players = append(players, p)
	}
	return tour, players
}

func report(t *testing.T, f *fixture, tournamentID int, winner, loser *models.Player) {
	t.Helper()
	_, err := f.matches.Report(context.Background(), tournamentID, ReportMatchInput{WinnerID: winner.ID, LoserID: loser.ID})
	require.NoError(t, err)
}

func seedPtr(v int64) *int64 { return &v }

func TestCreateTournamentValidation(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()

	_, err := f.tournaments.Create(ctx, CreateTournamentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	tour, err := f.tournaments.Create(ctx, CreateTournamentInput{Name: " Spring Open "})
	require.NoError(t, err)
	assert.Equal(t, "Spring Open", tour.Name)
	assert.Equal(t, models.StatusRegistration, tour.Status)

	_, err = f.tournaments.Create(ctx, CreateTournamentInput{Name: "Spring Open"})
	assert.ErrorIs(t, err, ErrTournamentNameConflict)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(PairingConfig{})
	tour, _ := seedTournament(t, f)

	err := f.tournaments.UpdateStatus(context.Background(), tour.ID, "paused")
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)

	err = f.tournaments.UpdateStatus(context.Background(), 999, models.StatusActive)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegisterPlayer(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()
	tour, _ := seedTournament(t, f)

	p, err := f.players.Register(ctx, tour.ID, RegisterPlayerInput{Name: "  Chandra Nalaar "})
	require.NoError(t, err)
	assert.Equal(t, "Chandra Nalaar", p.Name)
	assert.NotZero(t, p.ID)

	_, err = f.players.Register(ctx, tour.ID, RegisterPlayerInput{Name: ""})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = f.players.Register(ctx, 12345, RegisterPlayerInput{Name: "Nobody"})
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	n, err := f.players.Count(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Contains(t, f.events.types(), hub.EventPlayerRegistered)
}

func TestRegisterPlayerRejectedWhenCompleted(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()
	tour, _ := seedTournament(t, f)
	require.NoError(t, f.tournaments.UpdateStatus(ctx, tour.ID, models.StatusCompleted))

	_, err := f.players.Register(ctx, tour.ID, RegisterPlayerInput{Name: "Late"})
	assert.ErrorIs(t, err, ErrTournamentCompleted)
}

func TestReportMatchValidation(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()
	tour, ps := seedTournament(t, f, "Alice", "Bruno")
	other, err := f.tournaments.Create(ctx, CreateTournamentInput{Name: "Other"})
	require.NoError(t, err)
	stranger, err := f.players.Register(ctx, other.ID, RegisterPlayerInput{Name: "Stranger"})
	require.NoError(t, err)

	_, err = f.matches.Report(ctx, tour.ID, ReportMatchInput{WinnerID: ps[0].ID, LoserID: ps[0].ID})
	assert.ErrorIs(t, err, ErrSelfMatch)

	_, err = f.matches.Report(ctx, tour.ID, ReportMatchInput{WinnerID: ps[0].ID})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.matches.Report(ctx, tour.ID, ReportMatchInput{WinnerID: ps[0].ID, LoserID: stranger.ID})
	assert.ErrorIs(t, err, ErrPlayerNotInTournament)

	_, err = f.matches.Report(ctx, tour.ID, ReportMatchInput{WinnerID: ps[0].ID, LoserID: 4242})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	round := 1
	m, err := f.matches.Report(ctx, tour.ID, ReportMatchInput{WinnerID: ps[1].ID, LoserID: ps[0].ID, Round: &round})
	require.NoError(t, err)
	assert.Equal(t, ps[1].ID, m.WinnerID)

	matches, err := f.matches.List(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Contains(t, f.events.types(), hub.EventMatchReported)
}

func TestDeletePlayersRequiresClearedMatches(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()
	tour, ps := seedTournament(t, f, "Alice", "Bruno")
	report(t, f, tour.ID, ps[0], ps[1])

	_, err := f.players.DeleteAll(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrPlayersHaveMatches)

	n, err := f.matches.DeleteAll(ctx, tour.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.players.DeleteAll(ctx, tour.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestResetClearsMatchesAndPlayers(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()
	tour, ps := seedTournament(t, f, "Alice", "Bruno", "Chen", "Dana")
	report(t, f, tour.ID, ps[0], ps[1])
	_, err := f.pairings.NextRound(ctx, tour.ID, seedPtr(1))
	require.NoError(t, err)

	require.NoError(t, f.tournaments.Reset(ctx, tour.ID))

	n, err := f.players.Count(ctx, tour.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	matches, err := f.matches.List(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)

	got, err := f.tournaments.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistration, got.Status)
	assert.Contains(t, f.events.types(), hub.EventTournamentReset)

	assert.ErrorIs(t, f.tournaments.Reset(ctx, 777), ErrTournamentNotFound)
}

func TestStandingsAfterFirstRound(t *testing.T) {
	f := newFixture(PairingConfig{})
	tour, ps := seedTournament(t, f, "Alice", "Bruno", "Chen", "Dana")
	report(t, f, tour.ID, ps[0], ps[1])
	report(t, f, tour.ID, ps[2], ps[3])

	standings, err := f.pairings.Standings(context.Background(), tour.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.PlayerStanding{
		{Rank: 1, PlayerID: ps[0].ID, Name: "Alice", Wins: 1, MatchesPlayed: 1},
		{Rank: 1, PlayerID: ps[2].ID, Name: "Chen", Wins: 1, MatchesPlayed: 1},
		{Rank: 3, PlayerID: ps[1].ID, Name: "Bruno", Wins: 0, MatchesPlayed: 1},
		{Rank: 3, PlayerID: ps[3].ID, Name: "Dana", Wins: 0, MatchesPlayed: 1},
	}, standings)
}

func TestNextRoundPairsByWins(t *testing.T) {
	f := newFixture(PairingConfig{Strategy: pairing.StrategyBacktrack})
	ctx := context.Background()
	tour, ps := seedTournament(t, f, "Alice", "Bruno", "Chen", "Dana")
	report(t, f, tour.ID, ps[0], ps[1])
	report(t, f, tour.ID, ps[2], ps[3])

	sheet, err := f.pairings.NextRound(ctx, tour.ID, seedPtr(42))
	require.NoError(t, err)

	assert.Equal(t, 2, sheet.Round)
	assert.Equal(t, int64(42), sheet.Seed)
	assert.Equal(t, "backtrack", sheet.Strategy)
	require.Len(t, sheet.Boards, 2)
	assert.Equal(t, models.Board{Number: 1, Player1ID: ps[0].ID, Player1Name: "Alice", Player2ID: ps[2].ID, Player2Name: "Chen"}, sheet.Boards[0])
	assert.Equal(t, models.Board{Number: 2, Player1ID: ps[1].ID, Player1Name: "Bruno", Player2ID: ps[3].ID, Player2Name: "Dana"}, sheet.Boards[1])
	assert.Nil(t, sheet.Bye)

	got, err := f.tournaments.GetByID(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
	assert.Contains(t, f.events.types(), hub.EventPairingsGenerated)
}

func TestNextRoundExportsSheet(t *testing.T) {
	f := newFixture(PairingConfig{})
	tour, _ := seedTournament(t, f, "Alice", "Bruno")

	sheet, err := f.pairings.NextRound(context.Background(), tour.ID, seedPtr(7))
	require.NoError(t, err)

	key := "tournaments/1/round-1-7.json"
	require.Contains(t, f.uploader.uploads, key)
	assert.Equal(t, "https://sheets.example.com/"+key, sheet.SheetURL)

	var exported models.RoundPairings
	require.NoError(t, json.Unmarshal(f.uploader.uploads[key], &exported))
	assert.Equal(t, sheet.Boards, exported.Boards)
}

func TestNextRoundSurvivesExportFailure(t *testing.T) {
	f := newFixture(PairingConfig{})
	f.uploader.fail = true
	tour, _ := seedTournament(t, f, "Alice", "Bruno")

	sheet, err := f.pairings.NextRound(context.Background(), tour.ID, seedPtr(7))
	require.NoError(t, err)
	assert.Empty(t, sheet.SheetURL)
	assert.Len(t, sheet.Boards, 1)
}

func TestNextRoundOddRoster(t *testing.T) {
	f := newFixture(PairingConfig{})
	tour, _ := seedTournament(t, f, "Alice", "Bruno", "Chen")

	_, err := f.pairings.NextRound(context.Background(), tour.ID, seedPtr(1))
	assert.ErrorIs(t, err, ErrOddRoster)
	assert.NotContains(t, f.events.types(), hub.EventPairingsGenerated)
}

func TestNextRoundOddRosterWithBye(t *testing.T) {
	f := newFixture(PairingConfig{AllowBye: true})
	tour, ps := seedTournament(t, f, "Alice", "Bruno", "Chen")

	sheet, err := f.pairings.NextRound(context.Background(), tour.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, sheet.Bye)
	assert.Len(t, sheet.Boards, 1)

	placed := map[int]bool{sheet.Bye.PlayerID: true}
	for _, b := range sheet.Boards {
		placed[b.Player1ID] = true
		placed[b.Player2ID] = true
	}
	for _, p := range ps {
		assert.True(t, placed[p.ID], "player %d not placed", p.ID)
	}
}

func TestNextRoundInfeasible(t *testing.T) {
	f := newFixture(PairingConfig{Strategy: pairing.StrategyResample, MaxAttempts: 100})
	tour, ps := seedTournament(t, f, "Alice", "Bruno")
	report(t, f, tour.ID, ps[0], ps[1])
	report(t, f, tour.ID, ps[1], ps[0])

	// both on one win and they have already met
	_, err := f.pairings.NextRound(context.Background(), tour.ID, seedPtr(3))
	assert.ErrorIs(t, err, ErrInfeasiblePairing)
}

func TestNextRoundUnknownOrCompletedTournament(t *testing.T) {
	f := newFixture(PairingConfig{})
	ctx := context.Background()

	_, err := f.pairings.NextRound(ctx, 99, nil)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	tour, _ := seedTournament(t, f, "Alice", "Bruno")
	require.NoError(t, f.tournaments.UpdateStatus(ctx, tour.ID, models.StatusCompleted))
	_, err = f.pairings.NextRound(ctx, tour.ID, nil)
	assert.ErrorIs(t, err, ErrTournamentCompleted)
}

func TestSnapshotErrorsAreWrapped(t *testing.T) {
	f := newFixture(PairingConfig{})
	tour, _ := seedTournament(t, f, "Alice", "Bruno")
	boom := errors.New("connection reset")
	f.store.failLists = boom

	_, err := f.pairings.Standings(context.Background(), tour.ID)
	assert.ErrorIs(t, err, boom)
}

func TestAuthLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := NewAuthService(string(hash))
	ctx := context.Background()

	assert.NoError(t, auth.Login(ctx, LoginInput{Password: "s3cret"}))
	assert.ErrorIs(t, auth.Login(ctx, LoginInput{Password: "wrong"}), ErrInvalidCredentials)
	assert.ErrorIs(t, auth.Login(ctx, LoginInput{}), ErrInvalidCredentials)
	assert.ErrorIs(t, NewAuthService("").Login(ctx, LoginInput{Password: "x"}), ErrAuthNotConfigured)
}
