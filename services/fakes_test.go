package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/swiss-pairing/hub"
	"github.com/Dosada05/swiss-pairing/models"
	"github.com/Dosada05/swiss-pairing/repositories"
	"github.com/Dosada05/swiss-pairing/storage"
)

// memStore is an in-memory stand-in for the postgres repositories. It
// enforces the same foreign keys the schema does.
type memStore struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
	players     map[int]*models.Player
	matches     map[int]*models.Match
	failLists   error
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[int]*models.Tournament),
		players:     make(map[int]*models.Player),
		matches:     make(map[int]*models.Match),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type memTournamentRepo struct{ s *memStore }
type memPlayerRepo struct{ s *memStore }
type memMatchRepo struct{ s *memStore }
type memTx struct{}

func (memTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

func (r memTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	cp := *t
	r.s.tournaments[t.ID] = &cp
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memTournamentRepo) List(_ context.Context, limit, offset int) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.s.tournaments))
	for _, t := range r.s.tournaments {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []*models.Tournament{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r memTournamentRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	return nil
}

func (r memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[p.TournamentID]; !ok {
		return repositories.ErrPlayerTournamentInvalid
	}
	p.ID = r.s.id()
	cp := *p
	r.s.players[p.ID] = &cp
	return nil
}

func (r memPlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPlayerRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLists != nil {
		return nil, r.s.failLists
	}
	out := make([]*models.Player, 0)
	for _, p := range r.s.players {
		if p.TournamentID == tournamentID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlayerRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	players, err := r.ListByTournament(ctx, tournamentID)
	return len(players), err
}

func (r memPlayerRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			return 0, repositories.ErrPlayersHaveMatches
		}
	}
	var n int64
	for id, p := range r.s.players {
		if p.TournamentID == tournamentID {
			delete(r.s.players, id)
			n++
		}
	}
	return n, nil
}

func (r memMatchRepo) Create(_ context.Context, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.players[m.WinnerID]; !ok {
		return repositories.ErrMatchPlayerInvalid
	}
	if _, ok := r.s.players[m.LoserID]; !ok {
		return repositories.ErrMatchPlayerInvalid
	}
	m.ID = r.s.id()
	cp := *m
	r.s.matches[m.ID] = &cp
	return nil
}

func (r memMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLists != nil {
		return nil, r.s.failLists
	}
	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
			n++
		}
	}
	return n, nil
}

type recordedEvent struct {
	Room    string
	Message interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Room: roomID, Message: message})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		if m, ok := e.Message.(hub.Message); ok {
			out = append(out, m.Type)
		}
	}
	return out
}

type fakeUploader struct {
	fail    bool
	uploads map[string][]byte
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.fail {
		return nil, errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if u.uploads == nil {
		u.uploads = make(map[string][]byte)
	}
	u.uploads[key] = body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://sheets.example.com/" + key
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store       *memStore
	events      *recordingBroadcaster
	uploader    *fakeUploader
	tournaments TournamentService
	players     PlayerService
	matches     MatchService
	pairings    PairingService
}

func newFixture(cfg PairingConfig) *fixture {
	store := newMemStore()
	events := &recordingBroadcaster{}
	uploader := &fakeUploader{}
	tRepo, pRepo, mRepo := memTournamentRepo{store}, memPlayerRepo{store}, memMatchRepo{store}
	logger := discardLogger()
	return &fixture{
		store:       store,
		events:      events,
		uploader:    uploader,
		tournaments: NewTournamentService(memTx{}, tRepo, pRepo, mRepo, events, logger),
		players:     NewPlayerService(tRepo, pRepo, events, logger),
		matches:     NewMatchService(tRepo, pRepo, mRepo, events, logger),
		pairings:    NewPairingService(cfg, tRepo, pRepo, mRepo, uploader, events, logger),
	}
}
