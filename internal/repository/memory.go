package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizclash/internal/model"
)

// In-memory implementations of the repo contracts. The coordinator tests
// run against these instead of a live MongoDB; they honor the same
// semantics (duplicate-code rejection, nil-on-missing, atomic stats upsert).

type MemoryGameRepo struct {
	mu    sync.RWMutex
	games map[string]model.Game
}

func NewMemoryGameRepo() *MemoryGameRepo {
	return &MemoryGameRepo{games: make(map[string]model.Game)}
}

func (r *MemoryGameRepo) Create(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.Code]; ok {
		return ErrDuplicateCode
	}
	r.games[game.Code] = *game
	return nil
}

func (r *MemoryGameRepo) GetByCode(_ context.Context, code string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[code]
	if !ok {
		return nil, nil
	}
	copied := game
	copied.Players = append([]model.Player(nil), game.Players...)
	copied.Questions = append([]model.Question(nil), game.Questions...)
	return &copied, nil
}

func (r *MemoryGameRepo) UpdatePlayers(_ context.Context, code string, players []model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[code]
	if !ok {
		return nil
	}
	game.Players = append([]model.Player(nil), players...)
	r.games[code] = game
	return nil
}

func (r *MemoryGameRepo) SetStatus(_ context.Context, code string, status model.GameStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[code]
	if !ok {
		return nil
	}
	game.Status = status
	r.games[code] = game
	return nil
}

func (r *MemoryGameRepo) SetCurrentQuestion(_ context.Context, code string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game, ok := r.games[code]
	if !ok {
		return nil
	}
	game.CurrentQuestion = index
	r.games[code] = game
	return nil
}

func (r *MemoryGameRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, code)
	return nil
}

type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

func (r *MemoryUserRepo) Get(_ context.Context, uid string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[uid]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryUserRepo) ApplyGameStats(_ context.Context, uid, displayName string, outcome model.Outcome, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[uid]
	if !ok {
		user = model.User{UID: uid, DisplayName: displayName}
	}
	user.Stats.GamesPlayed++
	if outcome == model.OutcomeWin {
		user.Stats.Wins++
	}
	user.Stats.CorrectAnswers += score
	r.users[uid] = user
	return nil
}

type MemoryResultRepo struct {
	mu      sync.Mutex
	results []model.GameResult
}

func NewMemoryResultRepo() *MemoryResultRepo {
	return &MemoryResultRepo{}
}

func (r *MemoryResultRepo) Create(_ context.Context, result *model.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.Date.IsZero() {
		result.Date = time.Now()
	}
	r.results = append(r.results, *result)
	return nil
}

func (r *MemoryResultRepo) GetByUID(_ context.Context, uid string) ([]*model.GameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GameResult
	for i := range r.results {
		if r.results[i].UID == uid {
			copied := r.results[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}
