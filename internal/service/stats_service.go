package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizclash/internal/model"
	"quizclash/internal/repository"
)

// StatsService turns a finished game into durable records: one GameResult
// per player plus a transactional UserStats upsert for each.
type StatsService struct {
	resultRepo repository.ResultRepo
	userRepo   repository.UserRepo
}

// NewStatsService creates a new stats service
func NewStatsService(resultRepo repository.ResultRepo, userRepo repository.UserRepo) *StatsService {
	return &StatsService{
		resultRepo: resultRepo,
		userRepo:   userRepo,
	}
}

// ResultsForUser returns a player's match history, newest first
func (s *StatsService) ResultsForUser(ctx context.Context, uid string) ([]*model.GameResult, error) {
	results, err := s.resultRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return results, nil
}

// StatsForUser returns a player's aggregate stats; players with no
// recorded games get zeroed stats rather than an error
func (s *StatsService) StatsForUser(ctx context.Context, uid string) (*model.UserStats, error) {
	user, err := s.userRepo.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return &model.UserStats{}, nil
	}
	return &user.Stats, nil
}

// RecordGame writes finalization records for every player. Each player's
// work is independent: a failure is logged and the loop continues, so one
// bad stats transaction cannot block the remaining players.
func (s *StatsService) RecordGame(ctx context.Context, game *model.Game) {
	outcomes := model.ComputeOutcomes(game.Players)
	now := time.Now()

	for _, player := range game.Players {
		outcome := outcomes[player.UID]

		result := &model.GameResult{
			UID:            player.UID,
			GameID:         game.Code,
			Date:           now,
			Score:          player.Score,
			Outcome:        outcome,
			Players:        game.Players,
			QuestionsCount: len(game.Questions),
			Topic:          game.Topic,
			Difficulty:     game.Difficulty,
			WasHost:        game.HostID == player.UID,
		}
		if err := s.resultRepo.Create(ctx, result); err != nil {
			log.Printf("Failed to record result for %s in game %s: %v", player.UID, game.Code, err)
		}

		if err := s.userRepo.ApplyGameStats(ctx, player.UID, player.DisplayName, outcome, player.Score); err != nil {
			log.Printf("Failed to update stats for %s in game %s: %v", player.UID, game.Code, err)
		}
	}
}
