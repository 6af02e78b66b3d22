package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"quizclash/internal/cache"
	"quizclash/internal/config"
	"quizclash/internal/model"
	"quizclash/internal/repository"
)

// GameService is the session coordinator: it owns the per-game lifecycle
// state machine, collects answers, resolves questions, and drives
// time-based progression. All mutation for one game is serialized through
// that game's session lock.
type GameService struct {
	gameRepo    repository.GameRepo
	gameCache   cache.GameCache
	leaderboard cache.LeaderboardCache
	statsSvc    *StatsService
	supplier    *SupplierService
	broadcaster Broadcaster
	cfg         config.GameConfig

	mu       sync.Mutex
	sessions map[string]*gameSession
}

// NewGameService creates a new game service
func NewGameService(
	gameRepo repository.GameRepo,
	gameCache cache.GameCache,
	leaderboard cache.LeaderboardCache,
	statsSvc *StatsService,
	supplier *SupplierService,
	cfg config.GameConfig,
) *GameService {
	return &GameService{
		gameRepo:    gameRepo,
		gameCache:   gameCache,
		leaderboard: leaderboard,
		statsSvc:    statsSvc,
		supplier:    supplier,
		cfg:         cfg,
		sessions:    make(map[string]*gameSession),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateGame validates or fetches the question batch, generates a unique
// 6-digit code and persists the game in waiting status with the host as
// sole player.
func (s *GameService) CreateGame(ctx context.Context, hostID, displayName string, req *model.CreateGameRequest) (*model.Game, error) {
	questions, err := s.resolveQuestions(ctx, req)
	if err != nil {
		return nil, err
	}

	game := &model.Game{
		HostID:   hostID,
		Status:   model.GameWaiting,
		IsPublic: req.IsPublic,
		Players: []model.Player{
			{UID: hostID, DisplayName: displayName, Score: 0},
		},
		Questions:       questions,
		CurrentQuestion: 0,
		Topic:           req.Topic,
		Difficulty:      defaultDifficulty(req.Difficulty),
		CreatedAt:       time.Now(),
	}

	created := false
	for attempts := 0; attempts < s.cfg.CodeAttempts; attempts++ {
		code, err := generateGameCode()
		if err != nil {
			return nil, err
		}
		if exists, err := s.gameCache.Exists(ctx, code); err == nil && exists {
			continue
		}
		game.Code = code
		err = s.gameRepo.Create(ctx, game)
		if err == repository.ErrDuplicateCode {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
		created = true
		break
	}
	if !created {
		return nil, ErrCodeExhausted
	}

	meta := &model.GameMeta{
		HostID:     game.HostID,
		Status:     game.Status,
		Topic:      game.Topic,
		Difficulty: game.Difficulty,
		CreatedAt:  game.CreatedAt,
	}
	if err := s.gameCache.SetMeta(ctx, game.Code, meta); err != nil {
		log.Printf("Failed to cache game %s: %v", game.Code, err)
	}
	if err := s.leaderboard.UpdateScore(ctx, game.Code, hostID, 0); err != nil {
		log.Printf("Failed to init leaderboard for game %s: %v", game.Code, err)
	}

	s.getOrCreateSession(game.Code)
	return game, nil
}

// resolveQuestions returns the validated, truncated question batch for a
// creation request, calling the supplier when the client sent none
func (s *GameService) resolveQuestions(ctx context.Context, req *model.CreateGameRequest) ([]model.Question, error) {
	var questions []model.Question
	if len(req.Questions) > 0 {
		questions = make([]model.Question, 0, len(req.Questions))
		for _, in := range req.Questions {
			questions = append(questions, in.Normalize())
		}
	} else if s.supplier != nil && s.supplier.IsEnabled() && req.Topic != "" && req.QuestionCount > 0 {
		supplied, err := s.supplier.Generate(ctx, req.Topic, req.Difficulty, req.QuestionCount)
		if err != nil {
			return nil, err
		}
		questions = supplied
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if req.Topic != "" {
		for _, q := range questions {
			if q.Category != req.Topic {
				return nil, ErrTopicMismatch
			}
		}
	}
	if req.QuestionCount > 0 {
		// Tolerate over-supply by truncating; under-supply is an error
		if len(questions) > req.QuestionCount {
			questions = questions[:req.QuestionCount]
		}
		if len(questions) != req.QuestionCount {
			return nil, ErrQuestionCount
		}
	}
	return questions, nil
}

// JoinGame idempotently adds a player to a waiting game and broadcasts the
// updated roster to the room. The roster read-modify-write runs under the
// game's session lock so concurrent joins cannot overwrite each other.
func (s *GameService) JoinGame(ctx context.Context, code, uid, displayName string) (*model.Game, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	sess := s.getOrCreateSession(code)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Re-read under the lock; another join may have changed the roster
	game, err = s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != model.GameWaiting {
		return nil, ErrGameStarted
	}

	if !game.HasPlayer(uid) {
		game.Players = append(game.Players, model.Player{UID: uid, DisplayName: displayName, Score: 0})
		if err := s.gameRepo.UpdatePlayers(ctx, code, game.Players); err != nil {
			return nil, fmt.Errorf("failed to add player: %w", err)
		}
		if err := s.leaderboard.UpdateScore(ctx, code, uid, 0); err != nil {
			log.Printf("Failed to init leaderboard entry for %s in game %s: %v", uid, code, err)
		}
	}

	s.broadcast(code, "playerJoined", model.PlayerJoinedEvent{Players: game.Players})
	return game, nil
}

// StartGame transitions a waiting game to in-progress. Only the host may
// start; delivery of question 0 follows after the settle delay.
func (s *GameService) StartGame(ctx context.Context, code, uid string) error {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}
	switch game.Status {
	case model.GameInProgress:
		return ErrGameStarted
	case model.GameFinished:
		return ErrGameFinished
	}
	if game.HostID != uid {
		return ErrNotHost
	}
	if len(game.Questions) == 0 {
		return ErrNoQuestions
	}

	// Check-then-set under the session lock so only one start wins
	sess := s.getOrCreateSession(code)
	sess.mu.Lock()
	game, err = s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		sess.mu.Unlock()
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		sess.mu.Unlock()
		return ErrGameNotFound
	}
	switch game.Status {
	case model.GameInProgress:
		sess.mu.Unlock()
		return ErrGameStarted
	case model.GameFinished:
		sess.mu.Unlock()
		return ErrGameFinished
	}
	if err := s.gameRepo.SetStatus(ctx, code, model.GameInProgress); err != nil {
		sess.mu.Unlock()
		return fmt.Errorf("failed to start game: %w", err)
	}
	if err := s.gameCache.SetStatus(ctx, code, model.GameInProgress); err != nil {
		log.Printf("Failed to update cached status for game %s: %v", code, err)
	}
	sess.startTimer = time.AfterFunc(s.cfg.StartDelay, func() {
		s.deliverQuestion(code, 0)
	})
	sess.mu.Unlock()

	s.broadcast(code, "gameStarted", model.GameStartedEvent{QuestionsCount: len(game.Questions)})
	return nil
}

// SubmitAnswer stages an answer for the current question, at most once per
// player per index. When the last expected answer arrives the question
// resolves immediately; otherwise the per-question deadline will force it.
func (s *GameService) SubmitAnswer(ctx context.Context, code, uid string, questionIndex int, sel model.AnswerSelection) error {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}
	switch game.Status {
	case model.GameWaiting:
		return ErrGameNotStarted
	case model.GameFinished:
		return ErrGameFinished
	}
	if !game.HasPlayer(uid) {
		return ErrNotInGame
	}
	if game.CurrentQuestion >= len(game.Questions) {
		return ErrNoCurrentQuestion
	}
	if questionIndex != game.CurrentQuestion {
		return ErrAnswerClosed
	}

	sess := s.getOrCreateSession(code)

	sess.mu.Lock()
	if sess.resolved[questionIndex] {
		sess.mu.Unlock()
		return ErrAnswerClosed
	}
	if _, dup := sess.answers[questionIndex][uid]; dup {
		sess.mu.Unlock()
		return ErrAlreadyAnswered
	}
	answered := sess.stage(questionIndex, uid, sel)
	full := answered == len(game.Players)
	sess.mu.Unlock()

	if full {
		s.resolveQuestion(code, questionIndex)
	}
	return nil
}

// resolveQuestion closes out one question: exactly one caller wins the
// claim (full coverage and the deadline timer can race), scores are
// computed and persisted once, and advancement is scheduled.
func (s *GameService) resolveQuestion(code string, index int) {
	sess := s.lookupSession(code)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	answers, claimed := sess.claimResolution(index)
	sess.mu.Unlock()
	if !claimed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		// Transient read failure: release the claim and retry so the
		// game cannot stall with its answer timer already stopped
		log.Printf("Failed to load game %s for resolution of question %d: %v", code, index, err)
		sess.mu.Lock()
		sess.releaseResolution(index, answers)
		sess.answerTimer = time.AfterFunc(s.cfg.AdvanceDelay, func() {
			s.resolveQuestion(code, index)
		})
		sess.mu.Unlock()
		return
	}
	if game == nil || game.Status != model.GameInProgress {
		return
	}
	if index >= len(game.Questions) {
		return
	}
	question := game.Questions[index]

	for i := range game.Players {
		if sel, ok := answers[game.Players[i].UID]; ok && sel.Matches(question) {
			game.Players[i].Score++
		}
	}

	if err := s.gameRepo.UpdatePlayers(ctx, code, game.Players); err != nil {
		log.Printf("Failed to persist scores for game %s question %d: %v", code, index, err)
	}
	for _, p := range game.Players {
		if err := s.leaderboard.UpdateScore(ctx, code, p.UID, p.Score); err != nil {
			log.Printf("Failed to update leaderboard for %s in game %s: %v", p.UID, code, err)
		}
	}

	s.broadcast(code, "answerResult", model.AnswerResultEvent{
		CorrectAnswerIndex: question.CorrectAnswerIndex,
		Explanation:        question.Explanation,
		Players:            game.Players,
	})

	next := index + 1
	total := len(game.Questions)
	if next < total {
		// Move the durable cursor at resolution time so a recreated
		// session cannot re-open an already-scored question
		if err := s.gameRepo.SetCurrentQuestion(ctx, code, next); err != nil {
			log.Printf("Failed to advance game %s to question %d: %v", code, next, err)
		}
	}
	sess.mu.Lock()
	sess.advanceTimer = time.AfterFunc(s.cfg.AdvanceDelay, func() {
		s.advance(code, next, total)
	})
	sess.mu.Unlock()
}

// advance delivers the next question or finalizes when the questions are
// exhausted. The durable cursor already moved at resolution time.
func (s *GameService) advance(code string, next, total int) {
	if next >= total {
		s.finalize(code)
		return
	}
	s.deliverQuestion(code, next)
}

// deliverQuestion broadcasts the public projection of a question and arms
// the answer deadline. The correct index stays server-side until the
// answerResult broadcast.
func (s *GameService) deliverQuestion(code string, index int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil || game == nil || game.Status != model.GameInProgress {
		return
	}
	if index >= len(game.Questions) {
		s.finalize(code)
		return
	}

	public := game.Questions[index].Public()
	if public.Text == "" {
		// Malformed record: ship a placeholder instead of wedging the room
		public = model.PublicQuestion{Text: "Error: question has no text", Options: []string{}}
	}

	sess := s.getOrCreateSession(code)
	sess.mu.Lock()
	sess.deadline = time.Now().Add(s.cfg.AnswerDeadline)
	sess.answerTimer = time.AfterFunc(s.cfg.AnswerDeadline, func() {
		s.resolveQuestion(code, index)
	})
	sess.mu.Unlock()

	s.broadcast(code, "newQuestion", model.NewQuestionEvent{Question: public, Index: index})
}

// finalize ends the game once: terminal status, final standings broadcast,
// then result records and stats via the stats service
func (s *GameService) finalize(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil || game == nil || game.Status == model.GameFinished {
		return
	}

	if err := s.gameRepo.SetStatus(ctx, code, model.GameFinished); err != nil {
		log.Printf("Failed to finish game %s: %v", code, err)
		return
	}
	if err := s.gameCache.SetStatus(ctx, code, model.GameFinished); err != nil {
		log.Printf("Failed to update cached status for game %s: %v", code, err)
	}
	game.Status = model.GameFinished

	s.broadcast(code, "gameFinished", model.GameFinishedEvent{Players: game.Players})
	s.statsSvc.RecordGame(ctx, game)
	s.removeSession(code)
}

// GetGame returns the sanitized view of a game for inspection over REST
func (s *GameService) GetGame(ctx context.Context, code string) (*model.GameSummary, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game.Summary(), nil
}

// IsPlayer reports whether uid is on the game's roster
func (s *GameService) IsPlayer(ctx context.Context, code, uid string) (bool, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return false, ErrGameNotFound
	}
	return game.HasPlayer(uid), nil
}

// CurrentQuestion serves the resync path for reconnecting clients
func (s *GameService) CurrentQuestion(ctx context.Context, code string) (*model.NewQuestionEvent, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	switch game.Status {
	case model.GameWaiting:
		return nil, ErrGameNotStarted
	case model.GameFinished:
		return nil, ErrGameFinished
	}
	if game.CurrentQuestion >= len(game.Questions) {
		return nil, ErrNoCurrentQuestion
	}
	return &model.NewQuestionEvent{
		Question: game.Questions[game.CurrentQuestion].Public(),
		Index:    game.CurrentQuestion,
	}, nil
}

// RemainingTime reports the seconds left on a question's deadline; zero
// when the index is not the open question
func (s *GameService) RemainingTime(ctx context.Context, code string, questionIndex int) (*model.RemainingTimeEvent, error) {
	game, err := s.gameRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	event := &model.RemainingTimeEvent{Index: questionIndex}
	if game.Status != model.GameInProgress || questionIndex != game.CurrentQuestion {
		return event, nil
	}

	sess := s.lookupSession(code)
	if sess == nil {
		return event, nil
	}
	sess.mu.Lock()
	if !sess.resolved[questionIndex] && !sess.deadline.IsZero() {
		if remaining := time.Until(sess.deadline); remaining > 0 {
			event.RemainingSeconds = remaining.Seconds()
		}
	}
	sess.mu.Unlock()
	return event, nil
}

// AbandonGame cancels pending timers and drops the in-memory session once
// every connection has left the room. Durable state is untouched.
func (s *GameService) AbandonGame(code string) {
	if s.removeSession(code) {
		log.Printf("Game %s abandoned, timers cancelled", code)
	}
}

func (s *GameService) broadcast(code, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToGame(code, msgType, payload)
	}
}

func (s *GameService) getOrCreateSession(code string) *gameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[code]; ok {
		return sess
	}
	sess := newGameSession()
	s.sessions[code] = sess
	return sess
}

func (s *GameService) lookupSession(code string) *gameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[code]
}

func (s *GameService) removeSession(code string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[code]
	delete(s.sessions, code)
	s.mu.Unlock()
	if !ok {
		return false
	}
	sess.mu.Lock()
	sess.cancelTimers()
	sess.mu.Unlock()
	return true
}

// generateGameCode returns a random 6-digit numeric code
func generateGameCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b)%900000 + 100000
	return strconv.Itoa(int(n)), nil
}

func defaultDifficulty(difficulty string) string {
	if difficulty == "" {
		return "medium"
	}
	return difficulty
}
