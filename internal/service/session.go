package service

import (
	"sync"
	"time"

	"quizclash/internal/model"
)

// gameSession is the in-memory runtime for one active game: answers staged
// before resolution, the set of already-resolved question indexes, and the
// timers that drive progression. Everything is guarded by mu, which is what
// serializes the "has everyone answered" check-and-act per game.
type gameSession struct {
	mu       sync.Mutex
	answers  map[int]map[string]model.AnswerSelection
	resolved map[int]bool
	deadline time.Time

	startTimer   *time.Timer
	answerTimer  *time.Timer
	advanceTimer *time.Timer
}

func newGameSession() *gameSession {
	return &gameSession{
		answers:  make(map[int]map[string]model.AnswerSelection),
		resolved: make(map[int]bool),
	}
}

// stage records an answer and returns how many distinct players have
// answered this index. Callers must hold mu.
func (gs *gameSession) stage(index int, uid string, sel model.AnswerSelection) int {
	if gs.answers[index] == nil {
		gs.answers[index] = make(map[string]model.AnswerSelection)
	}
	gs.answers[index][uid] = sel
	return len(gs.answers[index])
}

// claimResolution marks the index resolved and returns a snapshot of the
// staged answers. The second return is false when the index was already
// claimed, which is what makes resolution at-most-once under the
// full-coverage/deadline race. Callers must hold mu.
func (gs *gameSession) claimResolution(index int) (map[string]model.AnswerSelection, bool) {
	if gs.resolved[index] {
		return nil, false
	}
	gs.resolved[index] = true

	snapshot := make(map[string]model.AnswerSelection, len(gs.answers[index]))
	for uid, sel := range gs.answers[index] {
		snapshot[uid] = sel
	}
	delete(gs.answers, index)

	if gs.answerTimer != nil {
		gs.answerTimer.Stop()
		gs.answerTimer = nil
	}
	return snapshot, true
}

// releaseResolution undoes a claim and restores the staged answers so a
// failed resolution can retry. Callers must hold mu.
func (gs *gameSession) releaseResolution(index int, answers map[string]model.AnswerSelection) {
	delete(gs.resolved, index)
	gs.answers[index] = answers
}

// cancelTimers stops all pending work for the game. Callers must hold mu.
func (gs *gameSession) cancelTimers() {
	for _, t := range []*time.Timer{gs.startTimer, gs.answerTimer, gs.advanceTimer} {
		if t != nil {
			t.Stop()
		}
	}
	gs.startTimer = nil
	gs.answerTimer = nil
	gs.advanceTimer = nil
}
