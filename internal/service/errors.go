package service

import "errors"

// Validation failures: rejected before any state is persisted
var (
	ErrNoQuestions   = errors.New("no questions were supplied for this game")
	ErrTopicMismatch = errors.New("all questions must belong to the selected topic")
	ErrQuestionCount = errors.New("question count does not match the requested amount")
)

// Lifecycle failures
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameStarted       = errors.New("game already started")
	ErrGameNotStarted    = errors.New("game has not started")
	ErrGameFinished      = errors.New("game already finished")
	ErrNoCurrentQuestion = errors.New("no current question")
	ErrNotHost           = errors.New("only the host can start the game")
	ErrNotInGame         = errors.New("player is not part of this game")
)

// Answer submission failures
var (
	ErrAnswerClosed    = errors.New("answers for this question are closed")
	ErrAlreadyAnswered = errors.New("answer already recorded for this question")
)

// Question supplier failures
var (
	ErrSupplierUnavailable = errors.New("no question supplier is configured")
	ErrSupplierNoQuestions = errors.New("the supplier returned no usable questions")
	ErrSupplierShortfall   = errors.New("the supplier did not produce enough unique questions")
)

// ErrCodeExhausted is returned when repeated game code collisions exhaust
// the retry budget
var ErrCodeExhausted = errors.New("failed to generate unique game code")

var ErrInvalidToken = errors.New("invalid or expired token")
