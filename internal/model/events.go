package model

// Room broadcast payloads. Kept as structs rather than ad-hoc maps so the
// coordinator tests can assert on what went out.

// PlayerJoinedEvent carries the updated roster after a join
type PlayerJoinedEvent struct {
	Players []Player `json:"players"`
}

// GameStartedEvent announces the waiting -> in-progress transition
type GameStartedEvent struct {
	QuestionsCount int `json:"questionsCount"`
}

// NewQuestionEvent delivers the public projection of one question
type NewQuestionEvent struct {
	Question PublicQuestion `json:"question"`
	Index    int            `json:"index"`
}

// AnswerResultEvent reveals the correct option once a question resolves
type AnswerResultEvent struct {
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
	Players            []Player `json:"players"`
}

// GameFinishedEvent carries the final standings
type GameFinishedEvent struct {
	Players []Player `json:"players"`
}

// RemainingTimeEvent answers a resync request for the current question timer
type RemainingTimeEvent struct {
	Index            int     `json:"index"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}
