package model

import "strings"

// Question is a trivia question attached to a game. Immutable once the game
// is created. The correct index is never broadcast before resolution; use
// Public() for delivery payloads.
type Question struct {
	Text               string   `json:"text" bson:"text"`
	Options            []string `json:"options" bson:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" bson:"correctAnswerIndex"`
	Explanation        string   `json:"explanation" bson:"explanation"`
	Category           string   `json:"category" bson:"category"`
	Difficulty         string   `json:"difficulty" bson:"difficulty"`
}

// PublicQuestion is the projection sent on question delivery. It carries no
// correct index and no explanation; those arrive only in the answerResult
// broadcast once the question has resolved.
type PublicQuestion struct {
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Category   string   `json:"category,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Public returns the pre-resolution projection of the question
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		Text:       q.Text,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
}

// CorrectValue returns the text of the correct option, or "" when the
// record is malformed
func (q Question) CorrectValue() string {
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectAnswerIndex]
}

// NormalizedText is the dedup key for supplier batches
func (q Question) NormalizedText() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}

// IncomingQuestion accepts the two prompt field names clients send
// ("text" from the generator, "question" from older clients)
type IncomingQuestion struct {
	Text               string   `json:"text"`
	Prompt             string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
	Category           string   `json:"category"`
	Topic              string   `json:"topic"`
	Difficulty         string   `json:"difficulty"`
}

// Normalize collapses the alternate field names into a Question
func (in IncomingQuestion) Normalize() Question {
	text := in.Text
	if text == "" {
		text = in.Prompt
	}
	category := in.Category
	if category == "" {
		category = in.Topic
	}
	return Question{
		Text:               text,
		Options:            in.Options,
		CorrectAnswerIndex: in.CorrectAnswerIndex,
		Explanation:        in.Explanation,
		Category:           category,
		Difficulty:         in.Difficulty,
	}
}
