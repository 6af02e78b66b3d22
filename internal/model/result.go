package model

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
	OutcomeLose Outcome = "lose"
)

// GameResult is the append-only per-player record of a finished game
type GameResult struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	UID            string    `json:"uid" bson:"uid"`
	GameID         string    `json:"gameId" bson:"gameId"`
	Date           time.Time `json:"date" bson:"date"`
	Score          int       `json:"score" bson:"score"`
	Outcome        Outcome   `json:"result" bson:"result"`
	Players        []Player  `json:"players" bson:"players"`
	QuestionsCount int       `json:"questionsCount" bson:"questionsCount"`
	Topic          string    `json:"topic" bson:"topic"`
	Difficulty     string    `json:"difficulty" bson:"difficulty"`
	WasHost        bool      `json:"isHost" bson:"isHost"`
}

// ComputeOutcomes maps each uid to its outcome against the final scores.
// The top scorers win when the maximum is unique, draw when tied, and a
// maximum of zero means nobody wins.
func ComputeOutcomes(players []Player) map[string]Outcome {
	maxScore := 0
	for _, p := range players {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}

	topCount := 0
	if maxScore > 0 {
		for _, p := range players {
			if p.Score == maxScore {
				topCount++
			}
		}
	}

	outcomes := make(map[string]Outcome, len(players))
	for _, p := range players {
		switch {
		case maxScore > 0 && p.Score == maxScore && topCount == 1:
			outcomes[p.UID] = OutcomeWin
		case maxScore > 0 && p.Score == maxScore:
			outcomes[p.UID] = OutcomeDraw
		default:
			outcomes[p.UID] = OutcomeLose
		}
	}
	return outcomes
}
