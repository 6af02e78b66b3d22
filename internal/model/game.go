package model

import "time"

type GameStatus string

const (
	GameWaiting    GameStatus = "waiting"
	GameInProgress GameStatus = "in-progress"
	GameFinished   GameStatus = "finished"
)

// Player is a participant entry inside a game document
type Player struct {
	UID         string `json:"uid" bson:"uid"`
	DisplayName string `json:"displayName" bson:"displayName"`
	Score       int    `json:"score" bson:"score"`
}

// Game is the aggregate root for one match, identified by its 6-digit code
type Game struct {
	Code            string     `json:"code" bson:"_id"`
	HostID          string     `json:"hostId" bson:"hostId"`
	Status          GameStatus `json:"status" bson:"status"`
	IsPublic        bool       `json:"isPublic" bson:"isPublic"`
	Players         []Player   `json:"players" bson:"players"`
	Questions       []Question `json:"questions" bson:"questions"`
	CurrentQuestion int        `json:"currentQuestion" bson:"currentQuestion"`
	Topic           string     `json:"topic" bson:"topic"`
	Difficulty      string     `json:"difficulty" bson:"difficulty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
}

// HasPlayer reports whether uid is already in the player list
func (g *Game) HasPlayer(uid string) bool {
	for _, p := range g.Players {
		if p.UID == uid {
			return true
		}
	}
	return false
}

// GameSummary is the sanitized REST view of a game. Questions are reduced
// to a count so inspecting a game never reveals its answer key.
type GameSummary struct {
	Code            string     `json:"code"`
	HostID          string     `json:"hostId"`
	Status          GameStatus `json:"status"`
	IsPublic        bool       `json:"isPublic"`
	Players         []Player   `json:"players"`
	QuestionsCount  int        `json:"questionsCount"`
	CurrentQuestion int        `json:"currentQuestion"`
	Topic           string     `json:"topic"`
	Difficulty      string     `json:"difficulty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Summary converts a game to its sanitized view
func (g *Game) Summary() *GameSummary {
	return &GameSummary{
		Code:            g.Code,
		HostID:          g.HostID,
		Status:          g.Status,
		IsPublic:        g.IsPublic,
		Players:         g.Players,
		QuestionsCount:  len(g.Questions),
		CurrentQuestion: g.CurrentQuestion,
		Topic:           g.Topic,
		Difficulty:      g.Difficulty,
		CreatedAt:       g.CreatedAt,
	}
}

// GameMeta is the lightweight Redis view of a game
type GameMeta struct {
	HostID     string     `json:"hostId"`
	Status     GameStatus `json:"status"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
