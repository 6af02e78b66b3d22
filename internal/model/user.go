package model

// UserStats are the durable per-user counters, updated transactionally
// on every game finalization
type UserStats struct {
	GamesPlayed    int `json:"gamesPlayed" bson:"gamesPlayed"`
	Wins           int `json:"wins" bson:"wins"`
	CorrectAnswers int `json:"correctAnswers" bson:"correctAnswers"`
}

// User owns the stats document. Created lazily on a user's first
// finalized game when no record exists yet.
type User struct {
	UID         string    `json:"uid" bson:"_id"`
	DisplayName string    `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Stats       UserStats `json:"stats" bson:"stats"`
}
