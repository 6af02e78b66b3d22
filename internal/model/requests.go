package model

// CreateGameRequest is the createGame command payload. When Questions is
// empty the server asks the question supplier for a batch instead.
type CreateGameRequest struct {
	Topic         string             `json:"topic"`
	Difficulty    string             `json:"difficulty"`
	QuestionCount int                `json:"questionCount"`
	Questions     []IncomingQuestion `json:"questions,omitempty"`
	IsPublic      bool               `json:"isPublic"`
}
