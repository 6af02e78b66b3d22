package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToGame(gameCode string, msgType string, payload interface{})
	BroadcastToPlayer(gameCode, uid string, msgType string, payload interface{})
}
