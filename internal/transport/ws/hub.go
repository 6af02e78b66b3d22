package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Broadcast message types
const (
	MsgPlayerJoined MessageType = "playerJoined"
	MsgPlayerLeft   MessageType = "playerLeft"
	MsgGameStarted  MessageType = "gameStarted"
	MsgNewQuestion  MessageType = "newQuestion"
	MsgAnswerResult MessageType = "answerResult"
	MsgGameFinished MessageType = "gameFinished"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one authenticated WebSocket connection
type Connection struct {
	UID         string
	DisplayName string
	Send        chan []byte
}

// Hub tracks which connections belong to which game room and fans
// broadcasts out to them. A connection joins a room when its player
// creates or joins a game and leaves on disconnect.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Connection // gameCode -> uid -> conn

	// Called outside the lock when the last connection leaves a room
	onRoomEmpty func(gameCode string)
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*Connection),
	}
}

// OnRoomEmpty registers the callback invoked when a room drains
func (h *Hub) OnRoomEmpty(fn func(gameCode string)) {
	h.onRoomEmpty = fn
}

// Join places a connection in a game room, replacing any stale
// connection the same player left behind
func (h *Hub) Join(gameCode string, conn *Connection) {
	h.mu.Lock()
	room := h.rooms[gameCode]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[gameCode] = room
	}
	room[conn.UID] = conn
	h.mu.Unlock()
	log.Printf("Player %s joined room %s", conn.UID, gameCode)
}

// Leave removes a connection from a room. It is a no-op when the room
// holds a newer connection for the same player.
func (h *Hub) Leave(gameCode string, conn *Connection) {
	h.mu.Lock()
	removed := false
	empty := false
	if room, ok := h.rooms[gameCode]; ok {
		if existing, ok := room[conn.UID]; ok && existing == conn {
			delete(room, conn.UID)
			removed = true
			if len(room) == 0 {
				delete(h.rooms, gameCode)
				empty = true
			}
		}
	}
	h.mu.Unlock()

	if !removed {
		return
	}
	log.Printf("Player %s left room %s", conn.UID, gameCode)
	h.notifyPlayerLeft(gameCode, conn)
	if empty && h.onRoomEmpty != nil {
		h.onRoomEmpty(gameCode)
	}
}

// LeaveAll removes a disconnecting connection from every room it is in
func (h *Hub) LeaveAll(conn *Connection) {
	h.mu.Lock()
	var left, emptied []string
	for code, room := range h.rooms {
		if existing, ok := room[conn.UID]; ok && existing == conn {
			delete(room, conn.UID)
			left = append(left, code)
			if len(room) == 0 {
				delete(h.rooms, code)
				emptied = append(emptied, code)
			}
		}
	}
	h.mu.Unlock()

	for _, code := range left {
		h.notifyPlayerLeft(code, conn)
	}
	if h.onRoomEmpty != nil {
		for _, code := range emptied {
			h.onRoomEmpty(code)
		}
	}
}

// BroadcastToGame sends a message to every connection in a room
// (implements service.Broadcaster)
func (h *Hub) BroadcastToGame(gameCode string, msgType string, payload interface{}) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s broadcast for game %s: %v", msgType, gameCode, err)
		return
	}

	h.mu.RLock()
	for _, conn := range h.rooms[gameCode] {
		select {
		case conn.Send <- data:
		default:
			// Drop message if buffer full
		}
	}
	h.mu.RUnlock()
}

// BroadcastToPlayer sends a message to one player in a room
// (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(gameCode, uid string, msgType string, payload interface{}) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s message for %s in game %s: %v", msgType, uid, gameCode, err)
		return
	}

	h.mu.RLock()
	if room, ok := h.rooms[gameCode]; ok {
		if conn, ok := room[uid]; ok {
			select {
			case conn.Send <- data:
			default:
			}
		}
	}
	h.mu.RUnlock()
}

// RoomSize reports how many connections a room currently holds
func (h *Hub) RoomSize(gameCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameCode])
}

func (h *Hub) notifyPlayerLeft(gameCode string, conn *Connection) {
	h.BroadcastToGame(gameCode, string(MsgPlayerLeft), map[string]string{
		"uid":         conn.UID,
		"displayName": conn.DisplayName,
	})
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{
		Type:    MessageType(msgType),
		Payload: data,
	})
}
