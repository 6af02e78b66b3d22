package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizclash/internal/model"
	"quizclash/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Creation requests may carry a full question batch
	maxMessageSize = 64 * 1024

	commandTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler authenticates WebSocket connections and dispatches game commands
type Handler struct {
	hub     *Hub
	gameSvc *service.GameService
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, gameSvc *service.GameService, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		gameSvc: gameSvc,
		authSvc: authSvc,
	}
}

// Command payloads. gameCode is the routing key on everything except ping.
type createGamePayload = model.CreateGameRequest

type gamePayload struct {
	GameCode string `json:"gameCode"`
}

type submitAnswerPayload struct {
	GameCode      string  `json:"gameCode"`
	QuestionIndex int     `json:"questionIndex"`
	SelectedIndex *int    `json:"selectedIndex,omitempty"`
	SelectedValue *string `json:"selectedValue,omitempty"`
}

type remainingTimePayload struct {
	GameCode      string `json:"gameCode"`
	QuestionIndex int    `json:"questionIndex"`
}

// Serve handles GET /v1/ws
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateUserToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		UID:         claims.UID,
		DisplayName: claims.DisplayName,
		Send:        make(chan []byte, 256),
	}

	log.Printf("Player %s connected via WebSocket", claims.UID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.LeaveAll(conn)
		close(conn.Send)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "invalid message format")
			continue
		}
		h.dispatch(conn, &msg)
	}
}

func (h *Handler) dispatch(conn *Connection, msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "createGame":
		h.handleCreateGame(ctx, conn, msg.Payload)
	case "joinGame":
		h.handleJoinGame(ctx, conn, msg.Payload)
	case "startGame":
		h.handleStartGame(ctx, conn, msg.Payload)
	case "submitAnswer":
		h.handleSubmitAnswer(ctx, conn, msg.Payload)
	case "requestQuestion":
		h.handleRequestQuestion(ctx, conn, msg.Payload)
	case "requestRemainingTime":
		h.handleRequestRemainingTime(ctx, conn, msg.Payload)
	case "leaveGame":
		h.handleLeaveGame(conn, msg.Payload)
	case "ping":
		h.send(conn, "pong", struct{}{})
	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *Handler) handleCreateGame(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req createGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, "invalid createGame payload")
		return
	}

	game, err := h.gameSvc.CreateGame(ctx, conn.UID, conn.DisplayName, &req)
	if err != nil {
		h.sendError(conn, errorMessage(err))
		return
	}

	h.hub.Join(game.Code, conn)
	h.send(conn, "gameCreated", map[string]interface{}{
		"gameCode":       game.Code,
		"questionsCount": len(game.Questions),
		"players":        game.Players,
	})
}

func (h *Handler) handleJoinGame(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req gamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid joinGame payload")
		return
	}

	// Join the room first so this connection sees the roster broadcast
	h.hub.Join(req.GameCode, conn)
	game, err := h.gameSvc.JoinGame(ctx, req.GameCode, conn.UID, conn.DisplayName)
	if err != nil {
		h.hub.Leave(req.GameCode, conn)
		h.sendError(conn, errorMessage(err))
		return
	}

	h.send(conn, "gameJoined", map[string]interface{}{
		"gameCode":       game.Code,
		"questionsCount": len(game.Questions),
		"players":        game.Players,
	})
}

func (h *Handler) handleStartGame(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req gamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid startGame payload")
		return
	}

	if err := h.gameSvc.StartGame(ctx, req.GameCode, conn.UID); err != nil {
		h.sendError(conn, errorMessage(err))
		return
	}
	h.send(conn, "started", struct{}{})
}

func (h *Handler) handleSubmitAnswer(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req submitAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid submitAnswer payload")
		return
	}

	sel := model.AnswerSelection{
		SelectedIndex: req.SelectedIndex,
		SelectedValue: req.SelectedValue,
	}
	if err := h.gameSvc.SubmitAnswer(ctx, req.GameCode, conn.UID, req.QuestionIndex, sel); err != nil {
		h.sendError(conn, errorMessage(err))
		return
	}
	h.send(conn, "answerAccepted", map[string]int{"questionIndex": req.QuestionIndex})
}

func (h *Handler) handleRequestQuestion(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req gamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid requestQuestion payload")
		return
	}

	event, err := h.gameSvc.CurrentQuestion(ctx, req.GameCode)
	if err != nil {
		h.sendError(conn, errorMessage(err))
		return
	}
	h.rejoinRoom(ctx, conn, req.GameCode)
	h.send(conn, "question", event)
}

func (h *Handler) handleRequestRemainingTime(ctx context.Context, conn *Connection, payload json.RawMessage) {
	var req remainingTimePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid requestRemainingTime payload")
		return
	}

	event, err := h.gameSvc.RemainingTime(ctx, req.GameCode, req.QuestionIndex)
	if err != nil {
		h.sendError(conn, errorMessage(err))
		return
	}
	h.rejoinRoom(ctx, conn, req.GameCode)
	h.send(conn, "remainingTime", event)
}

// rejoinRoom puts a reconnecting player's connection back in its game room
// so a resync also restores broadcast delivery. Non-players are ignored.
func (h *Handler) rejoinRoom(ctx context.Context, conn *Connection, gameCode string) {
	ok, err := h.gameSvc.IsPlayer(ctx, gameCode, conn.UID)
	if err != nil || !ok {
		return
	}
	h.hub.Join(gameCode, conn)
}

func (h *Handler) handleLeaveGame(conn *Connection, payload json.RawMessage) {
	var req gamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.GameCode == "" {
		h.sendError(conn, "invalid leaveGame payload")
		return
	}
	h.hub.Leave(req.GameCode, conn)
}

// send delivers an ack directly to one connection, bypassing room routing
func (h *Handler) send(conn *Connection, msgType string, payload interface{}) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("Failed to encode %s message: %v", msgType, err)
		return
	}
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) sendError(conn *Connection, message string) {
	h.send(conn, string(MsgError), map[string]string{"message": message})
}

// errorMessage maps service errors to client-facing text without leaking
// internals from wrapped storage errors
func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, service.ErrGameStarted):
		return "game already started"
	case errors.Is(err, service.ErrGameNotStarted):
		return "game has not started"
	case errors.Is(err, service.ErrGameFinished):
		return "game is finished"
	case errors.Is(err, service.ErrNotHost):
		return "only the host can start the game"
	case errors.Is(err, service.ErrNotInGame):
		return "you are not in this game"
	case errors.Is(err, service.ErrNoCurrentQuestion):
		return "no current question"
	case errors.Is(err, service.ErrAnswerClosed):
		return "answers for this question are closed"
	case errors.Is(err, service.ErrAlreadyAnswered):
		return "you already answered this question"
	case errors.Is(err, service.ErrNoQuestions):
		return "game has no questions"
	case errors.Is(err, service.ErrTopicMismatch):
		return "questions do not match the requested topic"
	case errors.Is(err, service.ErrQuestionCount):
		return "wrong number of questions"
	case errors.Is(err, service.ErrSupplierUnavailable),
		errors.Is(err, service.ErrSupplierNoQuestions),
		errors.Is(err, service.ErrSupplierShortfall):
		return "failed to generate questions"
	case errors.Is(err, service.ErrCodeExhausted):
		return "could not allocate a game code"
	default:
		log.Printf("Unhandled command error: %v", err)
		return "internal error"
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
