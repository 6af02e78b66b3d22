package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizclash/internal/cache"
	"quizclash/internal/config"
	"quizclash/internal/model"
	"quizclash/internal/repository"
	"quizclash/internal/service"
)

func newHandlerFixture(t *testing.T) (*Handler, *Hub, *service.GameService) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := service.NewGameService(
		repository.NewMemoryGameRepo(),
		cache.NewGameCache(rdb),
		cache.NewLeaderboardCache(rdb),
		service.NewStatsService(repository.NewMemoryResultRepo(), repository.NewMemoryUserRepo()),
		nil,
		config.GameConfig{
			StartDelay:     10 * time.Millisecond,
			AnswerDeadline: 5 * time.Second,
			AdvanceDelay:   10 * time.Millisecond,
			CodeAttempts:   10,
		},
	)
	hub := NewHub()
	svc.SetBroadcaster(hub)
	return NewHandler(hub, svc, nil), hub, svc
}

func startedGame(t *testing.T, svc *service.GameService) string {
	t.Helper()
	ctx := context.Background()

	questions := []model.IncomingQuestion{{
		Text:               "Question 1?",
		Options:            []string{"A", "B", "C", "D"},
		CorrectAnswerIndex: 0,
		Category:           "Science",
	}}
	game, err := svc.CreateGame(ctx, "host", "Host", &model.CreateGameRequest{Questions: questions})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := svc.JoinGame(ctx, game.Code, "p2", "Player Two"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if err := svc.StartGame(ctx, game.Code, "host"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := svc.CurrentQuestion(ctx, game.Code); err == nil {
			return game.Code
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the first question")
	return ""
}

func command(t *testing.T, msgType string, payload interface{}) *Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", msgType, err)
	}
	return &Message{Type: MessageType(msgType), Payload: raw}
}

func TestRequestQuestionRejoinsRoom(t *testing.T) {
	h, hub, svc := newHandlerFixture(t)
	code := startedGame(t, svc)

	// A reconnecting player arrives on a fresh connection, not in any room
	conn := newTestConn("p2")
	h.dispatch(conn, command(t, "requestQuestion", gamePayload{GameCode: code}))

	msgs := drain(conn)
	if len(msgs) != 1 || msgs[0].Type != "question" {
		t.Fatalf("received %+v, want one question message", msgs)
	}
	if hub.RoomSize(code) != 1 {
		t.Fatalf("room size = %d, want the resynced connection back in the room", hub.RoomSize(code))
	}

	// Subsequent broadcasts must reach the resynced connection again
	hub.BroadcastToGame(code, string(MsgNewQuestion), map[string]int{"index": 1})
	if msgs := drain(conn); len(msgs) != 1 || msgs[0].Type != MsgNewQuestion {
		t.Errorf("broadcast after resync: received %+v, want one newQuestion message", msgs)
	}
}

func TestRequestRemainingTimeRejoinsRoom(t *testing.T) {
	h, hub, svc := newHandlerFixture(t)
	code := startedGame(t, svc)

	conn := newTestConn("p2")
	h.dispatch(conn, command(t, "requestRemainingTime", remainingTimePayload{GameCode: code, QuestionIndex: 0}))

	msgs := drain(conn)
	if len(msgs) != 1 || msgs[0].Type != "remainingTime" {
		t.Fatalf("received %+v, want one remainingTime message", msgs)
	}
	if hub.RoomSize(code) != 1 {
		t.Errorf("room size = %d, want the resynced connection back in the room", hub.RoomSize(code))
	}
}

func TestResyncIgnoresNonPlayers(t *testing.T) {
	h, hub, svc := newHandlerFixture(t)
	code := startedGame(t, svc)

	stranger := newTestConn("mallory")
	h.dispatch(stranger, command(t, "requestQuestion", gamePayload{GameCode: code}))

	// Question state is public, so the ack still goes out
	if msgs := drain(stranger); len(msgs) != 1 || msgs[0].Type != "question" {
		t.Fatalf("received %+v, want one question message", msgs)
	}
	if hub.RoomSize(code) != 0 {
		t.Errorf("room size = %d, a non-player must not be joined to the room", hub.RoomSize(code))
	}
}
