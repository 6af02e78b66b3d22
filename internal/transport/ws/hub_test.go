package ws

import (
	"encoding/json"
	"testing"
)

func newTestConn(uid string) *Connection {
	return &Connection{UID: uid, DisplayName: uid, Send: make(chan []byte, 16)}
}

func drain(conn *Connection) []Message {
	var msgs []Message
	for {
		select {
		case data := <-conn.Send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

func TestHubBroadcastToGame(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("alice")
	bob := newTestConn("bob")
	outsider := newTestConn("carol")

	hub.Join("123456", alice)
	hub.Join("123456", bob)
	hub.Join("654321", outsider)

	hub.BroadcastToGame("123456", string(MsgGameStarted), map[string]int{"questionsCount": 5})

	for _, conn := range []*Connection{alice, bob} {
		msgs := drain(conn)
		if len(msgs) != 1 || msgs[0].Type != MsgGameStarted {
			t.Errorf("%s received %+v, want one gameStarted message", conn.UID, msgs)
		}
	}
	if msgs := drain(outsider); len(msgs) != 0 {
		t.Errorf("outsider received %+v, want nothing", msgs)
	}
}

func TestHubBroadcastToPlayer(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("alice")
	bob := newTestConn("bob")

	hub.Join("123456", alice)
	hub.Join("123456", bob)

	hub.BroadcastToPlayer("123456", "alice", "question", map[string]int{"index": 0})

	if msgs := drain(alice); len(msgs) != 1 || msgs[0].Type != "question" {
		t.Errorf("alice received %+v, want one question message", msgs)
	}
	if msgs := drain(bob); len(msgs) != 0 {
		t.Errorf("bob received %+v, want nothing", msgs)
	}
}

func TestHubLeaveNotifiesRoom(t *testing.T) {
	hub := NewHub()
	alice := newTestConn("alice")
	bob := newTestConn("bob")

	hub.Join("123456", alice)
	hub.Join("123456", bob)
	hub.Leave("123456", alice)

	msgs := drain(bob)
	if len(msgs) != 1 || msgs[0].Type != MsgPlayerLeft {
		t.Fatalf("bob received %+v, want one playerLeft message", msgs)
	}
	var payload map[string]string
	if err := json.Unmarshal(msgs[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["uid"] != "alice" {
		t.Errorf("payload uid = %q, want alice", payload["uid"])
	}

	if hub.RoomSize("123456") != 1 {
		t.Errorf("room size = %d, want 1", hub.RoomSize("123456"))
	}
}

func TestHubRoomEmptyCallback(t *testing.T) {
	hub := NewHub()
	var emptied []string
	hub.OnRoomEmpty(func(code string) { emptied = append(emptied, code) })

	alice := newTestConn("alice")
	bob := newTestConn("bob")
	hub.Join("123456", alice)
	hub.Join("123456", bob)

	hub.Leave("123456", alice)
	if len(emptied) != 0 {
		t.Fatalf("callback fired with a connection still in the room: %v", emptied)
	}

	hub.Leave("123456", bob)
	if len(emptied) != 1 || emptied[0] != "123456" {
		t.Fatalf("emptied = %v, want [123456]", emptied)
	}
}

func TestHubLeaveAll(t *testing.T) {
	hub := NewHub()
	var emptied []string
	hub.OnRoomEmpty(func(code string) { emptied = append(emptied, code) })

	conn := newTestConn("alice")
	hub.Join("111111", conn)
	hub.Join("222222", conn)

	hub.LeaveAll(conn)

	if hub.RoomSize("111111") != 0 || hub.RoomSize("222222") != 0 {
		t.Error("LeaveAll left the connection in a room")
	}
	if len(emptied) != 2 {
		t.Errorf("emptied = %v, want both rooms", emptied)
	}
}

func TestHubStaleConnectionIgnoredOnLeave(t *testing.T) {
	hub := NewHub()
	old := newTestConn("alice")
	fresh := newTestConn("alice")

	hub.Join("123456", old)
	hub.Join("123456", fresh) // reconnect replaces the old entry

	hub.Leave("123456", old)
	if hub.RoomSize("123456") != 1 {
		t.Errorf("room size = %d, stale leave must not evict the fresh connection", hub.RoomSize("123456"))
	}
}
