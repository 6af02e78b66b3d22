package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizclash/internal/model"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGameCacheMetaRoundtrip(t *testing.T) {
	ctx := context.Background()
	c := NewGameCache(newTestClient(t))

	meta := &model.GameMeta{
		HostID:     "u_host",
		Status:     model.GameWaiting,
		Topic:      "Science",
		Difficulty: "easy",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	if err := c.SetMeta(ctx, "123456", meta); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	got, err := c.GetMeta(ctx, "123456")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if got == nil {
		t.Fatal("GetMeta returned nil for cached game")
	}
	if got.HostID != meta.HostID || got.Status != meta.Status || got.Topic != meta.Topic {
		t.Errorf("GetMeta = %+v, want %+v", got, meta)
	}
}

func TestGameCacheGetMetaMissing(t *testing.T) {
	c := NewGameCache(newTestClient(t))

	got, err := c.GetMeta(context.Background(), "999999")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if got != nil {
		t.Errorf("GetMeta for missing game = %+v, want nil", got)
	}
}

func TestGameCacheSetStatus(t *testing.T) {
	ctx := context.Background()
	c := NewGameCache(newTestClient(t))

	if err := c.SetStatus(ctx, "123456", model.GameInProgress); err == nil {
		t.Error("SetStatus on missing game should error")
	}

	if err := c.SetMeta(ctx, "123456", &model.GameMeta{Status: model.GameWaiting}); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if err := c.SetStatus(ctx, "123456", model.GameInProgress); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	got, err := c.GetMeta(ctx, "123456")
	if err != nil || got == nil {
		t.Fatalf("GetMeta: %v %v", got, err)
	}
	if got.Status != model.GameInProgress {
		t.Errorf("Status = %s, want %s", got.Status, model.GameInProgress)
	}
}

func TestGameCacheExistsAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewGameCache(newTestClient(t))

	exists, err := c.Exists(ctx, "123456")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("Exists = true before SetMeta")
	}

	if err := c.SetMeta(ctx, "123456", &model.GameMeta{Status: model.GameWaiting}); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if exists, _ = c.Exists(ctx, "123456"); !exists {
		t.Error("Exists = false after SetMeta")
	}

	if err := c.Delete(ctx, "123456"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ = c.Exists(ctx, "123456"); exists {
		t.Error("Exists = true after Delete")
	}
}
