package conversation

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(client, nil)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	merged, err := store.Update(ctx, "s1", func(d *Draft) {
		d.ServiceType = "hotel"
		d.Date = "10-01-2030"
		d.People = intPtr(2)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if merged.ServiceType != "hotel" {
		t.Fatalf("update result = %+v", merged)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "10-01-2030" || got.People == nil || *got.People != 2 {
		t.Fatalf("get after update = %+v", got)
	}
}

func TestRedisSessionStoreUnseenSession(t *testing.T) {
	store := newRedisStore(t)
	d, err := store.Get(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d != (Draft{}) {
		t.Fatalf("unseen session = %+v, want empty", d)
	}
}

func TestRedisSessionStoreAccumulatesAcrossUpdates(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, _ = store.Update(ctx, "s1", func(d *Draft) { mergeTurn(d, Draft{People: intPtr(2)}) })
	merged, err := store.Update(ctx, "s1", func(d *Draft) { mergeTurn(d, Draft{Date: "01-01-2030"}) })
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if merged.People == nil || *merged.People != 2 || merged.Date != "01-01-2030" {
		t.Fatalf("state lost across updates: %+v", merged)
	}
}

func TestRedisSessionStoreClear(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, _ = store.Update(ctx, "s1", func(d *Draft) { d.Notes = "window seat" })
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	d, _ := store.Get(ctx, "s1")
	if d.Notes != "" {
		t.Fatal("cleared session still holds state")
	}
}
