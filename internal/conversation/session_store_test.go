package conversation

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreUnseenSessionIsEmpty(t *testing.T) {
	store := NewMemorySessionStore()
	d, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d != (Draft{}) {
		t.Fatalf("unseen session draft = %+v, want empty", d)
	}
}

func TestMemoryStoreUpdateAndGet(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	updated, err := store.Update(ctx, "s1", func(d *Draft) {
		d.ServiceType = "restaurant"
		d.People = intPtr(3)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ServiceType != "restaurant" {
		t.Fatalf("update result = %+v", updated)
	}

	got, _ := store.Get(ctx, "s1")
	if got.ServiceType != "restaurant" || got.People == nil || *got.People != 3 {
		t.Fatalf("get after update = %+v", got)
	}

	// The returned draft must not alias the stored state.
	*updated.People = 99
	got, _ = store.Get(ctx, "s1")
	if *got.People != 3 {
		t.Fatal("returned draft aliases stored people pointer")
	}
}

func TestMemoryStoreSessionsAreIndependent(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, _ = store.Update(ctx, "a", func(d *Draft) { d.Location = "north" })
	_, _ = store.Update(ctx, "b", func(d *Draft) { d.Location = "south" })

	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	if a.Location != "north" || b.Location != "south" {
		t.Fatalf("cross-session bleed: a=%q b=%q", a.Location, b.Location)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, _ = store.Update(ctx, "s1", func(d *Draft) { d.Date = "01-01-2030" })
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	d, _ := store.Get(ctx, "s1")
	if d.Date != "" {
		t.Fatal("cleared session still holds state")
	}
}

func TestMemoryStoreConcurrentUpdatesSameSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "s1", func(d *Draft) {
				if d.People == nil {
					d.People = intPtr(0)
				}
				*d.People++
			})
		}()
	}
	wg.Wait()

	d, _ := store.Get(ctx, "s1")
	if d.People == nil || *d.People != n {
		t.Fatalf("people = %v, want %d: read-modify-write is not atomic", d.People, n)
	}
}
