package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/college-hq/advising-engine/pkg/apperrors"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "things", "a"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, "things", "a", []byte(`{"n":1}`)); err != nil {
		t.Fatal(err)
	}

	value, err := store.Get(ctx, "things", "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(value) != `{"n":1}` {
		t.Errorf("unexpected value: %s", value)
	}

	if err := store.Delete(ctx, "things", "a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "things", "a"); err != nil {
		t.Errorf("deleting absent key should succeed, got %v", err)
	}
	if _, err := store.Get(ctx, "things", "a"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "things", "a", []byte("original")); err != nil {
		t.Fatal(err)
	}

	value, _ := store.Get(ctx, "things", "a")
	value[0] = 'X'

	again, _ := store.Get(ctx, "things", "a")
	if string(again) != "original" {
		t.Errorf("caller mutation leaked into the store: %s", again)
	}
}

func TestMemoryStore_Update_AbsentKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Update(ctx, "things", "a", func(current []byte) ([]byte, error) {
		if current != nil {
			t.Errorf("expected nil current for absent key, got %s", current)
		}
		return []byte("created"), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	value, err := store.Get(ctx, "things", "a")
	if err != nil || string(value) != "created" {
		t.Errorf("update did not create: %s, %v", value, err)
	}
}

func TestMemoryStore_Update_FnErrorAborts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "things", "a", []byte("before")); err != nil {
		t.Fatal(err)
	}

	sentinel := errors.New("nope")
	err := store.Update(ctx, "things", "a", func(current []byte) ([]byte, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected fn error surfaced, got %v", err)
	}

	value, _ := store.Get(ctx, "things", "a")
	if string(value) != "before" {
		t.Errorf("aborted update must not write, got %s", value)
	}
}

// Concurrent counter increments through Update must all land.
func TestMemoryStore_Update_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, "counters", "c", func(current []byte) ([]byte, error) {
				n := 0
				if current != nil {
					if err := json.Unmarshal(current, &n); err != nil {
						return nil, err
					}
				}
				return json.Marshal(n + 1)
			})
			if err != nil {
				t.Errorf("concurrent update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	value, err := store.Get(ctx, "counters", "c")
	if err != nil {
		t.Fatal(err)
	}
	var n int
	if err := json.Unmarshal(value, &n); err != nil {
		t.Fatal(err)
	}
	if n != writers {
		t.Errorf("lost updates: expected %d, got %d", writers, n)
	}
}

func TestMemoryStore_Scan(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, "things", k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Put(ctx, "other", "x", []byte("x")); err != nil {
		t.Fatal(err)
	}

	seen := map[string]string{}
	err := store.Scan(ctx, "things", func(key string, value []byte) error {
		seen[key] = string(value)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(seen) != 3 {
		t.Errorf("expected 3 keys, got %v", seen)
	}
	if _, leaked := seen["x"]; leaked {
		t.Error("scan leaked a key from another collection")
	}
}

func TestMemoryStore_Scan_EarlyStop(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := store.Put(ctx, "things", k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	stop := errors.New("stop")
	count := 0
	err := store.Scan(ctx, "things", func(key string, value []byte) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected scan callback error surfaced, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected scan to stop after first error, visited %d", count)
	}
}
