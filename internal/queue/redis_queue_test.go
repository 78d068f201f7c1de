package queue

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) *RedisQueue {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(s.Close)

	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisQueue(client)
}

func TestRedisQueue_FIFO(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Push(ctx, id); err != nil {
			t.Fatalf("Push %s: %v", id, err)
		}
	}

	got, err := q.Pop(ctx, 2)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}

	got, err = q.Pop(ctx, 5)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("expected [c], got %v", got)
	}
}

func TestRedisQueue_PopEmpty(t *testing.T) {
	q := newTestQueue(t)

	got, err := q.Pop(context.Background(), 3)
	if err != nil {
		t.Fatalf("popping an empty queue must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty batch, got %v", got)
	}
}

func TestRedisQueue_ConcurrentPopsAreDisjoint(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	const entries = 10
	ids := make([]string, entries)
	for i := range ids {
		ids[i] = string(rune('a' + i))
		if err := q.Push(ctx, ids[i]); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	const poppers = 4
	results := make([][]string, poppers)
	var wg sync.WaitGroup
	for i := 0; i < poppers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := q.Pop(ctx, 3)
			if err != nil {
				t.Errorf("Pop: %v", err)
				return
			}
			results[n] = got
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	total := 0
	for _, batch := range results {
		for _, id := range batch {
			if seen[id] {
				t.Fatalf("job ID %s popped twice", id)
			}
			seen[id] = true
			total++
		}
	}
	if total != entries {
		t.Errorf("expected union of %d IDs, got %d", entries, total)
	}

	n, err := q.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("queue should be drained, %d left", n)
	}
}

func TestMemoryQueue_FIFO(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Push(ctx, "a")
	q.Push(ctx, "b")

	got, _ := q.Pop(ctx, 1)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected [a], got %v", got)
	}
	got, _ = q.Pop(ctx, 5)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b], got %v", got)
	}
	got, _ = q.Pop(ctx, 1)
	if len(got) != 0 {
		t.Errorf("expected empty batch, got %v", got)
	}
}
