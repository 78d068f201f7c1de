package queue

import (
	"context"
	"sync"
)

// Queue is the shared multi-producer/multi-consumer list of pending job IDs.
// Pop must be atomic per element: two concurrent Pop calls never return the
// same ID. An empty queue yields an empty batch, never a block or an error.
type Queue interface {
	Push(ctx context.Context, jobID string) error
	Pop(ctx context.Context, max int) ([]string, error)
	Len(ctx context.Context) (int64, error)
}

// MemoryQueue is an in-process Queue for tests and local runs.
type MemoryQueue struct {
	mu  sync.Mutex
	ids []string
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Push(_ context.Context, jobID string) error {
	q.mu.Lock()
	q.ids = append(q.ids, jobID)
	q.mu.Unlock()
	return nil
}

func (q *MemoryQueue) Pop(_ context.Context, max int) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if max <= 0 || len(q.ids) == 0 {
		return nil, nil
	}
	n := max
	if n > len(q.ids) {
		n = len(q.ids)
	}
	batch := make([]string, n)
	copy(batch, q.ids[:n])
	q.ids = q.ids[n:]
	return batch, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ids)), nil
}
