package jobstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/blackbeanteam/lease-analysis-back/internal/common"
	"github.com/blackbeanteam/lease-analysis-back/internal/job"
)

// MemoryStore is an in-process Store used by tests and local runs without
// Redis. Records expire lazily on read.
type MemoryStore struct {
	ttl time.Duration

	mu   sync.RWMutex
	jobs map[string]*job.Job
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		jobs: make(map[string]*job.Job),
	}
}

func (s *MemoryStore) Create(_ context.Context, j *job.Job) (string, error) {
	if j.ID == "" {
		j.ID = newJobID()
	}
	j.Status = job.StatusQueued
	j.CreatedAt = time.Now()

	s.mu.Lock()
	cp := *j
	s.jobs[j.ID] = &cp
	s.mu.Unlock()
	return j.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*job.Job, error) {
	s.mu.RLock()
	j, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok || s.expired(j) {
		return nil, common.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *MemoryStore) SetStatus(_ context.Context, jobID string, status job.Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || s.expired(j) || j.Status.Terminal() {
		return nil
	}
	j.Status = status
	if message != "" {
		j.Message = message
	}
	return nil
}

func (s *MemoryStore) SaveResult(_ context.Context, jobID string, result json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || s.expired(j) || j.Status.Terminal() {
		return nil
	}
	now := time.Now()
	j.Status = job.StatusDone
	j.Result = append(json.RawMessage(nil), result...)
	j.Message = ""
	j.FinishedAt = &now
	return nil
}

func (s *MemoryStore) SaveError(_ context.Context, jobID string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || s.expired(j) || j.Status.Terminal() {
		return nil
	}
	now := time.Now()
	j.Status = job.StatusError
	j.Message = errMsg
	j.FinishedAt = &now
	return nil
}

func (s *MemoryStore) expired(j *job.Job) bool {
	return s.ttl > 0 && time.Since(j.CreatedAt) > s.ttl
}
