package memory

import (
	"context"
	"sort"
	"sync"

	"careerpath-service/internal/domain"
)

// ResultStore is an in-memory app.ResultRepository.
type ResultStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{byUser: make(map[string][]domain.Result)}
}

func (s *ResultStore) Save(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	s.byUser[result.UserID] = append(s.byUser[result.UserID], result)
	s.mu.Unlock()
	return nil
}

// ListByUser returns up to limit results, newest first.
func (s *ResultStore) ListByUser(_ context.Context, userID string, limit int) ([]domain.Result, error) {
	s.mu.RLock()
	saved := s.byUser[userID]
	out := make([]domain.Result, 0, len(saved))
	for i := len(saved) - 1; i >= 0; i-- {
		out = append(out, saved[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
