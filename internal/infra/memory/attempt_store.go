package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
)

// AttemptStore keeps in-progress answers in process. Attempts untouched for
// longer than the TTL are treated as abandoned.
type AttemptStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	attempts map[app.AttemptKey]*attempt
}

type attempt struct {
	answers   map[string]domain.Answer
	expiresAt time.Time
}

func NewAttemptStore(ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		ttl:      ttl,
		clock:    time.Now,
		attempts: make(map[app.AttemptKey]*attempt),
	}
}

func (s *AttemptStore) Record(_ context.Context, key app.AttemptKey, answer domain.Answer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	a, ok := s.attempts[key]
	if !ok || s.expired(a, now) {
		a = &attempt{answers: make(map[string]domain.Answer)}
		s.attempts[key] = a
	}
	a.answers[answer.QuestionID] = answer
	if s.ttl > 0 {
		a.expiresAt = now.Add(s.ttl)
	}
	return len(a.answers), nil
}

// Answers returns the recorded answers ordered by question ID.
func (s *AttemptStore) Answers(_ context.Context, key app.AttemptKey) ([]domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attempts[key]
	if !ok || s.expired(a, s.clock()) {
		delete(s.attempts, key)
		return nil, domain.ErrAttemptNotFound
	}
	out := make([]domain.Answer, 0, len(a.answers))
	for _, answer := range a.answers {
		out = append(out, answer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (s *AttemptStore) Discard(_ context.Context, key app.AttemptKey) error {
	s.mu.Lock()
	delete(s.attempts, key)
	s.mu.Unlock()
	return nil
}

func (s *AttemptStore) expired(a *attempt, now time.Time) bool {
	return s.ttl > 0 && !a.expiresAt.After(now)
}
