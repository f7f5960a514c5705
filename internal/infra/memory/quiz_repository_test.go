package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"careerpath-service/internal/catalog"
	"careerpath-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(catalog.Quizzes())}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 3; i++ {
		quiz, err := repo.GetQuiz(context.Background(), catalog.DegreeAptitude)
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if quiz.Type != catalog.DegreeAptitude {
			t.Fatalf("unexpected quiz type %q", quiz.Type)
		}
	}
	if n := loader.calls.Load(); n != 1 {
		t.Fatalf("expected loader once, got %d", n)
	}

	repo.Invalidate(catalog.DegreeAptitude)
	if _, err := repo.GetQuiz(context.Background(), catalog.DegreeAptitude); err != nil {
		t.Fatalf("get quiz after invalidate: %v", err)
	}
	if n := loader.calls.Load(); n != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", n)
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(catalog.Quizzes())}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.GetQuiz(context.Background(), catalog.CareerInterest); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.GetQuiz(context.Background(), catalog.CareerInterest); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if n := loader.calls.Load(); n != 2 {
		t.Fatalf("expected expired entry to reload, got %d calls", n)
	}
}

func TestQuizRepositoryCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(catalog.Quizzes()), gate: release}
	repo := NewQuizRepository(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetQuiz(context.Background(), catalog.SubjectAptitude); err != nil {
				t.Errorf("get quiz: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loader.calls.Load(); n != 1 {
		t.Fatalf("expected a single load, got %d", n)
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStaticQuizLoader(catalog.Quizzes()), time.Minute)
	_, err := repo.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}
