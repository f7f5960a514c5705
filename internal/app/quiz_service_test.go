package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/catalog"
	"careerpath-service/internal/domain"
	"careerpath-service/internal/infra/memory"
	"github.com/rs/zerolog"
)

func TestEvaluateRanksDegreeBranches(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(t, nil)

	eval, err := service.Evaluate(ctx, app.EvaluateRequest{
		QuizID: catalog.DegreeAptitude,
		Answers: []domain.Answer{
			{QuestionID: "q1", Option: 0}, // computerScience 4
			{QuestionID: "q2", Option: 0}, // computerScience 3
			{QuestionID: "q3", Option: 0}, // medicine 3
		},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Raw["computerScience"] != 7 || eval.Normalized["computerScience"] != 100 || eval.Normalized["medicine"] != 43 {
		t.Fatalf("unexpected scores raw=%v normalized=%v", eval.Raw, eval.Normalized)
	}
	if len(eval.Recommendations) != app.DefaultTopN {
		t.Fatalf("expected %d recommendations, got %d", app.DefaultTopN, len(eval.Recommendations))
	}
	if eval.Recommendations[0].Key != "computerScience" || eval.Recommendations[1].Key != "medicine" {
		t.Fatalf("unexpected ranking %+v", eval.Recommendations)
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(t, nil)

	_, err := service.Evaluate(ctx, app.EvaluateRequest{QuizID: "unknown"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = service.Evaluate(ctx, app.EvaluateRequest{
		QuizID:  catalog.DegreeAptitude,
		Answers: []domain.Answer{{QuestionID: "q1", Option: 9}},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = service.Evaluate(ctx, app.EvaluateRequest{QuizID: catalog.DegreeAptitude, TopN: -1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for negative topN, got %v", err)
	}
}

func TestGetQuizHidesScoringKey(t *testing.T) {
	service, _ := newQuizService(t, nil)
	quiz, err := service.GetQuiz(context.Background(), catalog.CareerInterest)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	for _, q := range quiz.Questions {
		for _, o := range q.Options {
			if o.Category != "" || o.Weight != 0 {
				t.Fatalf("option %s/%s leaks scoring key", q.ID, o.ID)
			}
		}
	}
	full := catalog.Quizzes()[catalog.CareerInterest]
	if full.Questions[0].Options[0].Weight == 0 {
		t.Fatalf("catalog quiz must not be mutated")
	}
}

func TestEvaluateMergesMentorScores(t *testing.T) {
	ctx := context.Background()
	mentor := &fakeMentor{reply: "Here you go:\n```json\n{\"medicine\": 80}\n```"}
	service, _ := newQuizService(t, mentor)

	eval, err := service.Evaluate(ctx, app.EvaluateRequest{
		QuizID:         catalog.DegreeAptitude,
		Answers:        []domain.Answer{{QuestionID: "q1", Option: 0}},
		TopN:           2,
		UseMentor:      true,
		ProfileSummary: "Class 12 student who enjoys biology",
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if eval.Normalized["computerScience"] != 100 || eval.Normalized["medicine"] != 40 {
		t.Fatalf("unexpected merged scores %v", eval.Normalized)
	}
	if !strings.Contains(mentor.prompt, "enjoys biology") || !strings.Contains(mentor.prompt, "An app used by millions") {
		t.Fatalf("prompt misses context: %q", mentor.prompt)
	}
}

func TestEvaluateMentorFailures(t *testing.T) {
	ctx := context.Background()
	req := app.EvaluateRequest{
		QuizID:    catalog.DegreeAptitude,
		Answers:   []domain.Answer{{QuestionID: "q1", Option: 0}},
		UseMentor: true,
	}

	service, _ := newQuizService(t, nil)
	if _, err := service.Evaluate(ctx, req); !errors.Is(err, domain.ErrMentorUnavailable) {
		t.Fatalf("expected mentor unavailable without a generator, got %v", err)
	}

	service, _ = newQuizService(t, &fakeMentor{err: errors.New("timeout")})
	if _, err := service.Evaluate(ctx, req); !errors.Is(err, domain.ErrMentorUnavailable) {
		t.Fatalf("expected mentor unavailable, got %v", err)
	}

	service, _ = newQuizService(t, &fakeMentor{reply: `{"astrology": 90}`})
	if _, err := service.Evaluate(ctx, req); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}

	bad := req
	bad.Answers = []domain.Answer{{QuestionID: "q99"}}
	mentor := &fakeMentor{reply: `{}`}
	service, _ = newQuizService(t, mentor)
	if _, err := service.Evaluate(ctx, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if mentor.calls != 0 {
		t.Fatalf("mentor must not be called for invalid answers")
	}
}

func TestIncrementalAttemptAndHistory(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(t, nil)
	quizID := catalog.SubjectAptitude

	if _, err := service.RecordAnswer(ctx, "u1", quizID, domain.Answer{QuestionID: "q1", Option: 8}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected out of range option to be rejected, got %v", err)
	}
	if _, err := service.RecordAnswer(ctx, "u1", quizID, domain.Answer{QuestionID: "nope"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected unknown question to be rejected, got %v", err)
	}

	for i, a := range []domain.Answer{
		{QuestionID: "q1", Option: 0},
		{QuestionID: "q2", Category: "mathematics"},
		{QuestionID: "q3", Option: 7},
		{QuestionID: "q3", Option: 0},
	} {
		n, err := service.RecordAnswer(ctx, "u1", quizID, a)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if want := min(i+1, 3); n != want {
			t.Fatalf("record %d: expected %d answered, got %d", i, want, n)
		}
	}

	result, err := service.SubmitAttempt(ctx, "u1", quizID, app.EvaluateRequest{TopN: 1})
	if err != nil {
		t.Fatalf("submit attempt: %v", err)
	}
	if result.Scores["mathematics"] != 100 || len(result.Recommendations) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Answers) != 3 || result.UserID != "u1" || result.ID == "" {
		t.Fatalf("unexpected snapshot %+v", result)
	}

	if _, err := service.SubmitAttempt(ctx, "u1", quizID, app.EvaluateRequest{}); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt to be cleared, got %v", err)
	}

	if _, err := service.Submit(ctx, "u1", app.EvaluateRequest{
		QuizID:  catalog.CareerInterest,
		Answers: []domain.Answer{{QuestionID: "q1", Option: 0}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	history, err := service.History(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].QuizID != catalog.CareerInterest {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestQuizTypesListed(t *testing.T) {
	service, _ := newQuizService(t, nil)
	types := service.QuizTypes()
	if len(types) != 3 || types[0].ID != catalog.CareerInterest {
		t.Fatalf("unexpected quiz types %+v", types)
	}
}

type fakeMentor struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (m *fakeMentor) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.reply, m.err
}

func newQuizService(t *testing.T, mentor app.TextGenerator) (*app.QuizService, *memory.ResultStore) {
	t.Helper()
	engine, err := catalog.NewEngine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(catalog.Quizzes()), 5*time.Minute)
	results := memory.NewResultStore()
	return app.NewQuizService(engine, quizzes, memory.NewAttemptStore(time.Hour), results, mentor, zerolog.Nop()), results
}
