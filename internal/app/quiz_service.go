package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"careerpath-service/internal/domain"
	"careerpath-service/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTopN is used when a caller does not ask for a specific number of recommendations.
const DefaultTopN = 3

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptKey identifies one user's in-progress attempt at a quiz.
type AttemptKey struct {
	UserID string
	QuizID string
}

// AttemptRepository stores answers while a respondent progresses through a quiz.
// Recording an answer for an already answered question replaces it.
type AttemptRepository interface {
	Record(ctx context.Context, key AttemptKey, answer domain.Answer) (int, error)
	Answers(ctx context.Context, key AttemptKey) ([]domain.Answer, error)
	Discard(ctx context.Context, key AttemptKey) error
}

// ResultRepository keeps evaluated attempts for history.
type ResultRepository interface {
	Save(ctx context.Context, result domain.Result) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Result, error)
}

// TextGenerator is an external LLM endpoint treated as a black-box text function.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EvaluateRequest is a complete answer set for one quiz.
type EvaluateRequest struct {
	QuizID         string
	Answers        []domain.Answer
	TopN           int
	UseMentor      bool
	ProfileSummary string
}

// QuizService contains the quiz use cases.
type QuizService struct {
	engine   *scoring.Engine
	quizzes  QuizRepository
	attempts AttemptRepository
	results  ResultRepository
	mentor   TextGenerator
	log      zerolog.Logger
	now      func() time.Time
}

// NewQuizService wires the quiz use cases. mentor may be nil.
func NewQuizService(engine *scoring.Engine, quizzes QuizRepository, attempts AttemptRepository, results ResultRepository, mentor TextGenerator, log zerolog.Logger) *QuizService {
	return &QuizService{
		engine:   engine,
		quizzes:  quizzes,
		attempts: attempts,
		results:  results,
		mentor:   mentor,
		log:      log.With().Str("component", "quiz_service").Logger(),
		now:      time.Now,
	}
}

// QuizTypes lists the registered quiz types.
func (s *QuizService) QuizTypes() []scoring.QuizType {
	return s.engine.QuizTypes()
}

// GetQuiz returns a quiz with option categories and weights stripped, so the
// scoring key is not exposed to respondents.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, _, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	public := quiz
	public.Questions = make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		opts := make([]domain.Option, len(q.Options))
		for j, o := range q.Options {
			opts[j] = domain.Option{ID: o.ID, Text: o.Text}
		}
		q.Options = opts
		public.Questions[i] = q
	}
	return public, nil
}

// Evaluate scores a full answer set without persisting anything.
func (s *QuizService) Evaluate(ctx context.Context, req EvaluateRequest) (scoring.Evaluation, error) {
	quiz, qt, err := s.loadQuiz(ctx, req.QuizID)
	if err != nil {
		return scoring.Evaluation{}, err
	}
	return s.evaluate(ctx, quiz, qt, req)
}

// Submit evaluates an answer set and stores the snapshot in the user's history.
func (s *QuizService) Submit(ctx context.Context, userID string, req EvaluateRequest) (domain.Result, error) {
	quiz, qt, err := s.loadQuiz(ctx, req.QuizID)
	if err != nil {
		return domain.Result{}, err
	}
	eval, err := s.evaluate(ctx, quiz, qt, req)
	if err != nil {
		return domain.Result{}, err
	}

	result := domain.Result{
		ID:              uuid.NewString(),
		UserID:          userID,
		QuizID:          quiz.ID,
		QuizType:        quiz.Type,
		Answers:         req.Answers,
		Scores:          eval.Normalized,
		Recommendations: eval.Recommendations,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.results.Save(ctx, result); err != nil {
		return domain.Result{}, fmt.Errorf("save result: %w", err)
	}
	s.log.Info().
		Str("user_id", userID).
		Str("quiz_id", quiz.ID).
		Int("answered", eval.Answered).
		Msg("quiz result stored")
	return result, nil
}

// RecordAnswer validates and stores one answer of an in-progress attempt and
// returns how many questions have been answered so far.
func (s *QuizService) RecordAnswer(ctx context.Context, userID, quizID string, answer domain.Answer) (int, error) {
	quiz, qt, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	var question *domain.Question
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == answer.QuestionID {
			question = &quiz.Questions[i]
			break
		}
	}
	if question == nil {
		return 0, domain.Invalid("questionId", "unknown question %q", answer.QuestionID)
	}
	if _, _, err := scoring.ResolveAnswer(qt, *question, answer); err != nil {
		return 0, err
	}
	return s.attempts.Record(ctx, AttemptKey{UserID: userID, QuizID: quizID}, answer)
}

// SubmitAttempt evaluates the answers recorded so far, stores the result and
// clears the attempt.
func (s *QuizService) SubmitAttempt(ctx context.Context, userID, quizID string, req EvaluateRequest) (domain.Result, error) {
	key := AttemptKey{UserID: userID, QuizID: quizID}
	answers, err := s.attempts.Answers(ctx, key)
	if err != nil {
		return domain.Result{}, err
	}
	req.QuizID = quizID
	req.Answers = answers
	result, err := s.Submit(ctx, userID, req)
	if err != nil {
		return domain.Result{}, err
	}
	if err := s.attempts.Discard(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("quiz_id", quizID).Msg("discard attempt failed")
	}
	return result, nil
}

// History lists a user's stored results, newest first.
func (s *QuizService) History(ctx context.Context, userID string, limit int) ([]domain.Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.results.ListByUser(ctx, userID, limit)
}

func (s *QuizService) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, scoring.QuizType, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, scoring.QuizType{}, err
	}
	qt, err := s.engine.QuizType(quiz.Type)
	if err != nil {
		return domain.Quiz{}, scoring.QuizType{}, err
	}
	if err := qt.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, scoring.QuizType{}, fmt.Errorf("quiz %s is misconfigured: %w", quiz.ID, err)
	}
	return quiz, qt, nil
}

func (s *QuizService) evaluate(ctx context.Context, quiz domain.Quiz, qt scoring.QuizType, req EvaluateRequest) (scoring.Evaluation, error) {
	topN := req.TopN
	if topN == 0 {
		topN = DefaultTopN
	}

	var external domain.CategoryScoreVector
	if req.UseMentor {
		// Reject bad answers before spending a generation call on them.
		if _, err := scoring.Accumulate(qt, quiz.Questions, req.Answers); err != nil {
			return scoring.Evaluation{}, err
		}
		scores, err := s.askMentor(ctx, quiz, qt, req)
		if err != nil {
			return scoring.Evaluation{}, err
		}
		external = scores
	}
	return s.engine.EvaluateWith(quiz, req.Answers, topN, external)
}

func (s *QuizService) askMentor(ctx context.Context, quiz domain.Quiz, qt scoring.QuizType, req EvaluateRequest) (domain.CategoryScoreVector, error) {
	if s.mentor == nil {
		return nil, domain.ErrMentorUnavailable
	}
	prompt, err := mentorPrompt(quiz, qt, req)
	if err != nil {
		return nil, err
	}
	text, err := s.mentor.Generate(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Str("quiz_id", quiz.ID).Msg("mentor generation failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrMentorUnavailable, err)
	}
	scores, err := scoring.ParseExternalScores(qt, text)
	if err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID).Msg("mentor returned unusable scores")
		return nil, err
	}
	return scores, nil
}

type promptAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func mentorPrompt(quiz domain.Quiz, qt scoring.QuizType, req EvaluateRequest) (string, error) {
	byID := make(map[string]domain.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}
	answered := make([]promptAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		q := byID[a.QuestionID]
		idx := a.Option
		if a.Category != "" {
			for i, c := range qt.Categories {
				if c == a.Category {
					idx = i
				}
			}
		}
		answered = append(answered, promptAnswer{Question: q.Prompt, Answer: q.Options[idx].Text})
	}
	payload, err := json.Marshal(answered)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a career mentor for students. Quiz: %s.\n", quiz.Title)
	if summary := strings.TrimSpace(req.ProfileSummary); summary != "" {
		fmt.Fprintf(&b, "Student profile: %s\n", summary)
	}
	fmt.Fprintf(&b, "Answers: %s\n", payload)
	fmt.Fprintf(&b, "Reply with only a JSON object mapping each of these categories to an integer score from 0 to 100: %s.",
		strings.Join(qt.Categories, ", "))
	return b.String(), nil
}
