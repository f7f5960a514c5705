package scoring

import (
	"fmt"

	"careerpath-service/internal/domain"
)

// Accumulate folds answers into a raw score vector. Unanswered questions add
// nothing. Any invalid answer aborts the whole call with a ValidationError and
// no vector.
func Accumulate(qt QuizType, questions []domain.Question, answers []domain.Answer) (domain.CategoryScoreVector, error) {
	byID := make(map[string]*domain.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	scores := qt.EmptyVector()
	answered := make(map[string]struct{}, len(answers))
	for i, answer := range answers {
		field := fmt.Sprintf("answers[%d]", i)
		question, ok := byID[answer.QuestionID]
		if !ok {
			return nil, domain.Invalid(field, "unknown question %q", answer.QuestionID)
		}
		if _, dup := answered[answer.QuestionID]; dup {
			return nil, domain.Invalid(field, "question %q answered twice", answer.QuestionID)
		}
		answered[answer.QuestionID] = struct{}{}

		category, points, err := resolve(qt, question, answer)
		if err != nil {
			return nil, domain.Invalid(field, "%s", err)
		}
		scores[category] += points
	}
	return scores, nil
}

// ResolveAnswer validates a single answer against its question and returns the
// category it scores for.
func ResolveAnswer(qt QuizType, question domain.Question, answer domain.Answer) (string, int, error) {
	category, points, err := resolve(qt, &question, answer)
	if err != nil {
		return "", 0, domain.Invalid("answer", "%s", err)
	}
	return category, points, nil
}

func resolve(qt QuizType, question *domain.Question, answer domain.Answer) (string, int, error) {
	index := answer.Option
	if answer.Category != "" {
		if qt.Weighting != WeightingSimple {
			return "", 0, fmt.Errorf("category labels are only accepted on simple quizzes")
		}
		index = qt.categoryIndex(answer.Category)
		if index < 0 {
			return "", 0, fmt.Errorf("unknown category %q", answer.Category)
		}
	}
	if index < 0 || index >= len(question.Options) {
		return "", 0, fmt.Errorf("option %d out of range for question %q", index, question.ID)
	}

	switch qt.Weighting {
	case WeightingSimple:
		if index >= len(qt.Categories) {
			return "", 0, fmt.Errorf("option %d has no category", index)
		}
		return qt.Categories[index], 1, nil
	default:
		opt := question.Options[index]
		if !qt.HasCategory(opt.Category) {
			return "", 0, fmt.Errorf("option %d targets unknown category %q", index, opt.Category)
		}
		if opt.Weight < 0 {
			return "", 0, fmt.Errorf("option %d has negative weight", index)
		}
		return opt.Category, opt.Weight, nil
	}
}
