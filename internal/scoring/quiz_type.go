// Package scoring turns quiz answers into ranked recommendations.
//
// Every quiz variant goes through the same pipeline: Accumulate folds answers
// into a CategoryScoreVector, Normalize bounds it to [0, 100] and Rank orders
// categories or composite streams against a static metadata table. The
// per-variant differences live in a QuizType descriptor. All functions are pure
// and safe for concurrent use.
package scoring

import (
	"fmt"

	"careerpath-service/internal/domain"
)

// Weighting selects how an answer contributes to the category scores.
type Weighting string

const (
	// WeightingSimple adds 1 to the category at the chosen option's position.
	WeightingSimple Weighting = "simple"
	// WeightingWeighted adds the chosen option's weight to its annotated category.
	WeightingWeighted Weighting = "weighted"
)

// Normalization selects how raw scores become percentages.
type Normalization string

const (
	// NormalizeByAnswered divides by the number of answered questions.
	NormalizeByAnswered Normalization = "answered"
	// NormalizeByMaxObserved divides by the highest raw score of the vector.
	NormalizeByMaxObserved Normalization = "max-observed"
	// NormalizeNone keeps raw values, clamped to [0, 100].
	NormalizeNone Normalization = "none"
)

// RankingMode selects what gets ranked.
type RankingMode string

const (
	RankByCategory  RankingMode = "category"
	RankByComposite RankingMode = "composite"
)

// Component is one weighted input of a composite.
type Component struct {
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

// Composite is a label derived from 2 to 4 underlying categories, such as an
// academic stream or a career.
type Composite struct {
	Key        string      `json:"key"`
	Components []Component `json:"components"`
}

// Entry is the static metadata for a category or composite key.
type Entry struct {
	Title   string
	Details domain.Details
}

// QuizType describes one quiz variant. Categories and Composites are in
// canonical order, which is also the tie-break order when ranking.
type QuizType struct {
	ID            string
	Title         string
	Categories    []string
	Weighting     Weighting
	Normalization Normalization
	Ranking       RankingMode
	Composites    []Composite
	Metadata      map[string]Entry
}

// HasCategory reports whether c belongs to the quiz type.
func (qt QuizType) HasCategory(c string) bool {
	return qt.categoryIndex(c) >= 0
}

func (qt QuizType) categoryIndex(c string) int {
	for i, cat := range qt.Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// EmptyVector returns a vector with every category present at zero.
func (qt QuizType) EmptyVector() domain.CategoryScoreVector {
	v := make(domain.CategoryScoreVector, len(qt.Categories))
	for _, c := range qt.Categories {
		v[c] = 0
	}
	return v
}

// Validate checks the descriptor itself.
func (qt QuizType) Validate() error {
	if qt.ID == "" {
		return domain.Invalid("quizType.id", "must not be empty")
	}
	if len(qt.Categories) == 0 {
		return domain.Invalid("quizType.categories", "must not be empty")
	}
	seen := make(map[string]struct{}, len(qt.Categories))
	for _, c := range qt.Categories {
		if _, dup := seen[c]; dup {
			return domain.Invalid("quizType.categories", "duplicate category %q", c)
		}
		seen[c] = struct{}{}
	}
	switch qt.Weighting {
	case WeightingSimple, WeightingWeighted:
	default:
		return domain.Invalid("quizType.weighting", "unknown weighting %q", qt.Weighting)
	}
	switch qt.Normalization {
	case NormalizeByAnswered, NormalizeByMaxObserved, NormalizeNone:
	default:
		return domain.Invalid("quizType.normalization", "unknown normalization %q", qt.Normalization)
	}
	switch qt.Ranking {
	case RankByCategory:
	case RankByComposite:
		if len(qt.Composites) == 0 {
			return domain.Invalid("quizType.composites", "composite ranking needs composites")
		}
	default:
		return domain.Invalid("quizType.ranking", "unknown ranking mode %q", qt.Ranking)
	}
	for _, comp := range qt.Composites {
		if len(comp.Components) < 2 || len(comp.Components) > 4 {
			return domain.Invalid("quizType.composites", "%s: needs 2 to 4 components", comp.Key)
		}
		for _, part := range comp.Components {
			if !qt.HasCategory(part.Category) {
				return domain.Invalid("quizType.composites", "%s: unknown category %q", comp.Key, part.Category)
			}
			if part.Weight <= 0 {
				return domain.Invalid("quizType.composites", "%s: weight must be positive", comp.Key)
			}
		}
	}
	return nil
}

// ValidateQuiz checks that a question set fits the quiz type.
func (qt QuizType) ValidateQuiz(quiz domain.Quiz) error {
	if quiz.Type != qt.ID {
		return domain.Invalid("quiz.type", "quiz %s has type %q, want %q", quiz.ID, quiz.Type, qt.ID)
	}
	ids := make(map[string]struct{}, len(quiz.Questions))
	for _, q := range quiz.Questions {
		field := fmt.Sprintf("questions[%s]", q.ID)
		if q.ID == "" {
			return domain.Invalid("questions", "question id must not be empty")
		}
		if _, dup := ids[q.ID]; dup {
			return domain.Invalid(field, "duplicate question id")
		}
		ids[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return domain.Invalid(field, "no options")
		}
		switch qt.Weighting {
		case WeightingSimple:
			if len(q.Options) > len(qt.Categories) {
				return domain.Invalid(field, "%d options exceed %d categories", len(q.Options), len(qt.Categories))
			}
		case WeightingWeighted:
			for i, opt := range q.Options {
				if !qt.HasCategory(opt.Category) {
					return domain.Invalid(field, "option %d targets unknown category %q", i, opt.Category)
				}
				if opt.Weight < 0 {
					return domain.Invalid(field, "option %d has negative weight", i)
				}
			}
		}
	}
	return nil
}
