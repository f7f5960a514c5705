package scoring

import (
	"fmt"
	"sort"

	"careerpath-service/internal/domain"
)

// Evaluation is the full output of one scoring run.
type Evaluation struct {
	QuizType        string                     `json:"quizType"`
	Answered        int                        `json:"answered"`
	Raw             domain.CategoryScoreVector `json:"raw"`
	Normalized      domain.CategoryScoreVector `json:"normalized"`
	Recommendations []domain.Recommendation    `json:"recommendations"`
}

// Engine resolves quiz types by ID and runs the scoring pipeline.
// It is immutable after construction.
type Engine struct {
	types map[string]QuizType
	order []string
}

// NewEngine validates and registers the given quiz types.
func NewEngine(types ...QuizType) (*Engine, error) {
	e := &Engine{types: make(map[string]QuizType, len(types))}
	for _, qt := range types {
		if err := qt.Validate(); err != nil {
			return nil, err
		}
		if _, dup := e.types[qt.ID]; dup {
			return nil, fmt.Errorf("quiz type %q registered twice", qt.ID)
		}
		e.types[qt.ID] = qt
		e.order = append(e.order, qt.ID)
	}
	sort.Strings(e.order)
	return e, nil
}

// QuizType looks up a registered quiz type.
func (e *Engine) QuizType(id string) (QuizType, error) {
	qt, ok := e.types[id]
	if !ok {
		return QuizType{}, domain.ErrQuizTypeNotFound
	}
	return qt, nil
}

// QuizTypes lists registered quiz types sorted by ID.
func (e *Engine) QuizTypes() []QuizType {
	out := make([]QuizType, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.types[id])
	}
	return out
}

// Score accumulates the raw category vector for a quiz.
func (e *Engine) Score(quiz domain.Quiz, answers []domain.Answer) (domain.CategoryScoreVector, error) {
	qt, err := e.QuizType(quiz.Type)
	if err != nil {
		return nil, err
	}
	return Accumulate(qt, quiz.Questions, answers)
}

// Evaluate runs accumulate, normalize and rank.
func (e *Engine) Evaluate(quiz domain.Quiz, answers []domain.Answer, topN int) (Evaluation, error) {
	return e.EvaluateWith(quiz, answers, topN, nil)
}

// EvaluateWith is Evaluate with validated external scores merged into the
// normalized vector before ranking. A nil external vector is ignored.
func (e *Engine) EvaluateWith(quiz domain.Quiz, answers []domain.Answer, topN int, external domain.CategoryScoreVector) (Evaluation, error) {
	qt, err := e.QuizType(quiz.Type)
	if err != nil {
		return Evaluation{}, err
	}
	raw, err := Accumulate(qt, quiz.Questions, answers)
	if err != nil {
		return Evaluation{}, err
	}
	normalized := Normalize(qt, raw, len(answers))
	if external != nil {
		normalized = Merge(qt, normalized, external)
	}
	recs, err := Rank(qt, normalized, topN)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		QuizType:        qt.ID,
		Answered:        len(answers),
		Raw:             raw,
		Normalized:      normalized,
		Recommendations: recs,
	}, nil
}
