package postgres

import (
	"context"
	"fmt"
	"time"

	"careerpath-service/internal/domain"
	"github.com/uptrace/bun"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results,alias:r"`

	ID              string                     `bun:"id,pk"`
	UserID          string                     `bun:"user_id,notnull"`
	QuizID          string                     `bun:"quiz_id,notnull"`
	QuizType        string                     `bun:"quiz_type,notnull"`
	Answers         []domain.Answer            `bun:"answers,type:jsonb,notnull"`
	Scores          domain.CategoryScoreVector `bun:"scores,type:jsonb,notnull"`
	Recommendations []domain.Recommendation    `bun:"recommendations,type:jsonb,notnull"`
	CreatedAt       time.Time                  `bun:"created_at,notnull"`
}

// ResultStore keeps quiz result snapshots through bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) Save(ctx context.Context, result domain.Result) error {
	row := resultRow{
		ID:              result.ID,
		UserID:          result.UserID,
		QuizID:          result.QuizID,
		QuizType:        result.QuizType,
		Answers:         result.Answers,
		Scores:          result.Scores,
		Recommendations: result.Recommendations,
		CreatedAt:       result.CreatedAt,
	}
	if row.Answers == nil {
		row.Answers = []domain.Answer{}
	}
	if row.Recommendations == nil {
		row.Recommendations = []domain.Recommendation{}
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListByUser returns up to limit results, newest first.
func (s *ResultStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Result, error) {
	var rows []resultRow
	q := s.db.NewSelect().Model(&rows).Where("r.user_id = ?", userID).OrderExpr("r.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Result{
			ID:              row.ID,
			UserID:          row.UserID,
			QuizID:          row.QuizID,
			QuizType:        row.QuizType,
			Answers:         row.Answers,
			Scores:          row.Scores,
			Recommendations: row.Recommendations,
			CreatedAt:       row.CreatedAt,
		})
	}
	return out, nil
}
