package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"careerpath-service/internal/app"
	"careerpath-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttemptStore keeps in-progress answers in one hash per attempt:
// HSET attempt:{userID}:{quizID} {questionID} {answer JSON}.
// Every write refreshes the TTL so abandoned attempts expire on their own.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

func (s *AttemptStore) Record(ctx context.Context, key app.AttemptKey, answer domain.Answer) (int, error) {
	payload, err := json.Marshal(answer)
	if err != nil {
		return 0, fmt.Errorf("encode answer: %w", err)
	}
	k := attemptKey(key)
	var count *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, answer.QuestionID, payload)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		count = pipe.HLen(ctx, k)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record answer: %w", err)
	}
	return int(count.Val()), nil
}

// Answers returns the recorded answers ordered by question ID.
func (s *AttemptStore) Answers(ctx context.Context, key app.AttemptKey) ([]domain.Answer, error) {
	fields, err := s.client.HGetAll(ctx, attemptKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrAttemptNotFound
	}
	out := make([]domain.Answer, 0, len(fields))
	for questionID, raw := range fields {
		var answer domain.Answer
		if err := json.Unmarshal([]byte(raw), &answer); err != nil {
			return nil, fmt.Errorf("decode answer %s: %w", questionID, err)
		}
		out = append(out, answer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (s *AttemptStore) Discard(ctx context.Context, key app.AttemptKey) error {
	return s.client.Del(ctx, attemptKey(key)).Err()
}

func attemptKey(key app.AttemptKey) string {
	return "attempt:" + key.UserID + ":" + key.QuizID
}
