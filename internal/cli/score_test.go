package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"careerpath-service/internal/domain"
	"careerpath-service/internal/scoring"
)

func TestScoreCommandPrintsRanking(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(`[{"questionId":"q1","option":3},{"questionId":"q2","option":3},{"questionId":"q5","option":2}]`))
	cmd.SetArgs([]string{"score", "--quiz", "degree-aptitude", "--top", "2"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var eval scoring.Evaluation
	if err := json.Unmarshal(out.Bytes(), &eval); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out.String())
	}
	if eval.Normalized["design"] != 100 || len(eval.Recommendations) != 2 || eval.Recommendations[0].Key != "design" {
		t.Fatalf("unexpected evaluation %+v", eval)
	}
}

func TestScoreRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	if err := runScore(strings.NewReader(`[]`), &out, "nope", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	err := runScore(strings.NewReader(`[{"questionId":"q1","option":9}]`), &out, "subject-aptitude", 3)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := runScore(strings.NewReader(`{`), &out, "subject-aptitude", 3); err == nil {
		t.Fatalf("expected decode error")
	}
}
