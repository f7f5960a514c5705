package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"careerpath-service/internal/app"
	"careerpath-service/internal/catalog"
	"careerpath-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewScoreCmd evaluates an answers file against a built-in quiz offline.
func NewScoreCmd() *cobra.Command {
	var (
		quizID      string
		answersPath string
		topN        int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers file against a built-in quiz and print the ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if answersPath != "-" {
				f, err := os.Open(answersPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runScore(in, cmd.OutOrStdout(), quizID, topN)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "built-in quiz id")
	cmd.Flags().StringVar(&answersPath, "answers", "-", "JSON array of answers, - for stdin")
	cmd.Flags().IntVar(&topN, "top", app.DefaultTopN, "number of recommendations")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}

func runScore(in io.Reader, out io.Writer, quizID string, topN int) error {
	engine, err := catalog.NewEngine()
	if err != nil {
		return err
	}
	quiz, ok := catalog.Quizzes()[quizID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
	}

	var answers []domain.Answer
	if err := json.NewDecoder(in).Decode(&answers); err != nil {
		return fmt.Errorf("decode answers: %w", err)
	}
	eval, err := engine.Evaluate(quiz, answers, topN)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(eval)
}
