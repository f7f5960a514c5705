package scoring

import "careerpath-service/internal/domain"

// MaxScore is the upper bound of every normalized score.
const MaxScore = 100

// Normalize bounds raw scores to [0, MaxScore] according to the quiz type's
// policy. answered is the number of questions answered; it is only used by
// NormalizeByAnswered. Zero denominators produce an all-zero vector.
func Normalize(qt QuizType, raw domain.CategoryScoreVector, answered int) domain.CategoryScoreVector {
	out := qt.EmptyVector()

	var denominator int
	switch qt.Normalization {
	case NormalizeByAnswered:
		denominator = answered
	case NormalizeByMaxObserved:
		for _, c := range qt.Categories {
			if raw[c] > denominator {
				denominator = raw[c]
			}
		}
	case NormalizeNone:
		for _, c := range qt.Categories {
			out[c] = clamp(raw[c])
		}
		return out
	}

	if denominator <= 0 {
		return out
	}
	for _, c := range qt.Categories {
		out[c] = clamp(percent(raw[c], denominator))
	}
	return out
}

// percent computes round-half-up(value / total * 100) in integers.
func percent(value, total int) int {
	if value <= 0 {
		return 0
	}
	return (value*MaxScore*2 + total) / (total * 2)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
