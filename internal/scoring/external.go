package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"careerpath-service/internal/domain"
)

// ParseExternalScores validates untrusted {category: score} output from a text
// generator. The JSON object may be wrapped in prose or a code fence. Unknown
// categories, non-numeric values and values outside [0, 100] are rejected.
func ParseExternalScores(qt QuizType, text string) (domain.CategoryScoreVector, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, domain.Invalid("external", "no JSON object in response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, domain.Invalid("external", "malformed JSON: %v", err)
	}

	out := make(domain.CategoryScoreVector, len(raw))
	for key, value := range raw {
		if !qt.HasCategory(key) {
			return nil, domain.Invalid("external", "unknown category %q", key)
		}
		num, ok := value.(json.Number)
		if !ok {
			return nil, domain.Invalid("external", "%s: score is not a number", key)
		}
		f, err := num.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, domain.Invalid("external", "%s: invalid number %s", key, num)
		}
		if f < 0 || f > MaxScore {
			return nil, domain.Invalid("external", "%s: score %s outside [0, %d]", key, num, MaxScore)
		}
		out[key] = int(math.Floor(f + 0.5))
	}
	return out, nil
}

// Merge averages external scores into the engine's normalized vector.
// Categories missing from external keep the engine's score.
func Merge(qt QuizType, normalized, external domain.CategoryScoreVector) domain.CategoryScoreVector {
	out := qt.EmptyVector()
	for _, c := range qt.Categories {
		base := clamp(normalized[c])
		ext, ok := external[c]
		if !ok {
			out[c] = base
			continue
		}
		out[c] = clamp((base + clamp(ext) + 1) / 2)
	}
	return out
}
