package scoring

import (
	"sort"

	"careerpath-service/internal/domain"
)

type candidate struct {
	key   string
	score int
	order int
}

// Rank returns the top N recommendations for a normalized vector. Ties keep
// canonical declaration order, so identical input always yields identical
// output. When fewer than N entries exist every entry is returned.
func Rank(qt QuizType, normalized domain.CategoryScoreVector, topN int) ([]domain.Recommendation, error) {
	if topN <= 0 {
		return nil, domain.Invalid("topN", "must be positive, got %d", topN)
	}

	var candidates []candidate
	switch qt.Ranking {
	case RankByComposite:
		candidates = make([]candidate, 0, len(qt.Composites))
		for i, comp := range qt.Composites {
			candidates = append(candidates, candidate{key: comp.Key, score: CompositeScore(comp, normalized), order: i})
		}
	default:
		candidates = make([]candidate, 0, len(qt.Categories))
		for i, c := range qt.Categories {
			candidates = append(candidates, candidate{key: c, score: clamp(normalized[c]), order: i})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if topN > len(candidates) {
		topN = len(candidates)
	}
	out := make([]domain.Recommendation, 0, topN)
	for _, cand := range candidates[:topN] {
		entry, ok := qt.Metadata[cand.key]
		label := entry.Title
		if !ok || label == "" {
			label = cand.key
		}
		out = append(out, domain.Recommendation{
			Key:        cand.key,
			Label:      label,
			MatchScore: cand.score,
			Details:    entry.Details,
		})
	}
	return out, nil
}

// CompositeScore is the rounded weighted average of the composite's categories.
func CompositeScore(comp Composite, normalized domain.CategoryScoreVector) int {
	var sum, weights int
	for _, part := range comp.Components {
		sum += clamp(normalized[part.Category]) * part.Weight
		weights += part.Weight
	}
	if weights <= 0 {
		return 0
	}
	return clamp((sum*2 + weights) / (weights * 2))
}
