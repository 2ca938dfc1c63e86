// Package scoring computes normalized composite scores for keyword records
// and selects the primary keyword that anchors listing composition.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"asogen/internal/core"
)

// Weights configures the composite score. The three weights must sum to 1.0
// within a 0.001 tolerance.
type Weights struct {
	Ranking    float64
	Popularity float64
	Difficulty float64
}

// DefaultWeights returns the reference weighting: ranking and popularity
// dominate, difficulty acts as a tiebreaker concern.
func DefaultWeights() Weights {
	return Weights{Ranking: 0.4, Popularity: 0.4, Difficulty: 0.2}
}

// Scorer computes per-keyword sub-scores and composites. Immutable and safe
// for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weights and returns a scorer. Weight sets that do
// not sum to 1.0 (±0.001) fail with a ConfigurationError.
func NewScorer(w Weights) (*Scorer, error) {
	sum := w.Ranking + w.Popularity + w.Difficulty
	if math.Abs(sum-1.0) > 0.001 {
		return nil, &core.ConfigurationError{
			Message: fmt.Sprintf("scoring weights must sum to 1.0, got %.4f", sum),
		}
	}
	return &Scorer{weights: w}, nil
}

// RankingScore normalizes a 1-1000 ranking so rank 1 maps to 1.0 and rank
// 1000 maps to 0.0.
func RankingScore(ranking int) float64 {
	return math.Max(0, float64(1000-ranking)/999)
}

// PopularityScore normalizes a 0-100 popularity to [0,1].
func PopularityScore(popularity float64) float64 {
	return popularity / 100
}

// DifficultyScore normalizes a 0-100 difficulty to [0,1]; lower difficulty
// scores higher.
func DifficultyScore(difficulty float64) float64 {
	return (100 - difficulty) / 100
}

// Score computes the sub-scores and weighted composite for one record. Pure
// and deterministic; the composite is rounded to 4 decimal digits.
func (s *Scorer) Score(rec core.KeywordRecord) core.ScoredKeyword {
	rankingScore := RankingScore(rec.Ranking)
	popularityScore := PopularityScore(rec.Popularity)
	difficultyScore := DifficultyScore(rec.Difficulty)

	composite := s.weights.Ranking*rankingScore +
		s.weights.Popularity*popularityScore +
		s.weights.Difficulty*difficultyScore

	return core.ScoredKeyword{
		Record:          rec,
		RankingScore:    rankingScore,
		PopularityScore: popularityScore,
		DifficultyScore: difficultyScore,
		CompositeScore:  round4(composite),
	}
}

// ScoreTable scores every record and returns the results sorted by composite
// score descending. Ties keep the original table order (stable sort).
func (s *Scorer) ScoreTable(records []core.KeywordRecord) []core.ScoredKeyword {
	scored := make([]core.ScoredKeyword, len(records))
	for i, rec := range records {
		scored[i] = s.Score(rec)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})
	return scored
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
