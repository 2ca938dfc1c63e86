package scoring

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"asogen/internal/core"
)

const (
	minPrimaryLength = 2
	maxPrimaryLength = 50
)

// primaryForbiddenChars are never allowed in a primary keyword; they would
// leak markup into every composed field.
const primaryForbiddenChars = `<>&"'`

// SelectorOptions configures primary keyword selection.
type SelectorOptions struct {
	// MinScore is the composite score below which a selection is flagged as
	// low confidence. Selection still succeeds; the flag is surfaced to the
	// caller, not turned into an error.
	MinScore float64
	// CandidateLimit bounds the returned shortlist, primary included.
	CandidateLimit int
}

// DefaultSelectorOptions returns the reference thresholds.
func DefaultSelectorOptions() SelectorOptions {
	return SelectorOptions{MinScore: 0.3, CandidateLimit: 10}
}

// Selector picks the primary keyword and ranked candidates from scored
// keywords.
type Selector struct {
	opts SelectorOptions
}

// NewSelector returns a selector with the given options; zero-valued options
// fall back to the defaults.
func NewSelector(opts SelectorOptions) *Selector {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultSelectorOptions().CandidateLimit
	}
	return &Selector{opts: opts}
}

// Select picks index 0 of the descending-sorted scored list as primary and
// assembles the candidate shortlist. The input must already be sorted by
// ScoreTable. Empty input fails with a SelectionError; a primary keyword
// that fails shape validation (length, forbidden characters, surrounding
// whitespace) also fails, since every downstream field builds on it.
func (s *Selector) Select(scored []core.ScoredKeyword) (*core.SelectionResult, error) {
	if len(scored) == 0 {
		return nil, &core.SelectionError{Message: "no scored keywords to select from"}
	}

	primary := scored[0]
	if err := validatePrimary(primary.Record.Keyword); err != nil {
		return nil, err
	}

	limit := s.opts.CandidateLimit
	if limit > len(scored) {
		limit = len(scored)
	}
	candidates := make([]core.Candidate, limit)
	for i := 0; i < limit; i++ {
		sk := scored[i]
		candidates[i] = core.Candidate{
			Rank:       i + 1,
			Keyword:    sk.Record.Keyword,
			Score:      sk.CompositeScore,
			Ranking:    sk.Record.Ranking,
			Popularity: sk.Record.Popularity,
			Difficulty: sk.Record.Difficulty,
		}
	}

	return &core.SelectionResult{
		Primary:       primary,
		Candidates:    candidates,
		TotalAnalyzed: len(scored),
		LowConfidence: primary.CompositeScore < s.opts.MinScore,
	}, nil
}

// validatePrimary enforces the shape constraints on the selected keyword.
func validatePrimary(keyword string) error {
	if keyword != strings.TrimSpace(keyword) {
		return &core.SelectionError{Keyword: keyword, Message: "has leading or trailing whitespace"}
	}
	n := utf8.RuneCountInString(keyword)
	if n < minPrimaryLength || n > maxPrimaryLength {
		return &core.SelectionError{
			Keyword: keyword,
			Message: fmt.Sprintf("length %d outside [%d,%d]", n, minPrimaryLength, maxPrimaryLength),
		}
	}
	if strings.ContainsAny(keyword, primaryForbiddenChars) {
		return &core.SelectionError{Keyword: keyword, Message: "contains a forbidden character"}
	}
	return nil
}
