package scoring

import (
	"errors"
	"fmt"
	"testing"

	"asogen/internal/core"
)

func scoredList(keywords ...string) []core.ScoredKeyword {
	out := make([]core.ScoredKeyword, len(keywords))
	for i, kw := range keywords {
		out[i] = core.ScoredKeyword{
			Record:         core.KeywordRecord{Keyword: kw, Ranking: (i + 1) * 10, Popularity: 50, Difficulty: 50},
			CompositeScore: 0.9 - float64(i)*0.05,
		}
	}
	return out
}

func TestSelectEmptyInput(t *testing.T) {
	_, err := NewSelector(DefaultSelectorOptions()).Select(nil)
	var sErr *core.SelectionError
	if !errors.As(err, &sErr) {
		t.Fatalf("Expected *core.SelectionError, got %v", err)
	}
}

func TestSelectPicksTopScored(t *testing.T) {
	sel, err := NewSelector(DefaultSelectorOptions()).Select(scoredList("alpha", "beta", "gamma"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel.Primary.Record.Keyword != "alpha" {
		t.Errorf("Expected primary 'alpha', got %q", sel.Primary.Record.Keyword)
	}
	if sel.TotalAnalyzed != 3 {
		t.Errorf("Expected 3 analyzed, got %d", sel.TotalAnalyzed)
	}
	if sel.LowConfidence {
		t.Error("Expected 0.9 score to be above the 0.3 threshold")
	}
}

func TestSelectCandidateShortlist(t *testing.T) {
	keywords := make([]string, 15)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("keyword %02d", i)
	}
	sel, err := NewSelector(DefaultSelectorOptions()).Select(scoredList(keywords...))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(sel.Candidates) != 10 {
		t.Fatalf("Expected 10 candidates, got %d", len(sel.Candidates))
	}
	if sel.Candidates[0].Keyword != sel.Primary.Record.Keyword {
		t.Errorf("Expected the primary as candidate 1, got %q", sel.Candidates[0].Keyword)
	}
	for i, c := range sel.Candidates {
		if c.Rank != i+1 {
			t.Errorf("Expected rank %d at index %d, got %d", i+1, i, c.Rank)
		}
	}
	if sel.TotalAnalyzed != 15 {
		t.Errorf("Expected TotalAnalyzed 15, got %d", sel.TotalAnalyzed)
	}
}

func TestSelectShortlistSmallerThanLimit(t *testing.T) {
	sel, err := NewSelector(DefaultSelectorOptions()).Select(scoredList("only", "two"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(sel.Candidates))
	}
}

func TestSelectLowConfidenceFlagNotError(t *testing.T) {
	scored := []core.ScoredKeyword{{
		Record:         core.KeywordRecord{Keyword: "weak keyword", Ranking: 990, Popularity: 5, Difficulty: 95},
		CompositeScore: 0.05,
	}}
	sel, err := NewSelector(DefaultSelectorOptions()).Select(scored)
	if err != nil {
		t.Fatalf("Expected low score to select with a flag, got error %v", err)
	}
	if !sel.LowConfidence {
		t.Error("Expected LowConfidence to be set for score 0.05")
	}
}

func TestSelectRejectsMalformedPrimary(t *testing.T) {
	cases := []struct {
		name    string
		keyword string
	}{
		{"too short", "a"},
		{"too long", "this keyword is far far far far far too long to anchor a listing"},
		{"forbidden character", `best "app"`},
		{"surrounding whitespace", " padded "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scored := []core.ScoredKeyword{{
				Record:         core.KeywordRecord{Keyword: tc.keyword, Ranking: 1, Popularity: 90, Difficulty: 10},
				CompositeScore: 0.94,
			}}
			_, err := NewSelector(DefaultSelectorOptions()).Select(scored)
			var sErr *core.SelectionError
			if !errors.As(err, &sErr) {
				t.Fatalf("Expected *core.SelectionError, got %v", err)
			}
		})
	}
}

func TestSelectTwoRuneJapanesePrimary(t *testing.T) {
	scored := []core.ScoredKeyword{{
		Record:         core.KeywordRecord{Keyword: "家計", Ranking: 3, Popularity: 70, Difficulty: 30},
		CompositeScore: 0.8,
	}}
	if _, err := NewSelector(DefaultSelectorOptions()).Select(scored); err != nil {
		t.Errorf("Expected 2-rune keyword to pass the length check, got %v", err)
	}
}
