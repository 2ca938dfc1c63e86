package compose

import (
	"sort"
	"strings"

	"asogen/internal/core"
)

// maxKeywordCandidates bounds how many shortlist entries are considered for
// the keyword field, primary included.
const maxKeywordCandidates = 10

// BuildKeywordField composes the comma (or 、) separated keyword list within
// its 100 character budget. Candidates are the primary keyword plus the
// deduplicated shortlist ordered by composite score descending, with the
// primary pinned to the front (score forced to 1.0). Items that would
// overflow the budget are dropped whole, never truncated.
func BuildKeywordField(sel *core.SelectionResult, lang string) (string, error) {
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	sep, err := KeywordFieldSpec.Separator(lang)
	if err != nil {
		return "", err
	}
	if sel == nil || sel.Primary.Record.Keyword == "" {
		return "", &core.CompositionError{Field: FieldKeywords, Message: "no primary keyword selected"}
	}

	primary := sel.Primary.Record.Keyword
	scores := map[string]float64{NormalizeKey(primary): 1.0}

	candidates := []string{primary}
	for _, c := range sel.Candidates {
		if len(candidates) >= maxKeywordCandidates {
			break
		}
		// Keywords carrying forbidden characters would poison the whole
		// field, skip them instead of failing composition.
		if strings.ContainsAny(c.Keyword, forbiddenChars) {
			continue
		}
		key := NormalizeKey(c.Keyword)
		if _, ok := scores[key]; !ok {
			scores[key] = c.Score
		}
		candidates = append(candidates, c.Keyword)
	}

	unique := dedupe(candidates)
	sort.SliceStable(unique, func(i, j int) bool {
		return scores[NormalizeKey(unique[i])] > scores[NormalizeKey(unique[j])]
	})

	fitted := greedyFit(unique, sep, KeywordFieldSpec.MaxLength)
	output := strings.Join(fitted, sep)

	if err := validateField(KeywordFieldSpec, output); err != nil {
		return "", err
	}
	return output, nil
}
