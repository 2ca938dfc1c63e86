package compose

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"

	"asogen/internal/core"
)

// stubGenerator is the in-memory TextGenerator used across the composer
// tests. Responses can be keyed on the token budget since subtitle and
// description request different budgets.
type stubGenerator struct {
	text       string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestValidateLanguage(t *testing.T) {
	for _, lang := range []string{LangJapanese, LangEnglish} {
		if err := ValidateLanguage(lang); err != nil {
			t.Errorf("Expected %q to be supported, got %v", lang, err)
		}
	}
	for _, lang := range []string{"fr", "JA", "en-US", ""} {
		err := ValidateLanguage(lang)
		if err == nil {
			t.Errorf("Expected %q to be rejected", lang)
			continue
		}
		if _, ok := err.(*core.ConfigurationError); !ok {
			t.Errorf("Expected *core.ConfigurationError for %q, got %T", lang, err)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"  Fitness Tracker ": "fitness tracker",
		"FITNESS!!":          "fitness",
		"家計簿アプリ":             "家計簿アプリ",
		"step\t\tcounter":    "step counter",
		"two--words":         "twowords",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	got := dedupe([]string{"Fitness", "fitness!", "workout", "  FITNESS "})
	if len(got) != 2 {
		t.Fatalf("Expected 2 unique items, got %v", got)
	}
	if got[0] != "Fitness" {
		t.Errorf("Expected original casing of the first occurrence, got %q", got[0])
	}
	if got[1] != "workout" {
		t.Errorf("Expected 'workout' second, got %q", got[1])
	}
}

func TestGreedyFitDropsWholeItems(t *testing.T) {
	items := []string{"aaaa", "bbbbbbbb", "cc"}
	// budget 9: "aaaa" (4) fits, "bbbbbbbb" would need 4+1+8=13, dropped,
	// "cc" needs 4+1+2=7, fits.
	got := greedyFit(items, ",", 9)
	if len(got) != 2 || got[0] != "aaaa" || got[1] != "cc" {
		t.Errorf("Expected [aaaa cc], got %v", got)
	}
}

func TestGreedyFitCountsRunesNotBytes(t *testing.T) {
	got := greedyFit([]string{"家計簿", "アプリ"}, "、", 7)
	if len(got) != 2 {
		t.Errorf("Expected both 3-rune items to fit a 7-rune budget, got %v", got)
	}
}

func TestSanitizeStripsForbiddenChars(t *testing.T) {
	got := sanitize(` It's  a <great> "app" & more `)
	if got != "Its a great app more" {
		t.Errorf("Expected 'Its a great app more', got %q", got)
	}
}

func TestTruncateAtWordBoundary(t *testing.T) {
	if got := truncateAtWordBoundary("short", 10); got != "short" {
		t.Errorf("Expected text within budget untouched, got %q", got)
	}
	got := truncateAtWordBoundary("alpha beta gamma", 12)
	if got != "alpha beta" {
		t.Errorf("Expected cut at word boundary, got %q", got)
	}
	// No whitespace to back up to: hard cut.
	got = truncateAtWordBoundary("家計簿アプリで毎日の支出を管理", 6)
	if utf8.RuneCountInString(got) != 6 {
		t.Errorf("Expected hard cut to 6 runes, got %q", got)
	}
}

func TestValidateFieldChecks(t *testing.T) {
	spec := FieldSpec{Name: "test_field", MaxLength: 5}

	if err := validateField(spec, "ok"); err != nil {
		t.Errorf("Expected valid output to pass, got %v", err)
	}
	if err := validateField(spec, ""); err == nil {
		t.Error("Expected empty output to fail")
	}
	if err := validateField(spec, "toolong"); err == nil {
		t.Error("Expected overlong output to fail")
	}
	if err := validateField(spec, "a<b"); err == nil {
		t.Error("Expected forbidden character to fail")
	}

	err := validateField(spec, "toolong")
	var cErr *core.CompositionError
	if !errors.As(err, &cErr) || cErr.Field != "test_field" {
		t.Errorf("Expected CompositionError carrying the field name, got %v", err)
	}
}

func TestCountOccurrencesCaseInsensitive(t *testing.T) {
	if got := countOccurrences("Fitness apps make fitness fun", "fitness"); got != 2 {
		t.Errorf("Expected 2 occurrences, got %d", got)
	}
	if got := countOccurrences("anything", ""); got != 0 {
		t.Errorf("Expected empty keyword to count 0, got %d", got)
	}
}
