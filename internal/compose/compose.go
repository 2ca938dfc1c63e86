package compose

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"asogen/internal/core"
)

// Field names, also used as cache key prefixes and in aggregate errors.
const (
	FieldKeywords    = "keyword_field"
	FieldTitle       = "title"
	FieldSubtitle    = "subtitle"
	FieldDescription = "description"
	FieldWhatsNew    = "whats_new"
)

// forbiddenChars never appear in composed output; App Store Connect rejects
// them and they can leak markup.
const forbiddenChars = `<>&"'`

// TextGenerator is the external text-generation boundary. Implementations
// must honor ctx cancellation and surface failures as *core.ProviderError.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int32) (string, error)
}

// FieldSpec is the static configuration of one output field.
type FieldSpec struct {
	Name       string
	MaxLength  int               // Hard character (rune) budget
	Separators map[string]string // Join separator per language
}

// Separator returns the join separator for a language, failing fast on
// unknown languages.
func (f FieldSpec) Separator(lang string) (string, error) {
	sep, ok := f.Separators[lang]
	if !ok {
		return "", &core.ConfigurationError{
			Message: fmt.Sprintf("no %s separator registered for language %q", f.Name, lang),
		}
	}
	return sep, nil
}

// The five field specifications. Budgets are counted in runes so a 30
// character Japanese title really is 30 characters.
var (
	KeywordFieldSpec = FieldSpec{FieldKeywords, 100, map[string]string{LangJapanese: "、", LangEnglish: ", "}}
	TitleSpec        = FieldSpec{FieldTitle, 30, map[string]string{LangJapanese: " - ", LangEnglish: " - "}}
	SubtitleSpec     = FieldSpec{FieldSubtitle, 30, map[string]string{LangJapanese: " - ", LangEnglish: " - "}}
	DescriptionSpec  = FieldSpec{FieldDescription, 4000, map[string]string{LangJapanese: " - ", LangEnglish: " - "}}
	WhatsNewSpec     = FieldSpec{FieldWhatsNew, 4000, map[string]string{LangJapanese: "、", LangEnglish: ", "}}
)

// nonWordRunes matches everything that is not a letter, digit, underscore or
// whitespace. Unicode classes keep CJK keywords intact (Go's \w is
// ASCII-only).
var nonWordRunes = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeKey lowercases, trims and strips non-word runes. Used only as the
// uniqueness key for deduplication; the original casing is what gets
// emitted.
func NormalizeKey(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = nonWordRunes.ReplaceAllString(normalized, "")
	return multiSpace.ReplaceAllString(normalized, " ")
}

// dedupe keeps the first occurrence of each normalized form, preserving
// order and original casing.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := NormalizeKey(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// greedyFit accumulates whole items joined by sep until the next item would
// push the rune length past maxLength. Rejected items are dropped, never
// truncated.
func greedyFit(items []string, sep string, maxLength int) []string {
	var out []string
	length := 0
	sepLen := utf8.RuneCountInString(sep)
	for _, item := range items {
		itemLen := utf8.RuneCountInString(item)
		next := length + itemLen
		if len(out) > 0 {
			next += sepLen
		}
		if next > maxLength {
			continue
		}
		out = append(out, item)
		length = next
	}
	return out
}

// validateField applies the final output checks shared by every composer.
func validateField(spec FieldSpec, output string) error {
	if output == "" {
		return &core.CompositionError{Field: spec.Name, Message: "output is empty"}
	}
	if n := utf8.RuneCountInString(output); n > spec.MaxLength {
		return &core.CompositionError{
			Field:   spec.Name,
			Message: fmt.Sprintf("output is %d characters, budget is %d", n, spec.MaxLength),
		}
	}
	if strings.ContainsAny(output, forbiddenChars) {
		return &core.CompositionError{Field: spec.Name, Message: "output contains a forbidden character"}
	}
	return nil
}

// sanitize strips forbidden characters and collapses whitespace runs.
// Applied to provider output and caller-supplied feature text before
// validation.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(b.String(), " "))
}

// firstRunes returns the first n runes of s.
func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// truncateAtWordBoundary cuts s to at most max runes, backing up to the last
// whitespace boundary when one exists. Text without spaces (typical for
// Japanese) is hard-cut.
func truncateAtWordBoundary(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	truncated := firstRunes(s, max)
	if idx := strings.LastIndexAny(truncated, " 　"); idx > 0 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}

// countOccurrences counts case-insensitive occurrences of keyword in text.
func countOccurrences(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	return strings.Count(strings.ToLower(text), strings.ToLower(keyword))
}
