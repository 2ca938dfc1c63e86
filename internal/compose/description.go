package compose

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"asogen/internal/core"
)

const descriptionMaxTokens = 4096

const (
	// Target window for primary keyword occurrences in the description.
	minKeywordOccurrences = 4
	maxKeywordOccurrences = 7
)

// BuildDescription composes the 4000 character description. The body comes
// from the generation provider; post-processing enforces the keyword
// occurrence window and the budget, preferring paragraph then sentence
// boundaries when truncation is needed.
func BuildDescription(ctx context.Context, gen TextGenerator, primaryKeyword, appName string, features []string, lang string) (string, error) {
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	if len(features) == 0 {
		return "", &core.CompositionError{Field: FieldDescription, Message: "feature list is empty"}
	}

	prompt := descriptionPrompt(appName, features, primaryKeyword, lang)
	raw, err := gen.GenerateText(ctx, prompt, descriptionMaxTokens)
	if err != nil {
		return "", err
	}

	description := sanitizeMultiline(raw)
	description = adjustKeywordOccurrences(description, primaryKeyword, lang)
	description = fitToParagraph(description, DescriptionSpec.MaxLength)
	description = enforceKeywordFloor(description, primaryKeyword, lang, DescriptionSpec.MaxLength)

	if err := validateField(DescriptionSpec, description); err != nil {
		return "", err
	}
	return description, nil
}

// enforceKeywordFloor restores the minimum occurrence count after budget
// truncation, which can cut away the appended keyword sentences. The base
// text is shrunk first so the topped-up result stays within max. Truncating
// the base can itself drop occurrences, hence the bounded loop.
func enforceKeywordFloor(text, keyword, lang string, max int) string {
	for attempt := 0; attempt < 4; attempt++ {
		count := countOccurrences(text, keyword)
		if count >= minKeywordOccurrences {
			return text
		}
		var extra []string
		for i := count; i < minKeywordOccurrences; i++ {
			extra = append(extra, keywordSentence(keyword, lang))
		}
		joiner := " "
		if lang == LangJapanese {
			joiner = ""
		}
		suffix := "\n\n" + strings.Join(extra, joiner)
		base := fitToParagraph(text, max-utf8.RuneCountInString(suffix))
		text = strings.TrimSpace(base + suffix)
	}
	return text
}

// sanitizeMultiline strips forbidden characters while preserving paragraph
// structure; sanitize would collapse the newlines the description relies on.
func sanitizeMultiline(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// adjustKeywordOccurrences nudges the case-insensitive occurrence count of
// the primary keyword into [minKeywordOccurrences, maxKeywordOccurrences].
// Too few: stock keyword sentences are appended. Too many: keyword-bearing
// sentences are dropped from the end until the count fits.
func adjustKeywordOccurrences(text, keyword, lang string) string {
	count := countOccurrences(text, keyword)
	if count >= minKeywordOccurrences && count <= maxKeywordOccurrences {
		return text
	}

	if count < minKeywordOccurrences {
		var extra []string
		for i := count; i < minKeywordOccurrences; i++ {
			extra = append(extra, keywordSentence(keyword, lang))
		}
		joiner := " "
		if lang == LangJapanese {
			joiner = ""
		}
		return text + "\n\n" + strings.Join(extra, joiner)
	}

	sentences := splitSentences(text, lang)
	for i := len(sentences) - 1; i >= 0 && count > maxKeywordOccurrences; i-- {
		if n := countOccurrences(sentences[i], keyword); n > 0 {
			count -= n
			sentences = append(sentences[:i], sentences[i+1:]...)
		}
	}
	return strings.TrimSpace(strings.Join(sentences, ""))
}

// keywordSentence returns a neutral sentence embedding the keyword, used to
// top up the occurrence count.
func keywordSentence(keyword, lang string) string {
	if lang == LangJapanese {
		return fmt.Sprintf("%sをもっと便利にする機能を揃えています。", keyword)
	}
	return fmt.Sprintf("Discover everything %s has to offer. ", keyword)
}

// splitSentences splits text into sentences keeping their terminators so the
// pieces can be rejoined without loss.
func splitSentences(text, lang string) []string {
	terminator := "."
	if lang == LangJapanese {
		terminator = "。"
	}
	parts := strings.SplitAfter(text, terminator)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// fitToParagraph cuts text to max runes, preferring the last blank-line
// boundary, then the last sentence terminator, then a hard cut.
func fitToParagraph(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	truncated := firstRunes(text, max)
	if idx := strings.LastIndex(truncated, "\n\n"); idx > 0 {
		return strings.TrimSpace(truncated[:idx])
	}
	for _, terminator := range []string{"。", ".", "\n"} {
		if idx := strings.LastIndex(truncated, terminator); idx > 0 {
			return strings.TrimSpace(truncated[:idx+len(terminator)])
		}
	}
	return strings.TrimSpace(truncated)
}
