package compose

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"asogen/internal/core"
)

const subtitleMaxTokens = 128

// edgePunctuation is trimmed from subtitle boundaries after keyword removal.
const edgePunctuation = "。、，．,. "

// BuildSubtitle composes the 30 character subtitle. The text itself comes
// from the generation provider; this function owns the prompt, the
// deterministic post-processing (primary keyword removal, sentence-boundary
// truncation) and the fallback when the provider output cannot be used.
// Provider errors propagate so the caller's retry/abort policy applies.
func BuildSubtitle(ctx context.Context, gen TextGenerator, primaryKeyword, appName string, features []string, lang string) (string, error) {
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	if len(features) == 0 {
		return "", &core.CompositionError{Field: FieldSubtitle, Message: "feature list is empty"}
	}

	prompt := subtitlePrompt(appName, features, primaryKeyword, lang)
	raw, err := gen.GenerateText(ctx, prompt, subtitleMaxTokens)
	if err != nil {
		return "", err
	}

	subtitle := postProcessSubtitle(raw, primaryKeyword)
	if !subtitleUsable(subtitle, primaryKeyword) {
		subtitle = fallbackSubtitle(features, lang)
	}

	if err := validateField(SubtitleSpec, subtitle); err != nil {
		return "", err
	}
	return subtitle, nil
}

// postProcessSubtitle strips the primary keyword (it belongs to the title,
// not the subtitle), sanitizes, and fits the text to budget preferring a
// sentence boundary past half the budget.
func postProcessSubtitle(raw, primaryKeyword string) string {
	subtitle := removeKeyword(raw, primaryKeyword)
	subtitle = sanitize(subtitle)
	subtitle = strings.Trim(subtitle, edgePunctuation)
	return fitToSentence(subtitle, SubtitleSpec.MaxLength)
}

// subtitleUsable reports whether the post-processed provider output can be
// shipped as-is.
func subtitleUsable(subtitle, primaryKeyword string) bool {
	if strings.TrimSpace(subtitle) == "" {
		return false
	}
	if utf8.RuneCountInString(subtitle) > SubtitleSpec.MaxLength {
		return false
	}
	return countOccurrences(subtitle, primaryKeyword) == 0
}

// fallbackSubtitle builds a deterministic subtitle from the first two
// features when the provider output is unusable.
func fallbackSubtitle(features []string, lang string) string {
	parts := features
	if len(parts) > 2 {
		parts = parts[:2]
	}
	cleaned := make([]string, 0, len(parts))
	for _, f := range parts {
		if s := sanitize(f); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	subtitle := strings.Join(cleaned, listSeparator[lang])

	max := SubtitleSpec.MaxLength
	if utf8.RuneCountInString(subtitle) > max {
		cut := max - utf8.RuneCountInString(ellipsis[lang])
		subtitle = strings.TrimSpace(firstRunes(subtitle, cut)) + ellipsis[lang]
	}
	return subtitle
}

// removeKeyword deletes case-insensitive occurrences of keyword from text.
func removeKeyword(text, keyword string) string {
	if strings.TrimSpace(keyword) == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
	return re.ReplaceAllString(text, "")
}

// fitToSentence cuts text to max runes, backing up to the last sentence
// terminator when one sits past half the budget.
func fitToSentence(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	truncated := firstRunes(text, max)
	for _, terminator := range []string{"。", "."} {
		if idx := strings.LastIndex(truncated, terminator); idx > 0 {
			keep := truncated[:idx+len(terminator)]
			if utf8.RuneCountInString(keep) > max/2 {
				return keep
			}
		}
	}
	return strings.TrimSpace(truncated)
}
