package compose

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"

	"asogen/internal/core"
)

const (
	// minAppNameLength is the smallest app-name fragment worth keeping in a
	// two-part title; below this the title degrades to the keyword alone.
	minAppNameLength = 3
	// maxAppNameLength caps the app name before fitting.
	maxAppNameLength = 15
)

// titleStripChars are removed from title parts on top of the forbidden set;
// they read as noise in a listing title.
const titleStripChars = forbiddenChars + `\/|*?:;`

var englishTitleCaser = cases.Title(language.English)

// BuildTitle composes the two-part title "{keyword} - {appName}" within its
// 30 character budget. When the full template overflows, the app name is
// truncated at a word boundary; when fewer than minAppNameLength characters
// remain for it, the output degrades to the keyword alone, hard-truncated.
// Deterministic, no provider call.
func BuildTitle(primaryKeyword, appName, lang string) (string, error) {
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	sep, err := TitleSpec.Separator(lang)
	if err != nil {
		return "", err
	}

	keyword := cleanTitlePart(primaryKeyword, lang)
	name := cleanTitlePart(appName, lang)
	if keyword == "" {
		return "", &core.CompositionError{Field: FieldTitle, Message: "primary keyword is empty"}
	}
	if name == "" {
		return "", &core.CompositionError{Field: FieldTitle, Message: "app name is empty"}
	}
	if lang == LangEnglish {
		keyword = englishTitleCaser.String(keyword)
		name = englishTitleCaser.String(name)
	}
	name = truncateAtWordBoundary(name, maxAppNameLength)

	title := keyword + sep + name
	if utf8.RuneCountInString(title) > TitleSpec.MaxLength {
		available := TitleSpec.MaxLength - utf8.RuneCountInString(keyword) - utf8.RuneCountInString(sep)
		if available >= minAppNameLength {
			title = keyword + sep + truncateAtWordBoundary(name, available)
		} else {
			title = firstRunes(keyword, TitleSpec.MaxLength)
		}
	}

	if err := validateField(TitleSpec, title); err != nil {
		return "", err
	}
	return title, nil
}

// cleanTitlePart trims, strips noise characters and collapses whitespace.
// Japanese input additionally has full-width alphanumerics folded to their
// canonical half-width forms; kana stay full-width (width.Fold, not Narrow).
func cleanTitlePart(s, lang string) string {
	if lang == LangJapanese {
		s = width.Fold.String(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !strings.ContainsRune(titleStripChars, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(b.String(), " "))
}
