// Package compose builds the five length-bounded listing fields from a
// keyword selection, an app name and a feature list.
package compose

import (
	"asogen/internal/core"
)

// Supported language codes. Anything else is rejected up front rather than
// silently defaulted.
const (
	LangJapanese = "ja"
	LangEnglish  = "en"
)

var supportedLanguages = map[string]bool{
	LangJapanese: true,
	LangEnglish:  true,
}

// ValidateLanguage fails fast with a ConfigurationError for any language the
// composers cannot produce.
func ValidateLanguage(lang string) error {
	if !supportedLanguages[lang] {
		return &core.ConfigurationError{
			Message: "unsupported language " + lang + " (supported: ja, en)",
		}
	}
	return nil
}

// listSeparator is the language-specific separator for enumerations (keyword
// lists, feature mentions).
var listSeparator = map[string]string{
	LangJapanese: "、",
	LangEnglish:  ", ",
}

// ellipsis is appended when a sentence must be cut mid-thought.
var ellipsis = map[string]string{
	LangJapanese: "…",
	LangEnglish:  "...",
}
