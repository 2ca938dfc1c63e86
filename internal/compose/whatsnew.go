package compose

import (
	"strings"

	"asogen/internal/core"
)

// Release-notes templates. {keyword} placeholders keep the primary keyword
// present without reading as stuffing; {features} receives the bullet list.
const whatsNewTemplateJA = `【新機能・改善点】

{keyword}の体験を見直し、主要な機能を強化しました。

【主な変更点】
{features}
• パフォーマンスの向上
• バグ修正と安定性の向上

【詳細】
{keyword}を活用した新機能を追加しました。ユーザーの利便性を向上させるため、様々な改善を行っています。

{keyword}に関する機能を強化し、より使いやすいアプリケーションを目指しています。

【今後の予定】
引き続き{keyword}の機能向上に取り組み、より良いサービスを提供してまいります。

ご利用いただき、ありがとうございます。`

// Template text must itself stay clear of the forbidden characters: it is
// composed-in verbatim, not sanitized like keyword and feature input.
const whatsNewTemplateEN = `【New Features and Improvements】

We reworked the {keyword} experience and strengthened the core features.

【Key Changes】
{features}
• Performance improvements
• Bug fixes and stability improvements

【Details】
We have added new features utilizing {keyword}. Various improvements have been made to enhance user convenience.

We have strengthened the {keyword} functionality to create a more user-friendly application.

【Future Plans】
We will continue to improve {keyword} features to provide better service to our users.

Thank you for using our app.`

// BuildWhatsNew composes the 4000 character release-notes field from the
// per-language template, the primary keyword and the feature list.
// Deterministic, no provider call.
func BuildWhatsNew(primaryKeyword string, features []string, lang string) (string, error) {
	if err := ValidateLanguage(lang); err != nil {
		return "", err
	}
	if strings.TrimSpace(primaryKeyword) == "" {
		return "", &core.CompositionError{Field: FieldWhatsNew, Message: "primary keyword is empty"}
	}
	if len(features) == 0 {
		return "", &core.CompositionError{Field: FieldWhatsNew, Message: "feature list is empty"}
	}

	template := whatsNewTemplateEN
	if lang == LangJapanese {
		template = whatsNewTemplateJA
	}

	bullets := make([]string, 0, len(features))
	for _, f := range features {
		if s := sanitize(f); s != "" {
			bullets = append(bullets, "• "+s)
		}
	}
	if len(bullets) == 0 {
		return "", &core.CompositionError{Field: FieldWhatsNew, Message: "no usable features after sanitizing"}
	}

	content := strings.ReplaceAll(template, "{keyword}", sanitize(primaryKeyword))
	content = strings.ReplaceAll(content, "{features}", strings.Join(bullets, "\n"))
	content = adjustKeywordOccurrences(content, primaryKeyword, lang)
	content = fitToParagraph(content, WhatsNewSpec.MaxLength)

	if err := validateField(WhatsNewSpec, content); err != nil {
		return "", err
	}
	return content, nil
}
