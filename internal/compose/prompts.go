package compose

import (
	"fmt"
	"strings"
)

// Prompt templates for the provider-backed fields. One per language; the
// language decision happens before any prompt is built.

const subtitlePromptEN = `Generate an App Store app subtitle based on the following information.

App Name: %s
App Features: %s

Requirements:
- Within 30 characters (strictly enforced)
- Do not use the main keyword (%s)
- Express the app's value attractively
- Memorable and impressive expression

Generated subtitle:`

const subtitlePromptJA = `以下の情報をもとにApp Storeアプリのサブタイトルを生成してください。

アプリ名: %s
アプリの特徴: %s

要件:
- 30文字以内（厳守）
- 主要キーワード（%s）は使用しない
- アプリの価値を魅力的に表現する
- 覚えやすく印象的な表現にする

生成されたサブタイトル:`

const descriptionPromptEN = `Generate an App Store app description based on the following information.

App Name: %s
App Features: %s
Main Keyword: %s

Requirements:
- Within 4000 characters (strictly enforced)
- Naturally include the main keyword (%s) 4-7 times
- Clearly explain the app's value proposition
- Detail the app's main features
- Readable and attractive text structure

Generated description:`

const descriptionPromptJA = `以下の情報をもとにApp Storeアプリの概要を生成してください。

アプリ名: %s
アプリの特徴: %s
主要キーワード: %s

要件:
- 4000文字以内（厳守）
- 主要キーワード（%s）を自然に4〜7回含める
- アプリの価値提案を明確に説明する
- アプリの主要機能を詳しく説明する
- 読みやすく魅力的な文章構成にする

生成された概要:`

func subtitlePrompt(appName string, features []string, primaryKeyword, lang string) string {
	joined := strings.Join(features, listSeparator[lang])
	if lang == LangJapanese {
		return fmt.Sprintf(subtitlePromptJA, appName, joined, primaryKeyword)
	}
	return fmt.Sprintf(subtitlePromptEN, appName, joined, primaryKeyword)
}

func descriptionPrompt(appName string, features []string, primaryKeyword, lang string) string {
	joined := strings.Join(features, listSeparator[lang])
	if lang == LangJapanese {
		return fmt.Sprintf(descriptionPromptJA, appName, joined, primaryKeyword, primaryKeyword)
	}
	return fmt.Sprintf(descriptionPromptEN, appName, joined, primaryKeyword, primaryKeyword)
}
