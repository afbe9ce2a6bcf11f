package services

import (
	"maps"
	"strings"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// defaultPrompts are used when no PromptStore is configured or a prompt
// file is missing.
var defaultPrompts = map[string]string{
	driven.PromptLinkTextSystem: "あなたはSEOに詳しい日本語のWebライターです。" +
		"トピッククラスター戦略における内部リンクの専門家です。",

	driven.PromptLinkText: `以下の記事本文の流れに自然につながる一文を作成し、関連記事へのリンクを1つだけ含めてください。

# 記事本文（抜粋）
%s

# リンク先記事
タイトル: %s
URL: %s

# 条件
- 日本語で1〜2文、80文字程度
- <a href="URL">アンカーテキスト</a> の形式でリンクを必ず1つだけ含める
- href にはリンク先URLをそのまま使う
- a タグ以外のHTMLタグは使わない
- 出力は文章のみ（説明や前置きは不要）`,

	driven.PromptKeywordIdeas: `「%s」に関連するSEOキーワードを%d個提案してください。
各行を次の形式で出力してください：
番号. キーワード|説明|推定月間検索数|競合性(低/中/高)|検索意図(情報収集/比較検討/購入)
説明や前置きは不要です。`,

	driven.PromptPillarAnalysis: `次の記事を分析し、トピッククラスター戦略のピラーページとして使うべきキーワードを提案してください。

タイトル: %s
本文: %s

次のJSON形式のみで回答してください：
{"keywords": ["キーワード1", "キーワード2"], "analysis": "分析内容", "pillar_potential": "高/中/低"}`,
}

// DefaultPrompt returns the built-in template for a prompt name.
func DefaultPrompt(name string) string {
	return defaultPrompts[name]
}

// loadPrompt prefers the store's template and falls back to the default.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && strings.TrimSpace(p) != "" {
			return p
		}
	}
	return defaultPrompts[name]
}

// DefaultPrompts returns a copy of every built-in template, keyed by name.
func DefaultPrompts() map[string]string {
	return maps.Clone(defaultPrompts)
}
