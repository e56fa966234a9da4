package prompt

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// KindStyleSummary は参照画像の画風を要約させるアートディレクター指示です。
	KindStyleSummary = "style_summary"
	// KindStyleConnective は基本指示とスタイル記述をつなぐ接続文です。
	KindStyleConnective = "style_connective"
)

//go:embed style_summary.md
var styleSummaryPrompt string

//go:embed style_connective.md
var styleConnectivePrompt string

//go:embed remix_single.md
var remixSinglePrompt string

//go:embed remix_combine.md
var remixCombinePrompt string

// kindTemplates は種別とテンプレート文字列を紐づけるマップなのだ。
var kindTemplates = map[string]string{
	KindStyleSummary:    styleSummaryPrompt,
	KindStyleConnective: styleConnectivePrompt,
}

// GetPromptByKind は、指定された種別に対応するプロンプト文字列を返すのだ。
func GetPromptByKind(kind string) (string, error) {
	content, ok := kindTemplates[kind]
	if !ok {
		supported := slices.Collect(maps.Keys(kindTemplates))
		slices.Sort(supported)

		return "", fmt.Errorf("サポートされていないプロンプト種別: '%s'。サポートされている種別は [%s] です",
			kind, strings.Join(supported, ", "))
	}

	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("種別 '%s' に対応するプロンプトテンプレートが空なのだ。embed設定を確認してほしいのだ", kind)
	}

	return strings.TrimSpace(content), nil
}

// DefaultRemixPrompt は、ユーザーがプロンプトを省略した場合のリミックス用
// デフォルト指示を画像の枚数に応じて返すのだ。
func DefaultRemixPrompt(imageCount int) string {
	if imageCount == 1 {
		return strings.TrimSpace(remixSinglePrompt)
	}
	return strings.TrimSpace(remixCombinePrompt)
}
