// Package prompt は、生成リクエストに添える最終指示文の組み立てを担います。
package prompt

import (
	"github.com/shouni/go-restyle-kit/pkg/domain"
)

// Compose は基本指示・接続文・スタイル記述を決定論的に連結して最終プロンプトを
// 構築します。I/O も失敗系も持たない純粋関数なので、承認用に提示した文字列を
// そのまま全ターゲットの生成リクエストに再利用できます。
func Compose(basePrompt, connective string, style domain.StyleDescription) string {
	return basePrompt + "\n\n" + connective + "\n" + style.String()
}
