package domain

import "strings"

// StyleDescription は参照画像群から導出された画風の説明文です。
// 前後の空白を除去済みで、空でないことが構築時に保証されます。
type StyleDescription string

// NewStyleDescription は生のモデル出力からスタイル記述を構築するのだ。
// 空白だけの文字列は EmptySummaryError として弾くのだ。
func NewStyleDescription(raw string) (StyleDescription, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &EmptySummaryError{Reason: "モデルの応答にテキストが含まれていません"}
	}
	return StyleDescription(trimmed), nil
}

// String は説明文をそのまま返します。
func (s StyleDescription) String() string {
	return string(s)
}
